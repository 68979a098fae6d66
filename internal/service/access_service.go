package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

// TeacherScopeReader resolves a teacher profile and its subject assignments.
type TeacherScopeReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	ListSubjectIDs(ctx context.Context, teacherID string) ([]string, error)
}

// EnrollmentScopeReader answers reachability questions over active enrollments.
type EnrollmentScopeReader interface {
	IsStudentEnrolledInSubjects(ctx context.Context, studentID string, subjectIDs []string) (bool, error)
	ListActiveStudentIDsBySubjects(ctx context.Context, subjectIDs []string) ([]string, error)
}

// StudentIdentityReader correlates user accounts to student records.
type StudentIdentityReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

// AccessService enforces row-level reachability: admins see everything,
// teachers see students enrolled in their assigned subjects, students see
// only themselves. Denials inside the authenticated surface are 403, never
// 404, so a denied id is not confirmed or denied to exist.
type AccessService struct {
	teachers    TeacherScopeReader
	enrollments EnrollmentScopeReader
	students    StudentIdentityReader
}

// NewAccessService constructs an AccessService.
func NewAccessService(teachers TeacherScopeReader, enrollments EnrollmentScopeReader, students StudentIdentityReader) *AccessService {
	return &AccessService{teachers: teachers, enrollments: enrollments, students: students}
}

// CanAccessStudent reports whether the principal may read the student row.
func (s *AccessService) CanAccessStudent(ctx context.Context, claims *models.JWTClaims, studentID string) (bool, error) {
	switch claims.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleTeacher:
		return s.canTeacherAccessStudent(ctx, claims.UserID, studentID)
	case models.RoleStudent:
		self, err := s.ResolveSelfStudent(ctx, claims)
		if err != nil {
			if errors.Is(err, apperrors.ErrForbidden) {
				return false, nil
			}
			return false, err
		}
		return self.ID == studentID, nil
	default:
		return false, nil
	}
}

// canTeacherAccessStudent walks teacher -> subject assignments -> active
// enrollments. A teacher account without a profile row has an empty scope.
func (s *AccessService) canTeacherAccessStudent(ctx context.Context, userID, studentID string) (bool, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	subjectIDs, err := s.teachers.ListSubjectIDs(ctx, teacher.ID)
	if err != nil {
		return false, err
	}
	if len(subjectIDs) == 0 {
		return false, nil
	}
	return s.enrollments.IsStudentEnrolledInSubjects(ctx, studentID, subjectIDs)
}

// AccessibleStudentIDs returns the id set a teacher may list. A nil slice
// with ok=false means unrestricted (admin); an empty slice means none.
func (s *AccessService) AccessibleStudentIDs(ctx context.Context, claims *models.JWTClaims) (ids []string, restricted bool, err error) {
	switch claims.Role {
	case models.RoleAdmin:
		return nil, false, nil
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return []string{}, true, nil
			}
			return nil, true, err
		}
		subjectIDs, err := s.teachers.ListSubjectIDs(ctx, teacher.ID)
		if err != nil {
			return nil, true, err
		}
		if len(subjectIDs) == 0 {
			return []string{}, true, nil
		}
		studentIDs, err := s.enrollments.ListActiveStudentIDsBySubjects(ctx, subjectIDs)
		if err != nil {
			return nil, true, err
		}
		return studentIDs, true, nil
	case models.RoleStudent:
		self, err := s.ResolveSelfStudent(ctx, claims)
		if err != nil {
			if errors.Is(err, apperrors.ErrForbidden) {
				return []string{}, true, nil
			}
			return nil, true, err
		}
		return []string{self.ID}, true, nil
	default:
		return []string{}, true, nil
	}
}

// ResolveSelfStudent maps a student principal to its student record. The
// explicit account link wins; email equality is the fallback for accounts
// provisioned before the link existed.
func (s *AccessService) ResolveSelfStudent(ctx context.Context, claims *models.JWTClaims) (*models.Student, error) {
	if claims.Role != models.RoleStudent {
		return nil, apperrors.ErrForbidden
	}
	if claims.StudentID != nil && *claims.StudentID != "" {
		student, err := s.students.FindByID(ctx, *claims.StudentID)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	student, err := s.students.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	return student, nil
}
