package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

type fakeTeacherScope struct {
	teacher    *models.Teacher
	teacherErr error
	subjectIDs []string
}

func (f *fakeTeacherScope) FindByUserID(_ context.Context, _ string) (*models.Teacher, error) {
	if f.teacherErr != nil {
		return nil, f.teacherErr
	}
	if f.teacher == nil {
		return nil, sql.ErrNoRows
	}
	return f.teacher, nil
}

func (f *fakeTeacherScope) ListSubjectIDs(_ context.Context, _ string) ([]string, error) {
	return f.subjectIDs, nil
}

type fakeEnrollmentScope struct {
	enrolled   bool
	studentIDs []string
}

func (f *fakeEnrollmentScope) IsStudentEnrolledInSubjects(_ context.Context, _ string, _ []string) (bool, error) {
	return f.enrolled, nil
}

func (f *fakeEnrollmentScope) ListActiveStudentIDsBySubjects(_ context.Context, _ []string) ([]string, error) {
	return f.studentIDs, nil
}

type fakeStudentIdentity struct {
	byID    map[string]*models.Student
	byEmail map[string]*models.Student
}

func (f *fakeStudentIdentity) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentIdentity) FindByEmail(_ context.Context, email string) (*models.Student, error) {
	if s, ok := f.byEmail[email]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u-admin", Role: models.RoleAdmin}
}

func TestAdminReachesAnyStudent(t *testing.T) {
	svc := NewAccessService(&fakeTeacherScope{}, &fakeEnrollmentScope{}, &fakeStudentIdentity{})

	allowed, err := svc.CanAccessStudent(context.Background(), adminClaims(), "any-student")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestTeacherReachesEnrolledStudent(t *testing.T) {
	svc := NewAccessService(
		&fakeTeacherScope{teacher: &models.Teacher{ID: "t1"}, subjectIDs: []string{"sub1"}},
		&fakeEnrollmentScope{enrolled: true},
		&fakeStudentIdentity{},
	)

	claims := &models.JWTClaims{UserID: "u-teacher", Role: models.RoleTeacher}
	allowed, err := svc.CanAccessStudent(context.Background(), claims, "stu-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestTeacherWithoutProfileHasEmptyScope(t *testing.T) {
	svc := NewAccessService(
		&fakeTeacherScope{teacherErr: sql.ErrNoRows},
		&fakeEnrollmentScope{enrolled: true},
		&fakeStudentIdentity{},
	)

	claims := &models.JWTClaims{UserID: "u-teacher", Role: models.RoleTeacher}
	allowed, err := svc.CanAccessStudent(context.Background(), claims, "stu-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	ids, restricted, err := svc.AccessibleStudentIDs(context.Background(), claims)
	require.NoError(t, err)
	assert.True(t, restricted)
	assert.Empty(t, ids)
}

func TestTeacherWithoutAssignmentsDeniedWithoutEnrollmentQuery(t *testing.T) {
	svc := NewAccessService(
		&fakeTeacherScope{teacher: &models.Teacher{ID: "t1"}, subjectIDs: nil},
		&fakeEnrollmentScope{enrolled: true},
		&fakeStudentIdentity{},
	)

	claims := &models.JWTClaims{UserID: "u-teacher", Role: models.RoleTeacher}
	allowed, err := svc.CanAccessStudent(context.Background(), claims, "stu-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestStudentReachesOnlySelf(t *testing.T) {
	self := &models.Student{ID: "stu-1", Email: "me@example.com"}
	link := "stu-1"
	svc := NewAccessService(
		&fakeTeacherScope{},
		&fakeEnrollmentScope{},
		&fakeStudentIdentity{byID: map[string]*models.Student{"stu-1": self}},
	)

	claims := &models.JWTClaims{UserID: "u-student", Role: models.RoleStudent, StudentID: &link}
	allowed, err := svc.CanAccessStudent(context.Background(), claims, "stu-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanAccessStudent(context.Background(), claims, "stu-2")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestStudentFallsBackToEmailMatch(t *testing.T) {
	self := &models.Student{ID: "stu-9", Email: "me@example.com"}
	svc := NewAccessService(
		&fakeTeacherScope{},
		&fakeEnrollmentScope{},
		&fakeStudentIdentity{byEmail: map[string]*models.Student{"me@example.com": self}},
	)

	claims := &models.JWTClaims{UserID: "u-student", Email: "me@example.com", Role: models.RoleStudent}
	resolved, err := svc.ResolveSelfStudent(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "stu-9", resolved.ID)
}

func TestStudentWithoutRecordDenied(t *testing.T) {
	svc := NewAccessService(&fakeTeacherScope{}, &fakeEnrollmentScope{}, &fakeStudentIdentity{})

	claims := &models.JWTClaims{UserID: "u-student", Email: "ghost@example.com", Role: models.RoleStudent}
	allowed, err := svc.CanAccessStudent(context.Background(), claims, "stu-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}
