package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/metric"
	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

// StudentStore is the persistence surface for student writes and reads.
type StudentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByStudentID(ctx context.Context, studentID string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdateProfile(ctx context.Context, student *models.Student) error
	UpdateGPA(ctx context.Context, id string, gpa float64) error
	SetStatus(ctx context.Context, id string, status models.StudentStatus) error
	ListByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

// StudentGradeReader supplies grades for GPA recomputation and detail views.
type StudentGradeReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
	ListRecentByStudent(ctx context.Context, studentID string, limit int) ([]models.GradeDetail, error)
}

// StudentAttendanceReader supplies the trailing-window attendance records.
type StudentAttendanceReader interface {
	ListByStudentSince(ctx context.Context, studentID string, since time.Time) ([]models.Attendance, error)
}

// StudentUpdateProfileRequest carries the self-service editable subset.
type StudentUpdateProfileRequest struct {
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergency_contact"`
	EmergencyPhone   *string `json:"emergency_phone"`
	PhotoFilename    *string `json:"photo_filename"`
}

// StudentService implements student CRUD and the derived-metric reads.
type StudentService struct {
	students    StudentStore
	grades      StudentGradeReader
	attendance  StudentAttendanceReader
	access      *AccessService
	observer    EntityObserver
	windowDays  int
	recentLimit int
	logger      *zap.Logger
	now         func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(
	students StudentStore,
	grades StudentGradeReader,
	attendance StudentAttendanceReader,
	access *AccessService,
	observer EntityObserver,
	windowDays int,
	logger *zap.Logger,
) *StudentService {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &StudentService{
		students:    students,
		grades:      grades,
		attendance:  attendance,
		access:      access,
		observer:    observer,
		windowDays:  windowDays,
		recentLimit: 10,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns students visible to the principal. Teachers get the subset
// reachable through their subject assignments, students get themselves.
func (s *StudentService) List(ctx context.Context, claims *models.JWTClaims, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	ids, restricted, err := s.access.AccessibleStudentIDs(ctx, claims)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "scope resolution failed")
	}
	if !restricted {
		students, total, err := s.students.List(ctx, filter)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student listing failed")
		}
		return students, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
	}

	if len(ids) == 0 {
		return []models.Student{}, models.NewPagination(1, normalizeSize(filter.PageSize), 0), nil
	}
	students, err := s.students.ListByIDs(ctx, ids)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student listing failed")
	}
	return students, models.NewPagination(1, len(students), len(students)), nil
}

// Get returns the detail view: the student row plus the trailing-window
// attendance rate and the most recent grades.
func (s *StudentService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.StudentDetail, error) {
	allowed, err := s.access.CanAccessStudent(ctx, claims, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "scope resolution failed")
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}

	today := s.now().UTC()
	since := today.AddDate(0, 0, -s.windowDays)
	records, err := s.attendance.ListByStudentSince(ctx, id, since)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance lookup failed")
	}

	recent, err := s.grades.ListRecentByStudent(ctx, id, s.recentLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade lookup failed")
	}

	return &models.StudentDetail{
		Student:        *student,
		AttendanceRate: metric.AttendanceRate(records, s.windowDays, today),
		RecentGrades:   recent,
	}, nil
}

// Create registers a new student. The student code must be unique.
func (s *StudentService) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	if !models.ValidGradeLevel(student.GradeLevel) {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "grade_level must be one of the supported year levels")
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	if !student.Status.Valid() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "invalid status")
	}
	exists, err := s.students.ExistsByStudentID(ctx, student.StudentID, "")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "uniqueness check failed")
	}
	if exists {
		return nil, apperrors.Clone(apperrors.ErrConflict, "student id already in use")
	}
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = s.now().UTC()
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student creation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "student", EntityID: student.ID, Action: "created"})
	return student, nil
}

// Update modifies an administrative student record.
func (s *StudentService) Update(ctx context.Context, id string, updated *models.Student) (*models.Student, error) {
	current, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}
	if !models.ValidGradeLevel(updated.GradeLevel) {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "grade_level must be one of the supported year levels")
	}
	if !updated.Status.Valid() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "invalid status")
	}
	if updated.StudentID != current.StudentID {
		exists, err := s.students.ExistsByStudentID(ctx, updated.StudentID, id)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "uniqueness check failed")
		}
		if exists {
			return nil, apperrors.Clone(apperrors.ErrConflict, "student id already in use")
		}
	}
	updated.ID = current.ID
	updated.GPA = current.GPA
	if err := s.students.Update(ctx, updated); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "student", EntityID: id, Action: "updated"})
	return updated, nil
}

// UpdateProfile applies the restricted self-service subset. Students may
// only touch their own record; the field allowlist is enforced here, not in
// the handler, so no other caller can widen it.
func (s *StudentService) UpdateProfile(ctx context.Context, claims *models.JWTClaims, id string, req StudentUpdateProfileRequest) (*models.Student, error) {
	allowed, err := s.access.CanAccessStudent(ctx, claims, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "scope resolution failed")
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}

	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if req.Address != nil {
		student.Address = req.Address
	}
	if req.EmergencyContact != nil {
		student.EmergencyContact = req.EmergencyContact
	}
	if req.EmergencyPhone != nil {
		student.EmergencyPhone = req.EmergencyPhone
	}
	if req.PhotoFilename != nil {
		student.PhotoFilename = req.PhotoFilename
	}

	if err := s.students.UpdateProfile(ctx, student); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "profile update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "student", EntityID: id, Action: "profile_updated"})
	return student, nil
}

// SetStatus performs the lifecycle transition used for soft deletes.
func (s *StudentService) SetStatus(ctx context.Context, id string, status models.StudentStatus) error {
	if !status.Valid() {
		return apperrors.WithDetails(apperrors.ErrValidation, "invalid status")
	}
	if _, err := s.students.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}
	if err := s.students.SetStatus(ctx, id, status); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "status update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "student", EntityID: id, Action: "status_changed"})
	return nil
}

// RecomputeGPA recalculates and stores the cached GPA from all grade rows.
// Safe to run repeatedly for the same student.
func (s *StudentService) RecomputeGPA(ctx context.Context, studentID string) error {
	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade lookup failed")
	}
	gpa := metric.GPA(grades)
	if err := s.students.UpdateGPA(ctx, studentID, gpa); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "gpa update failed")
	}
	s.logger.Debug("gpa recomputed", zap.String("student_id", studentID), zap.Float64("gpa", gpa))
	return nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizeSize(size int) int {
	if size <= 0 || size > 100 {
		return 20
	}
	return size
}
