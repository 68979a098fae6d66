package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
	"github.com/noah-isme/campus-admin-api/pkg/export"
	"github.com/noah-isme/campus-admin-api/pkg/jobs"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// Export entity names.
const (
	ExportStudents   = "students"
	ExportGrades     = "grades"
	ExportAttendance = "attendance"
	ExportFees       = "fees"
)

// JobTypeRenderExport labels queued export rendering work.
const JobTypeRenderExport = "render_export"

// ExportResult is a rendered export artifact.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportTicket references an async export and its signed download token.
type ExportTicket struct {
	ExportID    string    `json:"export_id"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ExportJobPayload is the queued description of an async export.
type ExportJobPayload struct {
	ExportID string `json:"export_id"`
	Entity   string `json:"entity"`
	Format   string `json:"format"`
}

// ArtifactStorage persists rendered artifacts.
type ArtifactStorage interface {
	Save(filename string, data []byte) (string, error)
}

// URLSigner issues and validates download tokens.
type URLSigner interface {
	Generate(exportID, relPath string) (string, time.Time, error)
	Parse(token string) (exportID, relPath string, expiresAt time.Time, err error)
}

// ExportSourceReader pulls full datasets for export rendering.
type ExportSourceReader interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// ExportGradeLister pulls all grade rows for export.
type ExportGradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
}

// ExportAttendanceLister pulls all attendance rows for export.
type ExportAttendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
}

// ExportFeePaymentLister pulls all payment rows for export.
type ExportFeePaymentLister interface {
	ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error)
}

// ExportService renders entity datasets as CSV, JSON, Excel or PDF. The
// canonical column order per entity is fixed here so every format emits the
// same fields in the same order.
type ExportService struct {
	students   ExportSourceReader
	grades     ExportGradeLister
	attendance ExportAttendanceLister
	fees       ExportFeePaymentLister
	storage    ArtifactStorage
	signer     URLSigner
	queue      Enqueuer
	csv        *export.CSVExporter
	excel      *export.ExcelExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. storage, signer and queue
// are required only for the async flow; synchronous rendering works without
// them.
func NewExportService(
	students ExportSourceReader,
	grades ExportGradeLister,
	attendance ExportAttendanceLister,
	fees ExportFeePaymentLister,
	storage ArtifactStorage,
	signer URLSigner,
	queue Enqueuer,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		students:   students,
		grades:     grades,
		attendance: attendance,
		fees:       fees,
		storage:    storage,
		signer:     signer,
		queue:      queue,
		csv:        export.NewCSVExporter(),
		excel:      export.NewExcelExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		now:        time.Now,
	}
}

// RequestAsync queues export rendering and returns a ticket whose signed URL
// becomes valid once the worker has written the artifact.
func (s *ExportService) RequestAsync(ctx context.Context, entity, format string) (*ExportTicket, error) {
	if s.storage == nil || s.signer == nil || s.queue == nil {
		return nil, apperrors.Clone(apperrors.ErrInternal, "async exports not configured")
	}
	if !validEntity(entity) {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "unknown export entity")
	}
	format = strings.ToLower(format)
	if format == "" {
		format = FormatCSV
	}
	if !validFormat(format) {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "unsupported format, use csv, json, excel or pdf")
	}

	exportID := fmt.Sprintf("%s-%s-%d", entity, format, s.now().UTC().UnixNano())
	relPath := exportID + extensionFor(format)
	err := s.queue.Enqueue(jobs.Job{
		ID:      exportID,
		Type:    JobTypeRenderExport,
		Payload: ExportJobPayload{ExportID: exportID, Entity: entity, Format: format},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "export enqueue failed")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "download token generation failed")
	}
	return &ExportTicket{
		ExportID:    exportID,
		DownloadURL: "/api/export/download/" + token,
		ExpiresAt:   expiresAt,
	}, nil
}

// HandleRenderJob is the queue handler for async export rendering.
func (s *ExportService) HandleRenderJob(ctx context.Context, payload ExportJobPayload) error {
	result, err := s.Render(ctx, payload.Entity, payload.Format)
	if err != nil {
		return fmt.Errorf("render export %s: %w", payload.ExportID, err)
	}
	relPath := payload.ExportID + extensionFor(strings.ToLower(payload.Format))
	if _, err := s.storage.Save(relPath, result.Data); err != nil {
		return fmt.Errorf("store export %s: %w", payload.ExportID, err)
	}
	s.logger.Info("export rendered",
		zap.String("export_id", payload.ExportID),
		zap.String("entity", payload.Entity),
		zap.String("format", payload.Format),
		zap.Int("bytes", len(result.Data)))
	return nil
}

// ResolveDownload validates a download token and returns the artifact path.
func (s *ExportService) ResolveDownload(token string) (relPath string, err error) {
	if s.signer == nil {
		return "", apperrors.Clone(apperrors.ErrInternal, "async exports not configured")
	}
	_, relPath, _, err = s.signer.Parse(token)
	if err != nil {
		return "", apperrors.Clone(apperrors.ErrForbidden, "invalid or expired download token")
	}
	return relPath, nil
}

func validEntity(entity string) bool {
	switch entity {
	case ExportStudents, ExportGrades, ExportAttendance, ExportFees:
		return true
	default:
		return false
	}
}

func validFormat(format string) bool {
	switch format {
	case FormatCSV, FormatJSON, FormatExcel, FormatPDF:
		return true
	default:
		return false
	}
}

func extensionFor(format string) string {
	switch format {
	case FormatExcel:
		return ".xlsx"
	case FormatJSON:
		return ".json"
	case FormatPDF:
		return ".pdf"
	default:
		return ".csv"
	}
}

// Render produces the export artifact for an entity and format.
func (s *ExportService) Render(ctx context.Context, entity, format string) (*ExportResult, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = FormatCSV
	}

	var (
		dataset export.Dataset
		title   string
		err     error
	)
	switch entity {
	case ExportStudents:
		dataset, err = s.studentDataset(ctx)
		title = "Students"
	case ExportGrades:
		dataset, err = s.gradeDataset(ctx)
		title = "Grades"
	case ExportAttendance:
		dataset, err = s.attendanceDataset(ctx)
		title = "Attendance"
	case ExportFees:
		dataset, err = s.feeDataset(ctx)
		title = "Fee Payments"
	default:
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "unknown export entity")
	}
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format("20060102-150405")
	base := fmt.Sprintf("%s-%s", entity, stamp)

	switch format {
	case FormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "csv rendering failed")
		}
		return &ExportResult{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case FormatJSON:
		data, err := json.MarshalIndent(dataset.Rows, "", "  ")
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "json rendering failed")
		}
		return &ExportResult{Filename: base + ".json", ContentType: "application/json", Data: data}, nil
	case FormatExcel:
		data, err := s.excel.Render(dataset, title)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "excel rendering failed")
		}
		return &ExportResult{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "pdf rendering failed")
		}
		return &ExportResult{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "unsupported format, use csv, json, excel or pdf")
	}
}

// exportPageSize matches the repository page cap; dataset builders walk
// pages until the source is exhausted.
const exportPageSize = 100

func (s *ExportService) studentDataset(ctx context.Context) (export.Dataset, error) {
	var students []models.Student
	for page := 1; ; page++ {
		batch, total, err := s.students.List(ctx, models.StudentFilter{PageSize: exportPageSize, Page: page})
		if err != nil {
			return export.Dataset{}, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student export query failed")
		}
		students = append(students, batch...)
		if len(batch) < exportPageSize || len(students) >= total {
			break
		}
	}
	headers := []string{"student_id", "first_name", "last_name", "email", "grade_level", "status", "gpa", "enrollment_date"}
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, map[string]string{
			"student_id":      st.StudentID,
			"first_name":      st.FirstName,
			"last_name":       st.LastName,
			"email":           st.Email,
			"grade_level":     st.GradeLevel,
			"status":          string(st.Status),
			"gpa":             strconv.FormatFloat(st.GPA, 'f', 2, 64),
			"enrollment_date": st.EnrollmentDate.Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ExportService) gradeDataset(ctx context.Context) (export.Dataset, error) {
	var grades []models.GradeDetail
	for page := 1; ; page++ {
		batch, total, err := s.grades.List(ctx, models.GradeFilter{PageSize: exportPageSize, Page: page})
		if err != nil {
			return export.Dataset{}, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade export query failed")
		}
		grades = append(grades, batch...)
		if len(batch) < exportPageSize || len(grades) >= total {
			break
		}
	}
	headers := []string{"student", "subject", "grade_type", "grade_value", "letter_grade", "semester", "academic_year", "date_recorded"}
	rows := make([]map[string]string, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, map[string]string{
			"student":       g.StudentName,
			"subject":       fmt.Sprintf("%s (%s)", g.SubjectName, g.SubjectCode),
			"grade_type":    string(g.GradeType),
			"grade_value":   strconv.FormatFloat(g.GradeValue, 'f', 1, 64),
			"letter_grade":  g.LetterGrade,
			"semester":      g.Semester,
			"academic_year": g.AcademicYear,
			"date_recorded": g.DateRecorded.Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ExportService) attendanceDataset(ctx context.Context) (export.Dataset, error) {
	var records []models.AttendanceDetail
	for page := 1; ; page++ {
		batch, total, err := s.attendance.List(ctx, models.AttendanceFilter{PageSize: exportPageSize, Page: page})
		if err != nil {
			return export.Dataset{}, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance export query failed")
		}
		records = append(records, batch...)
		if len(batch) < exportPageSize || len(records) >= total {
			break
		}
	}
	headers := []string{"student", "student_code", "date", "status", "period", "notes"}
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"student":      r.StudentName,
			"student_code": r.StudentCode,
			"date":         r.Date.Format("2006-01-02"),
			"status":       string(r.Status),
			"period":       deref(r.Period),
			"notes":        deref(r.Notes),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ExportService) feeDataset(ctx context.Context) (export.Dataset, error) {
	var payments []models.FeePayment
	for page := 1; ; page++ {
		batch, total, err := s.fees.ListPayments(ctx, models.FeePaymentFilter{PageSize: exportPageSize, Page: page})
		if err != nil {
			return export.Dataset{}, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee export query failed")
		}
		payments = append(payments, batch...)
		if len(batch) < exportPageSize || len(payments) >= total {
			break
		}
	}
	headers := []string{"receipt_number", "student_id", "fee_structure_id", "amount_paid", "payment_date", "payment_method", "payment_status"}
	rows := make([]map[string]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"receipt_number":   p.ReceiptNumber,
			"student_id":       p.StudentID,
			"fee_structure_id": p.FeeStructureID,
			"amount_paid":      strconv.FormatFloat(p.AmountPaid, 'f', 2, 64),
			"payment_date":     p.PaymentDate.Format("2006-01-02"),
			"payment_method":   p.PaymentMethod,
			"payment_status":   string(p.PaymentStatus),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
