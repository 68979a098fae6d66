package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/middleware"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/jobs"
)

type fakeGradeStore struct {
	grades     map[string]*models.Grade
	created    *models.Grade
	lastFilter models.GradeFilter
}

func (f *fakeGradeStore) List(_ context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	f.lastFilter = filter
	return []models.GradeDetail{}, 0, nil
}

func (f *fakeGradeStore) FindByID(_ context.Context, id string) (*models.Grade, error) {
	if g, ok := f.grades[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGradeStore) Create(_ context.Context, grade *models.Grade) error {
	grade.ID = "grade-1"
	f.created = grade
	return nil
}

func (f *fakeGradeStore) Update(context.Context, *models.Grade) error { return nil }
func (f *fakeGradeStore) Delete(context.Context, string) error       { return nil }

type fakeStudentReader struct{}

func (fakeStudentReader) FindByID(_ context.Context, id string) (*models.Student, error) {
	if id == "stu-1" {
		return &models.Student{ID: "stu-1"}, nil
	}
	return nil, sql.ErrNoRows
}

func (fakeStudentReader) FindByEmail(context.Context, string) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

type fakeQueue struct{ jobs []jobs.Job }

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func buildGradeRouter(store *fakeGradeStore, queue *fakeQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewGradeService(store, fakeStudentReader{}, queue, service.NopObserver{}, zap.NewNop())
	h := NewGradeHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		if role != "" {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{
				UserID: "user-1",
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	grades := r.Group("/grades", staff)
	grades.GET("", h.List)
	grades.POST("", h.Create)
	return r
}

func performRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGradeRoutes(t *testing.T) {
	const payload = `{
		"student_id": "stu-1",
		"subject_id": "sub-1",
		"grade_value": 83,
		"grade_type": "exam",
		"semester": "1",
		"academic_year": "2025/2026"
	}`

	t.Run("create derives letter and enqueues recompute", func(t *testing.T) {
		store := &fakeGradeStore{}
		queue := &fakeQueue{}
		router := buildGradeRouter(store, queue)

		req, _ := http.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)

		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"letter_grade":"B"`)
		require.NotNil(t, store.created)
		require.Len(t, queue.jobs, 1)
		require.Equal(t, service.JobTypeRecomputeGPA, queue.jobs[0].Type)
	})

	t.Run("create rejects out of range value", func(t *testing.T) {
		store := &fakeGradeStore{}
		router := buildGradeRouter(store, &fakeQueue{})

		req, _ := http.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString(
			`{"student_id":"stu-1","subject_id":"sub-1","grade_value":101,"grade_type":"exam","semester":"1","academic_year":"2025/2026"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		require.Nil(t, store.created)
	})

	t.Run("list reads page and per_page", func(t *testing.T) {
		store := &fakeGradeStore{}
		router := buildGradeRouter(store, &fakeQueue{})

		req, _ := http.NewRequest(http.MethodGet, "/grades?page=3&per_page=50", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)

		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, 3, store.lastFilter.Page)
		require.Equal(t, 50, store.lastFilter.PageSize)
	})

	t.Run("student role is forbidden", func(t *testing.T) {
		router := buildGradeRouter(&fakeGradeStore{}, &fakeQueue{})

		req, _ := http.NewRequest(http.MethodGet, "/grades", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)

		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("missing claims is unauthorized", func(t *testing.T) {
		router := buildGradeRouter(&fakeGradeStore{}, &fakeQueue{})

		req, _ := http.NewRequest(http.MethodGet, "/grades", nil)
		resp := performRequest(router, req)

		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
