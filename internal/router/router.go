package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/handler"
	"github.com/noah-isme/campus-admin-api/internal/middleware"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/config"
	"github.com/noah-isme/campus-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-admin-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Student    *handler.StudentHandler
	Grade      *handler.GradeHandler
	Attendance *handler.AttendanceHandler
	Enrollment *handler.EnrollmentHandler
	Subject    *handler.SubjectHandler
	Teacher    *handler.TeacherHandler
	Fee        *handler.FeeHandler
	Stats      *handler.StatsHandler
	Export     *handler.ExportHandler
	Calendar   *handler.CalendarHandler
	User       *handler.UserHandler
}

// New builds the gin engine with all middleware and routes mounted.
func New(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)
	// Download tokens carry their own signature; no session required.
	api.GET("/export/download/:token", h.Export.Download)

	authed := api.Group("", middleware.JWT(auth))
	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/refresh", h.Auth.Refresh)

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	students := authed.Group("/students")
	{
		students.GET("", anyRole, h.Student.List)
		students.GET("/:id", anyRole, h.Student.Get)
		students.GET("/:id/fees", anyRole, h.Fee.StudentBalance)
		students.PUT("/:id/profile", anyRole, h.Student.UpdateProfile)
		students.POST("", adminOnly, h.Student.Create)
		students.PUT("/:id", adminOnly, h.Student.Update)
		students.PATCH("/:id/status", adminOnly, h.Student.SetStatus)
	}

	grades := authed.Group("/grades", staff)
	{
		grades.GET("", h.Grade.List)
		grades.GET("/:id", h.Grade.Get)
		grades.POST("", h.Grade.Create)
		grades.PUT("/:id", h.Grade.Update)
		grades.DELETE("/:id", h.Grade.Delete)
	}

	attendance := authed.Group("/attendance", staff)
	{
		attendance.GET("", h.Attendance.List)
		attendance.POST("", h.Attendance.Record)
		attendance.PUT("/:id", h.Attendance.Update)
		attendance.DELETE("/:id", h.Attendance.Delete)
	}

	enrollments := authed.Group("/enrollments")
	{
		enrollments.GET("", staff, h.Enrollment.List)
		enrollments.POST("", adminOnly, h.Enrollment.Enroll)
		enrollments.PATCH("/:id/status", adminOnly, h.Enrollment.UpdateStatus)
	}

	subjects := authed.Group("/subjects")
	{
		subjects.GET("", anyRole, h.Subject.List)
		subjects.GET("/:id", anyRole, h.Subject.Get)
		subjects.POST("", adminOnly, h.Subject.Create)
		subjects.PUT("/:id", adminOnly, h.Subject.Update)
		subjects.DELETE("/:id", adminOnly, h.Subject.Deactivate)
	}

	teachers := authed.Group("/teachers")
	{
		teachers.GET("", staff, h.Teacher.List)
		teachers.GET("/:id", staff, h.Teacher.Get)
		teachers.POST("", adminOnly, h.Teacher.Create)
		teachers.PUT("/:id", adminOnly, h.Teacher.Update)
		teachers.POST("/:id/subjects", adminOnly, h.Teacher.AssignSubject)
		teachers.DELETE("/:id/subjects/:subjectId", adminOnly, h.Teacher.UnassignSubject)
	}

	fees := authed.Group("/fees")
	{
		fees.GET("/report", anyRole, h.Fee.Report)
		fees.GET("/structures", staff, h.Fee.ListStructures)
		fees.POST("/structures", adminOnly, h.Fee.CreateStructure)
		fees.PUT("/structures/:id", adminOnly, h.Fee.UpdateStructure)
		fees.DELETE("/structures/:id", adminOnly, h.Fee.DeactivateStructure)
		fees.GET("/payments", staff, h.Fee.ListPayments)
		fees.POST("/payments", adminOnly, h.Fee.RecordPayment)
	}

	stats := authed.Group("/stats", staff)
	{
		stats.GET("/dashboard", h.Stats.Dashboard)
		stats.GET("/attendance-trend", h.Stats.AttendanceTrend)
	}

	exports := authed.Group("/export", adminOnly)
	{
		exports.GET("/:entity", h.Export.Render)
		exports.POST("/async", h.Export.RequestAsync)
	}

	events := authed.Group("/events")
	{
		events.GET("", anyRole, h.Calendar.ListEvents)
		events.POST("", adminOnly, h.Calendar.CreateEvent)
		events.PUT("/:id", adminOnly, h.Calendar.UpdateEvent)
		events.DELETE("/:id", adminOnly, h.Calendar.DeleteEvent)
	}

	years := authed.Group("/academic-years")
	{
		years.GET("", anyRole, h.Calendar.ListAcademicYears)
		years.GET("/current", anyRole, h.Calendar.CurrentAcademicYear)
		years.POST("", adminOnly, h.Calendar.CreateAcademicYear)
		years.PATCH("/:id/current", adminOnly, h.Calendar.SetCurrentAcademicYear)
	}

	users := authed.Group("/users")
	{
		users.PUT("/password", anyRole, h.User.ChangePassword)
		users.GET("", adminOnly, h.User.List)
		users.POST("", adminOnly, h.User.Create)
		users.PATCH("/:id/active", adminOnly, h.User.SetActive)
	}

	return r
}
