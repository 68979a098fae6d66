package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/noah-isme/campus-admin-api/api/swagger"
	"github.com/noah-isme/campus-admin-api/internal/handler"
	"github.com/noah-isme/campus-admin-api/internal/repository"
	"github.com/noah-isme/campus-admin-api/internal/router"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/cache"
	"github.com/noah-isme/campus-admin-api/pkg/config"
	"github.com/noah-isme/campus-admin-api/pkg/database"
	"github.com/noah-isme/campus-admin-api/pkg/jobs"
	"github.com/noah-isme/campus-admin-api/pkg/logger"
	"github.com/noah-isme/campus-admin-api/pkg/storage"
)

// @title Campus Admin API
// @version 1.0.0
// @description School administrative information system API
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close()

	cacheRepo := repository.NewCacheRepository(redisClient)

	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	userRepo := repository.NewUserRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	dashboardSvc := service.NewDashboardService(statsRepo, cacheRepo, cfg.Dashboard, logr)

	// Every committed entity write drops the dashboard cache; the pub/sub
	// relay joins in when events are enabled.
	observer := service.MultiObserver{service.NewDashboardInvalidator(dashboardSvc)}
	if cfg.Events.Enabled {
		observer = append(observer, service.NewRedisObserver(cacheRepo, cfg.Events.Channel, logr))
	}

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	// The queue handler needs the services, which need the queue. The
	// service variables are assigned before Start, so the closure only
	// dereferences them once workers are consuming.
	var (
		studentSvc *service.StudentService
		exportSvc  *service.ExportService
	)
	queue := jobs.NewQueue("background", func(ctx context.Context, job jobs.Job) error {
		switch job.Type {
		case service.JobTypeRecomputeGPA:
			studentID, ok := job.Payload.(string)
			if !ok {
				return fmt.Errorf("recompute job %s has invalid payload", job.ID)
			}
			return studentSvc.RecomputeGPA(ctx, studentID)
		case service.JobTypeRenderExport:
			payload, ok := job.Payload.(service.ExportJobPayload)
			if !ok {
				return fmt.Errorf("export job %s has invalid payload", job.ID)
			}
			return exportSvc.HandleRenderJob(ctx, payload)
		default:
			return fmt.Errorf("unknown job type %s", job.Type)
		}
	}, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})

	accessSvc := service.NewAccessService(teacherRepo, enrollmentRepo, studentRepo)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, logr)
	studentSvc = service.NewStudentService(studentRepo, gradeRepo, attendanceRepo, accessSvc, observer, cfg.Dashboard.AttendanceWindow, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, queue, observer, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, observer, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, subjectRepo, observer, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, observer, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, subjectRepo, observer, logr)
	feeSvc := service.NewFeeService(feeRepo, studentRepo, studentRepo, enrollmentRepo, accessSvc, observer, logr)
	exportSvc = service.NewExportService(studentRepo, gradeRepo, attendanceRepo, feeRepo, exportStorage, signer, queue, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, logr)
	userSvc := service.NewUserService(userRepo, logr)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Student:    handler.NewStudentHandler(studentSvc),
		Grade:      handler.NewGradeHandler(gradeSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc),
		Subject:    handler.NewSubjectHandler(subjectSvc),
		Teacher:    handler.NewTeacherHandler(teacherSvc),
		Fee:        handler.NewFeeHandler(feeSvc),
		Stats:      handler.NewStatsHandler(dashboardSvc),
		Export:     handler.NewExportHandler(exportSvc, exportStorage),
		Calendar:   handler.NewCalendarHandler(calendarSvc),
		User:       handler.NewUserHandler(userSvc),
	}

	r := router.New(cfg, logr, authSvc, handlers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
