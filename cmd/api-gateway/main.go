package main

import (
	"context"
	"fmt"
	"log"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-adp-api/api/swagger"
	internalhandler "github.com/noah-isme/sma-adp-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-adp-api/internal/middleware"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/repository"
	"github.com/noah-isme/sma-adp-api/internal/service"
	"github.com/noah-isme/sma-adp-api/pkg/cache"
	"github.com/noah-isme/sma-adp-api/pkg/config"
	"github.com/noah-isme/sma-adp-api/pkg/database"
	"github.com/noah-isme/sma-adp-api/pkg/jobs"
	"github.com/noah-isme/sma-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-adp-api/pkg/storage"
)

// @title SMA ADP API
// @version 0.1.0
// @description Monthly emergency-medicine physician roster scheduling service
// @BasePath /
// @schemes http

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

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("cache disabled", "error", err)
	} else {
		defer client.Close()
		cacheRepo = repository.NewCacheRepository(client, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		registerPprof(r)
	}

	api := r.Group(cfg.APIPrefix)

	// Auth
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	authSvc := service.NewAuthService(userRepo, notificationSvc, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "sma-adp-api",
		Audience:           []string{"sma-adp-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password", authHandler.ResetPassword)
	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.POST("/change-password", authHandler.ChangePassword)

	// Catalog repositories
	centerRepo := repository.NewCenterRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	coverageRepo := repository.NewCoverageTemplateRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	swapRepo := repository.NewSwapRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	reportRepo := repository.NewReportRepository(db)
	scheduleTemplateRepo := repository.NewScheduleTemplateRepository(db)

	// Catalog services
	centerSvc := service.NewCenterService(centerRepo, nil, logr)
	shiftSvc := service.NewShiftService(shiftRepo, nil, logr)
	coverageSvc := service.NewCoverageTemplateService(coverageRepo, nil, logr)
	doctorSvc := service.NewDoctorService(doctorRepo, nil, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, nil, logr)

	// Scheduling kernel
	scheduleSvc := service.NewScheduleService(scheduleRepo, logr)
	validatorSvc := service.NewConstraintValidatorService(assignmentRepo, doctorRepo, scheduleRepo, centerRepo, shiftRepo, coverageRepo, leaveRepo, logr)
	builderSvc := service.NewAutoBuilderService(scheduleRepo, assignmentRepo, doctorRepo, centerRepo, shiftRepo, coverageRepo, leaveRepo, logr)
	fairnessSvc := service.NewFairnessService(assignmentRepo, scheduleRepo, holidayRepo, logr)

	var statisticsCache service.StatisticsCacheReader
	if cacheRepo != nil {
		statisticsCache = cacheRepo
	}
	statisticsSvc := service.NewStatisticsService(assignmentRepo, scheduleRepo, doctorRepo, coverageRepo, centerRepo, shiftRepo, statisticsCache, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, scheduleRepo, validatorSvc, logr)

	// Collaboration services
	auditSvc := service.NewAuditService(auditRepo, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, nil, logr)
	swapSvc := service.NewSwapService(swapRepo, assignmentRepo, notificationSvc, auditSvc, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, nil, logr, cfg.Calendar.MaxExpansion)
	scheduleTemplateSvc := service.NewScheduleTemplateService(scheduleTemplateRepo, scheduleRepo, assignmentRepo, nil, logr)

	// Export/report pipeline: a signed-URL file store behind an in-memory
	// worker queue, mirroring the retry/backoff shape of the roster kernel's
	// other background work but scoped to report generation.
	var reportSvc *service.ReportService
	var reportHandler *internalhandler.ReportHandler
	if cfg.Reports.Enabled {
		fileStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(
			scheduleRepo,
			assignmentRepo,
			centerRepo,
			coverageRepo,
			fileStorage,
			signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
			logr,
			nil,
			nil,
		)
		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportQueue.Start(context.Background())
		reportSvc.RecoverPendingJobs(context.Background())
		reportSvc.StartCleanup(context.Background())
		reportHandler = internalhandler.NewReportHandler(reportSvc)
	}

	// Handlers
	centerHandler := internalhandler.NewCenterHandler(centerSvc)
	shiftHandler := internalhandler.NewShiftHandler(shiftSvc)
	coverageHandler := internalhandler.NewCoverageTemplateHandler(coverageSvc)
	doctorHandler := internalhandler.NewDoctorHandler(doctorSvc)
	leaveHandler := internalhandler.NewLeaveHandler(leaveSvc)
	scheduleHandler := internalhandler.NewScheduleHandler(scheduleSvc)
	kernelHandler := internalhandler.NewRosterKernelHandler(validatorSvc, builderSvc, fairnessSvc, statisticsSvc)
	assignmentHandler := internalhandler.NewAssignmentHandler(assignmentSvc)
	announcementHandler := internalhandler.NewAnnouncementHandler(announcementSvc)
	notificationHandler := internalhandler.NewNotificationHandler(notificationSvc)
	swapHandler := internalhandler.NewSwapHandler(swapSvc)
	calendarHandler := internalhandler.NewCalendarHandler(calendarSvc)
	scheduleTemplateHandler := internalhandler.NewScheduleTemplateHandler(scheduleTemplateSvc)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	admin := string(models.RoleAdmin)
	teamLead := string(models.RoleTeamLead)
	doctorRole := string(models.RoleDoctor)

	centers := secured.Group("/centers")
	centers.GET("", internalmiddleware.RBAC(admin, teamLead, doctorRole), centerHandler.List)
	centers.GET("/:id", internalmiddleware.RBAC(admin, teamLead, doctorRole), centerHandler.Get)
	centers.POST("", internalmiddleware.RBAC(admin), centerHandler.Create)
	centers.PUT("/:id", internalmiddleware.RBAC(admin), centerHandler.Update)
	centers.DELETE("/:id", internalmiddleware.RBAC(admin), centerHandler.Delete)

	shifts := secured.Group("/shifts")
	shifts.GET("", internalmiddleware.RBAC(admin, teamLead, doctorRole), shiftHandler.List)
	shifts.GET("/:id", internalmiddleware.RBAC(admin, teamLead, doctorRole), shiftHandler.Get)
	shifts.POST("", internalmiddleware.RBAC(admin), shiftHandler.Create)
	shifts.PUT("/:id", internalmiddleware.RBAC(admin), shiftHandler.Update)
	shifts.DELETE("/:id", internalmiddleware.RBAC(admin), shiftHandler.Delete)

	coverageTemplates := secured.Group("/coverage-templates")
	coverageTemplates.GET("", internalmiddleware.RBAC(admin, teamLead), coverageHandler.List)
	coverageTemplates.POST("", internalmiddleware.RBAC(admin), coverageHandler.Create)
	coverageTemplates.PUT("/:id", internalmiddleware.RBAC(admin), coverageHandler.Update)
	coverageTemplates.DELETE("/:id", internalmiddleware.RBAC(admin), coverageHandler.Delete)

	doctors := secured.Group("/doctors")
	doctors.GET("", internalmiddleware.RBAC(admin, teamLead, doctorRole), doctorHandler.List)
	doctors.GET("/:id", internalmiddleware.RBAC("SELF", admin, teamLead, doctorRole), doctorHandler.Get)
	doctors.DELETE("/:id", internalmiddleware.RBAC(admin), doctorHandler.Delete)

	leaves := secured.Group("/leaves")
	leaves.GET("", internalmiddleware.RBAC(admin, teamLead, doctorRole), leaveHandler.List)
	leaves.POST("", internalmiddleware.RBAC(admin, teamLead, doctorRole), leaveHandler.Create)
	leaves.POST("/:id/status", internalmiddleware.RBAC(admin, teamLead), leaveHandler.UpdateStatus)
	leaves.DELETE("/:id", internalmiddleware.RBAC(admin, teamLead), leaveHandler.Delete)

	schedules := secured.Group("/schedules")
	schedules.GET("", internalmiddleware.RBAC(admin, teamLead, doctorRole), scheduleHandler.List)
	schedules.GET("/:id", internalmiddleware.RBAC(admin, teamLead, doctorRole), scheduleHandler.Get)
	schedules.POST("", internalmiddleware.RBAC(admin, teamLead), scheduleHandler.Create)
	schedules.DELETE("/:id", internalmiddleware.RBAC(admin), scheduleHandler.Delete)
	schedules.POST("/:id/transition", internalmiddleware.RBAC(admin, teamLead), scheduleHandler.Transition)
	schedules.GET("/:id/validate", internalmiddleware.RBAC(admin, teamLead, doctorRole), kernelHandler.ValidateSchedule)
	schedules.POST("/:id/validate-candidate", internalmiddleware.RBAC(admin, teamLead), kernelHandler.ValidateCandidate)
	schedules.POST("/:id/build", internalmiddleware.RBAC(admin), kernelHandler.Build)
	schedules.GET("/:id/fairness", internalmiddleware.RBAC(admin, teamLead), kernelHandler.Fairness)
	schedules.GET("/:id/statistics", internalmiddleware.RBAC(admin, teamLead, doctorRole), kernelHandler.Statistics)
	schedules.GET("/:id/assignments", internalmiddleware.RBAC(admin, teamLead, doctorRole), assignmentHandler.List)
	schedules.POST("/:id/assignments", internalmiddleware.RBAC(admin, teamLead), assignmentHandler.Create)

	secured.DELETE("/assignments/:assignmentId", internalmiddleware.RBAC(admin, teamLead), assignmentHandler.Delete)

	announcements := secured.Group("/announcements")
	announcements.GET("", announcementHandler.List)
	announcements.POST("", internalmiddleware.RBAC(admin, teamLead), announcementHandler.Create)
	announcements.DELETE("/:id", internalmiddleware.RBAC(admin, teamLead), announcementHandler.Delete)

	notifications := secured.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.POST("/:id/read", notificationHandler.MarkRead)

	swaps := secured.Group("/swaps")
	swaps.GET("", swapHandler.List)
	swaps.POST("", internalmiddleware.RBAC(doctorRole), swapHandler.Create)
	swaps.POST("/:id/accept", internalmiddleware.RBAC(doctorRole), swapHandler.Accept)
	swaps.POST("/:id/reject", internalmiddleware.RBAC(doctorRole), swapHandler.Reject)
	swaps.POST("/:id/cancel", internalmiddleware.RBAC(doctorRole), swapHandler.Cancel)

	if cfg.Calendar.Enabled {
		calendarEvents := secured.Group("/calendar/events")
		calendarEvents.GET("", calendarHandler.List)
		calendarEvents.GET("/:id", calendarHandler.Get)
		calendarEvents.POST("", internalmiddleware.RBAC(admin, teamLead), calendarHandler.Create)
		calendarEvents.PUT("/:id", internalmiddleware.RBAC(admin, teamLead), calendarHandler.Update)
		calendarEvents.DELETE("/:id", internalmiddleware.RBAC(admin), calendarHandler.Delete)
		calendarEvents.POST("/expand", internalmiddleware.RBAC(admin, teamLead), calendarHandler.ExpandRecurrence)
	}

	if reportHandler != nil {
		reports := secured.Group("/reports")
		reports.POST("/generate", internalmiddleware.RBAC(admin, teamLead), reportHandler.GenerateReport)
		reports.GET("/status/:id", internalmiddleware.RBAC(admin, teamLead), reportHandler.ReportStatus)
		secured.GET("/export/:token", internalmiddleware.RBAC(admin, teamLead), reportHandler.DownloadReport)
	}

	templates := secured.Group("/templates")
	templates.GET("", scheduleTemplateHandler.List)
	templates.GET("/:id", scheduleTemplateHandler.Get)
	templates.POST("", internalmiddleware.RBAC(admin, teamLead), scheduleTemplateHandler.Create)
	templates.POST("/from-schedule", internalmiddleware.RBAC(admin, teamLead), scheduleTemplateHandler.CreateFromSchedule)
	templates.PUT("/:id", internalmiddleware.RBAC(admin, teamLead), scheduleTemplateHandler.Update)
	templates.DELETE("/:id", internalmiddleware.RBAC(admin, teamLead), scheduleTemplateHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerPprof(r *gin.Engine) {
	group := r.Group("/debug/pprof")
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.POST("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	group.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	group.GET("/block", gin.WrapH(pprof.Handler("block")))
	group.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	group.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	group.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	group.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
}
