package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inr99_academy_backend/internal/config"
	"inr99_academy_backend/internal/controller"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/service"
	"inr99_academy_backend/pkg/configwatcher"
	"inr99_academy_backend/pkg/database"
	"inr99_academy_backend/pkg/logger"
	"inr99_academy_backend/pkg/monitoring"
	"inr99_academy_backend/pkg/security"
	"inr99_academy_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	course       *repository.CourseRepository
	assessment   *repository.AssessmentRepository
	attempt      *repository.AttemptRepository
	badge        *repository.BadgeRepository
	subscription *repository.SubscriptionRepository
	certificate  *repository.CertificateRepository
	liveSession  *repository.LiveSessionRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	storage      *service.StorageService
	course       *service.CourseService
	badge        *service.BadgeService
	assessment   *service.AssessmentService
	subscription *service.SubscriptionService
	certificate  *service.CertificateService
	liveSession  *service.LiveSessionService
	dashboard    *service.DashboardService
	media        *service.MediaService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	course       *controller.CourseController
	assessment   *controller.AssessmentController
	subscription *controller.SubscriptionController
	certificate  *controller.CertificateController
	liveSession  *controller.LiveSessionController
	dashboard    *controller.DashboardController
	media        *controller.MediaController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		course:       repository.NewCourseRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
		attempt:      repository.NewAttemptRepository(db),
		badge:        repository.NewBadgeRepository(db),
		subscription: repository.NewSubscriptionRepository(db),
		certificate:  repository.NewCertificateRepository(db),
		liveSession:  repository.NewLiveSessionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.course = service.NewCourseService(repos.course, rdb)
	s.badge = service.NewBadgeService(repos.badge)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.attempt, s.badge, rdb)
	s.subscription = service.NewSubscriptionService(repos.subscription, service.NewHTTPPaymentGateway(&cfg.Payment))
	s.certificate = service.NewCertificateService(repos.certificate, repos.course, repos.user, s.storage)
	s.liveSession = service.NewLiveSessionService(repos.liveSession, repos.course)
	s.dashboard = service.NewDashboardService(repos.user, repos.course, repos.attempt, repos.badge, repos.subscription, repos.liveSession)
	s.media = service.NewMediaService(repos.course, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		course:       controller.NewCourseController(s.course),
		assessment:   controller.NewAssessmentController(s.assessment, s.badge),
		subscription: controller.NewSubscriptionController(s.subscription),
		certificate:  controller.NewCertificateController(s.certificate),
		liveSession:  controller.NewLiveSessionController(s.liveSession),
		dashboard:    controller.NewDashboardController(s.dashboard),
		media:        controller.NewMediaController(s.media),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// Payment settlement and subscription expiry.
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.subscription.PollPendingPayments(context.Background()); err != nil {
				logger.Log.Error("payment sweep error", zap.Error(err))
			}
		}
	}()

	// Live session status transitions.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		for range ticker.C {
			s.liveSession.SweepStatuses()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("inr99-academy", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		c, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config = c
		for _, cb := range app.configCallbacks {
			cb(c)
		}
		logger.Log.Info("Configuration reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
