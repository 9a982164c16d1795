package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worksheet_edu_backend/internal/config"
	"worksheet_edu_backend/internal/controller"
	"worksheet_edu_backend/internal/repository"
	"worksheet_edu_backend/internal/service"
	"worksheet_edu_backend/internal/util"
	"worksheet_edu_backend/pkg/configwatcher"
	"worksheet_edu_backend/pkg/database"
	"worksheet_edu_backend/pkg/logger"
	"worksheet_edu_backend/pkg/monitoring"
	"worksheet_edu_backend/pkg/security"
	"worksheet_edu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user       *repository.UserRepository
	class      *repository.ClassRepository
	diagnostic *repository.DiagnosticRepository
	document   *repository.WorksheetDocumentRepository
	preset     *repository.PresetRepository
	run        *repository.RunRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	placement    *service.PlacementService
	ai           *service.AIService
	question     *service.QuestionService
	notification *service.NotificationService
	diagnostic   *service.DiagnosticService
	class        *service.ClassService
	worksheet    *service.WorksheetService
	preset       *service.PresetService
}

type controllers struct {
	auth       *controller.AuthController
	class      *controller.ClassController
	diagnostic *controller.DiagnosticController
	worksheet  *controller.WorksheetController
	preset     *controller.PresetController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		class:      repository.NewClassRepository(db),
		diagnostic: repository.NewDiagnosticRepository(db),
		document:   repository.NewWorksheetDocumentRepository(db),
		preset:     repository.NewPresetRepository(rdb),
		run:        repository.NewRunRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.placement = service.NewPlacementService()
	s.ai = service.NewAIService(cfg.Generator, cfg.Images)
	s.question = service.NewQuestionService(s.ai, s.ai)
	s.notification = service.NewNotificationService(cfg.Mail)
	s.diagnostic = service.NewDiagnosticService(repos.diagnostic, s.placement, s.notification)
	s.class = service.NewClassService(repos.class, s.diagnostic)
	s.worksheet = service.NewWorksheetService(s.placement, s.question, s.storage, repos.document, repos.run)
	s.preset = service.NewPresetService(repos.preset)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		class:      controller.NewClassController(s.class),
		diagnostic: controller.NewDiagnosticController(s.diagnostic, s.auth),
		worksheet:  controller.NewWorksheetController(s.worksheet),
		preset:     controller.NewPresetController(s.preset),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("worksheet-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/downloads", cfg.Storage.LocalPath)
	}

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		if c, ok := newCfg.(*config.Config); ok {
			app.Config = c
			logger.Log.Info("configuration reloaded")
		}
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

	log.Println("Server exiting")
}
