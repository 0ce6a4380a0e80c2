package app

import (
	"context"
	"edu_translator_backend/internal/config"
	"edu_translator_backend/internal/controller"
	"edu_translator_backend/internal/middleware"
	"edu_translator_backend/internal/repository"
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/configwatcher"
	"edu_translator_backend/pkg/database"
	"edu_translator_backend/pkg/logger"
	"edu_translator_backend/pkg/monitoring"
	"edu_translator_backend/pkg/security"
	"edu_translator_backend/pkg/tracing"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	closers         []func()
	configCallbacks []func(*config.Config)
}

type repositories struct {
	store        *repository.RecordStore
	assignment   *repository.AssignmentRepository
	submission   *repository.SubmissionRepository
	reflection   *repository.ReflectionRepository
	glossary     *repository.GlossaryRepository
	translations *repository.TranslationLogRepository
}

type services struct {
	access      *service.AccessService
	session     *service.SessionService
	feedback    *service.FeedbackService
	assignment  *service.AssignmentService
	workflow    *service.WorkflowService
	tutor       *service.TutorService
	quiz        *service.QuizService
	learningLog *service.LearningLogService
	dashboard   *service.DashboardService
	export      *service.ExportService
	storage     *service.StorageService
}

type controllers struct {
	session     *controller.SessionController
	tutor       *controller.TutorController
	quiz        *controller.QuizController
	learningLog *controller.LearningLogController
	assignment  *controller.AssignmentController
	workflow    *controller.WorkflowController
	dashboard   *controller.DashboardController
	export      *controller.ExportController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(cfg *config.Config) (*repositories, error) {
	store, err := repository.NewRecordStore(cfg.Records.Dir)
	if err != nil {
		return nil, err
	}
	return &repositories{
		store:        store,
		assignment:   repository.NewAssignmentRepository(store),
		submission:   repository.NewSubmissionRepository(store),
		reflection:   repository.NewReflectionRepository(store),
		glossary:     repository.NewGlossaryRepository(store),
		translations: repository.NewTranslationLogRepository(store),
	}, nil
}

// initSessionStore 按配置选择会话存储
func (a *App) initSessionStore(cfg *config.Config) (service.SessionStore, error) {
	ttl := cfg.Session.IdleTTL()
	switch cfg.Session.Store {
	case util.SessionStoreRedis:
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.Redis = rdb
		a.closers = append(a.closers, func() { rdb.Close() })
		logger.Log.Info("Redis session store ready", zap.String("addr", rdb.Options().Addr))
		return service.NewRedisSessionStore(rdb, ttl), nil
	case util.SessionStoreBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.Session.BoltPath), 0755); err != nil {
			return nil, err
		}
		store, err := service.NewBoltSessionStore(cfg.Session.BoltPath, ttl)
		if err != nil {
			return nil, fmt.Errorf("open session db: %w", err)
		}
		a.closers = append(a.closers, func() { store.Close() })
		a.startBoltPurge(store)
		return store, nil
	default:
		store := service.NewMemorySessionStore(ttl)
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

func (a *App) startBoltPurge(store *service.BoltSessionStore) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				n, err := store.Purge()
				if err != nil {
					logger.Log.Error("session purge error", zap.Error(err))
				} else if n > 0 {
					logger.Log.Debug("expired sessions purged", zap.Int("count", n))
				}
			}
		}
	}()
}

// startLockSweep 空闲过期的会话由存储自行淘汰，这里回收它们留下的锁
func (a *App) startLockSweep(sessions *service.SessionService) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.SweepLocks(a.ctx); n > 0 {
					logger.Log.Debug("session locks released", zap.Int("count", n))
				}
			}
		}
	}()
}

func (a *App) initServices(repos *repositories, cfg *config.Config, llm service.LLMClient, sessions service.SessionStore) *services {
	s := &services{}

	s.session = service.NewSessionService(sessions)
	s.access = service.NewAccessService(cfg.Access, s.session)
	s.feedback = service.NewFeedbackService(llm)
	s.assignment = service.NewAssignmentService(repos.assignment, s.feedback)
	s.workflow = service.NewWorkflowService(s.assignment, repos.submission, s.feedback)
	s.learningLog = service.NewLearningLogService(repos.reflection, repos.glossary, repos.translations)
	s.tutor = service.NewTutorService(llm, s.learningLog)
	s.quiz = service.NewQuizService(llm)
	s.dashboard = service.NewDashboardService(repos.submission)
	s.storage = service.NewStorageService(a.ctx, &cfg.Storage)
	s.export = service.NewExportService(repos.store, s.learningLog, s.storage)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.access.UpdateConfig(newCfg.Access)
	})

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		session:     controller.NewSessionController(s.access, s.session),
		tutor:       controller.NewTutorController(s.tutor),
		quiz:        controller.NewQuizController(s.quiz, s.session),
		learningLog: controller.NewLearningLogController(s.learningLog),
		assignment:  controller.NewAssignmentController(s.assignment),
		workflow:    controller.NewWorkflowController(s.workflow, s.session),
		dashboard:   controller.NewDashboardController(s.dashboard),
		export:      controller.NewExportController(s.export),
		health:      controller.NewHealthController(cfg.Records.Dir),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.BodyLimit(maxBodyBytes))
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(middleware.TraceAttributes))
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build 组装应用；llm 由调用方注入，测试时可替换
func build(cfg *config.Config, llm service.LLMClient) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: cfg, ctx: ctx, cancel: cancel}

	repos, err := app.initRepositories(cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("init record store: %w", err)
	}

	sessions, err := app.initSessionStore(cfg)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}

	app.services = app.initServices(repos, cfg, llm, sessions)
	app.startLockSweep(app.services.session)
	controllers := app.initControllers(app.services, cfg)

	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := build(cfg, service.NewAIService(cfg.AI))
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// WatchConfig 配置文件变更时通知已注册的回调
func (a *App) WatchConfig(configFile string) {
	err := configwatcher.WatchConfig(a.ctx, configFile, func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})
	if err != nil {
		logger.Log.Warn("Config hot reload disabled", zap.Error(err))
	}
}

// Close 释放后台任务与存储连接
func (a *App) Close() {
	a.cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	a.Close()

	logger.Log.Info("Server exiting")
}
