package app

import (
	"context"
	"edu_portal_backend/internal/config"
	"edu_portal_backend/internal/controller"
	"edu_portal_backend/internal/event"
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/repository"
	"edu_portal_backend/internal/service"
	"edu_portal_backend/internal/session"
	"edu_portal_backend/pkg/database"
	"edu_portal_backend/pkg/logger"
	"edu_portal_backend/pkg/monitoring"
	"edu_portal_backend/pkg/security"
	"edu_portal_backend/pkg/tracing"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	Gateway   *gateway.Gateway
	Publisher event.Publisher
	Storage   gateway.StorageProvider

	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type services struct {
	sessions *session.Controller
	courses  *service.CourseService
	quizzes  *service.QuizService
	content  *service.ContentService
}

type controllers struct {
	auth    *controller.AuthController
	profile *controller.ProfileController
	course  *controller.CourseController
	quiz    *controller.QuizController
	content *controller.ContentController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置文件变化后调用，只处理可热更新的部分
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// initGateway 数据库不可用时不创建在线后端，网关直接进入离线模式
func (a *App) initGateway(ctx context.Context, cfg *config.Config) *gateway.Gateway {
	offline := gateway.NewOfflineBackend(cfg.Gateway.OfflineFileURL)

	var live gateway.Backend
	if a.DB != nil {
		storage, err := gateway.NewStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("Object storage unavailable, falling back to local disk",
				zap.String("type", cfg.Storage.Type), zap.Error(err))
		}
		a.Storage = storage
		live = gateway.NewLiveBackend(
			repository.NewUserRepository(a.DB),
			repository.NewProfileRepository(a.DB),
			repository.NewCourseRepository(a.DB),
			repository.NewTestRepository(a.DB),
			storage,
		)
	}

	gw := gateway.New(live, offline, cfg.Gateway.ProbeTimeout)
	gw.Probe(ctx)
	return gw
}

func (a *App) initSessionStore(cfg *config.Config) session.Store {
	if a.Redis == nil {
		logger.Log.Warn("Redis unavailable, sessions are kept in memory")
		return session.NewMemoryStore()
	}
	return session.NewRedisStore(a.Redis, cfg.JWT.ExpireTime)
}

func (a *App) initServices(cfg *config.Config, store session.Store) *services {
	return &services{
		sessions: session.NewController(a.Gateway, store),
		courses:  service.NewCourseService(a.Gateway),
		quizzes:  service.NewQuizService(a.Gateway, a.Publisher),
		content:  service.NewContentService(a.Gateway),
	}
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.sessions, cfg),
		profile: controller.NewProfileController(a.Gateway),
		course:  controller.NewCourseController(s.courses),
		quiz:    controller.NewQuizController(s.quizzes),
		content: controller.NewContentController(s.content),
		health:  controller.NewHealthController(a.DB, a.Gateway),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 数据库、Redis 和对象存储不可用时降级运行；追踪或消息队列初始化失败视为启动失败
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	monitoring.Init()

	app := &App{Config: cfg}
	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
	})

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		app.tracer = tp
	}

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Warn("Failed to initialize database", zap.Error(err))
	} else {
		app.DB = db
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Failed to initialize redis", zap.Error(err))
	} else {
		app.Redis = rdb
	}

	publisher, err := event.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init event publisher: %w", err)
	}
	app.Publisher = publisher

	app.Gateway = app.initGateway(ctx, cfg)

	app.services = app.initServices(cfg, app.initSessionStore(cfg))
	ctrls := app.initControllers(app.services, cfg)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	app.mountLocalStorage(router)

	return app, nil
}

// mountLocalStorage 实际使用本地磁盘存储时（含远端存储初始化失败的回退）提供文件访问
func (a *App) mountLocalStorage(router *gin.Engine) {
	local, ok := a.Storage.(*gateway.LocalStorageProvider)
	if !ok {
		return
	}

	prefix := "/uploads"
	if u, err := url.Parse(local.BaseURL); err == nil && strings.TrimRight(u.Path, "/") != "" {
		prefix = strings.TrimRight(u.Path, "/")
	}
	router.Static(prefix, local.Root)
	logger.Log.Info("Serving local uploads", zap.String("prefix", prefix), zap.String("root", local.Root))
}

// Run 阻塞直到 ctx 取消或监听失败
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port), zap.String("gateway", a.Gateway.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		a.Close()
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server...")

	// 关闭服务（设置5秒的超时时间）
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("Server exiting")
	return nil
}

// Close 释放外部连接，可重复调用
func (a *App) Close() {
	if a.services != nil {
		a.services.quizzes.Shutdown()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.Log.Warn("Failed to close event publisher", zap.Error(err))
		}
		a.Publisher = nil
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
		a.tracer = nil
	}
	if a.Redis != nil {
		a.Redis.Close()
		a.Redis = nil
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
		a.DB = nil
	}
	logger.Log.Sync()
}
