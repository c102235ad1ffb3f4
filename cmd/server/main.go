package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "EmergencyAssist/internal/handler"
	"EmergencyAssist/internal/listeners"
	"EmergencyAssist/internal/services"
	"EmergencyAssist/internal/storage"
	"EmergencyAssist/pkg/backup"
	"EmergencyAssist/pkg/cache"
	"EmergencyAssist/pkg/config"
	"EmergencyAssist/pkg/i18n"
	"EmergencyAssist/pkg/llm"
	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/metrics"
	"EmergencyAssist/pkg/middleware"
	"EmergencyAssist/pkg/response"
	"EmergencyAssist/pkg/scheduler"
	"EmergencyAssist/pkg/search"
	"EmergencyAssist/pkg/sse"
	"EmergencyAssist/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.GlobalConfig
	if err := logger.Init(cfg.Log, cfg.Mode); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 指标
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.NewMetrics(prometheus.NewRegistry())
	}

	// 2. 缓存
	c, err := cache.NewCache(cache.Config{
		Type:    cfg.CacheType,
		Layered: cfg.CacheLayered,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		Local: cache.DefaultLocalConfig(),
	})
	if err != nil {
		return err
	}
	defer c.Close()
	idem := idempotencyStore(c)
	if idem != c {
		defer idem.Close()
	}

	// 3. 存储
	sig := util.Sig()
	store, err := openStorage(ctx, cfg, sig)
	if err != nil {
		return err
	}
	store = storage.NewCachedStorage(storage.NewObserved(store, m), c, 10*time.Minute, m)

	// 4. 模型与服务
	provider := openProvider(ctx, cfg)
	assistant := services.NewAssistant(provider, store, m)
	translator := services.NewTranslator(provider, c, 24*time.Hour, m)

	var protocolSearch *services.ProtocolSearch
	if cfg.SearchEnabled {
		engine, err := search.New(search.Config{QueryTimeout: 2 * time.Second, BatchSize: 100}, search.ProtocolMapping())
		if err != nil {
			return err
		}
		protocolSearch = services.NewProtocolSearch(engine, store)
		defer protocolSearch.Close()
		if err := protocolSearch.Reindex(ctx); err != nil {
			logger.Warn("index protocols failed", zap.Error(err))
		}
	}

	tr, err := i18n.NewI18nSupport("en")
	if err != nil {
		return err
	}

	hub := sse.NewHub(30 * time.Second)
	listeners.InitUserListeners(sig)
	listeners.InitSessionListeners(sig, m, hub)

	// 5. HTTP
	if cfg.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	response.UseJSONFieldNames()
	engine := gin.New()
	engine.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	if m != nil {
		engine.Use(metrics.Middleware(m))
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}
	engine.Use(newRateLimiter(cfg, c, m).Middleware())
	if cfg.LanguageEnabled {
		engine.Use(middleware.LanguageMiddleware(tr.Languages()...))
	}

	handlers.NewHandlers(handlers.Options{
		Store:       store,
		Assistant:   assistant,
		Translator:  translator,
		Search:      protocolSearch,
		I18n:        tr,
		Events:      hub,
		Idempotency: middleware.IdempotencyMiddleware(middleware.IdempotencyConfig{Store: idem}),
		Prefix:      cfg.APIPrefix,
		StorageName: storageName(cfg),
	}).Register(engine)

	// 6. 定时任务
	cr := scheduler.NewCron(time.Local)
	if _, err := cr.AddFunc("@every 1m", func(ctx context.Context) {
		n, err := store.CountActiveSessions(ctx)
		if err != nil {
			logger.Warn("count active sessions failed", zap.Error(err))
			return
		}
		m.SetActiveSessions(n)
	}); err != nil {
		return err
	}
	if cfg.BackupEnabled {
		if _, err := cr.AddFunc(cfg.BackupSchedule, func(context.Context) {
			path, err := backup.Execute(backup.Options{Driver: cfg.DBDriver, DSN: cfg.DSN, Dir: cfg.BackupPath, Keep: 7})
			if err != nil {
				logger.Warn("database backup failed", zap.Error(err))
				return
			}
			logger.Info("database backup written", zap.String("path", path))
		}); err != nil {
			return err
		}
	}
	cr.Start()
	defer cr.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr), zap.String("storage", storageName(cfg)), zap.Bool("ai", provider != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	// 先断开事件流，否则 Shutdown 会一直等待长连接
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func storageName(cfg *config.Config) string {
	if cfg.StorageDriver == "db" {
		return cfg.DBDriver
	}
	return "memory"
}

// openStorage STORAGE_DRIVER=db 时使用数据库，否则为内存存储
func openStorage(ctx context.Context, cfg *config.Config, sig *util.Signals) (storage.Storage, error) {
	if cfg.StorageDriver != "db" {
		return storage.NewMemStorageWithSignals(sig), nil
	}
	db, err := util.InitDatabase(cfg.DBDriver, cfg.DSN, cfg.Mode == gin.DebugMode)
	if err != nil {
		return nil, err
	}
	gs := storage.NewGormStorageWithSignals(db, sig)
	if err := gs.Migrate(ctx); err != nil {
		return nil, err
	}
	return gs, nil
}

// openProvider 未配置密钥时返回 nil，所有 AI 接口走降级逻辑
func openProvider(ctx context.Context, cfg *config.Config) llm.Provider {
	lg := logrus.StandardLogger()
	if cfg.Mode == gin.ReleaseMode {
		lg.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		lg.SetLevel(lvl)
	}
	p, err := llm.NewProvider(ctx, llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMKey(),
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.LLMModel,
		Timeout:  cfg.LLMTimeout,
	}, logrus.NewEntry(lg).WithField("component", "llm"))
	if errors.Is(err, llm.ErrNotConfigured) {
		logger.Warn("no AI provider configured, using fallbacks")
		return nil
	}
	if err != nil {
		logger.Warn("init AI provider failed, using fallbacks", zap.Error(err))
		return nil
	}
	return p
}

// idempotencyStore 幂等键不能被容量淘汰：redis 直接复用，本地模式单独使用只按过期清理的 go-cache
func idempotencyStore(c cache.Cache) cache.Cache {
	if _, ok := cache.RedisClient(c); ok {
		return c
	}
	return cache.NewGoCache(cache.LocalConfig{DefaultExpiration: 10 * time.Minute, CleanupInterval: time.Minute})
}

func newRateLimiter(cfg *config.Config, c cache.Cache, m *metrics.Metrics) *middleware.RateLimiter {
	limiterCfg := middleware.RateLimiterConfig{
		Rate:       cfg.RateLimit,
		Identifier: "ip",
		SkipPaths:  []string{"/metrics", cfg.APIPrefix + "/system/health"},
		AddHeaders: true,
	}
	var rl *middleware.RateLimiter
	if client, ok := cache.RedisClient(c); ok {
		store, err := middleware.NewRedisStore(client)
		if err != nil {
			logger.Warn("redis rate limit store failed, using memory", zap.Error(err))
		} else {
			rl = middleware.NewRateLimiter(limiterCfg, store)
		}
	}
	if rl == nil {
		rl = middleware.NewRateLimiter(limiterCfg, nil)
	}
	if m != nil {
		rl.WithObserver(m)
	}
	return rl
}
