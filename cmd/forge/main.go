package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"forge/internal/auth"
	"forge/internal/cache"
	"forge/internal/config"
	"forge/internal/content"
	cronrunner "forge/internal/cron"
	"forge/internal/db"
	"forge/internal/handler"
	"forge/internal/logger"
	"forge/internal/outbound"
	"forge/internal/service"
	"forge/internal/store"
	"forge/internal/store/gormstore"
	"forge/internal/store/memstore"

	_ "forge/docs"
)

func main() {
	cfgPath := os.Getenv("FORGE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("FORGE_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var recordStore store.RecordStore
	var dbConn *db.DB
	if strings.EqualFold(cfg.Store.Backend, "memory") {
		recordStore = memstore.New()
		log.Info("using in-memory document store")
	} else {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			log.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)
		if err := gormstore.AutoMigrate(dbConn.Gorm); err != nil {
			log.Fatal("auto-migrate failed", zap.Error(err))
		}
		recordStore = gormstore.New(dbConn.Gorm)
	}

	var cacheStore cache.Store
	if strings.EqualFold(cfg.Cache.Backend, "redis") && cfg.Cache.RedisAddr != "" {
		cacheStore = cache.NewRedisStore(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		log.Info("using redis export cache", zap.String("addr", cfg.Cache.RedisAddr))
	} else {
		cacheStore = cache.NewMemoryStore()
	}

	strategies := &content.Strategies{Store: recordStore, Logger: log}
	posts := &content.Posts{Store: recordStore, Logger: log}
	subscriber := outbound.New(recordStore, log, cfg.Outbound)

	if cfg.Seed.Enabled {
		seeder := &service.Seeder{Strategies: strategies, Posts: posts, Logger: log}
		if err := seeder.SeedIfEmpty(context.Background()); err != nil {
			log.Warn("sample content seed failed", zap.Error(err))
		}
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	jwtSigner := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), TokenTTL: cfg.Auth.TokenTTL}
	requireAuth := auth.RequireAuth(jwtSigner)

	healthHandler := &handler.HealthHandler{}
	if dbConn != nil {
		healthHandler.DB = dbConn.Gorm
	}
	healthHandler.Register(engine)

	authHandler := &handler.AuthHandler{
		Provider: auth.StaticProvider{Email: cfg.Auth.AdminEmail, Password: cfg.Auth.AdminPassword},
		JWT:      jwtSigner,
		Logger:   log,
	}
	authHandler.Register(engine)

	strategyHandler := &handler.StrategyHandler{Strategies: strategies, Logger: log}
	strategyHandler.Register(engine, requireAuth)
	postHandler := &handler.PostHandler{Posts: posts, Logger: log}
	postHandler.Register(engine, requireAuth)
	exportHandler := &handler.ExportHandler{
		Strategies: strategies,
		Posts:      posts,
		Cache:      cacheStore,
		TTL:        cfg.Cache.TTL,
		Logger:     log,
	}
	exportHandler.Register(engine)
	waitlistHandler := &handler.WaitlistHandler{Subscriber: subscriber, Logger: log}
	waitlistHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warmer := &service.ExportWarmer{
		Strategies: strategies,
		Posts:      posts,
		Cache:      cacheStore,
		Logger:     log,
		TTL:        cfg.Cache.TTL,
	}
	if err := warmer.Warm(ctx); err != nil {
		log.Warn("initial export warm failed", zap.Error(err))
	}

	cronRunner := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled {
		_, err := cronRunner.Add("export_warm", cfg.Cron.ExportWarm, func(ctx context.Context) {
			if err := warmer.Warm(ctx); err != nil {
				log.Warn("export warm failed", zap.Error(err))
			}
		})
		if err != nil {
			log.Warn("cron register export warm failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
