package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apirest "github.com/FortunateNaruto/pokemon-ranger/api/rest"
	"github.com/FortunateNaruto/pokemon-ranger/api/sse"
	"github.com/FortunateNaruto/pokemon-ranger/audit"
	"github.com/FortunateNaruto/pokemon-ranger/cache"
	"github.com/FortunateNaruto/pokemon-ranger/config"
	dbadapter "github.com/FortunateNaruto/pokemon-ranger/db"
	"github.com/FortunateNaruto/pokemon-ranger/game/tracker"
	mw "github.com/FortunateNaruto/pokemon-ranger/middleware"
	"github.com/FortunateNaruto/pokemon-ranger/model"
	"github.com/FortunateNaruto/pokemon-ranger/resource"
	"github.com/FortunateNaruto/pokemon-ranger/scheduler"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Species resources ----
	var species *resource.SpeciesLoader
	if cfg.Ranger.SpeciesPath != "" {
		species = resource.NewLoader(cfg.Ranger.SpeciesPath, logger)
		if err := species.Load(); err != nil {
			logger.Warn("species load warning", zap.Error(err))
			species = nil
		}
	} else {
		logger.Info("no species_path configured; trackers need inline base stats")
	}

	// ---- Registry ----
	registry := tracker.NewRegistry()
	if count, err := apirest.RebuildAll(db, registry); err != nil {
		logger.Warn("initial registry rebuild failed", zap.Error(err))
	} else {
		logger.Info("registry built", zap.Int("trackers", count))
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	rebuildInterval := time.Duration(cfg.Ranger.RebuildIntervalS) * time.Second
	sched.AddTicker("registry_rebuild", rebuildInterval, func() {
		if count, err := apirest.RebuildAll(db, registry); err != nil {
			logger.Error("periodic registry rebuild failed", zap.Error(err))
		} else {
			logger.Debug("registry rebuilt", zap.Int("trackers", count))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	trackerH := apirest.NewTrackerHandler(db, species, registry, c, pubsub, auditSvc, cfg.Ranger, logger)
	calcH := apirest.NewCalcHandler(db, registry, c)
	adminH := apirest.NewAdminHandler(db, registry, sched, species, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		trackersG := api.Group("/trackers")
		trackersG.Use(mw.Auth(cfg.Security, c))
		trackersG.GET("", trackerH.List)
		trackersG.POST("", trackerH.Create)
		trackersG.GET("/:id", trackerH.Get)
		trackersG.DELETE("/:id", trackerH.Delete)
		trackersG.PUT("/:id/observations", trackerH.PutObservation)
		trackersG.DELETE("/:id/observations", trackerH.ResetObservations)
		trackersG.PUT("/:id/overrides", trackerH.PutOverrides)
		trackersG.GET("/:id/calculations", calcH.GetCalculations)
		trackersG.GET("/:id/possible-values", calcH.GetPossibleValues)
		trackersG.GET("/:id/variables", trackerH.ListVariables)
		trackersG.PUT("/:id/variables", trackerH.PutVariable)
		trackersG.DELETE("/:id/variables/:name", trackerH.DeleteVariable)

		// Species catalog (read-only; auth like any other api surface).
		api.GET("/species", mw.Auth(cfg.Security, c), func(ctx *gin.Context) {
			if species == nil {
				ctx.JSON(200, gin.H{"species": []string{}})
				return
			}
			ctx.JSON(200, gin.H{"species": species.Names()})
		})

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Server.AdminAllowIPs))
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/recalc", adminH.RecalcAll)
		adminG.GET("/accounts", adminH.ListAccounts)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)
	r.GET("/sse", sseH.ServeSSE)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
