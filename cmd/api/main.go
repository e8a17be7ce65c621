package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trainlog/internal/certificate"
	"trainlog/internal/config"
	"trainlog/internal/httpapi"
	"trainlog/internal/httpmiddleware"
	"trainlog/internal/metrics"
	"trainlog/internal/session"
	"trainlog/internal/store"
	"trainlog/internal/stream"
	"trainlog/internal/training"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	metrics.Register()

	feed := stream.New(64)
	recStore := training.NewStore(feed)
	certStore := certificate.NewStore()
	holder := session.NewHolder(cfg.AuthDelay)
	users := session.NewDirectory()

	if cfg.Seed {
		demo := session.User{
			ID:    "demo-teacher",
			Name:  "홍길동",
			Email: "demo@school.kr",
			Role:  session.RoleTeacher,
		}
		users.Add(demo)
		n := training.Seed(recStore, demo.ID, time.Now())
		log.Printf("seeded %d mock training records", n)
	}
	metrics.RecordCount.Set(float64(recStore.Len()))
	metrics.TotalHours.Set(recStore.TotalHours())

	// Redis only backs the shared rate limiter; records stay in memory.
	var rds *store.Redis
	var limiter httpmiddleware.Limiter
	if cfg.RateLimitBackend == "redis" {
		rds = store.NewRedis(cfg.RedisAddr)
		defer rds.Close()
		limiter = httpmiddleware.NewRedisLimiter(rds.Client, "trainlog:ratelimit", cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store change feed: refresh gauges and log every mutation.
	go func() {
		for evt := range feed.Consume(ctx) {
			metrics.StoreMutations.WithLabelValues(string(evt.Op)).Inc()
			metrics.RecordCount.Set(float64(recStore.Len()))
			metrics.TotalHours.Set(recStore.TotalHours())
			log.Printf("store %s %s (records=%d)", evt.Op, evt.RecordID, recStore.Len())
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.Metrics())
	r.Use(httpmiddleware.RateLimit(limiter))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		resp := gin.H{"status": "ok", "records": recStore.Len()}
		if rds != nil {
			redisHealthy := rds.Healthy(c.Request.Context())
			resp["redis"] = redisHealthy
			if !redisHealthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, resp)
	})

	api := httpapi.NewServer(cfg, recStore, certStore, holder, users)
	api.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
