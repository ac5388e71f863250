package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harryzhoudev/portfolio-api/handlers"
	"github.com/harryzhoudev/portfolio-api/internal/admin"
	"github.com/harryzhoudev/portfolio-api/internal/config"
	"github.com/harryzhoudev/portfolio-api/internal/content/handler"
	"github.com/harryzhoudev/portfolio-api/internal/content/repository"
	"github.com/harryzhoudev/portfolio-api/internal/content/service"
	"github.com/harryzhoudev/portfolio-api/internal/database"
	"github.com/harryzhoudev/portfolio-api/internal/oidc"
	"github.com/harryzhoudev/portfolio-api/internal/sessions"
	"github.com/harryzhoudev/portfolio-api/internal/storage"
	"github.com/harryzhoudev/portfolio-api/internal/tokens"
	"github.com/harryzhoudev/portfolio-api/pkg/logger"
	"github.com/harryzhoudev/portfolio-api/pkg/metrics"
	"github.com/harryzhoudev/portfolio-api/pkg/middleware"
)

var startTime = time.Now()

// assetBackend is what the server needs from the object store, including the readiness ping.
type assetBackend interface {
	service.AssetStore
	Ping(ctx context.Context) error
}

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	if *hashPassword != "" {
		h, err := admin.HashPassword(*hashPassword)
		if err != nil {
			logger.Fatalf("hash password: %v", err)
		}
		fmt.Println(h)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatalf("invalid server config: %v", err)
	}
	logger.Infof("config loaded: env=%s minio=%v redis=%v admin=%v oidc=%v",
		cfg.Server.Environment, cfg.Storage.Configured(), cfg.Redis.Addr() != "", cfg.Admin.Enabled(), cfg.OIDC.Issuer != "")

	if !cfg.Server.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// MongoDB: content documents and, without Redis, refresh sessions
	var mongoClient *mongo.Client
	var repo repository.Repository
	mongoClient, err = database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, func(attempt int, err error) {
		logger.Warnf("attempt %d: failed to connect to MongoDB: %v", attempt, err)
	})
	switch {
	case err == nil:
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		repo = repository.NewMongoRepo(mongoClient.Database(cfg.MongoDB.Database))
		logger.Infof("connected to MongoDB database %q", cfg.MongoDB.Database)
	case cfg.Server.Development():
		logger.Warnf("MongoDB unavailable (%v); using in-memory content store", err)
		repo = repository.NewMemoryRepo()
	default:
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}

	assets := connectStorage(ctx, cfg)

	// Redis is optional: refresh sessions, access-token blacklist, shared rate limits
	var redisClient *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		c := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = c.Close()
		} else {
			redisClient = c
			defer func() { _ = redisClient.Close() }()
			logger.Infof("connected to Redis at %s", addr)
		}
	}

	var sessionRepo sessions.Repository
	var blacklist *sessions.Blacklist
	switch {
	case redisClient != nil:
		sessionRepo = sessions.NewRedisRepository(redisClient, "")
		blacklist = sessions.NewBlacklist(redisClient)
	case mongoClient != nil:
		mr := sessions.NewMongoRepository(mongoClient.Database(cfg.MongoDB.Database).Collection("sessions"))
		if err := mr.EnsureIndexes(ctx); err != nil {
			logger.Warnf("creating session indexes: %v", err)
		}
		sessionRepo = mr
	default:
		sessionRepo = sessions.NewMemoryRepository()
	}
	sessionsSvc := sessions.NewService(sessionRepo, cfg.JWT.RefreshTokenTTL)

	protect := buildProtect(ctx, cfg, blacklist)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.CORS.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		r.Use(rateLimiter(cfg, redisClient, "global", cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readiness(cfg, mongoClient, assets, redisClient))

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	api := r.Group("/api")

	contentSvc := service.NewService(repo, assets, service.Options{
		Folder:            cfg.Storage.Folder,
		MaxUploadBytes:    cfg.Upload.MaxBytes,
		ResumeDownloadURL: cfg.Server.PublicURL + "/api/about/resume/download",
	})
	handler.New(contentSvc, cfg.Upload.MaxBytes, cfg.Upload.MaxMemory).Register(api, protect)

	authHandler := handlers.NewAuthHandler(
		admin.NewAuthenticator(cfg.Admin.Email, cfg.Admin.PasswordHash),
		sessionsSvc,
		blacklist,
		handlers.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, AccessTTL: cfg.JWT.AccessTokenTTL},
	)
	authHandler.Register(api, rateLimiter(cfg, redisClient, "login", cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("portfolio API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

func connectStorage(ctx context.Context, cfg *config.Config) assetBackend {
	if cfg.Storage.Configured() {
		s, err := storage.NewMinIOStorage(ctx, &cfg.Storage)
		if err == nil {
			logger.Infof("asset store: MinIO bucket %q at %s", cfg.Storage.Bucket, cfg.Storage.Endpoint)
			return s
		}
		if !cfg.Server.Development() {
			logger.Fatalf("could not initialise MinIO: %v", err)
		}
		logger.Warnf("MinIO unavailable (%v); using in-memory asset store", err)
	} else if !cfg.Server.Development() {
		logger.Fatalf("MINIO_ENDPOINT and MINIO_BUCKET are required outside development")
	}
	return storage.NewMemoryStorage(cfg.Server.PublicURL)
}

// buildProtect returns the middleware guarding write routes. It returns nil,
// leaving writes open, only for a development server without an admin.
func buildProtect(ctx context.Context, cfg *config.Config, blacklist *sessions.Blacklist) gin.HandlerFunc {
	if cfg.Admin.Email == "" {
		if !cfg.Server.Development() {
			logger.Fatalf("refusing to serve unprotected write routes: %v", config.ErrAdminRequired)
		}
		return nil
	}
	chain := middleware.ChainVerifier{tokens.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)}
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.Admin.Email)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			chain = append(chain, ver)
			logger.Infof("accepting admin ID tokens from %s", cfg.OIDC.Issuer)
		}
	}
	var revoked middleware.RevocationCheck
	if blacklist != nil {
		revoked = blacklist.IsRevoked
	}
	return middleware.AuthMiddleware(chain, revoked)
}

func rateLimiter(cfg *config.Config, client *redis.Client, scope string, rps float64, burst int) gin.HandlerFunc {
	if cfg.RateLimit.UseRedis && client != nil {
		return middleware.RedisRateLimitMiddleware(client, scope, rps, burst, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	}
	return middleware.RateLimitMiddleware(scope, rps, burst)
}

// readiness returns 200 only when every configured dependency answers.
func readiness(cfg *config.Config, mongoClient *mongo.Client, assets assetBackend, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		deps := gin.H{}
		ready := true
		check := func(name string, err error) {
			deps[name] = err == nil
			if err != nil {
				ready = false
				logger.Op("ready").Warnf("%s not ready: %v", name, err)
			}
		}

		if mongoClient != nil {
			check("mongo", database.Ping(ctx, mongoClient))
		} else {
			deps["mongo"] = "memory"
		}
		check("storage", assets.Ping(ctx))
		if cfg.Redis.Addr() != "" {
			if redisClient == nil {
				check("redis", errors.New("not connected"))
			} else {
				check("redis", redisClient.Ping(ctx).Err())
			}
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	}
}
