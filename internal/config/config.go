package config

import (
	"errors"
	"strings"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/storage"
	"github.com/harryzhoudev/portfolio-api/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Storage   storage.MinIOConfig
	Upload    UploadConfig
	Admin     AdminConfig
	JWT       JWTConfig
	OIDC      OIDCConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Reconcile ReconcileConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// PublicURL is the externally visible API origin; used for resume download links.
	PublicURL string
}

// Development reports whether in-memory fallbacks are acceptable.
func (s ServerConfig) Development() bool {
	return s.Environment == "development" || s.Environment == "test"
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type UploadConfig struct {
	MaxBytes  int64
	MaxMemory int64
}

// AdminConfig is the single administrator credential. PasswordHash is bcrypt.
type AdminConfig struct {
	Email        string
	PasswordHash string
}

// Enabled reports whether write routes should be protected.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.PasswordHash != ""
}

type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type OIDCConfig struct {
	Issuer   string
	ClientID string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
	LoginRPS      float64
	LoginBurst    int
}

type ReconcileConfig struct {
	GracePeriod time.Duration
	// PushgatewayURL receives the sweep report; empty disables the push.
	PushgatewayURL string
}

var ErrMissingMongoURI = errors.New("MONGODB_URI (or MONGO_URI) is required")

// ErrAdminRequired means the server would run outside development with open
// content write routes.
var ErrAdminRequired = errors.New("ADMIN_EMAIL is required outside development")

// LoadConfig loads configuration from environment variables and an optional .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "portfolio")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("MINIO_BUCKET", "portfolio")
	v.SetDefault("MINIO_REGION", "us-east-1")
	v.SetDefault("ASSET_FOLDER", "portfolio")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("UPLOAD_MAX_MEMORY", 8<<20)
	v.SetDefault("JWT_ISSUER", "portfolio-api")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://harryzhoudev.onrender.com")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 0.2)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)
	v.SetDefault("RECONCILE_GRACE_MINUTES", 60)

	mongoURI := v.GetString("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = v.GetString("MONGO_URI")
	}
	if mongoURI == "" {
		return nil, ErrMissingMongoURI
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			PublicURL:    strings.TrimRight(v.GetString("SERVER_PUBLIC_URL"), "/"),
		},
		MongoDB: MongoDBConfig{
			URI:      mongoURI,
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: storage.MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Region:    v.GetString("MINIO_REGION"),
			PublicURL: v.GetString("MINIO_PUBLIC_URL"),
			Folder:    strings.Trim(v.GetString("ASSET_FOLDER"), "/"),
		},
		Upload: UploadConfig{
			MaxBytes:  v.GetInt64("UPLOAD_MAX_BYTES"),
			MaxMemory: v.GetInt64("UPLOAD_MAX_MEMORY"),
		},
		Admin: AdminConfig{
			Email:        strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			Issuer:          v.GetString("JWT_ISSUER"),
			AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		OIDC: OIDCConfig{
			Issuer:   v.GetString("OIDC_ISSUER"),
			ClientID: v.GetString("OIDC_CLIENT_ID"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			LoginRPS:      v.GetFloat64("LOGIN_RATE_LIMIT_RPS"),
			LoginBurst:    v.GetInt("LOGIN_RATE_LIMIT_BURST"),
		},
		Reconcile: ReconcileConfig{
			GracePeriod:    time.Duration(v.GetInt("RECONCILE_GRACE_MINUTES")) * time.Minute,
			PushgatewayURL: strings.TrimRight(v.GetString("PUSHGATEWAY_URL"), "/"),
		},
	}

	if cfg.Admin.Email != "" && cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required when ADMIN_EMAIL is set")
	}
	if cfg.Admin.Email != "" && cfg.Admin.PasswordHash == "" {
		logger.Warnf("ADMIN_EMAIL is set without ADMIN_PASSWORD_HASH; login is disabled")
	}
	if cfg.Admin.Email == "" {
		logger.Warnf("no admin configured; content write routes are unprotected (%s)", cfg.Server.Environment)
	}

	return cfg, nil
}

// ValidateServer checks settings the API server needs on top of LoadConfig.
// Offline commands such as the reconcile sweep do not call it.
func (c *Config) ValidateServer() error {
	if c.Admin.Email == "" && !c.Server.Development() {
		return ErrAdminRequired
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
