package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port        string
	CORSOrigins string
	Env         string
	LogLevel    string
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	RateLimitPerMin int
}

// AdminConfig seeds the default admin account when no admin exists yet.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type RedisConfig struct {
	Addr string
}

type RabbitConfig struct {
	URL      string
	Exchange string
}

type UploadConfig struct {
	MaxBytes      int64
	ImageMaxWidth int
}

type ModerationConfig struct {
	AdminAutoApprove bool
}

// Config holds all application configuration. It is read once at startup.
type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	Auth       AuthConfig
	Admin      AdminConfig
	Minio      MinioConfig
	Redis      RedisConfig
	Rabbit     RabbitConfig
	Upload     UploadConfig
	Moderation ModerationConfig
}

const (
	DefaultPort          = "8080"
	DefaultMongoURI      = "mongodb://localhost:27017"
	DefaultMongoDB       = "clubhub"
	DefaultTokenTTL      = 24 * time.Hour
	DefaultRateLimit     = 10
	DefaultMinioEndpoint = "localhost:9000"
	DefaultMinioBucket   = "clubhub-images"
	DefaultExchange      = "clubhub.events"
	DefaultUploadMaxMB   = 5
	DefaultImageMaxWidth = 1600
)

func Load() Config {
	minioEndpoint := getenv("MINIO_ENDPOINT", DefaultMinioEndpoint)
	useSSL := getenvBool("MINIO_USE_SSL", false)
	bucket := getenv("MINIO_BUCKET", DefaultMinioBucket)

	return Config{
		Server: ServerConfig{
			Port:        getenv("PORT", DefaultPort),
			CORSOrigins: getenv("CORS_ORIGINS", "*"),
			Env:         getenv("APP_ENV", "production"),
			LogLevel:    getenv("LOG_LEVEL", "info"),
		},
		Mongo: MongoConfig{
			URI:      getenv("MONGO_URI", DefaultMongoURI),
			Database: getenv("MONGO_DB", DefaultMongoDB),
		},
		Auth: AuthConfig{
			JWTSecret:       getenv("JWT_SECRET", "change-me"),
			TokenTTL:        getenvDuration("TOKEN_TTL", DefaultTokenTTL),
			RateLimitPerMin: getenvInt("RATE_LIMIT_PER_MIN", DefaultRateLimit),
		},
		Admin: AdminConfig{
			Name:     getenv("ADMIN_NAME", "Administrator"),
			Email:    strings.ToLower(getenv("ADMIN_EMAIL", "admin@clubhub.local")),
			Password: getenv("ADMIN_PASSWORD", ""),
		},
		Minio: MinioConfig{
			Endpoint:  minioEndpoint,
			AccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    bucket,
			UseSSL:    useSSL,
			PublicURL: getenv("MINIO_PUBLIC_URL", defaultPublicURL(minioEndpoint, useSSL)),
		},
		Redis: RedisConfig{
			Addr: getenv("REDIS_ADDR", ""),
		},
		Rabbit: RabbitConfig{
			URL:      getenv("RABBITMQ_URL", ""),
			Exchange: getenv("RABBITMQ_EXCHANGE", DefaultExchange),
		},
		Upload: UploadConfig{
			MaxBytes:      int64(getenvInt("UPLOAD_MAX_MB", DefaultUploadMaxMB)) << 20,
			ImageMaxWidth: getenvInt("IMAGE_MAX_WIDTH", DefaultImageMaxWidth),
		},
		Moderation: ModerationConfig{
			AdminAutoApprove: getenvBool("ADMIN_UPLOADS_AUTO_APPROVE", true),
		},
	}
}

// Address returns the listen address for the HTTP server.
func (c ServerConfig) Address() string {
	return ":" + c.Port
}

func (c ServerConfig) Development() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

func defaultPublicURL(endpoint string, ssl bool) string {
	if ssl {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			return d
		}
	}
	return def
}
