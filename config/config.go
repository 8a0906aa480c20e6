package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr   string
	Env    string
	Domain string

	MongoURI      string
	MongoDatabase string

	RedisAddress    string
	RedisPassword   string
	RedisDB         int
	IssueLimitQueue string
	IssueDailyLimit int

	JWTSecret  string
	JWTTTL     time.Duration
	CORSOrigin string

	GeminiAPIKey       string
	GeminiModel        string
	SummaryTimeout     time.Duration
	SummaryConcurrency int

	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool
	StorageBucket    string
	StoragePublicURL string

	GeocoderURL       string
	GeocoderUserAgent string
}

func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment, after loading a .env file if one exists.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{get: getenv}

	cfg := Config{
		Addr:   e.str("API_ADDR", ""),
		Env:    e.str("GO_ENV", "development"),
		Domain: e.str("DOMAIN", ""),

		MongoURI:      e.str("MONGODB_URI", ""),
		MongoDatabase: e.str("MONGODB_DATABASE", "civicsync"),

		RedisAddress:    e.str("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:   e.str("REDIS_PASSWORD", ""),
		RedisDB:         e.int("REDIS_DB", 0),
		IssueLimitQueue: e.str("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),
		IssueDailyLimit: e.int("ISSUE_DAILY_LIMIT", 10),

		JWTSecret:  e.str("JWT_SECRET", ""),
		JWTTTL:     time.Duration(e.int("JWT_TTL_HOURS", 72)) * time.Hour,
		CORSOrigin: e.str("CORS_ORIGIN", "*"),

		GeminiAPIKey:       e.str("GEMINI_API_KEY", ""),
		GeminiModel:        e.str("GEMINI_MODEL", "gemini-2.5-flash"),
		SummaryTimeout:     time.Duration(e.int("SUMMARY_TIMEOUT_SECONDS", 20)) * time.Second,
		SummaryConcurrency: e.int("SUMMARY_CONCURRENCY", 4),

		StorageEndpoint:  e.str("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: e.str("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: e.str("STORAGE_SECRET_KEY", ""),
		StorageUseSSL:    e.bool("STORAGE_USE_SSL", false),
		StorageBucket:    e.str("STORAGE_BUCKET", "issue-images"),
		StoragePublicURL: e.str("STORAGE_PUBLIC_URL", ""),

		GeocoderURL:       e.str("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: e.str("GEOCODER_USER_AGENT", "civicsync/1.0"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":" + e.str("PORT", "8080")
	}

	if cfg.MongoURI == "" {
		e.errs = append(e.errs, errors.New("MONGODB_URI is required"))
	}
	if cfg.JWTSecret == "" {
		e.errs = append(e.errs, errors.New("JWT_SECRET is required"))
	}
	return cfg, errors.Join(e.errs...)
}

type env struct {
	get  func(string) string
	errs []error
}

func (e *env) str(key, fallback string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return fallback
}

func (e *env) int(key string, fallback int) int {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (e *env) bool(key string, fallback bool) bool {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}
