// Package config reads the service configuration from the environment.
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

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreS3       = "s3"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	GenerationURL     string
	GenerationTimeout time.Duration
	ReportModel       string
	PromptsFile       string

	Chat ChatConfig

	SessionStore     string
	SessionCacheSize int
	SessionTTL       time.Duration
	DatabaseURL      string
	S3               S3Config

	JWTSecret       string
	SessionTokenTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	// Warnings lists optional settings that were missing or malformed.
	Warnings []string
}

type ChatConfig struct {
	Provider    string
	OpenAIKey   string
	OpenAIURL   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	l := &loader{}
	port := strings.TrimPrefix(firstNonEmpty(env("PORT"), "8080"), ":")

	cfg := &Config{
		Port:     port,
		Env:      firstNonEmpty(env("APP_ENV"), "local"),
		LogLevel: firstNonEmpty(env("LOG_LEVEL"), "info"),

		GenerationURL:     firstNonEmpty(env("GENERATION_URL"), "http://localhost:"+port+"/api/chat"),
		GenerationTimeout: l.duration("GENERATION_TIMEOUT", 120*time.Second),
		ReportModel:       firstNonEmpty(env("REPORT_MODEL"), "gpt-4.1"),
		PromptsFile:       env("PROMPTS_FILE"),

		Chat: ChatConfig{
			Provider:    strings.ToLower(firstNonEmpty(env("CHAT_PROVIDER"), ProviderOpenAI)),
			OpenAIKey:   env("OPENAI_API_KEY"),
			OpenAIURL:   env("OPENAI_URL"),
			OpenAIModel: firstNonEmpty(env("OPENAI_MODEL"), "gpt-4o"),
			GeminiKey:   env("GEMINI_API_KEY"),
			GeminiModel: firstNonEmpty(env("GEMINI_MODEL"), "gemini-2.0-flash"),
		},

		SessionStore:     strings.ToLower(firstNonEmpty(env("SESSION_STORE"), StoreMemory)),
		SessionCacheSize: l.integer("SESSION_CACHE_SIZE", 1024),
		SessionTTL:       l.duration("SESSION_TTL", 24*time.Hour),
		DatabaseURL:      env("DATABASE_URL"),
		S3: S3Config{
			Endpoint:  env("S3_ENDPOINT"),
			Region:    firstNonEmpty(env("S3_REGION"), "us-east-1"),
			AccessKey: env("S3_ACCESS_KEY"),
			SecretKey: env("S3_SECRET_KEY"),
			Bucket:    firstNonEmpty(env("S3_BUCKET"), "success-blueprint"),
			UseSSL:    l.boolean("S3_USE_SSL", true),
		},

		JWTSecret:       env("JWT_SECRET"),
		SessionTokenTTL: l.duration("SESSION_TOKEN_TTL", 24*time.Hour),

		RateLimitRPS:   l.float("RATE_LIMIT_RPS", 1),
		RateLimitBurst: l.integer("RATE_LIMIT_BURST", 5),
	}

	if err := cfg.validate(l); err != nil {
		return nil, err
	}
	cfg.Warnings = l.warnings
	return cfg, nil
}

func (c *Config) validate(l *loader) error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is required"))
	}

	switch c.SessionStore {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when SESSION_STORE=postgres"))
		}
	case StoreS3:
		if c.S3.Endpoint == "" {
			errs = append(errs, errors.New("S3_ENDPOINT is required when SESSION_STORE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}

	switch c.Chat.Provider {
	case ProviderOpenAI:
		if c.Chat.OpenAIKey == "" {
			l.warn("OPENAI_API_KEY is not set; /api/chat calls will be unauthenticated")
		}
	case ProviderGemini:
		if c.Chat.GeminiKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when CHAT_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CHAT_PROVIDER %q", c.Chat.Provider))
	}

	if c.RateLimitRPS <= 0 {
		l.warn("RATE_LIMIT_RPS is not positive; generation routes are not rate limited")
	}
	return errors.Join(errs...)
}

type loader struct {
	warnings []string
}

func (l *loader) warn(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	raw := env(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		l.warn("invalid %s %q, using %s", key, raw, def)
		return def
	}
	return d
}

func (l *loader) integer(key string, def int) int {
	raw := env(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		l.warn("invalid %s %q, using %d", key, raw, def)
		return def
	}
	return n
}

func (l *loader) float(key string, def float64) float64 {
	raw := env(key)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.warn("invalid %s %q, using %g", key, raw, def)
		return def
	}
	return f
}

func (l *loader) boolean(key string, def bool) bool {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.warn("invalid %s %q, using %t", key, raw, def)
		return def
	}
	return v
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
