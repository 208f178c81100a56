// Package config loads the service configuration from environment variables.
// Every variable has a default; a variable that is set but cannot be parsed
// is an error rather than a silent fallback, and Load reports all problems
// at once.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-video-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	// Database
	DBDriver       string // sqlite|postgres
	DBPath         string // SQLite path (DB_DRIVER=sqlite)
	DatabaseURL    string // Postgres DSN (DB_DRIVER=postgres)
	SeedSampleData bool   // insert demo channels, users and videos on startup

	// Engagement and recommendations
	RequestTimeout        time.Duration // per-request deadline handed to services
	ShutdownTimeout       time.Duration
	RecommendDefaultLimit int // limit when ?limit is absent
	RecommendMaxLimit     int // upper bound for ?limit
	CommentMaxRunes       int
	WSAllowedOrigins      []string // empty falls back to CORS origins

	// Rate limiting
	RateRPS   float64
	RateBurst int

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration // lifetime of a comment Idempotency-Key

	OTEL OTELConfig
}

// Load reads the configuration, normalizes aliases and validates the result.
// The returned error joins every parse and validation failure.
func Load() (Config, error) {
	e := &env{}
	cfg := Config{
		Port:              e.str("PORT", "8080"),
		ReadTimeout:       e.dur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: e.dur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      e.dur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       e.dur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    e.int("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(e.str("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(e.str("LOG_LEVEL", "info")),
		LogPretty:      e.bool("LOG_PRETTY", false),
		SwaggerEnabled: e.bool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(e.str("API_BASE_PATH", "/api/v1")),

		DBDriver:       strings.ToLower(e.str("DB_DRIVER", "sqlite")),
		DBPath:         e.str("DB_PATH", "youtube.db"),
		DatabaseURL:    e.str("DATABASE_URL", ""),
		SeedSampleData: e.bool("SEED_SAMPLE_DATA", false),

		RequestTimeout:        e.dur("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:       e.dur("SHUTDOWN_TIMEOUT", 15*time.Second),
		RecommendDefaultLimit: e.int("RECOMMEND_DEFAULT_LIMIT", 20),
		RecommendMaxLimit:     e.int("RECOMMEND_MAX_LIMIT", 100),
		CommentMaxRunes:       e.int("COMMENT_MAX_RUNES", 5000),
		WSAllowedOrigins:      e.csv("WS_ALLOWED_ORIGINS"),

		RateRPS:   e.float("RATE_RPS", 5.0),
		RateBurst: e.int("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: e.csv("CORS_ALLOWED_ORIGINS")},
		Security: SecurityConfig{
			EnableHSTS: e.bool("ENABLE_HSTS", false),
			HSTSMaxAge: e.dur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: e.dur("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     e.bool("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.bool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "go-video-backend"),
			SampleRatio: e.float("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	cfg.normalize()
	return cfg, errors.Join(append(e.errs, cfg.validate()...)...)
}

func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.DBDriver {
	case "postgresql", "pg":
		c.DBDriver = "postgres"
	case "sqlite3":
		c.DBDriver = "sqlite"
	}
	if len(c.WSAllowedOrigins) == 0 {
		c.WSAllowedOrigins = c.CORS.AllowedOrigins
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
}

func (c Config) validate() []error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"))
	}
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DBDriver {
	case "sqlite":
		check(strings.TrimSpace(c.DBPath) != "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(c.DatabaseURL) != "", "DATABASE_URL must be set when DB_DRIVER=postgres")
	default:
		errs = append(errs, errors.New("DB_DRIVER must be one of: sqlite, postgres"))
	}

	check(c.RequestTimeout > 0 && c.ShutdownTimeout > 0, "REQUEST_TIMEOUT and SHUTDOWN_TIMEOUT must be positive durations")
	check(c.RecommendDefaultLimit >= 1 && c.RecommendMaxLimit >= c.RecommendDefaultLimit,
		"RECOMMEND_DEFAULT_LIMIT must be >= 1 and <= RECOMMEND_MAX_LIMIT")
	check(c.CommentMaxRunes >= 1, "COMMENT_MAX_RUNES must be >= 1")
	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// env reads typed variables and remembers every value it could not parse.
type env struct {
	errs []error
}

func (e *env) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) fail(k, v, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q is not a valid %s", k, v, want))
}

func (e *env) str(k, def string) string {
	if v, ok := e.lookup(k); ok {
		return v
	}
	return def
}

func (e *env) int(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(k, v, "integer")
		return def
	}
	return i
}

func (e *env) float(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(k, v, "number")
		return def
	}
	return f
}

func (e *env) bool(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	if sysutil.IsTruthy(v) {
		return true
	}
	switch strings.ToLower(v) {
	case "0", "false", "no", "n", "off":
		return false
	}
	e.fail(k, v, "boolean")
	return def
}

func (e *env) dur(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(k, v, "duration")
		return def
	}
	return d
}

// csv splits a comma-separated list, dropping blanks. Unset yields nil.
func (e *env) csv(k string) []string {
	v, ok := e.lookup(k)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips trailing ones (except root).
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
