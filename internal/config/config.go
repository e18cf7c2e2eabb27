package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Config is the whole process configuration, read from the environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	HTTP      HTTPConfig
	WebSocket WebSocketConfig
	Realtime  RealtimeConfig
	Logging   LoggingConfig
	App       AppConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	MigrationsPath  string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// HTTPConfig holds CORS settings for the REST API
type HTTPConfig struct {
	AllowedOrigins []string
	CORSMaxAge     int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins   []string
	ReadBufferSize   int
	WriteBufferSize  int
	PingInterval     time.Duration
	PongWait         time.Duration
	ClientSendBuffer int
}

// RealtimeConfig holds the hub and backplane settings.
// An empty BackplaneURL keeps fan-out local to this instance.
type RealtimeConfig struct {
	HubQueueSize         int
	InstanceID           string
	BackplaneURL         string
	BackplaneSubject     string
	BackplaneMaxRetries  int
	BackplaneRetryWait   time.Duration
	BackplaneDialTimeout time.Duration
}

// BackplaneEnabled reports whether events are relayed across instances.
func (c RealtimeConfig) BackplaneEnabled() bool {
	return c.BackplaneURL != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load reads an optional .env file, then the environment, and validates
// the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            envOr("SERVER_PORT", ":8080", parseString),
			ReadTimeout:     envOr("SERVER_READ_TIMEOUT", 15*time.Second, time.ParseDuration),
			WriteTimeout:    envOr("SERVER_WRITE_TIMEOUT", 15*time.Second, time.ParseDuration),
			IdleTimeout:     envOr("SERVER_IDLE_TIMEOUT", 60*time.Second, time.ParseDuration),
			ShutdownTimeout: envOr("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second, time.ParseDuration),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MigrationsPath:  os.Getenv("DB_MIGRATIONS_PATH"),
			MaxOpenConns:    envOr("DB_MAX_OPEN_CONNS", 25, strconv.Atoi),
			MaxIdleConns:    envOr("DB_MAX_IDLE_CONNS", 5, strconv.Atoi),
			ConnMaxLifetime: envOr("DB_CONN_MAX_LIFETIME", 5*time.Minute, time.ParseDuration),
			ConnMaxIdleTime: envOr("DB_CONN_MAX_IDLE_TIME", 5*time.Minute, time.ParseDuration),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: envOr("JWT_ACCESS_TOKEN_TTL", time.Hour, time.ParseDuration),
		},
		RateLimit: RateLimitConfig{
			Enabled:           envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool),
			RequestsPerSecond: envOr("RATE_LIMIT_RPS", 10.0, parseFloat),
			BurstSize:         envOr("RATE_LIMIT_BURST", 20, strconv.Atoi),
		},
		HTTP: HTTPConfig{
			AllowedOrigins: envOr("CORS_ALLOWED_ORIGINS", []string{"*"}, parseList),
			CORSMaxAge:     envOr("CORS_MAX_AGE", 300, strconv.Atoi),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:   envOr("WS_ALLOWED_ORIGINS", []string{}, parseList),
			ReadBufferSize:   envOr("WS_READ_BUFFER_SIZE", 1024, strconv.Atoi),
			WriteBufferSize:  envOr("WS_WRITE_BUFFER_SIZE", 1024, strconv.Atoi),
			PingInterval:     envOr("WS_PING_INTERVAL", 54*time.Second, time.ParseDuration),
			PongWait:         envOr("WS_PONG_WAIT", 60*time.Second, time.ParseDuration),
			ClientSendBuffer: envOr("WS_CLIENT_SEND_BUFFER", 256, strconv.Atoi),
		},
		Realtime: RealtimeConfig{
			HubQueueSize:         envOr("REALTIME_QUEUE_SIZE", 1024, strconv.Atoi),
			InstanceID:           envOr("REALTIME_INSTANCE_ID", uuid.NewString(), parseString),
			BackplaneURL:         os.Getenv("REALTIME_BACKPLANE_URL"),
			BackplaneSubject:     envOr("REALTIME_BACKPLANE_SUBJECT", "studyspace.realtime", parseString),
			BackplaneMaxRetries:  envOr("REALTIME_BACKPLANE_MAX_RECONNECTS", -1, strconv.Atoi),
			BackplaneRetryWait:   envOr("REALTIME_BACKPLANE_RECONNECT_WAIT", 2*time.Second, time.ParseDuration),
			BackplaneDialTimeout: envOr("REALTIME_BACKPLANE_DIAL_TIMEOUT", 5*time.Second, time.ParseDuration),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info", parseString),
			Format: envOr("LOG_FORMAT", "json", parseString),
		},
		App: AppConfig{
			Name:        envOr("APP_NAME", "studyspace", parseString),
			Version:     envOr("APP_VERSION", "dev", parseString),
			Environment: envOr("APP_ENV", "development", parseString),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	check(c.Database.URL == "", "DATABASE_URL is required")
	check(c.JWT.Secret == "", "JWT_SECRET is required")
	if c.IsProduction() {
		check(len(c.JWT.Secret) < 32, "JWT_SECRET must be at least 32 characters in production")
		check(len(c.WebSocket.AllowedOrigins) == 0, "WS_ALLOWED_ORIGINS must be set in production")
	}
	check(c.Database.MaxIdleConns > c.Database.MaxOpenConns, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	check(c.Realtime.HubQueueSize <= 0, "REALTIME_QUEUE_SIZE must be positive")
	check(c.WebSocket.ClientSendBuffer <= 0, "WS_CLIENT_SEND_BUFFER must be positive")
	check(c.Realtime.BackplaneEnabled() && c.Realtime.BackplaneSubject == "",
		"REALTIME_BACKPLANE_SUBJECT is required when the backplane is enabled")

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// envOr parses key with parse. Unset, empty or unparsable values yield def.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// parseList splits a comma separated list, dropping blanks.
func parseList(s string) ([]string, error) {
	items := lo.Compact(lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
	if len(items) == 0 {
		return nil, errors.New("empty list")
	}
	return items, nil
}

// String is safe to log: secrets and URL credentials are redacted.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, DB: %s, JWT: [REDACTED], RateLimit: %v, Backplane: %s, Environment: %s}",
		c.Server.Port,
		redactURL(c.Database.URL),
		c.RateLimit.Enabled,
		redactURL(c.Realtime.BackplaneURL),
		c.App.Environment,
	)
}

// redactURL keeps only the part of a connection URL after the userinfo.
func redactURL(raw string) string {
	switch {
	case raw == "":
		return ""
	case strings.Contains(raw, "@"):
		return "[REDACTED]" + raw[strings.LastIndex(raw, "@"):]
	case strings.Contains(raw, "://"):
		return raw
	default:
		return "[REDACTED]"
	}
}
