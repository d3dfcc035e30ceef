// Package config loads runtime configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the server reads at startup.
type Config struct {
	Env             string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	DBDriver      string
	DBDSN         string
	DBAutoMigrate bool

	SessionSecret string
	SessionName   string
	SessionMaxAge time.Duration
	SessionSecure bool

	RedisHost     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	CheckoutSingleFlight bool
	CheckoutLockTTL      time.Duration

	LoginMaxAttempts int
	LoginCooldown    time.Duration

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUsername string
	ScyllaPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	CORSOrigins []string
}

var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required in production")

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// durenv accepts Go duration strings ("15m", "30s").
func durenv(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func listenv(key string) []string {
	v := getenv(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads .env when present and collects configuration with defaults.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("no .env file found, using process environment")
	} else {
		slog.Info(".env file loaded")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() Config {
	return Config{
		Env:             getenv("APP_ENV", "development"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenv("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:        getenv("LOG_LEVEL", "info"),

		DBDriver:      getenv("DB_DRIVER", "sqlite"),
		DBDSN:         getenv("DB_DSN", "file:marketplace.db"),
		DBAutoMigrate: boolenv("DB_AUTO_MIGRATE", true),

		SessionSecret: getenv("SESSION_SECRET", ""),
		SessionName:   getenv("SESSION_NAME", "marketplace"),
		SessionMaxAge: durenv("SESSION_MAX_AGE", 30*24*time.Hour),
		SessionSecure: boolenv("SESSION_SECURE", false),

		RedisHost:     getenv("REDIS_HOST", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       atoienv("REDIS_DB", 0),
		CartTTL:       durenv("CART_TTL", 30*24*time.Hour),

		CheckoutSingleFlight: boolenv("CHECKOUT_SINGLE_FLIGHT", true),
		CheckoutLockTTL:      durenv("CHECKOUT_LOCK_TTL", 30*time.Second),

		LoginMaxAttempts: atoienv("LOGIN_MAX_ATTEMPTS", 5),
		LoginCooldown:    durenv("LOGIN_COOLDOWN", 15*time.Minute),

		ScyllaHosts:    listenv("SCYLLA_HOSTS"),
		ScyllaKeyspace: getenv("SCYLLA_KEYSPACE", "marketplace"),
		ScyllaUsername: getenv("SCYLLA_USERNAME", ""),
		ScyllaPassword: getenv("SCYLLA_PASSWORD", ""),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     atoienv("SMTP_PORT", 587),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		MailFrom:     getenv("MAIL_FROM", "noreply@marketplace.local"),

		CORSOrigins: listenv("CORS_ORIGINS"),
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool { return c.Env == "production" }

// Validate rejects configurations the server must not start with.
func (c Config) Validate() error {
	if c.SessionSecret == "" && c.IsProduction() {
		return ErrMissingSessionSecret
	}
	return nil
}
