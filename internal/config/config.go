package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	WhatsApp WhatsAppConfig
	Workflow WorkflowConfig
	Worker   WorkerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for the ops API.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// WhatsAppConfig holds messaging provider credentials.
type WhatsAppConfig struct {
	APIURL      string
	AccessToken string
	PhoneID     string
	VerifyToken string
}

// WorkflowConfig tunes conversation behavior.
type WorkflowConfig struct {
	StructuredIntake bool
	DedupTTLHours    int
	SessionTTLHours  int
}

// WorkerConfig tunes background jobs.
type WorkerConfig struct {
	ReminderIntervalMinutes int
	ReminderThrottleHours   int
	ReviewOverdueDays       int
	NotifyRetryMax          int
	NotifyRetryIntervalSec  int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "compensation-agent"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:      getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v18.0"),
			AccessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			PhoneID:     os.Getenv("WHATSAPP_PHONE_ID"),
			VerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", "change-me"),
		},
		Workflow: WorkflowConfig{
			StructuredIntake: getEnvAsBool("WORKFLOW_STRUCTURED_INTAKE", false),
			DedupTTLHours:    getEnvAsInt("WORKFLOW_DEDUP_TTL_HOURS", 24),
			SessionTTLHours:  getEnvAsInt("WORKFLOW_SESSION_TTL_HOURS", 24),
		},
		Worker: WorkerConfig{
			ReminderIntervalMinutes: getEnvAsInt("WORKER_REMINDER_INTERVAL_MINUTES", 60),
			ReminderThrottleHours:   getEnvAsInt("WORKER_REMINDER_THROTTLE_HOURS", 24),
			ReviewOverdueDays:       getEnvAsInt("WORKER_REVIEW_OVERDUE_DAYS", 2),
			NotifyRetryMax:          getEnvAsInt("WORKER_NOTIFY_RETRY_MAX", 5),
			NotifyRetryIntervalSec:  getEnvAsInt("WORKER_NOTIFY_RETRY_INTERVAL_SECONDS", 120),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
