package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
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
	Notify   NotificationConfig
	Events   EventsConfig
	RabbitMQ RabbitMQConfig
	Kafka    KafkaConfig
	Workflow WorkflowConfig
	SLA      SLAConfig
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
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	LockTimeoutMs  int
	// ApplicationName tags every session so case locks can be traced in
	// pg_stat_activity.
	ApplicationName string
}

// RedisConfig holds Redis connection values. An empty Addr disables
// consumer deduplication.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DedupTTLMin int
}

// LoggerConfig configures logging behavior. Service, Version and Env are
// stamped on every entry.
type LoggerConfig struct {
	Level    string
	Encoding string
	Service  string
	Version  string
	Env      string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
	SurveyURL  string
}

// EventsConfig tunes the after-commit dispatcher.
type EventsConfig struct {
	Workers      int
	QueueSize    int
	MaxAttempts  int
	RetryDelayMs int
}

// RabbitMQConfig configures the event relay. Empty URL disables it.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// KafkaConfig configures the audit stream. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// WorkflowConfig holds orchestrator routing settings.
type WorkflowConfig struct {
	BackOfficePool          string
	AssignmentPolicy        string
	ExternalAreaEmailDomain string
	HandlerSeedPath         string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sla, err := LoadSLA(os.Getenv("SLA_CONFIG_PATH"))
	if err != nil {
		return nil, err
	}

	appName := getEnv("APP_NAME", "case-workflow")
	appEnv := getEnv("APP_ENV", "development")
	appVersion := getEnv("APP_VERSION", "dev")

	cfg := &Config{
		App: AppConfig{
			Name:                  appName,
			Env:                   appEnv,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               appVersion,
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			LockTimeoutMs:   getEnvAsInt("POSTGRES_LOCK_TIMEOUT_MS", 5000),
			ApplicationName: getEnv("POSTGRES_APPLICATION_NAME", appName),
		},
		Redis: RedisConfig{
			Addr:        os.Getenv("REDIS_ADDR"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			DedupTTLMin: getEnvAsInt("REDIS_DEDUP_TTL_MINUTES", 1440),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
			Service:  appName,
			Version:  appVersion,
			Env:      appEnv,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", "dev-secret"),
			Issuer:    getEnv("AUTH_JWT_ISSUER", ""),
		},
		Notify: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			SurveyURL:  getEnv("NOTIFY_SURVEY_URL", ""),
		},
		Events: EventsConfig{
			Workers:      getEnvAsInt("EVENTS_WORKERS", 2),
			QueueSize:    getEnvAsInt("EVENTS_QUEUE_SIZE", 256),
			MaxAttempts:  getEnvAsInt("EVENTS_MAX_ATTEMPTS", 3),
			RetryDelayMs: getEnvAsInt("EVENTS_RETRY_DELAY_MS", 200),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "case.events"),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvAsList("KAFKA_BROKERS"),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "case-audit"),
		},
		Workflow: WorkflowConfig{
			BackOfficePool:          getEnv("WORKFLOW_BACKOFFICE_POOL", "backoffice"),
			AssignmentPolicy:        getEnv("WORKFLOW_ASSIGNMENT_POLICY", "least_loaded"),
			ExternalAreaEmailDomain: getEnv("EXTERNAL_AREA_EMAIL_DOMAIN", "areas.example.com"),
			HandlerSeedPath:         os.Getenv("HANDLER_SEED_PATH"),
		},
		SLA: sla,
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

// LockTimeout bounds how long a writer waits on a locked case row.
func (p PostgresConfig) LockTimeout() time.Duration {
	return time.Duration(p.LockTimeoutMs) * time.Millisecond
}

// DedupTTL is how long a delivered event id is remembered.
func (r RedisConfig) DedupTTL() time.Duration {
	return time.Duration(r.DedupTTLMin) * time.Minute
}

// RetryDelay is the base backoff between delivery attempts.
func (e EventsConfig) RetryDelay() time.Duration {
	return time.Duration(e.RetryDelayMs) * time.Millisecond
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

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
