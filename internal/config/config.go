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
	Engine   EngineConfig
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

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// EngineConfig holds the reference-data ids and names the complaint engine
// writes by default, so the service can run against differently seeded
// lookup tables.
type EngineConfig struct {
	OpenStatusID              int64
	ClosedStatusID            int64
	NormalPriorityID          int64
	CallSourceID              int64
	SelfServiceSourceID       int64
	SelfServicePriorityName   string
	SurveyCompletedStatusName string
	CallSessionTTLMinutes     int
	// SeedMemoryStore loads reference data when running without Postgres.
	SeedMemoryStore bool
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
			Name:                  getEnv("APP_NAME", "callcenter-service"),
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
		Engine: EngineConfig{
			OpenStatusID:              getEnvAsInt64("ENGINE_OPEN_STATUS_ID", 1),
			ClosedStatusID:            getEnvAsInt64("ENGINE_CLOSED_STATUS_ID", 3),
			NormalPriorityID:          getEnvAsInt64("ENGINE_NORMAL_PRIORITY_ID", 2),
			CallSourceID:              getEnvAsInt64("ENGINE_CALL_SOURCE_ID", 2),
			SelfServiceSourceID:       getEnvAsInt64("ENGINE_SELF_SERVICE_SOURCE_ID", 1),
			SelfServicePriorityName:   getEnv("ENGINE_SELF_SERVICE_PRIORITY", "Mid"),
			SurveyCompletedStatusName: getEnv("ENGINE_SURVEY_COMPLETED_STATUS", "Survey Completed"),
			CallSessionTTLMinutes:     getEnvAsInt("ENGINE_CALL_SESSION_TTL_MINUTES", 240),
			SeedMemoryStore:           getEnvAsBool("ENGINE_SEED_MEMORY_STORE", true),
		},
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultEngineConfig matches the ids seeded by the reference-data migration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		OpenStatusID:              1,
		ClosedStatusID:            3,
		NormalPriorityID:          2,
		CallSourceID:              2,
		SelfServiceSourceID:       1,
		SelfServicePriorityName:   "Mid",
		SurveyCompletedStatusName: "Survey Completed",
		CallSessionTTLMinutes:     240,
		SeedMemoryStore:           true,
	}
}

// Validate rejects configurations the engine cannot write with.
func (e EngineConfig) Validate() error {
	ids := map[string]int64{
		"ENGINE_OPEN_STATUS_ID":         e.OpenStatusID,
		"ENGINE_CLOSED_STATUS_ID":       e.ClosedStatusID,
		"ENGINE_NORMAL_PRIORITY_ID":     e.NormalPriorityID,
		"ENGINE_CALL_SOURCE_ID":         e.CallSourceID,
		"ENGINE_SELF_SERVICE_SOURCE_ID": e.SelfServiceSourceID,
	}
	for key, id := range ids {
		if id <= 0 {
			return fmt.Errorf("invalid %s: must be positive", key)
		}
	}
	if e.OpenStatusID == e.ClosedStatusID {
		return fmt.Errorf("open and closed status ids must differ")
	}
	return nil
}

// SessionTTL returns how long an unfinished call session is kept.
func (e EngineConfig) SessionTTL() time.Duration {
	if e.CallSessionTTLMinutes <= 0 {
		return 4 * time.Hour
	}
	return time.Duration(e.CallSessionTTLMinutes) * time.Minute
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

func getEnvAsInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
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
