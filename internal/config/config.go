package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// The service runs in EKS with the DB connection, AWS settings and queue URLs
// injected as pod environment variables. A .env file is honoured for local runs.

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBMaxConns int32  `mapstructure:"DB_MAX_CONNS"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	IsLocalDev bool   `mapstructure:"IS_LOCAL_DEV"`

	AWSRegion   string `mapstructure:"AWS_REGION"`
	AWSEndpoint string `mapstructure:"AWS_ENDPOINT"`

	// Upstream employee-management service, used only as lookup fallback.
	EmployeeServiceURL     string        `mapstructure:"EMPLOYEE_SERVICE_URL"`
	EmployeeServiceTimeout time.Duration `mapstructure:"EMPLOYEE_SERVICE_TIMEOUT"`

	EmployeeEventsQueueBaseURL string `mapstructure:"EMPLOYEE_EVENTS_QUEUE_BASE_URL"`
	EmployeeEventsConcurrency  int    `mapstructure:"EMPLOYEE_EVENTS_CONCURRENCY"`
	AttendanceEventsQueueURL   string `mapstructure:"ATTENDANCE_EVENTS_QUEUE_URL"`
	DeadLetterQueueURL         string `mapstructure:"DEAD_LETTER_QUEUE_URL"`

	EmployeeCacheBackend   string `mapstructure:"EMPLOYEE_CACHE_BACKEND"`
	EmployeeCacheWriteBack bool   `mapstructure:"EMPLOYEE_CACHE_WRITE_BACK"`
	CacheWarmupEnabled     bool   `mapstructure:"CACHE_WARMUP_ENABLED"`
	CacheWarmupPageSize    int    `mapstructure:"CACHE_WARMUP_PAGE_SIZE"`
	RunMigrations          bool   `mapstructure:"RUN_MIGRATIONS"`

	OTelExporter string `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint string `mapstructure:"OTEL_ENDPOINT"`
}

// Cache backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// LoadConfig reads configuration from an optional .env file and the environment.
func LoadConfig() (config Config, err error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Read in environment variables that match the keys.
	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "attendance_db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("EMPLOYEE_SERVICE_URL", "http://localhost:8001")
	v.SetDefault("EMPLOYEE_SERVICE_TIMEOUT", 30*time.Second)
	v.SetDefault("EMPLOYEE_EVENTS_QUEUE_BASE_URL", "http://localstack:4566/000000000000/")
	v.SetDefault("EMPLOYEE_EVENTS_CONCURRENCY", 1)
	v.SetDefault("ATTENDANCE_EVENTS_QUEUE_URL", "http://localstack:4566/000000000000/attendance-events")
	v.SetDefault("DEAD_LETTER_QUEUE_URL", "http://localstack:4566/000000000000/employee-events-dlq")
	v.SetDefault("EMPLOYEE_CACHE_BACKEND", BackendPostgres)
	v.SetDefault("EMPLOYEE_CACHE_WRITE_BACK", true)
	v.SetDefault("CACHE_WARMUP_ENABLED", false)
	v.SetDefault("CACHE_WARMUP_PAGE_SIZE", 1000)
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("OTEL_EXPORTER", "otlp")
	v.SetDefault("OTEL_ENDPOINT", "jaeger:4317")
}

// EmployeeQueueURL returns the SQS queue URL carrying the given employee topic.
func (c Config) EmployeeQueueURL(topic string) string {
	return c.EmployeeEventsQueueBaseURL + topic
}
