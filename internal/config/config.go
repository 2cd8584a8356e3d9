package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App         App         `yaml:"app"`
	HTTP        HTTP        `yaml:"http"`
	Log         Log         `yaml:"log"`
	DLQ         DLQ         `yaml:"dlq"`
	Postgres    Postgres    `yaml:"postgres"`
	Redis       Redis       `yaml:"redis"`
	Kafka       Kafka       `yaml:"kafka"`
	Breaker     Breaker     `yaml:"breaker"`
	Retry       Retry       `yaml:"retry"`
	Chaos       Chaos       `yaml:"chaos"`
	Reprocessor Reprocessor `yaml:"reprocessor"`
	Notifier    Notifier    `yaml:"notifier"`
	Inventory   Inventory   `yaml:"inventory"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"sagas-playground"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// DLQ selects the quarantine backend: "memory", "postgres" or "kafka".
type DLQ struct {
	Backend string `yaml:"backend" env:"DLQ_BACKEND" env-default:"memory"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"sagas_db"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"order-dlq"`
}

type Breaker struct {
	CallTimeout      time.Duration `yaml:"call_timeout" env:"BREAKER_CALL_TIMEOUT" env-default:"3s"`
	ErrorThresholdPc int           `yaml:"error_threshold_pc" env:"BREAKER_ERROR_THRESHOLD_PC" env-default:"50"`
	Window           time.Duration `yaml:"window" env:"BREAKER_WINDOW" env-default:"10s"`
	ResetTimeout     time.Duration `yaml:"reset_timeout" env:"BREAKER_RESET_TIMEOUT" env-default:"10s"`
}

type Retry struct {
	Attempts  int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	BaseDelay time.Duration `yaml:"base_delay" env:"RETRY_BASE_DELAY" env-default:"100ms"`
	JitterMax time.Duration `yaml:"jitter_max" env:"RETRY_JITTER_MAX" env-default:"50ms"`
}

// Chaos configures the failure-injection rate for order status updates.
// Zero disables injection entirely.
type Chaos struct {
	FailureRate float64 `yaml:"failure_rate" env:"CHAOS_FAILURE_RATE" env-default:"0"`
}

type Reprocessor struct {
	Interval time.Duration `yaml:"interval" env:"REPROCESSOR_INTERVAL" env-default:"1m"`
}

type Notifier struct {
	WebhookURL string `yaml:"webhook_url" env:"NOTIFIER_WEBHOOK_URL" env-default:""`
}

type Inventory struct {
	// Stock seeds the ledger at startup, e.g. "product-1:100,product-2:200".
	Stock map[string]int `yaml:"stock" env:"INVENTORY_STOCK" env-default:"product-1:100,product-2:200"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
