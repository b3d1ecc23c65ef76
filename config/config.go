package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Escrow   EscrowConfig   `yaml:"escrow"`
	Policy   PolicyConfig   `yaml:"policy"`
	Worker   WorkerConfig   `yaml:"worker"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type GRPCConfig struct {
	Address string `yaml:"address" env:"GRPC_ADDRESS" env-default:":9090"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	EventsTopic        string   `yaml:"events_topic" env:"KAFKA_EVENTS_TOPIC" env-default:"escrow.events"`
	NotificationsTopic string   `yaml:"notifications_topic" env:"KAFKA_NOTIFICATIONS_TOPIC"`
	GroupID            string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"escrow-worker"`
}

type EscrowConfig struct {
	AirlineAccount string `yaml:"airline_account" env:"ESCROW_AIRLINE_ACCOUNT"`
	// ForwardFareOnBooking pays the airline at booking time instead of holding the
	// fare in the booking's custody account until settlement.
	ForwardFareOnBooking  bool          `yaml:"forward_fare_on_booking" env:"ESCROW_FORWARD_FARE"`
	RepayCancelledPenalty bool          `yaml:"repay_cancelled_penalty" env:"ESCROW_REPAY_CANCELLED_PENALTY"`
	IdempotencyTTL        time.Duration `yaml:"idempotency_ttl" env:"ESCROW_IDEMPOTENCY_TTL" env-default:"10m"`
	FlightsCacheTTL       time.Duration `yaml:"flights_cache_ttl" env:"ESCROW_FLIGHTS_CACHE_TTL" env-default:"30s"`
}

type PolicyConfig struct {
	Cancellation TableConfig `yaml:"cancellation"`
	Delay        TableConfig `yaml:"delay"`
}

// TableConfig maps an hour threshold to a penalty percentage.
type TableConfig struct {
	Thresholds      map[int]int64 `yaml:"thresholds"`
	FullRefundAfter int           `yaml:"full_refund_after_hours"`
}

type WorkerConfig struct {
	RelayInterval   time.Duration `yaml:"relay_interval" env:"WORKER_RELAY_INTERVAL" env-default:"2s"`
	RelayBatch      int           `yaml:"relay_batch" env:"WORKER_RELAY_BATCH" env-default:"100"`
	// PublishAttempts bounds the tries for one Kafka publish before the batch waits for the next tick.
	PublishAttempts int           `yaml:"publish_attempts" env:"WORKER_PUBLISH_ATTEMPTS" env-default:"3"`
	RetryBackoff    time.Duration `yaml:"retry_backoff" env:"WORKER_RETRY_BACKOFF" env-default:"500ms"`
}

type TracingConfig struct {
	Jaeger string `yaml:"jaeger" env:"JAEGER"`
}

// LoadConfig reads the YAML file at path and then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// env-default only fills zero values, so true defaults are set before decoding.
	cfg := Config{Escrow: EscrowConfig{ForwardFareOnBooking: true, RepayCancelledPenalty: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if cfg.Escrow.AirlineAccount == "" {
		return nil, fmt.Errorf("escrow.airline_account is required")
	}

	return &cfg, nil
}

// Path resolves the config location the way all binaries do.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
