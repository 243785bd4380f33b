package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Tick     TickConfig     `mapstructure:"tick"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // e.g., "local", "prod"
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // optional rotating log file, empty = stdout only
}

type TickConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	MaxSymbols int           `mapstructure:"max_symbols"`
	Symbols    []string      `mapstructure:"symbols"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "postgres"
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", "")

	v.SetDefault("tick.interval", 5*time.Second)
	v.SetDefault("tick.max_symbols", 3)
	v.SetDefault("tick.symbols", []string{
		"PSO", "PPL", "LUCK", "HBL", "UBL", "ENGRO", "MCB",
		"TRG", "DGKC", "SNGP", "HUBC", "WIL", "MEZ",
	})

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("postgres.dsn", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "market_ticks")

	// Map dot-notation to underscores (e.g., "tick.max_symbols" -> "TICK_MAX_SYMBOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit binding is required for Viper to map flat env vars to nested structs
	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "logger.level", "logger.file")
	bindEnv(v, "tick.interval", "tick.max_symbols", "tick.symbols")
	bindEnv(v, "storage.driver", "postgres.dsn")
	bindEnv(v, "redis.enabled", "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "kafka.enabled", "kafka.brokers", "kafka.topic")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	if cfg.Tick.Interval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive")
	}
	if cfg.Tick.MaxSymbols <= 0 {
		return nil, fmt.Errorf("tick max_symbols must be positive")
	}
	if cfg.Storage.Driver == "postgres" && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required when storage driver is postgres")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers cannot be empty")
	}

	return &cfg, nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
