package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"raffle"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"raffle"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"20"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
		// Применять схему при старте
		AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Storage struct {
		Dir           string `env:"STORAGE_DIR" envDefault:"./data/proofs"`
		PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"http://localhost:8080/proofs"`
		MaxProofBytes int64  `env:"MAX_PROOF_BYTES" envDefault:"10485760"`
	}

	Telegram struct {
		// Empty token disables admin notifications.
		BotToken    string `env:"TELEGRAM_BOT_TOKEN"`
		AdminChatID int64  `env:"TELEGRAM_ADMIN_CHAT_ID" envDefault:"0"`
	}

	Raffle struct {
		ReservationTTLDays int           `env:"RESERVATION_TTL_DAYS" envDefault:"5"`
		SelectionTTL       time.Duration `env:"SELECTION_TTL" envDefault:"30m"`
		PoolCacheTTL       time.Duration `env:"POOL_CACHE_TTL" envDefault:"2s"`
		// Zero keeps expiry purely lazy.
		ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"0s"`
	}
}

// GetDSN builds a lib/pq connection string.
func (c *Config) GetDSN() string {
	p := c.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// RedisAddr returns host:port for go-redis.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func Load() (*Config, error) {
	// В production переменные могут быть установлены напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Raffle.ReservationTTLDays <= 0 {
		return fmt.Errorf("invalid RESERVATION_TTL_DAYS: must be > 0, got %d", c.Raffle.ReservationTTLDays)
	}
	if c.Raffle.ReconcileInterval < 0 {
		return fmt.Errorf("invalid RECONCILE_INTERVAL: must be >= 0")
	}
	if c.Storage.MaxProofBytes <= 0 {
		return fmt.Errorf("invalid MAX_PROOF_BYTES: must be > 0")
	}
	if c.Telegram.BotToken != "" && c.Telegram.AdminChatID == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}
