package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"DB_PATH"   envDefault:"artesanapp.db"`
	DBURL    string `env:"DATABASE_URL"`

	JWTSecret string        `env:"JWT_SECRET"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	LoginRPS  float64       `env:"LOGIN_RPS"  envDefault:"5"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" envDefault:"products"`

	ImageStore    string `env:"IMAGE_STORE"     envDefault:"embedded"`
	ImageLocalDir string `env:"IMAGE_LOCAL_DIR" envDefault:"data/images"`

	S3Region          string `env:"S3_REGION"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Prefix          string `env:"S3_PREFIX"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`

	StoreName      string  `env:"STORE_NAME"      envDefault:"Mochilas artesanales"`
	StoreLatitude  float64 `env:"STORE_LATITUDE"  envDefault:"4.71047"`
	StoreLongitude float64 `env:"STORE_LONGITUDE" envDefault:"-74.111894"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("notice: .env file not found, using system environment variables", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("missing required env JWT_SECRET")
	}
	switch strings.ToLower(c.DBDriver) {
	case "sqlite":
	case "postgres":
		if c.DBURL == "" {
			return errors.New("missing required env DATABASE_URL for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
