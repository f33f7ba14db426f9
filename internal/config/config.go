package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"
)

const defaultReminderRule = "FREQ=MONTHLY;BYMONTHDAY=20;BYHOUR=9;BYMINUTE=0"

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type WahaConfig struct {
	BaseURL string
	APIKey  string
	Session string
}

// Config is everything the binaries read from the environment
type Config struct {
	Port   string
	AppEnv string

	StoreDriver         string
	FirebaseCredentials string
	FirebaseProjectID   string
	MongoURI            string
	MongoDatabase       string

	DatabaseURL    string
	RedisURL       string
	RabbitMQURL    string
	EventsExchange string

	Minio MinioConfig
	Waha  WahaConfig
	SMTP  SMTPConfig

	JWTSecret  string
	SessionTTL time.Duration

	StrictDisputeTransitions bool
	ReminderRule             string
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads a .env file when present and then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:                get("PORT", "8080"),
		AppEnv:              get("APP_ENV", "development"),
		StoreDriver:         strings.ToLower(get("STORE_DRIVER", StoreFirestore)),
		FirebaseCredentials: get("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
		FirebaseProjectID:   get("FIREBASE_PROJECT_ID", ""),
		MongoURI:            get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       get("MONGO_DATABASE", "sampahku"),
		DatabaseURL:         get("DATABASE_URL", ""),
		RedisURL:            get("REDIS_URL", ""),
		RabbitMQURL:         get("RABBITMQ_URL", ""),
		EventsExchange:      get("EVENTS_EXCHANGE", "sampahku.events"),
		Minio: MinioConfig{
			Endpoint:  get("MINIO_ENDPOINT", ""),
			AccessKey: get("MINIO_ACCESS_KEY", ""),
			SecretKey: get("MINIO_SECRET_KEY", ""),
			Bucket:    get("MINIO_BUCKET", "payment-proofs"),
			PublicURL: get("MINIO_PUBLIC_URL", ""),
		},
		Waha: WahaConfig{
			BaseURL: get("WAHA_BASE_URL", "http://waha:3000"),
			APIKey:  get("WAHA_API_KEY", ""),
			Session: get("WAHA_SESSION", "default"),
		},
		SMTP: SMTPConfig{
			Host:     get("SMTP_HOST", ""),
			Port:     get("SMTP_PORT", "587"),
			User:     get("SMTP_USER", ""),
			Password: get("SMTP_PASS", ""),
			From:     get("EMAIL_FROM", ""),
		},
		JWTSecret:    get("JWT_SECRET", ""),
		ReminderRule: get("REMINDER_RRULE", defaultReminderRule),
	}

	var err error
	if cfg.Minio.UseSSL, err = parseBool(get("MINIO_USE_SSL", "false")); err != nil {
		return nil, fmt.Errorf("MINIO_USE_SSL: %w", err)
	}
	if cfg.StrictDisputeTransitions, err = parseBool(get("STRICT_DISPUTE_TRANSITIONS", "false")); err != nil {
		return nil, fmt.Errorf("STRICT_DISPUTE_TRANSITIONS: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(get("SESSION_TTL", "12h")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

// Validate rejects configurations the binaries cannot run with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFirestore, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func parseBool(v string) (bool, error) {
	return strconv.ParseBool(v)
}
