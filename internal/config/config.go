package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Kafka Kafka `validate:"required"`

	Postgres Postgres `validate:"required"`
	Redis    Redis    `validate:"required"`

	Carrier  Carrier  `validate:"required"`
	Payment  Payment  `validate:"required"`
	Notifier Notifier `validate:"required"`

	Shipping  Shipping
	RateLimit RateLimit

	// AdminToken guards the operator endpoints (account creation, limiter
	// inspection, integration introspection).
	AdminToken string `validate:"required"`
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

type Kafka struct {
	GroupID string   `validate:"required"`
	Brokers []string `validate:"required,min=1,dive,hostname_port"`
	// Topic carries carrier tracking events consumed by the shipment lifecycle.
	Topic string `validate:"required"`

	ReaderMaxWait time.Duration `validate:"gte=0"`
	BatchTimeout  time.Duration `validate:"gte=0"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

type Redis struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	Password string
	DB       int `validate:"gte=0"`
}

type Carrier struct {
	BaseURL string `validate:"omitempty,url"`
	APIKey  string
	// OriginZIP is the merchant warehouse postal code, compared as an opaque
	// string because leading zeros are significant.
	OriginZIP     string        `validate:"required"`
	OriginCountry string        `validate:"required,iso3166_1_alpha2"`
	Timeout       time.Duration `validate:"gt=0"`
}

type Payment struct {
	BaseURL   string `validate:"required,url"`
	APIKey    string `validate:"required"`
	Currency  string `validate:"required,iso4217"`
	ReturnURL string `validate:"required,url"`
	CancelURL string `validate:"required,url"`

	Timeout time.Duration `validate:"gt=0"`
}

type Notifier struct {
	BaseURL string `validate:"required,url"`
	APIKey  string `validate:"required"`

	Timeout time.Duration `validate:"gt=0"`
	// NotifyOnCancel toggles the optional cancellation email.
	NotifyOnCancel bool
}

type Shipping struct {
	// FlatRateCents > 0 enables the flat-rate fallback offered when the
	// carrier is unavailable. Zero means checkout fails instead.
	FlatRateCents int64 `validate:"gte=0"`
}

type RateLimit struct {
	PasswordResetLimit  int64         `validate:"gt=0"`
	PasswordResetWindow time.Duration `validate:"gt=0"`

	AdminCreateLimit  int64         `validate:"gt=0"`
	AdminCreateWindow time.Duration `validate:"gt=0"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Kafka: Kafka{
			GroupID: env("KAFKA_GROUP_ID", "fulfillment-service"),
			Topic:   env("KAFKA_TOPIC", "tracking-events"),
			Brokers: strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),

			ReaderMaxWait: envDuration("KAFKA_READER_MAX_WAIT", 10*time.Millisecond),
			BatchTimeout:  envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "fulfillment"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: Redis{
			Host:     env("REDIS_HOST", "localhost"),
			Port:     envInt("REDIS_PORT", 6379),
			Password: env("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		},

		Carrier: Carrier{
			BaseURL:       env("CARRIER_BASE_URL", ""),
			APIKey:        env("CARRIER_API_KEY", ""),
			OriginZIP:     env("CARRIER_ORIGIN_ZIP", "0150"),
			OriginCountry: env("CARRIER_ORIGIN_COUNTRY", "NO"),
			Timeout:       envDuration("CARRIER_TIMEOUT", 5*time.Second),
		},

		Payment: Payment{
			BaseURL:   env("PAYMENT_BASE_URL", "http://localhost:9010"),
			APIKey:    env("PAYMENT_API_KEY", ""),
			Currency:  env("PAYMENT_CURRENCY", "NOK"),
			ReturnURL: env("PAYMENT_RETURN_URL", "http://localhost:3000/checkout/complete"),
			CancelURL: env("PAYMENT_CANCEL_URL", "http://localhost:3000/checkout/cancelled"),
			Timeout:   envDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},

		Notifier: Notifier{
			BaseURL:        env("NOTIFIER_BASE_URL", "http://localhost:9020"),
			APIKey:         env("NOTIFIER_API_KEY", ""),
			Timeout:        envDuration("NOTIFIER_TIMEOUT", 5*time.Second),
			NotifyOnCancel: envBool("NOTIFY_ON_CANCEL", true),
		},

		Shipping: Shipping{
			FlatRateCents: envInt64("SHIPPING_FLAT_RATE_CENTS", 0),
		},

		RateLimit: RateLimit{
			PasswordResetLimit:  envInt64("RATELIMIT_PASSWORD_RESET_LIMIT", 5),
			PasswordResetWindow: envDuration("RATELIMIT_PASSWORD_RESET_WINDOW", time.Minute),

			AdminCreateLimit:  envInt64("RATELIMIT_ADMIN_CREATE_LIMIT", 10),
			AdminCreateWindow: envDuration("RATELIMIT_ADMIN_CREATE_WINDOW", time.Minute),
		},

		AdminToken: env("ADMIN_TOKEN", ""),
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if len(fallback) == 0 {
		return ""
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
