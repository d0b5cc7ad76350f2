package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends for the document collections.
const (
	BackendGORM  = "gorm"
	BackendMongo = "mongo"
)

// Config holds application configuration from environment variables.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string
	StoreBackend   string
	MongoURI       string
	MongoDatabase  string

	RedisURL    string
	RabbitMQURL string

	JWTSecret   string
	AdminEmails []string

	FreeGiftThreshold     float64
	CartTTL               time.Duration
	CheckoutTTL           time.Duration
	PaymentSimulatedDelay time.Duration

	MailProvider     string
	PostmarkAPIToken string
	SendGridAPIKey   string
	MailFrom         string

	SeedFile string

	OTELExporterOTLPEndpoint string
	OTELServiceName          string
}

// Load reads an optional .env file and then the environment, falling back to defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:                  v.GetString("APP_PORT"),
		DatabaseDriver:           strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:              v.GetString("DATABASE_DSN"),
		StoreBackend:             strings.ToLower(v.GetString("STORE_BACKEND")),
		MongoURI:                 v.GetString("MONGO_URI"),
		MongoDatabase:            v.GetString("MONGO_DATABASE"),
		RedisURL:                 v.GetString("REDIS_URL"),
		RabbitMQURL:              v.GetString("RABBITMQ_URL"),
		JWTSecret:                v.GetString("JWT_SECRET"),
		AdminEmails:              splitList(v.GetString("ADMIN_EMAILS")),
		FreeGiftThreshold:        v.GetFloat64("FREE_GIFT_THRESHOLD"),
		CartTTL:                  v.GetDuration("CART_TTL"),
		CheckoutTTL:              v.GetDuration("CHECKOUT_TTL"),
		PaymentSimulatedDelay:    v.GetDuration("PAYMENT_SIMULATED_DELAY"),
		MailProvider:             strings.ToLower(v.GetString("MAIL_PROVIDER")),
		PostmarkAPIToken:         v.GetString("POSTMARK_API_TOKEN"),
		SendGridAPIKey:           v.GetString("SENDGRID_API_KEY"),
		MailFrom:                 v.GetString("MAIL_FROM"),
		SeedFile:                 v.GetString("SEED_FILE"),
		OTELExporterOTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELServiceName:          v.GetString("OTEL_SERVICE_NAME"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "vaidya.db")
	v.SetDefault("STORE_BACKEND", BackendGORM)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "vaidya")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("FREE_GIFT_THRESHOLD", 1149)
	v.SetDefault("CART_TTL", "720h")
	v.SetDefault("CHECKOUT_TTL", "24h")
	v.SetDefault("PAYMENT_SIMULATED_DELAY", "1500ms")
	v.SetDefault("MAIL_PROVIDER", "log")
	v.SetDefault("MAIL_FROM", "orders@vaidya.local")
	v.SetDefault("SEED_FILE", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SERVICE_NAME", "vaidya-storefront")
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return errors.New("DATABASE_DRIVER must be sqlite or postgres")
	}
	switch c.StoreBackend {
	case BackendGORM, BackendMongo:
	default:
		return errors.New("STORE_BACKEND must be gorm or mongo")
	}
	switch c.MailProvider {
	case "log":
	case "postmark":
		if c.PostmarkAPIToken == "" {
			return errors.New("POSTMARK_API_TOKEN is required when MAIL_PROVIDER=postmark")
		}
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return errors.New("SENDGRID_API_KEY is required when MAIL_PROVIDER=sendgrid")
		}
	default:
		return errors.New("MAIL_PROVIDER must be log, postmark or sendgrid")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.FreeGiftThreshold < 0 {
		return errors.New("FREE_GIFT_THRESHOLD must not be negative")
	}
	return nil
}

// IsAdmin reports whether email is on the admin allow-list.
func (c *Config) IsAdmin(email string) bool {
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
