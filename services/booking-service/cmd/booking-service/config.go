package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"booking-service"`
	Port        string `env:"PORT" envDefault:"8083"`
	Timezone    string `env:"APP_TIMEZONE" envDefault:"UTC"`

	// Empty DatabaseURL runs on the in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`

	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		Password string `env:"REDIS_PASSWORD"`
	}

	Events struct {
		Transport      string `env:"EVENTS_TRANSPORT" envDefault:"none"`
		KafkaBrokers   string `env:"KAFKA_BROKERS"`
		KafkaTopic     string `env:"KAFKA_TOPIC" envDefault:"salon.bookings.v1"`
		RabbitURL      string `env:"RABBITMQ_URL"`
		RabbitExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"salon.bookings"`
	}

	Auth struct {
		JWTSecret string `env:"JWT_SECRET"`
		JWKSURL   string `env:"JWKS_URL"`
	}

	Notify struct {
		SMSProvider     string `env:"SMS_PROVIDER" envDefault:"log"`
		SMSWebhookURL   string `env:"SMS_WEBHOOK_URL"`
		SMSWebhookToken string `env:"SMS_WEBHOOK_TOKEN"`
		SMTPHost        string `env:"SMTP_HOST"`
		SMTPPort        string `env:"SMTP_PORT" envDefault:"587"`
		SMTPFrom        string `env:"SMTP_FROM" envDefault:"bookings@localhost"`
		Workers         int    `env:"NOTIFY_WORKERS" envDefault:"4"`
		QueueSize       int    `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`
	}

	HTTP struct {
		RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
		CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
		RequestTimeout     int      `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"15"`
	}

	SlotCacheTTLSeconds int `env:"SLOT_CACHE_TTL_SECONDS" envDefault:"30"`

	// ReminderLead is written into salon settings by `seed --settings`.
	ReminderLead string `env:"REMINDER_LEAD" envDefault:"1hour"`
}

func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.CheckPort("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if _, err := model.ParseReminderLead(cfg.ReminderLead); err != nil {
		return nil, fmt.Errorf("REMINDER_LEAD: %w", err)
	}
	cfg.Events.Transport = strings.ToLower(strings.TrimSpace(cfg.Events.Transport))
	switch cfg.Events.Transport {
	case "kafka", "rabbitmq", "none", "":
	default:
		return nil, fmt.Errorf("EVENTS_TRANSPORT must be kafka, rabbitmq or none (got %q)", cfg.Events.Transport)
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 1
	}
	return cfg, nil
}

func (c *Config) slotCacheTTL() time.Duration {
	return time.Duration(c.SlotCacheTTLSeconds) * time.Second
}
