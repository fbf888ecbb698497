package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/slotcache"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

// openStore connects to Postgres, or falls back to the memory store when no
// DATABASE_URL is set. The returned pool is nil in memory mode.
func openStore(ctx context.Context, cfg *Config, logger *slog.Logger) (storage.Store, *db.Pool, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		return storage.NewMemoryStore(), nil, nil
	}
	pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{MaxConns: int32(cfg.DBMaxConns)})
	if err != nil {
		return nil, nil, fmt.Errorf("db connection failed: %w", err)
	}
	return storage.NewPostgresStore(pool), pool, nil
}

func openRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func redisReady(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

func newSlotCache(cfg *Config, rdb *redis.Client, logger *slog.Logger) (slotcache.Cache, error) {
	if cfg.SlotCacheTTLSeconds <= 0 {
		return slotcache.Nop{}, nil
	}
	if rdb != nil {
		return slotcache.NewRedis(rdb, cfg.slotCacheTTL(), logger), nil
	}
	return slotcache.NewLRU(1024, cfg.slotCacheTTL())
}

// rateLimit is nil, and skipped by httpx.Chain, when RATE_LIMIT_PER_MINUTE <= 0.
func rateLimit(cfg *Config, rdb *redis.Client, logger *slog.Logger) httpx.Middleware {
	limit := cfg.HTTP.RateLimitPerMinute
	if limit <= 0 {
		return nil
	}
	var l httpx.Limiter = httpx.NewMemoryRateLimiter(limit, time.Minute)
	if rdb != nil {
		l = httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "ratelimit:"+cfg.ServiceName)
	}
	return httpx.RateLimit(l, logger, true)
}

func requestTimeout(cfg *Config) httpx.Middleware {
	if cfg.HTTP.RequestTimeout <= 0 {
		return nil
	}
	return httpx.WithTimeout(time.Duration(cfg.HTTP.RequestTimeout) * time.Second)
}

// newPublisher picks the event transport. The returned check is nil unless
// the transport has something worth probing from /readyz.
func newPublisher(cfg *Config, logger *slog.Logger) (events.Publisher, *runtime.ReadyCheck, error) {
	switch cfg.Events.Transport {
	case "kafka":
		brokers := kafkax.SplitBrokers(cfg.Events.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, nil, errors.New("EVENTS_TRANSPORT=kafka requires KAFKA_BROKERS")
		}
		check := runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)}
		return events.NewKafkaPublisher(brokers, cfg.Events.KafkaTopic), &check, nil
	case "rabbitmq":
		if cfg.Events.RabbitURL == "" {
			return nil, nil, errors.New("EVENTS_TRANSPORT=rabbitmq requires RABBITMQ_URL")
		}
		p, err := events.NewRabbitPublisher(cfg.Events.RabbitURL, cfg.Events.RabbitExchange)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq: %w", err)
		}
		return p, nil, nil
	default:
		return events.NewLogPublisher(logger), nil, nil
	}
}

func newDispatcher(cfg *Config, logger *slog.Logger) notify.Router {
	var router notify.Router
	switch cfg.Notify.SMSProvider {
	case "webhook":
		router.SMS = notify.NewWebhookSender(cfg.Notify.SMSWebhookURL, cfg.Notify.SMSWebhookToken)
	default:
		router.SMS = notify.NewLogSender(logger.With("channel", "sms"))
	}
	if cfg.Notify.SMTPHost != "" {
		router.Email = notify.NewSMTPSender(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort, cfg.Notify.SMTPFrom, "Your salon booking")
	} else {
		router.Email = notify.NewLogSender(logger.With("channel", "email"))
	}
	return router
}

func newVerifier(cfg *Config) (auth.Verifier, error) {
	switch {
	case cfg.Auth.JWKSURL != "":
		return auth.JWKSVerifier{Keys: auth.NewJWKSClient(cfg.Auth.JWKSURL, 10*time.Minute)}, nil
	case cfg.Auth.JWTSecret != "":
		return auth.HS256Verifier{Secret: cfg.Auth.JWTSecret}, nil
	default:
		return nil, errors.New("JWT_SECRET or JWKS_URL is required")
	}
}
