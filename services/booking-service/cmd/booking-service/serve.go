package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reminders"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

func newServeCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving (postgres only)")
	return cmd
}

func serve(cfg *Config, migrate bool) error {
	logger := runtime.NewLogger(cfg.ServiceName)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.ServiceName))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, err := runtime.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	store, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	var checks []runtime.ReadyCheck
	if pool != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
		if migrate {
			if err := storage.NewPostgresStore(pool).Migrate(ctx); err != nil {
				return err
			}
			logger.Info("schema applied")
		}
	} else {
		n, err := storage.SeedCatalog(ctx, store)
		if err != nil {
			return err
		}
		logger.Info("memory store seeded", "records", n)
	}

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: redisReady(rdb)})
	}
	cache, err := newSlotCache(cfg, rdb, logger)
	if err != nil {
		return err
	}

	publisher, brokerCheck, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	if brokerCheck != nil {
		checks = append(checks, *brokerCheck)
	}

	dispatcher := newDispatcher(cfg, logger)
	queue := notify.NewQueue(logger, cfg.Notify.QueueSize, cfg.Notify.Workers)
	scheduler := reminders.NewScheduler(dispatcher, logger, reminders.Config{})

	svc := booking.NewService(booking.Deps{
		Store:      store,
		Reminders:  scheduler,
		Dispatcher: dispatcher,
		Queue:      queue,
		Events:     publisher,
		Cache:      cache,
		Logger:     logger,
		Location:   loc,
	})
	restored, err := svc.RestoreReminders(ctx)
	if err != nil {
		logger.Error("restore reminders failed", "err", err)
	} else {
		logger.Info("reminders restored", "count", restored)
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewHandler(svc, logger).Register(mux)

	var handler http.Handler = httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(cfg.HTTP.CORSAllowedOrigins)),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		rateLimit(cfg, rdb, logger),
		httpx.WithBodyLimit(1<<20),
		requestTimeout(cfg),
		auth.Authenticate(verifier),
	)
	handler = otelhttp.NewHandler(handler, "booking")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	scheduler.Stop()
	if err := queue.Close(shutdownCtx); err != nil {
		logger.Warn("notify queue not drained", "err", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("event publisher close failed", "err", err)
	}
	logger.Info("http server stopped")
	return nil
}
