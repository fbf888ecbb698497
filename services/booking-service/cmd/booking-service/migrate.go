package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("migrate needs DATABASE_URL")
			}
			logger := runtime.NewLogger(cfg.ServiceName)
			pool, err := db.Open(cmd.Context(), cfg.DatabaseURL, db.Options{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := storage.NewPostgresStore(pool).Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("schema applied")
			return nil
		},
	}
}
