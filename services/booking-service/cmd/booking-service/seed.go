package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

type seedOptions struct {
	settings   bool
	adminPhone string
	adminToken bool
	tokenTTL   time.Duration
}

func newSeedCommand() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog and optionally print an admin token",
		Long: `Seed writes the starter services and providers into empty collections.

With --settings it also (re)writes salon settings using REMINDER_LEAD and
--admin-phone. With --admin-token it prints an HS256 admin token signed with
JWT_SECRET, for local use.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return seed(cmd, cfg, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.settings, "settings", false, "write default salon settings")
	cmd.Flags().StringVar(&opts.adminPhone, "admin-phone", "", "admin phone for new-booking notices")
	cmd.Flags().BoolVar(&opts.adminToken, "admin-token", false, "print a signed admin token")
	cmd.Flags().DurationVar(&opts.tokenTTL, "token-ttl", 24*time.Hour, "admin token lifetime")
	return cmd
}

func seed(cmd *cobra.Command, cfg *Config, opts *seedOptions) error {
	ctx := cmd.Context()
	logger := runtime.NewLogger(cfg.ServiceName)

	store, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := storage.SeedCatalog(ctx, store)
	if err != nil {
		return err
	}
	logger.Info("catalog seeded", "records", n)

	if opts.settings {
		st := model.DefaultSettings()
		st.ReminderLead = model.ReminderLead(cfg.ReminderLead)
		st.AdminPhone = opts.adminPhone
		if err := store.PutSettings(ctx, st); err != nil {
			return fmt.Errorf("write settings: %w", err)
		}
		logger.Info("settings written", "reminder_lead", st.ReminderLead)
	}

	if opts.adminToken {
		if cfg.Auth.JWTSecret == "" {
			return errors.New("--admin-token needs JWT_SECRET")
		}
		now := time.Now()
		tok, err := auth.SignHS256(auth.Claims{
			Sub:   "admin",
			Name:  "Administrator",
			Phone: opts.adminPhone,
			Role:  auth.RoleAdmin,
			Iat:   now.Unix(),
			Exp:   now.Add(opts.tokenTTL).Unix(),
		}, cfg.Auth.JWTSecret)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
	}
	return nil
}
