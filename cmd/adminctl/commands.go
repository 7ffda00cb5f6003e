package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/binhminh-backend/internal/config"
	"github.com/ignatzorin/binhminh-backend/internal/db"
	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/repository"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Operator tool for the Bình Minh backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCommand(), newCreateAdminCommand())
	return root
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations for the configured DB_DRIVER",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := db.RunMigrations(cmd.Context(), conn, cfg.MigrationsDir())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to apply")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			return nil
		},
	}
}

type createAdminOptions struct {
	username string
	email    string
	password string
	fullName string
	role     string
}

func newCreateAdminCommand() *cobra.Command {
	opts := &createAdminOptions{}
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			admins := service.NewAdminService(
				resource.DefaultRegistry().MustGet(resource.AdminUsers),
				repository.NewGateway(conn),
				service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
			)
			id, err := admins.CreateUser(cmd.Context(), opts.payload())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q with id %d\n", opts.username, id)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.username, "username", "", "login name")
	flags.StringVar(&opts.email, "email", "", "email address")
	flags.StringVar(&opts.password, "password", "", "password")
	flags.StringVar(&opts.fullName, "full-name", "", "display name")
	flags.StringVar(&opts.role, "role", resource.RoleAdmin, "role: admin or editor")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (o *createAdminOptions) payload() map[string]any {
	p := map[string]any{
		"username": o.username,
		"email":    o.email,
		"password": o.password,
		"role":     o.role,
	}
	if o.fullName != "" {
		p["full_name"] = o.fullName
	}
	return p
}

func connect(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, nil, err
	}
	logger.SetTextFormatter()

	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}
