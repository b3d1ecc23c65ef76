package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Domenick1991/flightescrow/config"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
)

// env is what every subcommand needs: loaded config and an open store.
type env struct {
	cfg   *config.Config
	store *repository.PGStore
	log   *zap.Logger
}

func main() {
	_ = godotenv.Load()

	var configPath string
	rootCmd := &cobra.Command{
		Use:           "escrowctl",
		Short:         "Operator tool for the flight escrow service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (defaults to CONFIG_PATH or config.yaml)")

	open := func(ctx context.Context) (*env, func(), error) {
		path := configPath
		if path == "" {
			path = config.Path()
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &env{cfg: cfg, store: repository.NewPGStore(pool), log: zap.NewNop()}, pool.Close, nil
	}

	rootCmd.AddCommand(migrateCmd(open))
	rootCmd.AddCommand(flightsCmd(open))
	rootCmd.AddCommand(accountsCmd(open))

	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type opener func(ctx context.Context) (*env, func(), error)

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := e.store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			okColor.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}
