// Command calendarctl seeds the database, mints admin tokens and premium links, and
// exports static ICS feeds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/pkg/config"
	"github.com/noah-isme/calendar-scolar-api/pkg/database"
	"github.com/noah-isme/calendar-scolar-api/pkg/logger"
)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

var current app

var root = &cobra.Command{
	Use:           "calendarctl",
	Short:         "Operate the school calendar service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logr, err := logger.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		current = app{cfg: cfg, logger: logr}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current.logger != nil {
			_ = current.logger.Sync()
		}
	},
}

func init() {
	root.AddCommand(seedCmd, tokenCmd, premiumLinkCmd, exportCmd)
}

func (a app) openDB(ctx context.Context) (*sqlx.DB, error) {
	return database.NewPostgres(ctx, a.cfg.Database, a.cfg.Startup, a.logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
