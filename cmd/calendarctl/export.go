package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/internal/repository"
	"github.com/noah-isme/calendar-scolar-api/internal/service"
	"github.com/noah-isme/calendar-scolar-api/pkg/export"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
	"github.com/noah-isme/calendar-scolar-api/pkg/storage"
)

var exportFlags struct {
	dir   string
	prune time.Duration
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the national feed and one feed per active county as static .ics files",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportFlags.dir
		if dir == "" {
			dir = current.cfg.Export.Dir
		}
		store, err := storage.NewLocalStorage(dir)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := current.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		cfg := current.cfg
		logr := current.logger
		validate := service.NewValidator()
		// Static exports read straight from Postgres.
		noCache := service.NewCacheService(nil, nil, cfg.Feed.CacheTTL, logr, false)

		counties := service.NewCountyService(repository.NewCountyRepository(db), repository.NewVacationRepository(db), noCache, cfg.Feed.CacheTTL, cfg.Feed.SchoolYear, validate, logr)
		feeds := service.NewFeedService(service.FeedDeps{
			Events:    service.NewEventService(repository.NewEventRepository(db), noCache, cfg.Feed.CacheTTL, validate, logr),
			Promos:    service.NewPromoService(repository.NewPromoRepository(db), noCache, validate, logr),
			Counties:  counties,
			Settings:  service.NewSettingsService(repository.NewSettingsRepository(db), noCache, cfg.Feed.CacheTTL, cfg.Feed.SchoolYear, validate, logr),
			Generator: ics.NewGenerator(ics.WithDomain(cfg.Feed.Domain)),
			Logger:    logr,
		})
		exporter := service.NewExportService(feeds, counties, logr, export.NewCSVExporter(), export.NewPDFExporter())

		started := time.Now()
		written, err := exporter.PublishFeeds(ctx, store)
		if err != nil {
			return err
		}
		for _, name := range written {
			fmt.Fprintln(cmd.OutOrStdout(), store.Path(name))
		}

		if exportFlags.prune > 0 {
			removed, err := store.CleanupOlderThan(started.Add(-exportFlags.prune), ".ics")
			if err != nil {
				return err
			}
			logr.Info("stale feeds removed", zap.Strings("files", removed))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.dir, "dir", "", "output directory (default EXPORT_DIR)")
	exportCmd.Flags().DurationVar(&exportFlags.prune, "prune", 0, "delete .ics files not rewritten within this window, e.g. 24h")
}
