package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/calendar-scolar-api/internal/repository"
	"github.com/noah-isme/calendar-scolar-api/internal/seed"
)

var seedFlags struct {
	file          string
	adminEmail    string
	adminPassword string
	dryRun        bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load vacation groups, counties and national events from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := seed.Load(seedFlags.file)
		if err != nil {
			return err
		}
		if seedFlags.dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d groups, %d counties, %d events for %s\n",
				seedFlags.file, len(f.Groups), f.CountyCount(), len(f.Events), f.SchoolYear)
			return nil
		}

		ctx := cmd.Context()
		db, err := current.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		if seedFlags.adminEmail != "" {
			f.Admin.Email = seedFlags.adminEmail
		}
		password := seedFlags.adminPassword
		if password == "" {
			password = os.Getenv("CALENDAR_ADMIN_PASSWORD")
		}

		seeder := seed.NewSeeder(seed.Stores{
			Users:    repository.NewUserRepository(db),
			Groups:   repository.NewVacationRepository(db),
			Counties: repository.NewCountyRepository(db),
			Events:   repository.NewEventRepository(db),
			Settings: repository.NewSettingsRepository(db),
		}, bcrypt.DefaultCost, current.logger)

		res, err := seeder.Apply(ctx, f, password)
		if err != nil {
			return err
		}
		current.logger.Info("seed complete",
			zap.Bool("admin_created", res.AdminCreated),
			zap.Bool("settings_created", res.SettingsCreated),
			zap.Int("groups", res.Groups),
			zap.Int("periods", res.Periods),
			zap.Int("counties", res.Counties),
			zap.Int("events", res.Events),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFlags.file, "file", "f", "seed/seed.yaml", "seed document")
	seedCmd.Flags().StringVar(&seedFlags.adminEmail, "admin-email", "", "email of the bootstrap admin (default from the file)")
	seedCmd.Flags().StringVar(&seedFlags.adminPassword, "admin-password", "", "password for a newly created admin (default $CALENDAR_ADMIN_PASSWORD, then the file)")
	seedCmd.Flags().BoolVar(&seedFlags.dryRun, "dry-run", false, "validate the file without touching the database")
}
