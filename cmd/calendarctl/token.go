package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/calendar-scolar-api/internal/handler"
	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/internal/repository"
	"github.com/noah-isme/calendar-scolar-api/internal/service"
	"github.com/noah-isme/calendar-scolar-api/pkg/storage"
)

var tokenFlags struct {
	email string
	role  string
	ttl   time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin API bearer token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := current.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		user, err := repository.NewUserRepository(db).FindByEmail(ctx, tokenFlags.email)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no user with email %s", tokenFlags.email)
		}
		if err != nil {
			return err
		}
		if !user.Active {
			return fmt.Errorf("user %s is disabled", user.Email)
		}
		if tokenFlags.role != "" {
			role := models.UserRole(strings.ToUpper(tokenFlags.role))
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", tokenFlags.role)
			}
			user.Role = role
		}

		ttl := current.cfg.JWT.Expiration
		if tokenFlags.ttl > 0 {
			ttl = tokenFlags.ttl
		}
		tokens := service.NewTokenService(service.TokenConfig{Secret: current.cfg.JWT.Secret, Issuer: current.cfg.JWT.Issuer, TTL: ttl})
		token, expiresAt, err := tokens.Issue(*user)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "role %s, expires %s\n", user.Role, expiresAt.Format(time.RFC3339))
		return nil
	},
}

var premiumFlags struct {
	subscriber string
	ttl        time.Duration
}

var premiumLinkCmd = &cobra.Command{
	Use:   "premium-link",
	Short: "Print a signed premium feed URL for a subscriber",
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl := current.cfg.Feed.PremiumTTL
		if premiumFlags.ttl > 0 {
			ttl = premiumFlags.ttl
		}
		feeds := service.NewFeedService(service.FeedDeps{
			Premium: storage.NewSignedURLSigner(current.cfg.Feed.PremiumSecret, ttl),
			Logger:  current.logger,
		})
		token, expiresAt, err := feeds.PremiumToken(premiumFlags.subscriber)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), handler.PremiumFeedURL(current.cfg.Feed.PublicBaseURL, token))
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.email, "email", "", "email of the admin or editor")
	tokenCmd.Flags().StringVar(&tokenFlags.role, "role", "", "override the stored role (ADMIN or EDITOR)")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 0, "token lifetime (default JWT_EXPIRATION)")
	_ = tokenCmd.MarkFlagRequired("email")

	premiumLinkCmd.Flags().StringVar(&premiumFlags.subscriber, "subscriber", "", "subscriber identifier embedded in the token")
	premiumLinkCmd.Flags().DurationVar(&premiumFlags.ttl, "ttl", 0, "link lifetime (default FEED_PREMIUM_TTL)")
	_ = premiumLinkCmd.MarkFlagRequired("subscriber")
}
