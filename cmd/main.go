package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/config"
	"propertyms/internal/middleware"
	"propertyms/internal/models"
	"propertyms/pkg/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "propertyms",
		Short:         "Property management payments and tenancy service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd(), generatePaymentsCmd(), tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("log_level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the monthly payment scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(commandContext(cmd), cfg, newLogger(cfg.LogLevel))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			ctx := commandContext(cmd)
			pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			return database.Migrate(ctx, pool, logger)
		},
	}
}

func generatePaymentsCmd() *cobra.Command {
	now := time.Now()
	var month, year int

	cmd := &cobra.Command{
		Use:   "generate-payments",
		Short: "Create the monthly payments for every active tenancy",
		Long: "Marks stale pending payments overdue, then creates one payment per active " +
			"tenancy for the given period. Safe to run more than once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			ctx := commandContext(cmd)
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.payments.GenerateMonthly(ctx, common.SystemIdentity, month, year)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"created":        result.Created,
				"overdue_marked": result.OverdueMarked,
			}).Info(result.Message)
			return nil
		},
	}

	cmd.Flags().IntVar(&month, "month", int(now.Month()), "billing month (1-12)")
	cmd.Flags().IntVar(&year, "year", now.Year(), "billing year")
	return cmd
}

// tokenCmd mints a bearer token for local testing against the API.
func tokenCmd() *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			r := models.Role(role)
			if !r.IsValid() {
				return fmt.Errorf("invalid role %q", role)
			}
			if userID <= 0 {
				return fmt.Errorf("--user-id must be positive, got %d", userID)
			}

			token, err := middleware.IssueToken(cfg.JWTSecret, userID, r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "user id to embed in the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "ADMIN, OWNER or TENANT")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
