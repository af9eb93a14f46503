package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusreq_backend/database"
	"campusreq_backend/internal/auth"
	"campusreq_backend/internal/config"
	"campusreq_backend/internal/logger"
	"campusreq_backend/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cliContext struct {
	cfg *config.Config
	log *zap.Logger
}

// NewRootCommand builds the campusreq command tree.
func NewRootCommand() *cobra.Command {
	cc := &cliContext{}

	root := &cobra.Command{
		Use:           "campusreq",
		Short:         "Campus request lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(logger.Options{Env: cfg.Server.Env, Level: cfg.Log.Level, Format: cfg.Log.Format})
			cc.cfg = cfg
			cc.log = logger.L()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.AddCommand(serveCmd(cc))
	root.AddCommand(reconcileCmd(cc))
	root.AddCommand(migrateCmd(cc))
	root.AddCommand(tokenCmd(cc))
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, broadcast hub and scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := New(cc.cfg, cc.log)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}
}

func reconcileCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconcile sweep and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := New(cc.cfg, cc.log)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.ReconcileOnce(ctx)
			if result != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(result); encErr != nil {
					return encErr
				}
			}
			return err
		},
	}
}

func migrateCmd(cc *cliContext) *cobra.Command {
	var steps int

	withMigrator := func(fn func(m *database.Migrator) error) error {
		db, err := database.Connect(cc.cfg, cc.log)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		m, err := database.NewMigrator(sqlDB, cc.log)
		if err != nil {
			return err
		}
		return fn(m)
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error { return m.Up() })
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error { return m.Down(steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

// tokenCmd mints a bearer token for local testing. Accounts are owned by the
// campus identity provider; this service only verifies tokens.
func tokenCmd(cc *cliContext) *cobra.Command {
	var (
		userID       string
		role         string
		departmentID string
		ttl          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = time.Duration(cc.cfg.JWT.TTL) * time.Minute
			}
			m := auth.NewManager(cc.cfg.JWT.Secret, cc.cfg.JWT.Issuer, ttl)
			token, err := m.Generate(userID, models.UserRole(role), departmentID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (uuid)")
	cmd.Flags().StringVar(&role, "role", string(models.UserRoleUser), "user, staff or admin")
	cmd.Flags().StringVar(&departmentID, "department", "", "department id for staff")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to jwt.ttl)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
