package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/auth"
	authrepo "github.com/ovaphlow/pitchfork/service-admin-go/internal/auth/repo"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/config"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "service-admin",
		Short:         "Admin API for users, albums, tasks and team members",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, false)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "optional YAML config file")
	pf.String("addr", "", "HTTP listen address (HTTP_ADDR)")
	pf.String("database-url", "", "database connection string (DATABASE_URL)")
	pf.String("log-level", "", "debug|info|warn|error (LOG_LEVEL)")

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

// setup loads configuration and opens the logger and the database.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, *sqlx.DB, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	lg, err := utilities.InitLogger(cfg.LogConfig())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Connect(cfg.DatabaseConfig())
	if err != nil {
		_ = lg.Sync()
		return nil, nil, nil, fmt.Errorf("db connect: %w", err)
	}
	return cfg, lg, db, nil
}

func serve(cmd *cobra.Command, migrate bool) error {
	cfg, lg, db, err := setup(cmd)
	if err != nil {
		return err
	}
	defer lg.Sync()
	defer db.Close()

	sugar := lg.Sugar()
	sugar.Infow("starting service-admin", "addr", cfg.HTTP.Addr, "driver", cfg.Database.Driver)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate {
		if err := database.Migrate(ctx, db.DB, cfg.Database.Driver, sugar); err != nil {
			return err
		}
	}

	tokens, err := auth.NewTokenCodec(cfg.Auth.Secret)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(authrepo.NewCredentialRepo(db), tokens,
		auth.WithHasher(auth.BcryptHasher{Cost: cfg.Auth.BcryptCost}),
		auth.WithDefaultRole(cfg.Auth.DefaultRole),
		auth.WithLogger(sugar.Named("auth")),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: router.New(router.Deps{
			DB:          db,
			Logger:      sugar,
			Auth:        authSvc,
			Tokens:      tokens,
			CookieName:  cfg.Auth.CookieName,
			CORSOrigins: cfg.HTTP.CORSOrigins,
			IDs:         utilities.NewSnowflakeGenerator(cfg.SnowflakeNode),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
	return nil
}
