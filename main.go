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

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/locales"
	"github.com/kendall-kelly/repair-shop-api/logger"
	"github.com/kendall-kelly/repair-shop-api/routes"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/tracing"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repairshop",
		Short:         "Repair Shop API",
		Long:          `Repair Shop API serves the staff back office and the client portal of an electronics repair shop`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := bootstrap()
				if err != nil {
					return err
				}
				zap.L().Info("database migration completed successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Seed order statuses and the bootstrap admin account",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := bootstrap()
				if err != nil {
					return err
				}
				return runSeed(cmd, cfg)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of repairshop",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "repairshop version %s\n", version)
			},
		},
	)
	return rootCmd
}

// bootstrap loads the configuration, installs the logger and migrates the database
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config.SetConfig(cfg)

	if _, err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		File:   cfg.LogFile,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.EnvFile != "" {
		zap.L().Info("loaded environment file", zap.String("file", cfg.EnvFile))
	}

	if err := config.ConnectDatabase(cfg); err != nil {
		return nil, err
	}
	if err := config.Migrate(config.GetDB()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSeed(cmd *cobra.Command, cfg *config.Config) error {
	db := config.GetDB()
	if err := config.SeedStatuses(db); err != nil {
		return err
	}

	created, err := config.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created admin account %s\n", cfg.AdminEmail)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "admin account %s already exists\n", cfg.AdminEmail)
	}
	return nil
}

func runServe(ctx context.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer zap.L().Sync()

	if err := locales.Init(); err != nil {
		return err
	}
	locales.SetDefaultLanguage(cfg.DefaultLanguage)
	utils.ExposeErrorDetails = cfg.IsDevelopment()

	if cfg.StorageEnabled() {
		if _, err := services.InitS3Service(ctx, cfg); err != nil {
			return err
		}
	} else {
		zap.L().Warn("AWS_S3_BUCKET is not set, order attachments are disabled")
	}

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.GoEnv,
		Insecure:    !cfg.IsProduction(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			zap.L().Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.Setup(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server is running", zap.String("addr", server.Addr), zap.String("env", cfg.GoEnv), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
