package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/riskdash/riskdash/internal/config"
	"github.com/riskdash/riskdash/internal/domain/dataset"
	"github.com/riskdash/riskdash/internal/domain/risk"
	"github.com/riskdash/riskdash/internal/domain/scheduling"
	"github.com/riskdash/riskdash/internal/platform/calendar"
	"github.com/riskdash/riskdash/internal/platform/db"
	"github.com/riskdash/riskdash/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "riskdash-server",
		Short: "Patient risk dashboard API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(authorizeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(ctx)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

// authorizeCmd runs the one-time interactive consent flow and writes the
// resulting token file for the authorized-user calendar mode.
func authorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Authorize calendar access and store the token file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client, err := calendar.LoadClientSecrets(cfg.CalendarCredentialsFile)
			if err != nil {
				return err
			}

			fmt.Println("Open this URL in a browser and grant access:")
			fmt.Println()
			fmt.Println("  " + client.AuthCodeURL())
			fmt.Println()
			fmt.Print("Paste the authorization code here: ")

			reader := bufio.NewReader(cmd.InOrStdin())
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			httpClient := &http.Client{Timeout: 10 * time.Second}
			if err := client.Exchange(cmd.Context(), httpClient, code, cfg.CalendarTokenFile); err != nil {
				return err
			}
			fmt.Printf("Token stored in %s.\n", cfg.CalendarTokenFile)
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Optional database: the attempt log falls back to memory without one.
	ctx := context.Background()
	var attemptRepo scheduling.AttemptRepository = scheduling.NewInMemoryAttemptRepo()
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		attemptRepo = scheduling.NewAttemptRepoPG(pool)
		logger.Info().Msg("connected to database")
	}

	// Calendar client
	tokens, err := tokenSource(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure calendar auth")
	}
	cal := calendar.NewClient(cfg.CalendarID, tokens, calendar.WithBaseURL(cfg.CalendarBaseURL))

	// Services
	classifier := risk.NewClassifier(cfg.RiskThreshold)
	datasetSvc := dataset.NewService(dataset.NewInMemoryStore(), classifier)
	schedulingSvc := scheduling.NewService(cal, attemptRepo, cfg.MeetingTimezone, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.UploadLimit))
	e.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	// API routes
	apiV1 := e.Group("/api/v1")
	dataset.NewHandler(datasetSvc).RegisterRoutes(apiV1)
	risk.NewHandler().RegisterRoutes(apiV1)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// tokenSource builds the calendar token source for the configured auth mode.
func tokenSource(cfg *config.Config) (calendar.TokenSource, error) {
	switch cfg.CalendarAuthMode {
	case "authorized-user":
		return calendar.NewFileTokenSource(cfg.CalendarTokenFile), nil
	case "service-account":
		return calendar.NewServiceAccountTokenSource(cfg.CalendarCredentialsFile)
	case "static":
		return &calendar.StaticTokenSource{AccessToken: cfg.CalendarStaticToken}, nil
	default:
		return nil, fmt.Errorf("unknown calendar auth mode %q", cfg.CalendarAuthMode)
	}
}
