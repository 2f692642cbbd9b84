package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caretrack/caretrack/internal/config"
	"github.com/caretrack/caretrack/internal/domain/alert"
	"github.com/caretrack/caretrack/internal/domain/dose"
	"github.com/caretrack/caretrack/internal/domain/identity"
	"github.com/caretrack/caretrack/internal/domain/medication"
	"github.com/caretrack/caretrack/internal/domain/patient"
	"github.com/caretrack/caretrack/internal/domain/reporting"
	"github.com/caretrack/caretrack/internal/domain/treatment"
	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/internal/platform/db"
	"github.com/caretrack/caretrack/internal/platform/middleware"
)

// medicationCatalog adapts the medication repository to the treatment
// package's Catalog interface, avoiding a circular import between the
// treatment and medication packages.
type medicationCatalog struct {
	meds medication.Repository
}

func (c *medicationCatalog) Entry(ctx context.Context, id uuid.UUID) (*treatment.CatalogEntry, error) {
	m, err := c.meds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e := &treatment.CatalogEntry{ID: m.ID, Name: m.Name}
	if m.GenericName != nil {
		e.GenericName = *m.GenericName
	}
	return e, nil
}

// treatmentSource adapts the treatment repository to the dose package's
// TreatmentSource interface.
type treatmentSource struct {
	treatments treatment.Repository
}

func (s *treatmentSource) TreatmentPatient(ctx context.Context, treatmentID uuid.UUID) (uuid.UUID, error) {
	t, err := s.treatments.GetByID(ctx, treatmentID)
	if err != nil {
		return uuid.Nil, err
	}
	return t.PatientID, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "caretrack-server",
		Short: "CareTrack treatment management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
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

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health checks
	e.GET("/health", db.HealthHandler(pool))

	// Repositories
	userRepo := identity.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	medRepo := medication.NewRepoPG(pool)
	treatmentRepo := treatment.NewRepoPG(pool)
	doseRepo := dose.NewRepoPG(pool)
	alertRepo := alert.NewRepoPG(pool)
	reportRepo := reporting.NewRepoPG(pool)

	// Ownership guard shared by every patient-scoped service
	guard := auth.NewGuard(patientRepo, treatmentRepo)

	// Services
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenExpireMinutes)*time.Minute)
	identitySvc := identity.NewService(userRepo, issuer, cfg.BcryptCost)
	patientSvc := patient.NewService(patientRepo, treatmentRepo, guard)
	medSvc := medication.NewService(medRepo)
	treatmentSvc := treatment.NewService(treatmentRepo, treatmentRepo, &medicationCatalog{meds: medRepo}, patientRepo, guard)
	doseSvc := dose.NewService(doseRepo, &treatmentSource{treatments: treatmentRepo}, guard)
	alertSvc := alert.NewService(alertRepo, guard)
	reportSvc := reporting.NewService(reportRepo, guard)

	// API groups: register/login are public, everything else requires a
	// valid bearer token whose account still exists and is active.
	public := e.Group("/api/v1")
	api := e.Group("/api/v1", auth.Middleware(issuer, identitySvc))

	identity.NewHandler(identitySvc).RegisterRoutes(public, api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	medication.NewHandler(medSvc).RegisterRoutes(api)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(api)
	dose.NewHandler(doseSvc).RegisterRoutes(api)
	alert.NewHandler(alertSvc).RegisterRoutes(api)
	reporting.NewHandler(reportSvc).RegisterRoutes(api)

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
