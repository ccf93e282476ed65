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

	"github.com/clinsight/clinsight/internal/config"
	"github.com/clinsight/clinsight/internal/domain/diagnosis"
	"github.com/clinsight/clinsight/internal/domain/patient"
	"github.com/clinsight/clinsight/internal/platform/db"
	"github.com/clinsight/clinsight/internal/platform/middleware"
	"github.com/clinsight/clinsight/internal/platform/oracle"
)

// historyAdapter adapts the patient service to the diagnosis engine's
// HistorySource, avoiding a dependency from the patient package on the
// diagnosis package.
type historyAdapter struct {
	svc *patient.Service
}

func (a historyAdapter) History(ctx context.Context, patientID uuid.UUID) (diagnosis.HistoryRecord, error) {
	hist, err := a.svc.History(ctx, patientID)
	if err != nil {
		return diagnosis.HistoryRecord{}, err
	}
	return convertHistory(hist), nil
}

func convertHistory(hist *patient.History) diagnosis.HistoryRecord {
	rec := diagnosis.HistoryRecord{PatientID: hist.Patient.ID.String()}
	for _, c := range hist.Conditions {
		rec.Conditions = append(rec.Conditions, diagnosis.RecordCondition{
			Name:         c.Name,
			OnsetDate:    c.OnsetDate,
			ResolvedDate: c.ResolvedDate,
		})
	}
	for _, m := range hist.Medications {
		rec.Medications = append(rec.Medications, diagnosis.RecordMedication{
			Name:             m.Name,
			Dose:             m.Dose,
			DiscontinuedDate: m.DiscontinuedDate,
		})
	}
	for _, f := range hist.RiskFactors {
		rec.RiskFactors = append(rec.RiskFactors, f.Name)
	}
	return rec
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinsight-server",
		Short: "Diagnosis aggregation and safety-scoring API server",
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

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			count, err := db.NewMigrator(pool).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			statuses, err := db.NewMigrator(pool).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
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
	})

	return cmd
}

func newOracleClient(cfg *config.Config) (oracle.Client, error) {
	timeout := time.Duration(cfg.OracleTimeout) * time.Second
	switch cfg.OracleProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return oracle.Disabled{}, nil
		}
		return oracle.NewGeminiClient(cfg.GeminiAPIKey, cfg.OracleModel, timeout), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return oracle.Disabled{}, nil
		}
		return oracle.NewAnthropicClient(cfg.AnthropicKey, cfg.OracleModel)
	case "none":
		return oracle.Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.OracleProvider)
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	policy, err := diagnosis.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load scoring policy")
	}

	oracleClient, err := newOracleClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build oracle client")
	}
	if _, disabled := oracleClient.(oracle.Disabled); disabled {
		logger.Warn().Msg("oracle disabled, every analysis will run in rule-based fallback mode")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeout) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Domain wiring
	patientSvc := patient.NewService(patient.NewRepo(pool))
	engine := diagnosis.NewEngine(policy)
	diagnosisSvc := diagnosis.NewService(engine, oracleClient, historyAdapter{svc: patientSvc},
		diagnosis.NewRepo(pool), logger)

	api := e.Group("/api")
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	diagnosis.NewHandler(diagnosisSvc).RegisterRoutes(api)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

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
