package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voxhire/voxhire/server/adapters/mongo"
	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/domain/repositories"
	"github.com/voxhire/voxhire/server/internal/api"
	"github.com/voxhire/voxhire/server/internal/auth"
	"github.com/voxhire/voxhire/server/internal/config"
	"github.com/voxhire/voxhire/server/internal/logger"
	"github.com/voxhire/voxhire/server/internal/relay"
	"github.com/voxhire/voxhire/server/internal/scoring"
	"github.com/voxhire/voxhire/server/repository"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview relay server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if json, _ := cmd.Flags().GetBool("json"); json {
		cfg.JSON = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	candidates, vacancies, closeStore, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var reporter relay.Reporter
	if cfg.Gemini.APIKey != "" {
		geminiReporter, err := scoring.NewGeminiReporter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return fmt.Errorf("initializing reporter: %w", err)
		}
		reporter = geminiReporter
		log.Info("report generation enabled", zap.String("model", cfg.Gemini.Model))
	}

	dialer := &relay.RealtimeDialer{
		URL:     cfg.Realtime.URL,
		Model:   cfg.Realtime.Model,
		APIKey:  cfg.Realtime.APIKey,
		Timeout: cfg.Realtime.DialTimeout,
	}

	handler := relay.NewHandler(
		candidates,
		vacancies,
		relay.NewRegistry(),
		dialer,
		relay.NewFinalizer(candidates, reporter, log),
		entities.SessionParams{
			MinPrimaryRequired: cfg.Interview.MinPrimaryRequired,
			MinDialogMs:        cfg.Interview.MinDialogMs,
		},
		cfg.Realtime.Model,
		log,
	)

	authenticator := auth.NewAuthenticator(cfg.JWTSecret)
	if !authenticator.Enabled() {
		log.Warn("jwt secret not set, interview endpoint is unauthenticated")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, handler, authenticator, log)

	// Graceful shutdown
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			log.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	log.Info("server started", zap.Int("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

// buildRepositories wires Mongo-backed repositories when a URI is configured,
// falling back to in-memory stores for local development.
func buildRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.CandidateRepository, repositories.VacancyRepository, func(), error) {
	if cfg.Mongo.URI == "" {
		log.Warn("mongo URI not set, using in-memory repositories")
		return repository.NewMemoryCandidateRepository(), repository.NewMemoryVacancyRepository(), func() {}, nil
	}

	client, err := mongo.NewClient(cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	closeStore := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			log.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
	return mongo.NewCandidateRepository(client.Database), mongo.NewVacancyRepository(client.Database), closeStore, nil
}
