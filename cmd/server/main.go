package main

import (
	"context"
	"crypto/rand"
	"errors"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prooftalent/assessment-backend/internal/behavior"
	"github.com/prooftalent/assessment-backend/internal/config"
	"github.com/prooftalent/assessment-backend/internal/database"
	"github.com/prooftalent/assessment-backend/internal/fhe"
	"github.com/prooftalent/assessment-backend/internal/handler"
	"github.com/prooftalent/assessment-backend/internal/ledger"
	"github.com/prooftalent/assessment-backend/internal/logger"
	"github.com/prooftalent/assessment-backend/internal/questionbank"
	"github.com/prooftalent/assessment-backend/internal/repository"
	"github.com/prooftalent/assessment-backend/internal/router"
	"github.com/prooftalent/assessment-backend/internal/service"
	"github.com/prooftalent/assessment-backend/internal/validator"
	"github.com/prooftalent/assessment-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting assessment backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Load Paillier Key Pair ────────────────────────────────────────
	key, err := loadOrGenerateKey(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load evaluation key")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	sessionRepo := repository.NewSessionRepository(pool)
	certificateRepo := repository.NewCertificateRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	bank := questionbank.New(
		mrand.New(mrand.NewSource(time.Now().UnixNano())),
		cfg.QuestionsPerSession,
		cfg.PassFraction,
	)
	analyzer := behavior.New(behavior.Params{
		VarianceFloor:              cfg.VarianceFloor,
		FlagThreshold:              cfg.FlagThreshold,
		ExpectedSecondsPerQuestion: cfg.ExpectedSecondsPerQ,
	})
	chain := ledger.NewGateway(cfg.LedgerGatewayURL, cfg.LedgerTimeout, log)

	tokenService := service.NewTokenService(cfg)
	evaluatorService := service.NewEvaluatorService(key, log)
	sessionService := service.NewSessionService(
		sessionRepo,
		bank,
		evaluatorService,
		analyzer,
		tokenService,
		service.NewRedisTelemetrySink(rdb, cfg.SessionTTL, log),
		service.NewRedisMonitor(rdb, log),
		cfg.SessionTTL,
		log,
	)
	certificateService := service.NewCertificateService(
		sessionRepo, certificateRepo, chain, cfg.LedgerTimeout, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Session:     handler.NewSessionHandler(sessionService),
		Quiz:        handler.NewQuizHandler(bank, evaluatorService),
		Certificate: handler.NewCertificateHandler(certificateService),
		Ledger:      handler.NewLedgerHandler(chain),
		Monitor:     handler.NewMonitorHandler(rdb, cfg.AllowedOrigins, log),
		System:      handler.NewSystemHandler(pool, rdb),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	telemetryWorker := worker.NewTelemetryWorker(pool, rdb, log)
	expiryWorker := worker.NewExpiryWorker(sessionRepo, log)

	go telemetryWorker.Start(workerCtx)
	go expiryWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(tokenService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop background workers and let the telemetry queue drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// loadOrGenerateKey loads the Paillier key pair from FHE_KEY_FILE, falling
// back to an ephemeral key when no file is configured. Ephemeral keys make
// previously issued encrypted scores undecryptable after a restart; fine
// for development, use cmd/keygen in production.
func loadOrGenerateKey(cfg *config.Config, log zerolog.Logger) (*fhe.PrivateKey, error) {
	if cfg.FHEKeyFile != "" {
		key, err := fhe.LoadKey(cfg.FHEKeyFile)
		if err == nil {
			log.Info().Str("path", cfg.FHEKeyFile).Msg("Loaded evaluation key")
			return key, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Warn().Str("path", cfg.FHEKeyFile).Msg("Key file not found, generating ephemeral key")
	} else {
		log.Warn().Msg("FHE_KEY_FILE not set, generating ephemeral key")
	}

	key, err := fhe.GenerateKey(rand.Reader, cfg.FHEKeyBits)
	if err != nil {
		return nil, err
	}
	log.Info().Int("bits", cfg.FHEKeyBits).Msg("Generated ephemeral evaluation key")
	return key, nil
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
