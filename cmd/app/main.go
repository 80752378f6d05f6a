package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"applecare-activation/internal/config"
	pg "applecare-activation/internal/infra/db/postgres"
	"applecare-activation/internal/infra/invoice"
	"applecare-activation/internal/infra/logging"
	"applecare-activation/internal/infra/mail"
	"applecare-activation/internal/infra/metrics"
	red "applecare-activation/internal/infra/redis"
	"applecare-activation/internal/infra/sched"
	"applecare-activation/internal/infra/ticket"
	"applecare-activation/internal/infra/web"
	"applecare-activation/internal/infra/worker"
	"applecare-activation/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPostgresPlanRepo(pool), redisClient, cfg.Redis.TTL)
	requestRepo := pg.NewPostgresRequestRepo(pool)
	settingsRepo := pg.NewPostgresSettingsRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Adapters ----
	invoices, err := invoice.NewGenerator(cfg.Storage.InvoiceDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("invoice storage")
	}
	mailer := mail.NewSMTPMailer(logger)
	tickets := ticket.NewOSTicketClient()

	// ---- Background side-effect pool ----
	pool4 := worker.NewPool(4, logger)
	pool4.Start(ctx)
	defer pool4.Stop()

	// ---- Use cases ----
	authUC := usecase.NewAuthUseCase(userRepo)
	planUC := usecase.NewPlanUseCase(planRepo)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo)
	statsUC := usecase.NewStatsUseCase(requestRepo)
	requestUC := usecase.NewRequestUseCase(
		requestRepo, planRepo, settingsRepo, txm,
		invoices, mailer, tickets, pool4,
		cfg.Auth.JWTSecret, cfg.Server.BaseURL, logger,
	)

	// ---- Side-effect retry (hourly) ----
	retry := sched.NewRetryWorker(1*time.Hour, requestUC, logger)
	go func() { _ = retry.Run(ctx) }()

	// ---- HTTP ----
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := web.NewServer(
		authUC, planUC, requestUC, settingsUC, statsUC,
		authMgr, rateLimiter, cfg.RateLimit.PublicSubmitPerMinute, cfg.Storage.UploadDir, logger,
	)
	router := chi.NewRouter()
	srv.RegisterRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
