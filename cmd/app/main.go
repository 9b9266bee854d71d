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

	"codegate/internal/config"
	pg "codegate/internal/infra/db/postgres"
	"codegate/internal/infra/logging"
	"codegate/internal/infra/metrics"
	"codegate/internal/infra/web"
	"codegate/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10, logger)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.InitSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ---- Repositories ----
	codeRepo := pg.NewCodeRepo(pool)
	logRepo := pg.NewAccessLogRepo(pool)

	// ---- Use cases ----
	codeUC := usecase.NewCodeUseCase(codeRepo, logRepo, logger, cfg.Runtime.Dev)
	sessionUC := usecase.NewSessionUseCase(codeRepo, logRepo, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth)
	throttle := web.NewThrottle(cfg.Gate.CheckInterval, cfg.Gate.MaxEntries)
	srv := web.NewServer(codeUC, sessionUC, auth, throttle, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
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
