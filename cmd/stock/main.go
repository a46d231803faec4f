package main

import (
	"context"
	"os"
	"time"

	"stock/internal/backend"
	"stock/internal/cli"
	apphttp "stock/internal/http"
	"stock/internal/inventory"
	"stock/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldError, err.Error(),
			"backend", backendCfg.Type.String())
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	store := inventory.New(res.Backend, logger)
	srv := apphttp.NewServer(":"+cfg.Port, store, res.Backend, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.APITimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting stock server",
		"port", cfg.Port,
		"backend", backendCfg.Type.String(),
		log.FieldOperation, log.OpStartup)

	if err := cli.Run(ctx, logger, srv, cfg.ShutdownTimeout); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
