package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "pix_checkout/docs"
	"pix_checkout/internal/adapter/http/routes"
	"pix_checkout/internal/config"
	"pix_checkout/internal/infrastructure/logging"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

// @title           PIX Checkout API
// @version         1.0
// @description     PIX payment initiation on Mercado Pago with confirmation polling.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, zap.String("service", "pix-checkout-api"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.MockGateway {
		logger.Warn("payment gateway running in mock mode")
	} else if cfg.SandboxToken() {
		logger.Info("using Mercado Pago sandbox credentials")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := routes.Run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
