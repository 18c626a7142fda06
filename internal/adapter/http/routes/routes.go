package routes

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	_ "pix_checkout/docs" // swagger docs
	"pix_checkout/internal/adapter/http/handlers"
	"pix_checkout/internal/adapter/http/middlewares"
	"pix_checkout/internal/config"
	"pix_checkout/internal/infrastructure/metrics"
	"pix_checkout/internal/infrastructure/payments"
	"pix_checkout/internal/poller"
	"pix_checkout/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	PaymentUseCase usecase.IPixPaymentUseCase
	Logger         *zap.Logger
	// Registry backs /metrics. A fresh registry is used when nil.
	Registry    *prometheus.Registry
	PollOptions []poller.Option
}

// NewRouter wires middlewares, swagger, metrics and the v1 routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	httpMetrics, err := metrics.NewHTTPMetrics(deps.Registry)
	if err != nil {
		return nil, err
	}
	pollMetrics, err := metrics.NewPollMetrics(deps.Registry)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	setMiddlewares(router, deps.Logger, httpMetrics)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	pixPaymentHandler := handlers.NewPixPaymentHandler(deps.PaymentUseCase, deps.Logger, pollMetrics, deps.PollOptions...)

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addPaymentRoutes(v1, pixPaymentHandler)

	return router, nil
}

// Run builds the service from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	gateway, err := payments.NewMercadoPagoGateway(payments.GatewayConfig{
		AccessToken:      cfg.MercadoPagoAccessToken,
		Mock:             cfg.MockGateway,
		MockApproveAfter: cfg.MockApproveAfter,
	}, logger)
	if err != nil {
		return err
	}
	paymentUseCase := usecase.NewPixPaymentUseCase(gateway, usecase.PixPaymentConfig{
		Payer:      cfg.Payer.ToEntity(),
		Expiration: cfg.PixExpiration,
	}, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := NewRouter(Dependencies{
		PaymentUseCase: paymentUseCase,
		Logger:         logger,
		Registry:       registry,
		PollOptions: []poller.Option{
			poller.WithInterval(cfg.PollInterval),
			poller.WithMaxDuration(cfg.PollMaxDuration),
		},
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server start", zap.String("addr", server.Addr), zap.Bool("mock_gateway", cfg.MockGateway))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("http server stopped")
	return nil
}

func setMiddlewares(router *gin.Engine, logger *zap.Logger, httpMetrics *metrics.HTTPMetrics) {
	router.Use(middlewares.RequestID())
	router.Use(middlewares.Logger(logger))
	router.Use(middlewares.Recovery(logger))
	router.Use(middlewares.Metrics(httpMetrics))
}
