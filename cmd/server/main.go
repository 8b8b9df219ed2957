package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/eurofx/rate-service/internal/application/service"
	"github.com/eurofx/rate-service/internal/config"
	"github.com/eurofx/rate-service/internal/infrastructure/api"
	"github.com/eurofx/rate-service/internal/infrastructure/auth"
	"github.com/eurofx/rate-service/internal/infrastructure/cache"
	"github.com/eurofx/rate-service/internal/infrastructure/handler"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
	"github.com/eurofx/rate-service/internal/infrastructure/metrics"
	"github.com/eurofx/rate-service/internal/infrastructure/middleware"
	"github.com/eurofx/rate-service/internal/infrastructure/scheduler"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, logger.Level(strings.ToUpper(cfg.LogLevel)))
	logger.SetDefaultLogger(log)

	log.Info("Starting EUR exchange rate service", nil)

	appMetrics := metrics.NewMetrics()
	currencies := cfg.CurrencyList()

	// Core wiring: source -> builder -> store -> services
	source := api.NewBundesbankClient(
		cfg.Source.URLTemplate,
		&http.Client{Timeout: cfg.Source.Timeout},
		log,
	)
	store := cache.NewSnapshotStore()
	builder := service.NewDatasetBuilder(source, currencies, log)
	exchangeService := service.NewExchangeService(store, builder, currencies, log)

	tokens := auth.NewJWTProvider(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	authService := service.NewAuthService(cfg.Security.Username, cfg.Security.Password, tokens, log)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First load is synchronous and fatal on failure: the service never
	// starts serving without a queryable snapshot.
	log.Info("Performing initial dataset load", map[string]interface{}{
		"currencies": currencies,
	})
	if err := exchangeService.RefreshNow(rootCtx); err != nil {
		log.Fatal("Initial dataset load failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Handlers and routing
	rateHandler := handler.NewRateHandler(exchangeService, log)
	authHandler := handler.NewAuthHandler(authService, log)

	router := mux.NewRouter()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.MetricsMiddleware(appMetrics),
		middleware.AuthMiddleware(tokens,
			[]string{"/api/auth/token", "/health", "/metrics"}, log, appMetrics),
	)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	authHandler.RegisterRoutes(apiRouter)
	rateHandler.RegisterRoutes(apiRouter)

	// Daily refresh
	refreshScheduler, err := scheduler.NewDailyScheduler(exchangeService, cfg.Source.RefreshAt, log, appMetrics)
	if err != nil {
		log.Fatal("Failed to create refresh scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	go refreshScheduler.Run(rootCtx)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{
			"addr": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server", nil)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server exited", nil)
}
