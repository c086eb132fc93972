package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/orderflow-cyclic/internal/config"
	"github.com/joao-fontenele/orderflow-cyclic/internal/generator"
	"github.com/joao-fontenele/orderflow-cyclic/internal/messaging"
	"github.com/joao-fontenele/orderflow-cyclic/internal/orders"
	"github.com/joao-fontenele/orderflow-cyclic/internal/stores"
	"github.com/joao-fontenele/orderflow-cyclic/internal/telemetry"
)

var service = telemetry.Service{Name: "generator", Version: "0.1.0"}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, service, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(service)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	backend, err := stores.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer func() { _ = backend.Close(ctx) }()

	opts := cfg.EngineOptions()
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer := messaging.NewProducer(brokers, generator.OrderGeneratedTopic)
		defer func() { _ = producer.Close() }()
		opts = append(opts, generator.WithPublisher(producer))
	}

	engine := generator.NewEngine(backend.Stores, logger, opts...)
	generateHandler := generator.NewHandler(engine, cfg.DaysAhead, logger)
	ordersHandler := orders.NewHandler(backend.Reader, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate", telemetry.WithHTTPRoute(generateHandler.HandleGenerate))
	mux.HandleFunc("GET /generate", telemetry.WithHTTPRoute(generateHandler.HandleGenerate))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(ordersHandler.HandleList))
	mux.HandleFunc("GET /orders/{userId}/{date}", telemetry.WithHTTPRoute(ordersHandler.HandleGet))
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	port := strconv.Itoa(cfg.Port)
	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "generator",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		logger.Info("starting generator service", "port", port, "store_driver", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
