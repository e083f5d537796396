package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/antimatter-studios/cognito-local/config"
	"github.com/antimatter-studios/cognito-local/internal/adapters/primary/httpapi"
	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/datastore"
	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/eventbroker"
	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/lambda"
	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/messages"
	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/security"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
	"github.com/antimatter-studios/cognito-local/internal/core/services"
	"github.com/antimatter-studios/cognito-local/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger := initLogger(cfg)
	logger.Info("starting cognito-local", "env", cfg.Environment, "port", cfg.HTTPPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Error("failed to init tracer", "error", err)
	} else if tp != nil {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
	}

	factory, err := datastore.NewFileFactory(cfg.DataDir)
	if err != nil {
		logger.Error("failed to init data store", "error", err)
		os.Exit(1)
	}

	clock := &services.SystemClock{}
	cognito := services.NewCognito(factory, clock)

	keys, err := security.NewKeyMaterial()
	if err != nil {
		logger.Error("failed to generate signing key", "error", err)
		os.Exit(1)
	}

	lambdaRunner := lambda.NewGojaLambda(cfg.Lambda.Dir, triggerFunctions(cfg.Lambda.Functions), cfg.Lambda.Timeout, logger)
	triggers := services.NewLambdaTriggers(lambdaRunner, triggerFunctions(cfg.Lambda.Functions), clock)
	tokens := security.NewJWTProvider(keys, triggers, clock, cfg.Issuer)
	delivery := messages.NewConsoleDelivery(logger)
	renderer := services.NewMessageRenderer(triggers, delivery)

	var events ports.DomainEventPublisher
	if cfg.NATS.URL != "" {
		broker, err := eventbroker.NewNatsBroker(cfg.NATS.URL, cfg.NATS.Stream, cfg.NATS.Subject)
		if err != nil {
			logger.Warn("NATS unavailable, domain events disabled", "error", err)
		} else {
			events = broker
			logger.Info("NATS JetStream connected", "url", cfg.NATS.URL)
		}
	}

	deps := &router.Deps{
		Cognito:  cognito,
		Tokens:   tokens,
		Clock:    clock,
		OTP:      services.RandomOTP{},
		Triggers: triggers,
		Messages: renderer,
		Events:   events,
	}
	r := router.New(deps)

	srv := httpapi.NewServer(fmt.Sprintf(":%d", cfg.HTTPPort), r, keys, logger)

	go func() {
		logger.Info("http server listening", "addr", srv.Addr())
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	logger.Info("signal received, shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	logger.Info("service stopped")
}

func triggerFunctions(functions map[string]string) map[ports.TriggerName]string {
	out := make(map[ports.TriggerName]string, len(functions))
	for k, v := range functions {
		out[ports.TriggerName(k)] = v
	}
	return out
}

func initLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.IsLocal() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func initTracer(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if cfg.OTEL.Endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTEL.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.OTEL.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
