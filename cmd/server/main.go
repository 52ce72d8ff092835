// Command server boots the matching engine and its HTTP adapter.
// Grounded on the teacher's main.go (build the engine, wire up one
// symbol, block) and saiputravu-Exchange's cmd/server/server.go
// (signal.NotifyContext-driven graceful shutdown).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nexusbook/config"
	"nexusbook/engine"
	"nexusbook/metrics"
	"nexusbook/pubsub"
	"nexusbook/transport/httpapi"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	ps := pubsub.New(cfg.SubscriberQueueDepth)

	eng := engine.New(engine.Config{
		Workers:              cfg.Workers,
		TaskQueueDepth:       cfg.TaskQueueDepth,
		SubscriberQueueDepth: cfg.SubscriberQueueDepth,
	}, ps, m)

	srv := httpapi.New(httpapi.Config{
		ListenAddr:         cfg.ListenAddr,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}, eng, ps, registry)

	log.Info().Str("addr", cfg.ListenAddr).Msg("nexusbook starting")
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("nexusbook stopped")
}
