// Package httpapi is the HTTP transport adapter for the matching core: it
// imports engine/domain/pubsub but is never imported back (spec.md §1 —
// "the core does not itself know about sockets or wire formats"). Routing
// uses gorilla/mux (seen in DimaJoyti-ai-agentic-crypto-browser and the
// kyd module), and streaming endpoints use chunked HTTP rather than
// WebSockets, which spec.md §1 explicitly scopes out.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gopkg.in/tomb.v2"

	"nexusbook/engine"
	"nexusbook/pubsub"
)

// Config controls the HTTP adapter itself, separate from engine.Config.
type Config struct {
	ListenAddr         string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Server wires the matching engine and pubsub up to an HTTP router. It
// owns no matching state of its own.
type Server struct {
	engine *engine.Engine
	pubsub *pubsub.PubSub
	http   *http.Server
	t      *tomb.Tomb
}

// New builds a Server ready to Run. reg is optional (nil disables
// /metrics); cmd/server passes the same *prometheus.Registry that
// metrics.New registered the engine's counters against.
func New(cfg Config, eng *engine.Engine, ps *pubsub.PubSub, reg prometheus.Gatherer) *Server {
	s := &Server{engine: eng, pubsub: ps}

	router := mux.NewRouter()
	limiters := newClientLimiters(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	router.HandleFunc("/v1/orders", rateLimit(limiters, s.submitOrder)).Methods(http.MethodPost)
	router.HandleFunc("/v1/symbols/{symbol}/bbo", s.getBBO).Methods(http.MethodGet)
	router.HandleFunc("/v1/symbols/{symbol}/depth", s.getDepth).Methods(http.MethodGet)
	router.HandleFunc("/v1/symbols/{symbol}/stream/trades", s.streamTrades).Methods(http.MethodGet)
	router.HandleFunc("/v1/symbols/{symbol}/stream/marketdata", s.streamMarketData).Methods(http.MethodGet)
	if reg != nil {
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // streaming endpoints are long-lived
	}
	return s
}

// Run starts the engine's worker pool and the HTTP listener, blocking
// until ctx is canceled, then drains both in order: stop accepting new
// requests, shut the engine down, wait for in-flight matching tasks.
// Grounded on saiputravu-Exchange's cmd/server/server.go
// signal.NotifyContext + tomb-supervised accept-loop shape.
func (s *Server) Run(ctx context.Context) error {
	s.engine.Start()

	t, ctx := tomb.WithContext(ctx)
	s.t = t

	s.t.Go(func() error {
		log.Info().Str("addr", s.http.Addr).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during http shutdown")
	}

	if err := s.engine.Stop(); err != nil {
		log.Error().Err(err).Msg("error stopping engine")
	}

	return s.t.Wait()
}
