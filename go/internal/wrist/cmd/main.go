package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/config"
	"github.com/mcdev12/basehaptic/go/internal/haptic"
	"github.com/mcdev12/basehaptic/go/internal/metrics"
	"github.com/mcdev12/basehaptic/go/internal/overlay"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/notify"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/store"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/subscriber"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/transport"
	"github.com/mcdev12/basehaptic/go/internal/wrist"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node := transport.Node{ID: cfg.Wrist.NodeID, Name: cfg.Wrist.NodeName}
	if node.ID == "" {
		node.ID = uuid.New().String()
	}

	clock := clockwork.NewRealClock()
	collector := metrics.NewPrometheus("basehaptic_wrist")

	backend, err := setupStore(ctx, cfg, node.ID)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Wrist.Store).Msg("failed to open cache")
	}
	defer backend.Close()

	hub := notify.NewHub()
	defer hub.Close()

	dispatcher := haptic.NewDispatcher(haptic.LogActuator{}, collector)
	sub := subscriber.New(store.NewCache(backend), hub, dispatcher,
		subscriber.WithClock(clock),
		subscriber.WithMetrics(collector),
	)

	eventCfg := overlay.EventOverlayConfig()
	eventCfg.Freshness = cfg.Wrist.Freshness
	homeRunCfg := overlay.HomeRunConfig()
	homeRunCfg.Freshness = cfg.Wrist.Freshness
	eventGate := overlay.NewGate(eventCfg, clock)
	homeRunGate := overlay.NewGate(homeRunCfg, clock)
	defer eventGate.Stop()
	defer homeRunGate.Stop()

	app := wrist.NewApp(sub, eventGate, homeRunGate)
	app.Restore(ctx)
	go app.Watch(ctx, hub.Subscribe(32))

	receiver, err := setupReceiver(ctx, cfg, node, clock)
	if err != nil {
		log.Fatal().Err(err).Str("transport", cfg.Transport).Msg("failed to create transport")
	}
	go func() {
		if err := sub.Run(ctx, receiver); err != nil {
			log.Error().Err(err).Msg("subscriber stopped")
		}
	}()

	mux := http.NewServeMux()
	app.RegisterRoutes(mux)
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Wrist.Port),
		Handler: h2c.NewHandler(c.Handler(mux), &http2.Server{}),
	}
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("node_id", node.ID).
			Str("transport", cfg.Transport).
			Str("store", cfg.Wrist.Store).
			Msg("wrist starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	cancel()
	if c, ok := receiver.(interface{ Close() error }); ok {
		_ = c.Close()
	}

	log.Info().Msg("wrist shutdown complete")
}

func setupStore(ctx context.Context, cfg config.Config, nodeID string) (store.Store, error) {
	switch cfg.Wrist.Store {
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StorePostgres:
		return store.NewPostgres(ctx, cfg.Database.DSN(), nodeID)
	default:
		return store.NewBolt(cfg.Wrist.BoltPath)
	}
}

func setupReceiver(ctx context.Context, cfg config.Config, node transport.Node, clock clockwork.Clock) (transport.Receiver, error) {
	switch cfg.Transport {
	case config.TransportNATS:
		nc := transport.DefaultNATSConfig()
		nc.URL = cfg.NATS.URL
		nc.StreamName = cfg.NATS.Stream
		nc.SubjectPrefix = cfg.NATS.SubjectPrefix
		nc.PresenceSubject = cfg.NATS.PresenceSubject
		nc.ConsumerName = cfg.NATS.Consumer
		return transport.NewNATSReceiver(ctx, nc, node)
	case config.TransportWebSocket:
		cc := transport.DefaultClientConfig()
		cc.URL = cfg.Wrist.HubURL
		cc.Node = node
		return transport.NewClient(cc, clock), nil
	default:
		return nil, fmt.Errorf("transport %q cannot reach a handheld in another process", cfg.Transport)
	}
}
