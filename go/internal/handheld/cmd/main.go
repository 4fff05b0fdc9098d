package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/config"
	"github.com/mcdev12/basehaptic/go/internal/feed"
	"github.com/mcdev12/basehaptic/go/internal/handheld"
	"github.com/mcdev12/basehaptic/go/internal/metrics"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/publisher"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
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

	clock := clockwork.NewRealClock()
	collector := metrics.NewPrometheus("basehaptic_handheld")
	mux := http.NewServeMux()

	sender, closeSender, err := setupSender(ctx, cfg, mux)
	if err != nil {
		log.Fatal().Err(err).Str("transport", cfg.Transport).Msg("failed to create transport")
	}
	defer closeSender()

	pubCfg := publisher.DefaultConfig()
	pubCfg.Workers = cfg.Handheld.Workers
	pubCfg.QueueSize = cfg.Handheld.QueueSize
	pubCfg.PutTimeout = cfg.Handheld.PutTimeout
	pub := publisher.New(sender, pubCfg, clock, collector)
	if err := pub.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start publisher")
	}

	service := handheld.NewService(pub, cfg.Handheld.MyTeam)
	handheld.NewHandler(service).RegisterRoutes(mux)
	handheld.MountRPC(mux, handheld.NewRPCService(service))
	mux.Handle("/metrics", collector.Handler())

	// The wrist may have missed the selection while it was away
	if _, _, err := service.SetTeam(service.Team()); err != nil {
		log.Error().Err(err).Msg("failed to publish followed team")
	}

	source, err := setupFeed(cfg, service.Team(), clock)
	if err != nil {
		log.Fatal().Err(err).Str("feed", cfg.Handheld.Feed).Msg("failed to create game feed")
	}
	if source != nil {
		go func() {
			if err := service.Drive(ctx, source); err != nil {
				log.Error().Err(err).Msg("game feed stopped")
			}
		}()
	}

	server := setupServer(mux, cfg.Handheld.Port)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("transport", cfg.Transport).
			Str("feed", cfg.Handheld.Feed).
			Str("team", service.Team()).
			Msg("handheld starting")
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
	if err := pub.Stop(); err != nil {
		log.Error().Err(err).Msg("publisher shutdown failed")
	}

	log.Info().Msg("handheld shutdown complete")
}

func setupSender(ctx context.Context, cfg config.Config, mux *http.ServeMux) (transport.Sender, func(), error) {
	switch cfg.Transport {
	case config.TransportNATS:
		s, err := transport.NewNATSSender(ctx, natsConfig(cfg))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.TransportWebSocket:
		hub := transport.NewHub(transport.DefaultHubConfig())
		mux.Handle("/ws/wear", hub)
		return hub, func() { _ = hub.Close() }, nil
	default:
		// In-process wrist that only logs what it receives
		lb := transport.NewLoopback()
		node := lb.Attach("local-wrist", 64)
		go func() {
			_ = node.Receive(ctx, func(ctx context.Context, rec events.Record) {
				log.Info().Str("path", rec.Path).Interface("data", rec.Data).Msg("loopback record")
			})
		}()
		return lb, node.Detach, nil
	}
}

func setupFeed(cfg config.Config, team string, clock clockwork.Clock) (feed.Source, error) {
	switch cfg.Handheld.Feed {
	case config.FeedScript:
		return feed.NewDemoScript(team, clock), nil
	case config.FeedPostgres:
		lc := feed.DefaultListenerConfig()
		lc.DatabaseURL = cfg.Database.DSN()
		lc.NotifyChannel = cfg.Handheld.NotifyChannel
		return feed.NewPGListener(lc)
	default:
		return nil, nil
	}
}

func natsConfig(cfg config.Config) transport.NATSConfig {
	nc := transport.DefaultNATSConfig()
	nc.URL = cfg.NATS.URL
	nc.StreamName = cfg.NATS.Stream
	nc.SubjectPrefix = cfg.NATS.SubjectPrefix
	nc.PresenceSubject = cfg.NATS.PresenceSubject
	nc.ConsumerName = cfg.NATS.Consumer
	nc.PresenceTimeout = cfg.NATS.PresenceTimeout
	return nc
}
