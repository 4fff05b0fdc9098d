package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

const headerPath = "Wear-Path"

// NATSConfig holds configuration for the NATS/JetStream transport
type NATSConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string // records go to <prefix>.<channel>
	PresenceSubject string
	ConsumerName    string
	PresenceTimeout time.Duration // How long ConnectedNodes waits for replies
	MaxAge          time.Duration
	AckWait         time.Duration
	MaxDeliver      int
	MaxReconnects   int
	ReconnectWait   time.Duration
}

// DefaultNATSConfig returns default transport configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:             nats.DefaultURL,
		StreamName:      "WEAR_SYNC",
		SubjectPrefix:   "wearsync.records",
		PresenceSubject: "wearsync.presence",
		ConsumerName:    "wrist",
		PresenceTimeout: 250 * time.Millisecond,
		MaxAge:          time.Hour,
		AckWait:         10 * time.Second,
		MaxDeliver:      3,
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
	}
}

func (c NATSConfig) subject(ch events.Channel) string {
	return fmt.Sprintf("%s.%s", c.SubjectPrefix, ch)
}

// connectNATS creates a NATS connection with JetStream
func connectNATS(cfg NATSConfig) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return nc, js, nil
}

// ensureStream creates the sync stream. One message is kept per channel subject, so a
// newer record supersedes one the wrist has not consumed yet.
func ensureStream(ctx context.Context, js jetstream.JetStream, cfg NATSConfig) (jetstream.Stream, error) {
	sc := jetstream.StreamConfig{
		Name:              cfg.StreamName,
		Description:       "Handheld to wrist game sync",
		Subjects:          []string{cfg.SubjectPrefix + ".>"},
		Retention:         jetstream.LimitsPolicy,
		MaxMsgsPerSubject: 1,
		MaxAge:            cfg.MaxAge,
		Discard:           jetstream.DiscardOld,
		Storage:           jetstream.FileStorage,
		Replicas:          1,
	}
	stream, err := js.CreateOrUpdateStream(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}
	return stream, nil
}

// NATSSender publishes records to JetStream
type NATSSender struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config NATSConfig
}

func NewNATSSender(ctx context.Context, cfg NATSConfig) (*NATSSender, error) {
	nc, js, err := connectNATS(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := ensureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	log.Info().
		Str("stream", cfg.StreamName).
		Str("subject_prefix", cfg.SubjectPrefix).
		Msg("NATS sender ready")

	return &NATSSender{nc: nc, js: js, config: cfg}, nil
}

// ConnectedNodes scatters a presence request and gathers every reply that arrives
// before the presence timeout.
func (s *NATSSender) ConnectedNodes(ctx context.Context) ([]Node, error) {
	if !s.nc.IsConnected() {
		return nil, nil
	}

	inbox := s.nc.NewRespInbox()
	sub, err := s.nc.SubscribeSync(inbox)
	if err != nil {
		return nil, fmt.Errorf("subscribe presence inbox: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	if err := s.nc.PublishRequest(s.config.PresenceSubject, inbox, nil); err != nil {
		return nil, fmt.Errorf("publish presence request: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.config.PresenceTimeout)
	defer cancel()

	var nodes []Node
	for {
		msg, err := sub.NextMsgWithContext(waitCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nodes, nil
			}
			return nodes, fmt.Errorf("read presence reply: %w", err)
		}
		var n Node
		if err := json.Unmarshal(msg.Data, &n); err != nil || n.ID == "" {
			log.Debug().Err(err).Msg("ignoring malformed presence reply")
			continue
		}
		nodes = append(nodes, n)
	}
}

func (s *NATSSender) Put(ctx context.Context, rec events.Record) error {
	ch := rec.Channel()
	if ch == events.ChannelUnknown {
		return fmt.Errorf("record path %q has no channel", rec.Path)
	}
	data, err := events.Marshal(rec)
	if err != nil {
		return err
	}

	ack, err := s.js.PublishMsg(ctx, &nats.Msg{
		Subject: s.config.subject(ch),
		Data:    data,
		Header:  nats.Header{headerPath: []string{rec.Path}},
	}, jetstream.WithExpectStream(s.config.StreamName))
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("path", rec.Path).
		Uint64("sequence", ack.Sequence).
		Msg("record published")
	return nil
}

func (s *NATSSender) Close() error {
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}

// NATSReceiver consumes records from JetStream and answers presence requests
type NATSReceiver struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	node     Node
	config   NATSConfig
}

func NewNATSReceiver(ctx context.Context, cfg NATSConfig, node Node) (*NATSReceiver, error) {
	nc, js, err := connectNATS(cfg)
	if err != nil {
		return nil, err
	}

	stream, err := ensureStream(ctx, js, cfg)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          cfg.ConsumerName,
		Durable:       cfg.ConsumerName,
		Description:   "Wrist record consumer",
		FilterSubject: cfg.SubjectPrefix + ".>",
		DeliverPolicy: jetstream.DeliverLastPerSubjectPolicy, // Start with latest per channel
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	return &NATSReceiver{nc: nc, js: js, consumer: consumer, node: node, config: cfg}, nil
}

func (r *NATSReceiver) Receive(ctx context.Context, h Handler) error {
	reply, err := json.Marshal(r.node)
	if err != nil {
		return fmt.Errorf("marshal presence reply: %w", err)
	}
	presence, err := r.nc.Subscribe(r.config.PresenceSubject, func(m *nats.Msg) {
		if err := m.Respond(reply); err != nil {
			log.Warn().Err(err).Msg("failed to answer presence request")
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe presence: %w", err)
	}
	defer func() { _ = presence.Unsubscribe() }()

	messageCh := make(chan jetstream.Msg, 64)
	consumeCtx, err := r.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	log.Info().
		Str("node_id", r.node.ID).
		Str("consumer", r.config.ConsumerName).
		Msg("NATS receiver started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-messageCh:
			rec, err := events.Unmarshal(msg.Data())
			if err != nil {
				log.Warn().Err(err).Str("subject", msg.Subject()).Msg("dropping malformed record")
				// Redelivery cannot fix a malformed payload
				_ = msg.Term()
				continue
			}
			h(ctx, rec)
			if err := msg.Ack(); err != nil {
				log.Error().Err(err).Msg("failed to ACK record")
			}
		}
	}
}

func (r *NATSReceiver) Close() error {
	if r.nc != nil {
		r.nc.Close()
	}
	return nil
}
