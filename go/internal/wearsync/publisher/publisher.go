// Package publisher pushes game state from the handheld to the wrist.
//
// Delivery is at-most-once with no ordering guarantee. Publish calls enqueue a job and
// return immediately; a pool of workers checks for a reachable node and hands the
// record to the transport. When no node is reachable the record is skipped, when
// the queue is full it is dropped, and transport errors are logged and swallowed.
// Two publishes in flight at once may reach the wrist in either order.
package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/metrics"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/transport"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Workers          int
	QueueSize        int
	NodeCheckTimeout time.Duration
	PutTimeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:          4,
		QueueSize:        64,
		NodeCheckTimeout: 2 * time.Second,
		PutTimeout:       5 * time.Second,
	}
}

type job struct {
	channel events.Channel
	build   func(seq int64) events.Record
}

type Publisher struct {
	sender  transport.Sender
	seq     *events.Sequencer
	clock   clockwork.Clock
	metrics metrics.Collector
	config  Config
	jobs    chan job

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func New(sender transport.Sender, cfg Config, clock clockwork.Clock, collector metrics.Collector) *Publisher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if collector == nil {
		collector = metrics.NoOp{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &Publisher{
		sender:  sender,
		seq:     events.NewSequencer(clock),
		clock:   clock,
		metrics: collector,
		config:  cfg,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("publisher already running")
	}
	p.running = true
	p.stopChan = make(chan struct{})

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i, p.stopChan)
	}

	log.Info().
		Int("workers", p.config.Workers).
		Int("queue_size", p.config.QueueSize).
		Msg("publisher started")
	return nil
}

// Stop waits for in-flight publishes. Jobs still queued are discarded.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("publisher not running")
	}
	p.running = false
	stop := p.stopChan
	p.mu.Unlock()

	close(stop)
	p.wg.Wait()

	discarded := 0
drain:
	for {
		select {
		case <-p.jobs:
			discarded++
		default:
			break drain
		}
	}
	p.metrics.RecordQueueDepth(0)

	log.Info().Int("discarded", discarded).Msg("publisher stopped")
	return nil
}

// PublishGame pushes a full snapshot on the game channel.
func (p *Publisher) PublishGame(g models.GameSnapshot) bool {
	return p.enqueue(job{
		channel: events.ChannelGame,
		build:   func(seq int64) events.Record { return events.GameRecord(seq, g) },
	})
}

// PublishTheme pushes the followed team on the theme channel.
func (p *Publisher) PublishTheme(team string) bool {
	sel := models.ThemeSelection{Team: team, UpdatedAt: p.clock.Now()}
	return p.enqueue(job{
		channel: events.ChannelTheme,
		build:   func(seq int64) events.Record { return events.ThemeRecord(seq, sel) },
	})
}

// PublishHaptic pushes a standalone event pulse on the haptic channel.
func (p *Publisher) PublishHaptic(eventType models.EventType) bool {
	return p.enqueue(job{
		channel: events.ChannelHaptic,
		build:   func(seq int64) events.Record { return events.HapticRecord(seq, eventType) },
	})
}

func (p *Publisher) enqueue(j job) bool {
	select {
	case p.jobs <- j:
		p.metrics.RecordQueueDepth(len(p.jobs))
		return true
	default:
		log.Warn().Str("channel", j.channel.String()).Msg("publish queue full, dropping record")
		p.metrics.RecordPublish(j.channel.String(), metrics.OutcomeDropped, 0)
		return false
	}
}

func (p *Publisher) worker(ctx context.Context, id int, stop <-chan struct{}) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case j := <-p.jobs:
			p.metrics.RecordQueueDepth(len(p.jobs))
			p.send(ctx, j, id)
		}
	}
}

func (p *Publisher) send(ctx context.Context, j job, workerID int) {
	start := p.clock.Now()
	ch := j.channel.String()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("channel", ch).Msg("publish panicked")
			p.metrics.RecordPublish(ch, metrics.OutcomeFailed, p.clock.Since(start))
		}
	}()

	checkCtx, cancel := context.WithTimeout(ctx, p.config.NodeCheckTimeout)
	nodes, err := p.sender.ConnectedNodes(checkCtx)
	cancel()
	if err != nil {
		log.Warn().Err(err).Str("channel", ch).Msg("node lookup failed, skipping publish")
		p.metrics.RecordPublish(ch, metrics.OutcomeFailed, p.clock.Since(start))
		return
	}
	if len(nodes) == 0 {
		log.Debug().Str("channel", ch).Msg("no connected wear nodes, skipping publish")
		p.metrics.RecordPublish(ch, metrics.OutcomeSkipped, p.clock.Since(start))
		return
	}

	// Stamped at send time, not enqueue time
	rec := j.build(p.seq.Next())

	putCtx, cancel := context.WithTimeout(ctx, p.config.PutTimeout)
	defer cancel()
	if err := p.sender.Put(putCtx, rec); err != nil {
		log.Error().Err(err).Str("path", rec.Path).Msg("failed to publish record")
		p.metrics.RecordPublish(ch, metrics.OutcomeFailed, p.clock.Since(start))
		return
	}

	log.Debug().
		Str("path", rec.Path).
		Int("nodes", len(nodes)).
		Int("worker_id", workerID).
		Msg("record sent")
	p.metrics.RecordPublish(ch, metrics.OutcomeSent, p.clock.Since(start))
}
