package transport

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	"github.com/rs/zerolog/log"
)

// Loopback connects senders and receivers inside one process. Records go through
// the wire codec so behaviour matches the network transports.
type Loopback struct {
	mu    sync.RWMutex
	nodes map[string]*LoopbackNode
}

func NewLoopback() *Loopback {
	return &Loopback{nodes: make(map[string]*LoopbackNode)}
}

// LoopbackNode is one attached receiver.
type LoopbackNode struct {
	node  Node
	inbox chan []byte
	owner *Loopback
}

// Attach registers a receiving node. It is reachable until Detach is called.
func (l *Loopback) Attach(name string, buffer int) *LoopbackNode {
	if buffer <= 0 {
		buffer = 64
	}
	n := &LoopbackNode{
		node:  Node{ID: uuid.New().String(), Name: name},
		inbox: make(chan []byte, buffer),
		owner: l,
	}
	l.mu.Lock()
	l.nodes[n.node.ID] = n
	l.mu.Unlock()
	return n
}

// Detach makes the node unreachable.
func (n *LoopbackNode) Detach() {
	n.owner.mu.Lock()
	delete(n.owner.nodes, n.node.ID)
	n.owner.mu.Unlock()
}

// Node returns the node identity.
func (n *LoopbackNode) Node() Node { return n.node }

func (l *Loopback) ConnectedNodes(ctx context.Context) ([]Node, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Node, 0, len(l.nodes))
	for _, n := range l.nodes {
		out = append(out, n.node)
	}
	return out, nil
}

// Put never blocks: a node whose inbox is full misses the record.
func (l *Loopback) Put(ctx context.Context, rec events.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := events.Marshal(rec)
	if err != nil {
		return err
	}

	l.mu.RLock()
	targets := make([]*LoopbackNode, 0, len(l.nodes))
	for _, n := range l.nodes {
		targets = append(targets, n)
	}
	l.mu.RUnlock()

	for _, n := range targets {
		select {
		case n.inbox <- data:
		default:
			log.Warn().
				Str("node_id", n.node.ID).
				Str("path", rec.Path).
				Msg("inbox full, dropping record")
		}
	}
	return nil
}

// Receive implements Receiver.
func (n *LoopbackNode) Receive(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-n.inbox:
			rec, err := events.Unmarshal(data)
			if err != nil {
				log.Warn().Err(err).Str("node_id", n.node.ID).Msg("dropping malformed record")
				continue
			}
			h(ctx, rec)
		}
	}
}
