package transport

import (
	"context"

	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

// Node is a reachable peer on the transport
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sender is the handheld side of the device channel.
type Sender interface {
	// ConnectedNodes lists peers that can currently receive records.
	ConnectedNodes(ctx context.Context) ([]Node, error)
	// Put delivers one record. Delivery is best-effort.
	Put(ctx context.Context, rec events.Record) error
}

// Handler processes one received record.
type Handler func(ctx context.Context, rec events.Record)

// Receiver is the wrist side of the device channel.
type Receiver interface {
	// Receive blocks, invoking h for each record, until ctx is done or the
	// transport fails permanently.
	Receive(ctx context.Context, h Handler) error
}
