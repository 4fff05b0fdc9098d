package transport

import (
	"context"
	"testing"
	"time"

	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

func TestLoopbackNoNodesUntilAttached(t *testing.T) {
	lb := NewLoopback()
	nodes, err := lb.ConnectedNodes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 0 {
		t.Fatalf("expected no nodes, got %d", len(nodes))
	}

	n := lb.Attach("wrist", 4)
	nodes, _ = lb.ConnectedNodes(context.Background())
	if len(nodes) != 1 || nodes[0].Name != "wrist" {
		t.Fatalf("expected attached node, got %+v", nodes)
	}

	n.Detach()
	nodes, _ = lb.ConnectedNodes(context.Background())
	if len(nodes) != 0 {
		t.Fatalf("expected node to be gone after detach, got %+v", nodes)
	}
}

func TestLoopbackDelivers(t *testing.T) {
	lb := NewLoopback()
	n := lb.Attach("wrist", 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan events.Record, 1)
	go func() {
		_ = n.Receive(ctx, func(_ context.Context, rec events.Record) { got <- rec })
	}()

	want := events.HapticRecord(42, models.EventTypeHomeRun)
	if err := lb.Put(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	select {
	case rec := <-got:
		if rec.Path != want.Path {
			t.Fatalf("expected path %q, got %q", want.Path, rec.Path)
		}
		if events.DecodeEventType(rec.Data) != models.EventTypeHomeRun {
			t.Fatalf("unexpected data %+v", rec.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("record not delivered")
	}
}

func TestLoopbackFullInboxDrops(t *testing.T) {
	lb := NewLoopback()
	n := lb.Attach("slow", 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := lb.Put(ctx, events.HapticRecord(1, models.EventTypeBall)); err != nil {
		t.Fatalf("first put should fit in the buffer: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- lb.Put(ctx, events.HapticRecord(2, models.EventTypeStrike)) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("overflowing put should drop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("put blocked on a full inbox")
	}

	got := make(chan events.Record, 2)
	go func() {
		_ = n.Receive(ctx, func(_ context.Context, rec events.Record) { got <- rec })
	}()
	select {
	case rec := <-got:
		if events.DecodeEventType(rec.Data) != models.EventTypeBall {
			t.Fatalf("expected the buffered record, got %+v", rec.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("buffered record not delivered")
	}
	select {
	case rec := <-got:
		t.Fatalf("dropped record was delivered: %+v", rec.Data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoopbackPutCancelled(t *testing.T) {
	lb := NewLoopback()
	lb.Attach("wrist", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := lb.Put(ctx, events.HapticRecord(1, models.EventTypeBall)); err == nil {
		t.Fatalf("expected error for a cancelled context")
	}
}
