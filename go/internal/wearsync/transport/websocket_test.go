package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

func waitForNodes(t *testing.T, hub *Hub, want int) []Node {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		nodes, _ := hub.ConnectedNodes(context.Background())
		if len(nodes) == want {
			return nodes
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d nodes", want)
	return nil
}

func TestHubDeliversToClient(t *testing.T) {
	hub := NewHub(DefaultHubConfig())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	cfg := DefaultClientConfig()
	cfg.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	cfg.Node = Node{ID: "watch-1", Name: "galaxy-watch"}
	client := NewClient(cfg, clockwork.NewRealClock())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan events.Record, 4)
	go func() {
		_ = client.Receive(ctx, func(_ context.Context, rec events.Record) { got <- rec })
	}()

	nodes := waitForNodes(t, hub, 1)
	if nodes[0].ID != "watch-1" || nodes[0].Name != "galaxy-watch" {
		t.Fatalf("unexpected node %+v", nodes[0])
	}

	snap := models.GameSnapshot{GameID: "g1", HomeTeam: "SSG", AwayTeam: "KIA", HomeScore: 2, Inning: "1회초"}
	if err := hub.Put(ctx, events.GameRecord(10, snap)); err != nil {
		t.Fatalf("put: %v", err)
	}

	select {
	case rec := <-got:
		if events.DecodeGame(rec.Data) != snap {
			t.Fatalf("unexpected snapshot %+v", events.DecodeGame(rec.Data))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("record not delivered")
	}

	cancel()
	waitForNodes(t, hub, 0)
}

func TestHubPutWithoutConnections(t *testing.T) {
	hub := NewHub(DefaultHubConfig())
	if err := hub.Put(context.Background(), events.HapticRecord(1, models.EventTypeOut)); err != nil {
		t.Fatalf("put with no connections should not fail: %v", err)
	}
}
