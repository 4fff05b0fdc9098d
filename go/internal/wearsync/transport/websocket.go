package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	"github.com/rs/zerolog/log"
)

// HubConfig holds configuration for WebSocket connections
type HubConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultHubConfig returns default WebSocket configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024, // wrist only sends control frames
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendBuffer:      32,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Hub accepts wrist connections on the handheld and fans records out to them
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*hubConn
	upgrader websocket.Upgrader
	config   HubConfig
}

type hubConn struct {
	node        Node
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

func NewHub(config HubConfig) *Hub {
	return &Hub{
		conns: make(map[string]*hubConn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// ServeHTTP upgrades a wrist connection. The node id and name come from the query string.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	node := Node{ID: r.URL.Query().Get("node"), Name: r.URL.Query().Get("name")}
	if node.ID == "" {
		node.ID = uuid.New().String()
	}

	c := &hubConn{
		node:        node,
		conn:        conn,
		send:        make(chan []byte, h.config.SendBuffer),
		connectedAt: time.Now(),
	}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)

	log.Info().
		Str("node_id", node.ID).
		Str("node_name", node.Name).
		Msg("wrist connected")
}

func (h *Hub) register(c *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// A reconnecting node replaces its stale connection
	if old, ok := h.conns[c.node.ID]; ok {
		close(old.send)
	}
	h.conns[c.node.ID] = c
}

func (h *Hub) unregister(c *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[c.node.ID]; ok && cur == c {
		delete(h.conns, c.node.ID)
		close(c.send)
		log.Info().
			Str("node_id", c.node.ID).
			Dur("connected_for", time.Since(c.connectedAt)).
			Msg("wrist disconnected")
	}
}

func (h *Hub) ConnectedNodes(ctx context.Context) ([]Node, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Node, 0, len(h.conns))
	for _, c := range h.conns {
		out = append(out, c.node)
	}
	return out, nil
}

// Put queues the record on every connection. A connection whose buffer is full
// misses the record.
func (h *Hub) Put(ctx context.Context, rec events.Record) error {
	data, err := events.Marshal(rec)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		select {
		case c.send <- data:
		default:
			log.Warn().
				Str("node_id", c.node.ID).
				Str("path", rec.Path).
				Msg("send buffer full, dropping record")
		}
	}
	return nil
}

// Close disconnects every wrist.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.conns {
		close(c.send)
		delete(h.conns, id)
	}
	return nil
}

func (h *Hub) writePump(c *hubConn) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				log.Error().Err(err).Str("node_id", c.node.ID).Msg("failed to write record")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *hubConn) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(h.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("node_id", c.node.ID).Msg("WebSocket read error")
			}
			return
		}
	}
}

// ClientConfig configures the wrist side of the WebSocket transport
type ClientConfig struct {
	URL          string // e.g. ws://phone.local:8090/ws/wear
	Node         Node
	MinBackoff   time.Duration
	MaxBackoff   time.Duration
	HandshakeTTL time.Duration
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:          "ws://localhost:8090/ws/wear",
		MinBackoff:   500 * time.Millisecond,
		MaxBackoff:   30 * time.Second,
		HandshakeTTL: 10 * time.Second,
	}
}

// Client dials the handheld hub and keeps the connection alive
type Client struct {
	config ClientConfig
	dialer *websocket.Dialer
	clock  clockwork.Clock
}

func NewClient(config ClientConfig, clock clockwork.Clock) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config.Node.ID == "" {
		config.Node.ID = uuid.New().String()
	}
	return &Client{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: config.HandshakeTTL},
		clock:  clock,
	}
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", fmt.Errorf("parse hub url: %w", err)
	}
	q := u.Query()
	q.Set("node", c.config.Node.ID)
	if c.config.Node.Name != "" {
		q.Set("name", c.config.Node.Name)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Receive keeps a connection to the hub open, reconnecting with backoff, until ctx is done.
func (c *Client) Receive(ctx context.Context, h Handler) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	backoff := c.config.MinBackoff
	for {
		conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("hub dial failed")
			select {
			case <-ctx.Done():
				return nil
			case <-c.clock.After(backoff):
			}
			backoff *= 2
			if backoff > c.config.MaxBackoff {
				backoff = c.config.MaxBackoff
			}
			continue
		}

		log.Info().Str("url", c.config.URL).Msg("connected to handheld hub")
		backoff = c.config.MinBackoff

		err = c.readLoop(ctx, conn, h)
		if ctx.Err() != nil {
			return nil
		}
		log.Warn().Err(err).Msg("hub connection lost")
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, h Handler) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("hub closed the connection")
			}
			return err
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		rec, err := events.Unmarshal(data)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed record")
			continue
		}
		h(ctx, rec)
	}
}
