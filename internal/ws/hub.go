package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"synonym_arena/internal/metrics"
)

const sendTimeout = 2 * time.Second

var ErrNoConnection = errors.New("connection not found")

// Hub is the connection registry of one instance. Handles are
// "<instance>.<uuid>" so any instance can tell where a connection lives.
type Hub struct {
	instanceID string
	relay      *Relay
	log        *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	// running counts clients whose disconnect cleanup has not finished
	running sync.WaitGroup
}

func NewHub(instanceID string, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		instanceID: instanceID,
		log:        log,
		clients:    make(map[string]*Client),
	}
}

// SetRelay enables delivery to connections held by other instances.
func (h *Hub) SetRelay(r *Relay) {
	h.relay = r
}

func (h *Hub) InstanceID() string {
	return h.instanceID
}

func (h *Hub) NewHandle() string {
	return h.instanceID + "." + uuid.NewString()
}

func instanceOf(handle string) string {
	i := strings.LastIndexByte(handle, '.')
	if i < 0 {
		return ""
	}
	return handle[:i]
}

func (h *Hub) Register(c *Client) {
	h.running.Add(1)
	h.mu.Lock()
	h.clients[c.Handle] = c
	h.mu.Unlock()
	metrics.ActiveConnections.Inc()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	cur, ok := h.clients[c.Handle]
	if ok && cur == c {
		delete(h.clients, c.Handle)
	}
	h.mu.Unlock()
	if ok && cur == c {
		metrics.ActiveConnections.Dec()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send encodes one message and hands it to the owning connection, local or
// remote.
func (h *Hub) Send(ctx context.Context, handle, msgType string, payload any) error {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s: %w", msgType, err)
	}

	if inst := instanceOf(handle); inst != "" && inst != h.instanceID && h.relay != nil {
		return h.relay.Publish(ctx, inst, handle, data)
	}
	return h.deliver(handle, data)
}

// deliver writes to a connection held by this instance.
func (h *Hub) deliver(handle string, data []byte) error {
	h.mu.RLock()
	c, ok := h.clients[handle]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", handle, ErrNoConnection)
	}
	return c.enqueue(data, sendTimeout)
}

// CloseAll shuts every local connection and waits, until ctx is done, for
// their disconnect cleanup. Used on server shutdown.
func (h *Hub) CloseAll(ctx context.Context) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		h.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		h.log.Warn("disconnect cleanup did not finish", "error", ctx.Err())
	}
	h.log.Info("closed websocket connections", "count", len(clients))
}
