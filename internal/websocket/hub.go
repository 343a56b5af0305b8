package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"playerstats/internal/infrastructure"
	"playerstats/pkg/contracts/events"
)

// Hub tracks the open live sessions. Sessions never talk to each other; the
// hub only registers them, counts them and closes them on shutdown.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	metrics *Metrics
	logger  *slog.Logger

	totalSessions int64

	quit    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
	once    sync.Once

	pumps sync.WaitGroup
}

// NewHub creates a new Hub. Nil metrics record nothing.
func NewHub(metrics *Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a new goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.Run()
}

// Run is the hub's main loop
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalSessions++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.sessionOpened(ctx)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			client.enqueue(ctx, events.NewResult(events.MessageTypeConnected, "", map[string]interface{}{
				"status":    "connected",
				"client_id": client.id,
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			delete(h.clients, client)
			count := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}

			ctx := client.context()
			duration := time.Since(client.connectedAt)
			h.metrics.sessionClosed(ctx, duration)
			h.logger.InfoContext(ctx, "Client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", duration))
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Serve runs the client's pumps and tracks them until Stop. It returns false
// once the hub has stopped; the pumps are not started then.
func (h *Hub) Serve(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}

	h.pumps.Add(2)
	go func() {
		defer h.pumps.Done()
		client.WritePump()
	}()
	go func() {
		defer h.pumps.Done()
		client.ReadPump()
	}()
	return true
}

// Unregister removes a client; it is a no-op after Stop
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// SessionCount returns the number of open sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns session counters
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"active_sessions": len(h.clients),
		"total_sessions":  h.totalSessions,
	}
}

// Stop closes every session and waits for the hub loop and the session pumps
// to exit or ctx to end.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	h.stopped = true
	running := h.running
	h.mu.Unlock()
	h.once.Do(func() { close(h.quit) })

	if running {
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		h.closeAll()
	}

	pumpsDone := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(pumpsDone)
	}()

	select {
	case <-pumpsDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.metrics.sessionClosed(client.context(), time.Since(client.connectedAt))
		client.close()
		delete(h.clients, client)
	}
}
