package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"playerstats/internal/infrastructure"
	"playerstats/pkg/contracts/events"
)

// Options tune the live session connections
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	// MaxMessageSize caps one inbound frame
	MaxMessageSize int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	// RequestTimeout bounds the evaluation of one frame
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// DefaultOptions returns the default connection settings
func DefaultOptions() Options {
	return Options{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxMessageSize:  64 * 1024,
		PingPeriod:      54 * time.Second,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
		RequestTimeout:  30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = d.ReadBufferSize
	}
	if o.WriteBufferSize <= 0 {
		o.WriteBufferSize = d.WriteBufferSize
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	// Pings must go out before the peer's pong deadline passes.
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = d.RequestTimeout
	}
	return o
}

// Client is one live filter session. ReadPump evaluates frames in arrival
// order, so replies keep the order of the requests.
type Client struct {
	hub       *Hub
	conn      Connection
	service   FilterService
	validator RequestValidator
	opts      Options

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger  *slog.Logger
	metrics *Metrics

	messagesSent     int64
	messagesReceived int64
}

// NewClient creates a session over conn
func NewClient(hub *Hub, conn Connection, service FilterService, validator RequestValidator, opts Options, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)

	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		validator:   validator,
		opts:        opts.withDefaults(),
		send:        make(chan []byte, 16),
		done:        make(chan struct{}),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger:      logger,
		metrics:     hub.metrics,
	}
}

// ID returns the session id
func (c *Client) ID() string {
	return c.id
}

// ReadPump reads and answers frames until the peer goes away
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		close(c.done)
		c.close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++

		ctx, cancel := context.WithTimeout(c.context(), c.opts.RequestTimeout)
		reply := c.handle(ctx, message)
		cancel()

		c.enqueue(c.context(), reply)
	}
}

// WritePump writes queued replies and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		c.logger.DebugContext(c.context(), "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// enqueue hands a reply to the write pump. It gives up once the session ends.
func (c *Client) enqueue(ctx context.Context, msg events.ServerMessage) {
	msg.TraceID = c.traceID
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to encode reply",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}

	select {
	case c.send <- data:
		c.metrics.frame(ctx, "out", string(msg.Type))
	case <-c.done:
	}
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}
