package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	apierrors "playerstats/internal/errors"
	"playerstats/internal/infrastructure"
)

// Handler upgrades GET /ws/stats requests into live filter sessions
type Handler struct {
	hub          *Hub
	service      FilterService
	validator    RequestValidator
	opts         Options
	upgrader     websocket.Upgrader
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler creates a session handler. An empty AllowedOrigins list accepts
// only same-host origins.
func NewHandler(hub *Hub, service FilterService, validator RequestValidator, opts Options, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	opts = opts.withDefaults()

	h := &Handler{
		hub:          hub,
		service:      service,
		validator:    validator,
		opts:         opts,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error:           h.upgradeError,
	}
	return h
}

// ServeHTTP upgrades the connection and starts the session pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())
	traceID := infrastructure.GetTraceID(ctx)

	h.logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request.
		return
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), h.service, h.validator, h.opts, traceID, h.logger)
	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", r.RemoteAddr))

	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	if !h.hub.Serve(client) {
		// Stop already closed or will close the registered session.
		client.close()
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(origin, allowed) {
			return true
		}
	}
	if strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"), r.Host) {
		return true
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.opts.AllowedOrigins))
	return false
}

func (h *Handler) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
		slog.Int("status", status),
		slog.String("reason", reason.Error()))

	if h.errorHandler == nil {
		http.Error(w, reason.Error(), status)
		return
	}
	h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(status, "WEBSOCKET_UPGRADE_FAILED", http.StatusText(status), reason.Error()))
}
