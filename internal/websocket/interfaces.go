package websocket

import (
	"context"
	"time"

	"playerstats/internal/dataprocessing"
	api "playerstats/pkg/contracts/api/v1"
	"playerstats/pkg/contracts/domain"
)

// Connection defines the subset of a WebSocket connection a client uses
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// FilterService evaluates the filter requests of a live session
type FilterService interface {
	Spec(req api.FilterRequest) dataprocessing.FilterSpec
	Query(ctx context.Context, spec dataprocessing.FilterSpec) (*domain.Table, error)
	TeamOptions(ctx context.Context, competitions []string) ([]string, error)
}

// RequestValidator validates decoded frames
type RequestValidator interface {
	ValidateStruct(v interface{}) error
}
