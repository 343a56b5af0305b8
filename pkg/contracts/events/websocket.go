// Package events contains the message contracts of the live filter session.
// A client sends filter frames and receives one reply per frame.
package events

import (
	"encoding/json"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeFilter is a client frame carrying a FilterRequest
	MessageTypeFilter MessageType = "filter"
	// MessageTypeTeams asks for, and answers with, the team options of a competition set
	MessageTypeTeams MessageType = "teams"

	MessageTypeConnected MessageType = "connected"
	MessageTypeResult    MessageType = "result"
	MessageTypeError     MessageType = "error"
)

// ClientMessage is an inbound frame. A frame without a type is itself a
// FilterRequest.
type ClientMessage struct {
	Type MessageType     `json:"type,omitempty"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is an outbound frame
type ServerMessage struct {
	Type      MessageType   `json:"type"`
	ID        string        `json:"id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	TraceID   string        `json:"trace_id,omitempty"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload describes a rejected frame. The session stays open.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NewResult builds a reply carrying data
func NewResult(msgType MessageType, id string, data interface{}) ServerMessage {
	return ServerMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// NewError builds an error reply
func NewError(id, code, message string, details interface{}) ServerMessage {
	return ServerMessage{
		Type:      MessageTypeError,
		ID:        id,
		Timestamp: time.Now().UTC(),
		Error: &ErrorPayload{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
