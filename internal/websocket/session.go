package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	apierrors "playerstats/internal/errors"
	api "playerstats/pkg/contracts/api/v1"
	"playerstats/pkg/contracts/events"
)

// Error codes of rejected frames
const (
	CodeInvalidJSON       = "INVALID_JSON"
	CodeUnknownType       = "UNKNOWN_TYPE"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeTimeout           = "TIMEOUT"
	CodeInternal          = "INTERNAL_ERROR"
)

// handle answers one inbound frame. Every frame gets exactly one reply and a
// rejected frame never ends the session.
func (c *Client) handle(ctx context.Context, raw []byte) events.ServerMessage {
	start := time.Now()

	var msg events.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return c.reject(ctx, "", "", start, events.NewError("", CodeInvalidJSON, "frame is not valid JSON", err.Error()))
	}
	c.metrics.frame(ctx, "in", string(msg.Type))

	var reply events.ServerMessage
	switch msg.Type {
	case "":
		// A bare frame is the filter request itself.
		reply = c.filter(ctx, "", raw)
	case events.MessageTypeFilter:
		reply = c.filter(ctx, msg.ID, msg.Data)
	case events.MessageTypeTeams:
		reply = c.teams(ctx, msg.ID, msg.Data)
	default:
		reply = events.NewError(msg.ID, CodeUnknownType, "unknown message type "+string(msg.Type), nil)
	}

	if reply.Type == events.MessageTypeError {
		return c.reject(ctx, string(msg.Type), msg.ID, start, reply)
	}
	c.metrics.answered(ctx, string(msg.Type), time.Since(start), "")
	c.logger.DebugContext(ctx, "Frame answered",
		slog.String("type", string(msg.Type)),
		slog.Duration("duration", time.Since(start)))
	return reply
}

func (c *Client) filter(ctx context.Context, id string, data json.RawMessage) events.ServerMessage {
	var req api.FilterRequest
	if reply, ok := c.decode(id, data, &req); !ok {
		return reply
	}

	table, err := c.service.Query(ctx, c.service.Spec(req))
	if err != nil {
		return c.failure(id, err)
	}
	return events.NewResult(events.MessageTypeResult, id, api.NewTableResponse(table))
}

func (c *Client) teams(ctx context.Context, id string, data json.RawMessage) events.ServerMessage {
	var req api.TeamsRequest
	if reply, ok := c.decode(id, data, &req); !ok {
		return reply
	}

	teams, err := c.service.TeamOptions(ctx, req.Competitions)
	if err != nil {
		return c.failure(id, err)
	}
	if teams == nil {
		teams = []string{}
	}
	return events.NewResult(events.MessageTypeTeams, id, api.TeamsResponse{Teams: teams})
}

// decode strictly decodes data into v and validates it. Empty data leaves v zero.
func (c *Client) decode(id string, data json.RawMessage, v interface{}) (events.ServerMessage, bool) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return events.NewError(id, CodeInvalidJSON, "frame does not match the request schema", err.Error()), false
		}
	}

	if c.validator != nil {
		if err := c.validator.ValidateStruct(v); err != nil {
			var apiErr *apierrors.APIError
			if errors.As(err, &apiErr) {
				return events.NewError(id, CodeValidationFailed, apiErr.Message, apiErr.Details), false
			}
			return events.NewError(id, CodeValidationFailed, err.Error(), nil), false
		}
	}
	return events.ServerMessage{}, true
}

// failure maps a service error to an error reply
func (c *Client) failure(id string, err error) events.ServerMessage {
	var appErr *apierrors.AppError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return events.NewError(id, CodeTimeout, "request timed out", nil)
	case errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeSource:
		return events.NewError(id, CodeSourceUnavailable, appErr.Message, nil)
	case errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeValidation:
		return events.NewError(id, CodeValidationFailed, appErr.Message, nil)
	default:
		return events.NewError(id, CodeInternal, "failed to evaluate filters", nil)
	}
}

func (c *Client) reject(ctx context.Context, msgType, id string, start time.Time, reply events.ServerMessage) events.ServerMessage {
	c.metrics.answered(ctx, msgType, time.Since(start), reply.Error.Code)
	c.logger.WarnContext(ctx, "Frame rejected",
		slog.String("type", msgType),
		slog.String("id", id),
		slog.String("code", reply.Error.Code),
		slog.String("message", reply.Error.Message))
	return reply
}
