package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"playerstats/internal/infrastructure"
)

// Metrics records live session activity
type Metrics struct {
	sessions        metric.Int64UpDownCounter
	sessionDuration metric.Float64Histogram
	messagesTotal   metric.Int64Counter
	messageErrors   metric.Int64Counter
	messageLatency  metric.Float64Histogram
}

// NewMetrics creates the session instruments on meter. The open-session gauge
// is shared with the application metrics.
func NewMetrics(meter metric.Meter, business *infrastructure.BusinessMetrics) (*Metrics, error) {
	if business == nil {
		business = infrastructure.NoopBusinessMetrics()
	}
	m := &Metrics{sessions: business.WebSocketSessions}

	var err error
	if m.sessionDuration, err = meter.Float64Histogram(
		"websocket_session_duration_seconds",
		metric.WithDescription("Duration of live filter sessions"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.messagesTotal, err = meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Total number of live session frames"),
	); err != nil {
		return nil, err
	}

	if m.messageErrors, err = meter.Int64Counter(
		"websocket_message_errors_total",
		metric.WithDescription("Total number of rejected live session frames"),
	); err != nil {
		return nil, err
	}

	if m.messageLatency, err = meter.Float64Histogram(
		"websocket_message_latency_seconds",
		metric.WithDescription("Time to answer a live session frame"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// NoopMetrics returns metrics that record nothing
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(""), nil)
	return m
}

func (m *Metrics) sessionOpened(ctx context.Context) {
	m.sessions.Add(ctx, 1)
}

func (m *Metrics) sessionClosed(ctx context.Context, d time.Duration) {
	m.sessions.Add(ctx, -1)
	m.sessionDuration.Record(ctx, d.Seconds())
}

func (m *Metrics) frame(ctx context.Context, direction, msgType string) {
	m.messagesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("type", msgType),
	))
}

func (m *Metrics) answered(ctx context.Context, msgType string, d time.Duration, code string) {
	attrs := metric.WithAttributes(attribute.String("type", msgType))
	m.messageLatency.Record(ctx, d.Seconds(), attrs)
	if code != "" {
		m.messageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("type", msgType),
			attribute.String("code", code),
		))
	}
}
