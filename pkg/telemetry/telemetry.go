// Package telemetry implements the Record(ctx, event, payload) interface
// shared by the dashboard and chat components.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultMeterName is the instrumentation scope for event counters.
const DefaultMeterName = "github.com/retailjet/glance"

// Recorder records one named event with a flat payload.
type Recorder interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Logger writes every event as a structured log line.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogger logs events at level. A nil logger uses slog.Default().
func NewLogger(logger *slog.Logger, level slog.Level) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With(slog.String("component", "telemetry")), level: level}
}

// Record implements Recorder.
func (l *Logger) Record(ctx context.Context, event string, payload map[string]any) {
	if !l.logger.Enabled(ctx, l.level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(payload)+1)
	attrs = append(attrs, slog.String("event", event))
	for _, key := range sortedKeys(payload) {
		attrs = append(attrs, slog.Any(key, payload[key]))
	}
	l.logger.LogAttrs(ctx, l.level, "telemetry event", attrs...)
}

// Counter increments an OpenTelemetry counter per event. Low cardinality
// payload keys listed in Attributes become metric attributes.
type Counter struct {
	counter    metric.Int64Counter
	attributes []string
}

// NewCounter creates the "glance.events" counter on meter.
func NewCounter(meter metric.Meter, attributes ...string) (*Counter, error) {
	if meter == nil {
		return nil, errors.New("telemetry: meter is required")
	}
	counter, err := meter.Int64Counter("glance.events",
		metric.WithDescription("Dashboard and chat events by name"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create counter: %w", err)
	}
	return &Counter{counter: counter, attributes: attributes}, nil
}

// Record implements Recorder.
func (c *Counter) Record(ctx context.Context, event string, payload map[string]any) {
	attrs := []attribute.KeyValue{attribute.String("event", event)}
	for _, key := range c.attributes {
		value, ok := payload[key]
		if !ok {
			continue
		}
		attrs = append(attrs, attribute.String(key, fmt.Sprint(value)))
	}
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Multi fans an event out to several recorders.
type Multi []Recorder

// Record implements Recorder.
func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event, payload)
		}
	}
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
