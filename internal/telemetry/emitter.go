// Package telemetry records operational events emitted by the engine.
package telemetry

import (
	"context"
	"time"

	"github.com/sandtable-sim/sandtable/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil, so
// callers never need to guard their instrumentation.
func (e *Emitter) Emit(ctx context.Context, severity Severity, event, detail string) error {
	if e == nil || e.store == nil {
		return nil
	}
	evt := storage.TelemetryEvent{
		Severity: string(severity),
		Event:    event,
		Detail:   detail,
	}
	if e.clock == nil {
		evt.Timestamp = time.Now().UTC()
	} else {
		evt.Timestamp = e.clock().UTC()
	}
	return e.store.AppendTelemetryEvent(ctx, evt)
}
