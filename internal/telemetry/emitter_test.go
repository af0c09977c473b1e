package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/sandtable-sim/sandtable/internal/storage"
)

type recordingStore struct {
	events []storage.TelemetryEvent
}

func (r *recordingStore) AppendTelemetryEvent(_ context.Context, evt storage.TelemetryEvent) error {
	r.events = append(r.events, evt)
	return nil
}

func TestEmitRecordsEventWithClock(t *testing.T) {
	store := &recordingStore{}
	emitter := NewEmitter(store)
	fixed := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	emitter.clock = func() time.Time { return fixed }

	if err := emitter.Emit(context.Background(), SeverityInfo, "scenario_generated", "topic: river crossing"); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	evt := store.events[0]
	if evt.Event != "scenario_generated" || evt.Severity != "INFO" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if !evt.Timestamp.Equal(fixed) {
		t.Fatalf("expected fixed timestamp, got %v", evt.Timestamp)
	}
}

func TestEmitIsNoopWithoutStore(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), SeverityWarn, "x", ""); err != nil {
		t.Fatalf("nil emitter: %v", err)
	}
	if err := NewEmitter(nil).Emit(context.Background(), SeverityWarn, "x", ""); err != nil {
		t.Fatalf("nil store: %v", err)
	}
}
