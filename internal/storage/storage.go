// Package storage defines the persistence interfaces the engine depends on.
// Implementations live in subpackages; internal/storage/sqlite is the
// production store.
package storage

import (
	"context"
	"time"
)

// ScenarioRecord is one archived scenario document plus its metadata.
type ScenarioRecord struct {
	ID         string
	Topic      string
	Model      string
	FrameCount int
	ErrorCount int
	Document   []byte // canonical interchange JSON
	CreatedAt  time.Time
}

// ScenarioStore archives and retrieves scenario documents.
type ScenarioStore interface {
	SaveScenario(ctx context.Context, record ScenarioRecord) error
	GetScenario(ctx context.Context, id string) (ScenarioRecord, error)
	ListScenarios(ctx context.Context, limit int) ([]ScenarioRecord, error)
}

// TelemetryEvent records one operational occurrence.
type TelemetryEvent struct {
	Timestamp time.Time
	Severity  string
	Event     string
	Detail    string
}

// TelemetryStore appends operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}
