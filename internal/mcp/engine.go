// Package mcp exposes the sandtable engine over the Model Context Protocol:
// generation, navigation, validation, and export tools plus an archive
// resource, all bound to an in-process engine.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandtable-sim/sandtable/internal/errors"
	"github.com/sandtable-sim/sandtable/internal/export"
	"github.com/sandtable-sim/sandtable/internal/generate"
	"github.com/sandtable-sim/sandtable/internal/platform/id"
	"github.com/sandtable-sim/sandtable/internal/scenario"
	"github.com/sandtable-sim/sandtable/internal/session"
	"github.com/sandtable-sim/sandtable/internal/storage"
	"github.com/sandtable-sim/sandtable/internal/validate"
)

// Engine binds one session, the generation orchestrator, and the scenario
// archive behind a single mutex. Tool handlers call it concurrently; the
// session itself is single-threaded state.
type Engine struct {
	mu        sync.Mutex
	session   *session.Session
	generator *generate.Service
	archive   storage.ScenarioStore

	newID func() (string, error)
	clock func() time.Time
}

// NewEngine wires an engine. The archive may be nil; generated scenarios
// are then held only in the session.
func NewEngine(generator *generate.Service, archive storage.ScenarioStore) *Engine {
	return &Engine{
		session:   session.New(),
		generator: generator,
		archive:   archive,
		newID:     id.NewID,
		clock:     time.Now,
	}
}

// ScenarioSummary describes the session's active scenario after a mutation.
type ScenarioSummary struct {
	ScenarioID      string
	FrameCount      int
	FrameCursor     int
	ValidationCount int
	Description     string
}

func (e *Engine) summary(scenarioID string) ScenarioSummary {
	s := ScenarioSummary{
		ScenarioID:  scenarioID,
		FrameCount:  e.session.FrameCount(),
		FrameCursor: e.session.FrameCursor(),
	}
	if active := e.session.Active(); active != nil {
		s.ValidationCount = validate.ErrorCount(active)
	}
	if frame := e.session.CurrentFrame(); frame != nil {
		s.Description = frame.Description
	}
	return s
}

// Generate produces a scenario, installs it in the session, and archives it.
func (e *Engine) Generate(ctx context.Context, topic string, opts generate.Options) (ScenarioSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sc, err := e.generator.GenerateScenario(ctx, topic, opts)
	if err != nil {
		return ScenarioSummary{}, err
	}
	scenarioID, err := e.newID()
	if err != nil {
		return ScenarioSummary{}, err
	}
	e.session.SetScenario(sc)

	if e.archive != nil {
		document, err := scenario.Marshal(sc)
		if err != nil {
			return ScenarioSummary{}, err
		}
		record := storage.ScenarioRecord{
			ID:         scenarioID,
			Topic:      topic,
			Model:      opts.Model,
			FrameCount: len(sc.Frames),
			ErrorCount: validate.ErrorCount(sc),
			Document:   document,
			CreatedAt:  e.clock(),
		}
		if record.Model == "" {
			record.Model = generate.DefaultModel
		}
		if err := e.archive.SaveScenario(ctx, record); err != nil {
			return ScenarioSummary{}, err
		}
	}
	return e.summary(scenarioID), nil
}

// Continue branches the active scenario at fromFrame: frames past it are
// discarded, the generated continuation is appended, and the merged whole
// is re-validated.
func (e *Engine) Continue(ctx context.Context, fromFrame int, reason string) (ScenarioSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.session.Active()
	if active == nil {
		return ScenarioSummary{}, errors.New(errors.CodeScenarioNoFrames, "no active scenario")
	}

	frames, err := e.generator.ContinueScenario(ctx, active, fromFrame, reason)
	if err != nil {
		return ScenarioSummary{}, err
	}
	if err := active.Truncate(fromFrame); err != nil {
		return ScenarioSummary{}, err
	}
	active.AppendFrames(frames...)
	validate.Scenario(active)

	e.session.LoadScenario(active)
	e.session.FramesGenerated += len(frames)
	return e.summary(""), nil
}

// Validate re-runs the consistency validator over the active scenario and
// returns the refreshed summary.
func (e *Engine) Validate(context.Context) (ScenarioSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.session.Active()
	if active == nil {
		return ScenarioSummary{}, errors.New(errors.CodeScenarioNoFrames, "no active scenario")
	}
	validate.Scenario(active)
	return e.summary(""), nil
}

// Advance moves the frame cursor forward, clamped at the last frame.
func (e *Engine) Advance(context.Context) (ScenarioSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Active() == nil {
		return ScenarioSummary{}, errors.New(errors.CodeScenarioNoFrames, "no active scenario")
	}
	e.session.AdvanceFrame()
	return e.summary(""), nil
}

// Retreat moves the frame cursor backward, clamped at the first frame.
func (e *Engine) Retreat(context.Context) (ScenarioSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Active() == nil {
		return ScenarioSummary{}, errors.New(errors.CodeScenarioNoFrames, "no active scenario")
	}
	e.session.RetreatFrame()
	return e.summary(""), nil
}

// ExportFormat selects a scenario export rendering.
type ExportFormat string

const (
	ExportJournal    ExportFormat = "journal"
	ExportTabletop   ExportFormat = "tabletop"
	ExportForceTable ExportFormat = "force_table"
	ExportHeatmap    ExportFormat = "heatmap"
	ExportDocument   ExportFormat = "document"
)

// Export renders the active scenario in the requested format.
func (e *Engine) Export(_ context.Context, format ExportFormat) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.session.Active()
	if active == nil {
		return "", errors.New(errors.CodeScenarioNoFrames, "no active scenario")
	}

	switch format {
	case ExportJournal:
		return export.Journal(active), nil
	case ExportTabletop:
		doc, err := export.Tabletop(active)
		if err != nil {
			return "", err
		}
		return string(doc), nil
	case ExportForceTable:
		return export.ForceTable(active), nil
	case ExportHeatmap:
		return export.HeatmapTable(active), nil
	case ExportDocument, "":
		document, err := scenario.Marshal(active)
		if err != nil {
			return "", err
		}
		return string(document), nil
	default:
		return "", fmt.Errorf("unknown export format %q", string(format))
	}
}

// ListArchive returns archived scenario metadata, newest first.
func (e *Engine) ListArchive(ctx context.Context, limit int) ([]storage.ScenarioRecord, error) {
	if e.archive == nil {
		return nil, nil
	}
	return e.archive.ListScenarios(ctx, limit)
}

// LoadArchived installs an archived scenario as the active one without
// bumping the generation counters.
func (e *Engine) LoadArchived(ctx context.Context, scenarioID string) (ScenarioSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.archive == nil {
		return ScenarioSummary{}, errors.New(errors.CodeNotFound, "no archive configured")
	}
	record, err := e.archive.GetScenario(ctx, scenarioID)
	if err != nil {
		return ScenarioSummary{}, err
	}
	sc, err := scenario.Unmarshal(record.Document)
	if err != nil {
		return ScenarioSummary{}, err
	}
	e.session.LoadScenario(sc)
	return e.summary(record.ID), nil
}

// Session exposes the underlying session for CLI surfaces that drive the
// engine directly.
func (e *Engine) Session() *session.Session {
	return e.session
}
