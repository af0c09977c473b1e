package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sandtable-sim/sandtable/internal/errors"
	"github.com/sandtable-sim/sandtable/internal/generate"
	"github.com/sandtable-sim/sandtable/internal/scenario"
	"github.com/sandtable-sim/sandtable/internal/storage"
)

type fakeGenerator struct {
	scenario  *scenario.Scenario
	extension *scenario.Extension
	err       error
}

func (f *fakeGenerator) GenerateScenario(context.Context, generate.Request) (*scenario.Scenario, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scenario, nil
}

func (f *fakeGenerator) GenerateExtension(context.Context, generate.Request) (*scenario.Extension, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.extension, nil
}

type memoryArchive struct {
	records map[string]storage.ScenarioRecord
	order   []string
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{records: make(map[string]storage.ScenarioRecord)}
}

func (m *memoryArchive) SaveScenario(_ context.Context, record storage.ScenarioRecord) error {
	if _, exists := m.records[record.ID]; !exists {
		m.order = append(m.order, record.ID)
	}
	m.records[record.ID] = record
	return nil
}

func (m *memoryArchive) GetScenario(_ context.Context, id string) (storage.ScenarioRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return storage.ScenarioRecord{}, errors.Newf(errors.CodeNotFound, "scenario %s not found", id)
	}
	return record, nil
}

func (m *memoryArchive) ListScenarios(_ context.Context, limit int) ([]storage.ScenarioRecord, error) {
	var records []storage.ScenarioRecord
	for i := len(m.order) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, m.records[m.order[i]])
	}
	return records, nil
}

func threeFrameScenario() *scenario.Scenario {
	u := func(x, y int) []scenario.Unit {
		return []scenario.Unit{{ID: "B-1", Side: scenario.SideBlue, Type: "Infantry", X: x, Y: y, Health: 100, Range: 1, Status: "Active"}}
	}
	return &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(10),
		Frames: []scenario.Frame{
			{Description: "f1", Units: u(0, 0)},
			{Description: "f2", Units: u(1, 0)},
			{Description: "f3", Units: u(2, 0)},
		},
	}
}

func newTestEngine(gen *fakeGenerator, archive storage.ScenarioStore) *Engine {
	engine := NewEngine(generate.NewService(gen, nil), archive)
	engine.newID = func() (string, error) { return "scn-test", nil }
	engine.clock = func() time.Time { return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC) }
	return engine
}

func TestEngineGenerateInstallsAndArchives(t *testing.T) {
	archive := newMemoryArchive()
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, archive)

	summary, err := engine.Generate(context.Background(), "bridgehead", generate.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if summary.ScenarioID != "scn-test" || summary.FrameCount != 3 || summary.FrameCursor != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Description != "f1" {
		t.Fatalf("expected cursor on the opening frame, got %q", summary.Description)
	}

	record, ok := archive.records["scn-test"]
	if !ok {
		t.Fatal("expected archived record")
	}
	if record.Topic != "bridgehead" || record.Model != generate.DefaultModel || record.FrameCount != 3 {
		t.Fatalf("unexpected record %+v", record)
	}
	if !strings.Contains(string(record.Document), `"frames"`) {
		t.Fatalf("expected interchange document, got %s", record.Document)
	}
}

func TestEngineGenerateSurfacesIDFailure(t *testing.T) {
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, newMemoryArchive())
	engine.newID = func() (string, error) { return "", errors.New(errors.CodeUnknown, "entropy exhausted") }

	if _, err := engine.Generate(context.Background(), "bridgehead", generate.Options{}); err == nil {
		t.Fatal("expected id generation failure to surface")
	}
	if engine.Session().Active() != nil {
		t.Fatal("expected no scenario installed after id failure")
	}
}

func TestEngineContinueBranches(t *testing.T) {
	gen := &fakeGenerator{
		scenario: threeFrameScenario(),
		extension: &scenario.Extension{Frames: []scenario.Frame{
			{Description: "alt-1"}, {Description: "alt-2"}, {Description: "alt-3"},
			{Description: "alt-4"}, {Description: "alt-5"},
		}},
	}
	engine := newTestEngine(gen, nil)

	if _, err := engine.Generate(context.Background(), "topic", generate.Options{}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	summary, err := engine.Continue(context.Background(), 0, "Red counterattacks")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	// Frame 1 kept plus five continuation frames.
	if summary.FrameCount != 6 {
		t.Fatalf("expected 6 frames, got %d", summary.FrameCount)
	}

	active := engine.Session().Active()
	if active.Frames[1].Description != "alt-1" {
		t.Fatalf("expected branch frames after the cut, got %q", active.Frames[1].Description)
	}
	if engine.Session().FramesGenerated != 8 {
		t.Fatalf("expected 3+5 generated frames counted, got %d", engine.Session().FramesGenerated)
	}
}

func TestEngineContinueRequiresActiveScenario(t *testing.T) {
	engine := newTestEngine(&fakeGenerator{}, nil)
	if _, err := engine.Continue(context.Background(), 0, ""); errors.CodeOf(err) != errors.CodeScenarioNoFrames {
		t.Fatalf("expected no frames code, got %v", err)
	}
}

func TestEngineNavigationClamps(t *testing.T) {
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, nil)
	if _, err := engine.Generate(context.Background(), "topic", generate.Options{}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := engine.Advance(context.Background()); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	summary, _ := engine.Validate(context.Background())
	if summary.FrameCursor != 2 || summary.Description != "f3" {
		t.Fatalf("expected clamp at last frame, got %+v", summary)
	}

	for i := 0; i < 5; i++ {
		if _, err := engine.Retreat(context.Background()); err != nil {
			t.Fatalf("retreat: %v", err)
		}
	}
	summary, _ = engine.Validate(context.Background())
	if summary.FrameCursor != 0 || summary.Description != "f1" {
		t.Fatalf("expected clamp at first frame, got %+v", summary)
	}
}

func TestEngineExportFormats(t *testing.T) {
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, nil)
	if _, err := engine.Generate(context.Background(), "topic", generate.Options{}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	journal, err := engine.Export(context.Background(), ExportJournal)
	if err != nil || !strings.Contains(journal, "# Commander's Journal") {
		t.Fatalf("journal export: %v\n%s", err, journal)
	}
	tabletop, err := engine.Export(context.Background(), ExportTabletop)
	if err != nil || !strings.Contains(tabletop, `"tokens"`) {
		t.Fatalf("tabletop export: %v\n%s", err, tabletop)
	}
	table, err := engine.Export(context.Background(), ExportForceTable)
	if err != nil || !strings.Contains(table, "| Frame | Blue Force | Red Force |") {
		t.Fatalf("force table export: %v\n%s", err, table)
	}
	heatmap, err := engine.Export(context.Background(), ExportHeatmap)
	if err != nil || !strings.Contains(heatmap, "| 0 | 1 |") {
		t.Fatalf("heatmap export: %v\n%s", err, heatmap)
	}
	document, err := engine.Export(context.Background(), ExportDocument)
	if err != nil || !strings.Contains(document, `"terrain"`) {
		t.Fatalf("document export: %v\n%s", err, document)
	}
	if _, err := engine.Export(context.Background(), "csv"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestEngineLoadArchivedKeepsCounters(t *testing.T) {
	archive := newMemoryArchive()
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, archive)

	if _, err := engine.Generate(context.Background(), "topic", generate.Options{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	generated := engine.Session().ScenariosGenerated

	summary, err := engine.LoadArchived(context.Background(), "scn-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if summary.ScenarioID != "scn-test" || summary.FrameCount != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if engine.Session().ScenariosGenerated != generated {
		t.Fatal("loading an archived scenario must not bump the generation counter")
	}
}

func TestEngineLoadArchivedNotFound(t *testing.T) {
	engine := newTestEngine(&fakeGenerator{}, newMemoryArchive())
	if _, err := engine.LoadArchived(context.Background(), "missing"); errors.CodeOf(err) != errors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}
