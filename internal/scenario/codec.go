package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sandtable-sim/sandtable/internal/errors"
)

// Wire documents use pointer fields so that absent and zero values can be
// told apart; defaults mirror the authoring schema (health 100, range 1,
// status "Active").

type unitDoc struct {
	ID     *string `json:"unit_id"`
	Side   *string `json:"side"`
	Type   *string `json:"type"`
	X      *int    `json:"x"`
	Y      *int    `json:"y"`
	Health *int    `json:"health"`
	Range  *int    `json:"range"`
	Status *string `json:"status"`
}

type eventDoc struct {
	SourceUnitID *string `json:"source_unit_id"`
	TargetUnitID *string `json:"target_unit_id"`
	ActionType   *string `json:"action_type"`
	Details      *string `json:"details"`
	Outcome      *string `json:"outcome"`
}

type frameDoc struct {
	Description      *string    `json:"frame_description"`
	Units            *[]unitDoc `json:"unit_positions"`
	CombatLog        []eventDoc `json:"combat_log"`
	ValidationErrors []string   `json:"validation_errors"`
}

type scenarioDoc struct {
	Terrain *[][]int   `json:"terrain"`
	Frames  *[]frameDoc `json:"frames"`
}

type extensionDoc struct {
	Frames *[]frameDoc `json:"frames"`
}

func malformed(format string, args ...any) error {
	return errors.Newf(errors.CodeScenarioMalformed, format, args...)
}

// Unmarshal parses and strictly validates a scenario interchange document.
// Type and range violations fail with a malformed-scenario error; nothing is
// silently coerced.
func Unmarshal(data []byte) (*Scenario, error) {
	var doc scenarioDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.CodeScenarioMalformed, "parse scenario document", err)
	}
	if doc.Terrain == nil {
		return nil, malformed("terrain is required")
	}
	if doc.Frames == nil {
		return nil, malformed("frames is required")
	}

	grid, err := gridFromCodes(*doc.Terrain)
	if err != nil {
		return nil, err
	}
	frames, err := framesFromDocs(*doc.Frames)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New(errors.CodeScenarioNoFrames, "scenario has no frames")
	}

	return &Scenario{Terrain: grid, Frames: frames}, nil
}

// Decode reads one scenario document from r.
func Decode(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario document: %w", err)
	}
	return Unmarshal(data)
}

// UnmarshalExtension parses a frames-only continuation document.
func UnmarshalExtension(data []byte) (*Extension, error) {
	var doc extensionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.CodeScenarioMalformed, "parse extension document", err)
	}
	if doc.Frames == nil {
		return nil, malformed("frames is required")
	}
	frames, err := framesFromDocs(*doc.Frames)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New(errors.CodeScenarioNoFrames, "extension has no frames")
	}
	return &Extension{Frames: frames}, nil
}

// Marshal renders the canonical interchange form: top-level terrain as a 2D
// integer array and frames with every field present.
func Marshal(s *Scenario) ([]byte, error) {
	if s == nil {
		return nil, malformed("scenario is required")
	}
	return json.MarshalIndent(canonicalScenario(s), "", "  ")
}

// Encode writes the canonical interchange form to w.
func Encode(w io.Writer, s *Scenario) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write scenario document: %w", err)
	}
	return nil
}

func gridFromCodes(codes [][]int) (Grid, error) {
	grid := make(Grid, len(codes))
	width := -1
	for y, row := range codes {
		if width == -1 {
			width = len(row)
		} else if len(row) != width {
			return nil, malformed("terrain row %d has %d cells, expected %d", y, len(row), width)
		}
		cells := make([]Terrain, len(row))
		for x, code := range row {
			terrain := Terrain(code)
			if !terrain.Valid() {
				return nil, malformed("terrain cell (%d, %d) has unknown code %d", x, y, code)
			}
			cells[x] = terrain
		}
		grid[y] = cells
	}
	return grid, nil
}

func framesFromDocs(docs []frameDoc) ([]Frame, error) {
	frames := make([]Frame, 0, len(docs))
	for i, doc := range docs {
		frame, err := frameFromDoc(i, doc)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func frameFromDoc(index int, doc frameDoc) (Frame, error) {
	if doc.Description == nil {
		return Frame{}, malformed("frame %d: frame_description is required", index)
	}
	if doc.Units == nil {
		return Frame{}, malformed("frame %d: unit_positions is required", index)
	}

	units := make([]Unit, 0, len(*doc.Units))
	for _, u := range *doc.Units {
		unit, err := unitFromDoc(index, u)
		if err != nil {
			return Frame{}, err
		}
		units = append(units, unit)
	}

	log := make([]CombatEvent, 0, len(doc.CombatLog))
	for _, e := range doc.CombatLog {
		event, err := eventFromDoc(index, e)
		if err != nil {
			return Frame{}, err
		}
		log = append(log, event)
	}

	validationErrors := doc.ValidationErrors
	if validationErrors == nil {
		validationErrors = []string{}
	}

	return Frame{
		Description:      *doc.Description,
		Units:            units,
		CombatLog:        log,
		ValidationErrors: validationErrors,
	}, nil
}

func unitFromDoc(frame int, doc unitDoc) (Unit, error) {
	if doc.ID == nil || *doc.ID == "" {
		return Unit{}, malformed("frame %d: unit_id is required", frame)
	}
	if doc.Side == nil {
		return Unit{}, malformed("frame %d: unit %s: side is required", frame, *doc.ID)
	}
	if doc.Type == nil {
		return Unit{}, malformed("frame %d: unit %s: type is required", frame, *doc.ID)
	}
	if doc.X == nil || doc.Y == nil {
		return Unit{}, malformed("frame %d: unit %s: coordinates are required", frame, *doc.ID)
	}

	unit := Unit{
		ID:     *doc.ID,
		Side:   Side(*doc.Side),
		Type:   *doc.Type,
		X:      *doc.X,
		Y:      *doc.Y,
		Health: 100,
		Range:  1,
		Status: "Active",
	}
	if doc.Health != nil {
		unit.Health = *doc.Health
	}
	if doc.Range != nil {
		unit.Range = *doc.Range
	}
	if doc.Status != nil {
		unit.Status = *doc.Status
	}

	if err := unit.Validate(); err != nil {
		return Unit{}, errors.Wrap(errors.CodeScenarioMalformed, fmt.Sprintf("frame %d", frame), err)
	}
	return unit, nil
}

func eventFromDoc(frame int, doc eventDoc) (CombatEvent, error) {
	if doc.SourceUnitID == nil || *doc.SourceUnitID == "" {
		return CombatEvent{}, malformed("frame %d: combat event source_unit_id is required", frame)
	}
	if doc.ActionType == nil {
		return CombatEvent{}, malformed("frame %d: combat event action_type is required", frame)
	}

	event := CombatEvent{
		SourceUnitID: *doc.SourceUnitID,
		ActionType:   ActionType(*doc.ActionType),
	}
	if doc.TargetUnitID != nil {
		event.TargetUnitID = *doc.TargetUnitID
	}
	if doc.Details != nil {
		event.Details = *doc.Details
	}
	if doc.Outcome != nil {
		event.Outcome = *doc.Outcome
	}

	if err := event.Validate(); err != nil {
		return CombatEvent{}, errors.Wrap(errors.CodeScenarioMalformed, fmt.Sprintf("frame %d", frame), err)
	}
	return event, nil
}

// canonicalScenario normalizes nil slices so the emitted document always
// carries explicit empty arrays; this keeps re-serialization stable across
// load/save round trips.
func canonicalScenario(s *Scenario) *Scenario {
	out := &Scenario{Terrain: s.Terrain, Frames: make([]Frame, len(s.Frames))}
	if out.Terrain == nil {
		out.Terrain = Grid{}
	}
	for i, frame := range s.Frames {
		if frame.Units == nil {
			frame.Units = []Unit{}
		}
		if frame.CombatLog == nil {
			frame.CombatLog = []CombatEvent{}
		}
		if frame.ValidationErrors == nil {
			frame.ValidationErrors = []string{}
		}
		out.Frames[i] = frame
	}
	return out
}

// Equal reports deep equality of two scenarios, including annotations.
func Equal(a, b *Scenario) bool {
	if a == nil || b == nil {
		return a == b
	}
	left, err := Marshal(a)
	if err != nil {
		return false
	}
	right, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
