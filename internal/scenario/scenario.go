// Package scenario defines the sandtable domain model: a terrain grid plus
// an ordered sequence of frames describing a tactical engagement over time.
//
// The terrain grid is shared by reference across all frames of one scenario;
// terrain never varies frame-to-frame. Units are keyed by id: the same id in
// consecutive frames is the same physical unit, and absence in a later frame
// means destroyed or withdrawn.
package scenario

import (
	"fmt"

	"github.com/sandtable-sim/sandtable/internal/errors"
)

// Terrain is a terrain cell code.
type Terrain int

const (
	TerrainOpen   Terrain = 0
	TerrainWater  Terrain = 1
	TerrainUrban  Terrain = 2
	TerrainForest Terrain = 3
)

// Valid reports whether the code is a known terrain type.
func (t Terrain) Valid() bool {
	return t >= TerrainOpen && t <= TerrainForest
}

// String returns the terrain legend name.
func (t Terrain) String() string {
	switch t {
	case TerrainOpen:
		return "Open"
	case TerrainWater:
		return "Water"
	case TerrainUrban:
		return "Urban"
	case TerrainForest:
		return "Forest"
	default:
		return fmt.Sprintf("Terrain(%d)", int(t))
	}
}

// Grid is a row-major terrain matrix indexed as grid[y][x].
type Grid [][]Terrain

// NewOpenGrid returns an all-Open size×size grid.
func NewOpenGrid(size int) Grid {
	if size <= 0 {
		return Grid{}
	}
	grid := make(Grid, size)
	for y := range grid {
		grid[y] = make([]Terrain, size)
	}
	return grid
}

// Height returns the number of rows.
func (g Grid) Height() int { return len(g) }

// Width returns the number of columns in the first row, or zero for an
// empty grid.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Contains reports whether (x, y) lies inside the grid.
func (g Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.Width() && y >= 0 && y < g.Height()
}

// At returns the terrain at (x, y). The caller must check Contains first.
func (g Grid) At(x, y int) Terrain { return g[y][x] }

// Set overwrites one cell. Out-of-bounds coordinates and unknown terrain
// codes are rejected.
func (g Grid) Set(x, y int, t Terrain) error {
	if !g.Contains(x, y) {
		return errors.Newf(errors.CodeCellOutOfBounds, "cell (%d, %d) is outside the %dx%d grid", x, y, g.Width(), g.Height())
	}
	if !t.Valid() {
		return errors.Newf(errors.CodeScenarioMalformed, "unknown terrain code %d", int(t))
	}
	g[y][x] = t
	return nil
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	clone := make(Grid, len(g))
	for y, row := range g {
		clone[y] = append([]Terrain(nil), row...)
	}
	return clone
}

// Side identifies which force a unit belongs to.
type Side string

const (
	SideBlue Side = "Blue"
	SideRed  Side = "Red"
)

// Valid reports whether the side is Blue or Red.
func (s Side) Valid() bool { return s == SideBlue || s == SideRed }

// ActionType classifies a combat log event.
type ActionType string

const (
	ActionMove        ActionType = "Move"
	ActionFire        ActionType = "Fire"
	ActionSuppression ActionType = "Suppression"
	ActionRetreat     ActionType = "Retreat"
	ActionReinforce   ActionType = "Reinforce"
	ActionIntel       ActionType = "Intel"
)

// Valid reports whether the action type is known.
func (a ActionType) Valid() bool {
	switch a {
	case ActionMove, ActionFire, ActionSuppression, ActionRetreat, ActionReinforce, ActionIntel:
		return true
	default:
		return false
	}
}

// Unit is one force element. The id is its identity key across frames.
type Unit struct {
	ID     string `json:"unit_id"`
	Side   Side   `json:"side"`
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Health int    `json:"health"`
	Range  int    `json:"range"`
	Status string `json:"status"`
}

// Validate checks field ranges. Coordinates are deliberately not checked
// here; bounds are the consistency validator's job, not construction's.
func (u Unit) Validate() error {
	if u.ID == "" {
		return errors.New(errors.CodeScenarioMalformed, "unit id is required")
	}
	if !u.Side.Valid() {
		return errors.Newf(errors.CodeScenarioMalformed, "unit %s has unknown side %q", u.ID, string(u.Side))
	}
	if u.Health < 0 || u.Health > 100 {
		return errors.Newf(errors.CodeScenarioMalformed, "unit %s health %d is outside [0, 100]", u.ID, u.Health)
	}
	if u.Range < 1 {
		return errors.Newf(errors.CodeScenarioMalformed, "unit %s range %d must be at least 1", u.ID, u.Range)
	}
	return nil
}

// CombatEvent is a descriptive log entry. It has no effect on validation.
type CombatEvent struct {
	SourceUnitID string     `json:"source_unit_id"`
	TargetUnitID string     `json:"target_unit_id,omitempty"`
	ActionType   ActionType `json:"action_type"`
	Details      string     `json:"details"`
	Outcome      string     `json:"outcome,omitempty"`
}

// Validate checks the event's required fields.
func (e CombatEvent) Validate() error {
	if e.SourceUnitID == "" {
		return errors.New(errors.CodeScenarioMalformed, "combat event source unit id is required")
	}
	if !e.ActionType.Valid() {
		return errors.Newf(errors.CodeScenarioMalformed, "combat event action type %q is unknown", string(e.ActionType))
	}
	return nil
}

// Frame is one discrete time-step: a narrative, the full unit roster, the
// combat log, and validator annotations. ValidationErrors is recomputed by
// the consistency validator and never hand-authored.
type Frame struct {
	Description      string        `json:"frame_description"`
	Units            []Unit        `json:"unit_positions"`
	CombatLog        []CombatEvent `json:"combat_log"`
	ValidationErrors []string      `json:"validation_errors"`
}

// UnitIndex returns the roster keyed by unit id. Later duplicates win,
// matching set semantics keyed by id.
func (f *Frame) UnitIndex() map[string]Unit {
	index := make(map[string]Unit, len(f.Units))
	for _, unit := range f.Units {
		index[unit.ID] = unit
	}
	return index
}

// PlaceUnit adds or replaces a unit by id.
func (f *Frame) PlaceUnit(u Unit) error {
	if err := u.Validate(); err != nil {
		return err
	}
	for i, existing := range f.Units {
		if existing.ID == u.ID {
			f.Units[i] = u
			return nil
		}
	}
	f.Units = append(f.Units, u)
	return nil
}

// RemoveUnit deletes a unit by id.
func (f *Frame) RemoveUnit(id string) error {
	for i, existing := range f.Units {
		if existing.ID == id {
			f.Units = append(f.Units[:i], f.Units[i+1:]...)
			return nil
		}
	}
	return errors.Newf(errors.CodeUnitMissing, "unit %s is not present in this frame", id)
}

// Scenario is one terrain grid plus an ordered frame sequence. Frame order
// is meaningful: it represents time.
type Scenario struct {
	Terrain Grid    `json:"terrain"`
	Frames  []Frame `json:"frames"`
}

// Truncate discards every frame after index keep, in support of branching:
// the caller truncates, appends newly generated frames, then re-validates.
func (s *Scenario) Truncate(keep int) error {
	if keep < 0 || keep >= len(s.Frames) {
		return errors.Newf(errors.CodeContinuationSpan, "frame %d is past the last frame %d", keep, len(s.Frames)-1)
	}
	s.Frames = s.Frames[:keep+1]
	return nil
}

// AppendFrames extends the scenario in place.
func (s *Scenario) AppendFrames(frames ...Frame) {
	s.Frames = append(s.Frames, frames...)
}

// Extension is the frames-only schema returned for continuations.
type Extension struct {
	Frames []Frame `json:"frames"`
}
