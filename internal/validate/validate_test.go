package validate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sandtable-sim/sandtable/internal/scenario"
)

func unit(id string, x, y int) scenario.Unit {
	return scenario.Unit{ID: id, Side: scenario.SideBlue, Type: "Infantry", X: x, Y: y, Health: 100, Range: 1, Status: "Active"}
}

func frame(desc string, units ...scenario.Unit) scenario.Frame {
	return scenario.Frame{Description: desc, Units: units}
}

func TestCleanScenarioHasNoErrors(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(20),
		Frames: []scenario.Frame{
			frame("start", unit("U1", 0, 0)),
			frame("advance", unit("U1", 0, 1)),
		},
	}

	Scenario(s)

	if count := ErrorCount(s); count != 0 {
		t.Fatalf("expected no errors, got %d: %v", count, s.Frames[1].ValidationErrors)
	}
}

func TestMovedTooFast(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(20),
		Frames: []scenario.Frame{
			frame("start", unit("U1", 0, 0)),
			frame("teleport", unit("U1", 10, 10)),
		},
	}

	Scenario(s)

	if len(s.Frames[0].ValidationErrors) != 0 {
		t.Fatalf("expected clean first frame, got %v", s.Frames[0].ValidationErrors)
	}
	errs := s.Frames[1].ValidationErrors
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if errs[0] != "Unit U1 moved too fast (14.14 tiles)" {
		t.Fatalf("unexpected message %q", errs[0])
	}
}

func TestWaterCollision(t *testing.T) {
	terrain := scenario.NewOpenGrid(20)
	if err := terrain.Set(1, 1, scenario.TerrainWater); err != nil {
		t.Fatalf("set terrain: %v", err)
	}
	s := &scenario.Scenario{
		Terrain: terrain,
		Frames:  []scenario.Frame{frame("start", unit("U1", 1, 1))},
	}

	Scenario(s)

	errs := s.Frames[0].ValidationErrors
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0] != "Unit U1 is in Water at (1, 1)" {
		t.Fatalf("unexpected message %q", errs[0])
	}
}

func TestWaterFlaggedRegardlessOfMovementHistory(t *testing.T) {
	terrain := scenario.NewOpenGrid(20)
	_ = terrain.Set(2, 2, scenario.TerrainWater)
	s := &scenario.Scenario{
		Terrain: terrain,
		Frames: []scenario.Frame{
			frame("start", unit("U1", 2, 1)),
			frame("slips in", unit("U1", 2, 2)),
		},
	}

	Scenario(s)

	errs := s.Frames[1].ValidationErrors
	if len(errs) != 1 || !strings.Contains(errs[0], "is in Water") {
		t.Fatalf("expected water error despite legal move distance, got %v", errs)
	}
}

func TestOutOfBoundsSkipsTerrainCheck(t *testing.T) {
	terrain := scenario.NewOpenGrid(5)
	s := &scenario.Scenario{
		Terrain: terrain,
		Frames:  []scenario.Frame{frame("start", unit("U1", -1, 7))},
	}

	Scenario(s)

	errs := s.Frames[0].ValidationErrors
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if errs[0] != "Unit U1 out of bounds (-1, 7)" {
		t.Fatalf("unexpected message %q", errs[0])
	}
}

func TestNewUnitExemptFromSpeedCheck(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(20),
		Frames: []scenario.Frame{
			frame("start", unit("U1", 0, 0)),
			frame("reinforcements", unit("U1", 0, 1), unit("U2", 15, 15)),
		},
	}

	Scenario(s)

	if count := ErrorCount(s); count != 0 {
		t.Fatalf("expected reinforcement exempt from teleport check, got %v", s.Frames[1].ValidationErrors)
	}
}

func TestBoundaryDistanceIsAllowed(t *testing.T) {
	// Diagonal double step: 2*sqrt(2) ~ 2.83, inside the 3.0 tolerance.
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(20),
		Frames: []scenario.Frame{
			frame("start", unit("U1", 0, 0)),
			frame("diagonal", unit("U1", 2, 2)),
		},
	}

	Scenario(s)

	if count := ErrorCount(s); count != 0 {
		t.Fatalf("expected diagonal double step allowed, got %v", s.Frames[1].ValidationErrors)
	}
}

func TestIdempotence(t *testing.T) {
	terrain := scenario.NewOpenGrid(20)
	_ = terrain.Set(3, 3, scenario.TerrainWater)
	s := &scenario.Scenario{
		Terrain: terrain,
		Frames: []scenario.Frame{
			frame("start", unit("U1", 3, 3), unit("U2", 0, 0)),
			frame("rush", unit("U1", 3, 3), unit("U2", 9, 9)),
		},
	}

	Scenario(s)
	first := make([][]string, len(s.Frames))
	for i, f := range s.Frames {
		first[i] = append([]string(nil), f.ValidationErrors...)
	}

	Scenario(s)
	for i, f := range s.Frames {
		if !reflect.DeepEqual(first[i], f.ValidationErrors) {
			t.Fatalf("frame %d: annotations changed on revalidation: %v vs %v", i, first[i], f.ValidationErrors)
		}
	}
}

func TestStaleAnnotationsAreReplaced(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(20),
		Frames:  []scenario.Frame{frame("start", unit("U1", 0, 0))},
	}
	s.Frames[0].ValidationErrors = []string{"hand-authored garbage"}

	Scenario(s)

	if len(s.Frames[0].ValidationErrors) != 0 {
		t.Fatalf("expected stale annotations cleared, got %v", s.Frames[0].ValidationErrors)
	}
}

func TestEmptyTerrainDoesNotPanic(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.Grid{},
		Frames:  []scenario.Frame{frame("start", unit("U1", 0, 0))},
	}

	Scenario(s)

	errs := s.Frames[0].ValidationErrors
	if len(errs) != 1 || !strings.Contains(errs[0], "out of bounds") {
		t.Fatalf("expected every unit out of bounds on empty terrain, got %v", errs)
	}
}

func TestAllRulesRunWithoutShortCircuit(t *testing.T) {
	terrain := scenario.NewOpenGrid(20)
	_ = terrain.Set(5, 5, scenario.TerrainWater)
	s := &scenario.Scenario{
		Terrain: terrain,
		Frames: []scenario.Frame{
			frame("start", unit("U1", 0, 0)),
			frame("chaos", unit("U1", 5, 5), unit("U2", 30, 30)),
		},
	}

	Scenario(s)

	errs := s.Frames[1].ValidationErrors
	// U1 is both in water and too fast; U2 is out of bounds.
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}
}

func TestNilScenario(t *testing.T) {
	Scenario(nil)
	if ErrorCount(nil) != 0 {
		t.Fatal("expected zero errors for nil scenario")
	}
}
