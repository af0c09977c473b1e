package analytics

import (
	"testing"

	"github.com/sandtable-sim/sandtable/internal/scenario"
)

func unit(id string, side scenario.Side, x, y int) scenario.Unit {
	return scenario.Unit{ID: id, Side: side, Type: "Infantry", X: x, Y: y, Health: 100, Range: 1, Status: "Active"}
}

func TestForceCorrelation(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(5),
		Frames: []scenario.Frame{
			{Units: []scenario.Unit{
				unit("B-1", scenario.SideBlue, 0, 0),
				unit("B-2", scenario.SideBlue, 1, 0),
				unit("R-1", scenario.SideRed, 4, 4),
			}},
			{Units: []scenario.Unit{
				unit("B-1", scenario.SideBlue, 0, 1),
				unit("R-1", scenario.SideRed, 4, 3),
			}},
			{},
		},
	}

	series := ForceCorrelation(s)
	if len(series) != 3 {
		t.Fatalf("expected 3 points, got %d", len(series))
	}
	want := []ForcePoint{
		{Frame: 1, Blue: 2, Red: 1},
		{Frame: 2, Blue: 1, Red: 1},
		{Frame: 3},
	}
	for i, point := range series {
		if point != want[i] {
			t.Fatalf("point %d = %+v, want %+v", i, point, want[i])
		}
	}
}

func TestForceCorrelationNilScenario(t *testing.T) {
	if got := ForceCorrelation(nil); got != nil {
		t.Fatalf("expected nil series, got %v", got)
	}
}

func TestHeatmapAccumulatesAcrossFrames(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(3),
		Frames: []scenario.Frame{
			{Units: []scenario.Unit{unit("B-1", scenario.SideBlue, 1, 1)}},
			{Units: []scenario.Unit{unit("B-1", scenario.SideBlue, 1, 1)}},
			{Units: []scenario.Unit{unit("B-1", scenario.SideBlue, 2, 1)}},
		},
	}

	heat := Heatmap(s)
	if len(heat) != 3 || len(heat[0]) != 3 {
		t.Fatalf("expected 3x3 heatmap, got %dx%d", len(heat), len(heat[0]))
	}
	if heat[1][1] != 2 {
		t.Fatalf("expected 2 visits at (1,1), got %d", heat[1][1])
	}
	if heat[1][2] != 1 {
		t.Fatalf("expected 1 visit at (2,1), got %d", heat[1][2])
	}
	if heat[0][0] != 0 {
		t.Fatalf("expected untouched cell to stay 0, got %d", heat[0][0])
	}
}

func TestHeatmapSkipsOutOfBoundsUnits(t *testing.T) {
	s := &scenario.Scenario{
		Terrain: scenario.NewOpenGrid(2),
		Frames: []scenario.Frame{
			{Units: []scenario.Unit{
				unit("B-1", scenario.SideBlue, 5, 5),
				unit("B-2", scenario.SideBlue, -1, 0),
				unit("B-3", scenario.SideBlue, 0, 0),
			}},
		},
	}

	heat := Heatmap(s)
	total := 0
	for _, row := range heat {
		for _, v := range row {
			total += v
		}
	}
	if total != 1 || heat[0][0] != 1 {
		t.Fatalf("expected only the in-bounds unit counted, got %v", heat)
	}
}

func TestHeatmapWithoutTerrain(t *testing.T) {
	if got := Heatmap(&scenario.Scenario{}); got != nil {
		t.Fatalf("expected nil heatmap, got %v", got)
	}
}
