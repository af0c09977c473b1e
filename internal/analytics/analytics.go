// Package analytics derives summary series from a scenario: per-frame force
// counts and a cumulative unit-presence heatmap.
package analytics

import (
	"github.com/sandtable-sim/sandtable/internal/scenario"
)

// ForcePoint is the unit count for both sides at one frame.
type ForcePoint struct {
	Frame int // 1-based
	Blue  int
	Red   int
}

// ForceCorrelation counts units per side for every frame. Units whose side
// is not Blue count as Red, matching the two-sided model.
func ForceCorrelation(s *scenario.Scenario) []ForcePoint {
	if s == nil {
		return nil
	}
	series := make([]ForcePoint, 0, len(s.Frames))
	for i, frame := range s.Frames {
		point := ForcePoint{Frame: i + 1}
		for _, unit := range frame.Units {
			if unit.Side == scenario.SideBlue {
				point.Blue++
			} else {
				point.Red++
			}
		}
		series = append(series, point)
	}
	return series
}

// Heatmap accumulates how many times any unit occupied each cell across all
// frames. The result has the terrain's dimensions; out-of-bounds units are
// skipped. A scenario without terrain yields nil.
func Heatmap(s *scenario.Scenario) [][]int {
	if s == nil || len(s.Terrain) == 0 {
		return nil
	}
	height := s.Terrain.Height()
	width := s.Terrain.Width()

	heat := make([][]int, height)
	for y := range heat {
		heat[y] = make([]int, width)
	}
	for _, frame := range s.Frames {
		for _, unit := range frame.Units {
			if unit.Y >= 0 && unit.Y < height && unit.X >= 0 && unit.X < width {
				heat[unit.Y][unit.X]++
			}
		}
	}
	return heat
}
