// Package validate runs the spatial consistency rules over a scenario and
// annotates each frame with the violations it finds.
//
// Rules are independent and all of them run for every frame; a violation is
// a data annotation, never an error return. Running validation twice over
// the same scenario yields identical annotations.
package validate

import (
	"fmt"
	"math"

	"github.com/sandtable-sim/sandtable/internal/scenario"
)

// MaxMoveDistance is the enforced per-frame movement tolerance in grid
// units. It is deliberately looser than the 2-step authoring instruction
// given to the generator, so a diagonal double step (2.83) passes.
const MaxMoveDistance = 3.0

// Scenario populates every frame's ValidationErrors in frame order,
// replacing any existing annotations.
func Scenario(s *scenario.Scenario) {
	if s == nil {
		return
	}

	width := s.Terrain.Width()
	height := s.Terrain.Height()

	var prevUnits map[string]scenario.Unit

	for i := range s.Frames {
		frame := &s.Frames[i]
		frame.ValidationErrors = []string{}

		for _, unit := range frame.Units {
			if unit.X < 0 || unit.X >= width || unit.Y < 0 || unit.Y >= height {
				frame.ValidationErrors = append(frame.ValidationErrors,
					fmt.Sprintf("Unit %s out of bounds (%d, %d)", unit.ID, unit.X, unit.Y))
				// No valid cell to inspect; skip the terrain check.
				continue
			}
			if s.Terrain.At(unit.X, unit.Y) == scenario.TerrainWater {
				// An amphibious exception is documented policy but not
				// implemented; every unit is blocked by water.
				frame.ValidationErrors = append(frame.ValidationErrors,
					fmt.Sprintf("Unit %s is in Water at (%d, %d)", unit.ID, unit.X, unit.Y))
			}
		}

		if i > 0 {
			for _, unit := range frame.Units {
				prev, ok := prevUnits[unit.ID]
				if !ok {
					// First appearance; no teleport check applies.
					continue
				}
				dx := float64(unit.X - prev.X)
				dy := float64(unit.Y - prev.Y)
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist > MaxMoveDistance {
					frame.ValidationErrors = append(frame.ValidationErrors,
						fmt.Sprintf("Unit %s moved too fast (%.2f tiles)", unit.ID, dist))
				}
			}
		}

		prevUnits = frame.UnitIndex()
	}
}

// ErrorCount returns the total number of violations across all frames.
func ErrorCount(s *scenario.Scenario) int {
	if s == nil {
		return 0
	}
	total := 0
	for _, frame := range s.Frames {
		total += len(frame.ValidationErrors)
	}
	return total
}
