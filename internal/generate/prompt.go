package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandtable-sim/sandtable/internal/scenario"
)

// The authoring instruction tells the generator units move at most 2 squares
// per frame. The validator enforces a looser 3.0-tile tolerance; the gap is
// deliberate slack for diagonal steps and minor generator drift.
const maxAuthoredStep = 2

// systemInstruction encodes the simulation contract the generator must obey.
func systemInstruction(opts Options) string {
	size := opts.gridSize()
	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert military simulation engine. Your task is to generate realistic tactical wargame scenarios based on a user's research topic.

**Output Format:**
You must output a valid JSON object matching the provided schema.

**Constraints & Rules:**
1.  **Grid:** The map is a %dx%d grid. Coordinates are (0,0) to (%d,%d).
2.  **Terrain:** Generate a tactical terrain map (%dx%d matrix) using integers:
    *   %d: Open Ground (plains, desert)
    *   %d: Water (rivers, lakes)
    *   %d: Urban (buildings, towns)
    *   %d: Forest (woods, jungle)
    Make the terrain tactically interesting (chokepoints, cover).
3.  **Sides:** Use '%s' (Side A) and '%s' (Side B).
4.  **Movement Physics (Spatial Consistency):**
    *   Units CANNOT teleport.
    *   Between consecutive frames, a unit can move a MAXIMUM of %d squares (Euclidean distance approx, or %d steps).
    *   Units cannot move into Deep Water (%d) unless they are amphibious (context dependent, generally avoid).
5.  **Consistency:** Unit IDs must remain constant across frames. If a unit is destroyed, remove it from the list in subsequent frames.
6.  **Narrative:** The frame_description should briefly explain the maneuver (e.g., "Red forces flank left while Blue holds the urban center.").
`,
		size, size, size-1, size-1,
		size, size,
		int(scenario.TerrainOpen), int(scenario.TerrainWater), int(scenario.TerrainUrban), int(scenario.TerrainForest),
		scenario.SideBlue, scenario.SideRed,
		maxAuthoredStep, maxAuthoredStep,
		int(scenario.TerrainWater),
	)

	if style := strings.TrimSpace(opts.TerrainStyle); style != "" && opts.Terrain == nil {
		fmt.Fprintf(&b, "\n**Terrain Style:** Shape the terrain map as: %s.\n", style)
	}

	for _, doctrine := range opts.Doctrines {
		text := strings.TrimSpace(doctrine.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n**%s Doctrine:** %s\n", doctrine.Side, text)
	}

	b.WriteString("\n**Task:**\nGenerate a scenario with 5-10 frames based on the user's input context.\n")
	return b.String()
}

// userInstruction embeds the topic, any real-time intelligence digest, and
// a pinned terrain grid the generator must echo back verbatim.
func userInstruction(topic string, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a tactical scenario based on this research topic: %s", strings.TrimSpace(topic))

	if intel := strings.TrimSpace(opts.Intel); intel != "" {
		fmt.Fprintf(&b, "\n\n**Real-Time Intelligence:**\n%s", intel)
	}

	if opts.Terrain != nil {
		codes, err := json.Marshal(terrainCodes(opts.Terrain))
		if err == nil {
			fmt.Fprintf(&b, "\n\n**Fixed Terrain:** Use exactly this terrain map, echoed back unchanged in terrain:\n%s", codes)
		}
	}

	return b.String()
}

// continuationInstruction asks for exactly continuationFrames new frames that
// extend the scenario from the chosen cut point.
func continuationInstruction(s *scenario.Scenario, fromFrame int, reason string) (string, error) {
	roster, err := json.Marshal(s.Frames[fromFrame].Units)
	if err != nil {
		return "", fmt.Errorf("marshal roster: %w", err)
	}
	terrain, err := json.Marshal(terrainCodes(s.Terrain))
	if err != nil {
		return "", fmt.Errorf("marshal terrain: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Continue an existing tactical scenario. Generate exactly %d new frames that follow frame %d.\n", continuationFrames, fromFrame+1)
	fmt.Fprintf(&b, "Reuse the existing unit IDs below; do not invent replacements for surviving units. Respect the existing terrain.\n")
	fmt.Fprintf(&b, "\n**Current Unit Roster (frame %d):**\n%s\n", fromFrame+1, roster)
	fmt.Fprintf(&b, "\n**Terrain (unchanged, for reference):**\n%s\n", terrain)
	if reason = strings.TrimSpace(reason); reason != "" {
		fmt.Fprintf(&b, "\n**Branch Premise:** %s\n", reason)
	}
	return b.String(), nil
}

// correctiveFeedback lists up to maxFeedbackLines violations as
// "Frame N: <error>" lines for the retry conversation.
func correctiveFeedback(s *scenario.Scenario) string {
	var lines []string
	for i, frame := range s.Frames {
		for _, violation := range frame.ValidationErrors {
			lines = append(lines, fmt.Sprintf("Frame %d: %s", i+1, violation))
			if len(lines) == maxFeedbackLines {
				break
			}
		}
		if len(lines) == maxFeedbackLines {
			break
		}
	}

	var b strings.Builder
	b.WriteString("The scenario you produced violates the movement and terrain rules. Fix the following and regenerate the full scenario:\n")
	for _, line := range lines {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("Keep everything that is already consistent unchanged.")
	return b.String()
}

func terrainCodes(grid scenario.Grid) [][]int {
	codes := make([][]int, len(grid))
	for y, row := range grid {
		codes[y] = make([]int, len(row))
		for x, cell := range row {
			codes[y][x] = int(cell)
		}
	}
	return codes
}
