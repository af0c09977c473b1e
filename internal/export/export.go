// Package export renders read-only views of a scenario: a commander's
// journal in markdown, a tabletop import document in JSON, a force series
// table, and a presence heatmap.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandtable-sim/sandtable/internal/analytics"
	"github.com/sandtable-sim/sandtable/internal/scenario"
)

// Journal renders the commander's journal: a tactical summary followed by a
// per-frame situation report with unit disposition tables.
func Journal(s *scenario.Scenario) string {
	if s == nil || len(s.Frames) == 0 {
		return "# Commander's Journal\n\nNo data available."
	}

	lines := []string{"# Commander's Journal", ""}
	lines = append(lines, "## Tactical Summary")
	lines = append(lines, fmt.Sprintf("**Total Frames:** %d", len(s.Frames)))
	lines = append(lines, "---")

	for i, frame := range s.Frames {
		lines = append(lines, fmt.Sprintf("### Frame %d", i+1))
		lines = append(lines, fmt.Sprintf("**Situation:** %s", frame.Description))

		if len(frame.Units) > 0 {
			lines = append(lines, "\n**Unit Dispositions:**")
			lines = append(lines, "| Unit ID | Side | Position (X,Y) |")
			lines = append(lines, "|---|---|---|")
			for _, unit := range frame.Units {
				lines = append(lines, fmt.Sprintf("| %s | %s | (%d, %d) |", unit.ID, unit.Side, unit.X, unit.Y))
			}
		}

		lines = append(lines, "\n---")
	}
	return strings.Join(lines, "\n")
}

// iconPriority maps unit type substrings to token categories. Order is the
// contract: more specific patterns come before the generic ones they
// contain, so "mechanized infantry" resolves to mechanized, not infantry.
var iconPriority = []struct {
	pattern  string
	category string
}{
	{"mechanized", "mechanized"},
	{"infantry", "infantry"},
	{"tank", "armor"},
	{"armor", "armor"},
	{"artillery", "artillery"},
	{"recon", "recon"},
	{"scout", "recon"},
	{"hq", "command"},
	{"command", "command"},
}

// IconCategory resolves a unit type to its token category, or "default".
func IconCategory(unitType string) string {
	lowered := strings.ToLower(unitType)
	for _, entry := range iconPriority {
		if strings.Contains(lowered, entry.pattern) {
			return entry.category
		}
	}
	return "default"
}

// Token is one tabletop piece placed from the opening frame.
type Token struct {
	UnitID string `json:"unit_id"`
	Side   string `json:"side"`
	Type   string `json:"type"`
	Icon   string `json:"icon"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// TabletopDoc is the import document for physical or virtual tabletop play.
type TabletopDoc struct {
	GridWidth  int     `json:"grid_width"`
	GridHeight int     `json:"grid_height"`
	Terrain    [][]int `json:"terrain"`
	Tokens     []Token `json:"tokens"`
}

// Tabletop builds the tabletop import document from the scenario's terrain
// and opening frame.
func Tabletop(s *scenario.Scenario) ([]byte, error) {
	if s == nil || len(s.Frames) == 0 {
		return nil, fmt.Errorf("scenario has no frames")
	}

	terrain := make([][]int, s.Terrain.Height())
	for y, row := range s.Terrain {
		terrain[y] = make([]int, len(row))
		for x, cell := range row {
			terrain[y][x] = int(cell)
		}
	}

	doc := TabletopDoc{
		GridWidth:  s.Terrain.Width(),
		GridHeight: s.Terrain.Height(),
		Terrain:    terrain,
		Tokens:     []Token{},
	}
	for _, unit := range s.Frames[0].Units {
		doc.Tokens = append(doc.Tokens, Token{
			UnitID: unit.ID,
			Side:   string(unit.Side),
			Type:   unit.Type,
			Icon:   IconCategory(unit.Type),
			X:      unit.X,
			Y:      unit.Y,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// HeatmapTable renders the cumulative presence heatmap as a markdown grid:
// one cell per terrain position, counting unit appearances across all frames.
func HeatmapTable(s *scenario.Scenario) string {
	grid := analytics.Heatmap(s)
	if len(grid) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("|   |")
	for x := range grid[0] {
		fmt.Fprintf(&b, " %d |", x)
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(grid[0])))
	b.WriteString("\n")
	for y, row := range grid {
		fmt.Fprintf(&b, "| %d |", y)
		for _, count := range row {
			fmt.Fprintf(&b, " %d |", count)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ForceTable renders the per-frame force counts as a markdown table.
func ForceTable(s *scenario.Scenario) string {
	series := analytics.ForceCorrelation(s)
	if len(series) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| Frame | Blue Force | Red Force |\n")
	b.WriteString("|---|---|---|\n")
	for _, point := range series {
		fmt.Fprintf(&b, "| %d | %d | %d |\n", point.Frame, point.Blue, point.Red)
	}
	return b.String()
}
