// Package drill runs Lua-scripted consistency drills: a script assembles a
// scenario through a small DSL, declares validator expectations, and the
// runner checks them against the consistency rules.
package drill

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/sandtable-sim/sandtable/internal/scenario"
)

const drillTypeName = "drill"

// Expectation is one declared validator outcome.
type Expectation struct {
	// Kind is "clean" or "violation".
	Kind string
	// Substring is matched against violation messages for Kind "violation".
	Substring string
}

// Drill is one scripted consistency check.
type Drill struct {
	Name         string
	Scenario     *scenario.Scenario
	Expectations []Expectation

	loadErr error
}

// LoadFile evaluates a drill script from disk. The script must return the
// drill it built.
func LoadFile(path string) (*Drill, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load drill: %w", err)
	}
	d, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Name) == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// LoadScript evaluates an in-memory drill script.
func LoadScript(name, script string) (*Drill, error) {
	state := newState()
	if err := lua.LoadBuffer(state, script, name, ""); err != nil {
		return nil, fmt.Errorf("load drill: %w", err)
	}
	d, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Name) == "" {
		d.Name = name
	}
	return d, nil
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerDrillType(state)
	registerDrillConstructor(state)
	return state
}

func runChunk(state *lua.State) (*Drill, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run drill: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("drill script must return a Drill")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	d, ok := ud.(*Drill)
	if !ok || d == nil {
		return nil, fmt.Errorf("drill script returned an invalid Drill")
	}
	if d.loadErr != nil {
		return nil, d.loadErr
	}
	if d.Scenario == nil || len(d.Scenario.Frames) == 0 {
		return nil, fmt.Errorf("drill %q defines no frames", d.Name)
	}
	return d, nil
}

func registerDrillType(state *lua.State) {
	lua.NewMetaTable(state, drillTypeName)
	state.NewTable()
	lua.SetFunctions(state, drillMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerDrillConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, drillConstructor, 0)
	state.SetGlobal("Drill")
}

var drillConstructor = []lua.RegistryFunction{
	{Name: "new", Function: drillNew},
}

var drillMethods = []lua.RegistryFunction{
	{Name: "open_grid", Function: drillOpenGrid},
	{Name: "terrain", Function: drillTerrain},
	{Name: "frame", Function: drillFrame},
	{Name: "expect_clean", Function: drillExpectClean},
	{Name: "expect_violation", Function: drillExpectViolation},
}

func drillNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	d := &Drill{Name: name, Scenario: &scenario.Scenario{}}
	state.PushUserData(d)
	lua.SetMetaTableNamed(state, drillTypeName)
	return 1
}

func drillOpenGrid(state *lua.State) int {
	d := checkDrill(state)
	size := lua.CheckInteger(state, 2)
	d.Scenario.Terrain = scenario.NewOpenGrid(size)
	state.PushValue(1)
	return 1
}

func drillTerrain(state *lua.State) int {
	d := checkDrill(state)
	lua.CheckType(state, 2, lua.TypeTable)
	rows, ok := tableToGo(state, 2).([]any)
	if !ok {
		lua.ArgumentError(state, 2, "terrain must be an array of rows")
		return 0
	}

	grid := make(scenario.Grid, 0, len(rows))
	for y, rawRow := range rows {
		cells, ok := rawRow.([]any)
		if !ok {
			d.loadErr = fmt.Errorf("terrain row %d is not an array", y+1)
			break
		}
		row := make([]scenario.Terrain, 0, len(cells))
		for x, cell := range cells {
			code, ok := cell.(int)
			if !ok || !scenario.Terrain(code).Valid() {
				d.loadErr = fmt.Errorf("terrain cell (%d, %d) has an unknown code", x, y)
				break
			}
			row = append(row, scenario.Terrain(code))
		}
		grid = append(grid, row)
	}
	d.Scenario.Terrain = grid
	state.PushValue(1)
	return 1
}

func drillFrame(state *lua.State) int {
	d := checkDrill(state)
	description := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	// An empty units table decodes as a map; only arrays carry units.
	rawUnits, _ := tableToGo(state, 3).([]any)

	frame := scenario.Frame{Description: description}
	for i, rawUnit := range rawUnits {
		fields, ok := rawUnit.(map[string]any)
		if !ok {
			d.loadErr = fmt.Errorf("frame %q unit %d is not a table", description, i+1)
			break
		}
		unit, err := unitFromFields(fields)
		if err != nil {
			d.loadErr = fmt.Errorf("frame %q unit %d: %w", description, i+1, err)
			break
		}
		frame.Units = append(frame.Units, unit)
	}
	d.Scenario.AppendFrames(frame)
	state.PushValue(1)
	return 1
}

func drillExpectClean(state *lua.State) int {
	d := checkDrill(state)
	d.Expectations = append(d.Expectations, Expectation{Kind: "clean"})
	state.PushValue(1)
	return 1
}

func drillExpectViolation(state *lua.State) int {
	d := checkDrill(state)
	substring := lua.CheckString(state, 2)
	d.Expectations = append(d.Expectations, Expectation{Kind: "violation", Substring: substring})
	state.PushValue(1)
	return 1
}

// unitFromFields builds a unit from a Lua table, applying the document
// defaults for omitted fields.
func unitFromFields(fields map[string]any) (scenario.Unit, error) {
	unit := scenario.Unit{Health: 100, Range: 1, Status: "Active"}

	id, ok := fields["id"].(string)
	if !ok || id == "" {
		return scenario.Unit{}, fmt.Errorf("unit id is required")
	}
	unit.ID = id

	side, ok := fields["side"].(string)
	if !ok {
		return scenario.Unit{}, fmt.Errorf("unit side is required")
	}
	unit.Side = scenario.Side(side)

	if unitType, ok := fields["type"].(string); ok {
		unit.Type = unitType
	}
	x, ok := fields["x"].(int)
	if !ok {
		return scenario.Unit{}, fmt.Errorf("unit x is required")
	}
	unit.X = x
	y, ok := fields["y"].(int)
	if !ok {
		return scenario.Unit{}, fmt.Errorf("unit y is required")
	}
	unit.Y = y

	if health, ok := fields["health"].(int); ok {
		unit.Health = health
	}
	if rng, ok := fields["range"].(int); ok {
		unit.Range = rng
	}
	if status, ok := fields["status"].(string); ok {
		unit.Status = status
	}

	if err := unit.Validate(); err != nil {
		return scenario.Unit{}, err
	}
	return unit, nil
}

func checkDrill(state *lua.State) *Drill {
	ud := lua.CheckUserData(state, 1, drillTypeName)
	if d, ok := ud.(*Drill); ok && d != nil {
		return d
	}
	lua.ArgumentError(state, 1, "drill expected")
	return nil
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
