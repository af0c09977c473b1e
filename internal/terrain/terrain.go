// Package terrain builds scenario grids from real-world map data. A named
// place is geocoded, OpenStreetMap features around it are fetched, and the
// features are rasterized onto the grid. Any failure along the way degrades
// to an all-Open grid; real-place terrain is advisory, never blocking.
package terrain

import (
	"context"
	"math"

	"github.com/sandtable-sim/sandtable/internal/scenario"
	"github.com/sandtable-sim/sandtable/internal/telemetry"
)

// DefaultCellSizeMeters is the real-world footprint of one grid cell.
const DefaultCellSizeMeters = 100

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// BBox is a geographic bounding box.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Way is one mapped feature: its tags and its node trace.
type Way struct {
	Tags  map[string]string
	Nodes []Point
}

// Geocoder resolves a place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Point, error)
}

// FeatureSource fetches mapped features inside a bounding box.
type FeatureSource interface {
	Ways(ctx context.Context, box BBox) ([]Way, error)
}

// Fetcher turns place names into terrain grids.
type Fetcher struct {
	geocoder Geocoder
	source   FeatureSource
	emitter  *telemetry.Emitter
}

// NewFetcher wires a terrain fetcher. The emitter may be nil.
func NewFetcher(geocoder Geocoder, source FeatureSource, emitter *telemetry.Emitter) *Fetcher {
	return &Fetcher{geocoder: geocoder, source: source, emitter: emitter}
}

// FetchGrid builds a gridSize x gridSize terrain grid centered on the named
// place. Geocoding or feature failures fall back to an all-Open grid.
func (f *Fetcher) FetchGrid(ctx context.Context, location string, gridSize, cellSizeMeters int) scenario.Grid {
	if gridSize <= 0 {
		gridSize = 20
	}
	if cellSizeMeters <= 0 {
		cellSizeMeters = DefaultCellSizeMeters
	}

	center, err := f.geocoder.Geocode(ctx, location)
	if err != nil {
		f.warn(ctx, "geocode_failed", location+": "+err.Error())
		return scenario.NewOpenGrid(gridSize)
	}

	box := boundingBox(center, gridSize, cellSizeMeters)
	ways, err := f.source.Ways(ctx, box)
	if err != nil {
		f.warn(ctx, "feature_fetch_failed", location+": "+err.Error())
		return scenario.NewOpenGrid(gridSize)
	}

	return rasterize(ways, box, gridSize)
}

func (f *Fetcher) warn(ctx context.Context, event, detail string) {
	_ = f.emitter.Emit(ctx, telemetry.SeverityWarn, event, detail)
}

// boundingBox spans gridSize*cellSizeMeters around the center. One degree of
// latitude is ~111km; longitude degrees shrink by cos(lat).
func boundingBox(center Point, gridSize, cellSizeMeters int) BBox {
	radiusMeters := float64(gridSize*cellSizeMeters) / 2
	latDelta := radiusMeters / 111000
	lonDelta := radiusMeters / (111000 * math.Cos(center.Lat*math.Pi/180))
	return BBox{
		South: center.Lat - latDelta,
		West:  center.Lon - lonDelta,
		North: center.Lat + latDelta,
		East:  center.Lon + lonDelta,
	}
}

// classify maps feature tags to a terrain code. The first matching rule
// wins: water, then forest, then urban.
func classify(tags map[string]string) scenario.Terrain {
	switch {
	case tags["natural"] == "water" || tags["waterway"] == "riverbank":
		return scenario.TerrainWater
	case tags["landuse"] == "forest" || tags["natural"] == "wood":
		return scenario.TerrainForest
	case tags["landuse"] == "residential" || tags["landuse"] == "industrial":
		return scenario.TerrainUrban
	default:
		if _, ok := tags["building"]; ok {
			return scenario.TerrainUrban
		}
		return scenario.TerrainOpen
	}
}

// rasterize samples each way's nodes onto the grid and fills gaps between
// consecutive nodes by linear interpolation. Row 0 is the northern edge.
func rasterize(ways []Way, box BBox, gridSize int) scenario.Grid {
	grid := scenario.NewOpenGrid(gridSize)

	toGrid := func(p Point) (int, int) {
		y := int((p.Lat - box.South) / (box.North - box.South) * float64(gridSize))
		x := int((p.Lon - box.West) / (box.East - box.West) * float64(gridSize))
		return x, gridSize - 1 - y
	}

	for _, way := range ways {
		code := classify(way.Tags)
		if code == scenario.TerrainOpen {
			continue
		}
		var prevX, prevY int
		for i, node := range way.Nodes {
			x, y := toGrid(node)
			if grid.Contains(x, y) {
				grid.Set(x, y, code)
			}
			if i > 0 {
				steps := max(abs(x-prevX), abs(y-prevY))
				for step := 0; step < steps; step++ {
					t := float64(step) / float64(steps)
					xi := prevX + int(float64(x-prevX)*t)
					yi := prevY + int(float64(y-prevY)*t)
					if grid.Contains(xi, yi) {
						grid.Set(xi, yi, code)
					}
				}
			}
			prevX, prevY = x, y
		}
	}
	return grid
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
