package terrain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	defaultOverpassURL  = "https://overpass-api.de/api/interpreter"

	// Nominatim's usage policy requires an identifying agent.
	userAgent = "sandtable/1.0"
)

// OSMConfig configures the OpenStreetMap-backed geocoder and feature source.
type OSMConfig struct {
	// NominatimURL overrides the geocoding endpoint, mainly for tests.
	NominatimURL string
	// OverpassURL overrides the feature endpoint, mainly for tests.
	OverpassURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

type osmAdapter struct {
	cfg OSMConfig
}

// NewOSMGeocoder builds a Nominatim-backed geocoder.
func NewOSMGeocoder(cfg OSMConfig) Geocoder {
	return newOSMAdapter(cfg)
}

// NewOSMFeatureSource builds an Overpass-backed feature source.
func NewOSMFeatureSource(cfg OSMConfig) FeatureSource {
	return newOSMAdapter(cfg)
}

func newOSMAdapter(cfg OSMConfig) *osmAdapter {
	if strings.TrimSpace(cfg.NominatimURL) == "" {
		cfg.NominatimURL = defaultNominatimURL
	}
	if strings.TrimSpace(cfg.OverpassURL) == "" {
		cfg.OverpassURL = defaultOverpassURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &osmAdapter{cfg: cfg}
}

func (a *osmAdapter) Geocode(ctx context.Context, name string) (Point, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Point{}, fmt.Errorf("place name is required")
	}

	u, err := url.Parse(a.cfg.NominatimURL)
	if err != nil {
		return Point{}, fmt.Errorf("parse geocode url: %w", err)
	}
	q := u.Query()
	q.Set("q", name)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := a.cfg.HTTPClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Point{}, fmt.Errorf("geocode request status %d", res.StatusCode)
	}

	var payload []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Point{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(payload) == 0 {
		return Point{}, fmt.Errorf("no match for %q", name)
	}
	lat, err := strconv.ParseFloat(payload[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(payload[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse longitude: %w", err)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// overpassQuery selects the feature classes the rasterizer understands:
// water bodies, forests, and built-up areas.
func overpassQuery(box BBox) string {
	bbox := fmt.Sprintf("(%f,%f,%f,%f)", box.South, box.West, box.North, box.East)
	var b strings.Builder
	b.WriteString("[out:json];\n(\n")
	for _, selector := range []string{
		`way["natural"="water"]`,
		`relation["natural"="water"]`,
		`way["waterway"="riverbank"]`,
		`way["landuse"="forest"]`,
		`way["natural"="wood"]`,
		`way["landuse"="residential"]`,
		`way["landuse"="industrial"]`,
		`way["building"]`,
	} {
		b.WriteString("  " + selector + bbox + ";\n")
	}
	b.WriteString(");\n(._;>;);\nout body;")
	return b.String()
}

func (a *osmAdapter) Ways(ctx context.Context, box BBox) ([]Way, error) {
	form := url.Values{}
	form.Set("data", overpassQuery(box))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.OverpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build feature request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	res, err := a.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feature request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("feature request status %d", res.StatusCode)
	}

	var payload struct {
		Elements []struct {
			Type  string            `json:"type"`
			ID    int64             `json:"id"`
			Lat   float64           `json:"lat"`
			Lon   float64           `json:"lon"`
			Nodes []int64           `json:"nodes"`
			Tags  map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feature response: %w", err)
	}

	points := make(map[int64]Point)
	for _, el := range payload.Elements {
		if el.Type == "node" {
			points[el.ID] = Point{Lat: el.Lat, Lon: el.Lon}
		}
	}

	var ways []Way
	for _, el := range payload.Elements {
		if el.Type != "way" || len(el.Nodes) == 0 {
			continue
		}
		way := Way{Tags: el.Tags}
		for _, id := range el.Nodes {
			if p, ok := points[id]; ok {
				way.Nodes = append(way.Nodes, p)
			}
		}
		if len(way.Nodes) > 0 {
			ways = append(ways, way)
		}
	}
	return ways, nil
}
