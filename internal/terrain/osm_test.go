package terrain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOSMGeocoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Kherson" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("unexpected user agent %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"lat": "46.6354", "lon": "32.6169"},
		})
	}))
	defer server.Close()

	geocoder := NewOSMGeocoder(OSMConfig{NominatimURL: server.URL})
	point, err := geocoder.Geocode(context.Background(), "Kherson")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if point.Lat != 46.6354 || point.Lon != 32.6169 {
		t.Fatalf("unexpected point %+v", point)
	}
}

func TestOSMGeocoderNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{})
	}))
	defer server.Close()

	geocoder := NewOSMGeocoder(OSMConfig{NominatimURL: server.URL})
	if _, err := geocoder.Geocode(context.Background(), "nowhere at all"); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestOSMFeatureSourceResolvesWayNodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := string(body)
		for _, want := range []string{`way["natural"="water"]`, `way["building"]`, "out body"} {
			if !strings.Contains(query, want) {
				t.Errorf("expected %q in overpass query", want)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"elements": []map[string]any{
				{"type": "node", "id": 1, "lat": 5.0, "lon": 5.0},
				{"type": "node", "id": 2, "lat": 5.0, "lon": 6.0},
				{"type": "way", "id": 10, "nodes": []int{1, 2, 99}, "tags": map[string]string{"natural": "water"}},
				{"type": "way", "id": 11, "nodes": []int{99}, "tags": map[string]string{"building": "yes"}},
			},
		})
	}))
	defer server.Close()

	source := NewOSMFeatureSource(OSMConfig{OverpassURL: server.URL})
	ways, err := source.Ways(context.Background(), BBox{South: 0, West: 0, North: 10, East: 10})
	if err != nil {
		t.Fatalf("ways: %v", err)
	}
	// The way whose nodes are all unresolved is dropped.
	if len(ways) != 1 {
		t.Fatalf("expected 1 resolvable way, got %d", len(ways))
	}
	if len(ways[0].Nodes) != 2 || ways[0].Nodes[1].Lon != 6.0 {
		t.Fatalf("unexpected nodes %+v", ways[0].Nodes)
	}
	if ways[0].Tags["natural"] != "water" {
		t.Fatalf("unexpected tags %+v", ways[0].Tags)
	}
}

func TestOSMFeatureSourceStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := NewOSMFeatureSource(OSMConfig{OverpassURL: server.URL})
	if _, err := source.Ways(context.Background(), BBox{}); err == nil {
		t.Fatal("expected error for throttled response")
	}
}
