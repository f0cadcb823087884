package fieldset

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNewPolygonClosesRing(t *testing.T) {
	p, err := NewPolygon([][2]float64{
		{-0.1, -0.1},
		{-0.1, 0.1},
		{0.1, 0.1},
		{0.1, -0.1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords := p.Coordinates()
	if len(coords) != 5 {
		t.Fatalf("expected closed ring with 5 points, got %d", len(coords))
	}
	if coords[0] != coords[len(coords)-1] {
		t.Errorf("ring is not closed: first=%v last=%v", coords[0], coords[len(coords)-1])
	}
}

func TestNewPolygonRejectsTooFewPoints(t *testing.T) {
	_, err := NewPolygon([][2]float64{{0, 0}, {1, 0}, {1, 1}})
	if !errors.Is(err, ErrPolygonTooFewPoints) {
		t.Errorf("expected ErrPolygonTooFewPoints, got %v", err)
	}
}

func TestPolygonContains(t *testing.T) {
	p, err := NewPolygon([][2]float64{
		{-0.1, -0.1},
		{-0.1, 0.1},
		{0.1, 0.1},
		{0.1, -0.1},
		{-0.1, -0.1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !p.Contains(0, 0) {
		t.Error("expected point (0,0) inside polygon")
	}
	if p.Contains(1, 1) {
		t.Error("expected point (1,1) outside polygon")
	}
}

func TestPolygonJSONRoundTrip(t *testing.T) {
	p, err := NewPolygon([][2]float64{
		{16.3, 48.1},
		{16.3, 48.3},
		{16.5, 48.3},
		{16.5, 48.1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Polygon
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(p.Coordinates(), decoded.Coordinates()) {
		t.Errorf("round trip mismatch: %v != %v", p.Coordinates(), decoded.Coordinates())
	}
}

func TestPolygonUnmarshalRejectsNonPolygon(t *testing.T) {
	var p Polygon
	err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[1,2]}`), &p)
	if err == nil {
		t.Fatal("expected error for non-polygon geometry")
	}
}
