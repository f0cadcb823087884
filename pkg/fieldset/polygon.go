package fieldset

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	ErrPolygonTooFewPoints = errors.New("polygon requires at least four coordinate pairs")
	ErrPolygonInvalidType  = errors.New("geometry type must be Polygon")
)

// Polygon is a simple WGS84 polygon, always stored with a closed exterior
// ring. Coordinates are [longitude, latitude] pairs, matching GeoJSON order.
type Polygon struct {
	ring orb.Ring
}

// NewPolygon builds a polygon from an ordered list of [longitude, latitude]
// pairs. The ring is closed automatically when the last vertex does not
// repeat the first. Fewer than four pairs (three distinct vertices plus the
// closing point) is rejected rather than constructing a degenerate polygon.
func NewPolygon(coords [][2]float64) (Polygon, error) {
	if len(coords) < 4 {
		return Polygon{}, ErrPolygonTooFewPoints
	}

	ring := make(orb.Ring, 0, len(coords)+1)
	for _, c := range coords {
		ring = append(ring, orb.Point{c[0], c[1]})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	return Polygon{ring: ring}, nil
}

// Contains reports whether the WGS84 point lies inside the polygon.
func (p Polygon) Contains(longitude, latitude float64) bool {
	if len(p.ring) == 0 {
		return false
	}
	return planar.PolygonContains(orb.Polygon{p.ring}, orb.Point{longitude, latitude})
}

// Coordinates returns the closed exterior ring as [longitude, latitude] pairs.
func (p Polygon) Coordinates() [][2]float64 {
	coords := make([][2]float64, 0, len(p.ring))
	for _, pt := range p.ring {
		coords = append(coords, [2]float64{pt[0], pt[1]})
	}
	return coords
}

// PointCount returns the number of vertices including the closing point.
func (p Polygon) PointCount() int {
	return len(p.ring)
}

// geoJSONPolygon is the wire shape used for storage and API payloads.
type geoJSONPolygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

func (p Polygon) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPolygon{
		Type:        "Polygon",
		Coordinates: [][][2]float64{p.Coordinates()},
	})
}

func (p *Polygon) UnmarshalJSON(data []byte) error {
	var gj geoJSONPolygon
	if err := json.Unmarshal(data, &gj); err != nil {
		return fmt.Errorf("invalid polygon payload: %w", err)
	}
	if gj.Type != "Polygon" {
		return ErrPolygonInvalidType
	}
	if len(gj.Coordinates) == 0 {
		return ErrPolygonTooFewPoints
	}

	parsed, err := NewPolygon(gj.Coordinates[0])
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
