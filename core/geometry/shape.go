package geometry

import (
	"encoding/json"
	"fmt"

	"project-manager/core/agol"
)

// WGS84 is the default coordinate system identifier.
const WGS84 = 4326

// Shape is the generic interchange format for drawn geometry: a type
// discriminator with nested coordinate arrays, GeoJSON-style. Ring order
// follows the format's own convention (first ring outer, rest holes).
type Shape struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// UnsupportedGeometryError indicates a shape kind the translation layer does
// not understand.
type UnsupportedGeometryError struct {
	Type string
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("geometry: unsupported shape type %q", e.Type)
}

// PolygonFromShape translates a polygon or multi-polygon shape into the
// service's ring-based format. A multi-polygon is flattened: all rings of
// all constituent polygons end up in one combined ring list, in order.
// wkid 0 defaults to WGS84.
func PolygonFromShape(shape Shape, wkid int) (*agol.Geometry, error) {
	if wkid == 0 {
		wkid = WGS84
	}

	var rings [][][]float64
	switch shape.Type {
	case "Polygon":
		if err := json.Unmarshal(shape.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("geometry: decode polygon coordinates: %w", err)
		}
	case "MultiPolygon":
		var polygons [][][][]float64
		if err := json.Unmarshal(shape.Coordinates, &polygons); err != nil {
			return nil, fmt.Errorf("geometry: decode multipolygon coordinates: %w", err)
		}
		for _, polygon := range polygons {
			rings = append(rings, polygon...)
		}
	default:
		return nil, &UnsupportedGeometryError{Type: shape.Type}
	}

	return &agol.Geometry{
		Rings:            rings,
		SpatialReference: &agol.SpatialReference{WKID: wkid},
	}, nil
}
