package geometry

import (
	"math"

	"project-manager/core/agol"
)

// Kind discriminates the recognized geometry shapes.
type Kind string

const (
	KindPoint    Kind = "point"
	KindPolyline Kind = "polyline"
	KindPolygon  Kind = "polygon"
)

// Coord is a latitude/longitude pair in WGS84.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Normalized is a service geometry reduced to lat/lon parts for rendering
// and selection math. A point has one part with one coordinate.
type Normalized struct {
	Kind  Kind      `json:"kind"`
	Parts [][]Coord `json:"parts"`
}

// FromEsri normalizes a native geometry. Unrecognized shapes yield nil,
// which callers drop from rendering rather than treating as an error.
func FromEsri(g *agol.Geometry) *Normalized {
	if g == nil {
		return nil
	}
	switch {
	case g.X != nil && g.Y != nil:
		return &Normalized{Kind: KindPoint, Parts: [][]Coord{{{Lat: *g.Y, Lon: *g.X}}}}
	case len(g.Paths) > 0:
		return &Normalized{Kind: KindPolyline, Parts: toParts(g.Paths)}
	case len(g.Rings) > 0:
		return &Normalized{Kind: KindPolygon, Parts: toParts(g.Rings)}
	}
	return nil
}

// toParts flips native [x, y] pairs into lat/lon coordinates, skipping
// malformed entries.
func toParts(native [][][]float64) [][]Coord {
	parts := make([][]Coord, 0, len(native))
	for _, part := range native {
		coords := make([]Coord, 0, len(part))
		for _, pair := range part {
			if len(pair) < 2 {
				continue
			}
			coords = append(coords, Coord{Lat: pair[1], Lon: pair[0]})
		}
		parts = append(parts, coords)
	}
	return parts
}

// Bounds is a lat/lon bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Bounds returns the bounding box of the geometry, or false when it has no
// coordinates.
func (n *Normalized) Bounds() (Bounds, bool) {
	first := true
	var b Bounds
	for _, part := range n.Parts {
		for _, c := range part {
			if first {
				b = Bounds{MinLat: c.Lat, MinLon: c.Lon, MaxLat: c.Lat, MaxLon: c.Lon}
				first = false
				continue
			}
			b.MinLat = math.Min(b.MinLat, c.Lat)
			b.MinLon = math.Min(b.MinLon, c.Lon)
			b.MaxLat = math.Max(b.MaxLat, c.Lat)
			b.MaxLon = math.Max(b.MaxLon, c.Lon)
		}
	}
	return b, !first
}

// Center returns the midpoint of the bounds. Rough, but good enough for
// selection and zoom targets.
func (b Bounds) Center() Coord {
	return Coord{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Extend grows the bounds to cover o.
func (b Bounds) Extend(o Bounds) Bounds {
	return Bounds{
		MinLat: math.Min(b.MinLat, o.MinLat),
		MinLon: math.Min(b.MinLon, o.MinLon),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
		MaxLon: math.Max(b.MaxLon, o.MaxLon),
	}
}

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(a, b Coord) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := phi2 - phi1
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// NearestIndex returns the index of the candidate closest to from, provided
// it lies within maxMeters. Used to resolve a map click to a feature.
func NearestIndex(candidates []Coord, from Coord, maxMeters float64) (int, bool) {
	best := -1
	bestDist := maxMeters
	for i, c := range candidates {
		d := HaversineMeters(from, c)
		if d <= bestDist {
			best = i
			bestDist = d
		}
	}
	return best, best >= 0
}
