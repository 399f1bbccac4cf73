// Package geometry translates between the generic shape interchange format
// and the feature service's native ring-based geometry, and provides the map
// math (bounds, centers, haversine distances) used by the dashboard payloads.
//
// Translation is deliberately lossy for multi-polygons: every constituent
// polygon's rings are flattened into one combined ring list, which loses the
// per-polygon grouping. That matches the service's single-geometry model and
// is a documented limitation, not a defect.
package geometry
