package projects

import (
	"project-manager/core/geometry"
)

// Fallback view box covering the Netherlands, used when no feature carries
// usable geometry.
var fallbackBounds = geometry.Bounds{
	MinLat: 50.5,
	MinLon: 3.2,
	MaxLat: 53.7,
	MaxLon: 7.4,
}

// selectRadiusMeters is how close a map click must be to a feature center
// to count as selecting it.
const selectRadiusMeters = 25.0

// MapFeature is one project prepared for map rendering. Features whose
// geometry is missing or unrecognized appear in the attribute table but not
// here.
type MapFeature struct {
	ID       int64                `json:"id"`
	Geometry *geometry.Normalized `json:"geometry"`
	Bounds   geometry.Bounds      `json:"bounds"`
	Center   geometry.Coord       `json:"center"`
}

// MapPayload is everything the map widget needs to draw the project layer.
type MapPayload struct {
	Features []MapFeature    `json:"features"`
	Bounds   geometry.Bounds `json:"bounds"`
}

// List is the full dashboard payload: the attribute table plus the map.
type List struct {
	// IDField is the detected unique identifier attribute of the layer.
	IDField string `json:"id_field"`

	// Projects are the raw attribute rows in service order.
	Projects []map[string]any `json:"projects"`

	// Map carries the drawable subset.
	Map MapPayload `json:"map"`
}

// MapOptions is the view state of the map widget, owned by the caller.
type MapOptions struct {
	Center *geometry.Coord `json:"center,omitempty"`
	Zoom   int             `json:"zoom,omitempty"`
}

// SessionState is the explicit per-caller UI state. It is passed in with
// every select request and returned updated; the server keeps no copy.
type SessionState struct {
	SelectedID *int64     `json:"selected_id,omitempty"`
	EditMode   bool       `json:"edit_mode"`
	MapOptions MapOptions `json:"map_options"`
}

// SelectRequest resolves a selection, either by explicit id (table row) or
// by a clicked coordinate matched to the nearest feature within 25 m.
type SelectRequest struct {
	State SessionState `json:"state"`

	ID  *int64   `json:"id,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// SelectResponse returns the updated state and, when a feature is selected,
// its attributes.
type SelectResponse struct {
	State    SessionState   `json:"state"`
	Selected map[string]any `json:"selected,omitempty"`
}

// UpdateRequest carries edited attribute values for one project.
type UpdateRequest struct {
	Attributes map[string]any `json:"attributes"`
}

// CreateRequest carries a new project: its attributes, the drawn project
// area and optional work-area polygons related through the configured key
// field.
type CreateRequest struct {
	Attributes map[string]any   `json:"attributes"`
	Shape      *geometry.Shape  `json:"shape,omitempty"`
	WorkAreas  []geometry.Shape `json:"work_areas,omitempty"`
}

// CreateResponse reports the identifiers assigned by the service.
type CreateResponse struct {
	ObjectID    int64   `json:"objectid"`
	WorkAreaIDs []int64 `json:"work_area_ids,omitempty"`
}
