package agol

// SpatialReference identifies the coordinate system of a geometry.
type SpatialReference struct {
	WKID int `json:"wkid"`
}

// Geometry is the service's native geometry representation. Exactly one of
// the point fields (X/Y), Paths or Rings is populated; anything else is an
// unrecognized shape and is dropped from rendering, not treated as an error.
type Geometry struct {
	X                *float64          `json:"x,omitempty"`
	Y                *float64          `json:"y,omitempty"`
	Paths            [][][]float64     `json:"paths,omitempty"`
	Rings            [][][]float64     `json:"rings,omitempty"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// Feature is a single record with attributes and optional geometry. The
// attribute field set is determined by the remote schema, not enforced here,
// so values stay untyped until the point of use.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
}

// QueryOptions controls a layer query. Zero values fall back to the
// match-all predicate and the full field list.
type QueryOptions struct {
	// Where is the SQL-like filter predicate. Defaults to "1=1".
	Where string
	// OutFields is a comma list of field names, or "*" for all fields.
	OutFields string
	// OmitGeometry excludes geometry from the result. Geometry is returned
	// by default.
	OmitGeometry bool
	// Extra holds passthrough query parameters, e.g. outSR.
	Extra map[string]string
}

// QueryResult is the features portion of a query response. If the remote
// service truncates the result set the truncation flag is surfaced as-is;
// the client does no pagination.
type QueryResult struct {
	Features          []Feature `json:"features"`
	ExceededTransfer  bool      `json:"exceededTransferLimit"`
	ObjectIDFieldName string    `json:"objectIdFieldName"`
}

// EditError describes why a single edit was rejected.
type EditError struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// EditResult is the per-feature outcome of an edit operation.
type EditResult struct {
	Success  bool       `json:"success"`
	ObjectID int64      `json:"objectId"`
	Error    *EditError `json:"error,omitempty"`
}

// EditResponse bundles the per-kind results of an applyEdits call.
type EditResponse struct {
	AddResults    []EditResult `json:"addResults"`
	UpdateResults []EditResult `json:"updateResults"`
	DeleteResults []EditResult `json:"deleteResults"`
}

// LayerRef identifies one layer or table of a feature server.
type LayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ServiceInfo is the feature server metadata used to detect which layer or
// table holds a given schema.
type ServiceInfo struct {
	Layers []LayerRef `json:"layers"`
	Tables []LayerRef `json:"tables"`
}

// FirstError returns the first failed result, or nil when every edit
// succeeded. An empty result list is treated as success.
func FirstError(results []EditResult) *EditResult {
	for i := range results {
		if !results[i].Success {
			return &results[i]
		}
	}
	return nil
}
