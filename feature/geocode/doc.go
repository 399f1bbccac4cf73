// Package geocode proxies address search to the PDOK locatieserver.
//
// The draw map needs a way to center on an address before a polygon is drawn.
// This feature exposes a single endpoint that forwards the query to the
// configured free-search endpoint and returns trimmed suggestions with a
// WGS84 centroid.
package geocode
