package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Suggestion is one address search result.
type Suggestion struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Service performs address lookups against the locatieserver.
type Service struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewService creates a geocoding service.
func NewService(cfg Config, logger *zap.Logger) *Service {
	if cfg.Rows <= 0 {
		cfg.Rows = 5
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Service{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// locatieserver response envelope. Centroids arrive as WKT points.
type searchResponse struct {
	Response struct {
		Docs []struct {
			ID           string `json:"id"`
			Type         string `json:"type"`
			Weergavenaam string `json:"weergavenaam"`
			CentroideLL  string `json:"centroide_ll"`
		} `json:"docs"`
	} `json:"response"`
}

// Search queries the locatieserver for the given free-text query.
func (s *Service) Search(ctx context.Context, query string) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("rows", strconv.Itoa(s.cfg.Rows))
	params.Set("fl", "id,type,weergavenaam,centroide_ll")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read geocode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("geocode endpoint returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse geocode response: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(parsed.Response.Docs))
	for _, doc := range parsed.Response.Docs {
		lat, lon, ok := parsePointWKT(doc.CentroideLL)
		if !ok {
			// A suggestion without a usable centroid cannot center the map.
			s.logger.Debug("Skipping suggestion without centroid", zap.String("id", doc.ID))
			continue
		}
		suggestions = append(suggestions, Suggestion{
			ID:          doc.ID,
			Type:        doc.Type,
			DisplayName: doc.Weergavenaam,
			Lat:         lat,
			Lon:         lon,
		})
	}

	return suggestions, nil
}

// parsePointWKT extracts lat/lon from a "POINT(lon lat)" literal.
func parsePointWKT(wkt string) (lat, lon float64, ok bool) {
	trimmed := strings.TrimSpace(wkt)
	if !strings.HasPrefix(trimmed, "POINT(") || !strings.HasSuffix(trimmed, ")") {
		return 0, 0, false
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "POINT("), ")")
	parts := strings.Fields(inner)
	if len(parts) != 2 {
		return 0, 0, false
	}

	lon, errLon := strconv.ParseFloat(parts[0], 64)
	lat, errLat := strconv.ParseFloat(parts[1], 64)
	if errLon != nil || errLat != nil {
		return 0, 0, false
	}

	return lat, lon, true
}
