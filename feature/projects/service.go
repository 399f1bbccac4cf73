package projects

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"project-manager/core/agol"
	"project-manager/core/geometry"
	"project-manager/core/reconcile"
	"project-manager/core/utils"
	"project-manager/feature/domains"

	"go.uber.org/zap"
)

// ErrValidation marks client mistakes: unknown ids, values outside the
// allowed domain, malformed geometry.
var ErrValidation = errors.New("validation failed")

// ErrNotFound marks a lookup of a project that does not exist.
var ErrNotFound = errors.New("project not found")

// idFieldCandidates are checked in order against the layer's attributes to
// find the unique identifier field.
var idFieldCandidates = []string{"OBJECTID", "FID", "Id", "id"}

// Service drives the project dashboard against the remote feature service.
type Service struct {
	client  agol.Client
	cfg     agol.Config
	domains *domains.Service
	logger  *zap.Logger

	// detected id field of the projects layer, memoized after first use
	mu      sync.Mutex
	idField string
}

// NewService creates a projects service. The domains service supplies field
// configurations and allowed dropdown values for validation.
func NewService(client agol.Client, cfg agol.Config, domainsSvc *domains.Service, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		cfg:     cfg,
		domains: domainsSvc,
		logger:  logger,
	}
}

// List returns the full dashboard payload: attribute rows in service order
// plus the drawable map subset with per-feature and global bounds.
func (s *Service) List(ctx context.Context) (*List, error) {
	result, err := s.client.Query(ctx, s.cfg.ProjectsLayerURL, agol.QueryOptions{
		Extra: map[string]string{"outSR": strconv.Itoa(geometry.WGS84)},
	})
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	list := &List{
		IDField:  s.detectIDField(result),
		Projects: make([]map[string]any, 0, len(result.Features)),
		Map:      MapPayload{Features: []MapFeature{}},
	}

	haveBounds := false
	for _, feature := range result.Features {
		list.Projects = append(list.Projects, feature.Attributes)

		normalized := geometry.FromEsri(feature.Geometry)
		if normalized == nil {
			// Missing or unrecognized geometry stays in the table only.
			continue
		}
		bounds, ok := normalized.Bounds()
		if !ok {
			continue
		}

		id := utils.ToInt64(feature.Attributes[list.IDField])
		list.Map.Features = append(list.Map.Features, MapFeature{
			ID:       id,
			Geometry: normalized,
			Bounds:   bounds,
			Center:   bounds.Center(),
		})

		if haveBounds {
			list.Map.Bounds = list.Map.Bounds.Extend(bounds)
		} else {
			list.Map.Bounds = bounds
			haveBounds = true
		}
	}

	if !haveBounds {
		list.Map.Bounds = fallbackBounds
	}

	return list, nil
}

// Select resolves a selection request into updated session state. A table
// row selects by id; a map click selects the nearest feature center within
// 25 m, or clears the selection when nothing is close enough.
func (s *Service) Select(ctx context.Context, req SelectRequest) (*SelectResponse, error) {
	state := req.State

	switch {
	case req.ID != nil:
		state.SelectedID = req.ID
	case req.Lat != nil && req.Lon != nil:
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}

		centers := make([]geometry.Coord, len(list.Map.Features))
		for i, f := range list.Map.Features {
			centers[i] = f.Center
		}

		click := geometry.Coord{Lat: *req.Lat, Lon: *req.Lon}
		if i, ok := geometry.NearestIndex(centers, click, selectRadiusMeters); ok {
			id := list.Map.Features[i].ID
			state.SelectedID = &id
			center := list.Map.Features[i].Center
			state.MapOptions.Center = &center
		} else {
			state.SelectedID = nil
		}
	default:
		state.SelectedID = nil
	}

	resp := &SelectResponse{State: state}
	if state.SelectedID == nil {
		resp.State.EditMode = false
		return resp, nil
	}

	selected, err := s.fetch(ctx, *state.SelectedID)
	if err != nil {
		return nil, err
	}
	resp.Selected = selected.Attributes
	return resp, nil
}

// Update edits the attributes of one project. Values are coerced per the
// field configuration and dropdown-constrained fields are validated against
// the active domain values before the edit is sent.
func (s *Service) Update(ctx context.Context, id int64, attrs map[string]any) ([]agol.EditResult, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: no attributes to update", ErrValidation)
	}

	// Confirm the record exists and learn the layer's id field.
	if _, err := s.fetch(ctx, id); err != nil {
		return nil, err
	}

	idField, err := s.resolveIDField(ctx)
	if err != nil {
		return nil, err
	}

	prepared, err := s.prepareAttributes(ctx, attrs)
	if err != nil {
		return nil, err
	}
	prepared[idField] = id

	results, err := s.client.UpdateFeatures(ctx, s.cfg.ProjectsLayerURL, []agol.Feature{
		{Attributes: prepared},
	})
	if err != nil {
		return results, fmt.Errorf("update project %d: %w", id, err)
	}
	if failed := agol.FirstError(results); failed != nil {
		return results, fmt.Errorf("update project %d rejected: %s", id, editFailureDetail(failed))
	}
	return results, nil
}

// Create adds a new project with its drawn area and optional work-area
// polygons. Work areas are related to the project through the configured
// relation key field, whose value must be present in the attributes.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if len(req.Attributes) == 0 {
		return nil, fmt.Errorf("%w: attributes are required", ErrValidation)
	}

	prepared, err := s.prepareAttributes(ctx, req.Attributes)
	if err != nil {
		return nil, err
	}

	feature := agol.Feature{Attributes: prepared}
	if req.Shape != nil {
		geom, err := geometry.PolygonFromShape(*req.Shape, geometry.WGS84)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		feature.Geometry = geom
	}

	// Validate the work areas up front so a bad one cannot leave a project
	// without its areas behind.
	var areas []agol.Feature
	if len(req.WorkAreas) > 0 {
		relation := utils.ToString(prepared[s.cfg.RelationKeyField])
		if relation == "" {
			return nil, fmt.Errorf("%w: attribute %s is required to relate work areas",
				ErrValidation, s.cfg.RelationKeyField)
		}

		for _, shape := range req.WorkAreas {
			geom, err := geometry.PolygonFromShape(shape, geometry.WGS84)
			if err != nil {
				return nil, fmt.Errorf("%w: work area: %v", ErrValidation, err)
			}
			areas = append(areas, agol.Feature{
				Attributes: map[string]any{s.cfg.RelationKeyField: relation},
				Geometry:   geom,
			})
		}
	}

	results, err := s.client.AddFeatures(ctx, s.cfg.ProjectsLayerURL, []agol.Feature{feature})
	if err != nil {
		return nil, fmt.Errorf("add project: %w", err)
	}
	if failed := agol.FirstError(results); failed != nil {
		return nil, fmt.Errorf("add project rejected: %s", editFailureDetail(failed))
	}

	resp := &CreateResponse{ObjectID: results[0].ObjectID}

	if len(areas) > 0 {
		areaResults, err := s.client.AddFeatures(ctx, s.cfg.WorkAreasLayerURL, areas)
		if err != nil {
			// The project itself is already committed.
			return resp, fmt.Errorf("add work areas for project %d: %w", resp.ObjectID, err)
		}
		if failed := agol.FirstError(areaResults); failed != nil {
			return resp, fmt.Errorf("work area rejected for project %d: %s",
				resp.ObjectID, editFailureDetail(failed))
		}
		for _, r := range areaResults {
			resp.WorkAreaIDs = append(resp.WorkAreaIDs, r.ObjectID)
		}
	}

	s.logger.Info("Project created",
		zap.Int64("objectid", resp.ObjectID),
		zap.Int("work_areas", len(resp.WorkAreaIDs)),
	)
	return resp, nil
}

// resolveIDField returns the layer's id field, probing the layer with a
// single-record query when it has not been detected yet.
func (s *Service) resolveIDField(ctx context.Context) (string, error) {
	if idField := s.currentIDField(); idField != "" {
		return idField, nil
	}

	probe, err := s.client.Query(ctx, s.cfg.ProjectsLayerURL, agol.QueryOptions{
		OmitGeometry: true,
		Extra:        map[string]string{"resultRecordCount": "1"},
	})
	if err != nil {
		return "", fmt.Errorf("inspect projects layer: %w", err)
	}
	return s.detectIDField(probe), nil
}

// fetch loads one project by id.
func (s *Service) fetch(ctx context.Context, id int64) (*agol.Feature, error) {
	idField, err := s.resolveIDField(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.client.Query(ctx, s.cfg.ProjectsLayerURL, agol.QueryOptions{
		Where:        fmt.Sprintf("%s = %d", idField, id),
		OmitGeometry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch project %d: %w", id, err)
	}
	if len(result.Features) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return &result.Features[0], nil
}

// prepareAttributes coerces values per the field configurations and checks
// dropdown-constrained fields against the active domain values.
func (s *Service) prepareAttributes(ctx context.Context, attrs map[string]any) (map[string]any, error) {
	_, configs, err := s.domains.Fields(ctx)
	if err != nil {
		return nil, fmt.Errorf("load field configs: %w", err)
	}

	prepared := make(map[string]any, len(attrs))
	for name, value := range attrs {
		cfg, hasConfig := configs[name]
		if !hasConfig {
			prepared[name] = value
			continue
		}

		coerced, err := utils.CoerceScalar(value, string(cfg.InputType))
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrValidation, name, err)
		}

		if cfg.MaxLen > 0 {
			if text, ok := coerced.(string); ok && len([]rune(text)) > cfg.MaxLen {
				return nil, fmt.Errorf("%w: field %s exceeds %d characters", ErrValidation, name, cfg.MaxLen)
			}
		}
		if cfg.Required && coerced == nil {
			return nil, fmt.Errorf("%w: field %s is required", ErrValidation, name)
		}

		if cfg.IsDropdown {
			if err := s.checkDomainValue(ctx, name, coerced); err != nil {
				return nil, err
			}
		}

		prepared[name] = coerced
	}
	return prepared, nil
}

// checkDomainValue verifies that a dropdown field carries one of its active
// domain values.
func (s *Service) checkDomainValue(ctx context.Context, fieldName string, value any) (err error) {
	if value == nil {
		return nil
	}

	options, err := s.domains.Options(ctx, fieldName, true)
	if err != nil {
		return fmt.Errorf("load domain values for %s: %w", fieldName, err)
	}

	text := utils.ToString(value)
	for _, option := range options {
		if option.Value == text {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not an active domain value for field %s", ErrValidation, text, fieldName)
}

// detectIDField finds the unique identifier attribute of the layer, trusting
// the service metadata first and the conventional names second.
func (s *Service) detectIDField(result *agol.QueryResult) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idField != "" {
		return s.idField
	}

	if result.ObjectIDFieldName != "" {
		s.idField = result.ObjectIDFieldName
		return s.idField
	}

	if len(result.Features) > 0 {
		attrs := result.Features[0].Attributes
		for _, candidate := range idFieldCandidates {
			if _, ok := attrs[candidate]; ok {
				s.idField = candidate
				return s.idField
			}
		}
	}

	// Conventional default when the layer gives no hint.
	return reconcile.ObjectIDField
}

func (s *Service) currentIDField() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idField
}

func editFailureDetail(result *agol.EditResult) string {
	if result.Error != nil {
		return fmt.Sprintf("%d %s", result.Error.Code, result.Error.Description)
	}
	return "no detail"
}
