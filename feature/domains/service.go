package domains

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"project-manager/core/agol"
	"project-manager/core/reconcile"
	"project-manager/core/utils"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// optionsTTL bounds how long form-option lookups may serve stale values.
const optionsTTL = 5 * time.Minute

// Service curates domain value lists stored in the domains feature server.
type Service struct {
	client     agol.Client
	engine     *reconcile.Engine
	serviceURL string
	logger     *zap.Logger
	cache      *gocache.Cache

	// resolved endpoints, discovered once from the feature server
	mu        sync.Mutex
	valuesURL string
	configURL string
}

// NewService creates a domains service working against the given feature
// server root URL.
func NewService(client agol.Client, serviceURL string, logger *zap.Logger) *Service {
	return &Service{
		client:     client,
		engine:     reconcile.NewEngine(client, logger),
		serviceURL: serviceURL,
		logger:     logger,
		cache:      gocache.New(optionsTTL, 10*time.Minute),
	}
}

// endpoints resolves which layer/table of the feature server holds domain
// values and which table holds field configurations. The first layer (or the
// first table, for table-only services) carries the values; the second table,
// when the service has more than one, carries the configs. The result is
// memoized.
func (s *Service) endpoints(ctx context.Context) (valuesURL, configURL string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valuesURL != "" {
		return s.valuesURL, s.configURL, nil
	}

	info, err := s.client.ServiceInfo(ctx, s.serviceURL)
	if err != nil {
		return "", "", fmt.Errorf("inspect domains service: %w", err)
	}

	var valuesID int
	switch {
	case len(info.Layers) > 0:
		valuesID = info.Layers[0].ID
	case len(info.Tables) > 0:
		valuesID = info.Tables[0].ID
	default:
		return "", "", fmt.Errorf("domains service %s exposes no layers or tables", s.serviceURL)
	}

	s.valuesURL = s.serviceURL + "/" + strconv.Itoa(valuesID)
	if len(info.Tables) > 1 {
		s.configURL = s.serviceURL + "/" + strconv.Itoa(info.Tables[1].ID)
	}

	s.logger.Info("Resolved domains service endpoints",
		zap.String("values_url", s.valuesURL),
		zap.String("config_url", s.configURL),
	)

	return s.valuesURL, s.configURL, nil
}

// Fields returns the distinct field names present in the values table plus
// all known field configurations.
func (s *Service) Fields(ctx context.Context) ([]string, map[string]reconcile.FieldConfig, error) {
	valuesURL, configURL, err := s.endpoints(ctx)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.client.Query(ctx, valuesURL, agol.QueryOptions{
		OutFields:    "field_name",
		OmitGeometry: true,
		Extra:        map[string]string{"returnDistinctValues": "true"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list domain fields: %w", err)
	}

	seen := map[string]bool{}
	fields := make([]string, 0, len(result.Features))
	for _, f := range result.Features {
		name := utils.ToString(f.Attributes["field_name"])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	sort.Strings(fields)

	configs := map[string]reconcile.FieldConfig{}
	if configURL != "" {
		cfgResult, err := s.client.Query(ctx, configURL, agol.QueryOptions{OmitGeometry: true})
		if err != nil {
			return nil, nil, fmt.Errorf("list field configs: %w", err)
		}
		for _, f := range cfgResult.Features {
			cfg := reconcile.FieldConfigFromAttributes(f.Attributes)
			if cfg.FieldName != "" {
				configs[cfg.FieldName] = cfg
			}
		}
	}

	return fields, configs, nil
}

// Options returns the domain values for one field, optionally restricted to
// active options. Results are cached; reconciliation invalidates the cache.
func (s *Service) Options(ctx context.Context, fieldName string, activeOnly bool) ([]reconcile.DomainValue, error) {
	key := optionsCacheKey(fieldName, activeOnly)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]reconcile.DomainValue), nil
	}

	valuesURL, _, err := s.endpoints(ctx)
	if err != nil {
		return nil, err
	}

	values, err := s.engine.FetchCurrent(ctx, valuesURL, fieldName)
	if err != nil {
		return nil, err
	}

	if activeOnly {
		active := values[:0]
		for _, v := range values {
			if v.Active == 1 {
				active = append(active, v)
			}
		}
		values = active
	}

	s.cache.Set(key, values, gocache.DefaultExpiration)
	return values, nil
}

// Config returns the field configuration for one field, nil when absent.
func (s *Service) Config(ctx context.Context, fieldName string) (*reconcile.FieldConfig, error) {
	_, configURL, err := s.endpoints(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.FetchFieldConfig(ctx, configURL, fieldName)
}

// Reconcile routes an edited table through the reconciliation engine and
// invalidates cached options for the field once changes were applied.
func (s *Service) Reconcile(ctx context.Context, fieldName string, edited []reconcile.DomainValue, cfg *reconcile.FieldConfig, opts reconcile.Options) (*reconcile.Result, error) {
	valuesURL, configURL, err := s.endpoints(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Reconcile(ctx, valuesURL, configURL, fieldName, edited, cfg, opts)
	if result != nil && result.Applied {
		s.invalidate(fieldName)
	}
	return result, err
}

func (s *Service) invalidate(fieldName string) {
	s.cache.Delete(optionsCacheKey(fieldName, true))
	s.cache.Delete(optionsCacheKey(fieldName, false))
}

func optionsCacheKey(fieldName string, activeOnly bool) string {
	if activeOnly {
		return "options:active:" + fieldName
	}
	return "options:all:" + fieldName
}
