package domains

import (
	"project-manager/core/agol"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the domains feature against the given feature server.
func NewFeature(client agol.Client, serviceURL string, logger *zap.Logger) *Feature {
	return NewFeatureWithService(NewService(client, serviceURL, logger), logger)
}

// NewFeatureWithService wraps an existing service, letting other features
// share its option cache.
func NewFeatureWithService(svc *Service, logger *zap.Logger) *Feature {
	h := NewHandler(svc, logger)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "domains"
}

// IsEnabled checks if the feature is enabled.
// Domain curation is off when no feature server is configured.
func (f *Feature) IsEnabled() bool {
	return f.service.serviceURL != ""
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
