package projects

import (
	"project-manager/core/agol"
	"project-manager/feature/domains"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the projects feature. The domains service is shared
// with the domains feature so both see the same option cache.
func NewFeature(client agol.Client, cfg agol.Config, domainsSvc *domains.Service, logger *zap.Logger) *Feature {
	svc := NewService(client, cfg, domainsSvc, logger)
	h := NewHandler(svc, logger)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "projects"
}

// IsEnabled checks if the feature is enabled.
// The dashboard is off when no projects layer is configured.
func (f *Feature) IsEnabled() bool {
	return f.service.cfg.ProjectsLayerURL != ""
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
