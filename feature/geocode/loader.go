package geocode

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	cfg     Config
	handler *Handler
}

// NewFeature creates the geocode feature.
func NewFeature(cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(cfg, logger)
	h := NewHandler(svc, logger)
	return &Feature{cfg: cfg, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "geocode"
}

// IsEnabled checks if the feature is enabled.
// Address search is off when no endpoint is configured.
func (f *Feature) IsEnabled() bool {
	return f.cfg.URL != ""
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
