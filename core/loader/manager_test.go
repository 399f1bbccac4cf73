package loader_test

import (
	"errors"
	"testing"

	"project-manager/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(_ fiber.Router) error {
	s.loaded = true
	return s.loadErr
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()

	enabled := &stubFeature{name: "projects", enabled: true}
	disabled := &stubFeature{name: "geocode", enabled: false}

	mgr := loader.NewManager(zap.NewNop())
	mgr.Register(enabled)
	mgr.Register(disabled)

	err := mgr.LoadAll(app)

	assert.NoError(t, err)
	assert.True(t, enabled.loaded)
	assert.False(t, disabled.loaded)
}

func TestManager_LoadAll_StopsOnError(t *testing.T) {
	app := fiber.New()

	failing := &stubFeature{name: "domains", enabled: true, loadErr: errors.New("boom")}
	after := &stubFeature{name: "projects", enabled: true}

	mgr := loader.NewManager(zap.NewNop())
	mgr.Register(failing)
	mgr.Register(after)

	err := mgr.LoadAll(app)

	assert.ErrorContains(t, err, "failed to load feature domains")
	assert.False(t, after.loaded)
}
