package geocode

import (
	"project-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for address search.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, l *zap.Logger) *Handler {
	return &Handler{service: service, logger: l}
}

// RegisterRoutes registers the geocode routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/geocode", h.HandleSearch)
}

// HandleSearch returns address suggestions for a free-text query.
// @Summary Search addresses
// @Description Proxy a free-text address query to the locatieserver and return centroid suggestions.
// @Tags geocode
// @Produce json
// @Param q query string true "Free-text address query"
// @Success 200 {array} geocode.Suggestion "Suggestions"
// @Failure 400 {object} map[string]string "Missing query"
// @Failure 502 {object} map[string]string "Upstream failure"
// @Router /geocode [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	l := logger.WithRayID(h.logger, c)

	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter 'q' is required",
		})
	}

	suggestions, err := h.service.Search(c.Context(), query)
	if err != nil {
		l.Error("Geocode lookup failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(suggestions)
}
