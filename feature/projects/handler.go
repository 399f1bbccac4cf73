package projects

import (
	"errors"
	"strconv"

	"project-manager/core/agol"
	"project-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the project dashboard.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, l *zap.Logger) *Handler {
	return &Handler{service: service, logger: l}
}

// RegisterRoutes registers the projects routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/projects")
	group.Get("/", h.HandleList)
	group.Post("/select", h.HandleSelect)
	group.Post("/", h.HandleCreate)
	group.Put("/:id", h.HandleUpdate)
}

// HandleList returns the project table and the map payload.
// @Summary List projects
// @Description List all projects with their attributes and drawable geometries (WGS84).
// @Tags projects
// @Produce json
// @Success 200 {object} projects.List "Projects"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /projects [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	list, err := h.service.List(c.Context())
	if err != nil {
		l.Error("Project list failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(list)
}

// HandleSelect resolves a table-row or map-click selection.
// @Summary Select a project
// @Description Resolve a selection by id or clicked coordinate and return the updated session state.
// @Tags projects
// @Accept json
// @Produce json
// @Param request body projects.SelectRequest true "Session state plus id or coordinate"
// @Success 200 {object} projects.SelectResponse "Updated state"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Unknown project"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /projects/select [post]
func (h *Handler) HandleSelect(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req SelectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	resp, err := h.service.Select(c.Context(), req)
	if err != nil {
		l.Error("Project selection failed", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(resp)
}

// HandleUpdate edits the attributes of one project.
// @Summary Update a project
// @Description Update attribute values of one project, coerced and validated per the field configuration.
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project id"
// @Param request body projects.UpdateRequest true "Edited attributes"
// @Success 200 {array} agol.EditResult "Edit results"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Unknown project"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /projects/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	results, err := h.service.Update(c.Context(), id, req.Attributes)
	if err != nil {
		l.Error("Project update failed", zap.Int64("id", id), zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(results)
}

// HandleCreate adds a new project with its drawn geometry.
// @Summary Create a project
// @Description Create a project with attributes, a drawn polygon and optional related work areas.
// @Tags projects
// @Accept json
// @Produce json
// @Param request body projects.CreateRequest true "New project"
// @Success 201 {object} projects.CreateResponse "Assigned identifiers"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /projects [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	resp, err := h.service.Create(c.Context(), req)
	if err != nil {
		l.Error("Project creation failed", zap.Error(err))
		// A failed work-area step still created the project.
		if resp != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":  err.Error(),
				"result": resp,
			})
		}
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// errorResponse maps service error kinds onto HTTP statuses.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	switch {
	case errors.Is(err, ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case agol.IsAuthentication(err):
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
