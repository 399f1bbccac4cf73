package domains

import (
	"project-manager/core/agol"
	"project-manager/core/logger"
	"project-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for domain curation.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, l *zap.Logger) *Handler {
	return &Handler{service: service, logger: l}
}

// RegisterRoutes registers the domains routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/domains")
	group.Get("/fields", h.HandleListFields)
	group.Get("/:field", h.HandleGetOptions)
	group.Put("/:field", h.HandleReconcile)
	group.Post("/:field/import", h.HandleImportCSV)
}

// FieldsResponse lists the known fields and their configurations.
type FieldsResponse struct {
	Fields  []string                         `json:"fields"`
	Configs map[string]reconcile.FieldConfig `json:"configs"`
}

// ReconcileRequest is the edited table submitted for one field.
type ReconcileRequest struct {
	Values []reconcile.DomainValue `json:"values"`
	Config *reconcile.FieldConfig  `json:"config,omitempty"`
	DryRun bool                    `json:"dry_run"`
}

// HandleListFields returns the distinct field names and field configs.
// @Summary List domain fields
// @Description List all fields that carry domain values, with their configurations.
// @Tags domains
// @Produce json
// @Success 200 {object} domains.FieldsResponse "Fields"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /domains/fields [get]
func (h *Handler) HandleListFields(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	fields, configs, err := h.service.Fields(c.Context())
	if err != nil {
		l.Error("Listing domain fields failed", zap.Error(err))
		return serviceErrorResponse(c, err)
	}

	return c.JSON(FieldsResponse{Fields: fields, Configs: configs})
}

// HandleGetOptions returns the domain values for one field.
// @Summary Get domain values
// @Description Get the domain values for one field. Pass active=true to restrict to offered options.
// @Tags domains
// @Produce json
// @Param field path string true "Field name"
// @Param active query bool false "Only active options"
// @Success 200 {array} reconcile.DomainValue "Values"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /domains/{field} [get]
func (h *Handler) HandleGetOptions(c *fiber.Ctx) error {
	fieldName := c.Params("field")
	activeOnly := c.QueryBool("active", false)
	l := logger.WithRayID(h.logger, c)

	values, err := h.service.Options(c.Context(), fieldName, activeOnly)
	if err != nil {
		l.Error("Domain option lookup failed", zap.String("field", fieldName), zap.Error(err))
		return serviceErrorResponse(c, err)
	}

	return c.JSON(values)
}

// HandleReconcile reconciles an edited domain table for one field.
// @Summary Reconcile domain values
// @Description Diff the submitted table against the remote records and apply adds, updates and deletes.
// @Tags domains
// @Accept json
// @Produce json
// @Param field path string true "Field name"
// @Param request body domains.ReconcileRequest true "Edited table"
// @Success 200 {object} reconcile.Result "Plan and apply state"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /domains/{field} [put]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	fieldName := c.Params("field")
	l := logger.WithRayID(h.logger, c)

	var req ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}
	if req.Config != nil {
		if req.Config.InputType == "" {
			req.Config.InputType = reconcile.InputText
		}
		if !req.Config.InputType.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown input type: " + string(req.Config.InputType),
			})
		}
	}

	// Rows are reconciled for the path field regardless of the body content.
	for i := range req.Values {
		req.Values[i].FieldName = fieldName
	}
	if req.Config != nil {
		req.Config.FieldName = fieldName
	}

	result, err := h.service.Reconcile(c.Context(), fieldName, req.Values, req.Config, reconcile.Options{
		DryRun:    req.DryRun,
		Confirmed: !req.DryRun,
	})
	if err != nil {
		l.Error("Domain reconciliation failed", zap.String("field", fieldName), zap.Error(err))
		return reconcileErrorResponse(c, result, err)
	}

	return c.JSON(result)
}

// HandleImportCSV reconciles a CSV upload as the edited table for one field.
// @Summary Import domain values from CSV
// @Description Replace the domain values of one field with the rows of an uploaded CSV file.
// @Tags domains
// @Accept mpfd
// @Produce json
// @Param field path string true "Field name"
// @Param file formData file true "CSV file with a value,label,active,email header"
// @Param dry_run query bool false "Plan only, apply nothing"
// @Success 200 {object} reconcile.Result "Plan and apply state"
// @Failure 400 {object} map[string]string "Invalid upload"
// @Failure 502 {object} map[string]string "Service failure"
// @Router /domains/{field}/import [post]
func (h *Handler) HandleImportCSV(c *fiber.Ctx) error {
	fieldName := c.Params("field")
	dryRun := c.QueryBool("dry_run", false)
	l := logger.WithRayID(h.logger, c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing 'file' upload: " + err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cannot open upload: " + err.Error(),
		})
	}
	defer file.Close()

	values, err := ParseCSV(file, fieldName)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.service.Reconcile(c.Context(), fieldName, values, nil, reconcile.Options{
		DryRun:    dryRun,
		Confirmed: !dryRun,
	})
	if err != nil {
		l.Error("CSV domain import failed", zap.String("field", fieldName), zap.Error(err))
		return reconcileErrorResponse(c, result, err)
	}

	return c.JSON(result)
}

// serviceErrorResponse maps client error kinds onto HTTP statuses.
func serviceErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	if agol.IsAuthentication(err) {
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// reconcileErrorResponse keeps the partially-applied plan in the payload so
// the caller can see which steps committed before the failure.
func reconcileErrorResponse(c *fiber.Ctx, result *reconcile.Result, err error) error {
	payload := fiber.Map{"error": err.Error()}
	if result != nil {
		payload["result"] = result
	}
	status := fiber.StatusBadGateway
	if agol.IsAuthentication(err) {
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(payload)
}
