package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/middleware"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/service"
	"github.com/campushub/integrity-api/internal/utils"
)

// AssignmentHandler manages assignment creation and listing.
type AssignmentHandler struct {
	service   service.AssignmentService
	lifecycle *LifecycleHandler
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(service service.AssignmentService, lifecycle *LifecycleHandler, validator *validator.Validate, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		lifecycle: lifecycle,
		validator: validator,
		logger:    logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", middleware.RequireAction(models.ActionCreateAssignment), h.create)
	h.lifecycle.Register(router)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	var filter dto.AssignmentFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	assignments, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var timeErr *time.ParseError
	switch {
	case errors.As(err, &timeErr):
		return utils.SendError(c, fiber.StatusBadRequest, "deadline must be an RFC 3339 timestamp")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "only the course owner can create assignments")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
