package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/integrity-api/internal/middleware"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/service"
	"github.com/campushub/integrity-api/internal/utils"
)

// LifecycleHandler serves per-assignment submission status breakdowns.
type LifecycleHandler struct {
	service service.LifecycleService
	logger  zerolog.Logger
}

// NewLifecycleHandler builds a lifecycle handler instance.
func NewLifecycleHandler(service service.LifecycleService, logger zerolog.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		service: service,
		logger:  logger.With().Str("component", "lifecycle_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *LifecycleHandler) Register(router fiber.Router) {
	router.Get("/:id/status", middleware.RequireAction(models.ActionViewLifecycle), h.status)
}

// status classifies every registered student as submitted, pending, or missed.
// An optional "at" query (RFC 3339) evaluates the breakdown as of that moment
// instead of now.
func (h *LifecycleHandler) status(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	var reference *time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "at must be an RFC 3339 timestamp")
		}
		reference = &parsed
	}

	status, err := h.service.Status(c.Context(), assignmentID, reference)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment status retrieved", status)
}

func (h *LifecycleHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
