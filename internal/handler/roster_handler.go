package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/integrity-api/internal/middleware"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/service"
	"github.com/campushub/integrity-api/internal/utils"
	"github.com/campushub/integrity-api/pkg/roster"
)

// RosterHandler imports course rosters from uploaded CSV files.
type RosterHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewRosterHandler builds a roster handler instance.
func NewRosterHandler(service service.RosterService, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RosterHandler) Register(router fiber.Router) {
	router.Post("/:id/roster", middleware.RequireAction(models.ActionImportRoster), h.importRoster)
}

func (h *RosterHandler) importRoster(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "roster file is required")
	}

	result, err := h.service.Import(c.Context(), actorFromContext(c), courseID, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "roster imported", result)
}

func (h *RosterHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotCourseOwner):
		return utils.SendError(c, fiber.StatusForbidden, "only the course owner can import a roster")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, roster.ErrMalformedRoster):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
