package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/middleware"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/service"
	"github.com/campushub/integrity-api/internal/utils"
	"github.com/campushub/integrity-api/pkg/embedding"
	"github.com/campushub/integrity-api/pkg/extractor"
)

// ReportHandler serves on-demand similarity reports.
type ReportHandler struct {
	service   service.ComparisonService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewReportHandler builds a report handler instance.
func NewReportHandler(service service.ComparisonService, validator *validator.Validate, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/similarity", middleware.RequireAction(models.ActionViewReports), h.similarity)
}

func (h *ReportHandler) similarity(c *fiber.Ctx) error {
	var request dto.ReportRequest
	if err := c.QueryParser(&request); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	if err := h.validator.Struct(request); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.Report(c.Context(), request)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "similarity report generated", report)
}

func (h *ReportHandler) handleError(c *fiber.Ctx, err error) error {
	var parseErr *extractor.ParseError
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "no submission found for this student and assignment")
	case errors.As(err, &parseErr):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "submission document could not be read")
	case errors.Is(err, embedding.ErrModelUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "similarity model unavailable")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
