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

// SubmissionHandler manages the upload and listing endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router, uploadLimiter fiber.Handler) {
	router.Get("/", middleware.RequireAction(models.ActionViewReports), h.list)

	uploadChain := []fiber.Handler{middleware.RequireAction(models.ActionSubmitWork)}
	if uploadLimiter != nil {
		uploadChain = append(uploadChain, uploadLimiter)
	}
	uploadChain = append(uploadChain, h.upload)
	router.Post("/", uploadChain...)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{}
	assignmentID, err := parseQueryUint(c, "assignment_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.AssignmentID = assignmentID

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.StudentID = studentID

	flagged, err := parseQueryBool(c, "flagged")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.Flagged = flagged

	submissions, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

// upload accepts {assignment id, caller identity, document payload} and
// returns the plagiarism score together with the matched peer, if any.
func (h *SubmissionHandler) upload(c *fiber.Ctx) error {
	assignmentID, err := parseFormUint(c, "assignment_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := middleware.UserIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "caller identity missing")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	payload := dto.UploadRequest{
		AssignmentID: assignmentID,
		StudentID:    studentID,
	}

	result, err := h.service.Upload(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission checked", result)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var parseErr *extractor.ParseError
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrFileTypeNotAllowed),
		errors.Is(err, service.ErrPastDeadline):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &parseErr):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "document could not be read")
	case errors.Is(err, embedding.ErrModelUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "similarity model unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
