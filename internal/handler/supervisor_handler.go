package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/utils"
)

// SupervisorHandler wires the supervisor review endpoints.
type SupervisorHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewSupervisorHandler constructs the handler.
func NewSupervisorHandler(service service.ReviewService, logger zerolog.Logger) *SupervisorHandler {
	return &SupervisorHandler{
		service: service,
		logger:  logger.With().Str("component", "supervisor_handler").Logger(),
	}
}

// Register attaches supervisor routes to the router group.
func (h *SupervisorHandler) Register(router fiber.Router) {
	router.Get("/students", h.students)
	router.Get("/logs", h.logs)
	router.Patch("/logs/:id/status", h.setStatus)
	router.Patch("/logs/:id/feedback", h.setFeedback)
}

func (h *SupervisorHandler) students(c *fiber.Ctx) error {
	students, err := h.service.Students(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list assigned students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assigned students")
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *SupervisorHandler) logs(c *fiber.Ctx) error {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.Logs(c.Context(), userIDFromContext(c), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list logs")
	}

	return utils.SendSuccess(c, "logs retrieved", response)
}

func (h *SupervisorHandler) setStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ReviewDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.SetStatus(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.reviewError(c, err, "failed to update log status")
	}

	return utils.SendSuccess(c, "log status updated", entry)
}

func (h *SupervisorHandler) setFeedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.SetFeedback(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.reviewError(c, err, "failed to record feedback")
	}

	return utils.SendSuccess(c, "feedback recorded", entry)
}

func (h *SupervisorHandler) reviewError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrLogNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "log not found")
	case errors.Is(err, service.ErrNotAssigned):
		return utils.SendError(c, fiber.StatusForbidden, "student not assigned to caller")
	case errors.Is(err, service.ErrEmptyFeedback), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
