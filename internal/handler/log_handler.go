package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/utils"
)

// LogHandler wires the student-facing log lifecycle endpoints.
type LogHandler struct {
	service service.LogService
	logger  zerolog.Logger
}

// NewLogHandler constructs the handler.
func NewLogHandler(service service.LogService, logger zerolog.Logger) *LogHandler {
	return &LogHandler{
		service: service,
		logger:  logger.With().Str("component", "log_handler").Logger(),
	}
}

// Register attaches log routes to the router group.
func (h *LogHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.list)
	router.Put("/:id", h.edit)
	router.Delete("/:id", h.delete)
}

func (h *LogHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitLogRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.Submit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrEmptyActivity), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to submit log")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit log")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "log submitted", entry)
}

func (h *LogHandler) list(c *fiber.Ctx) error {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.ListForStudent(c.Context(), userIDFromContext(c), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list logs")
	}

	return utils.SendSuccess(c, "logs retrieved", response)
}

func (h *LogHandler) edit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.EditLogRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.Edit(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLogNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "log not found")
		case errors.Is(err, service.ErrNotOwner):
			return utils.SendError(c, fiber.StatusForbidden, "log not owned by caller")
		case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrEmptyActivity), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to edit log")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to edit log")
		}
	}

	return utils.SendSuccess(c, "log updated", entry)
}

func (h *LogHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), userIDFromContext(c), id); err != nil {
		switch {
		case errors.Is(err, service.ErrLogNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "log not found")
		case errors.Is(err, service.ErrNotOwner):
			return utils.SendError(c, fiber.StatusForbidden, "log not owned by caller")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete log")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete log")
		}
	}

	return utils.SendSuccess(c, "log deleted", fiber.Map{"id": id})
}

// logFilterFromQuery extracts shared listing filters from the query
// string.
func logFilterFromQuery(c *fiber.Ctx) (dto.LogFilter, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.LogFilter{}, err
	}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return dto.LogFilter{}, err
	}

	return dto.LogFilter{
		Status:    c.Query("status"),
		StudentID: studentID,
		From:      c.Query("from"),
		To:        c.Query("to"),
		Page:      page,
	}, nil
}
