package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/utils"
)

// AdminLogHandler wires the admin log listing and bulk action endpoints.
type AdminLogHandler struct {
	admin  service.AdminService
	logger zerolog.Logger
}

// NewAdminLogHandler constructs the handler.
func NewAdminLogHandler(admin service.AdminService, logger zerolog.Logger) *AdminLogHandler {
	return &AdminLogHandler{
		admin:  admin,
		logger: logger.With().Str("component", "admin_log_handler").Logger(),
	}
}

// Register attaches log admin routes to the router group.
func (h *AdminLogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/action", h.bulkAction)
}

func (h *AdminLogHandler) list(c *fiber.Ctx) error {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.admin.ListLogs(c.Context(), filter)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list logs")
	}

	return utils.SendSuccess(c, "logs retrieved", response)
}

func (h *AdminLogHandler) bulkAction(c *fiber.Ctx) error {
	var payload dto.BulkLogActionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.admin.BulkLogAction(c.Context(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to apply bulk log action")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to apply bulk log action")
	}

	return utils.SendSuccess(c, "bulk action applied", result)
}
