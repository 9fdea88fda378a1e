package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/utils"
)

// AdminSupervisorHandler wires admin supervisor endpoints.
type AdminSupervisorHandler struct {
	admin  service.AdminService
	logger zerolog.Logger
}

// NewAdminSupervisorHandler constructs the handler.
func NewAdminSupervisorHandler(admin service.AdminService, logger zerolog.Logger) *AdminSupervisorHandler {
	return &AdminSupervisorHandler{
		admin:  admin,
		logger: logger.With().Str("component", "admin_supervisor_handler").Logger(),
	}
}

// Register attaches supervisor admin routes to the router group.
func (h *AdminSupervisorHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Delete("/:id", h.delete)
}

func (h *AdminSupervisorHandler) list(c *fiber.Ctx) error {
	supervisors, err := h.admin.ListSupervisors(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list supervisors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list supervisors")
	}

	return utils.SendSuccess(c, "supervisors retrieved", supervisors)
}

func (h *AdminSupervisorHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateSupervisorRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	supervisor, err := h.admin.CreateSupervisor(c.Context(), actorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			return utils.SendError(c, fiber.StatusConflict, "username already taken")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create supervisor")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create supervisor")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "supervisor created", supervisor)
}

func (h *AdminSupervisorHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.admin.DeleteSupervisor(c.Context(), actorFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrSupervisorNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "supervisor not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete supervisor")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete supervisor")
	}

	return utils.SendSuccess(c, "supervisor deleted", fiber.Map{"id": id})
}
