package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/utils"
)

// AdminStudentHandler wires admin student endpoints.
type AdminStudentHandler struct {
	admin       service.AdminService
	assignments service.AssignmentService
	logger      zerolog.Logger
}

// NewAdminStudentHandler constructs the handler.
func NewAdminStudentHandler(admin service.AdminService, assignments service.AssignmentService, logger zerolog.Logger) *AdminStudentHandler {
	return &AdminStudentHandler{
		admin:       admin,
		assignments: assignments,
		logger:      logger.With().Str("component", "admin_student_handler").Logger(),
	}
}

// Register attaches student admin routes to the router group.
func (h *AdminStudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/supervisor", h.assign)
	router.Delete("/:id", h.delete)
}

func (h *AdminStudentHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	supervisorID, err := parseQueryUint(c, "supervisor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid supervisor id")
	}

	response, err := h.admin.ListStudents(c.Context(), dto.StudentListRequest{
		Search:       c.Query("search"),
		SupervisorID: supervisorID,
		Page:         page,
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", response)
}

func (h *AdminStudentHandler) assign(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AssignSupervisorRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.assignments.Assign(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrSupervisorNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "supervisor not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to assign supervisor")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to assign supervisor")
		}
	}

	return utils.SendSuccess(c, "supervisor assigned", student)
}

func (h *AdminStudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.admin.DeleteStudent(c.Context(), actorFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}
