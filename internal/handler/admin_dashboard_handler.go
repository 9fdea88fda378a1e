package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/utils"
)

// AdminDashboardHandler serves the admin summary view and the audit trail.
type AdminDashboardHandler struct {
	dashboards service.DashboardService
	activity   service.ActivityService
	logger     zerolog.Logger
}

// NewAdminDashboardHandler constructs the handler.
func NewAdminDashboardHandler(dashboards service.DashboardService, activity service.ActivityService, logger zerolog.Logger) *AdminDashboardHandler {
	return &AdminDashboardHandler{
		dashboards: dashboards,
		activity:   activity,
		logger:     logger.With().Str("component", "admin_dashboard_handler").Logger(),
	}
}

// Register attaches dashboard admin routes to the router group.
func (h *AdminDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/activity", h.activityList)
}

func (h *AdminDashboardHandler) dashboard(c *fiber.Ctx) error {
	response, err := h.dashboards.Admin(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build admin dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build dashboard")
	}

	return utils.SendSuccess(c, "dashboard retrieved", response)
}

func (h *AdminDashboardHandler) activityList(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	response, err := h.activity.List(c.Context(), dto.ActivityListRequest{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Page:       page,
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity")
	}

	return utils.SendSuccess(c, "activity retrieved", response)
}
