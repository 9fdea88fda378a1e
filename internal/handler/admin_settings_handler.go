package handler

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/utils"
)

// AdminSettingsHandler serves maintenance operations.
type AdminSettingsHandler struct {
	backups service.BackupService
	logger  zerolog.Logger
}

// NewAdminSettingsHandler constructs the handler.
func NewAdminSettingsHandler(backups service.BackupService, logger zerolog.Logger) *AdminSettingsHandler {
	return &AdminSettingsHandler{
		backups: backups,
		logger:  logger.With().Str("component", "admin_settings_handler").Logger(),
	}
}

// Register attaches settings routes to the router group.
func (h *AdminSettingsHandler) Register(router fiber.Router) {
	router.Get("/backup", h.backup)
}

func (h *AdminSettingsHandler) backup(c *fiber.Ctx) error {
	file, err := h.backups.Create(c.Context(), actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrBackupUnsupported) {
			return utils.SendError(c, fiber.StatusBadRequest, "backup is only supported for sqlite databases")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create backup")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create backup")
	}

	return c.Download(file, filepath.Base(file))
}
