package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/session"
	"github.com/internlog/internlog-api/internal/utils"
)

// SessionProtected resolves the bearer token to a live session, binds the
// identity to request locals and refreshes the idle timeout on mutating
// requests.
func SessionProtected(store *session.Store, logger zerolog.Logger) fiber.Handler {
	sessionLogger := logger.With().Str("component", "session_middleware").Logger()

	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		sess, err := store.Get(c.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired or invalid")
			}
			sessionLogger.Error().Err(err).Msg("failed to resolve session")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve session")
		}

		c.Locals("user_id", sess.UserID)
		c.Locals("user_role", sess.Role)
		c.Locals("session_token", token)

		if isMutating(c.Method()) {
			if err := store.Refresh(c.Context(), token); err != nil && !errors.Is(err, session.ErrNotFound) {
				sessionLogger.Warn().Err(err).Msg("failed to refresh session")
			}
		}

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authorization := c.Get("Authorization")
	const bearer = "Bearer "
	if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return ""
	}
	return strings.TrimSpace(authorization[len(bearer):])
}

func isMutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}
