package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/internlog/internlog-api/internal/config"
	"github.com/internlog/internlog-api/internal/handler"
	"github.com/internlog/internlog-api/internal/middleware"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler             *handler.AuthHandler
	LogHandler              *handler.LogHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	SupervisorHandler       *handler.SupervisorHandler
	AdminDashboardHandler   *handler.AdminDashboardHandler
	AdminStudentHandler     *handler.AdminStudentHandler
	AdminSupervisorHandler  *handler.AdminSupervisorHandler
	AdminLogHandler         *handler.AdminLogHandler
	AdminSettingsHandler    *handler.AdminSettingsHandler
	SessionMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided session middleware, or a no-op if nil
	sessionMiddleware := deps.SessionMiddleware
	if sessionMiddleware == nil {
		sessionMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.RegisterPublic(auth)

		authProtected := api.Group("/auth", sessionMiddleware)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	if deps.LogHandler != nil {
		logs := api.Group("/logs", sessionMiddleware, middleware.RequireRole(models.RoleStudent))
		deps.LogHandler.Register(logs)
	}

	if deps.StudentDashboardHandler != nil {
		student := api.Group("/student", sessionMiddleware, middleware.RequireRole(models.RoleStudent))
		deps.StudentDashboardHandler.Register(student)
	}

	if deps.SupervisorHandler != nil {
		supervisor := api.Group("/supervisor", sessionMiddleware, middleware.RequireRole(models.RoleSupervisor))
		deps.SupervisorHandler.Register(supervisor)
	}

	admin := api.Group("/admin", sessionMiddleware, middleware.RequireRole(models.RoleAdmin))

	if deps.AdminDashboardHandler != nil {
		deps.AdminDashboardHandler.Register(admin)
	}

	if deps.AdminStudentHandler != nil {
		students := admin.Group("/students")
		deps.AdminStudentHandler.Register(students)
	}

	if deps.AdminSupervisorHandler != nil {
		supervisors := admin.Group("/supervisors")
		deps.AdminSupervisorHandler.Register(supervisors)
	}

	if deps.AdminLogHandler != nil {
		logs := admin.Group("/logs")
		deps.AdminLogHandler.Register(logs)
	}

	if deps.AdminSettingsHandler != nil {
		settings := admin.Group("/settings")
		deps.AdminSettingsHandler.Register(settings)
	}
}
