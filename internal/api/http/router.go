package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/case-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UsersHandler
	Cases        *handlers.CasesHandler
	Messages     *handlers.MessagesHandler
	ThumbnailDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Welcome)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.ThumbnailDir != "" {
		app.Static("/public/thumbnails", cfg.ThumbnailDir)
	}

	users := app.Group("/users")
	users.Post("/", cfg.Users.CreateUser)
	users.Get("/", cfg.Users.ListUsers)
	users.Get("/:id", cfg.Users.GetUser)

	cases := app.Group("/cases")
	cases.Post("/", cfg.Cases.CreateCase)
	// before /:id so "user" is not parsed as a case id
	cases.Get("/user/:user_id", cfg.Cases.ListOpenCasesForUser)
	cases.Get("/:id", cfg.Cases.GetCase)
	cases.Put("/:id/close", cfg.Cases.CloseCase)
	cases.Put("/:id/reopen", cfg.Cases.ReopenCase)

	cases.Post("/:id/messages", cfg.Messages.CreateMessage)
	cases.Get("/:id/messages", cfg.Messages.ListMessages)
	cases.Post("/:id/messages/:message_id/edit", cfg.Messages.EditMessage)
	cases.Get("/:id/messages/:message_id/attachments", cfg.Messages.ListAttachments)
}
