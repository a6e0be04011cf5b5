package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Staff          *handlers.StaffHandler
	Notifications  *handlers.NotificationsHandler
	FAQs           *handlers.FAQHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/register", cfg.Users.Register)
	app.Post("/auth/login", cfg.Users.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	api.Get("/auth/me", cfg.Users.Me)

	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Patch("/tickets/:id", cfg.Tickets.EditTicket)
	api.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	api.Get("/tickets/:id/history", cfg.Tickets.ListHistory)
	api.Post("/tickets/:id/attachments", cfg.Tickets.AddAttachment)
	api.Delete("/tickets/:id/attachments/:attachmentId", cfg.Tickets.RemoveAttachment)

	api.Get("/notifications", cfg.Notifications.List)
	api.Post("/notifications/read-all", cfg.Notifications.MarkAllRead)
	api.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	api.Get("/faqs", cfg.FAQs.List)

	staff := api.Group("/staff", auth.RequireStaff())
	staff.Patch("/tickets/:id", cfg.StaffTickets.UpdateTicket)
	staff.Post("/tickets/:id/close", cfg.StaffTickets.CloseTicket)

	staff.Get("/priorities", cfg.Staff.ListPriorities)
	staff.Post("/priorities", cfg.Staff.CreatePriority)
	staff.Put("/priorities/:id", cfg.Staff.UpdatePriority)
	staff.Delete("/priorities/:id", cfg.Staff.DeletePriority)

	staff.Get("/sla-rules", cfg.Staff.ListRules)
	staff.Post("/sla-rules", cfg.Staff.CreateRule)
	staff.Delete("/sla-rules/:id", cfg.Staff.DeleteRule)

	staff.Get("/areas", cfg.Staff.ListAreas)
	staff.Post("/areas", cfg.Staff.CreateArea)
	staff.Delete("/areas/:id", cfg.Staff.DeleteArea)

	staff.Post("/faqs", cfg.FAQs.Create)
	staff.Put("/faqs/:id", cfg.FAQs.Update)
	staff.Delete("/faqs/:id", cfg.FAQs.Delete)

	staff.Get("/reports/summary", cfg.Staff.ReportSummary)
	staff.Get("/users/:id/profile", cfg.Staff.GetProfile)
	staff.Patch("/users/:id/profile", cfg.Staff.UpdateProfile)
}
