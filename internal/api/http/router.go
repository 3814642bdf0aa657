package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compensation-agent/internal/api/http/handlers"
	"github.com/spec-kit/compensation-agent/internal/auth"
	"github.com/spec-kit/compensation-agent/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Webhook        *handlers.WebhookHandler
	Chat           *handlers.ChatHandler
	Tickets        *handlers.TicketsHandler
	Technicians    *handlers.TechniciansHandler
	Customers      *handlers.CustomersHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Messaging provider callbacks are unauthenticated; the verify
	// token gates subscription and payloads are deduplicated downstream.
	app.Get("/webhook", cfg.Webhook.Verify)
	app.Post("/webhook", cfg.Webhook.Receive)

	app.Post("/chat", cfg.Chat.Send)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Staff.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/overdue", cfg.Tickets.Overdue)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/review", cfg.Tickets.StartReview)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/decision", cfg.Tickets.Decide)
	tickets.Post("/:id/finance-approval", cfg.Tickets.FinanceApproval)
	tickets.Post("/:id/inventory-prepared", cfg.Tickets.InventoryPrepared)
	tickets.Post("/:id/delivery", cfg.Tickets.StartDelivery)
	tickets.Post("/:id/complete", cfg.Tickets.Complete)
	tickets.Post("/:id/cancel", cfg.Tickets.Cancel)

	technicians := api.Group("/technicians")
	technicians.Post("", cfg.Technicians.Create)
	technicians.Get("", cfg.Technicians.List)
	technicians.Get("/:id/tickets", cfg.Technicians.Tickets)
	technicians.Patch("/:id", cfg.Technicians.Update)

	customers := api.Group("/customers")
	customers.Get("/:id", cfg.Customers.Get)
	customers.Get("/:id/tickets", cfg.Customers.Tickets)
	customers.Get("/:id/messages", cfg.Chat.History)

	admin := api.Group("/staff", auth.RequireRole(domain.StaffRoleAdmin))
	admin.Post("", cfg.Staff.Register)
}
