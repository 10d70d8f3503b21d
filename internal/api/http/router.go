package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gestion-soporte/mesa-ayuda/internal/api/http/handlers"
	"github.com/gestion-soporte/mesa-ayuda/internal/auth"
	"github.com/gestion-soporte/mesa-ayuda/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Aprobaciones   *handlers.AprobacionesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/all", cfg.Tickets.ListAll)
	tickets.Get("/estadisticas", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Post("/:id/estado", cfg.Tickets.ChangeState)
	tickets.Post("/:id/asignar", cfg.Tickets.Assign)
	tickets.Post("/:id/reasignar", cfg.Tickets.Reassign)
	tickets.Get("/:id/historial", cfg.Tickets.History)

	supervisores := app.Group("/supervisores",
		cfg.AuthMiddleware.Handle,
		auth.RequireRol(domain.RolSupervisor, domain.RolAdmin))
	supervisores.Get("/:id/historial", cfg.Aprobaciones.Historial)
	supervisores.Get("/:id/estadisticas", cfg.Aprobaciones.Estadisticas)

	aprobacion := app.Group("/tickets/:id",
		cfg.AuthMiddleware.Handle,
		auth.RequireRol(domain.RolSupervisor, domain.RolAdmin))
	aprobacion.Post("/aprobar", cfg.Aprobaciones.Approve)
	aprobacion.Post("/rechazar", cfg.Aprobaciones.Reject)
}
