package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/case-workflow/internal/api/http/handlers"
	"github.com/spec-kit/case-workflow/internal/auth"
	"github.com/spec-kit/case-workflow/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Cases          *handlers.CasesHandler
	SLA            *handlers.SLAHandler
	Pools          *handlers.PoolsHandler
	Metrics        nethttp.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Supervisors pass every role guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}

	cases := app.Group("/cases", authenticated...)
	cases.Post("/", auth.RequireRole(domain.RoleAgent), cfg.Cases.CreateCase)
	cases.Get("/:id", cfg.Cases.GetCase)
	cases.Get("/:id/closure-check", cfg.Cases.ClosureCheck)
	cases.Post("/:id/escalate", auth.RequireRole(domain.RoleAgent), cfg.Cases.Escalate)
	cases.Post("/:id/derive", auth.RequireRole(domain.RoleBackOffice), cfg.Cases.Derive)
	cases.Post("/:id/external-response", auth.RequireRole(domain.RoleBackOffice), cfg.Cases.RegisterExternalResponse)
	cases.Post("/:id/close", cfg.Cases.Close)
	cases.Put("/:id/documentation", cfg.Cases.Document)
	cases.Post("/:id/replies", cfg.Cases.AddManualResponse)

	supervisor := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSupervisor)}

	app.Group("/sla", supervisor...).Get("/compliance", cfg.SLA.Compliance)

	pools := app.Group("/pools", supervisor...)
	pools.Get("/:id/handlers", cfg.Pools.ListMembers)
	pools.Get("/:id/candidate", cfg.Pools.Candidate)
}
