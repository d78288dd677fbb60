package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/callcenter-service/internal/api/http/handlers"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Customers      *handlers.CustomersHandler
	Calls          *handlers.CallsHandler
	Complaints     *handlers.ComplaintsHandler
	Dashboard      *handlers.DashboardHandler
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

	protect := cfg.AuthMiddleware.Handle

	authGroup := app.Group("/auth")
	authGroup.Post("/customers/register", cfg.Auth.RegisterCustomer)
	authGroup.Post("/customers/login", cfg.Auth.LoginCustomer)
	authGroup.Post("/staff/login", cfg.Auth.LoginStaff)
	authGroup.Post("/customers/password", protect, auth.RequireCustomer(), cfg.Auth.ChangePassword)

	app.Get("/lookups", protect, auth.RequireAnyRole(), cfg.Dashboard.Lookups)

	staffOnly := auth.RequireStaff()
	app.Get("/customers/resolve", protect, staffOnly, cfg.Customers.Resolve)
	app.Post("/customers", protect, staffOnly, cfg.Customers.Create)
	app.Post("/calls/sessions", protect, staffOnly, cfg.Calls.StartSession)
	app.Post("/calls/sessions/:id/end", protect, staffOnly, cfg.Calls.EndSession)
	app.Get("/staff/complaints", protect, staffOnly, cfg.Complaints.ListAssigned)
	app.Get("/staff/dashboard", protect, staffOnly, cfg.Dashboard.StaffDashboard)
	app.Get("/complaints/:id", protect, staffOnly, cfg.Complaints.Get)
	app.Get("/complaints/:id/actions", protect, staffOnly, cfg.Complaints.Actions)
	app.Post("/complaints/:id/close", protect, staffOnly, cfg.Complaints.Close)

	customerOnly := auth.RequireCustomer()
	app.Get("/customers/me", protect, customerOnly, cfg.Customers.Me)
	app.Get("/me/complaints", protect, customerOnly, cfg.Complaints.ListMine)
	app.Post("/me/complaints", protect, customerOnly, cfg.Complaints.CreateMine)
	app.Get("/me/complaints/:id", protect, customerOnly, cfg.Complaints.GetMine)
	app.Post("/me/complaints/:id/survey", protect, customerOnly, cfg.Complaints.SubmitSurvey)
}
