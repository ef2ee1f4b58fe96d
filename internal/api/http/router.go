package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bplabo/license-portal/internal/api/http/handlers"
	"github.com/bplabo/license-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Accounts       *handlers.AccountsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	GeneralLimit   int
	AuthLimit      int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.RateLimiter.Limit("api", cfg.GeneralLimit))

	authGroup := api.Group("/auth")
	authLimit := cfg.RateLimiter.Limit("auth", cfg.AuthLimit)
	authGroup.Post("/register", authLimit, cfg.Auth.Register)
	authGroup.Post("/login", authLimit, cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/profile", cfg.Accounts.Profile)
	users.Put("/profile", cfg.Accounts.UpdateProfile)
	users.Put("/password", cfg.Accounts.ChangePassword)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/employees", cfg.Admin.ListEmployees)
	admin.Post("/employees", cfg.Admin.AddEmployee)
	admin.Delete("/employees/:employeeId", cfg.Admin.RemoveEmployee)
	admin.Post("/license-codes/generate", cfg.Admin.GenerateLicenses)
	admin.Get("/license-codes", cfg.Admin.ListLicenses)
	admin.Get("/users", cfg.Admin.ListAccounts)
	admin.Put("/users/:id/role", cfg.Admin.UpdateRole)
	admin.Put("/users/:id/status", cfg.Admin.UpdateStatus)
	admin.Delete("/users/:id", cfg.Admin.DeleteAccount)
	admin.Get("/stats", cfg.Admin.Stats)
}
