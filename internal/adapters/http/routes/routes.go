package routes

import (
	"acme-accounts/internal/adapters/http/handlers"
	"acme-accounts/internal/adapters/http/middleware"
	"acme-accounts/internal/adapters/persistence/repositories"
	"acme-accounts/internal/config"
	"acme-accounts/internal/core/domain"
	"acme-accounts/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Deps bundles the repositories the HTTP layer is wired on
type Deps struct {
	Users    repositories.UserRepository
	Events   repositories.SecurityEventRepository
	Payrolls repositories.PayrollRepository
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	SetupWithDeps(app, Deps{
		Users:    repositories.NewUserRepository(db),
		Events:   repositories.NewSecurityEventRepository(db),
		Payrolls: repositories.NewPayrollRepository(db),
	})
}

// SetupWithDeps wires services, handlers and routes on the given repositories
func SetupWithDeps(app *fiber.App, deps Deps) {
	// Initialize services. The brute-force guard is process-wide state,
	// created here and injected into the auth pipeline.
	eventService := services.NewSecurityEventService(deps.Events)
	userService := services.NewUserService(deps.Users, eventService)
	guard := services.NewBruteForceGuard()
	authService := services.NewAuthService(deps.Users, userService, eventService, guard)
	payrollService := services.NewPayrollService(deps.Payrolls, deps.Users)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(userService)
	adminHandler := handlers.NewAdminHandler(userService)
	payrollHandler := handlers.NewPayrollHandler(payrollService)
	securityHandler := handlers.NewSecurityHandler(eventService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api", middleware.NoCacheHeaders())

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.SignupRateLimiter(), authHandler.Signup)
	auth.Post("/changepass", middleware.BasicAuth(authService), authHandler.ChangePassword)

	// Employee routes (USER or ACCOUNTANT)
	empl := api.Group("/empl", middleware.BasicAuth(authService))
	empl.Get("/payment",
		middleware.RequireRoles(eventService, domain.RoleUser, domain.RoleAccountant),
		payrollHandler.GetPayment)

	// Accountant routes
	acct := api.Group("/acct",
		middleware.BasicAuth(authService),
		middleware.RequireRoles(eventService, domain.RoleAccountant))
	acct.Post("/payments", payrollHandler.UploadPayrolls)
	acct.Put("/payments", payrollHandler.UpdateSalary)

	// Administrator routes
	admin := api.Group("/admin",
		middleware.BasicAuth(authService),
		middleware.RequireRoles(eventService, domain.RoleAdministrator))
	admin.Get("/user/", adminHandler.ListUsers)
	admin.Put("/user/role", adminHandler.SetRole)
	admin.Put("/user/access", adminHandler.ChangeAccess)
	admin.Delete("/user/:email", adminHandler.DeleteUser)

	// Auditor routes
	security := api.Group("/security",
		middleware.BasicAuth(authService),
		middleware.RequireRoles(eventService, domain.RoleAuditor))
	security.Get("/events/", securityHandler.ListEvents)
}
