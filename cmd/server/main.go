package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"acme-accounts/internal/adapters/http/middleware"
	"acme-accounts/internal/adapters/http/routes"
	"acme-accounts/internal/adapters/persistence/models"
	"acme-accounts/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "acme-accounts/docs" // Swagger docs
)

// @title Acme Account Service API
// @version 1.0
// @description Account management backend: signup, role-based access control, payroll and security auditing.

// @contact.name API Support
// @contact.email support@acme.com

// @BasePath /api

// @securityDefinitions.basic BasicAuth
// @description Every authenticated endpoint expects an HTTP Basic credential on each request.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Acme Account Service v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
