package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/amitgupta-exe/microlearn-backend/internal/handlers"
	"github.com/amitgupta-exe/microlearn-backend/internal/middleware"
	"github.com/amitgupta-exe/microlearn-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, whatsappService *services.WhatsAppService) {
	whatsappHandler := handlers.NewWhatsAppHandler(whatsappService)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// WhatsApp webhook - signature validation is environment-aware so ngrok
	// tunnels keep working during development
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)
		if os.Getenv("ENVIRONMENT") == "development" {
			println("⚠️  WhatsApp webhook validation DISABLED for development")
		}
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsappHandler.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	app.Post("/test/whatsapp", whatsappHandler.HandleTestWebhook)
}
