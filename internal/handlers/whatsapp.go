package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
	"github.com/amitgupta-exe/microlearn-backend/internal/services"
)

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	whatsappService *services.WhatsAppService
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(whatsappService *services.WhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{whatsappService: whatsappService}
}

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid    string `form:"MessageSid"`
	AccountSid    string `form:"AccountSid"`
	From          string `form:"From"` // WhatsApp number (whatsapp:+919876543210)
	To            string `form:"To"`
	Body          string `form:"Body"`
	ButtonText    string `form:"ButtonText"`    // quick-reply button title
	ButtonPayload string `form:"ButtonPayload"` // quick-reply button id
	NumMedia      string `form:"NumMedia"`
}

// HandleWebhook processes incoming WhatsApp messages and button replies
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload

	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	log.Printf("📱 WhatsApp message from %s: %s", payload.From, payload.Body)

	// Process only incoming messages, not status callbacks
	if payload.From == "" || (payload.Body == "" && payload.ButtonText == "" && payload.ButtonPayload == "") {
		return c.SendStatus(fiber.StatusOK)
	}

	from := strings.TrimPrefix(payload.From, "whatsapp:")

	// a button reply carries its title in ButtonText; fall back to Body
	text := payload.Body
	if payload.ButtonText != "" {
		text = payload.ButtonText
	}

	err := h.whatsappService.ProcessEvent(services.InboundEvent{
		PhoneNumber: from,
		Text:        text,
		ButtonID:    payload.ButtonPayload,
	})
	if err != nil && !errors.Is(err, models.ErrInvalidPhoneNumber) {
		log.Printf("❌ Error processing event from %s: %v", from, err)
	}

	// Twilio only needs the receipt acknowledged; failures are handled
	// per turn and the learner already got an apology where one applies
	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload is the JSON shape for development testing without Twilio
type TestWebhookPayload struct {
	From     string `json:"from"`
	Message  string `json:"message"`
	ButtonID string `json:"button_id"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload

	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test webhook received from %s: %s", payload.From, payload.Message)

	err := h.whatsappService.ProcessEvent(services.InboundEvent{
		PhoneNumber: payload.From,
		Text:        payload.Message,
		ButtonID:    payload.ButtonID,
	})
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}
