package services

import (
	"log"
	"strings"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
	"github.com/amitgupta-exe/microlearn-backend/internal/storage"
	"github.com/amitgupta-exe/microlearn-backend/internal/utils"
)

// ActivationKeyword wakes the bot and begins the opt-in dialogue
const ActivationKeyword = "microlearn"

// InboundEvent is the normalized triple the core consumes. Raw payload
// parsing belongs to the transport handler.
type InboundEvent struct {
	PhoneNumber string // raw, any formatting
	Text        string // free-form reply or button title
	ButtonID    string // structured button identifier, may be empty
}

// eventKind tags every inbound event with exactly one handler
type eventKind int

const (
	eventUnknown eventKind = iota
	eventActivate
	eventDecline
	eventBegin
	eventRegistrationInput
	eventStartLearning
	eventDone
)

// WhatsAppService routes inbound events to the registration flow or the
// delivery engine based on event shape and session state.
type WhatsAppService struct {
	store        storage.Store
	sender       MessageSender
	sessions     SessionStore
	registration *RegistrationFlow
	delivery     *DeliveryEngine
}

// NewWhatsAppService creates the webhook dispatcher
func NewWhatsAppService(store storage.Store, sender MessageSender, sessions SessionStore, registration *RegistrationFlow, delivery *DeliveryEngine) *WhatsAppService {
	return &WhatsAppService{
		store:        store,
		sender:       sender,
		sessions:     sessions,
		registration: registration,
		delivery:     delivery,
	}
}

// ProcessEvent handles one inbound message or button click to completion.
// Events with an unusable phone number are dropped without an outbound
// message, since there is no reliable destination to apologize to.
func (w *WhatsAppService) ProcessEvent(event InboundEvent) error {
	phone, err := utils.NormalizePhoneNumber(event.PhoneNumber)
	if err != nil {
		log.Printf("⚠️ Dropping event with invalid phone number %q: %v", event.PhoneNumber, err)
		return models.ErrInvalidPhoneNumber
	}

	// lowercase for comparison only; registration answers are stored verbatim
	rawText := strings.TrimSpace(event.Text)
	text := strings.ToLower(rawText)
	buttonID := strings.ToLower(strings.TrimSpace(event.ButtonID))

	session, hasSession := w.sessions.Get(phone)
	if !hasSession {
		session = nil
	}

	kind := classifyEvent(session, text, buttonID)
	log.Printf("📱 Event from %s: text=%q button=%q kind=%d", phone, text, buttonID, kind)

	switch kind {
	case eventActivate:
		return w.handleActivate(phone)
	case eventDecline:
		return w.handleDecline(phone)
	case eventBegin:
		return w.handleBegin(phone)
	case eventRegistrationInput:
		return w.registration.HandleTurn(phone, rawText)
	case eventStartLearning:
		return w.delivery.StartLearning(phone)
	case eventDone:
		return w.delivery.AcknowledgeModule(phone)
	default:
		log.Printf("No specific action for %s (text=%q button=%q)", phone, text, buttonID)
		return nil
	}
}

// classifyEvent maps (session state, text, button) onto one event kind.
// Button identifiers win over free text when both are present.
func classifyEvent(session *Session, text, buttonID string) eventKind {
	awaitingBegin := session != nil && session.State == StateAwaitingBegin
	inRegistration := session != nil && session.State == StateRegistration

	switch {
	case text == ActivationKeyword && !inRegistration:
		return eventActivate
	case awaitingBegin && (buttonID == "maybe_next_time" || text == "maybe next time"):
		return eventDecline
	case awaitingBegin && (buttonID == "yes" || text == "yes"):
		return eventBegin
	case inRegistration:
		return eventRegistrationInput
	case buttonID == "start_learning" || text == "start learning":
		return eventStartLearning
	case buttonID == "continue_day" || strings.HasPrefix(text, "continue day"):
		return eventStartLearning
	case buttonID == "done" || text == "done":
		return eventDone
	default:
		return eventUnknown
	}
}

func (w *WhatsAppService) handleActivate(phone string) error {
	// destroy any existing dialogue and start fresh
	w.sessions.Delete(phone)
	w.sessions.Set(phone, &Session{State: StateAwaitingBegin})

	return w.sender.SendButtons(phone, "Can we begin?", "Choose an option", []Button{
		{Title: "Yes", ID: "yes"},
		{Title: "Maybe next time", ID: "maybe_next_time"},
	})
}

func (w *WhatsAppService) handleDecline(phone string) error {
	w.sessions.Delete(phone)
	return w.sender.SendText(phone, "No worries I am always here, awake me with the mantra microlearn!!")
}

func (w *WhatsAppService) handleBegin(phone string) error {
	w.sessions.Set(phone, &Session{
		State:   StateRegistration,
		Profile: &models.LearnerProfile{},
	})
	// empty input makes the flow send the first prompt
	return w.registration.HandleTurn(phone, "")
}
