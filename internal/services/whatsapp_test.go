package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

func TestActivationStartsOptInDialogue(t *testing.T) {
	whatsapp, _, _, _, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{
		PhoneNumber: "+91 98765 43210",
		Text:        "Microlearn",
	}))

	sent := sender.lastButtons()
	assert.Equal(t, "Can we begin?", sent.Header)
	require.Len(t, sent.Buttons, 2)
	assert.Equal(t, "Yes", sent.Buttons[0].Title)

	session, ok := sessions.Get(testPhone)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingBegin, session.State)
}

func TestOptInYesEntersRegistration(t *testing.T) {
	whatsapp, _, _, _, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "microlearn"}))
	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "Yes", ButtonID: "yes"}))

	assert.Equal(t, "Please enter your name:", sender.lastText())

	session, ok := sessions.Get(testPhone)
	require.True(t, ok)
	assert.Equal(t, StateRegistration, session.State)
}

func TestOptInDeclineDropsSession(t *testing.T) {
	whatsapp, _, _, _, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "microlearn"}))
	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "Maybe next time", ButtonID: "maybe_next_time"}))

	assert.Contains(t, sender.lastText(), "awake me with the mantra microlearn")
	_, ok := sessions.Get(testPhone)
	assert.False(t, ok)
}

func TestInvalidPhoneNumberDropsEventSilently(t *testing.T) {
	whatsapp, _, _, _, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	err := whatsapp.ProcessEvent(InboundEvent{PhoneNumber: "12345", Text: "microlearn"})
	assert.ErrorIs(t, err, models.ErrInvalidPhoneNumber)

	// no outbound message: there is no reliable destination
	assert.Empty(t, sender.texts)
	assert.Empty(t, sender.buttons)
}

func TestDoneWithoutRegistration(t *testing.T) {
	whatsapp, _, _, _, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "Done"}))
	assert.Contains(t, sender.lastText(), "not registered")
}

func TestReminderButtonResumesDelivery(t *testing.T) {
	whatsapp, _, _, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	seedCourse(store, testPhone, "req-1", models.StatusStarted)

	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{
		PhoneNumber: testPhone,
		Text:        "Continue Day 1",
		ButtonID:    "continue_day",
	}))

	assert.Equal(t, "Day 1 - Module 1", sender.lastButtons().Header)
}

func TestRegistrationAnswersKeepTheirCasing(t *testing.T) {
	whatsapp, _, _, _, _, sessions, _ := newTestStack()
	defer sessions.Stop()

	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "microlearn"}))
	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, ButtonID: "yes", Text: "Yes"}))
	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "Asha Kulkarni"}))

	session, ok := sessions.Get(testPhone)
	require.True(t, ok)
	assert.Equal(t, "Asha Kulkarni", session.Profile.Name)
}

func TestActivationRestartsExistingDialogue(t *testing.T) {
	whatsapp, _, _, _, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "microlearn"}))
	require.NoError(t, whatsapp.ProcessEvent(InboundEvent{PhoneNumber: testPhone, Text: "microlearn"}))

	// still awaiting the opt-in, prompted twice
	session, ok := sessions.Get(testPhone)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingBegin, session.State)
	assert.Len(t, sender.buttons, 2)
}
