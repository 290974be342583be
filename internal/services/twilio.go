package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Button is one quick-reply option attached to an outbound message
type Button struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// MessageSender is the outbound message sink the conversation core writes to
type MessageSender interface {
	SendText(to, message string) error
	SendButtons(to, header, body string, buttons []Button) error
}

// TwilioService sends WhatsApp messages via the Twilio REST API
type TwilioService struct {
	client        *twilio.RestClient
	whatsappFrom  string // Format: "whatsapp:+14155238886"
	quickReplySID string // Content SID of the approved quick-reply template
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService() (*TwilioService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		client:        client,
		whatsappFrom:  from,
		quickReplySID: os.Getenv("TWILIO_QUICK_REPLY_SID"),
	}, nil
}

// SendText sends a plain WhatsApp message
func (t *TwilioService) SendText(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.whatsappFrom)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	return nil
}

// SendButtons sends a message with quick-reply buttons. When the approved
// quick-reply content template is configured the buttons render natively;
// otherwise the options are appended to the body as a plain-text fallback so
// learners can still reply by typing the button title.
func (t *TwilioService) SendButtons(to, header, body string, buttons []Button) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.whatsappFrom)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))

	if t.quickReplySID != "" {
		params.SetContentSid(t.quickReplySID)

		variables := map[string]string{
			"1": header,
			"2": body,
		}
		for i, btn := range buttons {
			variables[fmt.Sprintf("%d", i+3)] = btn.Title
		}
		// SetContentVariables expects a JSON string
		variablesJSON, err := json.Marshal(variables)
		if err != nil {
			return fmt.Errorf("failed to marshal content variables: %w", err)
		}
		params.SetContentVariables(string(variablesJSON))
	} else {
		var sb strings.Builder
		sb.WriteString("*" + header + "*\n\n")
		sb.WriteString(body)
		sb.WriteString("\n")
		for _, btn := range buttons {
			sb.WriteString(fmt.Sprintf("\n▶️ %s", btn.Title))
		}
		params.SetBody(sb.String())
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp buttons: %v", err)
		return err
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	log.Printf("✅ WhatsApp buttons sent to %s, SID: %s", to, *resp.Sid)
	return nil
}
