package services

import (
	"fmt"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
	"github.com/amitgupta-exe/microlearn-backend/internal/storage"
)

// fakeSender records outbound messages instead of calling Twilio
type fakeSender struct {
	texts   []sentText
	buttons []sentButtons
}

type sentText struct {
	To      string
	Message string
}

type sentButtons struct {
	To      string
	Header  string
	Body    string
	Buttons []Button
}

func (f *fakeSender) SendText(to, message string) error {
	f.texts = append(f.texts, sentText{To: to, Message: message})
	return nil
}

func (f *fakeSender) SendButtons(to, header, body string, buttons []Button) error {
	f.buttons = append(f.buttons, sentButtons{To: to, Header: header, Body: body, Buttons: buttons})
	return nil
}

func (f *fakeSender) lastText() string {
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1].Message
}

func (f *fakeSender) lastButtons() sentButtons {
	if len(f.buttons) == 0 {
		return sentButtons{}
	}
	return f.buttons[len(f.buttons)-1]
}

// fakeGenerator returns a canned 3-day course, or fails on demand
type fakeGenerator struct {
	fail  bool
	calls int
}

func (g *fakeGenerator) GenerateCourse(profile *models.LearnerProfile) (string, error) {
	g.calls++
	if g.fail {
		return "", models.ErrContentGenerationFailed
	}
	return cannedCourseJSON(profile.Topic), nil
}

func cannedCourseJSON(topic string) string {
	course := "{"
	for day := 1; day <= models.CourseDays; day++ {
		if day > 1 {
			course += ","
		}
		course += fmt.Sprintf("%q: {", fmt.Sprintf("Day %d", day))
		for module := 1; module <= models.ModulesPerDay; module++ {
			if module > 1 {
				course += ","
			}
			course += fmt.Sprintf("%q: {\"content\": %q}",
				fmt.Sprintf("Day %d - Module %d", day, module),
				fmt.Sprintf("%s day %d module %d content", topic, day, module))
		}
		course += "}"
	}
	return course + "}"
}

// newTestStack wires the full conversation core over a memory store
func newTestStack() (*WhatsAppService, *RegistrationFlow, *DeliveryEngine, *storage.MemoryStore, *fakeSender, *SessionManager, *fakeGenerator) {
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	sessions := NewSessionManager()
	generator := &fakeGenerator{}

	registration := NewRegistrationFlow(store, sender, sessions, generator)
	delivery := NewDeliveryEngine(store, sender)
	whatsapp := NewWhatsAppService(store, sender, sessions, registration, delivery)

	return whatsapp, registration, delivery, store, sender, sessions, generator
}

// seedCourse inserts content and a progress record for direct engine tests
func seedCourse(store *storage.MemoryStore, phone, requestID string, status models.ProgressStatus) *models.CourseProgress {
	days := make([]*models.CourseDay, 0, models.CourseDays)
	for day := 1; day <= models.CourseDays; day++ {
		days = append(days, &models.CourseDay{
			RequestID:  requestID,
			CourseName: "Guitar",
			Day:        day,
			Module1:    fmt.Sprintf("Guitar day %d module 1 content", day),
			Module2:    fmt.Sprintf("Guitar day %d module 2 content", day),
			Module3:    fmt.Sprintf("Guitar day %d module 3 content", day),
		})
	}
	if err := store.CreateCourseDays(days); err != nil {
		panic(err)
	}

	progress, err := store.CreateProgress(&models.CourseProgress{
		PhoneNumber: phone,
		LearnerName: "Asha",
		CourseID:    requestID,
		CourseName:  "Guitar",
		Status:      status,
		CurrentDay:  1,
	})
	if err != nil {
		panic(err)
	}
	return progress
}
