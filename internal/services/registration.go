package services

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
	"github.com/amitgupta-exe/microlearn-backend/internal/storage"
)

// RegistrationFlow runs the turn-by-turn registration interview:
// name -> topic -> goal -> style -> language, one field per turn.
type RegistrationFlow struct {
	store     storage.Store
	sender    MessageSender
	sessions  SessionStore
	generator CourseGenerator
	validate  *validator.Validate
}

// NewRegistrationFlow creates a new registration flow service
func NewRegistrationFlow(store storage.Store, sender MessageSender, sessions SessionStore, generator CourseGenerator) *RegistrationFlow {
	return &RegistrationFlow{
		store:     store,
		sender:    sender,
		sessions:  sessions,
		generator: generator,
		validate:  validator.New(),
	}
}

// HandleTurn consumes one inbound reply for an in-progress registration.
// A field that is already set is skipped, so replaying the same webhook
// event cannot assign it twice.
func (r *RegistrationFlow) HandleTurn(phone, text string) error {
	session, ok := r.sessions.Get(phone)
	if !ok || session.State != StateRegistration {
		session = &Session{State: StateRegistration, Profile: &models.LearnerProfile{}}
		r.sessions.Set(phone, session)
	}
	if session.Profile == nil {
		session.Profile = &models.LearnerProfile{}
	}
	profile := session.Profile

	if profile.RequestID == "" {
		profile.RequestID = uuid.NewString()
	}

	// a full profile means a prior completion attempt failed; any inbound
	// message retries it
	if profile.Complete() {
		return r.complete(phone, session)
	}

	switch {
	case profile.Name == "":
		if text == "" {
			return r.sender.SendText(phone, "Please enter your name:")
		}
		profile.Name = text
		return r.sender.SendText(phone, fmt.Sprintf("Hi %s, what topic do you want to explore?", profile.Name))

	case profile.Topic == "":
		if text == "" {
			return r.sender.SendText(phone, "What topic do you want to explore?")
		}
		profile.Topic = text
		return r.sender.SendText(phone, `What goal do you want to achieve? for example "to learn to play cricket", "to learn to make a sandwich"`)

	case profile.Goal == "":
		if text == "" {
			return r.sender.SendText(phone, "What goal do you want to achieve?")
		}
		profile.Goal = text
		return r.sender.SendButtons(phone, "Choose your learning style", "choose a style", []Button{
			{Title: "Beginner", ID: "beginner"},
			{Title: "Advanced", ID: "advanced"},
			{Title: "Professional", ID: "professional"},
		})

	case profile.Style == "":
		if text == "" {
			return r.sender.SendButtons(phone, "Choose your learning style", "choose a style", []Button{
				{Title: "Beginner", ID: "beginner"},
				{Title: "Advanced", ID: "advanced"},
				{Title: "Professional", ID: "professional"},
			})
		}
		profile.Style = text
		return r.sender.SendButtons(phone, "Choose your preferred language", "choose a language", []Button{
			{Title: "English", ID: "english"},
			{Title: "Hindi", ID: "hindi"},
			{Title: "Marathi", ID: "marathi"},
		})

	case profile.Language == "":
		if text == "" {
			return r.sender.SendButtons(phone, "Choose your preferred language", "choose a language", []Button{
				{Title: "English", ID: "english"},
				{Title: "Hindi", ID: "hindi"},
				{Title: "Marathi", ID: "marathi"},
			})
		}
		profile.Language = text
	}

	// all five fields collected; a failure below leaves the session in
	// place so the next inbound message retries completion
	return r.complete(phone, session)
}

// complete persists the profile, generates and stores the course content,
// then creates the progress record. A progress record is only created after
// content generation and parsing both succeed.
func (r *RegistrationFlow) complete(phone string, session *Session) error {
	profile := session.Profile

	if err := r.validate.Struct(profile); err != nil {
		return fmt.Errorf("incomplete profile for %s: %w", phone, err)
	}

	if _, err := r.store.CreateRegistration(&models.Registration{
		RequestID: profile.RequestID,
		Phone:     phone,
		Name:      profile.Name,
		Topic:     profile.Topic,
		Goal:      profile.Goal,
		Style:     profile.Style,
		Language:  profile.Language,
	}); err != nil {
		log.Printf("❌ Failed to persist registration for %s: %v", phone, err)
		r.sendApology(phone)
		return err
	}

	if err := r.sender.SendText(phone, "Thank you! We'll use this info to personalize your learning journey."); err != nil {
		log.Printf("Failed to send registration ack to %s: %v", phone, err)
	}

	raw, err := r.generator.GenerateCourse(profile)
	if err != nil {
		log.Printf("❌ Course generation failed for %s: %v", phone, err)
		r.sendApology(phone)
		return err
	}

	days, err := ParseCourseJSON(raw, profile.RequestID, profile.Topic)
	if err != nil {
		log.Printf("❌ Course parse failed for %s: %v", phone, err)
		r.sendApology(phone)
		return err
	}

	if err := r.store.CreateCourseDays(days); err != nil {
		log.Printf("❌ Failed to persist course content for %s: %v", phone, err)
		r.sendApology(phone)
		return err
	}
	if err := r.store.MarkRegistrationGenerated(profile.RequestID); err != nil {
		log.Printf("Failed to flag registration %s as generated: %v", profile.RequestID, err)
	}

	learner, err := r.store.CreateLearner(&models.Learner{
		Phone: phone,
		Name:  profile.Name,
		Role:  "learner",
	})
	if err != nil {
		log.Printf("❌ Failed to ensure learner for %s: %v", phone, err)
		r.sendApology(phone)
		return err
	}

	// one active course per number: suspend whatever was running before
	// the new record exists
	if err := r.store.SuspendActive(phone); err != nil {
		log.Printf("❌ Failed to suspend previous courses for %s: %v", phone, err)
		r.sendApology(phone)
		return err
	}

	now := time.Now()
	if _, err := r.store.CreateProgress(&models.CourseProgress{
		PhoneNumber:           phone,
		LearnerID:             learner.ID,
		LearnerName:           profile.Name,
		CourseID:              profile.RequestID,
		CourseName:            profile.Topic,
		Status:                models.StatusAssigned,
		CurrentDay:            1,
		LastModuleCompletedAt: &now,
	}); err != nil {
		log.Printf("❌ Failed to create course progress for %s: %v", phone, err)
		r.sendApology(phone)
		return err
	}

	r.sessions.Delete(phone)
	log.Printf("✅ Registration complete for %s (request %s)", phone, profile.RequestID)

	return r.sender.SendButtons(phone, "Your course is ready!",
		"Press Start Learning to begin your first module.",
		[]Button{{Title: "Start Learning", ID: "start_learning"}})
}

func (r *RegistrationFlow) sendApology(phone string) {
	msg := "Sorry, I couldn't prepare your course right now. Please try again later."
	if err := r.sender.SendText(phone, msg); err != nil {
		log.Printf("Failed to send apology to %s: %v", phone, err)
	}
}
