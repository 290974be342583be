package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
	"github.com/amitgupta-exe/microlearn-backend/internal/storage"
)

// DeliveryEngine operates the progress state machine:
// assigned -> started -> completed, with suspended reachable from either
// active state. Within started it runs a nested cursor of
// (current_day, next incomplete module).
type DeliveryEngine struct {
	store  storage.Store
	sender MessageSender
}

// NewDeliveryEngine creates a new course delivery engine
func NewDeliveryEngine(store storage.Store, sender MessageSender) *DeliveryEngine {
	return &DeliveryEngine{store: store, sender: sender}
}

// loadActive fetches the phone's active progress record. When there is none
// it reports the right condition to the learner (never registered vs a
// terminal record) and returns handled=true.
func (e *DeliveryEngine) loadActive(phone string) (progress *models.CourseProgress, handled bool, err error) {
	progress, err = e.store.GetActiveProgress(phone)
	if errors.Is(err, models.ErrNotRegistered) {
		if latest, latestErr := e.store.GetLatestProgress(phone); latestErr == nil && !latest.Status.Active() {
			log.Printf("Delivery event from %s rejected: %v", phone, models.ErrAlreadyTerminal)
			return nil, true, e.sender.SendText(phone, "Your course is already completed or suspended. Type 'microlearn' to start a new one.")
		}
		return nil, true, e.sender.SendText(phone, "It seems you're not registered for a course yet. Type 'microlearn' to begin.")
	}
	if err != nil {
		return nil, false, err
	}
	return progress, false, nil
}

// StartLearning handles the learner's explicit "begin" action. An assigned
// record moves to started; a started record just resumes delivery.
func (e *DeliveryEngine) StartLearning(phone string) error {
	progress, handled, err := e.loadActive(phone)
	if handled || err != nil {
		return err
	}

	if progress.Status == models.StatusAssigned {
		applied, err := e.store.UpdateProgressStatus(phone, models.StatusAssigned, models.StatusStarted)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("▶️ Course started for %s (course %s)", phone, progress.CourseID)
		}
	}

	return e.DeliverNext(phone)
}

// DeliverNext sends the lowest-numbered incomplete module of the current
// day with a Done button. Sending mutates nothing; state only changes when
// the learner acknowledges.
func (e *DeliveryEngine) DeliverNext(phone string) error {
	progress, handled, err := e.loadActive(phone)
	if handled || err != nil {
		return err
	}

	module, ok := progress.NextModule()
	if !ok {
		// day boundary: the next day is unlocked by acknowledge-module,
		// never auto-delivered
		return e.sender.SendText(phone,
			fmt.Sprintf("You've finished all modules for Day %d. Your next day's modules will be waiting for you — press Start Learning when you're ready.", progress.CurrentDay))
	}

	days, err := e.store.GetCourseContent(progress.CourseID)
	if err != nil {
		log.Printf("❌ No course content for %s (course %s): %v", phone, progress.CourseID, err)
		return e.sender.SendText(phone, "No course modules found.")
	}

	var content string
	for _, day := range days {
		if day.Day == progress.CurrentDay {
			content = day.ModuleContent(module)
			break
		}
	}
	if content == "" {
		log.Printf("❌ Missing module content for %s: day %d module %d", phone, progress.CurrentDay, module)
		return e.sender.SendText(phone, "No course modules found.")
	}

	return e.sender.SendButtons(phone,
		fmt.Sprintf("Day %d - Module %d", progress.CurrentDay, module),
		content,
		[]Button{{Title: "Done", ID: "done"}})
}

// AcknowledgeModule handles the Done button: flag the next incomplete
// module, then either auto-continue (modules 1 and 2), halt at the day
// boundary (module 3), or finish the course (day 3 module 3).
func (e *DeliveryEngine) AcknowledgeModule(phone string) error {
	progress, handled, err := e.loadActive(phone)
	if handled || err != nil {
		return err
	}

	module, ok := progress.NextModule()
	if !ok {
		log.Printf("Acknowledgment from %s ignored: %v", phone, models.ErrNoIncompleteModule)
		return e.sender.SendText(phone, "All modules for today are already complete.")
	}

	day := progress.CurrentDay
	applied, err := e.store.CompleteModule(phone, day, module)
	if err != nil {
		return err
	}
	if !applied {
		// a duplicate delivery raced us; the flag is already set
		log.Printf("Duplicate acknowledgment ignored for %s (day %d module %d)", phone, day, module)
		return nil
	}

	log.Printf("✅ Module done for %s: day %d module %d", phone, day, module)

	if module == models.ModulesPerDay {
		if day == models.CourseDays {
			return e.sender.SendText(phone, "🎉 Congratulations! You have completed your course.")
		}
		return e.sender.SendText(phone,
			fmt.Sprintf("🎉 Congratulations! You have completed all modules for Day %d. You'll get your next set of modules soon.", day))
	}

	// modules 1 and 2 continue within the day immediately
	return e.DeliverNext(phone)
}
