package jobs

import (
	"fmt"
	"log"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
	"github.com/amitgupta-exe/microlearn-backend/internal/services"
	"github.com/amitgupta-exe/microlearn-backend/internal/storage"
)

// ReminderJob sweeps active course progress records on a schedule, nudging
// stalled learners and suspending them after repeated inaction.
type ReminderJob struct {
	store  storage.Store
	sender services.MessageSender
	cron   *cron.Cron
}

// NewReminderJob creates a new reminder job scheduler
func NewReminderJob(store storage.Store, sender services.MessageSender) *ReminderJob {
	return &ReminderJob{
		store:  store,
		sender: sender,
		cron:   cron.New(),
	}
}

// Start schedules the daily sweep. REMINDER_CRON overrides the default
// 10 AM schedule for tighter feedback loops; the sweep itself is idempotent
// so a faster cadence is safe.
func (r *ReminderJob) Start() error {
	spec := os.Getenv("REMINDER_CRON")
	if spec == "" {
		spec = "0 10 * * *"
	}

	if _, err := r.cron.AddFunc(spec, r.Sweep); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	r.cron.Start()
	log.Printf("✅ Reminder sweep scheduled (%s)", spec)
	return nil
}

// Stop halts the scheduler
func (r *ReminderJob) Stop() {
	r.cron.Stop()
	log.Println("Stopping reminder sweep...")
}

// Sweep walks every active progress record once. All mutations are
// conditional on the record still being active, so a sweep racing a live
// Done click cannot resurrect or double-advance anything.
func (r *ReminderJob) Sweep() {
	records, err := r.store.GetActiveProgressRecords()
	if err != nil {
		log.Printf("❌ Reminder sweep fetch error: %v", err)
		return
	}

	log.Printf("⏰ Reminder sweep: %d active record(s)", len(records))

	for _, progress := range records {
		r.sweepRecord(progress)
	}
}

func (r *ReminderJob) sweepRecord(progress *models.CourseProgress) {
	phone := progress.PhoneNumber
	day := progress.CurrentDay

	// defensive: the store caps current_day at 3
	if day > models.CourseDays {
		log.Printf("⚠️ Skipping %s: current_day %d out of range", phone, day)
		return
	}

	completed := progress.CompletedCount(day)

	// self-heal a missed completion transition
	if day == models.CourseDays && completed == models.ModulesPerDay {
		applied, err := r.store.CompleteProgressByID(progress.ID)
		if err != nil {
			log.Printf("❌ Failed to complete progress %d: %v", progress.ID, err)
			return
		}
		if applied {
			log.Printf("✅ Marked course completed for %s during sweep", phone)
			if err := r.sender.SendText(phone, "🎉 Congratulations! You have completed your course."); err != nil {
				log.Printf("Failed to send completion message to %s: %v", phone, err)
			}
		}
		return
	}

	// escalation ceiling: after the third nudge for a day the record is
	// suspended, never nudged again
	if progress.ReminderCount(day) >= models.ReminderCeiling {
		applied, err := r.store.SuspendProgress(progress.ID)
		if err != nil {
			log.Printf("❌ Failed to suspend progress %d: %v", progress.ID, err)
			return
		}
		if applied {
			log.Printf("⏸️ Suspended course for %s after %d reminders on day %d", phone, progress.ReminderCount(day), day)
			if err := r.sender.SendText(phone, "Your course is suspended due to inactivity."); err != nil {
				log.Printf("Failed to send suspension notice to %s: %v", phone, err)
			}
		}
		return
	}

	body := fmt.Sprintf("You have completed %d of %d modules for Day %d. Please continue your course.",
		completed, models.ModulesPerDay, day)
	err := r.sender.SendButtons(phone,
		fmt.Sprintf("Day %d Reminder", day),
		body,
		[]services.Button{{Title: fmt.Sprintf("Continue Day %d", day), ID: "continue_day"}})
	if err != nil {
		log.Printf("Failed to send reminder to %s: %v", phone, err)
		return
	}

	if err := r.store.IncrementReminderCount(progress.ID, day); err != nil {
		log.Printf("❌ Failed to increment reminder count for %d: %v", progress.ID, err)
	}
}
