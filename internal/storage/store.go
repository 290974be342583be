package storage

import (
	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for persistence operations.
//
// Mutations that can race between the webhook handler and the reminder sweep
// (module flags, status transitions) are conditional: they apply only while
// the record is still in the expected state and report whether they took
// effect, so duplicate webhook deliveries never double-advance progress.
type Store interface {
	// Learner operations
	CreateLearner(learner *models.Learner) (*models.Learner, error)
	GetLearnerByPhone(phone string) (*models.Learner, error)

	// Registration operations
	CreateRegistration(reg *models.Registration) (*models.Registration, error)
	MarkRegistrationGenerated(requestID string) error

	// Course content operations
	CreateCourseDays(days []*models.CourseDay) error
	GetCourseContent(requestID string) ([]*models.CourseDay, error)

	// Progress operations
	CreateProgress(progress *models.CourseProgress) (*models.CourseProgress, error)
	GetActiveProgress(phone string) (*models.CourseProgress, error)
	GetLatestProgress(phone string) (*models.CourseProgress, error)
	GetActiveProgressRecords() ([]*models.CourseProgress, error)
	SuspendActive(phone string) error

	// UpdateProgressStatus moves status from->to for the phone's active
	// record; returns false when the record was no longer in `from`.
	UpdateProgressStatus(phone string, from, to models.ProgressStatus) (bool, error)

	// CompleteModule marks (day, module) done for the phone's active record,
	// stamping last_module_completed_at. Completing module 3 also advances
	// current_day, or on day 3 marks the whole course completed. The update
	// applies only while current_day == day and the flag is still false;
	// returns false otherwise.
	CompleteModule(phone string, day, module int) (bool, error)

	// Scheduler operations, addressed by record ID
	IncrementReminderCount(progressID uint, day int) error
	SuspendProgress(progressID uint) (bool, error)
	CompleteProgressByID(progressID uint) (bool, error)

	// Counts for the health endpoint
	CountLearners() (int64, error)
	CountProgressRecords() (int64, error)
}
