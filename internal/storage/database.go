package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

// DatabaseStore implements Store on top of PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Learner operations

func (s *DatabaseStore) CreateLearner(learner *models.Learner) (*models.Learner, error) {
	var existing models.Learner
	err := s.db.Where("phone = ?", learner.Phone).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	if err := s.db.Create(learner).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return learner, nil
}

func (s *DatabaseStore) GetLearnerByPhone(phone string) (*models.Learner, error) {
	var learner models.Learner
	if err := s.db.Where("phone = ?", phone).First(&learner).Error; err != nil {
		return nil, err
	}
	return &learner, nil
}

// Registration operations

func (s *DatabaseStore) CreateRegistration(reg *models.Registration) (*models.Registration, error) {
	// keyed by request_id so a retried completion does not duplicate the row
	err := s.db.Where(models.Registration{RequestID: reg.RequestID}).
		FirstOrCreate(reg).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return reg, nil
}

func (s *DatabaseStore) MarkRegistrationGenerated(requestID string) error {
	return s.db.Model(&models.Registration{}).
		Where("request_id = ?", requestID).
		Update("generated", true).Error
}

// Course content operations

func (s *DatabaseStore) CreateCourseDays(days []*models.CourseDay) error {
	if len(days) == 0 {
		return nil
	}
	if err := s.db.Create(days).Error; err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DatabaseStore) GetCourseContent(requestID string) ([]*models.CourseDay, error) {
	var days []*models.CourseDay
	err := s.db.Where("request_id = ?", requestID).Order("day asc").Find(&days).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no course content for request %s", requestID)
	}
	return days, nil
}

// Progress operations

func (s *DatabaseStore) CreateProgress(progress *models.CourseProgress) (*models.CourseProgress, error) {
	if err := s.db.Create(progress).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return progress, nil
}

func (s *DatabaseStore) GetActiveProgress(phone string) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := s.db.Where("phone_number = ? AND status IN ?", phone, activeStatuses()).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return &progress, nil
}

func (s *DatabaseStore) GetLatestProgress(phone string) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := s.db.Where("phone_number = ?", phone).Order("id desc").First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return &progress, nil
}

func (s *DatabaseStore) GetActiveProgressRecords() ([]*models.CourseProgress, error) {
	var records []*models.CourseProgress
	err := s.db.Where("status IN ?", activeStatuses()).Order("id asc").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return records, nil
}

func (s *DatabaseStore) SuspendActive(phone string) error {
	return s.db.Model(&models.CourseProgress{}).
		Where("phone_number = ? AND status IN ?", phone, activeStatuses()).
		Update("status", models.StatusSuspended).Error
}

func (s *DatabaseStore) UpdateProgressStatus(phone string, from, to models.ProgressStatus) (bool, error) {
	updates := map[string]interface{}{"status": to}
	now := time.Now()
	if to == models.StatusStarted {
		updates["started_at"] = &now
	}
	if to == models.StatusCompleted {
		updates["completed_at"] = &now
	}

	// conditional on the old status so a racing sweep cannot be overwritten
	result := s.db.Model(&models.CourseProgress{}).
		Where("phone_number = ? AND status = ?", phone, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *DatabaseStore) CompleteModule(phone string, day, module int) (bool, error) {
	column := moduleColumn(day, module)
	if column == "" {
		return false, fmt.Errorf("module out of range: day %d module %d", day, module)
	}

	now := time.Now()
	updates := map[string]interface{}{
		column:                     true,
		"last_module_completed_at": &now,
	}
	if module == models.ModulesPerDay {
		if day == models.CourseDays {
			updates["status"] = models.StatusCompleted
			updates["completed_at"] = &now
		} else {
			updates["current_day"] = day + 1
		}
	}

	// set-if-false: a duplicate acknowledgment matches zero rows
	result := s.db.Model(&models.CourseProgress{}).
		Where("phone_number = ? AND status IN ? AND current_day = ? AND "+column+" = ?",
			phone, activeStatuses(), day, false).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Scheduler operations

func (s *DatabaseStore) IncrementReminderCount(progressID uint, day int) error {
	column := reminderColumn(day)
	if column == "" {
		return fmt.Errorf("day out of range: %d", day)
	}
	return s.db.Model(&models.CourseProgress{}).
		Where("id = ?", progressID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

func (s *DatabaseStore) SuspendProgress(progressID uint) (bool, error) {
	result := s.db.Model(&models.CourseProgress{}).
		Where("id = ? AND status IN ?", progressID, activeStatuses()).
		Update("status", models.StatusSuspended)
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *DatabaseStore) CompleteProgressByID(progressID uint) (bool, error) {
	now := time.Now()
	result := s.db.Model(&models.CourseProgress{}).
		Where("id = ? AND status IN ?", progressID, activeStatuses()).
		Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"completed_at": &now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Counts

func (s *DatabaseStore) CountLearners() (int64, error) {
	var count int64
	err := s.db.Model(&models.Learner{}).Count(&count).Error
	return count, err
}

func (s *DatabaseStore) CountProgressRecords() (int64, error) {
	var count int64
	err := s.db.Model(&models.CourseProgress{}).Count(&count).Error
	return count, err
}

func activeStatuses() []models.ProgressStatus {
	return []models.ProgressStatus{models.StatusAssigned, models.StatusStarted}
}

// moduleColumn maps an integer (day, module) pair onto its column. The pairs
// are enumerated rather than built from the inputs so an out-of-range pair is
// caught instead of producing a broken query.
func moduleColumn(day, module int) string {
	columns := [models.CourseDays][models.ModulesPerDay]string{
		{"day1_module1", "day1_module2", "day1_module3"},
		{"day2_module1", "day2_module2", "day2_module3"},
		{"day3_module1", "day3_module2", "day3_module3"},
	}
	if day < 1 || day > models.CourseDays || module < 1 || module > models.ModulesPerDay {
		return ""
	}
	return columns[day-1][module-1]
}

func reminderColumn(day int) string {
	switch day {
	case 1:
		return "reminder_count_day1"
	case 2:
		return "reminder_count_day2"
	case 3:
		return "reminder_count_day3"
	}
	return ""
}
