package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

// MemoryStore holds all data in memory for testing and local development
type MemoryStore struct {
	learners      map[string]*models.Learner // keyed by canonical phone
	registrations map[string]*models.Registration
	courseDays    map[string][]*models.CourseDay // keyed by request ID
	progresses    map[uint]*models.CourseProgress

	mu sync.RWMutex

	learnerCounter  uint
	progressCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		learners:      make(map[string]*models.Learner),
		registrations: make(map[string]*models.Registration),
		courseDays:    make(map[string][]*models.CourseDay),
		progresses:    make(map[uint]*models.CourseProgress),
	}
}

// Learner operations

func (m *MemoryStore) CreateLearner(learner *models.Learner) (*models.Learner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.learners[learner.Phone]; ok {
		return existing, nil
	}

	m.learnerCounter++
	learner.ID = m.learnerCounter
	learner.CreatedAt = time.Now()
	learner.UpdatedAt = time.Now()
	if learner.Role == "" {
		learner.Role = "learner"
	}
	m.learners[learner.Phone] = learner
	return learner, nil
}

func (m *MemoryStore) GetLearnerByPhone(phone string) (*models.Learner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	learner, ok := m.learners[phone]
	if !ok {
		return nil, fmt.Errorf("learner not found")
	}
	return learner, nil
}

// Registration operations

func (m *MemoryStore) CreateRegistration(reg *models.Registration) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg.CreatedAt = time.Now()
	reg.UpdatedAt = time.Now()
	m.registrations[reg.RequestID] = reg
	return reg, nil
}

func (m *MemoryStore) MarkRegistrationGenerated(requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[requestID]
	if !ok {
		return fmt.Errorf("registration not found")
	}
	reg.Generated = true
	reg.UpdatedAt = time.Now()
	return nil
}

// Course content operations

func (m *MemoryStore) CreateCourseDays(days []*models.CourseDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, day := range days {
		day.CreatedAt = time.Now()
		day.UpdatedAt = time.Now()
		m.courseDays[day.RequestID] = append(m.courseDays[day.RequestID], day)
	}
	return nil
}

func (m *MemoryStore) GetCourseContent(requestID string) ([]*models.CourseDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := m.courseDays[requestID]
	if len(days) == 0 {
		return nil, fmt.Errorf("no course content for request %s", requestID)
	}

	ordered := make([]*models.CourseDay, len(days))
	copy(ordered, days)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Day < ordered[j].Day })
	return ordered, nil
}

// Progress operations

func (m *MemoryStore) CreateProgress(progress *models.CourseProgress) (*models.CourseProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.progressCounter++
	progress.ID = m.progressCounter
	progress.CreatedAt = time.Now()
	progress.UpdatedAt = time.Now()
	if progress.Status == "" {
		progress.Status = models.StatusAssigned
	}
	if progress.CurrentDay == 0 {
		progress.CurrentDay = 1
	}
	m.progresses[progress.ID] = progress
	return progress, nil
}

func (m *MemoryStore) GetActiveProgress(phone string) (*models.CourseProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	progress := m.findActive(phone)
	if progress == nil {
		return nil, models.ErrNotRegistered
	}
	cloned := *progress
	return &cloned, nil
}

func (m *MemoryStore) GetLatestProgress(phone string) (*models.CourseProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.CourseProgress
	for _, progress := range m.progresses {
		if progress.PhoneNumber != phone {
			continue
		}
		if latest == nil || progress.ID > latest.ID {
			latest = progress
		}
	}
	if latest == nil {
		return nil, models.ErrNotRegistered
	}
	cloned := *latest
	return &cloned, nil
}

func (m *MemoryStore) GetActiveProgressRecords() ([]*models.CourseProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*models.CourseProgress
	for _, progress := range m.progresses {
		if progress.Status.Active() {
			cloned := *progress
			records = append(records, &cloned)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (m *MemoryStore) SuspendActive(phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, progress := range m.progresses {
		if progress.PhoneNumber == phone && progress.Status.Active() {
			progress.Status = models.StatusSuspended
			progress.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (m *MemoryStore) UpdateProgressStatus(phone string, from, to models.ProgressStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	progress := m.findActive(phone)
	if progress == nil || progress.Status != from {
		return false, nil
	}

	progress.Status = to
	now := time.Now()
	if to == models.StatusStarted && progress.StartedAt == nil {
		progress.StartedAt = &now
	}
	if to == models.StatusCompleted && progress.CompletedAt == nil {
		progress.CompletedAt = &now
	}
	progress.UpdatedAt = now
	return true, nil
}

func (m *MemoryStore) CompleteModule(phone string, day, module int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	progress := m.findActive(phone)
	if progress == nil {
		return false, models.ErrNotRegistered
	}

	// set-if-false guard keeps duplicate acknowledgments from
	// double-advancing current_day
	if progress.CurrentDay != day || progress.ModuleDone(day, module) {
		return false, nil
	}

	now := time.Now()
	progress.SetModuleDone(day, module)
	progress.LastModuleCompletedAt = &now
	progress.UpdatedAt = now

	if module == models.ModulesPerDay {
		if day == models.CourseDays {
			progress.Status = models.StatusCompleted
			progress.CompletedAt = &now
		} else {
			progress.CurrentDay = day + 1
		}
	}
	return true, nil
}

// Scheduler operations

func (m *MemoryStore) IncrementReminderCount(progressID uint, day int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	progress, ok := m.progresses[progressID]
	if !ok {
		return fmt.Errorf("progress %d not found", progressID)
	}
	progress.SetReminderCount(day, progress.ReminderCount(day)+1)
	progress.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) SuspendProgress(progressID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	progress, ok := m.progresses[progressID]
	if !ok || !progress.Status.Active() {
		return false, nil
	}
	progress.Status = models.StatusSuspended
	progress.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryStore) CompleteProgressByID(progressID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	progress, ok := m.progresses[progressID]
	if !ok || !progress.Status.Active() {
		return false, nil
	}
	now := time.Now()
	progress.Status = models.StatusCompleted
	progress.CompletedAt = &now
	progress.UpdatedAt = now
	return true, nil
}

// Counts

func (m *MemoryStore) CountLearners() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.learners)), nil
}

func (m *MemoryStore) CountProgressRecords() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.progresses)), nil
}

// findActive returns the live record for a phone; callers hold the lock.
func (m *MemoryStore) findActive(phone string) *models.CourseProgress {
	for _, progress := range m.progresses {
		if progress.PhoneNumber == phone && progress.Status.Active() {
			return progress
		}
	}
	return nil
}
