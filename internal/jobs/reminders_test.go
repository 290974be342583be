package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
	"github.com/amitgupta-exe/microlearn-backend/internal/services"
	"github.com/amitgupta-exe/microlearn-backend/internal/storage"
)

const testPhone = "919876543210"

type fakeSender struct {
	texts   []string
	buttons []string // headers
}

func (f *fakeSender) SendText(to, message string) error {
	f.texts = append(f.texts, message)
	return nil
}

func (f *fakeSender) SendButtons(to, header, body string, buttons []services.Button) error {
	f.buttons = append(f.buttons, header)
	return nil
}

func seedProgress(t *testing.T, store *storage.MemoryStore, status models.ProgressStatus) *models.CourseProgress {
	t.Helper()
	progress, err := store.CreateProgress(&models.CourseProgress{
		PhoneNumber: testPhone,
		CourseID:    "req-1",
		CourseName:  "Guitar",
		Status:      status,
		CurrentDay:  1,
	})
	require.NoError(t, err)
	return progress
}

func TestSweepNudgesThenSuspends(t *testing.T) {
	// three nudges on the same stalled day, then suspension, never a fourth
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	job := NewReminderJob(store, sender)

	seedProgress(t, store, models.StatusStarted)

	for i := 0; i < 3; i++ {
		job.Sweep()
	}
	assert.Len(t, sender.buttons, 3)
	assert.Empty(t, sender.texts)

	progress, err := store.GetActiveProgress(testPhone)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.ReminderCount(1))
	assert.Equal(t, models.StatusStarted, progress.Status)

	// fourth sweep suspends instead of nudging
	job.Sweep()
	assert.Len(t, sender.buttons, 3)
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "suspended")

	latest, err := store.GetLatestProgress(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, latest.Status)

	// suspended records are out of the sweep entirely
	job.Sweep()
	assert.Len(t, sender.buttons, 3)
	assert.Len(t, sender.texts, 1)
}

func TestSweepNudgeCarriesCompletedCount(t *testing.T) {
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	job := NewReminderJob(store, sender)

	seedProgress(t, store, models.StatusStarted)
	applied, err := store.CompleteModule(testPhone, 1, 1)
	require.NoError(t, err)
	require.True(t, applied)

	job.Sweep()
	require.Len(t, sender.buttons, 1)
	assert.Equal(t, "Day 1 Reminder", sender.buttons[0])
}

func TestSweepSelfHealsMissedCompletion(t *testing.T) {
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	job := NewReminderJob(store, sender)

	// all nine modules done but the terminal transition was missed
	progress := seedProgress(t, store, models.StatusStarted)
	progress.CurrentDay = 3
	for day := 1; day <= 3; day++ {
		for module := 1; module <= 3; module++ {
			progress.SetModuleDone(day, module)
		}
	}

	job.Sweep()

	latest, err := store.GetLatestProgress(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, latest.Status)
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "completed your course")
	assert.Empty(t, sender.buttons)

	// completion is terminal; the next sweep sends nothing
	job.Sweep()
	assert.Len(t, sender.texts, 1)
}

func TestSweepTouchesOnlyActiveRecords(t *testing.T) {
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	job := NewReminderJob(store, sender)

	_, err := store.CreateProgress(&models.CourseProgress{
		PhoneNumber: testPhone,
		CourseID:    "req-old",
		Status:      models.StatusSuspended,
		CurrentDay:  1,
	})
	require.NoError(t, err)
	_, err = store.CreateProgress(&models.CourseProgress{
		PhoneNumber: "919812345678",
		CourseID:    "req-done",
		Status:      models.StatusCompleted,
		CurrentDay:  3,
	})
	require.NoError(t, err)

	job.Sweep()
	assert.Empty(t, sender.texts)
	assert.Empty(t, sender.buttons)
}
