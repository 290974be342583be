package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

func TestStartLearningMovesAssignedToStarted(t *testing.T) {
	_, _, delivery, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	seedCourse(store, testPhone, "req-1", models.StatusAssigned)

	require.NoError(t, delivery.StartLearning(testPhone))

	progress, err := store.GetActiveProgress(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusStarted, progress.Status)
	require.NotNil(t, progress.StartedAt)

	// the first module goes out with a Done button, no flag mutation
	sent := sender.lastButtons()
	assert.Equal(t, "Day 1 - Module 1", sent.Header)
	assert.Contains(t, sent.Body, "day 1 module 1")
	require.Len(t, sent.Buttons, 1)
	assert.Equal(t, "Done", sent.Buttons[0].Title)
	assert.False(t, progress.ModuleDone(1, 1))
}

func TestStartLearningWithoutRegistration(t *testing.T) {
	_, _, delivery, _, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	require.NoError(t, delivery.StartLearning(testPhone))
	assert.Contains(t, sender.lastText(), "not registered")
}

func TestStartLearningOnTerminalRecord(t *testing.T) {
	_, _, delivery, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	seedCourse(store, testPhone, "req-1", models.StatusSuspended)

	require.NoError(t, delivery.StartLearning(testPhone))
	assert.Contains(t, sender.lastText(), "completed or suspended")
}

func TestAcknowledgeAutoContinuesWithinDay(t *testing.T) {
	// Scenario B: ack on module 1 flags it and immediately sends module 2
	_, _, delivery, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	seedCourse(store, testPhone, "req-1", models.StatusStarted)

	require.NoError(t, delivery.DeliverNext(testPhone))
	assert.Equal(t, "Day 1 - Module 1", sender.lastButtons().Header)

	require.NoError(t, delivery.AcknowledgeModule(testPhone))

	progress, err := store.GetActiveProgress(testPhone)
	require.NoError(t, err)
	assert.True(t, progress.ModuleDone(1, 1))
	assert.False(t, progress.ModuleDone(1, 2))
	assert.Equal(t, 1, progress.CurrentDay)
	require.NotNil(t, progress.LastModuleCompletedAt)

	assert.Equal(t, "Day 1 - Module 2", sender.lastButtons().Header)
}

func TestAcknowledgeHaltsAtDayBoundary(t *testing.T) {
	// Scenario C: ack on module 3 advances the day and stops
	_, _, delivery, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	seedCourse(store, testPhone, "req-1", models.StatusStarted)
	applied, err := store.CompleteModule(testPhone, 1, 1)
	require.NoError(t, err)
	require.True(t, applied)
	applied, err = store.CompleteModule(testPhone, 1, 2)
	require.NoError(t, err)
	require.True(t, applied)

	buttonsBefore := len(sender.buttons)
	require.NoError(t, delivery.AcknowledgeModule(testPhone))

	progress, err := store.GetActiveProgress(testPhone)
	require.NoError(t, err)
	assert.True(t, progress.ModuleDone(1, 3))
	assert.Equal(t, 2, progress.CurrentDay)
	assert.Equal(t, models.StatusStarted, progress.Status)

	// a day-completion outro, no auto-delivered module
	assert.Contains(t, sender.lastText(), "completed all modules for Day 1")
	assert.Len(t, sender.buttons, buttonsBefore)
}

func TestAcknowledgeCompletesCourse(t *testing.T) {
	// Scenario D: last module of day 3 terminates the course
	_, _, delivery, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	seedCourse(store, testPhone, "req-1", models.StatusStarted)
	for day := 1; day <= 3; day++ {
		for module := 1; module <= 3; module++ {
			if day == 3 && module == 3 {
				break
			}
			applied, err := store.CompleteModule(testPhone, day, module)
			require.NoError(t, err)
			require.True(t, applied)
		}
	}

	require.NoError(t, delivery.AcknowledgeModule(testPhone))

	latest, err := store.GetLatestProgress(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, latest.Status)
	require.NotNil(t, latest.CompletedAt)
	assert.Contains(t, sender.lastText(), "completed your course")

	// terminal records accept no further acknowledgments
	require.NoError(t, delivery.AcknowledgeModule(testPhone))
	assert.Contains(t, sender.lastText(), "completed or suspended")
}

func TestAcknowledgeReplayIsIdempotent(t *testing.T) {
	_, _, delivery, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	seedCourse(store, testPhone, "req-1", models.StatusStarted)

	require.NoError(t, delivery.AcknowledgeModule(testPhone))
	progressAfterFirst, err := store.GetActiveProgress(testPhone)
	require.NoError(t, err)

	// the replayed acknowledgment flags module 2 (the new next module);
	// replaying the *same* store mutation is rejected
	applied, err := store.CompleteModule(testPhone, 1, 1)
	require.NoError(t, err)
	assert.False(t, applied)

	progress, err := store.GetActiveProgress(testPhone)
	require.NoError(t, err)
	assert.Equal(t, progressAfterFirst.CurrentDay, progress.CurrentDay)
	assert.True(t, progress.ModuleDone(1, 1))
	assert.False(t, progress.ModuleDone(1, 3))

	// the only delivery so far is module 2's auto-continue
	assert.Equal(t, "Day 1 - Module 2", sender.lastButtons().Header)
}

func TestAcknowledgeWithNothingPending(t *testing.T) {
	_, _, delivery, store, sender, sessions, _ := newTestStack()
	defer sessions.Stop()

	// hand-craft the defensive edge: every module of the current day
	// flagged without the day cursor having moved
	progress := seedCourse(store, testPhone, "req-1", models.StatusStarted)
	progress.SetModuleDone(1, 1)
	progress.SetModuleDone(1, 2)
	progress.SetModuleDone(1, 3)

	textsBefore := len(sender.texts)
	buttonsBefore := len(sender.buttons)

	require.NoError(t, delivery.AcknowledgeModule(testPhone))

	// informational no-op: one text, no module sent, no mutation
	require.Len(t, sender.texts, textsBefore+1)
	assert.Contains(t, sender.lastText(), "already complete")
	assert.Len(t, sender.buttons, buttonsBefore)

	after, err := store.GetActiveProgress(testPhone)
	require.NoError(t, err)
	assert.Equal(t, 1, after.CurrentDay)
	assert.Equal(t, models.StatusStarted, after.Status)
}
