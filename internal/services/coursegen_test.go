package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

func TestParseCourseJSONBare(t *testing.T) {
	days, err := ParseCourseJSON(cannedCourseJSON("Guitar"), "req-1", "Guitar")
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, "req-1", days[0].RequestID)
	assert.Equal(t, "Guitar", days[0].CourseName)
	assert.Equal(t, "Guitar day 2 module 3 content", days[1].ModuleContent(3))
}

func TestParseCourseJSONFenced(t *testing.T) {
	// the model is told not to use markdown but often does anyway
	raw := "Here is your course:\n```json\n" + cannedCourseJSON("Guitar") + "\n```\nEnjoy!"
	days, err := ParseCourseJSON(raw, "req-1", "Guitar")
	require.NoError(t, err)
	require.Len(t, days, 3)
}

func TestParseCourseJSONSurroundingProse(t *testing.T) {
	raw := "Sure! " + cannedCourseJSON("Guitar") + " Hope this helps."
	days, err := ParseCourseJSON(raw, "req-1", "Guitar")
	require.NoError(t, err)
	require.Len(t, days, 3)
}

func TestParseCourseJSONRejectsMissingModule(t *testing.T) {
	raw := `{"Day 1": {"Day 1 - Module 1": {"content": "a"}, "Day 1 - Module 2": {"content": "b"}},
		"Day 2": {}, "Day 3": {}}`
	_, err := ParseCourseJSON(raw, "req-1", "Guitar")
	assert.ErrorIs(t, err, models.ErrContentParseFailed)
}

func TestParseCourseJSONRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "```json\n```"} {
		_, err := ParseCourseJSON(raw, "req-1", "Guitar")
		assert.ErrorIs(t, err, models.ErrContentParseFailed, "input %q", raw)
	}
}
