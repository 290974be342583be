package models

import (
	"gorm.io/gorm"
)

// Registration is the persisted record of a completed registration interview
type Registration struct {
	gorm.Model

	RequestID string `json:"request_id" gorm:"uniqueIndex"`
	Phone     string `json:"phone" gorm:"index"` // canonical form
	Name      string `json:"name"`
	Topic     string `json:"topic"`
	Goal      string `json:"goal"`
	Style     string `json:"style"`
	Language  string `json:"language"`
	Generated bool   `json:"generated" gorm:"default:false"`
}

// CourseDay holds one day of generated course content (3 modules per day).
// Rows are immutable once inserted; the course is identified by the
// registration's request ID.
type CourseDay struct {
	gorm.Model

	RequestID  string `json:"request_id" gorm:"index"`
	CourseName string `json:"course_name"`
	Day        int    `json:"day"` // 1..3
	Module1    string `json:"module_1"`
	Module2    string `json:"module_2"`
	Module3    string `json:"module_3"`
}

// ModuleContent returns the text for module 1..3, empty string otherwise.
func (d *CourseDay) ModuleContent(module int) string {
	switch module {
	case 1:
		return d.Module1
	case 2:
		return d.Module2
	case 3:
		return d.Module3
	}
	return ""
}

// CourseDays is the fixed shape of a generated course.
const (
	CourseDays      = 3
	ModulesPerDay   = 3
	ReminderCeiling = 3 // nudges per day before suspension
)
