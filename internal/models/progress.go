package models

import (
	"time"

	"gorm.io/gorm"
)

// ProgressStatus is the lifecycle state of a course assignment
type ProgressStatus string

const (
	StatusAssigned  ProgressStatus = "assigned"
	StatusStarted   ProgressStatus = "started"
	StatusCompleted ProgressStatus = "completed"
	StatusSuspended ProgressStatus = "suspended"
)

// Active reports whether the record still accepts delivery events.
// Completed and suspended are terminal.
func (s ProgressStatus) Active() bool {
	return s == StatusAssigned || s == StatusStarted
}

// CourseProgress tracks a learner's position in a 3-day course.
// At most one record per phone number may be in an active status at a time;
// starting a new course suspends all prior active records first.
type CourseProgress struct {
	gorm.Model

	PhoneNumber string `json:"phone_number" gorm:"index"` // canonical form
	LearnerID   uint   `json:"learner_id"`
	LearnerName string `json:"learner_name"`
	CourseID    string `json:"course_id" gorm:"index"` // registration request ID
	CourseName  string `json:"course_name"`

	Status     ProgressStatus `json:"status" gorm:"index;default:assigned"`
	CurrentDay int            `json:"current_day" gorm:"default:1"` // 1..3, capped

	Day1Module1 bool `json:"day1_module1" gorm:"default:false"`
	Day1Module2 bool `json:"day1_module2" gorm:"default:false"`
	Day1Module3 bool `json:"day1_module3" gorm:"default:false"`
	Day2Module1 bool `json:"day2_module1" gorm:"default:false"`
	Day2Module2 bool `json:"day2_module2" gorm:"default:false"`
	Day2Module3 bool `json:"day2_module3" gorm:"default:false"`
	Day3Module1 bool `json:"day3_module1" gorm:"default:false"`
	Day3Module2 bool `json:"day3_module2" gorm:"default:false"`
	Day3Module3 bool `json:"day3_module3" gorm:"default:false"`

	ReminderCountDay1 int `json:"reminder_count_day1" gorm:"default:0"`
	ReminderCountDay2 int `json:"reminder_count_day2" gorm:"default:0"`
	ReminderCountDay3 int `json:"reminder_count_day3" gorm:"default:0"`

	LastModuleCompletedAt *time.Time `json:"last_module_completed_at"`
	StartedAt             *time.Time `json:"started_at"`
	CompletedAt           *time.Time `json:"completed_at"`
}

// ModuleDone reports the completion flag for (day, module), both 1..3.
// Addressing by integer pair keeps the 3x3 grid structurally checked instead
// of building column names by string concatenation.
func (p *CourseProgress) ModuleDone(day, module int) bool {
	switch {
	case day == 1 && module == 1:
		return p.Day1Module1
	case day == 1 && module == 2:
		return p.Day1Module2
	case day == 1 && module == 3:
		return p.Day1Module3
	case day == 2 && module == 1:
		return p.Day2Module1
	case day == 2 && module == 2:
		return p.Day2Module2
	case day == 2 && module == 3:
		return p.Day2Module3
	case day == 3 && module == 1:
		return p.Day3Module1
	case day == 3 && module == 2:
		return p.Day3Module2
	case day == 3 && module == 3:
		return p.Day3Module3
	}
	return false
}

// SetModuleDone sets the completion flag for (day, module). Out-of-range
// pairs are ignored.
func (p *CourseProgress) SetModuleDone(day, module int) {
	switch {
	case day == 1 && module == 1:
		p.Day1Module1 = true
	case day == 1 && module == 2:
		p.Day1Module2 = true
	case day == 1 && module == 3:
		p.Day1Module3 = true
	case day == 2 && module == 1:
		p.Day2Module1 = true
	case day == 2 && module == 2:
		p.Day2Module2 = true
	case day == 2 && module == 3:
		p.Day2Module3 = true
	case day == 3 && module == 1:
		p.Day3Module1 = true
	case day == 3 && module == 2:
		p.Day3Module2 = true
	case day == 3 && module == 3:
		p.Day3Module3 = true
	}
}

// NextModule returns the lowest-numbered incomplete module for the current
// day, or (0, false) when all three are done (a day boundary).
func (p *CourseProgress) NextModule() (int, bool) {
	for module := 1; module <= ModulesPerDay; module++ {
		if !p.ModuleDone(p.CurrentDay, module) {
			return module, true
		}
	}
	return 0, false
}

// CompletedCount returns how many modules of the given day are done (0..3).
func (p *CourseProgress) CompletedCount(day int) int {
	count := 0
	for module := 1; module <= ModulesPerDay; module++ {
		if p.ModuleDone(day, module) {
			count++
		}
	}
	return count
}

// ReminderCount returns the nudge counter for the given day.
func (p *CourseProgress) ReminderCount(day int) int {
	switch day {
	case 1:
		return p.ReminderCountDay1
	case 2:
		return p.ReminderCountDay2
	case 3:
		return p.ReminderCountDay3
	}
	return 0
}

// SetReminderCount sets the nudge counter for the given day.
func (p *CourseProgress) SetReminderCount(day, count int) {
	switch day {
	case 1:
		p.ReminderCountDay1 = count
	case 2:
		p.ReminderCountDay2 = count
	case 3:
		p.ReminderCountDay3 = count
	}
}
