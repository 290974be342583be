package models

import (
	"gorm.io/gorm"
)

// Learner represents a registered learner in the system
type Learner struct {
	gorm.Model

	Phone string `json:"phone" gorm:"uniqueIndex"` // WhatsApp number, canonical form
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role" gorm:"default:learner"`
}

// LearnerProfile holds the in-flight registration answers, one field per turn.
// Fields are set once and never overwritten, so replaying a webhook event
// cannot duplicate an assignment.
type LearnerProfile struct {
	RequestID string `json:"request_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Topic     string `json:"topic" validate:"required"`
	Goal      string `json:"goal" validate:"required"`
	Style     string `json:"style" validate:"required"`
	Language  string `json:"language" validate:"required"`
}

// Complete reports whether every profile field has been collected.
func (p *LearnerProfile) Complete() bool {
	return p.Name != "" && p.Topic != "" && p.Goal != "" && p.Style != "" && p.Language != ""
}
