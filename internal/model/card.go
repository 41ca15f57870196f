package model

import (
	"time"

	"github.com/google/uuid"
)

// Card statuses. Any status may move to any other in one step.
const (
	StatusToDo       = "TO_DO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Card priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

type Card struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"not null"`
	Description string
	CreatorID   *uuid.UUID `gorm:"type:uuid"`
	Priority    string     `gorm:"not null;default:'MEDIUM'"`
	Status      string     `gorm:"not null;default:'TO_DO'"`
	Attachment  *string
	Color       string `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Board   Board `gorm:"foreignKey:BoardID"`
	Creator *User `gorm:"foreignKey:CreatorID"`
}

// ValidStatus reports whether s is one of the three card statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the three card priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

var statusLabels = map[string]string{
	StatusToDo:       "To Do",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
}

// StatusLabel returns the human-readable label for a status, as used in
// board exports. Unknown statuses are returned unchanged.
func StatusLabel(s string) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s
}
