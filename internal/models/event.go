package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a community event users can register for. ParticipantCount is a
// plain counter with no concurrency control; concurrent registrations race
// and the last write wins.
type Event struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Title                string     `gorm:"not null" json:"title"`
	Slug                 string     `gorm:"size:160;not null;uniqueIndex" json:"slug"`
	Description          string     `gorm:"type:text" json:"description"`
	StartsAt             time.Time  `gorm:"not null" json:"starts_at"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MaxParticipants      int        `gorm:"not null;default:0" json:"max_participants"`
	ParticipantCount     int        `gorm:"not null;default:0" json:"participant_count"`
	CreatedByID          uint       `gorm:"not null" json:"created_by_id"`
	CreatedBy            *User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// RegistrationOpen reports whether registration is still possible at now.
func (e *Event) RegistrationOpen(now time.Time) bool {
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return false
	}
	if e.MaxParticipants > 0 && e.ParticipantCount >= e.MaxParticipants {
		return false
	}
	return true
}
