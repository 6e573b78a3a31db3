// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Role defines a user's site-wide role.
type Role string

const (
	// RoleAdmin has full access to every surface including the admin panel.
	RoleAdmin Role = "admin"
	// RoleModerator can moderate forum content and manage editorial entities.
	RoleModerator Role = "moderator"
	// RoleMember is the default role for signed-up users.
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the three defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

// rank orders roles for coarse comparisons: admin > moderator > member.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// AtLeast reports whether r ranks at or above other in the role hierarchy.
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank()
}

// UserSettings holds per-user presentation and notification preferences.
// Persisted as a JSON column.
type UserSettings struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"email_notifications"`
	ForumNotifications bool   `json:"forum_notifications"`
	EventReminders     bool   `json:"event_reminders"`
}

// GamingProfile holds a user's gaming preferences.
// Persisted as a JSON column.
type GamingProfile struct {
	FavoriteGames []string `json:"favorite_games,omitempty"`
	Hardware      string   `json:"hardware,omitempty"`
	PlayStyle     string   `json:"play_style,omitempty"`
}

// Value implements driver.Valuer so GORM stores the struct as JSON text.
func (s UserSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSON columns.
func (s *UserSettings) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Value implements driver.Valuer so GORM stores the struct as JSON text.
func (g GamingProfile) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSON columns.
func (g *GamingProfile) Scan(value interface{}) error {
	return scanJSON(value, g)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("unsupported JSON column type %T", value)
}

// User represents a member of the gaming community.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	// Linked external identities, optional.
	SteamID   string `gorm:"size:64" json:"steam_id,omitempty"`
	DiscordID string `gorm:"size:64" json:"discord_id,omitempty"`
	TwitchID  string `gorm:"size:64" json:"twitch_id,omitempty"`

	Settings      UserSettings  `gorm:"type:text" json:"settings"`
	GamingProfile GamingProfile `gorm:"type:text" json:"gaming_profile"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
