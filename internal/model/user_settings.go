package model

import "time"

// UserSettings is the free-form settings document of a profile.  A profile
// has at most one row.
type UserSettings struct {
	ID        string         `json:"id"`
	ProfileID string         `json:"user"`
	Settings  map[string]any `json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
