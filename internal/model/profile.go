package model

import (
	"strings"
	"time"
)

// Position codes accepted for Profile.Position.
const (
	PositionCCM  = "CCM"  // Cabin Crew Member
	PositionSCCM = "SCCM" // Senior Cabin Crew Member
)

// NormalizePosition maps user input onto one of the position codes.  Both
// the short code and the long label are accepted, case-insensitively.  The
// second return value is false when the input matches neither.
func NormalizePosition(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case PositionCCM, "CABIN CREW MEMBER":
		return PositionCCM, true
	case PositionSCCM, "SENIOR CABIN CREW MEMBER":
		return PositionSCCM, true
	}
	return "", false
}

// Profile is the aggregation root for all crew data.  Exactly one profile
// exists per email.  Its ID equals the paired Credential ID when created by
// registration, but every lookup goes through Email.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Airline     string    `json:"airline"`
	Position    string    `json:"position"`
	Nationality *string   `json:"nationality"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
