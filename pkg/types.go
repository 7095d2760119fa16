package pkg

import (
	"strconv"
	"time"
)

// Role describes who authored a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry of a conversation transcript.  Once
// appended to a transcript it is never modified.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserProfile mirrors a row of the UserProfile table.  A user without a row
// is represented by the zero value.
type UserProfile struct {
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Age         *int       `json:"age,omitempty"`
	Sex         string     `json:"sex"`
	HealthGoals string     `json:"health_goals"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Empty reports whether no profile record was found.
func (p UserProfile) Empty() bool { return p.UserID == "" }

// AgeText renders the age for prompts; an unknown age renders as "".
func (p UserProfile) AgeText() string { return intText(p.Age) }

// HealthEntry mirrors the most recent row of the UserHealthData table for a
// user.  The zero value means the user has no entries yet.
type HealthEntry struct {
	UserID            string     `json:"user_id"`
	EntryID           string     `json:"entry_id"`
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	Age               *int       `json:"age,omitempty"`
	Sex               string     `json:"sex"`
	Symptoms          string     `json:"symptoms"`
	Habits            string     `json:"habits"`
	HealthGoals       string     `json:"health_goals"`
	Recommendations   string     `json:"recommendations"`
	FollowUpQuestions string     `json:"follow_up_questions"`
}

// Empty reports whether no health entry was found.
func (e HealthEntry) Empty() bool { return e.EntryID == "" && e.UserID == "" }

// Credential is the opaque result of a successful sign-in or registration.
type Credential struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	IDToken      string `json:"-"`
	RefreshToken string `json:"-"`
}

// Account is a locally managed login used when no external identity
// service is configured.
type Account struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CoachRequest is the body accepted by the single-shot coach endpoint.
type CoachRequest struct {
	Message string `json:"message" validate:"required"`
}

// CoachResponse is returned by the single-shot coach endpoint.
type CoachResponse struct {
	Response string `json:"response"`
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
