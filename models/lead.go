package models

import "time"

// LeadStatus tracks the follow-up state of a lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadEnrolled  LeadStatus = "enrolled"
	LeadClosed    LeadStatus = "closed"
)

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadEnrolled, LeadClosed:
		return true
	}
	return false
}

// Lead is a visitor who asked to be contacted by school staff.
type Lead struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Contact   string     `json:"contact"`
	Query     string     `json:"query"`
	Status    LeadStatus `json:"status"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Conversation is one logged question/answer exchange.
type Conversation struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Language    string    `json:"language"`
	Intent      string    `json:"intent"`
	Timestamp   time.Time `json:"timestamp"`
}
