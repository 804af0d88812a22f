package models

import (
	"time"
)

type EventStatus string

const (
	EventStatusActive   EventStatus = "ACTIVE"
	EventStatusInactive EventStatus = "INACTIVE"
)

// Event is one scheduling cycle (a rehearsal session) within an organization.
type Event struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organization_id"`
	CreatedBy      string      `json:"created_by"`
	Description    string      `json:"description"`
	Location       string      `json:"location"`
	EventDate      time.Time   `json:"event_date"`
	Status         EventStatus `json:"status"`

	// IsClosed is derived from the event date and the configured close
	// window; it is persisted only for compatibility with older readers.
	IsClosed bool `json:"is_closed"`

	IsParticipantsConfirmed bool     `json:"is_participants_confirmed"`
	ConfirmedParticipants   []string `json:"confirmed_participants"`
	AbsentApplicants        []string `json:"absent_applicants"`

	IsDeleted bool `json:"is_deleted"`

	Activities []Activity `json:"activities,omitempty"`
}

// ClosedAt reports whether sign-up is closed at the given instant.
// Sign-up closes a fixed window before the event starts.
func (e *Event) ClosedAt(now time.Time, closeWindow time.Duration) bool {
	return !e.EventDate.After(now.Add(closeWindow))
}
