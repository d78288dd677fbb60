package events

import (
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCallEnded          EventType = "call_ended"
	EventComplaintCreated   EventType = "complaint_created"
	EventComplaintClosed    EventType = "complaint_closed"
	EventSurveySubmitted    EventType = "survey_submitted"
	EventCustomerRegistered EventType = "customer_registered"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type       domain.SubjectType `json:"type"`
	StaffID    *int64             `json:"staff_id,omitempty"`
	CustomerID *int64             `json:"customer_id,omitempty"`
}

// StaffActor builds an actor for a staff member.
func StaffActor(id int64) Actor {
	return Actor{Type: domain.SubjectTypeStaff, StaffID: &id}
}

// CustomerActor builds an actor for a customer.
func CustomerActor(id int64) Actor {
	return Actor{Type: domain.SubjectTypeCustomer, CustomerID: &id}
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintOrigin tells where a complaint came from.
type ComplaintOrigin string

const (
	OriginCall        ComplaintOrigin = "call"
	OriginSelfService ComplaintOrigin = "self_service"
)

// CallEndedPayload payload.
type CallEndedPayload struct {
	CallID      int64  `json:"call_id"`
	SessionID   string `json:"session_id"`
	CustomerID  *int64 `json:"customer_id,omitempty"`
	DurationSec int    `json:"duration_sec"`
	ComplaintID *int64 `json:"complaint_id,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	ComplaintID     int64           `json:"complaint_id"`
	CustomerID      int64           `json:"customer_id"`
	AssignedStaffID int64           `json:"assigned_staff_id"`
	PriorityID      int64           `json:"priority_id"`
	Origin          ComplaintOrigin `json:"origin"`
}

// ComplaintClosedPayload payload.
type ComplaintClosedPayload struct {
	ComplaintID int64 `json:"complaint_id"`
	OldStatusID int64 `json:"old_status_id"`
	NewStatusID int64 `json:"new_status_id"`
}

// SurveySubmittedPayload payload.
type SurveySubmittedPayload struct {
	ComplaintID int64 `json:"complaint_id"`
	Rating      int   `json:"rating"`
	StatusID    int64 `json:"status_id"`
}

// CustomerRegisteredPayload payload.
type CustomerRegisteredPayload struct {
	CustomerID int64  `json:"customer_id"`
	Username   string `json:"username"`
}
