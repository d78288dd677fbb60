package dto

import "time"

// CallSessionResponse describes an open call screen.
type CallSessionResponse struct {
	ID        string    `json:"id"`
	StaffID   int64     `json:"staff_id"`
	StartedAt time.Time `json:"started_at"`
	State     string    `json:"state"`
}

// EndCallRequest payload; phone and call type are checked by the call session manager.
type EndCallRequest struct {
	Phone        string `json:"phone"`
	CustomerID   *int64 `json:"customer_id" validate:"omitempty,gt=0"`
	CallTypeID   int64  `json:"call_type_id"`
	CallTopicID  *int64 `json:"call_topic_id" validate:"omitempty,gt=0"`
	CallResultID *int64 `json:"call_result_id" validate:"omitempty,gt=0"`
	Notes        string `json:"notes" validate:"max=4000"`
}

// EndCallResponse reports what the call end committed.
type EndCallResponse struct {
	CallID           int64    `json:"call_id"`
	DurationSec      int      `json:"duration_sec"`
	ComplaintCreated bool     `json:"complaint_created"`
	ComplaintID      *int64   `json:"complaint_id,omitempty"`
	CustomerID       *int64   `json:"customer_id,omitempty"`
	Warnings         []string `json:"warnings"`
}

// LookupItem is an id/name pair.
type LookupItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CallTopicItem adds the complaint classification to a topic.
type CallTopicItem struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	IsComplaintTopic bool   `json:"is_complaint_topic"`
}

// LookupsResponse lists reference data for the call screen.
type LookupsResponse struct {
	CallTypes   []LookupItem    `json:"call_types"`
	CallTopics  []CallTopicItem `json:"call_topics"`
	CallResults []LookupItem    `json:"call_results"`
	Categories  []LookupItem    `json:"categories"`
}
