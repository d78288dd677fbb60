package dto

import "time"

// CreateComplaintRequest payload for customer self-service complaints.
type CreateComplaintRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=4000"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	ProductCode string `json:"product_code"`
}

// ComplaintSummary response.
type ComplaintSummary struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	StatusID        int64      `json:"status_id"`
	Priority        string     `json:"priority"`
	PriorityID      int64      `json:"priority_id"`
	Category        *string    `json:"category"`
	ProductCode     *string    `json:"product_code"`
	CustomerID      int64      `json:"customer_id"`
	CustomerName    string     `json:"customer_name"`
	AssignedStaffID int64      `json:"assigned_staff_id"`
	AssignedStaff   string     `json:"assigned_staff"`
	CallID          *int64     `json:"call_id"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	LastUpdatedAt   time.Time  `json:"last_updated_at"`
	ClosedAt        *time.Time `json:"closed_at"`
}

// ComplaintDetailResponse provides full complaint info.
type ComplaintDetailResponse struct {
	ComplaintSummary
	Description string `json:"description"`
}

// ComplaintActionResponse is one audit row.
type ComplaintActionResponse struct {
	ID            int64     `json:"id"`
	ActionType    string    `json:"action_type"`
	OldStatusID   int64     `json:"old_status_id"`
	NewStatusID   int64     `json:"new_status_id"`
	PerformedByID int64     `json:"performed_by_id"`
	ActionDate    time.Time `json:"action_date"`
}

// SurveyRequest payload; the rating range is checked by the survey handler.
type SurveyRequest struct {
	Rating int `json:"rating"`
}

// SurveyResponse is a stored satisfaction rating.
type SurveyResponse struct {
	ID          int64     `json:"id"`
	ComplaintID int64     `json:"complaint_id"`
	CallID      *int64    `json:"call_id"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardResponse holds the staff dashboard counts.
type DashboardResponse struct {
	CallsToday         int                `json:"calls_today"`
	OpenComplaints     int                `json:"open_complaints"`
	CriticalComplaints []ComplaintSummary `json:"critical_complaints"`
}
