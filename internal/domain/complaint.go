package domain

import "time"

// Complaint is the lifecycle record; never deleted.
type Complaint struct {
	ID              int64
	CustomerID      int64
	ProductID       *int64
	CategoryID      *int64
	SourceID        int64
	CallID          *int64
	StatusID        int64
	PriorityID      int64
	AssignedStaffID int64
	IsActive        bool
}

// ComplaintText is 1:1 with Complaint.
type ComplaintText struct {
	ID            int64
	ComplaintID   int64
	Title         string
	Description   string
	CreatedAt     time.Time
	LastUpdatedAt time.Time
	ClosedAt      *time.Time
}

// ActionTypeClose marks a staff-initiated close in the audit trail.
const ActionTypeClose = "Close"

// ComplaintAction is an append-only audit row.
type ComplaintAction struct {
	ID            int64
	ComplaintID   int64
	OldStatusID   int64
	NewStatusID   int64
	PerformedByID int64
	ActionType    string
	ActionDate    time.Time
}

// ComplaintView is the joined read model used by lists and detail screens.
type ComplaintView struct {
	Complaint
	Title         string
	Description   string
	CreatedAt     time.Time
	LastUpdatedAt time.Time
	ClosedAt      *time.Time
	StatusName    string
	PriorityName  string
	PriorityRank  int
	CategoryName  *string
	ProductCode   *string
	CustomerName  string
	StaffName     string
}

// ComplaintListFilter selects which complaints a list returns.
type ComplaintListFilter string

const (
	ComplaintFilterAll    ComplaintListFilter = "all"
	ComplaintFilterActive ComplaintListFilter = "active"
	ComplaintFilterClosed ComplaintListFilter = "closed"
)

// ParseComplaintListFilter defaults unknown values to all.
func ParseComplaintListFilter(raw string) ComplaintListFilter {
	switch ComplaintListFilter(raw) {
	case ComplaintFilterActive, ComplaintFilterClosed:
		return ComplaintListFilter(raw)
	default:
		return ComplaintFilterAll
	}
}
