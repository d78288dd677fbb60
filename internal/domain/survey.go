package domain

import "time"

// Rating bounds for satisfaction surveys.
const (
	MinRating = 1
	MaxRating = 5
)

// SatisfactionSurvey is the single rating a customer leaves on a complaint.
type SatisfactionSurvey struct {
	ID          int64
	ComplaintID int64
	CallID      *int64
	Rating      int
	CreatedAt   time.Time
}
