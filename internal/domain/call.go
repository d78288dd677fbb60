package domain

import "time"

// Call is one finished phone conversation handled by a staff member.
type Call struct {
	ID           int64
	CustomerID   *int64
	StaffID      int64
	CallTypeID   int64
	CallTopicID  *int64
	CallResultID *int64
	CreatedAt    time.Time
}

// CallDetail carries timing and notes; written together with its Call.
type CallDetail struct {
	ID                 int64
	CallID             int64
	Phone              string
	StartTime          time.Time
	EndTime            time.Time
	DurationSec        int
	RelatedComplaintID *int64
	Notes              *string
}

// CallDuration returns max(end-start, 0) in whole seconds.
func CallDuration(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// SessionState tracks a call screen from open to end.
type SessionState string

const (
	SessionStarted SessionState = "STARTED"
	SessionEnding  SessionState = "ENDING"
	SessionEnded   SessionState = "ENDED"
)

// CallSession is the in-flight state of one call screen.
type CallSession struct {
	ID        string
	StaffID   int64
	StartedAt time.Time
	State     SessionState
}
