package domain

import "strings"

// CallType classifies a call (inbound, outbound, ...).
type CallType struct {
	ID   int64
	Name string
}

// CallTopic is what the call was about.
type CallTopic struct {
	ID   int64
	Name string
	// IsComplaintTopic is nil for rows seeded before the flag existed.
	IsComplaintTopic *bool
}

// complaintKeywords covers the two operating languages.
var complaintKeywords = []string{"complaint", "şikayet"}

// ClassifiesAsComplaint prefers the explicit flag and only falls back to
// matching the display name when the flag was never set.
func (t CallTopic) ClassifiesAsComplaint() bool {
	if t.IsComplaintTopic != nil {
		return *t.IsComplaintTopic
	}
	return NameSuggestsComplaint(t.Name)
}

// NameSuggestsComplaint is the legacy keyword rule.
func NameSuggestsComplaint(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range complaintKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CallResult is the outcome of a call.
type CallResult struct {
	ID   int64
	Name string
}

// ComplaintStatus is a lookup row; terminal statuses deactivate a complaint.
type ComplaintStatus struct {
	ID         int64
	Name       string
	IsTerminal bool
}

// ComplaintPriority carries a rank where higher means more urgent.
type ComplaintPriority struct {
	ID   int64
	Name string
	Rank int
}

// ComplaintCategory groups complaints by subject.
type ComplaintCategory struct {
	ID   int64
	Name string
}

// ComplaintSource records how a complaint entered the system.
type ComplaintSource struct {
	ID   int64
	Name string
}

// Product is referenced by an external 6-digit code.
type Product struct {
	ID   int64
	Code string
	Name string
}

// Lookups bundles the reference lists shown on the call screen.
type Lookups struct {
	CallTypes   []CallType
	CallTopics  []CallTopic
	CallResults []CallResult
	Categories  []ComplaintCategory
}
