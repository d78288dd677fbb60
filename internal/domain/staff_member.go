package domain

import "time"

// StaffMember models a call-center agent.
type StaffMember struct {
	ID        int64
	FirstName string
	LastName  string
	Active    bool
	CreatedAt time.Time
}

// FullName joins first and last name.
func (s StaffMember) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// StaffLogin holds the credentials a staff member signs in with.
type StaffLogin struct {
	StaffID      int64
	Username     string
	PasswordHash string
}
