package domain

import (
	"strings"
	"time"
)

// Gender is stored as a single letter.
type Gender string

const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
	GenderOther  Gender = "O"
)

// ParseGender maps free input onto a stored gender, defaulting to Other.
func ParseGender(raw string) Gender {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "F", "FEMALE", "K", "KADIN":
		return GenderFemale
	case "M", "MALE", "E", "ERKEK":
		return GenderMale
	default:
		return GenderOther
	}
}

// Customer is the person calling in or filing complaints.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Gender    Gender
	CreatedAt time.Time
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// CustomerContact is 1:1 with Customer.
type CustomerContact struct {
	CustomerID int64
	Email      string
	Phone      string
}

// CustomerAddress is 1:1 with Customer; every field is optional.
type CustomerAddress struct {
	CustomerID  int64
	City        *string
	Country     *string
	AddressLine *string
	PostalCode  *string
}

// CustomerCredential is the self-service login of a customer.
type CustomerCredential struct {
	ID           int64
	CustomerID   int64
	Username     string
	PasswordHash string
	Email        string
}

// CustomerProfile aggregates the customer rows for read views.
type CustomerProfile struct {
	Customer Customer
	Contact  CustomerContact
	Address  *CustomerAddress
	Username string
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
