package dto

import "time"

// CustomerRegisterRequest payload for customer sign-up and staff-side creation.
type CustomerRegisterRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Gender          string `json:"gender" validate:"omitempty,oneof=F M O"`
	Email           string `json:"email" validate:"required,max=255"`
	Phone           string `json:"phone"`
	City            string `json:"city" validate:"max=100"`
	Country         string `json:"country" validate:"max=100"`
	AddressLine     string `json:"address_line" validate:"max=255"`
	PostalCode      string `json:"postal_code" validate:"max=20"`
	Username        string `json:"username" validate:"required,max=50"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// LoginRequest payload for customer and staff login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	SubjectType string    `json:"subject_type"`
	SubjectID   int64     `json:"subject_id"`
}
