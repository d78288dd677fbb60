package dto

// CustomerResponse is the short customer card.
type CustomerResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
}

// AddressResponse mirrors the optional address columns.
type AddressResponse struct {
	City        *string `json:"city"`
	Country     *string `json:"country"`
	AddressLine *string `json:"address_line"`
	PostalCode  *string `json:"postal_code"`
}

// CustomerProfileResponse is the customer's own profile.
type CustomerProfileResponse struct {
	CustomerResponse
	Username string           `json:"username"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Address  *AddressResponse `json:"address"`
}
