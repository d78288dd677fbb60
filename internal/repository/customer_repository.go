package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// CustomerRepository persists customers and the rows hanging off them.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	CreateContact(ctx context.Context, contact *domain.CustomerContact) error
	CreateAddress(ctx context.Context, address *domain.CustomerAddress) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateCredential(ctx context.Context, cred *domain.CustomerCredential) error
	GetCredentialByUsername(ctx context.Context, username string) (*domain.CustomerCredential, error)
	GetCredentialByCustomerID(ctx context.Context, customerID int64) (*domain.CustomerCredential, error)
	UpdatePasswordHash(ctx context.Context, customerID int64, hash string) error
	GetProfile(ctx context.Context, customerID int64) (*domain.CustomerProfile, error)
}

type customerRepository struct {
	q querier
}

const customerColumns = `c.id, c.first_name, c.last_name, c.gender, c.created_at`

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.id=$1`
	return scanCustomer(r.q.QueryRow(ctx, query, id))
}

func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	query := `
        SELECT ` + customerColumns + `
        FROM customers c
        JOIN customer_contacts cc ON cc.customer_id = c.id
        WHERE cc.phone=$1
        ORDER BY c.id
        LIMIT 1`
	return scanCustomer(r.q.QueryRow(ctx, query, phone))
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Gender, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (first_name, last_name, gender)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query, customer.FirstName, customer.LastName, customer.Gender).
		Scan(&customer.ID, &customer.CreatedAt)
}

func (r *customerRepository) CreateContact(ctx context.Context, contact *domain.CustomerContact) error {
	const query = `INSERT INTO customer_contacts (customer_id, email, phone) VALUES ($1,$2,$3)`
	_, err := r.q.Exec(ctx, query, contact.CustomerID, contact.Email, contact.Phone)
	return mapWriteErr(err)
}

func (r *customerRepository) CreateAddress(ctx context.Context, address *domain.CustomerAddress) error {
	const query = `
        INSERT INTO customer_addresses (customer_id, city, country, address_line, postal_code)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.q.Exec(ctx, query, address.CustomerID, address.City, address.Country, address.AddressLine, address.PostalCode)
	return mapWriteErr(err)
}

func (r *customerRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM customer_users WHERE username=$1)`
	var exists bool
	err := r.q.QueryRow(ctx, query, username).Scan(&exists)
	return exists, err
}

func (r *customerRepository) CreateCredential(ctx context.Context, cred *domain.CustomerCredential) error {
	const query = `
        INSERT INTO customer_users (customer_id, username, password_hash, email)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	err := r.q.QueryRow(ctx, query, cred.CustomerID, cred.Username, cred.PasswordHash, cred.Email).Scan(&cred.ID)
	return mapWriteErr(err)
}

const credentialColumns = `id, customer_id, username, password_hash, email`

func (r *customerRepository) GetCredentialByUsername(ctx context.Context, username string) (*domain.CustomerCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM customer_users WHERE username=$1`
	return scanCredential(r.q.QueryRow(ctx, query, username))
}

func (r *customerRepository) GetCredentialByCustomerID(ctx context.Context, customerID int64) (*domain.CustomerCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM customer_users WHERE customer_id=$1`
	return scanCredential(r.q.QueryRow(ctx, query, customerID))
}

func scanCredential(row pgx.Row) (*domain.CustomerCredential, error) {
	var cred domain.CustomerCredential
	if err := row.Scan(&cred.ID, &cred.CustomerID, &cred.Username, &cred.PasswordHash, &cred.Email); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *customerRepository) UpdatePasswordHash(ctx context.Context, customerID int64, hash string) error {
	const query = `UPDATE customer_users SET password_hash=$1 WHERE customer_id=$2`
	return execOne(ctx, r.q, query, hash, customerID)
}

func (r *customerRepository) GetProfile(ctx context.Context, customerID int64) (*domain.CustomerProfile, error) {
	const query = `
        SELECT c.id, c.first_name, c.last_name, c.gender, c.created_at,
               COALESCE(cc.email, ''), COALESCE(cc.phone, ''),
               ca.customer_id, ca.city, ca.country, ca.address_line, ca.postal_code,
               COALESCE(cu.username, '')
        FROM customers c
        LEFT JOIN customer_contacts cc ON cc.customer_id = c.id
        LEFT JOIN customer_addresses ca ON ca.customer_id = c.id
        LEFT JOIN customer_users cu ON cu.customer_id = c.id
        WHERE c.id=$1`

	var (
		p         domain.CustomerProfile
		addressID *int64
		addr      domain.CustomerAddress
	)
	err := r.q.QueryRow(ctx, query, customerID).Scan(
		&p.Customer.ID,
		&p.Customer.FirstName,
		&p.Customer.LastName,
		&p.Customer.Gender,
		&p.Customer.CreatedAt,
		&p.Contact.Email,
		&p.Contact.Phone,
		&addressID,
		&addr.City,
		&addr.Country,
		&addr.AddressLine,
		&addr.PostalCode,
		&p.Username,
	)
	if err != nil {
		return nil, err
	}
	p.Contact.CustomerID = p.Customer.ID
	if addressID != nil {
		addr.CustomerID = *addressID
		p.Address = &addr
	}
	return &p, nil
}

// IsNotFound reports whether err signals a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
