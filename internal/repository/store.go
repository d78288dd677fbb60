package repository

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when a write hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// TxFunc is the body of an atomic unit. It must only use the repositories
// handed to it through tx and the context it receives.
type TxFunc func(ctx context.Context, tx Tx) error

// Store runs atomic units against the backing database.
//
// WithinTx commits when fn returns nil and rolls every write back otherwise.
// Once the unit has begun it is detached from the caller's cancellation and
// runs to commit or rollback. View runs fn read-only.
type Store interface {
	WithinTx(ctx context.Context, fn TxFunc) error
	View(ctx context.Context, fn TxFunc) error
}

// Tx exposes the repositories bound to one atomic unit.
type Tx interface {
	Customers() CustomerRepository
	Calls() CallRepository
	Complaints() ComplaintRepository
	Surveys() SurveyRepository
	Lookups() LookupRepository
	Staff() StaffRepository
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
