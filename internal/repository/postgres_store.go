package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// querier is satisfied by pgx.Tx and *pgxpool.Pool.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore runs atomic units as pgx transactions.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// WithinTx runs fn in a read-write transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn TxFunc) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// View runs fn in a read-only transaction.
func (s *PostgresStore) View(ctx context.Context, fn TxFunc) error {
	return s.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (s *PostgresStore) run(ctx context.Context, opts pgx.TxOptions, fn TxFunc) (err error) {
	if s == nil || s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txCtx := context.WithoutCancel(ctx)
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(txCtx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(txCtx)
		}
	}()

	if err = fn(txCtx, pgTx{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(txCtx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	q querier
}

func (t pgTx) Customers() CustomerRepository   { return &customerRepository{q: t.q} }
func (t pgTx) Calls() CallRepository           { return &callRepository{q: t.q} }
func (t pgTx) Complaints() ComplaintRepository { return &complaintRepository{q: t.q} }
func (t pgTx) Surveys() SurveyRepository       { return &surveyRepository{q: t.q} }
func (t pgTx) Lookups() LookupRepository       { return &lookupRepository{q: t.q} }
func (t pgTx) Staff() StaffRepository          { return &staffRepository{q: t.q} }

// mapWriteErr turns unique violations into ErrDuplicate, keeping the
// constraint name for diagnostics.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func execOne(ctx context.Context, q querier, query string, args ...any) error {
	cmd, err := q.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
