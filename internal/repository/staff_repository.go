package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// StaffRepository reads the staff directory.
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.StaffMember, error)
	ListActiveIDs(ctx context.Context) ([]int64, error)
	GetLoginByUsername(ctx context.Context, username string) (*domain.StaffLogin, error)
}

type staffRepository struct {
	q querier
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.StaffMember, error) {
	const query = `SELECT id, first_name, last_name, active_flag, created_at FROM staff WHERE id=$1`
	var s domain.StaffMember
	if err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Active, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *staffRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM staff WHERE active_flag ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *staffRepository) GetLoginByUsername(ctx context.Context, username string) (*domain.StaffLogin, error) {
	const query = `SELECT staff_id, username, password_hash FROM staff_logins WHERE username=$1`
	var l domain.StaffLogin
	if err := r.q.QueryRow(ctx, query, username).Scan(&l.StaffID, &l.Username, &l.PasswordHash); err != nil {
		return nil, err
	}
	return &l, nil
}
