package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// LookupRepository reads reference data. The core never writes it.
type LookupRepository interface {
	CallType(ctx context.Context, id int64) (*domain.CallType, error)
	CallTopic(ctx context.Context, id int64) (*domain.CallTopic, error)
	CallResult(ctx context.Context, id int64) (*domain.CallResult, error)
	Category(ctx context.Context, id int64) (*domain.ComplaintCategory, error)
	StatusByID(ctx context.Context, id int64) (*domain.ComplaintStatus, error)
	StatusByName(ctx context.Context, name string) (*domain.ComplaintStatus, error)
	// LowestStatus returns the status with the smallest id.
	LowestStatus(ctx context.Context) (*domain.ComplaintStatus, error)
	PriorityByName(ctx context.Context, name string) (*domain.ComplaintPriority, error)
	// LowestRankPriority returns the least urgent priority.
	LowestRankPriority(ctx context.Context) (*domain.ComplaintPriority, error)
	ProductByCode(ctx context.Context, code string) (*domain.Product, error)
	ListCallTypes(ctx context.Context) ([]domain.CallType, error)
	ListCallTopics(ctx context.Context) ([]domain.CallTopic, error)
	ListCallResults(ctx context.Context) ([]domain.CallResult, error)
	ListCategories(ctx context.Context) ([]domain.ComplaintCategory, error)
}

type lookupRepository struct {
	q querier
}

func (r *lookupRepository) CallType(ctx context.Context, id int64) (*domain.CallType, error) {
	var v domain.CallType
	if err := r.q.QueryRow(ctx, `SELECT id, name FROM call_types WHERE id=$1`, id).Scan(&v.ID, &v.Name); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *lookupRepository) CallTopic(ctx context.Context, id int64) (*domain.CallTopic, error) {
	var v domain.CallTopic
	err := r.q.QueryRow(ctx, `SELECT id, name, is_complaint_topic FROM call_topics WHERE id=$1`, id).
		Scan(&v.ID, &v.Name, &v.IsComplaintTopic)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *lookupRepository) CallResult(ctx context.Context, id int64) (*domain.CallResult, error) {
	var v domain.CallResult
	if err := r.q.QueryRow(ctx, `SELECT id, name FROM call_results WHERE id=$1`, id).Scan(&v.ID, &v.Name); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *lookupRepository) Category(ctx context.Context, id int64) (*domain.ComplaintCategory, error) {
	var v domain.ComplaintCategory
	if err := r.q.QueryRow(ctx, `SELECT id, name FROM complaint_categories WHERE id=$1`, id).Scan(&v.ID, &v.Name); err != nil {
		return nil, err
	}
	return &v, nil
}

const statusColumns = `SELECT id, name, is_terminal FROM complaint_statuses`

func (r *lookupRepository) StatusByID(ctx context.Context, id int64) (*domain.ComplaintStatus, error) {
	return scanStatus(r.q.QueryRow(ctx, statusColumns+` WHERE id=$1`, id))
}

func (r *lookupRepository) StatusByName(ctx context.Context, name string) (*domain.ComplaintStatus, error) {
	return scanStatus(r.q.QueryRow(ctx, statusColumns+` WHERE name=$1 ORDER BY id LIMIT 1`, name))
}

func (r *lookupRepository) LowestStatus(ctx context.Context) (*domain.ComplaintStatus, error) {
	return scanStatus(r.q.QueryRow(ctx, statusColumns+` ORDER BY id LIMIT 1`))
}

func scanStatus(row pgx.Row) (*domain.ComplaintStatus, error) {
	var v domain.ComplaintStatus
	if err := row.Scan(&v.ID, &v.Name, &v.IsTerminal); err != nil {
		return nil, err
	}
	return &v, nil
}

const priorityColumns = `SELECT id, name, rank FROM complaint_priorities`

func (r *lookupRepository) PriorityByName(ctx context.Context, name string) (*domain.ComplaintPriority, error) {
	return scanPriority(r.q.QueryRow(ctx, priorityColumns+` WHERE name=$1 ORDER BY id LIMIT 1`, name))
}

func (r *lookupRepository) LowestRankPriority(ctx context.Context) (*domain.ComplaintPriority, error) {
	return scanPriority(r.q.QueryRow(ctx, priorityColumns+` ORDER BY rank ASC, id ASC LIMIT 1`))
}

func scanPriority(row pgx.Row) (*domain.ComplaintPriority, error) {
	var v domain.ComplaintPriority
	if err := row.Scan(&v.ID, &v.Name, &v.Rank); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *lookupRepository) ProductByCode(ctx context.Context, code string) (*domain.Product, error) {
	var v domain.Product
	err := r.q.QueryRow(ctx, `SELECT id, product_code, name FROM products WHERE product_code=$1`, code).
		Scan(&v.ID, &v.Code, &v.Name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *lookupRepository) ListCallTypes(ctx context.Context) ([]domain.CallType, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM call_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CallType, error) {
		var v domain.CallType
		err := row.Scan(&v.ID, &v.Name)
		return v, err
	})
}

func (r *lookupRepository) ListCallTopics(ctx context.Context) ([]domain.CallTopic, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, is_complaint_topic FROM call_topics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CallTopic, error) {
		var v domain.CallTopic
		err := row.Scan(&v.ID, &v.Name, &v.IsComplaintTopic)
		return v, err
	})
}

func (r *lookupRepository) ListCallResults(ctx context.Context) ([]domain.CallResult, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM call_results ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CallResult, error) {
		var v domain.CallResult
		err := row.Scan(&v.ID, &v.Name)
		return v, err
	})
}

func (r *lookupRepository) ListCategories(ctx context.Context) ([]domain.ComplaintCategory, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM complaint_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ComplaintCategory, error) {
		var v domain.ComplaintCategory
		err := row.Scan(&v.ID, &v.Name)
		return v, err
	})
}
