package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// ComplaintQuery narrows complaint listings.
type ComplaintQuery struct {
	CustomerID      *int64
	AssignedStaffID *int64
	Active          *bool
	Limit           int
	Offset          int
}

// ComplaintRepository persists complaints, their text and audit trail.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	CreateText(ctx context.Context, text *domain.ComplaintText) error
	// GetForUpdate locks the complaint row for the rest of the unit.
	GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error)
	UpdateStatus(ctx context.Context, id, statusID int64, isActive bool) error
	MarkTextClosed(ctx context.Context, complaintID int64, at time.Time) error
	TouchText(ctx context.Context, complaintID int64, at time.Time) error
	AppendAction(ctx context.Context, action *domain.ComplaintAction) error
	ListActions(ctx context.Context, complaintID int64) ([]domain.ComplaintAction, error)
	GetView(ctx context.Context, id int64) (*domain.ComplaintView, error)
	List(ctx context.Context, q ComplaintQuery) ([]domain.ComplaintView, error)
	CountActive(ctx context.Context) (int, error)
	ListCriticalActive(ctx context.Context, limit int) ([]domain.ComplaintView, error)
}

type complaintRepository struct {
	q querier
}

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (customer_id, product_id, category_id, source_id, call_id,
                                status_id, priority_id, assigned_staff_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	err := r.q.QueryRow(ctx, query,
		c.CustomerID,
		c.ProductID,
		c.CategoryID,
		c.SourceID,
		c.CallID,
		c.StatusID,
		c.PriorityID,
		c.AssignedStaffID,
		c.IsActive,
	).Scan(&c.ID)
	return mapWriteErr(err)
}

func (r *complaintRepository) CreateText(ctx context.Context, t *domain.ComplaintText) error {
	const query = `
        INSERT INTO complaint_texts (complaint_id, title, description, created_at, last_updated_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	err := r.q.QueryRow(ctx, query, t.ComplaintID, t.Title, t.Description, t.CreatedAt, t.LastUpdatedAt).Scan(&t.ID)
	return mapWriteErr(err)
}

func (r *complaintRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error) {
	const query = `
        SELECT id, customer_id, product_id, category_id, source_id, call_id,
               status_id, priority_id, assigned_staff_id, is_active
        FROM complaints WHERE id=$1
        FOR UPDATE`
	var c domain.Complaint
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.CustomerID,
		&c.ProductID,
		&c.CategoryID,
		&c.SourceID,
		&c.CallID,
		&c.StatusID,
		&c.PriorityID,
		&c.AssignedStaffID,
		&c.IsActive,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id, statusID int64, isActive bool) error {
	const query = `UPDATE complaints SET status_id=$1, is_active=$2 WHERE id=$3`
	return execOne(ctx, r.q, query, statusID, isActive, id)
}

func (r *complaintRepository) MarkTextClosed(ctx context.Context, complaintID int64, at time.Time) error {
	const query = `UPDATE complaint_texts SET closed_at=$1, last_updated_at=$1 WHERE complaint_id=$2`
	return execOne(ctx, r.q, query, at, complaintID)
}

func (r *complaintRepository) TouchText(ctx context.Context, complaintID int64, at time.Time) error {
	const query = `UPDATE complaint_texts SET last_updated_at=$1 WHERE complaint_id=$2`
	return execOne(ctx, r.q, query, at, complaintID)
}

func (r *complaintRepository) AppendAction(ctx context.Context, a *domain.ComplaintAction) error {
	const query = `
        INSERT INTO complaint_actions (complaint_id, old_status_id, new_status_id, performed_by_id, action_type, action_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := r.q.QueryRow(ctx, query,
		a.ComplaintID,
		a.OldStatusID,
		a.NewStatusID,
		a.PerformedByID,
		a.ActionType,
		a.ActionDate,
	).Scan(&a.ID)
	return mapWriteErr(err)
}

func (r *complaintRepository) ListActions(ctx context.Context, complaintID int64) ([]domain.ComplaintAction, error) {
	const query = `
        SELECT id, complaint_id, old_status_id, new_status_id, performed_by_id, action_type, action_date
        FROM complaint_actions WHERE complaint_id=$1
        ORDER BY action_date, id`
	rows, err := r.q.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.ComplaintAction
	for rows.Next() {
		var a domain.ComplaintAction
		if err := rows.Scan(&a.ID, &a.ComplaintID, &a.OldStatusID, &a.NewStatusID, &a.PerformedByID, &a.ActionType, &a.ActionDate); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

const complaintViewSelect = `
        SELECT c.id, c.customer_id, c.product_id, c.category_id, c.source_id, c.call_id,
               c.status_id, c.priority_id, c.assigned_staff_id, c.is_active,
               t.title, t.description, t.created_at, t.last_updated_at, t.closed_at,
               s.name, p.name, p.rank, cat.name, pr.product_code,
               TRIM(cu.first_name || ' ' || cu.last_name),
               TRIM(st.first_name || ' ' || st.last_name)
        FROM complaints c
        JOIN complaint_texts t ON t.complaint_id = c.id
        JOIN complaint_statuses s ON s.id = c.status_id
        JOIN complaint_priorities p ON p.id = c.priority_id
        JOIN customers cu ON cu.id = c.customer_id
        JOIN staff st ON st.id = c.assigned_staff_id
        LEFT JOIN complaint_categories cat ON cat.id = c.category_id
        LEFT JOIN products pr ON pr.id = c.product_id`

func (r *complaintRepository) GetView(ctx context.Context, id int64) (*domain.ComplaintView, error) {
	rows, err := r.q.Query(ctx, complaintViewSelect+` WHERE c.id=$1`, id)
	if err != nil {
		return nil, err
	}
	views, err := scanComplaintViews(rows)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &views[0], nil
}

func (r *complaintRepository) List(ctx context.Context, q ComplaintQuery) ([]domain.ComplaintView, error) {
	clauses := []string{"1=1"}
	args := []any{}
	idx := 1
	if q.CustomerID != nil {
		clauses = append(clauses, fmt.Sprintf("c.customer_id=$%d", idx))
		args = append(args, *q.CustomerID)
		idx++
	}
	if q.AssignedStaffID != nil {
		clauses = append(clauses, fmt.Sprintf("c.assigned_staff_id=$%d", idx))
		args = append(args, *q.AssignedStaffID)
		idx++
	}
	if q.Active != nil {
		clauses = append(clauses, fmt.Sprintf("c.is_active=$%d", idx))
		args = append(args, *q.Active)
		idx++
	}

	query := complaintViewSelect + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY t.created_at DESC, c.id DESC"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, q.Limit)
		idx++
	}
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, q.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanComplaintViews(rows)
}

func (r *complaintRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE is_active`).Scan(&n)
	return n, err
}

func (r *complaintRepository) ListCriticalActive(ctx context.Context, limit int) ([]domain.ComplaintView, error) {
	query := complaintViewSelect + ` WHERE c.is_active ORDER BY p.rank DESC, t.created_at ASC, c.id ASC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanComplaintViews(rows)
}

func scanComplaintViews(rows pgx.Rows) ([]domain.ComplaintView, error) {
	defer rows.Close()
	var views []domain.ComplaintView
	for rows.Next() {
		var v domain.ComplaintView
		if err := rows.Scan(
			&v.ID,
			&v.CustomerID,
			&v.ProductID,
			&v.CategoryID,
			&v.SourceID,
			&v.CallID,
			&v.StatusID,
			&v.PriorityID,
			&v.AssignedStaffID,
			&v.IsActive,
			&v.Title,
			&v.Description,
			&v.CreatedAt,
			&v.LastUpdatedAt,
			&v.ClosedAt,
			&v.StatusName,
			&v.PriorityName,
			&v.PriorityRank,
			&v.CategoryName,
			&v.ProductCode,
			&v.CustomerName,
			&v.StaffName,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
