package repository

import (
	"context"
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// CallRepository persists finished calls.
type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) error
	CreateDetail(ctx context.Context, detail *domain.CallDetail) error
	GetDetailByCallID(ctx context.Context, callID int64) (*domain.CallDetail, error)
	CountForStaffSince(ctx context.Context, staffID int64, since time.Time) (int, error)
}

type callRepository struct {
	q querier
}

func (r *callRepository) Create(ctx context.Context, call *domain.Call) error {
	const query = `
        INSERT INTO calls (customer_id, staff_id, call_type_id, call_topic_id, call_result_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		call.CustomerID,
		call.StaffID,
		call.CallTypeID,
		call.CallTopicID,
		call.CallResultID,
	).Scan(&call.ID, &call.CreatedAt)
	return mapWriteErr(err)
}

func (r *callRepository) CreateDetail(ctx context.Context, detail *domain.CallDetail) error {
	const query = `
        INSERT INTO call_details (call_id, phone_number, start_time, end_time, duration_sec, related_complaint_id, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	err := r.q.QueryRow(ctx, query,
		detail.CallID,
		detail.Phone,
		detail.StartTime,
		detail.EndTime,
		detail.DurationSec,
		detail.RelatedComplaintID,
		detail.Notes,
	).Scan(&detail.ID)
	return mapWriteErr(err)
}

func (r *callRepository) GetDetailByCallID(ctx context.Context, callID int64) (*domain.CallDetail, error) {
	const query = `
        SELECT id, call_id, phone_number, start_time, end_time, duration_sec, related_complaint_id, notes
        FROM call_details WHERE call_id=$1`
	var d domain.CallDetail
	if err := r.q.QueryRow(ctx, query, callID).Scan(
		&d.ID,
		&d.CallID,
		&d.Phone,
		&d.StartTime,
		&d.EndTime,
		&d.DurationSec,
		&d.RelatedComplaintID,
		&d.Notes,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *callRepository) CountForStaffSince(ctx context.Context, staffID int64, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM calls WHERE staff_id=$1 AND created_at >= $2`
	var n int
	err := r.q.QueryRow(ctx, query, staffID, since).Scan(&n)
	return n, err
}
