package repository

import (
	"context"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// SurveyRepository persists satisfaction surveys.
type SurveyRepository interface {
	ExistsForComplaint(ctx context.Context, complaintID int64) (bool, error)
	Create(ctx context.Context, survey *domain.SatisfactionSurvey) error
	GetByComplaint(ctx context.Context, complaintID int64) (*domain.SatisfactionSurvey, error)
}

type surveyRepository struct {
	q querier
}

func (r *surveyRepository) ExistsForComplaint(ctx context.Context, complaintID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM satisfaction_surveys WHERE complaint_id=$1)`, complaintID).Scan(&exists)
	return exists, err
}

func (r *surveyRepository) Create(ctx context.Context, s *domain.SatisfactionSurvey) error {
	const query = `
        INSERT INTO satisfaction_surveys (complaint_id, call_id, rating, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	err := r.q.QueryRow(ctx, query, s.ComplaintID, s.CallID, s.Rating, s.CreatedAt).Scan(&s.ID)
	return mapWriteErr(err)
}

func (r *surveyRepository) GetByComplaint(ctx context.Context, complaintID int64) (*domain.SatisfactionSurvey, error) {
	const query = `SELECT id, complaint_id, call_id, rating, created_at FROM satisfaction_surveys WHERE complaint_id=$1`
	var s domain.SatisfactionSurvey
	if err := r.q.QueryRow(ctx, query, complaintID).Scan(&s.ID, &s.ComplaintID, &s.CallID, &s.Rating, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
