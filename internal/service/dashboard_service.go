package service

import (
	"context"
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

const criticalComplaintLimit = 5

// StaffDashboard holds the simple counts shown on a staff member's home screen.
type StaffDashboard struct {
	CallsToday         int
	OpenComplaints     int
	CriticalComplaints []domain.ComplaintView
}

// DashboardService reads the staff dashboard counts.
type DashboardService struct {
	store repository.Store
	clock Clock
}

// NewDashboardService constructs the service.
func NewDashboardService(store repository.Store, clock Clock) *DashboardService {
	return &DashboardService{store: store, clock: clockOrNow(clock)}
}

// ForStaff returns today's calls by staffID, the open complaint count and the
// most urgent active complaints.
func (s *DashboardService) ForStaff(ctx context.Context, staffID int64) (*StaffDashboard, error) {
	now := s.clock()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := &StaffDashboard{}
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		calls, err := tx.Calls().CountForStaffSince(ctx, staffID, midnight)
		if err != nil {
			return err
		}
		open, err := tx.Complaints().CountActive(ctx)
		if err != nil {
			return err
		}
		critical, err := tx.Complaints().ListCriticalActive(ctx, criticalComplaintLimit)
		if err != nil {
			return err
		}
		out.CallsToday = calls
		out.OpenComplaints = open
		out.CriticalComplaints = critical
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("load dashboard", err)
	}
	if out.CriticalComplaints == nil {
		out.CriticalComplaints = []domain.ComplaintView{}
	}
	return out, nil
}
