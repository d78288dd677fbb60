package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/session"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// WarningComplaintWithoutCustomer is reported when a complaint topic was
// chosen for a caller nobody could identify.
const WarningComplaintWithoutCustomer = "complaint topic selected but no customer linked"

// CallSessionManager drives a call screen from open to end.
type CallSessionManager struct {
	store      repository.Store
	sessions   session.Store
	complaints *ComplaintService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      Clock
}

// CallSessionDependencies bundles collaborators.
type CallSessionDependencies struct {
	Store      repository.Store
	Sessions   session.Store
	Complaints *ComplaintService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// EndCallInput is what the staff member entered on the call screen.
type EndCallInput struct {
	Phone        string
	CustomerID   *int64
	CallTypeID   int64
	CallTopicID  *int64
	CallResultID *int64
	Notes        string
}

// EndCallResult summarises a committed call.
type EndCallResult struct {
	CallID           int64
	DurationSec      int
	ComplaintCreated bool
	ComplaintID      *int64
	CustomerID       *int64
	Warnings         []string
}

// NewCallSessionManager constructs the manager.
func NewCallSessionManager(deps CallSessionDependencies) *CallSessionManager {
	return &CallSessionManager{
		store:      deps.Store,
		sessions:   deps.Sessions,
		complaints: deps.Complaints,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		clock:      clockOrNow(deps.Clock),
	}
}

// Start opens a call session for staffID and captures its start time.
func (m *CallSessionManager) Start(ctx context.Context, staffID int64) (*domain.CallSession, error) {
	s := &domain.CallSession{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		StartedAt: m.clock(),
		State:     domain.SessionStarted,
	}
	if err := m.sessions.Save(ctx, s); err != nil {
		return nil, apperrors.NewPersistenceFailed("start call session", err)
	}
	m.logger.Info("call session started", zap.String("session_id", s.ID), zap.Int64("staff_id", staffID))
	return s, nil
}

// End records the call, and a complaint when the topic calls for one, as a
// single unit. A failed unit leaves the session open for another attempt.
func (m *CallSessionManager) End(ctx context.Context, sessionID string, staffID int64, in EndCallInput) (*EndCallResult, error) {
	if err := ValidatePhone(in.Phone); err != nil {
		return nil, err
	}
	if in.CallTypeID <= 0 {
		return nil, apperrors.NewValidationError(apperrors.ReasonMissingCallType, "call type is required", nil)
	}

	current, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, m.sessionError(sessionID, err)
	}
	if current.StaffID != staffID {
		return nil, apperrors.NewForbidden("call session belongs to another staff member")
	}
	sess, err := m.sessions.Transition(ctx, sessionID, domain.SessionStarted, domain.SessionEnding)
	if err != nil {
		return nil, m.sessionError(sessionID, err)
	}

	endedAt := m.clock()
	result := &EndCallResult{DurationSec: domain.CallDuration(sess.StartedAt, endedAt)}
	var complaint *domain.Complaint

	err = m.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		lookups := tx.Lookups()
		if _, err := lookups.CallType(ctx, in.CallTypeID); err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewValidationError(apperrors.ReasonMissingCallType, "call type does not exist",
					map[string]any{"call_type_id": in.CallTypeID})
			}
			return err
		}
		var topic *domain.CallTopic
		if in.CallTopicID != nil {
			t, err := lookups.CallTopic(ctx, *in.CallTopicID)
			if err != nil {
				if repository.IsNotFound(err) {
					return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "call topic does not exist",
						map[string]any{"call_topic_id": *in.CallTopicID})
				}
				return err
			}
			topic = t
		}
		if in.CallResultID != nil {
			if _, err := lookups.CallResult(ctx, *in.CallResultID); err != nil {
				if repository.IsNotFound(err) {
					return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "call result does not exist",
						map[string]any{"call_result_id": *in.CallResultID})
				}
				return err
			}
		}

		customer, err := m.resolveCaller(ctx, tx, in)
		if err != nil {
			return err
		}

		call := &domain.Call{
			StaffID:      staffID,
			CallTypeID:   in.CallTypeID,
			CallTopicID:  in.CallTopicID,
			CallResultID: in.CallResultID,
		}
		if customer != nil {
			call.CustomerID = &customer.ID
		}
		if err := tx.Calls().Create(ctx, call); err != nil {
			return err
		}

		if topic != nil && topic.ClassifiesAsComplaint() {
			if customer == nil {
				result.Warnings = append(result.Warnings, WarningComplaintWithoutCustomer)
			} else {
				c, err := m.complaints.CreateFromCall(ctx, tx, FromCallInput{
					CustomerID: customer.ID,
					CallID:     call.ID,
					StaffID:    staffID,
					Notes:      in.Notes,
				})
				if err != nil {
					return err
				}
				complaint = c
			}
		}

		detail := &domain.CallDetail{
			CallID:      call.ID,
			Phone:       in.Phone,
			StartTime:   sess.StartedAt,
			EndTime:     endedAt,
			DurationSec: result.DurationSec,
			Notes:       nilIfBlank(in.Notes),
		}
		if complaint != nil {
			detail.RelatedComplaintID = &complaint.ID
		}
		if err := tx.Calls().CreateDetail(ctx, detail); err != nil {
			return err
		}

		result.CallID = call.ID
		result.CustomerID = call.CustomerID
		return nil
	})
	// The request may have timed out by now; the session must still leave ENDING.
	settle := context.WithoutCancel(ctx)
	if err != nil {
		if _, revertErr := m.sessions.Transition(settle, sessionID, domain.SessionEnding, domain.SessionStarted); revertErr != nil {
			m.logger.Warn("call session revert failed", zap.String("session_id", sessionID), zap.Error(revertErr))
		}
		m.logger.Warn("call end rolled back", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.MapError("end call", err)
	}

	if _, err := m.sessions.Transition(settle, sessionID, domain.SessionEnding, domain.SessionEnded); err != nil {
		m.logger.Warn("call session finalize failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	if complaint != nil {
		result.ComplaintCreated = true
		result.ComplaintID = &complaint.ID
	}
	m.logger.Info("call ended",
		zap.String("session_id", sessionID),
		zap.Int64("call_id", result.CallID),
		zap.Int("duration_sec", result.DurationSec),
		zap.Bool("complaint_created", result.ComplaintCreated))

	payload := events.CallEndedPayload{
		CallID:      result.CallID,
		SessionID:   sessionID,
		CustomerID:  result.CustomerID,
		DurationSec: result.DurationSec,
		ComplaintID: result.ComplaintID,
	}
	if len(result.Warnings) > 0 {
		payload.Warning = result.Warnings[0]
	}
	publishEvent(ctx, m.dispatcher, m.logger, m.clock(), events.Event{
		Type:    events.EventCallEnded,
		Actor:   events.StaffActor(staffID),
		Payload: payload,
	})
	if complaint != nil {
		m.complaints.publishCreated(ctx, events.StaffActor(staffID), complaint, events.OriginCall)
	}
	return result, nil
}

// resolveCaller prefers an explicitly linked customer and falls back to the
// phone on file. A nil customer means the caller is unknown.
func (m *CallSessionManager) resolveCaller(ctx context.Context, tx repository.Tx, in EndCallInput) (*domain.Customer, error) {
	if in.CustomerID != nil {
		c, err := tx.Customers().GetByID(ctx, *in.CustomerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperrors.NewNotFound(apperrors.ReasonCustomerNotFound, "customer",
					map[string]any{"customer_id": *in.CustomerID})
			}
			return nil, err
		}
		return c, nil
	}
	c, err := tx.Customers().FindByPhone(ctx, in.Phone)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (m *CallSessionManager) sessionError(sessionID string, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return apperrors.NewNotFound(apperrors.ReasonSessionNotFound, "call session", map[string]any{"session_id": sessionID})
	case errors.Is(err, session.ErrStateMismatch):
		return apperrors.NewConflict(apperrors.ReasonAlreadyEnded, "call session already ended", map[string]any{"session_id": sessionID})
	default:
		return apperrors.NewPersistenceFailed("load call session", err)
	}
}
