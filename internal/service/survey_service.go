package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// SurveyService records the one satisfaction rating a complaint may receive.
type SurveyService struct {
	store      repository.Store
	complaints *ComplaintService
	engine     config.EngineConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      Clock
}

// SurveyServiceDependencies bundles collaborators.
type SurveyServiceDependencies struct {
	Store      repository.Store
	Complaints *ComplaintService
	Engine     config.EngineConfig
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewSurveyService constructs the service.
func NewSurveyService(deps SurveyServiceDependencies) *SurveyService {
	return &SurveyService{
		store:      deps.Store,
		complaints: deps.Complaints,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		clock:      clockOrNow(deps.Clock),
	}
}

// Submit stores the customer's rating for a closed complaint and moves the
// complaint to the survey-completed status.
func (s *SurveyService) Submit(ctx context.Context, customerID, complaintID int64, rating int) (*domain.SatisfactionSurvey, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidRating, "rating must be between 1 and 5",
			map[string]any{"rating": rating})
	}

	var (
		survey   *domain.SatisfactionSurvey
		statusID int64
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.Complaints().GetForUpdate(ctx, complaintID)
		if err != nil {
			if repository.IsNotFound(err) {
				return complaintNotFound(complaintID)
			}
			return err
		}
		if c.CustomerID != customerID {
			return complaintNotFound(complaintID)
		}

		exists, err := tx.Surveys().ExistsForComplaint(ctx, complaintID)
		if err != nil {
			return err
		}
		if exists {
			return alreadySubmitted(complaintID)
		}
		if c.IsActive {
			return apperrors.NewConflict(apperrors.ReasonComplaintNotClosed, "complaint must be closed before it is rated",
				map[string]any{"complaint_id": complaintID})
		}

		sv := &domain.SatisfactionSurvey{
			ComplaintID: complaintID,
			CallID:      c.CallID,
			Rating:      rating,
			CreatedAt:   s.clock(),
		}
		if err := tx.Surveys().Create(ctx, sv); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return alreadySubmitted(complaintID)
			}
			return err
		}

		status, err := s.completedStatus(ctx, tx.Lookups())
		if err != nil {
			return err
		}
		if err := s.complaints.ApplyStatus(ctx, tx, c, *status); err != nil {
			return err
		}
		survey = sv
		statusID = status.ID
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("submit survey", err)
	}

	s.logger.Info("survey submitted",
		zap.Int64("complaint_id", complaintID),
		zap.Int("rating", rating),
		zap.Int64("status_id", statusID))
	publishEvent(ctx, s.dispatcher, s.logger, s.clock(), events.Event{
		Type:  events.EventSurveySubmitted,
		Actor: events.CustomerActor(customerID),
		Payload: events.SurveySubmittedPayload{
			ComplaintID: complaintID,
			Rating:      rating,
			StatusID:    statusID,
		},
	})
	return survey, nil
}

// Get returns the survey left on a complaint owned by customerID.
func (s *SurveyService) Get(ctx context.Context, customerID, complaintID int64) (*domain.SatisfactionSurvey, error) {
	var survey *domain.SatisfactionSurvey
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.Complaints().GetView(ctx, complaintID)
		if err != nil {
			if repository.IsNotFound(err) {
				return complaintNotFound(complaintID)
			}
			return err
		}
		if c.CustomerID != customerID {
			return complaintNotFound(complaintID)
		}
		sv, err := tx.Surveys().GetByComplaint(ctx, complaintID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound(apperrors.ReasonSurveyNotFound, "survey", map[string]any{"complaint_id": complaintID})
			}
			return err
		}
		survey = sv
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("get survey", err)
	}
	return survey, nil
}

// completedStatus resolves the configured status name, falling back to the
// status with the lowest id.
func (s *SurveyService) completedStatus(ctx context.Context, lookups repository.LookupRepository) (*domain.ComplaintStatus, error) {
	status, err := lookups.StatusByName(ctx, s.engine.SurveyCompletedStatusName)
	if err == nil {
		return status, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}
	status, err = lookups.LowestStatus(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewPreconditionFailed(apperrors.ReasonNoStatusConfigured, "no complaint status configured", nil)
		}
		return nil, err
	}
	return status, nil
}

func alreadySubmitted(complaintID int64) error {
	return apperrors.NewConflict(apperrors.ReasonAlreadySubmitted, "survey already submitted",
		map[string]any{"complaint_id": complaintID})
}
