package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/observability"
)

// ActivityService records committed domain events in the log and metrics.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     loggerOrNop(logger),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventCallEnded, a.handleCallEnded)
	a.dispatcher.Subscribe(events.EventComplaintCreated, a.handleComplaintCreated)
	a.dispatcher.Subscribe(events.EventComplaintClosed, a.handleComplaintClosed)
	a.dispatcher.Subscribe(events.EventSurveySubmitted, a.handleSurveySubmitted)
	a.dispatcher.Subscribe(events.EventCustomerRegistered, a.handleCustomerRegistered)
}

func (a *ActivityService) handleCallEnded(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.CallEndedPayload)
	a.logger.Info("CallEnded", zap.String("event_id", event.ID), zap.Int64("call_id", p.CallID),
		zap.Int("duration_sec", p.DurationSec), zap.String("warning", p.Warning))
	a.metrics.RecordCallEnded(p.ComplaintID != nil)
	return nil
}

func (a *ActivityService) handleComplaintCreated(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.ComplaintCreatedPayload)
	a.logger.Info("ComplaintCreated", zap.String("event_id", event.ID), zap.Int64("complaint_id", p.ComplaintID),
		zap.Int64("assigned_staff_id", p.AssignedStaffID), zap.String("origin", string(p.Origin)))
	a.metrics.RecordComplaintCreated(string(p.Origin))
	return nil
}

func (a *ActivityService) handleComplaintClosed(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.ComplaintClosedPayload)
	a.logger.Info("ComplaintClosed", zap.String("event_id", event.ID), zap.Int64("complaint_id", p.ComplaintID),
		zap.Int64("old_status_id", p.OldStatusID), zap.Int64("new_status_id", p.NewStatusID))
	a.metrics.RecordComplaintClosed()
	return nil
}

func (a *ActivityService) handleSurveySubmitted(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.SurveySubmittedPayload)
	a.logger.Info("SurveySubmitted", zap.String("event_id", event.ID), zap.Int64("complaint_id", p.ComplaintID),
		zap.Int("rating", p.Rating))
	a.metrics.RecordSurvey(p.Rating)
	return nil
}

func (a *ActivityService) handleCustomerRegistered(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.CustomerRegisteredPayload)
	a.logger.Info("CustomerRegistered", zap.String("event_id", event.ID), zap.Int64("customer_id", p.CustomerID))
	return nil
}
