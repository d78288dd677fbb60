package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

const (
	defaultCallComplaintDescription = "Complaint created from call. No additional notes."
	defaultListLimit                = 100
)

var productCodePattern = regexp.MustCompile(`^\d{6}$`)

// ComplaintService owns complaint creation, closing and reads.
type ComplaintService struct {
	store      repository.Store
	picker     *StaffPicker
	engine     config.EngineConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      Clock
}

// ComplaintServiceDependencies bundles collaborators.
type ComplaintServiceDependencies struct {
	Store      repository.Store
	Picker     *StaffPicker
	Engine     config.EngineConfig
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// FromCallInput carries what a call end knows about the complaint it spawns.
type FromCallInput struct {
	CustomerID int64
	CallID     int64
	StaffID    int64
	Notes      string
}

// SelfServiceInput is a complaint filed by a customer.
type SelfServiceInput struct {
	Title       string
	Description string
	CategoryID  int64
	ProductCode string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintServiceDependencies) *ComplaintService {
	picker := deps.Picker
	if picker == nil {
		picker = NewStaffPicker(nil)
	}
	return &ComplaintService{
		store:      deps.Store,
		picker:     picker,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		clock:      clockOrNow(deps.Clock),
	}
}

// CreateFromCall inserts the complaint and its text inside the call-end unit.
// The acting staff member becomes the assignee.
func (s *ComplaintService) CreateFromCall(ctx context.Context, tx repository.Tx, in FromCallInput) (*domain.Complaint, error) {
	callID := in.CallID
	complaint := &domain.Complaint{
		CustomerID:      in.CustomerID,
		SourceID:        s.engine.CallSourceID,
		CallID:          &callID,
		StatusID:        s.engine.OpenStatusID,
		PriorityID:      s.engine.NormalPriorityID,
		AssignedStaffID: in.StaffID,
		IsActive:        true,
	}
	if err := tx.Complaints().Create(ctx, complaint); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(in.Notes)
	if description == "" {
		description = defaultCallComplaintDescription
	}
	now := s.clock()
	if err := tx.Complaints().CreateText(ctx, &domain.ComplaintText{
		ComplaintID:   complaint.ID,
		Title:         fmt.Sprintf("Complaint from call #%d", in.CallID),
		Description:   description,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}); err != nil {
		return nil, err
	}
	return complaint, nil
}

// CreateSelfService files a complaint for a customer and assigns it to a
// random active staff member.
func (s *ComplaintService) CreateSelfService(ctx context.Context, customerID int64, in SelfServiceInput) (*domain.Complaint, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ProductCode = strings.TrimSpace(in.ProductCode)
	if in.Title == "" || in.Description == "" {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "title and description are required", nil)
	}
	if in.CategoryID <= 0 {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "category is required", nil)
	}
	if in.ProductCode != "" && !productCodePattern.MatchString(in.ProductCode) {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidFormat, "product code must be 6 digits",
			map[string]any{"product_code": in.ProductCode})
	}

	var complaint *domain.Complaint
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		lookups := tx.Lookups()
		if _, err := lookups.Category(ctx, in.CategoryID); err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound(apperrors.ReasonCategoryNotFound, "category", map[string]any{"category_id": in.CategoryID})
			}
			return err
		}

		var productID *int64
		if in.ProductCode != "" {
			product, err := lookups.ProductByCode(ctx, in.ProductCode)
			if err != nil {
				if repository.IsNotFound(err) {
					return apperrors.NewNotFound(apperrors.ReasonProductNotFound, "product", map[string]any{"product_code": in.ProductCode})
				}
				return err
			}
			productID = &product.ID
		}

		priority, err := s.selfServicePriority(ctx, lookups)
		if err != nil {
			return err
		}

		staffID, ok, err := s.picker.PickRandom(ctx, tx)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewPreconditionFailed(apperrors.ReasonNoStaffAvailable, "no staff available for assignment", nil)
		}

		categoryID := in.CategoryID
		c := &domain.Complaint{
			CustomerID:      customerID,
			ProductID:       productID,
			CategoryID:      &categoryID,
			SourceID:        s.engine.SelfServiceSourceID,
			StatusID:        s.engine.OpenStatusID,
			PriorityID:      priority.ID,
			AssignedStaffID: staffID,
			IsActive:        true,
		}
		if err := tx.Complaints().Create(ctx, c); err != nil {
			return err
		}
		now := s.clock()
		if err := tx.Complaints().CreateText(ctx, &domain.ComplaintText{
			ComplaintID:   c.ID,
			Title:         in.Title,
			Description:   in.Description,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}); err != nil {
			return err
		}
		complaint = c
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("create self-service complaint", err)
	}

	s.logger.Info("complaint created",
		zap.Int64("complaint_id", complaint.ID),
		zap.Int64("customer_id", customerID),
		zap.Int64("assigned_staff_id", complaint.AssignedStaffID),
		zap.String("origin", string(events.OriginSelfService)))
	s.publishCreated(ctx, events.CustomerActor(customerID), complaint, events.OriginSelfService)
	return complaint, nil
}

func (s *ComplaintService) selfServicePriority(ctx context.Context, lookups repository.LookupRepository) (*domain.ComplaintPriority, error) {
	priority, err := lookups.PriorityByName(ctx, s.engine.SelfServicePriorityName)
	if err == nil {
		return priority, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}
	priority, err = lookups.LowestRankPriority(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewPreconditionFailed(apperrors.ReasonNoPriorityConfigured, "no complaint priority configured", nil)
		}
		return nil, err
	}
	return priority, nil
}

// ApplyStatus moves a complaint to status inside the caller's unit. A complaint
// never becomes active again once a terminal status has been applied.
func (s *ComplaintService) ApplyStatus(ctx context.Context, tx repository.Tx, c *domain.Complaint, status domain.ComplaintStatus) error {
	active := c.IsActive && !status.IsTerminal
	if err := tx.Complaints().UpdateStatus(ctx, c.ID, status.ID, active); err != nil {
		return err
	}
	if err := tx.Complaints().TouchText(ctx, c.ID, s.clock()); err != nil {
		return err
	}
	c.StatusID = status.ID
	c.IsActive = active
	return nil
}

// Close marks an active complaint closed and records the audit row.
func (s *ComplaintService) Close(ctx context.Context, complaintID, staffID int64) (*domain.ComplaintAction, error) {
	var action *domain.ComplaintAction
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.Complaints().GetForUpdate(ctx, complaintID)
		if err != nil {
			if repository.IsNotFound(err) {
				return complaintNotFound(complaintID)
			}
			return err
		}
		if !c.IsActive {
			return apperrors.NewConflict(apperrors.ReasonAlreadyClosed, "complaint is already closed",
				map[string]any{"complaint_id": complaintID, "status_id": c.StatusID})
		}
		closed, err := tx.Lookups().StatusByID(ctx, s.engine.ClosedStatusID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewPreconditionFailed(apperrors.ReasonNoStatusConfigured, "closed status is not configured",
					map[string]any{"status_id": s.engine.ClosedStatusID})
			}
			return err
		}
		closedStatus := *closed
		closedStatus.IsTerminal = true

		oldStatusID := c.StatusID
		if err := s.ApplyStatus(ctx, tx, c, closedStatus); err != nil {
			return err
		}
		now := s.clock()
		if err := tx.Complaints().MarkTextClosed(ctx, complaintID, now); err != nil {
			return err
		}
		a := &domain.ComplaintAction{
			ComplaintID:   complaintID,
			OldStatusID:   oldStatusID,
			NewStatusID:   closedStatus.ID,
			PerformedByID: staffID,
			ActionType:    domain.ActionTypeClose,
			ActionDate:    now,
		}
		if err := tx.Complaints().AppendAction(ctx, a); err != nil {
			return err
		}
		action = a
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("close complaint", err)
	}

	s.logger.Info("complaint closed",
		zap.Int64("complaint_id", complaintID),
		zap.Int64("staff_id", staffID),
		zap.Int64("old_status_id", action.OldStatusID),
		zap.Int64("new_status_id", action.NewStatusID))
	publishEvent(ctx, s.dispatcher, s.logger, s.clock(), events.Event{
		Type:  events.EventComplaintClosed,
		Actor: events.StaffActor(staffID),
		Payload: events.ComplaintClosedPayload{
			ComplaintID: complaintID,
			OldStatusID: action.OldStatusID,
			NewStatusID: action.NewStatusID,
		},
	})
	return action, nil
}

// Get returns the joined detail view of a complaint.
func (s *ComplaintService) Get(ctx context.Context, complaintID int64) (*domain.ComplaintView, error) {
	var view *domain.ComplaintView
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		v, err := tx.Complaints().GetView(ctx, complaintID)
		if err != nil {
			if repository.IsNotFound(err) {
				return complaintNotFound(complaintID)
			}
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("get complaint", err)
	}
	return view, nil
}

// GetForCustomer hides complaints owned by other customers behind NotFound.
func (s *ComplaintService) GetForCustomer(ctx context.Context, customerID, complaintID int64) (*domain.ComplaintView, error) {
	view, err := s.Get(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if view.CustomerID != customerID {
		return nil, complaintNotFound(complaintID)
	}
	return view, nil
}

// Actions returns the audit trail oldest first.
func (s *ComplaintService) Actions(ctx context.Context, complaintID int64) ([]domain.ComplaintAction, error) {
	var actions []domain.ComplaintAction
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Complaints().GetView(ctx, complaintID); err != nil {
			if repository.IsNotFound(err) {
				return complaintNotFound(complaintID)
			}
			return err
		}
		list, err := tx.Complaints().ListActions(ctx, complaintID)
		if err != nil {
			return err
		}
		actions = list
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("list complaint actions", err)
	}
	return actions, nil
}

// ListForStaff lists complaints assigned to a staff member.
func (s *ComplaintService) ListForStaff(ctx context.Context, staffID int64, filter domain.ComplaintListFilter) ([]domain.ComplaintView, error) {
	q := repository.ComplaintQuery{AssignedStaffID: &staffID, Limit: defaultListLimit}
	switch filter {
	case domain.ComplaintFilterActive:
		q.Active = boolPtr(true)
	case domain.ComplaintFilterClosed:
		q.Active = boolPtr(false)
	}
	return s.list(ctx, q)
}

// ListForCustomer lists a customer's own complaints; nil active lists all.
func (s *ComplaintService) ListForCustomer(ctx context.Context, customerID int64, active *bool) ([]domain.ComplaintView, error) {
	return s.list(ctx, repository.ComplaintQuery{CustomerID: &customerID, Active: active, Limit: defaultListLimit})
}

func (s *ComplaintService) list(ctx context.Context, q repository.ComplaintQuery) ([]domain.ComplaintView, error) {
	var out []domain.ComplaintView
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		list, err := tx.Complaints().List(ctx, q)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("list complaints", err)
	}
	if out == nil {
		out = []domain.ComplaintView{}
	}
	return out, nil
}

func (s *ComplaintService) publishCreated(ctx context.Context, actor events.Actor, c *domain.Complaint, origin events.ComplaintOrigin) {
	publishEvent(ctx, s.dispatcher, s.logger, s.clock(), events.Event{
		Type:  events.EventComplaintCreated,
		Actor: actor,
		Payload: events.ComplaintCreatedPayload{
			ComplaintID:     c.ID,
			CustomerID:      c.CustomerID,
			AssignedStaffID: c.AssignedStaffID,
			PriorityID:      c.PriorityID,
			Origin:          origin,
		},
	})
}

func complaintNotFound(id int64) error {
	return apperrors.NewNotFound(apperrors.ReasonComplaintNotFound, "complaint", map[string]any{"complaint_id": id})
}

func boolPtr(b bool) *bool { return &b }
