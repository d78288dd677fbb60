package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

func TestCreateSelfServiceComplaint(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, testPhone, "ayse.y")

	c, err := f.complaints.CreateSelfService(context.Background(), customer.ID, SelfServiceInput{
		Title:       " Broken door ",
		Description: "The fridge door does not close",
		CategoryID:  categoryDelivery,
		ProductCode: "100002",
	})
	require.NoError(t, err)
	assert.Equal(t, f.staffID, c.AssignedStaffID)
	assert.Equal(t, priorityMid, c.PriorityID)
	assert.Equal(t, sourceSelfService, c.SourceID)
	assert.Equal(t, statusOpen, c.StatusID)
	assert.True(t, c.IsActive)
	assert.Nil(t, c.CallID)

	view := f.complaintView(t, c.ID)
	assert.Equal(t, "Broken door", view.Title)
	require.NotNil(t, view.ProductCode)
	assert.Equal(t, "100002", *view.ProductCode)
	require.NotNil(t, view.CategoryName)
	assert.Equal(t, "Delivery", *view.CategoryName)
	assert.Contains(t, f.recorded.types(), events.EventComplaintCreated)
}

func TestCreateSelfServiceUnknownProductLeavesNoRows(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, testPhone, "ayse.y")

	_, err := f.complaints.CreateSelfService(context.Background(), customer.ID, SelfServiceInput{
		Title: "Broken", Description: "Broken", CategoryID: categoryDelivery, ProductCode: "999999",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonProductNotFound))

	counts := f.store.Counts()
	assert.Zero(t, counts.Complaints)
	assert.Zero(t, counts.ComplaintTexts)
}

func TestCreateSelfServiceValidation(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, testPhone, "ayse.y")
	ctx := context.Background()

	_, err := f.complaints.CreateSelfService(ctx, customer.ID, SelfServiceInput{Description: "x", CategoryID: categoryDelivery})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonInvalidInput))

	_, err = f.complaints.CreateSelfService(ctx, customer.ID, SelfServiceInput{Title: "x", Description: "x"})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonInvalidInput))

	_, err = f.complaints.CreateSelfService(ctx, customer.ID, SelfServiceInput{
		Title: "x", Description: "x", CategoryID: categoryDelivery, ProductCode: "12ab56",
	})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonInvalidFormat))

	_, err = f.complaints.CreateSelfService(ctx, customer.ID, SelfServiceInput{Title: "x", Description: "x", CategoryID: 42})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonCategoryNotFound))

	assert.Zero(t, f.store.Counts().Complaints)
}

func TestCreateSelfServiceWithoutStaffFails(t *testing.T) {
	f := newFixtureWithoutStaff(t)
	f.store.AddStaff("Former", "Agent", false)
	customer := f.createCustomer(t, testPhone, "ayse.y")

	_, err := f.complaints.CreateSelfService(context.Background(), customer.ID, SelfServiceInput{
		Title: "Late", Description: "Late", CategoryID: categoryDelivery,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePreconditionFailed))
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonNoStaffAvailable))

	counts := f.store.Counts()
	assert.Zero(t, counts.Complaints)
	assert.Zero(t, counts.ComplaintTexts)
}

func TestSelfServicePriorityFallsBackToLowestRank(t *testing.T) {
	f := newFixture(t).withEngine(func(e *config.EngineConfig) { e.SelfServicePriorityName = "Medium" })
	customer := f.createCustomer(t, testPhone, "ayse.y")

	c := f.selfServiceComplaint(t, customer.ID)
	view := f.complaintView(t, c.ID)
	assert.Equal(t, "Low", view.PriorityName)
}

func TestSelfServiceWithoutPrioritiesFails(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddStaff("Deniz", "Kaya", true)
	store.AddCategory("Delivery")
	store.AddSource("Self Service")
	store.AddStatus("Open", false)
	svc := NewComplaintService(ComplaintServiceDependencies{Store: store, Engine: config.DefaultEngineConfig()})

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return tx.Customers().Create(ctx, &domain.Customer{FirstName: "A", LastName: "B"})
	})
	require.NoError(t, err)

	_, err = svc.CreateSelfService(context.Background(), 1, SelfServiceInput{Title: "x", Description: "x", CategoryID: 1})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonNoPriorityConfigured))
}

func TestCloseComplaint(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, testPhone, "ayse.y")
	c := f.selfServiceComplaint(t, customer.ID)
	f.clock.Advance(2 * time.Hour)

	action, err := f.complaints.Close(context.Background(), c.ID, f.staffID)
	require.NoError(t, err)
	assert.Equal(t, statusOpen, action.OldStatusID)
	assert.Equal(t, statusClosed, action.NewStatusID)
	assert.Equal(t, domain.ActionTypeClose, action.ActionType)

	view := f.complaintView(t, c.ID)
	assert.False(t, view.IsActive)
	assert.Equal(t, statusClosed, view.StatusID)
	require.NotNil(t, view.ClosedAt)
	assert.True(t, view.ClosedAt.Equal(f.clock.Now()))
	assert.True(t, view.LastUpdatedAt.Equal(f.clock.Now()))

	actions, err := f.complaints.Actions(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, statusOpen, actions[0].OldStatusID)
	assert.Equal(t, statusClosed, actions[0].NewStatusID)
	assert.Equal(t, f.staffID, actions[0].PerformedByID)
}

func TestCloseTwiceIsRejectedWithoutSecondAuditRow(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, testPhone, "ayse.y")
	c := f.selfServiceComplaint(t, customer.ID)

	_, err := f.complaints.Close(context.Background(), c.ID, f.staffID)
	require.NoError(t, err)
	_, err = f.complaints.Close(context.Background(), c.ID, f.staffID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonAlreadyClosed))
	assert.Equal(t, 1, f.store.Counts().ComplaintActions)
}

func TestCloseMissingComplaint(t *testing.T) {
	f := newFixture(t)
	_, err := f.complaints.Close(context.Background(), 404, f.staffID)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonComplaintNotFound))
}

func TestCloseRollsBackWhenAuditInsertFails(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, testPhone, "ayse.y")
	c := f.selfServiceComplaint(t, customer.ID)
	f.store.FailOn(repository.OpActionCreate, errors.New("statement killed"))

	_, err := f.complaints.Close(context.Background(), c.ID, f.staffID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePersistenceFailed))

	view := f.complaintView(t, c.ID)
	assert.True(t, view.IsActive)
	assert.Equal(t, statusOpen, view.StatusID)
	assert.Nil(t, view.ClosedAt)
	assert.Zero(t, f.store.Counts().ComplaintActions)
}

func TestComplaintListsFilterByOwnerAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ayse := f.createCustomer(t, testPhone, "ayse.y")
	mehmet := f.createCustomer(t, "0(532) 987 65 43", "mehmet.k")

	open := f.selfServiceComplaint(t, ayse.ID)
	closed := f.selfServiceComplaint(t, ayse.ID)
	f.selfServiceComplaint(t, mehmet.ID)
	_, err := f.complaints.Close(ctx, closed.ID, f.staffID)
	require.NoError(t, err)

	all, err := f.complaints.ListForStaff(ctx, f.staffID, domain.ComplaintFilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := f.complaints.ListForStaff(ctx, f.staffID, domain.ComplaintFilterActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	inactive, err := f.complaints.ListForStaff(ctx, f.staffID, domain.ComplaintFilterClosed)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, closed.ID, inactive[0].ID)

	mine, err := f.complaints.ListForCustomer(ctx, ayse.ID, boolPtr(true))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, open.ID, mine[0].ID)

	other, err := f.complaints.ListForStaff(ctx, f.staffID+100, domain.ComplaintFilterAll)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.complaints.GetForCustomer(ctx, mehmet.ID, open.ID)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonComplaintNotFound))
}

func TestStaffPickerDrawsFromActivePool(t *testing.T) {
	store := repository.NewMemoryStore()
	a := store.AddStaff("A", "One", true)
	b := store.AddStaff("B", "Two", true)
	store.AddStaff("C", "Gone", false)
	picker := NewStaffPicker(rand.New(rand.NewSource(42)))

	seen := map[int64]int{}
	require.NoError(t, store.View(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		for i := 0; i < 200; i++ {
			id, ok, err := picker.PickRandom(ctx, tx)
			if err != nil {
				return err
			}
			require.True(t, ok)
			seen[id]++
		}
		return nil
	}))
	assert.Len(t, seen, 2)
	assert.Positive(t, seen[a])
	assert.Positive(t, seen[b])
}

func TestStaffPickerEmptyPool(t *testing.T) {
	store := repository.NewMemoryStore()
	picker := NewStaffPicker(nil)
	require.NoError(t, store.View(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		_, ok, err := picker.PickRandom(ctx, tx)
		assert.False(t, ok)
		return err
	}))
}
