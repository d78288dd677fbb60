package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/session"
)

const testPhone = "0(555) 123 45 67"

// Seeded reference ids, matching migrations/002_reference_data.sql.
const (
	typeInbound       int64 = 1
	topicGeneral      int64 = 1
	topicComplaint    int64 = 2
	topicSikayet      int64 = 3
	resultResolved    int64 = 1
	statusOpen        int64 = 1
	statusClosed      int64 = 3
	statusSurveyDone  int64 = 4
	priorityMid       int64 = 2
	categoryDelivery  int64 = 2
	sourceSelfService int64 = 1
	sourceCallCenter  int64 = 2
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *repository.MemoryStore
	sessions   *session.MemoryStore
	clock      *fakeClock
	engine     config.EngineConfig
	dispatcher events.Dispatcher
	recorded   *recordedEvents
	staffID    int64

	resolver   *CustomerResolver
	complaints *ComplaintService
	calls      *CallSessionManager
	surveys    *SurveyService
	auth       *AuthService
	dashboard  *DashboardService
	lookups    *LookupService
}

// newFixture seeds reference data and one active staff member.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixtureWithoutStaff(t)
	f.staffID = f.store.AddStaff("Deniz", "Kaya", true)
	return f
}

func newFixtureWithoutStaff(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	store.SeedReferenceData()
	clock := newFakeClock()
	store.SetClock(clock.Now)

	f := &fixture{
		store:      store,
		sessions:   session.NewMemoryStore(time.Hour),
		clock:      clock,
		engine:     config.DefaultEngineConfig(),
		dispatcher: events.NewInMemoryDispatcher(),
		recorded:   &recordedEvents{},
	}
	for _, et := range []events.EventType{
		events.EventCallEnded,
		events.EventComplaintCreated,
		events.EventComplaintClosed,
		events.EventSurveySubmitted,
		events.EventCustomerRegistered,
	} {
		f.dispatcher.Subscribe(et, f.recorded.handle)
	}
	f.wire()
	return f
}

func (f *fixture) wire() {
	logger := zap.NewNop()
	f.resolver = NewCustomerResolver(CustomerResolverDependencies{
		Store:      f.store,
		Dispatcher: f.dispatcher,
		Logger:     logger,
		BcryptCost: 4,
		Clock:      f.clock.Now,
	})
	f.complaints = NewComplaintService(ComplaintServiceDependencies{
		Store:      f.store,
		Picker:     NewStaffPicker(rand.New(rand.NewSource(7))),
		Engine:     f.engine,
		Dispatcher: f.dispatcher,
		Logger:     logger,
		Clock:      f.clock.Now,
	})
	f.calls = NewCallSessionManager(CallSessionDependencies{
		Store:      f.store,
		Sessions:   f.sessions,
		Complaints: f.complaints,
		Dispatcher: f.dispatcher,
		Logger:     logger,
		Clock:      f.clock.Now,
	})
	f.surveys = NewSurveyService(SurveyServiceDependencies{
		Store:      f.store,
		Complaints: f.complaints,
		Engine:     f.engine,
		Dispatcher: f.dispatcher,
		Logger:     logger,
		Clock:      f.clock.Now,
	})
	f.auth = NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            4,
	}, AuthDependencies{Store: f.store, Resolver: f.resolver, Logger: logger})
	f.dashboard = NewDashboardService(f.store, f.clock.Now)
	f.lookups = NewLookupService(f.store)
}

// withEngine rebuilds the services with a modified engine configuration.
func (f *fixture) withEngine(mutate func(*config.EngineConfig)) *fixture {
	mutate(&f.engine)
	f.wire()
	return f
}

func customerInput(phone, username string) CustomerInput {
	return CustomerInput{
		FirstName:       "Ayşe",
		LastName:        "Yılmaz",
		Gender:          "F",
		Email:           username + "@example.com",
		Phone:           phone,
		City:            "Izmir",
		Username:        username,
		Password:        "s3cret!",
		PasswordConfirm: "s3cret!",
	}
}

func (f *fixture) createCustomer(t *testing.T, phone, username string) *domain.Customer {
	t.Helper()
	c, err := f.resolver.Create(context.Background(), customerInput(phone, username))
	require.NoError(t, err)
	return c
}

// endComplaintCall records a call with the complaint topic and returns the
// complaint it created.
func (f *fixture) endComplaintCall(t *testing.T, phone string) (*EndCallResult, int64) {
	t.Helper()
	ctx := context.Background()
	sess, err := f.calls.Start(ctx, f.staffID)
	require.NoError(t, err)
	topic := topicComplaint
	res, err := f.calls.End(ctx, sess.ID, f.staffID, EndCallInput{
		Phone:       phone,
		CallTypeID:  typeInbound,
		CallTopicID: &topic,
		Notes:       "Device stopped working",
	})
	require.NoError(t, err)
	require.True(t, res.ComplaintCreated)
	return res, *res.ComplaintID
}

func (f *fixture) selfServiceComplaint(t *testing.T, customerID int64) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.CreateSelfService(context.Background(), customerID, SelfServiceInput{
		Title:       "Late delivery",
		Description: "Order arrived two weeks late",
		CategoryID:  categoryDelivery,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) complaint(t *testing.T, id int64) domain.Complaint {
	t.Helper()
	var out domain.Complaint
	require.NoError(t, f.store.View(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.Complaints().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		out = *c
		return nil
	}))
	return out
}

func (f *fixture) complaintView(t *testing.T, id int64) domain.ComplaintView {
	t.Helper()
	v, err := f.complaints.Get(context.Background(), id)
	require.NoError(t, err)
	return *v
}
