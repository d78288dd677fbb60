package service

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/persistence"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

type pgFixture struct {
	pool       *pgxpool.Pool
	staffID    int64
	resolver   *CustomerResolver
	complaints *ComplaintService
	surveys    *SurveyService
}

// newPgFixture runs against a real database; the migrations are applied first.
func newPgFixture(t *testing.T) *pgFixture {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))

	f := &pgFixture{pool: pool}
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO staff (first_name, last_name, active_flag) VALUES ('Deniz', 'Kaya', TRUE) RETURNING id`).
		Scan(&f.staffID))

	store := repository.NewPostgresStore(pool)
	engine := config.DefaultEngineConfig()
	f.resolver = NewCustomerResolver(CustomerResolverDependencies{Store: store, BcryptCost: 4})
	f.complaints = NewComplaintService(ComplaintServiceDependencies{
		Store:  store,
		Picker: NewStaffPicker(nil),
		Engine: engine,
	})
	f.surveys = NewSurveyService(SurveyServiceDependencies{Store: store, Complaints: f.complaints, Engine: engine})
	return f
}

// closedComplaint registers a customer with a fresh phone and closes one of
// their self-service complaints.
func (f *pgFixture) closedComplaint(t *testing.T) (customerID, complaintID int64) {
	t.Helper()
	ctx := context.Background()
	phone := fmt.Sprintf("0(5%02d) %03d %02d %02d", rand.Intn(100), rand.Intn(1000), rand.Intn(100), rand.Intn(100))
	customer, err := f.resolver.Create(ctx, customerInput(phone, fmt.Sprintf("pg.user.%d", time.Now().UnixNano())))
	require.NoError(t, err)

	c, err := f.complaints.CreateSelfService(ctx, customer.ID, SelfServiceInput{
		Title:       "Late delivery",
		Description: "Parcel is a week late",
		CategoryID:  categoryDelivery,
	})
	require.NoError(t, err)
	_, err = f.complaints.Close(ctx, c.ID, f.staffID)
	require.NoError(t, err)
	return customer.ID, c.ID
}

func (f *pgFixture) closeActions(t *testing.T, complaintID int64) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM complaint_actions WHERE complaint_id=$1`, complaintID).Scan(&n))
	return n
}

func TestPostgresCloseTwiceKeepsOneAuditRow(t *testing.T) {
	f := newPgFixture(t)
	_, complaintID := f.closedComplaint(t)

	_, err := f.complaints.Close(context.Background(), complaintID, f.staffID)
	require.Error(t, err)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonAlreadyClosed))
	assert.Equal(t, 1, f.closeActions(t, complaintID))
}

func TestPostgresConcurrentSurveysStoreOne(t *testing.T) {
	f := newPgFixture(t)
	customerID, complaintID := f.closedComplaint(t)

	const attempts = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := f.surveys.Submit(context.Background(), customerID, complaintID, rating)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(i%5 + 1)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsReason(err, apperrors.ReasonAlreadySubmitted), err.Error())
	}
	assert.Equal(t, 1, succeeded)

	var stored int
	require.NoError(t, f.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM satisfaction_surveys WHERE complaint_id=$1`, complaintID).Scan(&stored))
	assert.Equal(t, 1, stored)
}
