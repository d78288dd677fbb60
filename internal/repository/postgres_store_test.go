package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// Runs against a migrated database; see migrations/.
func TestPostgresStoreRollsBack(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	store := NewPostgresStore(pool)
	phone := "0(599) 000 00 01"

	err = store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		c := &domain.Customer{FirstName: "Roll", LastName: "Back", Gender: domain.GenderOther}
		if err := tx.Customers().Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Customers().CreateContact(ctx, &domain.CustomerContact{CustomerID: c.ID, Phone: phone}); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	err = store.View(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Customers().FindByPhone(ctx, phone)
		assert.True(t, IsNotFound(err))
		return nil
	})
	require.NoError(t, err)
}
