package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRunMigrationsWithoutPool(t *testing.T) {
	err := RunMigrations(context.Background(), nil, "does-not-exist", zap.NewNop())
	assert.NoError(t, err)
}

func TestPostgresWithoutDSN(t *testing.T) {
	pg := &Postgres{}
	assert.False(t, pg.Enabled())
	assert.Error(t, pg.Ping(context.Background()))

	var nilRedis *Redis
	assert.Error(t, nilRedis.Ping(context.Background()))
}
