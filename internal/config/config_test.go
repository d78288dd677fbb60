package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("ENGINE_OPEN_STATUS_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig().OpenStatusID, cfg.Engine.OpenStatusID)
	assert.Equal(t, "Mid", cfg.Engine.SelfServicePriorityName)
	assert.Equal(t, "Survey Completed", cfg.Engine.SurveyCompletedStatusName)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadEngineOverrides(t *testing.T) {
	t.Setenv("ENGINE_OPEN_STATUS_ID", "10")
	t.Setenv("ENGINE_CLOSED_STATUS_ID", "12")
	t.Setenv("ENGINE_SELF_SERVICE_PRIORITY", "Orta")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.Engine.OpenStatusID)
	assert.Equal(t, int64(12), cfg.Engine.ClosedStatusID)
	assert.Equal(t, "Orta", cfg.Engine.SelfServicePriorityName)
}

func TestLoadRejectsCollidingStatuses(t *testing.T) {
	t.Setenv("ENGINE_OPEN_STATUS_ID", "3")
	t.Setenv("ENGINE_CLOSED_STATUS_ID", "3")

	_, err := Load()
	assert.Error(t, err)
}

func TestEngineValidate(t *testing.T) {
	cfg := DefaultEngineConfig()
	require.NoError(t, cfg.Validate())

	cfg.CallSourceID = 0
	assert.ErrorContains(t, cfg.Validate(), "ENGINE_CALL_SOURCE_ID")
}

func TestSessionTTL(t *testing.T) {
	assert.Equal(t, 4*time.Hour, EngineConfig{}.SessionTTL())
	assert.Equal(t, 15*time.Minute, EngineConfig{CallSessionTTLMinutes: 15}.SessionTTL())
}
