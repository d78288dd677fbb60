package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	orig := NewConflict(ReasonUsernameTaken, "username already taken", map[string]any{"username": "ayse"})
	wrapped := fmt.Errorf("create customer: %w", orig)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeConflict, de.Code)
	assert.Equal(t, ReasonUsernameTaken, de.Reason)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainErrorFallsBackToInternal(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Nil(t, ToDomainError(nil))
}

func TestMapErrorWrapsStorageFailures(t *testing.T) {
	cause := errors.New("connection reset")
	err := MapError("end call", cause)

	assert.True(t, IsCode(err, CodePersistenceFailed))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "end call failed")

	notFound := NewNotFound(ReasonComplaintNotFound, "complaint", nil)
	assert.Same(t, notFound, MapError("close", notFound))
	assert.NoError(t, MapError("noop", nil))
}

func TestIsReason(t *testing.T) {
	err := NewPreconditionFailed(ReasonNoStaffAvailable, "no staff available", nil)
	assert.True(t, IsReason(err, ReasonNoStaffAvailable))
	assert.True(t, IsCode(err, CodePreconditionFailed))
	assert.False(t, IsReason(errors.New("plain"), ReasonNoStaffAvailable))
}
