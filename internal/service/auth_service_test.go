package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

func TestRegisterAndLoginCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, issued, err := f.auth.RegisterCustomer(ctx, customerInput(testPhone, "ayse.y"))
	require.NoError(t, err)
	assert.Equal(t, customer.ID, issued.SubjectID)

	claims, err := f.auth.TokenManager().ParseToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeCustomer, claims.Type)

	login, err := f.auth.LoginCustomer(ctx, "ayse.y", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, login.SubjectID)

	_, err = f.auth.LoginCustomer(ctx, "ayse.y", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = f.auth.LoginCustomer(ctx, "nobody", "s3cret!")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestStaffLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("agent-pass", 4)
	require.NoError(t, err)
	f.store.AddStaffLogin(f.staffID, "deniz", hash)

	retired := f.store.AddStaff("Former", "Agent", false)
	f.store.AddStaffLogin(retired, "former", hash)

	issued, err := f.auth.LoginStaff(ctx, "deniz", "agent-pass")
	require.NoError(t, err)
	assert.Equal(t, f.staffID, issued.SubjectID)
	assert.Equal(t, domain.SubjectTypeStaff, issued.SubjectType)

	_, err = f.auth.LoginStaff(ctx, "deniz", "nope")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = f.auth.LoginStaff(ctx, "former", "agent-pass")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestChangeCustomerPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.createCustomer(t, testPhone, "ayse.y")

	err := f.auth.ChangeCustomerPassword(ctx, customer.ID, "wrong", "n3w", "n3w")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	err = f.auth.ChangeCustomerPassword(ctx, customer.ID, "s3cret!", "n3w", "n3x")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonInvalidInput))

	err = f.auth.ChangeCustomerPassword(ctx, customer.ID, "s3cret!", "", "")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonInvalidInput))

	require.NoError(t, f.auth.ChangeCustomerPassword(ctx, customer.ID, "s3cret!", "n3w", "n3w"))

	_, err = f.auth.LoginCustomer(ctx, "ayse.y", "s3cret!")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, err = f.auth.LoginCustomer(ctx, "ayse.y", "n3w")
	assert.NoError(t, err)
}
