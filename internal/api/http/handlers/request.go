package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// bindJSON parses the body into dst and runs its validate tags.
func bindJSON(c *fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "invalid payload", nil)
	}
	if v == nil {
		return nil
	}
	if err := v.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string]any, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
			return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "invalid payload", map[string]any{"fields": fields})
		}
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "invalid payload", nil)
	}
	return nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(apperrors.ReasonInvalidInput, name+" must be a positive integer",
			map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func currentStaff(c *fiber.Ctx) (*domain.StaffMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewForbidden("staff required")
	}
	return principal.Staff, nil
}

func currentCustomer(c *fiber.Ctx) (*domain.Customer, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return nil, apperrors.NewForbidden("customer required")
	}
	return principal.Customer, nil
}

func parseOptionalBool(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "expected true or false",
			map[string]any{"value": raw})
	}
	return &b, nil
}
