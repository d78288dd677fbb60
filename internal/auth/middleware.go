package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType domain.SubjectType
	Customer    *domain.Customer
	Staff       *domain.StaffMember
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	store  repository.Store
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, store repository.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: store}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return apperrors.NewUnauthorized("invalid token subject")
	}

	principal := &Principal{SubjectType: claims.Type}
	err = m.store.View(c.UserContext(), func(ctx context.Context, tx repository.Tx) error {
		switch claims.Type {
		case domain.SubjectTypeCustomer:
			customer, err := tx.Customers().GetByID(ctx, subjectID)
			if err != nil {
				if repository.IsNotFound(err) {
					return apperrors.NewUnauthorized("customer not found")
				}
				return err
			}
			principal.Customer = customer
		case domain.SubjectTypeStaff:
			staff, err := tx.Staff().GetByID(ctx, subjectID)
			if err != nil {
				if repository.IsNotFound(err) {
					return apperrors.NewUnauthorized("staff not found")
				}
				return err
			}
			if !staff.Active {
				return apperrors.NewUnauthorized("staff inactive")
			}
			principal.Staff = staff
		default:
			return apperrors.NewUnauthorized("unknown subject")
		}
		return nil
	})
	if err != nil {
		return apperrors.MapError("load principal", err)
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
