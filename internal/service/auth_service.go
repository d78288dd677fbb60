package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and password changes.
type AuthService struct {
	store      repository.Store
	resolver   *CustomerResolver
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Store    repository.Store
	Resolver *CustomerResolver
	Logger   *zap.Logger
}

// AuthResult is an issued access token with its subject.
type AuthResult struct {
	SubjectID   int64
	SubjectType domain.SubjectType
	Token       string
	ExpiresAt   time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		store:      deps.Store,
		resolver:   deps.Resolver,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     loggerOrNop(deps.Logger),
	}
}

// RegisterCustomer signs a customer up and logs them in.
func (s *AuthService) RegisterCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, *AuthResult, error) {
	customer, err := s.resolver.Create(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.issue(customer.ID, domain.SubjectTypeCustomer)
	if err != nil {
		return nil, nil, err
	}
	return customer, result, nil
}

// LoginCustomer authenticates a customer by username.
func (s *AuthService) LoginCustomer(ctx context.Context, username, password string) (*AuthResult, error) {
	var cred *domain.CustomerCredential
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.Customers().GetCredentialByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return err
		}
		cred = c
		return nil
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, apperrors.MapError("customer login", err)
	}
	if err := auth.ComparePassword(cred.PasswordHash, password); err != nil {
		s.logger.Info("customer login rejected", zap.String("username", cred.Username))
		return nil, invalidCredentials()
	}
	return s.issue(cred.CustomerID, domain.SubjectTypeCustomer)
}

// LoginStaff authenticates an active staff member.
func (s *AuthService) LoginStaff(ctx context.Context, username, password string) (*AuthResult, error) {
	var (
		login  *domain.StaffLogin
		member *domain.StaffMember
	)
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		l, err := tx.Staff().GetLoginByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return err
		}
		m, err := tx.Staff().GetByID(ctx, l.StaffID)
		if err != nil {
			return err
		}
		login, member = l, m
		return nil
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, apperrors.MapError("staff login", err)
	}
	if !member.Active {
		return nil, apperrors.NewForbidden("staff member is inactive")
	}
	if err := auth.ComparePassword(login.PasswordHash, password); err != nil {
		s.logger.Info("staff login rejected", zap.String("username", login.Username))
		return nil, invalidCredentials()
	}
	return s.issue(member.ID, domain.SubjectTypeStaff)
}

// ChangeCustomerPassword verifies the current password before storing the new hash.
func (s *AuthService) ChangeCustomerPassword(ctx context.Context, customerID int64, current, next, confirm string) error {
	if next == "" {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "new password is required", nil)
	}
	if next != confirm {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "passwords do not match", nil)
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		cred, err := tx.Customers().GetCredentialByCustomerID(ctx, customerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound(apperrors.ReasonCustomerNotFound, "customer", map[string]any{"customer_id": customerID})
			}
			return err
		}
		if err := auth.ComparePassword(cred.PasswordHash, current); err != nil {
			return invalidCredentials()
		}
		return tx.Customers().UpdatePasswordHash(ctx, customerID, hash)
	})
	if err != nil {
		return apperrors.MapError("change password", err)
	}
	s.logger.Info("customer password changed", zap.Int64("customer_id", customerID))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(subjectID int64, subject domain.SubjectType) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(subjectID, subject)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{SubjectID: subjectID, SubjectType: subject, Token: token, ExpiresAt: exp}, nil
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized("invalid credentials")
}
