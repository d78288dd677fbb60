package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// MinUsernameLength is the shortest accepted customer login.
const MinUsernameLength = 4

// CustomerResolver finds callers by phone and registers new customers.
type CustomerResolver struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	clock      Clock
}

// CustomerResolverDependencies bundles collaborators.
type CustomerResolverDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
	Clock      Clock
}

// CustomerInput carries every field of the registration form.
type CustomerInput struct {
	FirstName       string
	LastName        string
	Gender          string
	Email           string
	Phone           string
	City            string
	Country         string
	AddressLine     string
	PostalCode      string
	Username        string
	Password        string
	PasswordConfirm string
}

// NewCustomerResolver constructs the resolver.
func NewCustomerResolver(deps CustomerResolverDependencies) *CustomerResolver {
	return &CustomerResolver{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		bcryptCost: deps.BcryptCost,
		clock:      clockOrNow(deps.Clock),
	}
}

// ValidatePhone rejects empty and malformed phone numbers.
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return apperrors.NewValidationError(apperrors.ReasonMissingPhone, "phone is required", nil)
	}
	if !domain.ValidPhone(phone) {
		return apperrors.NewValidationError(apperrors.ReasonInvalidFormat, "phone must look like "+domain.PhoneExample,
			map[string]any{"phone": phone})
	}
	return nil
}

// Resolve looks a customer up by contact phone.
func (r *CustomerResolver) Resolve(ctx context.Context, phone string) (*domain.Customer, error) {
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	var customer *domain.Customer
	err := r.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.Customers().FindByPhone(ctx, phone)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound(apperrors.ReasonCustomerNotFound, "customer", map[string]any{"phone": phone})
			}
			return err
		}
		customer = c
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("resolve customer", err)
	}
	return customer, nil
}

// Create registers a customer with contact, address and login as one unit.
func (r *CustomerResolver) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	in = normalizeCustomerInput(in)
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password, r.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	customer := &domain.Customer{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Gender:    domain.ParseGender(in.Gender),
	}
	err = r.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		repo := tx.Customers()
		taken, err := repo.UsernameExists(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return usernameTaken(in.Username)
		}
		switch _, err := repo.FindByPhone(ctx, in.Phone); {
		case err == nil:
			return phoneTaken(in.Phone)
		case !repository.IsNotFound(err):
			return err
		}
		if err := repo.Create(ctx, customer); err != nil {
			return err
		}
		if err := repo.CreateContact(ctx, &domain.CustomerContact{
			CustomerID: customer.ID,
			Email:      in.Email,
			Phone:      in.Phone,
		}); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return phoneTaken(in.Phone)
			}
			return err
		}
		if err := repo.CreateAddress(ctx, &domain.CustomerAddress{
			CustomerID:  customer.ID,
			City:        nilIfBlank(in.City),
			Country:     nilIfBlank(in.Country),
			AddressLine: nilIfBlank(in.AddressLine),
			PostalCode:  nilIfBlank(in.PostalCode),
		}); err != nil {
			return err
		}
		err = repo.CreateCredential(ctx, &domain.CustomerCredential{
			CustomerID:   customer.ID,
			Username:     in.Username,
			PasswordHash: hash,
			Email:        in.Email,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return usernameTaken(in.Username)
		}
		return err
	})
	if err != nil {
		return nil, apperrors.MapError("create customer", err)
	}

	r.logger.Info("customer registered", zap.Int64("customer_id", customer.ID))
	publishEvent(ctx, r.dispatcher, r.logger, r.clock(), events.Event{
		Type:  events.EventCustomerRegistered,
		Actor: events.CustomerActor(customer.ID),
		Payload: events.CustomerRegisteredPayload{
			CustomerID: customer.ID,
			Username:   in.Username,
		},
	})
	return customer, nil
}

// Profile returns the customer with contact, address and username.
func (r *CustomerResolver) Profile(ctx context.Context, customerID int64) (*domain.CustomerProfile, error) {
	var profile *domain.CustomerProfile
	err := r.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.Customers().GetProfile(ctx, customerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound(apperrors.ReasonCustomerNotFound, "customer", map[string]any{"customer_id": customerID})
			}
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError("load customer profile", err)
	}
	return profile, nil
}

func usernameTaken(username string) error {
	return apperrors.NewConflict(apperrors.ReasonUsernameTaken, "username already taken", map[string]any{"username": username})
}

func phoneTaken(phone string) error {
	return apperrors.NewConflict(apperrors.ReasonPhoneTaken, "phone already registered to another customer",
		map[string]any{"phone": phone})
}

func normalizeCustomerInput(in CustomerInput) CustomerInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	return in
}

func validateCustomerInput(in CustomerInput) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "required fields missing", map[string]any{"fields": missing})
	}
	if err := ValidatePhone(in.Phone); err != nil {
		return err
	}
	if !domain.ValidEmail(in.Email) {
		return apperrors.NewValidationError(apperrors.ReasonInvalidFormat, "email is malformed", map[string]any{"email": in.Email})
	}
	if utf8.RuneCountInString(in.Username) < MinUsernameLength {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "username too short",
			map[string]any{"min_length": MinUsernameLength})
	}
	if in.Password != in.PasswordConfirm {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "passwords do not match", nil)
	}
	return nil
}
