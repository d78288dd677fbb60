package service

import (
	"context"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// LookupService serves reference data for the call and complaint screens.
type LookupService struct {
	store repository.Store
}

// NewLookupService constructs the service.
func NewLookupService(store repository.Store) *LookupService {
	return &LookupService{store: store}
}

// CallScreen lists call types, topics, results and complaint categories.
func (s *LookupService) CallScreen(ctx context.Context) (*domain.Lookups, error) {
	out := &domain.Lookups{}
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		l := tx.Lookups()
		if out.CallTypes, err = l.ListCallTypes(ctx); err != nil {
			return err
		}
		if out.CallTopics, err = l.ListCallTopics(ctx); err != nil {
			return err
		}
		if out.CallResults, err = l.ListCallResults(ctx); err != nil {
			return err
		}
		out.Categories, err = l.ListCategories(ctx)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError("list lookups", err)
	}
	return out, nil
}
