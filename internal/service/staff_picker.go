package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/spec-kit/callcenter-service/internal/repository"
)

// StaffPicker assigns complaints to a uniformly random active staff member.
type StaffPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStaffPicker uses rng as its random source; nil seeds from the clock.
func NewStaffPicker(rng *rand.Rand) *StaffPicker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &StaffPicker{rng: rng}
}

// PickRandom reads the staff pool inside the caller's unit. ok is false when
// no active staff exists.
func (p *StaffPicker) PickRandom(ctx context.Context, tx repository.Tx) (staffID int64, ok bool, err error) {
	ids, err := tx.Staff().ListActiveIDs(ctx)
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	p.mu.Lock()
	idx := p.rng.Intn(len(ids))
	p.mu.Unlock()
	return ids[idx], true, nil
}
