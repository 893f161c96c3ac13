package services

import (
	"context"

	"go.uber.org/zap"

	"skilltree-backend/application/ports"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// CreateCounterInput carries the fields for a new counter
type CreateCounterInput struct {
	Name   string
	Unit   *string
	Value  float64
	Target *float64
}

// UpdateCounterInput carries a partial counter update. SetUnit and
// SetTarget distinguish "clear the field" from "leave it alone".
type UpdateCounterInput struct {
	Name      *string
	SetUnit   bool
	Unit      *string
	Value     *float64
	SetTarget bool
	Target    *float64
}

// CounterService implements counter CRUD and increments. Counters belong to
// exactly one skill for their lifetime; there is no reparenting path.
type CounterService struct {
	store     ports.EntityStore
	snapshots ports.Snapshotter
	logger    *zap.Logger
}

// NewCounterService creates a new counter service
func NewCounterService(store ports.EntityStore, snapshots ports.Snapshotter, logger *zap.Logger) *CounterService {
	return &CounterService{
		store:     store,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Create adds a counter to an existing skill
func (s *CounterService) Create(ctx context.Context, skillID string, input CreateCounterInput) (*entities.Counter, error) {
	sid, err := valueobjects.NewSkillIDFromString(skillID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if _, err := s.store.SkillByID(ctx, sid); err != nil {
		return nil, err
	}

	counter, err := entities.NewCounter(sid, input.Name, input.Unit, input.Value, input.Target)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCounter(ctx, counter); err != nil {
		return nil, err
	}

	s.logger.Info("counter created",
		zap.String("counterID", counter.ID().String()),
		zap.String("skillID", sid.String()),
		zap.String("name", counter.Name()),
	)
	persistState(ctx, s.store, s.snapshots, s.logger)
	return counter, nil
}

// Get returns a single counter
func (s *CounterService) Get(ctx context.Context, id string) (*entities.Counter, error) {
	cid, err := valueobjects.NewCounterIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return s.store.CounterByID(ctx, cid)
}

// List returns all counters, or only those owned by one skill
func (s *CounterService) List(ctx context.Context, skillID *string) ([]*entities.Counter, error) {
	if skillID == nil {
		return s.store.ListCounters(ctx)
	}
	sid, err := valueobjects.NewSkillIDFromString(*skillID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return s.store.ListCountersOf(ctx, sid)
}

// Update applies a partial update to a counter
func (s *CounterService) Update(ctx context.Context, id string, input UpdateCounterInput) (*entities.Counter, error) {
	cid, err := valueobjects.NewCounterIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	current, err := s.store.CounterByID(ctx, cid)
	if err != nil {
		return nil, err
	}

	// Patch a detached copy so a rejected field never leaves earlier
	// mutations behind on the stored entity.
	counter := entities.ReconstructCounter(
		current.ID(), current.SkillID(),
		current.Name(), current.Unit(), current.Value(), current.Target(),
	)
	if input.Name != nil {
		if err := counter.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.SetUnit {
		if err := counter.SetUnit(input.Unit); err != nil {
			return nil, err
		}
	}
	if input.Value != nil {
		if err := counter.SetValue(*input.Value); err != nil {
			return nil, err
		}
	}
	if input.SetTarget {
		if err := counter.SetTarget(input.Target); err != nil {
			return nil, err
		}
	}

	if err := s.store.SaveCounter(ctx, counter); err != nil {
		return nil, err
	}

	s.logger.Info("counter updated", zap.String("counterID", cid.String()))
	persistState(ctx, s.store, s.snapshots, s.logger)
	return counter, nil
}

// Increment adds a signed delta to a counter's value
func (s *CounterService) Increment(ctx context.Context, id string, amount float64) (*entities.Counter, error) {
	cid, err := valueobjects.NewCounterIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	current, err := s.store.CounterByID(ctx, cid)
	if err != nil {
		return nil, err
	}

	counter := entities.ReconstructCounter(
		current.ID(), current.SkillID(),
		current.Name(), current.Unit(), current.Value(), current.Target(),
	)
	if err := counter.Increment(amount); err != nil {
		return nil, err
	}
	if err := s.store.SaveCounter(ctx, counter); err != nil {
		return nil, err
	}

	s.logger.Info("counter incremented",
		zap.String("counterID", cid.String()),
		zap.Float64("amount", amount),
		zap.Float64("value", counter.Value()),
	)
	persistState(ctx, s.store, s.snapshots, s.logger)
	return counter, nil
}

// Delete removes a single counter
func (s *CounterService) Delete(ctx context.Context, id string) error {
	cid, err := valueobjects.NewCounterIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if err := s.store.DeleteCounter(ctx, cid); err != nil {
		return err
	}

	s.logger.Info("counter deleted", zap.String("counterID", cid.String()))
	persistState(ctx, s.store, s.snapshots, s.logger)
	return nil
}
