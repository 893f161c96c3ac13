package ports

import (
	"context"

	"skilltree-backend/domain/core/entities"
	"skilltree-backend/domain/core/valueobjects"
)

// SkillRepository defines skill access on the entity store. Listing methods
// return skills in stable insertion order so repeated reads (and exports)
// observe identical sibling ordering.
type SkillRepository interface {
	SaveSkill(ctx context.Context, skill *entities.Skill) error
	SkillByID(ctx context.Context, id valueobjects.SkillID) (*entities.Skill, error)
	ListSkills(ctx context.Context) ([]*entities.Skill, error)
	ListChildren(ctx context.Context, id valueobjects.SkillID) ([]*entities.Skill, error)
	ListRoots(ctx context.Context) ([]*entities.Skill, error)

	// DeleteSkills removes the given skills and every counter they own in a
	// single critical section; either all of them go or none do.
	DeleteSkills(ctx context.Context, ids []valueobjects.SkillID) error
}

// CounterRepository defines counter access on the entity store
type CounterRepository interface {
	SaveCounter(ctx context.Context, counter *entities.Counter) error
	CounterByID(ctx context.Context, id valueobjects.CounterID) (*entities.Counter, error)
	ListCounters(ctx context.Context) ([]*entities.Counter, error)
	ListCountersOf(ctx context.Context, skillID valueobjects.SkillID) ([]*entities.Counter, error)
	DeleteCounter(ctx context.Context, id valueobjects.CounterID) error
}

// EntityStore is the single owner of all skill and counter records. Other
// components hold identifiers only and resolve them through the store.
type EntityStore interface {
	SkillRepository
	CounterRepository

	// Clear drops every skill and counter
	Clear(ctx context.Context) error

	// Snapshot captures the full store state for persistence
	Snapshot(ctx context.Context) (Snapshot, error)

	// Restore replaces the full store state from a snapshot
	Restore(ctx context.Context, snap Snapshot) error
}
