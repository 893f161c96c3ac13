package ports

import (
	"context"
	"time"
)

// SkillRecord is the flat persisted form of a skill. Record order in a
// snapshot is insertion order and must be preserved by snapshot stores.
type SkillRecord struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *string   `json:"parent_id" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CounterRecord is the flat persisted form of a counter
type CounterRecord struct {
	ID      string   `json:"id" db:"id"`
	SkillID string   `json:"skill_id" db:"skill_id"`
	Name    string   `json:"name" db:"name"`
	Unit    *string  `json:"unit" db:"unit"`
	Value   float64  `json:"value" db:"value"`
	Target  *float64 `json:"target" db:"target"`
}

// Snapshot is the full persisted state of the entity store
type Snapshot struct {
	Skills   []SkillRecord
	Counters []CounterRecord
}

// Snapshotter persists full-store snapshots. The store is asked to
// serialize its entire state after every mutation and to load it once at
// startup; the core has no opinion on the storage medium behind this port.
type Snapshotter interface {
	Persist(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
}
