package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skilltree-backend/application/ports"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/domain/core/validators"
	"skilltree-backend/infrastructure/persistence/memory"
)

// nopSnapshotter satisfies the snapshot port without touching disk
type nopSnapshotter struct{}

func (nopSnapshotter) Persist(ctx context.Context, snap ports.Snapshot) error { return nil }
func (nopSnapshotter) Load(ctx context.Context) (ports.Snapshot, error)       { return ports.Snapshot{}, nil }

type testEnv struct {
	store       *memory.Store
	skills      *SkillService
	counters    *CounterService
	aggregation *AggregationService
	transfer    *TransferService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()
	snapshots := nopSnapshotter{}

	return &testEnv{
		store:       store,
		skills:      NewSkillService(store, validators.NewTreeValidator(), snapshots, logger),
		counters:    NewCounterService(store, snapshots, logger),
		aggregation: NewAggregationService(store, logger),
		transfer:    NewTransferService(store, snapshots, logger),
	}
}

func (e *testEnv) mustRoot(t *testing.T, name string) *entities.Skill {
	t.Helper()
	skill, err := e.skills.CreateRoot(context.Background(), name)
	require.NoError(t, err)
	return skill
}

func (e *testEnv) mustChild(t *testing.T, parent *entities.Skill, name string) *entities.Skill {
	t.Helper()
	skill, err := e.skills.CreateChild(context.Background(), parent.ID().String(), name)
	require.NoError(t, err)
	return skill
}

func (e *testEnv) mustCounter(t *testing.T, skill *entities.Skill, input CreateCounterInput) *entities.Counter {
	t.Helper()
	counter, err := e.counters.Create(context.Background(), skill.ID().String(), input)
	require.NoError(t, err)
	return counter
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
