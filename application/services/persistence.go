package services

import (
	"context"

	"go.uber.org/zap"

	"skilltree-backend/application/ports"
)

// persistState snapshots the full store after a mutation. Snapshot failures
// are logged and swallowed: the in-memory state already changed and stays
// authoritative, matching the store-then-notify contract with persistence.
func persistState(ctx context.Context, store ports.EntityStore, snapshots ports.Snapshotter, logger *zap.Logger) {
	snap, err := store.Snapshot(ctx)
	if err == nil {
		err = snapshots.Persist(ctx, snap)
	}
	if err != nil {
		logger.Warn("failed to persist state snapshot", zap.Error(err))
	}
}
