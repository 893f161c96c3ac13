package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"skilltree-backend/application/ports"
	"skilltree-backend/application/services"
	"skilltree-backend/domain/core/validators"
	"skilltree-backend/infrastructure/config"
	"skilltree-backend/infrastructure/persistence/memory"
	"skilltree-backend/infrastructure/persistence/snapshot"
	"skilltree-backend/infrastructure/persistence/sqlite"
	"skilltree-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideSnapshotter creates the snapshot backend named by the
// configuration, wrapped so persist outcomes show up in the metrics.
func ProvideSnapshotter(ctx context.Context, cfg *config.Config, metrics *observability.Collector) (ports.Snapshotter, error) {
	var backend ports.Snapshotter
	var err error
	switch cfg.StorageBackend {
	case config.StorageBackendSQLite:
		backend, err = sqlite.Open(ctx, cfg.SQLitePath)
	case config.StorageBackendFile:
		backend, err = snapshot.NewFileStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}
	return snapshot.NewInstrumented(backend, metrics), nil
}

// ProvideStore creates the entity store and hydrates it from the last
// persisted snapshot.
func ProvideStore(ctx context.Context, snapshots ports.Snapshotter, logger *zap.Logger) (ports.EntityStore, error) {
	store := memory.NewStore()

	snap, err := snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Restore(ctx, snap); err != nil {
		return nil, err
	}

	logger.Info("store hydrated",
		zap.Int("skills", len(snap.Skills)),
		zap.Int("counters", len(snap.Counters)),
	)
	return store, nil
}

// ProvideTreeValidator creates the tree validator
func ProvideTreeValidator() *validators.TreeValidator {
	return validators.NewTreeValidator()
}

// ProvideMetrics creates the metrics collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("skilltree")
}

// ProvideSkillService creates the skill service
func ProvideSkillService(
	store ports.EntityStore,
	validator *validators.TreeValidator,
	snapshots ports.Snapshotter,
	logger *zap.Logger,
) *services.SkillService {
	return services.NewSkillService(store, validator, snapshots, logger)
}

// ProvideCounterService creates the counter service
func ProvideCounterService(
	store ports.EntityStore,
	snapshots ports.Snapshotter,
	logger *zap.Logger,
) *services.CounterService {
	return services.NewCounterService(store, snapshots, logger)
}

// ProvideAggregationService creates the aggregation service
func ProvideAggregationService(store ports.EntityStore, logger *zap.Logger) *services.AggregationService {
	return services.NewAggregationService(store, logger)
}

// ProvideTransferService creates the transfer service
func ProvideTransferService(
	store ports.EntityStore,
	snapshots ports.Snapshotter,
	logger *zap.Logger,
) *services.TransferService {
	return services.NewTransferService(store, snapshots, logger)
}
