package di

import (
	"io"

	"go.uber.org/zap"

	"skilltree-backend/application/ports"
	"skilltree-backend/application/services"
	"skilltree-backend/infrastructure/config"
	"skilltree-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config             *config.Config
	Logger             *zap.Logger
	Store              ports.EntityStore
	Snapshots          ports.Snapshotter
	SkillService       *services.SkillService
	CounterService     *services.CounterService
	AggregationService *services.AggregationService
	TransferService    *services.TransferService
	Metrics            *observability.Collector
}

// Close releases resources held by the container, such as the sqlite
// snapshot backend's database handle.
func (c *Container) Close() error {
	if closer, ok := c.Snapshots.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
