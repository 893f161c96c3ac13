package snapshot

import (
	"context"
	"io"

	"skilltree-backend/application/ports"
	"skilltree-backend/pkg/observability"
)

// Instrumented wraps a snapshot backend and counts persist outcomes
type Instrumented struct {
	inner   ports.Snapshotter
	metrics *observability.Collector
}

// NewInstrumented creates an instrumented snapshotter
func NewInstrumented(inner ports.Snapshotter, metrics *observability.Collector) *Instrumented {
	return &Instrumented{inner: inner, metrics: metrics}
}

func (i *Instrumented) Persist(ctx context.Context, snap ports.Snapshot) error {
	if err := i.inner.Persist(ctx, snap); err != nil {
		i.metrics.SnapshotErrors.Inc()
		return err
	}
	i.metrics.SnapshotsSaved.Inc()
	return nil
}

func (i *Instrumented) Load(ctx context.Context) (ports.Snapshot, error) {
	return i.inner.Load(ctx)
}

// Close forwards to the wrapped backend when it holds closable resources
func (i *Instrumented) Close() error {
	if closer, ok := i.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
