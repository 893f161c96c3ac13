package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "skilltree-backend/pkg/errors"
)

func TestSummaryFor_SingleChildWithCounter(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)

	programming := env.mustRoot(t, "Programming")
	golang := env.mustChild(t, programming, "Go")
	env.mustCounter(t, golang, CreateCounterInput{Name: "Hours", Unit: strPtr("h"), Value: 5})

	// Act
	summary, err := env.aggregation.SummaryFor(ctx, programming.ID().String())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Programming", summary.Name)
	assert.Equal(t, 1, summary.TotalDescendants)
	assert.Equal(t, 1, summary.DirectChildrenCount)
	require.Len(t, summary.CounterTotals, 1)
	total := summary.CounterTotals[0]
	assert.Equal(t, "Hours", total.Name)
	require.NotNil(t, total.Unit)
	assert.Equal(t, "h", *total.Unit)
	assert.Equal(t, 5.0, total.Total)
	assert.Equal(t, 1, total.Count)
	assert.Nil(t, total.Target)

	// Child summary is nested
	require.Len(t, summary.Children, 1)
	assert.Equal(t, "Go", summary.Children[0].Name)
	require.Len(t, summary.Children[0].CounterTotals, 1)
	assert.Equal(t, 5.0, summary.Children[0].CounterTotals[0].Total)
}

func TestSummaryFor_MultiLevelSum(t *testing.T) {
	// Arrange: Hours counters on three levels sum to 18.5 at the root
	ctx := context.Background()
	env := newTestEnv(t)

	root := env.mustRoot(t, "Programming")
	mid := env.mustChild(t, root, "Go")
	leaf := env.mustChild(t, mid, "Concurrency")

	env.mustCounter(t, root, CreateCounterInput{Name: "Hours", Unit: strPtr("h"), Value: 10})
	env.mustCounter(t, mid, CreateCounterInput{Name: "Hours", Unit: strPtr("h"), Value: 6})
	env.mustCounter(t, leaf, CreateCounterInput{Name: "Hours", Unit: strPtr("h"), Value: 2.5})

	// Act
	summary, err := env.aggregation.SummaryFor(ctx, root.ID().String())

	// Assert
	require.NoError(t, err)
	require.Len(t, summary.CounterTotals, 1)
	assert.Equal(t, 18.5, summary.CounterTotals[0].Total)
	assert.Equal(t, 3, summary.CounterTotals[0].Count)
	assert.Equal(t, 2, summary.TotalDescendants)
	assert.Equal(t, 1, summary.DirectChildrenCount)
}

func TestSummaryFor_UnitBuckets(t *testing.T) {
	// Arrange: same name with unit "h", unit "" and no unit stay separate
	ctx := context.Background()
	env := newTestEnv(t)

	root := env.mustRoot(t, "Music")
	env.mustCounter(t, root, CreateCounterInput{Name: "Practice", Unit: strPtr("h"), Value: 1})
	env.mustCounter(t, root, CreateCounterInput{Name: "Practice", Unit: strPtr(""), Value: 2})
	env.mustCounter(t, root, CreateCounterInput{Name: "Practice", Value: 4})

	// Act
	summary, err := env.aggregation.SummaryFor(ctx, root.ID().String())

	// Assert: three distinct buckets in first-seen order
	require.NoError(t, err)
	require.Len(t, summary.CounterTotals, 3)

	assert.Equal(t, "h", *summary.CounterTotals[0].Unit)
	assert.Equal(t, 1.0, summary.CounterTotals[0].Total)

	require.NotNil(t, summary.CounterTotals[1].Unit)
	assert.Equal(t, "", *summary.CounterTotals[1].Unit)
	assert.Equal(t, 2.0, summary.CounterTotals[1].Total)

	assert.Nil(t, summary.CounterTotals[2].Unit)
	assert.Equal(t, 4.0, summary.CounterTotals[2].Total)
}

func TestSummaryFor_TargetSummation(t *testing.T) {
	// Arrange: target is the sum of contributors that have one; a bucket
	// with no targets at all reports nil
	ctx := context.Background()
	env := newTestEnv(t)

	root := env.mustRoot(t, "Running")
	child := env.mustChild(t, root, "Sprints")
	env.mustCounter(t, root, CreateCounterInput{Name: "Km", Unit: strPtr("km"), Value: 3, Target: floatPtr(50)})
	env.mustCounter(t, child, CreateCounterInput{Name: "Km", Unit: strPtr("km"), Value: 7})
	env.mustCounter(t, child, CreateCounterInput{Name: "Sessions", Value: 2})

	// Act
	summary, err := env.aggregation.SummaryFor(ctx, root.ID().String())

	// Assert
	require.NoError(t, err)
	require.Len(t, summary.CounterTotals, 2)

	km := summary.CounterTotals[0]
	assert.Equal(t, 10.0, km.Total)
	require.NotNil(t, km.Target)
	assert.Equal(t, 50.0, *km.Target)

	sessions := summary.CounterTotals[1]
	assert.Equal(t, 2.0, sessions.Total)
	assert.Nil(t, sessions.Target)
}

func TestSummaryFor_ReflectsIncrement(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)

	root := env.mustRoot(t, "Reading")
	counter := env.mustCounter(t, root, CreateCounterInput{Name: "Books", Value: 5})

	// Act: a negative increment shows up in a fresh summary
	_, err := env.counters.Increment(ctx, counter.ID().String(), -3)
	require.NoError(t, err)

	summary, err := env.aggregation.SummaryFor(ctx, root.ID().String())

	// Assert
	require.NoError(t, err)
	require.Len(t, summary.CounterTotals, 1)
	assert.Equal(t, 2.0, summary.CounterTotals[0].Total)
}

func TestSummaryFor_LeafWithoutCounters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	leaf := env.mustRoot(t, "Empty")

	summary, err := env.aggregation.SummaryFor(ctx, leaf.ID().String())

	require.NoError(t, err)
	assert.Empty(t, summary.CounterTotals)
	assert.Equal(t, 0, summary.TotalDescendants)
	assert.Empty(t, summary.Children)
}

func TestSummaryFor_UnknownSkill(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.aggregation.SummaryFor(context.Background(), "8b8f6f70-9f4e-4a63-97a7-76b9f0f3a111")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRootsSummary(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)

	first := env.mustRoot(t, "First")
	second := env.mustRoot(t, "Second")
	child := env.mustChild(t, second, "Child")
	env.mustCounter(t, child, CreateCounterInput{Name: "Hours", Value: 4})

	// Act
	summaries, err := env.aggregation.RootsSummary(ctx)

	// Assert: roots in creation order, totals bubbled up
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, first.ID().String(), summaries[0].ID)
	assert.Equal(t, second.ID().String(), summaries[1].ID)
	require.Len(t, summaries[1].CounterTotals, 1)
	assert.Equal(t, 4.0, summaries[1].CounterTotals[0].Total)
}
