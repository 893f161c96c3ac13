package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "skilltree-backend/pkg/errors"
)

func TestCounterService_Create_UnknownSkill(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.counters.Create(context.Background(), "5c1f6f70-9f4e-4a63-97a7-76b9f0f3a333", CreateCounterInput{Name: "Hours"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCounterService_List_FilteredByOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	first := env.mustRoot(t, "First")
	second := env.mustRoot(t, "Second")
	env.mustCounter(t, first, CreateCounterInput{Name: "Hours", Value: 1})
	env.mustCounter(t, second, CreateCounterInput{Name: "Sessions", Value: 2})

	// Act
	all, err := env.counters.List(ctx, nil)
	require.NoError(t, err)

	firstID := first.ID().String()
	owned, err := env.counters.List(ctx, &firstID)
	require.NoError(t, err)

	// Assert
	assert.Len(t, all, 2)
	require.Len(t, owned, 1)
	assert.Equal(t, "Hours", owned[0].Name())
}

func TestCounterService_Update_ClearUnitAndTarget(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.mustRoot(t, "Root")
	counter := env.mustCounter(t, root, CreateCounterInput{
		Name:   "Hours",
		Unit:   strPtr("h"),
		Value:  5,
		Target: floatPtr(10),
	})

	// Act: SetUnit / SetTarget with nil values clear the fields
	updated, err := env.counters.Update(ctx, counter.ID().String(), UpdateCounterInput{
		SetUnit:   true,
		SetTarget: true,
	})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, updated.Unit())
	assert.Nil(t, updated.Target())
	assert.Equal(t, 5.0, updated.Value(), "value untouched")
}

func TestCounterService_Update_PartialLeavesRestAlone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.mustRoot(t, "Root")
	counter := env.mustCounter(t, root, CreateCounterInput{Name: "Hours", Unit: strPtr("h"), Value: 5})

	updated, err := env.counters.Update(ctx, counter.ID().String(), UpdateCounterInput{Value: floatPtr(9)})

	require.NoError(t, err)
	assert.Equal(t, 9.0, updated.Value())
	require.NotNil(t, updated.Unit())
	assert.Equal(t, "h", *updated.Unit())
	assert.Equal(t, "Hours", updated.Name())
}

func TestCounterService_Update_RejectedPatchLeavesCounterUnchanged(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.mustRoot(t, "Root")
	counter := env.mustCounter(t, root, CreateCounterInput{Name: "Hours", Unit: strPtr("h"), Value: 5})

	// Act: the rename is valid on its own but the unit is over-length,
	// so the whole patch must be rejected
	longUnit := make([]byte, 60)
	for i := range longUnit {
		longUnit[i] = 'x'
	}
	_, err := env.counters.Update(ctx, counter.ID().String(), UpdateCounterInput{
		Name:    strPtr("Renamed"),
		SetUnit: true,
		Unit:    strPtr(string(longUnit)),
	})

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	after, err := env.counters.Get(ctx, counter.ID().String())
	require.NoError(t, err)
	assert.Equal(t, "Hours", after.Name(), "earlier fields of a failed patch must not stick")
	require.NotNil(t, after.Unit())
	assert.Equal(t, "h", *after.Unit())
	assert.Equal(t, 5.0, after.Value())
}

func TestCounterService_Increment_Signed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.mustRoot(t, "Root")
	counter := env.mustCounter(t, root, CreateCounterInput{Name: "Score", Value: 10})

	_, err := env.counters.Increment(ctx, counter.ID().String(), -25)
	require.NoError(t, err)

	current, err := env.counters.Get(ctx, counter.ID().String())
	require.NoError(t, err)
	assert.Equal(t, -15.0, current.Value())
}

func TestCounterService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.mustRoot(t, "Root")
	counter := env.mustCounter(t, root, CreateCounterInput{Name: "Hours", Value: 1})

	require.NoError(t, env.counters.Delete(ctx, counter.ID().String()))

	_, err := env.counters.Get(ctx, counter.ID().String())
	assert.True(t, pkgerrors.IsNotFound(err))

	// Owning skill survives
	_, err = env.skills.Get(ctx, root.ID().String())
	assert.NoError(t, err)
}
