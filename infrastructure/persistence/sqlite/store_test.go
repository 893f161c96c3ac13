package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skilltree-backend/application/ports"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_PersistLoad_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	unit := "h"
	target := 100.0
	parent := "9a1f6f70-9f4e-4a63-97a7-76b9f0f3a001"
	snap := ports.Snapshot{
		Skills: []ports.SkillRecord{
			{ID: parent, Name: "Programming", CreatedAt: now, UpdatedAt: now},
			{ID: "9a1f6f70-9f4e-4a63-97a7-76b9f0f3a002", Name: "Go", ParentID: &parent, CreatedAt: now, UpdatedAt: now},
		},
		Counters: []ports.CounterRecord{
			{ID: "9a1f6f70-9f4e-4a63-97a7-76b9f0f3a003", SkillID: parent, Name: "Hours", Unit: &unit, Value: 12.5, Target: &target},
			{ID: "9a1f6f70-9f4e-4a63-97a7-76b9f0f3a004", SkillID: parent, Name: "Sessions", Value: 3},
		},
	}

	// Act
	require.NoError(t, store.Persist(ctx, snap))
	loaded, err := store.Load(ctx)

	// Assert: row order and nullable columns survive
	require.NoError(t, err)
	require.Len(t, loaded.Skills, 2)
	assert.Equal(t, "Programming", loaded.Skills[0].Name)
	assert.Nil(t, loaded.Skills[0].ParentID)
	require.NotNil(t, loaded.Skills[1].ParentID)
	assert.Equal(t, parent, *loaded.Skills[1].ParentID)

	require.Len(t, loaded.Counters, 2)
	assert.Equal(t, "Hours", loaded.Counters[0].Name)
	require.NotNil(t, loaded.Counters[0].Unit)
	assert.Equal(t, "h", *loaded.Counters[0].Unit)
	require.NotNil(t, loaded.Counters[0].Target)
	assert.Equal(t, 100.0, *loaded.Counters[0].Target)
	assert.Nil(t, loaded.Counters[1].Unit)
	assert.Nil(t, loaded.Counters[1].Target)
}

func TestSQLiteStore_Persist_ReplacesPreviousSnapshot(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now().UTC()

	first := ports.Snapshot{Skills: []ports.SkillRecord{
		{ID: "9a1f6f70-9f4e-4a63-97a7-76b9f0f3a010", Name: "Old", CreatedAt: now, UpdatedAt: now},
	}}
	second := ports.Snapshot{Skills: []ports.SkillRecord{
		{ID: "9a1f6f70-9f4e-4a63-97a7-76b9f0f3a011", Name: "New", CreatedAt: now, UpdatedAt: now},
	}}

	// Act
	require.NoError(t, store.Persist(ctx, first))
	require.NoError(t, store.Persist(ctx, second))
	loaded, err := store.Load(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, loaded.Skills, 1)
	assert.Equal(t, "New", loaded.Skills[0].Name)
}

func TestSQLiteStore_Load_Empty(t *testing.T) {
	store := openTestStore(t)

	snap, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snap.Skills)
	assert.Empty(t, snap.Counters)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	// Arrange
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")
	now := time.Now().UTC()

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx, ports.Snapshot{Skills: []ports.SkillRecord{
		{ID: "9a1f6f70-9f4e-4a63-97a7-76b9f0f3a020", Name: "Durable", CreatedAt: now, UpdatedAt: now},
	}}))
	require.NoError(t, store.Close())

	// Act
	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	loaded, err := reopened.Load(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, loaded.Skills, 1)
	assert.Equal(t, "Durable", loaded.Skills[0].Name)
}
