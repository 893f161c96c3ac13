package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skilltree-backend/domain/core/entities"
	pkgerrors "skilltree-backend/pkg/errors"
)

func TestTransfer_ExportImport_RoundTrip(t *testing.T) {
	// Arrange: build a forest, export it, replace-import into a second
	// store, and export again; both exports must agree apart from IDs
	ctx := context.Background()
	env := newTestEnv(t)

	root := env.mustRoot(t, "Programming")
	golang := env.mustChild(t, root, "Go")
	env.mustChild(t, root, "Python")
	env.mustCounter(t, golang, CreateCounterInput{Name: "Hours", Unit: strPtr("h"), Value: 12.5, Target: floatPtr(100)})
	env.mustRoot(t, "Music")

	exported, err := env.transfer.Export(ctx)
	require.NoError(t, err)

	// Act
	other := newTestEnv(t)
	_, err = other.transfer.ImportReplace(ctx, toImportNodes(exported))
	require.NoError(t, err)

	reExported, err := other.transfer.Export(ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, stripIDs(exported), stripIDs(reExported))
}

func TestTransfer_ImportAdditive_PreservesExisting(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	existing := env.mustRoot(t, "Existing")

	docs := []ImportNode{{
		Name: "Imported",
		Children: []ImportNode{
			{Name: "A"},
			{Name: "B", Counters: []CounterDoc{{Name: "Hours", Value: 2}}},
		},
	}}

	// Act
	created, err := env.transfer.ImportAdditive(ctx, docs)

	// Assert
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Imported", created[0].Name)
	require.Len(t, created[0].Children, 2)
	assert.Equal(t, "A", created[0].Children[0].Name)
	assert.Equal(t, "B", created[0].Children[1].Name)

	// Fresh IDs were assigned
	assert.NotEmpty(t, created[0].ID)
	assert.NotEqual(t, existing.ID().String(), created[0].ID)

	// Both trees present, original first
	roots, err := env.store.ListRoots(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Existing", roots[0].Name())
	assert.Equal(t, "Imported", roots[1].Name())
}

func TestTransfer_ImportAdditive_AtomicOnInvalidDocument(t *testing.T) {
	// Arrange: a batch where the second tree is invalid deep down
	ctx := context.Background()
	env := newTestEnv(t)
	env.mustRoot(t, "Existing")

	docs := []ImportNode{
		{Name: "Fine"},
		{Name: "Broken", Children: []ImportNode{
			{Name: strings.Repeat("x", entities.NameMaxLength+1)},
		}},
	}

	// Act
	_, err := env.transfer.ImportAdditive(ctx, docs)

	// Assert: nothing from the batch was created
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	roots, listErr := env.store.ListRoots(ctx)
	require.NoError(t, listErr)
	require.Len(t, roots, 1)
	assert.Equal(t, "Existing", roots[0].Name())
}

func TestTransfer_ImportReplace_ValidatesBeforeDelete(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	env.mustRoot(t, "Precious")

	docs := []ImportNode{{
		Name:     "New",
		Counters: []CounterDoc{{Name: "", Value: 1}},
	}}

	// Act
	_, err := env.transfer.ImportReplace(ctx, docs)

	// Assert: invalid document rejected, existing data untouched
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	roots, listErr := env.store.ListRoots(ctx)
	require.NoError(t, listErr)
	require.Len(t, roots, 1)
	assert.Equal(t, "Precious", roots[0].Name())
}

func TestTransfer_ImportReplace_EmptyClearsEverything(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.mustRoot(t, "Gone")
	env.mustCounter(t, root, CreateCounterInput{Name: "Hours", Value: 1})

	created, err := env.transfer.ImportReplace(ctx, []ImportNode{})

	require.NoError(t, err)
	assert.Empty(t, created)

	skills, err := env.store.ListSkills(ctx)
	require.NoError(t, err)
	assert.Empty(t, skills)
	counters, err := env.store.ListCounters(ctx)
	require.NoError(t, err)
	assert.Empty(t, counters)
}

func TestTransfer_Export_SiblingOrder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	root := env.mustRoot(t, "Root")
	env.mustChild(t, root, "First")
	env.mustChild(t, root, "Second")
	env.mustChild(t, root, "Third")

	// Act
	exported, err := env.transfer.Export(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, exported, 1)
	require.Len(t, exported[0].Children, 3)
	assert.Equal(t, "First", exported[0].Children[0].Name)
	assert.Equal(t, "Second", exported[0].Children[1].Name)
	assert.Equal(t, "Third", exported[0].Children[2].Name)
}

func TestTransfer_ClearAll(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.mustRoot(t, "A")
	env.mustRoot(t, "B")

	require.NoError(t, env.transfer.ClearAll(ctx))

	skills, err := env.store.ListSkills(ctx)
	require.NoError(t, err)
	assert.Empty(t, skills)
}

// toImportNodes converts export output back into import documents, the way
// a client would round-trip a backup file.
func toImportNodes(nodes []*ExportNode) []ImportNode {
	out := make([]ImportNode, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, ImportNode{
			Name:     node.Name,
			Counters: node.Counters,
			Children: toImportNodes(node.Children),
		})
	}
	return out
}

// stripIDs blanks identifiers so round-trip comparisons see structure only
func stripIDs(nodes []*ExportNode) []*ExportNode {
	out := make([]*ExportNode, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, &ExportNode{
			Name:     node.Name,
			Counters: node.Counters,
			Children: stripIDs(node.Children),
		})
	}
	return out
}
