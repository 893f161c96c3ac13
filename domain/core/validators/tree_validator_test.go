package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// chain builds parents a <- b <- c ... and returns the ids in order
func chain(n int) ([]valueobjects.SkillID, ParentMap) {
	ids := make([]valueobjects.SkillID, n)
	parents := ParentMap{}
	for i := range ids {
		ids[i] = valueobjects.NewSkillID()
		if i == 0 {
			parents[ids[i]] = nil
		} else {
			p := ids[i-1]
			parents[ids[i]] = &p
		}
	}
	return ids, parents
}

func TestValidateReparent_SelfParent(t *testing.T) {
	// Arrange
	validator := NewTreeValidator()
	ids, parents := chain(1)

	// Act
	err := validator.ValidateReparent(ids[0], ids[0], parents)

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCycleDetected(err))
}

func TestValidateReparent_DescendantAsParent(t *testing.T) {
	// Arrange: root <- mid <- leaf; moving root under leaf must fail
	validator := NewTreeValidator()
	ids, parents := chain(3)

	// Act
	err := validator.ValidateReparent(ids[0], ids[2], parents)

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCycleDetected(err))
}

func TestValidateReparent_DirectChildAsParent(t *testing.T) {
	validator := NewTreeValidator()
	ids, parents := chain(2)

	err := validator.ValidateReparent(ids[0], ids[1], parents)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCycleDetected(err))
}

func TestValidateReparent_ValidMoves(t *testing.T) {
	validator := NewTreeValidator()
	ids, parents := chain(3)

	// A sibling root to move around
	other := valueobjects.NewSkillID()
	parents[other] = nil

	tests := []struct {
		name   string
		skill  valueobjects.SkillID
		parent valueobjects.SkillID
	}{
		{"leaf under other root", ids[2], other},
		{"mid under other root", ids[1], other},
		{"other root under leaf", other, ids[2]},
		{"reparent to current parent", ids[2], ids[1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, validator.ValidateReparent(tt.skill, tt.parent, parents))
		})
	}
}

func TestValidateReparent_UnknownParent(t *testing.T) {
	validator := NewTreeValidator()
	ids, parents := chain(1)

	err := validator.ValidateReparent(ids[0], valueobjects.NewSkillID(), parents)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestValidateParentExists(t *testing.T) {
	validator := NewTreeValidator()
	ids, parents := chain(1)

	assert.NoError(t, validator.ValidateParentExists(ids[0], parents))
	assert.Error(t, validator.ValidateParentExists(valueobjects.NewSkillID(), parents))
}
