package entities

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestNewCounter(t *testing.T) {
	// Arrange
	skillID := valueobjects.NewSkillID()

	// Act
	counter, err := NewCounter(skillID, "Hours", strPtr("h"), 5, floatPtr(100))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Hours", counter.Name())
	require.NotNil(t, counter.Unit())
	assert.Equal(t, "h", *counter.Unit())
	assert.Equal(t, 5.0, counter.Value())
	require.NotNil(t, counter.Target())
	assert.Equal(t, 100.0, *counter.Target())
	assert.True(t, counter.SkillID().Equals(skillID))
}

func TestNewCounter_NoUnitNoTarget(t *testing.T) {
	counter, err := NewCounter(valueobjects.NewSkillID(), "Sessions", nil, 0, nil)

	require.NoError(t, err)
	assert.Nil(t, counter.Unit())
	assert.Nil(t, counter.Target())
}

func TestNewCounter_NegativeValue(t *testing.T) {
	counter, err := NewCounter(valueobjects.NewSkillID(), "Score", nil, -12.5, nil)

	require.NoError(t, err)
	assert.Equal(t, -12.5, counter.Value())
}

func TestNewCounter_Invalid(t *testing.T) {
	skillID := valueobjects.NewSkillID()

	tests := []struct {
		name   string
		run    func() error
	}{
		{"empty name", func() error {
			_, err := NewCounter(skillID, "", nil, 0, nil)
			return err
		}},
		{"unit too long", func() error {
			_, err := NewCounter(skillID, "Hours", strPtr(strings.Repeat("u", UnitMaxLength+1)), 0, nil)
			return err
		}},
		{"NaN value", func() error {
			_, err := NewCounter(skillID, "Hours", nil, math.NaN(), nil)
			return err
		}},
		{"infinite target", func() error {
			_, err := NewCounter(skillID, "Hours", nil, 0, floatPtr(math.Inf(1)))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()

			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestCounter_Increment(t *testing.T) {
	// Arrange
	counter, err := NewCounter(valueobjects.NewSkillID(), "Hours", nil, 5, nil)
	require.NoError(t, err)

	// Act
	require.NoError(t, counter.Increment(2.5))
	require.NoError(t, counter.Increment(-3))

	// Assert
	assert.Equal(t, 4.5, counter.Value())
}

func TestCounter_Increment_NonFinite(t *testing.T) {
	counter, err := NewCounter(valueobjects.NewSkillID(), "Hours", nil, 5, nil)
	require.NoError(t, err)

	err = counter.Increment(math.NaN())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, 5.0, counter.Value())
}

func TestCounter_SetUnitAndTarget(t *testing.T) {
	counter, err := NewCounter(valueobjects.NewSkillID(), "Hours", strPtr("h"), 0, floatPtr(10))
	require.NoError(t, err)

	// Clear the unit, then the target
	require.NoError(t, counter.SetUnit(nil))
	require.NoError(t, counter.SetTarget(nil))

	assert.Nil(t, counter.Unit())
	assert.Nil(t, counter.Target())
}
