package entities

import (
	"math"
	"strings"

	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// UnitMaxLength bounds the optional unit label
const UnitMaxLength = 50

// Counter is a numeric progress measure owned by exactly one skill for its
// whole lifetime. Values are signed floats; the optional target is advisory
// and never enforced.
type Counter struct {
	id      valueobjects.CounterID
	skillID valueobjects.SkillID
	name    string
	unit    *string
	value   float64
	target  *float64
}

// NewCounter creates a new counter with a fresh identifier
func NewCounter(skillID valueobjects.SkillID, name string, unit *string, value float64, target *float64) (*Counter, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	unit, err = normalizeUnit(unit)
	if err != nil {
		return nil, err
	}
	if err := validateNumber(value, "value"); err != nil {
		return nil, err
	}
	if target != nil {
		if err := validateNumber(*target, "target"); err != nil {
			return nil, err
		}
	}

	return &Counter{
		id:      valueobjects.NewCounterID(),
		skillID: skillID,
		name:    name,
		unit:    cloneString(unit),
		value:   value,
		target:  cloneFloat(target),
	}, nil
}

// ReconstructCounter rebuilds a counter from stored data
func ReconstructCounter(
	id valueobjects.CounterID,
	skillID valueobjects.SkillID,
	name string,
	unit *string,
	value float64,
	target *float64,
) *Counter {
	return &Counter{
		id:      id,
		skillID: skillID,
		name:    name,
		unit:    cloneString(unit),
		value:   value,
		target:  cloneFloat(target),
	}
}

// ID returns the counter identifier
func (c *Counter) ID() valueobjects.CounterID {
	return c.id
}

// SkillID returns the identifier of the owning skill
func (c *Counter) SkillID() valueobjects.SkillID {
	return c.skillID
}

// Name returns the counter name
func (c *Counter) Name() string {
	return c.name
}

// Unit returns the unit label, or nil when the counter has none. A nil unit
// is deliberately distinct from an empty-string unit everywhere, including
// aggregation buckets.
func (c *Counter) Unit() *string {
	return cloneString(c.unit)
}

// Value returns the current value
func (c *Counter) Value() float64 {
	return c.value
}

// Target returns the advisory target, or nil
func (c *Counter) Target() *float64 {
	return cloneFloat(c.target)
}

// Rename changes the counter name
func (c *Counter) Rename(name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	c.name = name
	return nil
}

// SetUnit changes the unit label
func (c *Counter) SetUnit(unit *string) error {
	unit, err := normalizeUnit(unit)
	if err != nil {
		return err
	}
	c.unit = cloneString(unit)
	return nil
}

// SetValue replaces the current value
func (c *Counter) SetValue(value float64) error {
	if err := validateNumber(value, "value"); err != nil {
		return err
	}
	c.value = value
	return nil
}

// SetTarget replaces the advisory target
func (c *Counter) SetTarget(target *float64) error {
	if target != nil {
		if err := validateNumber(*target, "target"); err != nil {
			return err
		}
	}
	c.target = cloneFloat(target)
	return nil
}

// Increment adds a signed delta to the current value
func (c *Counter) Increment(delta float64) error {
	if err := validateNumber(delta, "amount"); err != nil {
		return err
	}
	c.value += delta
	return nil
}

func normalizeUnit(unit *string) (*string, error) {
	if unit == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*unit)
	if len(trimmed) > UnitMaxLength {
		return nil, pkgerrors.NewValidationError("unit exceeds maximum length")
	}
	return &trimmed, nil
}

func validateNumber(v float64, field string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pkgerrors.NewValidationError(field + " must be a finite number")
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
