package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// CounterID is a value object representing a unique counter identifier
type CounterID struct {
	value string
}

// NewCounterID creates a new random CounterID
func NewCounterID() CounterID {
	return CounterID{value: uuid.New().String()}
}

// NewCounterIDFromString creates a CounterID from an existing string
func NewCounterIDFromString(id string) (CounterID, error) {
	if id == "" {
		return CounterID{}, errors.New("counter ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return CounterID{}, errors.New("counter ID must be a valid UUID")
	}
	return CounterID{value: id}, nil
}

// String returns the string representation of the CounterID
func (id CounterID) String() string {
	return id.value
}

// Equals checks if two CounterIDs are equal
func (id CounterID) Equals(other CounterID) bool {
	return id.value == other.value
}

// IsZero checks if the CounterID is the zero value
func (id CounterID) IsZero() bool {
	return id.value == ""
}
