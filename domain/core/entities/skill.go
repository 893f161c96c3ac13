package entities

import (
	"strings"
	"time"

	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// Name length bounds shared by skills and counters
const (
	NameMinLength = 1
	NameMaxLength = 255
)

// Skill is a named node in the hierarchy. It may have a parent skill and
// owns zero or more counters. Child links are never stored on the skill
// itself; they are derived from parent pointers by the store.
type Skill struct {
	id        valueobjects.SkillID
	name      string
	parentID  *valueobjects.SkillID
	createdAt time.Time
	updatedAt time.Time
}

// NewSkill creates a new skill with a fresh identifier
func NewSkill(name string, parentID *valueobjects.SkillID) (*Skill, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Skill{
		id:        valueobjects.NewSkillID(),
		name:      name,
		parentID:  cloneParent(parentID),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructSkill rebuilds a skill from stored data with preserved timestamps
func ReconstructSkill(
	id valueobjects.SkillID,
	name string,
	parentID *valueobjects.SkillID,
	createdAt time.Time,
	updatedAt time.Time,
) *Skill {
	return &Skill{
		id:        id,
		name:      name,
		parentID:  cloneParent(parentID),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the skill identifier
func (s *Skill) ID() valueobjects.SkillID {
	return s.id
}

// Name returns the skill name
func (s *Skill) Name() string {
	return s.name
}

// ParentID returns the parent skill identifier, or nil for a root skill
func (s *Skill) ParentID() *valueobjects.SkillID {
	return cloneParent(s.parentID)
}

// IsRoot reports whether the skill has no parent
func (s *Skill) IsRoot() bool {
	return s.parentID == nil
}

// CreatedAt returns the creation timestamp
func (s *Skill) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns the last modification timestamp
func (s *Skill) UpdatedAt() time.Time {
	return s.updatedAt
}

// Rename changes the skill name
func (s *Skill) Rename(name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	s.name = name
	s.updatedAt = time.Now().UTC()
	return nil
}

// SetParent moves the skill under a new parent. A nil parent detaches the
// skill to root. Structural validity (existence, cycles) is the tree
// validator's concern, not the entity's.
func (s *Skill) SetParent(parentID *valueobjects.SkillID) {
	s.parentID = cloneParent(parentID)
	s.updatedAt = time.Now().UTC()
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < NameMinLength {
		return "", pkgerrors.NewValidationError("name cannot be empty")
	}
	if len(name) > NameMaxLength {
		return "", pkgerrors.NewValidationError("name exceeds maximum length")
	}
	return name, nil
}

func cloneParent(id *valueobjects.SkillID) *valueobjects.SkillID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
