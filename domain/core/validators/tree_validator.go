package validators

import (
	"fmt"

	"skilltree-backend/domain/core/valueobjects"
	"skilltree-backend/pkg/errors"
)

// ParentResolver resolves a skill's parent pointer. The in-memory store
// implements this; the validator never touches the store directly.
type ParentResolver interface {
	// ParentOf returns the parent of the given skill. The second return is
	// false when the skill does not exist at all.
	ParentOf(id valueobjects.SkillID) (*valueobjects.SkillID, bool)
}

// ParentMap is a point-in-time view of every skill's parent pointer,
// keyed by skill. It implements ParentResolver for validation against a
// consistent snapshot of the tree.
type ParentMap map[valueobjects.SkillID]*valueobjects.SkillID

// ParentOf implements ParentResolver
func (m ParentMap) ParentOf(id valueobjects.SkillID) (*valueobjects.SkillID, bool) {
	parent, ok := m[id]
	return parent, ok
}

// TreeValidator guards every structural mutation of the skill forest. It
// rejects invalid parent references and any reparent that would create a
// cycle, before the store is touched.
type TreeValidator struct{}

// NewTreeValidator creates a new tree validator
func NewTreeValidator() *TreeValidator {
	return &TreeValidator{}
}

// ValidateParentExists checks that a proposed parent resolves to a skill
func (v *TreeValidator) ValidateParentExists(parentID valueobjects.SkillID, resolver ParentResolver) error {
	if _, ok := resolver.ParentOf(parentID); !ok {
		return errors.NewNotFoundError(fmt.Sprintf("parent skill %s", parentID))
	}
	return nil
}

// ValidateReparent checks that moving skillID under newParentID keeps the
// forest acyclic. It walks up from the proposed parent through parent
// pointers; if the skill being moved is encountered, the move would create
// a cycle. The walk terminates because the forest is acyclic by induction:
// every prior mutation went through this same check.
func (v *TreeValidator) ValidateReparent(
	skillID valueobjects.SkillID,
	newParentID valueobjects.SkillID,
	resolver ParentResolver,
) error {
	if skillID.Equals(newParentID) {
		return errors.NewCycleDetectedError("skill cannot be its own parent")
	}

	parent, ok := resolver.ParentOf(newParentID)
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("parent skill %s", newParentID))
	}

	visited := map[valueobjects.SkillID]struct{}{newParentID: {}}
	for parent != nil {
		current := *parent
		if current.Equals(skillID) {
			return errors.NewCycleDetectedError(fmt.Sprintf(
				"setting parent would create a cycle: skill %s is an ancestor of skill %s",
				skillID, newParentID,
			))
		}
		// Guards against walking a corrupted graph forever; cannot happen
		// when every mutation passed this validator.
		if _, seen := visited[current]; seen {
			return errors.NewInternalError(fmt.Sprintf("existing cycle detected in skill tree at skill %s", current))
		}
		visited[current] = struct{}{}

		parent, ok = resolver.ParentOf(current)
		if !ok {
			return errors.NewInternalError(fmt.Sprintf("dangling parent pointer at skill %s", current))
		}
	}

	return nil
}
