package services

import (
	"context"

	"go.uber.org/zap"

	"skilltree-backend/application/ports"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/domain/core/validators"
	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// TreeNode is the nested read model of a skill subtree
type TreeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	ParentID *string     `json:"parent_id"`
	Children []*TreeNode `json:"children"`
}

// UpdateSkillInput carries a partial skill update. SetParent distinguishes
// "reparent" (possibly to root when ParentID is nil) from "leave the parent
// alone".
type UpdateSkillInput struct {
	Name      *string
	SetParent bool
	ParentID  *string
}

// SkillService implements skill tree mutations and tree reads. Every
// structural change goes through the tree validator before the store is
// touched, and every successful mutation is followed by a full snapshot.
type SkillService struct {
	store     ports.EntityStore
	validator *validators.TreeValidator
	snapshots ports.Snapshotter
	logger    *zap.Logger
}

// NewSkillService creates a new skill service
func NewSkillService(
	store ports.EntityStore,
	validator *validators.TreeValidator,
	snapshots ports.Snapshotter,
	logger *zap.Logger,
) *SkillService {
	return &SkillService{
		store:     store,
		validator: validator,
		snapshots: snapshots,
		logger:    logger,
	}
}

// CreateRoot creates a new skill without a parent
func (s *SkillService) CreateRoot(ctx context.Context, name string) (*entities.Skill, error) {
	skill, err := entities.NewSkill(name, nil)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSkill(ctx, skill); err != nil {
		return nil, err
	}

	s.logger.Info("skill created",
		zap.String("skillID", skill.ID().String()),
		zap.String("name", skill.Name()),
	)
	persistState(ctx, s.store, s.snapshots, s.logger)
	return skill, nil
}

// CreateChild creates a new skill under an existing parent
func (s *SkillService) CreateChild(ctx context.Context, parentID string, name string) (*entities.Skill, error) {
	pid, err := valueobjects.NewSkillIDFromString(parentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if _, err := s.store.SkillByID(ctx, pid); err != nil {
		return nil, err
	}

	skill, err := entities.NewSkill(name, &pid)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSkill(ctx, skill); err != nil {
		return nil, err
	}

	s.logger.Info("skill created",
		zap.String("skillID", skill.ID().String()),
		zap.String("parentID", pid.String()),
		zap.String("name", skill.Name()),
	)
	persistState(ctx, s.store, s.snapshots, s.logger)
	return skill, nil
}

// Get returns a single skill
func (s *SkillService) Get(ctx context.Context, id string) (*entities.Skill, error) {
	sid, err := valueobjects.NewSkillIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return s.store.SkillByID(ctx, sid)
}

// List returns all skills in stable order
func (s *SkillService) List(ctx context.Context) ([]*entities.Skill, error) {
	return s.store.ListSkills(ctx)
}

// Update applies a partial update: rename, reparent, or both. All checks
// run before the first mutation so a rejected update leaves the tree
// exactly as it was.
func (s *SkillService) Update(ctx context.Context, id string, input UpdateSkillInput) (*entities.Skill, error) {
	sid, err := valueobjects.NewSkillIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	skill, err := s.store.SkillByID(ctx, sid)
	if err != nil {
		return nil, err
	}

	var newParent *valueobjects.SkillID
	if input.SetParent && input.ParentID != nil {
		pid, err := valueobjects.NewSkillIDFromString(*input.ParentID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		parentMap, err := s.parentMap(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.validator.ValidateReparent(sid, pid, parentMap); err != nil {
			return nil, err
		}
		newParent = &pid
	}

	if input.Name != nil {
		if err := skill.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.SetParent {
		skill.SetParent(newParent)
	}

	if err := s.store.SaveSkill(ctx, skill); err != nil {
		return nil, err
	}

	s.logger.Info("skill updated", zap.String("skillID", sid.String()))
	persistState(ctx, s.store, s.snapshots, s.logger)
	return skill, nil
}

// Delete removes a skill, its whole descendant subtree, and every counter
// owned by any skill in that set.
func (s *SkillService) Delete(ctx context.Context, id string) error {
	sid, err := valueobjects.NewSkillIDFromString(id)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if _, err := s.store.SkillByID(ctx, sid); err != nil {
		return err
	}

	ids, err := s.collectSubtree(ctx, sid)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSkills(ctx, ids); err != nil {
		return err
	}

	s.logger.Info("skill deleted",
		zap.String("skillID", sid.String()),
		zap.Int("subtreeSize", len(ids)),
	)
	persistState(ctx, s.store, s.snapshots, s.logger)
	return nil
}

// Tree returns the whole forest, or a single subtree when rootID is given
func (s *SkillService) Tree(ctx context.Context, rootID *string) ([]*TreeNode, error) {
	skills, err := s.store.ListSkills(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[valueobjects.SkillID]*TreeNode, len(skills))
	for _, skill := range skills {
		var parent *string
		if p := skill.ParentID(); p != nil {
			v := p.String()
			parent = &v
		}
		nodes[skill.ID()] = &TreeNode{
			ID:       skill.ID().String(),
			Name:     skill.Name(),
			ParentID: parent,
			Children: []*TreeNode{},
		}
	}

	var roots []*TreeNode
	for _, skill := range skills {
		node := nodes[skill.ID()]
		if p := skill.ParentID(); p != nil {
			parent := nodes[*p]
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	if rootID == nil {
		if roots == nil {
			roots = []*TreeNode{}
		}
		return roots, nil
	}

	sid, err := valueobjects.NewSkillIDFromString(*rootID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	node, ok := nodes[sid]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("skill " + sid.String())
	}
	return []*TreeNode{node}, nil
}

// collectSubtree gathers a skill and all of its descendants with an
// explicit work-list, so deep trees cannot exhaust the call stack.
func (s *SkillService) collectSubtree(ctx context.Context, root valueobjects.SkillID) ([]valueobjects.SkillID, error) {
	ids := []valueobjects.SkillID{root}
	queue := []valueobjects.SkillID{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := s.store.ListChildren(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			ids = append(ids, child.ID())
			queue = append(queue, child.ID())
		}
	}
	return ids, nil
}

func (s *SkillService) parentMap(ctx context.Context) (validators.ParentMap, error) {
	skills, err := s.store.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	m := make(validators.ParentMap, len(skills))
	for _, skill := range skills {
		m[skill.ID()] = skill.ParentID()
	}
	return m, nil
}
