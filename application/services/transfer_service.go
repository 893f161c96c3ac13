package services

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"skilltree-backend/application/ports"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// CounterDoc is the flat counter shape used by both export and import
type CounterDoc struct {
	Name   string   `json:"name"`
	Unit   *string  `json:"unit"`
	Value  float64  `json:"value"`
	Target *float64 `json:"target"`
}

// ExportNode is one skill in an export document, children nested
type ExportNode struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Counters []CounterDoc  `json:"counters"`
	Children []*ExportNode `json:"children"`
}

// ImportNode is one skill in an import document. Identifiers are never
// accepted from the document; every imported skill gets a fresh ID.
type ImportNode struct {
	Name     string       `json:"name"`
	Counters []CounterDoc `json:"counters"`
	Children []ImportNode `json:"children"`
}

// TransferService implements whole-tree export, import, and reset. Imports
// are atomic: the entire document is validated before the store is touched,
// and a mid-import store failure rolls back everything created so far.
type TransferService struct {
	store     ports.EntityStore
	snapshots ports.Snapshotter
	logger    *zap.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(store ports.EntityStore, snapshots ports.Snapshotter, logger *zap.Logger) *TransferService {
	return &TransferService{store: store, snapshots: snapshots, logger: logger}
}

// Export builds the full forest as nested export nodes, roots in insertion
// order and siblings in insertion order under each parent.
func (s *TransferService) Export(ctx context.Context) ([]*ExportNode, error) {
	skills, err := s.store.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	counters, err := s.store.ListCounters(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[valueobjects.SkillID]*ExportNode, len(skills))
	for _, skill := range skills {
		nodes[skill.ID()] = &ExportNode{
			ID:       skill.ID().String(),
			Name:     skill.Name(),
			Counters: []CounterDoc{},
			Children: []*ExportNode{},
		}
	}
	for _, counter := range counters {
		node := nodes[counter.SkillID()]
		node.Counters = append(node.Counters, CounterDoc{
			Name:   counter.Name(),
			Unit:   cloneString(counter.Unit()),
			Value:  counter.Value(),
			Target: cloneFloat(counter.Target()),
		})
	}

	roots := make([]*ExportNode, 0)
	for _, skill := range skills {
		if p := skill.ParentID(); p != nil {
			parent := nodes[*p]
			parent.Children = append(parent.Children, nodes[skill.ID()])
		} else {
			roots = append(roots, nodes[skill.ID()])
		}
	}
	return roots, nil
}

// ImportAdditive validates and creates the given trees as new roots,
// leaving all existing data in place. Returns the created trees in export
// form so callers can see the assigned identifiers.
func (s *TransferService) ImportAdditive(ctx context.Context, docs []ImportNode) ([]*ExportNode, error) {
	if err := validateImport(docs); err != nil {
		return nil, err
	}

	created, err := s.createTrees(ctx, docs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("import completed",
		zap.Int("roots", len(docs)),
		zap.String("mode", "additive"),
	)
	persistState(ctx, s.store, s.snapshots, s.logger)
	return created, nil
}

// ImportReplace validates the given trees, then replaces the entire store
// contents with them. Validation failures leave existing data untouched.
func (s *TransferService) ImportReplace(ctx context.Context, docs []ImportNode) ([]*ExportNode, error) {
	if err := validateImport(docs); err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx); err != nil {
		return nil, err
	}
	created, err := s.createTrees(ctx, docs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("import completed",
		zap.Int("roots", len(docs)),
		zap.String("mode", "replace"),
	)
	persistState(ctx, s.store, s.snapshots, s.logger)
	return created, nil
}

// ClearAll drops every skill and counter
func (s *TransferService) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("all data cleared")
	persistState(ctx, s.store, s.snapshots, s.logger)
	return nil
}

// createTrees materializes validated import nodes breadth-first so sibling
// creation order matches document order at every level. On a store failure
// it deletes everything created so far before returning the error.
func (s *TransferService) createTrees(ctx context.Context, docs []ImportNode) ([]*ExportNode, error) {
	type pending struct {
		doc    *ImportNode
		parent *valueobjects.SkillID
		out    **ExportNode
	}

	results := make([]*ExportNode, len(docs))
	queue := make([]pending, 0, len(docs))
	for i := range docs {
		queue = append(queue, pending{doc: &docs[i], out: &results[i]})
	}

	var createdIDs []valueobjects.SkillID
	rollback := func(cause error) error {
		if len(createdIDs) > 0 {
			if delErr := s.store.DeleteSkills(ctx, createdIDs); delErr != nil {
				s.logger.Error("import rollback failed",
					zap.Int("created", len(createdIDs)),
					zap.Error(delErr),
				)
			}
		}
		return cause
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		skill, err := entities.NewSkill(item.doc.Name, item.parent)
		if err != nil {
			return nil, rollback(err)
		}
		if err := s.store.SaveSkill(ctx, skill); err != nil {
			return nil, rollback(err)
		}
		createdIDs = append(createdIDs, skill.ID())

		node := &ExportNode{
			ID:       skill.ID().String(),
			Name:     skill.Name(),
			Counters: []CounterDoc{},
			Children: []*ExportNode{},
		}
		*item.out = node

		for _, doc := range item.doc.Counters {
			counter, err := entities.NewCounter(skill.ID(), doc.Name, doc.Unit, doc.Value, doc.Target)
			if err != nil {
				return nil, rollback(err)
			}
			if err := s.store.SaveCounter(ctx, counter); err != nil {
				return nil, rollback(err)
			}
			node.Counters = append(node.Counters, CounterDoc{
				Name:   counter.Name(),
				Unit:   cloneString(counter.Unit()),
				Value:  counter.Value(),
				Target: cloneFloat(counter.Target()),
			})
		}

		sid := skill.ID()
		node.Children = make([]*ExportNode, len(item.doc.Children))
		for i := range item.doc.Children {
			child := pending{doc: &item.doc.Children[i], parent: &sid}
			child.out = &node.Children[i]
			queue = append(queue, child)
		}
	}

	return results, nil
}

// validateImport checks the whole document set before any store write. Uses
// a work list rather than recursion so arbitrarily deep documents cannot
// blow the stack.
func validateImport(docs []ImportNode) error {
	type item struct {
		node *ImportNode
		path string
	}

	work := make([]item, 0, len(docs))
	for i := range docs {
		work = append(work, item{node: &docs[i], path: docs[i].Name})
	}

	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		name := strings.TrimSpace(it.node.Name)
		if len(name) < entities.NameMinLength || len(name) > entities.NameMaxLength {
			return pkgerrors.NewValidationError("invalid skill name at " + quotePath(it.path))
		}
		for _, counter := range it.node.Counters {
			if err := validateCounterDoc(counter, it.path); err != nil {
				return err
			}
		}
		for i := range it.node.Children {
			child := &it.node.Children[i]
			work = append(work, item{node: child, path: it.path + "/" + child.Name})
		}
	}
	return nil
}

func validateCounterDoc(doc CounterDoc, path string) error {
	name := strings.TrimSpace(doc.Name)
	if len(name) < entities.NameMinLength || len(name) > entities.NameMaxLength {
		return pkgerrors.NewValidationError("invalid counter name at " + quotePath(path))
	}
	if doc.Unit != nil && len(*doc.Unit) > entities.UnitMaxLength {
		return pkgerrors.NewValidationError("counter unit too long at " + quotePath(path))
	}
	if math.IsNaN(doc.Value) || math.IsInf(doc.Value, 0) {
		return pkgerrors.NewValidationError("counter value must be finite at " + quotePath(path))
	}
	if doc.Target != nil && (math.IsNaN(*doc.Target) || math.IsInf(*doc.Target, 0)) {
		return pkgerrors.NewValidationError("counter target must be finite at " + quotePath(path))
	}
	return nil
}

func quotePath(path string) string {
	return "\"" + path + "\""
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
