package services

import (
	"context"

	"go.uber.org/zap"

	"skilltree-backend/application/ports"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// CounterTotal is one aggregation bucket: counters aggregate together iff
// their name and unit match exactly, with "no unit" as its own bucket
// distinct from an empty-string unit. Target is the sum of the contributing
// counters' targets, or nil when none of them has one.
type CounterTotal struct {
	Name   string   `json:"name"`
	Unit   *string  `json:"unit"`
	Total  float64  `json:"total"`
	Count  int      `json:"count"`
	Target *float64 `json:"target"`
}

// Summary is the aggregated view of a skill's subtree, with recursive
// per-child summaries for breakdown views.
type Summary struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	ParentID            *string        `json:"parent_id"`
	CounterTotals       []CounterTotal `json:"counter_totals"`
	TotalDescendants    int            `json:"total_descendants"`
	DirectChildrenCount int            `json:"direct_children_count"`
	Children            []*Summary     `json:"children"`
}

// AggregationService computes counter totals bottom-up across subtrees.
// Summaries are always recomputed from the live store, never cached, so
// they cannot go stale.
type AggregationService struct {
	store  ports.EntityStore
	logger *zap.Logger
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(store ports.EntityStore, logger *zap.Logger) *AggregationService {
	return &AggregationService{store: store, logger: logger}
}

// SummaryFor computes the summary of one skill's subtree
func (s *AggregationService) SummaryFor(ctx context.Context, id string) (*Summary, error) {
	sid, err := valueobjects.NewSkillIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	view, err := s.loadForest(ctx)
	if err != nil {
		return nil, err
	}
	root, ok := view.skills[sid]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("skill " + sid.String())
	}
	return view.summarize(root), nil
}

// RootsSummary computes the summary of every root. The forest is loaded
// once and each node is visited exactly once across all roots.
func (s *AggregationService) RootsSummary(ctx context.Context) ([]*Summary, error) {
	view, err := s.loadForest(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*Summary, 0, len(view.roots))
	for _, root := range view.roots {
		summaries = append(summaries, view.summarize(root))
	}
	return summaries, nil
}

// forestView is a point-in-time read of the store, grouped for traversal
type forestView struct {
	skills     map[valueobjects.SkillID]*entities.Skill
	childrenOf map[valueobjects.SkillID][]*entities.Skill
	countersOf map[valueobjects.SkillID][]*entities.Counter
	roots      []*entities.Skill
}

func (s *AggregationService) loadForest(ctx context.Context) (*forestView, error) {
	skills, err := s.store.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	counters, err := s.store.ListCounters(ctx)
	if err != nil {
		return nil, err
	}

	view := &forestView{
		skills:     make(map[valueobjects.SkillID]*entities.Skill, len(skills)),
		childrenOf: make(map[valueobjects.SkillID][]*entities.Skill),
		countersOf: make(map[valueobjects.SkillID][]*entities.Counter),
	}
	for _, skill := range skills {
		view.skills[skill.ID()] = skill
	}
	for _, skill := range skills {
		if p := skill.ParentID(); p != nil {
			view.childrenOf[*p] = append(view.childrenOf[*p], skill)
		} else {
			view.roots = append(view.roots, skill)
		}
	}
	for _, counter := range counters {
		view.countersOf[counter.SkillID()] = append(view.countersOf[counter.SkillID()], counter)
	}
	return view, nil
}

// aggFrame is one node's in-progress state on the explicit traversal stack
type aggFrame struct {
	summary   *Summary
	buckets   *bucketAccumulator
	children  []*entities.Skill
	nextChild int
}

// summarize runs a single iterative post-order traversal from the given
// skill. Each child's buckets flow up into its parent exactly once, so the
// whole computation is linear in subtree size.
func (v *forestView) summarize(root *entities.Skill) *Summary {
	stack := []*aggFrame{v.newFrame(root)}
	var result *Summary

	for len(stack) > 0 {
		frame := stack[len(stack)-1]

		if frame.nextChild < len(frame.children) {
			child := frame.children[frame.nextChild]
			frame.nextChild++
			stack = append(stack, v.newFrame(child))
			continue
		}

		// All children folded in; finalize this node and pop
		frame.summary.CounterTotals = frame.buckets.totals()
		stack = stack[:len(stack)-1]

		if len(stack) == 0 {
			result = frame.summary
			break
		}

		parent := stack[len(stack)-1]
		parent.summary.Children = append(parent.summary.Children, frame.summary)
		parent.summary.TotalDescendants += frame.summary.TotalDescendants + 1
		parent.buckets.merge(frame.buckets)
	}

	return result
}

func (v *forestView) newFrame(skill *entities.Skill) *aggFrame {
	var parent *string
	if p := skill.ParentID(); p != nil {
		s := p.String()
		parent = &s
	}

	children := v.childrenOf[skill.ID()]
	buckets := newBucketAccumulator()
	for _, counter := range v.countersOf[skill.ID()] {
		buckets.add(counter)
	}

	return &aggFrame{
		summary: &Summary{
			ID:                  skill.ID().String(),
			Name:                skill.Name(),
			ParentID:            parent,
			CounterTotals:       []CounterTotal{},
			DirectChildrenCount: len(children),
			Children:            []*Summary{},
		},
		buckets:  buckets,
		children: children,
	}
}

// bucketKey identifies an aggregation bucket. hasUnit keeps a missing unit
// distinct from an empty-string unit.
type bucketKey struct {
	name    string
	hasUnit bool
	unit    string
}

type bucketState struct {
	total      float64
	count      int
	targetSum  float64
	targetSeen bool
}

// bucketAccumulator groups counter contributions by (name, unit) while
// remembering first-seen order so totals come out deterministically.
type bucketAccumulator struct {
	states map[bucketKey]*bucketState
	order  []bucketKey
}

func newBucketAccumulator() *bucketAccumulator {
	return &bucketAccumulator{states: make(map[bucketKey]*bucketState)}
}

func keyFor(name string, unit *string) bucketKey {
	key := bucketKey{name: name}
	if unit != nil {
		key.hasUnit = true
		key.unit = *unit
	}
	return key
}

func (b *bucketAccumulator) add(counter *entities.Counter) {
	key := keyFor(counter.Name(), counter.Unit())
	state := b.state(key)
	state.total += counter.Value()
	state.count++
	if target := counter.Target(); target != nil {
		state.targetSum += *target
		state.targetSeen = true
	}
}

func (b *bucketAccumulator) merge(other *bucketAccumulator) {
	for _, key := range other.order {
		src := other.states[key]
		dst := b.state(key)
		dst.total += src.total
		dst.count += src.count
		if src.targetSeen {
			dst.targetSum += src.targetSum
			dst.targetSeen = true
		}
	}
}

func (b *bucketAccumulator) state(key bucketKey) *bucketState {
	if state, ok := b.states[key]; ok {
		return state
	}
	state := &bucketState{}
	b.states[key] = state
	b.order = append(b.order, key)
	return state
}

func (b *bucketAccumulator) totals() []CounterTotal {
	totals := make([]CounterTotal, 0, len(b.order))
	for _, key := range b.order {
		state := b.states[key]
		total := CounterTotal{
			Name:  key.name,
			Total: state.total,
			Count: state.count,
		}
		if key.hasUnit {
			unit := key.unit
			total.Unit = &unit
		}
		if state.targetSeen {
			target := state.targetSum
			total.Target = &target
		}
		totals = append(totals, total)
	}
	return totals
}
