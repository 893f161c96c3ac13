package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"skilltree-backend/application/ports"
	"skilltree-backend/domain/core/entities"
	"skilltree-backend/domain/core/valueobjects"
	pkgerrors "skilltree-backend/pkg/errors"
)

// Store is the in-memory entity store. It exclusively owns all skill and
// counter records and maintains a parent->children secondary index so child
// lists are derived from parent pointers without a second source of truth.
//
// The store itself holds a mutex only to keep individual operations
// consistent; concurrent mutation of the same subtree from two callers is
// undefined unless the host serializes logical operations (the HTTP layer
// runs mutations through a single writer).
type Store struct {
	mu sync.RWMutex

	skills   map[valueobjects.SkillID]*entities.Skill
	counters map[valueobjects.CounterID]*entities.Counter

	// parent -> set of children, derived from parent pointers
	children map[valueobjects.SkillID]map[valueobjects.SkillID]struct{}
	// parent as currently reflected in the children index; kept separately
	// because callers mutate skill entities in place before saving them back
	indexedParent map[valueobjects.SkillID]*valueobjects.SkillID
	// skill -> set of owned counters
	owned map[valueobjects.SkillID]map[valueobjects.CounterID]struct{}

	// insertion sequence numbers, used for stable listing order
	skillSeq   map[valueobjects.SkillID]uint64
	counterSeq map[valueobjects.CounterID]uint64
	nextSeq    uint64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		skills:        make(map[valueobjects.SkillID]*entities.Skill),
		counters:      make(map[valueobjects.CounterID]*entities.Counter),
		children:      make(map[valueobjects.SkillID]map[valueobjects.SkillID]struct{}),
		indexedParent: make(map[valueobjects.SkillID]*valueobjects.SkillID),
		owned:         make(map[valueobjects.SkillID]map[valueobjects.CounterID]struct{}),
		skillSeq:      make(map[valueobjects.SkillID]uint64),
		counterSeq:    make(map[valueobjects.CounterID]uint64),
	}
}

// SaveSkill inserts or updates a skill and keeps the children index in sync
func (s *Store) SaveSkill(ctx context.Context, skill *entities.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := skill.ID()
	parent := skill.ParentID()
	if parent != nil {
		if _, ok := s.skills[*parent]; !ok {
			return pkgerrors.NewNotFoundError(fmt.Sprintf("parent skill %s", parent))
		}
	}

	if _, ok := s.skills[id]; ok {
		s.unlinkChild(s.indexedParent[id], id)
	} else {
		s.nextSeq++
		s.skillSeq[id] = s.nextSeq
	}
	if parent != nil {
		s.linkChild(*parent, id)
	}

	s.skills[id] = skill
	s.indexedParent[id] = parent
	return nil
}

// SkillByID returns a skill by identifier
func (s *Store) SkillByID(ctx context.Context, id valueobjects.SkillID) (*entities.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skill, ok := s.skills[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("skill %s", id))
	}
	return skill, nil
}

// ListSkills returns all skills in insertion order
func (s *Store) ListSkills(ctx context.Context) ([]*entities.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Skill, 0, len(s.skills))
	for _, skill := range s.skills {
		out = append(out, skill)
	}
	s.sortSkills(out)
	return out, nil
}

// ListChildren returns the immediate children of a skill in insertion order
func (s *Store) ListChildren(ctx context.Context, id valueobjects.SkillID) ([]*entities.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.skills[id]; !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("skill %s", id))
	}

	out := make([]*entities.Skill, 0, len(s.children[id]))
	for childID := range s.children[id] {
		out = append(out, s.skills[childID])
	}
	s.sortSkills(out)
	return out, nil
}

// ListRoots returns all skills without a parent in insertion order
func (s *Store) ListRoots(ctx context.Context) ([]*entities.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entities.Skill
	for _, skill := range s.skills {
		if skill.IsRoot() {
			out = append(out, skill)
		}
	}
	s.sortSkills(out)
	return out, nil
}

// DeleteSkills removes the given skills and every counter they own in one
// critical section, so callers never observe a partially deleted subtree.
func (s *Store) DeleteSkills(ctx context.Context, ids []valueobjects.SkillID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.skills[id]; !ok {
			return pkgerrors.NewNotFoundError(fmt.Sprintf("skill %s", id))
		}
	}

	for _, id := range ids {
		s.unlinkChild(s.indexedParent[id], id)
		for counterID := range s.owned[id] {
			delete(s.counters, counterID)
			delete(s.counterSeq, counterID)
		}
		delete(s.owned, id)
		delete(s.children, id)
		delete(s.indexedParent, id)
		delete(s.skills, id)
		delete(s.skillSeq, id)
	}
	return nil
}

// SaveCounter inserts or updates a counter. The owning skill must exist.
func (s *Store) SaveCounter(ctx context.Context, counter *entities.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.skills[counter.SkillID()]; !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("skill %s", counter.SkillID()))
	}

	id := counter.ID()
	if _, ok := s.counters[id]; !ok {
		s.nextSeq++
		s.counterSeq[id] = s.nextSeq
	}

	s.counters[id] = counter
	if s.owned[counter.SkillID()] == nil {
		s.owned[counter.SkillID()] = make(map[valueobjects.CounterID]struct{})
	}
	s.owned[counter.SkillID()][id] = struct{}{}
	return nil
}

// CounterByID returns a counter by identifier
func (s *Store) CounterByID(ctx context.Context, id valueobjects.CounterID) (*entities.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counter, ok := s.counters[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("counter %s", id))
	}
	return counter, nil
}

// ListCounters returns all counters in insertion order
func (s *Store) ListCounters(ctx context.Context) ([]*entities.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Counter, 0, len(s.counters))
	for _, counter := range s.counters {
		out = append(out, counter)
	}
	s.sortCounters(out)
	return out, nil
}

// ListCountersOf returns the counters owned by a skill in insertion order
func (s *Store) ListCountersOf(ctx context.Context, skillID valueobjects.SkillID) ([]*entities.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.skills[skillID]; !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("skill %s", skillID))
	}

	out := make([]*entities.Counter, 0, len(s.owned[skillID]))
	for counterID := range s.owned[skillID] {
		out = append(out, s.counters[counterID])
	}
	s.sortCounters(out)
	return out, nil
}

// DeleteCounter removes a single counter
func (s *Store) DeleteCounter(ctx context.Context, id valueobjects.CounterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[id]
	if !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("counter %s", id))
	}

	delete(s.counters, id)
	delete(s.counterSeq, id)
	if set := s.owned[counter.SkillID()]; set != nil {
		delete(set, id)
	}
	return nil
}

// Clear drops every skill and counter
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.skills = make(map[valueobjects.SkillID]*entities.Skill)
	s.counters = make(map[valueobjects.CounterID]*entities.Counter)
	s.children = make(map[valueobjects.SkillID]map[valueobjects.SkillID]struct{})
	s.indexedParent = make(map[valueobjects.SkillID]*valueobjects.SkillID)
	s.owned = make(map[valueobjects.SkillID]map[valueobjects.CounterID]struct{})
	s.skillSeq = make(map[valueobjects.SkillID]uint64)
	s.counterSeq = make(map[valueobjects.CounterID]uint64)
	s.nextSeq = 0
	return nil
}

// ParentOf resolves a skill's parent pointer; implements the tree
// validator's resolver interface.
func (s *Store) ParentOf(id valueobjects.SkillID) (*valueobjects.SkillID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skill, ok := s.skills[id]
	if !ok {
		return nil, false
	}
	return skill.ParentID(), true
}

// Snapshot captures the full store state in insertion order
func (s *Store) Snapshot(ctx context.Context) (ports.Snapshot, error) {
	skills, err := s.ListSkills(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}
	counters, err := s.ListCounters(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}

	snap := ports.Snapshot{
		Skills:   make([]ports.SkillRecord, 0, len(skills)),
		Counters: make([]ports.CounterRecord, 0, len(counters)),
	}
	for _, skill := range skills {
		var parent *string
		if p := skill.ParentID(); p != nil {
			v := p.String()
			parent = &v
		}
		snap.Skills = append(snap.Skills, ports.SkillRecord{
			ID:        skill.ID().String(),
			Name:      skill.Name(),
			ParentID:  parent,
			CreatedAt: skill.CreatedAt(),
			UpdatedAt: skill.UpdatedAt(),
		})
	}
	for _, counter := range counters {
		snap.Counters = append(snap.Counters, ports.CounterRecord{
			ID:      counter.ID().String(),
			SkillID: counter.SkillID().String(),
			Name:    counter.Name(),
			Unit:    counter.Unit(),
			Value:   counter.Value(),
			Target:  counter.Target(),
		})
	}
	return snap, nil
}

// Restore replaces the full store state from a snapshot. Records are
// inserted in snapshot order so listing order survives a restart.
func (s *Store) Restore(ctx context.Context, snap ports.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skills := make(map[valueobjects.SkillID]*entities.Skill, len(snap.Skills))
	skillSeq := make(map[valueobjects.SkillID]uint64, len(snap.Skills))
	children := make(map[valueobjects.SkillID]map[valueobjects.SkillID]struct{})
	var seq uint64

	for _, rec := range snap.Skills {
		id, err := valueobjects.NewSkillIDFromString(rec.ID)
		if err != nil {
			return pkgerrors.NewInternalError(fmt.Sprintf("snapshot skill %q: %v", rec.ID, err))
		}
		var parent *valueobjects.SkillID
		if rec.ParentID != nil {
			p, err := valueobjects.NewSkillIDFromString(*rec.ParentID)
			if err != nil {
				return pkgerrors.NewInternalError(fmt.Sprintf("snapshot skill %q parent: %v", rec.ID, err))
			}
			parent = &p
		}
		skills[id] = entities.ReconstructSkill(id, rec.Name, parent, rec.CreatedAt, rec.UpdatedAt)
		seq++
		skillSeq[id] = seq
	}

	// Verify every parent pointer resolves and the graph is a forest
	indexedParent := make(map[valueobjects.SkillID]*valueobjects.SkillID, len(skills))
	for id, skill := range skills {
		parent := skill.ParentID()
		indexedParent[id] = parent
		if parent == nil {
			continue
		}
		if _, ok := skills[*parent]; !ok {
			return pkgerrors.NewInternalError(fmt.Sprintf("snapshot skill %s references missing parent %s", id, parent))
		}
		if children[*parent] == nil {
			children[*parent] = make(map[valueobjects.SkillID]struct{})
		}
		children[*parent][id] = struct{}{}
	}
	if err := verifyAcyclic(skills); err != nil {
		return err
	}

	counters := make(map[valueobjects.CounterID]*entities.Counter, len(snap.Counters))
	counterSeq := make(map[valueobjects.CounterID]uint64, len(snap.Counters))
	owned := make(map[valueobjects.SkillID]map[valueobjects.CounterID]struct{})

	for _, rec := range snap.Counters {
		id, err := valueobjects.NewCounterIDFromString(rec.ID)
		if err != nil {
			return pkgerrors.NewInternalError(fmt.Sprintf("snapshot counter %q: %v", rec.ID, err))
		}
		skillID, err := valueobjects.NewSkillIDFromString(rec.SkillID)
		if err != nil {
			return pkgerrors.NewInternalError(fmt.Sprintf("snapshot counter %q owner: %v", rec.ID, err))
		}
		if _, ok := skills[skillID]; !ok {
			return pkgerrors.NewInternalError(fmt.Sprintf("snapshot counter %s references missing skill %s", id, skillID))
		}
		counters[id] = entities.ReconstructCounter(id, skillID, rec.Name, rec.Unit, rec.Value, rec.Target)
		seq++
		counterSeq[id] = seq
		if owned[skillID] == nil {
			owned[skillID] = make(map[valueobjects.CounterID]struct{})
		}
		owned[skillID][id] = struct{}{}
	}

	s.skills = skills
	s.counters = counters
	s.children = children
	s.indexedParent = indexedParent
	s.owned = owned
	s.skillSeq = skillSeq
	s.counterSeq = counterSeq
	s.nextSeq = seq
	return nil
}

func (s *Store) linkChild(parent, child valueobjects.SkillID) {
	if s.children[parent] == nil {
		s.children[parent] = make(map[valueobjects.SkillID]struct{})
	}
	s.children[parent][child] = struct{}{}
}

func (s *Store) unlinkChild(parent *valueobjects.SkillID, child valueobjects.SkillID) {
	if parent == nil {
		return
	}
	if set := s.children[*parent]; set != nil {
		delete(set, child)
	}
}

func (s *Store) sortSkills(skills []*entities.Skill) {
	sort.Slice(skills, func(i, j int) bool {
		return s.skillSeq[skills[i].ID()] < s.skillSeq[skills[j].ID()]
	})
}

func (s *Store) sortCounters(counters []*entities.Counter) {
	sort.Slice(counters, func(i, j int) bool {
		return s.counterSeq[counters[i].ID()] < s.counterSeq[counters[j].ID()]
	})
}

// verifyAcyclic walks parent pointers with tri-state marking; a node seen
// while still in progress means the snapshot carries a cycle.
func verifyAcyclic(skills map[valueobjects.SkillID]*entities.Skill) error {
	const (
		unvisited = 0
		inWalk    = 1
		done      = 2
	)
	state := make(map[valueobjects.SkillID]int, len(skills))

	for id := range skills {
		if state[id] != unvisited {
			continue
		}
		var path []valueobjects.SkillID
		current := id
		for {
			if state[current] == done {
				break
			}
			if state[current] == inWalk {
				return pkgerrors.NewInternalError(fmt.Sprintf("snapshot contains a cycle at skill %s", current))
			}
			state[current] = inWalk
			path = append(path, current)

			parent := skills[current].ParentID()
			if parent == nil {
				break
			}
			current = *parent
		}
		for _, walked := range path {
			state[walked] = done
		}
	}
	return nil
}
