package store

import (
	"fmt"
	"sort"
	"sync"

	"contentcms/internal/models"
)

// MemoryStore keeps content groups in process memory. Groups are copied on
// the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	roots  map[int64]*models.ContentGroup
	nextID int64

	saved   int
	removed int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{roots: make(map[int64]*models.ContentGroup)}
}

// Matching returns copies of the root groups satisfying c.
func (s *MemoryStore) Matching(c Criteria) ([]*models.ContentGroup, error) {
	for _, cond := range c.Conditions {
		if !validField(cond.Field) {
			return nil, fmt.Errorf("match content groups: unknown field %q", cond.Field)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*models.ContentGroup
	for _, g := range s.roots {
		if c.Matches(g) {
			groups = append(groups, g.Clone())
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].OrderIndex != groups[j].OrderIndex {
			return groups[i].OrderIndex < groups[j].OrderIndex
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

// Get returns a copy of the group with the ID.
func (s *MemoryStore) Get(id int64) (*models.ContentGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.ContentGroup
	for _, root := range s.roots {
		root.Walk(func(g *models.ContentGroup) {
			if g.ID == id {
				found = g
			}
		})
		if found != nil {
			return found.Clone(), nil
		}
	}
	return nil, fmt.Errorf("get content group %d: %w", id, ErrNotFound)
}

// SaveAll stores copies of the groups. Every child gets a fresh ID, as
// array elements are replaced wholesale on each save.
func (s *MemoryStore) SaveAll(groups []*models.ContentGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range groups {
		if g.ID == 0 {
			s.nextID++
			g.ID = s.nextID
		}
		s.renumberChildren(g)
		s.roots[g.ID] = g.Clone()
		s.saved++
	}
	return nil
}

func (s *MemoryStore) renumberChildren(g *models.ContentGroup) {
	for i, c := range g.Children {
		s.nextID++
		c.ID = s.nextID
		c.OrderIndex = i + 1
		s.renumberChildren(c)
	}
}

// RemoveAll deletes the groups by ID.
func (s *MemoryStore) RemoveAll(groups []*models.ContentGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range groups {
		if _, ok := s.roots[g.ID]; ok {
			delete(s.roots, g.ID)
			s.removed++
		}
	}
	return nil
}

// InTransaction runs fn against the store and restores the previous
// contents when fn fails. Transactions are serialized with each other but
// not with writes made outside a transaction.
func (s *MemoryStore) InTransaction(fn func(Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := make(map[int64]*models.ContentGroup, len(s.roots))
	for id, g := range s.roots {
		snapshot[id] = g.Clone()
	}
	nextID, saved, removed := s.nextID, s.saved, s.removed
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.roots, s.nextID, s.saved, s.removed = snapshot, nextID, saved, removed
		s.mu.Unlock()
		return err
	}
	return nil
}

// Writes returns how many groups were saved and removed so far.
func (s *MemoryStore) Writes() (saved, removed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved, s.removed
}
