// Package memory implements an in-memory work item store.
//
// It backs engine tests and --dry-run imports, where entities must be
// resolvable within the batch but nothing may touch disk.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hopperhq/hopper/internal/storage"
	"github.com/hopperhq/hopper/internal/types"
)

// Store is a map-backed storage.Store. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items map[string]*types.WorkItem
	order []string
	edges []*types.Dependency
	seen  map[string]bool // edge keys, for idempotent inserts
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		items: make(map[string]*types.WorkItem),
		seen:  make(map[string]bool),
	}
}

// CreateWorkItem stores a copy of the item.
func (s *Store) CreateWorkItem(ctx context.Context, item *types.WorkItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid work item: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateID, item.ID)
	}
	copied := *item
	s.items[item.ID] = &copied
	s.order = append(s.order, item.ID)
	return nil
}

// SetParent links an existing item to an existing parent.
func (s *Store) SetParent(ctx context.Context, id, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if _, ok := s.items[parentID]; !ok {
		return fmt.Errorf("%w: parent %s", storage.ErrNotFound, parentID)
	}
	item.ParentID = parentID
	return nil
}

// AddDependency records a requires edge. Duplicates are a silent no-op.
func (s *Store) AddDependency(ctx context.Context, dependentID, requiredID string) error {
	if dependentID == requiredID {
		return fmt.Errorf("%w: %s", storage.ErrSelfDependency, dependentID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[dependentID]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, dependentID)
	}
	if _, ok := s.items[requiredID]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, requiredID)
	}
	dep := &types.Dependency{DependentID: dependentID, RequiredID: requiredID}
	if s.seen[dep.Key()] {
		return nil
	}
	s.seen[dep.Key()] = true
	s.edges = append(s.edges, dep)
	return nil
}

// GetWorkItem returns a copy of the item with the given id.
func (s *Store) GetWorkItem(ctx context.Context, id string) (*types.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	copied := *item
	return &copied, nil
}

// ListWorkItems returns all items in creation order.
func (s *Store) ListWorkItems(ctx context.Context) ([]*types.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.WorkItem, 0, len(s.order))
	for _, id := range s.order {
		copied := *s.items[id]
		out = append(out, &copied)
	}
	return out, nil
}

// ListDependencies returns all edges in insertion order.
func (s *Store) ListDependencies(ctx context.Context) ([]*types.Dependency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Dependency, 0, len(s.edges))
	for _, e := range s.edges {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }
