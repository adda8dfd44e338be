// Package storage provides shared types for work item persistence.
//
// Concrete implementations live in the memory and sqlite sub-packages.
// Consumers depend on the Store interface rather than a concrete type so
// that backends can be substituted (dry-run imports use the memory store).
package storage

import (
	"context"
	"errors"

	"github.com/hopperhq/hopper/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrDuplicateID is returned when creating a work item whose ID already exists.
var ErrDuplicateID = errors.New("duplicate work item id")

// ErrSelfDependency is returned when an edge would point an item at itself.
var ErrSelfDependency = errors.New("work item cannot depend on itself")

// Store is the persistence boundary of the reconciliation engine.
//
// Every method is fallible and the engine treats each call site as such:
// a single failed create or edge insert becomes a row-scoped problem in
// the reconciliation report, never an aborted batch.
type Store interface {
	// CreateWorkItem persists a new work item. The item's ID must be set
	// and unique; ErrDuplicateID is returned otherwise.
	CreateWorkItem(ctx context.Context, item *types.WorkItem) error

	// SetParent records a parent link on an existing item. Both ids must
	// exist; ErrNotFound is returned otherwise.
	SetParent(ctx context.Context, id, parentID string) error

	// AddDependency records a directed "requires" edge. Duplicate inserts
	// are a no-op. Self-loops are rejected with ErrSelfDependency; edges
	// referencing unknown items fail with ErrNotFound.
	AddDependency(ctx context.Context, dependentID, requiredID string) error

	// GetWorkItem fetches one item by id.
	GetWorkItem(ctx context.Context, id string) (*types.WorkItem, error)

	// ListWorkItems returns all items in creation order.
	ListWorkItems(ctx context.Context) ([]*types.WorkItem, error)

	// ListDependencies returns all edges in insertion order.
	ListDependencies(ctx context.Context) ([]*types.Dependency, error)

	// Close releases backend resources.
	Close() error
}
