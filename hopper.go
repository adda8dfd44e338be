// Package hopper provides a minimal public API for embedding the import
// engine in other Go programs.
//
// Most integrations only need to open a store, read a tabular file, and
// run Reconcile. Everything else (normalization rules, ID generation,
// the CLI surface) is internal.
package hopper

import (
	"context"

	"github.com/hopperhq/hopper/internal/mapping"
	"github.com/hopperhq/hopper/internal/reconcile"
	"github.com/hopperhq/hopper/internal/storage"
	"github.com/hopperhq/hopper/internal/storage/memory"
	"github.com/hopperhq/hopper/internal/storage/sqlite"
	"github.com/hopperhq/hopper/internal/tabular"
	"github.com/hopperhq/hopper/internal/types"
)

// Core types for working with the backlog
type (
	WorkItem   = types.WorkItem
	Status     = types.Status
	ItemType   = types.ItemType
	Dependency = types.Dependency
	RawRow     = types.RawRow
)

// Status constants
const (
	StatusPlanning   = types.StatusPlanning
	StatusInProgress = types.StatusInProgress
	StatusBlocked    = types.StatusBlocked
	StatusReview     = types.StatusReview
	StatusCompleted  = types.StatusCompleted
)

// ItemType constants
const (
	TypeEpic    = types.TypeEpic
	TypeFeature = types.TypeFeature
	TypeStory   = types.TypeStory
	TypeTask    = types.TypeTask
	TypeBug     = types.TypeBug
)

// Reconciliation types
type (
	Mapping = mapping.Mapping
	Options = reconcile.Options
	Report  = reconcile.Report
)

// Store is the persistence interface the engine writes through.
type Store = storage.Store

// NewSQLiteStore opens (creating if necessary) a hopper SQLite database.
func NewSQLiteStore(ctx context.Context, dbPath string) (Store, error) {
	return sqlite.New(ctx, dbPath)
}

// NewMemoryStore creates an in-memory store, useful for dry runs and tests.
func NewMemoryStore() Store {
	return memory.New()
}

// DefaultOptions returns the standard reconciliation options.
func DefaultOptions() Options {
	return reconcile.DefaultOptions()
}

// Reconcile ingests rows into the store under the given mapping. See the
// reconcile package for the pass structure and reporting semantics.
func Reconcile(ctx context.Context, store Store, rows []RawRow, m Mapping, opts Options) (*Report, error) {
	return reconcile.Reconcile(ctx, store, rows, m, opts)
}

// ReadFile loads rows from a CSV, JSON, or JSONL export, detecting the
// format from the file extension.
func ReadFile(path string) ([]RawRow, error) {
	return tabular.ReadFile(path)
}

// ParseMapping decodes a YAML mapping document.
func ParseMapping(data []byte) (Mapping, error) {
	return mapping.Parse(data)
}
