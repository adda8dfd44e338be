// Package reconcile turns an unordered batch of loosely-typed rows into a
// consistent set of work items with resolved hierarchy and dependency
// edges.
//
// The engine runs three passes over one bounded batch:
//
//	Pass 1 (create)     - one work item per usable row; blank and
//	                      duplicate names are skipped, never fatal.
//	Pass 2 (parents)    - drains the deferred parent queue, optionally
//	                      synthesizing missing parents as Epics.
//	Pass 3 (deps)       - re-scans the rows and records "requires" edges;
//	                      unresolved names are warnings, never fatal.
//
// The pipeline always runs to completion and reports every problem in a
// single Report; the only fatal condition is a mapping with no name
// column, checked before anything is created. There is no rollback:
// partially imported batches are the contract, and entities created
// before a caller abort stay committed.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hopperhq/hopper/internal/idgen"
	"github.com/hopperhq/hopper/internal/mapping"
	"github.com/hopperhq/hopper/internal/normalize"
	"github.com/hopperhq/hopper/internal/storage"
	"github.com/hopperhq/hopper/internal/types"
)

// Options contains reconcile configuration.
type Options struct {
	// CreateMissingParents synthesizes a top-level Epic when a declared
	// parent name resolves to nothing (default true).
	CreateMissingParents bool
	// Sprint is applied uniformly to every created item in the batch.
	Sprint string
	// IDPrefix prefixes generated work item ids (default "hop").
	IDPrefix string
	// StoreConcurrency bounds the fan-out of dependency-edge persistence
	// calls against the store (default 4).
	StoreConcurrency int
}

// DefaultOptions returns the default reconcile configuration.
func DefaultOptions() Options {
	return Options{
		CreateMissingParents: true,
		IDPrefix:             "hop",
		StoreConcurrency:     4,
	}
}

// parentRef is one deferred parent linkage from Pass 1, drained in queue
// order by Pass 2.
type parentRef struct {
	row        int // 1-based source row, for attribution
	childID    string
	parentName string
}

// run holds the state threaded through the three passes of one batch.
type run struct {
	store storage.Store
	m     mapping.Mapping
	opts  Options

	index       *NameIndex
	items       map[string]*types.WorkItem // batch set, id -> item
	createdRows map[int]string             // 1-based row -> created item id
	parentQueue []parentRef
	report      *Report
}

// Reconcile runs the full three-pass pipeline over one batch of rows.
//
// The returned Report accumulates created/skipped counts and every
// row-attributable warning and error. A non-nil error is returned only
// for the fatal precondition: a mapping with no name column. Given
// identical rows, mapping and options, two runs produce the same counts
// and the same relative resolution outcomes (generated id values may
// differ).
func Reconcile(ctx context.Context, store storage.Store, rows []types.RawRow, m mapping.Mapping, opts Options) (*Report, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if opts.IDPrefix == "" {
		opts.IDPrefix = "hop"
	}
	if opts.StoreConcurrency <= 0 {
		opts.StoreConcurrency = 4
	}

	r := &run{
		store:       store,
		m:           m,
		opts:        opts,
		index:       NewNameIndex(),
		items:       make(map[string]*types.WorkItem),
		createdRows: make(map[int]string),
		report:      &Report{BatchID: uuid.NewString()},
	}

	metricsInit()

	start := time.Now()
	r.createItems(ctx, rows)
	recordPass(ctx, "create", time.Since(start))

	start = time.Now()
	r.linkParents(ctx)
	recordPass(ctx, "parents", time.Since(start))

	start = time.Now()
	r.linkDependencies(ctx, rows)
	recordPass(ctx, "dependencies", time.Since(start))

	recordOutcome(ctx, r.report)
	return r.report, nil
}

// createItems is Pass 1: iterate rows in file order and create one work
// item per usable row, deferring parent and dependency linkage.
func (r *run) createItems(ctx context.Context, rows []types.RawRow) {
	for i, row := range rows {
		rowNum := i + 1

		name, ok := r.m.Value(row, mapping.FieldName)
		if !ok {
			r.report.Skipped++
			r.report.warnf("Row %d: Skipped - no name", rowNum)
			continue
		}
		if _, dup := r.index.Lookup(name); dup {
			r.report.Skipped++
			r.report.warnf("Row %d: Skipped duplicate name %q", rowNum, name)
			continue
		}

		item := r.buildItem(row, name)
		if err := r.store.CreateWorkItem(ctx, item); err != nil {
			r.report.errorf("Row %d: %v", rowNum, err)
			continue
		}

		r.index.Insert(name, item.ID)
		r.items[item.ID] = item
		r.createdRows[rowNum] = item.ID
		r.report.Created++

		if parentName, ok := r.m.Value(row, mapping.FieldParentName); ok {
			r.parentQueue = append(r.parentQueue, parentRef{
				row:        rowNum,
				childID:    item.ID,
				parentName: parentName,
			})
		}
	}
}

// buildItem normalizes a row's mapped fields into a work item with a
// fresh id. Never fails: unrecognized values degrade to defaults.
func (r *run) buildItem(row types.RawRow, name string) *types.WorkItem {
	item := &types.WorkItem{
		Name:      name,
		Sprint:    r.opts.Sprint,
		CreatedAt: time.Now().UTC(),
	}

	if v, ok := r.m.Value(row, mapping.FieldDescription); ok {
		item.Description = v
	}
	if v, ok := r.m.Value(row, mapping.FieldType); ok {
		item.Type = normalize.ParseType(v)
	}
	if v, ok := r.m.Value(row, mapping.FieldStatus); ok {
		item.Status = normalize.ParseStatus(v)
	}
	if v, ok := r.m.Value(row, mapping.FieldPriority); ok {
		item.Priority = normalize.ParsePriority(v)
	}
	if v, ok := r.m.Value(row, mapping.FieldOwner); ok {
		item.Owner = v
	}
	if v, ok := r.m.Value(row, mapping.FieldExternalID); ok {
		item.ExternalID = v
	}
	if v, ok := r.m.Value(row, mapping.FieldTags); ok {
		item.Tags = normalize.ParseTags(v)
	}
	if v, ok := r.m.Value(row, mapping.FieldEstimatedHours); ok {
		item.EstimatedHours = normalize.ParseHours(v)
	}
	if v, ok := r.m.Value(row, mapping.FieldSprint); ok && item.Sprint == "" {
		item.Sprint = v
	}
	item.SetDefaults()
	item.ID = r.newID(item.Name, item.Owner)
	return item
}

// newID allocates a batch-unique id, bumping the nonce on the rare hash
// collision.
func (r *run) newID(name, owner string) string {
	now := time.Now().UTC()
	for nonce := 0; ; nonce++ {
		id := idgen.GenerateID(r.opts.IDPrefix, name, owner, now, idgen.DefaultLength, nonce)
		if _, taken := r.items[id]; !taken {
			return id
		}
	}
}

// linkParents is Pass 2: drain the deferred parent queue in order.
// Synthesized parents are inserted into the NameIndex before linking, so
// later queue entries naming the same missing parent reuse it.
//
// Resolution failures degrade to warnings ("orphaned but created");
// only store failures produce errors.
func (r *run) linkParents(ctx context.Context) {
	for _, ref := range r.parentQueue {
		parentID, found := r.index.Lookup(ref.parentName)

		if !found {
			if !r.opts.CreateMissingParents {
				r.report.warnf("Parent not found: %s", ref.parentName)
				continue
			}
			parent := &types.WorkItem{
				Name:      ref.parentName,
				Type:      types.TypeEpic,
				Status:    types.StatusPlanning,
				Sprint:    r.opts.Sprint,
				CreatedAt: time.Now().UTC(),
			}
			parent.ID = r.newID(parent.Name, "")
			if err := r.store.CreateWorkItem(ctx, parent); err != nil {
				r.report.errorf("Row %d: auto-creating parent %q: %v", ref.row, ref.parentName, err)
				continue
			}
			r.index.Insert(parent.Name, parent.ID)
			r.items[parent.ID] = parent
			r.report.Created++
			r.report.warnf("Auto-created parent Epic: %s", ref.parentName)
			parentID = parent.ID
		}

		if parentID == ref.childID {
			r.report.warnf("Row %d: item %q cannot be its own parent", ref.row, ref.parentName)
			continue
		}

		if err := r.store.SetParent(ctx, ref.childID, parentID); err != nil {
			r.report.errorf("Row %d: linking parent %q: %v", ref.row, ref.parentName, err)
			continue
		}
		r.items[ref.childID].ParentID = parentID
	}
}

// resolvedEdge is a dependency edge whose endpoints resolved in the
// batch; persistence happens after resolution so store calls can fan out
// without perturbing warning order.
type resolvedEdge struct {
	row         int
	dependentID string
	requiredID  string
}

// linkDependencies is Pass 3: re-scan the rows and record a directed
// "requires" edge per resolved dependency name. Rows that created no
// entity in Pass 1 are skipped silently; self-dependencies are dropped
// without a warning; unresolved names warn and continue.
func (r *run) linkDependencies(ctx context.Context, rows []types.RawRow) {
	var edges []resolvedEdge

	for i, row := range rows {
		rowNum := i + 1
		dependentID, created := r.createdRows[rowNum]
		if !created {
			continue
		}

		depText, ok := r.m.Value(row, mapping.FieldDependencies)
		if !ok {
			continue
		}
		rowName := r.items[dependentID].Name

		for _, depName := range normalize.SplitNames(depText) {
			requiredID, found := r.index.Lookup(depName)
			if !found {
				r.report.warnf("Dependency not found: '%s' depends on '%s'", rowName, depName)
				continue
			}
			if requiredID == dependentID {
				continue // self-dependency, dropped silently
			}
			edges = append(edges, resolvedEdge{row: rowNum, dependentID: dependentID, requiredID: requiredID})
		}
	}

	r.persistEdges(ctx, edges)
}

// persistEdges issues AddDependency calls with bounded fan-out. Each
// failure is captured into its edge's slot so the report stays in edge
// order regardless of scheduling; one failed edge never aborts siblings.
func (r *run) persistEdges(ctx context.Context, edges []resolvedEdge) {
	if len(edges) == 0 {
		return
	}

	failures := make([]error, len(edges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.StoreConcurrency)
	for i, edge := range edges {
		i, edge := i, edge
		g.Go(func() error {
			failures[i] = r.store.AddDependency(gctx, edge.dependentID, edge.requiredID)
			return nil
		})
	}
	_ = g.Wait() // workers only record; they never return errors

	for i, edge := range edges {
		if failures[i] != nil {
			r.report.errorf("Row %d: adding dependency %s -> %s: %v",
				edge.row, edge.dependentID, edge.requiredID, failures[i])
		}
	}
}

// DescribeMapping renders the effective mapping for report headers and
// verbose output.
func DescribeMapping(m mapping.Mapping) string {
	var parts []string
	for _, e := range m {
		if e.Target == mapping.FieldNone {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s -> %s", e.Source, e.Target))
	}
	return strings.Join(parts, ", ")
}
