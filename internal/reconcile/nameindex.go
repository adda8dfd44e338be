package reconcile

import "strings"

// NameIndex maps work item names to ids within one batch. It is the
// single source of truth for name-based resolution: built during the
// create pass, extended when the hierarchy pass synthesizes parents, and
// read by both linking passes. It is never consulted against the
// persistence layer; all resolution is batch-local.
//
// Matching is case-insensitive ("Checkout" and "checkout" are the same
// item). The source system was ambiguous here; case-insensitive wins
// because the type/status/priority normalizers already fold case, and a
// batch holding two items distinguished only by letter case is far more
// likely a dirty export than intent.
type NameIndex struct {
	ids map[string]string
}

// NewNameIndex creates an empty index.
func NewNameIndex() *NameIndex {
	return &NameIndex{ids: make(map[string]string)}
}

func indexKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup resolves a name to a work item id.
func (x *NameIndex) Lookup(name string) (string, bool) {
	id, ok := x.ids[indexKey(name)]
	return id, ok
}

// Insert registers a name. The first registration wins; inserting a name
// that already resolves is a no-op returning false, so an id mapping is
// never overwritten within a run.
func (x *NameIndex) Insert(name, id string) bool {
	key := indexKey(name)
	if _, exists := x.ids[key]; exists {
		return false
	}
	x.ids[key] = id
	return true
}

// Len returns the number of registered names.
func (x *NameIndex) Len() int {
	return len(x.ids)
}
