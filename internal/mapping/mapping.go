// Package mapping describes how source columns feed the work item fields.
//
// A Mapping is an ordered list of (source column, target field) pairs.
// Several source columns may target the same field; resolution order
// follows the list, first match wins. The one hard requirement is a
// mapping to FieldName: without it no ingestion is attempted.
package mapping

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hopperhq/hopper/internal/types"
)

// ErrNoNameMapping is returned by Validate when no source column maps to
// the name field. This is the only fatal precondition of a reconcile run:
// it is checked once, before Pass 1, and nothing is created.
var ErrNoNameMapping = errors.New("mapping contains no source column for the name field")

// TargetField identifies a work item field a source column can feed.
type TargetField string

// Target field constants. FieldNone marks a column that is deliberately
// ignored.
const (
	FieldNone           TargetField = ""
	FieldName           TargetField = "name"
	FieldDescription    TargetField = "description"
	FieldType           TargetField = "type"
	FieldParentName     TargetField = "parent_name"
	FieldOwner          TargetField = "owner"
	FieldStatus         TargetField = "status"
	FieldPriority       TargetField = "priority"
	FieldEstimatedHours TargetField = "estimated_hours"
	FieldSprint         TargetField = "sprint"
	FieldTags           TargetField = "tags"
	FieldExternalID     TargetField = "external_id"
	FieldDependencies   TargetField = "dependencies"
)

// IsValid checks if the target field value is known.
func (f TargetField) IsValid() bool {
	switch f {
	case FieldNone, FieldName, FieldDescription, FieldType, FieldParentName,
		FieldOwner, FieldStatus, FieldPriority, FieldEstimatedHours,
		FieldSprint, FieldTags, FieldExternalID, FieldDependencies:
		return true
	}
	return false
}

// Entry binds one source column to a target field.
type Entry struct {
	Source string      `yaml:"source" json:"source"`
	Target TargetField `yaml:"target,omitempty" json:"target,omitempty"`
}

// Mapping is the ordered column-to-field mapping for a batch.
type Mapping []Entry

// Validate checks that every target field is known and that at least one
// entry feeds the name field.
func (m Mapping) Validate() error {
	hasName := false
	for _, e := range m {
		if !e.Target.IsValid() {
			return fmt.Errorf("unknown target field %q for source column %q", e.Target, e.Source)
		}
		if e.Target == FieldName {
			hasName = true
		}
	}
	if !hasName {
		return ErrNoNameMapping
	}
	return nil
}

// Value extracts the value for a target field from a row.
//
// It scans the mapping in order and returns the first non-empty, trimmed
// cell from a column targeting the field. The second return is false when
// no mapped column holds a value. First mapping entry wins; this ordering
// is part of the contract.
func (m Mapping) Value(row types.RawRow, field TargetField) (string, bool) {
	for _, e := range m {
		if e.Target != field {
			continue
		}
		if v := strings.TrimSpace(row.Get(e.Source)); v != "" {
			return v, true
		}
	}
	return "", false
}

// Targets reports which target fields the mapping feeds at all.
func (m Mapping) Targets() map[TargetField]bool {
	out := make(map[TargetField]bool, len(m))
	for _, e := range m {
		if e.Target != FieldNone {
			out[e.Target] = true
		}
	}
	return out
}

// mappingFile is the on-disk YAML shape for user-supplied overrides.
type mappingFile struct {
	Columns []Entry `yaml:"columns"`
}

// Load reads a mapping override file (YAML).
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user-provided file path is intentional
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML mapping document.
func Parse(data []byte) (Mapping, error) {
	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}
	m := Mapping(f.Columns)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Marshal encodes the mapping in the same YAML shape Load reads.
func (m Mapping) Marshal() ([]byte, error) {
	return yaml.Marshal(mappingFile{Columns: m})
}
