// Package advisor suggests column mappings for uploaded exports.
//
// An Advisor looks at header names and a few sample rows and proposes a
// mapping with a per-column confidence score plus free-text cleanup
// notes. Suggestions are purely advisory: the caller may override any of
// it before invoking the reconcile pipeline, and the engine itself never
// consults an advisor.
package advisor

import (
	"context"

	"github.com/hopperhq/hopper/internal/mapping"
	"github.com/hopperhq/hopper/internal/types"
)

// Suggestion is a proposed column mapping with supporting detail.
type Suggestion struct {
	// Mapping is the proposed column-to-field mapping, one entry per
	// source column in header order (unrecognized columns map to none).
	Mapping mapping.Mapping `json:"mapping"`
	// Confidence holds a 0..1 score per source column.
	Confidence map[string]float64 `json:"confidence,omitempty"`
	// Notes are cleanup suggestions for display ("column 'Due' looks like
	// a date; hopper does not import dates").
	Notes []string `json:"notes,omitempty"`
	// Warnings flag mapping problems the user should resolve before
	// importing (e.g. no name column recognized).
	Warnings []string `json:"warnings,omitempty"`
}

// Advisor proposes a column mapping for a batch.
type Advisor interface {
	SuggestMapping(ctx context.Context, headers []string, sample []types.RawRow) (*Suggestion, error)
}
