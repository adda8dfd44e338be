package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopperhq/hopper/internal/mapping"
	"github.com/hopperhq/hopper/internal/types"
)

func TestClassifyHeader(t *testing.T) {
	tests := []struct {
		header     string
		target     mapping.TargetField
		confidence float64
	}{
		{"Summary", mapping.FieldName, 0.95},
		{"Title", mapping.FieldName, 0.95},
		{"Issue Type", mapping.FieldType, 0.95},
		{"Epic Link", mapping.FieldParentName, 0.95},
		{"Parent", mapping.FieldParentName, 0.95},
		{"Assignee", mapping.FieldOwner, 0.95},
		{"Status", mapping.FieldStatus, 0.95},
		{"Priority", mapping.FieldPriority, 0.95},
		{"Original Estimate", mapping.FieldEstimatedHours, 0.7},
		{"Sprint", mapping.FieldSprint, 0.95},
		{"Labels", mapping.FieldTags, 0.95},
		{"Depends On", mapping.FieldDependencies, 0.95},
		{"Custom field (Depends On)", mapping.FieldDependencies, 0.7},
		{"Issue key", mapping.FieldExternalID, 0.95},
		{"Story Points", mapping.FieldNone, 0},
		{"", mapping.FieldNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			target, confidence := classifyHeader(tt.header)
			assert.Equal(t, tt.target, target)
			assert.InDelta(t, tt.confidence, confidence, 0.001)
		})
	}
}

func TestHeuristicSuggestMapping(t *testing.T) {
	h := NewHeuristic()
	headers := []string{"Summary", "Issue Type", "Epic Link", "Story Points"}

	s, err := h.SuggestMapping(context.Background(), headers, nil)
	require.NoError(t, err)
	require.Len(t, s.Mapping, len(headers))

	assert.Equal(t, mapping.FieldName, s.Mapping[0].Target)
	assert.Equal(t, mapping.FieldType, s.Mapping[1].Target)
	assert.Equal(t, mapping.FieldParentName, s.Mapping[2].Target)
	assert.Equal(t, mapping.FieldNone, s.Mapping[3].Target)

	require.NoError(t, s.Mapping.Validate())
	assert.Empty(t, s.Warnings)

	// The unrecognized column gets a note, not silence.
	found := false
	for _, n := range s.Notes {
		if strings.Contains(n, `"Story Points"`) {
			found = true
		}
	}
	assert.True(t, found, "expected a note about the ignored column, got %v", s.Notes)
}

func TestHeuristicWarnsWithoutNameColumn(t *testing.T) {
	h := NewHeuristic()

	s, err := h.SuggestMapping(context.Background(), []string{"Status", "Priority"}, nil)
	require.NoError(t, err)

	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "name")
	assert.Error(t, s.Mapping.Validate())
}

func TestHeuristicNotesDuplicateTargets(t *testing.T) {
	h := NewHeuristic()

	s, err := h.SuggestMapping(context.Background(), []string{"Summary", "Title"}, nil)
	require.NoError(t, err)

	found := false
	for _, n := range s.Notes {
		if strings.Contains(n, "both map to name") {
			found = true
		}
	}
	assert.True(t, found, "expected a shadowing note, got %v", s.Notes)
}

func TestHeuristicFlagsEmptyColumns(t *testing.T) {
	h := NewHeuristic()
	headers := []string{"Summary", "Sprint"}
	sample := []types.RawRow{
		{Columns: headers, Fields: map[string]string{"Summary": "Checkout", "Sprint": ""}},
		{Columns: headers, Fields: map[string]string{"Summary": "Billing", "Sprint": "  "}},
	}

	s, err := h.SuggestMapping(context.Background(), headers, sample)
	require.NoError(t, err)

	found := false
	for _, n := range s.Notes {
		if strings.Contains(n, `"Sprint" is empty`) {
			found = true
		}
	}
	assert.True(t, found, "expected an empty-column note, got %v", s.Notes)
}
