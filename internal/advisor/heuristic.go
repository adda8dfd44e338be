package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/hopperhq/hopper/internal/mapping"
	"github.com/hopperhq/hopper/internal/types"
)

// headerRule matches a header keyword to a target field. Exact matches
// score higher than substring matches. Rules are checked in order; the
// first hit wins, so more specific keywords come first ("parent" before
// "name" is irrelevant, but "story points" must precede "story").
var headerRules = []struct {
	keyword string
	target  mapping.TargetField
}{
	{"summary", mapping.FieldName},
	{"title", mapping.FieldName},
	{"name", mapping.FieldName},
	{"description", mapping.FieldDescription},
	{"details", mapping.FieldDescription},
	{"issue type", mapping.FieldType},
	{"issuetype", mapping.FieldType},
	{"work item type", mapping.FieldType},
	{"type", mapping.FieldType},
	{"parent", mapping.FieldParentName},
	{"epic link", mapping.FieldParentName},
	{"epic", mapping.FieldParentName},
	{"assignee", mapping.FieldOwner},
	{"owner", mapping.FieldOwner},
	{"status", mapping.FieldStatus},
	{"state", mapping.FieldStatus},
	{"priority", mapping.FieldPriority},
	{"severity", mapping.FieldPriority},
	{"estimate", mapping.FieldEstimatedHours},
	{"hours", mapping.FieldEstimatedHours},
	{"effort", mapping.FieldEstimatedHours},
	{"sprint", mapping.FieldSprint},
	{"iteration", mapping.FieldSprint},
	{"labels", mapping.FieldTags},
	{"tags", mapping.FieldTags},
	{"components", mapping.FieldTags},
	{"depends on", mapping.FieldDependencies},
	{"dependencies", mapping.FieldDependencies},
	{"blocked by", mapping.FieldDependencies},
	{"issue key", mapping.FieldExternalID},
	{"key", mapping.FieldExternalID},
	{"issue id", mapping.FieldExternalID},
	{"external id", mapping.FieldExternalID},
	{"id", mapping.FieldExternalID},
}

// Heuristic is the built-in keyword advisor: no network, deterministic,
// good enough for the common Jira/Linear CSV header vocabularies.
type Heuristic struct{}

// NewHeuristic creates the keyword-based advisor.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// SuggestMapping proposes a mapping from header keywords alone; the
// sample rows are only used to flag columns that are entirely empty.
func (h *Heuristic) SuggestMapping(ctx context.Context, headers []string, sample []types.RawRow) (*Suggestion, error) {
	s := &Suggestion{
		Confidence: make(map[string]float64, len(headers)),
	}
	claimed := make(map[mapping.TargetField]string)

	for _, header := range headers {
		target, confidence := classifyHeader(header)

		// Several source columns may feed one field; first mapping entry
		// wins at resolution time, so later claims keep their target but
		// get a note instead of silently shadowing.
		if prev, taken := claimed[target]; taken && target != mapping.FieldNone {
			s.Notes = append(s.Notes,
				fmt.Sprintf("columns %q and %q both map to %s; %q wins when both hold a value", prev, header, target, prev))
		} else if target != mapping.FieldNone {
			claimed[target] = header
		}

		s.Mapping = append(s.Mapping, mapping.Entry{Source: header, Target: target})
		s.Confidence[header] = confidence

		if target == mapping.FieldNone {
			s.Notes = append(s.Notes, fmt.Sprintf("column %q not recognized; it will be ignored", header))
		}
	}

	for _, header := range headers {
		if columnEmpty(header, sample) && len(sample) > 0 {
			s.Notes = append(s.Notes, fmt.Sprintf("column %q is empty in the sampled rows", header))
		}
	}

	if _, ok := claimed[mapping.FieldName]; !ok {
		s.Warnings = append(s.Warnings, "no column maps to the required name field; assign one before importing")
	}

	return s, nil
}

// classifyHeader scores a single header against the rule table.
func classifyHeader(header string) (mapping.TargetField, float64) {
	lower := strings.ToLower(strings.TrimSpace(header))
	for _, rule := range headerRules {
		if lower == rule.keyword {
			return rule.target, 0.95
		}
	}
	for _, rule := range headerRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.target, 0.7
		}
	}
	return mapping.FieldNone, 0
}

func columnEmpty(header string, sample []types.RawRow) bool {
	for _, row := range sample {
		if strings.TrimSpace(row.Get(header)) != "" {
			return false
		}
	}
	return true
}
