// Package normalize maps free-text source values onto hopper's enumerations
// and scalar types.
//
// Source exports are uncurated, so every function here is total: an input
// that matches no rule degrades to a documented default instead of erroring.
// Classification uses explicit, ordered rule tables so behavior is
// reproducible and testable on its own.
package normalize

import (
	"strconv"
	"strings"

	"github.com/hopperhq/hopper/internal/types"
)

// typeRules are checked in order; the first substring match wins.
var typeRules = []struct {
	substr string
	t      types.ItemType
}{
	{"epic", types.TypeEpic},
	{"feature", types.TypeFeature},
	{"user story", types.TypeStory},
	{"story", types.TypeStory},
	{"bug", types.TypeBug},
	{"defect", types.TypeBug},
}

// ParseType classifies a free-text item type. Unrecognized input is a Task.
func ParseType(text string) types.ItemType {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range typeRules {
		if strings.Contains(lower, rule.substr) {
			return rule.t
		}
	}
	return types.TypeTask
}

// statusRules are checked in order; the first substring match wins.
var statusRules = []struct {
	substr string
	s      types.Status
}{
	{"progress", types.StatusInProgress},
	{"doing", types.StatusInProgress},
	{"active", types.StatusInProgress},
	{"block", types.StatusBlocked},
	{"review", types.StatusReview},
	{"testing", types.StatusReview},
	{"qa", types.StatusReview},
	{"done", types.StatusCompleted},
	{"complete", types.StatusCompleted},
	{"closed", types.StatusCompleted},
	{"resolved", types.StatusCompleted},
}

// ParseStatus classifies a free-text status. Unrecognized input is Planning.
func ParseStatus(text string) types.Status {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range statusRules {
		if strings.Contains(lower, rule.substr) {
			return rule.s
		}
	}
	return types.StatusPlanning
}

// priorityRules are checked in order; the first substring match wins.
// "lowest" must precede "low" and "highest" must precede "high" so the
// longer word is not shadowed by its prefix.
var priorityRules = []struct {
	substr   string
	priority int
}{
	{"lowest", 1},
	{"trivial", 1},
	{"p4", 1},
	{"low", 2},
	{"p3", 2},
	{"medium", 3},
	{"normal", 3},
	{"p2", 3},
	{"highest", 5},
	{"critical", 5},
	{"urgent", 5},
	{"blocker", 5},
	{"p0", 5},
	{"high", 4},
	{"major", 4},
	{"p1", 4},
}

// ParsePriority classifies a free-text priority onto the 0-5 scale.
// Named priorities are tried first; otherwise the text is parsed as an
// integer and clamped to [0,5]. Anything else is 0.
func ParsePriority(text string) int {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0
	}
	for _, rule := range priorityRules {
		if strings.Contains(lower, rule.substr) {
			return rule.priority
		}
	}
	if n, err := strconv.Atoi(lower); err == nil {
		if n < types.MinPriority {
			return types.MinPriority
		}
		if n > types.MaxPriority {
			return types.MaxPriority
		}
		return n
	}
	return 0
}

// ParseHours parses an estimated-hours value. Empty or non-numeric input
// yields nil, meaning "unset" rather than zero.
func ParseHours(text string) *float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	hours, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || hours < 0 {
		return nil
	}
	return &hours
}

// ParseTags splits a comma-separated tag list, trimming whitespace and
// dropping empty entries. Duplicate tags are collapsed, preserving first
// occurrence order.
func ParseTags(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.Split(text, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// SplitNames splits a comma-separated list of item names (parent or
// dependency references), trimming and dropping empties. Unlike ParseTags
// it does not dedupe: duplicate suppression for dependency edges belongs
// to the store.
func SplitNames(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
