package normalize

import (
	"reflect"
	"testing"

	"github.com/hopperhq/hopper/internal/types"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  types.ItemType
	}{
		{"Epic", types.TypeEpic},
		{"epic", types.TypeEpic},
		{"Feature", types.TypeFeature},
		{"User Story", types.TypeStory},
		{"Story", types.TypeStory},
		{"Bug", types.TypeBug},
		{"Defect", types.TypeBug},
		{"Sub-task", types.TypeTask},
		{"Task", types.TypeTask},
		{"", types.TypeTask},
		{"banana", types.TypeTask},
		{"  STORY  ", types.TypeStory},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseType(tt.input); got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  types.Status
	}{
		{"In Progress", types.StatusInProgress},
		{"Doing", types.StatusInProgress},
		{"Active", types.StatusInProgress},
		{"Blocked", types.StatusBlocked},
		{"In Review", types.StatusReview},
		{"Testing", types.StatusReview},
		{"QA", types.StatusReview},
		{"Done", types.StatusCompleted},
		{"Completed", types.StatusCompleted},
		{"Closed", types.StatusCompleted},
		{"Resolved", types.StatusCompleted},
		{"To Do", types.StatusPlanning},
		{"Open", types.StatusPlanning},
		{"", types.StatusPlanning},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseStatus(tt.input); got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"Lowest", 1},
		{"Trivial", 1},
		{"P4", 1},
		{"Low", 2},
		{"P3", 2},
		{"Medium", 3},
		{"Normal", 3},
		{"P2", 3},
		{"High", 4},
		{"Major", 4},
		{"P1", 4},
		{"Highest", 5},
		{"Critical", 5},
		{"Urgent", 5},
		{"Blocker", 5},
		{"P0", 5},
		{"3", 3},
		{"0", 0},
		{"7", 5},
		{"-2", 0},
		{"", 0},
		{"whenever", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParsePriority(tt.input); got != tt.want {
				t.Errorf("ParsePriority(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		nil_  bool
	}{
		{"8", 8, false},
		{"2.5", 2.5, false},
		{"0", 0, false},
		{" 16 ", 16, false},
		{"", 0, true},
		{"a lot", 0, true},
		{"-4", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseHours(tt.input)
			if tt.nil_ {
				if got != nil {
					t.Errorf("ParseHours(%q) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseHours(%q) = nil, want %v", tt.input, tt.want)
			}
			if *got != tt.want {
				t.Errorf("ParseHours(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "backend,api", []string{"backend", "api"}},
		{"whitespace", " backend , api ", []string{"backend", "api"}},
		{"dedupe keeps first", "api,backend,api", []string{"api", "backend"}},
		{"empty entries dropped", "backend,,api,", []string{"backend", "api"}},
		{"empty", "", nil},
		{"only commas", ",,,", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTags(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"two names", "Shop, Checkout", []string{"Shop", "Checkout"}},
		{"duplicates kept", "Shop, Shop", []string{"Shop", "Shop"}},
		{"empty entries dropped", "Shop,, Checkout,", []string{"Shop", "Checkout"}},
		{"empty", "", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitNames(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitNames(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
