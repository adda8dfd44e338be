package types

import (
	"strings"
	"testing"
)

func TestWorkItemValidate(t *testing.T) {
	valid := func() *WorkItem {
		return &WorkItem{ID: "hop-1", Name: "Checkout", Type: TypeStory, Status: StatusPlanning}
	}

	tests := []struct {
		name    string
		mutate  func(*WorkItem)
		wantErr string
	}{
		{"valid", func(w *WorkItem) {}, ""},
		{"missing name", func(w *WorkItem) { w.Name = "" }, "name is required"},
		{"name too long", func(w *WorkItem) { w.Name = strings.Repeat("x", 501) }, "500 characters"},
		{"name at limit", func(w *WorkItem) { w.Name = strings.Repeat("x", 500) }, ""},
		{"priority too high", func(w *WorkItem) { w.Priority = 6 }, "priority"},
		{"priority negative", func(w *WorkItem) { w.Priority = -1 }, "priority"},
		{"priority bounds", func(w *WorkItem) { w.Priority = 5 }, ""},
		{"bad status", func(w *WorkItem) { w.Status = "cancelled" }, "invalid status"},
		{"bad type", func(w *WorkItem) { w.Type = "initiative" }, "invalid item type"},
		{"negative hours", func(w *WorkItem) { h := -1.0; w.EstimatedHours = &h }, "estimated_hours"},
		{"self parent", func(w *WorkItem) { w.ParentID = w.ID }, "own parent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid()
			tt.mutate(w)
			err := w.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	w := &WorkItem{Name: "X"}
	w.SetDefaults()
	if w.Type != TypeTask {
		t.Errorf("Type = %v, want task", w.Type)
	}
	if w.Status != StatusPlanning {
		t.Errorf("Status = %v, want planning", w.Status)
	}

	// Existing values are untouched.
	w2 := &WorkItem{Name: "Y", Type: TypeEpic, Status: StatusCompleted}
	w2.SetDefaults()
	if w2.Type != TypeEpic || w2.Status != StatusCompleted {
		t.Errorf("SetDefaults overwrote fields: %+v", w2)
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusPlanning, StatusInProgress, StatusBlocked, StatusReview, StatusCompleted} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "open", "Planning"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestItemTypeIsValid(t *testing.T) {
	for _, ty := range []ItemType{TypeEpic, TypeFeature, TypeStory, TypeTask, TypeBug} {
		if !ty.IsValid() {
			t.Errorf("%s should be valid", ty)
		}
	}
	for _, ty := range []ItemType{"", "chore", "Epic"} {
		if ty.IsValid() {
			t.Errorf("%q should be invalid", ty)
		}
	}
}

func TestDependencyKey(t *testing.T) {
	a := &Dependency{DependentID: "hop-1", RequiredID: "hop-2"}
	b := &Dependency{DependentID: "hop-1", RequiredID: "hop-2"}
	c := &Dependency{DependentID: "hop-2", RequiredID: "hop-1"}

	if a.Key() != b.Key() {
		t.Error("identical edges should share a key")
	}
	if a.Key() == c.Key() {
		t.Error("reversed edge should have a distinct key")
	}
}
