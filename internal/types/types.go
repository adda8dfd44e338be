// Package types defines core data structures for the hopper import engine.
package types

import (
	"fmt"
	"time"
)

// WorkItem represents one importable unit of work (epic/feature/story/task/bug).
type WorkItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Type           ItemType  `json:"type,omitempty"`
	Status         Status    `json:"status,omitempty"`
	Priority       int       `json:"priority"` // No omitempty: 0 is a valid priority
	Owner          string    `json:"owner,omitempty"`
	ExternalID     string    `json:"external_id,omitempty"` // e.g. "PROJ-123" from a Jira export
	Tags           []string  `json:"tags,omitempty"`
	EstimatedHours *float64  `json:"estimated_hours,omitempty"`
	ParentID       string    `json:"parent_id,omitempty"` // Weak reference; ownership lives in the child
	Sprint         string    `json:"sprint,omitempty"`    // Batch-wide assignment, not per-row
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks if the work item has valid field values.
func (w *WorkItem) Validate() error {
	if len(w.Name) == 0 {
		return fmt.Errorf("name is required")
	}
	if len(w.Name) > 500 {
		return fmt.Errorf("name must be 500 characters or less (got %d)", len(w.Name))
	}
	if w.Priority < 0 || w.Priority > 5 {
		return fmt.Errorf("priority must be between 0 and 5 (got %d)", w.Priority)
	}
	if !w.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", w.Status)
	}
	if !w.Type.IsValid() {
		return fmt.Errorf("invalid item type: %s", w.Type)
	}
	if w.EstimatedHours != nil && *w.EstimatedHours < 0 {
		return fmt.Errorf("estimated_hours cannot be negative")
	}
	if w.ParentID == w.ID && w.ID != "" {
		return fmt.Errorf("item cannot be its own parent")
	}
	return nil
}

// SetDefaults applies default values for fields omitted by the source data:
//   - Type: defaults to TypeTask if empty
//   - Status: defaults to StatusPlanning if empty
func (w *WorkItem) SetDefaults() {
	if w.Type == "" {
		w.Type = TypeTask
	}
	if w.Status == "" {
		w.Status = StatusPlanning
	}
}

// Status represents the current state of a work item
type Status string

// Work item status constants
const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusBlocked, StatusReview, StatusCompleted:
		return true
	}
	return false
}

// ItemType categorizes the kind of work
type ItemType string

// Item type constants
const (
	TypeEpic    ItemType = "epic"
	TypeFeature ItemType = "feature"
	TypeStory   ItemType = "story"
	TypeTask    ItemType = "task"
	TypeBug     ItemType = "bug"
)

// IsValid checks if the item type value is valid
func (t ItemType) IsValid() bool {
	switch t {
	case TypeEpic, TypeFeature, TypeStory, TypeTask, TypeBug:
		return true
	}
	return false
}

// MinPriority and MaxPriority bound the priority scale. 0 is "unset/lowest
// urgency", 5 is critical.
const (
	MinPriority = 0
	MaxPriority = 5
)

// Dependency is a directed "requires" edge between two work items in the
// same batch. DependentID requires RequiredID. No self-loops; duplicate
// inserts are a no-op at the store layer.
type Dependency struct {
	DependentID string    `json:"dependent_id"`
	RequiredID  string    `json:"required_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key returns the identity of the edge, used for duplicate suppression.
func (d *Dependency) Key() string {
	return d.DependentID + "|" + d.RequiredID
}
