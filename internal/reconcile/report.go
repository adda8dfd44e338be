package reconcile

import "fmt"

// Report contains the outcome of one reconcile run. It is assembled
// incrementally across the three passes and finalized once; callers
// receive it by pointer but nothing mutates it after return.
type Report struct {
	// BatchID uniquely identifies this run for audit trails.
	BatchID string `json:"batch_id"`

	// Created counts work items persisted, including auto-created parents.
	Created int `json:"created"`
	// Skipped counts rows that produced no entity (blank or duplicate name).
	Skipped int `json:"skipped"`

	// Warnings are non-fatal, row-attributable notes: the entity exists
	// but is under-linked, or a row was skipped.
	Warnings []string `json:"warnings,omitempty"`
	// Errors are row-attributable failures: that row's effect was
	// abandoned but the batch continued.
	Errors []string `json:"errors,omitempty"`
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary renders a one-line human summary of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf("created %d, skipped %d, %d warning(s), %d error(s)",
		r.Created, r.Skipped, len(r.Warnings), len(r.Errors))
}
