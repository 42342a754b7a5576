package sync

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/reconcile"
)

// Result represents the outcome of one feed run.
type Result struct {
	Feed  assets.Feed `json:"feed" yaml:"feed"`
	RunID string      `json:"run_id" yaml:"run_id"`

	// Snapshot sizes
	SourceRecords   int `json:"source_records" yaml:"source_records"`
	RegistryRecords int `json:"registry_records" yaml:"registry_records"`

	// Mutation outcomes keyed by action
	Applied map[reconcile.Action]int `json:"applied,omitempty" yaml:"applied,omitempty"`
	Failed  map[reconcile.Action]int `json:"failed,omitempty" yaml:"failed,omitempty"`

	// Records that needed nothing
	Skipped int `json:"skipped" yaml:"skipped"`
	InSync  int `json:"in_sync" yaml:"in_sync"`

	// Failures lists per-record errors in the order they happened
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// Operation metadata
	DryRun   bool          `json:"dry_run" yaml:"dry_run"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Failure is a single per-record mutation error.
type Failure struct {
	Action  reconcile.Action `json:"action" yaml:"action"`
	AssetID int              `json:"asset_id,omitempty" yaml:"asset_id,omitempty"`
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Error   string           `json:"error" yaml:"error"`
}

// NewResult returns an empty result for a feed run.
func NewResult(feed assets.Feed, runID string) *Result {
	return &Result{
		Feed:    feed,
		RunID:   runID,
		Applied: make(map[reconcile.Action]int),
		Failed:  make(map[reconcile.Action]int),
	}
}

// Observe copies the snapshot and plan sizes into the result.
func (sr *Result) Observe(snap assets.Snapshot, plan *reconcile.Plan) {
	sr.SourceRecords = len(snap.Sources)
	sr.RegistryRecords = len(snap.Registry)
	if plan != nil {
		sr.Skipped = len(plan.Skipped)
		sr.InSync = plan.InSync
	}
}

// Record counts one mutation outcome. A nil err counts as applied.
func (sr *Result) Record(action reconcile.Action, assetID int, name string, err error) {
	if sr.Applied == nil {
		sr.Applied = make(map[reconcile.Action]int)
	}
	if sr.Failed == nil {
		sr.Failed = make(map[reconcile.Action]int)
	}
	if err == nil {
		sr.Applied[action]++
		return
	}
	sr.Failed[action]++
	sr.Failures = append(sr.Failures, Failure{
		Action:  action,
		AssetID: assetID,
		Name:    name,
		Error:   err.Error(),
	})
}

// TotalApplied returns the number of successful mutations.
func (sr *Result) TotalApplied() int {
	total := 0
	for _, n := range sr.Applied {
		total += n
	}
	return total
}

// TotalFailed returns the number of failed mutations.
func (sr *Result) TotalFailed() int {
	total := 0
	for _, n := range sr.Failed {
		total += n
	}
	return total
}

// HasChanges returns true if the run applied any mutation.
func (sr *Result) HasChanges() bool {
	return sr.TotalApplied() > 0
}

// HasFailures returns true if any per-record mutation failed.
func (sr *Result) HasFailures() bool {
	return sr.TotalFailed() > 0
}

// Summary returns a human-readable summary of the result.
func (sr *Result) Summary() string {
	if !sr.HasChanges() && !sr.HasFailures() {
		summary := fmt.Sprintf("%s: No changes detected (%d in sync, %d skipped)", sr.Feed, sr.InSync, sr.Skipped)
		if sr.DryRun {
			summary += " (Dry run)"
		}
		return summary
	}

	summary := fmt.Sprintf("%s: %d changes applied", sr.Feed, sr.TotalApplied())
	if parts := actionParts(sr.Applied); len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	if failed := sr.TotalFailed(); failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	if sr.DryRun {
		summary += " (Dry run)"
	}
	return summary
}

func actionParts(counts map[reconcile.Action]int) []string {
	actions := make([]string, 0, len(counts))
	for action, n := range counts {
		if n > 0 {
			actions = append(actions, string(action))
		}
	}
	sort.Strings(actions)

	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		parts = append(parts, fmt.Sprintf("%d %s", counts[reconcile.Action(action)], action))
	}
	return parts
}
