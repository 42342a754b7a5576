package reconcile

import (
	"github.com/agentstation/assetsync/pkg/assets"
)

// Action classifies a planned mutation.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionRetag      Action = "retag"
	ActionReactivate Action = "reactivate"
	ActionDeactivate Action = "deactivate"
	ActionModelAge   Action = "model-age"

	// ActionLabel is the follow-up write that attaches the label link to a
	// freshly created record. It is never planned on its own.
	ActionLabel Action = "label"
)

// Create is a planned new registry record.
type Create struct {
	Source assets.SourceRecord   `json:"source" yaml:"source"`
	Record assets.RegistryRecord `json:"record" yaml:"record"`
}

// Update is a planned change to an existing registry record.
type Update struct {
	Action   Action                `json:"action" yaml:"action"`
	Registry assets.RegistryRecord `json:"registry" yaml:"registry"`
	// Source is the zero value for deactivations.
	Source assets.SourceRecord `json:"source,omitzero" yaml:"source,omitempty"`
	Patch  assets.Patch        `json:"patch" yaml:"patch"`
	Failed []Predicate         `json:"failed,omitempty" yaml:"failed,omitempty"`
	Retag  bool                `json:"retag,omitempty" yaml:"retag,omitempty"`
}

// FailedNames returns the failed predicate names as strings.
func (u Update) FailedNames() []string {
	return Diff{Failed: u.Failed}.FailedNames()
}

// Skip is a source that was neither matched nor created.
type Skip struct {
	Source assets.SourceRecord `json:"source" yaml:"source"`
	Reason string              `json:"reason" yaml:"reason"`
}

// Plan is the full set of mutations for one feed's run, in execution order.
type Plan struct {
	Feed      assets.Feed      `json:"feed" yaml:"feed"`
	Creates   []Create         `json:"creates" yaml:"creates"`
	Updates   []Update         `json:"updates" yaml:"updates"`
	ModelAges []ModelAgeUpdate `json:"model_ages,omitempty" yaml:"model_ages,omitempty"`
	Skipped   []Skip           `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// InSync counts matched records that needed nothing.
	InSync int `json:"in_sync" yaml:"in_sync"`
}

// Counts tallies the plan's mutations by action.
func (p *Plan) Counts() map[Action]int {
	counts := map[Action]int{
		ActionCreate: len(p.Creates),
	}
	for _, u := range p.Updates {
		counts[u.Action]++
	}
	if len(p.ModelAges) > 0 {
		counts[ActionModelAge] = len(p.ModelAges)
	}
	return counts
}

// Mutations is the number of mutating calls the plan will need,
// counting the label follow-up of every create.
func (p *Plan) Mutations() int {
	return 2*len(p.Creates) + len(p.Updates) + len(p.ModelAges)
}

// IsEmpty reports whether the plan changes nothing.
func (p *Plan) IsEmpty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.ModelAges) == 0
}

// Plan computes every mutation for snap. Creates come first in source order,
// then updates in registry order. A serial-match retag is folded into the
// one patch its record receives.
func (p *Planner) Plan(snap assets.Snapshot) *Plan {
	ref := NewReference(snap.Vendors, snap.Models, snap.Users)
	matching := MatchRecords(snap.Sources, snap.Registry, p.policy)

	plan := &Plan{Feed: snap.Feed}

	for _, m := range matching.Matches {
		if m.Matched() {
			continue
		}
		rec, ok, reason := p.PlanCreate(m.Source, ref)
		if !ok {
			plan.Skipped = append(plan.Skipped, Skip{Source: m.Source, Reason: reason})
			continue
		}
		plan.Creates = append(plan.Creates, Create{Source: m.Source, Record: rec})
	}

	for _, reg := range snap.Registry {
		m, matched := matching.ForRegistry(reg.ID)
		if u, ok := p.planRegistry(reg, m, matched, ref); ok {
			plan.Updates = append(plan.Updates, u)
		} else if matched {
			plan.InSync++
		}
	}

	if p.policy.ModelAge && len(snap.ModelAges) > 0 {
		plan.ModelAges = PlanModelAges(snap.ModelAges, snap.Sources, snap.Models)
	}

	return plan
}

func (p *Planner) planRegistry(reg assets.RegistryRecord, m Match, matched bool, ref Reference) (Update, bool) {
	var retag assets.Patch
	if matched && m.Retag {
		retag.ExternalID = assets.StringPtr(m.Source.ExternalID)
	}

	switch p.PlanTransition(reg, matched) {
	case assets.Activate:
		patch := retag
		patch.Lifecycle = assets.Activate
		return Update{Action: ActionReactivate, Registry: reg, Source: m.Source, Patch: patch, Retag: m.Retag}, true

	case assets.Deactivate:
		if reg.Status.Name == p.cfg.InactiveName {
			return Update{}, false
		}
		return Update{Action: ActionDeactivate, Registry: reg, Patch: assets.Patch{Lifecycle: assets.Deactivate}}, true
	}

	if !matched {
		return Update{}, false
	}

	d := p.Diff(m.Source, reg, ref)
	patch := retag
	patch.Merge(d.Patch)
	if patch.IsEmpty() {
		return Update{}, false
	}

	action := ActionUpdate
	if d.InSync() {
		action = ActionRetag
	}
	return Update{Action: action, Registry: reg, Source: m.Source, Patch: patch, Failed: d.Failed, Retag: m.Retag}, true
}
