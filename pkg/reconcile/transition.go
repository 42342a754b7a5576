package reconcile

import "github.com/agentstation/assetsync/pkg/assets"

// PlanTransition decides a registry record's status transition from whether
// the current run found it in the feed.
//
//	Retired, matched       -> Activate
//	not Retired, unmatched -> Deactivate
//	otherwise              -> Unchanged
//
// A matched record outside the active set is handled by the status-active
// predicate in Diff instead.
func (p *Planner) PlanTransition(reg assets.RegistryRecord, matched bool) assets.Lifecycle {
	retired := p.IsRetired(reg.Status.Name)
	switch {
	case retired && matched:
		return assets.Activate
	case !retired && !matched:
		return assets.Deactivate
	default:
		return assets.Unchanged
	}
}
