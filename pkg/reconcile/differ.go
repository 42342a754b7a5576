package reconcile

import (
	"strings"

	"github.com/agentstation/assetsync/pkg/assets"
)

// Predicate names a field check in Diff.
type Predicate string

const (
	PredicateStatusActive   Predicate = "status-active"
	PredicateName           Predicate = "name"
	PredicateVendor         Predicate = "vendor"
	PredicateModel          Predicate = "model"
	PredicateCPU            Predicate = "cpu"
	PredicateMemory         Predicate = "memory"
	PredicateOrgUnit        Predicate = "org-unit"
	PredicateLinkPopulated  Predicate = "link-populated"
	PredicatePrimaryUser    Predicate = "primary-user"
	PredicateOwningCustomer Predicate = "owning-customer"
)

// Diff is the outcome of comparing one matched pair.
type Diff struct {
	Patch  assets.Patch
	Failed []Predicate
}

// InSync reports whether every predicate held.
func (d Diff) InSync() bool { return len(d.Failed) == 0 }

// FailedNames returns the failed predicate names as strings, for logging.
func (d Diff) FailedNames() []string {
	out := make([]string, len(d.Failed))
	for i, f := range d.Failed {
		out[i] = string(f)
	}
	return out
}

func (d *Diff) fail(pred Predicate) {
	d.Failed = append(d.Failed, pred)
}

// Diff evaluates the field predicates for a matched pair and returns the
// patch that brings reg in line with src. Predicates are independent; the
// patch holds the union of their fixes.
func (p *Planner) Diff(src assets.SourceRecord, reg assets.RegistryRecord, ref Reference) Diff {
	var d Diff

	if !p.IsActive(reg.Status.Name) {
		d.fail(PredicateStatusActive)
		d.Patch.Lifecycle = assets.Activate
	}

	if reg.Name != src.Hostname {
		d.fail(PredicateName)
		d.Patch.Name = assets.StringPtr(src.Hostname)
	}

	if v, ok := ref.Vendor(src.Vendor, p.policy.UpdateVendorMatch); ok && !strings.EqualFold(reg.VendorName, src.Vendor) {
		d.fail(PredicateVendor)
		d.Patch.Vendor = &v
	}

	if m, ok := ref.Model(src.Model, p.policy.ModelMatch); ok && !strings.EqualFold(reg.ModelName, src.Model) {
		d.fail(PredicateModel)
		d.Patch.Model = &m
	}

	if cpu := strings.TrimSpace(src.CPU); cpu != "" && reg.Attributes.Get(assets.KindCPU) != cpu {
		d.fail(PredicateCPU)
		d.Patch.SetAttribute(assets.KindCPU, cpu)
	}

	if src.Memory != "" && reg.Attributes.Get(assets.KindMemory) != src.Memory {
		d.fail(PredicateMemory)
		d.Patch.SetAttribute(assets.KindMemory, src.Memory)
	}

	if p.policy.OrgUnit && reg.Attributes.Get(assets.KindOrgUnit) != src.OrgUnit {
		d.fail(PredicateOrgUnit)
		d.Patch.SetAttribute(assets.KindOrgUnit, src.OrgUnit)
	}

	if reg.Attributes.Get(assets.KindDiscoveryLink) == "" {
		d.fail(PredicateLinkPopulated)
		d.Patch.SetAttribute(assets.KindDiscoveryLink, p.cfg.Links.Discovery(src.PrimaryMAC()))
	}

	user := p.resolveUser(src.PrimaryUser, ref.Directory)
	if user.Found {
		if reg.Attributes.Get(assets.KindPrimaryUser) != user.Normalized {
			d.fail(PredicatePrimaryUser)
			d.Patch.SetAttribute(assets.KindPrimaryUser, user.Normalized)
		}
		if p.ownershipDiffers(reg, user.User) {
			d.fail(PredicateOwningCustomer)
			owner := user.User
			d.Patch.OwningCustomer = &owner
		}
	}

	return d
}

// ownershipDiffers is the owning-customer predicate inverted. General-use
// records, users without a department, and students never drive ownership.
func (p *Planner) ownershipDiffers(reg assets.RegistryRecord, u assets.User) bool {
	if reg.IsGeneralUse() || !p.eligibleOwner(u) {
		return false
	}
	return reg.OwningCustomerName != u.FullName
}
