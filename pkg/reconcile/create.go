package reconcile

import (
	"strings"

	"github.com/agentstation/assetsync/pkg/assets"
)

// PlanCreate builds the registry record for a source with no match. It
// returns false with a skip reason when the feed's creation gates reject
// the source; a record without both a name and a serial is always rejected.
func (p *Planner) PlanCreate(src assets.SourceRecord, ref Reference) (assets.RegistryRecord, bool, string) {
	if ok, reason := p.policy.creatable(src); !ok {
		return assets.RegistryRecord{}, false, reason
	}

	user := p.resolveUser(src.PrimaryUser, ref.Directory)

	rec := assets.RegistryRecord{
		ExternalID:   src.ExternalID,
		SerialNumber: src.SerialNumber,
		Name:         src.Hostname,
		Status:       p.cfg.Statuses.Active,
		Attributes:   p.createAttributes(src, user.Normalized),
	}

	if user.Found && p.eligibleOwner(user.User) {
		rec.OwningCustomerID = user.User.UID
		rec.OwningCustomerName = user.User.FullName
		rec.OwningDepartmentID = user.User.DefaultAccountID
	}

	if v, ok := ref.Vendor(src.Vendor, p.policy.CreateVendorMatch); ok {
		rec.VendorID = v.ID
		rec.VendorName = v.Name
	}

	if m, ok := ref.Model(src.Model, p.policy.ModelMatch); ok {
		rec.ModelID = m.ID
		rec.ModelName = m.Name
	}

	return rec, true, ""
}

func (p *Planner) createAttributes(src assets.SourceRecord, primaryUser string) assets.Attributes {
	attrs := assets.Attributes{
		assets.KindCPU:             strings.TrimSpace(src.CPU),
		assets.KindMemory:          src.Memory,
		assets.KindOperatingSystem: src.OperatingSystem,
		assets.KindExternalSource:  p.policy.Tag,
		assets.KindPrimaryUser:     primaryUser,
		assets.KindDiscoveryLink:   p.cfg.Links.Discovery(src.PrimaryMAC()),
	}

	macKinds := []assets.Kind{assets.KindMAC0, assets.KindMAC1}
	nameKinds := []assets.Kind{assets.KindAdapter0Name, assets.KindAdapter1Name}
	for i := 0; i < p.policy.Adapters && i < len(macKinds); i++ {
		adapter := src.Adapter(i)
		attrs[macKinds[i]] = adapter.MAC
		if p.policy.AdapterNames {
			attrs[nameKinds[i]] = adapter.Name
		}
	}

	if p.policy.OrgUnit {
		attrs[assets.KindOrgUnit] = src.OrgUnit
	}
	if p.policy.Warranty {
		attrs[assets.KindWarranty] = src.Warranty
	}

	return attrs
}

// LabelPatch is the follow-up update every newly created record receives,
// once the registry has assigned its ID.
func (p *Planner) LabelPatch(id int) assets.Patch {
	var patch assets.Patch
	patch.SetAttribute(assets.KindLabelLink, p.cfg.Links.Label(id))
	return patch
}
