package registry

import (
	"fmt"
	"strconv"

	"github.com/agentstation/assetsync/pkg/assets"
)

// AttributeIDs maps semantic attribute kinds to the registry's custom
// attribute IDs. The table is environment-specific static configuration.
type AttributeIDs map[assets.Kind]int

// DefaultAttributeIDs returns the attribute table of the Oregon State
// TeamDynamix tenant.
func DefaultAttributeIDs() AttributeIDs {
	return AttributeIDs{
		assets.KindCPU:             40149,
		assets.KindMemory:          40156,
		assets.KindMAC0:            40154,
		assets.KindMAC1:            40155,
		assets.KindAdapter0Name:    40948,
		assets.KindAdapter1Name:    40949,
		assets.KindOperatingSystem: 40157,
		assets.KindExternalSource:  40152,
		assets.KindDiscoveryLink:   40150,
		assets.KindLabelLink:       40158,
		assets.KindPrimaryUser:     41474,
		assets.KindGeneralUse:      45474,
		assets.KindOrgUnit:         46019,
		assets.KindWarranty:        40159,
	}
}

// ParseAttributeIDs builds a table from kind names, as found under the
// "attributes" configuration key. Missing kinds keep their default ID.
func ParseAttributeIDs(names map[string]int) (AttributeIDs, error) {
	ids := DefaultAttributeIDs()
	for name, id := range names {
		kind, err := assets.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if id <= 0 {
			return nil, fmt.Errorf("attribute %s: id must be positive, got %d", name, id)
		}
		ids[kind] = id
	}
	return ids, ids.Validate()
}

// Validate rejects a table where two kinds share an ID.
func (a AttributeIDs) Validate() error {
	seen := make(map[int]assets.Kind, len(a))
	for kind, id := range a {
		if other, dup := seen[id]; dup {
			return fmt.Errorf("attribute id %d assigned to both %s and %s", id, other, kind)
		}
		seen[id] = kind
	}
	return nil
}

// ID returns the registry attribute ID for kind.
func (a AttributeIDs) ID(kind assets.Kind) (int, bool) {
	id, ok := a[kind]
	return id, ok
}

// Kind returns the kind stored under a registry attribute ID.
func (a AttributeIDs) Kind(id int) (assets.Kind, bool) {
	for kind, v := range a {
		if v == id {
			return kind, true
		}
	}
	return assets.KindUnknown, false
}

// Column is the report column name carrying kind; reports key attribute
// columns by ID.
func (a AttributeIDs) Column(kind assets.Kind) (string, bool) {
	id, ok := a[kind]
	if !ok {
		return "", false
	}
	return strconv.Itoa(id), true
}
