package assets

import (
	"fmt"
	"strings"
)

// Kind is a semantic attribute slot on a registry asset. The registry stores
// attributes by numeric ID; that translation happens in the registry client.
type Kind int

const (
	KindUnknown Kind = iota
	KindCPU
	KindMemory
	KindAdapter0Name
	KindMAC0
	KindAdapter1Name
	KindMAC1
	KindOperatingSystem
	KindExternalSource
	KindPrimaryUser
	KindDiscoveryLink
	KindLabelLink
	KindGeneralUse
	KindOrgUnit
	KindWarranty
)

var kindNames = map[Kind]string{
	KindCPU:             "cpu",
	KindMemory:          "ram",
	KindAdapter0Name:    "adapter0_name",
	KindMAC0:            "mac0",
	KindAdapter1Name:    "adapter1_name",
	KindMAC1:            "mac1",
	KindOperatingSystem: "operating_system",
	KindExternalSource:  "external_source",
	KindPrimaryUser:     "primary_user",
	KindDiscoveryLink:   "discovery_link",
	KindLabelLink:       "label_link",
	KindGeneralUse:      "general_use",
	KindOrgUnit:         "org_unit",
	KindWarranty:        "warranty",
}

// Kinds returns every known attribute kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindCPU; k <= KindWarranty; k++ {
		out = append(out, k)
	}
	return out
}

// String returns the configuration key for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a configuration key onto a Kind.
func ParseKind(s string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == key {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown attribute kind %q", s)
}

// GeneralUseValue marks a registry record as shared equipment.
const GeneralUseValue = "Yes"

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
