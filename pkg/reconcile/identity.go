package reconcile

import (
	"github.com/agentstation/assetsync/pkg/assets"
)

// MatchMethod records which identity key produced a match.
type MatchMethod string

const (
	MatchNone       MatchMethod = ""
	MatchExternalID MatchMethod = "external-id"
	MatchSerial     MatchMethod = "serial"
)

// Match pairs a source record with at most one registry record.
type Match struct {
	Source   assets.SourceRecord
	Registry *assets.RegistryRecord
	Method   MatchMethod
	// Retag is set when the registry record was found by serial and its
	// stored external ID differs from the source's.
	Retag bool
}

// Matched reports whether a registry record was found.
func (m Match) Matched() bool { return m.Registry != nil }

// Matching is a partial bijection between one run's source and registry
// snapshots.
type Matching struct {
	Matches    []Match
	byRegistry map[int]int
}

// MatchRecords pairs source records with registry records. Every source is
// first tried by external ID; only sources left over are tried by serial,
// against registry records nobody has claimed. Serials the policy rejects
// are never used.
func MatchRecords(sources []assets.SourceRecord, registry []assets.RegistryRecord, policy Policy) *Matching {
	m := &Matching{
		Matches:    make([]Match, len(sources)),
		byRegistry: make(map[int]int, len(sources)),
	}

	byExternalID := make(map[string]int, len(registry))
	for i, r := range registry {
		if r.ExternalID == "" {
			continue
		}
		if _, seen := byExternalID[r.ExternalID]; !seen {
			byExternalID[r.ExternalID] = i
		}
	}

	claimed := make(map[int]bool, len(registry))
	for si, s := range sources {
		m.Matches[si] = Match{Source: s}
		if s.ExternalID == "" {
			continue
		}
		ri, ok := byExternalID[s.ExternalID]
		if !ok || claimed[ri] {
			continue
		}
		m.claim(si, ri, registry, claimed, MatchExternalID)
	}

	bySerial := make(map[string]int, len(registry))
	for i, r := range registry {
		if claimed[i] || r.SerialNumber == "" {
			continue
		}
		if _, seen := bySerial[r.SerialNumber]; !seen {
			bySerial[r.SerialNumber] = i
		}
	}

	for si, s := range sources {
		if m.Matches[si].Matched() || !policy.ValidSerial(s.SerialNumber) {
			continue
		}
		ri, ok := bySerial[s.SerialNumber]
		if !ok || claimed[ri] {
			continue
		}
		m.claim(si, ri, registry, claimed, MatchSerial)
		m.Matches[si].Retag = registry[ri].ExternalID != s.ExternalID
	}

	return m
}

func (m *Matching) claim(si, ri int, registry []assets.RegistryRecord, claimed map[int]bool, method MatchMethod) {
	claimed[ri] = true
	m.Matches[si].Registry = &registry[ri]
	m.Matches[si].Method = method
	m.byRegistry[registry[ri].ID] = si
}

// ForRegistry is the inverse lookup: the match that claimed registry record id.
func (m *Matching) ForRegistry(id int) (Match, bool) {
	si, ok := m.byRegistry[id]
	if !ok {
		return Match{}, false
	}
	return m.Matches[si], true
}

// Unmatched returns the sources with no registry record.
func (m *Matching) Unmatched() []assets.SourceRecord {
	var out []assets.SourceRecord
	for _, match := range m.Matches {
		if !match.Matched() {
			out = append(out, match.Source)
		}
	}
	return out
}
