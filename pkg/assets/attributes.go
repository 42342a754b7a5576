package assets

import "sort"

// Attributes is the typed attribute bag of a registry record.
type Attributes map[Kind]string

// Get returns the value for k, or "" when unset.
func (a Attributes) Get(k Kind) string {
	if a == nil {
		return ""
	}
	return a[k]
}

// Has reports whether k is present, even with an empty value.
func (a Attributes) Has(k Kind) bool {
	_, ok := a[k]
	return ok
}

// Upsert sets k to v, adding the entry when missing. It reports whether the
// stored value changed.
func (a Attributes) Upsert(k Kind, v string) bool {
	old, ok := a[k]
	a[k] = v
	return !ok || old != v
}

// Merge upserts every entry of other into a.
func (a Attributes) Merge(other Attributes) {
	for k, v := range other {
		a.Upsert(k, v)
	}
}

// Clone returns a copy that can be mutated independently.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SortedKinds returns the populated kinds in declaration order.
func (a Attributes) SortedKinds() []Kind {
	out := make([]Kind, 0, len(a))
	for k := range a {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
