package assets

import "sort"

// Lifecycle is a planned status transition.
type Lifecycle int

const (
	// Unchanged leaves the status alone.
	Unchanged Lifecycle = iota
	// Activate moves the record to the active status.
	Activate
	// Deactivate moves the record to the inactive status.
	Deactivate
)

// String returns the transition name.
func (l Lifecycle) String() string {
	switch l {
	case Activate:
		return "activate"
	case Deactivate:
		return "deactivate"
	default:
		return "unchanged"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifecycle) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// StatusTable resolves transitions to concrete registry statuses.
type StatusTable struct {
	Active   Status
	Inactive Status
}

// For returns the status a transition lands on.
func (t StatusTable) For(l Lifecycle) (Status, bool) {
	switch l {
	case Activate:
		return t.Active, true
	case Deactivate:
		return t.Inactive, true
	}
	return Status{}, false
}

// Patch is the set of field changes for one registry record. Nil fields are
// left untouched.
type Patch struct {
	ExternalID     *string       `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Name           *string       `json:"name,omitempty" yaml:"name,omitempty"`
	Vendor         *Vendor       `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Model          *ProductModel `json:"model,omitempty" yaml:"model,omitempty"`
	OwningCustomer *User         `json:"owning_customer,omitempty" yaml:"owning_customer,omitempty"`
	Lifecycle      Lifecycle     `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
	Attributes     Attributes    `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// IsEmpty reports whether applying the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.ExternalID == nil &&
		p.Name == nil &&
		p.Vendor == nil &&
		p.Model == nil &&
		p.OwningCustomer == nil &&
		p.Lifecycle == Unchanged &&
		len(p.Attributes) == 0
}

// SetAttribute records an attribute upsert.
func (p *Patch) SetAttribute(k Kind, v string) {
	if p.Attributes == nil {
		p.Attributes = make(Attributes)
	}
	p.Attributes[k] = v
}

// Merge folds other into p; fields set on other win.
func (p *Patch) Merge(other Patch) {
	if other.ExternalID != nil {
		p.ExternalID = other.ExternalID
	}
	if other.Name != nil {
		p.Name = other.Name
	}
	if other.Vendor != nil {
		p.Vendor = other.Vendor
	}
	if other.Model != nil {
		p.Model = other.Model
	}
	if other.OwningCustomer != nil {
		p.OwningCustomer = other.OwningCustomer
	}
	if other.Lifecycle != Unchanged {
		p.Lifecycle = other.Lifecycle
	}
	for k, v := range other.Attributes {
		p.SetAttribute(k, v)
	}
}

// Apply writes the patch onto rec. Attribute entries are upserted.
func (p Patch) Apply(rec *RegistryRecord, statuses StatusTable) {
	if p.ExternalID != nil {
		rec.ExternalID = *p.ExternalID
	}
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.Vendor != nil {
		rec.VendorID = p.Vendor.ID
		rec.VendorName = p.Vendor.Name
	}
	if p.Model != nil {
		rec.ModelID = p.Model.ID
		rec.ModelName = p.Model.Name
	}
	if p.OwningCustomer != nil {
		rec.OwningCustomerID = p.OwningCustomer.UID
		rec.OwningCustomerName = p.OwningCustomer.FullName
	}
	if status, ok := statuses.For(p.Lifecycle); ok {
		rec.Status = status
	}
	if len(p.Attributes) > 0 {
		if rec.Attributes == nil {
			rec.Attributes = make(Attributes, len(p.Attributes))
		}
		rec.Attributes.Merge(p.Attributes)
	}
}

// Fields lists the touched fields, for logging.
func (p Patch) Fields() []string {
	var out []string
	if p.ExternalID != nil {
		out = append(out, "external_id")
	}
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.Vendor != nil {
		out = append(out, "vendor")
	}
	if p.Model != nil {
		out = append(out, "model")
	}
	if p.OwningCustomer != nil {
		out = append(out, "owning_customer")
	}
	if p.Lifecycle != Unchanged {
		out = append(out, "status")
	}
	attrs := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		attrs = append(attrs, k.String())
	}
	sort.Strings(attrs)
	return append(out, attrs...)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
