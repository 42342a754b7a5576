// Package assets defines the records that flow through a reconciliation run:
// device snapshots from the source feeds, asset records in the registry, the
// registry's reference tables, and the patches computed between them.
package assets

import (
	"encoding/json"
	"strings"
	"time"
)

// Feed names a source-of-truth device feed.
type Feed string

const (
	FeedCasper Feed = "casper"
	FeedSCCM   Feed = "sccm"
)

// String returns the feed name.
func (f Feed) String() string { return string(f) }

// Adapter is one network adapter reported by a feed.
type Adapter struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	MAC  string `json:"mac,omitempty" yaml:"mac,omitempty"`
}

// SourceRecord is one device as reported by a feed during this run.
type SourceRecord struct {
	Feed            Feed      `json:"feed" yaml:"feed"`
	ExternalID      string    `json:"external_id" yaml:"external_id"`
	SerialNumber    string    `json:"serial_number" yaml:"serial_number"`
	Hostname        string    `json:"hostname" yaml:"hostname"`
	CPU             string    `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Memory          string    `json:"memory,omitempty" yaml:"memory,omitempty"`
	OperatingSystem string    `json:"operating_system,omitempty" yaml:"operating_system,omitempty"`
	PrimaryUser     string    `json:"primary_user,omitempty" yaml:"primary_user,omitempty"`
	Adapters        []Adapter `json:"adapters,omitempty" yaml:"adapters,omitempty"`
	Vendor          string    `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Model           string    `json:"model,omitempty" yaml:"model,omitempty"`
	// ModelName is the marketing name ("MacBook Pro (13-inch, 2019)").
	ModelName string    `json:"model_name,omitempty" yaml:"model_name,omitempty"`
	OrgUnit   string    `json:"org_unit,omitempty" yaml:"org_unit,omitempty"`
	Warranty  string    `json:"warranty,omitempty" yaml:"warranty,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	// HostnameFallback marks a Hostname taken from a secondary field
	// because the feed's primary name was empty.
	HostnameFallback bool `json:"hostname_fallback,omitempty" yaml:"hostname_fallback,omitempty"`
}

// Adapter returns the i-th adapter, or the zero value.
func (s SourceRecord) Adapter(i int) Adapter {
	if i < 0 || i >= len(s.Adapters) {
		return Adapter{}
	}
	return s.Adapters[i]
}

// PrimaryMAC is the MAC of the first adapter.
func (s SourceRecord) PrimaryMAC() string {
	return s.Adapter(0).MAC
}

// Status is a registry status value.
type Status struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// RegistryRecord is an asset in the registry.
type RegistryRecord struct {
	ID                 int        `json:"id" yaml:"id"`
	ExternalID         string     `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	SerialNumber       string     `json:"serial_number,omitempty" yaml:"serial_number,omitempty"`
	Name               string     `json:"name" yaml:"name"`
	Status             Status     `json:"status" yaml:"status"`
	VendorID           int        `json:"vendor_id,omitempty" yaml:"vendor_id,omitempty"`
	VendorName         string     `json:"vendor_name,omitempty" yaml:"vendor_name,omitempty"`
	ModelID            int        `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	ModelName          string     `json:"model_name,omitempty" yaml:"model_name,omitempty"`
	OwningCustomerID   string     `json:"owning_customer_id,omitempty" yaml:"owning_customer_id,omitempty"`
	OwningCustomerName string     `json:"owning_customer_name,omitempty" yaml:"owning_customer_name,omitempty"`
	OwningDepartmentID int        `json:"owning_department_id,omitempty" yaml:"owning_department_id,omitempty"`
	Attributes         Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Raw is the registry's full wire payload when the record was fetched
	// individually. Writes overlay the fields above onto it so fields this
	// package does not model survive a read-modify-write.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// IsGeneralUse reports whether the record is flagged as shared equipment.
func (r RegistryRecord) IsGeneralUse() bool {
	return r.Attributes.Get(KindGeneralUse) == GeneralUseValue
}

// Vendor is a registry vendor (manufacturer) entry.
type Vendor struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ProductModel is a registry product model entry.
type ProductModel struct {
	ID               int    `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	ManufacturerName string `json:"manufacturer_name,omitempty" yaml:"manufacturer_name,omitempty"`
	// Age is the model-age attribute, only populated by a single-model fetch.
	Age string `json:"age,omitempty" yaml:"age,omitempty"`

	Raw json.RawMessage `json:"-" yaml:"-"`
}

// User is a registry directory entry.
type User struct {
	UID                string `json:"uid" yaml:"uid"`
	PrimaryEmail       string `json:"primary_email" yaml:"primary_email"`
	AlertEmail         string `json:"alert_email,omitempty" yaml:"alert_email,omitempty"`
	DefaultAccountName string `json:"default_account_name,omitempty" yaml:"default_account_name,omitempty"`
	DefaultAccountID   int    `json:"default_account_id,omitempty" yaml:"default_account_id,omitempty"`
	FullName           string `json:"full_name" yaml:"full_name"`
}

// HasDepartment reports whether the user belongs to a real department.
func (u User) HasDepartment() bool {
	return u.DefaultAccountName != "" && u.DefaultAccountName != "None"
}

// MatchesEmail compares email against the primary and alert addresses,
// ignoring case.
func (u User) MatchesEmail(email string) bool {
	if email == "" {
		return false
	}
	return strings.EqualFold(u.PrimaryEmail, email) || strings.EqualFold(u.AlertEmail, email)
}
