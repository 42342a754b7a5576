package reconcile

import (
	"strings"

	"github.com/agentstation/assetsync/internal/matcher"
	"github.com/agentstation/assetsync/pkg/assets"
)

// SerialPattern is the validity rule SCCM serials must satisfy before they
// are trusted for matching or creation.
const SerialPattern = `^[a-zA-Z0-9]{7,}$`

// Policy captures the per-feed differences in how records are matched,
// created, and compared.
type Policy struct {
	Feed assets.Feed
	// Tag is written to the external-source attribute on creation.
	Tag string

	// Serial gates serial fallback matching and creation. Nil accepts any
	// non-empty serial.
	Serial matcher.Matcher

	// CreateVendorMatch is how a source vendor is looked up when building a
	// new record. Exact compares names; Contains accepts a registry vendor
	// whose name contains the source vendor.
	CreateVendorMatch matcher.PatternType
	// UpdateVendorMatch is the vendor lookup used by the vendor predicate.
	UpdateVendorMatch matcher.PatternType
	// ModelMatch is the product-model lookup used everywhere.
	ModelMatch matcher.PatternType

	// OrgUnit enables the org-unit predicate and attribute.
	OrgUnit bool
	// Warranty writes the warranty attribute on creation.
	Warranty bool
	// Adapters is how many adapters are written on creation.
	Adapters int
	// AdapterNames writes adapter name attributes alongside MACs.
	AdapterNames bool
	// ModelAge enables product-model age planning.
	ModelAge bool

	// PrimaryNameOnly blocks creation when the hostname came from a
	// fallback field. Matched records still use the fallback name.
	PrimaryNameOnly bool
	// SkipHostnames blocks creation for matching hostnames.
	SkipHostnames *matcher.MultiMatcher
	// ForeignVendors and ForeignModels block creation for devices another
	// feed owns.
	ForeignVendors *matcher.MultiMatcher
	ForeignModels  *matcher.MultiMatcher
}

// CasperPolicy is the policy for the Jamf/Casper feed.
func CasperPolicy(tag string) Policy {
	return Policy{
		Feed:              assets.FeedCasper,
		Tag:               tag,
		CreateVendorMatch: matcher.Contains,
		UpdateVendorMatch: matcher.Exact,
		ModelMatch:        matcher.Exact,
		Warranty:          true,
		Adapters:          1,
		ModelAge:          true,
	}
}

// SCCMPolicy is the policy for the SCCM feed.
func SCCMPolicy(tag string) Policy {
	folded := &matcher.Options{CaseInsensitive: true}
	return Policy{
		Feed:              assets.FeedSCCM,
		Tag:               tag,
		Serial:            matcher.MustNew(matcher.Regex, SerialPattern),
		CreateVendorMatch: matcher.Exact,
		UpdateVendorMatch: matcher.Exact,
		ModelMatch:        matcher.Exact,
		OrgUnit:           true,
		Adapters:          2,
		AdapterNames:      true,
		PrimaryNameOnly:   true,
		SkipHostnames:     matcher.MustNewMultiMatcher([]string{"minint"}, matcher.Contains, folded),
		ForeignVendors:    matcher.MustNewMultiMatcher([]string{"apple"}, matcher.Contains, folded),
		ForeignModels:     matcher.MustNewMultiMatcher([]string{"imac", "macbook", "macmini"}, matcher.Contains, folded),
	}
}

// PolicyFor returns the built-in policy for feed.
func PolicyFor(feed assets.Feed, tag string) (Policy, bool) {
	switch feed {
	case assets.FeedCasper:
		return CasperPolicy(tag), true
	case assets.FeedSCCM:
		return SCCMPolicy(tag), true
	}
	return Policy{}, false
}

// ValidSerial reports whether serial may be used for matching and creation.
func (p Policy) ValidSerial(serial string) bool {
	if strings.TrimSpace(serial) == "" {
		return false
	}
	if p.Serial == nil {
		return true
	}
	return p.Serial.Match(serial)
}

// Skip reasons reported for sources that are neither matched nor created.
const (
	SkipMissingName   = "missing name"
	SkipMissingSerial = "missing serial number"
	SkipInvalidSerial = "invalid serial number"
	SkipHostname      = "hostname excluded"
	SkipForeignDevice = "device owned by another feed"
)

// creatable checks the feed's creation gates. The empty-name and
// empty-serial rule applies to every feed.
func (p Policy) creatable(s assets.SourceRecord) (bool, string) {
	switch {
	case strings.TrimSpace(s.Hostname) == "":
		return false, SkipMissingName
	case p.PrimaryNameOnly && s.HostnameFallback:
		return false, SkipMissingName
	case strings.TrimSpace(s.SerialNumber) == "":
		return false, SkipMissingSerial
	case !p.ValidSerial(s.SerialNumber):
		return false, SkipInvalidSerial
	case p.SkipHostnames.Match(s.Hostname):
		return false, SkipHostname
	case p.ForeignVendors.Match(s.Vendor), p.ForeignModels.Match(s.Model):
		return false, SkipForeignDevice
	}
	return true, ""
}
