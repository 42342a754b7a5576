// Package constants provides shared constants used throughout the assetsync codebase.
// This includes timeouts, pacing defaults, file permissions, and the
// institutional defaults a fresh configuration starts from.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for requests to the registry and Casper
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultQueryTimeout bounds the SCCM inventory query
	DefaultQueryTimeout = 5 * time.Minute

	// MetricsPushTimeout bounds the Pushgateway push at the end of a run
	MetricsPushTimeout = 10 * time.Second
)

// Pacing constants
const (
	// DefaultMutationInterval is the minimum spacing between registry mutations
	DefaultMutationInterval = 1 * time.Second

	// MaxConcurrentLoads is how many snapshot fetches run at once
	MaxConcurrentLoads = 4
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Registry defaults
const (
	// DefaultRegistryBaseURL is the production TeamDynamix web API root
	DefaultRegistryBaseURL = "https://oregonstate.teamdynamix.com/TDWebApi/api"

	// DefaultRegistrySandboxURL is the sandbox TeamDynamix web API root
	DefaultRegistrySandboxURL = "https://oregonstate.teamdynamix.com/SBTDWebApi/api"

	// DefaultLabelURL prefixes the asset ID to form the printable label link
	DefaultLabelURL = "https://tools.is.oregonstate.edu/td-asset-labels/"

	// DefaultDiscoveryLinkURL prefixes the first MAC to form the network discovery link
	DefaultDiscoveryLinkURL = "https://cyder.oregonstate.edu/search/?search="

	// DefaultModelAgeReportID is the registry report listing product models
	DefaultModelAgeReportID = 102580

	// DefaultModelAgeAttributeID holds a product model's release date
	DefaultModelAgeAttributeID = 53562
)

// Feed defaults
const (
	// DefaultCasperRegistryReportID lists every Casper-tagged registry record
	DefaultCasperRegistryReportID = 91998

	// DefaultSCCMRegistryReportID lists every SCCM-tagged registry record
	DefaultSCCMRegistryReportID = 91997

	// DefaultCasperVendor is the manufacturer every Casper device is created under
	DefaultCasperVendor = "Apple Inc."

	// DefaultShortDomain is the account prefix rewritten by user normalization
	DefaultShortDomain = "onid"

	// DefaultEmailDomain is the institutional email domain
	DefaultEmailDomain = "oregonstate.edu"

	// DefaultStudentMarker identifies student accounts by default account name
	DefaultStudentMarker = "major"
)

// Status names
const (
	StatusInUse    = "In Use"
	StatusInactive = "Inactive"
	StatusRetired  = "Retired"
)

// Application constants
const (
	// AppName is the application name
	AppName = "assetsync"

	// MetricsNamespace prefixes every exported metric
	MetricsNamespace = "assetsync"
)
