// Package config resolves assetsync settings from viper: config file,
// environment and flags, layered over the deployment defaults.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/assetsync/internal/registry"
	"github.com/agentstation/assetsync/internal/sources/casper"
	"github.com/agentstation/assetsync/internal/sources/sccm"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/reconcile"
)

// EnvPrefix is prepended to every environment variable viper reads.
const EnvPrefix = "ASSETSYNC"

// EnvironmentProduction selects the production registry.
const EnvironmentProduction = "production"

// Configuration keys.
const (
	KeyEnvironment = "environment"

	KeyRegistryBaseURL        = "registry.base_url"
	KeyRegistrySandboxURL     = "registry.sandbox_url"
	KeyRegistryAppID          = "registry.app_id"
	KeyRegistryUsername       = "registry.username"
	KeyRegistryPassword       = "registry.password"
	KeyRegistryBEID           = "registry.beid"
	KeyRegistryWebServicesKey = "registry.web_services_key"
	KeyRegistryLabelURL       = "registry.label_url"
	KeyModelAgeReportID       = "registry.model_age_report_id"
	KeyModelAgeAttribute      = "registry.model_age_attribute"

	KeyAttributes = "attributes"

	KeyStatusActiveID     = "status.active_id"
	KeyStatusInactiveID   = "status.inactive_id"
	KeyStatusActiveName   = "status.active_name"
	KeyStatusActiveNames  = "status.active_names"
	KeyStatusRetiredName  = "status.retired_name"
	KeyStatusInactiveName = "status.inactive_name"

	KeyCasperURL              = "casper.url"
	KeyCasperUsername         = "casper.username"
	KeyCasperPassword         = "casper.password"
	KeyCasperReportIDs        = "casper.report_ids"
	KeyCasperRegistryReportID = "casper.registry_report_id"
	KeyCasperInsecure         = "casper.insecure_skip_verify"
	KeyCasperTag              = "casper.tag"
	KeyCasperVendorName       = "casper.vendor_name"

	KeySCCMDSN              = "sccm.dsn"
	KeySCCMHost             = "sccm.host"
	KeySCCMInstance         = "sccm.instance"
	KeySCCMUsername         = "sccm.username"
	KeySCCMPassword         = "sccm.password"
	KeySCCMDomain           = "sccm.domain"
	KeySCCMEncrypt          = "sccm.encrypt"
	KeySCCMQueryFile        = "sccm.query_file"
	KeySCCMRegistryReportID = "sccm.registry_report_id"
	KeySCCMTag              = "sccm.tag"
	KeySCCMTimeout          = "sccm.timeout"

	KeyMutationInterval = "sync.mutation_interval"
	KeyDiscoveryLinkURL = "sync.discovery_link_url"
	KeyShortDomain      = "sync.institution.short_domain"
	KeyEmailDomain      = "sync.institution.email_domain"
	KeyStudentMarker    = "sync.student_marker"

	KeyPushgatewayURL = "metrics.pushgateway_url"
	KeyMetricsJob     = "metrics.job"
)

// SetDefaults registers the deployment defaults on v.
func SetDefaults(v *viper.Viper) {
	rc := reconcile.DefaultConfig()

	v.SetDefault(KeyEnvironment, "sandbox")

	v.SetDefault(KeyRegistryBaseURL, constants.DefaultRegistryBaseURL)
	v.SetDefault(KeyRegistrySandboxURL, constants.DefaultRegistrySandboxURL)
	v.SetDefault(KeyRegistryLabelURL, rc.Links.LabelURL)
	v.SetDefault(KeyModelAgeReportID, constants.DefaultModelAgeReportID)
	v.SetDefault(KeyModelAgeAttribute, constants.DefaultModelAgeAttributeID)

	v.SetDefault(KeyStatusActiveID, rc.Statuses.Active.ID)
	v.SetDefault(KeyStatusInactiveID, rc.Statuses.Inactive.ID)
	v.SetDefault(KeyStatusActiveName, rc.Statuses.Active.Name)
	v.SetDefault(KeyStatusActiveNames, rc.ActiveNames)
	v.SetDefault(KeyStatusRetiredName, rc.RetiredName)
	v.SetDefault(KeyStatusInactiveName, rc.InactiveName)

	v.SetDefault(KeyCasperReportIDs, casper.DefaultReportIDs)
	v.SetDefault(KeyCasperRegistryReportID, constants.DefaultCasperRegistryReportID)
	v.SetDefault(KeyCasperInsecure, true)
	v.SetDefault(KeyCasperTag, "Casper")
	v.SetDefault(KeyCasperVendorName, constants.DefaultCasperVendor)

	v.SetDefault(KeySCCMInstance, "CM_OCM")
	v.SetDefault(KeySCCMDomain, constants.DefaultEmailDomain)
	v.SetDefault(KeySCCMEncrypt, true)
	v.SetDefault(KeySCCMRegistryReportID, constants.DefaultSCCMRegistryReportID)
	v.SetDefault(KeySCCMTag, "SCCM")
	v.SetDefault(KeySCCMTimeout, 60*time.Second)

	v.SetDefault(KeyMutationInterval, constants.DefaultMutationInterval)
	v.SetDefault(KeyDiscoveryLinkURL, rc.Links.DiscoveryURL)
	v.SetDefault(KeyShortDomain, rc.Institution.ShortDomain)
	v.SetDefault(KeyEmailDomain, rc.Institution.EmailDomain)
	v.SetDefault(KeyStudentMarker, rc.StudentMarker)

	v.SetDefault(KeyMetricsJob, constants.AppName)
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration, so
// secrets can be exported under their bare name (REGISTRY_PASSWORD) as well
// as the prefixed one.
func GetString(v *viper.Viper, key string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return os.Getenv(envName(key))
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// CasperSettings configures the Casper feed.
type CasperSettings struct {
	Client casper.Config
	// RegistryReportID is the saved registry report listing Casper assets.
	RegistryReportID int
	Tag              string
	// VendorName is the registry vendor every Casper device is created under.
	VendorName string
}

// SCCMSettings configures the SCCM feed.
type SCCMSettings struct {
	Client           sccm.Config
	RegistryReportID int
	Tag              string
}

// MetricsSettings configures the Pushgateway. An empty URL disables pushing.
type MetricsSettings struct {
	PushgatewayURL string
	Job            string
}

// Settings is the resolved configuration of one assetsync process.
type Settings struct {
	Environment      string
	Registry         registry.Config
	ModelAgeReportID int
	Reconcile        reconcile.Config
	Casper           CasperSettings
	SCCM             SCCMSettings
	MutationInterval time.Duration
	Metrics          MetricsSettings
}

// Production reports whether the production registry is selected.
func (s *Settings) Production() bool {
	return s.Environment == EnvironmentProduction
}

// Load resolves Settings from v. Credentials are not checked here: each
// client validates its own section when it is built, so a run of one feed
// does not need the other feed configured.
func Load(v *viper.Viper) (*Settings, error) {
	attrs, err := attributeIDs(v)
	if err != nil {
		return nil, errors.NewConfigError(KeyAttributes, "invalid attribute table", err)
	}

	env := strings.ToLower(strings.TrimSpace(v.GetString(KeyEnvironment)))
	baseURL := v.GetString(KeyRegistrySandboxURL)
	if env == EnvironmentProduction {
		baseURL = v.GetString(KeyRegistryBaseURL)
	}

	s := &Settings{
		Environment: env,
		Registry: registry.Config{
			BaseURL:             baseURL,
			AppID:               v.GetString(KeyRegistryAppID),
			Username:            GetString(v, KeyRegistryUsername),
			Password:            GetString(v, KeyRegistryPassword),
			BEID:                GetString(v, KeyRegistryBEID),
			WebServicesKey:      GetString(v, KeyRegistryWebServicesKey),
			Attributes:          attrs,
			ModelAgeAttributeID: v.GetInt(KeyModelAgeAttribute),
		},
		ModelAgeReportID: v.GetInt(KeyModelAgeReportID),
		Reconcile: reconcile.Config{
			Statuses: assets.StatusTable{
				Active:   assets.Status{ID: v.GetInt(KeyStatusActiveID), Name: v.GetString(KeyStatusActiveName)},
				Inactive: assets.Status{ID: v.GetInt(KeyStatusInactiveID), Name: v.GetString(KeyStatusInactiveName)},
			},
			ActiveNames:  v.GetStringSlice(KeyStatusActiveNames),
			RetiredName:  v.GetString(KeyStatusRetiredName),
			InactiveName: v.GetString(KeyStatusInactiveName),
			Links: reconcile.Links{
				DiscoveryURL: v.GetString(KeyDiscoveryLinkURL),
				LabelURL:     v.GetString(KeyRegistryLabelURL),
			},
			Institution: reconcile.Institution{
				ShortDomain: v.GetString(KeyShortDomain),
				EmailDomain: v.GetString(KeyEmailDomain),
			},
			StudentMarker: v.GetString(KeyStudentMarker),
		},
		Casper: CasperSettings{
			Client: casper.Config{
				URL:                v.GetString(KeyCasperURL),
				Username:           GetString(v, KeyCasperUsername),
				Password:           GetString(v, KeyCasperPassword),
				ReportIDs:          v.GetIntSlice(KeyCasperReportIDs),
				InsecureSkipVerify: v.GetBool(KeyCasperInsecure),
			},
			RegistryReportID: v.GetInt(KeyCasperRegistryReportID),
			Tag:              v.GetString(KeyCasperTag),
			VendorName:       v.GetString(KeyCasperVendorName),
		},
		SCCM: SCCMSettings{
			RegistryReportID: v.GetInt(KeySCCMRegistryReportID),
			Tag:              v.GetString(KeySCCMTag),
		},
		MutationInterval: v.GetDuration(KeyMutationInterval),
		Metrics: MetricsSettings{
			PushgatewayURL: v.GetString(KeyPushgatewayURL),
			Job:            v.GetString(KeyMetricsJob),
		},
	}

	s.SCCM.Client, err = sccmConfig(v)
	if err != nil {
		return nil, err
	}

	if s.MutationInterval < 0 {
		return nil, errors.NewValidationError(KeyMutationInterval, s.MutationInterval, "must not be negative")
	}
	return s, nil
}

// attributeIDs overlays the "attributes" section on the default table.
func attributeIDs(v *viper.Viper) (registry.AttributeIDs, error) {
	section := v.GetStringMap(KeyAttributes)
	names := make(map[string]int, len(section))
	for name := range section {
		names[name] = v.GetInt(KeyAttributes + "." + name)
	}
	return registry.ParseAttributeIDs(names)
}

func sccmConfig(v *viper.Viper) (sccm.Config, error) {
	cfg := sccm.Config{
		DSN:     GetString(v, KeySCCMDSN),
		Timeout: v.GetDuration(KeySCCMTimeout),
	}

	if cfg.DSN == "" && v.GetString(KeySCCMHost) != "" {
		cfg.DSN = sccm.Server{
			Host:     v.GetString(KeySCCMHost),
			Instance: v.GetString(KeySCCMInstance),
			User:     GetString(v, KeySCCMUsername),
			Password: GetString(v, KeySCCMPassword),
			Domain:   v.GetString(KeySCCMDomain),
			Encrypt:  v.GetBool(KeySCCMEncrypt),
		}.DSN(cfg.Timeout)
	}

	if path := v.GetString(KeySCCMQueryFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.WrapIO("read", path, err)
		}
		cfg.Query = string(data)
	}

	if cfg.Timeout < 0 {
		return cfg, errors.NewValidationError(KeySCCMTimeout, cfg.Timeout, "must not be negative")
	}
	return cfg, nil
}

// Describe returns the non-secret settings for logging.
func (s *Settings) Describe() map[string]any {
	return map[string]any{
		KeyEnvironment:      s.Environment,
		"registry.url":      s.Registry.BaseURL,
		KeyCasperURL:        s.Casper.Client.URL,
		"sccm.dsn_set":      s.SCCM.Client.DSN != "",
		KeyMutationInterval: s.MutationInterval.String(),
		KeyPushgatewayURL:   s.Metrics.PushgatewayURL,
	}
}

// Defaults returns the settings of an empty configuration.
func Defaults() *Settings {
	v := viper.New()
	SetDefaults(v)
	s, err := Load(v)
	if err != nil {
		// The built-in defaults always load.
		panic(err)
	}
	return s
}
