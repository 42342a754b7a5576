package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(newViper(t))
	require.NoError(t, err)

	assert.False(t, s.Production())
	assert.Equal(t, constants.DefaultRegistrySandboxURL, s.Registry.BaseURL)
	assert.Equal(t, constants.DefaultModelAgeAttributeID, s.Registry.ModelAgeAttributeID)
	assert.Equal(t, constants.DefaultModelAgeReportID, s.ModelAgeReportID)
	assert.Equal(t, 40149, s.Registry.Attributes[assets.KindCPU])

	assert.Equal(t, assets.Status{ID: 916, Name: "In Use"}, s.Reconcile.Statuses.Active)
	assert.Equal(t, assets.Status{ID: 918, Name: "Inactive"}, s.Reconcile.Statuses.Inactive)
	assert.Equal(t, []string{"In Use", "Loaner - *"}, s.Reconcile.ActiveNames)
	assert.Equal(t, "Retired", s.Reconcile.RetiredName)
	assert.Equal(t, "onid", s.Reconcile.Institution.ShortDomain)

	assert.Equal(t, []int{38, 45}, s.Casper.Client.ReportIDs)
	assert.True(t, s.Casper.Client.InsecureSkipVerify)
	assert.Equal(t, constants.DefaultCasperRegistryReportID, s.Casper.RegistryReportID)
	assert.Equal(t, "Casper", s.Casper.Tag)
	assert.Equal(t, "Apple Inc.", s.Casper.VendorName)

	assert.Equal(t, constants.DefaultSCCMRegistryReportID, s.SCCM.RegistryReportID)
	assert.Equal(t, "SCCM", s.SCCM.Tag)
	assert.Empty(t, s.SCCM.Client.DSN)
	assert.Equal(t, time.Minute, s.SCCM.Client.Timeout)

	assert.Equal(t, time.Second, s.MutationInterval)
	assert.Equal(t, "assetsync", s.Metrics.Job)
	assert.Empty(t, s.Metrics.PushgatewayURL)
}

func TestLoadProduction(t *testing.T) {
	v := newViper(t)
	v.Set(KeyEnvironment, "Production")
	v.Set(KeyRegistryBaseURL, "https://td.example.edu/TDWebApi/api/")

	s, err := Load(v)
	require.NoError(t, err)
	assert.True(t, s.Production())
	assert.Equal(t, "https://td.example.edu/TDWebApi/api/", s.Registry.BaseURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".assetsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
registry:
  username: svc-assets
  password: hunter2
attributes:
  cpu: 1001
status:
  active_names: ["In Use"]
casper:
  url: https://casper.example.edu:8443/JSSResource/computerreports/id/
  report_ids: [7]
sync:
  mutation_interval: 250ms
metrics:
  pushgateway_url: http://pushgateway:9091
`), 0o600))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "svc-assets", s.Registry.Username)
	assert.Equal(t, "hunter2", s.Registry.Password)
	assert.Equal(t, 1001, s.Registry.Attributes[assets.KindCPU])
	assert.Equal(t, 40156, s.Registry.Attributes[assets.KindMemory], "unlisted kinds keep their default")
	assert.Equal(t, []string{"In Use"}, s.Reconcile.ActiveNames)
	assert.Equal(t, []int{7}, s.Casper.Client.ReportIDs)
	assert.Equal(t, 250*time.Millisecond, s.MutationInterval)
	assert.Equal(t, "http://pushgateway:9091", s.Metrics.PushgatewayURL)
}

func TestLoadBadAttributes(t *testing.T) {
	tests := map[string]map[string]any{
		"unknown kind": {"gpu": 1},
		"duplicate id": {"cpu": 40156},
		"zero id":      {"cpu": 0},
	}
	for name, attrs := range tests {
		t.Run(name, func(t *testing.T) {
			v := newViper(t)
			v.Set(KeyAttributes, attrs)
			_, err := Load(v)
			require.Error(t, err)
			var cfgErr *errors.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadNegativeInterval(t *testing.T) {
	v := newViper(t)
	v.Set(KeyMutationInterval, "-1s")
	_, err := Load(v)
	assert.True(t, errors.IsValidationError(err))
}

func TestSCCMServerDSN(t *testing.T) {
	v := newViper(t)
	v.Set(KeySCCMHost, "sccm.example.edu")
	v.Set(KeySCCMUsername, "reader")
	v.Set(KeySCCMPassword, "pw")

	s, err := Load(v)
	require.NoError(t, err)
	dsn := s.SCCM.Client.DSN
	assert.True(t, strings.HasPrefix(dsn, "sqlserver://oregonstate.edu%5Creader:pw@sccm.example.edu/CM_OCM?"), dsn)
	assert.Contains(t, dsn, "encrypt=true")

	v.Set(KeySCCMDSN, "sqlserver://other")
	s, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver://other", s.SCCM.Client.DSN, "an explicit dsn wins")
}

func TestSCCMQueryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1"), 0o600))

	v := newViper(t)
	v.Set(KeySCCMQueryFile, path)
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", s.SCCM.Client.Query)

	v.Set(KeySCCMQueryFile, filepath.Join(t.TempDir(), "missing.sql"))
	_, err = Load(v)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestGetStringFallsBackToEnv(t *testing.T) {
	t.Setenv("REGISTRY_PASSWORD", "from-env")
	v := viper.New()
	assert.Equal(t, "from-env", GetString(v, KeyRegistryPassword))

	v.Set(KeyRegistryPassword, "from-config")
	assert.Equal(t, "from-config", GetString(v, KeyRegistryPassword))
}

func TestDescribeOmitsSecrets(t *testing.T) {
	v := newViper(t)
	v.Set(KeyRegistryPassword, "hunter2")
	s, err := Load(v)
	require.NoError(t, err)

	for _, value := range s.Describe() {
		assert.NotEqual(t, "hunter2", value)
	}
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.Equal(t, constants.DefaultRegistrySandboxURL, s.Registry.BaseURL)
	assert.Equal(t, "SCCM", s.SCCM.Tag)
}
