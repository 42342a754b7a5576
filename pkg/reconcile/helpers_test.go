package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/reconcile"
)

var (
	inUse    = assets.Status{ID: 916, Name: "In Use"}
	retired  = assets.Status{ID: 917, Name: "Retired"}
	inactive = assets.Status{ID: 918, Name: "Inactive"}
)

func newPlanner(t *testing.T, policy reconcile.Policy, opts ...reconcile.Option) *reconcile.Planner {
	t.Helper()
	p, err := reconcile.NewPlanner(policy, opts...)
	require.NoError(t, err)
	return p
}

func casperPlanner(t *testing.T) *reconcile.Planner {
	return newPlanner(t, reconcile.CasperPolicy("Casper"))
}

func sccmPlanner(t *testing.T) *reconcile.Planner {
	return newPlanner(t, reconcile.SCCMPolicy("SCCM"))
}

// syncedRegistry returns a registry record that a source built by
// syncedSource fully agrees with.
func syncedRegistry(id int) assets.RegistryRecord {
	return assets.RegistryRecord{
		ID:           id,
		ExternalID:   "JSS-1",
		SerialNumber: "C02AB12345",
		Name:         "mac-1",
		Status:       inUse,
		Attributes: assets.Attributes{
			assets.KindCPU:           "M1",
			assets.KindMemory:        "16384",
			assets.KindDiscoveryLink: "https://cyder.oregonstate.edu/search/?search=aa:bb",
		},
	}
}

func syncedSource() assets.SourceRecord {
	return assets.SourceRecord{
		Feed:         assets.FeedCasper,
		ExternalID:   "JSS-1",
		SerialNumber: "C02AB12345",
		Hostname:     "mac-1",
		CPU:          "M1",
		Memory:       "16384",
		Adapters:     []assets.Adapter{{MAC: "aa:bb"}},
	}
}
