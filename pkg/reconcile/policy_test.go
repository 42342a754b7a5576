package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/assetsync/internal/matcher"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/reconcile"
)

func TestPolicyFor(t *testing.T) {
	casper, ok := reconcile.PolicyFor(assets.FeedCasper, "Casper")
	assert.True(t, ok)
	assert.Equal(t, matcher.Contains, casper.CreateVendorMatch)
	assert.Equal(t, matcher.Exact, casper.UpdateVendorMatch)
	assert.False(t, casper.OrgUnit)

	sccm, ok := reconcile.PolicyFor(assets.FeedSCCM, "SCCM")
	assert.True(t, ok)
	assert.Equal(t, matcher.Exact, sccm.CreateVendorMatch)
	assert.True(t, sccm.OrgUnit)

	_, ok = reconcile.PolicyFor(assets.Feed("intune"), "")
	assert.False(t, ok)
}

func TestValidSerial(t *testing.T) {
	sccm := reconcile.SCCMPolicy("SCCM")
	assert.True(t, sccm.ValidSerial("5CG1234XYZ"))
	assert.False(t, sccm.ValidSerial("12345"))
	assert.False(t, sccm.ValidSerial("System Serial Number"))
	assert.False(t, sccm.ValidSerial(""))

	casper := reconcile.CasperPolicy("Casper")
	assert.True(t, casper.ValidSerial("X"))
	assert.False(t, casper.ValidSerial("   "))
}
