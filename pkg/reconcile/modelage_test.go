package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/reconcile"
)

func TestModelYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"MacBook Pro (13-inch, 2019)", "2019", true},
		{"iMac (Retina 5K, 27-inch, 2020) ", "2020", true},
		{"Mac mini 2018", "2018", true},
		{"MacBook Pro (16-inch)", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := reconcile.ModelYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPlanModelAges(t *testing.T) {
	rows := []assets.ModelAgeRow{
		{ProductModelName: "MacBookPro15,2"},
		{ProductModelName: "MacBookPro15,2"},
		{ProductModelName: "iMac19,1", Age: "01/01/2019"},
		{ProductModelName: "Macmini8,1"},
		{ProductModelName: "MacBookAir10,1"},
	}
	sources := []assets.SourceRecord{
		{Model: "macbookpro15,2", ModelName: "MacBook Pro (13-inch, 2019)"},
		{Model: "MacBookPro15,2", ModelName: "MacBook Pro (13-inch, 2018)"},
		{Model: "iMac19,1", ModelName: "iMac (2019)"},
		{Model: "MacBookAir10,1", ModelName: "MacBook Air (M1, 2020)"},
	}
	models := []assets.ProductModel{
		{ID: 11, Name: "MacBookPro15,2"},
		{ID: 12, Name: "iMac19,1"},
		{ID: 13, Name: "Macmini8,1"},
	}

	got := reconcile.PlanModelAges(rows, sources, models)
	require.Len(t, got, 1)
	assert.Equal(t, 11, got[0].ModelID)
	assert.Equal(t, "2019", got[0].Year)
	assert.Equal(t, "01/01/2019", got[0].Value())
}

func TestPlanIncludesModelAgesForCasperOnly(t *testing.T) {
	snap := assets.Snapshot{
		Sources:   []assets.SourceRecord{{Model: "iMac19,1", ModelName: "iMac (2019)"}},
		Models:    []assets.ProductModel{{ID: 12, Name: "iMac19,1"}},
		ModelAges: []assets.ModelAgeRow{{ProductModelName: "iMac19,1"}},
	}

	plan := casperPlanner(t).Plan(snap)
	assert.Len(t, plan.ModelAges, 1)

	plan = sccmPlanner(t).Plan(snap)
	assert.Empty(t, plan.ModelAges)
}
