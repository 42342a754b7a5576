package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/assetsync/pkg/assets"
)

func TestDiscover(t *testing.T) {
	d := NewDiscoverer(
		[]assets.Vendor{{ID: 1, Name: "Dell Inc."}},
		[]assets.ProductModel{{ID: 2, Name: "OptiPlex 7090"}},
		"",
	)
	d.Add([]assets.SourceRecord{
		{Feed: assets.FeedSCCM, Vendor: "Dell Inc.", Model: "OptiPlex 7090"},
		{Feed: assets.FeedSCCM, Vendor: "LENOVO", Model: "20XW"},
		{Feed: assets.FeedSCCM, Vendor: "LENOVO", Model: "20XW"},
		{Feed: assets.FeedSCCM, Vendor: "", Model: ""},
		{Feed: assets.FeedSCCM, Vendor: "HP", Model: ""},
	})
	d.Add([]assets.SourceRecord{
		{Feed: assets.FeedCasper, Vendor: "Apple", Model: "MacBookPro16,1"},
		{Feed: assets.FeedCasper, Vendor: "Apple", Model: "MacBookPro16,1"},
	})

	got := d.Result()
	assert.Equal(t, []string{"LENOVO", "HP", "Apple Inc."}, got.Vendors)
	assert.Equal(t, []Model{
		{Name: "20XW", Vendor: "LENOVO"},
		{Name: "MacBookPro16,1", Vendor: "Apple Inc."},
	}, got.Models)
	assert.False(t, got.IsEmpty())
}

func TestDiscoverNothingMissing(t *testing.T) {
	d := NewDiscoverer(
		[]assets.Vendor{{Name: "Apple Inc."}},
		[]assets.ProductModel{{Name: "Macmini9,1"}},
		"Apple Inc.",
	)
	d.Add([]assets.SourceRecord{{Feed: assets.FeedCasper, Model: "Macmini9,1"}})
	assert.True(t, d.Result().IsEmpty())
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(dir, Discovery{
		Vendors: []string{"LENOVO"},
		Models:  []Model{{Name: "20XW", Vendor: "LENOVO"}, {Name: "Macmini9,1", Vendor: "Apple Inc."}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, VendorsFile), filepath.Join(dir, ModelsFile)}, paths)

	vendors := readSheet(t, paths[0], VendorsSheet)
	assert.Equal(t, [][]string{
		{"Name", "Is Manufacturer", "Active"},
		{"LENOVO", "True", "True"},
	}, vendors)

	models := readSheet(t, paths[1], ModelsSheet)
	assert.Equal(t, [][]string{
		{"Name", "Manufacturer", "Product Type", "Active"},
		{"20XW", "LENOVO", "Computer", "True"},
		{"Macmini9,1", "Apple Inc.", "Computer", "True"},
	}, models)
}

func TestWriteEmpty(t *testing.T) {
	paths, err := Write(t.TempDir(), Discovery{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Is Manufacturer", "Active"}}, readSheet(t, paths[0], VendorsSheet))
}

func TestWriteBadDir(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "missing", "dir"), Discovery{})
	assert.Error(t, err)
}

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}
