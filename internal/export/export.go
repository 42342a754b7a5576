// Package export lists the vendors and product models the feeds report but
// the registry does not know yet, as spreadsheets ready for the registry's
// bulk import.
package export

import (
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/logging"
)

// Output file and sheet names expected by the registry import.
const (
	VendorsFile  = "vendors.xlsx"
	VendorsSheet = "Vendor"
	ModelsFile   = "models.xlsx"
	ModelsSheet  = "Product Model"

	productType = "Computer"
	yes         = "True"
)

var (
	vendorHeader = []any{"Name", "Is Manufacturer", "Active"}
	modelHeader  = []any{"Name", "Manufacturer", "Product Type", "Active"}
)

// Model is a product model missing from the registry.
type Model struct {
	Name   string `json:"name" yaml:"name"`
	Vendor string `json:"vendor" yaml:"vendor"`
}

// Discovery is the set of names to import, in first-seen order.
type Discovery struct {
	Vendors []string `json:"vendors" yaml:"vendors"`
	Models  []Model  `json:"models" yaml:"models"`
}

// IsEmpty reports whether there is nothing to import.
func (d Discovery) IsEmpty() bool {
	return len(d.Vendors) == 0 && len(d.Models) == 0
}

// Discoverer collects unknown names across feeds.
type Discoverer struct {
	casperVendor string

	knownVendors map[string]bool
	knownModels  map[string]bool
	seenVendors  map[string]bool
	seenModels   map[string]bool
	out          Discovery
}

// NewDiscoverer starts a discovery against the registry's current tables.
// Casper devices are all listed under casperVendor, since the feed reports a
// make the registry does not use as a manufacturer name.
func NewDiscoverer(vendors []assets.Vendor, models []assets.ProductModel, casperVendor string) *Discoverer {
	if casperVendor == "" {
		casperVendor = constants.DefaultCasperVendor
	}
	d := &Discoverer{
		casperVendor: casperVendor,
		knownVendors: make(map[string]bool, len(vendors)),
		knownModels:  make(map[string]bool, len(models)),
		seenVendors:  make(map[string]bool),
		seenModels:   make(map[string]bool),
	}
	for _, v := range vendors {
		d.knownVendors[v.Name] = true
	}
	for _, m := range models {
		d.knownModels[m.Name] = true
	}
	return d
}

// Add folds one feed's records into the discovery. Name comparison is exact.
func (d *Discoverer) Add(records []assets.SourceRecord) {
	for _, rec := range records {
		vendor := rec.Vendor
		if rec.Feed == assets.FeedCasper {
			vendor = d.casperVendor
		}

		if vendor != "" && !d.knownVendors[vendor] && !d.seenVendors[vendor] {
			d.seenVendors[vendor] = true
			d.out.Vendors = append(d.out.Vendors, vendor)
		}

		if rec.Model != "" && !d.knownModels[rec.Model] && !d.seenModels[rec.Model] {
			d.seenModels[rec.Model] = true
			d.out.Models = append(d.out.Models, Model{Name: rec.Model, Vendor: vendor})
		}
	}
}

// Result returns what has been discovered so far.
func (d *Discoverer) Result() Discovery {
	return d.out
}

// Write saves both spreadsheets into dir and returns their paths. The header
// row is always written, even when nothing is missing.
func Write(dir string, d Discovery) ([]string, error) {
	vendorRows := make([][]any, 0, len(d.Vendors))
	for _, name := range d.Vendors {
		vendorRows = append(vendorRows, []any{name, yes, yes})
	}
	modelRows := make([][]any, 0, len(d.Models))
	for _, m := range d.Models {
		modelRows = append(modelRows, []any{m.Name, m.Vendor, productType, yes})
	}

	vendorsPath := filepath.Join(dir, VendorsFile)
	if err := writeSheet(vendorsPath, VendorsSheet, vendorHeader, vendorRows); err != nil {
		return nil, err
	}
	modelsPath := filepath.Join(dir, ModelsFile)
	if err := writeSheet(modelsPath, ModelsSheet, modelHeader, modelRows); err != nil {
		return nil, err
	}

	logging.Info().
		Int("vendors", len(d.Vendors)).
		Int("models", len(d.Models)).
		Str("dir", dir).
		Msg("wrote discovery export")
	return []string{vendorsPath, modelsPath}, nil
}

func writeSheet(path, sheet string, header []any, rows [][]any) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WrapIO("close", path, cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WrapIO("write", path, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
