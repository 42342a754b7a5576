package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/assetsync/pkg/assets"
)

// report is a registry report fetched with its data rows.
type report struct {
	ID       int    `json:"ID"`
	Name     string `json:"Name"`
	DataRows []row  `json:"DataRows"`
}

// row is one report data row. Column order is kept because the model-age
// report is read positionally.
type row struct {
	keys  []string
	cells map[string]string
	nulls map[string]bool
}

// UnmarshalJSON decodes a JSON object while recording key order. Scalar
// values are kept as text; null is tracked separately from "".
func (r *row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("report row: expected object, got %v", tok)
	}

	r.keys = nil
	r.cells = make(map[string]string)
	r.nulls = make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("report row: expected key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		r.keys = append(r.keys, key)
		switch {
		case bytes.Equal(raw, []byte("null")):
			r.nulls[key] = true
		case len(raw) > 0 && raw[0] == '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			r.cells[key] = s
		default:
			r.cells[key] = string(raw)
		}
	}

	_, err = dec.Token()
	return err
}

func (r row) get(key string) string {
	return r.cells[key]
}

func (r row) has(key string) bool {
	_, ok := r.cells[key]
	return ok
}

func (r row) num(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.cells[key]))
	if err != nil {
		return 0
	}
	return n
}

// toRecord maps an asset report row. Attribute columns are keyed by their
// registry attribute ID.
func (c *Client) toRecord(r row) assets.RegistryRecord {
	rec := assets.RegistryRecord{
		ID:                 r.num("AssetID"),
		ExternalID:         r.get("ExternalID"),
		SerialNumber:       r.get("SerialNumber"),
		Name:               r.get("Name"),
		Status:             assets.Status{ID: r.num("StatusID"), Name: r.get("StatusName")},
		VendorID:           r.num("SupplierID"),
		VendorName:         r.get("ManufacturerName"),
		ModelID:            r.num("ProductModelID"),
		ModelName:          r.get("ProductModelName"),
		OwningCustomerID:   r.get("OwningCustomerID"),
		OwningCustomerName: r.get("OwningCustomerName"),
		OwningDepartmentID: r.num("OwningDepartmentID"),
		Attributes:         make(assets.Attributes),
	}
	if rec.ID == 0 {
		rec.ID = r.num("ID")
	}

	for _, kind := range assets.Kinds() {
		col, ok := c.attrs.Column(kind)
		if !ok || !r.has(col) {
			continue
		}
		rec.Attributes[kind] = r.get(col)
	}
	return rec
}

// toModelAge maps a model-age report row: the product model name plus the
// first other column, which is empty or null when no age is recorded.
func toModelAge(r row) assets.ModelAgeRow {
	out := assets.ModelAgeRow{ProductModelName: r.get("ProductModelName")}
	for _, key := range r.keys {
		if key == "ProductModelName" {
			continue
		}
		if !r.nulls[key] {
			out.Age = r.get(key)
		}
		break
	}
	return out
}
