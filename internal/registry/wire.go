package registry

import (
	"encoding/json"
	"strconv"

	"github.com/agentstation/assetsync/pkg/assets"
)

// attribute is a registry custom attribute as carried on assets and models.
type attribute struct {
	ID        int    `json:"ID"`
	Name      string `json:"Name,omitempty"`
	Value     string `json:"Value"`
	ValueText string `json:"ValueText,omitempty"`
}

// upsertAttribute sets the value of the attribute with id, appending it
// when the list does not carry it yet.
func upsertAttribute(attrs []attribute, id int, value string) []attribute {
	for i := range attrs {
		if attrs[i].ID == id {
			attrs[i].Value = value
			attrs[i].ValueText = ""
			return attrs
		}
	}
	return append(attrs, attribute{ID: id, Value: value})
}

func attributeValue(attrs []attribute, id int) (string, bool) {
	for _, a := range attrs {
		if a.ID == id {
			return a.Value, true
		}
	}
	return "", false
}

// asset is the wire form of a registry asset. Only the fields the
// reconciliation reads or writes are modeled; the rest travel in the raw
// payload kept on assets.RegistryRecord.
type asset struct {
	ID                 int         `json:"ID,omitempty"`
	ExternalID         string      `json:"ExternalID"`
	SerialNumber       string      `json:"SerialNumber"`
	Name               string      `json:"Name"`
	StatusID           int         `json:"StatusID,omitempty"`
	StatusName         string      `json:"StatusName,omitempty"`
	SupplierID         int         `json:"SupplierID,omitempty"`
	ManufacturerName   string      `json:"ManufacturerName,omitempty"`
	ProductModelID     int         `json:"ProductModelID,omitempty"`
	ProductModelName   string      `json:"ProductModelName,omitempty"`
	OwningCustomerID   string      `json:"OwningCustomerID,omitempty"`
	OwningCustomerName string      `json:"OwningCustomerName,omitempty"`
	OwningDepartmentID int         `json:"OwningDepartmentID,omitempty"`
	Attributes         []attribute `json:"Attributes"`
}

type productModel struct {
	ID               int         `json:"ID"`
	Name             string      `json:"Name"`
	ManufacturerID   int         `json:"ManufacturerID,omitempty"`
	ManufacturerName string      `json:"ManufacturerName,omitempty"`
	Attributes       []attribute `json:"Attributes,omitempty"`
}

type vendor struct {
	ID   int    `json:"ID"`
	Name string `json:"Name"`
}

type user struct {
	UID                string `json:"UID"`
	PrimaryEmail       string `json:"PrimaryEmail"`
	AlertEmail         string `json:"AlertEmail"`
	DefaultAccountName string `json:"DefaultAccountName"`
	DefaultAccountID   int    `json:"DefaultAccountID"`
	FullName           string `json:"FullName"`
}

func (u user) toUser() assets.User {
	return assets.User{
		UID:                u.UID,
		PrimaryEmail:       u.PrimaryEmail,
		AlertEmail:         u.AlertEmail,
		DefaultAccountName: u.DefaultAccountName,
		DefaultAccountID:   u.DefaultAccountID,
		FullName:           u.FullName,
	}
}

// decodeAsset turns a single-asset payload into a record, keeping the payload.
func (c *Client) decodeAsset(body []byte) (assets.RegistryRecord, error) {
	var a asset
	if err := json.Unmarshal(body, &a); err != nil {
		return assets.RegistryRecord{}, err
	}

	rec := assets.RegistryRecord{
		ID:                 a.ID,
		ExternalID:         a.ExternalID,
		SerialNumber:       a.SerialNumber,
		Name:               a.Name,
		Status:             assets.Status{ID: a.StatusID, Name: a.StatusName},
		VendorID:           a.SupplierID,
		VendorName:         a.ManufacturerName,
		ModelID:            a.ProductModelID,
		ModelName:          a.ProductModelName,
		OwningCustomerID:   a.OwningCustomerID,
		OwningCustomerName: a.OwningCustomerName,
		OwningDepartmentID: a.OwningDepartmentID,
		Attributes:         make(assets.Attributes),
		Raw:                append(json.RawMessage(nil), body...),
	}
	for _, attr := range a.Attributes {
		if kind, ok := c.attrs.Kind(attr.ID); ok {
			rec.Attributes[kind] = attr.Value
		}
	}
	return rec, nil
}

// encodeAsset overlays rec onto its raw payload, so fields and attributes
// the record does not model are written back unchanged.
func (c *Client) encodeAsset(rec assets.RegistryRecord) (map[string]json.RawMessage, error) {
	var base asset
	if len(rec.Raw) > 0 {
		if err := json.Unmarshal(rec.Raw, &base); err != nil {
			return nil, err
		}
	}

	attrs := base.Attributes
	for _, kind := range rec.Attributes.SortedKinds() {
		if id, ok := c.attrs.ID(kind); ok {
			attrs = upsertAttribute(attrs, id, rec.Attributes[kind])
		}
	}
	if attrs == nil {
		attrs = []attribute{}
	}

	a := asset{
		ID:                 rec.ID,
		ExternalID:         rec.ExternalID,
		SerialNumber:       rec.SerialNumber,
		Name:               rec.Name,
		StatusID:           rec.Status.ID,
		StatusName:         rec.Status.Name,
		SupplierID:         rec.VendorID,
		ProductModelID:     rec.ModelID,
		OwningCustomerID:   rec.OwningCustomerID,
		OwningDepartmentID: rec.OwningDepartmentID,
		Attributes:         attrs,
	}
	return overlay(rec.Raw, a)
}

func (c *Client) decodeModel(body []byte) (assets.ProductModel, error) {
	var m productModel
	if err := json.Unmarshal(body, &m); err != nil {
		return assets.ProductModel{}, err
	}
	age, _ := attributeValue(m.Attributes, c.modelAgeID)
	return assets.ProductModel{
		ID:               m.ID,
		Name:             m.Name,
		ManufacturerName: m.ManufacturerName,
		Age:              age,
		Raw:              append(json.RawMessage(nil), body...),
	}, nil
}

func (c *Client) encodeModel(m assets.ProductModel) (map[string]json.RawMessage, error) {
	var base productModel
	if len(m.Raw) > 0 {
		if err := json.Unmarshal(m.Raw, &base); err != nil {
			return nil, err
		}
	}
	base.ID = m.ID
	if m.Name != "" {
		base.Name = m.Name
	}
	if m.Age != "" {
		base.Attributes = upsertAttribute(base.Attributes, c.modelAgeID, m.Age)
	}
	return overlay(m.Raw, base)
}

// overlay marshals v and writes its keys over the raw payload's keys.
func overlay(raw json.RawMessage, v any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, val := range fields {
		out[k] = val
	}
	return out, nil
}

func itoa(id int) string { return strconv.Itoa(id) }
