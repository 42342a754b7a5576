package assets

import "time"

// ModelAgeRow is one row of the product-model age report. Age is empty when
// the model has no release date recorded yet.
type ModelAgeRow struct {
	ProductModelName string `json:"product_model_name" yaml:"product_model_name"`
	Age              string `json:"age,omitempty" yaml:"age,omitempty"`
}

// Snapshot is everything one feed's run reads before planning. It is loaded
// once and never mutated afterwards.
type Snapshot struct {
	Feed      Feed             `json:"feed" yaml:"feed"`
	Sources   []SourceRecord   `json:"sources" yaml:"sources"`
	Registry  []RegistryRecord `json:"registry" yaml:"registry"`
	Vendors   []Vendor         `json:"vendors" yaml:"vendors"`
	Models    []ProductModel   `json:"models" yaml:"models"`
	Users     []User           `json:"users" yaml:"users"`
	ModelAges []ModelAgeRow    `json:"model_ages,omitempty" yaml:"model_ages,omitempty"`
	LoadedAt  time.Time        `json:"loaded_at" yaml:"loaded_at"`
}
