package reconcile

import (
	"regexp"
	"strings"

	"github.com/agentstation/assetsync/pkg/assets"
)

// ModelAgeUpdate sets the release-date attribute on one product model.
type ModelAgeUpdate struct {
	ModelID   int    `json:"model_id" yaml:"model_id"`
	ModelName string `json:"model_name" yaml:"model_name"`
	Year      string `json:"year" yaml:"year"`
}

// Value is the attribute value written to the registry.
func (u ModelAgeUpdate) Value() string {
	return "01/01/" + u.Year
}

var trailingYear = regexp.MustCompile(`(\d{4})\)?\s*$`)

// ModelYear extracts the release year from the end of a marketing model
// name, e.g. "MacBook Pro (13-inch, 2019)" yields "2019".
func ModelYear(modelName string) (string, bool) {
	m := trailingYear.FindStringSubmatch(modelName)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// PlanModelAges returns one update per product model that has no age yet,
// is reported by the feed, and exists in the registry. The year comes from
// the first source record carrying that model.
func PlanModelAges(rows []assets.ModelAgeRow, sources []assets.SourceRecord, models []assets.ProductModel) []ModelAgeUpdate {
	years := make(map[string]string, len(sources))
	for _, s := range sources {
		key := strings.ToLower(s.Model)
		if key == "" {
			continue
		}
		if _, seen := years[key]; seen {
			continue
		}
		if year, ok := ModelYear(s.ModelName); ok {
			years[key] = year
		}
	}

	byName := make(map[string]assets.ProductModel, len(models))
	for _, m := range models {
		key := strings.ToLower(m.Name)
		if _, seen := byName[key]; !seen {
			byName[key] = m
		}
	}

	var out []ModelAgeUpdate
	planned := make(map[string]bool)
	for _, row := range rows {
		key := strings.ToLower(row.ProductModelName)
		if row.Age != "" || planned[key] {
			continue
		}
		year, ok := years[key]
		if !ok {
			continue
		}
		model, ok := byName[key]
		if !ok {
			continue
		}
		planned[key] = true
		out = append(out, ModelAgeUpdate{ModelID: model.ID, ModelName: model.Name, Year: year})
	}
	return out
}
