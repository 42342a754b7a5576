package reconcile

import (
	"strings"

	"github.com/agentstation/assetsync/internal/matcher"
	"github.com/agentstation/assetsync/pkg/assets"
)

// Reference holds the registry lookup tables for one run.
type Reference struct {
	Vendors   []assets.Vendor
	Models    []assets.ProductModel
	Directory *Directory
}

// NewReference builds the lookup tables from a snapshot.
func NewReference(vendors []assets.Vendor, models []assets.ProductModel, users []assets.User) Reference {
	return Reference{
		Vendors:   vendors,
		Models:    models,
		Directory: NewDirectory(users),
	}
}

// Vendor returns the first vendor whose name matches name under mode.
// An empty name never matches.
func (r Reference) Vendor(name string, mode matcher.PatternType) (assets.Vendor, bool) {
	m, ok := lookupMatcher(name, mode)
	if !ok {
		return assets.Vendor{}, false
	}
	for _, v := range r.Vendors {
		if m.Match(v.Name) {
			return v, true
		}
	}
	return assets.Vendor{}, false
}

// Model returns the first product model whose name matches name under mode.
func (r Reference) Model(name string, mode matcher.PatternType) (assets.ProductModel, bool) {
	m, ok := lookupMatcher(name, mode)
	if !ok {
		return assets.ProductModel{}, false
	}
	for _, pm := range r.Models {
		if m.Match(pm.Name) {
			return pm, true
		}
	}
	return assets.ProductModel{}, false
}

func lookupMatcher(name string, mode matcher.PatternType) (matcher.Matcher, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	if mode != matcher.Exact && mode != matcher.Contains {
		mode = matcher.Exact
	}
	m, err := matcher.New(mode, name)
	if err != nil {
		return nil, false
	}
	return m, true
}
