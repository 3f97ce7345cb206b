package checks

import (
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
)

var (
	familyPropertyEntry = partEntry("family_property",
		"Check family property is present", checkFamilyProperty)
	uniquePropertyNamesEntry = partEntry("unique_property_names",
		"Check property names are unique", checkUniquePropertyNames)
	propertyFieldsEntry = partEntry("property_fields",
		"Check property fields are properly defined", checkPropertyFields)
)

func checkFamilyProperty(p *fzp.Part, f *Findings) {
	for _, prop := range p.Properties() {
		if prop.Name != "family" {
			continue
		}
		if prop.Value == "" {
			f.Errorf("'family' property has no value.")
		}
		return
	}
	f.Errorf("'family' property is missing.")
}

// checkUniquePropertyNames reports every repeat of a property name; the
// first occurrence is not counted.
func checkUniquePropertyNames(p *fzp.Part, f *Findings) {
	seen := make(map[string]bool)
	for _, prop := range p.Properties() {
		if seen[prop.Name] {
			f.Errorf("Duplicate property name found: '%s'.", prop.Name)
			continue
		}
		seen[prop.Name] = true
	}
}

func checkPropertyFields(p *fzp.Part, f *Findings) {
	for _, prop := range p.Properties() {
		switch {
		case prop.Name == "":
			f.Errorf("Property with empty 'name' attribute found (value '%s').", prop.Value)
		case prop.Value == "":
			f.Errorf("Property '%s' has an empty value.", prop.Name)
		}
	}
}
