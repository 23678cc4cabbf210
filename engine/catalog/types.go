// Package catalog holds the typed component records of a harness: the
// connectors and cables declared by an input document, validated once at
// construction. Downstream consumers never re-validate catalog entries.
package catalog

// PartNumbers carries the optional supplier metadata of a component.
// Absent fields stay empty and are omitted from BOM identity keys.
type PartNumbers struct {
	PN           string `yaml:"pn" json:"pn,omitempty"`
	Manufacturer string `yaml:"manufacturer" json:"manufacturer,omitempty"`
	MPN          string `yaml:"mpn" json:"mpn,omitempty"`
	Supplier     string `yaml:"supplier" json:"supplier,omitempty"`
	SPN          string `yaml:"spn" json:"spn,omitempty"`
}

// Attributes returns the part fields as a map with absent fields omitted.
func (p PartNumbers) Attributes() map[string]string {
	m := make(map[string]string)
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put("pn", p.PN)
	put("manufacturer", p.Manufacturer)
	put("mpn", p.MPN)
	put("supplier", p.Supplier)
	put("spn", p.SPN)
	return m
}

// AdditionalComponent is an extra BOM entry attached to a connector or a
// cable, e.g. crimp terminals or heat shrink. Its quantity may scale with
// a property of the owning entity via QtyMultiplier.
type AdditionalComponent struct {
	Type          string  `yaml:"type" json:"type"`
	Subtype       string  `yaml:"subtype" json:"subtype,omitempty"`
	PartNumbers   `yaml:",inline"`
	Qty           float64 `yaml:"qty" json:"qty"`
	Unit          string  `yaml:"unit" json:"unit,omitempty"`
	QtyMultiplier string  `yaml:"qty_multiplier" json:"qty_multiplier,omitempty"`
}

// Description joins type and subtype the way BOM lines are worded.
func (a AdditionalComponent) Description() string {
	d := a.Type
	if a.Subtype != "" {
		d += ", " + a.Subtype
	}
	return d
}

// Connector quantity multiplier tokens.
const (
	MultiplierPinCount    = "pincount"
	MultiplierPopulated   = "populated"
	MultiplierUnpopulated = "unpopulated"
)

// Cable quantity multiplier tokens.
const (
	MultiplierWireCount    = "wirecount"
	MultiplierTerminations = "terminations"
	MultiplierLength       = "length"
	MultiplierTotalLength  = "total_length"
)
