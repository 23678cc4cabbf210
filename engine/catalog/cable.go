package catalog

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loomworks/loom/engine/colors"
)

// Length is a cable length with unit, decoding from a bare number
// (assumed meters) or a "value unit" string such as "0.2 m".
type Length struct {
	Value float64
	Unit  string
}

func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	var f float64
	if err := node.Decode(&f); err == nil {
		*l = Length{Value: f, Unit: "m"}
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return nodeErr(node, "length must be a number, or number and unit separated by a space")
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return nodeErr(node, "length must be a number, or number and unit separated by a space")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nodeErr(node, "length must be a number, or number and unit separated by a space")
	}
	*l = Length{Value: v, Unit: fields[1]}
	return nil
}

// IsZero reports whether no length was given.
func (l Length) IsZero() bool { return l.Value == 0 && l.Unit == "" }

// String renders the length with its unit, or "" when unset.
func (l Length) String() string {
	if l.IsZero() {
		return ""
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + " " + l.Unit
}

// CableSpec is the raw declarative form of a cable or wire bundle.
type CableSpec struct {
	Type                 string                `yaml:"type"`
	Category             string                `yaml:"category"` // "" or "bundle"
	Gauge                Gauge                 `yaml:"gauge"`
	ShowEquiv            bool                  `yaml:"show_equiv"`
	Length               Length                `yaml:"length"`
	Color                string                `yaml:"color"`
	WireCount            int                   `yaml:"wirecount"`
	Shield               Shield                `yaml:"shield"`
	Colors               []string              `yaml:"colors"`
	WireLabels           RefList               `yaml:"wirelabels"`
	ColorCode            string                `yaml:"color_code"`
	Notes                string                `yaml:"notes"`
	ShowName             *bool                 `yaml:"show_name"`
	ShowWireCount        *bool                 `yaml:"show_wirecount"`
	ShowWireNumbers      *bool                 `yaml:"show_wirenumbers"`
	IgnoreInBOM          bool                  `yaml:"ignore_in_bom"`
	PN                   StringOrList          `yaml:"pn"`
	Manufacturer         StringOrList          `yaml:"manufacturer"`
	MPN                  StringOrList          `yaml:"mpn"`
	Supplier             StringOrList          `yaml:"supplier"`
	SPN                  StringOrList          `yaml:"spn"`
	AdditionalComponents []AdditionalComponent `yaml:"additional_components"`
}

// Cable is a validated cable record. Wire structure is fixed after
// construction; Colors always has exactly WireCount entries.
type Cable struct {
	Designator      string
	Type            string
	Category        string
	Gauge           Gauge
	ShowEquiv       bool
	Length          Length
	Color           colors.Code
	WireCount       int
	Shield          Shield
	Colors          []colors.Code // one per wire, possibly empty codes
	WireLabels      []string      // empty, or one label per wire
	ColorCode       string        // scheme id when colors were generated
	Notes           string
	ShowName        bool
	ShowWireCount   bool
	ShowWireNumbers bool
	IgnoreInBOM     bool

	// Part fields; more than one entry only for bundles (one per wire).
	PN           StringOrList
	Manufacturer StringOrList
	MPN          StringOrList
	Supplier     StringOrList
	SPN          StringOrList

	Additional []AdditionalComponent
}

// IsBundle reports whether the cable is a loose wire bundle.
func (c *Cable) IsBundle() bool { return c.Category == "bundle" }

// newCable validates a spec into a Cable.
func newCable(designator string, spec CableSpec, reg *colors.Registry) (*Cable, error) {
	c := &Cable{
		Designator:   designator,
		Type:         spec.Type,
		Category:     spec.Category,
		Gauge:        spec.Gauge,
		ShowEquiv:    spec.ShowEquiv,
		Length:       spec.Length,
		WireCount:    spec.WireCount,
		Shield:       spec.Shield,
		WireLabels:   spec.WireLabels,
		ColorCode:    spec.ColorCode,
		Notes:        spec.Notes,
		IgnoreInBOM:  spec.IgnoreInBOM,
		PN:           spec.PN,
		Manufacturer: spec.Manufacturer,
		MPN:          spec.MPN,
		Supplier:     spec.Supplier,
		SPN:          spec.SPN,
		Additional:   spec.AdditionalComponents,
	}

	if spec.Color != "" {
		c.Color = colors.Code(spec.Color)
		if !c.Color.Known() {
			return nil, NewFieldError(designator, "color", spec.Color, colors.ErrUnknownColor)
		}
	}
	if spec.Shield.Color != "" && !colors.Code(spec.Shield.Color).Known() {
		return nil, NewFieldError(designator, "shield", spec.Shield.Color, colors.ErrUnknownColor)
	}

	// Wire count: explicit, or implied by the color list.
	switch {
	case c.WireCount > 0 && len(spec.Colors) > 0:
		if len(spec.Colors) != c.WireCount {
			return nil, NewFieldError(designator, "colors",
				strconv.Itoa(len(spec.Colors)), ErrWireCountMismatch)
		}
	case c.WireCount == 0 && len(spec.Colors) > 0:
		c.WireCount = len(spec.Colors)
	case c.WireCount == 0:
		return nil, NewFieldError(designator, "wirecount", "", ErrWireCountUnknown)
	}
	if c.WireCount < 0 {
		return nil, NewFieldError(designator, "wirecount",
			strconv.Itoa(c.WireCount), ErrWireCountUnknown)
	}

	// Per-wire colors: explicit list, generated from a scheme, or blank.
	switch {
	case len(spec.Colors) > 0:
		for _, s := range spec.Colors {
			code := colors.Code(s)
			if s != "" && !code.Known() {
				return nil, NewFieldError(designator, "colors", s, colors.ErrUnknownColor)
			}
			c.Colors = append(c.Colors, code)
		}
	case spec.ColorCode != "":
		seq, err := reg.Sequence(spec.ColorCode, c.WireCount)
		if err != nil {
			return nil, NewFieldError(designator, "color_code", spec.ColorCode, err)
		}
		c.Colors = seq
	default:
		c.Colors = make([]colors.Code, c.WireCount)
	}

	if n := len(spec.WireLabels); n != 0 && n != c.WireCount {
		return nil, NewFieldError(designator, "wirelabels", strconv.Itoa(n), ErrWireCountMismatch)
	}
	if c.Shield.Present {
		for _, l := range c.WireLabels {
			if l == "s" {
				return nil, NewFieldError(designator, "wirelabels", "s", ErrShieldLabel)
			}
		}
	}

	// Per-wire part number lists are a bundle-only feature.
	for field, list := range map[string]StringOrList{
		"pn": c.PN, "manufacturer": c.Manufacturer, "mpn": c.MPN,
		"supplier": c.Supplier, "spn": c.SPN,
	} {
		if len(list) > 1 && (!c.IsBundle() || len(list) != c.WireCount) {
			return nil, NewFieldError(designator, field,
				strconv.Itoa(len(list)), ErrPartListLength)
		}
	}

	for _, a := range spec.AdditionalComponents {
		switch a.QtyMultiplier {
		case "", MultiplierWireCount, MultiplierTerminations, MultiplierLength, MultiplierTotalLength:
		default:
			return nil, NewFieldError(designator, "qty_multiplier", a.QtyMultiplier, ErrBadMultiplier)
		}
	}

	autoGen := len(designator) >= 2 && designator[:2] == "__"
	c.ShowName = !autoGen
	if spec.ShowName != nil {
		c.ShowName = *spec.ShowName
	}
	c.ShowWireCount = true
	if spec.ShowWireCount != nil {
		c.ShowWireCount = *spec.ShowWireCount
	}
	c.ShowWireNumbers = !c.IsBundle()
	if spec.ShowWireNumbers != nil {
		c.ShowWireNumbers = *spec.ShowWireNumbers
	}

	return c, nil
}

// WireID returns the canonical identifier of wire i (1-based), or "s" for
// the shield.
func (c *Cable) WireID(i int) string { return strconv.Itoa(i) }

// ResolveWire maps a wire reference (number, wire label, or "s" for the
// shield) to a canonical wire identifier.
func (c *Cable) ResolveWire(ref string) (string, bool) {
	if ref == "s" {
		return "s", c.Shield.Present
	}
	if n, err := strconv.Atoi(ref); err == nil {
		return ref, n >= 1 && n <= c.WireCount
	}
	found := ""
	count := 0
	for i, l := range c.WireLabels {
		if l == ref {
			found = c.WireID(i + 1)
			count++
		}
	}
	return found, count == 1
}

// MultiplierValue resolves a quantity multiplier given the number of wire
// terminations in the resolved harness.
func (c *Cable) MultiplierValue(multiplier string, terminations int) float64 {
	switch multiplier {
	case "":
		return 1
	case MultiplierWireCount:
		return float64(c.WireCount)
	case MultiplierTerminations:
		return float64(terminations)
	case MultiplierLength:
		return c.Length.Value
	case MultiplierTotalLength:
		return c.Length.Value * float64(c.WireCount)
	}
	return 1
}
