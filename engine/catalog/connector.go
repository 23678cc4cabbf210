package catalog

import (
	"strconv"

	"github.com/loomworks/loom/engine/colors"
)

// ConnectorSpec is the raw declarative form of a connector, as found in
// the input document. It is validated into a Connector by the catalog.
type ConnectorSpec struct {
	Type                 string                `yaml:"type"`
	Subtype              string                `yaml:"subtype"`
	Style                string                `yaml:"style"` // "" or "simple"
	PartNumbers          `yaml:",inline"`
	PinCount             int                   `yaml:"pincount"`
	Pins                 RefList               `yaml:"pins"`
	PinLabels            RefList               `yaml:"pinlabels"`
	PinColors            []string              `yaml:"pincolors"`
	Color                string                `yaml:"color"`
	Notes                string                `yaml:"notes"`
	ShowName             *bool                 `yaml:"show_name"`
	ShowPinCount         *bool                 `yaml:"show_pincount"`
	HideDisconnectedPins bool                  `yaml:"hide_disconnected_pins"`
	Loops                []RefList             `yaml:"loops"`
	IgnoreInBOM          bool                  `yaml:"ignore_in_bom"`
	AdditionalComponents []AdditionalComponent `yaml:"additional_components"`
}

// Connector is a validated connector record. Pin structure is fixed after
// construction.
type Connector struct {
	Designator string
	Type       string
	Subtype    string
	Style      string
	PartNumbers
	PinCount             int
	Pins                 []string      // unique pin identifiers, in declared order
	PinLabels            []string      // empty, or one label per pin
	PinColors            []colors.Code // empty, or one color per pin
	Color                colors.Code
	Notes                string
	ShowName             bool
	ShowPinCount         bool
	HideDisconnectedPins bool
	Loops                [][2]string // pairs of own pins bridged inside the connector
	IgnoreInBOM          bool
	Additional           []AdditionalComponent
}

// newConnector validates a spec into a Connector.
func newConnector(designator string, spec ConnectorSpec, reg *colors.Registry) (*Connector, error) {
	c := &Connector{
		Designator:           designator,
		Type:                 spec.Type,
		Subtype:              spec.Subtype,
		Style:                spec.Style,
		PartNumbers:          spec.PartNumbers,
		PinCount:             spec.PinCount,
		Pins:                 spec.Pins,
		PinLabels:            spec.PinLabels,
		Notes:                spec.Notes,
		HideDisconnectedPins: spec.HideDisconnectedPins,
		IgnoreInBOM:          spec.IgnoreInBOM,
		Additional:           spec.AdditionalComponents,
	}

	if spec.Style == "simple" {
		if spec.PinCount > 1 || len(spec.Pins) > 1 || len(spec.PinLabels) > 1 || len(spec.PinColors) > 1 {
			return nil, NewFieldError(designator, "style", "simple", ErrSimplePinCount)
		}
		c.PinCount = 1
	}

	// Derive the pin count from the longest accompanying list when it is
	// not explicit; when both are given they must agree.
	derived := max(len(spec.Pins), max(len(spec.PinLabels), len(spec.PinColors)))
	if c.PinCount == 0 {
		c.PinCount = derived
	}
	if c.PinCount == 0 {
		return nil, NewFieldError(designator, "pincount", "", ErrPinCountUnknown)
	}
	for field, n := range map[string]int{
		"pins":      len(spec.Pins),
		"pinlabels": len(spec.PinLabels),
		"pincolors": len(spec.PinColors),
	} {
		if n != 0 && n != c.PinCount {
			return nil, NewFieldError(designator, field, strconv.Itoa(n), ErrPinCountMismatch)
		}
	}

	if len(c.Pins) == 0 {
		c.Pins = make([]string, c.PinCount)
		for i := range c.Pins {
			c.Pins[i] = strconv.Itoa(i + 1)
		}
	}
	seen := make(map[string]bool, len(c.Pins))
	for _, p := range c.Pins {
		if seen[p] {
			return nil, NewFieldError(designator, "pins", p, ErrDuplicatePin)
		}
		seen[p] = true
	}

	if spec.Color != "" {
		c.Color = colors.Code(spec.Color)
		if !c.Color.Known() {
			return nil, NewFieldError(designator, "color", spec.Color, colors.ErrUnknownColor)
		}
	}
	for _, pc := range spec.PinColors {
		code := colors.Code(pc)
		if pc != "" && !code.Known() {
			return nil, NewFieldError(designator, "pincolors", pc, colors.ErrUnknownColor)
		}
		c.PinColors = append(c.PinColors, code)
	}

	for _, loop := range spec.Loops {
		if len(loop) != 2 {
			return nil, NewFieldError(designator, "loops", strconv.Itoa(len(loop)), ErrBadLoop)
		}
		for _, p := range loop {
			if !seen[p] {
				return nil, NewFieldError(designator, "loops", p, ErrBadLoop)
			}
		}
		c.Loops = append(c.Loops, [2]string{loop[0], loop[1]})
	}

	for _, a := range spec.AdditionalComponents {
		switch a.QtyMultiplier {
		case "", MultiplierPinCount, MultiplierPopulated, MultiplierUnpopulated:
		default:
			return nil, NewFieldError(designator, "qty_multiplier", a.QtyMultiplier, ErrBadMultiplier)
		}
	}

	// Auto-generated entities (designators starting "__") hide their name.
	autoGen := len(designator) >= 2 && designator[:2] == "__"
	c.ShowName = spec.Style != "simple" && !autoGen
	if spec.ShowName != nil {
		c.ShowName = *spec.ShowName
	}
	c.ShowPinCount = spec.Style != "simple"
	if spec.ShowPinCount != nil {
		c.ShowPinCount = *spec.ShowPinCount
	}

	return c, nil
}

// HasPin reports whether id names one of the connector's pins.
func (c *Connector) HasPin(id string) bool {
	for _, p := range c.Pins {
		if p == id {
			return true
		}
	}
	return false
}

// PinByLabel resolves a pin label to its pin identifier. Labels are only
// usable as references when they are unique.
func (c *Connector) PinByLabel(label string) (string, bool) {
	found := ""
	n := 0
	for i, l := range c.PinLabels {
		if l == label {
			found = c.Pins[i]
			n++
		}
	}
	return found, n == 1
}

// MultiplierValue resolves a quantity multiplier given the number of
// populated (connected) pins.
func (c *Connector) MultiplierValue(multiplier string, populated int) float64 {
	switch multiplier {
	case "":
		return 1
	case MultiplierPinCount:
		return float64(c.PinCount)
	case MultiplierPopulated:
		return float64(populated)
	case MultiplierUnpopulated:
		return float64(max(0, c.PinCount-populated))
	}
	return 1
}
