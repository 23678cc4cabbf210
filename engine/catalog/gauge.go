package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Gauge units. Bare numeric gauges default to square millimeters; the only
// other accepted unit is AWG.
const (
	UnitMM2 = "mm2"
	UnitAWG = "AWG"
)

// awgByMM2 maps metric wire sections to their AWG equivalents. The pairs
// are the standard commercial sizes; conversion is table lookup, never
// computed, so both directions stay exact.
var awgByMM2 = map[string]string{
	"0.09": "28",
	"0.14": "26",
	"0.25": "24",
	"0.34": "22",
	"0.5":  "21",
	"0.75": "20",
	"1":    "18",
	"1.5":  "16",
	"2.5":  "14",
	"4":    "12",
	"6":    "10",
	"10":   "8",
	"16":   "6",
	"25":   "4",
	"35":   "2",
	"50":   "1",
}

var mm2ByAWG = func() map[string]string {
	m := make(map[string]string, len(awgByMM2))
	for mm2, awg := range awgByMM2 {
		m[awg] = mm2
	}
	return m
}()

// Gauge is a wire gauge with its source unit. The metric value is the
// canonical internal representation; AWG gauges carry their table-derived
// metric equivalent when one exists.
type Gauge struct {
	Value float64
	Unit  string // UnitMM2 or UnitAWG
}

// UnmarshalYAML accepts a bare number (assumed mm2) or a "value unit"
// string such as "0.25 mm2" or "24 AWG".
func (g *Gauge) UnmarshalYAML(node *yaml.Node) error {
	var f float64
	if err := node.Decode(&f); err == nil {
		*g = Gauge{Value: f, Unit: UnitMM2}
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: gauge must be a number or "+
			"a number and unit separated by a space", node.Line)
	}
	parsed, err := ParseGauge(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*g = parsed
	return nil
}

// ParseGauge parses "value" or "value unit" into a Gauge.
func ParseGauge(s string) (Gauge, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Gauge{}, fmt.Errorf("gauge %q: must be a number, or number and unit separated by a space", s)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Gauge{}, fmt.Errorf("gauge %q: %w", s, err)
	}
	unit := UnitMM2
	if len(fields) == 2 {
		unit, err = normalizeUnit(fields[1])
		if err != nil {
			return Gauge{}, err
		}
	}
	return Gauge{Value: v, Unit: unit}, nil
}

func normalizeUnit(u string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(u)) {
	case "mm2", "mm²":
		return UnitMM2, nil
	case "awg":
		return UnitAWG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, u)
	}
}

// IsZero reports whether the gauge has not been specified.
func (g Gauge) IsZero() bool { return g.Value == 0 && g.Unit == "" }

// MM2 returns the metric section. For AWG gauges it is derived from the
// equivalence table; ok is false when the AWG size has no metric entry.
func (g Gauge) MM2() (float64, bool) {
	if g.Unit != UnitAWG {
		return g.Value, true
	}
	mm2, ok := mm2ByAWG[formatGaugeValue(g.Value)]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(mm2, 64)
	return v, err == nil
}

// Equivalent returns the gauge expressed in the other unit, or ok=false
// when the size is not in the equivalence table.
func (g Gauge) Equivalent() (string, bool) {
	if g.Unit == UnitAWG {
		mm2, ok := mm2ByAWG[formatGaugeValue(g.Value)]
		if !ok {
			return "", false
		}
		return mm2 + " mm²", true
	}
	awg, ok := awgByMM2[formatGaugeValue(g.Value)]
	if !ok {
		return "", false
	}
	return awg + " AWG", true
}

// String renders the gauge with its source unit.
func (g Gauge) String() string {
	if g.IsZero() {
		return ""
	}
	unit := "mm²"
	if g.Unit == UnitAWG {
		unit = "AWG"
	}
	return formatGaugeValue(g.Value) + " " + unit
}

// formatGaugeValue renders a gauge magnitude without a trailing zero
// fraction, matching the table keys.
func formatGaugeValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
