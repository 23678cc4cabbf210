// Package colors defines the wire color registry: the set of recognised
// color codes, the palettes they can be rendered in, and the positional
// color schemes used by multi-wire cables. The registry is an immutable
// value; components that need color resolution receive it explicitly.
package colors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a color identifier built from one or more two-letter bands,
// e.g. "BK" (black) or "WHGN" (white/green stripe). A cycled sequence
// entry may carry a ":n" suffix tag to keep wire labels unique.
type Code string

// Palette selects the representation a Code is rendered in.
type Palette string

const (
	PaletteShort Palette = "short" // two-letter abbreviations
	PaletteFull  Palette = "full"  // English color names
	PaletteHex   Palette = "hex"   // RGB hex values
	PaletteGer   Palette = "ger"   // DIN IEC 60757 German abbreviations
)

// Sentinel errors for registry lookups.
var (
	ErrUnknownScheme  = errors.New("unknown color scheme")
	ErrUnknownColor   = errors.New("unknown color identifier")
	ErrUnknownPalette = errors.New("unknown palette")
)

// base color table, indexed by short code. Order matters only for
// reproducible error output; lookups go through the maps below.
type baseColor struct {
	full string
	hex  string
	ger  string
}

var baseColors = map[string]baseColor{
	"BK": {"black", "#000000", "sw"},
	"WH": {"white", "#ffffff", "ws"},
	"GY": {"grey", "#999999", "gr"},
	"PK": {"pink", "#ff66cc", "rs"},
	"RD": {"red", "#ff0000", "rt"},
	"OG": {"orange", "#ff8000", "or"},
	"YE": {"yellow", "#ffff00", "ge"},
	"OL": {"olive", "#708000", "ol"},
	"GN": {"green", "#00ff00", "gn"},
	"TQ": {"turquoise", "#00ffff", "tk"},
	"LB": {"light blue", "#a0dfff", "hb"},
	"BU": {"blue", "#0066ff", "bl"},
	"VT": {"violet", "#8000ff", "vi"},
	"BN": {"brown", "#895956", "br"},
	"BG": {"beige", "#ceb673", "bg"},
	"IV": {"ivory", "#f5f0d0", "eb"},
	"SL": {"slate", "#708090", "si"},
	"CU": {"copper", "#d6775e", "ku"},
	"SN": {"tin", "#aaaaaa", "vz"},
	"SR": {"silver", "#84878c", "ag"},
	"GD": {"gold", "#ffcf80", "au"},
}

// Split separates a Code into its short suffix tag (0 when absent) and
// the two-letter bands it is composed of. Codes with unknown bands or an
// odd length fail with ErrUnknownColor.
func (c Code) Split() ([]string, int, error) {
	s := string(c)
	tag := 0
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if _, err := fmt.Sscanf(s[i+1:], "%d", &tag); err != nil {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownColor, c)
		}
		s = s[:i]
	}
	if s == "" || len(s)%2 != 0 {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownColor, c)
	}
	bands := make([]string, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		b := strings.ToUpper(s[i : i+2])
		if _, ok := baseColors[b]; !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownColor, c)
		}
		bands = append(bands, b)
	}
	return bands, tag, nil
}

// Known reports whether every band of the code is a recognised base color.
func (c Code) Known() bool {
	_, _, err := c.Split()
	return err == nil
}

// Tagged returns the code with a numeric cycle tag appended.
func (c Code) Tagged(n int) Code {
	return Code(fmt.Sprintf("%s:%d", c, n))
}
