package colors

import (
	"fmt"
	"strings"
)

// Registry resolves color codes against palettes and positional schemes.
// It is a pure lookup table with no mutable state; a single Default()
// value can be shared freely across goroutines.
type Registry struct {
	schemes map[string][]Code
}

// Default returns the registry with all built-in schemes.
func Default() *Registry {
	return &Registry{schemes: schemeTables()}
}

// SchemeIDs returns the identifiers of all known schemes.
func (r *Registry) SchemeIDs() []string {
	ids := make([]string, 0, len(r.schemes))
	for id := range r.schemes {
		ids = append(ids, id)
	}
	return ids
}

// Scheme returns the ordered color table for a scheme identifier.
func (r *Registry) Scheme(id string) ([]Code, error) {
	table, ok := r.schemes[strings.ToUpper(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, id)
	}
	out := make([]Code, len(table))
	copy(out, table)
	return out, nil
}

// Sequence returns the first n colors of a scheme. When n exceeds the
// scheme table the table cycles, and repeated entries are tagged with the
// cycle round ("WH:2") so each wire keeps a unique label.
func (r *Registry) Sequence(id string, n int) ([]Code, error) {
	table, ok := r.schemes[strings.ToUpper(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, id)
	}
	if n < 0 {
		return nil, fmt.Errorf("sequence length must not be negative, got %d", n)
	}
	out := make([]Code, 0, n)
	for i := 0; i < n; i++ {
		c := table[i%len(table)]
		if round := i/len(table) + 1; round > 1 {
			c = c.Tagged(round)
		}
		out = append(out, c)
	}
	return out, nil
}

// Render resolves a code into the given palette. Multi-band codes join
// their bands with "/"; hex rendering joins with ":". A cycle tag is kept
// only in the short palette, where it disambiguates repeated colors.
func (r *Registry) Render(c Code, p Palette) (string, error) {
	bands, tag, err := c.Split()
	if err != nil {
		return "", err
	}
	sep := "/"
	parts := make([]string, len(bands))
	for i, b := range bands {
		base := baseColors[b]
		switch p {
		case PaletteShort:
			parts[i] = b
		case PaletteFull:
			parts[i] = base.full
		case PaletteGer:
			parts[i] = base.ger
		case PaletteHex:
			parts[i] = base.hex
			sep = ":"
		default:
			return "", fmt.Errorf("%w: %q", ErrUnknownPalette, p)
		}
	}
	s := strings.Join(parts, sep)
	if p == PaletteShort {
		s = strings.Join(parts, "")
		if tag > 1 {
			s = fmt.Sprintf("%s:%d", s, tag)
		}
	}
	return s, nil
}

// Hex returns the per-band hex values of a code. Two-band codes yield a
// three-element a:b:a stripe so renderers can draw the base color around
// the stripe color.
func (r *Registry) Hex(c Code) ([]string, error) {
	bands, _, err := c.Split()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(bands))
	for i, b := range bands {
		out[i] = baseColors[b].hex
	}
	if len(out) == 2 {
		out = append(out, out[0])
	}
	return out, nil
}

// Translate converts a color identifier from one palette to another.
// The identifier must exist in the source palette; translation is a pure
// lookup and round-trips between any two palettes.
func (r *Registry) Translate(identifier string, from, to Palette) (string, error) {
	code, err := r.lookup(identifier, from)
	if err != nil {
		return "", err
	}
	return r.Render(code, to)
}

// lookup finds the Code whose rendering in the given palette matches the
// identifier. Multi-band identifiers use the palette's band separator.
func (r *Registry) lookup(identifier string, p Palette) (Code, error) {
	switch p {
	case PaletteShort, PaletteFull, PaletteHex, PaletteGer:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPalette, p)
	}
	sep := "/"
	if p == PaletteHex {
		sep = ":"
	}
	var parts []string
	if p == PaletteShort {
		c := Code(identifier)
		if c.Known() {
			return c, nil
		}
		return "", fmt.Errorf("%w: %q in palette %s", ErrUnknownColor, identifier, p)
	}
	parts = strings.Split(identifier, sep)
	var sb strings.Builder
	for _, part := range parts {
		found := ""
		for short, base := range baseColors {
			v := map[Palette]string{
				PaletteFull: base.full,
				PaletteHex:  base.hex,
				PaletteGer:  base.ger,
			}[p]
			if strings.EqualFold(v, strings.TrimSpace(part)) {
				found = short
				break
			}
		}
		if found == "" {
			return "", fmt.Errorf("%w: %q in palette %s", ErrUnknownColor, identifier, p)
		}
		sb.WriteString(found)
	}
	return Code(sb.String()), nil
}
