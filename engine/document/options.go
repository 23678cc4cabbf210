package document

import "github.com/loomworks/loom/engine/colors"

// ColorMode selects the palette wire colors are displayed in.
type ColorMode string

const (
	ColorModeShort ColorMode = "SHORT"
	ColorModeFull  ColorMode = "FULL"
	ColorModeHex   ColorMode = "HEX"
	ColorModeGer   ColorMode = "GER"
)

// Palette maps the mode to its registry palette.
func (m ColorMode) Palette() colors.Palette {
	switch m {
	case ColorModeFull:
		return colors.PaletteFull
	case ColorModeHex:
		return colors.PaletteHex
	case ColorModeGer:
		return colors.PaletteGer
	default:
		return colors.PaletteShort
	}
}

// Options are the rendering/style options of a document.
type Options struct {
	Fontname         string    `yaml:"fontname" json:"fontname"`
	BGColor          string    `yaml:"bgcolor" json:"bgcolor"`
	BGColorNode      string    `yaml:"bgcolor_node" json:"bgcolor_node"`
	BGColorConnector string    `yaml:"bgcolor_connector" json:"bgcolor_connector"`
	BGColorCable     string    `yaml:"bgcolor_cable" json:"bgcolor_cable"`
	BGColorBundle    string    `yaml:"bgcolor_bundle" json:"bgcolor_bundle"`
	ColorMode        ColorMode `yaml:"color_mode" json:"color_mode"`
	MiniBOMMode      *bool     `yaml:"mini_bom_mode" json:"mini_bom_mode"`
}

// DefaultOptions returns the options used when the document has none.
func DefaultOptions() Options {
	o := Options{
		Fontname:  "arial",
		BGColor:   "WH",
		ColorMode: ColorModeShort,
	}
	o.applyFallbacks()
	return o
}

// applyFallbacks fills the per-kind background colors along the fallback
// chain bundle -> cable -> node -> diagram.
func (o *Options) applyFallbacks() {
	if o.Fontname == "" {
		o.Fontname = "arial"
	}
	if o.BGColor == "" {
		o.BGColor = "WH"
	}
	if o.ColorMode == "" {
		o.ColorMode = ColorModeShort
	}
	if o.BGColorNode == "" {
		o.BGColorNode = o.BGColor
	}
	if o.BGColorConnector == "" {
		o.BGColorConnector = o.BGColorNode
	}
	if o.BGColorCable == "" {
		o.BGColorCable = o.BGColorNode
	}
	if o.BGColorBundle == "" {
		o.BGColorBundle = o.BGColorCable
	}
}

// MiniBOM reports whether per-node mini BOM rows are enabled (default on).
func (o Options) MiniBOM() bool {
	return o.MiniBOMMode == nil || *o.MiniBOMMode
}
