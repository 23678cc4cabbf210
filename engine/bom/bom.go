// Package bom derives the deduplicated bill of materials of an assembled
// harness. Lines with the same identity merge by summing quantities and
// pooling designators; output order is first appearance.
package bom

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/colors"
	"github.com/loomworks/loom/engine/harness"
)

// ErrInvalidItem marks a free-form BOM entry without a usable description
// or with a negative quantity.
var ErrInvalidItem = errors.New("invalid bom item")

// Item is one aggregated BOM line.
type Item struct {
	Description string            `json:"description"`
	Qty         float64           `json:"qty"`
	Unit        string            `json:"unit,omitempty"`
	Designators []string          `json:"designators,omitempty"`
	PartNumbers map[string]string `json:"part_numbers,omitempty"`
}

// table accumulates lines keyed by identity while keeping first-seen order.
type table struct {
	items []Item
	index map[string]int
}

// identity builds the merge key of a line. Designators never participate;
// two entries with equal description, unit and part attributes are the
// same physical article.
func identity(description, unit string, attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(description)
	sb.WriteByte(0)
	sb.WriteString(unit)
	for _, k := range keys {
		sb.WriteByte(0)
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(attrs[k])
	}
	return sb.String()
}

func (t *table) add(description string, qty float64, unit, designator string, attrs map[string]string) {
	key := identity(description, unit, attrs)
	i, ok := t.index[key]
	if !ok {
		i = len(t.items)
		t.index[key] = i
		t.items = append(t.items, Item{
			Description: description,
			Unit:        unit,
			PartNumbers: attrs,
		})
	}
	t.items[i].Qty += qty
	if designator != "" {
		t.items[i].Designators = append(t.items[i].Designators, designator)
	}
}

// Aggregate produces the BOM of a harness.
func Aggregate(h *harness.Harness) ([]Item, error) {
	t := &table{index: make(map[string]int)}
	for _, des := range h.Catalog.Designators() {
		if conn, ok := h.Catalog.Connector(des); ok {
			addConnector(t, h, conn)
			continue
		}
		cab, _ := h.Catalog.Cable(des)
		if err := addCable(t, h, cab); err != nil {
			return nil, err
		}
	}
	for _, extra := range h.BOMItems {
		if strings.TrimSpace(extra.Description) == "" || extra.Qty <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidItem, extra.Description)
		}
		t.add(extra.Description, extra.Qty, extra.Unit, "", extra.Attributes())
		i := t.index[identity(extra.Description, extra.Unit, extra.Attributes())]
		t.items[i].Designators = append(t.items[i].Designators, extra.Designators...)
	}
	out := t.items
	for i := range out {
		out[i].Designators = dedupeInOrder(out[i].Designators)
	}
	return out, nil
}

func addConnector(t *table, h *harness.Harness, c *catalog.Connector) {
	if !c.IgnoreInBOM {
		t.add(connectorDescription(c), 1, "", c.Designator, c.Attributes())
	}
	populated := h.Populated(c.Designator)
	for _, ac := range c.Additional {
		qty := componentQty(ac) * c.MultiplierValue(ac.QtyMultiplier, populated)
		t.add(ac.Description(), qty, ac.Unit, c.Designator, ac.Attributes())
	}
}

func addCable(t *table, h *harness.Harness, c *catalog.Cable) error {
	if !c.IgnoreInBOM {
		if c.IsBundle() {
			if err := addBundleWires(t, h, c); err != nil {
				return err
			}
		} else {
			t.add(cableDescription(c), cableQty(c), "m", c.Designator, cableAttrs(c, -1))
		}
	}
	terminations := h.Terminations(c.Designator)
	for _, ac := range c.Additional {
		qty := componentQty(ac) * c.MultiplierValue(ac.QtyMultiplier, terminations)
		t.add(ac.Description(), qty, ac.Unit, c.Designator, ac.Attributes())
	}
	return nil
}

// addBundleWires books every wire of a loose bundle as its own line so
// equal wires across bundles merge.
func addBundleWires(t *table, h *harness.Harness, c *catalog.Cable) error {
	for i := 0; i < c.WireCount; i++ {
		desc := "Wire"
		if c.Gauge.String() != "" {
			desc += ", " + c.Gauge.String()
		}
		if len(c.Colors) > 0 && c.Colors[i] != "" {
			name, err := colorName(h, c.Colors[i])
			if err != nil {
				return err
			}
			desc += ", " + name
		}
		t.add(desc, cableQty(c), "m", c.Designator, cableAttrs(c, i))
	}
	return nil
}

func connectorDescription(c *catalog.Connector) string {
	var parts []string
	if c.Style == "simple" {
		parts = []string{c.Type}
		if c.Subtype != "" {
			parts = append(parts, c.Subtype)
		}
		return strings.Join(parts, ", ")
	}
	parts = []string{"Connector"}
	if c.Type != "" {
		parts = append(parts, c.Type)
	}
	if c.Subtype != "" {
		parts = append(parts, c.Subtype)
	}
	parts = append(parts, fmt.Sprintf("%d pins", c.PinCount))
	return strings.Join(parts, ", ")
}

func cableDescription(c *catalog.Cable) string {
	parts := []string{"Cable"}
	if c.Type != "" {
		parts = append(parts, c.Type)
	}
	wires := fmt.Sprintf("%d", c.WireCount)
	if g := c.Gauge.String(); g != "" {
		wires += " x " + g
	} else {
		wires += " wires"
	}
	parts = append(parts, wires)
	if c.Shield.Present {
		parts = append(parts, "shielded")
	}
	return strings.Join(parts, ", ")
}

// cableQty reports meters for cut-to-length articles; an unspecified
// length books one unit.
func cableQty(c *catalog.Cable) float64 {
	if c.Length.IsZero() {
		return 1
	}
	return c.Length.Value
}

// cableAttrs builds the part attributes of a cable line. wire >= 0 picks
// the per-wire entry of bundle part lists.
func cableAttrs(c *catalog.Cable, wire int) map[string]string {
	pick := func(s catalog.StringOrList) string {
		if wire >= 0 && len(s) == c.WireCount {
			return s[wire]
		}
		return s.One()
	}
	pn := catalog.PartNumbers{
		PN:           pick(c.PN),
		Manufacturer: pick(c.Manufacturer),
		MPN:          pick(c.MPN),
		Supplier:     pick(c.Supplier),
		SPN:          pick(c.SPN),
	}
	return pn.Attributes()
}

func componentQty(ac catalog.AdditionalComponent) float64 {
	if ac.Qty == 0 {
		return 1
	}
	return ac.Qty
}

func colorName(h *harness.Harness, code colors.Code) (string, error) {
	return h.Catalog.Registry().Render(code, colors.PaletteFull)
}

// dedupeInOrder drops repeated designators while keeping the order they
// first appeared in.
func dedupeInOrder(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
