package harness

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/colors"
	"github.com/loomworks/loom/engine/connect"
	"github.com/loomworks/loom/engine/document"
)

// NodeKind classifies graph nodes.
type NodeKind string

const (
	KindConnector NodeKind = "connector"
	KindSimple    NodeKind = "simple"
	KindCable     NodeKind = "cable"
	KindBundle    NodeKind = "bundle"
)

// PinDescription describes one connector pin or cable wire. Display is
// the color rendered in the document's palette; Hex always carries the
// per-band hex values for drawing.
type PinDescription struct {
	ID        string   `json:"id"`
	Label     string   `json:"label,omitempty"`
	Color     string   `json:"color,omitempty"`
	Display   string   `json:"display,omitempty"`
	Hex       []string `json:"hex,omitempty"`
	Connected bool     `json:"connected"`
}

// Node describes one connector or cable of the harness graph.
type Node struct {
	ID           string            `json:"id"`
	Kind         NodeKind          `json:"kind"`
	Type         string            `json:"type,omitempty"`
	Subtype      string            `json:"subtype,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Color        string            `json:"color,omitempty"`
	BGColor      string            `json:"bgcolor,omitempty"`
	PartNumbers  map[string]string `json:"part_numbers,omitempty"`
	ShowName     bool              `json:"show_name"`
	PinCount     int               `json:"pincount,omitempty"`
	ShowPinCount bool              `json:"show_pincount,omitempty"`
	Pins         []PinDescription  `json:"pins,omitempty"`
	Loops        [][2]string       `json:"loops,omitempty"`

	WireCount       int              `json:"wirecount,omitempty"`
	ShowWireCount   bool             `json:"show_wirecount,omitempty"`
	ShowWireNumbers bool             `json:"show_wirenumbers,omitempty"`
	Gauge           string           `json:"gauge,omitempty"`
	Length          string           `json:"length,omitempty"`
	Wires           []PinDescription `json:"wires,omitempty"`
	Shield          *PinDescription  `json:"shield,omitempty"`
}

// GraphDescription is the structural harness graph handed to renderers.
// Node order follows declaration order and edge order follows resolution
// order, so equal documents always describe byte-identical graphs.
type GraphDescription struct {
	Metadata []document.Field `json:"metadata,omitempty"`
	Options  document.Options `json:"options"`
	Nodes    []Node           `json:"nodes"`
	Edges    []connect.Edge   `json:"edges,omitempty"`
	Mates    []connect.Mate   `json:"mates,omitempty"`
}

// Describe builds the graph description of the harness.
func (h *Harness) Describe() (*GraphDescription, error) {
	g := &GraphDescription{
		Metadata: h.Metadata,
		Options:  h.Options,
		Edges:    h.Edges,
		Mates:    h.Mates,
	}
	for _, des := range h.Catalog.Designators() {
		var (
			node Node
			err  error
		)
		if conn, ok := h.Catalog.Connector(des); ok {
			node, err = h.connectorNode(conn)
		} else {
			cab, _ := h.Catalog.Cable(des)
			node, err = h.cableNode(cab)
		}
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", des, err)
		}
		g.Nodes = append(g.Nodes, node)
	}
	return g, nil
}

// JSON renders the description as stable, indented JSON.
func (g *GraphDescription) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Harness) connectorNode(c *catalog.Connector) (Node, error) {
	node := Node{
		ID:           c.Designator,
		Kind:         KindConnector,
		Type:         c.Type,
		Subtype:      c.Subtype,
		Notes:        c.Notes,
		BGColor:      h.Options.BGColorConnector,
		PartNumbers:  c.Attributes(),
		ShowName:     c.ShowName,
		PinCount:     c.PinCount,
		ShowPinCount: c.ShowPinCount,
		Loops:        c.Loops,
	}
	if c.Style == "simple" {
		node.Kind = KindSimple
	}
	var err error
	if node.Color, err = h.display(c.Color); err != nil {
		return node, err
	}
	for i, id := range c.Pins {
		pin := PinDescription{ID: id, Connected: h.connected(c.Designator, id)}
		if len(c.PinLabels) > 0 {
			pin.Label = c.PinLabels[i]
		}
		if len(c.PinColors) > 0 {
			if err := h.fillColor(&pin, c.PinColors[i]); err != nil {
				return node, err
			}
		}
		if c.HideDisconnectedPins && !pin.Connected {
			continue
		}
		node.Pins = append(node.Pins, pin)
	}
	return node, nil
}

func (h *Harness) cableNode(c *catalog.Cable) (Node, error) {
	node := Node{
		ID:              c.Designator,
		Kind:            KindCable,
		Type:            c.Type,
		Notes:           c.Notes,
		BGColor:         h.Options.BGColorCable,
		PartNumbers:     cablePartAttributes(c),
		ShowName:        c.ShowName,
		WireCount:       c.WireCount,
		ShowWireCount:   c.ShowWireCount,
		ShowWireNumbers: c.ShowWireNumbers,
		Gauge:           c.Gauge.String(),
		Length:          c.Length.String(),
	}
	if c.IsBundle() {
		node.Kind = KindBundle
		node.BGColor = h.Options.BGColorBundle
	}
	if eq, ok := c.Gauge.Equivalent(); ok && c.ShowEquiv {
		node.Gauge = fmt.Sprintf("%s (%s)", node.Gauge, eq)
	}
	var err error
	if node.Color, err = h.display(c.Color); err != nil {
		return node, err
	}
	for i := 0; i < c.WireCount; i++ {
		wire := PinDescription{
			ID:        c.WireID(i + 1),
			Connected: h.connected(c.Designator, c.WireID(i+1)),
		}
		if len(c.WireLabels) > 0 {
			wire.Label = c.WireLabels[i]
		}
		if len(c.Colors) > 0 {
			if err := h.fillColor(&wire, c.Colors[i]); err != nil {
				return node, err
			}
		}
		node.Wires = append(node.Wires, wire)
	}
	if c.Shield.Present {
		shield := PinDescription{ID: "s", Connected: h.connected(c.Designator, "s")}
		if err := h.fillColor(&shield, colors.Code(c.Shield.Color)); err != nil {
			return node, err
		}
		node.Shield = &shield
	}
	return node, nil
}

// fillColor sets the raw code, the palette display string and the hex
// bands of one pin or wire. Blank codes stay blank.
func (h *Harness) fillColor(p *PinDescription, code colors.Code) error {
	if code == "" {
		return nil
	}
	reg := h.Catalog.Registry()
	display, err := reg.Render(code, h.Options.ColorMode.Palette())
	if err != nil {
		return err
	}
	hex, err := reg.Hex(code)
	if err != nil {
		return err
	}
	p.Color = string(code)
	p.Display = display
	p.Hex = hex
	return nil
}

// display renders a node-level color in the document palette.
func (h *Harness) display(code colors.Code) (string, error) {
	if code == "" {
		return "", nil
	}
	return h.Catalog.Registry().Render(code, h.Options.ColorMode.Palette())
}

// cablePartAttributes exposes single-valued part fields; per-wire bundle
// part lists are a BOM concern and stay off the node.
func cablePartAttributes(c *catalog.Cable) map[string]string {
	pn := catalog.PartNumbers{
		PN:           c.PN.One(),
		Manufacturer: c.Manufacturer.One(),
		MPN:          c.MPN.One(),
		Supplier:     c.Supplier.One(),
		SPN:          c.SPN.One(),
	}
	return pn.Attributes()
}
