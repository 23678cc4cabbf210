// Package render turns a harness graph description into Graphviz DOT
// text and a BOM into tab-separated output. Rendering is pure string
// assembly over already deterministic inputs, so output is byte-stable.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/loomworks/loom/engine/colors"
	"github.com/loomworks/loom/engine/connect"
	"github.com/loomworks/loom/engine/harness"
)

// DOT renders the graph description as a Graphviz document with
// HTML-like node labels.
func DOT(g *harness.GraphDescription) string {
	var sb strings.Builder
	nodes := make(map[string]harness.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	sb.WriteString("graph {\n")
	fmt.Fprintf(&sb, "graph [bgcolor=%q fontname=%q nodesep=0.33 rankdir=LR ranksep=2]\n",
		hexOf(g.Options.BGColor), g.Options.Fontname)
	fmt.Fprintf(&sb, "node [fillcolor=%q fontname=%q height=0 margin=0 shape=none style=filled width=0]\n",
		hexOf(g.Options.BGColorNode), g.Options.Fontname)
	fmt.Fprintf(&sb, "edge [fontname=%q style=bold]\n", g.Options.Fontname)

	for _, n := range g.Nodes {
		fmt.Fprintf(&sb, "%s [label=<\n%s> shape=%s style=%q fillcolor=%q]\n",
			quoteID(n.ID), nodeLabel(n), nodeShape(n), nodeStyle(n), hexOf(n.BGColor))
	}

	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "%s -- %s [color=%q]\n",
			endpointRef(nodes, e.From), endpointRef(nodes, e.To), edgeColor(nodes, e))
	}

	for _, m := range g.Mates {
		attrs := fmt.Sprintf("dir=both arrowhead=%s arrowtail=%s style=dashed",
			arrowHead(m.Arrow, true), arrowHead(m.Arrow, false))
		if m.PinLevel {
			fmt.Fprintf(&sb, "%s -- %s [%s]\n",
				endpointRef(nodes, m.From), endpointRef(nodes, m.To), attrs)
		} else {
			fmt.Fprintf(&sb, "%s -- %s [%s]\n",
				quoteID(m.From.Designator), quoteID(m.To.Designator), attrs)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func nodeShape(n harness.Node) string {
	if n.Kind == harness.KindSimple {
		return "oval"
	}
	return "box"
}

// nodeStyle dashes the outline of loose bundles so they read as grouped
// wires rather than a jacketed cable.
func nodeStyle(n harness.Node) string {
	if n.Kind == harness.KindBundle {
		return "filled,dashed"
	}
	return "filled"
}

// nodeLabel builds the HTML-like table of one node: a header with the
// designator and type facts, one row per pin or wire, then notes.
func nodeLabel(n harness.Node) string {
	var sb strings.Builder
	sb.WriteString("<table border=\"0\" cellspacing=\"0\" cellpadding=\"0\">\n")
	if n.ShowName {
		fmt.Fprintf(&sb, " <tr><td><b>%s</b></td></tr>\n", html.EscapeString(n.ID))
	}
	writeFacts(&sb, n)
	switch n.Kind {
	case harness.KindConnector:
		writePinRows(&sb, n)
	case harness.KindCable, harness.KindBundle:
		writeWireRows(&sb, n)
	}
	if n.Notes != "" {
		fmt.Fprintf(&sb, " <tr><td>%s</td></tr>\n", html.EscapeString(n.Notes))
	}
	sb.WriteString("</table>\n")
	return sb.String()
}

func writeFacts(sb *strings.Builder, n harness.Node) {
	var facts []string
	if n.Type != "" {
		facts = append(facts, n.Type)
	}
	if n.Subtype != "" {
		facts = append(facts, n.Subtype)
	}
	if n.ShowPinCount {
		facts = append(facts, fmt.Sprintf("%d-pin", n.PinCount))
	}
	if n.ShowWireCount && n.WireCount > 0 {
		facts = append(facts, fmt.Sprintf("%dx", n.WireCount))
	}
	if n.Gauge != "" {
		facts = append(facts, n.Gauge)
	}
	if n.Length != "" {
		facts = append(facts, n.Length)
	}
	if n.Color != "" {
		facts = append(facts, n.Color)
	}
	if len(facts) == 0 {
		return
	}
	sb.WriteString(" <tr><td><table border=\"0\" cellspacing=\"0\" cellborder=\"0\"><tr>\n")
	for _, f := range facts {
		fmt.Fprintf(sb, "  <td>%s</td>\n", html.EscapeString(f))
	}
	sb.WriteString(" </tr></table></td></tr>\n")
}

// writePinRows emits one row per pin with ports on both sides so edges
// can attach from either direction.
func writePinRows(sb *strings.Builder, n harness.Node) {
	if len(n.Pins) == 0 {
		return
	}
	sb.WriteString(" <tr><td><table border=\"0\" cellspacing=\"0\" cellborder=\"1\">\n")
	for _, p := range n.Pins {
		label := p.Label
		fmt.Fprintf(sb, "  <tr><td port=\"p%sl\">%s</td><td>%s</td><td port=\"p%sr\">%s</td></tr>\n",
			p.ID, html.EscapeString(p.ID), html.EscapeString(label), p.ID, html.EscapeString(p.ID))
	}
	sb.WriteString(" </table></td></tr>\n")
}

// writeWireRows emits one row per wire with the wire color drawn as a
// horizontal stripe between the two ports.
func writeWireRows(sb *strings.Builder, n harness.Node) {
	if len(n.Wires) == 0 && n.Shield == nil {
		return
	}
	sb.WriteString(" <tr><td><table border=\"0\" cellspacing=\"0\" cellborder=\"0\">\n")
	for _, w := range n.Wires {
		num := ""
		if n.ShowWireNumbers {
			num = w.ID
		}
		fmt.Fprintf(sb, "  <tr><td port=\"w%sl\">%s</td><td>%s</td><td port=\"w%sr\">%s</td></tr>\n",
			w.ID, html.EscapeString(num), html.EscapeString(wireCaption(w)), w.ID, html.EscapeString(num))
		fmt.Fprintf(sb, "  <tr><td colspan=\"3\" height=\"6\" bgcolor=%q></td></tr>\n", stripe(w.Hex))
	}
	if s := n.Shield; s != nil {
		fmt.Fprintf(sb, "  <tr><td port=\"wsl\"></td><td>Shield</td><td port=\"wsr\"></td></tr>\n")
		fmt.Fprintf(sb, "  <tr><td colspan=\"3\" height=\"2\" bgcolor=%q></td></tr>\n", stripe(s.Hex))
	}
	sb.WriteString(" </table></td></tr>\n")
}

func wireCaption(w harness.PinDescription) string {
	switch {
	case w.Label != "" && w.Display != "":
		return w.Label + " (" + w.Display + ")"
	case w.Label != "":
		return w.Label
	default:
		return w.Display
	}
}

// stripe joins band hex values Graphviz-style; a missing color falls back
// to black.
func stripe(hex []string) string {
	if len(hex) == 0 {
		return "#000000"
	}
	return strings.Join(hex, ":")
}

// endpointRef names the attachment point of an endpoint. Connector pins
// attach on the right, cable wires on the left; simple connectors have no
// pin rows and attach to the node body.
func endpointRef(nodes map[string]harness.Node, ep connect.Endpoint) string {
	id := quoteID(ep.Designator)
	switch nodes[ep.Designator].Kind {
	case harness.KindCable, harness.KindBundle:
		if ep.Pin == "s" {
			return id + ":wsl:w"
		}
		return id + ":w" + ep.Pin + "l:w"
	case harness.KindSimple:
		return id
	default:
		return id + ":p" + ep.Pin + "r:e"
	}
}

// edgeColor draws the wire stripe along the edge when either endpoint is
// a cable wire with a known color.
func edgeColor(nodes map[string]harness.Node, e connect.Edge) string {
	for _, ep := range [2]connect.Endpoint{e.From, e.To} {
		n, ok := nodes[ep.Designator]
		if !ok || (n.Kind != harness.KindCable && n.Kind != harness.KindBundle) {
			continue
		}
		if ep.Pin == "s" && n.Shield != nil && len(n.Shield.Hex) > 0 {
			return stripe(n.Shield.Hex)
		}
		for _, w := range n.Wires {
			if w.ID == ep.Pin && len(w.Hex) > 0 {
				return stripe(w.Hex)
			}
		}
	}
	return "#000000"
}

func arrowHead(arrow string, head bool) string {
	marker := "none"
	if head && strings.HasSuffix(strings.TrimSpace(arrow), ">") {
		marker = "normal"
	}
	if !head && strings.HasPrefix(strings.TrimSpace(arrow), "<") {
		marker = "normal"
	}
	return marker
}

// quoteID wraps a designator in quotes when it is not a plain identifier.
func quoteID(id string) string {
	for _, r := range id {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Sprintf("%q", id)
		}
	}
	return id
}

// hexOf resolves a short color code to hex for Graphviz attributes.
func hexOf(short string) string {
	if short == "" {
		return "#ffffff"
	}
	out, err := colors.Default().Translate(short, colors.PaletteShort, colors.PaletteHex)
	if err != nil {
		return "#ffffff"
	}
	return out
}
