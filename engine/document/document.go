// Package document parses the declarative harness input format. Sections
// are decoded with yaml.Node so mapping order is preserved exactly as
// written; the rest of the engine relies on that order for deterministic
// output. Malformed documents fail eagerly with line information.
package document

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/connect"
)

// Sentinel errors for document parsing.
var (
	ErrNotMapping     = errors.New("document root must be a mapping")
	ErrUnknownSection = errors.New("unknown document section")
	ErrBadGroupEntry  = errors.New("malformed connection group entry")
	ErrDanglingArrow  = errors.New("arrow must sit between two legs")
)

// NamedConnector pairs a designator with its connector spec.
type NamedConnector struct {
	Name string
	Spec catalog.ConnectorSpec
}

// NamedCable pairs a designator with its cable spec.
type NamedCable struct {
	Name string
	Spec catalog.CableSpec
}

// Field is one metadata key/value pair.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BOMItem is a free-form additional BOM entry from the document.
type BOMItem struct {
	Description         string       `yaml:"description" json:"description"`
	Qty                 float64      `yaml:"qty" json:"qty"`
	Unit                string       `yaml:"unit" json:"unit,omitempty"`
	Designators         []string     `yaml:"designators" json:"designators,omitempty"`
	catalog.PartNumbers `yaml:",inline"`
}

// Document is a fully parsed harness input document. Slices keep the
// declaration order of the source.
type Document struct {
	Connectors []NamedConnector
	Cables     []NamedCable
	Groups     []connect.Group
	BOMItems   []BOMItem
	Metadata   []Field
	Options    Options
}

// Parse decodes a harness document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrNotMapping
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: %w", top.Line, ErrNotMapping)
	}

	doc := &Document{}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		var err error
		switch key.Value {
		case "connectors":
			err = doc.parseConnectors(val)
		case "cables":
			err = doc.parseCables(val)
		case "connections":
			err = doc.parseConnections(val)
		case "additional_bom_items":
			err = val.Decode(&doc.BOMItems)
		case "metadata":
			err = doc.parseMetadata(val)
		case "options":
			err = val.Decode(&doc.Options)
		default:
			err = fmt.Errorf("line %d: %w: %q", key.Line, ErrUnknownSection, key.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	doc.Options.applyFallbacks()
	return doc, nil
}

func (d *Document) parseConnectors(node *yaml.Node) error {
	return eachMapping(node, func(name string, val *yaml.Node) error {
		var spec catalog.ConnectorSpec
		if err := val.Decode(&spec); err != nil {
			return fmt.Errorf("connector %q: %w", name, err)
		}
		d.Connectors = append(d.Connectors, NamedConnector{Name: name, Spec: spec})
		return nil
	})
}

func (d *Document) parseCables(node *yaml.Node) error {
	return eachMapping(node, func(name string, val *yaml.Node) error {
		var spec catalog.CableSpec
		if err := val.Decode(&spec); err != nil {
			return fmt.Errorf("cable %q: %w", name, err)
		}
		d.Cables = append(d.Cables, NamedCable{Name: name, Spec: spec})
		return nil
	})
}

func (d *Document) parseMetadata(node *yaml.Node) error {
	return eachMapping(node, func(key string, val *yaml.Node) error {
		var v any
		if err := val.Decode(&v); err != nil {
			return err
		}
		d.Metadata = append(d.Metadata, Field{Key: key, Value: fmt.Sprint(v)})
		return nil
	})
}

// parseConnections decodes the connection section: a list of groups,
// each a list of legs in compact syntax. A leg is either a single-key
// mapping (designator to references), a bare designator string
// (auto-route shorthand), or an arrow string marking a mate transition.
func (d *Document) parseConnections(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: connections must be a list of groups", node.Line)
	}
	for _, groupNode := range node.Content {
		group, err := parseGroup(groupNode)
		if err != nil {
			return err
		}
		d.Groups = append(d.Groups, group)
	}
	return nil
}

func parseGroup(node *yaml.Node) (connect.Group, error) {
	var g connect.Group
	if node.Kind != yaml.SequenceNode {
		return g, fmt.Errorf("line %d: %w: group must be a list", node.Line, ErrBadGroupEntry)
	}
	pendingArrow := ""
	sawArrow := false
	for _, entry := range node.Content {
		switch entry.Kind {
		case yaml.ScalarNode:
			if connect.IsArrow(entry.Value) {
				if len(g.Legs) == 0 || sawArrow {
					return g, fmt.Errorf("line %d: %w", entry.Line, ErrDanglingArrow)
				}
				pendingArrow = entry.Value
				sawArrow = true
				continue
			}
			g.Legs = append(g.Legs, connect.Leg{Designator: entry.Value, Auto: true})
		case yaml.MappingNode:
			if len(entry.Content) != 2 {
				return g, fmt.Errorf("line %d: %w: leg must have a single designator key",
					entry.Line, ErrBadGroupEntry)
			}
			leg, err := parseLeg(entry.Content[0], entry.Content[1])
			if err != nil {
				return g, err
			}
			g.Legs = append(g.Legs, leg)
		default:
			return g, fmt.Errorf("line %d: %w", entry.Line, ErrBadGroupEntry)
		}
		if len(g.Legs) > 1 {
			g.Arrows = append(g.Arrows, pendingArrow)
		}
		pendingArrow = ""
		sawArrow = false
	}
	if sawArrow {
		return g, fmt.Errorf("line %d: %w", node.Line, ErrDanglingArrow)
	}
	return g, nil
}

func parseLeg(key, val *yaml.Node) (connect.Leg, error) {
	leg := connect.Leg{Designator: key.Value}
	if val.Kind == yaml.ScalarNode && val.Tag == "!!null" {
		leg.Auto = true
		return leg, nil
	}
	var refs catalog.RefList
	if err := val.Decode(&refs); err != nil {
		return leg, fmt.Errorf("leg %q: %w", key.Value, err)
	}
	leg.Refs = refs
	return leg, nil
}

// eachMapping walks a mapping node in document order.
func eachMapping(node *yaml.Node, f func(key string, val *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := f(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
