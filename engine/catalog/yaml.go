package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RefList is a list of pin/wire references. It decodes from a YAML scalar
// or sequence, expanding numeric ranges: "1-4" becomes 1,2,3,4 and "4-1"
// the descending equivalent. Non-numeric entries pass through unchanged.
type RefList []string

func (r *RefList) UnmarshalYAML(node *yaml.Node) error {
	items := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		items = node.Content
	}
	var out []string
	for _, item := range items {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: reference must be a scalar", item.Line)
		}
		out = append(out, ExpandRange(item.Value)...)
	}
	*r = out
	return nil
}

func nodeErr(node *yaml.Node, msg string) error {
	return fmt.Errorf("line %d: %s", node.Line, msg)
}

// ExpandRange expands a "a-b" numeric range into its members, ascending
// or descending. Anything that is not two integers around a dash passes
// through as a single reference.
func ExpandRange(s string) []string {
	i := strings.IndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return []string{s}
	}
	a, errA := strconv.Atoi(s[:i])
	b, errB := strconv.Atoi(s[i+1:])
	if errA != nil || errB != nil {
		return []string{s}
	}
	var out []string
	step := 1
	if a > b {
		step = -1
	}
	for x := a; ; x += step {
		out = append(out, strconv.Itoa(x))
		if x == b {
			break
		}
	}
	return out
}

// StringOrList decodes from either a single YAML scalar or a sequence of
// scalars. Cables use it for part-number fields that may carry one value
// per wire in a bundle.
type StringOrList []string

func (s *StringOrList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "" {
			*s = nil
			return nil
		}
		*s = []string{node.Value}
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected scalar or sequence", node.Line)
	}
	var out []string
	for _, item := range node.Content {
		out = append(out, item.Value)
	}
	*s = out
	return nil
}

// One returns the single value of the list, or "" when empty. Bundles with
// per-wire lists report their first entry for display purposes.
func (s StringOrList) One() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Shield decodes a cable shield declaration: false (none), true (plain
// shield), or a color code string.
type Shield struct {
	Present bool
	Color   string
}

func (s *Shield) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		s.Present = b
		return nil
	}
	var c string
	if err := node.Decode(&c); err != nil {
		return fmt.Errorf("line %d: shield must be a bool or a color code", node.Line)
	}
	s.Present = true
	s.Color = c
	return nil
}
