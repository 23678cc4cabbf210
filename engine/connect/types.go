// Package connect expands compact connection groups into explicit
// pin-to-pin edges, validating referential and cardinality consistency
// against the component catalog.
package connect

import (
	"errors"
	"regexp"
)

// Sentinel errors for resolution failures.
var (
	ErrEmptyGroup              = errors.New("connection group needs at least two legs")
	ErrUnknownDesignator       = errors.New("unknown designator")
	ErrUnknownPin              = errors.New("unknown pin or wire reference")
	ErrAutoRouteLengthMismatch = errors.New("auto-route length mismatch")
	ErrOverconnectedEndpoint   = errors.New("overconnected endpoint")
)

// Endpoint addresses one pin of a connector or one wire of a cable.
// Pin is the canonical pin identifier, wire number, or "s" for a shield.
type Endpoint struct {
	Designator string `json:"designator"`
	Pin        string `json:"pin"`
}

// Edge is one resolved pin/wire-to-pin/wire connection.
type Edge struct {
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`
}

// Mate is a direct connector-to-connector mating declared with arrow
// syntax. Pin-level mates carry endpoints per pin; component-level mates
// leave the pins empty.
type Mate struct {
	From     Endpoint `json:"from"`
	To       Endpoint `json:"to"`
	PinLevel bool     `json:"pin_level"`
	Arrow    string   `json:"arrow"`
}

// Leg names a catalog entity and the pin/wire references it exposes to a
// group. An auto leg gives no references and adopts its neighbor's width
// positionally.
type Leg struct {
	Designator string
	Refs       []string
	Auto       bool
}

// Group is an ordered list of legs. Arrows[i], when non-empty, declares
// the transition between leg i and leg i+1 as a mate instead of a routed
// connection; its length is always len(Legs)-1.
type Group struct {
	Legs   []Leg
	Arrows []string
}

// Resolution is the outcome of expanding one group.
type Resolution struct {
	Edges []Edge
	Mates []Mate
}

var arrowRe = regexp.MustCompile(`^\s*<?(-+|=+)>?\s*$`)

// IsArrow reports whether s is a mate arrow: one or more `-` or `=`
// (not mixed), optionally headed with `<` and/or `>`.
func IsArrow(s string) bool {
	return arrowRe.MatchString(s)
}

// arrowPinLevel reports whether an arrow mates individual pins (`-` body)
// rather than whole components (`=` body).
func arrowPinLevel(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '-':
			return true
		case '=':
			return false
		}
	}
	return false
}
