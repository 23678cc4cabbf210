package connect

import (
	"fmt"

	"github.com/loomworks/loom/engine/catalog"
)

// Resolver expands connection groups against a catalog. It tracks
// endpoint usage across groups of one harness: an endpoint consumed by an
// earlier group may not be consumed again by a later one. Repeating a
// reference inside a single group is an explicit fan-out and is allowed.
type Resolver struct {
	cat  *catalog.Catalog
	used map[Endpoint]bool
}

// New creates a resolver over the given catalog.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{cat: cat, used: make(map[Endpoint]bool)}
}

// Resolve expands one group into explicit edges and mates. Either the
// whole group resolves, or an error is returned and no usage is recorded.
// Legs are walked in declaration order and edges keep that order; no
// reordering happens anywhere.
func (r *Resolver) Resolve(g Group) (Resolution, error) {
	if len(g.Legs) < 2 {
		return Resolution{}, ErrEmptyGroup
	}
	if len(g.Arrows) != len(g.Legs)-1 {
		return Resolution{}, fmt.Errorf("group has %d legs but %d transitions", len(g.Legs), len(g.Arrows))
	}

	refs, err := r.expandLegs(g)
	if err != nil {
		return Resolution{}, err
	}

	var res Resolution
	for i := 0; i+1 < len(g.Legs); i++ {
		from, to := refs[i], refs[i+1]
		if arrow := g.Arrows[i]; arrow != "" {
			mates, err := r.mateTransition(g.Legs[i], g.Legs[i+1], from, to, arrow)
			if err != nil {
				return Resolution{}, err
			}
			res.Mates = append(res.Mates, mates...)
			continue
		}
		if len(from) != len(to) {
			return Resolution{}, fmt.Errorf("%w: %s has %d references, %s has %d",
				ErrAutoRouteLengthMismatch, g.Legs[i].Designator, len(from),
				g.Legs[i+1].Designator, len(to))
		}
		for j := range from {
			res.Edges = append(res.Edges, Edge{
				From: Endpoint{Designator: g.Legs[i].Designator, Pin: from[j]},
				To:   Endpoint{Designator: g.Legs[i+1].Designator, Pin: to[j]},
			})
		}
	}

	if err := r.checkUsage(res); err != nil {
		return Resolution{}, err
	}
	r.commitUsage(res)
	return res, nil
}

// expandLegs validates each leg and returns its canonical reference list.
func (r *Resolver) expandLegs(g Group) ([][]string, error) {
	out := make([][]string, len(g.Legs))

	for i, leg := range g.Legs {
		if !r.cat.Has(leg.Designator) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDesignator, leg.Designator)
		}
		if leg.Auto {
			continue
		}
		canon, err := r.resolveRefs(leg)
		if err != nil {
			return nil, err
		}
		out[i] = canon
	}

	// Auto legs adopt the width of the nearest explicit leg, preferring
	// the one declared earlier. A group of only auto legs falls back to
	// each entity's own size.
	for i, leg := range g.Legs {
		if !leg.Auto {
			continue
		}
		width := -1
		for d := 1; d < len(g.Legs); d++ {
			if j := i - d; j >= 0 && !g.Legs[j].Auto {
				width = len(out[j])
				break
			}
			if j := i + d; j < len(g.Legs) && !g.Legs[j].Auto {
				width = len(out[j])
				break
			}
		}
		if width < 0 {
			width = r.entitySize(leg.Designator)
		}
		canon, err := r.firstRefs(leg.Designator, width)
		if err != nil {
			return nil, err
		}
		out[i] = canon
	}
	return out, nil
}

// resolveRefs maps a leg's references to canonical pin/wire identifiers.
func (r *Resolver) resolveRefs(leg Leg) ([]string, error) {
	canon := make([]string, len(leg.Refs))
	if conn, ok := r.cat.Connector(leg.Designator); ok {
		for i, ref := range leg.Refs {
			switch {
			case conn.HasPin(ref):
				canon[i] = ref
			default:
				pin, ok := conn.PinByLabel(ref)
				if !ok {
					return nil, fmt.Errorf("%w: %s:%s", ErrUnknownPin, leg.Designator, ref)
				}
				canon[i] = pin
			}
		}
		return canon, nil
	}
	cab, _ := r.cat.Cable(leg.Designator)
	for i, ref := range leg.Refs {
		wire, ok := cab.ResolveWire(ref)
		if !ok {
			return nil, fmt.Errorf("%w: %s:%s", ErrUnknownPin, leg.Designator, ref)
		}
		canon[i] = wire
	}
	return canon, nil
}

// firstRefs returns the first n pins or wires of an entity, the positional
// expansion of an auto leg.
func (r *Resolver) firstRefs(designator string, n int) ([]string, error) {
	if conn, ok := r.cat.Connector(designator); ok {
		if n > conn.PinCount {
			return nil, fmt.Errorf("%w: %s has %d pins, auto-route needs %d",
				ErrAutoRouteLengthMismatch, designator, conn.PinCount, n)
		}
		return conn.Pins[:n], nil
	}
	cab, _ := r.cat.Cable(designator)
	if n > cab.WireCount {
		return nil, fmt.Errorf("%w: %s has %d wires, auto-route needs %d",
			ErrAutoRouteLengthMismatch, designator, cab.WireCount, n)
	}
	refs := make([]string, n)
	for i := range refs {
		refs[i] = cab.WireID(i + 1)
	}
	return refs, nil
}

func (r *Resolver) entitySize(designator string) int {
	if conn, ok := r.cat.Connector(designator); ok {
		return conn.PinCount
	}
	cab, _ := r.cat.Cable(designator)
	return cab.WireCount
}

// mateTransition produces mates for an arrow transition. Both sides must
// be connectors.
func (r *Resolver) mateTransition(a, b Leg, from, to []string, arrow string) ([]Mate, error) {
	if _, ok := r.cat.Connector(a.Designator); !ok {
		return nil, fmt.Errorf("%w: mate %q is not a connector", ErrUnknownDesignator, a.Designator)
	}
	if _, ok := r.cat.Connector(b.Designator); !ok {
		return nil, fmt.Errorf("%w: mate %q is not a connector", ErrUnknownDesignator, b.Designator)
	}
	if !arrowPinLevel(arrow) {
		return []Mate{{
			From:  Endpoint{Designator: a.Designator},
			To:    Endpoint{Designator: b.Designator},
			Arrow: arrow,
		}}, nil
	}
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: %s has %d references, %s has %d",
			ErrAutoRouteLengthMismatch, a.Designator, len(from), b.Designator, len(to))
	}
	mates := make([]Mate, len(from))
	for j := range from {
		mates[j] = Mate{
			From:     Endpoint{Designator: a.Designator, Pin: from[j]},
			To:       Endpoint{Designator: b.Designator, Pin: to[j]},
			PinLevel: true,
			Arrow:    arrow,
		}
	}
	return mates, nil
}

// checkUsage rejects endpoints already consumed by an earlier group.
func (r *Resolver) checkUsage(res Resolution) error {
	for _, ep := range resolutionEndpoints(res) {
		if r.used[ep] {
			return fmt.Errorf("%w: %s:%s", ErrOverconnectedEndpoint, ep.Designator, ep.Pin)
		}
	}
	return nil
}

func (r *Resolver) commitUsage(res Resolution) {
	for _, ep := range resolutionEndpoints(res) {
		r.used[ep] = true
	}
}

func resolutionEndpoints(res Resolution) []Endpoint {
	var eps []Endpoint
	for _, e := range res.Edges {
		eps = append(eps, e.From, e.To)
	}
	for _, m := range res.Mates {
		if m.PinLevel {
			eps = append(eps, m.From, m.To)
		}
	}
	return eps
}

// Terminations counts the wire endpoints of a cable in the resolved
// edges, for BOM quantity multipliers.
func Terminations(edges []Edge, designator string) int {
	n := 0
	for _, e := range edges {
		if e.From.Designator == designator {
			n++
		}
		if e.To.Designator == designator {
			n++
		}
	}
	return n
}

// Populated counts the distinct connected pins of a connector.
func Populated(edges []Edge, mates []Mate, designator string) int {
	pins := make(map[string]bool)
	for _, e := range edges {
		if e.From.Designator == designator {
			pins[e.From.Pin] = true
		}
		if e.To.Designator == designator {
			pins[e.To.Pin] = true
		}
	}
	for _, m := range mates {
		if !m.PinLevel {
			continue
		}
		if m.From.Designator == designator {
			pins[m.From.Pin] = true
		}
		if m.To.Designator == designator {
			pins[m.To.Pin] = true
		}
	}
	return len(pins)
}
