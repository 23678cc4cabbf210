// Package export persists assembled harnesses into Neo4j so wiring can
// be queried across revisions. Writes are idempotent MERGE batches in a
// single transaction per harness.
package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/loomworks/loom/engine/harness"
)

// namespace scopes deterministic element ids so repeated exports of the
// same harness hit the same graph entities.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("loomworks.dev/harness"))

// Store writes harness graphs to Neo4j.
type Store struct {
	opener SessionOpener
}

// New creates a store on an open driver.
func New(driver neo4j.DriverWithContext) *Store {
	return NewWithOpener(driverOpener{driver: driver})
}

// NewWithOpener creates a store on a custom session opener.
func NewWithOpener(opener SessionOpener) *Store {
	return &Store{opener: opener}
}

// elementID derives a stable id for a harness-scoped element.
func elementID(parts ...string) string {
	key := ""
	for _, p := range parts {
		key += p + "\x00"
	}
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// SaveHarness writes the full harness graph under the given name,
// replacing the wiring of a previous export with the same name.
func (s *Store) SaveHarness(ctx context.Context, name string, h *harness.Harness) error {
	g, err := h.Describe()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	harnessID := elementID(name)
	_, err = sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		cypher := `MERGE (h:Harness {id: $id}) SET h.name = $name
		           WITH h
		           OPTIONAL MATCH (h)-[:HAS_COMPONENT]->(:Component)-[r:CONNECTS|MATES]-()
		           DELETE r`
		if _, err := tx.Run(ctx, cypher, map[string]any{"id": harnessID, "name": name}); err != nil {
			return nil, err
		}

		for _, n := range g.Nodes {
			cypher = `MERGE (c:Component {id: $id})
			          SET c += $props
			          WITH c
			          MATCH (h:Harness {id: $hid})
			          MERGE (h)-[:HAS_COMPONENT]->(c)`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":    elementID(name, n.ID),
				"hid":   harnessID,
				"props": nodeProps(n),
			}); err != nil {
				return nil, err
			}
		}

		for _, e := range g.Edges {
			cypher = `MATCH (a:Component {id: $from}), (b:Component {id: $to})
			          MERGE (a)-[r:CONNECTS {id: $id}]->(b)
			          SET r.from_pin = $fromPin, r.to_pin = $toPin`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":      elementID(name, "edge", e.From.Designator, e.From.Pin, e.To.Designator, e.To.Pin),
				"from":    elementID(name, e.From.Designator),
				"to":      elementID(name, e.To.Designator),
				"fromPin": e.From.Pin,
				"toPin":   e.To.Pin,
			}); err != nil {
				return nil, err
			}
		}

		for _, m := range g.Mates {
			cypher = `MATCH (a:Component {id: $from}), (b:Component {id: $to})
			          MERGE (a)-[r:MATES {id: $id}]->(b)
			          SET r.from_pin = $fromPin, r.to_pin = $toPin, r.arrow = $arrow`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":      elementID(name, "mate", m.From.Designator, m.From.Pin, m.To.Designator, m.To.Pin),
				"from":    elementID(name, m.From.Designator),
				"to":      elementID(name, m.To.Designator),
				"fromPin": m.From.Pin,
				"toPin":   m.To.Pin,
				"arrow":   m.Arrow,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// nodeProps flattens one graph node into Neo4j properties.
func nodeProps(n harness.Node) map[string]any {
	props := map[string]any{
		"designator": n.ID,
		"kind":       string(n.Kind),
	}
	put := func(k, v string) {
		if v != "" {
			props[k] = v
		}
	}
	put("type", n.Type)
	put("subtype", n.Subtype)
	put("gauge", n.Gauge)
	put("length", n.Length)
	put("color", n.Color)
	if n.PinCount > 0 {
		props["pincount"] = n.PinCount
	}
	if n.WireCount > 0 {
		props["wirecount"] = n.WireCount
	}
	for k, v := range n.PartNumbers {
		props["part_"+k] = v
	}
	return props
}

// Components returns the designators stored for a named harness, in
// designator order.
func (s *Store) Components(ctx context.Context, name string) ([]string, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.Run(ctx,
		`MATCH (:Harness {id: $id})-[:HAS_COMPONENT]->(c:Component)
		 RETURN c.designator AS designator ORDER BY designator`,
		map[string]any{"id": elementID(name)})
	if err != nil {
		return nil, err
	}
	var out []string
	for result.Next(ctx) {
		d, _, err := neo4j.GetRecordValue[string](result.Record(), "designator")
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, result.Err()
}
