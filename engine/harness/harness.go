// Package harness assembles a parsed document into a fully resolved
// harness: a validated component catalog plus the expanded pin-level
// connection set. Assembly runs as a staged pipeline so each phase is
// traced and logged independently.
package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/connect"
	"github.com/loomworks/loom/engine/document"
	"github.com/loomworks/loom/pkg/fn"
)

// Harness is a fully assembled wiring harness.
type Harness struct {
	Catalog  *catalog.Catalog
	Edges    []connect.Edge
	Mates    []connect.Mate
	Metadata []document.Field
	Options  document.Options
	BOMItems []document.BOMItem
}

// state carries the partially assembled harness between stages.
type state struct {
	doc *document.Document
	cat *catalog.Catalog
	res connect.Resolution
}

// BuildCatalog validates every declared connector and cable into the
// component catalog, in declaration order.
var BuildCatalog fn.Stage[*state, *state] = func(_ context.Context, s *state) fn.Result[*state] {
	s.cat = catalog.New(nil)
	for _, c := range s.doc.Connectors {
		if _, err := s.cat.AddConnector(c.Name, c.Spec); err != nil {
			return fn.Err[*state](err)
		}
	}
	for _, c := range s.doc.Cables {
		if _, err := s.cat.AddCable(c.Name, c.Spec); err != nil {
			return fn.Err[*state](err)
		}
	}
	return fn.Ok(s)
}

// ResolveConnections expands every connection group against the catalog.
var ResolveConnections fn.Stage[*state, *state] = func(_ context.Context, s *state) fn.Result[*state] {
	r := connect.New(s.cat)
	for i, g := range s.doc.Groups {
		res, err := r.Resolve(g)
		if err != nil {
			return fn.Err[*state](fmt.Errorf("connection group %d: %w", i+1, err))
		}
		s.res.Edges = append(s.res.Edges, res.Edges...)
		s.res.Mates = append(s.res.Mates, res.Mates...)
	}
	return fn.Ok(s)
}

// Freeze turns the assembled state into an immutable Harness.
var Freeze fn.Stage[*state, *Harness] = func(_ context.Context, s *state) fn.Result[*Harness] {
	return fn.Ok(&Harness{
		Catalog:  s.cat,
		Edges:    s.res.Edges,
		Mates:    s.res.Mates,
		Metadata: s.doc.Metadata,
		Options:  s.doc.Options,
		BOMItems: s.doc.BOMItems,
	})
}

// loggedTap logs stage entry with assembly progress counters.
func loggedTap(name string, log *slog.Logger) fn.Stage[*state, *state] {
	return fn.TapStage(func(ctx context.Context, s *state) {
		attrs := []any{"stage", name}
		if s.cat != nil {
			attrs = append(attrs, "components", s.cat.Len())
		}
		attrs = append(attrs, "edges", len(s.res.Edges), "mates", len(s.res.Mates))
		log.InfoContext(ctx, "harness assembly", attrs...)
	})
}

// NewPipeline builds the assembly pipeline with per-stage tracing.
func NewPipeline(log *slog.Logger) fn.Stage[*document.Document, *Harness] {
	if log == nil {
		log = slog.Default()
	}
	start := fn.MapStage(func(doc *document.Document) *state { return &state{doc: doc} })
	built := fn.Then(start, fn.TracedStage("harness.catalog", BuildCatalog))
	resolved := fn.Then(built, fn.Then(loggedTap("resolve", log), fn.TracedStage("harness.resolve", ResolveConnections)))
	frozen := fn.Then(resolved, fn.Then(loggedTap("freeze", log), Freeze))
	return frozen
}

// Build assembles a harness from a parsed document.
func Build(ctx context.Context, doc *document.Document) (*Harness, error) {
	return NewPipeline(slog.Default())(ctx, doc).Unwrap()
}

// Parse is a convenience that parses and assembles in one step.
func Parse(ctx context.Context, data []byte) (*Harness, error) {
	doc, err := document.Parse(data)
	if err != nil {
		return nil, err
	}
	return Build(ctx, doc)
}

// Terminations counts edges ending on any wire of the given cable.
func (h *Harness) Terminations(designator string) int {
	return connect.Terminations(h.Edges, designator)
}

// Populated counts distinct connected pins of the given connector.
func (h *Harness) Populated(designator string) int {
	return connect.Populated(h.Edges, h.Mates, designator)
}

// connected reports whether a specific endpoint appears in any edge or
// pin-level mate.
func (h *Harness) connected(designator, pin string) bool {
	for _, e := range h.Edges {
		if (e.From.Designator == designator && e.From.Pin == pin) ||
			(e.To.Designator == designator && e.To.Pin == pin) {
			return true
		}
	}
	for _, m := range h.Mates {
		if !m.PinLevel {
			continue
		}
		if (m.From.Designator == designator && m.From.Pin == pin) ||
			(m.To.Designator == designator && m.To.Pin == pin) {
			return true
		}
	}
	return false
}
