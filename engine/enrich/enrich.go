// Package enrich fills missing part metadata on document components from
// supplier catalogs. It runs on the parsed document before the catalog is
// built, so fetched fields reach graph nodes and BOM identity keys alike.
// Enrichment is best-effort: lookups that fail or find nothing leave the
// component untouched, and fields already present always win.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/document"
	"github.com/loomworks/loom/pkg/resilience"
)

// ErrNoMatch reports that a supplier catalog has no entry for the part.
var ErrNoMatch = errors.New("no matching part")

// PartInfo is the supplier metadata of one part.
type PartInfo struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	MPN          string `json:"mpn,omitempty"`
	Supplier     string `json:"supplier,omitempty"`
	SPN          string `json:"spn,omitempty"`
}

// Source looks parts up in one supplier catalog.
type Source interface {
	Name() string
	Lookup(ctx context.Context, partNumber string) (PartInfo, error)
}

// Config holds supplier credentials. Absent credentials disable the
// supplier without failing anything.
type Config struct {
	DigikeyClientID     string
	DigikeyClientSecret string
	MouserAPIKey        string
}

// FromEnv reads supplier credentials from the environment.
func FromEnv() Config {
	return Config{
		DigikeyClientID:     os.Getenv("DIGIKEY_CLIENT_ID"),
		DigikeyClientSecret: os.Getenv("DIGIKEY_CLIENT_SECRET"),
		MouserAPIKey:        os.Getenv("MOUSER_API_KEY"),
	}
}

// Enricher runs document components through the configured supplier
// sources with shared rate limiting and a circuit breaker per run.
type Enricher struct {
	sources []Source
	limiter *rate.Limiter
	breaker *resilience.Breaker
	log     *slog.Logger
}

// New builds an enricher for the suppliers cfg has credentials for.
func New(cfg Config, log *slog.Logger) *Enricher {
	if log == nil {
		log = slog.Default()
	}
	var sources []Source
	if cfg.DigikeyClientID != "" && cfg.DigikeyClientSecret != "" {
		sources = append(sources, NewDigikey(cfg.DigikeyClientID, cfg.DigikeyClientSecret))
	}
	if cfg.MouserAPIKey != "" {
		sources = append(sources, NewMouser(cfg.MouserAPIKey))
	}
	return NewWithSources(log, sources...)
}

// NewWithSources builds an enricher over explicit sources.
func NewWithSources(log *slog.Logger, sources ...Source) *Enricher {
	if log == nil {
		log = slog.Default()
	}
	return &Enricher{
		sources: sources,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		log:     log,
	}
}

// Enabled reports whether any supplier is configured.
func (e *Enricher) Enabled() bool { return len(e.sources) > 0 }

// Apply fills missing part fields on every component of the document
// that carries a part number. The document is modified in place.
func (e *Enricher) Apply(ctx context.Context, doc *document.Document) {
	if !e.Enabled() {
		return
	}
	for i := range doc.Connectors {
		spec := &doc.Connectors[i].Spec
		e.fill(ctx, &spec.PartNumbers)
		for j := range spec.AdditionalComponents {
			e.fill(ctx, &spec.AdditionalComponents[j].PartNumbers)
		}
	}
	for i := range doc.Cables {
		spec := &doc.Cables[i].Spec
		e.fillCable(ctx, spec)
		for j := range spec.AdditionalComponents {
			e.fill(ctx, &spec.AdditionalComponents[j].PartNumbers)
		}
	}
	for i := range doc.BOMItems {
		e.fill(ctx, &doc.BOMItems[i].PartNumbers)
	}
}

// fill resolves one part-number record in place.
func (e *Enricher) fill(ctx context.Context, p *catalog.PartNumbers) {
	if p.PN == "" || complete(*p) {
		return
	}
	info, src, err := e.lookup(ctx, p.PN)
	if err != nil {
		if !errors.Is(err, ErrNoMatch) {
			e.log.WarnContext(ctx, "part lookup failed", "pn", p.PN, "error", err)
		}
		return
	}
	merge(p, info)
	e.log.DebugContext(ctx, "part enriched", "pn", p.PN, "source", src)
}

// fillCable resolves the per-entry part lists of a cable. Lists stay
// untouched when their lengths disagree with pn; empty lists grow to
// match it only when a lookup actually fills something.
func (e *Enricher) fillCable(ctx context.Context, spec *catalog.CableSpec) {
	n := len(spec.PN)
	if n == 0 {
		return
	}
	for _, l := range []catalog.StringOrList{spec.Manufacturer, spec.MPN, spec.Supplier, spec.SPN} {
		if len(l) != 0 && len(l) != n {
			return
		}
	}
	at := func(l catalog.StringOrList, i int) string {
		if len(l) == 0 {
			return ""
		}
		return l[i]
	}
	grow := func(l catalog.StringOrList) catalog.StringOrList {
		if len(l) == 0 {
			return make(catalog.StringOrList, n)
		}
		return l
	}
	for i, pn := range spec.PN {
		p := catalog.PartNumbers{
			PN:           pn,
			Manufacturer: at(spec.Manufacturer, i),
			MPN:          at(spec.MPN, i),
			Supplier:     at(spec.Supplier, i),
			SPN:          at(spec.SPN, i),
		}
		before := p
		e.fill(ctx, &p)
		if p == before {
			continue
		}
		spec.Manufacturer = grow(spec.Manufacturer)
		spec.MPN = grow(spec.MPN)
		spec.Supplier = grow(spec.Supplier)
		spec.SPN = grow(spec.SPN)
		spec.Manufacturer[i] = p.Manufacturer
		spec.MPN[i] = p.MPN
		spec.Supplier[i] = p.Supplier
		spec.SPN[i] = p.SPN
	}
}

// lookup tries each source in order until one matches.
func (e *Enricher) lookup(ctx context.Context, pn string) (PartInfo, string, error) {
	var lastErr error = ErrNoMatch
	for _, src := range e.sources {
		if err := e.limiter.Wait(ctx); err != nil {
			return PartInfo{}, "", err
		}
		var info PartInfo
		err := e.breaker.Call(ctx, func(ctx context.Context) error {
			var err error
			info, err = src.Lookup(ctx, pn)
			return err
		})
		if err == nil {
			return info, src.Name(), nil
		}
		lastErr = err
	}
	return PartInfo{}, "", lastErr
}

// merge copies supplier fields into the record without overwriting
// anything.
func merge(p *catalog.PartNumbers, info PartInfo) {
	put := func(dst *string, v string) {
		if v != "" && *dst == "" {
			*dst = v
		}
	}
	put(&p.Manufacturer, info.Manufacturer)
	put(&p.MPN, info.MPN)
	put(&p.Supplier, info.Supplier)
	put(&p.SPN, info.SPN)
}

func complete(p catalog.PartNumbers) bool {
	return p.Manufacturer != "" && p.MPN != "" && p.Supplier != "" && p.SPN != ""
}
