package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loomworks/loom/engine/bom"
	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/document"
	"github.com/loomworks/loom/engine/harness"
)

type fakeSource struct {
	name  string
	info  PartInfo
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Lookup(_ context.Context, _ string) (PartInfo, error) {
	f.calls++
	return f.info, f.err
}

func connectorDoc(specs ...document.NamedConnector) *document.Document {
	return &document.Document{Connectors: specs}
}

func TestApply_FillsMissingOnly(t *testing.T) {
	src := &fakeSource{name: "fake", info: PartInfo{
		Manufacturer: "Molex",
		MPN:          "22-23-2021",
		Supplier:     "Fake",
		SPN:          "F-123",
	}}
	e := NewWithSources(nil, src)
	doc := connectorDoc(document.NamedConnector{Name: "X1", Spec: catalog.ConnectorSpec{
		PinCount:    2,
		PartNumbers: catalog.PartNumbers{PN: "KK-254-2", Manufacturer: "Original"},
	}})
	e.Apply(context.Background(), doc)
	got := doc.Connectors[0].Spec.PartNumbers
	if got.Manufacturer != "Original" {
		t.Errorf("existing field overwritten: %q", got.Manufacturer)
	}
	if got.MPN != "22-23-2021" || got.SPN != "F-123" {
		t.Errorf("missing fields not filled: %+v", got)
	}
}

func TestApply_SkipsComponentsWithoutPartNumber(t *testing.T) {
	src := &fakeSource{name: "fake", info: PartInfo{MPN: "X"}}
	e := NewWithSources(nil, src)
	e.Apply(context.Background(), connectorDoc(
		document.NamedConnector{Name: "X1", Spec: catalog.ConnectorSpec{PinCount: 1}},
		document.NamedConnector{Name: "X2", Spec: catalog.ConnectorSpec{PinCount: 1}},
	))
	if src.calls != 0 {
		t.Errorf("lookups = %d, want 0", src.calls)
	}
}

func TestApply_BestEffortOnFailure(t *testing.T) {
	broken := &fakeSource{name: "broken", err: errors.New("boom")}
	good := &fakeSource{name: "good", info: PartInfo{MPN: "M-1"}}
	e := NewWithSources(nil, broken, good)
	doc := connectorDoc(document.NamedConnector{Name: "X1", Spec: catalog.ConnectorSpec{
		PinCount:    1,
		PartNumbers: catalog.PartNumbers{PN: "P1"},
	}})
	e.Apply(context.Background(), doc)
	if doc.Connectors[0].Spec.MPN != "M-1" {
		t.Errorf("fallback source not used: %+v", doc.Connectors[0].Spec.PartNumbers)
	}
}

func TestApply_NoMatchLeavesComponent(t *testing.T) {
	src := &fakeSource{name: "fake", err: ErrNoMatch}
	e := NewWithSources(nil, src)
	doc := connectorDoc(document.NamedConnector{Name: "X1", Spec: catalog.ConnectorSpec{
		PinCount:    1,
		PartNumbers: catalog.PartNumbers{PN: "P1"},
	}})
	e.Apply(context.Background(), doc)
	want := catalog.PartNumbers{PN: "P1"}
	if doc.Connectors[0].Spec.PartNumbers != want {
		t.Errorf("component changed on no match: %+v", doc.Connectors[0].Spec.PartNumbers)
	}
}

func TestApply_FillsCableEntries(t *testing.T) {
	src := &fakeSource{name: "fake", info: PartInfo{Manufacturer: "Alpha", MPN: "AW-24"}}
	e := NewWithSources(nil, src)
	doc := &document.Document{Cables: []document.NamedCable{{Name: "W1", Spec: catalog.CableSpec{
		WireCount: 2,
		Colors:    []string{"RD", "BK"},
		PN:        catalog.StringOrList{"P1", "P2"},
		MPN:       catalog.StringOrList{"KEEP", ""},
	}}}}
	e.Apply(context.Background(), doc)
	spec := doc.Cables[0].Spec
	if spec.MPN[0] != "KEEP" {
		t.Errorf("existing per-wire field overwritten: %v", spec.MPN)
	}
	if spec.MPN[1] != "AW-24" || spec.Manufacturer[1] != "Alpha" {
		t.Errorf("per-wire fields not filled: mpn=%v manufacturer=%v", spec.MPN, spec.Manufacturer)
	}
}

// Enrichment runs before the catalog is built, so fetched fields must
// show up on graph nodes and participate in BOM merge identity.
func TestApply_ReachesGraphAndBOM(t *testing.T) {
	src := &fakeSource{name: "fake", info: PartInfo{Manufacturer: "Molex", MPN: "22-23-2021"}}
	e := NewWithSources(nil, src)

	doc, err := document.Parse([]byte(`
connectors:
  X1: {type: KK, pincount: 2, pn: KK-254-2}
  X2: {type: KK, pincount: 2, pn: KK-254-2, mpn: 22-23-2021, manufacturer: Molex}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e.Apply(context.Background(), doc)

	h, err := harness.Build(context.Background(), doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g, err := h.Describe()
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if g.Nodes[0].PartNumbers["mpn"] != "22-23-2021" {
		t.Errorf("graph node missing enriched mpn: %v", g.Nodes[0].PartNumbers)
	}

	items, err := bom.Aggregate(h)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("enriched connectors should merge into one line, got %d", len(items))
	}
	if items[0].Qty != 2 {
		t.Errorf("merged qty = %v, want 2", items[0].Qty)
	}
}

func TestEnricher_DisabledWithoutCredentials(t *testing.T) {
	e := New(Config{}, nil)
	if e.Enabled() {
		t.Fatal("no credentials should disable enrichment")
	}
}

func TestMouser_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search/partnumber" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("apiKey") != "key" {
			t.Errorf("apiKey = %q", r.URL.Query().Get("apiKey"))
		}
		w.Write([]byte(`{"SearchResults":{"Parts":[
			{"Manufacturer":"Molex","ManufacturerPartNumber":"22-23-2021","MouserPartNumber":"538-22-23-2021"}
		]}}`))
	}))
	defer srv.Close()

	m := NewMouser("key")
	m.baseURL = srv.URL
	info, err := m.Lookup(context.Background(), "22-23-2021")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.Supplier != "Mouser" || info.SPN != "538-22-23-2021" {
		t.Errorf("info = %+v", info)
	}
}

func TestMouser_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"SearchResults":{"Parts":[]}}`))
	}))
	defer srv.Close()

	m := NewMouser("key")
	m.baseURL = srv.URL
	_, err := m.Lookup(context.Background(), "nope")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestDigikey_TokenThenSearch(t *testing.T) {
	var tokens int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokens++
			w.Write([]byte(`{"access_token":"tok","expires_in":600}`))
		case "/products/v4/search/keyword":
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("auth = %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"Products":[{
				"ManufacturerProductNumber":"22-23-2021",
				"Manufacturer":{"Name":"Molex"},
				"ProductVariations":[{"DigiKeyProductNumber":"WM4200-ND"}]
			}]}`))
		default:
			t.Errorf("path = %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	d := NewDigikey("id", "secret")
	d.baseURL = srv.URL
	for i := 0; i < 2; i++ {
		info, err := d.Lookup(context.Background(), "22-23-2021")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if info.MPN != "22-23-2021" || info.SPN != "WM4200-ND" {
			t.Errorf("info = %+v", info)
		}
	}
	if tokens != 1 {
		t.Errorf("token requests = %d, want 1 (cached)", tokens)
	}
}
