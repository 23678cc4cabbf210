package render

import (
	"context"
	"strings"
	"testing"

	"github.com/loomworks/loom/engine/bom"
	"github.com/loomworks/loom/engine/harness"
)

func describe(t *testing.T, doc string) *harness.GraphDescription {
	t.Helper()
	h, err := harness.Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := h.Describe()
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	return g
}

const renderDoc = `
connectors:
  X1:
    type: D-Sub
    pincount: 2
  X2:
    pincount: 2
cables:
  W1:
    wirecount: 2
    gauge: 0.25 mm2
    length: 0.2
    colors: [WH, BNGN]
connections:
  -
    - X1: [1, 2]
    - W1: [1, 2]
    - X2: [1, 2]
`

func TestDOT_Structure(t *testing.T) {
	out := DOT(describe(t, renderDoc))
	for _, want := range []string{
		"graph {",
		"rankdir=LR",
		"X1 [label=<",
		"W1 [label=<",
		`X1:p1r:e -- W1:w1l:w`,
		`W1:w2l:w -- X2:p2r:e`,
		"#895956:#00ff00:#895956", // BNGN stripe
		"D-Sub",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("DOT output must close the graph")
	}
}

func TestDOT_Deterministic(t *testing.T) {
	a := DOT(describe(t, renderDoc))
	b := DOT(describe(t, renderDoc))
	if a != b {
		t.Fatal("equal descriptions must render identically")
	}
}

func TestDOT_MatesDashed(t *testing.T) {
	out := DOT(describe(t, `
connectors:
  X1: {pincount: 1}
  X2: {pincount: 1}
connections:
  -
    - X1
    - "=>"
    - X2
`))
	if !strings.Contains(out, "X1 -- X2 [dir=both arrowhead=normal arrowtail=none style=dashed]") {
		t.Errorf("component mate not rendered:\n%s", out)
	}
}

func TestDOT_BundleDashedOutline(t *testing.T) {
	out := DOT(describe(t, `
cables:
  B1:
    category: bundle
    wirecount: 1
    colors: [RD]
`))
	if !strings.Contains(out, `style="filled,dashed"`) {
		t.Errorf("bundle outline not dashed:\n%s", out)
	}
}

func TestDOT_QuotesOddDesignators(t *testing.T) {
	out := DOT(describe(t, `
connectors:
  X-1: {pincount: 1}
`))
	if !strings.Contains(out, `"X-1" [label=<`) {
		t.Errorf("designator with dash must be quoted:\n%s", out)
	}
}

func TestBOMTSV(t *testing.T) {
	items := []bom.Item{
		{Description: "Connector, D-Sub, 9 pins", Qty: 2, Designators: []string{"X1", "X2"}, PartNumbers: map[string]string{"mpn": "DS-9"}},
		{Description: "Cable", Qty: 0.2, Unit: "m"},
	}
	got := string(BOMTSV(items))
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Id\tDescription\tQty\tUnit\tDesignators") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "1\tConnector, D-Sub, 9 pins\t2\t\tX1, X2\t\t\tDS-9\t\t" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2\tCable\t0.2\tm") {
		t.Errorf("row 2 = %q", lines[2])
	}
}
