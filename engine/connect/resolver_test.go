package connect

import (
	"errors"
	"testing"

	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/colors"
)

// threeWire builds the X1 -- W1 -- X2 fixture used across tests.
func threeWire(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New(colors.Default())
	if _, err := cat.AddConnector("X1", catalog.ConnectorSpec{PinCount: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddConnector("X2", catalog.ConnectorSpec{PinCount: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddCable("W1", catalog.CableSpec{WireCount: 3}); err != nil {
		t.Fatal(err)
	}
	return cat
}

func explicitLeg(d string, refs ...string) Leg { return Leg{Designator: d, Refs: refs} }
func autoLeg(d string) Leg                     { return Leg{Designator: d, Auto: true} }

func TestResolve_PathNotFan(t *testing.T) {
	r := New(threeWire(t))
	res, err := r.Resolve(Group{
		Legs: []Leg{
			explicitLeg("X1", "1", "2", "3"),
			explicitLeg("W1", "1", "2", "3"),
			explicitLeg("X2", "1", "3", "2"),
		},
		Arrows: []string{"", ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	// A 3-leg group of length-3 lists is a path of 2x3 edges, not 9.
	want := []Edge{
		{Endpoint{"X1", "1"}, Endpoint{"W1", "1"}},
		{Endpoint{"X1", "2"}, Endpoint{"W1", "2"}},
		{Endpoint{"X1", "3"}, Endpoint{"W1", "3"}},
		{Endpoint{"W1", "1"}, Endpoint{"X2", "1"}},
		{Endpoint{"W1", "2"}, Endpoint{"X2", "3"}},
		{Endpoint{"W1", "3"}, Endpoint{"X2", "2"}},
	}
	if len(res.Edges) != len(want) {
		t.Fatalf("got %d edges, want %d: %v", len(res.Edges), len(want), res.Edges)
	}
	for i := range want {
		if res.Edges[i] != want[i] {
			t.Errorf("edge[%d] = %v, want %v", i, res.Edges[i], want[i])
		}
	}
}

func TestResolve_AutoRoute(t *testing.T) {
	r := New(threeWire(t))
	res, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1", "2", "3"), autoLeg("W1"), autoLeg("X2")},
		Arrows: []string{"", ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Edges) != 6 {
		t.Fatalf("got %d edges, want 6", len(res.Edges))
	}
	if res.Edges[3] != (Edge{Endpoint{"W1", "1"}, Endpoint{"X2", "1"}}) {
		t.Errorf("auto-routed edge wrong: %v", res.Edges[3])
	}
}

func TestResolve_AutoRouteLengthMismatch(t *testing.T) {
	cat := threeWire(t)
	if _, err := cat.AddCable("W2", catalog.CableSpec{WireCount: 2}); err != nil {
		t.Fatal(err)
	}
	r := New(cat)
	res, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1", "2", "3"), autoLeg("W2")},
		Arrows: []string{""},
	})
	if !errors.Is(err, ErrAutoRouteLengthMismatch) {
		t.Fatalf("expected ErrAutoRouteLengthMismatch, got %v", err)
	}
	if len(res.Edges) != 0 {
		t.Error("failed resolution must produce zero edges")
	}
}

func TestResolve_ExplicitLengthMismatch(t *testing.T) {
	r := New(threeWire(t))
	_, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1", "2"), explicitLeg("W1", "1", "2", "3")},
		Arrows: []string{""},
	})
	if !errors.Is(err, ErrAutoRouteLengthMismatch) {
		t.Errorf("expected ErrAutoRouteLengthMismatch, got %v", err)
	}
}

func TestResolve_UnknownDesignator(t *testing.T) {
	r := New(threeWire(t))
	_, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1"), explicitLeg("W9", "1")},
		Arrows: []string{""},
	})
	if !errors.Is(err, ErrUnknownDesignator) {
		t.Errorf("expected ErrUnknownDesignator, got %v", err)
	}
}

func TestResolve_UnknownPin(t *testing.T) {
	r := New(threeWire(t))
	_, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "7"), explicitLeg("W1", "1")},
		Arrows: []string{""},
	})
	if !errors.Is(err, ErrUnknownPin) {
		t.Errorf("expected ErrUnknownPin, got %v", err)
	}
}

func TestResolve_PinLabelsAndWireLabels(t *testing.T) {
	cat := catalog.New(colors.Default())
	cat.AddConnector("X1", catalog.ConnectorSpec{
		PinCount:  2,
		PinLabels: catalog.RefList{"GND", "VCC"},
	})
	cat.AddCable("W1", catalog.CableSpec{
		WireCount:  2,
		WireLabels: catalog.RefList{"black", "red"},
	})
	r := New(cat)
	res, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "VCC", "GND"), explicitLeg("W1", "red", "black")},
		Arrows: []string{""},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []Edge{
		{Endpoint{"X1", "2"}, Endpoint{"W1", "2"}},
		{Endpoint{"X1", "1"}, Endpoint{"W1", "1"}},
	}
	for i := range want {
		if res.Edges[i] != want[i] {
			t.Errorf("edge[%d] = %v, want %v", i, res.Edges[i], want[i])
		}
	}
}

func TestResolve_ShieldReference(t *testing.T) {
	cat := catalog.New(colors.Default())
	cat.AddConnector("X1", catalog.ConnectorSpec{PinCount: 1})
	cat.AddCable("W1", catalog.CableSpec{WireCount: 2, Shield: catalog.Shield{Present: true}})
	r := New(cat)
	res, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1"), explicitLeg("W1", "s")},
		Arrows: []string{""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Edges[0].To != (Endpoint{"W1", "s"}) {
		t.Errorf("shield edge = %v", res.Edges[0])
	}
}

func TestResolve_OverconnectedAcrossGroups(t *testing.T) {
	r := New(threeWire(t))
	_, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1"), explicitLeg("W1", "1")},
		Arrows: []string{""},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1"), explicitLeg("W1", "2")},
		Arrows: []string{""},
	})
	if !errors.Is(err, ErrOverconnectedEndpoint) {
		t.Errorf("expected ErrOverconnectedEndpoint, got %v", err)
	}
}

func TestResolve_ExplicitFanoutWithinGroup(t *testing.T) {
	cat := catalog.New(colors.Default())
	cat.AddConnector("X1", catalog.ConnectorSpec{PinCount: 1})
	cat.AddCable("W1", catalog.CableSpec{WireCount: 2})
	r := New(cat)
	// Listing X1:1 twice in one leg is an explicit fan-out.
	res, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1", "1"), explicitLeg("W1", "1", "2")},
		Arrows: []string{""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Edges) != 2 {
		t.Errorf("got %d edges, want 2", len(res.Edges))
	}
}

func TestResolve_FailedGroupLeavesNoUsage(t *testing.T) {
	r := New(threeWire(t))
	// First attempt fails on the second transition; X1:1 must stay free.
	_, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1"), explicitLeg("W1", "1"), explicitLeg("X2", "9")},
		Arrows: []string{"", ""},
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if _, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1"), explicitLeg("W1", "1")},
		Arrows: []string{""},
	}); err != nil {
		t.Errorf("endpoint from failed group should be reusable, got %v", err)
	}
}

func TestResolve_PinMate(t *testing.T) {
	r := New(threeWire(t))
	res, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1", "2"), explicitLeg("X2", "1", "2")},
		Arrows: []string{"<->"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Edges) != 0 || len(res.Mates) != 2 {
		t.Fatalf("got %d edges, %d mates; want 0, 2", len(res.Edges), len(res.Mates))
	}
	if !res.Mates[0].PinLevel || res.Mates[0].From != (Endpoint{"X1", "1"}) {
		t.Errorf("mate[0] = %+v", res.Mates[0])
	}
}

func TestResolve_ComponentMate(t *testing.T) {
	r := New(threeWire(t))
	res, err := r.Resolve(Group{
		Legs:   []Leg{autoLeg("X1"), autoLeg("X2")},
		Arrows: []string{"<=>"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Mates) != 1 || res.Mates[0].PinLevel {
		t.Fatalf("want one component-level mate, got %+v", res.Mates)
	}
}

func TestResolve_MateRequiresConnectors(t *testing.T) {
	r := New(threeWire(t))
	_, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1"), explicitLeg("W1", "1")},
		Arrows: []string{"-->"},
	})
	if !errors.Is(err, ErrUnknownDesignator) {
		t.Errorf("expected error mating a cable, got %v", err)
	}
}

func TestResolve_TooFewLegs(t *testing.T) {
	r := New(threeWire(t))
	_, err := r.Resolve(Group{Legs: []Leg{explicitLeg("X1", "1")}})
	if !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("expected ErrEmptyGroup, got %v", err)
	}
}

func TestIsArrow(t *testing.T) {
	valid := []string{"<-", "--", "->", "<->", "<==", "==", "==>", "<=>", "-"}
	for _, s := range valid {
		if !IsArrow(s) {
			t.Errorf("IsArrow(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "<>", "-=", "=-", "a->", "< -"}
	for _, s := range invalid {
		if IsArrow(s) {
			t.Errorf("IsArrow(%q) = true, want false", s)
		}
	}
}

func TestTerminationsAndPopulated(t *testing.T) {
	r := New(threeWire(t))
	res, err := r.Resolve(Group{
		Legs:   []Leg{explicitLeg("X1", "1", "2"), explicitLeg("W1", "1", "2"), explicitLeg("X2", "1", "2")},
		Arrows: []string{"", ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := Terminations(res.Edges, "W1"); n != 4 {
		t.Errorf("Terminations(W1) = %d, want 4", n)
	}
	if n := Populated(res.Edges, res.Mates, "X1"); n != 2 {
		t.Errorf("Populated(X1) = %d, want 2", n)
	}
}
