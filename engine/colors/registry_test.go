package colors

import (
	"errors"
	"testing"
)

func TestScheme_Known(t *testing.T) {
	r := Default()
	cases := map[string]int{
		"DIN":    60,
		"IEC":    10,
		"BW":     2,
		"TEL":    25,
		"TELALT": 25,
		"T568A":  8,
		"T568B":  8,
	}
	for id, want := range cases {
		table, err := r.Scheme(id)
		if err != nil {
			t.Fatalf("Scheme(%s): %v", id, err)
		}
		if len(table) != want {
			t.Errorf("Scheme(%s) = %d entries, want %d", id, len(table), want)
		}
	}
}

func TestScheme_CaseInsensitive(t *testing.T) {
	r := Default()
	if _, err := r.Scheme("din"); err != nil {
		t.Errorf("lowercase scheme id should resolve, got %v", err)
	}
}

func TestScheme_Unknown(t *testing.T) {
	_, err := Default().Scheme("NEMA")
	if !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("expected ErrUnknownScheme, got %v", err)
	}
}

func TestSequence_ExactLength(t *testing.T) {
	r := Default()
	seq, err := r.Sequence("IEC", 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []Code{"BN", "RD", "OG", "YE"}
	for i, c := range want {
		if seq[i] != c {
			t.Errorf("seq[%d] = %s, want %s", i, seq[i], c)
		}
	}
}

func TestSequence_CyclesWithTag(t *testing.T) {
	r := Default()
	seq, err := r.Sequence("BW", 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []Code{"BK", "WH", "BK:2", "WH:2", "BK:3"}
	for i, c := range want {
		if seq[i] != c {
			t.Errorf("seq[%d] = %s, want %s", i, seq[i], c)
		}
	}
	// Every label must be unique even after cycling.
	seen := map[Code]bool{}
	for _, c := range seq {
		if seen[c] {
			t.Errorf("duplicate label %s in cycled sequence", c)
		}
		seen[c] = true
	}
}

func TestRender_Palettes(t *testing.T) {
	r := Default()
	cases := []struct {
		code Code
		p    Palette
		want string
	}{
		{"BK", PaletteFull, "black"},
		{"BK", PaletteHex, "#000000"},
		{"BK", PaletteGer, "sw"},
		{"WHGN", PaletteShort, "WHGN"},
		{"WHGN", PaletteFull, "white/green"},
		{"WHGN", PaletteHex, "#ffffff:#00ff00"},
		{"WHGN", PaletteGer, "ws/gn"},
		{"WH:2", PaletteShort, "WH:2"},
		{"WH:2", PaletteFull, "white"},
	}
	for _, tc := range cases {
		got, err := r.Render(tc.code, tc.p)
		if err != nil {
			t.Fatalf("Render(%s, %s): %v", tc.code, tc.p, err)
		}
		if got != tc.want {
			t.Errorf("Render(%s, %s) = %q, want %q", tc.code, tc.p, got, tc.want)
		}
	}
}

func TestRender_UnknownColor(t *testing.T) {
	_, err := Default().Render("XX", PaletteFull)
	if !errors.Is(err, ErrUnknownColor) {
		t.Errorf("expected ErrUnknownColor, got %v", err)
	}
	_, err = Default().Render("B", PaletteFull)
	if !errors.Is(err, ErrUnknownColor) {
		t.Errorf("expected ErrUnknownColor for odd-length code, got %v", err)
	}
}

func TestTranslate_RoundTrip(t *testing.T) {
	r := Default()
	for short := range baseColors {
		full, err := r.Translate(short, PaletteShort, PaletteFull)
		if err != nil {
			t.Fatalf("Translate(%s, short, full): %v", short, err)
		}
		back, err := r.Translate(full, PaletteFull, PaletteShort)
		if err != nil {
			t.Fatalf("Translate(%s, full, short): %v", full, err)
		}
		if back != short {
			t.Errorf("round trip %s -> %s -> %s", short, full, back)
		}
	}
}

func TestTranslate_GerRoundTrip(t *testing.T) {
	r := Default()
	ger, err := r.Translate("white/green", PaletteFull, PaletteGer)
	if err != nil {
		t.Fatal(err)
	}
	if ger != "ws/gn" {
		t.Errorf("got %q, want ws/gn", ger)
	}
	full, err := r.Translate(ger, PaletteGer, PaletteFull)
	if err != nil {
		t.Fatal(err)
	}
	if full != "white/green" {
		t.Errorf("got %q, want white/green", full)
	}
}

func TestTranslate_UnknownIdentifier(t *testing.T) {
	_, err := Default().Translate("chartreuse", PaletteFull, PaletteShort)
	if !errors.Is(err, ErrUnknownColor) {
		t.Errorf("expected ErrUnknownColor, got %v", err)
	}
}

func TestTranslate_UnknownPalette(t *testing.T) {
	_, err := Default().Translate("BK", Palette("pantone"), PaletteShort)
	if !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("expected ErrUnknownPalette, got %v", err)
	}
}

func TestHex_StripePattern(t *testing.T) {
	r := Default()
	hx, err := r.Hex("WHGN")
	if err != nil {
		t.Fatal(err)
	}
	if len(hx) != 3 || hx[0] != "#ffffff" || hx[1] != "#00ff00" || hx[2] != "#ffffff" {
		t.Errorf("two-band hex should be a:b:a stripe, got %v", hx)
	}
	hx, err = r.Hex("BK")
	if err != nil {
		t.Fatal(err)
	}
	if len(hx) != 1 {
		t.Errorf("single band should stay single, got %v", hx)
	}
}
