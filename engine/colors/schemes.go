package colors

// Positional color schemes: each maps wire position (1-based) to a Code.
// Scheme identifiers follow the industry standard names.

var schemeDIN47100 = []Code{
	"WH", "BN", "GN", "YE", "GY", "PK", "BU", "RD", "BK", "VT",
	"GYPK", "RDBU", "WHGN", "BNGN", "WHYE", "YEBN", "WHGY", "GYBN", "WHPK", "PKBN",
	"WHBU", "BNBU", "WHRD", "BNRD", "WHBK", "BNBK", "GYGN", "YEGY", "PKGN", "YEPK",
	"GNBU", "YEBU", "GNRD", "YERD", "GNBK", "YEBK", "GYBU", "PKBU", "GYRD", "PKRD",
	"GYBK", "PKBK", "BUBK", "RDBK",
	"WHBNBK", "YEGNBK", "GYPKBK", "RDBUBK", "WHGNBK", "BNGNBK",
	"WHYEBK", "YEBNBK", "WHGYBK", "GYBNBK", "WHPKBK", "PKBNBK",
	"WHBUBK", "BNBUBK", "WHRDBK", "BNRDBK",
}

var schemeIEC60757 = []Code{
	"BN", "RD", "OG", "YE", "GN", "BU", "VT", "GY", "WH", "BK",
}

var schemeBW = []Code{"BK", "WH"}

// 25-pair telecom color code: five tip colors crossed with five ring colors.
var (
	telTip  = []string{"WH", "RD", "BK", "YE", "VT"}
	telRing = []string{"BU", "OG", "GN", "BN", "SL"}
)

func telScheme(ringFirst bool) []Code {
	out := make([]Code, 0, len(telTip)*len(telRing))
	for _, t := range telTip {
		for _, r := range telRing {
			if ringFirst {
				out = append(out, Code(r+t))
			} else {
				out = append(out, Code(t+r))
			}
		}
	}
	return out
}

var schemeT568A = []Code{"WHGN", "GN", "WHOG", "BU", "WHBU", "OG", "WHBN", "BN"}
var schemeT568B = []Code{"WHOG", "OG", "WHGN", "BU", "WHBU", "GN", "WHBN", "BN"}

func schemeTables() map[string][]Code {
	return map[string][]Code{
		"DIN":    schemeDIN47100,
		"IEC":    schemeIEC60757,
		"BW":     schemeBW,
		"TEL":    telScheme(false),
		"TELALT": telScheme(true),
		"T568A":  schemeT568A,
		"T568B":  schemeT568B,
	}
}
