package match

import (
	"strings"

	"quote_bot/internal/extract"
	"quote_bot/internal/model"
)

// colorCompatGroups are equivalence classes of shade names a buyer and a
// catalog may use for the same physical color. Lowercase.
var colorCompatGroups = [][]string{
	{"black", "space black", "jet black", "graphite", "midnight", "charcoal"},
	{"white", "starlight", "silver", "light silver"},
	{"gray", "grey", "space gray", "space grey", "light gray", "light grey", "silver shadow"},
	{"blue", "deep blue", "navy", "sky blue", "icy blue", "ultramarine", "blue titanium", "silver blue"},
	{"green", "mint", "jade green", "dark green", "olive"},
	{"pink", "rose", "rose gold", "pink gold"},
	{"purple", "violet", "lavender"},
	{"red", "product red", "(product)red"},
	{"natural", "natural titanium", "titanium"},
	{"desert", "desert titanium"},
}

func colorsCompatible(c1, c2 string) bool {
	if c1 == "" || c2 == "" {
		return false
	}
	if c1 == c2 {
		return true
	}
	for _, g := range colorCompatGroups {
		in1, in2 := false, false
		for _, c := range g {
			if c == c1 {
				in1 = true
			}
			if c == c2 {
				in2 = true
			}
		}
		if in1 && in2 {
			return true
		}
	}
	return false
}

func normColorToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "-", " "))), " ")
}

func isJetBlack(s string) bool {
	return strings.ReplaceAll(normColorToken(s), " ", "") == "jetblack"
}

func isS25Ultra(it model.Item) bool {
	return strings.Contains(strings.ToLower(it.Model), "s25 ultra")
}

func isS25Family(it model.Item) bool {
	return strings.Contains(strings.ToLower(it.Model), "s25")
}

func isIcyBlue(s string) bool {
	return strings.ReplaceAll(normColorToken(s), " ", "") == "icyblue"
}

func isAppleWatch(it model.Item) bool {
	m := strings.ToLower(it.Model)
	return strings.Contains(m, "watch") || strings.HasPrefix(it.ModelKey, "aw")
}

// colorsMatch is the tolerant matcher-level color comparison: exact match
// first, then family canonicalization and compat groups. Three pairs stay
// deliberately distinct: Jet Black vs Black on the S25 Ultra, Navy vs Icy
// Blue on the S25 family, Starlight vs Silver on Apple Watch.
func colorsMatch(cat string, cand, offer model.Item) bool {
	c := normColorToken(cand.Color)
	o := normColorToken(offer.Color)

	if (c != "" || o != "") && (c == "" || o == "") {
		return false
	}
	if c == "" && o == "" {
		return true
	}
	if c == o {
		return true
	}

	if isS25Ultra(cand) && isS25Ultra(offer) {
		if (isJetBlack(c) && o == "black") || (c == "black" && isJetBlack(o)) {
			return false
		}
	}
	if isS25Family(cand) && isS25Family(offer) {
		if (isIcyBlue(c) && o == "navy") || (c == "navy" && isIcyBlue(o)) {
			return false
		}
	}
	if cat == "умные часы" && isAppleWatch(cand) && isAppleWatch(offer) {
		if (c == "starlight" && o == "silver") || (c == "silver" && o == "starlight") {
			return false
		}
	}

	cc := extract.CanonColor(c)
	oc := extract.CanonColor(o)
	if cc == "" || oc == "" {
		return false
	}
	if cc == oc {
		return true
	}
	return colorsCompatible(cc, oc)
}
