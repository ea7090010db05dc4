// Package match selects the best catalog offer for an extracted
// candidate: a tolerant soft match on product identity and category
// fields, then strict hard guards on the attributes a buyer spelled out.
package match

import (
	"strconv"
	"strings"

	"quote_bot/internal/extract"
	"quote_bot/internal/model"
)

// matchFields lists which fields participate in the comparison per
// catalog category (first path segment, lowercase).
var matchFields = map[string][]string{
	"смартфоны":         {"model", "storage", "color", "sim", "connectivity"},
	"smartphones":       {"model", "storage", "color", "sim", "connectivity"},
	"планшеты":          {"model", "screen_size", "storage", "color", "connectivity"},
	"умные часы":        {"model", "watch_size_mm", "band_type", "band_size", "connectivity", "color"},
	"приставки и игры":  {"model", "storage", "color"},
	"наушники":          {"model", "color"},
	"ноутбуки":          {"model", "ram", "storage", "chip"},
	"_default":          {"model", "color", "storage"},
}

// alwaysEqualFields must agree whenever either side fills them.
var alwaysEqualFields = []string{
	"band_size", "color", "connectivity", "ram", "sim", "storage",
}

// bothFilledFields are compared only when both sides fill them.
var bothFilledFields = []string{"band_color", "chip", "code"}

// softOptionalByCat: offer-side values that do not fail the match when
// the candidate leaves them blank (watch band details).
var softOptionalByCat = map[string]map[string]bool{
	"умные часы": {"band_type": true, "band_size": true, "band_color": true},
}

func fieldValue(it model.Item, f string) string {
	switch f {
	case "model":
		return it.Model
	case "storage":
		return it.Storage
	case "ram":
		if it.RAM == 0 {
			return ""
		}
		return strconv.Itoa(it.RAM)
	case "color":
		return it.Color
	case "sim":
		return it.SIM
	case "connectivity":
		return it.Connectivity
	case "chip":
		return it.Chip
	case "code":
		return it.Code
	case "watch_size_mm":
		return it.WatchSizeMM
	case "band_type":
		return it.BandType
	case "band_color":
		return it.BandColor
	case "band_size":
		return it.BandSize
	}
	return ""
}

func norm(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}

func pickCategory(cand, offer model.Item) string {
	oc := offer.Category()
	cc := cand.Category()
	if oc == "_default" && cc != "_default" {
		return cc
	}
	if oc != "" {
		return oc
	}
	return "_default"
}

func reasonFor(field string) string {
	switch field {
	case "model":
		return model.ReasonModelMismatch
	case "color":
		return model.ReasonColorMismatch
	case "storage":
		return model.ReasonStorageMismatch
	case "sim":
		return model.ReasonSIMMismatch
	}
	return field + "_mismatch"
}

// Soft reports whether the candidate and the offer describe the same
// product, with the category's tolerance rules. Region never participates
// here: it is a hard-guard concern. The empty reason means a match.
func (m *Matcher) Soft(cand model.Item, offer model.Item) (bool, string) {
	cat := pickCategory(cand, offer)
	softOptional := softOptionalByCat[cat]

	// A shared strong product code settles identity outright.
	if code := norm(fieldValue(offer, "code")); code != "" &&
		code == norm(fieldValue(cand, "code")) && len(code) > 4 {
		return true, ""
	}

	oModel := norm(offer.Model)
	cModel := norm(cand.Model)
	if (oModel != "" || cModel != "") && oModel != cModel {
		return false, model.ReasonModelMismatch
	}

	smartphone := cat == "смартфоны" || cat == "smartphones"
	tablet := cat == "планшеты"
	watch := cat == "умные часы"

	for _, f := range alwaysEqualFields {
		// Smartphone connectivity is offer-driven, handled below.
		if smartphone && f == "connectivity" {
			continue
		}
		if f == "color" {
			if !colorsMatch(cat, cand, offer) {
				return false, model.ReasonColorMismatch
			}
			continue
		}

		oV := norm(fieldValue(offer, f))
		cV := norm(fieldValue(cand, f))

		// RAM on phones/tablets, band size and connectivity on watches:
		// both sides must fill them before they count.
		if f == "ram" && (smartphone || tablet) && (oV == "" || cV == "") {
			continue
		}
		if watch && (f == "band_size" || f == "connectivity") && (oV == "" || cV == "") {
			continue
		}
		if softOptional[f] && oV != "" && cV == "" {
			continue
		}
		if (oV != "" || cV != "") && oV != cV {
			return false, reasonFor(f)
		}
	}

	for _, f := range bothFilledFields {
		var oV, cV string
		if f == "band_color" {
			oV = canonBandColor(offer.BandColor)
			cV = canonBandColor(cand.BandColor)
		} else {
			oV = norm(fieldValue(offer, f))
			cV = norm(fieldValue(cand, f))
		}
		if oV != "" && cV != "" && oV != cV {
			return false, reasonFor(f)
		}
	}

	fields, ok := matchFields[cat]
	if !ok {
		fields = matchFields["_default"]
	}
	for _, f := range fields {
		if f == "model" || f == "color" {
			continue
		}
		if contains(bothFilledFields, f) {
			continue
		}
		if contains(alwaysEqualFields, f) && !(smartphone && f == "connectivity") {
			continue
		}
		oV := norm(fieldValue(offer, f))
		if oV == "" {
			continue
		}
		cV := norm(fieldValue(cand, f))
		if softOptional[f] && cV == "" {
			continue
		}
		if oV != cV {
			return false, reasonFor(f)
		}
	}

	return true, ""
}

func canonBandColor(v string) string {
	return extract.CanonColor(v)
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
