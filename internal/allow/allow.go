// Package allow restricts auto-replies to operator-whitelisted catalog
// subtrees. The whitelist is opt-in: an empty spec passes everything.
package allow

import (
	"strings"

	"quote_bot/internal/model"
)

// Spec is a set of catalog path prefixes, each parsed from an "A|B|C"
// string. Segment comparison is case and space insensitive.
type Spec [][]string

// ParseSpec builds a Spec from "category|brand|series|model" strings,
// skipping blank entries.
func ParseSpec(entries []string) Spec {
	var out Spec
	for _, e := range entries {
		var segs []string
		for _, s := range strings.Split(e, "|") {
			if s = strings.TrimSpace(s); s != "" {
				segs = append(segs, s)
			}
		}
		if len(segs) > 0 {
			out = append(out, segs)
		}
	}
	return out
}

// Allowed reports whether the item's resolved path prefix-matches any
// spec entry, comparing up to the shorter of the two lengths.
func (sp Spec) Allowed(it model.Item) bool {
	if len(sp) == 0 {
		return true
	}
	for _, entry := range sp {
		if prefixMatch(it.Path, entry) {
			return true
		}
	}
	return false
}

// Filter keeps the candidates whose paths the spec allows.
func (sp Spec) Filter(items []model.Item) []model.Item {
	if len(sp) == 0 {
		return items
	}
	var out []model.Item
	for _, it := range items {
		if sp.Allowed(it) {
			out = append(out, it)
		}
	}
	return out
}

func prefixMatch(path, entry []string) bool {
	n := len(path)
	if len(entry) < n {
		n = len(entry)
	}
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if !segEqual(path[i], entry[i]) {
			return false
		}
	}
	return true
}

func segEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
