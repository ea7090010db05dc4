package match

import (
	"log/slog"

	"quote_bot/internal/extract"
	"quote_bot/internal/model"
)

// Matcher scans the offer snapshot for the best quote for a candidate.
type Matcher struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Matcher {
	return &Matcher{log: log}
}

// HardGuards enforces strict equality on the attributes the buyer wrote
// out, in fixed order with the first failure reported: price, color,
// storage, SIM, region. Offer-side values the candidate left blank do not
// reject here. Color and storage are compared verbatim (case and space
// insensitive), not through synonym folding.
func HardGuards(cand model.Item, offer model.Offer) (bool, string) {
	if offer.Price <= 0 {
		return false, model.ReasonNoPrice
	}
	if c := norm(cand.Color); c != "" && c != norm(offer.Color) {
		return false, model.ReasonColorMismatch
	}
	if s := norm(cand.Storage); s != "" && s != norm(offer.Storage) {
		return false, model.ReasonStorageMismatch
	}
	if sim := extract.NormalizeSIM(cand.SIM); sim != "" && sim != extract.NormalizeSIM(offer.SIM) {
		return false, model.ReasonSIMMismatch
	}
	if r := norm(cand.Region); r != "" && r != norm(offer.Region) {
		return false, model.ReasonRegionMismatch
	}
	return true, ""
}

// Best returns the cheapest offer passing soft match and hard guards.
// Offers are taken in iteration order; an equal price never displaces an
// earlier winner. When nothing passes, the most frequent rejection
// reason is reported (first encountered wins ties); when no offers were
// attempted at all, the reason is no_match.
func (m *Matcher) Best(cand model.Item, offers []model.Offer) (*model.Offer, string) {
	if len(offers) == 0 {
		return nil, model.ReasonNoMatch
	}

	var best *model.Offer
	counts := map[string]int{}
	var order []string

	reject := func(reason string) {
		if counts[reason] == 0 {
			order = append(order, reason)
		}
		counts[reason]++
	}

	for i := range offers {
		offer := offers[i]
		if ok, reason := m.Soft(cand, offer.Item); !ok {
			reject(reason)
			continue
		}
		if ok, reason := HardGuards(cand, offer); !ok {
			reject(reason)
			continue
		}
		if best == nil || offer.Price < best.Price {
			o := offer
			best = &o
		}
	}

	if best != nil {
		return best, ""
	}

	top := model.ReasonNoMatch
	topCount := 0
	for _, r := range order {
		if counts[r] > topCount {
			top, topCount = r, counts[r]
		}
	}
	return nil, top
}
