// Package classify implements the inbound message classification cascade.
//
// Messages are labeled product, spam or silent by a fixed-priority rule
// chain. Cheap intent and price-list heuristics short-circuit before the
// expensive extraction probe; ambiguous text is biased toward spam, since
// a missed buyer costs less than noise in the reply pipeline.
package classify

import (
	"regexp"
	"strings"

	"quote_bot/internal/model"
	"quote_bot/internal/textnorm"
)

// ProbeFunc reports whether the structured extractor yields at least one
// item for the given raw text. Used as the terminal fallback rule.
type ProbeFunc func(text string) bool

// wordAlt builds a case-insensitive alternation matched on letter/digit
// boundaries. RE2's \b is ASCII-only, which silently breaks Cyrillic
// word matching, so boundaries are spelled out.
func wordAlt(alts ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(alts, "|") + `)(?:$|[^\p{L}\p{N}])`)
}

// num matches a price-like number: grouped thousands ("52 000", "1.299")
// or a plain run of three or more digits, with an optional decimal tail.
const num = `(?:\d{1,3}(?:[ .\x{00A0}]\d{3})+|\d{3,})(?:[.,]\d+)?`

var (
	sellingRe = wordAlt("продам", "продаю", "продажа", "sell", "selling")
	buyRe     = wordAlt(
		"куплю", "ищу", "нужен", "нужна", "нужно", "надо", "возьму",
		"подскажите", "предложите", "рассматриваю", "рассмотрю",
		"buy", `looking\s*for`, "need", "lf", "wtb",
	)
	reserveRe   = wordAlt("бронь", "заберу", "беру", "взял")
	jobRe       = wordAlt("подработка", "подработки", "вакансия", "вакансии", "работа", "работы", "работу", "заработать", "заработок", "доход")
	cryptoRe    = wordAlt(`u[.\s_-]*s[.\s_-]*d[.\s_-]*t`, "btc", `bit\s*coin`, "биткоин", "crypto", "крипта", "крипту", "крипты")
	broadcastRe = wordAlt("рассылка", "рассылки", "broadcast")
	paymentRe   = wordAlt("id", "паспорт", `photo\s*id`, "документ", "оплата", "оплату", "usd", "доллар", "доллара", "долларов")

	linkRe  = regexp.MustCompile(`(?i)(https?://|t\.me/|@\w+)`)
	httpRe  = regexp.MustCompile(`(?i)https?://`)
	priceRe = regexp.MustCompile(`(?i)(?:\$?\s*\d{1,3}(?:[ \x{00A0}]?\d{3})+(?:[.,]\d+)?\s*(?:₽|руб|р\.?|rub|usd|\$))|(?:\$\s*\d+(?:[.,]\d+)?\b)`)

	arrowPriceRe    = regexp.MustCompile(`(?:->|:)\s*` + num + `(?:[^\n\d]{0,20})?$`)
	bareTailPriceRe = regexp.MustCompile(`\b\d{4,}(?:[.,]\d+)?\s*$`)
	midlinePriceRe  = regexp.MustCompile(`(?:^|\s)(?:[—–-]|:)\s*` + num + `(?:\s|$)`)
	priceListLineRe = regexp.MustCompile(`(?:[—–-]|->|:)\s*` + num + `(?:[^\n\d]{0,20})?$`)

	simTokenRe = regexp.MustCompile(`(?i)\b(?:esim|sim\+esim|2\s*sim|dual\s*sim|1\s*sim)\b`)
)

var attentionEmoji = []string{"🔥", "💥", "💎", "⭐", "✨", "🎯", "🚀", "🎁", "💰", "❤️‍🔥"}

// Product-hint keywords: any occurrence labels the message product before
// the extraction probe runs.
var productHints = []string{
	"iphone", "samsung", "xiaomi", "redmi", "realme", "oneplus", "huawei",
	"honor", "google", "pixel", "oppo", "vivo", "tecno", "infinix",
	"airpods", "watch", "watch ultra", "ipad", "ipad pro", "ipad air",
	"ipad mini", "whoop", "macbook", "macbook pro", "macbook air", "imac",
	"mac mini", "mac studio", "apple pencil", "pencil", "pencil usb c",
	"magic mouse", "magic keyboard", "playstation", "ps5", "dualsense",
	"xbox", "switch", "beats", "beats studio", "beats studio pro",
	"plaud", "plaud note", "yandex", "yandex station", "станция алиса", "алиса",
}

// Classify labels a raw message. The rule order is load-bearing: a text
// with both a selling and a buying phrase is spam (rule 1 before rule 2),
// deliberately.
func Classify(text string, probe ProbeFunc) model.Kind {
	low := strings.ToLower(textnorm.NormalizeQuery(text))

	if sellingRe.MatchString(low) {
		return model.KindSpam
	}
	if buyRe.MatchString(low) {
		return model.KindProduct
	}
	if reserveRe.MatchString(low) {
		return model.KindSilent
	}

	if looksLikePriceList(text) {
		return model.KindSpam
	}
	if broadcastRe.MatchString(low) {
		return model.KindSpam
	}
	if jobRe.MatchString(low) {
		return model.KindSpam
	}
	if cryptoRe.MatchString(low) {
		return model.KindSpam
	}

	if linkRe.MatchString(text) && !mentionOnlyFirstLine(text) {
		return model.KindSpam
	}

	if hasManyPrices(text) {
		return model.KindSpam
	}

	if paymentRe.MatchString(low) || strings.Contains(low, "$") {
		return model.KindSpam
	}

	if countAttentionEmoji(text) > 5 {
		return model.KindSpam
	}

	if looksLikeProduct(low) {
		return model.KindProduct
	}

	if probe != nil && probe(text) {
		return model.KindProduct
	}
	return model.KindSpam
}

// mentionOnlyFirstLine reports whether the first line is a short
// mention-only line (an "@user text" opener), which exempts the message
// from the link rule.
func mentionOnlyFirstLine(text string) bool {
	first := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	return strings.Contains(first, "@") &&
		len(strings.Fields(first)) <= 5 &&
		!httpRe.MatchString(first)
}

// looksLikePriceList reports whether at least three non-empty lines each
// carry a price-like tail or mid-line price.
func looksLikePriceList(text string) bool {
	hits := 0
	for _, ln := range strings.Split(text, "\n") {
		s := strings.TrimSpace(ln)
		if s == "" {
			continue
		}
		if priceLikeLine(s) {
			hits++
			if hits >= 3 {
				return true
			}
		}
	}
	return false
}

func priceLikeLine(s string) bool {
	return priceListLineRe.MatchString(s) ||
		arrowPriceRe.MatchString(s) ||
		bareTailPriceRe.MatchString(s) ||
		midlinePriceRe.MatchString(s)
}

// hasManyPrices is the softer multi-price heuristic behind rule 7.
func hasManyPrices(text string) bool {
	lines := strings.Split(text, "\n")

	if len(priceRe.FindAllString(text, -1)) >= 2 {
		return true
	}

	priceLikeLines := 0
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if s == "" {
			continue
		}
		if priceLikeLine(s) {
			priceLikeLines++
		}
	}
	if priceLikeLines >= 3 {
		return true
	}

	simPriceLines := 0
	for _, ln := range lines {
		if midlinePriceRe.MatchString(ln) && simTokenRe.MatchString(ln) {
			simPriceLines++
		}
	}
	if simPriceLines >= 2 {
		return true
	}

	priceLines := 0
	for _, ln := range lines {
		if priceRe.MatchString(ln) {
			priceLines++
		}
	}
	return priceLines >= 2
}

func countAttentionEmoji(text string) int {
	n := 0
	for _, e := range attentionEmoji {
		n += strings.Count(text, e)
	}
	return n
}

func looksLikeProduct(low string) bool {
	for _, h := range productHints {
		if strings.Contains(low, h) {
			return true
		}
	}
	return false
}
