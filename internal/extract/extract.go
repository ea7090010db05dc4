// Package extract derives structured product attributes (storage, RAM,
// color, region, SIM, watch bands) from free-form message and catalog
// text. All extractors are independent and fail to the zero value.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"quote_bot/internal/model"
	"quote_bot/internal/textnorm"
)

var (
	flagRe = regexp.MustCompile(`[\x{1F1E6}-\x{1F1FF}]{2}`)
	sepRe  = regexp.MustCompile(`[/\\_\-(),;:+.!?"]+`)

	yearRe = regexp.MustCompile(`^20\d{2}$`)

	// Money tokens: grouped thousands or a 4-7 digit run.
	moneyRe        = regexp.MustCompile(`(?:^|[^\d])(\d{1,3}(?:[ .,_\x{00A0}]\d{3})+|\d{4,7})(?:[^\d]|$)`)
	bareDigitsRe   = regexp.MustCompile(`(?:^|[^\d])(\d{4,7})(?:[^\d]|$)`)
	priceHintRe    = regexp.MustCompile(`(?i)(₽|руб|р\.|\$|usd|eur|€)`)
	shortPriceRe   = regexp.MustCompile(`(?:^|\s)[—–-]\s*(\d{1,3})\s*$`)
	modelStorageRe = regexp.MustCompile(`^\s*(\d{1,3})[ .,_](\d{3})\s*$`)

	slashUnitRe   = regexp.MustCompile(`(?i)(?:^|[^\d])(\d{1,4})\s*/\s*(\d{1,4})\s*(tb|тб|gb|гб|g)(?:[^\p{L}\p{N}]|$)`)
	slashBareRe   = regexp.MustCompile(`(?:^|[^\d])(\d{1,3})\s*/\s*(\d{2,4})(?:[^\d]|$)`)
	memExplicitRe = regexp.MustCompile(`(?i)(\d{1,4})\s*(tb|тб|gb|гб|g)`)
	bareStorageRe = regexp.MustCompile(`(?:^|[^\d])(64|128|256|512|1024|2048)(?:[^\d]|$)`)
	tailUnitRe    = regexp.MustCompile(`(?i)^(\d{2,4})(gb|g|tb|t)$`)

	sim2Re     = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:2\s*[- ]?\s*(?:sim|сим)|dual\s*(?:nano[\s-]*)?sim)(?:[^\p{L}\p{N}]|$)`)
	simPlusRe  = regexp.MustCompile(`(?i)(?:nano\s*[- ]?\s*)?sim\s*\+\s*e\s*[- ]?\s*sim`)
	simESIMRe  = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])e\s*[- ]?\s*sim(?:[^\p{L}\p{N}]|$)`)
	simPlainRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])sim(?:[^\p{L}\p{N}]|$)`)

	iphoneGenRe = regexp.MustCompile(`(?i)\b(?:iphone\s*(\d{1,2})|(\d{1,2})\s*(?:pro|max|plus|mini|e)\b)`)

	bandPairRe   = regexp.MustCompile(`(?i)\b(xs/s|s/m|m/l|l/xl)\b`)
	bandSingleRe = regexp.MustCompile(`(?i)(?:^|[\s(])(xs|sm|ml|xl|s|m|l)(?:[\s)]|$)`)

	watchUltraRe  = regexp.MustCompile(`(?i)\b(?:apple\s*)?(?:i?watch|aw)\s*ultra\s*(\d)?\b`)
	watchSERe     = regexp.MustCompile(`(?i)\b(?:apple\s*)?(?:i?watch|aw)\s*se\s*(\d)?\b`)
	watchSeriesRe = regexp.MustCompile(`(?i)\b(?:apple\s*)?(?:i?watch|aw)\s*(?:series\s*|s\s*)?(\d{1,2})\b`)
)

// tokens splits text into lowercase tokens with separators unified, so
// "8/256", "Blue-Black" and "Blue/Black" tokenize identically.
func tokens(s string) []string {
	s = strings.ToLower(textnorm.CleanSpaces(s))
	s = sepRe.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// Price pulls the last plausible money amount (1 000..1 000 000) out of
// text. Model-plus-storage pairs like "15 256" and year tokens are not
// prices. A trailing "- 15" with no currency anywhere means thousands.
func Price(text string) int {
	var cand []int
	for _, m := range moneyRe.FindAllStringSubmatch(text, -1) {
		tok := m[1]
		if ms := modelStorageRe.FindStringSubmatch(tok); ms != nil {
			a, _ := strconv.Atoi(ms[1])
			b, _ := strconv.Atoi(ms[2])
			if allowedStorageGB[b] && a >= 1 && a <= 30 {
				continue
			}
		}
		if v := moneyValue(tok); v > 0 {
			cand = append(cand, v)
		}
	}
	if len(cand) > 0 {
		return cand[len(cand)-1]
	}

	digits := bareDigitsRe.FindAllStringSubmatch(text, -1)
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i][1]
		if yearRe.MatchString(d) {
			continue
		}
		v, _ := strconv.Atoi(d)
		if v >= 1000 && v <= 1000000 {
			return v
		}
	}

	if !priceHintRe.MatchString(text) {
		if m := shortPriceRe.FindStringSubmatch(text); m != nil {
			v, _ := strconv.Atoi(m[1])
			if v >= 10 && v <= 999 {
				return v * 1000
			}
		}
	}
	return 0
}

func moneyValue(tok string) int {
	t := strings.TrimSpace(tok)
	if yearRe.MatchString(t) {
		return 0
	}
	repl := strings.NewReplacer(" ", "", "\u00a0", "", "_", "", ",", "", ".", "")
	t = repl.Replace(t)
	v, err := strconv.Atoi(t)
	if err != nil {
		return 0
	}
	if v < 1000 || v > 1000000 {
		return 0
	}
	return v
}

// Storage returns the storage string ("256GB", "1TB") and the RAM size in
// GB (0 when absent). Handles slash configs ("8/256"), explicit units
// ("16GB 512GB", "1TB"), bare storage numbers and tail tokens before a
// price.
func Storage(text string) (string, int) {
	s := textnorm.CleanSpaces(text)

	// Slash configs first: "8/256", "12/512GB", "16/1TB".
	type slashHit struct {
		a, b int
		unit string
	}
	var hits []slashHit
	for _, m := range slashUnitRe.FindAllStringSubmatch(s, -1) {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		hits = append(hits, slashHit{a, b, normUnit(m[3])})
	}
	for _, m := range slashBareRe.FindAllStringSubmatch(s, -1) {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		hits = append(hits, slashHit{a, b, ""})
	}
	if len(hits) > 0 {
		bestScore := -1
		bestStorage := ""
		bestRAM := 0
		for _, h := range hits {
			ram := 0
			if ramPlausible[h.a] {
				ram = h.a
			}
			storage := ""
			switch h.unit {
			case "", "gb":
				if allowedStorageGB[h.b] {
					storage = strconv.Itoa(h.b) + "GB"
				}
			case "tb":
				storage = strconv.Itoa(h.b) + "TB"
			}
			if storage == "" {
				continue
			}
			score := h.b
			if ram > 0 {
				score += 1 << 20
			}
			if h.unit != "" {
				score += 1 << 16
			}
			if score > bestScore {
				bestScore, bestStorage, bestRAM = score, storage, ram
			}
		}
		if bestStorage != "" {
			return bestStorage, bestRAM
		}
	}

	// Explicit units: "16GB", "1ТБ", "512 gb". Boundaries are checked by
	// index so back-to-back tokens ("16GB 512GB") all register; a consumed
	// separator would hide every second one from the scan.
	type memHit struct {
		num int
		tb  bool
	}
	var mem []memHit
	for _, loc := range memExplicitRe.FindAllStringSubmatchIndex(s, -1) {
		if r, _ := utf8.DecodeLastRuneInString(s[:loc[0]]); unicode.IsDigit(r) {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(s[loc[1]:]); unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		num, _ := strconv.Atoi(s[loc[2]:loc[3]])
		unitTok := s[loc[4]:loc[5]]
		// "4g"/"5g" are network generations, not four gigabytes.
		if strings.EqualFold(unitTok, "g") && (num == 4 || num == 5) {
			continue
		}
		mem = append(mem, memHit{num, normUnit(unitTok) == "tb"})
	}
	if len(mem) > 0 {
		toGB := func(h memHit) int {
			if h.tb {
				return h.num * 1024
			}
			return h.num
		}
		storage := ""
		best := 0
		for _, h := range mem {
			if !h.tb && !allowedStorageGB[h.num] {
				continue
			}
			if g := toGB(h); g > best {
				best = g
				if h.tb {
					storage = strconv.Itoa(h.num) + "TB"
				} else {
					storage = strconv.Itoa(h.num) + "GB"
				}
			}
		}
		// No allowed storage among the unit tokens (a lone RAM spec, say):
		// fall through to the later heuristics instead of giving up.
		if storage != "" {
			ram := 0
			if len(mem) >= 2 {
				for _, h := range mem {
					if !h.tb && ramPlausible[h.num] && !allowedStorageGB[h.num] {
						if ram == 0 || h.num < ram {
							ram = h.num
						}
					}
				}
			}
			if ram == 0 {
				ram = bareRAM(s)
			}
			return storage, ram
		}
	}

	// Bare storage number anywhere, unless it is a price fraction
	// ("128.400").
	for _, loc := range bareStorageRe.FindAllStringSubmatchIndex(s, -1) {
		numEnd := loc[3]
		tail := s[numEnd:min(numEnd+4, len(s))]
		if len(tail) >= 4 && (tail[0] == '.' || tail[0] == ',') && isDigits(tail[1:4]) {
			continue
		}
		v, _ := strconv.Atoi(s[loc[2]:loc[3]])
		return strconv.Itoa(v) + "GB", bareRAM(s)
	}

	// Tail unit token before the price/dash separator: "... 256gb - 52000".
	toks := tokens(s)
	cut := len(toks)
	for i, t := range toks {
		if v, err := strconv.Atoi(t); err == nil && v >= 10000 {
			cut = i
			break
		}
	}
	head := toks[:cut]
	for i := len(head) - 1; i >= 0; i-- {
		m := tailUnitRe.FindStringSubmatch(head[i])
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		switch normUnit(m[2]) {
		case "tb":
			if num == 1 || num == 2 || num == 4 {
				return strconv.Itoa(num) + "TB", bareRAM(strings.Join(head, " "))
			}
		default:
			if allowedStorageGB[num] {
				return strconv.Itoa(num) + "GB", bareRAM(strings.Join(head, " "))
			}
		}
	}
	for i := len(head) - 1; i >= 0; i-- {
		if v, err := strconv.Atoi(head[i]); err == nil && allowedStorageGB[v] {
			return strconv.Itoa(v) + "GB", bareRAM(strings.Join(head, " "))
		}
	}
	return "", 0
}

func normUnit(u string) string {
	switch strings.ToLower(u) {
	case "tb", "тб", "t":
		return "tb"
	default:
		return "gb"
	}
}

// bareRAM finds a plausible RAM size written as a bare number next to a
// storage spec ("M4, 16, 512GB").
func bareRAM(s string) int {
	toks := tokens(s)
	best := 0
	for i, t := range toks {
		v, err := strconv.Atoi(t)
		if err != nil || v < 4 {
			continue
		}
		if v >= 2000 && v <= 2099 {
			continue
		}
		if i+1 < len(toks) && isUnitOrSIM(toks[i+1]) {
			continue
		}
		if i > 0 && isSIMTok(toks[i-1]) {
			continue
		}
		if ramPlausible[v] && !allowedStorageGB[v] {
			if best == 0 || v < best {
				best = v
			}
		}
	}
	return best
}

func isUnitOrSIM(t string) bool {
	switch t {
	case "gb", "g", "tb", "t", "гб", "тб", "sim", "esim":
		return true
	}
	return false
}

func isSIMTok(t string) bool { return t == "sim" || t == "esim" }

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ---------------------------------------------------------------------
// Colors
// ---------------------------------------------------------------------

type colorMatcher struct {
	toks  []string
	canon string
}

var (
	colorOnce     sync.Once
	colorMatchers []colorMatcher
)

func initColorMatchers() {
	seen := map[string]bool{}
	add := func(key, canon string) {
		toks := tokens(key)
		if len(toks) == 0 {
			return
		}
		k := strings.Join(toks, " ")
		if seen[k] {
			return
		}
		seen[k] = true
		colorMatchers = append(colorMatchers, colorMatcher{toks, canon})
	}
	for k, v := range colorSynonyms {
		add(k, v)
	}
	for _, c := range baseColors {
		add(c, c)
	}
	// Longest phrase wins: "space black" must beat "black".
	sort.SliceStable(colorMatchers, func(i, j int) bool {
		a, b := colorMatchers[i], colorMatchers[j]
		if len(a.toks) != len(b.toks) {
			return len(a.toks) > len(b.toks)
		}
		return len(strings.Join(a.toks, " ")) > len(strings.Join(b.toks, " "))
	})
}

// containsPhrase reports whether phrase occurs as a consecutive token run.
func containsPhrase(toks, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(toks); i++ {
		if phraseAt(toks, i, phrase) {
			return true
		}
	}
	return false
}

func phraseAt(toks []string, i int, phrase []string) bool {
	if len(phrase) == 0 || i+len(phrase) > len(toks) {
		return false
	}
	for j, p := range phrase {
		if toks[i+j] != p {
			return false
		}
	}
	return true
}

// Color returns the first canonical color found in text, or "".
func Color(text string) string {
	cs := Colors(text, 1)
	if len(cs) == 0 {
		return ""
	}
	return cs[0]
}

// Colors returns up to limit distinct canonical colors in text order.
// At each position the longest known phrase wins, so "space black" is
// one color, not "black".
func Colors(text string, limit int) []string {
	colorOnce.Do(initColorMatchers)
	if limit < 1 {
		limit = 1
	}
	toks := tokens(text)
	var out []string
	seen := map[string]bool{}
	for i := 0; i < len(toks) && len(out) < limit; i++ {
		for _, cm := range colorMatchers {
			if !phraseAt(toks, i, cm.toks) {
				continue
			}
			k := strings.ToLower(cm.canon)
			if !seen[k] {
				seen[k] = true
				out = append(out, cm.canon)
			}
			i += len(cm.toks) - 1
			break
		}
	}
	return out
}

// ---------------------------------------------------------------------
// Region / SIM
// ---------------------------------------------------------------------

// Region resolves the region code from flag emoji (first) or region
// words/codes in the text, or "".
func Region(text string) string {
	for _, fl := range flagRe.FindAllString(text, -1) {
		if reg, ok := regionFlags[fl]; ok {
			return reg
		}
	}
	toks := tokens(text)
	tokSet := map[string]bool{}
	for _, t := range toks {
		tokSet[t] = true
	}
	for _, rule := range regionRules {
		for _, t := range rule.tokens {
			if tokSet[t] {
				return rule.code
			}
		}
		for _, p := range rule.prefixes {
			for _, t := range toks {
				if strings.HasPrefix(t, p) {
					return rule.code
				}
			}
		}
	}
	return ""
}

// SIM extracts an explicit SIM configuration token, or "".
func SIM(text string) string {
	s := textnorm.CleanSpaces(text)
	if s == "" {
		return ""
	}
	switch {
	case sim2Re.MatchString(s):
		return model.SIMDual
	case simPlusRe.MatchString(s):
		return model.SIMPlusESIM
	case simESIMRe.MatchString(s):
		return model.SIMESIM
	case simPlainRe.MatchString(s):
		return model.SIMPlusESIM
	}
	return ""
}

// NormalizeSIM folds the SIM spelling variants onto the three canonical
// values: "1sim"/"single"/"sim+esim" are one, "2sim"/"dual" another,
// "esim" stands alone. Unknown input passes through lowercased.
func NormalizeSIM(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return ""
	}
	c := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	switch {
	case strings.Contains(c, "2sim"), strings.Contains(c, "2сим"), strings.Contains(c, "dual"):
		return model.SIMDual
	case strings.Contains(c, "sim+esim"), strings.Contains(c, "nanosim+esim"),
		c == "1sim", c == "single", c == "singlesim", c == "sim", c == "nanosim":
		return model.SIMPlusESIM
	case strings.Contains(c, "esim"):
		return model.SIMESIM
	}
	return s
}

// DefaultSIM infers the SIM configuration when none was written out,
// using the iPhone generation and the region: US units gen 14+ are
// eSIM-only, Chinese units dual-SIM, everything else nano+eSIM.
func DefaultSIM(brand, series, mdl, region, sim, category string) string {
	if sim != "" {
		return sim
	}
	if !isIPhone(brand, series, mdl) {
		switch strings.ToLower(strings.TrimSpace(category)) {
		case "смартфоны", "smartphones", "phones":
			return model.SIMPlusESIM
		}
		return ""
	}

	gen := iphoneGen(brand + " " + series + " " + mdl)
	if gen == 17 && strings.Contains(strings.ToLower(mdl), "air") {
		return model.SIMESIM
	}

	reg := strings.ToLower(strings.TrimSpace(region))
	switch reg {
	case "cn", "china":
		reg = "ch"
	case "hongkong":
		reg = "hk"
	case "uae":
		reg = "ae"
	}

	switch {
	case gen > 0 && gen <= 13:
		return model.SIMPlusESIM
	case gen == 14:
		switch reg {
		case "us":
			return model.SIMESIM
		case "ch", "hk":
			return model.SIMDual
		}
		return model.SIMPlusESIM
	case gen == 17:
		switch reg {
		case "us", "jp", "ae", "ca":
			return model.SIMESIM
		case "ch":
			return model.SIMDual
		}
		return model.SIMPlusESIM
	}

	switch reg {
	case "us":
		return model.SIMESIM
	case "ch", "hk":
		return model.SIMDual
	}
	return model.SIMPlusESIM
}

func isIPhone(brand, series, mdl string) bool {
	b := strings.ToLower(strings.TrimSpace(brand))
	sm := strings.ToLower(series + " " + mdl)
	return b == "apple" && strings.Contains(sm, "iphone")
}

func iphoneGen(s string) int {
	m := iphoneGenRe.FindStringSubmatch(textnorm.CleanSpaces(s))
	if m == nil {
		return 0
	}
	g := m[1]
	if g == "" {
		g = m[2]
	}
	v, err := strconv.Atoi(g)
	if err != nil || v < 1 || v > 30 {
		return 0
	}
	return v
}

// ---------------------------------------------------------------------
// Watch bands and model canonicalization
// ---------------------------------------------------------------------

// BandType returns the canonical watch band type mentioned in text, or "".
func BandType(text string) string {
	toks := tokens(text)
	for _, r := range bandRules {
		if containsPhrase(toks, strings.Fields(r.phrase)) {
			return r.canon
		}
	}
	return ""
}

// BandSize returns the band size ("S/M", "M/L", ...). Single-letter sizes
// are only trusted in a watch context, they are too ambiguous otherwise.
func BandSize(text string, watchContext bool) string {
	if m := bandPairRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if !watchContext {
		return ""
	}
	if m := bandSingleRe.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[1]) {
		case "sm":
			return "S/M"
		case "ml":
			return "M/L"
		default:
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// CanonColor folds a color spelling through the synonym table and then
// the family canon map, all lowercase, for tolerant matching ("Starlight"
// and "Silver" both become "white").
func CanonColor(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "-", " ")), " ")
	if canon, ok := colorSynonyms[s]; ok {
		s = strings.ToLower(canon)
		s = strings.Join(strings.Fields(strings.ReplaceAll(s, "-", " ")), " ")
	}
	if fam, ok := colorCanon[s]; ok {
		return fam
	}
	return s
}

var watchMMRe = regexp.MustCompile(`(?i)(?:^|[^\d])([345][0-9])\s*(?:mm|мм)(?:[^\p{L}\p{N}]|$)`)
var watchMMBareRe = regexp.MustCompile(`(?:^|[^\d])(38|39|4[0-9])(?:[^\d]|$)`)

// WatchSizeMM extracts the watch case size. Bare numbers (42, 45) are
// accepted only in a watch context.
func WatchSizeMM(text string, watchContext bool) string {
	if m := watchMMRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if watchContext {
		if m := watchMMBareRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// CanonWatch folds Apple Watch spellings ("watch series 7", "watch 7",
// "aw 7", "apple watch ultra 2") into one canonical model name and key,
// so catalog variance does not fragment otherwise identical offers.
// Returns ("", "") when text is not an Apple Watch model.
func CanonWatch(text string) (string, string) {
	s := textnorm.CleanSpaces(text)
	if m := watchUltraRe.FindStringSubmatch(s); m != nil {
		n := m[1]
		if n == "" {
			n = "1"
		}
		return "Apple Watch Ultra " + n, "aw-ultra-" + n
	}
	if m := watchSERe.FindStringSubmatch(s); m != nil {
		n := m[1]
		if n == "" {
			return "Apple Watch SE", "aw-se"
		}
		return "Apple Watch SE " + n, "aw-se-" + n
	}
	if m := watchSeriesRe.FindStringSubmatch(s); m != nil {
		return "Apple Watch Series " + m[1], "aw-" + m[1]
	}
	return "", ""
}
