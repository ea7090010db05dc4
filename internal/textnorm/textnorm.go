// Package textnorm normalizes and cleans inbound message text before
// classification and attribute extraction.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]+`)
	multiNewlineRe = regexp.MustCompile(`\n{2,}`)
	anySpaceRe     = regexp.MustCompile(`\s+`)
	trailPunctRe   = regexp.MustCompile(`[?!.…]+$`)
	emojiRe        = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}]+`)
	bulletRe       = regexp.MustCompile(`^[\s*•\-–—]+`)
	flagRe         = regexp.MustCompile(`[\x{1F1E6}-\x{1F1FF}]{2}`)
	nonKeyRuneRe   = regexp.MustCompile(`[^a-z0-9а-яё ]+`)
	keySepRe       = regexp.MustCompile(`[\s\-_]+`)

	// Trailing "-> 12345" / ": 12 345" price annotations, applied per line.
	arrowPriceRe = regexp.MustCompile(`(?:->|:)\s*(?:\d{1,3}(?:[ .\x{00A0}]\d{3})+|\d{3,})(?:[.,]\d+)?(?:[^\n\d]{0,20})?$`)
)

// Buy-intent trigger words removed before matching so they do not pollute
// attribute extraction. Multi-word phrases are handled in dropIntentTokens.
var intentWords = map[string]bool{
	"куплю": true, "ищу": true, "нужен": true, "нужна": true, "нужно": true,
	"надо": true, "возьму": true, "подскажите": true, "предложите": true,
	"рассматриваю": true, "рассмотрю": true,
	"buy": true, "need": true, "lf": true, "wtb": true,
}

var politenessWords = map[string]bool{
	"пожалуйста": true, "pls": true, "please": true, "пжл": true, "пж": true,
}

// NormalizeQuery applies NFKC canonicalization and whitespace collapsing.
// Idempotent.
func NormalizeQuery(s string) string {
	s = norm.NFKC.String(s)
	return strings.TrimSpace(anySpaceRe.ReplaceAllString(s, " "))
}

// FixConfusables maps Cyrillic lookalike letters onto their Latin
// counterparts so mixed-script product names tokenize consistently.
var confusables = strings.NewReplacer(
	"А", "A", "В", "B", "Е", "E", "К", "K", "М", "M", "Н", "H",
	"О", "O", "Р", "P", "С", "C", "Т", "T", "У", "Y", "Х", "X",
	"а", "a", "е", "e", "о", "o", "р", "p", "с", "c", "у", "y", "х", "x",
	"к", "k", "м", "m", "т", "t", "в", "b", "н", "h",
)

func FixConfusables(s string) string {
	return confusables.Replace(s)
}

// StripFlags removes emoji flag sequences.
func StripFlags(s string) string {
	return strings.TrimSpace(flagRe.ReplaceAllString(s, " "))
}

// CleanForMatching prepares a message line for attribute extraction:
// NFKC, trailing price annotations stripped per line, intent/politeness
// words dropped, emoji removed, trailing punctuation trimmed, whitespace
// collapsed. Idempotent.
func CleanForMatching(text string) string {
	t := norm.NFKC.String(text)

	lines := strings.Split(t, "\n")
	for i, ln := range lines {
		lines[i] = arrowPriceRe.ReplaceAllString(ln, "")
	}
	t = strings.Join(lines, "\n")

	t = dropIntentTokens(t)
	t = emojiRe.ReplaceAllString(t, " ")
	t = trailPunctRe.ReplaceAllString(t, "")

	t = multiSpaceRe.ReplaceAllString(t, " ")
	t = multiNewlineRe.ReplaceAllString(t, "\n")
	return strings.TrimSpace(t)
}

// dropIntentTokens removes buy-intent and politeness words token-wise.
// Word-boundary regexps are unreliable for Cyrillic under RE2 (\b is
// ASCII-only), so tokens are filtered directly.
func dropIntentTokens(t string) string {
	lines := strings.Split(t, "\n")
	for li, ln := range lines {
		fields := strings.Fields(ln)
		out := make([]string, 0, len(fields))
		for i := 0; i < len(fields); i++ {
			w := strings.ToLower(strings.Trim(fields[i], ",.;:!?"))
			if intentWords[w] || politenessWords[w] {
				continue
			}
			if w == "looking" && i+1 < len(fields) &&
				strings.ToLower(strings.Trim(fields[i+1], ",.;:!?")) == "for" {
				i++
				continue
			}
			out = append(out, fields[i])
		}
		lines[li] = strings.Join(out, " ")
	}
	return strings.Join(lines, "\n")
}

// SplitCandidates yields one cleaned candidate string per non-empty input
// line, stripping leading bullet markers. Falls back to the whole cleaned
// text when no line survives.
func SplitCandidates(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		ln = bulletRe.ReplaceAllString(strings.TrimSpace(ln), "")
		if ln == "" {
			continue
		}
		ln = CleanForMatching(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	if len(out) == 0 {
		if whole := CleanForMatching(text); whole != "" {
			out = append(out, whole)
		}
	}
	return out
}

// Key lowercases and collapses whitespace; used as the dedup cache key
// basis so trivially reformatted repeats hash identically.
func Key(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// IndexKey normalizes a string for model-index lookup: lowercase, flags
// stripped, separators unified, everything outside [a-z0-9а-яё ] removed.
func IndexKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "/", " ")
	s = flagRe.ReplaceAllString(s, " ")
	s = keySepRe.ReplaceAllString(s, " ")
	s = nonKeyRuneRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanSpaces collapses all whitespace runs (incl. NBSP) to single spaces.
func CleanSpaces(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(anySpaceRe.ReplaceAllString(s, " "))
}
