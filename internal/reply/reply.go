// Package reply builds the quote line sent back to a buyer. The markup
// schedule is applied here only; stored offers always keep the base
// price.
package reply

import (
	"strconv"
	"strings"

	"quote_bot/internal/model"
)

// Markup is the tiered increment schedule: increment A0 below T1, A1
// below T2, A2 below T3, A3 at or above T3.
type Markup struct {
	Enabled        bool
	T1, T2, T3     int
	A0, A1, A2, A3 int
}

// Apply returns the quoted price for a base price.
func (m Markup) Apply(price int) int {
	if !m.Enabled || price <= 0 {
		return price
	}
	switch {
	case price < m.T1:
		return price + m.A0
	case price < m.T2:
		return price + m.A1
	case price < m.T3:
		return price + m.A2
	}
	return price + m.A3
}

type Composer struct {
	markup Markup
}

func New(markup Markup) *Composer {
	return &Composer{markup: markup}
}

// Compose renders "<model> [storage] [color] [REGION] - <price> ₽ (<sim>; <REGION>)".
// Candidate attributes win over offer attributes so the reply echoes
// what the buyer asked for; empty segments are omitted, and the
// parenthetical suffix disappears entirely when both SIM and region are
// blank.
func (c *Composer) Compose(cand model.Item, offer model.Offer) string {
	pick := func(a, b string) string {
		if s := strings.TrimSpace(a); s != "" {
			return s
		}
		return strings.TrimSpace(b)
	}

	mdl := pick(cand.Model, offer.Model)
	storage := pick(cand.Storage, offer.Storage)
	color := pick(cand.Color, offer.Color)
	region := pick(cand.Region, offer.Region)

	left := mdl
	if storage != "" {
		left += " " + storage
	}
	if color != "" {
		left += " " + color
	}
	if region != "" {
		left += " " + strings.ToUpper(region)
	}

	price := c.markup.Apply(offer.Price)
	out := left + " - " + FormatPrice(price) + " ₽"
	if cfg := configSuffix(offer.SIM, region); cfg != "" {
		out += " " + cfg
	}
	return strings.TrimSpace(out)
}

func configSuffix(sim, region string) string {
	s := strings.TrimSpace(sim)
	r := strings.ToUpper(strings.TrimSpace(region))
	if r == "DEFAULT" {
		r = ""
	}
	switch {
	case s != "" && r != "":
		return "(" + s + "; " + r + ")"
	case s != "":
		return "(" + s + ")"
	case r != "":
		return "(" + r + ")"
	}
	return ""
}

// FormatPrice renders an integer with a space as the thousands separator.
func FormatPrice(p int) string {
	s := strconv.Itoa(p)
	start := 0
	if strings.HasPrefix(s, "-") {
		start = 1
	}
	var b strings.Builder
	b.WriteString(s[:start])
	digits := s[start:]
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	for i, r := range digits {
		if i >= lead && (i-lead)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// JoinUnique joins one reply line per matched item, dropping duplicate
// lines while preserving first-seen order.
func JoinUnique(lines []string) string {
	var out []string
	seen := map[string]bool{}
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || seen[ln] {
			continue
		}
		seen[ln] = true
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}
