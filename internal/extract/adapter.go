package extract

import (
	"log/slog"
	"time"

	"quote_bot/internal/model"
)

// Call conventions the structured-extraction capability has shipped with
// over time. Newer deployments take the channel and message date, older
// ones only part of that.
type (
	FullFunc  func(text, channel string, date time.Time) []model.Item
	DatedFunc func(text string, date time.Time) []model.Item
	BareFunc  func(text string) []model.Item
)

type callConvention int

const (
	callNone callConvention = iota
	callFull
	callDated
	callBare
)

// Adapter wraps the extraction capability behind one stable signature.
// The call convention is resolved once at construction, most specific
// first; any panic inside the extractor degrades to an empty result.
type Adapter struct {
	conv  callConvention
	full  FullFunc
	dated DatedFunc
	bare  BareFunc
	log   *slog.Logger
}

// NewAdapter picks the first available convention. All funcs nil is
// legal and yields an adapter that always returns nothing.
func NewAdapter(full FullFunc, dated DatedFunc, bare BareFunc, log *slog.Logger) *Adapter {
	a := &Adapter{full: full, dated: dated, bare: bare, log: log}
	switch {
	case full != nil:
		a.conv = callFull
	case dated != nil:
		a.conv = callDated
	case bare != nil:
		a.conv = callBare
	default:
		a.conv = callNone
		log.Warn("extractor adapter constructed without an extraction func")
	}
	return a
}

// NewParserAdapter wraps the built-in Parser.
func NewParserAdapter(p *Parser, log *slog.Logger) *Adapter {
	return NewAdapter(nil, nil, p.Parse, log)
}

// Extract runs the pinned convention. It never returns an error: a
// failing extractor is logged and treated as "nothing recognized".
func (a *Adapter) Extract(text, channel string, date time.Time) (items []model.Item) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("extractor panicked", "recover", r)
			items = nil
		}
	}()

	switch a.conv {
	case callFull:
		return a.full(text, channel, date)
	case callDated:
		return a.dated(text, date)
	case callBare:
		return a.bare(text)
	}
	return nil
}

// Probe reports whether the extractor recognizes anything in text. Used
// as the classifier's terminal fallback.
func (a *Adapter) Probe(text string) bool {
	return len(a.Extract(text, "probe", time.Now())) > 0
}
