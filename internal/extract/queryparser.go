package extract

import (
	"log/slog"
	"strconv"
	"strings"

	"quote_bot/internal/model"
	"quote_bot/internal/textnorm"
)

// Parser is the built-in structured-extraction capability: it resolves
// the model through the name index and fills the remaining attributes
// with the lightweight extractors. One item per recognized candidate
// line, so a message listing two products yields two items.
type Parser struct {
	index *ModelIndex
	log   *slog.Logger
}

func NewParser(index *ModelIndex, log *slog.Logger) *Parser {
	return &Parser{index: index, log: log}
}

// Parse extracts zero or more structured items from raw message text.
// Lines that resolve no model are skipped; duplicates are collapsed.
func (p *Parser) Parse(text string) []model.Item {
	var out []model.Item
	seen := map[string]bool{}

	for _, cand := range textnorm.SplitCandidates(text) {
		it, ok := p.parseLine(cand)
		if !ok {
			continue
		}
		key := itemKey(it)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func (p *Parser) parseLine(cand string) (model.Item, bool) {
	meta, found := p.index.Resolve(cand)
	canonModel, canonKey := CanonWatch(cand)

	if !found && canonKey == "" {
		return model.Item{}, false
	}

	it := model.Item{
		Model:  meta.Model,
		Path:   meta.Path,
		Raw:    cand,
		Region: Region(cand),
	}
	if canonKey != "" {
		it.Model = canonModel
		it.ModelKey = canonKey
		if len(it.Path) == 0 {
			it.Path = []string{"умные часы", "Apple", canonModel}
		}
	}
	if it.Model == "" {
		return model.Item{}, false
	}

	it.Storage, it.RAM = Storage(cand)
	it.Color = strings.ToLower(Color(cand))

	cat := it.Category()
	watchCtx := canonKey != "" || cat == "умные часы"
	if watchCtx {
		it.BandType = BandType(cand)
		it.BandSize = BandSize(cand, true)
		it.WatchSizeMM = WatchSizeMM(cand, true)
		// Phone storage numbers are noise on a watch line.
		it.Storage = ""
		it.RAM = 0
	} else {
		sim := SIM(cand)
		it.SIM = DefaultSIM(meta.Brand, meta.Series, it.Model, it.Region, sim, cat)
	}

	return it, true
}

func itemKey(it model.Item) string {
	parts := []string{
		strings.ToLower(it.Model), it.Storage, strconv.Itoa(it.RAM),
		strings.ToLower(it.Color), it.SIM, it.Region,
		strings.ToLower(it.BandType), it.BandSize, it.WatchSizeMM,
	}
	return strings.Join(parts, "|")
}
