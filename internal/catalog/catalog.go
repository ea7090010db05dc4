// Package catalog maintains the in-memory offer snapshot built from the
// parsed price file. Two source shapes are accepted: a flat
// etalon_with_prices list and a nested category tree whose priced leaves
// become offers. The snapshot is rebuilt on TTL expiry or when the
// source file's mtime changes, and is replaced wholesale so concurrent
// readers never observe a half-built table.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"quote_bot/internal/extract"
	"quote_bot/internal/model"
)

// Leaf is a priced catalog tree terminal.
type Leaf struct {
	MinPrice     float64
	BestChannels []string
}

// Node is one tree position: a priced leaf or a branch with children.
// Exactly one of the two fields is set.
type Node struct {
	Leaf     *Leaf
	Children map[string]Node
}

// Index serves the current offer snapshot.
type Index struct {
	path   string
	ttl    time.Duration
	models *extract.ModelIndex
	log    *slog.Logger

	mu       sync.Mutex
	offers   []model.Offer
	loaded   bool
	loadedAt time.Time
	mtime    int64
}

func NewIndex(path string, ttl time.Duration, models *extract.ModelIndex, log *slog.Logger) *Index {
	return &Index{path: path, ttl: ttl, models: models, log: log}
}

// Offers returns the current snapshot, rebuilding it first when the TTL
// elapsed or the source file changed on disk. An unreadable source yields
// an empty snapshot, not an error.
func (x *Index) Offers() []model.Offer {
	var mtime int64
	if st, err := os.Stat(x.path); err == nil {
		mtime = st.ModTime().UnixNano()
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.loaded && time.Since(x.loadedAt) < x.ttl && mtime == x.mtime {
		return x.offers
	}

	offers, err := x.load()
	if err != nil {
		x.log.Warn("offer catalog unavailable", "path", x.path, "error", err)
		offers = nil
	}
	x.offers = offers
	x.loaded = true
	x.loadedAt = time.Now()
	x.mtime = mtime
	return x.offers
}

func (x *Index) load() ([]model.Offer, error) {
	raw, err := os.ReadFile(x.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var src struct {
		Etalons []map[string]any `json:"etalon_with_prices"`
		Catalog json.RawMessage  `json:"catalog"`
	}
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}

	if src.Etalons != nil {
		return x.loadFlat(src.Etalons), nil
	}
	if len(src.Catalog) > 0 {
		return x.loadTree(src.Catalog)
	}
	return nil, fmt.Errorf("catalog file has neither etalon_with_prices nor catalog")
}

func (x *Index) loadFlat(entries []map[string]any) []model.Offer {
	var out []model.Offer
	kept, dropped := 0, 0
	for _, it := range entries {
		raw := strings.TrimSpace(stringField(it, "raw_etalon"))
		price, ok := minPrice(it)
		if raw == "" || !ok {
			dropped++
			continue
		}
		path := stringsField(it, "path")
		best := stringsField(it, "best_channels")
		if len(best) == 0 {
			best = stringsField(it, "_best_channels")
		}
		offer, ok := x.offerFromLeaf(raw, path, best, price)
		if !ok {
			dropped++
			continue
		}
		out = append(out, offer)
		kept++
	}
	x.log.Info("offer catalog loaded", "format", "flat", "kept", kept, "dropped", dropped)
	return out
}

func (x *Index) loadTree(raw json.RawMessage) ([]model.Offer, error) {
	root, err := parseBranch(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog tree: %w", err)
	}

	var out []model.Offer
	kept, dropped := 0, 0
	walk(root, nil, func(path []string, title string, lf Leaf) {
		price := int(lf.MinPrice)
		offer, ok := x.offerFromLeaf(title, path, lf.BestChannels, price)
		if !ok {
			dropped++
			return
		}
		out = append(out, offer)
		kept++
	})
	x.log.Info("offer catalog loaded", "format", "tree", "kept", kept, "dropped", dropped)
	return out, nil
}

// offerFromLeaf derives offer attributes from a leaf title without
// running the full query parser: model identity through the name index,
// the rest through the lightweight extractors.
func (x *Index) offerFromLeaf(title string, pathParts []string, best []string, price int) (model.Offer, bool) {
	raw := strings.TrimSpace(title)
	if raw == "" || price <= 0 {
		return model.Offer{}, false
	}

	var path []string
	var brand, series, mdl string
	if meta, found := x.models.Resolve(raw); found && len(meta.Path) > 0 {
		path = meta.Path
		brand, series, mdl = meta.Brand, meta.Series, meta.Model
	}
	if len(path) == 0 && len(pathParts) > 0 {
		path = pathParts
		mdl = pathParts[len(pathParts)-1]
	}

	it := model.Item{
		Model:  mdl,
		Path:   path,
		Raw:    raw,
		Region: extract.Region(raw),
	}
	it.Storage, it.RAM = extract.Storage(raw)
	if colors := extract.Colors(raw, 3); len(colors) > 0 {
		it.Color = strings.ToLower(colors[0])
	}

	sim := extract.SIM(raw)
	it.SIM = extract.NormalizeSIM(extract.DefaultSIM(brand, series, mdl, it.Region, sim, it.Category()))

	// Catalog spellings of the same Apple Watch must not fragment the
	// snapshot into distinct models.
	if canon, key := extract.CanonWatch(it.Model); key != "" {
		it.Model = canon
		it.ModelKey = key
	}

	if strings.TrimSpace(it.Model) == "" {
		return model.Offer{}, false
	}
	return model.Offer{Item: it, Price: price, Currency: "₽", BestChannels: best}, true
}

// parseBranch decodes one JSON object into tree nodes. A child object
// carrying a non-null min_price is a leaf; other objects recurse;
// scalar children are ignored.
func parseBranch(raw json.RawMessage) (map[string]Node, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	out := make(map[string]Node, len(obj))
	for k, v := range obj {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(v, &probe); err != nil {
			continue
		}
		if mp, leaf := probe["min_price"]; leaf && string(mp) != "null" {
			var payload struct {
				MinPrice     float64  `json:"min_price"`
				BestChannels []string `json:"best_channels"`
			}
			if err := json.Unmarshal(v, &payload); err != nil {
				continue
			}
			out[k] = Node{Leaf: &Leaf{MinPrice: payload.MinPrice, BestChannels: payload.BestChannels}}
			continue
		}
		children, err := parseBranch(v)
		if err != nil {
			continue
		}
		out[k] = Node{Children: children}
	}
	return out, nil
}

// walk visits every leaf depth-first; path holds the branch segments
// above the leaf and title is the leaf's own key.
func walk(children map[string]Node, path []string, fn func(path []string, title string, lf Leaf)) {
	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		n := children[k]
		if n.Leaf != nil {
			fn(path, k, *n.Leaf)
			continue
		}
		// Paths end up stored on offers, so each branch gets its own copy.
		sub := make([]string, 0, len(path)+1)
		sub = append(append(sub, path...), k)
		walk(n.Children, sub, fn)
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringsField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// minPrice accepts the historical price key spellings and both numeric
// and numeric-string values.
func minPrice(m map[string]any) (int, bool) {
	for _, k := range []string{"min_price", "price_min", "min", "minPrice", "min_price_rub", "min_rub"} {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return int(f), true
			}
		}
	}
	return 0, false
}
