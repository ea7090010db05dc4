package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"quote_bot/internal/textnorm"
)

// ModelMeta is one resolved model entry from the precomputed name index.
type ModelMeta struct {
	Path   []string `json:"path"`
	Brand  string   `json:"brand"`
	Series string   `json:"series"`
	Model  string   `json:"model"`
}

// ModelIndex maps normalized title substrings to model metadata. The
// backing file is reloaded when its TTL elapses or its mtime changes; a
// failed reload keeps the previous snapshot.
type ModelIndex struct {
	path string
	ttl  time.Duration
	log  *slog.Logger

	mu        sync.Mutex
	entries   map[string]ModelMeta
	maxTokens int
	loadedAt  time.Time
	mtime     time.Time
}

// NewModelIndex creates an index over the given file. The file is not
// read until the first Resolve call.
func NewModelIndex(path string, ttl time.Duration, log *slog.Logger) *ModelIndex {
	return &ModelIndex{path: path, ttl: ttl, log: log}
}

// Resolve finds the longest alias occurring in text as a token n-gram
// and returns its metadata.
func (x *ModelIndex) Resolve(text string) (ModelMeta, bool) {
	entries, maxTokens := x.snapshot()
	if len(entries) == 0 {
		return ModelMeta{}, false
	}
	toks := strings.Fields(textnorm.IndexKey(text))
	if len(toks) == 0 {
		return ModelMeta{}, false
	}
	top := maxTokens
	if top > len(toks) {
		top = len(toks)
	}
	for n := top; n >= 1; n-- {
		for i := 0; i+n <= len(toks); i++ {
			key := strings.Join(toks[i:i+n], " ")
			if meta, ok := entries[key]; ok {
				return meta, true
			}
		}
	}
	return ModelMeta{}, false
}

func (x *ModelIndex) snapshot() (map[string]ModelMeta, int) {
	x.mu.Lock()
	defer x.mu.Unlock()

	st, err := os.Stat(x.path)
	if err != nil {
		if x.entries == nil {
			x.log.Warn("model index unavailable", "path", x.path, "error", err)
		}
		return x.entries, x.maxTokens
	}

	fresh := time.Since(x.loadedAt) < x.ttl && st.ModTime().Equal(x.mtime)
	if x.entries != nil && fresh {
		return x.entries, x.maxTokens
	}

	entries, maxTokens, err := loadModelIndex(x.path)
	if err != nil {
		x.log.Error("reload model index", "path", x.path, "error", err)
		return x.entries, x.maxTokens
	}

	x.entries = entries
	x.maxTokens = maxTokens
	x.loadedAt = time.Now()
	x.mtime = st.ModTime()
	x.log.Debug("model index loaded", "path", x.path, "aliases", len(entries))
	return x.entries, x.maxTokens
}

func loadModelIndex(path string) (map[string]ModelMeta, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read model index: %w", err)
	}
	var raw map[string]ModelMeta
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode model index: %w", err)
	}

	entries := make(map[string]ModelMeta, len(raw))
	maxTokens := 0
	for alias, meta := range raw {
		key := textnorm.IndexKey(alias)
		if key == "" {
			continue
		}
		entries[key] = meta
		if n := len(strings.Fields(key)); n > maxTokens {
			maxTokens = n
		}
	}
	return entries, maxTokens, nil
}
