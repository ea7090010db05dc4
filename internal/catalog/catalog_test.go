package catalog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"quote_bot/internal/extract"
)

const modelIndexJSON = `{
	"iPhone 15": {
		"path": ["Смартфоны", "Apple", "iPhone 15", "iPhone 15"],
		"brand": "Apple", "series": "iPhone 15", "model": "iPhone 15"
	}
}`

func newTestIndex(t *testing.T, catalogJSON string, ttl time.Duration) (*Index, string) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	idxPath := filepath.Join(dir, "model_index.json")
	if err := os.WriteFile(idxPath, []byte(modelIndexJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	catPath := filepath.Join(dir, "parsed_data.json")
	if err := os.WriteFile(catPath, []byte(catalogJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	models := extract.NewModelIndex(idxPath, time.Hour, log)
	return NewIndex(catPath, ttl, models, log), catPath
}

func TestOffersFromTree(t *testing.T) {
	src := `{"catalog": {
		"Смартфоны": {"Apple": {"iPhone 15": {
			"iPhone 15 256Gb Black eSim": {"min_price": 62500.0, "best_channels": ["ch_a", "ch_b"]}
		}}},
		"Аксессуары": {"Чехол прозрачный": {"min_price": null}}
	}}`
	idx, _ := newTestIndex(t, src, time.Hour)

	offers := idx.Offers()
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	o := offers[0]
	if o.Model != "iPhone 15" {
		t.Errorf("Model = %q, want %q", o.Model, "iPhone 15")
	}
	if diff := cmp.Diff([]string{"Смартфоны", "Apple", "iPhone 15", "iPhone 15"}, o.Path); diff != "" {
		t.Errorf("Path mismatch (-want +got):\n%s", diff)
	}
	if o.Price != 62500 {
		t.Errorf("Price = %d, want 62500", o.Price)
	}
	if o.Storage != "256GB" {
		t.Errorf("Storage = %q, want 256GB", o.Storage)
	}
	if o.Color != "black" {
		t.Errorf("Color = %q, want black", o.Color)
	}
	if o.SIM != "esim" {
		t.Errorf("SIM = %q, want esim", o.SIM)
	}
	if diff := cmp.Diff([]string{"ch_a", "ch_b"}, o.BestChannels); diff != "" {
		t.Errorf("BestChannels mismatch (-want +got):\n%s", diff)
	}
}

func TestOffersFromFlatList(t *testing.T) {
	src := `{"etalon_with_prices": [
		{"raw_etalon": "iPhone 15 256Gb Black", "path": ["Смартфоны", "Apple", "iPhone 15", "iPhone 15"],
		 "min_price": "62500", "best_channels": ["ch_a"]},
		{"raw_etalon": "iPhone 15 128Gb Blue", "path": []},
		{"raw_etalon": "", "min_price": 100}
	]}`
	idx, _ := newTestIndex(t, src, time.Hour)

	offers := idx.Offers()
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	if offers[0].Price != 62500 {
		t.Errorf("Price = %d, want 62500 (string min_price accepted)", offers[0].Price)
	}
	// A smartphone with no explicit SIM token gets the inferred default.
	if offers[0].SIM != "sim+esim" {
		t.Errorf("SIM = %q, want sim+esim", offers[0].SIM)
	}
}

func TestOffersPathFallbackFromTree(t *testing.T) {
	src := `{"catalog": {
		"Приставки и игры": {"Sony": {"PlayStation 5": {
			"PlayStation 5 Slim 1TB": {"min_price": 38000}
		}}}
	}}`
	idx, _ := newTestIndex(t, src, time.Hour)

	offers := idx.Offers()
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	o := offers[0]
	if o.Model != "PlayStation 5" {
		t.Errorf("Model = %q, want last tree segment above the leaf", o.Model)
	}
	if diff := cmp.Diff([]string{"Приставки и игры", "Sony", "PlayStation 5"}, o.Path); diff != "" {
		t.Errorf("Path mismatch (-want +got):\n%s", diff)
	}
	if o.Storage != "1TB" {
		t.Errorf("Storage = %q, want 1TB", o.Storage)
	}
}

func TestOffersWatchCanonicalization(t *testing.T) {
	src := `{"catalog": {
		"Умные часы": {"Apple": {"Apple Watch 10": {
			"Apple Watch 10 42mm Starlight": {"min_price": 32000}
		}}}
	}}`
	idx, _ := newTestIndex(t, src, time.Hour)

	offers := idx.Offers()
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	if offers[0].Model != "Apple Watch Series 10" {
		t.Errorf("Model = %q, want Apple Watch Series 10", offers[0].Model)
	}
	if offers[0].ModelKey != "aw-10" {
		t.Errorf("ModelKey = %q, want aw-10", offers[0].ModelKey)
	}
}

func TestOffersRebuildOnSourceChange(t *testing.T) {
	src := `{"catalog": {"Смартфоны": {"Apple": {"iPhone 15": {
		"iPhone 15 256Gb Black": {"min_price": 60000}
	}}}}}`
	idx, path := newTestIndex(t, src, time.Hour)

	if got := idx.Offers(); len(got) != 1 || got[0].Price != 60000 {
		t.Fatalf("initial snapshot wrong: %+v", got)
	}

	next := `{"catalog": {"Смартфоны": {"Apple": {"iPhone 15": {
		"iPhone 15 256Gb Black": {"min_price": 61000}
	}}}}}`
	if err := os.WriteFile(path, []byte(next), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, time.Now(), time.Now().Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}

	got := idx.Offers()
	if len(got) != 1 || got[0].Price != 61000 {
		t.Errorf("snapshot not rebuilt on mtime change within TTL: %+v", got)
	}
}

func TestOffersMissingFile(t *testing.T) {
	idx, path := newTestIndex(t, `{"catalog": {}}`, time.Hour)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if got := idx.Offers(); len(got) != 0 {
		t.Errorf("missing source yielded %d offers, want 0", len(got))
	}
}
