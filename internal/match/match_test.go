package match

import (
	"io"
	"log/slog"
	"testing"

	"quote_bot/internal/model"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func phone(mdl, storage, color, sim string) model.Item {
	return model.Item{
		Model:   mdl,
		Storage: storage,
		Color:   color,
		SIM:     sim,
		Path:    []string{"смартфоны", "Apple", mdl},
	}
}

func offer(it model.Item, price int) model.Offer {
	return model.Offer{Item: it, Price: price, Currency: "RUB"}
}

func TestBestLowestPriceWins(t *testing.T) {
	m := New(discard())
	cand := phone("iPhone 16 Pro", "256GB", "black", "sim+esim")
	offers := []model.Offer{
		offer(phone("iPhone 16 Pro", "256GB", "Black", "sim+esim"), 1500),
		offer(phone("iPhone 16 Pro", "256GB", "Black", "sim+esim"), 1000),
	}
	got, reason := m.Best(cand, offers)
	if got == nil {
		t.Fatalf("Best returned nil, reason %q", reason)
	}
	if got.Price != 1000 {
		t.Errorf("Best price = %d, want 1000", got.Price)
	}
}

func TestBestTieKeepsFirst(t *testing.T) {
	m := New(discard())
	cand := phone("iPhone 16", "", "", "")
	offers := []model.Offer{
		offer(model.Item{Model: "iPhone 16", Path: []string{"смартфоны"}, Region: "eu"}, 900),
		offer(model.Item{Model: "iPhone 16", Path: []string{"смартфоны"}, Region: "us"}, 900),
	}
	got, _ := m.Best(cand, offers)
	if got == nil {
		t.Fatal("Best returned nil")
	}
	if got.Region != "eu" {
		t.Errorf("tie broken to %q, want first-seen offer (eu)", got.Region)
	}
}

func TestHardGuardColor(t *testing.T) {
	cand := phone("iPhone 16 Pro", "", "black", "")
	off := offer(phone("iPhone 16 Pro", "", "white", ""), 90000)
	ok, reason := HardGuards(cand, off)
	if ok {
		t.Fatal("black candidate matched white offer")
	}
	if reason != model.ReasonColorMismatch {
		t.Errorf("reason = %q, want %q", reason, model.ReasonColorMismatch)
	}
}

func TestHardGuardOrder(t *testing.T) {
	// Price is checked before everything else.
	cand := phone("iPhone 16", "256GB", "black", "")
	off := offer(phone("iPhone 16", "512GB", "white", ""), 0)
	if ok, reason := HardGuards(cand, off); ok || reason != model.ReasonNoPrice {
		t.Errorf("got (%v, %q), want price failure first", ok, reason)
	}
}

func TestHardGuardSIMNormalization(t *testing.T) {
	cand := phone("iPhone 16", "", "", "1sim")
	if ok, _ := HardGuards(cand, offer(phone("iPhone 16", "", "", "sim+esim"), 1000)); !ok {
		t.Error("1sim did not match sim+esim offer")
	}
	if ok, reason := HardGuards(cand, offer(phone("iPhone 16", "", "", "esim"), 1000)); ok {
		t.Error("1sim matched esim offer")
	} else if reason != model.ReasonSIMMismatch {
		t.Errorf("reason = %q, want %q", reason, model.ReasonSIMMismatch)
	}
}

func TestBestMostFrequentReason(t *testing.T) {
	m := New(discard())
	cand := phone("iPhone 16 Pro", "256GB", "black", "")
	offers := []model.Offer{
		offer(phone("iPhone 15", "256GB", "black", ""), 1000),
		offer(phone("iPhone 16 Pro", "256GB", "white", ""), 1000),
		offer(phone("iPhone 16 Pro", "256GB", "blue", ""), 1000),
	}
	got, reason := m.Best(cand, offers)
	if got != nil {
		t.Fatalf("unexpected match %+v", got)
	}
	if reason != model.ReasonColorMismatch {
		t.Errorf("reason = %q, want %q", reason, model.ReasonColorMismatch)
	}
}

func TestBestNoOffers(t *testing.T) {
	m := New(discard())
	got, reason := m.Best(phone("iPhone 16", "", "", ""), nil)
	if got != nil || reason != model.ReasonNoMatch {
		t.Errorf("got (%v, %q), want (nil, %q)", got, reason, model.ReasonNoMatch)
	}
}

func TestSoftModelMismatch(t *testing.T) {
	m := New(discard())
	ok, reason := m.Soft(phone("iPhone 16", "", "", ""), phone("iPhone 15", "", "", ""))
	if ok || reason != model.ReasonModelMismatch {
		t.Errorf("got (%v, %q), want model mismatch", ok, reason)
	}
}

func TestSoftColorCompat(t *testing.T) {
	m := New(discard())
	tests := []struct {
		name        string
		cand, offer model.Item
		want        bool
	}{
		{
			name:  "silver equals white via canon",
			cand:  phone("iPhone 15", "", "Silver", ""),
			offer: phone("iPhone 15", "", "White", ""),
			want:  true,
		},
		{
			name:  "starlight equals silver on phones",
			cand:  phone("iPhone 15", "", "Starlight", ""),
			offer: phone("iPhone 15", "", "Silver", ""),
			want:  true,
		},
		{
			name:  "black does not equal white",
			cand:  phone("iPhone 15", "", "Black", ""),
			offer: phone("iPhone 15", "", "White", ""),
			want:  false,
		},
		{
			name: "s25 ultra jet black stays distinct from black",
			cand: model.Item{Model: "Galaxy S25 Ultra", Color: "Jet Black",
				Path: []string{"смартфоны", "Samsung"}},
			offer: model.Item{Model: "Galaxy S25 Ultra", Color: "Black",
				Path: []string{"смартфоны", "Samsung"}},
			want: false,
		},
		{
			name: "s25 navy stays distinct from icy blue",
			cand: model.Item{Model: "Galaxy S25", Color: "Navy",
				Path: []string{"смартфоны", "Samsung"}},
			offer: model.Item{Model: "Galaxy S25", Color: "Icy Blue",
				Path: []string{"смартфоны", "Samsung"}},
			want: false,
		},
		{
			name: "watch starlight stays distinct from silver",
			cand: model.Item{Model: "Apple Watch Series 10", ModelKey: "aw-10",
				Color: "Starlight", Path: []string{"умные часы", "Apple"}},
			offer: model.Item{Model: "Apple Watch Series 10", ModelKey: "aw-10",
				Color: "Silver", Path: []string{"умные часы", "Apple"}},
			want: false,
		},
		{
			name:  "offer color with blank candidate color fails",
			cand:  phone("iPhone 15", "", "", ""),
			offer: phone("iPhone 15", "", "Black", ""),
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := m.Soft(tt.cand, tt.offer)
			if ok != tt.want {
				t.Errorf("Soft color match = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestSoftWatchRules(t *testing.T) {
	m := New(discard())
	watch := func(sizeMM, bandType, bandSize string) model.Item {
		return model.Item{
			Model: "Apple Watch Series 10", ModelKey: "aw-10",
			WatchSizeMM: sizeMM, BandType: bandType, BandSize: bandSize,
			Path: []string{"умные часы", "Apple"},
		}
	}

	// Offer band details with a blank candidate are soft-optional.
	if ok, reason := m.Soft(watch("42", "", ""), watch("42", "Sport Band", "S/M")); !ok {
		t.Errorf("band details on offer only rejected match: %s", reason)
	}
	// Case size must agree when both filled.
	if ok, _ := m.Soft(watch("42", "", ""), watch("46", "", "")); ok {
		t.Error("size 42 matched size 46")
	}
	// Band type mismatch rejects when candidate states one.
	if ok, _ := m.Soft(watch("42", "Alpine Loop", ""), watch("42", "Sport Band", "")); ok {
		t.Error("alpine loop matched sport band")
	}
}

func TestSoftSmartphoneRAMBothFilled(t *testing.T) {
	m := New(discard())
	cand := phone("iPhone 16 Pro", "256GB", "", "")
	cand.RAM = 16
	off := phone("iPhone 16 Pro", "256GB", "", "")
	if ok, reason := m.Soft(cand, off); !ok {
		t.Errorf("one-sided RAM rejected smartphone match: %s", reason)
	}

	lapCand := model.Item{Model: "MacBook Pro 14", RAM: 16, Path: []string{"ноутбуки", "Apple"}}
	lapOffer := model.Item{Model: "MacBook Pro 14", RAM: 32, Path: []string{"ноутбуки", "Apple"}}
	if ok, _ := m.Soft(lapCand, lapOffer); ok {
		t.Error("laptop RAM mismatch passed")
	}
}
