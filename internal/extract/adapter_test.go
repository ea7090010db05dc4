package extract

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"quote_bot/internal/model"
)

func TestAdapterPicksMostSpecificConvention(t *testing.T) {
	full := func(text, channel string, date time.Time) []model.Item {
		return []model.Item{{Model: "full", Raw: channel}}
	}
	bare := func(text string) []model.Item {
		return []model.Item{{Model: "bare"}}
	}

	a := NewAdapter(full, nil, bare, slog.New(slog.NewTextHandler(io.Discard, nil)))
	items := a.Extract("iphone 16", "chat-1", time.Now())
	if len(items) != 1 || items[0].Model != "full" || items[0].Raw != "chat-1" {
		t.Errorf("items = %+v, want the full convention with channel passed through", items)
	}
}

func TestAdapterBareConvention(t *testing.T) {
	bare := func(text string) []model.Item {
		return []model.Item{{Model: text}}
	}

	a := NewAdapter(nil, nil, bare, slog.New(slog.NewTextHandler(io.Discard, nil)))
	items := a.Extract("iphone 16", "chat-1", time.Now())
	if len(items) != 1 || items[0].Model != "iphone 16" {
		t.Errorf("items = %+v", items)
	}
}

func TestAdapterNoExtractor(t *testing.T) {
	a := NewAdapter(nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if items := a.Extract("iphone 16", "chat-1", time.Now()); items != nil {
		t.Errorf("items = %+v, want nil", items)
	}
	if a.Probe("iphone 16") {
		t.Error("Probe reported a hit with no extractor")
	}
}

func TestAdapterRecoversFromPanic(t *testing.T) {
	bare := func(text string) []model.Item {
		panic("index out of range")
	}

	a := NewAdapter(nil, nil, bare, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if items := a.Extract("iphone 16", "chat-1", time.Now()); items != nil {
		t.Errorf("items = %+v, want nil after panic", items)
	}
}

func TestAdapterProbe(t *testing.T) {
	bare := func(text string) []model.Item {
		if text == "iphone 16" {
			return []model.Item{{Model: "iPhone 16"}}
		}
		return nil
	}

	a := NewAdapter(nil, nil, bare, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !a.Probe("iphone 16") {
		t.Error("Probe missed a recognizable text")
	}
	if a.Probe("привет") {
		t.Error("Probe hit on small talk")
	}
}
