package engine

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"quote_bot/internal/allow"
	"quote_bot/internal/dedup"
	"quote_bot/internal/match"
	"quote_bot/internal/model"
	"quote_bot/internal/reply"
	"quote_bot/internal/storage"
)

type fakeExtractor struct {
	items []model.Item
}

func (f *fakeExtractor) Extract(text, channel string, date time.Time) []model.Item {
	return f.items
}

func (f *fakeExtractor) Probe(text string) bool { return len(f.items) > 0 }

type fakeOffers struct {
	offers []model.Offer
}

func (f *fakeOffers) Offers() []model.Offer { return f.offers }

type fakeRuntime struct {
	enabled bool
	spec    allow.Spec
}

func (f *fakeRuntime) Enabled() bool            { return f.enabled }
func (f *fakeRuntime) AllowedPaths() allow.Spec { return f.spec }

type fakeStore struct {
	spam      []model.SpamRecord
	unmatched []model.UnmatchedRecord
	matched   []model.MatchedRecord
}

func (f *fakeStore) SaveSpam(ctx context.Context, r model.SpamRecord) error {
	f.spam = append(f.spam, r)
	return nil
}

func (f *fakeStore) SaveUnmatched(ctx context.Context, r model.UnmatchedRecord) error {
	f.unmatched = append(f.unmatched, r)
	return nil
}

func (f *fakeStore) SaveMatched(ctx context.Context, r model.MatchedRecord) error {
	f.matched = append(f.matched, r)
	return nil
}

func (f *fakeStore) ListSpam(ctx context.Context) ([]model.SpamRecord, error) { return f.spam, nil }
func (f *fakeStore) ListUnmatched(ctx context.Context) ([]model.UnmatchedRecord, error) {
	return f.unmatched, nil
}
func (f *fakeStore) ListMatched(ctx context.Context) ([]model.MatchedRecord, error) {
	return f.matched, nil
}
func (f *fakeStore) PruneOlderThan(ctx context.Context, cutoff time.Time) error { return nil }
func (f *fakeStore) ClearAll(ctx context.Context) error                         { return nil }
func (f *fakeStore) Close() error                                               { return nil }

var _ storage.Storage = (*fakeStore)(nil)

type sentMessage struct {
	userID int64
	text   string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendDirect(ctx context.Context, userID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{userID, text})
	return nil
}

func phoneItem() model.Item {
	return model.Item{
		Model:   "iPhone 16 Pro",
		Storage: "256gb",
		Color:   "black",
		Path:    []string{"смартфоны", "Apple", "iPhone 16", "iPhone 16 Pro"},
	}
}

func phoneOffer(price int) model.Offer {
	return model.Offer{
		Item: model.Item{
			Model:   "iPhone 16 Pro",
			Storage: "256gb",
			Color:   "black",
			Path:    []string{"смартфоны", "Apple", "iPhone 16", "iPhone 16 Pro"},
		},
		Price:    price,
		Currency: "₽",
	}
}

type testEnv struct {
	engine *Engine
	store  *fakeStore
	sender *fakeSender
}

func newTestEnv(items []model.Item, offers []model.Offer, rt *fakeRuntime) *testEnv {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &fakeStore{}
	sender := &fakeSender{}
	eng := New(Deps{
		Log:       log,
		Extractor: &fakeExtractor{items: items},
		Offers:    &fakeOffers{offers: offers},
		Matcher:   match.New(log),
		Composer:  reply.New(reply.Markup{Enabled: true, T1: 200000, T2: 300000, T3: 400000, A0: 300, A1: 500, A2: 1000, A3: 2000}),
		Guard:     dedup.New(dedup.DefaultWindows()),
		Runtime:   rt,
		Store:     store,
		Sender:    sender,
		Account:   "main",
	})
	return &testEnv{engine: eng, store: store, sender: sender}
}

func buyMessage() model.RawMessage {
	return model.RawMessage{
		SenderID: 7,
		Text:     "куплю iphone 16 pro 256 black",
		Origin:   "chat-1",
		IsGroup:  true,
		Time:     time.Now().UTC(),
	}
}

func TestProcessMatchedSendsReply(t *testing.T) {
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{phoneOffer(90000)}, &fakeRuntime{enabled: true})

	env.engine.Process(context.Background(), buyMessage())

	if len(env.sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(env.sender.sent))
	}
	if got := env.sender.sent[0]; got.userID != 7 || !strings.Contains(got.text, "90 300") {
		t.Errorf("reply = %+v, want marked-up price 90 300 to user 7", got)
	}
	if len(env.store.matched) != 1 {
		t.Fatalf("matched records = %d, want 1", len(env.store.matched))
	}
	if env.store.matched[0].Reply != env.sender.sent[0].text {
		t.Error("recorded reply differs from sent reply")
	}
}

func TestProcessSpamRecordedNotSent(t *testing.T) {
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{phoneOffer(90000)}, &fakeRuntime{enabled: true})

	msg := buyMessage()
	msg.Text = "Продам iphone 16 pro 256, дешево"
	env.engine.Process(context.Background(), msg)

	if len(env.sender.sent) != 0 {
		t.Error("spam message produced a reply")
	}
	if len(env.store.spam) != 1 {
		t.Fatalf("spam records = %d, want 1", len(env.store.spam))
	}
}

func TestProcessPathOutsideWhitelist(t *testing.T) {
	rt := &fakeRuntime{enabled: true, spec: allow.ParseSpec([]string{"Умные часы"})}
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{phoneOffer(90000)}, rt)

	env.engine.Process(context.Background(), buyMessage())

	if len(env.sender.sent) != 0 {
		t.Error("filtered candidate still produced a reply")
	}
	if len(env.store.unmatched) != 1 {
		t.Fatalf("unmatched records = %d, want 1", len(env.store.unmatched))
	}
	if got := env.store.unmatched[0].Reason; got != model.ReasonNotAllowed {
		t.Errorf("reason = %q, want %q", got, model.ReasonNotAllowed)
	}
}

func TestProcessDryRunRecordsWithoutSending(t *testing.T) {
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{phoneOffer(90000)}, &fakeRuntime{enabled: false})

	env.engine.Process(context.Background(), buyMessage())

	if len(env.sender.sent) != 0 {
		t.Error("disabled engine sent a reply")
	}
	if len(env.store.matched) != 1 {
		t.Errorf("matched records = %d, want 1 (recorded even when disabled)", len(env.store.matched))
	}
}

func TestProcessDuplicateSuppressed(t *testing.T) {
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{phoneOffer(90000)}, &fakeRuntime{enabled: true})

	env.engine.Process(context.Background(), buyMessage())
	env.engine.Process(context.Background(), buyMessage())

	if len(env.sender.sent) != 1 {
		t.Errorf("sent %d replies for identical back-to-back messages, want 1", len(env.sender.sent))
	}
}

func TestProcessResetClearsSuppression(t *testing.T) {
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{phoneOffer(90000)}, &fakeRuntime{enabled: true})

	env.engine.Process(context.Background(), buyMessage())
	env.engine.Reset()
	env.engine.Process(context.Background(), buyMessage())

	if len(env.sender.sent) != 2 {
		t.Errorf("sent %d replies across a Reset, want 2", len(env.sender.sent))
	}
}

func TestProcessPrivacyFailure(t *testing.T) {
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{phoneOffer(90000)}, &fakeRuntime{enabled: true})
	env.sender.err = ErrPrivacy

	env.engine.Process(context.Background(), buyMessage())

	if len(env.store.matched) != 1 {
		t.Errorf("matched records = %d, want 1", len(env.store.matched))
	}
	if len(env.store.unmatched) != 1 || env.store.unmatched[0].Reason != "privacy_restricted" {
		t.Errorf("privacy failure not recorded: %+v", env.store.unmatched)
	}
}

func TestProcessNoOffers(t *testing.T) {
	env := newTestEnv([]model.Item{phoneItem()}, nil, &fakeRuntime{enabled: true})

	env.engine.Process(context.Background(), buyMessage())

	if len(env.sender.sent) != 0 {
		t.Error("reply sent with no offers loaded")
	}
	if len(env.store.unmatched) != 1 || env.store.unmatched[0].Reason != model.ReasonNoOffers {
		t.Errorf("want unmatched with %q, got %+v", model.ReasonNoOffers, env.store.unmatched)
	}
}

func TestProcessHardGuardMismatch(t *testing.T) {
	offer := phoneOffer(90000)
	offer.Color = "white"
	env := newTestEnv([]model.Item{phoneItem()}, []model.Offer{offer}, &fakeRuntime{enabled: true})

	env.engine.Process(context.Background(), buyMessage())

	if len(env.sender.sent) != 0 {
		t.Error("black candidate received white offer")
	}
	if len(env.store.unmatched) != 1 || env.store.unmatched[0].Reason != model.ReasonColorMismatch {
		t.Errorf("want unmatched with color_mismatch, got %+v", env.store.unmatched)
	}
}
