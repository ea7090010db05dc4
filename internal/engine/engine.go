// Package engine orchestrates the per-message pipeline: classify,
// extract, filter by allowed catalog paths, match against the offer
// snapshot, dedup, compose and send. Every outcome is recorded for
// audit. Nothing here is allowed to fail loudly: a failing step degrades
// to "no reply" plus a log line.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quote_bot/internal/allow"
	"quote_bot/internal/classify"
	"quote_bot/internal/dedup"
	"quote_bot/internal/match"
	"quote_bot/internal/model"
	"quote_bot/internal/reply"
	"quote_bot/internal/storage"
)

// ErrPrivacy marks a send failure caused by the recipient's privacy
// settings. The pipeline records the outcome and never retries.
var ErrPrivacy = errors.New("recipient restricts direct messages")

// Sender delivers the composed reply as a direct message.
type Sender interface {
	SendDirect(ctx context.Context, userID int64, text string) error
}

// Extractor turns raw text into structured candidate items and offers a
// cheap emptiness probe for the classifier fallback.
type Extractor interface {
	Extract(text, channel string, date time.Time) []model.Item
	Probe(text string) bool
}

// OfferSource serves the current offer snapshot.
type OfferSource interface {
	Offers() []model.Offer
}

// RuntimeFlags exposes the live operator configuration.
type RuntimeFlags interface {
	Enabled() bool
	AllowedPaths() allow.Spec
}

// Deps wires the pipeline components together.
type Deps struct {
	Log       *slog.Logger
	Extractor Extractor
	Offers    OfferSource
	Matcher   *match.Matcher
	Composer  *reply.Composer
	Guard     *dedup.Guard
	Runtime   RuntimeFlags
	Store     storage.Storage
	Sender    Sender
	Account   string
}

type Engine struct {
	d Deps
}

func New(d Deps) *Engine {
	return &Engine{d: d}
}

// Reset clears the dedup caches; invoked by the daily maintenance job
// and when the operator toggles the feature.
func (e *Engine) Reset() {
	e.d.Guard.Reset()
}

// Process runs the full pipeline for one inbound message. It never
// returns an error: failures are logged and the user simply gets no
// reply.
func (e *Engine) Process(ctx context.Context, msg model.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			e.d.Log.Error("message pipeline panicked", "user_id", msg.SenderID, "panic", r)
		}
	}()

	log := e.d.Log.With("user_id", msg.SenderID, "origin", msg.Origin)

	switch classify.Classify(msg.Text, e.d.Extractor.Probe) {
	case model.KindSilent:
		log.Debug("message ignored")
		return
	case model.KindSpam:
		e.saveSpam(ctx, msg)
		return
	}

	items := e.d.Extractor.Extract(msg.Text, msg.Origin, msg.Time)
	allowed := e.d.Runtime.AllowedPaths().Filter(items)
	if len(allowed) == 0 {
		e.saveUnmatched(ctx, msg, model.ReasonNotAllowed, items)
		return
	}

	// An empty snapshot means the offer source is unavailable; the match
	// loop would relabel it as an ordinary no_match.
	offers := e.d.Offers.Offers()
	if len(offers) == 0 {
		e.saveUnmatched(ctx, msg, model.ReasonNoOffers, allowed)
		return
	}

	var pairs []model.MatchPair
	var lines []string
	lastReason := model.ReasonNoMatch
	for _, cand := range allowed {
		best, reason := e.d.Matcher.Best(cand, offers)
		if best == nil {
			if reason != "" {
				lastReason = reason
			}
			continue
		}
		pairs = append(pairs, model.MatchPair{Candidate: cand, Offer: *best})
		lines = append(lines, e.d.Composer.Compose(cand, *best))
	}
	if len(pairs) == 0 {
		e.saveUnmatched(ctx, msg, lastReason, allowed)
		return
	}

	if e.d.Guard.BlockedGlobally(msg.Text) || e.d.Guard.RepliedToUser(msg.SenderID, msg.Text) {
		log.Debug("suppressed by text dedup window")
		return
	}
	replyText := reply.JoinUnique(lines)
	if e.d.Guard.SentRecently(msg.SenderID, replyText) {
		log.Debug("suppressed by recent-reply window")
		return
	}

	e.saveMatched(ctx, msg, replyText, pairs)

	if !e.d.Runtime.Enabled() {
		log.Info("auto-reply disabled, matched outcome recorded only")
		return
	}

	switch err := e.d.Sender.SendDirect(ctx, msg.SenderID, replyText); {
	case errors.Is(err, ErrPrivacy):
		log.Info("recipient unreachable, privacy restricted")
		e.saveUnmatched(ctx, msg, "privacy_restricted", allowed)
	case err != nil:
		log.Error("send reply", "error", err)
		e.saveUnmatched(ctx, msg, "send_failed", allowed)
	default:
		log.Info("reply sent", "items", len(pairs))
	}
}

func (e *Engine) saveSpam(ctx context.Context, msg model.RawMessage) {
	rec := model.SpamRecord{
		UserID:  msg.SenderID,
		Text:    msg.Text,
		Account: e.d.Account,
		Origin:  msg.Origin,
		Reason:  "classifier",
		Date:    msg.Time,
	}
	if err := e.d.Store.SaveSpam(ctx, rec); err != nil {
		e.d.Log.Error("save spam record", "error", err)
	}
}

func (e *Engine) saveUnmatched(ctx context.Context, msg model.RawMessage, reason string, parsed []model.Item) {
	rec := model.UnmatchedRecord{
		UserID:  msg.SenderID,
		Text:    msg.Text,
		Type:    string(model.KindProduct),
		Reason:  reason,
		Parsed:  parsed,
		Account: e.d.Account,
		Origin:  msg.Origin,
		Date:    msg.Time,
	}
	if err := e.d.Store.SaveUnmatched(ctx, rec); err != nil {
		e.d.Log.Error("save unmatched record", "error", err)
	}
}

func (e *Engine) saveMatched(ctx context.Context, msg model.RawMessage, replyText string, pairs []model.MatchPair) {
	rec := model.MatchedRecord{
		UserID:  msg.SenderID,
		Text:    msg.Text,
		Type:    string(model.KindProduct),
		Reply:   replyText,
		Pairs:   pairs,
		Account: e.d.Account,
		Origin:  msg.Origin,
		Date:    msg.Time,
	}
	if err := e.d.Store.SaveMatched(ctx, rec); err != nil {
		e.d.Log.Error("save matched record", "error", err)
	}
}
