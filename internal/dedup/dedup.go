// Package dedup suppresses repeated replies with three time-windowed
// caches: the same text from any user, the same text from the same user,
// and the same composed reply to the same user. Entries older than their
// window are pruned lazily on every access, so memory stays bounded by
// traffic volume. The daily bulk clear exists for hygiene only, not
// correctness.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"quote_bot/internal/textnorm"
)

// Windows configures the three suppression windows.
type Windows struct {
	Global  time.Duration
	PerUser time.Duration
	Replied time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		Global:  60 * time.Second,
		PerUser: 2 * time.Minute,
		Replied: 30 * time.Minute,
	}
}

type repliedEntry struct {
	hash string
	at   time.Time
}

// Guard owns all three caches behind one mutex so two messages from the
// same user arriving back to back observe each other in arrival order.
type Guard struct {
	win Windows

	mu      sync.Mutex
	global  map[string]time.Time
	perUser map[string]time.Time
	replied map[int64]repliedEntry

	now func() time.Time
}

func New(win Windows) *Guard {
	return &Guard{
		win:     win,
		global:  map[string]time.Time{},
		perUser: map[string]time.Time{},
		replied: map[int64]repliedEntry{},
		now:     time.Now,
	}
}

func textHash(s string) string {
	sum := sha256.Sum256([]byte(textnorm.Key(s)))
	return hex.EncodeToString(sum[:])
}

// BlockedGlobally reports whether the same normalized text was seen from
// any user within the global window, recording it either way.
func (g *Guard) BlockedGlobally(text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	prune(g.global, now, g.win.Global)

	key := textHash(text)
	if _, ok := g.global[key]; ok {
		return true
	}
	g.global[key] = now
	return false
}

// RepliedToUser reports whether the same normalized text from this user
// was seen within the per-user window, recording it either way.
func (g *Guard) RepliedToUser(userID int64, text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	prune(g.perUser, now, g.win.PerUser)

	key := strconv.FormatInt(userID, 10) + ":" + textHash(text)
	if _, ok := g.perUser[key]; ok {
		return true
	}
	g.perUser[key] = now
	return false
}

// SentRecently reports whether this exact reply was already sent to the
// user within the replied window. A different reply to the same user
// passes and displaces the stored hash.
func (g *Guard) SentRecently(userID int64, reply string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for uid, e := range g.replied {
		if now.Sub(e.at) >= g.win.Replied {
			delete(g.replied, uid)
		}
	}

	h := textHash(reply)
	if prev, ok := g.replied[userID]; ok && prev.hash == h {
		return true
	}
	g.replied[userID] = repliedEntry{hash: h, at: now}
	return false
}

// Reset clears all three caches in bulk.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.global = map[string]time.Time{}
	g.perUser = map[string]time.Time{}
	g.replied = map[int64]repliedEntry{}
}

func prune(m map[string]time.Time, now time.Time, win time.Duration) {
	for k, ts := range m {
		if now.Sub(ts) >= win {
			delete(m, k)
		}
	}
}
