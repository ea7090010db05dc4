// Package runtimecfg reads live operator flags from the shared data
// file: the auto-reply enabled switch, the allowed catalog paths and the
// per-account chat whitelist. Reads are cached behind short TTLs so the
// hot path never waits on disk, and staleness up to the TTL is accepted.
package runtimecfg

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"quote_bot/internal/allow"
)

// TTLs are the per-concern cache lifetimes.
type TTLs struct {
	Enabled      time.Duration
	AllowedPaths time.Duration
	Chats        time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Enabled:      2 * time.Second,
		AllowedPaths: 10 * time.Second,
		Chats:        30 * time.Second,
	}
}

type chatEntry struct {
	Type      string `json:"type"`
	Account   string `json:"account"`
	ChannelID any    `json:"channel_id"`
}

type dataFile struct {
	Enabled      bool        `json:"auto_replies_enabled"`
	AllowedPaths []string    `json:"auto_replies_allowed_paths"`
	Sources      []chatEntry `json:"sources"`
	Chats        []chatEntry `json:"chats"`
	Channels     []chatEntry `json:"channels"`
}

type chatSet map[int64]bool

// Config is the TTL-cached view of the data file.
type Config struct {
	path string
	ttl  TTLs
	log  *slog.Logger

	mu        sync.Mutex
	now       func() time.Time
	enabled   bool
	enabledAt time.Time
	paths     allow.Spec
	pathsAt   time.Time
	chats     map[string]chatSet
	chatsAt   map[string]time.Time
}

func New(path string, ttl TTLs, log *slog.Logger) *Config {
	return &Config{
		path:    path,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		chats:   map[string]chatSet{},
		chatsAt: map[string]time.Time{},
	}
}

// Enabled reports the auto-reply switch; a missing or unreadable data
// file reads as off.
func (c *Config) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.enabledAt) < c.ttl.Enabled {
		return c.enabled
	}
	db, err := c.read()
	if err != nil {
		c.log.Warn("runtime config unavailable", "path", c.path, "error", err)
		db = dataFile{}
	}
	c.enabled = db.Enabled
	c.enabledAt = now
	return c.enabled
}

// AllowedPaths returns the catalog subtree whitelist; empty means no
// restriction.
func (c *Config) AllowedPaths() allow.Spec {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.pathsAt) < c.ttl.AllowedPaths {
		return c.paths
	}
	db, err := c.read()
	if err != nil {
		db = dataFile{}
	}
	c.paths = allow.ParseSpec(db.AllowedPaths)
	c.pathsAt = now
	return c.paths
}

// AllowedChats returns the normalized chat IDs this account listens to.
// An empty set means the account has no whitelist and skips nothing.
func (c *Config) AllowedChats(account string) map[int64]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if at, ok := c.chatsAt[account]; ok && now.Sub(at) < c.ttl.Chats {
		return c.chats[account]
	}
	db, err := c.read()
	if err != nil {
		db = dataFile{}
	}
	c.chats[account] = collectChats(db, account)
	c.chatsAt[account] = now
	return c.chats[account]
}

func (c *Config) read() (dataFile, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return dataFile{}, err
	}
	var db dataFile
	if err := json.Unmarshal(raw, &db); err != nil {
		return dataFile{}, err
	}
	return db, nil
}

func collectChats(db dataFile, account string) chatSet {
	out := chatSet{}
	add := func(entries []chatEntry, chatTypeOnly bool) {
		for _, e := range entries {
			if chatTypeOnly && !strings.EqualFold(strings.TrimSpace(e.Type), "chat") {
				continue
			}
			if a := strings.TrimSpace(e.Account); a != "" && a != account {
				continue
			}
			if id := toChatID(e.ChannelID); id != 0 {
				out[NormalizeChatID(id)] = true
			}
		}
	}
	add(db.Sources, true)
	add(db.Chats, false)
	add(db.Channels, false)
	return out
}

func toChatID(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// NormalizeChatID folds supergroup/channel IDs of the -100XXXXXXXXXX
// form onto the bare channel ID so they compare equal to the stored
// whitelist entries.
func NormalizeChatID(cid int64) int64 {
	if cid < 0 {
		cid = -cid
	}
	s := strconv.FormatInt(cid, 10)
	if strings.HasPrefix(s, "100") && len(s) > 10 {
		if id, err := strconv.ParseInt(s[3:], 10, 64); err == nil {
			return id
		}
	}
	return cid
}
