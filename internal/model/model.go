// Package model defines the domain types used across the application.
package model

import (
	"strings"
	"time"
)

// Kind is the classification label assigned to an inbound message.
type Kind string

// Supported classification kinds.
const (
	KindProduct Kind = "product"
	KindSpam    Kind = "spam"
	KindSilent  Kind = "silent"
)

// Canonical SIM configuration values.
const (
	SIMPlusESIM = "sim+esim"
	SIMDual     = "2sim"
	SIMESIM     = "esim"
)

// Rejection reason codes reported by the matcher and the pipeline.
const (
	ReasonNoMatch         = "no_match"
	ReasonNoPrice         = "no_price"
	ReasonModelMismatch   = "model_mismatch"
	ReasonColorMismatch   = "color_mismatch"
	ReasonStorageMismatch = "storage_mismatch"
	ReasonSIMMismatch     = "sim_mismatch"
	ReasonRegionMismatch  = "region_mismatch"
	ReasonNoOffers        = "no_etalons"
	ReasonNotAllowed      = "no_parsed_or_not_allowed"
)

// Item is a structured product description: either a candidate extracted
// from an incoming message or the attribute part of a catalog offer.
// Path mirrors the catalog hierarchy: category, brand, series, model.
type Item struct {
	Model        string   `json:"model"`
	Storage      string   `json:"storage,omitempty"`
	RAM          int      `json:"ram,omitempty"`
	Color        string   `json:"color,omitempty"`
	SIM          string   `json:"sim,omitempty"`
	Region       string   `json:"region,omitempty"`
	Connectivity string   `json:"connectivity,omitempty"`
	Chip         string   `json:"chip,omitempty"`
	Code         string   `json:"code,omitempty"`
	WatchSizeMM  string   `json:"watch_size_mm,omitempty"`
	BandType     string   `json:"band_type,omitempty"`
	BandColor    string   `json:"band_color,omitempty"`
	BandSize     string   `json:"band_size,omitempty"`
	Path         []string `json:"path,omitempty"`
	Raw          string   `json:"raw,omitempty"`

	// ModelKey is a canonical model key set by model canonicalization
	// (e.g. every Apple Watch Series 7 spelling maps to "aw-7").
	ModelKey string `json:"model_key,omitempty"`
}

// Category returns the lowercased catalog category (first path segment),
// or "_default" when the path is empty.
func (it Item) Category() string {
	if len(it.Path) == 0 || strings.TrimSpace(it.Path[0]) == "" {
		return "_default"
	}
	return strings.ToLower(strings.TrimSpace(it.Path[0]))
}

// Offer is a priced catalog leaf usable for matching.
type Offer struct {
	Item
	Price        int      `json:"price"`
	Currency     string   `json:"currency"`
	BestChannels []string `json:"best_channels,omitempty"`
}

// MatchPair records one candidate together with the offer it matched.
type MatchPair struct {
	Candidate Item  `json:"parsed"`
	Offer     Offer `json:"matched"`
}

// RawMessage is an inbound chat message as seen by the pipeline.
// It is never persisted beyond audit records.
type RawMessage struct {
	SenderID    int64
	Text        string
	ChatID      int64
	IsPrivate   bool
	IsGroup     bool
	SenderIsBot bool
	Origin      string
	Time        time.Time
}

// SpamRecord is an audit record for a message classified as spam.
type SpamRecord struct {
	UserID  int64
	Text    string
	Account string
	Origin  string
	Reason  string
	Date    time.Time
}

// UnmatchedRecord is an audit record for a product message that produced
// no reply, with the parse attempts that were made.
type UnmatchedRecord struct {
	UserID  int64
	Text    string
	Type    string
	Reason  string
	Parsed  []Item
	Account string
	Origin  string
	Date    time.Time
}

// MatchedRecord is an audit record for a successfully matched message.
type MatchedRecord struct {
	UserID  int64
	Text    string
	Type    string
	Reply   string
	Pairs   []MatchPair
	Account string
	Origin  string
	Date    time.Time
}
