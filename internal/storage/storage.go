// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"quote_bot/internal/model"
)

// Storage is the interface for all audit-record persistence operations.
// Spam and matched records are deduplicated on (user_id, lowercased
// text): a repeat replaces the stored row. All tables are pruned to a
// rolling keep-window before each write.
type Storage interface {
	SaveSpam(ctx context.Context, rec model.SpamRecord) error
	SaveUnmatched(ctx context.Context, rec model.UnmatchedRecord) error
	SaveMatched(ctx context.Context, rec model.MatchedRecord) error

	ListSpam(ctx context.Context) ([]model.SpamRecord, error)
	ListUnmatched(ctx context.Context) ([]model.UnmatchedRecord, error)
	ListMatched(ctx context.Context) ([]model.MatchedRecord, error)

	PruneOlderThan(ctx context.Context, cutoff time.Time) error
	ClearAll(ctx context.Context) error

	Close() error
}
