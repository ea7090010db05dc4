package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"quote_bot/internal/model"
	"quote_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db   *sql.DB
	keep time.Duration
}

// NewSQLite opens a SQLite database at dsn, runs pending migrations and
// keeps audit rows for the given window.
func NewSQLite(dsn string, keep time.Duration) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, keep: keep}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func textKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func recordTime(t time.Time) (time.Time, string) {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t, t.UTC().Format(timeLayout)
}

// SaveSpam upserts a spam audit record keyed by (user_id, text).
func (s *SQLite) SaveSpam(ctx context.Context, rec model.SpamRecord) error {
	if err := s.pruneTable(ctx, "spam_records"); err != nil {
		return err
	}
	_, dateStr := recordTime(rec.Date)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spam_records (user_id, text, text_key, account, origin, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, text_key) DO UPDATE SET
		   text = excluded.text, account = excluded.account, origin = excluded.origin,
		   reason = excluded.reason, created_at = excluded.created_at`,
		rec.UserID, rec.Text, textKey(rec.Text), rec.Account, rec.Origin, rec.Reason, dateStr,
	)
	if err != nil {
		return fmt.Errorf("insert spam record: %w", err)
	}
	return nil
}

// SaveUnmatched appends an unmatched audit record.
func (s *SQLite) SaveUnmatched(ctx context.Context, rec model.UnmatchedRecord) error {
	if err := s.pruneTable(ctx, "unmatched_records"); err != nil {
		return err
	}
	parsed, err := json.Marshal(rec.Parsed)
	if err != nil {
		return fmt.Errorf("marshal parse attempts: %w", err)
	}
	_, dateStr := recordTime(rec.Date)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO unmatched_records (user_id, text, type, reason, parsed, account, origin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Text, rec.Type, rec.Reason, string(parsed), rec.Account, rec.Origin, dateStr,
	)
	if err != nil {
		return fmt.Errorf("insert unmatched record: %w", err)
	}
	return nil
}

// SaveMatched upserts a matched audit record keyed by (user_id, text);
// the latest reply wins.
func (s *SQLite) SaveMatched(ctx context.Context, rec model.MatchedRecord) error {
	if err := s.pruneTable(ctx, "matched_records"); err != nil {
		return err
	}
	pairs, err := json.Marshal(rec.Pairs)
	if err != nil {
		return fmt.Errorf("marshal match pairs: %w", err)
	}
	_, dateStr := recordTime(rec.Date)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matched_records (user_id, text, text_key, type, reply, pairs, account, origin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, text_key) DO UPDATE SET
		   text = excluded.text, type = excluded.type, reply = excluded.reply,
		   pairs = excluded.pairs, account = excluded.account, origin = excluded.origin,
		   created_at = excluded.created_at`,
		rec.UserID, rec.Text, textKey(rec.Text), rec.Type, rec.Reply, string(pairs),
		rec.Account, rec.Origin, dateStr,
	)
	if err != nil {
		return fmt.Errorf("insert matched record: %w", err)
	}
	return nil
}

// ListSpam returns all stored spam records, oldest first.
func (s *SQLite) ListSpam(ctx context.Context) ([]model.SpamRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, text, account, origin, reason, created_at FROM spam_records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query spam records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.SpamRecord
	for rows.Next() {
		r, err := scanSpam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListUnmatched returns all stored unmatched records, oldest first.
func (s *SQLite) ListUnmatched(ctx context.Context) ([]model.UnmatchedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, text, type, reason, parsed, account, origin, created_at
		 FROM unmatched_records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query unmatched records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.UnmatchedRecord
	for rows.Next() {
		r, err := scanUnmatched(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListMatched returns all stored matched records, oldest first.
func (s *SQLite) ListMatched(ctx context.Context) ([]model.MatchedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, text, type, reply, pairs, account, origin, created_at
		 FROM matched_records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query matched records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.MatchedRecord
	for rows.Next() {
		r, err := scanMatched(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneOlderThan drops all audit rows created before the cutoff.
func (s *SQLite) PruneOlderThan(ctx context.Context, cutoff time.Time) error {
	cutoffStr := cutoff.UTC().Format(timeLayout)
	for _, table := range []string{"spam_records", "unmatched_records", "matched_records"} {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE created_at < ?`, cutoffStr,
		); err != nil {
			return fmt.Errorf("prune %s: %w", table, err)
		}
	}
	return nil
}

// ClearAll empties every audit table.
func (s *SQLite) ClearAll(ctx context.Context) error {
	for _, table := range []string{"spam_records", "unmatched_records", "matched_records"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLite) pruneTable(ctx context.Context, table string) error {
	if s.keep <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-s.keep).Format(timeLayout)
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE created_at < ?`, cutoff,
	); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSpam(row scannable) (model.SpamRecord, error) {
	var r model.SpamRecord
	var created string
	err := row.Scan(&r.UserID, &r.Text, &r.Account, &r.Origin, &r.Reason, &created)
	if err != nil {
		return r, fmt.Errorf("scan spam record: %w", err)
	}
	r.Date, _ = time.Parse(timeLayout, created)
	return r, nil
}

func scanUnmatched(row scannable) (model.UnmatchedRecord, error) {
	var r model.UnmatchedRecord
	var parsed, created string
	err := row.Scan(&r.UserID, &r.Text, &r.Type, &r.Reason, &parsed, &r.Account, &r.Origin, &created)
	if err != nil {
		return r, fmt.Errorf("scan unmatched record: %w", err)
	}
	if parsed != "" {
		_ = json.Unmarshal([]byte(parsed), &r.Parsed)
	}
	r.Date, _ = time.Parse(timeLayout, created)
	return r, nil
}

func scanMatched(row scannable) (model.MatchedRecord, error) {
	var r model.MatchedRecord
	var pairs, created string
	err := row.Scan(&r.UserID, &r.Text, &r.Type, &r.Reply, &pairs, &r.Account, &r.Origin, &created)
	if err != nil {
		return r, fmt.Errorf("scan matched record: %w", err)
	}
	if pairs != "" {
		_ = json.Unmarshal([]byte(pairs), &r.Pairs)
	}
	r.Date, _ = time.Parse(timeLayout, created)
	return r, nil
}
