// Package storage provides data persistence for the rank tracker.
// It implements SQLite-based storage for keywords, the retry queue and
// application metadata.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"serptrack/internal/tracker"

	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements the tracker KeywordStore and RetryQueue
// interfaces using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &SQLiteStorage{db: db}

	if err := storage.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// InitSchema creates the database schema
func (s *SQLiteStorage) InitSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000", // 30 second timeout for locks
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// AddKeywords inserts new keywords and returns them with their assigned
// identifiers.
func (s *SQLiteStorage) AddKeywords(ctx context.Context, keywords []tracker.Keyword) ([]tracker.Keyword, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keywords (keyword, device, country, city, domain, position, history, url, last_result, tags, sticky, updating, added)
		VALUES (?, ?, ?, ?, ?, 0, '{}', '', '[]', ?, ?, 1, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	added := make([]tracker.Keyword, 0, len(keywords))
	for _, kw := range keywords {
		if kw.Device == "" {
			kw.Device = tracker.DeviceDesktop
		}
		tagsJSON, err := json.Marshal(normalizeTags(kw.Tags))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tags: %w", err)
		}

		result, err := stmt.ExecContext(ctx, kw.Keyword, kw.Device, kw.Country, kw.City, kw.Domain, string(tagsJSON), kw.Sticky, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert keyword %q: %w", kw.Keyword, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get keyword id: %w", err)
		}

		kw.ID = id
		kw.Position = 0
		kw.History = map[string]int{}
		kw.Updating = true
		kw.Added = now
		added = append(added, kw)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return added, nil
}

const keywordColumns = `id, keyword, device, country, city, domain, position, history, url, last_result, tags, sticky, updating, last_updated, last_update_error, added`

// GetKeywords loads fresh state for the given identifiers. Unknown
// identifiers are silently skipped.
func (s *SQLiteStorage) GetKeywords(ctx context.Context, ids []int64) ([]tracker.Keyword, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM keywords WHERE id IN (%s) ORDER BY id ASC", keywordColumns, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanKeywords(rows)
}

// ListKeywords returns all keywords, or only those for the given domain
// when domain is non-empty.
func (s *SQLiteStorage) ListKeywords(ctx context.Context, domain string) ([]tracker.Keyword, error) {
	query := fmt.Sprintf("SELECT %s FROM keywords ORDER BY id ASC", keywordColumns)
	args := []any{}
	if domain != "" {
		query = fmt.Sprintf("SELECT %s FROM keywords WHERE domain = ? ORDER BY id ASC", keywordColumns)
		args = append(args, domain)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanKeywords(rows)
}

// UpdateKeyword persists the merged keyword state.
func (s *SQLiteStorage) UpdateKeyword(ctx context.Context, kw tracker.Keyword) error {
	historyJSON, err := json.Marshal(kw.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	resultJSON, err := json.Marshal(normalizeResult(kw.LastResult))
	if err != nil {
		return fmt.Errorf("failed to marshal last result: %w", err)
	}

	tagsJSON, err := json.Marshal(normalizeTags(kw.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	var errJSON any
	if kw.LastError != nil {
		raw, err := json.Marshal(kw.LastError)
		if err != nil {
			return fmt.Errorf("failed to marshal error descriptor: %w", err)
		}
		errJSON = string(raw)
	}

	var lastUpdated any
	if !kw.LastUpdated.IsZero() {
		lastUpdated = kw.LastUpdated
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE keywords SET
			position = ?,
			history = ?,
			url = ?,
			last_result = ?,
			tags = ?,
			sticky = ?,
			updating = ?,
			last_updated = ?,
			last_update_error = ?
		WHERE id = ?
	`,
		kw.Position,
		string(historyJSON),
		kw.URL,
		string(resultJSON),
		string(tagsJSON),
		kw.Sticky,
		kw.Updating,
		lastUpdated,
		errJSON,
		kw.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update keyword %d: %w", kw.ID, err)
	}
	return nil
}

// SetUpdating flags keywords as having a scrape in flight (or not).
func (s *SQLiteStorage) SetUpdating(ctx context.Context, ids []int64, updating bool) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, updating)
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf("UPDATE keywords SET updating = ? WHERE id IN (%s)", placeholders)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set updating flag: %w", err)
	}
	return nil
}

// DeleteKeyword removes a keyword and its retry-queue entry.
func (s *SQLiteStorage) DeleteKeyword(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM keywords WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete keyword %d: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM retry_queue WHERE keyword_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete retry entry %d: %w", id, err)
	}
	return nil
}

// Enqueue adds a keyword identifier to the retry queue. Enqueueing an
// already-present identifier is a no-op beyond ensuring membership.
func (s *SQLiteStorage) Enqueue(ctx context.Context, keywordID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO retry_queue (keyword_id, queued_at) VALUES (?, ?)
	`, keywordID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to enqueue keyword %d: %w", keywordID, err)
	}
	return nil
}

// Dequeue removes a keyword identifier from the retry queue. Dequeuing an
// absent identifier is a no-op, never an error.
func (s *SQLiteStorage) Dequeue(ctx context.Context, keywordID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM retry_queue WHERE keyword_id = ?", keywordID)
	if err != nil {
		return fmt.Errorf("failed to dequeue keyword %d: %w", keywordID, err)
	}
	return nil
}

// Members returns the full retry-queue membership in enqueue order.
func (s *SQLiteStorage) Members(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT keyword_id FROM retry_queue ORDER BY queued_at ASC, keyword_id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query retry queue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan retry entry: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RetryQueueDepth returns the number of queued identifiers.
func (s *SQLiteStorage) RetryQueueDepth(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM retry_queue").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count retry queue: %w", err)
	}
	return count, nil
}

// KeywordCount returns the number of tracked keywords.
func (s *SQLiteStorage) KeywordCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM keywords").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count keywords: %w", err)
	}
	return count, nil
}

// GetMeta retrieves a metadata value
func (s *SQLiteStorage) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM app_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta: %w", err)
	}
	return value, nil
}

// SetMeta stores a metadata value
func (s *SQLiteStorage) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO app_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set meta: %w", err)
	}
	return nil
}

func scanKeywords(rows *sql.Rows) ([]tracker.Keyword, error) {
	var keywords []tracker.Keyword
	for rows.Next() {
		var (
			kw          tracker.Keyword
			historyJSON string
			resultJSON  string
			tagsJSON    string
			lastUpdated sql.NullTime
			errJSON     sql.NullString
		)

		if err := rows.Scan(
			&kw.ID, &kw.Keyword, &kw.Device, &kw.Country, &kw.City, &kw.Domain,
			&kw.Position, &historyJSON, &kw.URL, &resultJSON, &tagsJSON,
			&kw.Sticky, &kw.Updating, &lastUpdated, &errJSON, &kw.Added,
		); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}

		kw.History = map[string]int{}
		if historyJSON != "" {
			if err := json.Unmarshal([]byte(historyJSON), &kw.History); err != nil {
				return nil, fmt.Errorf("failed to unmarshal history for keyword %d: %w", kw.ID, err)
			}
		}

		kw.LastResult = []tracker.SERPItem{}
		if resultJSON != "" {
			if err := json.Unmarshal([]byte(resultJSON), &kw.LastResult); err != nil {
				return nil, fmt.Errorf("failed to unmarshal last result for keyword %d: %w", kw.ID, err)
			}
		}

		kw.Tags = []string{}
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &kw.Tags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tags for keyword %d: %w", kw.ID, err)
			}
		}

		if lastUpdated.Valid {
			kw.LastUpdated = lastUpdated.Time
		}

		if errJSON.Valid && errJSON.String != "" {
			var scrapeErr tracker.ScrapeError
			if err := json.Unmarshal([]byte(errJSON.String), &scrapeErr); err != nil {
				return nil, fmt.Errorf("failed to unmarshal error descriptor for keyword %d: %w", kw.ID, err)
			}
			kw.LastError = &scrapeErr
		}

		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func normalizeResult(items []tracker.SERPItem) []tracker.SERPItem {
	if items == nil {
		return []tracker.SERPItem{}
	}
	return items
}
