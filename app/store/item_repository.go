package store

import (
	"fmt"
	"strings"
	"time"
)

// Item is a scored item archived for digest batching. The classifier output
// is stored alongside the inputs so digest passes can reuse it without
// refetching.
type Item struct {
	Fingerprint string
	SourceID    string
	URL         string
	Title       string
	BodyExcerpt string
	Summary     string
	Labels      []string
	Sentiment   int
	Impact      float64
	PublishedAt time.Time
	CreatedAt   time.Time
	AlertedAt   *time.Time
	DigestedOn  string
}

type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Upsert stores an item, refreshing scores and summary on conflict.
func (r *ItemRepository) Upsert(item Item) error {
	_, err := r.db.Exec(`
		INSERT INTO items (
			fingerprint, source_id, url, title, body_excerpt, summary,
			labels, sentiment, impact, published_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO UPDATE SET
			title = excluded.title,
			body_excerpt = excluded.body_excerpt,
			summary = excluded.summary,
			labels = excluded.labels,
			sentiment = excluded.sentiment,
			impact = excluded.impact
	`, item.Fingerprint, item.SourceID, item.URL, item.Title, item.BodyExcerpt,
		item.Summary, strings.Join(item.Labels, " "), item.Sentiment, item.Impact,
		item.PublishedAt.UTC(), item.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// SelectWindow returns undigested items published inside [start, end),
// in insertion order.
func (r *ItemRepository) SelectWindow(start, end time.Time) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT fingerprint, source_id, url, title, body_excerpt, summary,
		       labels, sentiment, impact, published_at, created_at, alerted_at, digested_on
		FROM items
		WHERE published_at >= ? AND published_at < ?
		  AND digested_on = ''
		ORDER BY created_at ASC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to select window items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var labels string
		err := rows.Scan(
			&item.Fingerprint, &item.SourceID, &item.URL, &item.Title,
			&item.BodyExcerpt, &item.Summary, &labels, &item.Sentiment,
			&item.Impact, &item.PublishedAt, &item.CreatedAt,
			&item.AlertedAt, &item.DigestedOn,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		item.Labels = splitLabels(labels)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

// MarkAlerted stamps the delivery time of an alerted item.
func (r *ItemRepository) MarkAlerted(fingerprint string, now time.Time) error {
	_, err := r.db.Exec(`UPDATE items SET alerted_at = ? WHERE fingerprint = ?`,
		now.UTC(), fingerprint)
	if err != nil {
		return fmt.Errorf("failed to mark item alerted: %w", err)
	}
	return nil
}

// MarkDigested stamps items as delivered in the digest for the given day so
// the same window is not re-sent.
func (r *ItemRepository) MarkDigested(fingerprints []string, day string) error {
	if len(fingerprints) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin digest stamp transaction: %w", err)
	}
	defer tx.Rollback()

	for _, fp := range fingerprints {
		if _, err := tx.Exec(`UPDATE items SET digested_on = ? WHERE fingerprint = ?`, day, fp); err != nil {
			return fmt.Errorf("failed to mark item digested: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit digest stamps: %w", err)
	}
	return nil
}

// CountAlertsSince counts alerts delivered at or after since. Used by the
// per-hour alert budget.
func (r *ItemRepository) CountAlertsSince(since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM items WHERE alerted_at IS NOT NULL AND alerted_at >= ?
	`, since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent alerts: %w", err)
	}
	return count, nil
}

// CountPublished counts items published inside [start, end) regardless
// of digest state. Used for week-over-week comparisons.
func (r *ItemRepository) CountPublished(start, end time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM items WHERE published_at >= ? AND published_at < ?
	`, start.UTC(), end.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count published items: %w", err)
	}
	return count, nil
}

// Stats returns total and alerted item counts.
func (r *ItemRepository) Stats() (total, alerted int, err error) {
	err = r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN alerted_at IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM items
	`).Scan(&total, &alerted)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get item stats: %w", err)
	}
	return total, alerted, nil
}

func splitLabels(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
