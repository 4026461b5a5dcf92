package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SeenRepository is the fingerprint store: which item identities have been
// admitted before, and when. Inserts are insert-if-absent so concurrent
// processes cannot admit the same story twice.
type SeenRepository struct {
	db *DB
}

func NewSeenRepository(db *DB) *SeenRepository {
	return &SeenRepository{db: db}
}

func (r *SeenRepository) HasSeen(fingerprint string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM seen WHERE fingerprint = ?`, fingerprint).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check seen fingerprint: %w", err)
	}
	return true, nil
}

// MarkSeen records a fingerprint. Marking an already-seen fingerprint is a
// no-op, not an error.
func (r *SeenRepository) MarkSeen(fingerprint, url string, now time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO seen (fingerprint, url, first_seen_at)
		VALUES (?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING
	`, fingerprint, url, now.UTC())
	if err != nil {
		return fmt.Errorf("failed to mark fingerprint seen: %w", err)
	}
	return nil
}

// PurgeExpired drops records first seen before cutoff. Stale records only
// cause false "already seen" outcomes, so this is opportunistic, never
// required for correctness.
func (r *SeenRepository) PurgeExpired(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM seen WHERE first_seen_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired fingerprints: %w", err)
	}

	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged fingerprints: %w", err)
	}
	return purged, nil
}
