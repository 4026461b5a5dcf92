package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// QuotaRepository persists the per-day quota ledger. The day key is a
// calendar date string in the guard's reference timezone; a new day starts
// a fresh row with zero units used.
type QuotaRepository struct {
	db *DB
}

func NewQuotaRepository(db *DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Charge atomically adds units to the day's ledger if the result stays
// within budget. Returns whether the charge was applied. The increment-and-
// check runs as a single UPDATE so concurrent processes cannot overspend.
func (r *QuotaRepository) Charge(day string, units, budget int64) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin quota transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO quota_ledger (day, units_used, budget)
		VALUES (?, 0, ?)
		ON CONFLICT (day) DO NOTHING
	`, day, budget)
	if err != nil {
		return false, fmt.Errorf("failed to open quota ledger for %s: %w", day, err)
	}

	// The passed budget drives the check, not the one frozen into the
	// row at first insert: a budget change applies mid-day.
	res, err := tx.Exec(`
		UPDATE quota_ledger
		SET units_used = units_used + ?1, budget = ?3
		WHERE day = ?2 AND units_used + ?1 <= ?3
	`, units, day, budget)
	if err != nil {
		return false, fmt.Errorf("failed to charge quota ledger: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to inspect quota charge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit quota charge: %w", err)
	}

	return affected > 0, nil
}

// Used returns the units consumed on the given day; zero when the day has
// no ledger row yet.
func (r *QuotaRepository) Used(day string) (int64, error) {
	var used int64
	err := r.db.QueryRow(`SELECT units_used FROM quota_ledger WHERE day = ?`, day).Scan(&used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read quota ledger: %w", err)
	}
	return used, nil
}
