package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// WatchRow is one persisted watchlist entry. ExpectedOpen keeps the
// operator's written precision; empty means no expected price.
type WatchRow struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name,omitempty"`
	ExpectedOpen string `json:"expected_open,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// Expected returns the parsed expected open, or nil when unset.
func (w WatchRow) Expected() *decimal.Decimal {
	if w.ExpectedOpen == "" {
		return nil
	}
	d, err := decimal.NewFromString(w.ExpectedOpen)
	if err != nil {
		return nil
	}
	return &d
}

func UpsertWatch(db *sql.DB, now time.Time, w WatchRow) error {
	_, err := db.Exec(`
		INSERT INTO watchlist(symbol, name, expected_open, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name=excluded.name,
			expected_open=excluded.expected_open,
			updated_at=excluded.updated_at
	`, w.Symbol, w.Name, w.ExpectedOpen, fixedRFC3339Nano(now))
	return err
}

// SeedWatchlist inserts rows that are not present yet, leaving
// operator-managed entries untouched.
func SeedWatchlist(db *sql.DB, now time.Time, rows []WatchRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO watchlist(symbol, name, expected_open, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ts := fixedRFC3339Nano(now)
	for _, w := range rows {
		if _, err := stmt.Exec(w.Symbol, w.Name, w.ExpectedOpen, ts); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func DeleteWatch(db *sql.DB, symbol string) (bool, error) {
	res, err := db.Exec(`DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func GetWatch(db *sql.DB, symbol string) (WatchRow, bool, error) {
	var w WatchRow
	err := db.QueryRow(`
		SELECT symbol, name, expected_open, updated_at
		FROM watchlist WHERE symbol = ?
	`, symbol).Scan(&w.Symbol, &w.Name, &w.ExpectedOpen, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return WatchRow{}, false, nil
	}
	if err != nil {
		return WatchRow{}, false, err
	}
	return w, true, nil
}

func ListWatch(db *sql.DB) ([]WatchRow, error) {
	rows, err := db.Query(`
		SELECT symbol, name, expected_open, updated_at
		FROM watchlist
		ORDER BY symbol
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]WatchRow, 0, 16)
	for rows.Next() {
		var w WatchRow
		if err := rows.Scan(&w.Symbol, &w.Name, &w.ExpectedOpen, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
