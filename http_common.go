package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
)

// --- Response helpers ---
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// withTx wraps a function in a database transaction.
// - Ensures COMMIT on success, ROLLBACK on errors or panics.
// - Keeps handler bodies tiny and all state changes atomic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		// If the callback panics, make sure to rollback before re-panicking
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// fetchBasicUserInfo returns the name and avatar glyph shown on cards and in
// match lists. Missing users surface as sql.ErrNoRows.
func fetchBasicUserInfo(db *sql.DB, userID int) (name, avatar string, err error) {
	err = db.QueryRow(`
        SELECT name, COALESCE(NULLIF(avatar, ''), '👤')
        FROM users
        WHERE id = $1
    `, userID).Scan(&name, &avatar)
	return
}

// loadChoices reads one user's attribute bitsets. A user with no row yet is
// a valid "no preferences stated" state and comes back as (nil, nil).
func loadChoices(q interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}, userID int) (*Choices, error) {
	var c Choices
	err := q.QueryRow(`
        SELECT user_id, skills, looking, interests, experience
        FROM user_choices
        WHERE user_id = $1
    `, userID).Scan(&c.UserID, &c.Skills, &c.Looking, &c.Interests, &c.Experience)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// pairKey normalizes an unordered user pair to (min, max) so pair identity
// is a single canonical key wherever it matters.
func pairKey(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}
