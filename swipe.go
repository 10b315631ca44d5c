package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lib/pq"
)

// SwipeResult is what the processor reports back to the caller layer.
type SwipeResult struct {
	Matched       bool `json:"matched"`
	MatchedUserID *int `json:"matched_user_id"`
	Score         *int `json:"score"`
}

var errDuplicateSwipe = errors.New("already swiped on this target")

// The gesture vocabulary the frontend speaks, mapped onto canonical
// directions before anything touches the processor.
var gestureDirections = map[string]string{
	"left":  DirectionReject,
	"right": DirectionLike,
	"super": DirectionSuperlike,
}

// POST /swipe
// Validates the request (self-swipe, repeat swipe, direction vocabulary) and
// hands the canonical swipe to processSwipe.
func swipeHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}

		type SwipeRequest struct {
			TargetID  int    `json:"target_id"`
			Direction string `json:"direction"`
		}
		var req SwipeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}

		direction, ok := gestureDirections[req.Direction]
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_direction")
			return
		}

		me := r.Context().Value(userIDKey).(int)
		if req.TargetID == me {
			writeError(w, http.StatusBadRequest, "invalid_target")
			return
		}

		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, req.TargetID).Scan(&exists); err != nil || !exists {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		// Repeat swipes never reach the processor.
		if err := db.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM swipes WHERE swiper_id = $1 AND target_id = $2)
		`, me, req.TargetID).Scan(&exists); err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if exists {
			writeError(w, http.StatusBadRequest, "already_swiped")
			return
		}

		result, err := processSwipe(r.Context(), db, me, req.TargetID, direction)
		if err == errDuplicateSwipe {
			writeError(w, http.StatusBadRequest, "already_swiped")
			return
		}
		if err != nil {
			// The swipe row may already be durable at this point; a visible
			// error beats a falsely-reported non-match.
			writeError(w, http.StatusInternalServerError, "match_check_error")
			log.Println("processSwipe error:", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"direction":       req.Direction,
			"matched":         result.Matched,
			"matched_user_id": result.MatchedUserID,
			"score":           result.Score,
		})
	})
}

// processSwipe records the swipe and decides whether it completes a mutual
// match.
//
// The swipe insert commits on its own before match detection starts, so a
// failure later leaves the decision durably recorded. The reciprocal-check →
// match-create sequence runs inside one transaction; the unique constraint
// on the canonical (user_a, user_b) pair is the final arbiter when two users
// swipe on each other at nearly the same instant.
func processSwipe(ctx context.Context, db *sql.DB, actorID, targetID int, direction string) (SwipeResult, error) {
	var result SwipeResult

	if _, err := db.ExecContext(ctx, `
		INSERT INTO swipes (swiper_id, target_id, direction)
		VALUES ($1, $2, $3)
	`, actorID, targetID, direction); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return result, errDuplicateSwipe
		}
		return result, err
	}

	// Rejects can never create a match.
	if direction == DirectionReject {
		return result, nil
	}

	matchCreated := false
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		var reciprocal bool
		if err := tx.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM swipes
				WHERE swiper_id = $1 AND target_id = $2
				  AND direction IN ('like', 'superlike')
			)
		`, targetID, actorID).Scan(&reciprocal); err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		a, b := pairKey(actorID, targetID)

		// If the pair was already matched, an earlier swipe handled it and
		// this call reports no match.
		var matched bool
		if err := tx.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM matches WHERE user_a = $1 AND user_b = $2)
		`, a, b).Scan(&matched); err != nil {
			return err
		}
		if matched {
			return nil
		}

		mine, err := loadChoices(tx, actorID)
		if err != nil {
			return err
		}
		theirs, err := loadChoices(tx, targetID)
		if err != nil {
			return err
		}
		var score sql.NullInt64
		if mine != nil && theirs != nil {
			score = sql.NullInt64{Int64: int64(scoreChoices(mine, theirs).Total), Valid: true}
		}

		// A conflict here means the other swipe's transaction won the race
		// and the match exists; that is still a match from this caller's
		// point of view.
		res, err := tx.Exec(`
			INSERT INTO matches (user_a, user_b, score)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_a, user_b) DO NOTHING
		`, a, b, score)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			matchCreated = true
		}

		result.Matched = true
		result.MatchedUserID = &targetID
		if score.Valid {
			s := int(score.Int64)
			result.Score = &s
		}
		return nil
	})
	if err != nil {
		return SwipeResult{}, err
	}

	if matchCreated {
		notifyMatch(db, actorID, targetID, result.Score)
	}
	return result, nil
}
