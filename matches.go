package main

import (
	"database/sql"
	"net/http"
	"time"
)

// MatchView is one entry in the match list read model.
type MatchView struct {
	MatchID   int       `json:"match_id"`
	MatchedAt time.Time `json:"matched_at"`
	Score     *int      `json:"score"`
	User      struct {
		ID         int      `json:"id"`
		Name       string   `json:"name"`
		Avatar     string   `json:"avatar"`
		Branch     string   `json:"branch"`
		Year       string   `json:"year"`
		Semester   string   `json:"semester"`
		Category   string   `json:"category"`
		LookingFor []string `json:"looking_for"`
		Bio        string   `json:"bio"`
		Skills     []string `json:"skills"`
		Interests  []string `json:"interests"`
		Experience string   `json:"experience"`
	} `json:"user"`
}

// GET /matches
// Lists the caller's confirmed matches, newest first, hydrated with the
// counterpart's card data through the batch loaders.
func matchesHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		rows, err := db.Query(`
            SELECT m.id, m.score, m.created_at,
                   CASE WHEN m.user_a = $1 THEN m.user_b ELSE m.user_a END AS other_id
            FROM matches m
            WHERE m.user_a = $1 OR m.user_b = $1
            ORDER BY m.created_at DESC, m.id DESC
        `, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		type matchRow struct {
			id      int
			score   sql.NullInt64
			created time.Time
			otherID int
		}
		var matchRows []matchRow
		for rows.Next() {
			var m matchRow
			if rows.Scan(&m.id, &m.score, &m.created, &m.otherID) == nil {
				matchRows = append(matchRows, m)
			}
		}
		if err := rows.Err(); err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		loaders := GetDataLoadersFromContext(r.Context())
		if loaders == nil {
			loaders = NewDataLoaders(db)
		}

		// Kick off all loads before resolving any thunk so they batch.
		type thunks struct {
			user    func() (*UserInfo, error)
			profile func() (*Profile, error)
			choices func() (*Choices, error)
		}
		pending := make([]thunks, len(matchRows))
		for i, m := range matchRows {
			pending[i] = thunks{
				user:    loaders.UserLoader.Load(r.Context(), m.otherID),
				profile: loaders.ProfileLoader.Load(r.Context(), m.otherID),
				choices: loaders.ChoicesLoader.Load(r.Context(), m.otherID),
			}
		}

		matches := []MatchView{}
		for i, m := range matchRows {
			user, err := pending[i].user()
			if err != nil || user == nil {
				continue
			}
			profile, _ := pending[i].profile()
			choices, _ := pending[i].choices()

			var v MatchView
			v.MatchID = m.id
			v.MatchedAt = m.created
			if m.score.Valid {
				s := int(m.score.Int64)
				v.Score = &s
			}
			v.User.ID = user.ID
			v.User.Name = user.Name
			v.User.Avatar = user.Avatar
			if profile != nil {
				v.User.Branch = profile.Branch
				v.User.Year = profile.Year
				v.User.Semester = profile.Semester
				v.User.Category = profile.Category
				v.User.Bio = profile.Bio
			}
			v.User.LookingFor = []string{}
			v.User.Skills = []string{}
			v.User.Interests = []string{}
			if choices != nil {
				v.User.LookingFor = choices.Looking.Labels()
				v.User.Skills = choices.Skills.Labels()
				v.User.Interests = choices.Interests.Labels()
				v.User.Experience = choices.Experience.Label()
			}
			matches = append(matches, v)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"matches": matches,
			"count":   len(matches),
		})
	})
}

// GET /matches/count
func matchCountHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		var count int
		err := db.QueryRow(`
            SELECT COUNT(*) FROM matches WHERE user_a = $1 OR user_b = $1
        `, userID).Scan(&count)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	})
}
