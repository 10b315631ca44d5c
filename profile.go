package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// GET /me/profile and PUT /me/profile
func meProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getProfile(db, w, r)
		case http.MethodPut:
			updateProfile(db, w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

func getProfile(db *sql.DB, w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int)

	var name, email, avatar string
	var p Profile
	err := db.QueryRow(`
        SELECT u.name, u.email, COALESCE(NULLIF(u.avatar, ''), '👤'),
               COALESCE(p.branch, ''), COALESCE(p.year, ''), COALESCE(p.semester, ''),
               COALESCE(p.category, ''), COALESCE(p.bio, '')
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.id = $1
    `, userID).Scan(&name, &email, &avatar, &p.Branch, &p.Year, &p.Semester, &p.Category, &p.Bio)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "not_found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	choices, err := loadChoices(db, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	payload := map[string]interface{}{
		"id":       userID,
		"name":     name,
		"email":    email,
		"avatar":   avatar,
		"branch":   p.Branch,
		"year":     p.Year,
		"semester": p.Semester,
		"category": p.Category,
		"bio":      p.Bio,
	}
	if choices != nil {
		payload["skills"] = choices.Skills.Labels()
		payload["looking_for"] = choices.Looking.Labels()
		payload["interests"] = choices.Interests.Labels()
		payload["experience"] = choices.Experience.Label()
		payload["choices"] = choices.FlagMap()
	} else {
		payload["skills"] = []string{}
		payload["looking_for"] = []string{}
		payload["interests"] = []string{}
		payload["experience"] = ""
		payload["choices"] = map[string]bool{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profile": payload})
}

func updateProfile(db *sql.DB, w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int)

	type ProfileUpdate struct {
		Name     *string `json:"name"`
		Avatar   *string `json:"avatar"`
		Branch   *string `json:"branch"`
		Year     *string `json:"year"`
		Semester *string `json:"semester"`
		Category *string `json:"category"`
		Bio      *string `json:"bio"`
	}
	var req ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	err := withTx(r.Context(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			UPDATE users
			SET name = COALESCE($1, name), avatar = COALESCE($2, avatar)
			WHERE id = $3
		`, req.Name, req.Avatar, userID); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO profiles (user_id, branch, year, semester, category, bio)
			VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), COALESCE($6, ''))
			ON CONFLICT (user_id) DO UPDATE
			SET branch     = COALESCE($2, profiles.branch),
			    year       = COALESCE($3, profiles.year),
			    semester   = COALESCE($4, profiles.semester),
			    category   = COALESCE($5, profiles.category),
			    bio        = COALESCE($6, profiles.bio),
			    updated_at = NOW()
		`, userID, req.Branch, req.Year, req.Semester, req.Category, req.Bio)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		log.Println("updateProfile tx error:", err)
		return
	}

	getProfile(db, w, r)
}

// GET /me/choices and PUT /me/choices
// Choices are replaced wholesale: the stored attribute set always reflects
// exactly the last submitted flag map, never a partial patch.
func meChoicesHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		switch r.Method {
		case http.MethodGet:
			choices, err := loadChoices(db, userID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			flags := map[string]bool{}
			if choices != nil {
				flags = choices.FlagMap()
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"choices": flags})

		case http.MethodPut:
			var flags map[string]bool
			if err := json.NewDecoder(r.Body).Decode(&flags); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_json")
				return
			}
			choices, err := parseChoices(userID, flags)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_choices")
				return
			}
			if _, err := db.Exec(`
				INSERT INTO user_choices (user_id, skills, looking, interests, experience)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (user_id) DO UPDATE
				SET skills     = $2,
				    looking    = $3,
				    interests  = $4,
				    experience = $5,
				    updated_at = NOW()
			`, userID, int64(choices.Skills), int64(choices.Looking), int64(choices.Interests), int64(choices.Experience)); err != nil {
				writeError(w, http.StatusInternalServerError, "db_error")
				log.Println("choices upsert error:", err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"choices": choices.FlagMap()})

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}
