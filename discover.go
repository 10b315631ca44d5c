package main

import (
	"database/sql"
	"net/http"
	"sort"
	"strconv"
)

const (
	defaultDiscoverLimit = 20
	maxDiscoverLimit     = 100
)

// CandidateView is one card in the discovery feed, shaped for display.
type CandidateView struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Avatar       string     `json:"avatar"`
	Branch       string     `json:"branch"`
	Year         string     `json:"year"`
	Semester     string     `json:"semester"`
	Category     string     `json:"category"`
	LookingFor   []string   `json:"looking_for"`
	Bio          string     `json:"bio"`
	Skills       []string   `json:"skills"`
	Interests    []string   `json:"interests"`
	Experience   string     `json:"experience"`
	MatchScore   int        `json:"match_score"`
	MatchDetails MatchScore `json:"match_details"`
	IsSuperLiker bool       `json:"is_super_liker"`
	Rank         int        `json:"rank"`
}

// GET /discover?limit=N
func discoverHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		limit := defaultDiscoverLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				limit = n
			}
		}

		profiles, err := getDiscoverFeed(db, userID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "discover_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"profiles": profiles,
			"count":    len(profiles),
		})
	})
}

// getDiscoverFeed ranks every eligible candidate for the viewer and returns
// the top slice. Recomputed fresh on every call; nothing is cached between
// requests, so a swipe is reflected on the very next feed.
//
// Eligibility: not the viewer, not already swiped on by the viewer (any
// direction), not already matched. Candidates with zero skill overlap are
// dropped unless they super-liked the viewer; super-likers always outrank
// ordinary candidates. Ties break on ascending id so the feed is
// deterministic.
func getDiscoverFeed(db *sql.DB, viewerID, limit int) ([]CandidateView, error) {
	if limit <= 0 {
		limit = defaultDiscoverLimit
	} else if limit > maxDiscoverLimit {
		limit = maxDiscoverLimit
	}

	// A viewer with no stated preferences has nothing to be ranked against.
	viewerChoices, err := loadChoices(db, viewerID)
	if err != nil {
		return nil, err
	}
	if viewerChoices == nil {
		return []CandidateView{}, nil
	}

	// Who super-liked the viewer. Membership is only consulted for rows that
	// already passed the exclusion filter below.
	superLikers := make(map[int]struct{})
	slRows, err := db.Query(`
        SELECT swiper_id FROM swipes
        WHERE target_id = $1 AND direction = 'superlike'
    `, viewerID)
	if err != nil {
		return nil, err
	}
	defer slRows.Close()
	for slRows.Next() {
		var id int
		if slRows.Scan(&id) == nil {
			superLikers[id] = struct{}{}
		}
	}
	if err := slRows.Err(); err != nil {
		return nil, err
	}

	// Exclusions (self, swiped, matched) are pushed into SQL the same way the
	// candidate pool is narrowed for every other per-request decision.
	rows, err := db.Query(`
        SELECT u.id, u.name, COALESCE(NULLIF(u.avatar, ''), '👤'),
               COALESCE(p.branch, ''), COALESCE(p.year, ''), COALESCE(p.semester, ''),
               COALESCE(p.category, ''), COALESCE(p.bio, ''),
               c.skills, c.looking, c.interests, c.experience
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        LEFT JOIN user_choices c ON c.user_id = u.id
        WHERE u.id <> $1
          AND NOT EXISTS (
              SELECT 1 FROM swipes s
              WHERE s.swiper_id = $1 AND s.target_id = u.id
          )
          AND NOT EXISTS (
              SELECT 1 FROM matches m
              WHERE (m.user_a = $1 AND m.user_b = u.id)
                 OR (m.user_a = u.id AND m.user_b = $1)
          )
    `, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []CandidateView
	for rows.Next() {
		var v CandidateView
		var skills, looking, interests, experience sql.NullInt64
		if err := rows.Scan(&v.ID, &v.Name, &v.Avatar,
			&v.Branch, &v.Year, &v.Semester, &v.Category, &v.Bio,
			&skills, &looking, &interests, &experience); err != nil {
			continue
		}

		// Absent choices rows score as all-false; super-likers without a
		// filled profile must still surface.
		var theirs *Choices
		if skills.Valid {
			theirs = &Choices{
				UserID:     v.ID,
				Skills:     SkillSet(skills.Int64),
				Looking:    SkillSet(looking.Int64),
				Interests:  InterestSet(interests.Int64),
				Experience: ExperienceSet(experience.Int64),
			}
		}

		_, isSuperLiker := superLikers[v.ID]
		score := scoreChoices(viewerChoices, theirs)
		if score.Total == 0 && !isSuperLiker {
			continue
		}

		v.MatchScore = score.Total
		v.MatchDetails = score
		v.IsSuperLiker = isSuperLiker
		v.Rank = score.Total
		if isSuperLiker {
			v.Rank += superLikeBoost
		}
		if theirs != nil {
			v.Skills = theirs.Skills.Labels()
			v.LookingFor = theirs.Looking.Labels()
			v.Interests = theirs.Interests.Labels()
			v.Experience = theirs.Experience.Label()
		} else {
			v.Skills = []string{}
			v.LookingFor = []string{}
			v.Interests = []string{}
		}
		candidates = append(candidates, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Two-level order: super-liker tier first, then raw total, then id.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].IsSuperLiker != candidates[j].IsSuperLiker {
			return candidates[i].IsSuperLiker
		}
		if candidates[i].MatchScore != candidates[j].MatchScore {
			return candidates[i].MatchScore > candidates[j].MatchScore
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		candidates = []CandidateView{}
	}
	return candidates, nil
}
