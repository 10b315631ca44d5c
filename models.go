package main

import "time"

// Choices holds one user's attribute set: which skills they have, which
// skills they want a teammate to have, topical interests and an experience
// tier. All four are stored as fixed-vocabulary bitsets (see choices.go for
// the vocabulary and the flag-map codec).
type Choices struct {
	UserID     int
	Skills     SkillSet
	Looking    SkillSet
	Interests  InterestSet
	Experience ExperienceSet
}

// Profile carries the free-text/display part of a user's profile.
type Profile struct {
	UserID     int
	Branch     string
	Year       string
	Semester   string
	Category   string
	LookingFor string
	Bio        string
}

// Swipe is an immutable decision record. At most one row exists per ordered
// (SwiperID, TargetID) pair, enforced by a unique constraint.
type Swipe struct {
	ID        int
	SwiperID  int
	TargetID  int
	Direction string // one of DirectionReject / DirectionLike / DirectionSuperlike
	CreatedAt time.Time
}

// Match records confirmed mutual interest. UserA < UserB always (canonical
// pair order), so the unique constraint on (UserA, UserB) covers both
// swipe orders. Score is nil when either side had no choices on record.
type Match struct {
	ID        int
	UserA     int
	UserB     int
	Score     *int
	CreatedAt time.Time
}

// Canonical swipe directions as stored. The HTTP layer maps the gesture
// vocabulary (left/right/super) onto these.
const (
	DirectionReject    = "reject"
	DirectionLike      = "like"
	DirectionSuperlike = "superlike"
)

// Super-likers are boosted past any achievable total (max 2*15=30) so they
// always sort ahead of ordinary candidates.
const superLikeBoost = 1000
