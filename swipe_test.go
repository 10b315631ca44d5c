package main

import (
	"context"
	"net/http"
	"sync"
	"testing"
)

// ============================================================================
// SWIPE / MATCH DETECTION TEST SUITE
// ============================================================================

func TestSwipeSuite(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		testSwipeValidation(t)
	})

	t.Run("MatchDetection", func(t *testing.T) {
		testMatchDetection(t)
	})

	t.Run("ConcurrentMutualSwipe", func(t *testing.T) {
		testConcurrentMutualSwipe(t)
	})
}

func testSwipeValidation(t *testing.T) {
	alice := createTestUser(t, "Swipe Alice", "swipe_alice@example.com", "passwordA")
	bob := createTestUser(t, "Swipe Bob", "swipe_bob@example.com", "passwordB")
	defer cleanupTestData(alice.Email, bob.Email)

	t.Run("Self Swipe Rejected", func(t *testing.T) {
		code, resp := doSwipe(t, alice, alice.ID, "right")
		if code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", code)
		}
		if resp["error"] != "invalid_target" {
			t.Errorf("expected invalid_target error, got %v", resp["error"])
		}
	})

	t.Run("Unknown Direction Rejected", func(t *testing.T) {
		code, resp := doSwipe(t, alice, bob.ID, "sideways")
		if code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", code)
		}
		if resp["error"] != "invalid_direction" {
			t.Errorf("expected invalid_direction error, got %v", resp["error"])
		}
	})

	t.Run("Unknown Target Rejected", func(t *testing.T) {
		code, _ := doSwipe(t, alice, 99999999, "right")
		if code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", code)
		}
	})

	t.Run("Duplicate Swipe Rejected", func(t *testing.T) {
		code, _ := doSwipe(t, alice, bob.ID, "right")
		if code != http.StatusOK {
			t.Fatalf("first swipe failed: %d", code)
		}

		code, resp := doSwipe(t, alice, bob.ID, "left")
		if code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", code)
		}
		if resp["error"] != "already_swiped" {
			t.Errorf("expected already_swiped error, got %v", resp["error"])
		}

		// Still exactly one recorded swipe, with the original direction
		var direction string
		err := db.QueryRow(
			"SELECT direction FROM swipes WHERE swiper_id = $1 AND target_id = $2",
			alice.ID, bob.ID,
		).Scan(&direction)
		if err != nil {
			t.Fatalf("failed to read swipe back: %v", err)
		}
		if direction != DirectionLike {
			t.Errorf("expected original direction %q preserved, got %q", DirectionLike, direction)
		}
	})
}

func testMatchDetection(t *testing.T) {
	carol := createTestUser(t, "Match Carol", "match_carol@example.com", "passwordC")
	dave := createTestUser(t, "Match Dave", "match_dave@example.com", "passwordD")
	erin := createTestUser(t, "Match Erin", "match_erin@example.com", "passwordE")
	defer cleanupTestData(carol.Email, dave.Email, erin.Email)

	setChoices(t, carol, map[string]bool{"skill_ml": true, "looking_backend": true})
	setChoices(t, dave, map[string]bool{"skill_backend": true, "looking_ml": true})

	t.Run("One-Sided Like Creates No Match", func(t *testing.T) {
		code, resp := doSwipe(t, carol, dave.ID, "right")
		if code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", code)
		}
		if resp["matched"] != false {
			t.Errorf("expected matched false, got %v", resp["matched"])
		}
		assertMatchCount(t, carol.ID, dave.ID, 0)
	})

	t.Run("Reciprocal Like Creates Exactly One Match", func(t *testing.T) {
		code, resp := doSwipe(t, dave, carol.ID, "right")
		if code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", code)
		}
		if resp["matched"] != true {
			t.Fatalf("expected matched true, got %v", resp)
		}
		if int(resp["matched_user_id"].(float64)) != carol.ID {
			t.Errorf("expected matched_user_id %d, got %v", carol.ID, resp["matched_user_id"])
		}
		if int(resp["score"].(float64)) != 2 {
			t.Errorf("expected score 2, got %v", resp["score"])
		}
		assertMatchCount(t, carol.ID, dave.ID, 1)
	})

	t.Run("Match Row Is Canonically Ordered", func(t *testing.T) {
		a, b := pairKey(carol.ID, dave.ID)
		var score int
		err := db.QueryRow(
			"SELECT score FROM matches WHERE user_a = $1 AND user_b = $2", a, b,
		).Scan(&score)
		if err != nil {
			t.Fatalf("expected canonical (min, max) match row: %v", err)
		}
		if score != 2 {
			t.Errorf("expected stored score 2, got %d", score)
		}
	})

	t.Run("Reject Never Counts As Reciprocal", func(t *testing.T) {
		code, _ := doSwipe(t, carol, erin.ID, "left")
		if code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", code)
		}

		code, resp := doSwipe(t, erin, carol.ID, "right")
		if code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", code)
		}
		if resp["matched"] != false {
			t.Errorf("like against a rejecter must not match, got %v", resp)
		}
		assertMatchCount(t, carol.ID, erin.ID, 0)
	})

	t.Run("Superlike Counts As Interest", func(t *testing.T) {
		code, _ := doSwipe(t, dave, erin.ID, "super")
		if code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", code)
		}

		code, resp := doSwipe(t, erin, dave.ID, "right")
		if code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", code)
		}
		if resp["matched"] != true {
			t.Errorf("expected superlike to satisfy reciprocity, got %v", resp)
		}
		assertMatchCount(t, dave.ID, erin.ID, 1)
	})

	t.Run("Matched Pair Leaves Both Feeds", func(t *testing.T) {
		_, carolFeed := getDiscover(t, carol, "")
		for _, p := range carolFeed {
			if p.ID == dave.ID {
				t.Error("matched user still present in feed")
			}
		}
		_, daveFeed := getDiscover(t, dave, "")
		for _, p := range daveFeed {
			if p.ID == carol.ID {
				t.Error("matched user still present in feed")
			}
		}
	})
}

// Both halves of a pair swipe right at the same time. The unique
// constraint on (user_a, user_b) is the arbiter: exactly one match row
// survives, and at least one caller observes the match.
func testConcurrentMutualSwipe(t *testing.T) {
	frank := createTestUser(t, "Race Frank", "race_frank@example.com", "passwordF")
	grace := createTestUser(t, "Race Grace", "race_grace@example.com", "passwordG")
	defer cleanupTestData(frank.Email, grace.Email)

	setChoices(t, frank, map[string]bool{"skill_cloud": true, "looking_devops": true})
	setChoices(t, grace, map[string]bool{"skill_devops": true, "looking_cloud": true})

	results := make([]SwipeResult, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = processSwipe(context.Background(), db, frank.ID, grace.ID, DirectionLike)
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = processSwipe(context.Background(), db, grace.ID, frank.ID, DirectionLike)
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent swipe %d failed: %v", i, err)
		}
	}

	matchedCount := 0
	for _, r := range results {
		if r.Matched {
			matchedCount++
		}
	}
	if matchedCount == 0 {
		t.Error("expected at least one side to observe the match")
	}

	assertMatchCount(t, frank.ID, grace.ID, 1)

	// Replaying a swipe after the match is a duplicate, never a second match
	if _, err := processSwipe(context.Background(), db, frank.ID, grace.ID, DirectionLike); err != errDuplicateSwipe {
		t.Errorf("expected errDuplicateSwipe on replay, got %v", err)
	}
	assertMatchCount(t, frank.ID, grace.ID, 1)
}

func assertMatchCount(t *testing.T, userA, userB, want int) {
	t.Helper()

	a, b := pairKey(userA, userB)
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM matches WHERE user_a = $1 AND user_b = $2", a, b,
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count matches: %v", err)
	}
	if count != want {
		t.Errorf("expected %d match rows for pair (%d, %d), got %d", want, a, b, count)
	}
}
