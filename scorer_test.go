package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseChoices(t *testing.T, flags map[string]bool) *Choices {
	t.Helper()
	c, err := parseChoices(0, flags)
	require.NoError(t, err)
	return c
}

func TestScoreChoices(t *testing.T) {
	t.Run("one-sided overlap", func(t *testing.T) {
		viewer := mustParseChoices(t, map[string]bool{
			"looking_webdev": true,
		})
		candidate := mustParseChoices(t, map[string]bool{
			"skill_webdev": true,
		})

		s := scoreChoices(viewer, candidate)
		assert.Equal(t, 1, s.NeedsMetByThem)
		assert.Equal(t, 0, s.NeedsMetByMe)
		assert.Equal(t, 1, s.Total)
	})

	t.Run("bidirectional overlap", func(t *testing.T) {
		a := mustParseChoices(t, map[string]bool{
			"skill_backend": true,
			"skill_devops":  true,
			"looking_uiux":  true,
			"looking_figma": true,
		})
		b := mustParseChoices(t, map[string]bool{
			"skill_uiux":      true,
			"skill_figma":     true,
			"looking_backend": true,
		})

		s := scoreChoices(a, b)
		assert.Equal(t, 2, s.NeedsMetByThem) // uiux + figma
		assert.Equal(t, 1, s.NeedsMetByMe)   // backend
		assert.Equal(t, 3, s.Total)
	})

	t.Run("empty attribute set scores zero against anything", func(t *testing.T) {
		empty := &Choices{}
		full := mustParseChoices(t, map[string]bool{
			"skill_webdev": true, "skill_ml": true,
			"looking_webdev": true, "looking_ml": true,
		})

		assert.Equal(t, 0, scoreChoices(empty, full).Total)
		assert.Equal(t, 0, scoreChoices(full, empty).Total)
	})

	t.Run("nil side treated as all-false", func(t *testing.T) {
		full := mustParseChoices(t, map[string]bool{"looking_ai": true, "skill_ai": true})
		assert.Equal(t, MatchScore{}, scoreChoices(nil, full))
		assert.Equal(t, MatchScore{}, scoreChoices(full, nil))
	})

	t.Run("skills alone never score without looking flags", func(t *testing.T) {
		a := mustParseChoices(t, map[string]bool{"skill_webdev": true, "skill_ml": true})
		b := mustParseChoices(t, map[string]bool{"skill_webdev": true, "skill_ml": true})
		assert.Equal(t, 0, scoreChoices(a, b).Total)
	})
}

// Mirror property: score(A,B).NeedsMetByThem == score(B,A).NeedsMetByMe and
// totals are identical either way.
func TestScoreChoicesSymmetry(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		a := &Choices{
			Skills:  SkillSet(r.Uint64() & ((1 << 15) - 1)),
			Looking: SkillSet(r.Uint64() & ((1 << 15) - 1)),
		}
		b := &Choices{
			Skills:  SkillSet(r.Uint64() & ((1 << 15) - 1)),
			Looking: SkillSet(r.Uint64() & ((1 << 15) - 1)),
		}

		ab := scoreChoices(a, b)
		ba := scoreChoices(b, a)

		require.Equal(t, ab.NeedsMetByThem, ba.NeedsMetByMe)
		require.Equal(t, ab.NeedsMetByMe, ba.NeedsMetByThem)
		require.Equal(t, ab.Total, ba.Total)
	}
}

func TestScoreChoicesBounds(t *testing.T) {
	all := &Choices{
		Skills:  SkillSet((1 << 15) - 1),
		Looking: SkillSet((1 << 15) - 1),
	}
	s := scoreChoices(all, all)
	assert.Equal(t, 15, s.NeedsMetByThem)
	assert.Equal(t, 15, s.NeedsMetByMe)
	assert.Equal(t, 30, s.Total)
	// The super-like boost must dominate any achievable total
	assert.Greater(t, superLikeBoost, s.Total)
}
