package main

// MatchScore is the bidirectional compatibility breakdown between two
// attribute sets. Not commutative as a whole, but mirrored:
// scoreChoices(a,b).NeedsMetByThem == scoreChoices(b,a).NeedsMetByMe,
// and Total is identical either way.
type MatchScore struct {
	NeedsMetByThem int `json:"my_needs_met_by_them"`
	NeedsMetByMe   int `json:"their_needs_met_by_me"`
	Total          int `json:"total"`
}

// scoreChoices counts, over the shared skill vocabulary, how many of mine's
// sought skills the other side possesses and vice versa. Raw overlap counts,
// no weighting. A nil side is treated as an empty attribute set.
func scoreChoices(mine, theirs *Choices) MatchScore {
	var s MatchScore
	if mine == nil || theirs == nil {
		return s
	}
	s.NeedsMetByThem = (mine.Looking & theirs.Skills).count()
	s.NeedsMetByMe = (theirs.Looking & mine.Skills).count()
	s.Total = s.NeedsMetByThem + s.NeedsMetByMe
	return s
}
