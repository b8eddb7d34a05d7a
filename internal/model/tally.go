package model

import "fmt"

// The tally counters on an Amalgamation are a derived cache over its
// non-removed contributions. The rules below are the single statement of
// how that cache moves; the repository's SQL mirrors them exactly.

// ApplyVote moves the tally counters for one contribution with the given
// evaluation: delta +1 on create, -1 on removal. The total moves with the
// matching per-evaluation counter so total stays the sum of the three.
func (a *Amalgamation) ApplyVote(evaluation string, delta int) error {
	switch evaluation {
	case EvalPlausible:
		a.PlausibleVotes += delta
	case EvalNotPlausible:
		a.NotPlausibleVotes += delta
	case EvalIrrelevant:
		a.IrrelevantVotes += delta
	default:
		return fmt.Errorf("unknown evaluation %q", evaluation)
	}
	a.TotalVotes += delta
	return nil
}

// TallyConsistent reports whether the total equals the sum of the three
// per-evaluation counters.
func (a *Amalgamation) TallyConsistent() bool {
	return a.TotalVotes == a.PlausibleVotes+a.NotPlausibleVotes+a.IrrelevantVotes
}

// MarkRemoved flags the contribution as removed and reports whether the
// flag changed. A repeated removal is a no-op, so the caller decrements
// the tallies only when this returns true.
func (c *Contribution) MarkRemoved() bool {
	if c.IsRemoved {
		return false
	}
	c.IsRemoved = true
	return true
}

// ToggleLike flips userID's like on the contribution and reports whether
// the user likes it afterwards. Likes and LikedBy move together, so
// Likes == len(LikedBy) holds before and after every toggle.
func (c *Contribution) ToggleLike(userID uint64) bool {
	for i, id := range c.LikedBy {
		if id == userID {
			c.LikedBy = append(c.LikedBy[:i], c.LikedBy[i+1:]...)
			c.Likes--
			return false
		}
	}
	c.LikedBy = append(c.LikedBy, userID)
	c.Likes++
	return true
}
