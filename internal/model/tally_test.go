package model

import "testing"

func TestApplyVoteKeepsTotalConsistent(t *testing.T) {
	var a Amalgamation
	steps := []struct {
		evaluation string
		delta      int
	}{
		{EvalPlausible, +1},
		{EvalPlausible, +1},
		{EvalNotPlausible, +1},
		{EvalIrrelevant, +1},
		{EvalPlausible, -1},
		{EvalIrrelevant, -1},
	}
	for _, s := range steps {
		if err := a.ApplyVote(s.evaluation, s.delta); err != nil {
			t.Fatalf("ApplyVote(%q, %d) error: %v", s.evaluation, s.delta, err)
		}
		if !a.TallyConsistent() {
			t.Fatalf("after %q %+d: total=%d plausible=%d notPlausible=%d irrelevant=%d",
				s.evaluation, s.delta, a.TotalVotes, a.PlausibleVotes, a.NotPlausibleVotes, a.IrrelevantVotes)
		}
	}
	if a.TotalVotes != 2 || a.PlausibleVotes != 1 || a.NotPlausibleVotes != 1 || a.IrrelevantVotes != 0 {
		t.Errorf("final tallies total=%d plausible=%d notPlausible=%d irrelevant=%d, want 2/1/1/0",
			a.TotalVotes, a.PlausibleVotes, a.NotPlausibleVotes, a.IrrelevantVotes)
	}
}

func TestApplyVoteRejectsUnknownEvaluation(t *testing.T) {
	var a Amalgamation
	if err := a.ApplyVote("Plausible", +1); err == nil {
		t.Fatal("expected error for unknown evaluation")
	}
	if a.TotalVotes != 0 || !a.TallyConsistent() {
		t.Errorf("rejected vote must not move tallies: total=%d", a.TotalVotes)
	}
}

func TestMarkRemovedOnlyOnce(t *testing.T) {
	a := Amalgamation{}
	c := Contribution{Evaluation: EvalNotPlausible}
	if err := a.ApplyVote(c.Evaluation, +1); err != nil {
		t.Fatal(err)
	}

	if !c.MarkRemoved() {
		t.Fatal("first removal must report a change")
	}
	if err := a.ApplyVote(c.Evaluation, -1); err != nil {
		t.Fatal(err)
	}
	if a.TotalVotes != 0 || a.NotPlausibleVotes != 0 {
		t.Errorf("tallies after removal: total=%d notPlausible=%d, want 0/0", a.TotalVotes, a.NotPlausibleVotes)
	}

	// A repeated removal is a no-op and must not decrement again.
	if c.MarkRemoved() {
		t.Fatal("second removal must report no change")
	}
	if !a.TallyConsistent() || a.TotalVotes != 0 {
		t.Errorf("tallies moved on repeated removal: total=%d", a.TotalVotes)
	}
}

func TestToggleLikeLockstep(t *testing.T) {
	var c Contribution
	check := func(context string) {
		t.Helper()
		if c.Likes != len(c.LikedBy) {
			t.Fatalf("%s: likes=%d but |likedBy|=%d", context, c.Likes, len(c.LikedBy))
		}
	}

	if !c.ToggleLike(1) {
		t.Fatal("first toggle must like")
	}
	check("after user 1 likes")
	if !c.ToggleLike(2) {
		t.Fatal("distinct user toggle must like")
	}
	check("after user 2 likes")
	if c.Likes != 2 {
		t.Fatalf("likes = %d, want 2", c.Likes)
	}

	if c.ToggleLike(1) {
		t.Fatal("second toggle by the same user must unlike")
	}
	check("after user 1 unlikes")
	if c.Likes != 1 || c.LikedBy[0] != 2 {
		t.Fatalf("likes=%d likedBy=%v, want 1/[2]", c.Likes, c.LikedBy)
	}

	// No cap on re-toggling: an odd count of toggles means liked.
	for i := 0; i < 5; i++ {
		c.ToggleLike(3)
		check("mid re-toggle")
	}
	found := false
	for _, id := range c.LikedBy {
		if id == 3 {
			found = true
		}
	}
	if !found {
		t.Error("user 3 toggled an odd number of times and must be in the like set")
	}
}
