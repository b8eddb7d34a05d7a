package repository

import (
	"testing"

	"github.com/amalgamator/amalgamator/internal/model"
)

func TestPathJoinSplit(t *testing.T) {
	cases := []struct {
		path   []string
		joined string
	}{
		{nil, ""},
		{[]string{"existence"}, "existence"},
		{[]string{"abstract relations", "existence", "being"}, "abstract relations/existence/being"},
	}
	for _, tc := range cases {
		if got := pathJoin(tc.path); got != tc.joined {
			t.Errorf("pathJoin(%v) = %q, want %q", tc.path, got, tc.joined)
		}
		back := pathSplit(tc.joined)
		if len(back) != len(tc.path) {
			t.Errorf("pathSplit(%q) = %v, want %v", tc.joined, back, tc.path)
			continue
		}
		for i := range back {
			if back[i] != tc.path[i] {
				t.Errorf("pathSplit(%q)[%d] = %q, want %q", tc.joined, i, back[i], tc.path[i])
			}
		}
	}
}

func TestVoteColumn(t *testing.T) {
	cases := []struct {
		eval string
		col  string
	}{
		{model.EvalPlausible, "plausible_votes"},
		{model.EvalNotPlausible, "not_plausible_votes"},
		{model.EvalIrrelevant, "irrelevant_votes"},
	}
	for _, tc := range cases {
		col, err := voteColumn(tc.eval)
		if err != nil {
			t.Fatalf("voteColumn(%q) error: %v", tc.eval, err)
		}
		if col != tc.col {
			t.Errorf("voteColumn(%q) = %q, want %q", tc.eval, col, tc.col)
		}
	}
	if _, err := voteColumn("PLAUSIBLE"); err == nil {
		t.Error("expected error for unknown evaluation")
	}
}

func TestLikeEscaper(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"existence", "existence"},
		{"_", `\_`},
		{"100%", `100\%`},
		{`a\b`, `a\\b`},
		{"%_%", `\%\_\%`},
	}
	for _, tc := range cases {
		if got := likeEscaper.Replace(tc.in); got != tc.want {
			t.Errorf("escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
