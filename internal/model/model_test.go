package model

import "testing"

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusOpen, StatusFocused, StatusClosed} {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be a valid status", s)
		}
	}
	for _, s := range []string{"", "OPEN", "archived"} {
		if ValidStatus(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []string{ModeFocus, ModeInnovator, ModePlay} {
		if !ValidMode(m) {
			t.Errorf("expected %q to be a valid mode", m)
		}
	}
	if ValidMode("casual") {
		t.Error("expected unknown mode to be rejected")
	}
}

func TestValidEvaluation(t *testing.T) {
	for _, e := range []string{EvalPlausible, EvalNotPlausible, EvalIrrelevant} {
		if !ValidEvaluation(e) {
			t.Errorf("expected %q to be a valid evaluation", e)
		}
	}
	// The enum is case sensitive; the API contract uses camelCase.
	for _, e := range []string{"notplausible", "NotPlausible", ""} {
		if ValidEvaluation(e) {
			t.Errorf("expected %q to be rejected", e)
		}
	}
}

func TestValidBadgeCategory(t *testing.T) {
	for _, c := range []string{BadgePioneer, BadgeVeteran, BadgeContributor} {
		if !ValidBadgeCategory(c) {
			t.Errorf("expected %q to be a valid category", c)
		}
	}
	if ValidBadgeCategory("legend") {
		t.Error("expected unknown category to be rejected")
	}
}

func TestValidSource(t *testing.T) {
	if !ValidSource(SourceRoget) || !ValidSource(SourceDewey) {
		t.Error("expected both fixed sources to be valid")
	}
	if ValidSource("loc") {
		t.Error("expected unknown source to be rejected")
	}
}
