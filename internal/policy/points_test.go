package policy

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAuthorizeCreation_OutsideWindow(t *testing.T) {
	now := time.Now().UTC()
	acct := Account{Points: 0, LastAmalgamationAt: now.Add(-2 * time.Hour)}

	d, err := AuthorizeCreation(acct, now)
	if err != nil {
		t.Fatalf("expected creation outside the window to be allowed, got %v", err)
	}
	if d.SpendPoint {
		t.Fatalf("creation outside the window must not spend a point")
	}
}

func TestAuthorizeCreation_ExactBoundary(t *testing.T) {
	now := time.Now().UTC()
	acct := Account{Points: 0, LastAmalgamationAt: now.Add(-CreationWindow)}

	if _, err := AuthorizeCreation(acct, now); err != nil {
		t.Fatalf("elapsed == window must be allowed for free, got %v", err)
	}
}

func TestAuthorizeCreation_InsideWindowWithPoint(t *testing.T) {
	now := time.Now().UTC()
	acct := Account{Points: 1, LastAmalgamationAt: now.Add(-10 * time.Minute)}

	d, err := AuthorizeCreation(acct, now)
	if err != nil {
		t.Fatalf("expected point spend to be allowed, got %v", err)
	}
	if !d.SpendPoint {
		t.Fatalf("creation inside the window must spend a point")
	}
}

func TestAuthorizeCreation_InsideWindowFractionalPoints(t *testing.T) {
	// 0.9 points (e.g. after a removal penalty) cannot buy a creation.
	now := time.Now().UTC()
	acct := Account{Points: 0.9, LastAmalgamationAt: now.Add(-10 * time.Minute)}

	_, err := AuthorizeCreation(acct, now)
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
}

func TestAuthorizeCreation_RateLimitedCarriesWait(t *testing.T) {
	now := time.Now().UTC()
	acct := Account{Points: 0, LastAmalgamationAt: now.Add(-15 * time.Minute)}

	_, err := AuthorizeCreation(acct, now)
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if rl.Wait != 45*time.Minute {
		t.Fatalf("expected 45m remaining wait, got %s", rl.Wait)
	}
	if !strings.Contains(rl.Error(), "45m") {
		t.Fatalf("error message should carry the remaining wait, got %q", rl.Error())
	}
}

func TestAccruesPoint(t *testing.T) {
	cases := []struct {
		count int
		want  bool
	}{
		{0, false},
		{1, false},
		{9, false},
		{10, true},
		{11, false},
		{19, false},
		{20, true},
		{100, true},
	}
	for _, tc := range cases {
		if got := AccruesPoint(tc.count); got != tc.want {
			t.Errorf("AccruesPoint(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestApplyRemovalPenalty(t *testing.T) {
	if got := ApplyRemovalPenalty(1.0); got != 0.9 {
		t.Fatalf("expected 0.9, got %v", got)
	}
	if got := ApplyRemovalPenalty(0.05); got != 0 {
		t.Fatalf("penalty must floor at zero, got %v", got)
	}
	if got := ApplyRemovalPenalty(0); got != 0 {
		t.Fatalf("zero balance must stay zero, got %v", got)
	}
}
