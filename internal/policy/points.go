// Package policy implements the creation rate limit and the contribution
// points economy. It is pure: callers load the account state, ask for a
// decision, and persist the resulting mutations themselves. Keeping the
// rules free of SQL makes every branch unit-testable.
package policy

import (
	"fmt"
	"time"
)

// CreationWindow is the rolling window within which a user may create at
// most one amalgamation without spending a point.
const CreationWindow = time.Hour

// RemovalPenalty is deducted from a user's points when they remove one of
// their contributions. It is deliberately not the inverse of the accrual
// rate: ten contributions earn one point, removing one costs 0.1.
const RemovalPenalty = 0.1

// AccrualEvery is the contribution count interval that earns one point.
const AccrualEvery = 10

// Account is the slice of user state the policy reads.
type Account struct {
	Points             float64
	LastAmalgamationAt time.Time
}

// Decision says how an allowed creation must be persisted: when SpendPoint
// is set the caller deducts one point together with the timestamp update,
// and the two mutations must be committed atomically with each other.
type Decision struct {
	SpendPoint bool
}

// RateLimitedError rejects a creation attempt inside the window when the
// user has no point to spend. Wait is the remaining time until a free
// creation is allowed again.
type RateLimitedError struct {
	Wait time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("only one amalgamation per hour; wait %s or spend a contribution point", e.Wait.Round(time.Second))
}

// AuthorizeCreation decides whether the account may create an amalgamation
// at instant now.
//
//   - A full CreationWindow since the last creation: allowed, no spend.
//   - Inside the window with at least one point: allowed, spend one point.
//   - Inside the window without a point: *RateLimitedError with the
//     remaining wait; the account must be left untouched.
//
// In every allowed case the caller sets LastAmalgamationAt to now.
func AuthorizeCreation(acct Account, now time.Time) (Decision, error) {
	elapsed := now.Sub(acct.LastAmalgamationAt)
	if elapsed >= CreationWindow {
		return Decision{}, nil
	}
	if acct.Points >= 1 {
		return Decision{SpendPoint: true}, nil
	}
	return Decision{}, &RateLimitedError{Wait: CreationWindow - elapsed}
}

// AccruesPoint reports whether reaching activeCount non-removed
// contributions earns the author a point. The count must be the
// authoritative store count at the moment of creation, not an in-memory
// running counter, so accrual stays correct across process restarts.
func AccruesPoint(activeCount int) bool {
	return activeCount > 0 && activeCount%AccrualEvery == 0
}

// ApplyRemovalPenalty returns the points balance after a removal, floored
// at zero so balances never go negative.
func ApplyRemovalPenalty(points float64) float64 {
	points -= RemovalPenalty
	if points < 0 {
		return 0
	}
	return points
}
