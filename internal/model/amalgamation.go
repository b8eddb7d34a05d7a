package model

import "time"

// Amalgamation statuses. There is no enforced transition order; the
// creator may set any of the three at any time.
const (
	StatusOpen    = "open"
	StatusFocused = "focused"
	StatusClosed  = "closed"
)

// Amalgamation modes. Fixed at creation.
const (
	ModeFocus     = "focus"
	ModeInnovator = "innovator"
	ModePlay      = "play"
)

// Term is one of the two concept slots of an amalgamation. The category
// and hierarchy path come from the reference taxonomies and are optional.
type Term struct {
	Text          string   `json:"text"`
	Category      string   `json:"category,omitempty"`
	HierarchyPath []string `json:"hierarchyPath,omitempty"`
}

// AIPerspective is the optional single machine-generated evaluation
// attached to an amalgamation.
type AIPerspective struct {
	Evaluation  string  `json:"evaluation"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Amalgamation is a proposed connection between two concept terms, open
// to community evaluation through contributions.
//
// The four vote counters are a derived cache over the set of non-removed
// contributions: total always equals plausible + notPlausible + irrelevant
// when no writers race, and the counters are mutated only through the
// contribution create/remove paths. Direct counter edits are not exposed.
//
// Fields:
//  ID            – primary key identifier.
//  Term1, Term2  – the two concept slots.
//  CreatedBy     – user who proposed the pairing.
//  CreatorName   – username of the creator (join, read paths only).
//  Status        – open | focused | closed.
//  Mode          – focus | innovator | play, fixed at creation.
//  TotalVotes    – running total of non-removed contributions.
//  PlausibleVotes, NotPlausibleVotes, IrrelevantVotes – per-evaluation tallies.
//  AIPerspective – optional machine evaluation, nil when absent.
//  HighVolume    – flag for pairings with unusually high activity.
//  Contributors  – usernames of everyone who contributed (creator included).
//  Contributions – non-removed contributions, populated on detail reads.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Amalgamation struct {
	ID                uint64          `json:"id"`
	Term1             Term            `json:"term1"`
	Term2             Term            `json:"term2"`
	CreatedBy         uint64          `json:"createdBy"`
	CreatorName       string          `json:"creatorName,omitempty"`
	Status            string          `json:"status"`
	Mode              string          `json:"mode"`
	TotalVotes        int             `json:"totalVotes"`
	PlausibleVotes    int             `json:"plausibleVotes"`
	NotPlausibleVotes int             `json:"notPlausibleVotes"`
	IrrelevantVotes   int             `json:"irrelevantVotes"`
	AIPerspective     *AIPerspective  `json:"aiPerspective,omitempty"`
	HighVolume        bool            `json:"highVolume"`
	Contributors      []string        `json:"contributors,omitempty"`
	Contributions     []*Contribution `json:"contributions,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ValidStatus reports whether s is one of the three amalgamation statuses.
func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusFocused || s == StatusClosed
}

// ValidMode reports whether m is one of the three amalgamation modes.
func ValidMode(m string) bool {
	return m == ModeFocus || m == ModeInnovator || m == ModePlay
}
