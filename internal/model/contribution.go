package model

import "time"

// Evaluations a contribution can carry. They match the amalgamation
// tally categories one to one.
const (
	EvalPlausible    = "plausible"
	EvalNotPlausible = "notPlausible"
	EvalIrrelevant   = "irrelevant"
)

// MaxContributionLen bounds the contribution text.
const MaxContributionLen = 255

// ContributionEdit is one entry of the append-only edit history written
// before each text overwrite.
type ContributionEdit struct {
	Timestamp    time.Time `json:"timestamp"`
	PreviousText string    `json:"previousText"`
}

// Contribution is a user's textual evaluation attached to an amalgamation.
// Removal is a soft delete: the record is retained and filtered out of
// listings and tallies at read time via IsRemoved. Likes and LikedBy must
// stay in lockstep — membership in LikedBy implies exactly +1 to Likes.
type Contribution struct {
	ID             uint64             `json:"id"`
	AmalgamationID uint64             `json:"amalgamationId"`
	UserID         uint64             `json:"userId"`
	AuthorName     string             `json:"authorName,omitempty"`
	Text           string             `json:"text"`
	Evaluation     string             `json:"evaluation"`
	Likes          int                `json:"likes"`
	LikedBy        []uint64           `json:"likedBy"`
	IsRemoved      bool               `json:"isRemoved"`
	IsEdited       bool               `json:"isEdited"`
	EditHistory    []ContributionEdit `json:"editHistory,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ValidEvaluation reports whether e is one of the three evaluations.
func ValidEvaluation(e string) bool {
	return e == EvalPlausible || e == EvalNotPlausible || e == EvalIrrelevant
}
