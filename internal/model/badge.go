package model

import "time"

// Badge categories.
const (
	BadgePioneer     = "pioneer"
	BadgeVeteran     = "veteran"
	BadgeContributor = "contributor"
)

// Badge is an achievement definition from the badge catalog. Criteria is
// descriptive text only; it is not machine-evaluated. Awarding is an
// explicit admin action recorded in the user_badges relation.
type Badge struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Criteria    string    `json:"criteria"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidBadgeCategory reports whether c is one of the badge categories.
func ValidBadgeCategory(c string) bool {
	return c == BadgePioneer || c == BadgeVeteran || c == BadgeContributor
}
