package model

import "time"

// User represents an application user record as stored in the `users`
// table. Points are fractional because removing a contribution deducts
// 0.1 while ten contributions earn a whole point, so the column is a
// DECIMAL and the Go field a float64.
//
// Fields:
//  ID                 – primary key identifier of the user.
//  Username           – unique public handle.
//  Email              – unique, normalized (lowercased) email address.
//  PasswordHash       – bcrypt hashed password. Never serialized.
//  Role               – MEMBER or ADMIN.
//  EducationLevel     – optional education level.
//  Age                – optional age.
//  Location           – optional location string.
//  SocialMediaLink    – required external profile link.
//  ContributionPoints – spendable credit balance, never negative.
//  LastAmalgamationAt – when the user last created an amalgamation;
//                       defaults to account creation time.
//  Notifications      – notification preference.
//  Theme              – UI theme preference.
//  Badges             – awarded badges, populated on profile reads.
//  CreatedAt          – timestamp of creation.
//  UpdatedAt          – timestamp of last update.
type User struct {
	ID                 uint64    `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Role               string    `json:"role"`
	EducationLevel     *string   `json:"educationLevel,omitempty"`
	Age                *int      `json:"age,omitempty"`
	Location           *string   `json:"location,omitempty"`
	SocialMediaLink    string    `json:"socialMediaLink"`
	ContributionPoints float64   `json:"contributionPoints"`
	LastAmalgamationAt time.Time `json:"lastAmalgamationTime"`
	Notifications      bool      `json:"notifications"`
	Theme              string    `json:"theme"`
	Badges             []*Badge  `json:"badges,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Roles stored in users.role and carried in the JWT "role" claim.
const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
