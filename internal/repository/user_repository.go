package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/amalgamator/amalgamator/internal/model"
	"github.com/amalgamator/amalgamator/internal/utils"
)

// UserRepo encapsulates all queries against the `users` table, including
// the points balance and last-creation timestamp the creation policy
// reads and writes.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, email, password_hash, role,
	education_level, age, location, social_link, contribution_points,
	last_amalgamation_at, notify_enabled, theme, created_at, updated_at`

// NewUserParams carries the input for Create. Optional profile fields are
// pointers; nil means the column stays NULL.
type NewUserParams struct {
	Username        string
	Email           string
	Password        string
	SocialMediaLink string
	EducationLevel  *string
	Age             *int
	Location        *string
}

// Create inserts a user and returns its ID. The email is normalized, the
// password bcrypt-hashed with the given cost, and last_amalgamation_at
// initialized to the creation instant so a fresh account starts inside
// the creation window.
func (r *UserRepo) Create(ctx context.Context, p NewUserParams, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	username := strings.TrimSpace(p.Username)
	hash, err := utils.HashPassword(p.Password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, education_level, age, location, social_link, last_amalgamation_at)
		 VALUES (?,?,?,?,?,?,?,?,UTC_TIMESTAMP())`,
		username, email, hash, model.RoleMember, p.EducationLevel, p.Age, p.Location, p.SocialMediaLink)
	if err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "1062") {
			if strings.Contains(low, "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *UserRepo) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.EducationLevel, &u.Age, &u.Location, &u.SocialMediaLink,
		&u.ContributionPoints, &u.LastAmalgamationAt, &u.Notifications,
		&u.Theme, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// TouchLastAmalgamation records a free (non-spending) creation by moving
// last_amalgamation_at to now.
func (r *UserRepo) TouchLastAmalgamation(ctx context.Context, id uint64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_amalgamation_at=? WHERE id=?", now.UTC(), id)
	return err
}

// SpendPointAndTouch deducts one contribution point and moves
// last_amalgamation_at to now in a single statement, so the two policy
// side effects commit atomically and two racing creations cannot spend
// the same point. When the balance has meanwhile dropped below one, no
// row matches and ErrConflict is returned.
func (r *UserRepo) SpendPointAndTouch(ctx context.Context, id uint64, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET contribution_points = contribution_points - 1, last_amalgamation_at = ?
		 WHERE id = ? AND contribution_points >= 1`, now.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// AddPoint credits one whole contribution point, earned when the user's
// non-removed contribution count reaches a multiple of ten.
func (r *UserRepo) AddPoint(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET contribution_points = contribution_points + 1 WHERE id=?", id)
	return err
}

// DeductRemovalPenalty applies the 0.1 point removal penalty, floored at
// zero so the balance never goes negative.
func (r *UserRepo) DeductRemovalPenalty(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET contribution_points = GREATEST(0, contribution_points - 0.1) WHERE id=?", id)
	return err
}
