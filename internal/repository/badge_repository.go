package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/amalgamator/amalgamator/internal/model"
)

// BadgeRepo encapsulates the badge catalog and the user_badges award
// relation.
type BadgeRepo struct {
	db *sql.DB
}

func NewBadgeRepo(db *sql.DB) *BadgeRepo { return &BadgeRepo{db: db} }

const badgeColumns = "id, name, description, icon, criteria, category, created_at, updated_at"

// Create inserts a badge definition. A duplicate name maps to
// ErrConflict via the unique index.
func (r *BadgeRepo) Create(ctx context.Context, b *model.Badge) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO badges (name, description, icon, criteria, category) VALUES (?,?,?,?,?)",
		b.Name, b.Description, b.Icon, b.Criteria, b.Category)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM badges WHERE id=?", b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID fetches one badge.
func (r *BadgeRepo) GetByID(ctx context.Context, id uint64) (*model.Badge, error) {
	var b model.Badge
	err := r.db.QueryRowContext(ctx,
		"SELECT "+badgeColumns+" FROM badges WHERE id=?", id).
		Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Criteria, &b.Category, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBadgeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBadges(rows *sql.Rows) ([]*model.Badge, error) {
	defer rows.Close()
	var out []*model.Badge
	for rows.Next() {
		var b model.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Criteria, &b.Category, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// List returns the full catalog ordered by category then name.
func (r *BadgeRepo) List(ctx context.Context) ([]*model.Badge, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+badgeColumns+" FROM badges ORDER BY category, name")
	if err != nil {
		return nil, err
	}
	return collectBadges(rows)
}

// ListByUser returns the badges awarded to a user.
func (r *BadgeRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Badge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.description, b.icon, b.criteria, b.category, b.created_at, b.updated_at
		 FROM badges b
		 JOIN user_badges ub ON ub.badge_id = b.id
		 WHERE ub.user_id = ? ORDER BY b.category, b.name`, userID)
	if err != nil {
		return nil, err
	}
	return collectBadges(rows)
}

// Award records a badge for a user. The award is idempotent in the
// rejecting sense: a repeated award returns ErrConflict instead of
// inserting a duplicate, backed by the unique (user_id, badge_id) pair.
func (r *BadgeRepo) Award(ctx context.Context, badgeID, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO user_badges (user_id, badge_id) VALUES (?,?)", userID, badgeID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}
