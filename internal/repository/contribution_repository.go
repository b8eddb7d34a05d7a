// This file defines repository methods for contributions. The tally
// counters on the owning amalgamation are a derived cache over the set of
// non-removed contributions, so every mutation here that changes that set
// updates the counters inside the same transaction. The SQL applies the
// same deltas as model.Amalgamation.ApplyVote and model.Contribution's
// MarkRemoved/ToggleLike, just server-side. A removal is a soft delete:
// the row is kept and filtered out at read time.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amalgamator/amalgamator/internal/model"
)

// ContributionRepo encapsulates all queries related to contributions,
// their likes and their edit history.
type ContributionRepo struct {
	db *sql.DB
}

func NewContributionRepo(db *sql.DB) *ContributionRepo {
	return &ContributionRepo{db: db}
}

// voteColumn maps an evaluation to its tally column. The evaluation is
// validated by the handler before it reaches SQL.
func voteColumn(evaluation string) (string, error) {
	switch evaluation {
	case model.EvalPlausible:
		return "plausible_votes", nil
	case model.EvalNotPlausible:
		return "not_plausible_votes", nil
	case model.EvalIrrelevant:
		return "irrelevant_votes", nil
	}
	return "", fmt.Errorf("unknown evaluation %q", evaluation)
}

// Create inserts a contribution and, in the same transaction, bumps the
// owning amalgamation's total and per-evaluation counters and adds the
// author to the contributor set if absent. Returns ErrAmalgamationNotFound
// when the target pairing does not exist.
func (r *ContributionRepo) Create(ctx context.Context, c *model.Contribution) error {
	col, err := voteColumn(c.Evaluation)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`UPDATE amalgamations SET total_votes = total_votes + 1, `+col+` = `+col+` + 1
		 WHERE id = ?`, c.AmalgamationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrAmalgamationNotFound
		return err
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO contributions (amalgamation_id, user_id, text, evaluation) VALUES (?,?,?,?)",
		c.AmalgamationID, c.UserID, c.Text, c.Evaluation)
	if err != nil {
		return err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	if _, err = tx.ExecContext(ctx,
		"INSERT IGNORE INTO amalgamation_contributors (amalgamation_id, user_id) VALUES (?,?)",
		c.AmalgamationID, c.UserID); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM contributions WHERE id = ?",
		c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
	return err
}

const contributionColumns = `c.id, c.amalgamation_id, c.user_id, u.username,
	c.text, c.evaluation, c.likes, c.is_removed, c.is_edited, c.created_at, c.updated_at`

func scanContribution(scan func(dest ...any) error) (*model.Contribution, error) {
	var c model.Contribution
	err := scan(&c.ID, &c.AmalgamationID, &c.UserID, &c.AuthorName,
		&c.Text, &c.Evaluation, &c.Likes, &c.IsRemoved, &c.IsEdited,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.LikedBy = []uint64{}
	return &c, nil
}

// attachLikes fills the LikedBy sets of the given contributions with one
// query so list reads stay flat.
func (r *ContributionRepo) attachLikes(ctx context.Context, byID map[uint64]*model.Contribution) error {
	if len(byID) == 0 {
		return nil
	}
	args := make([]any, 0, len(byID))
	marks := ""
	for id := range byID {
		if marks != "" {
			marks += ","
		}
		marks += "?"
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT contribution_id, user_id FROM contribution_likes WHERE contribution_id IN ("+marks+") ORDER BY user_id", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid, uid uint64
		if err := rows.Scan(&cid, &uid); err != nil {
			return err
		}
		if c := byID[cid]; c != nil {
			c.LikedBy = append(c.LikedBy, uid)
		}
	}
	return rows.Err()
}

// ListByAmalgamation returns the non-removed contributions of a pairing,
// newest first, with author usernames and like sets populated.
func (r *ContributionRepo) ListByAmalgamation(ctx context.Context, amalgamationID uint64) ([]*model.Contribution, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+contributionColumns+` FROM contributions c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.amalgamation_id = ? AND c.is_removed = 0
		 ORDER BY c.created_at DESC, c.id DESC`, amalgamationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Contribution
	byID := make(map[uint64]*model.Contribution)
	for rows.Next() {
		c, err := scanContribution(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLikes(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one contribution (removed ones included, so authors can
// still be checked on delete paths) with its like set and edit history.
func (r *ContributionRepo) GetByID(ctx context.Context, id uint64) (*model.Contribution, error) {
	c, err := scanContribution(r.db.QueryRowContext(ctx,
		"SELECT "+contributionColumns+` FROM contributions c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.id = ?`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContributionNotFound
		}
		return nil, err
	}
	if err := r.attachLikes(ctx, map[uint64]*model.Contribution{c.ID: c}); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT previous_text, created_at FROM contribution_edits
		 WHERE contribution_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e model.ContributionEdit
		if err := rows.Scan(&e.PreviousText, &e.Timestamp); err != nil {
			return nil, err
		}
		c.EditHistory = append(c.EditHistory, e)
	}
	return c, rows.Err()
}

// UpdateText overwrites the contribution text, appending the previous
// text to the edit history first and marking the row edited. Both writes
// share one transaction so history is never lost.
func (r *ContributionRepo) UpdateText(ctx context.Context, id uint64, previous, text string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO contribution_edits (contribution_id, previous_text) VALUES (?,?)",
		id, previous); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE contributions SET text=?, is_edited=1, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		text, id)
	return err
}

// SoftRemove flags a contribution as removed and decrements the owning
// amalgamation's total and matching tally counter in the same
// transaction. The row stays in the pairing's contribution set and is
// filtered at read time. Re-removal is a no-op so counters are never
// decremented twice.
func (r *ContributionRepo) SoftRemove(ctx context.Context, c *model.Contribution) error {
	col, err := voteColumn(c.Evaluation)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"UPDATE contributions SET is_removed=1, updated_at=CURRENT_TIMESTAMP WHERE id=? AND is_removed=0",
		c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrContributionNotFound
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE amalgamations SET total_votes = total_votes - 1, `+col+` = `+col+` - 1
		 WHERE id = ?`, c.AmalgamationID)
	return err
}

// ToggleLike flips the acting user's like on a contribution: present in
// the like set means unlike (-1), absent means like (+1). The set row and
// the counter move in one transaction so they stay in lockstep. There is
// no limit on repeated toggling. The updated contribution is returned.
func (r *ContributionRepo) ToggleLike(ctx context.Context, id, userID uint64) (*model.Contribution, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM contribution_likes WHERE contribution_id=? AND user_id=?)",
		id, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM contribution_likes WHERE contribution_id=? AND user_id=?", id, userID); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE contributions SET likes = likes - 1 WHERE id=?", id); err != nil {
			return nil, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO contribution_likes (contribution_id, user_id) VALUES (?,?)", id, userID); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE contributions SET likes = likes + 1 WHERE id=?", id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// CountActiveByUser returns the authoritative number of non-removed
// contributions a user has made. The points accrual rule reads this count
// rather than any in-memory counter.
func (r *ContributionRepo) CountActiveByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contributions WHERE user_id=? AND is_removed=0", userID).Scan(&n)
	return n, err
}
