// This file defines repository methods for amalgamations: creation,
// listing, detail and random lookup, and the creator-only status update.
// The vote counters on the row are a cache over the contribution set and
// are mutated exclusively by ContributionRepo, never here.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strings"

	"github.com/amalgamator/amalgamator/internal/model"
)

// AmalgamationRepo encapsulates all queries related to amalgamations and
// their contributor relation.
type AmalgamationRepo struct {
	db *sql.DB
}

func NewAmalgamationRepo(db *sql.DB) *AmalgamationRepo {
	return &AmalgamationRepo{db: db}
}

const amalgamationColumns = `a.id, a.term1_text, a.term1_category, a.term1_path,
	a.term2_text, a.term2_category, a.term2_path, a.created_by, u.username,
	a.status, a.mode, a.total_votes, a.plausible_votes, a.not_plausible_votes,
	a.irrelevant_votes, a.ai_evaluation, a.ai_confidence, a.ai_explanation,
	a.is_high_volume, a.created_at, a.updated_at`

// pathJoin flattens a hierarchy path for storage in a single column.
func pathJoin(p []string) string { return strings.Join(p, "/") }

// pathSplit is the inverse of pathJoin; an empty column yields nil.
func pathSplit(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// Create inserts a new amalgamation and registers the creator as its
// first contributor in one transaction. On success the ID and timestamps
// of the passed record are populated.
func (r *AmalgamationRepo) Create(ctx context.Context, a *model.Amalgamation) error {
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
		`INSERT INTO amalgamations
		 (term1_text, term1_category, term1_path, term2_text, term2_category, term2_path, created_by, status, mode)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		a.Term1.Text, a.Term1.Category, pathJoin(a.Term1.HierarchyPath),
		a.Term2.Text, a.Term2.Category, pathJoin(a.Term2.HierarchyPath),
		a.CreatedBy, a.Status, a.Mode)
	if err != nil {
		return err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO amalgamation_contributors (amalgamation_id, user_id) VALUES (?,?)",
		a.ID, a.CreatedBy); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM amalgamations WHERE id = ?",
		a.ID).Scan(&a.CreatedAt, &a.UpdatedAt)
	return err
}

func scanAmalgamation(scan func(dest ...any) error) (*model.Amalgamation, error) {
	var (
		a             model.Amalgamation
		t1cat, t2cat  sql.NullString
		t1path        string
		t2path        string
		aiEval        sql.NullString
		aiConfidence  sql.NullFloat64
		aiExplanation sql.NullString
	)
	err := scan(&a.ID, &a.Term1.Text, &t1cat, &t1path,
		&a.Term2.Text, &t2cat, &t2path, &a.CreatedBy, &a.CreatorName,
		&a.Status, &a.Mode, &a.TotalVotes, &a.PlausibleVotes,
		&a.NotPlausibleVotes, &a.IrrelevantVotes, &aiEval, &aiConfidence,
		&aiExplanation, &a.HighVolume, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Term1.Category = t1cat.String
	a.Term1.HierarchyPath = pathSplit(t1path)
	a.Term2.Category = t2cat.String
	a.Term2.HierarchyPath = pathSplit(t2path)
	if aiEval.Valid {
		a.AIPerspective = &model.AIPerspective{
			Evaluation:  aiEval.String,
			Confidence:  aiConfidence.Float64,
			Explanation: aiExplanation.String,
		}
	}
	return &a, nil
}

// List returns all amalgamations newest first, with the creator's
// username joined in.
func (r *AmalgamationRepo) List(ctx context.Context) ([]*model.Amalgamation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+amalgamationColumns+` FROM amalgamations a
		 JOIN users u ON u.id = a.created_by
		 ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Amalgamation
	for rows.Next() {
		a, err := scanAmalgamation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID returns one amalgamation with its contributor usernames. The
// contribution list is loaded separately by ContributionRepo so the
// removed-filtering logic lives in one place.
func (r *AmalgamationRepo) GetByID(ctx context.Context, id uint64) (*model.Amalgamation, error) {
	a, err := scanAmalgamation(r.db.QueryRowContext(ctx,
		"SELECT "+amalgamationColumns+` FROM amalgamations a
		 JOIN users u ON u.id = a.created_by
		 WHERE a.id = ?`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAmalgamationNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT u.username FROM amalgamation_contributors ac
		 JOIN users u ON u.id = ac.user_id
		 WHERE ac.amalgamation_id = ? ORDER BY ac.user_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		a.Contributors = append(a.Contributors, name)
	}
	return a, rows.Err()
}

// Random uniformly selects one amalgamation by drawing an offset in
// [0, count) over a stable ordering. An empty store yields (nil, nil),
// never an out-of-range read.
func (r *AmalgamationRepo) Random(ctx context.Context) (*model.Amalgamation, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM amalgamations").Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	offset := rand.Intn(count)
	a, err := scanAmalgamation(r.db.QueryRowContext(ctx,
		"SELECT "+amalgamationColumns+` FROM amalgamations a
		 JOIN users u ON u.id = a.created_by
		 ORDER BY a.id LIMIT 1 OFFSET ?`, offset).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row count changed between the two queries.
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// UpdateStatus sets the lifecycle status. Ownership is checked by the
// handler against the loaded record before this runs.
func (r *AmalgamationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE amalgamations SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAmalgamationNotFound
	}
	return nil
}
