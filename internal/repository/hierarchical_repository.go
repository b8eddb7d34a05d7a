// This file defines repository methods for the imported reference
// taxonomies. Entries are written once by a bulk import and read-only
// afterwards; terms live in a child table so search can match them with
// an index-friendly join.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/amalgamator/amalgamator/internal/model"
)

// HierarchicalRepo encapsulates queries against hierarchical_entries and
// hierarchical_terms.
type HierarchicalRepo struct {
	db *sql.DB
}

func NewHierarchicalRepo(db *sql.DB) *HierarchicalRepo {
	return &HierarchicalRepo{db: db}
}

// SourceExists reports whether any entries for the source are already
// imported. Import is all-or-nothing per source; there is no incremental
// path.
func (r *HierarchicalRepo) SourceExists(ctx context.Context, source string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM hierarchical_entries WHERE source=?)", source).Scan(&exists)
	return exists, err
}

// BulkImport inserts all entries and their terms in one transaction, and
// refuses with ErrConflict when the source is already populated so a
// crash mid-import can be retried but a finished import cannot be
// duplicated.
func (r *HierarchicalRepo) BulkImport(ctx context.Context, source string, entries []*model.HierarchicalEntry) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM hierarchical_entries WHERE source=?)", source).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrConflict
	}

	entryStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO hierarchical_entries (source, level1, level2, level3, level4) VALUES (?,?,?,?,?)")
	if err != nil {
		return 0, err
	}
	defer entryStmt.Close()
	termStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO hierarchical_terms (entry_id, term) VALUES (?,?)")
	if err != nil {
		return 0, err
	}
	defer termStmt.Close()

	for _, e := range entries {
		res, err := entryStmt.ExecContext(ctx, source, e.Level1, e.Level2, e.Level3, e.Level4)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		e.ID = uint64(id)
		e.Source = source
		for _, t := range e.Terms {
			if _, err := termStmt.ExecContext(ctx, e.ID, t); err != nil {
				return 0, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (r *HierarchicalRepo) collect(ctx context.Context, query string, args ...any) ([]*model.HierarchicalEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.HierarchicalEntry
	byID := make(map[uint64]*model.HierarchicalEntry)
	for rows.Next() {
		var (
			e          model.HierarchicalEntry
			l2, l3, l4 sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Level1, &l2, &l3, &l4); err != nil {
			return nil, err
		}
		e.Level2, e.Level3, e.Level4 = l2.String, l3.String, l4.String
		e.Terms = []string{}
		out = append(out, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(byID) == 0 {
		return out, nil
	}

	marks := strings.TrimSuffix(strings.Repeat("?,", len(byID)), ",")
	args = args[:0]
	for id := range byID {
		args = append(args, id)
	}
	trows, err := r.db.QueryContext(ctx,
		"SELECT entry_id, term FROM hierarchical_terms WHERE entry_id IN ("+marks+") ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var (
			id   uint64
			term string
		)
		if err := trows.Scan(&id, &term); err != nil {
			return nil, err
		}
		if e := byID[id]; e != nil {
			e.Terms = append(e.Terms, term)
		}
	}
	return out, trows.Err()
}

const entryColumns = "e.id, e.source, e.level1, e.level2, e.level3, e.level4"

// ListAll returns every entry across sources, ordered by source then top
// level.
func (r *HierarchicalRepo) ListAll(ctx context.Context) ([]*model.HierarchicalEntry, error) {
	return r.collect(ctx,
		"SELECT "+entryColumns+" FROM hierarchical_entries e ORDER BY e.source, e.level1, e.id")
}

// ListBySource returns the entries of one source ordered by top level.
func (r *HierarchicalRepo) ListBySource(ctx context.Context, source string) ([]*model.HierarchicalEntry, error) {
	return r.collect(ctx,
		"SELECT "+entryColumns+" FROM hierarchical_entries e WHERE e.source=? ORDER BY e.level1, e.id",
		source)
}

// likeEscaper neutralizes the LIKE metacharacters so a user query for
// "_" or "%" matches those literal characters instead of everything.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchTerm returns entries whose term list contains the query as a
// case-insensitive substring. The query is treated as literal text.
func (r *HierarchicalRepo) SearchTerm(ctx context.Context, term string) ([]*model.HierarchicalEntry, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
	return r.collect(ctx,
		`SELECT DISTINCT `+entryColumns+` FROM hierarchical_entries e
		 JOIN hierarchical_terms t ON t.entry_id = e.id
		 WHERE LOWER(t.term) LIKE ?
		 ORDER BY e.source, e.level1, e.id`, pattern)
}
