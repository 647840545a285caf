package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

const runColumns = `id, seq, script, fingerprint, status, outcome, target, threshold, image_error, artifacts, message`

// List returns runs matching f ordered by seq ASC, id ASC. With a Limit, the
// most recent rows are kept.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) List(ctx context.Context, f Filter) ([]Run, error) {
	var where []string
	var args []any
	if f.Script != "" {
		where = append(where, "script = ?")
		args = append(args, f.Script)
	}
	if f.Fingerprint != "" {
		where = append(where, "fingerprint = ?")
		args = append(args, f.Fingerprint)
	}

	query := "SELECT " + runColumns + " FROM runs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Limit > 0 {
		query = "SELECT * FROM (" + query + " ORDER BY seq DESC LIMIT ?)"
		args = append(args, f.Limit)
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with id. A missing id yields an error wrapping
// sql.ErrNoRows.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		imageErr  sql.NullFloat64
		artifacts string
	)
	err := sc.Scan(
		&run.ID,
		&run.Seq,
		&run.Script,
		&run.Fingerprint,
		&run.Status,
		&run.Outcome,
		&run.Target,
		&run.Threshold,
		&imageErr,
		&artifacts,
		&run.Message,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if imageErr.Valid {
		v := imageErr.Float64
		run.ImageError = &v
	}
	if err := json.Unmarshal([]byte(artifacts), &run.Artifacts); err != nil {
		return Run{}, fmt.Errorf("unmarshal artifacts of run %s: %w", run.ID, err)
	}
	if run.Artifacts == nil {
		run.Artifacts = []string{}
	}
	return run, nil
}
