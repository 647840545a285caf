package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/baseline/internal/canon"
)

// Record appends run to the ledger and returns it with ID and Seq set.
// The sequence number is allocated inside the insert transaction, so
// concurrent writers sharing a ledger file never collide.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.idGen.Generate()
	}
	if run.Artifacts == nil {
		run.Artifacts = []string{}
	}

	artifacts, err := marshalArtifacts(run.Artifacts)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	var imageErr sql.NullFloat64
	if run.ImageError != nil {
		imageErr = sql.NullFloat64{Float64: *run.ImageError, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, script, fingerprint, status, outcome, target, threshold, image_error, artifacts, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Script,
		run.Fingerprint,
		run.Status,
		run.Outcome,
		run.Target,
		run.Threshold,
		imageErr,
		artifacts,
		run.Message,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

func marshalArtifacts(paths []string) (string, error) {
	data, err := canon.MarshalCanonical(paths)
	if err != nil {
		return "", fmt.Errorf("marshal artifacts: %w", err)
	}
	return string(data), nil
}
