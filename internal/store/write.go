package store

import (
	"context"
	"fmt"

	"github.com/planarcad/planar/internal/sketch"
)

// CreateSketch inserts a new empty sketch.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - creating an existing
// sketch is a no-op.
func (s *Store) CreateSketch(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sketches (id, name)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name)
	if err != nil {
		return fmt.Errorf("create sketch: %w", err)
	}
	return nil
}

// SaveDocument replaces the stored document for a sketch in a single
// transaction: the sketch row is bumped to the given revision and marked
// valid, and the element and constraint rows are rewritten whole.
// Readers never observe a partially written sketch.
func (s *Store) SaveDocument(ctx context.Context, id string, doc *sketch.Document, revision int64, docHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save document: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		UPDATE sketches
		SET name = ?, revision = ?, invalid = 0, invalid_reason = '',
		    doc_hash = ?, updated_at = datetime('now')
		WHERE id = ?
	`, doc.Name, revision, docHash, id)
	if err != nil {
		return fmt.Errorf("save document: update sketch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save document: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save document %q: %w", id, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM elements WHERE sketch_id = ?`, id); err != nil {
		return fmt.Errorf("save document: clear elements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM constraints WHERE sketch_id = ?`, id); err != nil {
		return fmt.Errorf("save document: clear constraints: %w", err)
	}

	for i, e := range doc.Elements {
		geometry, err := marshalGeometry(e)
		if err != nil {
			return fmt.Errorf("save document: element %q: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO elements (sketch_id, id, kind, geometry, seq)
			VALUES (?, ?, ?, ?, ?)
		`, id, e.ID, string(e.Kind), geometry, i); err != nil {
			return fmt.Errorf("save document: insert element %q: %w", e.ID, err)
		}
	}

	for i, c := range doc.Constraints {
		refs, err := marshalRefs(c)
		if err != nil {
			return fmt.Errorf("save document: constraint %q: %w", c.ID, err)
		}
		var value any
		if c.Value != nil {
			value = *c.Value
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO constraints (sketch_id, id, type, refs, value, seq)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, c.ID, string(c.Type), refs, value, i); err != nil {
			return fmt.Errorf("save document: insert constraint %q: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save document: commit: %w", err)
	}
	return nil
}

// MarkInvalid flags a sketch whose last mutation could not be solved.
// The stored document keeps its last valid state.
func (s *Store) MarkInvalid(ctx context.Context, id, reason string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sketches
		SET invalid = 1, invalid_reason = ?, updated_at = datetime('now')
		WHERE id = ?
	`, reason, id)
	if err != nil {
		return fmt.Errorf("mark invalid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invalid: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark invalid %q: %w", id, ErrNotFound)
	}
	return nil
}

// RecordSolve appends one solve-history row.
// Uses ON CONFLICT DO NOTHING for idempotency - a (sketch, revision)
// pair is written at most once.
func (s *Store) RecordSolve(ctx context.Context, rec SolveRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO solves
		(sketch_id, revision, iterations, residual, converged, diverged, doc_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sketch_id, revision) DO NOTHING
	`,
		rec.SketchID,
		rec.Revision,
		rec.Iterations,
		rec.Residual,
		boolInt(rec.Converged),
		boolInt(rec.Diverged),
		rec.DocHash,
	)
	if err != nil {
		return fmt.Errorf("record solve: %w", err)
	}
	return nil
}

// DeleteSketch removes a sketch and, via foreign keys, its elements,
// constraints, and solve history.
func (s *Store) DeleteSketch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sketches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sketch: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
