package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/planarcad/planar/internal/sketch"
)

// GetSketch returns a sketch's metadata row.
// Returns ErrNotFound if the sketch does not exist.
func (s *Store) GetSketch(ctx context.Context, id string) (SketchMeta, error) {
	var (
		meta    SketchMeta
		invalid int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, revision, invalid, invalid_reason, doc_hash
		FROM sketches WHERE id = ?
	`, id).Scan(&meta.ID, &meta.Name, &meta.Revision, &invalid, &meta.InvalidReason, &meta.DocHash)
	if errors.Is(err, sql.ErrNoRows) {
		return SketchMeta{}, fmt.Errorf("get sketch %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return SketchMeta{}, fmt.Errorf("get sketch %q: %w", id, err)
	}
	meta.Invalid = invalid != 0
	return meta, nil
}

// ListSketches returns metadata for all sketches, ordered by creation.
func (s *Store) ListSketches(ctx context.Context) ([]SketchMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, revision, invalid, invalid_reason, doc_hash
		FROM sketches ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sketches: %w", err)
	}
	defer rows.Close()

	var out []SketchMeta
	for rows.Next() {
		var (
			meta    SketchMeta
			invalid int
		)
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Revision, &invalid, &meta.InvalidReason, &meta.DocHash); err != nil {
			return nil, fmt.Errorf("list sketches: scan: %w", err)
		}
		meta.Invalid = invalid != 0
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sketches: %w", err)
	}
	return out, nil
}

// LoadDocument reconstructs the full document for a sketch: elements in
// draw order, then constraints in declaration order.
// Returns ErrNotFound if the sketch does not exist.
func (s *Store) LoadDocument(ctx context.Context, id string) (*sketch.Document, error) {
	meta, err := s.GetSketch(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := &sketch.Document{Name: meta.Name}

	if err := s.loadElements(ctx, id, doc); err != nil {
		return nil, err
	}
	if err := s.loadConstraints(ctx, id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) loadElements(ctx context.Context, id string, doc *sketch.Document) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, geometry FROM elements
		WHERE sketch_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return fmt.Errorf("load elements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var elemID, kind, geometry string
		if err := rows.Scan(&elemID, &kind, &geometry); err != nil {
			return fmt.Errorf("load elements: scan: %w", err)
		}
		e, err := unmarshalGeometry(elemID, kind, geometry)
		if err != nil {
			return fmt.Errorf("load elements: %w", err)
		}
		doc.Elements = append(doc.Elements, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load elements: %w", err)
	}
	return nil
}

func (s *Store) loadConstraints(ctx context.Context, id string, doc *sketch.Document) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, refs, value FROM constraints
		WHERE sketch_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return fmt.Errorf("load constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			conID, ctype, refsJSON string
			value                  sql.NullFloat64
		)
		if err := rows.Scan(&conID, &ctype, &refsJSON, &value); err != nil {
			return fmt.Errorf("load constraints: scan: %w", err)
		}
		refs, err := unmarshalRefs(conID, refsJSON)
		if err != nil {
			return fmt.Errorf("load constraints: %w", err)
		}
		c := sketch.Constraint{
			ID:      conID,
			Type:    sketch.ConstraintType(ctype),
			Points:  refs.Points,
			Lines:   refs.Lines,
			Circles: refs.Circles,
		}
		if value.Valid {
			c.Value = sketch.Float(value.Float64)
		}
		doc.Constraints = append(doc.Constraints, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load constraints: %w", err)
	}
	return nil
}

// ListSolves returns the solve history for a sketch, oldest first.
func (s *Store) ListSolves(ctx context.Context, id string) ([]SolveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sketch_id, revision, iterations, residual, converged, diverged, doc_hash
		FROM solves WHERE sketch_id = ? ORDER BY revision
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list solves: %w", err)
	}
	defer rows.Close()

	var out []SolveRecord
	for rows.Next() {
		var (
			rec                  SolveRecord
			converged, diverged int
		)
		if err := rows.Scan(&rec.SketchID, &rec.Revision, &rec.Iterations, &rec.Residual, &converged, &diverged, &rec.DocHash); err != nil {
			return nil, fmt.Errorf("list solves: scan: %w", err)
		}
		rec.Converged = converged != 0
		rec.Diverged = diverged != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list solves: %w", err)
	}
	return out, nil
}

// LatestSolve returns the most recent solve record for a sketch, or
// ok=false when none has been recorded yet.
func (s *Store) LatestSolve(ctx context.Context, id string) (SolveRecord, bool, error) {
	var (
		rec                  SolveRecord
		converged, diverged int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT sketch_id, revision, iterations, residual, converged, diverged, doc_hash
		FROM solves WHERE sketch_id = ? ORDER BY revision DESC LIMIT 1
	`, id).Scan(&rec.SketchID, &rec.Revision, &rec.Iterations, &rec.Residual, &converged, &diverged, &rec.DocHash)
	if errors.Is(err, sql.ErrNoRows) {
		return SolveRecord{}, false, nil
	}
	if err != nil {
		return SolveRecord{}, false, fmt.Errorf("latest solve: %w", err)
	}
	rec.Converged = converged != 0
	rec.Diverged = diverged != 0
	return rec, true, nil
}
