package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/planarcad/planar/internal/autocon"
	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/sketch"
	"github.com/planarcad/planar/internal/solver"
	"github.com/planarcad/planar/internal/store"
)

// MutationKind distinguishes mutation types.
type MutationKind int

const (
	// MutationAddElement commits a new element, runs auto-constraint
	// inference for it, and solves.
	MutationAddElement MutationKind = iota + 1
	// MutationAddConstraint adds a declared constraint and solves.
	MutationAddConstraint
	// MutationUpdateConstraint replaces a constraint by id and solves.
	MutationUpdateConstraint
	// MutationRemoveConstraint deletes a constraint by id and solves.
	MutationRemoveConstraint
	// MutationDragPoint moves one named point of an element and solves.
	MutationDragPoint
	// MutationResolve re-runs the solve cycle without changing anything,
	// e.g. after external edits to the stored document.
	MutationResolve
)

// Drag names a point and where the user dropped it.
type Drag struct {
	Point sketch.PointRef
	To    geom.Vec2
}

// Mutation is one unit of work for the Run loop. Exactly the fields the
// Kind needs are set.
type Mutation struct {
	Kind     MutationKind
	SketchID string

	Element      *sketch.Element    // MutationAddElement
	Constraint   *sketch.Constraint // MutationAddConstraint, MutationUpdateConstraint
	ConstraintID string             // MutationUpdateConstraint, MutationRemoveConstraint
	Drag         *Drag              // MutationDragPoint
}

// Engine is the single-writer sketch mutation loop.
//
// Thread-safety model:
//   - Enqueue and the mutation helpers: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// The solver itself has no internal locking and must never see two
// concurrent solves of the same sketch; funneling every mutation through
// this loop is what guarantees that.
type Engine struct {
	store  *store.Store
	clock  *Clock
	queue  *mutationQueue
	ids    IDGenerator
	params solver.Params
}

// Option configures an Engine.
type Option func(*Engine)

// WithSolverParams overrides the solver tuning.
func WithSolverParams(p solver.Params) Option {
	return func(e *Engine) { e.params = p }
}

// WithIDGenerator overrides id generation, e.g. with a FixedGenerator in
// tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithClock overrides the revision clock, e.g. to resume from the
// highest persisted revision.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an Engine over the given store.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		clock:  NewClock(),
		queue:  newMutationQueue(),
		ids:    UUIDv7Generator{},
		params: solver.DefaultParams(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue submits a mutation for processing. Safe from any goroutine.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(m Mutation) bool {
	return e.queue.Enqueue(m)
}

// AddElement enqueues an element commit.
func (e *Engine) AddElement(sketchID string, el sketch.Element) bool {
	return e.Enqueue(Mutation{Kind: MutationAddElement, SketchID: sketchID, Element: &el})
}

// AddConstraint enqueues a constraint add.
func (e *Engine) AddConstraint(sketchID string, c sketch.Constraint) bool {
	return e.Enqueue(Mutation{Kind: MutationAddConstraint, SketchID: sketchID, Constraint: &c})
}

// DragPoint enqueues a point drag.
func (e *Engine) DragPoint(sketchID string, point sketch.PointRef, to geom.Vec2) bool {
	return e.Enqueue(Mutation{Kind: MutationDragPoint, SketchID: sketchID, Drag: &Drag{Point: point, To: to}})
}

// Run starts the single-writer mutation loop. Blocks until the context
// is cancelled or Stop is called.
//
// On mutation failure the error is logged with its sketch context and
// processing continues; a bad sketch must not starve the others.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting")

	for {
		m, ok := e.queue.TryDequeue()
		if ok {
			if err := e.process(ctx, m); err != nil {
				slog.Error("mutation failed",
					"kind", m.Kind,
					"sketch", m.SketchID,
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// A coalesced signal can arrive after its work was already
			// dequeued; only a closed and drained queue ends the loop.
			if e.queue.Closed() && e.queue.Len() == 0 {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine; Run returns once the queue
// drains.
func (e *Engine) Stop() {
	e.queue.Close()
}

// process applies one mutation end to end. Called only from the Run
// goroutine.
func (e *Engine) process(ctx context.Context, m Mutation) error {
	slog.Debug("processing mutation", "kind", m.Kind, "sketch", m.SketchID)

	doc, err := e.store.LoadDocument(ctx, m.SketchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &RuntimeError{
				Code:     ErrCodeUnknownSketch,
				Message:  "sketch does not exist",
				SketchID: m.SketchID,
			}
		}
		return fmt.Errorf("load sketch %s: %w", m.SketchID, err)
	}

	if err := e.applyMutation(doc, m); err != nil {
		return err
	}

	solved, res, err := SolveDocument(doc, e.params)
	if err != nil {
		if markErr := e.store.MarkInvalid(ctx, m.SketchID, err.Error()); markErr != nil {
			return fmt.Errorf("mark invalid: %w (after: %v)", markErr, err)
		}
		return &RuntimeError{
			Code:     ErrCodeSolveFailed,
			Message:  err.Error(),
			SketchID: m.SketchID,
		}
	}
	if res.Diverged {
		slog.Warn("solve diverged, keeping last valid state",
			"sketch", m.SketchID,
			"iterations", res.Iterations,
			"residual", res.Residual,
		)
	}

	rev := e.clock.Next()
	hash, err := sketch.DocumentHash(solved)
	if err != nil {
		return fmt.Errorf("hash sketch %s: %w", m.SketchID, err)
	}
	if err := e.store.SaveDocument(ctx, m.SketchID, solved, rev, hash); err != nil {
		return fmt.Errorf("save sketch %s: %w", m.SketchID, err)
	}
	if err := e.store.RecordSolve(ctx, store.SolveRecord{
		SketchID:   m.SketchID,
		Revision:   rev,
		Iterations: res.Iterations,
		Residual:   res.Residual,
		Converged:  res.Converged,
		Diverged:   res.Diverged,
		DocHash:    hash,
	}); err != nil {
		return fmt.Errorf("record solve %s: %w", m.SketchID, err)
	}

	slog.Info("solve completed",
		"sketch", m.SketchID,
		"revision", rev,
		"iterations", res.Iterations,
		"residual", res.Residual,
		"converged", res.Converged,
	)
	return nil
}

// applyMutation edits the document in place according to the mutation.
func (e *Engine) applyMutation(doc *sketch.Document, m Mutation) error {
	switch m.Kind {
	case MutationAddElement:
		if m.Element == nil {
			return &RuntimeError{Code: ErrCodeBadMutation, Message: "add element: no element", SketchID: m.SketchID}
		}
		el := *m.Element
		if el.ID == "" {
			el.ID = e.ids.Generate()
		}

		detections, err := autocon.Detect(el, doc.Elements, doc.Constraints)
		if err != nil {
			return &RuntimeError{Code: ErrCodeSolveFailed, Message: err.Error(), SketchID: m.SketchID}
		}
		doc.Elements = append(doc.Elements, el)
		for _, d := range detections {
			c := d.Constraint
			c.ID = e.ids.Generate()
			doc.Constraints = append(doc.Constraints, c)
			slog.Info("auto-constraint inferred",
				"sketch", m.SketchID,
				"constraint", c.ID,
				"type", c.Type,
				"description", d.Description,
			)
		}
		return nil

	case MutationAddConstraint:
		if m.Constraint == nil {
			return &RuntimeError{Code: ErrCodeBadMutation, Message: "add constraint: no constraint", SketchID: m.SketchID}
		}
		c := *m.Constraint
		if c.ID == "" {
			c.ID = e.ids.Generate()
		}
		doc.Constraints = append(doc.Constraints, c)
		return nil

	case MutationUpdateConstraint:
		if m.Constraint == nil {
			return &RuntimeError{Code: ErrCodeBadMutation, Message: "update constraint: no constraint", SketchID: m.SketchID}
		}
		id := m.ConstraintID
		if id == "" {
			id = m.Constraint.ID
		}
		for i := range doc.Constraints {
			if doc.Constraints[i].ID == id {
				c := *m.Constraint
				c.ID = id
				doc.Constraints[i] = c
				return nil
			}
		}
		return &RuntimeError{Code: ErrCodeMissingConstraint, Message: fmt.Sprintf("no constraint %q", id), SketchID: m.SketchID}

	case MutationRemoveConstraint:
		for i := range doc.Constraints {
			if doc.Constraints[i].ID == m.ConstraintID {
				doc.Constraints = append(doc.Constraints[:i], doc.Constraints[i+1:]...)
				return nil
			}
		}
		return &RuntimeError{Code: ErrCodeMissingConstraint, Message: fmt.Sprintf("no constraint %q", m.ConstraintID), SketchID: m.SketchID}

	case MutationDragPoint:
		if m.Drag == nil {
			return &RuntimeError{Code: ErrCodeBadMutation, Message: "drag: no target", SketchID: m.SketchID}
		}
		return dragPoint(doc, m.Drag.Point, m.Drag.To)

	case MutationResolve:
		return nil
	}
	return &RuntimeError{Code: ErrCodeBadMutation, Message: fmt.Sprintf("unknown mutation kind %d", m.Kind), SketchID: m.SketchID}
}

// dragPoint moves one named point of an element by editing the element's
// own representation, the same transformation the solve cycle's
// write-back would produce for that point.
func dragPoint(doc *sketch.Document, ref sketch.PointRef, to geom.Vec2) error {
	for i := range doc.Elements {
		el := &doc.Elements[i]
		if el.ID != ref.Element {
			continue
		}
		if ok := dragElementPoint(el, ref, to); !ok {
			return &RuntimeError{
				Code:    ErrCodeBadMutation,
				Message: fmt.Sprintf("element %q has no draggable point %s", ref.Element, ref),
			}
		}
		return nil
	}
	return &RuntimeError{
		Code:    ErrCodeBadMutation,
		Message: fmt.Sprintf("drag: no element %q", ref.Element),
	}
}

func dragElementPoint(el *sketch.Element, ref sketch.PointRef, to geom.Vec2) bool {
	switch el.Kind {
	case sketch.KindLine:
		switch ref.Role {
		case sketch.RoleStart:
			el.Start = to
		case sketch.RoleEnd:
			el.End = to
		default:
			return false
		}
		return true

	case sketch.KindHLine:
		switch ref.Role {
		case sketch.RoleStart:
			// Keep the derived end in place: dragging the start changes
			// both anchor and length.
			end := el.HLineEnd()
			el.Start = to
			el.Length = end.X - to.X
		case sketch.RoleEnd:
			el.Length = to.X - el.Start.X
		default:
			return false
		}
		return true

	case sketch.KindVLine:
		switch ref.Role {
		case sketch.RoleStart:
			end := el.VLineEnd()
			el.Start = to
			el.Length = end.Y - to.Y
		case sketch.RoleEnd:
			el.Length = to.Y - el.Start.Y
		default:
			return false
		}
		return true

	case sketch.KindRectangle:
		if ref.Role != sketch.RoleCorner || ref.Index < 0 || ref.Index > 3 {
			return false
		}
		// Resize against the diagonally opposite corner, which stays put.
		opposite := el.RectangleCorner((ref.Index + 2) % 4)
		el.Origin = geom.V(min(to.X, opposite.X), min(to.Y, opposite.Y))
		el.Width = math.Abs(to.X - opposite.X)
		el.Height = math.Abs(to.Y - opposite.Y)
		return true

	case sketch.KindCircle:
		if ref.Role != sketch.RoleCenter {
			return false
		}
		el.Center = to
		return true

	case sketch.KindArc:
		switch ref.Role {
		case sketch.RoleCenter:
			el.Center = to
		case sketch.RoleStart:
			el.StartAngle = to.Sub(el.Center).Angle()
		case sketch.RoleEnd:
			el.EndAngle = to.Sub(el.Center).Angle()
		default:
			return false
		}
		return true

	case sketch.KindSpline:
		if ref.Role != sketch.RoleControl || ref.Index < 0 || ref.Index >= len(el.Controls) {
			return false
		}
		el.Controls[ref.Index] = to
		return true
	}
	return false
}
