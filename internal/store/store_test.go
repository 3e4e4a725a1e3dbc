package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/sketch"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Errorf("journal_mode: %v", err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Errorf("foreign_keys: %v", err)
	}
}

func TestCreateSketch_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateSketch(ctx, "sk1", "bracket"); err != nil {
		t.Fatalf("CreateSketch() failed: %v", err)
	}
	if err := s.CreateSketch(ctx, "sk1", "bracket renamed"); err != nil {
		t.Fatalf("second CreateSketch() failed: %v", err)
	}

	meta, err := s.GetSketch(ctx, "sk1")
	if err != nil {
		t.Fatalf("GetSketch() failed: %v", err)
	}
	if meta.Name != "bracket" {
		t.Errorf("name = %q, want original %q", meta.Name, "bracket")
	}
	if meta.Revision != 0 {
		t.Errorf("revision = %d, want 0", meta.Revision)
	}
}

func TestGetSketch_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetSketch(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSketch() error = %v, want ErrNotFound", err)
	}
}

func testDocument() *sketch.Document {
	return &sketch.Document{
		Name: "bracket",
		Elements: []sketch.Element{
			{ID: "a", Kind: sketch.KindLine, Start: geom.V(0, 0), End: geom.V(100, 0)},
			{ID: "c", Kind: sketch.KindCircle, Center: geom.V(50, 30), Radius: 10},
			{ID: "s", Kind: sketch.KindSpline, Controls: []geom.Vec2{geom.V(0, 0), geom.V(5, 5), geom.V(10, 0)}},
		},
		Constraints: []sketch.Constraint{
			{
				ID:   "c1",
				Type: sketch.Horizontal,
				Lines: []sketch.LineRef{
					{Element: "a"},
				},
			},
			{
				ID:    "c2",
				Type:  sketch.Radius,
				Value: sketch.Float(12.5),
				Circles: []sketch.CircleRef{
					{Element: "c"},
				},
			},
		},
	}
}

func TestSaveDocument_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateSketch(ctx, "sk1", "bracket"); err != nil {
		t.Fatalf("CreateSketch() failed: %v", err)
	}

	doc := testDocument()
	if err := s.SaveDocument(ctx, "sk1", doc, 7, "hash-abc"); err != nil {
		t.Fatalf("SaveDocument() failed: %v", err)
	}

	got, err := s.LoadDocument(ctx, "sk1")
	if err != nil {
		t.Fatalf("LoadDocument() failed: %v", err)
	}

	if got.Name != doc.Name {
		t.Errorf("name = %q, want %q", got.Name, doc.Name)
	}
	if len(got.Elements) != len(doc.Elements) {
		t.Fatalf("got %d elements, want %d", len(got.Elements), len(doc.Elements))
	}
	for i := range doc.Elements {
		if got.Elements[i].ID != doc.Elements[i].ID {
			t.Errorf("element %d id = %q, want %q (draw order must survive)", i, got.Elements[i].ID, doc.Elements[i].ID)
		}
		if got.Elements[i].Kind != doc.Elements[i].Kind {
			t.Errorf("element %d kind = %q, want %q", i, got.Elements[i].Kind, doc.Elements[i].Kind)
		}
	}
	if got.Elements[0].End != geom.V(100, 0) {
		t.Errorf("line end = %v, want (100,0)", got.Elements[0].End)
	}
	if got.Elements[1].Radius != 10 {
		t.Errorf("circle radius = %v, want 10", got.Elements[1].Radius)
	}
	if len(got.Elements[2].Controls) != 3 {
		t.Errorf("spline controls = %d, want 3", len(got.Elements[2].Controls))
	}

	if len(got.Constraints) != 2 {
		t.Fatalf("got %d constraints, want 2", len(got.Constraints))
	}
	if got.Constraints[0].Type != sketch.Horizontal {
		t.Errorf("constraint 0 type = %q, want horizontal", got.Constraints[0].Type)
	}
	if got.Constraints[0].Value != nil {
		t.Errorf("geometric constraint should load with nil value, got %v", *got.Constraints[0].Value)
	}
	if got.Constraints[1].Val() != 12.5 {
		t.Errorf("constraint 1 value = %v, want 12.5", got.Constraints[1].Val())
	}
	if got.Constraints[1].Circles[0].Element != "c" {
		t.Errorf("constraint 1 circle ref = %q, want %q", got.Constraints[1].Circles[0].Element, "c")
	}

	meta, err := s.GetSketch(ctx, "sk1")
	if err != nil {
		t.Fatalf("GetSketch() failed: %v", err)
	}
	if meta.Revision != 7 {
		t.Errorf("revision = %d, want 7", meta.Revision)
	}
	if meta.DocHash != "hash-abc" {
		t.Errorf("doc_hash = %q, want %q", meta.DocHash, "hash-abc")
	}
}

func TestSaveDocument_ReplacesWhole(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateSketch(ctx, "sk1", "bracket"); err != nil {
		t.Fatalf("CreateSketch() failed: %v", err)
	}
	if err := s.SaveDocument(ctx, "sk1", testDocument(), 1, "h1"); err != nil {
		t.Fatalf("first SaveDocument() failed: %v", err)
	}

	smaller := &sketch.Document{
		Name: "bracket",
		Elements: []sketch.Element{
			{ID: "only", Kind: sketch.KindCircle, Center: geom.V(0, 0), Radius: 5},
		},
	}
	if err := s.SaveDocument(ctx, "sk1", smaller, 2, "h2"); err != nil {
		t.Fatalf("second SaveDocument() failed: %v", err)
	}

	got, err := s.LoadDocument(ctx, "sk1")
	if err != nil {
		t.Fatalf("LoadDocument() failed: %v", err)
	}
	if len(got.Elements) != 1 || got.Elements[0].ID != "only" {
		t.Errorf("stale elements survived replacement: %+v", got.Elements)
	}
	if len(got.Constraints) != 0 {
		t.Errorf("stale constraints survived replacement: %+v", got.Constraints)
	}
}

func TestSaveDocument_UnknownSketch(t *testing.T) {
	s := openTestStore(t)

	err := s.SaveDocument(context.Background(), "missing", testDocument(), 1, "h")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveDocument() error = %v, want ErrNotFound", err)
	}
}

func TestMarkInvalid_ThenSaveClears(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateSketch(ctx, "sk1", "bracket"); err != nil {
		t.Fatalf("CreateSketch() failed: %v", err)
	}
	if err := s.MarkInvalid(ctx, "sk1", "unknown element ref"); err != nil {
		t.Fatalf("MarkInvalid() failed: %v", err)
	}

	meta, err := s.GetSketch(ctx, "sk1")
	if err != nil {
		t.Fatalf("GetSketch() failed: %v", err)
	}
	if !meta.Invalid || meta.InvalidReason != "unknown element ref" {
		t.Errorf("meta = %+v, want invalid with reason", meta)
	}

	if err := s.SaveDocument(ctx, "sk1", testDocument(), 3, "h"); err != nil {
		t.Fatalf("SaveDocument() failed: %v", err)
	}
	meta, err = s.GetSketch(ctx, "sk1")
	if err != nil {
		t.Fatalf("GetSketch() failed: %v", err)
	}
	if meta.Invalid || meta.InvalidReason != "" {
		t.Errorf("save should clear invalid flag, got %+v", meta)
	}
}

func TestRecordSolve_HistoryAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateSketch(ctx, "sk1", "bracket"); err != nil {
		t.Fatalf("CreateSketch() failed: %v", err)
	}

	records := []SolveRecord{
		{SketchID: "sk1", Revision: 1, Iterations: 12, Residual: 5e-5, Converged: true, DocHash: "h1"},
		{SketchID: "sk1", Revision: 2, Iterations: 50, Residual: 3.2, Diverged: true, DocHash: "h2"},
	}
	for _, rec := range records {
		if err := s.RecordSolve(ctx, rec); err != nil {
			t.Fatalf("RecordSolve(rev=%d) failed: %v", rec.Revision, err)
		}
	}
	// Duplicate revision is a no-op.
	if err := s.RecordSolve(ctx, records[0]); err != nil {
		t.Fatalf("duplicate RecordSolve() failed: %v", err)
	}

	history, err := s.ListSolves(ctx, "sk1")
	if err != nil {
		t.Fatalf("ListSolves() failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d solve records, want 2", len(history))
	}
	if !history[0].Converged || history[0].Iterations != 12 {
		t.Errorf("record 0 = %+v", history[0])
	}
	if !history[1].Diverged || history[1].Converged {
		t.Errorf("record 1 = %+v", history[1])
	}

	latest, ok, err := s.LatestSolve(ctx, "sk1")
	if err != nil {
		t.Fatalf("LatestSolve() failed: %v", err)
	}
	if !ok || latest.Revision != 2 {
		t.Errorf("LatestSolve() = %+v ok=%v, want revision 2", latest, ok)
	}
}

func TestLatestSolve_Empty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateSketch(ctx, "sk1", "bracket"); err != nil {
		t.Fatalf("CreateSketch() failed: %v", err)
	}
	_, ok, err := s.LatestSolve(ctx, "sk1")
	if err != nil {
		t.Fatalf("LatestSolve() failed: %v", err)
	}
	if ok {
		t.Error("LatestSolve() ok = true for empty history")
	}
}

func TestDeleteSketch_Cascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateSketch(ctx, "sk1", "bracket"); err != nil {
		t.Fatalf("CreateSketch() failed: %v", err)
	}
	if err := s.SaveDocument(ctx, "sk1", testDocument(), 1, "h"); err != nil {
		t.Fatalf("SaveDocument() failed: %v", err)
	}
	if err := s.RecordSolve(ctx, SolveRecord{SketchID: "sk1", Revision: 1, Converged: true, DocHash: "h"}); err != nil {
		t.Fatalf("RecordSolve() failed: %v", err)
	}

	if err := s.DeleteSketch(ctx, "sk1"); err != nil {
		t.Fatalf("DeleteSketch() failed: %v", err)
	}

	for _, table := range []string{"sketches", "elements", "constraints", "solves"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows after delete, want 0", table, count)
		}
	}
}

func TestMaxRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rev, err := s.MaxRevision(ctx)
	if err != nil {
		t.Fatalf("MaxRevision() failed: %v", err)
	}
	if rev != 0 {
		t.Errorf("empty store MaxRevision() = %d, want 0", rev)
	}

	for i, id := range []string{"a", "b"} {
		if err := s.CreateSketch(ctx, id, id); err != nil {
			t.Fatalf("CreateSketch() failed: %v", err)
		}
		if err := s.SaveDocument(ctx, id, &sketch.Document{Name: id}, int64(i+5), "h"); err != nil {
			t.Fatalf("SaveDocument() failed: %v", err)
		}
	}

	rev, err = s.MaxRevision(ctx)
	if err != nil {
		t.Fatalf("MaxRevision() failed: %v", err)
	}
	if rev != 6 {
		t.Errorf("MaxRevision() = %d, want 6", rev)
	}
}
