package lasso

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
)

func testContour(t *testing.T) *Contour {
	t.Helper()
	points := []mgl32.Vec2{{-0.5, -0.5}, {0.5, -0.5}, {0, 0.5}}
	c, err := NewContour(points, mgl32.Ident4(), mgl32.Ident4(), 0, core.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestContourSetUndoRedoRoundTrip(t *testing.T) {
	s := NewContourSet(nil)
	a := testContour(t)
	b := testContour(t)

	if err := s.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(b); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	if !s.Undo() {
		t.Fatal("undo should succeed")
	}
	if s.Len() != 1 || s.Contours()[0] != a {
		t.Fatal("undo should remove the newest contour")
	}

	if !s.Redo() {
		t.Fatal("redo should succeed")
	}
	if s.Len() != 2 || s.Contours()[1] != b {
		t.Fatal("redo should restore the undone contour")
	}

	if s.Redo() {
		t.Error("redo with empty stack should fail")
	}
}

func TestContourSetAddClearsRedo(t *testing.T) {
	s := NewContourSet(nil)
	_ = s.Add(testContour(t))
	_ = s.Add(testContour(t))
	s.Undo()

	if err := s.Add(testContour(t)); err != nil {
		t.Fatal(err)
	}
	if s.Redo() {
		t.Error("a new contour invalidates the redo stack")
	}
}

func TestContourSetDirtyTracking(t *testing.T) {
	s := NewContourSet(nil)
	if s.Dirty() {
		t.Error("fresh set should be clean")
	}

	_ = s.Add(testContour(t))
	if !s.Dirty() {
		t.Error("add should mark dirty")
	}
	s.ClearDirty()

	s.Undo()
	if !s.Dirty() {
		t.Error("undo should mark dirty")
	}
	s.ClearDirty()

	s.Redo()
	if !s.Dirty() {
		t.Error("redo should mark dirty")
	}
	s.ClearDirty()

	s.Clear()
	if !s.Dirty() {
		t.Error("clear should mark dirty")
	}
	s.ClearDirty()

	// Clearing an already-empty set is a no-op.
	s.Clear()
	if s.Dirty() {
		t.Error("empty clear should stay clean")
	}
}

func TestContourSetEnforcesLimit(t *testing.T) {
	s := NewContourSet(nil)
	for i := 0; i < MaxContours; i++ {
		if err := s.Add(testContour(t)); err != nil {
			t.Fatal(fmt.Errorf("add %d: %w", i, err))
		}
	}
	if err := s.Add(testContour(t)); err == nil {
		t.Error("expected error past the contour limit")
	}
	if s.Len() != MaxContours {
		t.Errorf("len = %d, want %d", s.Len(), MaxContours)
	}
}

func TestContourSetUndoEmpty(t *testing.T) {
	s := NewContourSet(nil)
	if s.Undo() {
		t.Error("undo on empty set should fail")
	}
}
