package lasso

import (
	"fmt"

	"github.com/voxscope/voxscope/core"
)

// MaxContours bounds the contour collection.
const MaxContours = 64

// ContourSet owns the ordered contour collection with undo/redo. Contours
// are only ever added or removed whole, never edited. Every transition sets
// the dirty flag, which signals that the mask must be recomputed.
type ContourSet struct {
	contours []*Contour
	redo     []*Contour
	dirty    bool
	log      core.Logger
}

func NewContourSet(log core.Logger) *ContourSet {
	if log == nil {
		log = core.NewNopLogger()
	}
	return &ContourSet{log: log}
}

// Add appends a contour and clears the redo stack.
func (s *ContourSet) Add(c *Contour) error {
	if c == nil {
		return fmt.Errorf("nil contour")
	}
	if len(s.contours) >= MaxContours {
		s.log.Warnf("contour limit %d reached, rejecting new contour", MaxContours)
		return fmt.Errorf("contour limit %d reached", MaxContours)
	}
	s.contours = append(s.contours, c)
	s.redo = s.redo[:0]
	s.dirty = true
	return nil
}

// Undo removes the most recent contour; it stays available for Redo.
func (s *ContourSet) Undo() bool {
	if len(s.contours) == 0 {
		return false
	}
	last := s.contours[len(s.contours)-1]
	s.contours = s.contours[:len(s.contours)-1]
	s.redo = append(s.redo, last)
	s.dirty = true
	return true
}

// Redo restores the most recently undone contour.
func (s *ContourSet) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	last := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.contours = append(s.contours, last)
	s.dirty = true
	return true
}

// Clear drops everything, including redo history.
func (s *ContourSet) Clear() {
	if len(s.contours) == 0 && len(s.redo) == 0 {
		return
	}
	s.contours = s.contours[:0]
	s.redo = s.redo[:0]
	s.dirty = true
}

// Contours returns the live collection in draw order. Callers must not
// mutate it.
func (s *ContourSet) Contours() []*Contour { return s.contours }

func (s *ContourSet) Len() int { return len(s.contours) }

// Dirty reports whether the mask is stale relative to the contour set.
func (s *ContourSet) Dirty() bool { return s.dirty }

// ClearDirty is called once a mask recompute has been kicked off.
func (s *ContourSet) ClearDirty() { s.dirty = false }
