package core

// QualityScheduler decides, per frame, whether to render and at which
// quality tier. During camera motion it drops to LQ for interactivity; once
// motion ends it renders HQ, and after two identical HQ frames it skips
// rendering entirely until something invalidates the image.
//
// The correctness property is "never permanently stale": every state change
// that can affect the final pixel resets hqRenderCount, so at least one more
// HQ frame is produced.
type QualityScheduler struct {
	usingHQ       bool
	hqRenderCount int
}

func NewQualityScheduler() *QualityScheduler {
	return &QualityScheduler{usingHQ: true}
}

// MotionStart switches to LQ. Called on drag begin, wheel input and widget
// selection start.
func (s *QualityScheduler) MotionStart() {
	s.usingHQ = false
	s.hqRenderCount = 0
}

// MotionEnd switches back to HQ for a fresh full-quality frame.
func (s *QualityScheduler) MotionEnd() {
	s.usingHQ = true
	s.hqRenderCount = 0
}

// Invalidate forces a re-render after any parameter change: resize, profile
// edit, lasso completion, window/level or cutting cube mutation.
func (s *QualityScheduler) Invalidate() {
	s.hqRenderCount = 0
}

// ShouldRender reports whether this frame needs to be drawn at all.
func (s *QualityScheduler) ShouldRender() bool {
	return !(s.usingHQ && s.hqRenderCount > 1)
}

// FrameRendered records a completed frame.
func (s *QualityScheduler) FrameRendered() {
	if s.usingHQ {
		s.hqRenderCount++
	}
}

func (s *QualityScheduler) UsingHQ() bool { return s.usingHQ }
