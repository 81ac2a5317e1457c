package core

// Session is the explicit render-session state: everything that used to be
// free-standing mutable state lives here and is passed to each frame call.
// Owned by the top-level app; mutated only from the event-loop thread.
type Session struct {
	Camera    *CameraState
	Transfer  TransferFunction
	Cut       *CuttingCube
	Scheduler *QualityScheduler
	Profiles  Profiles

	// LassoActive disables camera drags while contours are being drawn.
	LassoActive bool

	Log Logger
}

func NewSession(log Logger) *Session {
	if log == nil {
		log = NewNopLogger()
	}
	return &Session{
		Camera:    NewCameraState(),
		Transfer:  NewTransferFunction(40, 400),
		Cut:       NewCuttingCube(),
		Scheduler: NewQualityScheduler(),
		Profiles:  DefaultProfiles(),
		Log:       log,
	}
}

// ActiveParams returns the profile the scheduler selected for this frame.
func (s *Session) ActiveParams() RenderParams {
	if s.Scheduler.UsingHQ() {
		return s.Profiles.HQ
	}
	return s.Profiles.LQ
}

// SetWindow updates the transfer function and invalidates the image.
func (s *Session) SetWindow(center, width float32) {
	s.Transfer.SetCenter(center)
	s.Transfer.SetWidth(width)
	s.Scheduler.Invalidate()
}

// SetLassoActive toggles the lasso tool; camera drags are disabled while it
// is active.
func (s *Session) SetLassoActive(active bool) {
	s.LassoActive = active
	s.Camera.DragEnabled = !active
}
