package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/lasso"
	"github.com/voxscope/voxscope/march"
)

// simplifyEps is the RDP tolerance for captured contours, in NDC units.
// Roughly two pixels at a 1000-pixel viewport.
const simplifyEps = 0.004

// Window/level drag sensitivity, HU per pixel.
const wlSensitivity = 2.0

func (a *App) installCallbacks() {
	a.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.Resize(width, height)
	})

	a.Window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		a.handleMouseButton(button, action)
	})

	a.Window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		a.handleCursor(x, y)
	})

	a.Window.SetScrollCallback(func(w *glfw.Window, dx, dy float64) {
		a.Session.Scheduler.MotionStart()
		a.Session.Camera.Zoom(float32(dy))
		a.Session.Scheduler.MotionEnd()
	})

	a.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		a.handleKey(key, mods)
	})
}

func (a *App) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	switch button {
	case glfw.MouseButtonLeft:
		if action == glfw.Press {
			if a.Session.LassoActive {
				a.beginLasso()
				return
			}
			a.dragging = true
			a.Session.Scheduler.MotionStart()
		} else if action == glfw.Release {
			if a.lassoDrawing {
				a.finishLasso()
				return
			}
			if a.dragging {
				a.dragging = false
				a.Session.Scheduler.MotionEnd()
			} else {
				a.pickAtCursor()
			}
		}
	case glfw.MouseButtonRight:
		if action == glfw.Press {
			a.wlDragging = true
			a.Session.Scheduler.MotionStart()
		} else if action == glfw.Release && a.wlDragging {
			a.wlDragging = false
			a.Session.Scheduler.MotionEnd()
		}
	}
}

func (a *App) handleCursor(x, y float64) {
	dx := float32(x - a.lastCursor[0])
	dy := float32(y - a.lastCursor[1])
	a.lastCursor = [2]float64{x, y}

	switch {
	case a.lassoDrawing:
		a.lassoPoints = append(a.lassoPoints, a.cursorNDC(x, y))
	case a.dragging:
		a.Session.Camera.Orbit(dx, dy)
	case a.wlDragging:
		t := &a.Session.Transfer
		a.Session.SetWindow(t.Center+dx*wlSensitivity, t.Width+dy*wlSensitivity)
	}
}

func (a *App) handleKey(key glfw.Key, mods glfw.ModifierKey) {
	switch {
	case key == glfw.KeyEscape:
		a.Window.SetShouldClose(true)

	case key == glfw.KeyL:
		a.Session.SetLassoActive(!a.Session.LassoActive)
		a.Log.Infof("lasso %v", a.Session.LassoActive)

	case key == glfw.KeyZ && mods&glfw.ModControl != 0:
		if a.Contours.Undo() {
			a.Log.Infof("contour undone, %d remain", a.Contours.Len())
		}

	case key == glfw.KeyY && mods&glfw.ModControl != 0:
		if a.Contours.Redo() {
			a.Log.Infof("contour redone, %d active", a.Contours.Len())
		}

	case key == glfw.KeyC:
		a.Contours.Clear()
		a.Log.Infof("contours cleared")

	case key == glfw.KeyR:
		a.Session.Cut.Reset()
		a.Session.Scheduler.Invalidate()

	case key == glfw.KeyD:
		a.Log.SetDebug(!a.Log.DebugEnabled())
		a.Session.Scheduler.Invalidate()
	}
}

func (a *App) cursorNDC(x, y float64) mgl32.Vec2 {
	w, h := a.Window.GetSize()
	if w == 0 || h == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		float32(x)/float32(w)*2 - 1,
		1 - float32(y)/float32(h)*2,
	}
}

func (a *App) beginLasso() {
	a.lassoDrawing = true
	a.lassoPoints = a.lassoPoints[:0]
	x, y := a.Window.GetCursorPos()
	a.lassoPoints = append(a.lassoPoints, a.cursorNDC(x, y))
}

// finishLasso freezes the stroke into a contour with the matrices that were
// active while it was drawn. Degenerate strokes are dropped silently apart
// from a log line.
func (a *App) finishLasso() {
	a.lassoDrawing = false

	cam := a.Session.Camera
	aspect := float32(a.Config.Width) / float32(a.Config.Height)
	contour, err := lasso.NewContour(a.lassoPoints, cam.ViewMatrix(), cam.ProjMatrix(aspect), simplifyEps, a.Log)
	if err != nil {
		a.Log.Warnf("discarding lasso stroke: %v", err)
		return
	}
	if err := a.Contours.Add(contour); err != nil {
		a.Log.Warnf("adding contour: %v", err)
		return
	}
	a.Log.Infof("contour %s added with %d points", contour.ID, len(contour.Points))
}

func (a *App) pickAtCursor() {
	x, y := a.Window.GetCursorPos()
	id, err := a.Picker.ReadAt(a.Buffers, int(x), int(y), int(a.Config.Width), int(a.Config.Height))
	if err != nil {
		a.Log.Warnf("pick failed: %v", err)
		return
	}
	if id == march.ObjectVolume {
		a.Log.Debugf("picked volume at (%.0f, %.0f)", x, y)
	}
}
