package viewer

import "sync"

// Zoom bounds and stepping for the viewport.
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 0.25
	DefaultZoom = 1.0
)

// Viewport owns the zoom state for one viewer and relays discrete zoom and
// fit commands to the surface. It is the single source of truth for the zoom
// factor: externally driven zoom (wheel, pinch) is folded back in through
// HandleZoomChanged, and fit reads back whatever scale the surface chose.
type Viewport struct {
	mu      sync.Mutex
	surface Surface
	zoom    float64
	visible []string
}

func NewViewport(surface Surface) *Viewport {
	return &Viewport{surface: surface, zoom: DefaultZoom}
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// SetVisible records which nodes are currently rendered. Zoom and fit are
// no-ops while this set is empty.
func (v *Viewport) SetVisible(ids []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = append([]string(nil), ids...)
}

// ZoomIn steps the zoom up by one increment, clamped to MaxZoom.
func (v *Viewport) ZoomIn() {
	v.stepZoom(ZoomStep)
}

// ZoomOut steps the zoom down by one increment, clamped to MinZoom.
func (v *Viewport) ZoomOut() {
	v.stepZoom(-ZoomStep)
}

func (v *Viewport) stepZoom(delta float64) {
	v.mu.Lock()
	if len(v.visible) == 0 {
		v.mu.Unlock()
		return
	}
	v.zoom = clampZoom(v.zoom + delta)
	zoom := v.zoom
	surface := v.surface
	v.mu.Unlock()

	surface.SetZoom(zoom)
}

// Reset snaps back to the default zoom.
func (v *Viewport) Reset() {
	v.mu.Lock()
	if len(v.visible) == 0 {
		v.mu.Unlock()
		return
	}
	v.zoom = DefaultZoom
	surface := v.surface
	v.mu.Unlock()

	surface.SetZoom(DefaultZoom)
}

// Fit asks the surface to frame the visible nodes, then adopts the scale the
// surface reports so internal state matches what was actually drawn.
func (v *Viewport) Fit() {
	v.mu.Lock()
	if len(v.visible) == 0 {
		v.mu.Unlock()
		return
	}
	ids := append([]string(nil), v.visible...)
	surface := v.surface
	v.mu.Unlock()

	scale := surface.Fit(ids)

	v.mu.Lock()
	v.zoom = clampZoom(scale)
	v.mu.Unlock()
}

// HandleZoomChanged folds an externally driven zoom change (mouse wheel,
// pinch) into the owned state. The surface already applied it, so nothing is
// written back.
func (v *Viewport) HandleZoomChanged(factor float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = clampZoom(factor)
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
