package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_ZoomClamping(t *testing.T) {
	surface := NewMockSurface()
	vp := NewViewport(surface)
	vp.SetVisible([]string{"1"})

	for i := 0; i < 20; i++ {
		vp.ZoomIn()
	}
	assert.Equal(t, MaxZoom, vp.Zoom())

	for i := 0; i < 40; i++ {
		vp.ZoomOut()
	}
	assert.Equal(t, MinZoom, vp.Zoom())

	vp.Reset()
	assert.Equal(t, DefaultZoom, vp.Zoom())
	assert.Equal(t, DefaultZoom, surface.Scale())
}

func TestViewport_NoopWithoutVisibleNodes(t *testing.T) {
	surface := NewMockSurface()
	vp := NewViewport(surface)

	vp.ZoomIn()
	vp.ZoomOut()
	vp.Reset()
	vp.Fit()

	assert.Equal(t, DefaultZoom, vp.Zoom())
	assert.Empty(t, surface.ZoomCalls)
	assert.Empty(t, surface.FitCalls)
}

func TestViewport_FitAdoptsSurfaceScale(t *testing.T) {
	surface := NewMockSurface()
	surface.FitScale = 1.7
	vp := NewViewport(surface)
	vp.SetVisible([]string{"1", "2"})

	vp.Fit()

	assert.Equal(t, 1.7, vp.Zoom())
	assert.Equal(t, [][]string{{"1", "2"}}, surface.FitCalls)
}

func TestViewport_FitClampsReportedScale(t *testing.T) {
	surface := NewMockSurface()
	surface.FitScale = 0.05 // renderer zoomed out far beyond our bounds
	vp := NewViewport(surface)
	vp.SetVisible([]string{"1"})

	vp.Fit()

	assert.Equal(t, MinZoom, vp.Zoom())
}

func TestViewport_ExternalZoomClampsIntoState(t *testing.T) {
	vp := NewViewport(NewMockSurface())
	vp.SetVisible([]string{"1"})

	vp.HandleZoomChanged(7.5)
	assert.Equal(t, MaxZoom, vp.Zoom())

	vp.HandleZoomChanged(1.25)
	assert.Equal(t, 1.25, vp.Zoom())
}
