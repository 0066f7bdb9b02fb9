package viewer

import "github.com/capabilitycompass/compass/internal/model"

// Surface is the rendering widget the viewer drives. Implementations own
// layout and drawing; the viewer only hands over snapshots and imperative
// zoom/fit commands. Fit is a black box that frames the given nodes and
// reports back the scale it actually applied.
//
// Surfaces are called from at most one goroutine at a time by the viewer, but
// implementations that also serve external readers should lock internally.
type Surface interface {
	// Render replaces the drawn graph with the given snapshot.
	Render(nodes []model.Node, rels []model.Relationship)

	// Fit frames exactly the given nodes and returns the resulting scale.
	Fit(nodeIDs []string) float64

	// SetZoom applies an absolute zoom factor.
	SetZoom(factor float64)

	// Scale reports the surface's current zoom factor.
	Scale() float64
}
