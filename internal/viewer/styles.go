package viewer

// Visual defaults applied by the transform and the highlight overlay.
const (
	DefaultNodeOpacity = 1.0
	FadedNodeOpacity   = 0.35

	DefaultEdgeColor = "#A5ABB6"
	DefaultEdgeWidth = 1.0

	HighlightEdgeColor = "#F16667"
	HighlightEdgeWidth = 3.0

	baseNodeSize    = 26.0
	depthSizeFalloff = 2.0
	minNodeSize     = 12.0

	fallbackNodeColor = "#C990C0"
)

// labelColors is the fixed styling table for the capability taxonomy. Labels
// outside the table get the fallback color so unknown categories still render.
var labelColors = map[string]string{
	"Capability":         "#4C8EDA",
	"Process":            "#57C7E3",
	"Subprocess":         "#8DCC93",
	"DataEntity":         "#F79767",
	"DataElements":       "#FFC454",
	"OrganizationUnit":   "#D9C8AE",
	"ApplicationCatalog": "#ECB5C9",
}

func nodeColor(label string) string {
	if c, ok := labelColors[label]; ok {
		return c
	}
	return fallbackNodeColor
}

// nodeSize shrinks slightly with depth so the root reads as the anchor of the
// layout.
func nodeSize(depth int) float64 {
	size := baseNodeSize - float64(depth)*depthSizeFalloff
	if size < minNodeSize {
		size = minNodeSize
	}
	return size
}
