package viewer

import "github.com/capabilitycompass/compass/internal/model"

// Path is the node/edge set on the walk from a clicked node up to the root,
// plus the hop-by-hop lineage for detail panels.
type Path struct {
	NodeIDs map[string]bool
	EdgeIDs map[string]bool
	Steps   []model.PathStep
}

// Contains reports whether the node is on the path.
func (p Path) Contains(nodeID string) bool {
	return p.NodeIDs[nodeID]
}

// PathToRoot walks parent links from nodeID until the root. Each hop looks up
// the connecting edge in either direction since relationships may be stored
// parent-to-child. Termination is bounded by tree depth: every node has at
// most one parent entry.
func PathToRoot(nodeID string, parents map[string]string, nodes []model.Node, rels []model.Relationship) Path {
	p := Path{
		NodeIDs: make(map[string]bool),
		EdgeIDs: make(map[string]bool),
	}

	byID := make(map[string]*model.Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	current := nodeID
	for {
		parent, ok := parents[current]
		if !ok {
			break
		}
		if edge := findEdge(rels, current, parent); edge != "" {
			p.EdgeIDs[edge] = true
		}
		p.NodeIDs[current] = true
		if n := byID[current]; n != nil {
			p.Steps = append(p.Steps, model.PathStep{Name: n.Caption, Type: n.Label})
		}
		current = parent
	}
	// current is now the root.
	p.NodeIDs[current] = true

	return p
}

func findEdge(rels []model.Relationship, a, b string) string {
	for i := range rels {
		r := &rels[i]
		if (r.From == a && r.To == b) || (r.From == b && r.To == a) {
			return r.ID
		}
	}
	return ""
}

// ApplyHighlight returns fresh node/relationship collections with the path
// emphasized: path nodes keep full opacity while the rest fade, path edges get
// the highlight color and stroke. Inputs are never mutated so the renderer
// always observes a consistent snapshot.
func ApplyHighlight(nodes []model.Node, rels []model.Relationship, p Path) ([]model.Node, []model.Relationship) {
	outNodes := make([]model.Node, len(nodes))
	for i, n := range nodes {
		if p.NodeIDs[n.ID] {
			n.Opacity = DefaultNodeOpacity
		} else {
			n.Opacity = FadedNodeOpacity
		}
		outNodes[i] = n
	}

	outRels := make([]model.Relationship, len(rels))
	for i, r := range rels {
		if p.EdgeIDs[r.ID] {
			r.Color = HighlightEdgeColor
			r.Width = HighlightEdgeWidth
		} else {
			r.Color = DefaultEdgeColor
			r.Width = DefaultEdgeWidth
		}
		outRels[i] = r
	}

	return outNodes, outRels
}

// ClearHighlight returns fresh collections with every node and edge restored
// to the default style.
func ClearHighlight(nodes []model.Node, rels []model.Relationship) ([]model.Node, []model.Relationship) {
	outNodes := make([]model.Node, len(nodes))
	for i, n := range nodes {
		n.Opacity = DefaultNodeOpacity
		outNodes[i] = n
	}

	outRels := make([]model.Relationship, len(rels))
	for i, r := range rels {
		r.Color = DefaultEdgeColor
		r.Width = DefaultEdgeWidth
		outRels[i] = r
	}

	return outNodes, outRels
}
