package viewer

import (
	"fmt"

	"github.com/capabilitycompass/compass/internal/model"
)

// Graph is the flattened form of one subtree response: renderable node and
// relationship lists sorted by traversal order, plus the child-to-parent
// lookup used for path reconstruction. It is replaced wholesale on every
// fetch and never mutated afterwards.
type Graph struct {
	Nodes     []model.Node
	Rels      []model.Relationship
	ParentMap map[string]string
	RootID    string
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *model.Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Transform flattens the nested subtree into a Graph, assigning each node a
// strictly increasing traversal order via a breadth-first walk. Relationship
// types are iterated in declaration order and children in array order, so the
// result is reproducible for a given response. A missing root yields an empty
// Graph rather than an error.
func Transform(resp *model.ApiResponse) Graph {
	g := Graph{ParentMap: make(map[string]string)}
	if resp == nil || resp.Root == nil {
		return g
	}

	type queued struct {
		node  *model.ApiNode
		order int
	}

	g.RootID = resp.Root.ID()
	visited := map[string]bool{g.RootID: true}
	queue := []queued{{node: resp.Root, order: 0}}
	next := 1

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		g.Nodes = append(g.Nodes, flattenNode(cur.node, cur.order, resp.NodeDepths))

		for _, relType := range cur.node.RelationshipTypes() {
			for _, child := range cur.node.Relationships[relType] {
				if child == nil {
					continue
				}
				childID := child.ID()
				// The response is a tree, so a repeated internal id can only
				// come from a malformed payload. Skip it rather than re-add.
				if visited[childID] {
					continue
				}
				visited[childID] = true

				order := next
				next++

				g.Rels = append(g.Rels, model.Relationship{
					ID:             edgeID(cur.node.ID(), relType, childID),
					From:           cur.node.ID(),
					To:             childID,
					Caption:        relType,
					Color:          DefaultEdgeColor,
					Width:          DefaultEdgeWidth,
					Opacity:        DefaultNodeOpacity,
					TraversalOrder: order,
				})
				g.ParentMap[childID] = cur.node.ID()
				queue = append(queue, queued{node: child, order: order})
			}
		}
	}

	return g
}

func flattenNode(n *model.ApiNode, order int, depths map[string]int) model.Node {
	id := n.ID()
	return model.Node{
		ID:             id,
		Label:          n.PrimaryLabel(),
		Caption:        n.Name(),
		Color:          nodeColor(n.PrimaryLabel()),
		Size:           nodeSize(depths[id]),
		Opacity:        DefaultNodeOpacity,
		TraversalOrder: order,
		Properties:     n.Properties,
	}
}

// edgeID includes the relationship type so parallel edges between the same
// endpoints stay distinct.
func edgeID(from, relType, to string) string {
	return fmt.Sprintf("%s-%s->%s", from, relType, to)
}
