package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathToRoot(t *testing.T) {
	g := Transform(treeResponse())

	p := PathToRoot("3", g.ParentMap, g.Nodes, g.Rels)

	assert.Equal(t, map[string]bool{"3": true, "2": true, "1": true}, p.NodeIDs)
	require.Len(t, p.EdgeIDs, 2)
	assert.True(t, p.EdgeIDs[edgeID("2", "DECOMPOSES", "3")])
	assert.True(t, p.EdgeIDs[edgeID("1", "REALIZED_BY", "2")])

	require.Len(t, p.Steps, 2)
	assert.Equal(t, "Netting", p.Steps[0].Name)
	assert.Equal(t, "Subprocess", p.Steps[0].Type)
	assert.Equal(t, "Clearing", p.Steps[1].Name)
}

func TestPathToRoot_RootItself(t *testing.T) {
	g := Transform(treeResponse())

	p := PathToRoot("1", g.ParentMap, g.Nodes, g.Rels)

	assert.Equal(t, map[string]bool{"1": true}, p.NodeIDs)
	assert.Empty(t, p.EdgeIDs)
	assert.Empty(t, p.Steps)
}

func TestPathToRoot_MatchesReversedEdges(t *testing.T) {
	g := Transform(treeResponse())
	// Store the connecting edge child-to-parent; the lookup must still find it.
	for i := range g.Rels {
		g.Rels[i].From, g.Rels[i].To = g.Rels[i].To, g.Rels[i].From
	}

	p := PathToRoot("3", g.ParentMap, g.Nodes, g.Rels)
	assert.Len(t, p.EdgeIDs, 2)
}

func TestApplyHighlight(t *testing.T) {
	g := Transform(treeResponse())
	p := PathToRoot("3", g.ParentMap, g.Nodes, g.Rels)

	nodes, rels := ApplyHighlight(g.Nodes, g.Rels, p)

	for _, n := range nodes {
		if p.NodeIDs[n.ID] {
			assert.Equal(t, DefaultNodeOpacity, n.Opacity, "path node %s", n.ID)
		} else {
			assert.Equal(t, FadedNodeOpacity, n.Opacity, "off-path node %s", n.ID)
		}
	}
	for _, r := range rels {
		if p.EdgeIDs[r.ID] {
			assert.Equal(t, HighlightEdgeColor, r.Color)
			assert.Equal(t, HighlightEdgeWidth, r.Width)
		} else {
			assert.Equal(t, DefaultEdgeColor, r.Color)
			assert.Equal(t, DefaultEdgeWidth, r.Width)
		}
	}

	// Inputs must not be mutated.
	for _, n := range g.Nodes {
		assert.Equal(t, DefaultNodeOpacity, n.Opacity)
	}
}

func TestHighlightThenClearRestoresDefaults(t *testing.T) {
	g := Transform(treeResponse())
	p := PathToRoot("4", g.ParentMap, g.Nodes, g.Rels)

	highlighted, highlightedRels := ApplyHighlight(g.Nodes, g.Rels, p)
	cleared, clearedRels := ClearHighlight(highlighted, highlightedRels)

	assert.Equal(t, g.Nodes, cleared)
	assert.Equal(t, g.Rels, clearedRels)
}
