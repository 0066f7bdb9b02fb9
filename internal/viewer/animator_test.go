package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capabilitycompass/compass/internal/model"
)

func startAnimator(t *testing.T, g Graph) (*Animator, *ManualScheduler, *int) {
	t.Helper()
	sched := NewManualScheduler()
	anim := NewAnimator(sched, 0)
	completions := 0
	anim.Start(g.Nodes, g.Rels, nil, func() { completions++ })
	return anim, sched, &completions
}

func TestAnimator_RevealsPrefixInOrder(t *testing.T) {
	g := Transform(treeResponse())
	anim, sched, completions := startAnimator(t, g)

	for i := 1; i <= len(g.Nodes); i++ {
		require.True(t, sched.Fire())

		nodes, rels := anim.Visible()
		require.Len(t, nodes, i)

		// Visible nodes are a prefix by traversal order.
		for j, n := range nodes {
			assert.Equal(t, j, n.TraversalOrder)
		}

		// Every visible edge's target is already visible.
		visible := map[string]bool{}
		for _, n := range nodes {
			visible[n.ID] = true
		}
		for _, r := range rels {
			assert.True(t, visible[r.To], "edge %s revealed before its target", r.ID)
			assert.True(t, visible[r.From], "edge %s revealed before its source", r.ID)
		}
	}

	assert.Zero(t, *completions)
	// Final tick flushes and completes.
	require.True(t, sched.Fire())
	assert.Equal(t, 1, *completions)
	assert.False(t, anim.Running())

	nodes, rels := anim.Visible()
	assert.Len(t, nodes, len(g.Nodes))
	assert.Len(t, rels, len(g.Rels))
}

func TestAnimator_SkipMatchesFullAnimation(t *testing.T) {
	g := Transform(treeResponse())

	// Run one animation to completion.
	full, fullSched, _ := startAnimator(t, g)
	fullSched.FireAll()
	fullNodes, fullRels := full.Visible()

	// Skip a second one immediately.
	skipped, _, completions := startAnimator(t, g)
	skipped.Skip()
	skipNodes, skipRels := skipped.Visible()

	assert.Equal(t, fullNodes, skipNodes)
	assert.Equal(t, fullRels, skipRels)
	assert.Equal(t, 1, *completions)

	// Skipping again when settled yields the same set.
	skipped.Skip()
	again, againRels := skipped.Visible()
	assert.Equal(t, skipNodes, again)
	assert.Equal(t, skipRels, againRels)
}

func TestAnimator_StopCancelsPendingTick(t *testing.T) {
	g := Transform(treeResponse())
	anim, sched, completions := startAnimator(t, g)

	require.True(t, sched.Fire())
	anim.Stop()

	// The tick scheduled before Stop must not advance anything.
	assert.Equal(t, 0, sched.FireAll())
	nodes, _ := anim.Visible()
	assert.Len(t, nodes, 1)
	assert.Zero(t, *completions)
	assert.False(t, anim.Running())
}

func TestAnimator_RestartInvalidatesOldGeneration(t *testing.T) {
	g := Transform(treeResponse())
	sched := NewManualScheduler()
	anim := NewAnimator(sched, 0)

	firstFrames := 0
	anim.Start(g.Nodes, g.Rels, func([]model.Node, []model.Relationship) { firstFrames++ }, nil)

	// Restart before the first tick fires; the stale tick is cancelled, so
	// only the new animation's tick remains.
	secondFrames := 0
	anim.Start(g.Nodes[:1], nil, func([]model.Node, []model.Relationship) { secondFrames++ }, nil)

	sched.FireAll()
	assert.Zero(t, firstFrames)
	assert.Positive(t, secondFrames)

	nodes, rels := anim.Visible()
	assert.Len(t, nodes, 1)
	assert.Empty(t, rels)
}

func TestAnimator_EmptyGraphCompletesImmediately(t *testing.T) {
	sched := NewManualScheduler()
	anim := NewAnimator(sched, 0)

	completed := false
	anim.Start(nil, nil, nil, func() { completed = true })

	assert.True(t, completed)
	assert.False(t, anim.Running())
	assert.Zero(t, sched.Pending())
}

func TestAnimator_SkipBeforeStartIsNoop(t *testing.T) {
	anim := NewAnimator(NewManualScheduler(), 0)
	anim.Skip() // must not fire callbacks or panic
	nodes, rels := anim.Visible()
	assert.Empty(t, nodes)
	assert.Empty(t, rels)
}
