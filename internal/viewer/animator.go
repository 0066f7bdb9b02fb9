package viewer

import (
	"sort"
	"sync"
	"time"

	"github.com/capabilitycompass/compass/internal/model"
)

const (
	// DefaultTick is the reveal cadence.
	DefaultTick = 300 * time.Millisecond
	// DefaultSettle is the pause before fit-to-view once the reveal finishes,
	// giving the renderer time to commit the final frame.
	DefaultSettle = 200 * time.Millisecond
)

// FrameFunc receives the visible snapshot after each reveal step. The slices
// are copies owned by the callee.
type FrameFunc func(nodes []model.Node, rels []model.Relationship)

// Animator incrementally reveals a flattened graph in traversal order on a
// fixed cadence. It is the sole mutator of the visible set while running.
// All exported methods are safe for concurrent use; callbacks are invoked
// without the internal lock held.
type Animator struct {
	mu     sync.Mutex
	sched  Scheduler
	tick   time.Duration
	gen    int
	cancel func()

	nodes []model.Node
	rels  []model.Relationship

	nodeIdx int
	relIdx  int
	visNodes []model.Node
	visRels  []model.Relationship
	running  bool
	loaded   bool

	onFrame    FrameFunc
	onComplete func()
}

func NewAnimator(sched Scheduler, tick time.Duration) *Animator {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Animator{sched: sched, tick: tick}
}

// Start cancels any reveal in progress and begins a new one over the given
// collections. Nodes and relationships are copied and stably sorted by
// traversal order, so the caller's slices are never touched.
func (a *Animator) Start(nodes []model.Node, rels []model.Relationship, onFrame FrameFunc, onComplete func()) {
	sortedNodes := make([]model.Node, len(nodes))
	copy(sortedNodes, nodes)
	sort.SliceStable(sortedNodes, func(i, j int) bool {
		return sortedNodes[i].TraversalOrder < sortedNodes[j].TraversalOrder
	})

	sortedRels := make([]model.Relationship, len(rels))
	copy(sortedRels, rels)
	sort.SliceStable(sortedRels, func(i, j int) bool {
		return sortedRels[i].TraversalOrder < sortedRels[j].TraversalOrder
	})

	a.mu.Lock()
	a.invalidateLocked()
	a.nodes = sortedNodes
	a.rels = sortedRels
	a.nodeIdx = 0
	a.relIdx = 0
	a.visNodes = nil
	a.visRels = nil
	a.onFrame = onFrame
	a.onComplete = onComplete
	a.loaded = true

	if len(a.nodes) == 0 && len(a.rels) == 0 {
		// Nothing to reveal; complete immediately.
		a.running = false
		complete := a.onComplete
		frame := a.onFrame
		a.mu.Unlock()
		if frame != nil {
			frame(nil, nil)
		}
		if complete != nil {
			complete()
		}
		return
	}

	a.running = true
	gen := a.gen
	a.cancel = a.sched.After(a.tick, func() { a.step(gen) })
	a.mu.Unlock()
}

// step is one reveal tick. It only applies if gen still matches, so a tick
// scheduled before Stop/Skip/Start can never touch a newer generation.
func (a *Animator) step(gen int) {
	a.mu.Lock()
	if gen != a.gen || !a.running {
		a.mu.Unlock()
		return
	}

	if a.nodeIdx < len(a.nodes) {
		node := a.nodes[a.nodeIdx]
		a.visNodes = append(a.visNodes, node)
		// An edge is revealed no later than the node it points at.
		for a.relIdx < len(a.rels) && a.rels[a.relIdx].TraversalOrder <= node.TraversalOrder {
			a.visRels = append(a.visRels, a.rels[a.relIdx])
			a.relIdx++
		}
		a.nodeIdx++

		a.cancel = a.sched.After(a.tick, func() { a.step(gen) })
		frame := a.onFrame
		nodes, rels := a.snapshotLocked()
		a.mu.Unlock()
		if frame != nil {
			frame(nodes, rels)
		}
		return
	}

	// All nodes revealed: flush whatever relationships remain and finish.
	a.visRels = append(a.visRels, a.rels[a.relIdx:]...)
	a.relIdx = len(a.rels)
	a.running = false
	a.cancel = nil
	frame := a.onFrame
	complete := a.onComplete
	nodes, rels := a.snapshotLocked()
	a.mu.Unlock()

	if frame != nil {
		frame(nodes, rels)
	}
	if complete != nil {
		complete()
	}
}

// Skip short-circuits to the final state: everything visible, completion
// fired. Calling it when already settled re-emits the same final snapshot.
func (a *Animator) Skip() {
	a.mu.Lock()
	if !a.loaded {
		a.mu.Unlock()
		return
	}
	a.invalidateLocked()
	a.visNodes = append([]model.Node(nil), a.nodes...)
	a.visRels = append([]model.Relationship(nil), a.rels...)
	a.nodeIdx = len(a.nodes)
	a.relIdx = len(a.rels)
	frame := a.onFrame
	complete := a.onComplete
	nodes, rels := a.snapshotLocked()
	a.mu.Unlock()

	if frame != nil {
		frame(nodes, rels)
	}
	if complete != nil {
		complete()
	}
}

// Stop cancels any pending tick without firing callbacks. Idempotent; must be
// called on teardown of the owner so no timer leaks past it.
func (a *Animator) Stop() {
	a.mu.Lock()
	a.invalidateLocked()
	a.mu.Unlock()
}

// Running reports whether a reveal is in progress.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Visible returns copies of the currently revealed collections.
func (a *Animator) Visible() ([]model.Node, []model.Relationship) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Animator) invalidateLocked() {
	a.gen++
	a.running = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *Animator) snapshotLocked() ([]model.Node, []model.Relationship) {
	nodes := append([]model.Node(nil), a.visNodes...)
	rels := append([]model.Relationship(nil), a.visRels...)
	return nodes, rels
}
