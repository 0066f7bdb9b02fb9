package viewer

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/capabilitycompass/compass/internal/model"
)

// State of a viewer session. Transitions are driven by selection changes,
// fetch outcomes, and animation progress; see Select.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
	StateAnimating
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateAnimating:
		return "animating"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// ErrClosed is returned by Select after Close.
var ErrClosed = errors.New("viewer: closed")

// Selection identifies one subtree query.
type Selection struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Depth      int    `json:"depth"`     // 0 means unlimited
	Direction  string `json:"direction"` // outgoing, incoming or both
}

// SubtreeSource fetches the rooted subtree for a selection.
type SubtreeSource interface {
	Subtree(ctx context.Context, sel Selection) (*model.ApiResponse, error)
}

// DetailSource fetches extended properties for a node by its label and
// business key. Optional; failures here are never fatal to the viewer.
type DetailSource interface {
	NodeProperties(ctx context.Context, label, uid string) (map[string]interface{}, error)
}

// Options tune a Viewer. Zero values fall back to wall-clock scheduling with
// the default cadence.
type Options struct {
	Scheduler Scheduler
	Tick      time.Duration
	Settle    time.Duration
	Details   DetailSource

	// OnStateChange and OnError observe transitions; both may be nil. They
	// are called without internal locks held.
	OnStateChange func(State)
	OnError       func(error)
}

// Viewer orchestrates one graph view: it fetches subtrees, feeds the
// transform, runs the reveal animation, and layers path highlighting on top.
// A newer selection always invalidates the result of an older in-flight
// fetch, and at most one animation writes the visible set at a time.
type Viewer struct {
	mu       sync.Mutex
	source   SubtreeSource
	details  DetailSource
	surface  Surface
	viewport *Viewport
	animator *Animator
	sched    Scheduler
	settle   time.Duration

	state   State
	lastErr error
	graph   Graph

	visNodes []model.Node
	visRels  []model.Relationship

	highlight       *Path
	selectedID      string
	selectedDetails map[string]interface{}

	fetchGen     int
	cancelFetch  context.CancelFunc
	cancelSettle func()
	closed       bool

	onState func(State)
	onError func(error)
}

func New(source SubtreeSource, surface Surface, opts Options) *Viewer {
	sched := opts.Scheduler
	if sched == nil {
		sched = WallClock{}
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Viewer{
		source:   source,
		details:  opts.Details,
		surface:  surface,
		viewport: NewViewport(surface),
		animator: NewAnimator(sched, opts.Tick),
		sched:    sched,
		settle:   settle,
		state:    StateIdle,
		graph:    Graph{ParentMap: map[string]string{}},
		onState:  opts.OnStateChange,
		onError:  opts.OnError,
	}
}

// Select switches the viewer to a new (entityType, entityId, depth,
// direction) tuple: any in-flight fetch and running animation are cancelled,
// highlight state is cleared, and the subtree is fetched and animated. It
// blocks until the fetch resolves; the reveal itself runs on the scheduler.
// A result that loses to a newer Select is discarded and reported as nil.
func (v *Viewer) Select(ctx context.Context, sel Selection) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.fetchGen++
	gen := v.fetchGen
	if v.cancelFetch != nil {
		v.cancelFetch()
	}
	v.stopSettleLocked()
	v.resetViewLocked()
	v.state = StateLoading
	v.lastErr = nil
	fctx, cancel := context.WithCancel(ctx)
	v.cancelFetch = cancel
	v.mu.Unlock()

	v.animator.Stop()
	v.notifyState(StateLoading)
	v.publish()

	resp, err := v.source.Subtree(fctx, sel)

	v.mu.Lock()
	if v.closed || gen != v.fetchGen {
		// A newer selection superseded this fetch; its result is dead.
		v.mu.Unlock()
		return nil
	}
	v.cancelFetch = nil

	if err != nil {
		v.state = StateError
		v.lastErr = err
		v.graph = Graph{ParentMap: map[string]string{}}
		v.mu.Unlock()
		v.notifyState(StateError)
		if v.onError != nil {
			v.onError(err)
		}
		return err
	}

	g := Transform(resp)
	v.graph = g
	v.state = StateAnimating
	v.mu.Unlock()

	v.notifyState(StateAnimating)
	v.animator.Start(g.Nodes, g.Rels, v.frameFunc(gen), v.completeFunc(gen))
	return nil
}

func (v *Viewer) frameFunc(gen int) FrameFunc {
	return func(nodes []model.Node, rels []model.Relationship) {
		v.mu.Lock()
		if v.closed || gen != v.fetchGen {
			v.mu.Unlock()
			return
		}
		v.visNodes = nodes
		v.visRels = rels
		v.mu.Unlock()
		v.publish()
	}
}

func (v *Viewer) completeFunc(gen int) func() {
	return func() {
		v.mu.Lock()
		if v.closed || gen != v.fetchGen {
			v.mu.Unlock()
			return
		}
		v.state = StateSettled
		v.stopSettleLocked()
		// Let the renderer commit the final frame before framing it.
		v.cancelSettle = v.sched.After(v.settle, func() {
			v.viewport.Fit()
		})
		v.mu.Unlock()
		v.notifyState(StateSettled)
	}
}

// Skip jumps the running animation to its final state. No-op unless a graph
// is loaded; calling it when already settled just re-publishes the final
// frame.
func (v *Viewer) Skip() {
	v.mu.Lock()
	if v.closed || (v.state != StateAnimating && v.state != StateSettled) {
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()
	v.animator.Skip()
}

// HandleNodeClick highlights the path from the clicked node to the root and
// kicks off the non-fatal detail fetch for the node. Clicking the node that
// is already highlighted clears the highlight instead.
func (v *Viewer) HandleNodeClick(id string) {
	v.mu.Lock()
	if v.closed || (v.state != StateAnimating && v.state != StateSettled) {
		v.mu.Unlock()
		return
	}

	if v.selectedID == id {
		v.clearHighlightLocked()
		v.mu.Unlock()
		v.publish()
		return
	}

	node := v.graph.NodeByID(id)
	if node == nil {
		v.mu.Unlock()
		return
	}

	p := PathToRoot(id, v.graph.ParentMap, v.graph.Nodes, v.graph.Rels)
	v.highlight = &p
	v.selectedID = id
	v.selectedDetails = make(map[string]interface{}, len(node.Properties))
	for k, val := range node.Properties {
		v.selectedDetails[k] = val
	}
	gen := v.fetchGen
	label := node.Label
	uid, hasUID := businessKey(node.Properties)
	details := v.details
	v.mu.Unlock()

	v.publish()

	if details != nil && hasUID {
		go v.fetchDetails(gen, id, label, uid)
	}
}

// fetchDetails enriches the current selection with the extended property set.
// Failure is logged and otherwise ignored; the panel simply keeps the base
// properties.
func (v *Viewer) fetchDetails(gen int, id, label, uid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	props, err := v.details.NodeProperties(ctx, label, uid)
	if err != nil {
		log.Printf("node detail fetch failed for %s %s: %v", label, uid, err)
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.fetchGen || v.selectedID != id {
		return
	}
	for k, val := range props {
		v.selectedDetails[k] = val
	}
}

// HandleCanvasClick clears the highlight without touching the load state.
func (v *Viewer) HandleCanvasClick() {
	v.mu.Lock()
	if v.closed || v.highlight == nil {
		v.mu.Unlock()
		return
	}
	v.clearHighlightLocked()
	v.mu.Unlock()
	v.publish()
}

// HandleZoomChanged folds an externally driven zoom event into the viewport.
func (v *Viewer) HandleZoomChanged(factor float64) {
	v.viewport.HandleZoomChanged(factor)
}

// Viewport exposes the zoom/fit controller for this viewer.
func (v *Viewer) Viewport() *Viewport {
	return v.viewport
}

// State returns the current lifecycle state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the error of the last failed fetch, if the viewer is in the
// error state.
func (v *Viewer) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Visible returns copies of the currently published collections, with any
// highlight styling applied.
func (v *Viewer) Visible() ([]model.Node, []model.Relationship) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.styledLocked()
}

// Selection returns the highlighted node id (empty if none), its merged
// detail properties, and the path lineage.
func (v *Viewer) Selection() (string, map[string]interface{}, []model.PathStep) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selectedID == "" {
		return "", nil, nil
	}
	details := make(map[string]interface{}, len(v.selectedDetails))
	for k, val := range v.selectedDetails {
		details[k] = val
	}
	var steps []model.PathStep
	if v.highlight != nil {
		steps = append(steps, v.highlight.Steps...)
	}
	return v.selectedID, details, steps
}

// Close tears the viewer down: the animation timer is cancelled and any
// in-flight fetch is aborted. Subsequent calls are no-ops.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.fetchGen++
	if v.cancelFetch != nil {
		v.cancelFetch()
		v.cancelFetch = nil
	}
	v.stopSettleLocked()
	v.mu.Unlock()

	v.animator.Stop()
}

func (v *Viewer) resetViewLocked() {
	v.graph = Graph{ParentMap: map[string]string{}}
	v.visNodes = nil
	v.visRels = nil
	v.clearHighlightLocked()
}

func (v *Viewer) clearHighlightLocked() {
	v.highlight = nil
	v.selectedID = ""
	v.selectedDetails = nil
}

func (v *Viewer) stopSettleLocked() {
	if v.cancelSettle != nil {
		v.cancelSettle()
		v.cancelSettle = nil
	}
}

func (v *Viewer) styledLocked() ([]model.Node, []model.Relationship) {
	if v.highlight != nil {
		return ApplyHighlight(v.visNodes, v.visRels, *v.highlight)
	}
	return ClearHighlight(v.visNodes, v.visRels)
}

// publish pushes the current styled snapshot to the surface and syncs the
// viewport's visible set.
func (v *Viewer) publish() {
	v.mu.Lock()
	nodes, rels := v.styledLocked()
	surface := v.surface
	vp := v.viewport
	v.mu.Unlock()

	ids := make([]string, len(nodes))
	for i := range nodes {
		ids[i] = nodes[i].ID
	}
	vp.SetVisible(ids)
	surface.Render(nodes, rels)
}

func (v *Viewer) notifyState(s State) {
	if v.onState != nil {
		v.onState(s)
	}
}

// businessKey pulls the domain-unique uid out of a property map, in the
// string form the properties endpoint accepts. JSON decoding may deliver it
// as a float, the bolt protocol as an int, and some labels key on plain
// strings.
func businessKey(props map[string]interface{}) (string, bool) {
	switch uid := props["uid"].(type) {
	case string:
		return uid, uid != ""
	case int64:
		return strconv.FormatInt(uid, 10), true
	case int:
		return strconv.Itoa(uid), true
	case float64:
		return strconv.FormatInt(int64(uid), 10), true
	default:
		return "", false
	}
}
