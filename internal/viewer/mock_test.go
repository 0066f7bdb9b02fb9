package viewer

import (
	"context"
	"sync"

	"github.com/capabilitycompass/compass/internal/model"
)

// MockSurface records every command the viewer issues.
type MockSurface struct {
	mu          sync.Mutex
	Nodes       []model.Node
	Rels        []model.Relationship
	RenderCount int
	FitCalls    [][]string
	FitScale    float64
	ZoomCalls   []float64
	scale       float64
}

func NewMockSurface() *MockSurface {
	return &MockSurface{FitScale: 1.0, scale: 1.0}
}

func (m *MockSurface) Render(nodes []model.Node, rels []model.Relationship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Nodes = nodes
	m.Rels = rels
	m.RenderCount++
}

func (m *MockSurface) Fit(nodeIDs []string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FitCalls = append(m.FitCalls, nodeIDs)
	m.scale = m.FitScale
	return m.FitScale
}

func (m *MockSurface) SetZoom(factor float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ZoomCalls = append(m.ZoomCalls, factor)
	m.scale = factor
}

func (m *MockSurface) Scale() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scale
}

func (m *MockSurface) Rendered() ([]model.Node, []model.Relationship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Nodes, m.Rels
}

// MockSource serves canned responses keyed by entity id and remembers every
// selection it saw. Responses can be gated so a fetch stays in flight until
// the test releases it.
type MockSource struct {
	mu        sync.Mutex
	Responses map[int64]*model.ApiResponse
	Err       error
	Calls     []Selection
	gates     []chan struct{}
}

// GateNext makes the next Subtree call block until Release.
func (m *MockSource) GateNext() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates = append(m.gates, gate)
	return gate
}

func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockSource) Subtree(ctx context.Context, sel Selection) (*model.ApiResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, sel)
	var gate chan struct{}
	if len(m.gates) > 0 {
		gate = m.gates[0]
		m.gates = m.gates[1:]
	}
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Responses[sel.EntityID], nil
}

// MockDetails serves extended properties per label.
type MockDetails struct {
	mu      sync.Mutex
	Props   map[string]interface{}
	Err     error
	Calls   int
	LastUID string
	done    chan struct{}
}

func NewMockDetails(props map[string]interface{}) *MockDetails {
	return &MockDetails{Props: props, done: make(chan struct{}, 8)}
}

func (m *MockDetails) NodeProperties(ctx context.Context, label, uid string) (map[string]interface{}, error) {
	m.mu.Lock()
	m.Calls++
	m.LastUID = uid
	m.mu.Unlock()
	defer func() { m.done <- struct{}{} }()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Props, nil
}

// Wait blocks until one NodeProperties call has finished.
func (m *MockDetails) Wait() {
	<-m.done
}

func (m *MockDetails) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

func (m *MockDetails) LastKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastUID
}

// treeResponse builds a small capability subtree used across the tests:
//
//	Capability 1 -REALIZED_BY-> Process 2 -DECOMPOSES-> Subprocess 3
//	             -ACCOUNTABLE-> OrganizationUnit 4
func treeResponse() *model.ApiResponse {
	root := &model.ApiNode{
		InternalID: 1,
		Labels:     []string{"Capability"},
		Properties: map[string]interface{}{"uid": int64(10), "name": "Payments"},
	}
	proc := &model.ApiNode{
		InternalID: 2,
		Labels:     []string{"Process"},
		Properties: map[string]interface{}{"uid": int64(20), "name": "Clearing"},
	}
	sub := &model.ApiNode{
		InternalID: 3,
		Labels:     []string{"Subprocess"},
		Properties: map[string]interface{}{"uid": int64(30), "name": "Netting"},
	}
	org := &model.ApiNode{
		InternalID: 4,
		Labels:     []string{"OrganizationUnit"},
		Properties: map[string]interface{}{"uid": int64(40), "name": "Treasury"},
	}
	proc.AddChild("DECOMPOSES", sub)
	root.AddChild("REALIZED_BY", proc)
	root.AddChild("ACCOUNTABLE", org)

	return &model.ApiResponse{
		Root: root,
		NodeDepths: map[string]int{
			"1": 0, "2": 1, "4": 1, "3": 2,
		},
		MaxDepth: 2,
	}
}
