package render

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/capabilitycompass/compass/internal/model"
	"github.com/capabilitycompass/compass/internal/viewer"
)

// MessageWriter is the slice of a websocket connection the surface needs,
// kept as an interface so tests can capture the stream.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// ThreadSafeConn wraps a websocket.Conn so concurrent writers serialize.
// gorilla/websocket only supports one writer at a time; the viewer's frame
// callbacks and the session's own messages can otherwise interleave.
type ThreadSafeConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func NewThreadSafeConn(c *websocket.Conn) *ThreadSafeConn {
	return &ThreadSafeConn{c: c}
}

func (t *ThreadSafeConn) WriteMessage(messageType int, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c.WriteMessage(messageType, data)
}

// FrameMessage is one websocket payload sent to the browser-side renderer.
type FrameMessage struct {
	Type    string               `json:"type"`
	Nodes   []model.Node         `json:"nodes,omitempty"`
	Rels    []model.Relationship `json:"rels,omitempty"`
	NodeIDs []string             `json:"node_ids,omitempty"`
	Factor  float64              `json:"factor,omitempty"`
}

// SocketSurface is a viewer.Surface that streams render commands to a
// browser over a websocket. The browser owns the actual canvas; fit reports
// the last scale the client told us about via ReportScale.
type SocketSurface struct {
	w MessageWriter

	mu    sync.Mutex
	scale float64
}

var _ viewer.Surface = (*SocketSurface)(nil)

func NewSocketSurface(w MessageWriter) *SocketSurface {
	return &SocketSurface{w: w, scale: viewer.DefaultZoom}
}

func (s *SocketSurface) Render(nodes []model.Node, rels []model.Relationship) {
	s.send(FrameMessage{Type: "frame", Nodes: nodes, Rels: rels})
}

func (s *SocketSurface) Fit(nodeIDs []string) float64 {
	s.send(FrameMessage{Type: "fit", NodeIDs: nodeIDs})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

func (s *SocketSurface) SetZoom(factor float64) {
	s.mu.Lock()
	s.scale = factor
	s.mu.Unlock()
	s.send(FrameMessage{Type: "zoom", Factor: factor})
}

func (s *SocketSurface) Scale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

// ReportScale records the scale the client-side renderer settled on, so the
// next fit read-back reflects what was actually drawn.
func (s *SocketSurface) ReportScale(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = factor
}

func (s *SocketSurface) send(msg FrameMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to encode %s message: %v", msg.Type, err)
		return
	}
	if err := s.w.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("ws.WriteMessage err: %v", err)
	}
}
