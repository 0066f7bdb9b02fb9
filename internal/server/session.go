package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/capabilitycompass/compass/internal/catalog"
	"github.com/capabilitycompass/compass/internal/model"
	"github.com/capabilitycompass/compass/internal/subtree"
	"github.com/capabilitycompass/compass/internal/viewer"
	"github.com/capabilitycompass/compass/internal/viewer/render"
)

// subtreeSource adapts the subtree service to the viewer's fetch interface.
type subtreeSource struct {
	svc *subtree.Service
}

func (s subtreeSource) Subtree(ctx context.Context, sel viewer.Selection) (*model.ApiResponse, error) {
	dir, err := subtree.ParseDirection(sel.Direction)
	if err != nil {
		return nil, err
	}

	resp, err := s.svc.Subtree(ctx, sel.EntityType, strconv.FormatInt(sel.EntityID, 10), sel.Depth, dir, nil)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%s %d not found", sel.EntityType, sel.EntityID)
	}
	return resp, nil
}

// detailSource adapts the catalog service to the viewer's detail fetch.
type detailSource struct {
	svc *catalog.Service
}

func (d detailSource) NodeProperties(ctx context.Context, label, uid string) (map[string]interface{}, error) {
	return d.svc.NodeProperties(ctx, label, uid, "")
}

// clientMessage is one command from the browser side of a viewer session.
type clientMessage struct {
	Type       string  `json:"type"`
	EntityType string  `json:"entity_type"`
	EntityID   int64   `json:"entity_id"`
	Depth      int     `json:"depth"`
	Direction  string  `json:"direction"`
	NodeID     string  `json:"node_id"`
	Factor     float64 `json:"factor"`
}

type stateMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type viewerSession struct {
	id      string
	server  *Server
	conn    *render.ThreadSafeConn
	raw     *websocket.Conn
	surface *render.SocketSurface
	viewer  *viewer.Viewer
}

// ViewerSocket upgrades the connection and runs an interactive viewer
// session over it until the client goes away.
func (s *Server) ViewerSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("viewer: upgrade failed: %v", err)
		return
	}

	session := s.newViewerSession(conn)
	session.run()
}

func (s *Server) newViewerSession(conn *websocket.Conn) *viewerSession {
	session := &viewerSession{
		id:     uuid.NewString(),
		server: s,
		raw:    conn,
		conn:   render.NewThreadSafeConn(conn),
	}
	session.surface = render.NewSocketSurface(session.conn)

	session.viewer = viewer.New(
		subtreeSource{svc: s.Subtree},
		session.surface,
		viewer.Options{
			Tick:    time.Duration(s.Config.Viewer.TickMS) * time.Millisecond,
			Settle:  time.Duration(s.Config.Viewer.SettleMS) * time.Millisecond,
			Details: detailSource{svc: s.Catalog},
			OnStateChange: func(state viewer.State) {
				session.send(stateMessage{Type: "state", State: state.String()})
			},
			OnError: func(err error) {
				session.send(errorMessage{Type: "error", Error: err.Error()})
			},
		},
	)

	return session
}

func (s *viewerSession) run() {
	log.Printf("viewer: session %s connected", s.id)
	defer func() {
		s.viewer.Close()
		s.raw.Close()
		log.Printf("viewer: session %s closed", s.id)
	}()

	for {
		var msg clientMessage
		if err := s.raw.ReadJSON(&msg); err != nil {
			return
		}
		s.handle(msg)
	}
}

func (s *viewerSession) handle(msg clientMessage) {
	switch msg.Type {
	case "select":
		sel := viewer.Selection{
			EntityType: msg.EntityType,
			EntityID:   msg.EntityID,
			Depth:      msg.Depth,
			Direction:  msg.Direction,
		}
		if sel.Depth == 0 {
			sel.Depth = s.server.Config.Viewer.DefaultDepth
		}
		if sel.Direction == "" {
			sel.Direction = s.server.Config.Viewer.DefaultDirection
		}
		if err := s.viewer.Select(context.Background(), sel); err != nil {
			log.Printf("viewer: session %s select failed: %v", s.id, err)
		}
	case "node_click":
		s.viewer.HandleNodeClick(msg.NodeID)
	case "canvas_click":
		s.viewer.HandleCanvasClick()
	case "skip":
		s.viewer.Skip()
	case "zoom_in":
		s.viewer.Viewport().ZoomIn()
	case "zoom_out":
		s.viewer.Viewport().ZoomOut()
	case "zoom_reset":
		s.viewer.Viewport().Reset()
	case "fit":
		s.viewer.Viewport().Fit()
	case "zoom":
		s.viewer.HandleZoomChanged(msg.Factor)
	case "scale":
		// The browser reports back the scale its surface settled on.
		s.surface.ReportScale(msg.Factor)
	default:
		s.send(errorMessage{Type: "error", Error: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}

func (s *viewerSession) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("ws.WriteMessage err: %v", err)
	}
}
