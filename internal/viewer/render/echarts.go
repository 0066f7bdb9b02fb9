package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/capabilitycompass/compass/internal/model"
	"github.com/capabilitycompass/compass/internal/viewer"
)

// EChartsSurface is a viewer.Surface that keeps the latest snapshot and can
// write it out as a self-contained force-directed HTML chart. There is no live
// canvas, so fit simply reports the current zoom; the exported chart lets the
// browser roam freely anyway.
type EChartsSurface struct {
	mu    sync.Mutex
	title string
	nodes []model.Node
	rels  []model.Relationship
	zoom  float64
}

var _ viewer.Surface = (*EChartsSurface)(nil)

func NewEChartsSurface(title string) *EChartsSurface {
	if title == "" {
		title = "capability compass"
	}
	return &EChartsSurface{title: title, zoom: viewer.DefaultZoom}
}

func (e *EChartsSurface) Render(nodes []model.Node, rels []model.Relationship) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes = append([]model.Node(nil), nodes...)
	e.rels = append([]model.Relationship(nil), rels...)
}

func (e *EChartsSurface) Fit(nodeIDs []string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

func (e *EChartsSurface) SetZoom(factor float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoom = factor
}

func (e *EChartsSurface) Scale() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

// NodeCount reports how many nodes the latest snapshot holds.
func (e *EChartsSurface) NodeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)
}

// WriteFile renders the latest snapshot to filename, appending ".html"
// unless the name already carries it.
func (e *EChartsSurface) WriteFile(filename string) error {
	if !strings.HasSuffix(filename, ".html") {
		filename += ".html"
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return e.WriteTo(f)
}

// WriteTo renders the latest snapshot as an HTML page.
func (e *EChartsSurface) WriteTo(w io.Writer) error {
	e.mu.Lock()
	nodes := append([]model.Node(nil), e.nodes...)
	rels := append([]model.Relationship(nil), e.rels...)
	title := e.title
	e.mu.Unlock()

	page := components.NewPage()
	page.AddCharts(graphChart(title, nodes, rels))
	return page.Render(w)
}

func graphChart(title string, nodes []model.Node, rels []model.Relationship) *charts.Graph {
	// echarts links reference nodes by name, so captions must be unique.
	names := displayNames(nodes)

	chartNodes := make([]opts.GraphNode, 0, len(nodes))
	for _, n := range nodes {
		chartNodes = append(chartNodes, opts.GraphNode{
			Name:       names[n.ID],
			SymbolSize: n.Size,
			ItemStyle: &opts.ItemStyle{
				Color:   n.Color,
				Opacity: float32(n.Opacity),
			},
		})
	}

	chartLinks := make([]opts.GraphLink, 0, len(rels))
	for _, r := range rels {
		chartLinks = append(chartLinks, opts.GraphLink{
			Source: names[r.From],
			Target: names[r.To],
		})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"subtree",
		chartNodes,
		chartLinks,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Draggable: opts.Bool(true),
				Roam:      opts.Bool(true),
				Force:     &opts.GraphForce{Repulsion: 400},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)
	return graph
}

func displayNames(nodes []model.Node) map[string]string {
	names := make(map[string]string, len(nodes))
	used := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		name := n.Caption
		if used[name] {
			name = fmt.Sprintf("%s (%s)", n.Caption, n.ID)
		}
		used[name] = true
		names[n.ID] = name
	}
	return names
}
