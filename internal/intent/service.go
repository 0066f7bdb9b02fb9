package intent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/capabilitycompass/compass/internal/catalog"
	"github.com/capabilitycompass/compass/internal/driver"
	"github.com/capabilitycompass/compass/internal/llm"
)

const maxContextDepth = 5

// anchorLabels are the node labels whose names participate in anchor
// matching.
var anchorLabels = []string{"Capability", "Process", "Subprocess"}

// Service answers natural-language questions about the capability model. The
// LLM and reranker are optional; without them the service still produces the
// query plan and the retrieved graph context.
type Service struct {
	Driver   driver.Graph
	Catalogs *catalog.Service
	LLM      llm.LLMClient
	Reranker llm.RerankerClient

	// ExtraInstructions is appended to the synthesis prompt when set.
	ExtraInstructions string
}

func NewService(d driver.Graph) *Service {
	return &Service{Driver: d, Catalogs: catalog.NewService(d)}
}

// Catalog lists every anchor name known to the graph.
func (s *Service) Catalog(ctx context.Context) ([]string, error) {
	byLabel, err := s.Catalogs.CatalogNames(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	for _, label := range anchorLabels {
		for _, entry := range byLabel[label] {
			if seen[entry.Name] {
				continue
			}
			seen[entry.Name] = true
			names = append(names, entry.Name)
		}
	}
	return names, nil
}

// Resolve fuzzy-matches a free-text name against the catalog.
func (s *Service) Resolve(ctx context.Context, name string, limit int) ([]string, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return Suggest(name, catalog, limit), nil
}

// Query interprets the request, retrieves graph context around each anchor
// and, when an LLM is wired in, synthesizes an answer.
func (s *Service) Query(ctx context.Context, req Request) (*Response, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch entity catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("entity catalog is empty")
	}

	anchors := ExtractAnchors(req.Query, catalog)
	if len(anchors) == 0 {
		sample := catalog
		if len(sample) > 10 {
			sample = sample[:10]
		}
		return &Response{
			Status:        "no_match",
			Message:       "Could not identify any entities in your query",
			Suggestions:   Suggest(req.Query, catalog, 3),
			CatalogSample: sample,
		}, nil
	}

	role := req.Role
	if role == "" {
		role = "Specialist"
	}
	persona, depth := DeterminePersona(role)

	plan := &QueryPlan{
		PrimaryAnchors: anchors,
		Intent:         ExtractIntent(req.Query),
		PersonaTone:    persona,
		DepthScope:     depth,
		IsComparison:   len(anchors) > 1,
	}

	graphData := make([]GraphData, 0, len(anchors))
	for _, anchor := range anchors {
		graphData = append(graphData, s.fetchGraphData(ctx, anchor, depth, plan.Intent))
	}

	graphData = s.rerank(ctx, req.Query, graphData, plan)
	graphContext := serializeGraphContext(graphData, plan)

	vertical := req.Vertical
	if vertical == "" {
		vertical = "Investment Management"
	}
	prompt := s.buildPrompt(req.Query, plan, graphContext, vertical)

	resp := &Response{
		Status:       "success",
		QueryPlan:    plan,
		GraphData:    graphData,
		GraphContext: graphContext,
		Prompt:       prompt,
	}

	if s.LLM != nil {
		answer, err := s.LLM.Generate(ctx, prompt)
		if err != nil {
			// The plan and context are still useful without the synthesis.
			log.Printf("intent: llm generation failed: %v", err)
		} else {
			resp.Answer = answer
		}
	}

	return resp, nil
}

// rerank reorders multi-anchor context by relevance to the query.
func (s *Service) rerank(ctx context.Context, query string, graphData []GraphData, plan *QueryPlan) []GraphData {
	if s.Reranker == nil || len(graphData) < 2 {
		return graphData
	}

	docs := make([]string, len(graphData))
	for i, data := range graphData {
		docs[i] = serializeGraphContext([]GraphData{data}, plan)
	}

	indices, err := s.Reranker.Rank(ctx, query, docs)
	if err != nil || len(indices) == 0 {
		return graphData
	}

	reordered := make([]GraphData, 0, len(graphData))
	taken := make(map[int]bool)
	for _, i := range indices {
		if i < 0 || i >= len(graphData) || taken[i] {
			continue
		}
		taken[i] = true
		reordered = append(reordered, graphData[i])
	}
	for i, data := range graphData {
		if !taken[i] {
			reordered = append(reordered, data)
		}
	}

	plan.PrimaryAnchors = make([]string, len(reordered))
	for i, data := range reordered {
		plan.PrimaryAnchors[i] = data.Anchor
	}
	return reordered
}

func (s *Service) fetchGraphData(ctx context.Context, anchor string, depth int, intentCategory string) GraphData {
	if depth > maxContextDepth {
		depth = maxContextDepth
	}

	query := fmt.Sprintf(`
		MATCH (root {name: $name})
		OPTIONAL MATCH path = (root)-[:%s*1..%d]-(related)
		WITH root, collect(DISTINCT related) AS related_nodes, collect(DISTINCT path) AS paths
		UNWIND paths AS p
		UNWIND relationships(p) AS rel
		WITH root, related_nodes, collect(DISTINCT {
			type: type(rel),
			from_node: startNode(rel).name,
			to_node: endNode(rel).name
		}) AS rels
		RETURN root, related_nodes, rels AS relationships
	`, relPatternFor(intentCategory), depth)

	empty := GraphData{Anchor: anchor, Nodes: []ContextNode{}, Relationships: []ContextRel{}}

	result, err := s.Driver.ExecuteQuery(ctx, query, map[string]interface{}{"name": anchor})
	if err != nil {
		log.Printf("intent: context fetch for %q failed: %v", anchor, err)
		return empty
	}
	if len(result.Records) == 0 {
		return empty
	}

	rec := result.Records[0]
	rootVal, _ := rec.Get("root")
	rootNode, ok := rootVal.(dbtype.Node)
	if !ok {
		return empty
	}

	data := GraphData{
		Anchor:        anchor,
		Found:         true,
		Root:          formatNode(rootNode),
		Nodes:         []ContextNode{},
		Relationships: []ContextRel{},
	}

	if related, _ := rec.Get("related_nodes"); related != nil {
		if list, ok := related.([]interface{}); ok {
			for _, item := range list {
				if node, ok := item.(dbtype.Node); ok {
					data.Nodes = append(data.Nodes, *formatNode(node))
				}
			}
		}
	}

	if rels, _ := rec.Get("relationships"); rels != nil {
		if list, ok := rels.([]interface{}); ok {
			for _, item := range list {
				m, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				rel := ContextRel{}
				if v, ok := m["type"].(string); ok {
					rel.Type = v
				}
				if v, ok := m["from_node"].(string); ok {
					rel.From = v
				}
				if v, ok := m["to_node"].(string); ok {
					rel.To = v
				}
				data.Relationships = append(data.Relationships, rel)
			}
		}
	}

	return data
}

func formatNode(node dbtype.Node) *ContextNode {
	formatted := &ContextNode{
		UID:    node.Props["uid"],
		Labels: node.Labels,
	}
	if name, ok := node.Props["name"].(string); ok {
		formatted.Name = name
	}

	descKey := "description"
	for _, label := range node.Labels {
		switch label {
		case "DataEntity":
			descKey = "data_entity_description"
		case "DataElements":
			descKey = "data_element_description"
		}
	}
	if desc, ok := node.Props[descKey].(string); ok {
		formatted.Description = desc
	}
	return formatted
}

// serializeGraphContext renders the retrieved expansions as text, with
// detail scaled to the persona.
func serializeGraphContext(graphData []GraphData, plan *QueryPlan) string {
	persona := plan.PersonaTone
	var lines []string

	for _, data := range graphData {
		if !data.Found {
			lines = append(lines, fmt.Sprintf("- %s: No data found in graph", data.Anchor))
			continue
		}

		lines = append(lines, fmt.Sprintf("\n### %s (%s)", data.Root.Name, strings.Join(data.Root.Labels, ", ")))

		for _, node := range data.Nodes {
			var line string
			switch persona {
			case "Executive":
				line = fmt.Sprintf("  - %s (%s)", node.Name, strings.Join(node.Labels, ", "))
			case "Manager":
				desc := node.Description
				if runes := []rune(desc); len(runes) > 100 {
					desc = string(runes[:100])
				}
				if desc != "" {
					line = fmt.Sprintf("  - %s: %s", node.Name, desc)
				} else {
					line = fmt.Sprintf("  - %s", node.Name)
				}
			default:
				line = fmt.Sprintf("  - [%s] %s: %s", strings.Join(node.Labels, ", "), node.Name, node.Description)
			}
			lines = append(lines, line)
		}

		if persona != "Executive" && len(data.Relationships) > 0 {
			lines = append(lines, "\n  Relationships:")
			rels := data.Relationships
			if len(rels) > 10 {
				rels = rels[:10]
			}
			for _, rel := range rels {
				lines = append(lines, fmt.Sprintf("    - %s --[%s]--> %s", rel.From, rel.Type, rel.To))
			}
		}
	}

	return strings.Join(lines, "\n")
}

func (s *Service) buildPrompt(userQuery string, plan *QueryPlan, graphContext, vertical string) string {
	displayAnchor := strings.Join(plan.PrimaryAnchors, ", ")

	prompt := fmt.Sprintf(`
### ROLE
You are an expert Enterprise Architecture Consultant for the %s domain. You are the engine of the Virtual Model Office, specialized in synthesizing complex graph data into actionable insights.

### INPUT DATA
The following data has been retrieved from the Enterprise Knowledge Graph:
- USER QUERY: %s
- TARGET PERSONA: %s (Executive | Manager | Specialist)
- PRIMARY ANCHOR(S): %s
- INTENT CATEGORY: %s (Strategic | Operational | Informational | Impact | Technical)
- RETRIEVED GRAPH CONTEXT:
%s

### RESPONSE GUIDELINES BY PERSONA
- EXECUTIVE: Focus on "Bottom Line Up Front" (BLUF). Emphasize business value, goals, and high-level capabilities. Avoid technical IDs or deep process nesting.
- MANAGER: Focus on the "How." Detail the relationship between processes and applications. Highlight workflow dependencies and ownership.
- SPECIALIST: Provide maximum fidelity. Cite specific Data Entities, API names, and technical attributes. Be exhaustive in mapping the lineage.

### OPERATIONAL RULES
1. GROUNDING: Use ONLY the provided "RETRIEVED GRAPH CONTEXT". If information is missing, explicitly state: "This information is not available in the current enterprise model."
2. NO FABRICATION: Do not invent processes, applications, or data links that are not present in the context.
3. CITATION: Cite specific entities (e.g., "per the Process-Catalog...") to maintain model integrity.

### STRUCTURE OF RESPONSE
1. TARGET ENTITY: Display "[Target Entity: %s]" at the very top.
2. FINAL ANALYSIS: Provide the response tailored to the Persona.

### SYNTHESIS INSTRUCTION:
1. If RETRIEVED GRAPH CONTEXT contains multiple anchors, perform a side-by-side comparison.
2. If the TARGET PERSONA is Specialist, incorporate specific Data Element definitions into your narrative.
`, vertical, userQuery, plan.PersonaTone, displayAnchor, plan.Intent, graphContext, displayAnchor)

	if s.ExtraInstructions != "" {
		prompt += "\n" + s.ExtraInstructions + "\n"
	}
	return prompt
}
