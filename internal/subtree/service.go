package subtree

import (
	"context"
	"fmt"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/capabilitycompass/compass/internal/catalog"
	"github.com/capabilitycompass/compass/internal/driver"
	"github.com/capabilitycompass/compass/internal/model"
)

// Service expands subtrees from the graph into the nested envelope the
// viewer consumes.
type Service struct {
	Driver driver.Graph
}

func NewService(d driver.Graph) *Service {
	return &Service{Driver: d}
}

type flatNode struct {
	internalID int64
	labels     []string
	props      map[string]interface{}
}

type flatRel struct {
	id      int64
	relType string
	startID int64
	endID   int64
}

type childEdge struct {
	relType string
	childID int64
}

// Subtree expands the subtree rooted at the entity with the given uid. It
// returns nil without error when the root does not exist.
func (s *Service) Subtree(ctx context.Context, entityType, uid string, depth int, direction Direction, relTypes []string) (*model.ApiResponse, error) {
	return s.subtreeByProperty(ctx, entityType, "uid", uidValue(uid), depth, direction, relTypes)
}

// SubtreeByName expands the subtree rooted at the entity with the given
// display name.
func (s *Service) SubtreeByName(ctx context.Context, entityType, name string, depth int, direction Direction, relTypes []string) (*model.ApiResponse, error) {
	return s.subtreeByProperty(ctx, entityType, "name", name, depth, direction, relTypes)
}

func (s *Service) subtreeByProperty(ctx context.Context, entityType, matchProperty string, value interface{}, depth int, direction Direction, relTypes []string) (*model.ApiResponse, error) {
	label, err := catalog.LabelFor(entityType)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{"value": value}

	query := buildSubtreeQuery(label, matchProperty, depth, direction, relTypes)
	result, err := s.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}

	// The root is loaded on its own so a node with no expansion still
	// resolves.
	rootResult, err := s.Driver.ExecuteQuery(ctx, fmt.Sprintf(driver.SubtreeRootQuery, label, matchProperty), params)
	if err != nil {
		return nil, err
	}
	if len(rootResult.Records) == 0 {
		return nil, nil
	}
	rootNode, ok := rootResult.Records[0].Values[0].(dbtype.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected root record type %T", rootResult.Records[0].Values[0])
	}

	nodes := map[int64]flatNode{
		rootNode.Id: {internalID: rootNode.Id, labels: rootNode.Labels, props: rootNode.Props},
	}
	depths := map[int64]int{rootNode.Id: 0}
	maxDepth := 0

	var rels []flatRel
	seenRels := map[int64]bool{}

	for _, rec := range result.Records {
		nd, ok := rec.Values[0].(dbtype.Node)
		if !ok {
			continue
		}
		depthVal := 0
		if d, ok := rec.Values[2].(int64); ok {
			depthVal = int(d)
		}
		if depthVal > maxDepth {
			maxDepth = depthVal
		}

		if _, exists := nodes[nd.Id]; !exists {
			nodes[nd.Id] = flatNode{internalID: nd.Id, labels: nd.Labels, props: nd.Props}
			depths[nd.Id] = depthVal
		} else if depthVal < depths[nd.Id] {
			// A node reachable over several paths keeps its shortest depth.
			depths[nd.Id] = depthVal
		}

		if rel, ok := rec.Values[1].(dbtype.Relationship); ok && !seenRels[rel.Id] {
			seenRels[rel.Id] = true
			rels = append(rels, flatRel{
				id:      rel.Id,
				relType: rel.Type,
				startID: rel.StartId,
				endID:   rel.EndId,
			})
		}
	}

	// Parent and child swap for incoming traversals so the tree still hangs
	// off the root.
	children := map[int64][]childEdge{}
	for _, rel := range rels {
		parentID, childID := rel.startID, rel.endID
		if direction == DirectionIncoming {
			parentID, childID = rel.endID, rel.startID
		}
		children[parentID] = append(children[parentID], childEdge{relType: rel.relType, childID: childID})
	}

	root := buildNode(rootNode.Id, nodes, children, map[int64]bool{})
	if root == nil {
		return nil, nil
	}

	nodeDepths := make(map[string]int, len(depths))
	for id, d := range depths {
		nodeDepths[strconv.FormatInt(id, 10)] = d
	}

	return &model.ApiResponse{
		Root:       root,
		NodeDepths: nodeDepths,
		MaxDepth:   maxDepth,
	}, nil
}

// buildNode assembles the nested tree. The ancestors set breaks cycles that
// undirected expansions can produce.
func buildNode(id int64, nodes map[int64]flatNode, children map[int64][]childEdge, ancestors map[int64]bool) *model.ApiNode {
	flat, ok := nodes[id]
	if !ok {
		return nil
	}

	node := &model.ApiNode{
		InternalID: flat.internalID,
		Labels:     flat.labels,
		Properties: flat.props,
	}

	ancestors[id] = true
	for _, edge := range children[id] {
		if ancestors[edge.childID] {
			continue
		}
		if child := buildNode(edge.childID, nodes, children, ancestors); child != nil {
			node.AddChild(edge.relType, child)
		}
	}
	delete(ancestors, id)

	return node
}

func uidValue(uid string) interface{} {
	if n, err := strconv.ParseInt(uid, 10, 64); err == nil {
		return n
	}
	return uid
}
