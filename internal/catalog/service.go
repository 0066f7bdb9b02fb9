package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/capabilitycompass/compass/internal/driver"
)

var (
	// ErrMissingSelector means neither uid nor name was supplied.
	ErrMissingSelector = errors.New("either uid or name must be provided")
	// ErrNotFound means the selector matched no node.
	ErrNotFound = errors.New("node not found")
)

// EntitySummary is one row of a catalog listing.
type EntitySummary struct {
	UID  interface{} `json:"uid"`
	Name string      `json:"name"`
}

type Service struct {
	Driver driver.Graph
}

func NewService(d driver.Graph) *Service {
	return &Service{Driver: d}
}

// AllEntities lists every node of the given entity type with its uid and
// display name, ordered by name.
func (s *Service) AllEntities(ctx context.Context, entityType string) ([]EntitySummary, error) {
	label, err := LabelFor(entityType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(driver.AllEntitiesQuery, label)
	result, err := s.Driver.ExecuteQuery(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	entities := make([]EntitySummary, 0, len(result.Records))
	for _, rec := range result.Records {
		uid, _ := rec.Get("uid")
		name, _ := rec.Get("name")
		summary := EntitySummary{UID: uid}
		if s, ok := name.(string); ok {
			summary.Name = s
		}
		entities = append(entities, summary)
	}
	return entities, nil
}

// NodeProperties fetches the full property map of one node, selected by uid
// or by name. The uid wins when both are present.
func (s *Service) NodeProperties(ctx context.Context, label, uid, name string) (map[string]interface{}, error) {
	if !ValidLabel(label) {
		return nil, fmt.Errorf("unknown label %q", label)
	}

	var query string
	params := map[string]interface{}{}
	switch {
	case uid != "":
		query = fmt.Sprintf(driver.NodePropertiesByUIDQuery, label)
		params["uid"] = uidValue(uid)
	case name != "":
		query = fmt.Sprintf(driver.NodePropertiesByNameQuery, label)
		params["name"] = name
	default:
		return nil, ErrMissingSelector
	}

	result, err := s.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	props, _ := result.Records[0].Get("props")
	m, ok := props.(map[string]interface{})
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

// CatalogNames returns every named node grouped by label. The intent service
// anchors free-text queries against this listing.
func (s *Service) CatalogNames(ctx context.Context) (map[string][]EntitySummary, error) {
	labels := Labels()
	labelParams := make([]interface{}, len(labels))
	for i, label := range labels {
		labelParams[i] = label
	}

	result, err := s.Driver.ExecuteQuery(ctx, driver.CatalogNamesQuery, map[string]interface{}{
		"labels": labelParams,
	})
	if err != nil {
		return nil, err
	}

	catalog := make(map[string][]EntitySummary)
	for _, rec := range result.Records {
		label, _ := rec.Get("label")
		l, ok := label.(string)
		if !ok {
			continue
		}
		name, _ := rec.Get("name")
		n, ok := name.(string)
		if !ok || n == "" {
			continue
		}
		uid, _ := rec.Get("uid")
		catalog[l] = append(catalog[l], EntitySummary{UID: uid, Name: n})
	}
	return catalog, nil
}

// uidValue coerces a uid query parameter to the type stored in the graph.
// Numeric business keys are stored as integers, so a string match would miss.
func uidValue(uid string) interface{} {
	if n, err := strconv.ParseInt(uid, 10, 64); err == nil {
		return n
	}
	return uid
}
