package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ApiNode is one node of the nested subtree payload served by the subtree
// endpoint. Relationships maps a relationship type (e.g. REALIZED_BY) to the
// child nodes reached through it. The declaration order of relationship types
// is significant for traversal, so it is tracked separately from the map.
type ApiNode struct {
	InternalID    int64                 `json:"internal_id"`
	Labels        []string              `json:"labels"`
	Properties    map[string]interface{} `json:"properties"`
	Relationships map[string][]*ApiNode `json:"relationships,omitempty"`

	relOrder []string
}

// ID returns the node identifier used throughout the viewer, derived from the
// database-internal id which is stable within a single response.
func (n *ApiNode) ID() string {
	return strconv.FormatInt(n.InternalID, 10)
}

// PrimaryLabel returns the first label, the one used for styling and legends.
func (n *ApiNode) PrimaryLabel() string {
	if len(n.Labels) == 0 {
		return ""
	}
	return n.Labels[0]
}

// Name returns the display name from the property map, falling back to the
// internal id so a node is never rendered without a caption.
func (n *ApiNode) Name() string {
	if n.Properties != nil {
		if name, ok := n.Properties["name"].(string); ok && name != "" {
			return name
		}
	}
	return n.ID()
}

// RelationshipTypes returns the relationship type keys in declaration order.
// For nodes decoded from JSON this is the key order of the wire payload; for
// nodes built with AddChild it is insertion order.
func (n *ApiNode) RelationshipTypes() []string {
	return n.relOrder
}

// AddChild appends a child under the given relationship type, recording the
// type's declaration order on first use.
func (n *ApiNode) AddChild(relType string, child *ApiNode) {
	if n.Relationships == nil {
		n.Relationships = make(map[string][]*ApiNode)
	}
	if _, seen := n.Relationships[relType]; !seen {
		n.relOrder = append(n.relOrder, relType)
	}
	n.Relationships[relType] = append(n.Relationships[relType], child)
}

// UnmarshalJSON decodes the node while preserving the order in which
// relationship types appear in the payload. encoding/json hands maps over in
// random order, so the relationships object is re-read token by token.
func (n *ApiNode) UnmarshalJSON(data []byte) error {
	var aux struct {
		InternalID    int64                  `json:"internal_id"`
		Labels        []string               `json:"labels"`
		Properties    map[string]interface{} `json:"properties"`
		Relationships json.RawMessage        `json:"relationships"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	n.InternalID = aux.InternalID
	n.Labels = aux.Labels
	n.Properties = aux.Properties
	n.Relationships = nil
	n.relOrder = nil

	if len(aux.Relationships) == 0 || bytes.Equal(aux.Relationships, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(aux.Relationships))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode relationships: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("relationships must be an object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode relationship type: %w", err)
		}
		relType, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("relationship type must be a string, got %v", keyTok)
		}

		var children []*ApiNode
		if err := dec.Decode(&children); err != nil {
			return fmt.Errorf("failed to decode children of %q: %w", relType, err)
		}

		// A relationship type with an empty array still counts as declared.
		if n.Relationships == nil {
			n.Relationships = make(map[string][]*ApiNode)
		}
		if _, seen := n.Relationships[relType]; !seen {
			n.relOrder = append(n.relOrder, relType)
			n.Relationships[relType] = nil
		}
		for _, child := range children {
			if child != nil {
				n.Relationships[relType] = append(n.Relationships[relType], child)
			}
		}
	}

	return nil
}

// MarshalJSON writes relationship types back in declaration order, so a
// response round-trips without reshuffling the traversal.
func (n *ApiNode) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"internal_id":`)
	buf.WriteString(strconv.FormatInt(n.InternalID, 10))

	buf.WriteString(`,"labels":`)
	labels, err := json.Marshal(n.Labels)
	if err != nil {
		return nil, err
	}
	buf.Write(labels)

	buf.WriteString(`,"properties":`)
	props, err := json.Marshal(n.Properties)
	if err != nil {
		return nil, err
	}
	buf.Write(props)

	if len(n.relOrder) > 0 {
		buf.WriteString(`,"relationships":{`)
		for i, relType := range n.relOrder {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(relType)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			children, err := json.Marshal(n.Relationships[relType])
			if err != nil {
				return nil, err
			}
			buf.Write(children)
		}
		buf.WriteByte('}')
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ApiResponse is the envelope of the subtree endpoint: the rooted tree plus
// the precomputed depth of every reachable node.
type ApiResponse struct {
	Root       *ApiNode       `json:"root"`
	NodeDepths map[string]int `json:"node_depths"`
	MaxDepth   int            `json:"max_depth"`
}
