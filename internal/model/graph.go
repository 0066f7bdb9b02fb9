package model

// Node is the flat, renderable form of a subtree node. TraversalOrder is the
// index assigned during the deterministic walk and drives animation pacing.
type Node struct {
	ID             string                 `json:"id"`
	Label          string                 `json:"label"`
	Caption        string                 `json:"caption"`
	Color          string                 `json:"color"`
	Size           float64                `json:"size"`
	Opacity        float64                `json:"opacity"`
	X              *float64               `json:"x,omitempty"`
	Y              *float64               `json:"y,omitempty"`
	TraversalOrder int                    `json:"traversal_order"`
	Properties     map[string]interface{} `json:"properties,omitempty"`
}

// Relationship is the flat, renderable form of a subtree edge. Its
// TraversalOrder equals the order of the node at To, so an edge is revealed
// together with its target.
type Relationship struct {
	ID             string  `json:"id"`
	From           string  `json:"from"`
	To             string  `json:"to"`
	Caption        string  `json:"caption"`
	Color          string  `json:"color"`
	Width          float64 `json:"width"`
	Opacity        float64 `json:"opacity"`
	TraversalOrder int     `json:"traversal_order"`
}

// PathStep is one hop of a highlighted path, ordered from the clicked node up
// to the root. Used by detail panels to show the lineage of a selection.
type PathStep struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
