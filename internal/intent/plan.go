package intent

// Request is one natural-language question against the capability model.
type Request struct {
	Query    string `json:"query" binding:"required"`
	Role     string `json:"role"`
	Vertical string `json:"vertical"`
}

// QueryPlan records how a request was interpreted before any graph access.
type QueryPlan struct {
	PrimaryAnchors []string `json:"primary_anchors"`
	Intent         string   `json:"intent"`
	PersonaTone    string   `json:"persona_tone"`
	DepthScope     int      `json:"depth_scope"`
	IsComparison   bool     `json:"is_comparison"`
}

// ContextNode is one entity serialized into the retrieved graph context.
type ContextNode struct {
	UID         interface{} `json:"uid"`
	Name        string      `json:"name"`
	Labels      []string    `json:"labels"`
	Description string      `json:"description,omitempty"`
}

// ContextRel is one relationship between two named entities.
type ContextRel struct {
	Type string `json:"type"`
	From string `json:"from_node"`
	To   string `json:"to_node"`
}

// GraphData is the expansion retrieved around one anchor.
type GraphData struct {
	Anchor        string        `json:"anchor"`
	Found         bool          `json:"found"`
	Root          *ContextNode  `json:"root,omitempty"`
	Nodes         []ContextNode `json:"nodes"`
	Relationships []ContextRel  `json:"relationships"`
}

// Response is the full result of an intent query.
type Response struct {
	Status        string      `json:"status"`
	Message       string      `json:"message,omitempty"`
	Suggestions   []string    `json:"suggestions,omitempty"`
	CatalogSample []string    `json:"catalog_sample,omitempty"`
	QueryPlan     *QueryPlan  `json:"query_plan,omitempty"`
	GraphData     []GraphData `json:"graph_data,omitempty"`
	GraphContext  string      `json:"graph_context,omitempty"`
	Prompt        string      `json:"prompt,omitempty"`
	Answer        string      `json:"answer,omitempty"`
}
