// Package models contains the data transfer objects produced by the neoview projections.
// The structs in this file describe a force-graph style graph, a flat table and a
// database schema listing, and are designed to be serialized to JSON for
// frontend clients or other services.
package models

// GraphNode represents one deduplicated node of a visualization graph.
// It can come from a typed Neo4j node or from a plain map that looks like a node
// (a pseudo-node). Its ID is only unique within one extraction pass.
type GraphNode struct {
	// ID is the identity of the node: the ElementId of a typed node, or a composite
	// "<category initial>:<key>" for pseudo-nodes.
	ID string `json:"id"`

	// Name is the display name, taken from a name property or falling back to the ID.
	Name string `json:"name"`

	// Category is the legend group of the node (first label, or an inferred category).
	Category string `json:"category"`

	// SymbolSize is a display hint for graph renderers.
	SymbolSize float64 `json:"symbolSize"`

	// Properties is the JSON-safe property map of the node.
	Properties map[string]interface{} `json:"properties"`
}

// GraphLink represents a directed, typed connection between two GraphNodes.
// Its identity is the (Source, Target, Category) triple.
type GraphLink struct {
	// Source is the ID of the node where the link starts.
	Source string `json:"source"`

	// Target is the ID of the node where the link ends.
	Target string `json:"target"`

	// Category is the relationship type (e.g., "USES", "DROPS").
	Category string `json:"category"`

	// Label mirrors Category and is shown on the edge.
	Label string `json:"label"`

	// Properties is the JSON-safe property map of the relationship.
	Properties map[string]interface{} `json:"properties"`
}

// GraphMeta carries summary counts of a GraphPayload.
type GraphMeta struct {
	NodeCount int `json:"nodeCount"`
	LinkCount int `json:"linkCount"`
}

// GraphPayload is the top-level graph projection of a record batch, in the shape
// expected by force-graph renderers (e.g., ECharts graph series).
type GraphPayload struct {
	// Nodes contains the unique nodes in first-seen order.
	Nodes []GraphNode `json:"nodes"`

	// Links contains the unique links in first-seen order.
	Links []GraphLink `json:"links"`

	// Categories holds the sorted distinct node categories, for legends.
	Categories []string `json:"categories"`

	Meta GraphMeta `json:"meta"`
}

// TableView is the tabular projection of a record batch. Every row has exactly
// len(Columns) cells, positionally aligned to Columns.
type TableView struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Schema lists the node labels and relationship types known to a database.
type Schema struct {
	Labels   []string `json:"labels"`
	RelTypes []string `json:"relTypes"`
}
