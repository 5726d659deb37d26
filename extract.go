package neoview

import (
	"sort"

	"github.com/saulfrancisco-ruizacevedo/go-neoview/models"
)

// DefaultSymbolSize is the display size given to every node.
const DefaultSymbolSize = 30

// DefaultNodeCategory is used for typed nodes without labels.
const DefaultNodeCategory = "Node"

// Options tune graph extraction.
type Options struct {
	// SymbolSize is copied onto every GraphNode.
	SymbolSize float64

	// DefaultCategory is the category of a typed node that has no label.
	DefaultCategory string

	// InferCategory categorises node-like mappings. Nil means InferCategory.
	InferCategory CategoryFunc
}

// DefaultOptions returns the options used by Extract and BuildGraph.
func DefaultOptions() Options {
	return Options{
		SymbolSize:      DefaultSymbolSize,
		DefaultCategory: DefaultNodeCategory,
		InferCategory:   InferCategory,
	}
}

// Extractor builds graphs from record batches. It holds configuration only, so one
// Extractor may serve concurrent calls; all identity tracking lives in a per-call
// extraction context.
type Extractor struct {
	opts Options
}

// NewExtractor creates an Extractor, filling unset options with defaults.
func NewExtractor(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.SymbolSize <= 0 {
		opts.SymbolSize = def.SymbolSize
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = def.DefaultCategory
	}
	if opts.InferCategory == nil {
		opts.InferCategory = def.InferCategory
	}
	return &Extractor{opts: opts}
}

// Extract walks every value of every record and returns the deduplicated nodes and
// links in first-seen order. Walk order is record order, then field order, then
// element order. On duplicate ids the first occurrence's attributes win and later
// data for the same id is dropped.
func Extract(records []Record) ([]models.GraphNode, []models.GraphLink) {
	return NewExtractor(DefaultOptions()).Extract(records)
}

// BuildGraph extracts a graph and adds sorted categories and summary counts.
func BuildGraph(records []Record) models.GraphPayload {
	return NewExtractor(DefaultOptions()).BuildGraph(records)
}

// Extract is the method form of the package-level Extract.
func (e *Extractor) Extract(records []Record) ([]models.GraphNode, []models.GraphLink) {
	x := newExtraction(e.opts)
	for _, rec := range records {
		for _, v := range rec.Values {
			x.visit(v)
		}
	}
	return x.nodes, x.links
}

// BuildGraph is the method form of the package-level BuildGraph.
func (e *Extractor) BuildGraph(records []Record) models.GraphPayload {
	nodes, links := e.Extract(records)
	return models.GraphPayload{
		Nodes:      nodes,
		Links:      links,
		Categories: Categories(nodes),
		Meta:       models.GraphMeta{NodeCount: len(nodes), LinkCount: len(links)},
	}
}

// Categories returns the sorted distinct categories of nodes.
func Categories(nodes []models.GraphNode) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, n := range nodes {
		if !seen[n.Category] {
			seen[n.Category] = true
			out = append(out, n.Category)
		}
	}
	sort.Strings(out)
	return out
}

// extraction is the state of a single pass: seen sets plus output accumulators.
type extraction struct {
	opts      Options
	nodes     []models.GraphNode
	links     []models.GraphLink
	seenNodes map[string]bool
	seenLinks map[linkKey]bool

	// placeholders maps the id of an endpoint known only by id to its index in nodes.
	// The first full node with that id replaces the placeholder.
	placeholders map[string]int
}

type linkKey struct {
	source, target, category string
}

func newExtraction(opts Options) *extraction {
	return &extraction{
		opts:         opts,
		nodes:        make([]models.GraphNode, 0),
		links:        make([]models.GraphLink, 0),
		seenNodes:    make(map[string]bool),
		seenLinks:    make(map[linkKey]bool),
		placeholders: make(map[string]int),
	}
}

func (x *extraction) visit(v interface{}) {
	x.visitClassified(Classify(v))
}

func (x *extraction) visitClassified(c Classification) {
	switch c.Kind {
	case KindNode:
		x.addNode(*c.Node)
	case KindRelationship:
		x.addRelationship(*c.Relationship)
	case KindPath:
		for _, n := range c.Path.Nodes {
			x.addNode(n)
		}
		for _, r := range c.Path.Relationships {
			x.addRelationship(r)
		}
	case KindNodeLike:
		x.addMapping(c.Mapping)
	default:
		if c.IsSequence() {
			x.visitSequence(c.Items)
		}
		// Scalars and non-node mappings contribute nothing.
	}
}

// visitSequence handles lists. A list of three or more items starting with a node-like
// mapping is read as a flattened path: [node, "REL", node, "REL", node, ...].
// The trigger also fires on plain lists of node-like mappings; those simply produce
// nodes without links.
func (x *extraction) visitSequence(items []interface{}) {
	if len(items) < 3 || Classify(items[0]).Kind != KindNodeLike {
		for _, item := range items {
			x.visit(item)
		}
		return
	}

	last := ""
	for i := 0; i < len(items); {
		c := Classify(items[i])
		if c.Kind == KindNodeLike {
			last = x.addMapping(c.Mapping)
			i++
			continue
		}
		if relType, ok := items[i].(string); ok && last != "" && i+1 < len(items) {
			if next := Classify(items[i+1]); next.Kind == KindNodeLike {
				target := x.addMapping(next.Mapping)
				x.addLink(last, target, relType, nil)
				last = target
				i += 2
				continue
			}
		}
		x.visitClassified(c)
		i++
	}
}

// addNode upserts a typed node and returns its id. A node already present as an
// id-only endpoint placeholder is replaced; otherwise the first occurrence wins.
func (x *extraction) addNode(n NodeView) string {
	id := x.nodeIdentity(n)
	if x.seenNodes[id] {
		if idx, ok := x.placeholders[id]; ok {
			x.nodes[idx] = x.graphNode(id, n)
			delete(x.placeholders, id)
		}
		return id
	}
	x.appendNode(x.graphNode(id, n))
	return id
}

// addEndpoint upserts a relationship endpoint. Driver relationships reference their
// endpoints by id only, so such an endpoint is kept as a placeholder until the full
// node shows up.
func (x *extraction) addEndpoint(n NodeView) string {
	if len(n.Labels) > 0 || len(n.Properties) > 0 {
		return x.addNode(n)
	}
	id := n.ElementID
	if !x.seenNodes[id] {
		x.placeholders[id] = len(x.nodes)
		x.appendNode(x.graphNode(id, n))
	}
	return id
}

func (x *extraction) graphNode(id string, n NodeView) models.GraphNode {
	category := x.opts.DefaultCategory
	if len(n.Labels) > 0 {
		category = n.Labels[0]
	}
	name := id
	if v, ok := firstPresent(n.Properties, "name", "Name"); ok {
		name = scalarString(v)
	}
	return models.GraphNode{
		ID:         id,
		Name:       name,
		Category:   category,
		SymbolSize: x.opts.SymbolSize,
		Properties: normalizeProperties(n.Properties),
	}
}

// nodeIdentity falls back from the stable identifier to the name, then to a hash of
// the node's content.
func (x *extraction) nodeIdentity(n NodeView) string {
	if n.ElementID != "" {
		return n.ElementID
	}
	if v, ok := firstPresent(n.Properties, "name", "Name"); ok {
		return scalarString(v)
	}
	return contentKey(map[string]interface{}{"labels": n.Labels, "properties": n.Properties})
}

// addRelationship materialises both endpoints, then the link.
func (x *extraction) addRelationship(r RelationshipView) {
	if r.Start.ElementID == "" || r.End.ElementID == "" {
		return
	}
	source := x.addEndpoint(r.Start)
	target := x.addEndpoint(r.End)
	x.addLink(source, target, r.Type, r.Properties)
}

// addMapping upserts a pseudo-node from a node-like mapping and returns its id.
func (x *extraction) addMapping(m map[string]interface{}) string {
	category := x.opts.InferCategory(m)
	id := pseudoNodeKey(m, category)
	if x.seenNodes[id] {
		return id
	}

	name := id
	if v, ok := firstPresent(m, "name", "Name"); ok {
		name = scalarString(v)
	}

	x.appendNode(models.GraphNode{
		ID:         id,
		Name:       name,
		Category:   category,
		SymbolSize: x.opts.SymbolSize,
		Properties: normalizeProperties(m),
	})
	return id
}

func (x *extraction) appendNode(n models.GraphNode) {
	x.nodes = append(x.nodes, n)
	x.seenNodes[n.ID] = true
}

func (x *extraction) addLink(source, target, relType string, props map[string]interface{}) {
	key := linkKey{source: source, target: target, category: relType}
	if x.seenLinks[key] {
		return
	}
	x.links = append(x.links, models.GraphLink{
		Source:     source,
		Target:     target,
		Category:   relType,
		Label:      relType,
		Properties: normalizeProperties(props),
	})
	x.seenLinks[key] = true
}
