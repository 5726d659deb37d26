// Package neoview turns heterogeneous Neo4j query records into display-ready
// projections: a deduplicated node/link graph, a JSON-safe normalized mirror of the
// records and a flat table.
//
// The projections are pure functions over one record batch. Values are recognised by
// shape: driver entity types when present, small structural interfaces for any other
// entity representation, and plain maps that merely look like nodes.
package neoview

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Kind is the closed set of shapes the classifier distinguishes.
type Kind int

const (
	// KindOpaque is a scalar, or a collection that is not a graph entity.
	KindOpaque Kind = iota
	KindNode
	KindRelationship
	KindPath
	// KindNodeLike is a plain mapping carrying an identity or name key.
	KindNodeLike
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindRelationship:
		return "relationship"
	case KindPath:
		return "path"
	case KindNodeLike:
		return "node-like"
	default:
		return "opaque"
	}
}

// nodeLikeKeys are checked independently; any one of them makes a mapping node-like.
var nodeLikeKeys = []string{"ID", "Id", "id", "Name", "name"}

// LabeledEntity is implemented by node representations other than the driver's:
// a label set plus a property mapping.
type LabeledEntity interface {
	GetLabels() []string
	GetProperties() map[string]interface{}
}

// ConnectingEntity is implemented by relationship representations other than the
// driver's. GetStartNode and GetEndNode return either a node value or its element id.
type ConnectingEntity interface {
	GetType() string
	GetStartNode() interface{}
	GetEndNode() interface{}
}

// WalkEntity is implemented by path representations other than the driver's.
type WalkEntity interface {
	GetNodes() []interface{}
	GetRelationships() []interface{}
}

type elementIdentified interface {
	GetElementId() string
}

type legacyIdentified interface {
	GetId() int64
}

type propertied interface {
	GetProperties() map[string]interface{}
}

// NodeView is the classifier's uniform view of a node, whatever its source type.
// ElementID is empty when the source exposes no stable identifier.
type NodeView struct {
	ElementID  string
	Labels     []string
	Properties map[string]interface{}
}

// RelationshipView is the uniform view of a relationship. Driver relationships only
// reference their endpoints by id, so Start and End may carry nothing but ElementID.
type RelationshipView struct {
	ElementID  string
	Type       string
	Start      NodeView
	End        NodeView
	Properties map[string]interface{}
}

// PathView is the uniform view of a path.
type PathView struct {
	Nodes         []NodeView
	Relationships []RelationshipView
}

// Classification is the tagged result of Classify. Exactly one payload matches Kind:
// Node, Relationship, Path, or Mapping for KindNodeLike. Opaque values may still carry
// Mapping (a non-node map) or Items (a sequence) so callers can recurse structurally.
type Classification struct {
	Kind         Kind
	Node         *NodeView
	Relationship *RelationshipView
	Path         *PathView
	Mapping      map[string]interface{}
	Items        []interface{}
}

// IsSequence reports whether the value was a list, slice or array.
func (c Classification) IsSequence() bool {
	return c.Kind == KindOpaque && c.Items != nil
}

// Classify decides what a record value represents. It never panics: anything it does
// not recognise is KindOpaque.
func Classify(v interface{}) Classification {
	switch t := v.(type) {
	case nil:
		return Classification{Kind: KindOpaque}
	case dbtype.Node:
		n := nodeFromDriver(t)
		return Classification{Kind: KindNode, Node: &n}
	case *dbtype.Node:
		if t == nil {
			return Classification{Kind: KindOpaque}
		}
		n := nodeFromDriver(*t)
		return Classification{Kind: KindNode, Node: &n}
	case dbtype.Relationship:
		r := relationshipFromDriver(t)
		return Classification{Kind: KindRelationship, Relationship: &r}
	case *dbtype.Relationship:
		if t == nil {
			return Classification{Kind: KindOpaque}
		}
		r := relationshipFromDriver(*t)
		return Classification{Kind: KindRelationship, Relationship: &r}
	case dbtype.Path:
		p := pathFromDriver(t)
		return Classification{Kind: KindPath, Path: &p}
	case *dbtype.Path:
		if t == nil {
			return Classification{Kind: KindOpaque}
		}
		p := pathFromDriver(*t)
		return Classification{Kind: KindPath, Path: &p}
	case WalkEntity:
		p := pathFromWalk(t)
		return Classification{Kind: KindPath, Path: &p}
	case ConnectingEntity:
		r := relationshipFromConnecting(t)
		return Classification{Kind: KindRelationship, Relationship: &r}
	case LabeledEntity:
		n := nodeFromLabeled(t)
		return Classification{Kind: KindNode, Node: &n}
	case map[string]interface{}:
		return classifyMapping(t)
	case []interface{}:
		if t == nil {
			return Classification{Kind: KindOpaque}
		}
		return Classification{Kind: KindOpaque, Items: t}
	case string, bool, []byte:
		return Classification{Kind: KindOpaque}
	}
	return classifyReflect(v)
}

// IsNodeLike reports whether a plain mapping should be treated as a node. The rule is
// intentionally permissive: one identity or name key is enough.
func IsNodeLike(m map[string]interface{}) bool {
	if m == nil {
		return false
	}
	for _, k := range nodeLikeKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func classifyMapping(m map[string]interface{}) Classification {
	if IsNodeLike(m) {
		return Classification{Kind: KindNodeLike, Mapping: m}
	}
	return Classification{Kind: KindOpaque, Mapping: m}
}

// classifyReflect handles container kinds the type switch cannot name, such as
// map[string]string, []string or pointers to maps.
func classifyReflect(v interface{}) Classification {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Classification{Kind: KindOpaque}
		}
		return Classify(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return Classification{Kind: KindOpaque}
		}
		return classifyMapping(mapFromReflect(rv))
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Classification{Kind: KindOpaque}
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Classification{Kind: KindOpaque}
		}
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return Classification{Kind: KindOpaque, Items: items}
	}
	return Classification{Kind: KindOpaque}
}

func mapFromReflect(rv reflect.Value) map[string]interface{} {
	m := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[mapKeyString(iter.Key())] = iter.Value().Interface()
	}
	return m
}

func mapKeyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

// entityID prefers the element id and falls back to the legacy numeric id.
func entityID(elementID string, legacyID int64) string {
	if elementID != "" {
		return elementID
	}
	return strconv.FormatInt(legacyID, 10)
}

func nodeFromDriver(n dbtype.Node) NodeView {
	return NodeView{
		ElementID:  entityID(n.ElementId, n.Id),
		Labels:     n.Labels,
		Properties: n.Props,
	}
}

func relationshipFromDriver(r dbtype.Relationship) RelationshipView {
	return RelationshipView{
		ElementID:  entityID(r.ElementId, r.Id),
		Type:       r.Type,
		Start:      NodeView{ElementID: entityID(r.StartElementId, r.StartId)},
		End:        NodeView{ElementID: entityID(r.EndElementId, r.EndId)},
		Properties: r.Props,
	}
}

func pathFromDriver(p dbtype.Path) PathView {
	view := PathView{
		Nodes:         make([]NodeView, 0, len(p.Nodes)),
		Relationships: make([]RelationshipView, 0, len(p.Relationships)),
	}
	for _, n := range p.Nodes {
		view.Nodes = append(view.Nodes, nodeFromDriver(n))
	}
	for _, r := range p.Relationships {
		view.Relationships = append(view.Relationships, relationshipFromDriver(r))
	}
	return view
}

func nodeFromLabeled(n LabeledEntity) NodeView {
	return NodeView{
		ElementID:  identifierOf(n),
		Labels:     n.GetLabels(),
		Properties: n.GetProperties(),
	}
}

func relationshipFromConnecting(r ConnectingEntity) RelationshipView {
	view := RelationshipView{
		ElementID: identifierOf(r),
		Type:      r.GetType(),
		Start:     endpointOf(r.GetStartNode()),
		End:       endpointOf(r.GetEndNode()),
	}
	if p, ok := r.(propertied); ok {
		view.Properties = p.GetProperties()
	}
	return view
}

func pathFromWalk(w WalkEntity) PathView {
	var view PathView
	for _, n := range w.GetNodes() {
		if c := Classify(n); c.Kind == KindNode {
			view.Nodes = append(view.Nodes, *c.Node)
		}
	}
	for _, r := range w.GetRelationships() {
		if c := Classify(r); c.Kind == KindRelationship {
			view.Relationships = append(view.Relationships, *c.Relationship)
		}
	}
	return view
}

// endpointOf resolves a relationship endpoint given either as a node or as an id.
func endpointOf(v interface{}) NodeView {
	switch t := v.(type) {
	case string:
		return NodeView{ElementID: t}
	case int64:
		return NodeView{ElementID: strconv.FormatInt(t, 10)}
	case int:
		return NodeView{ElementID: strconv.Itoa(t)}
	}
	if c := Classify(v); c.Kind == KindNode {
		return *c.Node
	}
	return NodeView{}
}

func identifierOf(v interface{}) string {
	if e, ok := v.(elementIdentified); ok {
		if id := e.GetElementId(); id != "" {
			return id
		}
	}
	if l, ok := v.(legacyIdentified); ok {
		return strconv.FormatInt(l.GetId(), 10)
	}
	return ""
}
