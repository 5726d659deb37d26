package neoview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Kind tags used in normalized output.
const (
	KindTagNode         = "node"
	KindTagRelationship = "relationship"
	KindTagPath         = "path"
)

// NormalizedNode is the JSON-safe form of a node. ElementID is nil when the source
// node had no identifier.
type NormalizedNode struct {
	Kind       string                 `json:"kind"`
	Labels     []string               `json:"labels"`
	Properties map[string]interface{} `json:"properties"`
	ElementID  *string                `json:"elementId"`
}

// NormalizedRelationship is the JSON-safe form of a relationship.
type NormalizedRelationship struct {
	Kind           string                 `json:"kind"`
	Type           string                 `json:"type"`
	Properties     map[string]interface{} `json:"properties"`
	StartElementID *string                `json:"startElementId"`
	EndElementID   *string                `json:"endElementId"`
}

// NormalizedPath is the JSON-safe form of a path.
type NormalizedPath struct {
	Kind          string                   `json:"kind"`
	Nodes         []NormalizedNode         `json:"nodes"`
	Relationships []NormalizedRelationship `json:"relationships"`
}

// Normalize maps any record value to a JSON-safe structure that keeps its graph
// semantics. Nodes, relationships and paths become tagged structs, sequences and
// mappings are normalized element-wise, and scalars pass through. Nothing is
// deduplicated: the output mirrors the input shape, repeats included.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, json.Number, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return v
	case float64:
		return normalizeFloat(t)
	case float32:
		return normalizeFloat(float64(t))
	case NormalizedNode, NormalizedRelationship, NormalizedPath:
		return v
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case dbtype.Date:
		return time.Time(t).Format("2006-01-02")
	case dbtype.LocalTime:
		return time.Time(t).Format("15:04:05.999999999")
	case dbtype.LocalDateTime:
		return time.Time(t).Format("2006-01-02T15:04:05.999999999")
	case dbtype.Time:
		return time.Time(t).Format("15:04:05.999999999Z07:00")
	case dbtype.Duration:
		return durationString(t)
	case dbtype.Point2D:
		return map[string]interface{}{"srid": t.SpatialRefId, "x": normalizeFloat(t.X), "y": normalizeFloat(t.Y)}
	case dbtype.Point3D:
		return map[string]interface{}{"srid": t.SpatialRefId, "x": normalizeFloat(t.X), "y": normalizeFloat(t.Y), "z": normalizeFloat(t.Z)}
	}

	c := Classify(v)
	switch c.Kind {
	case KindNode:
		return normalizeNode(*c.Node)
	case KindRelationship:
		return normalizeRelationship(*c.Relationship)
	case KindPath:
		return normalizePath(*c.Path)
	}
	if c.Mapping != nil {
		return normalizeProperties(c.Mapping)
	}
	if c.Items != nil {
		out := make([]interface{}, len(c.Items))
		for i, item := range c.Items {
			out[i] = Normalize(item)
		}
		return out
	}
	return opaqueValue(v)
}

// NormalizeRecords normalizes every value, keeping record and field order.
func NormalizeRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		norm := Record{Keys: append([]string{}, rec.Keys...), Values: make([]interface{}, len(rec.Keys))}
		for j := range rec.Keys {
			if j < len(rec.Values) {
				norm.Values[j] = Normalize(rec.Values[j])
			}
		}
		out[i] = norm
	}
	return out
}

func normalizeNode(n NodeView) NormalizedNode {
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return NormalizedNode{
		Kind:       KindTagNode,
		Labels:     labels,
		Properties: normalizeProperties(n.Properties),
		ElementID:  optionalID(n.ElementID),
	}
}

func normalizeRelationship(r RelationshipView) NormalizedRelationship {
	return NormalizedRelationship{
		Kind:           KindTagRelationship,
		Type:           r.Type,
		Properties:     normalizeProperties(r.Properties),
		StartElementID: optionalID(r.Start.ElementID),
		EndElementID:   optionalID(r.End.ElementID),
	}
}

func normalizePath(p PathView) NormalizedPath {
	out := NormalizedPath{
		Kind:          KindTagPath,
		Nodes:         make([]NormalizedNode, 0, len(p.Nodes)),
		Relationships: make([]NormalizedRelationship, 0, len(p.Relationships)),
	}
	for _, n := range p.Nodes {
		out.Nodes = append(out.Nodes, normalizeNode(n))
	}
	for _, r := range p.Relationships {
		out.Relationships = append(out.Relationships, normalizeRelationship(r))
	}
	return out
}

// normalizeProperties never returns nil, so absent properties encode as {}.
func normalizeProperties(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = Normalize(v)
	}
	return out
}

// opaqueValue passes through unrecognised values that encoding/json accepts and
// renders the rest (funcs, channels, complex numbers, structs holding them) as text.
func opaqueValue(v interface{}) interface{} {
	if _, err := json.Marshal(v); err == nil {
		return v
	}
	return fmt.Sprint(v)
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// normalizeFloat keeps non-finite floats encodable; encoding/json rejects them.
func normalizeFloat(f float64) interface{} {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

// durationString renders a Cypher duration in ISO-8601 form, e.g. P1M2DT3.5S.
func durationString(d dbtype.Duration) string {
	seconds := strconv.FormatInt(d.Seconds, 10)
	if d.Nanos != 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", abs(d.Nanos)), "0")
		if d.Seconds == 0 && d.Nanos < 0 {
			seconds = "-0"
		}
		seconds += "." + frac
	}
	return fmt.Sprintf("P%dM%dDT%sS", d.Months, d.Days, seconds)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
