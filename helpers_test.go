package neoview

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// fakeNode is a node representation that is not the driver's.
type fakeNode struct {
	id     string
	labels []string
	props  map[string]interface{}
}

func (n fakeNode) GetElementId() string                  { return n.id }
func (n fakeNode) GetLabels() []string                   { return n.labels }
func (n fakeNode) GetProperties() map[string]interface{} { return n.props }

// fakeRel carries whole endpoint nodes rather than ids.
type fakeRel struct {
	typ        string
	start, end interface{}
	props      map[string]interface{}
}

func (r fakeRel) GetType() string                       { return r.typ }
func (r fakeRel) GetStartNode() interface{}             { return r.start }
func (r fakeRel) GetEndNode() interface{}               { return r.end }
func (r fakeRel) GetProperties() map[string]interface{} { return r.props }

type fakePath struct {
	nodes, rels []interface{}
}

func (p fakePath) GetNodes() []interface{}         { return p.nodes }
func (p fakePath) GetRelationships() []interface{} { return p.rels }

func driverNode(id string, labels []string, props map[string]interface{}) dbtype.Node {
	return dbtype.Node{ElementId: id, Labels: labels, Props: props}
}

func driverRel(id, typ, start, end string, props map[string]interface{}) dbtype.Relationship {
	return dbtype.Relationship{ElementId: id, Type: typ, StartElementId: start, EndElementId: end, Props: props}
}

func rec(pairs ...interface{}) Record {
	r := Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Keys = append(r.Keys, pairs[i].(string))
		r.Values = append(r.Values, pairs[i+1])
	}
	return r
}

func item(id int, name string) map[string]interface{} {
	return map[string]interface{}{"ID": id, "Name": name}
}

// fakeRunner is a DBRunner that answers from canned results.
type fakeRunner struct {
	results  map[string]*neo4j.EagerResult
	fallback *neo4j.EagerResult
	err      error

	queries []string
	params  []map[string]interface{}
}

func (f *fakeRunner) Run(_ context.Context, query string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	if f.fallback != nil {
		return f.fallback, nil
	}
	return &neo4j.EagerResult{}, nil
}

func eagerResult(keys []string, rows ...[]interface{}) *neo4j.EagerResult {
	records := make([]*neo4j.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, &neo4j.Record{Keys: keys, Values: row})
	}
	return &neo4j.EagerResult{Keys: keys, Records: records}
}
