package neoview

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Node(t *testing.T) {
	n := driverNode("4:db:1", []string{"item", "block"}, map[string]interface{}{"Name": "Ore", "ToolLevel": int64(2)})

	got, ok := Normalize(n).(NormalizedNode)
	require.True(t, ok)
	assert.Equal(t, KindTagNode, got.Kind)
	assert.Equal(t, []string{"item", "block"}, got.Labels)
	assert.Equal(t, map[string]interface{}{"Name": "Ore", "ToolLevel": int64(2)}, got.Properties)
	require.NotNil(t, got.ElementID)
	assert.Equal(t, "4:db:1", *got.ElementID)
}

func TestNormalize_RelationshipEndpointsMatchNodes(t *testing.T) {
	start := driverNode("4:db:1", []string{"recipe"}, nil)
	end := driverNode("4:db:2", []string{"item"}, nil)
	r := driverRel("5:db:9", "CONSUMES", "4:db:1", "4:db:2", map[string]interface{}{"count": int64(3)})

	got, ok := Normalize(r).(NormalizedRelationship)
	require.True(t, ok)
	assert.Equal(t, KindTagRelationship, got.Kind)
	assert.Equal(t, "CONSUMES", got.Type)
	assert.Equal(t, map[string]interface{}{"count": int64(3)}, got.Properties)

	ns := Normalize(start).(NormalizedNode)
	ne := Normalize(end).(NormalizedNode)
	assert.Equal(t, ns.ElementID, got.StartElementID)
	assert.Equal(t, ne.ElementID, got.EndElementID)
}

func TestNormalize_Path(t *testing.T) {
	p := dbtype.Path{
		Nodes:         []dbtype.Node{driverNode("4:db:1", nil, nil), driverNode("4:db:2", nil, nil)},
		Relationships: []dbtype.Relationship{driverRel("5:db:1", "USES", "4:db:1", "4:db:2", nil)},
	}

	got, ok := Normalize(&p).(NormalizedPath)
	require.True(t, ok)
	assert.Equal(t, KindTagPath, got.Kind)
	require.Len(t, got.Nodes, 2)
	require.Len(t, got.Relationships, 1)
	assert.Equal(t, "4:db:2", *got.Relationships[0].EndElementID)
}

func TestNormalize_MissingAttributes(t *testing.T) {
	got, ok := Normalize(fakeNode{}).(NormalizedNode)
	require.True(t, ok)
	assert.Nil(t, got.ElementID)
	assert.Equal(t, []string{}, got.Labels)
	assert.Equal(t, map[string]interface{}{}, got.Properties)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"node","labels":[],"properties":{},"elementId":null}`, string(data))

	rel, ok := Normalize(fakeRel{typ: "USES"}).(NormalizedRelationship)
	require.True(t, ok)
	assert.Nil(t, rel.StartElementID)
	assert.Nil(t, rel.EndElementID)
}

func TestNormalize_MirrorsStructureWithoutDedup(t *testing.T) {
	n := driverNode("4:db:1", []string{"item"}, nil)
	in := []interface{}{
		n, n,
		map[string]interface{}{"inner": []interface{}{1, "x", nil}, "node": n},
		[]string{"a", "b"},
		map[string]string{"k": "v"},
	}

	got, ok := Normalize(in).([]interface{})
	require.True(t, ok)
	require.Len(t, got, 5)
	assert.IsType(t, NormalizedNode{}, got[0])
	assert.Equal(t, got[0], got[1], "repeats are kept")

	m, ok := got[2].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{1, "x", nil}, m["inner"])
	assert.IsType(t, NormalizedNode{}, m["node"])
	assert.Equal(t, []interface{}{"a", "b"}, got[3])
	assert.Equal(t, map[string]interface{}{"k": "v"}, got[4])
}

func TestNormalize_Scalars(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Equal(t, "USES", Normalize("USES"))
	assert.Equal(t, int64(3), Normalize(int64(3)))
	assert.Equal(t, true, Normalize(true))
	assert.Equal(t, json.Number("12"), Normalize(json.Number("12")))
	assert.Equal(t, "NaN", Normalize(math.NaN()))
	assert.Equal(t, "+Inf", Normalize(math.Inf(1)))
	assert.Equal(t, "-Inf", Normalize(float32(math.Inf(-1))))
	assert.Equal(t, 1.5, Normalize(1.5))
}

func TestNormalize_TemporalAndSpatial(t *testing.T) {
	day := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "2024-01-02", Normalize(dbtype.Date(day)))
	assert.Equal(t, "2024-01-02T15:04:05", Normalize(dbtype.LocalDateTime(day)))
	assert.Equal(t, "15:04:05", Normalize(dbtype.LocalTime(day)))
	assert.Equal(t, "15:04:05Z", Normalize(dbtype.Time(day)))
	assert.Equal(t, "2024-01-02T15:04:05Z", Normalize(day))
	assert.Equal(t, "P1M2DT3.5S", Normalize(dbtype.Duration{Months: 1, Days: 2, Seconds: 3, Nanos: 500000000}))
	assert.Equal(t, "P0M0DT60S", Normalize(dbtype.Duration{Seconds: 60}))
	assert.Equal(t,
		map[string]interface{}{"srid": uint32(7203), "x": 1.0, "y": 2.0},
		Normalize(dbtype.Point2D{X: 1, Y: 2, SpatialRefId: 7203}))
	assert.Equal(t,
		map[string]interface{}{"srid": uint32(9157), "x": 1.0, "y": 2.0, "z": 3.0},
		Normalize(dbtype.Point3D{X: 1, Y: 2, Z: 3, SpatialRefId: 9157}))
}

func TestNormalize_OutputIsJSONSafe(t *testing.T) {
	in := map[string]interface{}{
		"when":  dbtype.Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		"ratio": math.Inf(1),
		"keys":  map[int]string{1: "one"},
		"node":  driverNode("4:db:1", []string{"item"}, map[string]interface{}{"score": math.NaN()}),
	}

	_, err := json.Marshal(Normalize(in))
	assert.NoError(t, err)
}

func TestNormalize_UnencodableValuesBecomeText(t *testing.T) {
	type hidden struct{ fn func() }
	type exported struct{ Count int }

	ch := make(chan int)
	assert.IsType(t, "", Normalize(func() {}))
	assert.IsType(t, "", Normalize(ch))
	assert.Equal(t, "(1+2i)", Normalize(complex(1, 2)))
	assert.Equal(t, exported{Count: 2}, Normalize(exported{Count: 2}), "encodable structs pass through")
	assert.Equal(t, hidden{}, Normalize(hidden{}), "unexported fields encode as {}")

	records := NormalizeRecords([]Record{rec("f", func() {}, "c", ch, "z", complex64(3))})
	_, err := json.Marshal(records)
	assert.NoError(t, err)
}

func TestNormalizeRecords_KeepsOrder(t *testing.T) {
	records := []Record{
		rec("z", driverNode("4:db:1", nil, nil), "a", 1),
		rec("m", []interface{}{"x"}),
	}

	got := NormalizeRecords(records)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"z", "a"}, got[0].Keys)
	assert.IsType(t, NormalizedNode{}, got[0].Values[0])
	assert.Equal(t, 1, got[0].Values[1])
	assert.Equal(t, []interface{}{"x"}, got[1].Values[0])

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"z":{"kind":"node","labels":[],"properties":{},"elementId":"4:db:1"},"a":1},{"m":["x"]}]`,
		string(data))
}

func TestNormalize_DeepNestingDoesNotFail(t *testing.T) {
	var v interface{} = "leaf"
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			v = []interface{}{v, i}
		} else {
			v = map[string]interface{}{"level": v}
		}
	}

	got := Normalize(v)
	require.NotNil(t, got)
	_, err := json.Marshal(got)
	assert.NoError(t, err)

	nodes, links := Extract([]Record{rec("deep", v)})
	assert.Empty(t, nodes)
	assert.Empty(t, links)
}
