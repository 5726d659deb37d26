package neoview

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecords_KeepsFieldOrder(t *testing.T) {
	in := `[
		{"zeta": {"ID": 1, "Name": "Iron"}, "alpha": "USES", "mid": [1, 2.5]},
		{}
	]`

	records, err := DecodeRecords(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, records[0].Keys)
	item, ok := records[0].Values[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), item["ID"])
	assert.Equal(t, []interface{}{json.Number("1"), json.Number("2.5")}, records[0].Values[2])
	assert.Empty(t, records[1].Keys)
}

func TestDecodeRecords_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "object", in: `{"a": 1}`, want: "records must be a JSON array"},
		{name: "empty", in: ``, want: "could not read records"},
		{name: "not an object", in: `[{"a": 1}, 3]`, want: "record 1"},
		{name: "truncated", in: `[{"a": `, want: "record 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeRecords_FeedsExtractor(t *testing.T) {
	in := `[{"chain": [{"ID": 1, "Name": "Iron"}, "USES", {"ID": 2, "Name": "Stick"}]}]`

	records, err := DecodeRecords(strings.NewReader(in))
	require.NoError(t, err)

	nodes, links := Extract(records)
	assert.Equal(t, []string{"i:1", "i:2"}, nodeIDs(nodes))
	require.Len(t, links, 1)
	assert.Equal(t, "USES", links[0].Category)
}

func TestRecord_MarshalJSONKeepsOrder(t *testing.T) {
	r := NewRecord([]string{"z", "a", "m"}, []interface{}{1, "x"})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":null}`, string(data))

	_, err = json.Marshal(rec("bad", func() {}))
	assert.Error(t, err)
}

func TestRecord_Accessors(t *testing.T) {
	r := RecordFromMap(map[string]interface{}{"b": 2, "a": 1, "c": nil})
	assert.Equal(t, []string{"a", "b", "c"}, r.Keys)

	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = r.Get("c")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2, "c": nil}, r.Map())
}

func TestRecordsFromNeo4j(t *testing.T) {
	in := []*neo4j.Record{
		{Keys: []string{"n", "r"}, Values: []interface{}{"x"}},
		nil,
	}

	got := RecordsFromNeo4j(in)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"n", "r"}, got[0].Keys)
	assert.Equal(t, []interface{}{"x", nil}, got[0].Values)
	assert.Empty(t, got[1].Keys)
}
