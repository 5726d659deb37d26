package neoview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record is one row of a query result: an ordered mapping from result-column name
// to an arbitrary value. The order of Keys is the walk order used by the extractor,
// which is what makes first-seen attributes deterministic.
type Record struct {
	Keys   []string
	Values []interface{}
}

// NewRecord pairs keys with values. Extra keys get a nil value and extra values are dropped.
func NewRecord(keys []string, values []interface{}) Record {
	rec := Record{Keys: append([]string(nil), keys...), Values: make([]interface{}, len(keys))}
	copy(rec.Values, values)
	return rec
}

// RecordFromMap builds a Record from a plain map. Go maps carry no order, so keys are sorted.
func RecordFromMap(m map[string]interface{}) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := Record{Keys: keys, Values: make([]interface{}, len(keys))}
	for i, k := range keys {
		rec.Values[i] = m[k]
	}
	return rec
}

// RecordsFromNeo4j converts driver records, keeping the driver's column order.
func RecordsFromNeo4j(records []*neo4j.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			out = append(out, Record{})
			continue
		}
		out = append(out, NewRecord(r.Keys, r.Values))
	}
	return out
}

// Get returns the value stored under key and whether the key is present.
func (r Record) Get(key string) (interface{}, bool) {
	for i, k := range r.Keys {
		if k == key {
			if i < len(r.Values) {
				return r.Values[i], true
			}
			return nil, true
		}
	}
	return nil, false
}

// Map flattens the record into a plain map, losing key order.
func (r Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.Keys))
	for i, k := range r.Keys {
		if i < len(r.Values) {
			m[k] = r.Values[i]
		} else {
			m[k] = nil
		}
	}
	return m
}

// MarshalJSON encodes the record as a JSON object whose keys follow the record order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var v interface{}
		if i < len(r.Values) {
			v = r.Values[i]
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("could not encode field %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeRecords reads a JSON array of objects into Records. Top-level field order is
// preserved and numbers are kept as json.Number so integer ids survive unchanged.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("could not read records: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("records must be a JSON array, got %v", tok)
	}

	records := make([]Record, 0)
	for dec.More() {
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("could not read records: %w", err)
	}
	return records, nil
}

func decodeRecord(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return Record{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Record{}, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	rec := Record{Keys: []string{}, Values: []interface{}{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Record{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Record{}, fmt.Errorf("expected an object key, got %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return Record{}, fmt.Errorf("field %q: %w", key, err)
		}
		rec.Keys = append(rec.Keys, key)
		rec.Values = append(rec.Values, value)
	}
	if _, err := dec.Token(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
