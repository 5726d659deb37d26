package neoview

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// CategoryFunc maps the properties of a node-like mapping to a display category.
// It is a heuristic over the key set, not a schema guarantee.
type CategoryFunc func(props map[string]interface{}) string

// CategoryRule assigns Category when any of Keys is present in a mapping.
type CategoryRule struct {
	Category string
	Keys     []string
}

// FallbackCategory is used when no rule matches.
const FallbackCategory = "item"

// DefaultCategoryRules are evaluated in order; the first match wins.
// New categories are appended here rather than folded into existing rules.
var DefaultCategoryRules = []CategoryRule{
	{Category: "recipe", Keys: []string{"IsFollowMe"}},
	{Category: "block", Keys: []string{"MineTool", "ToolLevel"}},
}

// CategoryByRules builds a CategoryFunc from an ordered rule list.
func CategoryByRules(rules []CategoryRule, fallback string) CategoryFunc {
	return func(props map[string]interface{}) string {
		for _, rule := range rules {
			for _, k := range rule.Keys {
				if _, ok := props[k]; ok {
					return rule.Category
				}
			}
		}
		return fallback
	}
}

// InferCategory applies DefaultCategoryRules.
func InferCategory(props map[string]interface{}) string {
	return CategoryByRules(DefaultCategoryRules, FallbackCategory)(props)
}

// firstPresent returns the first key holding a usable value. Nil, false, zero
// numbers and empty strings or collections do not count, so {"ID": 0, "Id": 5}
// resolves to 5 and {"ID": 0, "Name": "Torch"} to the name.
func firstPresent(m map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && !isBlank(v) {
			return v, true
		}
	}
	return nil, false
}

func isBlank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	}
	return false
}

// pseudoNodeKey derives the identity of a node-like mapping:
// "<category initial>:<id>", else its name, else a content hash.
func pseudoNodeKey(m map[string]interface{}, category string) string {
	if id, ok := firstPresent(m, "ID", "Id", "id"); ok {
		return categoryInitial(category) + ":" + scalarString(id)
	}
	if name, ok := firstPresent(m, "Name", "name"); ok {
		return scalarString(name)
	}
	return contentKey(m)
}

func categoryInitial(category string) string {
	for _, r := range category {
		return string(r)
	}
	return "n"
}

// contentKey hashes the canonical JSON of a value. Stable for equal content within
// one process, but not meant as a durable identifier.
func contentKey(v interface{}) string {
	data, err := json.Marshal(Normalize(v))
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	return "h:" + strconv.FormatUint(xxhash.Sum64(data), 16)
}

// scalarString renders identity and name values without float noise, so a JSON id
// of 1 and an integer id of 1 produce the same key.
func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if !math.IsInf(t, 0) && !math.IsNaN(t) {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	}
	return fmt.Sprint(v)
}
