package neoview

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saulfrancisco-ruizacevedo/go-neoview/models"
)

// PathPlaceholder is the table cell shown for a path.
const PathPlaceholder = "<path>"

// BuildTable projects records onto the given columns. Rows follow record order and
// cells follow column order; a key missing from a record yields a nil cell.
// Nodes, relationships and paths are compressed into short strings.
func BuildTable(records []Record, columns []string) models.TableView {
	cols := append([]string{}, columns...)
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		row := make([]interface{}, len(cols))
		for i, col := range cols {
			v, _ := rec.Get(col)
			row[i] = Cell(Normalize(v))
		}
		rows = append(rows, row)
	}
	return models.TableView{Columns: cols, Rows: rows}
}

// Columns returns every key seen across records, in first-seen order. It is used
// when the caller has no column list of its own.
func Columns(records []Record) []string {
	seen := make(map[string]bool)
	cols := make([]string, 0)
	for _, rec := range records {
		for _, k := range rec.Keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// Cell renders one normalized value for a table.
func Cell(nv interface{}) interface{} {
	switch t := nv.(type) {
	case NormalizedNode:
		return nodeCell(t)
	case NormalizedRelationship:
		return relationshipCell(t)
	case NormalizedPath:
		return PathPlaceholder
	}
	return nv
}

// nodeCell renders "(:Label1:Label2 name) elementId".
func nodeCell(n NormalizedNode) string {
	name := ""
	if v, ok := firstPresent(n.Properties, "Name", "name"); ok {
		name = scalarString(v)
	}
	id := ""
	if n.ElementID != nil {
		id = *n.ElementID
	}
	return fmt.Sprintf("(:%s %s) %s", strings.Join(n.Labels, ":"), name, id)
}

// relationshipCell renders "[:TYPE {props}]" with properties as JSON.
func relationshipCell(r NormalizedRelationship) string {
	props, err := json.Marshal(r.Properties)
	if err != nil {
		props = []byte("{}")
	}
	return fmt.Sprintf("[:%s %s]", r.Type, props)
}
