package neoview

import (
	"context"
	"errors"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// ErrNotFound is a sentinel error returned by graph lookups when the query matched
// nothing.
var ErrNotFound = errors.New("record not found")

// ErrEmptyQuery is returned when a run is requested without query text.
var ErrEmptyQuery = errors.New("query is empty")

// ErrInvalidLookup is returned when a lookup is missing a label or relationship type.
var ErrInvalidLookup = errors.New("invalid lookup")

// LookupQuery builds a read query for the nodes carrying label and matching props.
//
// Parameters:
//   - label: The node label to match. Required.
//   - props: Property equality filters; may be nil.
//   - limit: Maximum number of rows. Zero or less means no LIMIT clause.
//
// Returns:
//
//	The Cypher text and its parameters, or an error if the builder rejects the input.
func LookupQuery(label string, props map[string]interface{}, limit int) (string, map[string]interface{}, error) {
	if label == "" {
		return "", nil, fmt.Errorf("%w: label is required", ErrInvalidLookup)
	}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", label).WithProperties(props)).
		Return("n").
		Build()
	if err != nil {
		return "", nil, fmt.Errorf("could not build lookup query: %w", err)
	}
	return withLimit(query, limit), params, nil
}

// NeighbourhoodQuery builds a read query for the nodes carrying label and matching
// props, together with their outgoing relationships of relType and the target nodes.
func NeighbourhoodQuery(label string, props map[string]interface{}, relType string, limit int) (string, map[string]interface{}, error) {
	if label == "" {
		return "", nil, fmt.Errorf("%w: label is required", ErrInvalidLookup)
	}
	if relType == "" {
		return "", nil, fmt.Errorf("%w: relationship type is required", ErrInvalidLookup)
	}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", label).WithProperties(props)).
		Match(
			gocypher.NRef("n"),
			gocypher.R("r", relType).To(),
			gocypher.N("m", ""),
		).
		Return("n", "r", "m").
		Build()
	if err != nil {
		return "", nil, fmt.Errorf("could not build neighbourhood query: %w", err)
	}
	return withLimit(query, limit), params, nil
}

func withLimit(query string, limit int) string {
	if limit <= 0 {
		return query
	}
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

// Lookup runs LookupQuery and projects the result.
func (v *Viewer) Lookup(ctx context.Context, label string, props map[string]interface{}, limit int) (*QueryView, error) {
	query, params, err := LookupQuery(label, props, limit)
	if err != nil {
		return nil, err
	}
	return v.Run(ctx, query, params)
}

// Neighbourhood runs NeighbourhoodQuery and projects the result. It returns
// ErrNotFound when nothing matched, since a neighbourhood is always asked for a
// specific start node.
func (v *Viewer) Neighbourhood(ctx context.Context, label string, props map[string]interface{}, relType string, limit int) (*QueryView, error) {
	query, params, err := NeighbourhoodQuery(label, props, relType, limit)
	if err != nil {
		return nil, err
	}
	view, err := v.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(view.Records) == 0 {
		return nil, ErrNotFound
	}
	return view, nil
}
