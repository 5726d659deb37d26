package neoview

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/go-neoview/models"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// QueryView bundles the three projections of a single query run.
type QueryView struct {
	// Query is the Cypher text that produced the records.
	Query string `json:"cql"`

	// Params are the query parameters.
	Params map[string]interface{} `json:"params"`

	Graph models.GraphPayload `json:"graph"`
	Table models.TableView    `json:"table"`

	// Records is the normalized, JSON-safe mirror of the raw records.
	Records []Record `json:"records"`
}

// Viewer is the glue between a DBRunner and the pure projections. It runs a read
// query, then hands the buffered records to Extract, NormalizeRecords and BuildTable.
// A Viewer keeps no state between runs.
type Viewer struct {
	runner    DBRunner
	extractor *Extractor
	logger    *log.Logger
}

// NewViewer creates a Viewer. Unset options fall back to DefaultOptions.
func NewViewer(runner DBRunner, opts Options) *Viewer {
	return &Viewer{
		runner:    runner,
		extractor: NewExtractor(opts),
		logger:    log.New(io.Discard, "", 0),
	}
}

// SetLogger routes run summaries to l. A nil logger silences them.
func (v *Viewer) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	v.logger = l
}

// Run executes query and projects its records. An empty result is not an error; it
// yields empty projections.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - query: The Cypher query. It is passed through untouched; validating it is the
//     caller's job.
//   - params: The query parameters.
//
// Returns:
//
//	The graph, table and normalized projections of the result, or ErrEmptyQuery /
//	the runner's error.
func (v *Viewer) Run(ctx context.Context, query string, params map[string]interface{}) (*QueryView, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	runID := uuid.NewString()
	start := time.Now()
	result, err := v.runner.Run(ctx, query, params)
	if err != nil {
		v.logger.Printf("run=%s failed after %s: %v", runID, time.Since(start), err)
		return nil, err
	}

	if result == nil {
		result = &neo4j.EagerResult{}
	}
	view := v.Project(query, params, result.Keys, RecordsFromNeo4j(result.Records))
	v.logger.Printf("run=%s rows=%d nodes=%d links=%d took=%s",
		runID, len(view.Records), view.Graph.Meta.NodeCount, view.Graph.Meta.LinkCount, time.Since(start))
	return view, nil
}

// Project builds a QueryView from records that are already in memory. When keys is
// empty the table columns are derived from the records.
func (v *Viewer) Project(query string, params map[string]interface{}, keys []string, records []Record) *QueryView {
	if len(keys) == 0 {
		keys = Columns(records)
	}
	return &QueryView{
		Query:   query,
		Params:  params,
		Graph:   v.extractor.BuildGraph(records),
		Table:   BuildTable(records, keys),
		Records: NormalizeRecords(records),
	}
}

// FindGraph executes a graph query defined by a gocypher.QueryBuilder and maps the
// result into a deduplicated graph.
//
// The caller is responsible for a RETURN clause that lists the nodes, relationships
// or paths to include, for example `RETURN u, r, p`.
//
// Returns:
//   - The graph projection of the query result.
//   - An ErrNotFound error if the query executes successfully but returns zero records.
//   - Any other error encountered during query building or execution.
func (v *Viewer) FindGraph(ctx context.Context, qb *gocypher.QueryBuilder) (*models.GraphPayload, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	result, err := v.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	graph := v.extractor.BuildGraph(RecordsFromNeo4j(result.Records))
	return &graph, nil
}

// Schema lists the labels and relationship types of the database.
func (v *Viewer) Schema(ctx context.Context) (*models.Schema, error) {
	labels, err := v.firstColumn(ctx, "CALL db.labels()")
	if err != nil {
		return nil, fmt.Errorf("could not list labels: %w", err)
	}
	relTypes, err := v.firstColumn(ctx, "CALL db.relationshipTypes()")
	if err != nil {
		return nil, fmt.Errorf("could not list relationship types: %w", err)
	}
	return &models.Schema{Labels: labels, RelTypes: relTypes}, nil
}

func (v *Viewer) firstColumn(ctx context.Context, query string) ([]string, error) {
	result, err := v.runner.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []string{}, nil
	}
	out := make([]string, 0, len(result.Records))
	for _, rec := range result.Records {
		if rec == nil || len(rec.Values) == 0 {
			continue
		}
		if s, ok := rec.Values[0].(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
