// Package main provides the neoview CLI: it renders Neo4j query records as a graph,
// a table and a normalized JSON mirror.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	neoview "github.com/saulfrancisco-ruizacevedo/go-neoview"
	"github.com/saulfrancisco-ruizacevedo/go-neoview/internal/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

var (
	rootCmd = &cobra.Command{
		Use:   "neoview",
		Short: "Project Neo4j query records into graph, table and normalized views",
	}
	configPath string
	viewName   string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "neoview.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&viewName, "view", "all", "Projection to print: all, graph, table, records")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log query runs to stderr")

	rootCmd.AddCommand(versionCmd, renderCmd, queryCmd, schemaCmd, lookupCmd)

	renderCmd.Flags().StringSlice("columns", nil, "Table columns (default: every key, first-seen order)")
	queryCmd.Flags().String("params", "", "Query parameters as a JSON object")
	lookupCmd.Flags().StringToString("prop", nil, "Property filter key=value (repeatable)")
	lookupCmd.Flags().String("rel", "", "Also return outgoing relationships of this type")
	lookupCmd.Flags().Int("limit", -1, "Row limit (default: query.hard_limit)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "neoview v%s (%s)\n", version, commit)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render records from a JSON file (or stdin) without a database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("could not open records: %w", err)
			}
			defer f.Close()
			in = f
		}

		records, err := neoview.DecodeRecords(in)
		if err != nil {
			return err
		}
		columns, _ := cmd.Flags().GetStringSlice("columns")

		viewer := neoview.NewViewer(nil, optionsFrom(cfg))
		view := viewer.Project("", nil, columns, records)
		return printView(cmd, view)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <cypher>",
	Short: "Run a read query and render its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("params")
		params, err := parseParams(raw)
		if err != nil {
			return err
		}

		return withViewer(cmd, func(ctx context.Context, viewer *neoview.Viewer, _ *config.Config) error {
			view, err := viewer.Run(ctx, args[0], params)
			if err != nil {
				return err
			}
			return printView(cmd, view)
		})
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List labels and relationship types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withViewer(cmd, func(ctx context.Context, viewer *neoview.Viewer, _ *config.Config) error {
			schema, err := viewer.Schema(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), schema)
		})
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <label>",
	Short: "Render nodes of a label, optionally with one relationship type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawProps, _ := cmd.Flags().GetStringToString("prop")
		relType, _ := cmd.Flags().GetString("rel")
		limit, _ := cmd.Flags().GetInt("limit")

		props := make(map[string]interface{}, len(rawProps))
		for k, v := range rawProps {
			props[k] = parseScalar(v)
		}

		return withViewer(cmd, func(ctx context.Context, viewer *neoview.Viewer, cfg *config.Config) error {
			if limit < 0 {
				limit = cfg.Query.HardLimit
			}
			var (
				view *neoview.QueryView
				err  error
			)
			if relType != "" {
				view, err = viewer.Neighbourhood(ctx, args[0], props, relType, limit)
			} else {
				view, err = viewer.Lookup(ctx, args[0], props, limit)
			}
			if err != nil {
				return err
			}
			return printView(cmd, view)
		})
	},
}

// withViewer loads config, connects, and hands a ready Viewer to fn.
func withViewer(cmd *cobra.Command, fn func(context.Context, *neoview.Viewer, *config.Config) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	executor, err := neoview.NewNeo4jExecutor(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		return err
	}
	defer executor.Close(ctx)
	executor.Timeout = cfg.Query.Timeout()

	if err := executor.Verify(ctx); err != nil {
		return fmt.Errorf("could not connect to %s: %w", cfg.Neo4j.URI, err)
	}

	viewer := neoview.NewViewer(executor, optionsFrom(cfg))
	if verbose {
		viewer.SetLogger(log.New(os.Stderr, "[neoview] ", log.LstdFlags))
	}
	return fn(ctx, viewer, cfg)
}

func optionsFrom(cfg *config.Config) neoview.Options {
	opts := neoview.DefaultOptions()
	opts.SymbolSize = cfg.Graph.SymbolSize
	return opts
}

func printView(cmd *cobra.Command, view *neoview.QueryView) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s records, %s nodes, %s links\n",
		humanize.Comma(int64(len(view.Records))),
		humanize.Comma(int64(view.Graph.Meta.NodeCount)),
		humanize.Comma(int64(view.Graph.Meta.LinkCount)))

	out := cmd.OutOrStdout()
	switch strings.ToLower(viewName) {
	case "all", "":
		return printJSON(out, view)
	case "graph":
		return printJSON(out, view.Graph)
	case "table":
		return printJSON(out, view.Table)
	case "records", "normalized":
		return printJSON(out, view.Records)
	default:
		return fmt.Errorf("unknown view %q (want all, graph, table or records)", viewName)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseParams decodes a JSON object of query parameters. Integral numbers become
// int64, since the driver sends float64 as a Cypher FLOAT.
func parseParams(raw string) (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if strings.TrimSpace(raw) == "" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("could not parse --params: %w", err)
	}
	for k, v := range params {
		params[k] = integralNumbers(v)
	}
	return params, nil
}

func integralNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = integralNumbers(t[i])
		}
		return t
	case map[string]interface{}:
		for k := range t {
			t[k] = integralNumbers(t[k])
		}
		return t
	}
	return v
}

// parseScalar reads a --prop value as JSON when it is a number or boolean, else as text.
func parseScalar(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case float64, bool:
			return integralNumbers(v)
		}
	}
	return s
}
