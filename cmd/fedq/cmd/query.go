package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/fedq/internal/bootstrap"
	"github.com/aman-cerp/fedq/internal/config"
	"github.com/aman-cerp/fedq/internal/engine"
	"github.com/aman-cerp/fedq/internal/output"
	"github.com/aman-cerp/fedq/internal/store"
	"github.com/aman-cerp/fedq/internal/ui"
)

type queryOptions struct {
	limit    int
	strategy string
	format   string
	database string
	noCache  bool
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a federated query and print the ranked results",
		Long: `Run a federated query across every configured backing store and
print the unified, ranked result set.

Examples:
  fedq query "memory%project kickoff notes%"
  fedq query "show me recent documents about onboarding" --limit 5
  fedq query "authentication bug" --database RELATIONAL
  fedq query "authentication bug" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return runQuery(cmd.Context(), cmd, text, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of ranked results")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "hybrid", "Execution strategy: hybrid, parallel, sequential, selective, cached")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVarP(&opts.database, "database", "d", "", "Restrict execution to a single store: RELATIONAL, VECTOR, GRAPH, KV, FILESYSTEM")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Bypass the result cache")

	return cmd
}

func runQuery(ctx context.Context, cmd *cobra.Command, text string, cliOpts queryOptions) error {
	strategy, ok := engine.ParseStrategy(cliOpts.strategy)
	if !ok {
		return fmt.Errorf("unrecognized strategy %q", cliOpts.strategy)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	registry, err := bootstrap.BuildRegistry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}

	eng := engine.New(cfg, registry)

	execOpts := engine.Options{
		Limit:    cliOpts.limit,
		Strategy: strategy,
		UseCache: !cliOpts.noCache,
	}
	if cliOpts.database != "" {
		kind := store.Kind(strings.ToUpper(cliOpts.database))
		execOpts.Database = &kind
	}

	var spinner *ui.Spinner
	if cliOpts.format != "json" {
		if f, ok := cmd.OutOrStdout().(*os.File); ok {
			spinner = ui.NewSpinner(f)
			spinner.Start(ui.StageCoordinating.String())
		}
	}
	resp := eng.Execute(ctx, text, execOpts)
	if spinner != nil {
		spinner.Stop()
	}

	if cliOpts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	out := output.New(cmd.OutOrStdout())
	if !resp.Success {
		out.Error("query failed")
		if errs, ok := resp.Metadata["errors"].([]string); ok {
			for _, e := range errs {
				out.Statusf("", "  %s", e)
			}
		}
		return nil
	}

	out.Successf("%d result(s)", len(resp.Items))
	for i, item := range resp.Items {
		out.Statusf("", "%d. [%s] %s (score %.3f)", i+1, item.SourceStore, item.Title, item.Composite)
		if item.Content != "" {
			preview := item.Content
			if len(preview) > 160 {
				preview = preview[:160] + "..."
			}
			out.Statusf("", "   %s", preview)
		}
	}
	return nil
}
