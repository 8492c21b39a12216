package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treeline/pkg/pipeline"
	"github.com/matzehuels/treeline/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	from     string
	format   string
	rankdir  string
	output   string
	maxDepth int
	refresh  bool
	noCache  bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: render.FormatDOT, rankdir: pipeline.DefaultRankdir}

	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Render the document reference graph",
		Long: `Render the document reference graph.

Draws every node in the input as a vertex and every parent-child and
alias relationship as an edge, so shared anchors show up as vertices
with multiple inbound edges. Output is Graphviz DOT by default; svg
and png are rendered in-process.

Rendered graphs are cached locally keyed by content and options.

Examples:
  treeline graph config.yaml
  treeline graph config.yaml -f svg -o refs.svg
  cat config.yaml | treeline graph -f png -o refs.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateGraphFormat(opts.format); err != nil {
				return err
			}
			if err := pipeline.ValidateRankdir(opts.rankdir); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), argOrEmpty(args), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "graph format: dot, svg, png")
	cmd.Flags().StringVar(&opts.rankdir, "rankdir", opts.rankdir, "layout direction: TB, LR")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVar(&opts.from, "from", "", "input format: yaml, json (default: from extension)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum nesting depth (0 for default)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached renders")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, input string, opts *graphOpts) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	from := opts.from
	if from == "" && input != "" && input != "-" {
		from = formatForPath(input)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := pipeline.Options{
		From:        from,
		MaxDepth:    opts.maxDepth,
		GraphFormat: opts.format,
		Rankdir:     opts.rankdir,
		Refresh:     opts.refresh,
	}
	stream, err := runner.Parse(ctx, data, popts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.format))
	spinner.Start()
	artifact, cacheHit, err := runner.GraphWithCacheInfo(ctx, stream, popts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render graph: %w", err)
	}
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = outputBase(input) + "." + opts.format
	}
	if err := writeOutput(artifact, outputPath); err != nil {
		return err
	}

	stats := pipeline.CollectStats(stream)
	printSuccess("Graph rendered")
	printFile(outputPath)
	printStats(stats.DocCount, stats.NodeCount, cacheHit)
	return nil
}
