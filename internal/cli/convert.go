package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treeline/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	from          string // input format (inferred from extension if empty)
	to            string // output format (inferred from --output extension if empty)
	output        string // output file path (stdout if empty)
	maxDepth      int    // maximum nesting depth
	expandAliases bool   // replace aliases with copies of their targets
	refresh       bool   // bypass cached results
	noCache       bool   // disable caching entirely
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert documents between YAML and JSON",
		Long: `Convert documents between YAML and JSON.

Reads from the given file or stdin and writes to --output or stdout.
Formats default from file extensions: .json reads and writes JSON,
everything else is YAML. Anchors and aliases survive YAML-to-YAML
conversion; JSON output always expands them since JSON has no
reference form.

Results are cached locally for faster repeated conversions.

Examples:
  treeline convert config.yaml -o config.json
  cat config.yaml | treeline convert --to json
  treeline convert config.yaml --expand-aliases`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), argOrEmpty(args), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "input format: yaml, json (default: from extension)")
	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "output format: yaml, json (default: from --output extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum nesting depth (0 for default)")
	cmd.Flags().BoolVar(&opts.expandAliases, "expand-aliases", false, "replace aliases with copies of their targets")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runConvert reads the input, runs the conversion pipeline, and writes
// the result.
func (c *CLI) runConvert(ctx context.Context, input string, opts *convertOpts) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	from := opts.from
	if from == "" && input != "" && input != "-" {
		from = formatForPath(input)
	}
	to := opts.to
	if to == "" && opts.output != "" {
		to = formatForPath(opts.output)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, data, pipeline.Options{
		From:          from,
		To:            to,
		MaxDepth:      opts.maxDepth,
		ExpandAliases: opts.expandAliases,
		Refresh:       opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Converted %d documents", result.Stats.DocCount))

	if err := writeOutput(result.Output, opts.output); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Conversion complete")
		printFile(opts.output)
		printStats(result.Stats.DocCount, result.Stats.NodeCount, result.CacheInfo.ConvertHit)
		if input != "" && input != "-" {
			printNewline()
			printNextStep("Visualize", "treeline graph "+input)
		}
	}
	return nil
}
