package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/treeline/pkg/errors"
	"github.com/matzehuels/treeline/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		from     string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that a document parses and decodes cleanly",
		Long: `Check that a document parses and decodes cleanly.

Parses every document in the input, resolves all aliases against their
anchors, and decodes the tree against the registered tags. Reports the
first problem found: malformed input, dangling aliases, unknown tags,
or nesting past the depth limit.

Examples:
  treeline validate config.yaml
  cat config.yaml | treeline validate --from yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), argOrEmpty(args), from, maxDepth)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format: yaml, json (default: from extension)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 for default)")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, input, from string, maxDepth int) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	if from == "" && input != "" && input != "-" {
		from = formatForPath(input)
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	result, err := runner.Validate(ctx, data, pipeline.Options{From: from, MaxDepth: maxDepth})
	if err != nil {
		printError("%s is not valid", inputLabel(input))
		if coded := apperrors.FromEngine(err); coded.Code != apperrors.ErrCodeInternal {
			return coded
		}
		return err
	}

	printSuccess("%s is valid", inputLabel(input))
	printDetail("%d documents, %d nodes", result.Stats.DocCount, result.Stats.NodeCount)
	if tags := pipeline.DistinctTags(result.Stream); len(tags) > 0 {
		printDetail("Tags: %s", strings.Join(tags, ", "))
	}
	return nil
}
