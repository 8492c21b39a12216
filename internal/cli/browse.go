package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treeline/pkg/pipeline"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		from     string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Explore a document tree interactively",
		Long: `Explore a document tree interactively.

Opens a terminal browser over the parsed tree. Collections expand and
collapse in place, anchors are marked with &name, and aliases show the
anchor they point at. Dangling aliases are highlighted.

Keys:
  up/k, down/j    move
  enter, space    expand or collapse
  left/h          collapse, then jump to parent
  q, esc          quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), argOrEmpty(args), from, maxDepth)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format: yaml, json (default: from extension)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 for default)")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input, from string, maxDepth int) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	if from == "" && input != "" && input != "-" {
		from = formatForPath(input)
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	stream, err := runner.Parse(ctx, data, pipeline.Options{From: from, MaxDepth: maxDepth})
	if err != nil {
		return err
	}

	m := NewTreeModel(stream, inputLabel(input))
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
