package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treeline/pkg/pipeline"
)

// inspectSummary is the machine-readable shape behind inspect --json.
type inspectSummary struct {
	Documents int      `json:"documents"`
	Nodes     int      `json:"nodes"`
	Anchors   int      `json:"anchors"`
	Aliases   int      `json:"aliases"`
	MaxDepth  int      `json:"max_depth"`
	Tags      []string `json:"tags,omitempty"`
	TreeHash  string   `json:"tree_hash"`
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		from     string
		maxDepth int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print structural statistics for a document",
		Long: `Print structural statistics for a document.

Parses the input and reports document, node, anchor, and alias counts,
the deepest nesting level, the distinct tags in use, and a content hash
that is stable across formatting changes.

Examples:
  treeline inspect config.yaml
  treeline inspect config.yaml --json | jq .nodes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), argOrEmpty(args), from, maxDepth, asJSON)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format: yaml, json (default: from extension)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 for default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the summary as JSON")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, from string, maxDepth int, asJSON bool) error {
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

	stats := pipeline.CollectStats(stream)
	tags := pipeline.DistinctTags(stream)
	hash, err := pipeline.TreeHash(stream)
	if err != nil {
		return fmt.Errorf("hash stream: %w", err)
	}

	if asJSON {
		summary := inspectSummary{
			Documents: stats.DocCount,
			Nodes:     stats.NodeCount,
			Anchors:   stats.AnchorCount,
			Aliases:   stats.AliasCount,
			MaxDepth:  stats.MaxDepth,
			Tags:      tags,
			TreeHash:  hash,
		}
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printKeyValue("Documents", StyleNumber.Render(strconv.Itoa(stats.DocCount)))
	printKeyValue("Nodes", StyleNumber.Render(strconv.Itoa(stats.NodeCount)))
	printKeyValue("Anchors", StyleNumber.Render(strconv.Itoa(stats.AnchorCount)))
	printKeyValue("Aliases", StyleNumber.Render(strconv.Itoa(stats.AliasCount)))
	printKeyValue("Depth", StyleNumber.Render(strconv.Itoa(stats.MaxDepth)))
	if len(tags) > 0 {
		printKeyValue("Tags", StyleHighlight.Render(strings.Join(tags, ", ")))
	}
	printKeyValue("Hash", hash)
	return nil
}
