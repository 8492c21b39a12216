package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treeline/pkg/stree"
)

// Render draws a stream in the requested format. FormatDOT returns the
// DOT text itself; FormatSVG and FormatPNG run it through Graphviz.
func Render(ctx context.Context, s *stree.Stream, opts Options) ([]byte, error) {
	dot := ToDOT(s, opts)
	switch opts.Format {
	case "", FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return RenderPNG(ctx, dot)
	default:
		return nil, fmt.Errorf("unknown graph format %q", opts.Format)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderImage(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderImage(ctx, dot, graphviz.PNG)
}

func renderImage(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
