package api

import (
	"net/http"

	apperrors "github.com/matzehuels/treeline/pkg/errors"
	"github.com/matzehuels/treeline/pkg/pipeline"
	"github.com/matzehuels/treeline/pkg/render"
)

// graphRequest is the body of POST /v1/graph.
type graphRequest struct {
	Content  string `json:"content"`
	From     string `json:"from,omitempty"`
	Format   string `json:"format,omitempty"`
	Rankdir  string `json:"rankdir,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

// graphContentTypes maps graph formats to response content types.
var graphContentTypes = map[string]string{
	render.FormatDOT: "text/vnd.graphviz",
	render.FormatSVG: "image/svg+xml",
	render.FormatPNG: "image/png",
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Content == "" {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "content cannot be empty"))
		return
	}
	if req.From != "" {
		if err := apperrors.ValidateFormat(req.From); err != nil {
			writeError(w, err)
			return
		}
	}
	// Default the format here rather than in the pipeline so the
	// response content type matches what was rendered.
	format := req.Format
	if format == "" {
		format = render.FormatDOT
	}
	if err := pipeline.ValidateGraphFormat(format); err != nil {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown graph format %q (expected dot, svg, or png)", format))
		return
	}
	if req.Rankdir != "" {
		if err := pipeline.ValidateRankdir(req.Rankdir); err != nil {
			writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown rankdir %q (expected TB or LR)", req.Rankdir))
			return
		}
	}
	if err := apperrors.ValidateMaxDepth(req.MaxDepth); err != nil {
		writeError(w, err)
		return
	}

	opts := pipeline.Options{
		From:        req.From,
		MaxDepth:    req.MaxDepth,
		GraphFormat: format,
		Rankdir:     req.Rankdir,
	}

	stream, err := s.runner.Parse(r.Context(), []byte(req.Content), opts)
	if err != nil {
		writeError(w, fromPipeline(err))
		return
	}

	data, hit, err := s.runner.GraphWithCacheInfo(r.Context(), stream, opts)
	if err != nil {
		// Rendering failures are not input-driven; parse already
		// accepted the stream.
		writeError(w, apperrors.FromEngine(err))
		return
	}

	w.Header().Set("Content-Type", graphContentTypes[format])
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
