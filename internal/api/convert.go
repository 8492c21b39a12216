package api

import (
	"net/http"

	apperrors "github.com/matzehuels/treeline/pkg/errors"
	"github.com/matzehuels/treeline/pkg/pipeline"
)

// convertRequest is the body of POST /v1/convert.
type convertRequest struct {
	Content       string `json:"content"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	MaxDepth      int    `json:"max_depth,omitempty"`
	ExpandAliases bool   `json:"expand_aliases,omitempty"`
}

// convertResponse is the body of a successful conversion.
type convertResponse struct {
	Output   string   `json:"output"`
	TreeHash string   `json:"tree_hash"`
	Cached   bool     `json:"cached"`
	Stats    apiStats `json:"stats"`
}

// apiStats is the wire view of pipeline statistics.
type apiStats struct {
	Documents  int   `json:"documents"`
	Nodes      int   `json:"nodes"`
	Anchors    int   `json:"anchors"`
	Aliases    int   `json:"aliases"`
	MaxDepth   int   `json:"max_depth"`
	DurationMS int64 `json:"duration_ms"`
}

func statsView(st pipeline.Stats) apiStats {
	total := st.ParseTime + st.TransformTime + st.EmitTime
	return apiStats{
		Documents:  st.DocCount,
		Nodes:      st.NodeCount,
		Anchors:    st.AnchorCount,
		Aliases:    st.AliasCount,
		MaxDepth:   st.MaxDepth,
		DurationMS: total.Milliseconds(),
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
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
	if req.To != "" {
		if err := apperrors.ValidateFormat(req.To); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := apperrors.ValidateMaxDepth(req.MaxDepth); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), []byte(req.Content), pipeline.Options{
		From:          req.From,
		To:            req.To,
		MaxDepth:      req.MaxDepth,
		ExpandAliases: req.ExpandAliases,
	})
	if err != nil {
		writeError(w, fromPipeline(err))
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Output:   string(result.Output),
		TreeHash: result.TreeHash,
		Cached:   result.CacheInfo.ConvertHit,
		Stats:    statsView(result.Stats),
	})
}
