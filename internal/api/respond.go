package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apperrors "github.com/matzehuels/treeline/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its HTTP status and writes the JSON error
// body. Errors without a code become 500s.
func writeError(w http.ResponseWriter, err error) {
	var coded *apperrors.Error
	if !stderrors.As(err, &coded) {
		coded = apperrors.Wrap(apperrors.ErrCodeInternal, err, "internal server error")
	}
	writeJSON(w, statusForCode(coded.Code), errorBody{
		Error: errorDetail{Code: string(coded.Code), Message: coded.Message},
	})
}

// statusForCode maps error codes to HTTP statuses. Validation and engine
// errors are the caller's fault; storage and unclassified failures are
// ours.
func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidTag,
		apperrors.ErrCodeInvalidName,
		apperrors.ErrCodeUnsupportedValue,
		apperrors.ErrCodeUnknownTag,
		apperrors.ErrCodeUnknownAnchor,
		apperrors.ErrCodeMalformedScalar,
		apperrors.ErrCodeMalformedInput,
		apperrors.ErrCodeDepthExceeded:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeDuplicateName:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v, enforcing the server's
// body size limit.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "request body is not valid JSON")
	}
	return nil
}

// fromPipeline maps a pipeline error onto the surface taxonomy. The
// runner fails only on input-driven conditions here (cache errors are
// swallowed, formats are validated before the call), so anything the
// engine taxonomy does not cover is malformed input rather than an
// internal fault.
func fromPipeline(err error) error {
	coded := apperrors.FromEngine(err)
	if coded.Code == apperrors.ErrCodeInternal {
		return apperrors.Wrap(apperrors.ErrCodeMalformedInput, err, "input could not be parsed")
	}
	return coded
}
