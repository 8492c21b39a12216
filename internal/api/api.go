// Package api implements the treeline HTTP API.
//
// The API exposes the conversion pipeline and the document store as JSON
// endpoints:
//
//	POST   /v1/convert          convert text between formats
//	POST   /v1/graph            render a reference graph (DOT, SVG, PNG)
//	POST   /v1/documents        validate and store a document
//	GET    /v1/documents        list stored documents
//	GET    /v1/documents/{id}   fetch a stored document
//	DELETE /v1/documents/{id}   delete a stored document
//	GET    /healthz             liveness and version
//
// Errors are JSON bodies carrying the machine-readable codes of
// pkg/errors:
//
//	{"error": {"code": "UNKNOWN_TAG", "message": "tag !x/y is not registered"}}
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/treeline/pkg/pipeline"
	"github.com/matzehuels/treeline/pkg/store"
	"github.com/matzehuels/treeline/pkg/tags"
)

// DefaultMaxBodyBytes caps request bodies when Config leaves the limit
// unset.
const DefaultMaxBodyBytes = 4 << 20

// Config carries the server knobs the serve command reads from its
// configuration file.
type Config struct {
	// MaxBodyBytes caps the size of request bodies. Zero means
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// DocumentTTL is the retention applied to stored documents. Zero
	// means store.DefaultTTL.
	DocumentTTL time.Duration

	// Registry resolves tags when validating document content. Nil means
	// the process-wide default registry.
	Registry *tags.Registry
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	registry *tags.Registry
	logger   *log.Logger
	maxBody  int64
	docTTL   time.Duration
}

// New creates a Server. A nil runner gets a cache-less default, a nil
// store falls back to the in-memory backend, and a nil logger falls back
// to the package default.
func New(runner *pipeline.Runner, st store.Store, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = store.DefaultTTL
	}
	if cfg.Registry == nil {
		cfg.Registry = tags.Default()
	}
	return &Server{
		runner:   runner,
		store:    st,
		registry: cfg.Registry,
		logger:   logger,
		maxBody:  cfg.MaxBodyBytes,
		docTTL:   cfg.DocumentTTL,
	}
}

// Router assembles the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Post("/graph", s.handleGraph)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleDocumentCreate)
			r.Get("/", s.handleDocumentList)
			r.Get("/{id}", s.handleDocumentGet)
			r.Delete("/{id}", s.handleDocumentDelete)
		})
	})

	return r
}
