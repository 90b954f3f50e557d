// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz             liveness
//	GET  /metrics             Prometheus exposition (when metrics are enabled)
//	POST /v1/render           render from a JSON pipeline.Options body
//	GET  /v1/render/{dni}     render from query parameters
//	GET  /v1/inspect/{dni}    layers, branches and statistics as JSON
//	GET  /v1/history          recent render records
//
// Errors are JSON objects {"error": {"code", "message"}} with the status
// chosen by errors.HTTPStatus.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kinreport/pkg/buildinfo"
	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/history"
	"github.com/matzehuels/kinreport/pkg/observability/prom"
	"github.com/matzehuels/kinreport/pkg/pipeline"
)

// maxBodyBytes caps POST /v1/render bodies.
const maxBodyBytes = 64 << 10

// Renderer runs renders and inspections. *pipeline.Runner implements it.
type Renderer interface {
	Execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
	Inspect(ctx context.Context, dni string, refresh bool, now time.Time) (pipeline.Inspection, error)
}

// Options configures a Server.
type Options struct {
	Renderer Renderer
	// History backs GET /v1/history. Nil answers 404.
	History history.Store
	// Metrics adds /metrics and request metrics. Nil disables both.
	Metrics *prom.Metrics
	Logger  *log.Logger

	// Source and Scale fill requests that leave them empty.
	Source string
	Scale  float64
}

// Server is the HTTP front of the pipeline.
type Server struct {
	opts   Options
	router chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.opts.Logger, s.opts.Metrics))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/v1", func(api chi.Router) {
		api.Post("/render", s.handleRenderPost)
		api.Get("/render/{dni}", s.handleRenderGet)
		api.Get("/inspect/{dni}", s.handleInspect)
		api.Get("/history", s.handleHistory)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRenderPost(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode render request"))
		return
	}
	s.render(w, r, opts)
}

func (s *Server) handleRenderGet(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(chi.URLParam(r, "dni"), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	s.render(w, r, opts)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	if opts.Source == "" {
		opts.Source = s.opts.Source
	}
	if opts.Scale == 0 {
		opts.Scale = s.opts.Scale
	}
	opts.Logger = s.opts.Logger.With("request_id", chimw.GetReqID(r.Context()))

	result, err := s.opts.Renderer.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", result.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(result.Artifact)))
	h.Set("Content-Disposition", `inline; filename="`+result.Filename+`"`)
	h.Set("X-Kinreport-Cache", cacheHeader(result.CacheInfo.ArtifactHit))
	h.Set("X-Kinreport-Relatives", strconv.Itoa(result.Stats.Relatives))
	if result.Pages > 0 {
		h.Set("X-Kinreport-Pages", strconv.Itoa(result.Pages))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifact)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	refresh, err := queryBool(r.URL.Query(), "refresh")
	if err != nil {
		writeError(w, err)
		return
	}
	in, err := s.opts.Renderer.Inspect(r.Context(), chi.URLParam(r, "dni"), refresh, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInspectionResponse(in))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "history is disabled"))
		return
	}
	q := r.URL.Query()
	f := history.Filter{DNI: q.Get("dni")}
	if f.DNI != "" {
		if err := errors.ValidateDNI(f.DNI); err != nil {
			writeError(w, err)
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", v))
			return
		}
		f.Limit = n
	}

	recs, err := s.opts.History.List(r.Context(), f)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list history"))
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs})
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
