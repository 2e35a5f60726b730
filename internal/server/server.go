// Package server serves mat artifacts over HTTP.
//
// Every artifact the pipeline produces is available under /mat.{format}, so
// the OBJ, MTL and PNG of one mat reference each other by relative URL:
//
//	GET /mat.png            raster (also jpg, jpeg, bmp, tif, tiff)
//	GET /mat.obj, /mat.mtl  textured plane
//	GET /spec.txt           text specification
//	GET /manifest.json      marker manifest
//	GET /markers/{id}.png   a single fiducial marker
//	GET /healthz            liveness and build version
//
// Query parameters override the base configuration per request: ppm,
// labels, speckle, seed and quality.
package server

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/jumpmat/pkg/buildinfo"
	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/errors"
	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/fiducial"
	"github.com/matzehuels/jumpmat/pkg/observability"
	"github.com/matzehuels/jumpmat/pkg/pipeline"
)

const (
	// maxMarkerPx bounds the core size of a standalone marker image.
	maxMarkerPx = 4096

	defaultMarkerPx = 600
	defaultQuietPx  = 100
)

// Server renders artifacts on request.
type Server struct {
	runner *pipeline.Runner
	base   config.MetricConfig
	logger *log.Logger

	// mu serializes rendering; each render holds a full raster in memory.
	mu sync.Mutex
}

// New creates a server rendering variations of base through runner.
func New(runner *pipeline.Runner, base config.MetricConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, base: base, logger: logger}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, health{Status: "ok", Info: buildinfo.Get()})
	})

	r.Get("/mat.{format}", s.handleArtifact)
	r.Get("/spec.txt", s.handleFormat(pipeline.FormatTXT))
	r.Get("/manifest.json", s.handleFormat(pipeline.FormatJSON))
	r.Get("/markers/{id}.png", s.handleMarker)

	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	formats, err := pipeline.ParseFormats(chi.URLParam(r, "format"))
	if err != nil || len(formats) != 1 {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	s.serve(w, r, formats[0])
}

func (s *Server) handleFormat(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serve(w, r, format)
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, format string) {
	opts, err := s.options(r, format)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	result, err := s.runner.Execute(r.Context(), opts)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Config-Hash", result.ConfigHash)
	if result.CacheInfo.AllHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if result.Seed != 0 {
		w.Header().Set("X-Speckle-Seed", strconv.FormatUint(result.Seed, 10))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

func (s *Server) handleMarker(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "marker id must be an integer"))
		return
	}
	q := r.URL.Query()
	size, err := intParam(q.Get("size"), defaultMarkerPx)
	if err == nil && (size <= 0 || size > maxMarkerPx) {
		err = errors.New(errors.ErrCodeInvalidInput, "size must be in 1..%d", maxMarkerPx)
	}
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	quiet, err := intParam(q.Get("quiet"), defaultQuietPx)
	if err == nil && (quiet < 0 || quiet > maxMarkerPx) {
		err = errors.New(errors.ErrCodeInvalidInput, "quiet must be in 0..%d", maxMarkerPx)
	}
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	data, err := export.Encode(fiducial.Encode(id, size, quiet), export.FormatPNG, 0)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", export.FormatPNG.MIMEType())
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// =============================================================================
// Request Options
// =============================================================================

// options builds pipeline options from the base configuration and the
// request's query parameters.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	cfg := s.base.Clone()
	opts := pipeline.Options{
		Formats: []string{format},
		Name:    pipeline.DefaultName,
		Logger:  s.logger,
	}

	if v := q.Get("ppm"); v != "" {
		ppm, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "ppm: %q is not a number", v)
		}
		cfg.PixelsPerMeter = ppm
	}
	if v := q.Get("labels"); v != "" {
		cfg.Labels.Strategy = config.LabelStrategy(v)
	}
	if v := q.Get("speckle"); v != "" {
		speckle, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "speckle: %q is not a boolean", v)
		}
		opts.Speckle = speckle
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "seed: %q is not an unsigned integer", v)
		}
		opts.Seed = seed
	}
	quality, err := intParam(q.Get("quality"), 0)
	if err != nil {
		return opts, err
	}
	opts.Quality = quality
	opts.Config = cfg
	return opts, nil
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%q is not an integer", v)
	}
	return n, nil
}

// contentType returns the media type served for a pipeline format.
func contentType(format string) string {
	switch format {
	case pipeline.FormatPNG, pipeline.FormatJPEG, pipeline.FormatBMP, pipeline.FormatTIFF:
		return export.Format(format).MIMEType()
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatOBJ:
		return "model/obj"
	}
	return "text/plain; charset=utf-8"
}

// =============================================================================
// Errors
// =============================================================================

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidColor, errors.ErrCodeInvalidPattern:
		return http.StatusBadRequest
	case errors.ErrCodeResourceExhausted:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := http.StatusText(status)
	code := ""
	if err != nil {
		msg = errors.UserMessage(err)
		code = string(errors.GetCode(err))
		var verr *errors.ValidationError
		if stderrors.As(err, &verr) {
			msg += ": " + verr.Error()
		}
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// =============================================================================
// Middleware
// =============================================================================

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMiddleware tags each request with an ID, fires the HTTP hooks and
// logs the outcome at debug level.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, rec.status, dur)

		s.logger.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", dur.Round(time.Millisecond))
	})
}
