// Package api exposes the dashboard's session and chart endpoints as a
// JSON API. Handlers stay thin: they resolve the session, call into the
// session computer or the selection store, and map errors onto status
// codes.
package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/chalkline-data/performance.report/internal/config"
	"github.com/chalkline-data/performance.report/internal/crossfilter"
	"github.com/chalkline-data/performance.report/internal/httputil"
	"github.com/chalkline-data/performance.report/internal/session"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	sessions *session.Manager
	comp     *session.Computer
	cfg      *config.ScoringConfig
}

func NewServer(sessions *session.Manager, comp *session.Computer, cfg *config.ScoringConfig) *Server {
	return &Server{
		sessions: sessions,
		comp:     comp,
		cfg:      cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API routes. Sessions are addressed by the opaque
// ID issued at creation; everything under a session is private to it.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.createSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.deleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/state", s.showState)
	mux.HandleFunc("POST /api/sessions/{id}/interactions", s.applyInteraction)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.resetSession)
	mux.HandleFunc("GET /api/sessions/{id}/board", s.showBoard)
	mux.HandleFunc("GET /api/sessions/{id}/charts/{dimension}", s.showChart)
	mux.HandleFunc("GET /api/sessions/{id}/kpis", s.showKPIs)
	mux.HandleFunc("GET /api/sessions/{id}/status", s.showStatus)
	mux.HandleFunc("GET /api/dimensions", s.showDimensions)
	mux.HandleFunc("GET /api/config", s.showConfig)
	mux.HandleFunc("GET /api/version", s.showVersion)
	return mux
}

// resolveSession loads the session named in the request path, writing
// the error response itself when the session is gone.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, crossfilter.ErrUnknownDimension):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, session.ErrTooManySessions):
		httputil.WriteJSONError(w, http.StatusTooManyRequests, err.Error())
	default:
		httputil.InternalServerError(w, err.Error())
	}
}

// activeFilters flattens a selection state to the dimensions that are
// actually constrained.
func activeFilters(state crossfilter.State) map[string]string {
	filters := make(map[string]string)
	for name, sel := range state {
		if sel.Active {
			filters[name] = sel.Value
		}
	}
	return filters
}
