// Package dashboard serves the interactive score dashboard over HTTP:
// the shell page, one chart frame per dimension, PNG exports, the
// mounted JSON API and the admin/debug routes. Chart frames are
// rendered server-side with go-echarts; the shell only coordinates
// sessions and refreshes.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/chalkline-data/performance.report/internal/api"
	"github.com/chalkline-data/performance.report/internal/config"
	"github.com/chalkline-data/performance.report/internal/crossfilter"
	"github.com/chalkline-data/performance.report/internal/db"
	"github.com/chalkline-data/performance.report/internal/httputil"
	"github.com/chalkline-data/performance.report/internal/session"
	"github.com/chalkline-data/performance.report/internal/version"
)

// WebServer handles the HTTP interface for the dashboard. It owns the
// root mux and the lifetime of the listener.
type WebServer struct {
	sessions  *session.Manager
	comp      *session.Computer
	scoring   *config.ScoringConfig
	cfg       *config.ServerConfig
	db        *db.DB
	importDir string
	tmpl      TemplateProvider
	server    *http.Server
}

// WebServerConfig contains construction options for the web server.
type WebServerConfig struct {
	Sessions *session.Manager
	Computer *session.Computer
	Scoring  *config.ScoringConfig
	Server   *config.ServerConfig

	// DB is optional; when set, the /debug admin routes (SQL browser,
	// backup, CSV import) are attached.
	DB *db.DB

	// ImportDir bounds the paths the CSV import endpoint may read.
	ImportDir string

	// Templates overrides the embedded shell template, for tests.
	Templates TemplateProvider
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(cfg WebServerConfig) (*WebServer, error) {
	ws := &WebServer{
		sessions:  cfg.Sessions,
		comp:      cfg.Computer,
		scoring:   cfg.Scoring,
		cfg:       cfg.Server,
		db:        cfg.DB,
		importDir: cfg.ImportDir,
		tmpl:      cfg.Templates,
	}
	if ws.cfg == nil {
		ws.cfg = &config.ServerConfig{}
	}
	if ws.tmpl == nil {
		ws.tmpl = NewEmbeddedTemplateProvider(shellFS)
	}

	mux, err := ws.setupRoutes()
	if err != nil {
		return nil, err
	}
	ws.server = &http.Server{
		Addr:    ws.cfg.GetAddr(),
		Handler: api.LoggingMiddleware(mux),
	}
	return ws, nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	apiSrv := api.NewServer(ws.sessions, ws.comp, ws.scoring)
	mux.Handle("/api/", apiSrv.ServeMux())

	mux.HandleFunc("GET /{$}", ws.handleDashboard)
	mux.HandleFunc("GET /healthz", ws.handleHealth)
	mux.HandleFunc("GET /charts/{dimension}", ws.handleChartPage)
	mux.HandleFunc("GET /export/charts/{file}", ws.handleChartPNG)

	if ws.db != nil {
		if err := ws.db.AttachAdminRoutes(mux, ws.importDir); err != nil {
			return nil, fmt.Errorf("failed to attach admin routes: %w", err)
		}
	}
	return mux, nil
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.server.Addr)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// Close shuts down the web server.
func (ws *WebServer) Close() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

// dashboardData feeds the shell template.
type dashboardData struct {
	Title      string
	Version    string
	Dimensions []crossfilter.Dimension
}

// handleDashboard renders the shell page: KPI strip, status line, reset
// button and one chart frame per registered dimension. The shell's
// script creates the session and drives every refresh.
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Title:      "Performance Report",
		Version:    version.Version,
		Dimensions: ws.sessions.Registry().Dimensions(),
	}

	var buf bytes.Buffer
	if err := ws.tmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render dashboard: %v", err))
		return
	}
	httputil.WriteHTML(w, http.StatusOK, buf.Bytes())
}

// handleHealth handles the health check endpoint.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "performance-report", "timestamp": "%s"}`,
		time.Now().UTC().Format(time.RFC3339))
}

// resolveSession loads the session named by the 'session' query
// parameter, writing the error response when it cannot.
func (ws *WebServer) resolveSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.URL.Query().Get("session")
	if id == "" {
		httputil.BadRequest(w, "missing 'session' parameter")
		return nil, false
	}
	sess, err := ws.sessions.Get(id)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("no session %q", id))
		return nil, false
	}
	return sess, true
}

// chartDimension resolves the {file} path value of an export route,
// which carries a .png suffix the mux wildcard cannot strip.
func chartDimension(file string) (string, bool) {
	return strings.CutSuffix(file, ".png")
}
