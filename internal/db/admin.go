package db

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/chalkline-data/performance.report/internal/dataset"
	"github.com/chalkline-data/performance.report/internal/fsutil"
	"github.com/chalkline-data/performance.report/internal/httputil"
	"github.com/chalkline-data/performance.report/internal/security"
)

// AttachAdminRoutes mounts the operational endpoints on mux: the tsweb
// debug index, a live SQL console, an on-demand database backup, and a
// CSV import trigger. importDir bounds which files the import endpoint
// may read.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux, importDir string) error {
	debug := tsweb.Debugger(mux)
	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Scores DB",
	})

	// mount the tailSQL server on the debug /tailsql path
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(db.handleBackup))
	debug.Handle("import-csv", "Import a scores CSV from the import directory (POST path=<file>)", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		db.handleImportCSV(w, r, importDir)
	}))

	return nil
}

func (db *DB) handleBackup(w http.ResponseWriter, r *http.Request) {
	unixTime := time.Now().Unix()
	backupPath := fmt.Sprintf("backup-%d.db", unixTime)
	if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Encoding", "gzip")

	// Send the backup file to the client
	backupFile, err := os.Open(backupPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
		return
	}

	// close the backup file after sending it
	// and remove it from the filesystem
	defer func() {
		backupFile.Close()
		if err := os.Remove(backupPath); err != nil {
			log.Printf("Failed to remove backup file: %v", err)
		}
	}()

	gzipWriter := gzip.NewWriter(w)
	defer gzipWriter.Close()

	// Copy the backup file content to the gzip writer
	if _, err := io.Copy(gzipWriter, backupFile); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
		return
	}
}

// handleImportCSV loads a scores CSV into the database. The file path
// comes from the request and is confined to importDir before any read.
func (db *DB) handleImportCSV(w http.ResponseWriter, r *http.Request, importDir string) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	path := r.FormValue("path")
	if path == "" {
		httputil.BadRequest(w, "missing 'path' parameter")
		return
	}

	if err := security.ValidateImportPath(path, importDir); err != nil {
		httputil.WriteJSONError(w, http.StatusForbidden, fmt.Sprintf("invalid import path: %v", err))
		return
	}

	rows, err := dataset.ReadCSV(fsutil.OSFileSystem{}, path)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed to read CSV: %v", err))
		return
	}

	if err := db.InsertScores(rows); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to insert scores: %v", err))
		return
	}

	log.Printf("Imported %d score rows from %s", len(rows), path)
	httputil.WriteJSONOK(w, map[string]interface{}{
		"imported": len(rows),
		"path":     path,
	})
}
