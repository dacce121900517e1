package db

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newAdminMux(t *testing.T) (*DB, *http.ServeMux, string) {
	t.Helper()
	db := newTestDB(t)
	mux := http.NewServeMux()
	importDir := t.TempDir()
	if err := db.AttachAdminRoutes(mux, importDir); err != nil {
		t.Fatalf("Failed to attach admin routes: %v", err)
	}
	return db, mux, importDir
}

// debugRequest builds a request that passes the debug endpoint access
// check, which only admits local and tailnet callers.
func debugRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "127.0.0.1:54321"
	return req
}

func TestAttachAdminRoutesRegistersDebugIndex(t *testing.T) {
	_, mux, _ := newAdminMux(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/", nil)
	_, pattern := mux.Handler(req)
	if pattern != "/debug/" {
		t.Errorf("Expected debug index at /debug/, got pattern %q", pattern)
	}
}

func TestImportCSVEndpoint(t *testing.T) {
	db, mux, importDir := newAdminMux(t)

	csvPath := filepath.Join(importDir, "scores.csv")
	csvData := strings.Join([]string{
		"student_id,student_name,grade_level,subject,date,score,weight",
		"1001,Ada Lovelace,9,Math,2023-02-10,91.50,1.00",
		"1002,Grace Hopper,10,Science,2023-07-04,58.00,1.00",
	}, "\n") + "\n"
	if err := os.WriteFile(csvPath, []byte(csvData), 0o644); err != nil {
		t.Fatalf("Failed to write CSV fixture: %v", err)
	}

	target := "/debug/import-csv?path=" + url.QueryEscape(csvPath)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, debugRequest(http.MethodPost, target, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Imported int    `json:"imported"`
		Path     string `json:"path"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Imported != 2 {
		t.Errorf("Expected 2 imported rows, got %d", resp.Imported)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Scores != 2 {
		t.Errorf("Expected 2 score rows after import, got %d", stats.Scores)
	}
}

func TestImportCSVRejectsOutsidePath(t *testing.T) {
	_, mux, _ := newAdminMux(t)

	target := "/debug/import-csv?path=" + url.QueryEscape("/etc/passwd")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, debugRequest(http.MethodPost, target, nil))

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for path outside import dir, got %d", rr.Code)
	}
}

func TestImportCSVRejectsMissingPath(t *testing.T) {
	_, mux, _ := newAdminMux(t)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, debugRequest(http.MethodPost, "/debug/import-csv", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing path, got %d", rr.Code)
	}
}

func TestImportCSVRejectsGet(t *testing.T) {
	_, mux, importDir := newAdminMux(t)

	target := "/debug/import-csv?path=" + url.QueryEscape(filepath.Join(importDir, "x.csv"))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, debugRequest(http.MethodGet, target, nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rr.Code)
	}
}

func TestImportCSVRejectsMalformedFile(t *testing.T) {
	db, mux, importDir := newAdminMux(t)

	csvPath := filepath.Join(importDir, "broken.csv")
	csvData := strings.Join([]string{
		"student_id,student_name,grade_level,subject,date,score,weight",
		"1001,Ada Lovelace,9,Math,2023-02-10,91.50,1.00",
		"not-a-number,Grace Hopper,10,Science,2023-07-04,58.00,1.00",
	}, "\n") + "\n"
	if err := os.WriteFile(csvPath, []byte(csvData), 0o644); err != nil {
		t.Fatalf("Failed to write CSV fixture: %v", err)
	}

	target := "/debug/import-csv?path=" + url.QueryEscape(csvPath)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, debugRequest(http.MethodPost, target, nil))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for malformed CSV, got %d", rr.Code)
	}

	// Imports are all-or-nothing.
	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Scores != 0 {
		t.Errorf("Expected no rows after failed import, got %d", stats.Scores)
	}
}

func TestBackupEndpoint(t *testing.T) {
	db, mux, _ := newAdminMux(t)

	if err := db.InsertScores(testScoreRows()); err != nil {
		t.Fatalf("Failed to insert scores: %v", err)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, debugRequest(http.MethodGet, "/debug/backup", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Expected gzip encoding, got %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Errorf("Expected attachment disposition, got %q", got)
	}

	gz, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("Failed to open gzip reader: %v", err)
	}
	defer gz.Close()

	header := make([]byte, 16)
	if _, err := io.ReadFull(gz, header); err != nil {
		t.Fatalf("Failed to read backup header: %v", err)
	}
	if !strings.HasPrefix(string(header), "SQLite format 3") {
		t.Errorf("Backup does not look like a SQLite database: %q", header)
	}
}
