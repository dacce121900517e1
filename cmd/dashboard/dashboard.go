package main

import (
	"context"
	"flag"
	"log"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/chalkline-data/performance.report/internal/config"
	"github.com/chalkline-data/performance.report/internal/dashboard"
	"github.com/chalkline-data/performance.report/internal/dataset"
	"github.com/chalkline-data/performance.report/internal/db"
	"github.com/chalkline-data/performance.report/internal/fsutil"
	"github.com/chalkline-data/performance.report/internal/session"
	"github.com/chalkline-data/performance.report/internal/version"
)

var (
	dbFile     = flag.String("db", "scores.db", "Path to the SQLite database file")
	addr       = flag.String("addr", "", "HTTP listen address (overrides the config default :8080)")
	configPath = flag.String("config", "", "Path to a scoring config JSON file")
	sessionTTL = flag.Int("session-ttl", 0, "Session idle expiry in minutes (negative: sessions never expire)")
	migrateCmd = flag.String("migrate", "", "Run a migration command and exit: up, down, status, version=N, force=N, to=N")
	importCSV  = flag.String("import", "", "Import a scores CSV into the database and exit")
	seedRows   = flag.Int("seed", 0, "Seed an empty database with N synthetic score rows")
	noBrowser  = flag.Bool("no-browser", false, "Do not open the dashboard in a browser after startup")
)

// Main
func main() {
	flag.Parse()

	if *migrateCmd != "" {
		db.RunMigrateCommand(migrateArgs(*migrateCmd), *dbFile)
		return
	}

	scoring := loadScoring()

	database, err := db.New(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if *importCSV != "" {
		importScores(database, *importCSV)
		return
	}
	if *seedRows > 0 {
		seedDatabase(database, *seedRows)
	}

	rows, err := database.WideRows()
	if err != nil {
		log.Fatalf("Failed to load score rows: %v", err)
	}
	rows = dataset.ApplyScoring(rows, scoring)
	rows = dataset.ApplyPeriods(rows)

	table := dataset.NewTable(rows)
	reg, err := dataset.NewRegistry(table)
	if err != nil {
		log.Fatalf("Failed to build dimension registry: %v", err)
	}

	serverCfg := &config.ServerConfig{}
	if *addr != "" {
		serverCfg.Addr = addr
	}
	if *sessionTTL != 0 {
		serverCfg.SessionTTLMinutes = sessionTTL
	}
	if err := serverCfg.Validate(); err != nil {
		log.Fatalf("Invalid server configuration: %v", err)
	}

	comp := session.NewComputer(reg, table.Records(), dataset.ScoringKPIParams(scoring))
	sessions := session.NewManager(reg, session.ManagerConfig{
		TTL:         serverCfg.GetSessionTTL(),
		MaxSessions: serverCfg.GetMaxSessions(),
	})

	ws, err := dashboard.NewWebServer(dashboard.WebServerConfig{
		Sessions:  sessions,
		Computer:  comp,
		Scoring:   scoring,
		Server:    serverCfg,
		DB:        database,
		ImportDir: "import",
	})
	if err != nil {
		log.Fatalf("Failed to build web server: %v", err)
	}

	stats, err := database.Stats()
	if err != nil {
		log.Fatalf("Failed to read table sizes: %v", err)
	}
	log.Printf("performance.report %s", version.String())
	log.Printf("Loaded %d scores (%d students, %d subjects, %d dates)", stats.Scores, stats.Students, stats.Subjects, stats.Dates)

	// Create a wait group for the HTTP server and session janitor routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Expire idle sessions in the background
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.Run(ctx)
		log.Print("session janitor routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Serving dashboard on %s", serverCfg.GetAddr())
		ws.Start(ctx)
	}()

	if !*noBrowser {
		openBrowser(browserURL(serverCfg.GetAddr()))
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// migrateArgs splits a -migrate value like "force=2" into subcommand
// arguments. "to" aliases the version action.
func migrateArgs(value string) []string {
	args := strings.SplitN(value, "=", 2)
	if args[0] == "to" {
		args[0] = "version"
	}
	return args
}

func loadScoring() *config.ScoringConfig {
	if *configPath == "" {
		return config.MustLoadDefaultConfig()
	}
	cfg, err := config.LoadScoringConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load scoring config: %v", err)
	}
	return cfg
}

// importScores loads a flat CSV into the star schema. One-shot: run it,
// then restart without -import to serve the new rows.
func importScores(database *db.DB, path string) {
	rows, err := dataset.ReadCSV(fsutil.OSFileSystem{}, path)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if err := database.InsertScores(rows); err != nil {
		log.Fatalf("Failed to insert scores: %v", err)
	}
	log.Printf("Imported %d rows from %s", len(rows), path)
}

// seedDatabase fills an empty database with synthetic rows for demos.
func seedDatabase(database *db.DB, n int) {
	stats, err := database.Stats()
	if err != nil {
		log.Fatalf("Failed to read table sizes: %v", err)
	}
	if stats.Scores > 0 {
		log.Fatalf("Refusing to seed: database already holds %d scores", stats.Scores)
	}
	rows := dataset.Synthesize(n, 42)
	if err := database.InsertScores(rows); err != nil {
		log.Fatalf("Failed to insert synthetic scores: %v", err)
	}
	log.Printf("Seeded %d synthetic scores", len(rows))
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser is best-effort; the dashboard works from any browser tab,
// so a failure here only logs.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
