package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lumen-browser/lumen/internal/applog"
	"github.com/lumen-browser/lumen/internal/engine"
	"github.com/lumen-browser/lumen/internal/export"
	"github.com/lumen-browser/lumen/internal/history"
	"github.com/lumen-browser/lumen/internal/session"
	"github.com/lumen-browser/lumen/internal/shell"
	"github.com/lumen-browser/lumen/internal/storage"
	"github.com/lumen-browser/lumen/internal/tui"
	"github.com/lumen-browser/lumen/internal/types"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "sessions":
			runSessions(os.Args[2:])
			return
		case "history":
			runHistory(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("lumen", flag.ExitOnError)
	port := fs.Int("port", engine.DefaultBridgePort, "WebSocket port for the engine bridge")
	noRestore := fs.Bool("no-restore", false, "Start with a blank window instead of the last session")
	fs.Parse(os.Args[1:])

	if dir, err := storage.DefaultDataDir(); err == nil {
		if err := applog.Init(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log file unavailable: %v\n", err)
		}
		defer applog.Close()
	}

	// A broken database degrades to an in-memory session.
	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: persistence unavailable: %v\n", err)
		applog.Error("main.open_db", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	bridge := engine.NewBridge(resolvePort(*port))
	sh := shell.New(shell.Config{DB: db, Bridge: bridge})
	if !*noRestore && sh.Settings().ReopenLastSession {
		sh.Apply(shell.RestoreLastSession{})
	}

	model := tui.NewModel(sh, bridge)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`lumen — browser shell

Usage:
  lumen                                    Start the browser TUI (default)
    --port <n>             WebSocket port for the engine bridge (default: 19192)
    --no-restore           Start with a blank window instead of the last session

  lumen sessions list                      List saved sessions
  lumen sessions save [--name "text"]      Snapshot the last saved window as a named session
  lumen sessions restore <id>              Load a session into the startup slot
  lumen sessions delete <id>               Delete a saved session

  lumen history list                       List history, most recent first
  lumen history search <query>             Search history by title or URL
  lumen history clear                      Clear all history

  lumen export                             Export the last saved window
    --json                 Export as JSON instead of markdown
    --out <file>           Output file path (default: stdout)

Environment:
  LUMEN_DATA_DIR         Data directory (default: ~/.local/share/lumen)
  LUMEN_ENGINE_PORT      Engine bridge port (overridden by --port flag)
`)
}

func openDB() (*sql.DB, error) {
	dbPath, err := storage.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenDB(dbPath)
}

// resolvePort returns the port from the flag if set, otherwise falls
// back to the LUMEN_ENGINE_PORT environment variable.
func resolvePort(flagValue int) int {
	if flagValue != engine.DefaultBridgePort {
		return flagValue
	}
	if v := os.Getenv("LUMEN_ENGINE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return flagValue
}

func mustOpenDB() *sql.DB {
	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	return db
}

func runSessions(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: lumen sessions <list|save|restore|delete>")
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		runSessionsList()
	case "save":
		runSessionsSave(args[1:])
	case "restore":
		runSessionsRestore(args[1:])
	case "delete":
		runSessionsDelete(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown sessions command %q. Use list, save, restore, or delete.\n", args[0])
		os.Exit(1)
	}
}

func runSessionsList() {
	db := mustOpenDB()
	defer db.Close()

	sessions, err := storage.ListSessions(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("No saved sessions.")
		return
	}

	fmt.Printf("%-15s %-24s %s\n", "ID", "NAME", "CREATED")
	for _, s := range sessions {
		fmt.Printf("%-15d %-24s %s\n", s.ID, s.Name, s.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func runSessionsSave(args []string) {
	fs := flag.NewFlagSet("sessions save", flag.ExitOnError)
	name := fs.String("name", "", "Session name")
	fs.Parse(args)

	db := mustOpenDB()
	defer db.Close()
	store := session.NewStore(db)

	ls, err := store.LoadLast()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if ls == nil || len(ls.Tabs) == 0 {
		fmt.Fprintln(os.Stderr, "No saved window to snapshot. Run the TUI first.")
		os.Exit(1)
	}

	tabs := make([]*types.Tab, 0, len(ls.Tabs))
	for i := range ls.Tabs {
		tabs = append(tabs, &ls.Tabs[i])
	}
	snap, err := store.SaveNamed(*name, tabs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving session: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved session %q (#%d, %d tabs)\n", snap.Name, snap.ID, len(snap.Tabs))
}

func runSessionsRestore(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: lumen sessions restore <id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid session id %q\n", args[0])
		os.Exit(1)
	}

	db := mustOpenDB()
	defer db.Close()
	store := session.NewStore(db)

	snap, err := store.Get(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if snap == nil {
		fmt.Fprintf(os.Stderr, "Session %d not found.\n", id)
		os.Exit(1)
	}

	// Stage the snapshot in the startup slot; the next TUI run picks it
	// up through the reopen-last-session path.
	ls := session.LastSession{}
	for i, tab := range snap.Tabs {
		ls.Tabs = append(ls.Tabs, types.Tab{
			ID:      i + 1,
			URL:     tab.URL,
			Title:   tab.Title,
			GroupID: tab.GroupID,
		})
	}
	if len(ls.Tabs) > 0 {
		ls.ActiveID = ls.Tabs[0].ID
	}
	if err := store.SaveLast(ls); err != nil {
		fmt.Fprintf(os.Stderr, "Error staging session: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Session %q staged (%d tabs). Start lumen to open it.\n", snap.Name, len(snap.Tabs))
}

func runSessionsDelete(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: lumen sessions delete <id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid session id %q\n", args[0])
		os.Exit(1)
	}

	db := mustOpenDB()
	defer db.Close()

	removed, err := storage.DeleteSession(db, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting session: %v\n", err)
		os.Exit(1)
	}
	if !removed {
		fmt.Printf("Session %d not found.\n", id)
		return
	}
	fmt.Printf("Deleted session %d.\n", id)
}

func runHistory(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: lumen history <list|search|clear>")
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		runHistoryList("")
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: lumen history search <query>")
			os.Exit(1)
		}
		runHistoryList(args[1])
	case "clear":
		runHistoryClear()
	default:
		fmt.Fprintf(os.Stderr, "Unknown history command %q. Use list, search, or clear.\n", args[0])
		os.Exit(1)
	}
}

func runHistoryList(query string) {
	db := mustOpenDB()
	defer db.Close()

	entries, err := storage.LoadHistory(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		os.Exit(1)
	}
	if query != "" {
		log := history.New()
		log.Replace(entries)
		entries = log.Search(query)
	}
	if len(entries) == 0 {
		fmt.Println("No history entries.")
		return
	}

	fmt.Printf("%6s  %-16s  %s\n", "VISITS", "LAST VISIT", "URL")
	for _, e := range entries {
		fmt.Printf("%6d  %-16s  %s\n", e.VisitCount, e.LastVisit.Format("2006-01-02 15:04"), e.URL)
	}
}

func runHistoryClear() {
	db := mustOpenDB()
	defer db.Close()

	if err := storage.SaveHistory(db, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing history: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("History cleared.")
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Export as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	fs.Parse(args)

	db := mustOpenDB()
	defer db.Close()
	store := session.NewStore(db)

	ls, err := store.LoadLast()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if ls == nil {
		fmt.Fprintln(os.Stderr, "No saved window to export. Run the TUI first.")
		os.Exit(1)
	}

	var output string
	if *jsonFlag {
		output, err = export.JSON(*ls)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		output = export.Markdown(*ls)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}
}
