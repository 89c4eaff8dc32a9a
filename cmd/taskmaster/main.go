package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ldi/taskmaster/internal/config"
	"github.com/ldi/taskmaster/internal/db"
	"github.com/ldi/taskmaster/internal/mcp"
	"github.com/ldi/taskmaster/internal/store"
	"github.com/ldi/taskmaster/internal/ui"
	"github.com/ldi/taskmaster/pkg/models"
)

var (
	configPath string
	dbPath     string
	verbose    bool
)

func main() {
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&dbPath, "db-path", "", "Path to database file (overrides config)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	var command string
	var args []string

	if flag.NArg() == 0 {
		selected, err := ui.RunMenu()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
			os.Exit(1)
		}
		if selected == "" {
			os.Exit(0)
		}
		command = selected
	} else {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	switch command {
	case "mcp":
		err = runMCP(cfg)
	case "list-tasks":
		err = runListTasks(cfg, args)
	case "list-events":
		err = runListEvents(cfg)
	case "list-tags":
		err = runListTags(cfg)
	case "status":
		err = runStatus(cfg)
	case "export":
		err = runExport(cfg, args)
	case "import":
		err = runImport(cfg, args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the database and builds a store seeded from the persisted
// state. Every recorded transition is written back best-effort: a failed
// save is logged and never rolls back the in-memory state.
func openStore(ctx context.Context, cfg config.Config) (*db.DB, *store.Store, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Init(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}

	state, err := database.LoadState(ctx)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	// Persist immediately so a fresh install writes its seeded tags.
	if err := database.SaveState(ctx, state); err != nil {
		slog.Warn("failed to persist state", "error", err)
	}

	st := store.New(state, store.WithHistoryLimit(cfg.HistoryLimit))
	st.SetOnChange(func(s models.AppState) {
		if err := database.SaveState(ctx, s); err != nil {
			slog.Warn("failed to persist state", "error", err)
		}
	})

	return database, st, nil
}

func runMCP(cfg config.Config) error {
	ctx := context.Background()
	database, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	s := mcp.NewServer(st)
	return mcp.Serve(s)
}

func runListTasks(cfg config.Config, args []string) error {
	taskFlags := flag.NewFlagSet("list-tasks", flag.ContinueOnError)
	statusFilter := taskFlags.String("status", "", "Filter by status (todo, inProgress, done)")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	tasks := st.Tasks()
	if *statusFilter != "" {
		tasks = st.TasksByStatus(models.TaskStatus(*statusFilter))
	}

	fmt.Printf("%-30s %-12s %-8s %-12s %-6s\n", "TITLE", "STATUS", "PRIORITY", "DUE", "STEPS")
	fmt.Println("----------------------------------------------------------------------")
	for _, t := range tasks {
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Printf("%-30s %-12s %-8s %-12s %d/%d\n",
			t.Title, t.Status, t.Priority, due, completedSteps(t), len(t.Steps))
	}
	return nil
}

func runListEvents(cfg config.Config) error {
	ctx := context.Background()
	database, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("%-12s %-12s %-30s %-10s\n", "DATE", "END", "TITLE", "KIND")
	fmt.Println("----------------------------------------------------------------------")
	for _, e := range st.Events() {
		end := e.EndDate
		if end == "" {
			end = "-"
		}
		kind := "base"
		if e.ParentEventID != "" {
			kind = "instance"
		} else if e.Recurrence.Active() {
			kind = string(e.Recurrence.Type)
		}
		fmt.Printf("%-12s %-12s %-30s %-10s\n", e.Date, end, e.Title, kind)
	}
	return nil
}

func runListTags(cfg config.Config) error {
	ctx := context.Background()
	database, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("%-20s %-10s %-36s\n", "NAME", "COLOR", "ID")
	fmt.Println("----------------------------------------------------------------------")
	for _, t := range st.Tags() {
		fmt.Printf("%-20s %-10s %-36s\n", t.Name, t.Color, t.ID)
	}
	return nil
}

func runStatus(cfg config.Config) error {
	ctx := context.Background()
	database, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	summary := st.Summarize()
	fmt.Printf("Tasks:  %d (todo: %d, in progress: %d, done: %d)\n",
		summary.Tasks,
		summary.TasksByStatus[models.TaskStatusTodo],
		summary.TasksByStatus[models.TaskStatusInProgress],
		summary.TasksByStatus[models.TaskStatusDone])
	fmt.Printf("Events: %d\n", summary.Events)
	fmt.Printf("Tags:   %d\n", summary.Tags)
	return nil
}

func runExport(cfg config.Config, args []string) error {
	path := defaultExportPath(cfg.ExportDir, time.Now())
	if len(args) > 0 {
		path = args[0]
	}

	ctx := context.Background()
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Init(ctx); err != nil {
		return err
	}
	if err := database.ExportJSON(ctx, path); err != nil {
		return err
	}

	fmt.Printf("✓ Exported to %s\n", path)
	return nil
}

func runImport(cfg config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: taskmaster import <path>")
	}

	ctx := context.Background()
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Init(ctx); err != nil {
		return err
	}
	if err := database.ImportJSON(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("✓ Imported from %s\n", args[0])
	return nil
}

func defaultExportPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("taskmaster-export-%s.json", now.Format("2006-01-02")))
}

func completedSteps(t models.Task) int {
	n := 0
	for _, s := range t.Steps {
		if s.Completed {
			n++
		}
	}
	return n
}
