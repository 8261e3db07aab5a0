package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ldi/tasklite/internal/config"
	"github.com/ldi/tasklite/internal/db"
	"github.com/ldi/tasklite/internal/mcp"
	"github.com/ldi/tasklite/internal/repository"
	"github.com/ldi/tasklite/internal/service"
	"github.com/ldi/tasklite/pkg/models"
)

var (
	dbPath     string
	exportPath string
	verbose    bool

	logger zerolog.Logger
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&dbPath, "db-path", cfg.Database.Path, "Path to database file")
	flag.StringVar(&exportPath, "export-path", cfg.Export.Path, "Path to JSONL export file")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "init":
		err = runInit(args)
	case "add":
		err = runAdd(args)
	case "list":
		err = runList(args)
	case "complete":
		err = runComplete(args)
	case "delete":
		err = runDelete(args)
	case "search":
		err = runSearch(args)
	case "status":
		err = runStatus(args)
	case "export":
		err = runExport(args)
	case "import":
		err = runImport(args)
	case "mcp":
		err = runMCP(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: tasklite [flags] <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  init      Initialize the database (use -clean to delete an old one first)")
	fmt.Println("  add       Add a task")
	fmt.Println("  list      List tasks")
	fmt.Println("  complete  Mark a task as completed")
	fmt.Println("  delete    Delete a task")
	fmt.Println("  search    Search tasks by title substring")
	fmt.Println("  status    Show task counts")
	fmt.Println("  export    Export tasks to JSONL")
	fmt.Println("  import    Import tasks from JSONL")
	fmt.Println("  mcp       Serve the task service over MCP on stdio")
}

// openService opens the database and wires repository and service.
// Callers must Close the returned DB.
func openService(ctx context.Context) (*db.DB, *service.TaskService, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewTaskRepository(database, logger)
	if err := repo.EnsureTable(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}

	return database, service.NewTaskService(repo, logger), nil
}

func runInit(args []string) error {
	initFlags := flag.NewFlagSet("init", flag.ContinueOnError)
	clean := initFlags.Bool("clean", false, "Delete any existing database file first")
	if err := initFlags.Parse(args); err != nil {
		return err
	}

	if *clean {
		db.RemoveFile(dbPath, logger)
	}

	ctx := context.Background()
	database, _, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("✓ Initialized database at %s\n", dbPath)
	return nil
}

func runAdd(args []string) error {
	addFlags := flag.NewFlagSet("add", flag.ContinueOnError)
	title := addFlags.String("title", "", "Task title (required)")
	description := addFlags.String("description", "", "Task description")
	priority := addFlags.Int("priority", 0, "Priority (1-5, default 3)")
	dueDate := addFlags.String("due", "", "Due date (YYYY-MM-DD)")
	if err := addFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	in := service.CreateTaskInput{Title: *title, Priority: *priority}
	if *description != "" {
		in.Description = description
	}
	if *dueDate != "" {
		in.DueDate = dueDate
	}

	id, err := svc.CreateTask(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Created task %d\n", id)
	return nil
}

func runList(args []string) error {
	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	incomplete := listFlags.Bool("incomplete", false, "Only incomplete tasks")
	priority := listFlags.Int("priority", 0, "Filter by priority")
	if err := listFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	var tasks []*models.Task
	switch {
	case *incomplete:
		tasks, err = svc.GetIncompleteTasks(ctx)
	case *priority != 0:
		tasks, err = svc.GetTasksByPriority(ctx, *priority)
	default:
		tasks, err = svc.GetAllTasks(ctx)
	}
	if err != nil {
		return err
	}

	printTasks(tasks)
	return nil
}

func runComplete(args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	ok, err := svc.CompleteTask(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	fmt.Printf("✓ Completed task %d\n", id)
	return nil
}

func runDelete(args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	ok, err := svc.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	fmt.Printf("✓ Deleted task %d\n", id)
	return nil
}

func runSearch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tasklite search <substring>")
	}

	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	tasks, err := svc.SearchTasksByTitle(ctx, args[0])
	if err != nil {
		return err
	}

	printTasks(tasks)
	return nil
}

func runStatus(args []string) error {
	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	all, err := svc.GetAllTasks(ctx)
	if err != nil {
		return err
	}
	incomplete, err := svc.GetIncompleteTasks(ctx)
	if err != nil {
		return err
	}
	overdue, err := svc.GetOverdueTasks(ctx)
	if err != nil {
		return err
	}
	dueSoon, err := svc.GetTasksDueWithinDays(ctx, 7)
	if err != nil {
		return err
	}

	fmt.Println("Tasklite Status")
	fmt.Println("===============")
	fmt.Printf("Total Tasks:      %d\n", len(all))
	fmt.Printf("Incomplete:       %d\n", len(incomplete))
	fmt.Printf("Overdue:          %d\n", len(overdue))
	fmt.Printf("Due within 7d:    %d\n", len(dueSoon))
	return nil
}

func runExport(args []string) error {
	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := svc.Export(ctx, exportPath); err != nil {
		return err
	}
	fmt.Printf("✓ Exported tasks to %s\n", exportPath)
	return nil
}

func runImport(args []string) error {
	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	count, err := svc.Import(ctx, exportPath)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d tasks from %s\n", count, exportPath)
	return nil
}

func runMCP(args []string) error {
	ctx := context.Background()
	database, svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	s := mcp.NewServer(svc)
	return mcp.Serve(s)
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing task id argument")
	}
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

func printTasks(tasks []*models.Task) {
	fmt.Printf("%-6s %-30s %-10s %-12s %-10s\n", "ID", "TITLE", "PRIORITY", "DUE", "DONE")
	fmt.Println("-----------------------------------------------------------------------")
	for _, t := range tasks {
		id := int64(0)
		if t.TaskID != nil {
			id = *t.TaskID
		}
		due := ""
		if t.DueDate != nil {
			due = *t.DueDate
		}
		done := ""
		if t.IsCompleted {
			done = "yes"
		}
		fmt.Printf("%-6d %-30s %-10d %-12s %-10s\n", id, t.Title, t.Priority, due, done)
	}
}
