package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dori/devtasks/internal/config"
	"github.com/dori/devtasks/internal/model"
)

var version = "0.1.0"

var (
	cli = kingpin.New("devtasks", "A personal task board for the terminal")

	// Board
	tuiCmd   = cli.Command("tui", "Start the board (default)").Default()
	tuiTheme = tuiCmd.Flag("theme", "Theme name (nord, dracula, gruvbox, catppuccin)").String()

	// Task commands
	addCmd         = cli.Command("add", "Add a task")
	addTitle       = addCmd.Arg("title", "Task title").Required().String()
	addDescription = addCmd.Flag("description", "Task description").Short('d').String()
	addDue         = addCmd.Flag("due", "Due date (YYYY-MM-DD, default today)").String()
	addDeadline    = addCmd.Flag("deadline", "Deadline (YYYY-MM-DD, default today)").String()
	addPriority    = addCmd.Flag("priority", "Low, Medium or High").Short('p').Default("Medium").String()
	addStatus      = addCmd.Flag("status", "Not Started, In Progress or Completed").Short('s').Default("Not Started").String()
	addTags        = addCmd.Flag("tags", "Comma separated tags").Short('t').String()
	addEstimate    = addCmd.Flag("estimate", "Estimated time in hours").Short('e').String()
	addMinimum     = addCmd.Flag("minimum", "Minimum time in hours").Short('m').String()

	listCmd = cli.Command("list", "List tasks grouped by status")

	searchCmd  = cli.Command("search", "Search title, description and tags")
	searchTerm = searchCmd.Arg("term", "Search term").Required().String()

	statusCmd   = cli.Command("status", "Change the status of a task")
	statusID    = statusCmd.Arg("id", "Task ID").Required().Int64()
	statusValue = statusCmd.Arg("status", "Not Started, In Progress or Completed").Required().String()

	deleteCmd = cli.Command("delete", "Delete a task")
	deleteID  = deleteCmd.Arg("id", "Task ID").Required().Int64()
	deleteYes = deleteCmd.Flag("yes", "Do not ask for confirmation").Short('y').Bool()

	exportCmd  = cli.Command("export", "Write all tasks to a YAML file")
	exportPath = exportCmd.Arg("path", "Output file, - for stdout (default: data directory)").String()

	versionCmd = cli.Command("version", "Show version")
)

func main() {
	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	if command == versionCmd.FullCommand() {
		fmt.Printf("devtasks v%s\n", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(command, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, cfg *config.Config) error {
	if command == tuiCmd.FullCommand() {
		return runTUI(cfg, *tuiTheme)
	}

	store, logger, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	switch command {
	case addCmd.FullCommand():
		return runAdd(os.Stdout, store, addInput(), clock())
	case listCmd.FullCommand():
		return runList(os.Stdout, store, clock())
	case searchCmd.FullCommand():
		return runSearch(os.Stdout, store, *searchTerm, clock())
	case statusCmd.FullCommand():
		return runStatus(os.Stdout, store, notifierFor(cfg), logger, *statusID, *statusValue)
	case deleteCmd.FullCommand():
		return runDelete(os.Stdin, os.Stdout, store, *deleteID, *deleteYes)
	case exportCmd.FullCommand():
		return runExport(os.Stdout, store, cfg.DataDir, *exportPath, clock())
	}
	return fmt.Errorf("unknown command %q", command)
}

func addInput() model.TaskInput {
	return model.TaskInput{
		Title:         *addTitle,
		Description:   *addDescription,
		DueDate:       *addDue,
		Deadline:      *addDeadline,
		Priority:      *addPriority,
		Status:        *addStatus,
		Tags:          *addTags,
		EstimatedTime: *addEstimate,
		MinimumTime:   *addMinimum,
	}
}
