package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/wordstudy/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every sub-command in internal/cli.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "migrate":
		cmd = cli.NewMigrateCommand()
	case "import-words":
		cmd = cli.NewImportWordsCommand()
	case "stats":
		cmd = cli.NewStatsCommand()
	case "reset-history":
		cmd = cli.NewResetHistoryCommand()
	case "version":
		fmt.Printf("wordstudy %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  migrate        Create or update the schema and seed default activities\n")
	fmt.Fprintf(os.Stderr, "  import-words   Import vocabulary from a JSON word list\n")
	fmt.Fprintf(os.Stderr, "  stats          Show learning statistics\n")
	fmt.Fprintf(os.Stderr, "  reset-history  Delete all study sessions and review items\n")
	fmt.Fprintf(os.Stderr, "  version        Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment (DATABASE_DRIVER, DATABASE_PATH,\n")
	fmt.Fprintf(os.Stderr, "DATABASE_DSN, LOG_MODE, LOG_SQL_LEVEL, ...).\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
