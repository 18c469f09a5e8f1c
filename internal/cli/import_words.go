package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/wordstudy/internal/importers"
	"github.com/mrlokans/wordstudy/internal/reading"
)

// ImportWordsCommand loads a JSON word list into the store.
type ImportWordsCommand struct {
	FilePath     string
	DatabasePath string
	Group        string
	NoSuggest    bool
	Timeout      time.Duration
	Verbose      bool
	DryRun       bool
}

func NewImportWordsCommand() *ImportWordsCommand {
	return &ImportWordsCommand{}
}

func (cmd *ImportWordsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-words", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the JSON word list (required)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite database file (default: DATABASE_PATH)")
	fs.StringVar(&cmd.Group, "group", "", "Add every imported word to this group (overrides the file's group)")
	fs.BoolVar(&cmd.NoSuggest, "no-suggest", false, "Do not suggest parts for entries without them")
	fs.DurationVar(&cmd.Timeout, "timeout", 5*time.Minute, "Abort the import after this long")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every failed entry")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse the file without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-words -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import vocabulary words from a JSON file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-words -file n5.json -group \"JLPT N5\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-words -file n5.json -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *ImportWordsCommand) Run() error {
	fmt.Println("Word Import")
	fmt.Println("===========")

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	list, err := importers.ParseWordList(file)
	if err != nil {
		return err
	}
	if cmd.Group != "" {
		list.Group = cmd.Group
	}

	fmt.Printf("File: %s\n", cmd.FilePath)
	fmt.Printf("Found %d words\n", len(list.Words))
	if list.Group != "" {
		fmt.Printf("Target group: %s\n", list.Group)
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	s, log, cleanup, err := openStore(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer cleanup()

	var suggester importers.PartSuggester
	if !cmd.NoSuggest {
		rs, err := reading.NewSuggester()
		if err != nil {
			return err
		}
		suggester = rs
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	pipeline := importers.NewPipeline(s.Words, s.Groups, suggester, log)
	result, err := pipeline.Import(ctx, list)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Created: %d\n", result.Created)
	fmt.Printf("Skipped (already present): %d\n", result.Skipped)
	fmt.Printf("Failed: %d\n", result.Failed)
	if result.GroupID != nil {
		fmt.Printf("Group id: %d\n", *result.GroupID)
	}

	if cmd.Verbose && len(result.Errors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  [ERROR] %s\n", msg)
		}
	}

	return nil
}
