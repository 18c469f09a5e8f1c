package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

// ResetHistoryCommand deletes every study session and review item.
type ResetHistoryCommand struct {
	DatabasePath string
	Yes          bool
}

func NewResetHistoryCommand() *ResetHistoryCommand {
	return &ResetHistoryCommand{}
}

func (cmd *ResetHistoryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reset-history", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite database file (default: DATABASE_PATH)")
	fs.BoolVar(&cmd.Yes, "yes", false, "Confirm deletion (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reset-history -yes [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete all study sessions and review items. Words, groups and\n")
		fmt.Fprintf(os.Stderr, "activities are kept.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if !cmd.Yes {
		return fmt.Errorf("refusing to delete study history without -yes")
	}

	return nil
}

func (cmd *ResetHistoryCommand) Run() error {
	s, _, cleanup, err := openStore(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sessions, reviews, err := s.Sessions.ResetHistory(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d sessions and %d review items\n", sessions, reviews)
	return nil
}
