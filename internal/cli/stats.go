package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
)

// StatsCommand prints the store-wide learning overview, or the stats of one
// session when -session is given.
type StatsCommand struct {
	DatabasePath string
	SessionID    uint
	JSON         bool
}

func NewStatsCommand() *StatsCommand {
	return &StatsCommand{}
}

func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite database file (default: DATABASE_PATH)")
	fs.UintVar(&cmd.SessionID, "session", 0, "Show statistics for this session id")
	fs.BoolVar(&cmd.JSON, "json", false, "Print JSON instead of text")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s stats [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show learning statistics.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *StatsCommand) Run() error {
	s, _, cleanup, err := openStore(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cmd.SessionID != 0 {
		stats, err := s.Stats.SessionStats(ctx, cmd.SessionID)
		if err != nil {
			return err
		}
		if cmd.JSON {
			return printJSON(stats)
		}
		fmt.Printf("Session %d\n", cmd.SessionID)
		fmt.Printf("Reviews: %d\n", stats.TotalReviews)
		fmt.Printf("Correct: %d\n", stats.CorrectReviews)
		fmt.Printf("Accuracy: %.1f%%\n", stats.Accuracy*100)
		return nil
	}

	overview, err := s.Stats.Overview(ctx)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return printJSON(overview)
	}

	fmt.Println("Learning Overview")
	fmt.Println("=================")
	fmt.Printf("Words: %d (%d studied)\n", overview.TotalWords, overview.StudiedWords)
	fmt.Printf("Sessions: %d across %d groups\n", overview.TotalSessions, overview.ActiveGroups)
	fmt.Printf("Reviews: %d\n", overview.TotalReviews)
	fmt.Printf("Success rate: %.1f%%\n", overview.SuccessRate*100)
	if overview.LastSessionAt != nil {
		fmt.Printf("Last session: #%d at %s\n", *overview.LastSessionID, overview.LastSessionAt.Format(time.RFC3339))
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
