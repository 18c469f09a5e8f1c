package cli

import (
	"flag"
	"fmt"
	"os"
)

// MigrateCommand creates or updates the schema and seeds default activities.
type MigrateCommand struct {
	DatabasePath string
	NoSeed       bool
}

func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite database file (default: DATABASE_PATH)")
	fs.BoolVar(&cmd.NoSeed, "no-seed", false, "Do not create the default activities")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create or update the learning-record schema.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *MigrateCommand) Run() error {
	_, _, cleanup, err := openStore(cmd.DatabasePath, !cmd.NoSeed)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Schema is up to date")
	return nil
}
