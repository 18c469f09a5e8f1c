package config

const (
	// DefaultDatabasePath is the default path for the SQLite learning-record database
	DefaultDatabasePath = "./wordstudy.db"

	// DefaultMaxOpenConns bounds the connection pool shared by concurrent callers
	DefaultMaxOpenConns = 4
)
