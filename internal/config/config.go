// Package config parses the server's command-line flags and answers
// CONFIG GET lookups against them.
package config

import (
	"flag"
	"fmt"
)

// Config is the immutable set of server settings, built once in main and
// handed down to every other component — never reached for as a
// package-level global.
type Config struct {
	Port       int
	Dir        string
	DBFilename string
}

const (
	defaultPort       = 6379
	defaultDir        = "."
	defaultDBFilename = "dump.rdb"
)

// Parse parses args (typically os.Args[1:]) into a Config. An unknown flag
// is a fatal startup error, matching the standard library flag package's
// default behavior.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("redislite", flag.ContinueOnError)

	port := fs.Int("port", defaultPort, "TCP port to listen on")
	dir := fs.String("dir", defaultDir, "directory containing the RDB snapshot")
	dbfilename := fs.String("dbfilename", defaultDBFilename, "RDB snapshot filename")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &Config{Port: *port, Dir: *dir, DBFilename: *dbfilename}, nil
}

// Get answers a CONFIG GET lookup. Only "dir" and "dbfilename" are
// recognized, matching the closed set of settings this server exposes.
func (c *Config) Get(key string) (string, bool) {
	switch key {
	case "dir":
		return c.Dir, true
	case "dbfilename":
		return c.DBFilename, true
	default:
		return "", false
	}
}

// SnapshotPath is the full path to the configured RDB snapshot.
func (c *Config) SnapshotPath() string {
	if c.Dir == "" || c.Dir == "." {
		return c.DBFilename
	}
	return c.Dir + "/" + c.DBFilename
}
