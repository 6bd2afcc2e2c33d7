// Command redislite runs a minimal Redis-compatible key/value server: it
// loads an RDB snapshot (if one exists), then accepts RESP connections on
// the configured port until shut down.
package main

import (
	"fmt"
	"os"

	"github.com/redislite/redislite/internal/config"
	"github.com/redislite/redislite/internal/diag"
	"github.com/redislite/redislite/internal/keyspace"
	"github.com/redislite/redislite/internal/logging"
	"github.com/redislite/redislite/internal/rdb"
	"github.com/redislite/redislite/internal/resp"
	"github.com/redislite/redislite/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logging.Default()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ks := keyspace.New()

	record, err := rdb.Load(cfg.SnapshotPath(), log)
	if err != nil {
		log.Error("failed to load RDB snapshot at %s: %v", cfg.SnapshotPath(), err)
		return 1
	}
	seedKeyspace(ks, record)
	log.Info("loaded %d key(s) from %s", len(record.Data), cfg.SnapshotPath())

	diag.LogStartupMemory(log)

	srv := server.New(cfg, ks, log)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server exited: %v", err)
		return 1
	}
	return 0
}

func seedKeyspace(ks *keyspace.Keyspace, record *rdb.Record) {
	entries := make([]keyspace.LoadEntry, 0, len(record.Data))
	for key, e := range record.Data {
		entries = append(entries, keyspace.LoadEntry{
			Key:       key,
			Value:     resp.BulkString(e.Value),
			ExpiresAt: e.ExpiresAt,
		})
	}
	ks.Load(entries)
}
