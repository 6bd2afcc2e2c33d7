// Package keyspace implements the server's single, shared key/value store:
// a mapping from byte-string keys to values carrying an optional expiry,
// with lazy expiration and the SET option semantics (NX/XX/EX/PX/EXAT/
// PXAT/KEEPTTL/GET).
package keyspace

import (
	"sync"
	"time"

	"github.com/redislite/redislite/internal/resp"
)

// Condition selects SET's existence precondition.
type Condition int

const (
	// Always applies the write unconditionally (the default).
	Always Condition = iota
	// IfExists applies the write only when the key is already present.
	IfExists
	// IfNotExists applies the write only when the key is absent.
	IfNotExists
)

// SetOptions carries the optional modifiers of a SET command.
type SetOptions struct {
	ExpiresAt *time.Time
	Condition Condition
	KeepTTL   bool
	Get       bool
}

type entry struct {
	value     resp.Value
	expiresAt *time.Time
}

func (e entry) expired(now time.Time) bool {
	return e.expiresAt != nil && now.After(*e.expiresAt)
}

// Keyspace is the process-wide key/value store. It is safe for concurrent
// use; every exported method acquires the single mutex for its whole
// read-modify-write, which is what makes SET...GET and lazy-expiry-on-GET
// observably atomic (invariants I1-I3).
type Keyspace struct {
	mu   sync.Mutex
	data map[string]entry
}

// New returns an empty Keyspace.
func New() *Keyspace {
	return &Keyspace{data: make(map[string]entry)}
}

// Set applies opts' preconditions and writes (key, value) if they pass.
// prior is the value that was stored before this call (live values only);
// hadPrior reports whether one existed. wrote reports whether the write
// actually happened (false when a precondition skipped it).
func (k *Keyspace) Set(key string, value resp.Value, opts SetOptions) (prior resp.Value, hadPrior bool, wrote bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := time.Now()
	existing, present := k.data[key]
	if present && existing.expired(now) {
		present = false
	}

	if present {
		prior, hadPrior = existing.value, true
	}

	switch opts.Condition {
	case IfNotExists:
		if present {
			return prior, hadPrior, false
		}
	case IfExists:
		if !present {
			return prior, hadPrior, false
		}
	}

	expiresAt := opts.ExpiresAt
	if opts.KeepTTL && present {
		expiresAt = existing.expiresAt
	}

	k.data[key] = entry{value: value, expiresAt: expiresAt}
	return prior, hadPrior, true
}

// Get returns the live value stored at key, or ok=false if it is absent or
// has expired. An expired entry is removed as a side effect (lazy
// expiration).
func (k *Keyspace) Get(key string) (value resp.Value, ok bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, present := k.data[key]
	if !present {
		return resp.Value{}, false
	}
	if e.expired(time.Now()) {
		delete(k.data, key)
		return resp.Value{}, false
	}
	return e.value, true
}

// Delete removes key unconditionally and reports whether it was present.
func (k *Keyspace) Delete(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	_, present := k.data[key]
	delete(k.data, key)
	return present
}

// LoadEntry is one (key, value, expiry) triple used to bulk-seed a
// Keyspace at startup, e.g. from an RDB snapshot.
type LoadEntry struct {
	Key       string
	Value     resp.Value
	ExpiresAt *time.Time
}

// Load bulk-inserts entries with no precondition logic: there is no prior
// state to apply NX/XX/KEEPTTL against when seeding a fresh keyspace.
func (k *Keyspace) Load(entries []LoadEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, e := range entries {
		k.data[e.Key] = entry{value: e.Value, expiresAt: e.ExpiresAt}
	}
}
