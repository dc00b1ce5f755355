// Package ledger keeps the per-category count of make-up acts.
//
// The in-memory counts are authoritative. Every mutation is written through
// to storage, but storage failures (missing key, corrupt blob, disk full,
// closed database) are logged and absorbed: the ledger never returns a
// persistence error and never crashes on bad persisted data.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Storage keys.
const (
	StorageKey       = "ramadan-kaza-performed-v1"
	LegacyStorageKey = "ramadan-kaza-tracker-v1"
)

// maxCount is the largest persisted value read back; floats beyond it lose
// integer precision.
const maxCount = 1 << 53

// ErrUnknownCategory is returned when a mutation names a category outside
// the fixed six.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one of the six fixed ledger keys.
type Category string

const (
	Fajr    Category = "fajr"
	Dhuhr   Category = "dhuhr"
	Asr     Category = "asr"
	Maghrib Category = "maghrib"
	Isha    Category = "isha"
	Witr    Category = "witr"
)

var categories = []Category{Fajr, Dhuhr, Asr, Maghrib, Isha, Witr}

// Categories returns the fixed categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Storage is the key-value adapter the ledger persists through.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Journal receives one record per mutation. Optional.
type Journal interface {
	RecordEvent(category, action string, delta int, at time.Time) error
}

// Journal actions, matching the store's event actions.
const (
	actionAdd    = "add"
	actionRemove = "remove"
	actionReset  = "reset"
)

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for absorbed storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(lg *Ledger) { lg.log = l }
}

// WithJournal attaches a journal that records every mutation.
func WithJournal(j Journal) Option {
	return func(lg *Ledger) { lg.journal = j }
}

// WithClock overrides time.Now for journal timestamps.
func WithClock(now func() time.Time) Option {
	return func(lg *Ledger) { lg.now = now }
}

// Ledger is the in-memory counter map plus its write-through persistence.
type Ledger struct {
	storage Storage
	journal Journal
	log     *slog.Logger
	now     func() time.Time

	counts   map[Category]int
	migrate  sync.Once
	hydrated bool
}

// New returns a ledger with all-zero counts. Call Hydrate to load persisted
// state.
func New(storage Storage, opts ...Option) *Ledger {
	l := &Ledger{
		storage: storage,
		log:     slog.Default(),
		now:     time.Now,
		counts:  zero(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open creates a ledger and hydrates it.
func Open(storage Storage, opts ...Option) *Ledger {
	l := New(storage, opts...)
	l.Hydrate()
	return l
}

func zero() map[Category]int {
	m := make(map[Category]int, len(categories))
	for _, c := range categories {
		m[c] = 0
	}
	return m
}

// Hydrate drops the legacy key (once per ledger) and loads the persisted
// blob over the all-zero default. Missing keys in the blob stay zero,
// unknown keys are ignored and negative values are clamped. Any failure
// leaves the all-zero default in place.
func (l *Ledger) Hydrate() {
	l.migrate.Do(func() {
		if err := l.storage.Delete(LegacyStorageKey); err != nil {
			l.log.Debug("legacy ledger cleanup failed", "key", LegacyStorageKey, "error", err)
		}
	})

	l.counts = zero()
	l.hydrated = true

	raw, err := l.storage.Get(StorageKey)
	if err != nil {
		l.log.Debug("ledger not loaded, using defaults", "error", err)
		return
	}

	var persisted map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		l.log.Debug("ledger blob corrupt, using defaults", "error", err)
		return
	}
	for _, c := range categories {
		v, ok := persisted[string(c)]
		if !ok {
			continue
		}
		// Other writers may store counts as floats ("3.0"); keep the whole part.
		var f float64
		if err := json.Unmarshal(v, &f); err != nil || f > maxCount {
			l.log.Debug("ledger value unreadable", "category", c, "value", string(v), "error", err)
			continue
		}
		l.counts[c] = max(0, int(f))
	}
}

// Hydrated reports whether Hydrate has run.
func (l *Ledger) Hydrated() bool { return l.hydrated }

// Increment adds one to c and persists.
func (l *Ledger) Increment(c Category) error {
	if _, ok := l.counts[c]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	l.counts[c]++
	l.persist()
	l.record(c, actionAdd, 1)
	return nil
}

// Decrement removes one from c, never going below zero, and persists even
// when the count was already zero.
func (l *Ledger) Decrement(c Category) error {
	before, ok := l.counts[c]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	l.counts[c] = max(0, before-1)
	l.persist()
	l.record(c, actionRemove, l.counts[c]-before)
	return nil
}

// ResetAll zeroes every category and persists once.
func (l *Ledger) ResetAll() {
	l.counts = zero()
	l.persist()
	l.record("", actionReset, 0)
}

// Count returns the current value for c (zero for unknown categories).
func (l *Ledger) Count(c Category) int {
	return l.counts[c]
}

// Counts returns a copy of all six counts.
func (l *Ledger) Counts() map[Category]int {
	out := make(map[Category]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// Total is the sum of all six counts.
func (l *Ledger) Total() int {
	sum := 0
	for _, v := range l.counts {
		sum += v
	}
	return sum
}

func (l *Ledger) persist() {
	data, err := json.Marshal(l.counts)
	if err != nil {
		l.log.Debug("ledger encode failed", "error", err)
		return
	}
	if err := l.storage.Set(StorageKey, string(data)); err != nil {
		l.log.Debug("ledger persist failed", "error", err)
	}
}

func (l *Ledger) record(c Category, action string, delta int) {
	if l.journal == nil {
		return
	}
	if err := l.journal.RecordEvent(string(c), action, delta, l.now()); err != nil {
		l.log.Debug("ledger journal failed", "action", action, "error", err)
	}
}
