// Package store provides durable access to the ordered event log as raw
// tabular rows. The rest of the system treats the log as a sheet: a
// header row plus string cells, normalized into typed events on every
// read.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/punchbook/punchbook/internal/config"
)

// Header is the canonical event-log schema, mirroring the legacy sheet.
var Header = []string{"Name", "Scheme", "Action", "Time", "Timestamp"}

// Row is one raw event-log row, cells aligned with the table header.
type Row []string

// Table is a point-in-time snapshot of the raw event log.
type Table struct {
	Header []string
	Rows   []Row
}

// Hash fingerprints the table content. The ledger compares hashes for
// its read-after-write verification of destructive overwrites.
func (t Table) Hash() string {
	h := sha256.New()
	for _, cell := range t.Header {
		h.Write([]byte(cell))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, row := range t.Rows {
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0})
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ErrRowCountChanged signals that an overwrite precondition failed: the
// log grew or shrank between the caller's load and its save.
var ErrRowCountChanged = errors.New("event log changed since it was loaded")

// RowStore is the durable event-log capability. Each call succeeds or
// fails as a whole; partial-row writes are not a modeled failure.
type RowStore interface {
	// Load returns the full log in recorded order.
	Load(ctx context.Context) (Table, error)
	// Append adds one row at the end of the log.
	Append(ctx context.Context, row Row) error
	// Overwrite replaces the full log. When expectedRows >= 0 the write
	// is rejected with ErrRowCountChanged if the current row count
	// differs, so a concurrent clock action is not silently dropped.
	Overwrite(ctx context.Context, t Table, expectedRows int) error
	Close() error
}

// Open constructs the RowStore selected by the config.
func Open(cfg config.StoreConfig) (RowStore, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "csv":
		return OpenCSV(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
