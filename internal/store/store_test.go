package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/punchbook/punchbook/internal/config"
)

func testRow(worker, scheme, action, clock, epoch string) Row {
	return Row{worker, scheme, action, clock, epoch}
}

func configFor(driver, path string) config.StoreConfig {
	return config.StoreConfig{Driver: driver, Path: path}
}

// openStores builds one store per backend so every test runs against
// both drivers.
func openStores(t *testing.T) map[string]RowStore {
	t.Helper()

	mem, err := NewMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { mem.Close() })

	csvStore, err := OpenCSV(filepath.Join(t.TempDir(), "punchbook.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}

	return map[string]RowStore{"sqlite": mem, "csv": csvStore}
}

func TestLoadEmpty(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			table, err := s.Load(context.Background())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(table.Rows) != 0 {
				t.Fatalf("fresh store must be empty, got %d rows", len(table.Rows))
			}
			if len(table.Header) != len(Header) {
				t.Fatalf("fresh store must carry the schema header, got %v", table.Header)
			}
		})
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	rows := []Row{
		testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "1772420400"),
		testRow("A", "1", "break", "2026-03-02 11:00:00", "1772427600"),
		testRow("B", "2", "clock_in", "2026-03-02 09:30:00", "1772422200"),
	}

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, r := range rows {
				if err := s.Append(ctx, r); err != nil {
					t.Fatalf("append: %v", err)
				}
			}

			table, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(table.Rows) != len(rows) {
				t.Fatalf("expected %d rows, got %d", len(rows), len(table.Rows))
			}
			for i, r := range rows {
				for j := range r {
					if table.Rows[i][j] != r[j] {
						t.Errorf("row %d cell %d: expected %q, got %q", i, j, r[j], table.Rows[i][j])
					}
				}
			}
		})
	}
}

func TestOverwriteReplacesLog(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Append(ctx, testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "0")); err != nil {
				t.Fatalf("append: %v", err)
			}

			next := Table{Header: Header, Rows: []Row{
				testRow("B", "2", "clock_in", "2026-03-03 08:00:00", "0"),
				testRow("B", "2", "clock_out", "2026-03-03 16:00:00", "0"),
			}}
			if err := s.Overwrite(ctx, next, 1); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			table, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(table.Rows) != 2 || table.Rows[0][0] != "B" {
				t.Fatalf("overwrite did not replace the log: %+v", table.Rows)
			}
		})
	}
}

func TestOverwriteRowCountPrecondition(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Append(ctx, testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "0")); err != nil {
				t.Fatalf("append: %v", err)
			}

			// Someone clocked in between our load and our save.
			err := s.Overwrite(ctx, Table{Header: Header}, 0)
			if !errors.Is(err, ErrRowCountChanged) {
				t.Fatalf("expected ErrRowCountChanged, got %v", err)
			}

			// The rejected overwrite must not have touched the log.
			table, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(table.Rows) != 1 {
				t.Fatalf("rejected overwrite mutated the log: %d rows", len(table.Rows))
			}
		})
	}
}

func TestOverwriteForcedSkipsPrecondition(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Append(ctx, testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "0")); err != nil {
				t.Fatalf("append: %v", err)
			}

			if err := s.Overwrite(ctx, Table{Header: Header}, -1); err != nil {
				t.Fatalf("forced overwrite: %v", err)
			}
			table, _ := s.Load(ctx)
			if len(table.Rows) != 0 {
				t.Fatalf("forced overwrite must replace the log, got %d rows", len(table.Rows))
			}
		})
	}
}

func TestTableHashDetectsAnyChange(t *testing.T) {
	base := Table{Header: Header, Rows: []Row{
		testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "0"),
	}}

	changedCell := Table{Header: Header, Rows: []Row{
		testRow("A", "2", "clock_in", "2026-03-02 09:00:00", "0"),
	}}
	extraRow := Table{Header: Header, Rows: append(base.Rows,
		testRow("B", "1", "clock_in", "2026-03-02 10:00:00", "0"))}

	if base.Hash() != base.Hash() {
		t.Fatal("hash must be deterministic")
	}
	if base.Hash() == changedCell.Hash() {
		t.Error("cell edit must change the hash")
	}
	if base.Hash() == extraRow.Hash() {
		t.Error("added row must change the hash")
	}
}

func TestSQLitePersistsGarbageTimestampAsZero(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Append(ctx, testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "not-a-number")); err != nil {
		t.Fatalf("append: %v", err)
	}

	table, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Rows[0][4] != "0" {
		t.Fatalf("garbage timestamp must persist as zero, got %q", table.Rows[0][4])
	}
}

func TestCSVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "punchbook.csv")
	ctx := context.Background()

	s, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Append(ctx, testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "0")); err != nil {
		t.Fatalf("append: %v", err)
	}

	reopened, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	table, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "A" {
		t.Fatalf("reopen lost data: %+v", table.Rows)
	}
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.csv")
	s, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := s.Append(ctx, testRow("A", "1", "clock_in", "2026-03-02 09:00:00", "0")); err != nil {
		t.Fatalf("append: %v", err)
	}

	table, err := ReadCSVFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}

	if _, err := ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestOpenDispatch(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(configFor("csv", filepath.Join(dir, "log.csv")))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	if _, ok := s.(*CSVStore); !ok {
		t.Fatalf("expected CSVStore, got %T", s)
	}

	s, err = Open(configFor("sqlite", filepath.Join(dir, "log.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, ok := s.(*SQLiteStore); !ok {
		t.Fatalf("expected SQLiteStore, got %T", s)
	}
	s.Close()

	if _, err := Open(configFor("postgres", "")); err == nil {
		t.Fatal("unknown driver must error")
	}
}
