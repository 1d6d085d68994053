package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVStore keeps the event log in a local CSV file, the closest stand-in
// for the shared spreadsheet the crew originally punched into.
type CSVStore struct {
	path string
}

// OpenCSV opens (or creates) the CSV event log at path.
func OpenCSV(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeCSV(path, Table{Header: Header}); err != nil {
			return nil, err
		}
	}
	return &CSVStore{path: path}, nil
}

func (s *CSVStore) Load(ctx context.Context) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return Table{}, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Ragged rows are a normalizer concern, not a load failure.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read event log: %w", err)
	}

	if len(records) == 0 {
		return Table{Header: Header}, nil
	}
	t := Table{Header: records[0]}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, Row(rec))
	}
	return t, nil
}

func (s *CSVStore) Append(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("append event row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) Overwrite(ctx context.Context, t Table, expectedRows int) error {
	if expectedRows >= 0 {
		current, err := s.Load(ctx)
		if err != nil {
			return err
		}
		if len(current.Rows) != expectedRows {
			return fmt.Errorf("%w: have %d rows, expected %d", ErrRowCountChanged, len(current.Rows), expectedRows)
		}
	}

	// Write-then-rename keeps the overwrite atomic per call.
	tmp := s.path + ".tmp"
	if err := writeCSV(tmp, t); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace event log: %w", err)
	}
	return nil
}

func (s *CSVStore) Close() error {
	return nil
}

// ReadCSVFile reads an arbitrary CSV file into a Table. Used by the
// admin import path before a full-log overwrite.
func ReadCSVFile(path string) (Table, error) {
	s := &CSVStore{path: path}
	return s.Load(context.Background())
}

func writeCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create event log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := t.Header
	if len(header) == 0 {
		header = Header
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
