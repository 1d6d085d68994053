package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// EventRow is the stored shape of one log row. Cells stay in their raw
// sheet form (Time as text, Timestamp as epoch seconds); typing happens
// in the normalizer so that sqlite and csv backends behave identically.
type EventRow struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"not null;index"`
	Scheme    string `gorm:"not null"`
	Action    string `gorm:"not null"`
	Time      string `gorm:"not null"`
	Timestamp float64
}

func (EventRow) TableName() string {
	return "event_log"
}

// SQLiteStore keeps the event log in a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the
// event log table.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&EventRow{}); err != nil {
		return nil, fmt.Errorf("migrate event log: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewMemory creates an in-memory store for tests.
func NewMemory() (*SQLiteStore, error) {
	return OpenSQLite(":memory:")
}

func (s *SQLiteStore) Load(ctx context.Context) (Table, error) {
	var rows []EventRow
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	if err != nil {
		return Table{}, fmt.Errorf("load event log: %w", err)
	}

	t := Table{Header: Header}
	for _, r := range rows {
		t.Rows = append(t.Rows, Row{
			r.Name,
			r.Scheme,
			r.Action,
			r.Time,
			strconv.FormatFloat(r.Timestamp, 'f', -1, 64),
		})
	}
	return t, nil
}

func (s *SQLiteStore) Append(ctx context.Context, row Row) error {
	rec, err := toEventRow(row)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append event row: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Overwrite(ctx context.Context, t Table, expectedRows int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if expectedRows >= 0 {
			var count int64
			if err := tx.Model(&EventRow{}).Count(&count).Error; err != nil {
				return fmt.Errorf("count event rows: %w", err)
			}
			if count != int64(expectedRows) {
				return fmt.Errorf("%w: have %d rows, expected %d", ErrRowCountChanged, count, expectedRows)
			}
		}

		if err := tx.Exec("DELETE FROM event_log").Error; err != nil {
			return fmt.Errorf("clear event log: %w", err)
		}
		for _, row := range t.Rows {
			rec, err := toEventRow(row)
			if err != nil {
				return err
			}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("write event row: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toEventRow(row Row) (EventRow, error) {
	if len(row) != len(Header) {
		return EventRow{}, fmt.Errorf("malformed row: %d cells, want %d", len(row), len(Header))
	}
	// A blank or garbage timestamp cell is stored as zero; the
	// normalizer recomputes it from the time cell on read.
	ts, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		ts = 0
	}
	return EventRow{
		Name:      row[0],
		Scheme:    row[1],
		Action:    row[2],
		Time:      row[3],
		Timestamp: ts,
	}, nil
}
