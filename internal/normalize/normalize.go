// Package normalize turns raw event-log rows into typed events. It is
// deliberately fail-open: a malformed row is dropped and recorded as an
// anomaly, a malformed table yields an empty event sequence, and nothing
// here ever aborts the recompute pipeline.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/models"
	"github.com/punchbook/punchbook/internal/store"
)

// timeLayouts are tried in order when parsing the Time cell. The first
// entry is the format punchbook itself writes.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02",
}

// Anomaly records one skipped row.
type Anomaly struct {
	RowIndex int
	Reason   string
}

// Rows normalizes a raw table into events. The returned events keep the
// store order in Event.Order; callers sort by (At, Order) before
// reconciling.
func Rows(t store.Table, cfg *config.Config, log *zap.Logger) ([]models.Event, []Anomaly) {
	if log == nil {
		log = zap.NewNop()
	}

	cols, ok := columnIndex(t.Header)
	if !ok {
		// Wrong schema degrades to "no data" rather than failing: the
		// rest of the system keeps rendering with an empty log.
		if len(t.Header) > 0 || len(t.Rows) > 0 {
			log.Warn("event log header does not match expected schema",
				zap.Strings("header", t.Header))
		}
		return nil, nil
	}

	var (
		events    []models.Event
		anomalies []Anomaly
	)
	skip := func(i int, reason string, fields ...zap.Field) {
		anomalies = append(anomalies, Anomaly{RowIndex: i, Reason: reason})
		log.Warn("skipping event row", append(fields, zap.Int("row", i), zap.String("reason", reason))...)
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			skip(i, "ragged row")
			continue
		}

		worker := row[cols.name]
		if worker == "" {
			skip(i, "empty worker name")
			continue
		}

		scheme, err := parseScheme(row[cols.scheme], cfg)
		if err != nil {
			skip(i, err.Error(), zap.String("scheme", row[cols.scheme]))
			continue
		}

		action, ok := models.ParseAction(row[cols.action])
		if !ok {
			skip(i, "unknown action", zap.String("action", row[cols.action]))
			continue
		}

		at, err := ParseTime(row[cols.time])
		if err != nil {
			skip(i, "unparseable time", zap.String("time", row[cols.time]))
			continue
		}

		// The epoch cell is advisory. When it is absent, non-numeric or
		// stale relative to the Time cell (an edited-but-not-recomputed
		// row), the parsed Time wins.
		if ts, err := strconv.ParseFloat(row[cols.timestamp], 64); err != nil || staleTimestamp(ts, at) {
			log.Debug("recomputed epoch from time cell",
				zap.Int("row", i), zap.String("cell", row[cols.timestamp]))
		}

		events = append(events, models.Event{
			Worker: worker,
			Scheme: scheme,
			Action: action,
			At:     at,
			Order:  int64(i),
		})
	}

	return events, anomalies
}

// ParseTime parses a Time cell with the tolerant layout list. Layouts
// without a zone are interpreted in local time, matching how the crew's
// sheet recorded instants.
func ParseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if at, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", raw)
}

// FormatRow renders an event in the raw store schema. The inverse of
// Rows for the append path.
func FormatRow(e models.Event) store.Row {
	return store.Row{
		e.Worker,
		strconv.Itoa(int(e.Scheme)),
		string(e.Action),
		e.At.Format("2006-01-02 15:04:05"),
		strconv.FormatFloat(float64(e.At.Unix()), 'f', -1, 64),
	}
}

type columns struct {
	name, scheme, action, time, timestamp int
}

// columnIndex maps the header to field positions. The field set must
// match the expected schema exactly; extra or missing columns disqualify
// the whole table.
func columnIndex(header []string) (columns, bool) {
	if len(header) != len(store.Header) {
		return columns{}, false
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}
	for _, want := range store.Header {
		if _, ok := idx[want]; !ok {
			return columns{}, false
		}
	}
	return columns{
		name:      idx["Name"],
		scheme:    idx["Scheme"],
		action:    idx["Action"],
		time:      idx["Time"],
		timestamp: idx["Timestamp"],
	}, true
}

// parseScheme resolves a scheme cell. The legacy sheet wrote schemes as
// 方案N; rows imported from it stay readable alongside plain numbers.
func parseScheme(raw string, cfg *config.Config) (models.SchemeID, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "方案")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("non-numeric scheme")
	}
	id := models.SchemeID(n)
	if !cfg.KnownScheme(id) {
		return 0, fmt.Errorf("unknown scheme")
	}
	return id, nil
}

func staleTimestamp(ts float64, at time.Time) bool {
	return ts <= 0 || math.Abs(ts-float64(at.Unix())) > 1
}
