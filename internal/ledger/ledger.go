// Package ledger coordinates the event store with the derived views.
// Every interaction is one full cycle: load a point-in-time snapshot,
// recompute, and for mutations append or overwrite followed by the
// projection writes. No derived state survives between calls.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/export"
	"github.com/punchbook/punchbook/internal/models"
	"github.com/punchbook/punchbook/internal/normalize"
	"github.com/punchbook/punchbook/internal/payroll"
	"github.com/punchbook/punchbook/internal/reconcile"
	"github.com/punchbook/punchbook/internal/store"
)

// verifyTimeout bounds the read-after-write check on overwrites.
const verifyTimeout = 2 * time.Second

// Ledger owns one event store plus the configuration and logger shared
// by every computation pass.
type Ledger struct {
	store store.RowStore
	cfg   *config.Config
	log   *zap.Logger
	now   func() time.Time
}

func New(st store.RowStore, cfg *config.Config, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: st, cfg: cfg, log: log, now: time.Now}
}

// Snapshot is one consistent view of the event log. A computation pass
// works from a single snapshot and never sees a mix of pre- and
// post-edit state.
type Snapshot struct {
	Events    []models.Event
	Anomalies []normalize.Anomaly
	// Rows and Hash describe the raw table, for overwrite preconditions
	// and verification.
	Rows     int
	Hash     string
	LoadedAt time.Time
	// Err carries a transient store failure. The snapshot is still
	// usable; it is just empty, so callers degrade to "no data" instead
	// of crashing.
	Err error
}

// Snapshot loads and normalizes the full event log. Store failures are
// surfaced on the snapshot, never propagated as a hard error.
func (l *Ledger) Snapshot(ctx context.Context) *Snapshot {
	snap := &Snapshot{LoadedAt: l.now()}

	table, err := l.store.Load(ctx)
	if err != nil {
		l.log.Warn("event store unavailable, serving empty dataset", zap.Error(err))
		snap.Err = err
		return snap
	}

	snap.Rows = len(table.Rows)
	snap.Hash = table.Hash()
	snap.Events, snap.Anomalies = normalize.Rows(table, l.cfg, l.log)
	reconcile.SortEvents(snap.Events)
	return snap
}

// Report bundles every derived view of one snapshot.
type Report struct {
	Sessions  []models.Session
	Statement payroll.Statement
	Statuses  []models.WorkerStatus
	Summaries []models.DailySummary
}

// Report recomputes all derived entities from one snapshot.
func (l *Ledger) Report(snap *Snapshot) Report {
	sessions := reconcile.Sessions(snap.Events)
	return Report{
		Sessions:  sessions,
		Statement: payroll.Compute(sessions, l.cfg),
		Statuses:  reconcile.Statuses(snap.Events, l.now(), l.cfg.StatusGrace()),
		Summaries: reconcile.Summaries(sessions),
	}
}

// Status projects one worker from a fresh snapshot.
func (l *Ledger) Status(snap *Snapshot, worker string) models.WorkerStatus {
	return reconcile.Project(snap.Events, worker, l.now(), l.cfg.StatusGrace())
}

// CooldownError rejects a clock action submitted too soon after the
// worker's previous one.
type CooldownError struct {
	Wait time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("too fast, wait %d seconds", int(e.Wait.Seconds()+0.999))
}

// ClockIn records the start of a work session on a scheme. Rejected
// while the worker is already working: replacing an open session is an
// edit-path decision, not something a stray double submission should do.
func (l *Ledger) ClockIn(ctx context.Context, worker string, scheme models.SchemeID) (models.Event, error) {
	if !l.cfg.KnownScheme(scheme) {
		return models.Event{}, fmt.Errorf("unknown scheme %d", int(scheme))
	}

	snap, status, err := l.prepareAction(ctx, worker)
	if err != nil {
		return models.Event{}, err
	}
	if status.State == models.StateWorking {
		return models.Event{}, fmt.Errorf("%s is already working on %s since %s",
			worker, status.Scheme, status.Since.Format("15:04"))
	}

	return l.appendAction(ctx, snap, worker, scheme, models.ActionClockIn)
}

// ClockBreak pauses the worker's open session on its current scheme.
func (l *Ledger) ClockBreak(ctx context.Context, worker string) (models.Event, error) {
	snap, status, err := l.prepareAction(ctx, worker)
	if err != nil {
		return models.Event{}, err
	}
	if status.State != models.StateWorking {
		return models.Event{}, fmt.Errorf("%s is not working, nothing to pause", worker)
	}

	return l.appendAction(ctx, snap, worker, status.Scheme, models.ActionBreak)
}

// ClockOut closes the worker's day on their current scheme.
func (l *Ledger) ClockOut(ctx context.Context, worker string) (models.Event, error) {
	snap, status, err := l.prepareAction(ctx, worker)
	if err != nil {
		return models.Event{}, err
	}
	if status.State == models.StateOff {
		return models.Event{}, fmt.Errorf("%s is not clocked in", worker)
	}

	return l.appendAction(ctx, snap, worker, status.Scheme, models.ActionClockOut)
}

func (l *Ledger) prepareAction(ctx context.Context, worker string) (*Snapshot, models.WorkerStatus, error) {
	if worker == "" {
		return nil, models.WorkerStatus{}, errors.New("worker name required")
	}

	snap := l.Snapshot(ctx)
	if snap.Err != nil {
		return nil, models.WorkerStatus{}, fmt.Errorf("event store unavailable: %w", snap.Err)
	}

	now := l.now()
	ok, wait := reconcile.Cooldown(snap.Events, worker, now, l.cfg.Cooldown(), l.cfg.CooldownGrace())
	if !ok {
		return nil, models.WorkerStatus{}, &CooldownError{Wait: wait}
	}

	return snap, reconcile.Project(snap.Events, worker, now, l.cfg.StatusGrace()), nil
}

func (l *Ledger) appendAction(ctx context.Context, snap *Snapshot, worker string, scheme models.SchemeID, action models.Action) (models.Event, error) {
	event := models.Event{
		Worker: worker,
		Scheme: scheme,
		Action: action,
		At:     l.now(),
		Order:  int64(snap.Rows),
	}
	if err := l.store.Append(ctx, normalize.FormatRow(event)); err != nil {
		return models.Event{}, fmt.Errorf("record clock action: %w", err)
	}

	l.writeProjections(ctx, export.NewAuditRecord(worker, string(action), scheme.String()))
	return event, nil
}

// AdminOverwrite replaces the full event log. The payload must normalize
// cleanly (malformed payloads abort before any write), the optimistic
// row-count precondition guards against racing clock actions, and the
// write is verified by re-reading within a bounded window rather than
// sleeping a fixed consistency delay.
func (l *Ledger) AdminOverwrite(ctx context.Context, table store.Table, expectedRows int) error {
	events, anomalies := normalize.Rows(table, l.cfg, l.log)
	if len(table.Rows) > 0 && len(events) == 0 {
		return errors.New("malformed payload: no usable rows")
	}
	if len(anomalies) > 0 {
		return fmt.Errorf("malformed payload: %d bad rows, first at row %d (%s)",
			len(anomalies), anomalies[0].RowIndex, anomalies[0].Reason)
	}

	if err := l.store.Overwrite(ctx, table, expectedRows); err != nil {
		return fmt.Errorf("overwrite event log: %w", err)
	}
	if err := l.verifyWrite(ctx, table.Hash()); err != nil {
		return err
	}

	l.writeProjections(ctx, export.NewAuditRecord("admin", "overwrite",
		fmt.Sprintf("%d rows", len(table.Rows))))
	return nil
}

// verifyWrite re-reads the log until its content hash matches what was
// written, bounded by verifyTimeout.
func (l *Ledger) verifyWrite(ctx context.Context, wantHash string) error {
	deadline := l.now().Add(verifyTimeout)
	for {
		table, err := l.store.Load(ctx)
		if err == nil && table.Hash() == wantHash {
			return nil
		}
		if time.Now().After(deadline) {
			if err != nil {
				return fmt.Errorf("verify overwrite: %w", err)
			}
			return errors.New("verify overwrite: store content does not match written data")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// writeProjections refreshes the daily-summary destination and appends
// one audit record. Projection failures are logged, never fatal: the
// mutation itself is already durable.
func (l *Ledger) writeProjections(ctx context.Context, rec export.AuditRecord) {
	snap := l.Snapshot(ctx)
	if snap.Err == nil {
		summaries := reconcile.Summaries(reconcile.Sessions(snap.Events))
		if err := export.WriteDailySummaries(l.cfg.Exports.SummaryPath, summaries); err != nil {
			l.log.Warn("write summary projection", zap.Error(err))
		}
	}
	if err := export.AppendAudit(l.cfg.Exports.AuditPath, rec); err != nil {
		l.log.Error("append audit record", zap.Error(err))
	}
}
