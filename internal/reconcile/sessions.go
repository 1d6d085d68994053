// Package reconcile rebuilds work sessions, live statuses and daily
// rollups from the normalized event log. Everything here is a pure
// function of its input: recomputation from the same events always
// yields the same result.
package reconcile

import (
	"sort"
	"time"

	"github.com/punchbook/punchbook/internal/models"
)

// SortEvents orders events by logical time: at ascending, ties broken by
// recorded store order. Correctness depends only on this order, never on
// how rows happened to land in the store.
func SortEvents(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].At.Equal(events[j].At) {
			return events[i].At.Before(events[j].At)
		}
		return events[i].Order < events[j].Order
	})
}

// Sessions reconciles the full event sequence into sessions across all
// (worker, scheme) groups. The input slice is not modified.
func Sessions(events []models.Event) []models.Session {
	groups := map[groupKey][]models.Event{}
	var keys []groupKey
	for _, e := range events {
		k := groupKey{e.Worker, e.Scheme}
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], e)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].worker != keys[j].worker {
			return keys[i].worker < keys[j].worker
		}
		return keys[i].scheme < keys[j].scheme
	})

	var out []models.Session
	for _, k := range keys {
		group := append([]models.Event(nil), groups[k]...)
		SortEvents(group)
		out = append(out, Fold(group)...)
	}
	return out
}

type groupKey struct {
	worker string
	scheme models.SchemeID
}

// Fold reconciles one (worker, scheme) event sequence, already ordered
// by (at, order), into sessions. A single cursor walks the sequence:
//
//   - ClockIn closes an open rest interval and opens work. A second
//     ClockIn over open work silently replaces the cursor; the earlier
//     unclosed start is discarded (last-in-wins).
//   - Break closes open work and opens rest. An orphan Break, or a
//     Break while already resting, is a no-op.
//   - ClockOut closes whatever is open. An orphan ClockOut is a no-op.
//
// Closing emits a Done session only when the duration is strictly
// positive; an interval made non-positive by a manual edit is dropped so
// corrupted edits can never produce negative or zero-length pay. A
// cursor still open after the last event yields one trailing Working
// session with zero duration.
func Fold(events []models.Event) []models.Session {
	var (
		out       []models.Session
		openStart time.Time
		openKind  models.SessionKind
		open      bool
	)

	emit := func(worker string, scheme models.SchemeID, at time.Time) {
		d := at.Sub(openStart)
		if d > 0 {
			end := at
			out = append(out, models.Session{
				Worker:   worker,
				Scheme:   scheme,
				Start:    openStart,
				End:      &end,
				Duration: d,
				Kind:     openKind,
				Status:   models.StatusDone,
			})
		}
		open = false
	}

	for _, e := range events {
		switch e.Action {
		case models.ActionClockIn:
			if open && openKind == models.KindRest {
				emit(e.Worker, e.Scheme, e.At)
			}
			openStart, openKind, open = e.At, models.KindWork, true

		case models.ActionBreak:
			if !open || openKind != models.KindWork {
				continue
			}
			emit(e.Worker, e.Scheme, e.At)
			openStart, openKind, open = e.At, models.KindRest, true

		case models.ActionClockOut:
			if !open {
				continue
			}
			emit(e.Worker, e.Scheme, e.At)
		}
	}

	if open && len(events) > 0 {
		last := events[len(events)-1]
		out = append(out, models.Session{
			Worker: last.Worker,
			Scheme: last.Scheme,
			Start:  openStart,
			Kind:   openKind,
			Status: models.StatusWorking,
		})
	}
	return out
}

// ClosedWork filters to the Done work sessions that wage and summary
// totals are built from.
func ClosedWork(sessions []models.Session) []models.Session {
	var out []models.Session
	for _, s := range sessions {
		if s.Kind == models.KindWork && s.Status == models.StatusDone {
			out = append(out, s)
		}
	}
	return out
}
