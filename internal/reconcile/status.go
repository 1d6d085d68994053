package reconcile

import (
	"sort"
	"time"

	"github.com/punchbook/punchbook/internal/models"
)

// Project derives a worker's current state from the chronologically last
// event at or before now+grace. The grace window absorbs clock skew
// between the caller and the store.
func Project(events []models.Event, worker string, now time.Time, grace time.Duration) models.WorkerStatus {
	status := models.WorkerStatus{Worker: worker, State: models.StateOff}

	last, ok := lastEvent(events, worker, now.Add(grace))
	if !ok {
		return status
	}

	switch last.Action {
	case models.ActionClockIn:
		status.State = models.StateWorking
	case models.ActionBreak:
		status.State = models.StateResting
	case models.ActionClockOut:
		return status
	}
	status.Scheme = last.Scheme
	status.Since = last.At
	return status
}

// Statuses projects every worker present in the event sequence, sorted
// by name.
func Statuses(events []models.Event, now time.Time, grace time.Duration) []models.WorkerStatus {
	seen := map[string]bool{}
	var workers []string
	for _, e := range events {
		if !seen[e.Worker] {
			seen[e.Worker] = true
			workers = append(workers, e.Worker)
		}
	}
	sort.Strings(workers)

	out := make([]models.WorkerStatus, 0, len(workers))
	for _, w := range workers {
		out = append(out, Project(events, w, now, grace))
	}
	return out
}

// Cooldown checks whether a worker may record another clock action.
// It uses a narrower grace window than status projection and rejects an
// action within cooldown of the worker's last event, returning the
// remaining wait. This suppresses accidental double submissions.
func Cooldown(events []models.Event, worker string, now time.Time, cooldown, grace time.Duration) (bool, time.Duration) {
	last, ok := lastEvent(events, worker, now.Add(grace))
	if !ok {
		return true, 0
	}

	diff := now.Sub(last.At)
	if diff >= 0 && diff < cooldown {
		return false, cooldown - diff
	}
	return true, 0
}

// lastEvent returns the worker's chronologically last event with
// at <= cutoff, ties broken by recorded order.
func lastEvent(events []models.Event, worker string, cutoff time.Time) (models.Event, bool) {
	var (
		last  models.Event
		found bool
	)
	for _, e := range events {
		if e.Worker != worker || e.At.After(cutoff) {
			continue
		}
		if !found || e.At.After(last.At) || (e.At.Equal(last.At) && e.Order > last.Order) {
			last = e
			found = true
		}
	}
	return last, found
}
