package models

import (
	"math"
	"time"
)

// SessionKind distinguishes paid work intervals from rest intervals.
type SessionKind string

const (
	KindWork SessionKind = "work"
	KindRest SessionKind = "rest"
)

// SessionStatus marks whether a session has been closed by a later event.
type SessionStatus string

const (
	StatusDone    SessionStatus = "done"
	StatusWorking SessionStatus = "working"
)

// Session is one contiguous reconciled interval. Sessions are derived,
// never stored: the reconciler rebuilds them from the event log on every
// read.
type Session struct {
	Worker string
	Scheme SchemeID
	Start  time.Time
	End    *time.Time
	// Duration is End-Start for closed sessions and zero while open.
	Duration time.Duration
	Kind     SessionKind
	Status   SessionStatus
}

// Open reports whether the session has no closing event yet.
func (s Session) Open() bool {
	return s.Status == StatusWorking
}

// Date returns the session's day, keyed by its start.
func (s Session) Date() string {
	return s.Start.Format("2006-01-02")
}

// BilledMinutes is the session duration rounded up to whole minutes,
// the granularity wages are settled at. Open sessions bill nothing.
func (s Session) BilledMinutes() int {
	if s.Open() || s.Duration <= 0 {
		return 0
	}
	return int(math.Ceil(s.Duration.Seconds() / 60))
}

// WorkerState is a worker's current standing derived from their last event.
type WorkerState string

const (
	StateOff     WorkerState = "off"
	StateWorking WorkerState = "working"
	StateResting WorkerState = "resting"
)

// WorkerStatus is the live projection of one worker's event tail.
type WorkerStatus struct {
	Worker string
	State  WorkerState
	// Scheme and Since are only meaningful while State is working or resting.
	Scheme SchemeID
	Since  time.Time
}

// DailySummary is one (worker, day) rollup of closed sessions.
type DailySummary struct {
	Worker     string
	Date       string
	FirstStart time.Time
	LastEnd    time.Time
	NetWork    time.Duration
	NetRest    time.Duration
	Sessions   int
}
