package reconcile

import (
	"sort"

	"github.com/punchbook/punchbook/internal/models"
)

// Summaries rolls closed sessions into one row per (worker, day), keyed
// by the session's start date. Rest intervals are tracked separately and
// never counted as work. Stateless: every call recomputes from the full
// session set.
func Summaries(sessions []models.Session) []models.DailySummary {
	type dayKey struct {
		worker string
		date   string
	}

	byDay := map[dayKey]*models.DailySummary{}
	var keys []dayKey
	for _, s := range sessions {
		if s.Open() {
			continue
		}
		k := dayKey{s.Worker, s.Date()}
		sum, ok := byDay[k]
		if !ok {
			sum = &models.DailySummary{
				Worker:     s.Worker,
				Date:       s.Date(),
				FirstStart: s.Start,
				LastEnd:    *s.End,
			}
			byDay[k] = sum
			keys = append(keys, k)
		}

		if s.Start.Before(sum.FirstStart) {
			sum.FirstStart = s.Start
		}
		if s.End.After(sum.LastEnd) {
			sum.LastEnd = *s.End
		}
		switch s.Kind {
		case models.KindWork:
			sum.NetWork += s.Duration
			sum.Sessions++
		case models.KindRest:
			sum.NetRest += s.Duration
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].worker < keys[j].worker
	})

	out := make([]models.DailySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byDay[k])
	}
	return out
}
