package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/models"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Wage.BaseRate = 500
	cfg.Wage.BudgetLimit = 120000
	cfg.Wage.SchemeLimits = nil
	cfg.Wage.Schemes = []int{1, 2, 3}
	return cfg
}

// session builds one closed work session lasting d.
func session(worker string, scheme int, start time.Time, d time.Duration) models.Session {
	end := start.Add(d)
	return models.Session{
		Worker:   worker,
		Scheme:   models.SchemeID(scheme),
		Start:    start,
		End:      &end,
		Duration: d,
		Kind:     models.KindWork,
		Status:   models.StatusDone,
	}
}

func mustEqual(t *testing.T, got decimal.Decimal, want string, what string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", what, want, got)
	}
}

func TestComputeUncappedRate(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	sessions := []models.Session{
		session("A", 1, base, 2*time.Hour),
	}

	st := Compute(sessions, testConfig())
	if len(st.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(st.Lines))
	}
	mustEqual(t, st.Lines[0].Hours, "2", "hours")
	mustEqual(t, st.Lines[0].Rate, "500", "rate")
	mustEqual(t, st.Lines[0].Earnings, "1000", "earnings")

	b := findBudget(t, st, 1)
	if b.Capped {
		t.Error("2h at 500/h must not trip a 120000 limit")
	}
	mustEqual(t, b.TotalSpent, "1000", "total spent")
}

func TestComputeCappedRateLandsExactlyOnLimit(t *testing.T) {
	// 250h at base 500 would cost 125000: over the 120000 limit, so the
	// effective rate drops to exactly 480 and the spend pins to the limit.
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	var sessions []models.Session
	for i := 0; i < 25; i++ {
		sessions = append(sessions, session("A", 1, base.AddDate(0, 0, i), 10*time.Hour))
	}

	st := Compute(sessions, testConfig())
	b := findBudget(t, st, 1)
	if !b.Capped {
		t.Fatal("expected the budget to be capped")
	}
	mustEqual(t, b.TotalHours, "250", "total hours")
	mustEqual(t, b.EffectiveRate, "480", "effective rate")
	mustEqual(t, b.TotalSpent, "120000", "total spent")
}

func TestComputeRetroactiveRepricing(t *testing.T) {
	// Closing one more session reprices every earlier session of the
	// scheme: the first session's earnings drop when the cap kicks in.
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	first := session("A", 1, base, 10*time.Hour)

	before := Compute([]models.Session{first}, testConfig())
	mustEqual(t, before.Lines[0].Earnings, "5000", "earnings before cap")

	var sessions []models.Session
	sessions = append(sessions, first)
	for i := 1; i < 30; i++ {
		sessions = append(sessions, session("B", 1, base.AddDate(0, 0, i), 10*time.Hour))
	}

	after := Compute(sessions, testConfig())
	mustEqual(t, after.Lines[0].Hours, "10", "hours after cap")
	mustEqual(t, after.Lines[0].Earnings, "4000", "earnings after cap")
	mustEqual(t, findBudget(t, after, 1).TotalSpent, "120000", "total spent")
}

func TestComputeNeverExceedsLimit(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	cfg := testConfig()

	for hours := 1; hours <= 400; hours++ {
		sessions := []models.Session{
			session("A", 1, base, time.Duration(hours)*time.Hour),
		}
		b := findBudget(t, Compute(sessions, cfg), 1)
		if b.TotalSpent.GreaterThan(b.Limit) {
			t.Errorf("%dh: spent %s exceeds limit %s", hours, b.TotalSpent, b.Limit)
		}
	}
}

func TestComputeCappedSpendPinnedToLimit(t *testing.T) {
	// 260h does not divide 120000 evenly: the quotient rounds, so
	// hours*rate alone would land an epsilon above the limit. The capped
	// spend must be the limit itself, exactly.
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	for _, hours := range []int{260, 334, 371} {
		sessions := []models.Session{
			session("A", 1, base, time.Duration(hours)*time.Hour),
		}
		b := findBudget(t, Compute(sessions, testConfig()), 1)
		if !b.Capped {
			t.Fatalf("%dh: expected a capped budget", hours)
		}
		if !b.TotalSpent.Equal(b.Limit) {
			t.Errorf("%dh: spent %s must equal the limit %s", hours, b.TotalSpent, b.Limit)
		}
	}
}

func TestComputeOpenSessionEarnsNothing(t *testing.T) {
	open := models.Session{
		Worker: "A",
		Scheme: 1,
		Start:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local),
		Kind:   models.KindWork,
		Status: models.StatusWorking,
	}

	st := Compute([]models.Session{open}, testConfig())
	if len(st.Lines) != 1 {
		t.Fatalf("open sessions still appear as lines, got %d", len(st.Lines))
	}
	if !st.Lines[0].Hours.IsZero() || !st.Lines[0].Earnings.IsZero() {
		t.Errorf("open session must have zero hours and earnings: %+v", st.Lines[0])
	}
	if !findBudget(t, st, 1).TotalHours.IsZero() {
		t.Error("open session must not count toward budget hours")
	}
}

func TestComputeRestSessionsIgnored(t *testing.T) {
	base := time.Date(2026, 3, 2, 11, 0, 0, 0, time.Local)
	end := base.Add(30 * time.Minute)
	rest := models.Session{
		Worker:   "A",
		Scheme:   1,
		Start:    base,
		End:      &end,
		Duration: 30 * time.Minute,
		Kind:     models.KindRest,
		Status:   models.StatusDone,
	}

	st := Compute([]models.Session{rest}, testConfig())
	if len(st.Lines) != 0 {
		t.Fatalf("rest intervals must not be priced, got %+v", st.Lines)
	}
	if !findBudget(t, st, 1).TotalHours.IsZero() {
		t.Error("rest interval must not count toward budget hours")
	}
}

func TestComputeSchemesIndependent(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	cfg := testConfig()
	cfg.Wage.SchemeLimits = map[int]float64{2: 1000}

	sessions := []models.Session{
		session("A", 1, base, 4*time.Hour),
		session("A", 2, base.AddDate(0, 0, 1), 4*time.Hour),
	}

	st := Compute(sessions, cfg)
	if b := findBudget(t, st, 1); b.Capped {
		t.Error("scheme 1 must not be capped")
	}
	b2 := findBudget(t, st, 2)
	if !b2.Capped {
		t.Fatal("scheme 2 must be capped by its 1000 limit")
	}
	mustEqual(t, b2.EffectiveRate, "250", "scheme 2 rate")
	mustEqual(t, b2.TotalSpent, "1000", "scheme 2 spend")
}

func TestComputeBilledMinutesRoundUp(t *testing.T) {
	// 30 seconds bills as one full minute.
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	st := Compute([]models.Session{session("A", 1, base, 30*time.Second)}, testConfig())

	wantHours := decimal.NewFromInt(1).Div(decimal.NewFromInt(60))
	if !st.Lines[0].Hours.Equal(wantHours) {
		t.Errorf("expected 1/60h, got %s", st.Lines[0].Hours)
	}
}

func TestComputeBudgetsForEveryConfiguredScheme(t *testing.T) {
	st := Compute(nil, testConfig())
	if len(st.Budgets) != 3 {
		t.Fatalf("expected a budget per configured scheme, got %d", len(st.Budgets))
	}
	for _, b := range st.Budgets {
		if !b.TotalHours.IsZero() || !b.TotalSpent.IsZero() || b.Capped {
			t.Errorf("empty pass must yield zero budgets: %+v", b)
		}
		mustEqual(t, b.EffectiveRate, "500", "idle rate")
	}
}

func TestWorkerEarnings(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	sessions := []models.Session{
		session("A", 1, base, 2*time.Hour),
		session("B", 1, base.Add(3*time.Hour), time.Hour),
		session("A", 2, base.AddDate(0, 0, 1), time.Hour),
	}

	st := Compute(sessions, testConfig())
	hours, earnings := st.WorkerEarnings("A")
	mustEqual(t, hours, "3", "A hours")
	mustEqual(t, earnings, "1500", "A earnings")

	hours, earnings = st.WorkerEarnings("nobody")
	if !hours.IsZero() || !earnings.IsZero() {
		t.Errorf("unknown worker must total zero, got %s / %s", hours, earnings)
	}
}

func findBudget(t *testing.T, st Statement, scheme int) Budget {
	t.Helper()
	for _, b := range st.Budgets {
		if b.Scheme == models.SchemeID(scheme) {
			return b
		}
	}
	t.Fatalf("no budget for scheme %d", scheme)
	return Budget{}
}
