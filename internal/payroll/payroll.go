// Package payroll prices reconciled work sessions under the tiered,
// budget-capped hourly-rate policy. Money is computed in decimals so
// repeated recomputation never drifts.
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/models"
)

var sixty = decimal.NewFromInt(60)

// Budget is the derived spend envelope of one scheme.
type Budget struct {
	Scheme        models.SchemeID
	TotalHours    decimal.Decimal
	EffectiveRate decimal.Decimal
	TotalSpent    decimal.Decimal
	Limit         decimal.Decimal
	Capped        bool
}

// Line is one work session priced at its scheme's effective rate.
type Line struct {
	Session  models.Session
	Hours    decimal.Decimal
	Rate     decimal.Decimal
	Earnings decimal.Decimal
}

// Statement is the wage view of one recomputation pass.
type Statement struct {
	Lines   []Line
	Budgets []Budget
}

// Compute prices every work session and derives one budget per
// configured scheme. The effective rate is retroactive: it is a function
// of the scheme's total closed hours in this pass, so closing one more
// session can lower the rate applied to every session of the scheme.
// Whenever a scheme has closed hours, total spend never exceeds its
// limit.
func Compute(sessions []models.Session, cfg *config.Config) Statement {
	base := decimal.NewFromFloat(cfg.Wage.BaseRate)

	hoursByScheme := map[models.SchemeID]decimal.Decimal{}
	for _, s := range sessions {
		if s.Kind != models.KindWork || s.Open() {
			continue
		}
		h := sessionHours(s)
		hoursByScheme[s.Scheme] = hoursByScheme[s.Scheme].Add(h)
	}

	rates := map[models.SchemeID]decimal.Decimal{}
	var budgets []Budget
	for _, id := range cfg.SchemeIDs() {
		limit := decimal.NewFromFloat(cfg.BudgetFor(id))
		hours := hoursByScheme[id]

		rate := base
		capped := false
		spent := hours.Mul(base)
		if hours.IsPositive() && spent.GreaterThan(limit) {
			// The quotient is rounded, so hours*rate can land an epsilon
			// above the limit; the spend is pinned to the limit itself.
			rate = limit.Div(hours)
			spent = limit
			capped = true
		}
		rates[id] = rate

		budgets = append(budgets, Budget{
			Scheme:        id,
			TotalHours:    hours,
			EffectiveRate: rate,
			TotalSpent:    spent,
			Limit:         limit,
			Capped:        capped,
		})
	}

	var lines []Line
	for _, s := range sessions {
		if s.Kind != models.KindWork {
			continue
		}
		rate, ok := rates[s.Scheme]
		if !ok {
			rate = base
		}
		line := Line{Session: s, Rate: rate}
		if !s.Open() {
			line.Hours = sessionHours(s)
			line.Earnings = line.Hours.Mul(rate)
		}
		lines = append(lines, line)
	}

	return Statement{Lines: lines, Budgets: budgets}
}

// WorkerEarnings sums the settled earnings and billed hours of one
// worker across the statement.
func (st Statement) WorkerEarnings(worker string) (hours, earnings decimal.Decimal) {
	for _, l := range st.Lines {
		if l.Session.Worker != worker {
			continue
		}
		hours = hours.Add(l.Hours)
		earnings = earnings.Add(l.Earnings)
	}
	return hours, earnings
}

// sessionHours converts a closed session to billed hours: minutes are
// rounded up per session, then divided by sixty.
func sessionHours(s models.Session) decimal.Decimal {
	return decimal.NewFromInt(int64(s.BilledMinutes())).Div(sixty)
}
