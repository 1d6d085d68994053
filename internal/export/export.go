// Package export writes the derived projections: the daily-summary
// sheet, the append-only audit log, and the admin JSON report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/punchbook/punchbook/internal/models"
	"github.com/punchbook/punchbook/internal/payroll"
)

// WriteDailySummaries rewrites the daily-summary projection at path.
// The projection is fully derived, so a rewrite after every mutation is
// the whole maintenance story.
func WriteDailySummaries(path string, summaries []models.DailySummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Worker", "Date", "First In", "Last Out", "Net Work", "Net Rest", "Sessions"}); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			s.Worker,
			s.Date,
			s.FirstStart.Format("15:04:05"),
			s.LastEnd.Format("15:04:05"),
			formatDuration(s.NetWork),
			formatDuration(s.NetRest),
			fmt.Sprintf("%d", s.Sessions),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type jsonReport struct {
	ExportedAt string        `json:"exported_at"`
	Budgets    []jsonBudget  `json:"budgets"`
	Sessions   []jsonSession `json:"sessions"`
	Days       []jsonDay     `json:"days"`
}

type jsonBudget struct {
	Scheme        int    `json:"scheme"`
	TotalHours    string `json:"total_hours"`
	EffectiveRate string `json:"effective_rate"`
	TotalSpent    string `json:"total_spent"`
	Limit         string `json:"limit"`
	Capped        bool   `json:"capped"`
}

type jsonSession struct {
	Worker   string `json:"worker"`
	Scheme   int    `json:"scheme"`
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
	Hours    string `json:"hours"`
	Rate     string `json:"rate"`
	Earnings string `json:"earnings"`
}

type jsonDay struct {
	Worker   string `json:"worker"`
	Date     string `json:"date"`
	FirstIn  string `json:"first_in"`
	LastOut  string `json:"last_out"`
	NetWork  string `json:"net_work"`
	NetRest  string `json:"net_rest"`
	Sessions int    `json:"sessions"`
}

// ToJSON writes the full wage report for the admin export path.
func ToJSON(path string, st payroll.Statement, summaries []models.DailySummary) error {
	report := jsonReport{ExportedAt: time.Now().UTC().Format(time.RFC3339)}

	for _, b := range st.Budgets {
		report.Budgets = append(report.Budgets, jsonBudget{
			Scheme:        int(b.Scheme),
			TotalHours:    b.TotalHours.StringFixed(2),
			EffectiveRate: b.EffectiveRate.StringFixed(2),
			TotalSpent:    b.TotalSpent.StringFixed(2),
			Limit:         b.Limit.StringFixed(2),
			Capped:        b.Capped,
		})
	}
	for _, l := range st.Lines {
		s := l.Session
		js := jsonSession{
			Worker:   s.Worker,
			Scheme:   int(s.Scheme),
			Start:    s.Start.Format(time.RFC3339),
			Duration: formatDuration(s.Duration),
			Status:   string(s.Status),
			Hours:    l.Hours.StringFixed(2),
			Rate:     l.Rate.StringFixed(2),
			Earnings: l.Earnings.StringFixed(2),
		}
		if s.End != nil {
			js.End = s.End.Format(time.RFC3339)
		}
		report.Sessions = append(report.Sessions, js)
	}
	for _, d := range summaries {
		report.Days = append(report.Days, jsonDay{
			Worker:   d.Worker,
			Date:     d.Date,
			FirstIn:  d.FirstStart.Format(time.RFC3339),
			LastOut:  d.LastEnd.Format(time.RFC3339),
			NetWork:  formatDuration(d.NetWork),
			NetRest:  formatDuration(d.NetRest),
			Sessions: d.Sessions,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
