package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/ledger"
	"github.com/punchbook/punchbook/internal/payroll"
)

var reportCmd = &cobra.Command{
	Use:   "report [worker]",
	Short: "Show priced sessions per day",
	Long:  "Show reconciled sessions with earnings, grouped by day and scheme. With no worker, every worker is included.",
	Args:  cobra.MaximumNArgs(1),
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		snap := l.Snapshot(cmd.Context())
		if snap.Err != nil {
			fmt.Println("⚠️  Event store unreachable, showing empty data")
		}

		rep := l.Report(snap)
		lines := rep.Statement.Lines
		if len(args) == 1 {
			var filtered []payroll.Line
			for _, line := range lines {
				if line.Session.Worker == args[0] {
					filtered = append(filtered, line)
				}
			}
			lines = filtered
		}
		if len(lines) == 0 {
			fmt.Println("No sessions recorded.")
			return nil
		}

		byDay := map[string][]payroll.Line{}
		var days []string
		for _, line := range lines {
			d := line.Session.Date()
			if _, seen := byDay[d]; !seen {
				days = append(days, d)
			}
			byDay[d] = append(byDay[d], line)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(days)))

		for _, day := range days {
			fmt.Printf("📅 %s\n", day)
			fmt.Printf("  %-16s %-8s %-7s %-7s %-7s %-9s %s\n", "WORKER", "SCHEME", "IN", "OUT", "HOURS", "EARNINGS", "STATUS")
			fmt.Println("  " + strings.Repeat("-", 66))
			for _, line := range byDay[day] {
				s := line.Session
				out, hours, earn := "⏳ ...", "-", "-"
				if !s.Open() {
					out = s.End.Format("15:04")
					hours = line.Hours.StringFixed(2)
					earn = "$" + line.Earnings.StringFixed(0)
				}
				fmt.Printf("  %-16s %-8d %-7s %-7s %-7s %-9s %s\n",
					s.Worker, int(s.Scheme), s.Start.Format("15:04"), out, hours, earn, s.Status)
			}
		}

		if len(args) == 1 {
			hours, earnings := rep.Statement.WorkerEarnings(args[0])
			fmt.Printf("\n💰 Total for %s: %s hours, $%s\n", args[0], hours.StringFixed(2), earnings.StringFixed(0))
		}
		return nil
	}),
}
