package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/ledger"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the per-worker daily rollup",
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		snap := l.Snapshot(cmd.Context())
		if snap.Err != nil {
			fmt.Println("⚠️  Event store unreachable, showing empty data")
		}

		summaries := l.Report(snap).Summaries
		if len(summaries) == 0 {
			fmt.Println("No closed sessions yet.")
			return nil
		}

		fmt.Printf("%-12s %-16s %-9s %-9s %-10s %-10s %s\n",
			"DATE", "WORKER", "FIRST IN", "LAST OUT", "NET WORK", "NET REST", "SESSIONS")
		fmt.Println(strings.Repeat("-", 78))
		for _, s := range summaries {
			fmt.Printf("%-12s %-16s %-9s %-9s %-10s %-10s %d\n",
				s.Date,
				s.Worker,
				s.FirstStart.Format("15:04"),
				s.LastEnd.Format("15:04"),
				formatDuration(s.NetWork),
				formatDuration(s.NetRest),
				s.Sessions)
		}
		return nil
	}),
}
