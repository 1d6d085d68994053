package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/ledger"
	"github.com/punchbook/punchbook/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live crew board",
	Long:  "Open a live board showing who is on the clock and how much of each scheme's budget is spent. Reloads the event log every second.",
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		fetch := func() (ledger.Report, error) {
			snap := l.Snapshot(context.Background())
			if snap.Err != nil {
				return ledger.Report{}, fmt.Errorf("load event log: %w", snap.Err)
			}
			return l.Report(snap), nil
		}
		return tui.RunBoard(fetch)
	}),
}
