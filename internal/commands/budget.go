package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/ledger"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show each scheme's budget envelope",
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		snap := l.Snapshot(cmd.Context())
		if snap.Err != nil {
			fmt.Println("⚠️  Event store unreachable, showing empty data")
		}

		for _, b := range l.Report(snap).Statement.Budgets {
			state := "✅ within budget"
			if b.Capped {
				state = "⚠️ capped"
			}
			fmt.Printf("%s — %s\n", b.Scheme, state)
			fmt.Printf("  hours: %s   rate: $%s/h   spent: $%s / $%s\n",
				b.TotalHours.StringFixed(2),
				b.EffectiveRate.StringFixed(2),
				b.TotalSpent.StringFixed(0),
				b.Limit.StringFixed(0))
			fmt.Printf("  %s\n\n", budgetBar(b.TotalSpent.InexactFloat64(), b.Limit.InexactFloat64(), 40))
		}
		return nil
	}),
}

func budgetBar(spent, limit float64, width int) string {
	ratio := 0.0
	if limit > 0 {
		ratio = spent / limit
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
