package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/ledger"
	"github.com/punchbook/punchbook/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status [worker]",
	Short: "Show who is working, resting or off",
	Args:  cobra.MaximumNArgs(1),
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		snap := l.Snapshot(cmd.Context())
		if snap.Err != nil {
			fmt.Println("⚠️  Event store unreachable, showing empty data")
		}

		if len(args) == 1 {
			printStatus(l.Status(snap, args[0]))
			return nil
		}

		statuses := l.Report(snap).Statuses
		if len(statuses) == 0 {
			fmt.Println("No events recorded yet. Use 'punchbook in <worker>' to punch in.")
			return nil
		}

		fmt.Printf("%-16s %-10s %-10s %s\n", "WORKER", "STATE", "SCHEME", "SINCE")
		fmt.Println(strings.Repeat("-", 50))
		for _, st := range statuses {
			scheme, since := "-", "-"
			if st.State != models.StateOff {
				scheme = fmt.Sprintf("%d", int(st.Scheme))
				since = st.Since.Format("15:04")
			}
			fmt.Printf("%-16s %-10s %-10s %s\n", st.Worker, stateLabel(st.State), scheme, since)
		}
		return nil
	}),
}

func printStatus(st models.WorkerStatus) {
	switch st.State {
	case models.StateWorking:
		fmt.Printf("🟢 %s is working on %s\n", st.Worker, st.Scheme)
		fmt.Printf("Since: %s (%s elapsed)\n", st.Since.Format("15:04:05"), formatDuration(time.Since(st.Since)))
	case models.StateResting:
		fmt.Printf("🟡 %s is on break from %s\n", st.Worker, st.Scheme)
		fmt.Printf("Since: %s\n", st.Since.Format("15:04:05"))
	default:
		fmt.Printf("⚪ %s is off the clock\n", st.Worker)
	}
}

func stateLabel(s models.WorkerState) string {
	switch s {
	case models.StateWorking:
		return "working"
	case models.StateResting:
		return "resting"
	default:
		return "off"
	}
}
