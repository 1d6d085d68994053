package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/ledger"
	"github.com/punchbook/punchbook/internal/models"
)

var inCmd = &cobra.Command{
	Use:   "in [worker]",
	Short: "Clock in on a scheme",
	Long: `Clock in and start a work session on a scheme.

Examples:
  punchbook in alice              # Clock in on scheme 1
  punchbook in alice --scheme 2   # Clock in on scheme 2`,
	Args: cobra.ExactArgs(1),
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		scheme, _ := cmd.Flags().GetInt("scheme")

		event, err := l.ClockIn(cmd.Context(), args[0], models.SchemeID(scheme))
		if err != nil {
			return clockErr(err)
		}

		fmt.Printf("▶️  %s clocked in on %s\n", event.Worker, event.Scheme)
		fmt.Printf("Started at: %s\n", event.At.Format("15:04:05"))
		return nil
	}),
}

var breakCmd = &cobra.Command{
	Use:   "break [worker]",
	Short: "Pause the current work session",
	Args:  cobra.ExactArgs(1),
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		event, err := l.ClockBreak(cmd.Context(), args[0])
		if err != nil {
			return clockErr(err)
		}

		fmt.Printf("⏸️  %s is on break (%s)\n", event.Worker, event.Scheme)
		if s := lastClosedWork(cmd, l, event.Worker); s != nil {
			fmt.Printf("Session duration: %s\n", formatDuration(s.Duration))
		}
		return nil
	}),
}

var outCmd = &cobra.Command{
	Use:   "out [worker]",
	Short: "Clock out",
	Args:  cobra.ExactArgs(1),
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		event, err := l.ClockOut(cmd.Context(), args[0])
		if err != nil {
			return clockErr(err)
		}

		fmt.Printf("⏹️  %s clocked out from %s\n", event.Worker, event.Scheme)
		if s := lastClosedWork(cmd, l, event.Worker); s != nil {
			fmt.Printf("Session duration: %s\n", formatDuration(s.Duration))
		}
		return nil
	}),
}

// clockErr keeps the cooldown rejection friendly instead of error-shaped.
func clockErr(err error) error {
	var cd *ledger.CooldownError
	if errors.As(err, &cd) {
		return fmt.Errorf("too fast, wait %d seconds before the next punch", int(cd.Wait.Seconds()+0.999))
	}
	return err
}

// lastClosedWork re-reads the log and returns the worker's most recently
// closed work session, if any.
func lastClosedWork(cmd *cobra.Command, l *ledger.Ledger, worker string) *models.Session {
	snap := l.Snapshot(cmd.Context())
	if snap.Err != nil {
		return nil
	}
	var last *models.Session
	for _, s := range l.Report(snap).Sessions {
		if s.Worker != worker || s.Kind != models.KindWork || s.Open() {
			continue
		}
		if last == nil || s.Start.After(last.Start) {
			cp := s
			last = &cp
		}
	}
	return last
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}

func init() {
	inCmd.Flags().Int("scheme", 1, "Scheme to log time against")
}
