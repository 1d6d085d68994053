package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/export"
	"github.com/punchbook/punchbook/internal/ledger"
	"github.com/punchbook/punchbook/internal/store"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Password-gated maintenance of the event log",
}

// checkPassword gates the admin subcommands with the shared password
// from the config. This is deliberately the whole auth story.
func checkPassword(cmd *cobra.Command, cfg *config.Config) error {
	pwd, _ := cmd.Flags().GetString("password")
	if pwd != cfg.Admin.Password {
		return errors.New("wrong admin password")
	}
	return nil
}

var adminExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the full wage report as JSON",
	Args:  cobra.ExactArgs(1),
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		if err := checkPassword(cmd, cfg); err != nil {
			return err
		}

		snap := l.Snapshot(cmd.Context())
		if snap.Err != nil {
			return fmt.Errorf("event store unavailable: %w", snap.Err)
		}

		rep := l.Report(snap)
		if err := export.ToJSON(args[0], rep.Statement, rep.Summaries); err != nil {
			return err
		}
		fmt.Printf("📦 Exported %d sessions to %s\n", len(rep.Statement.Lines), args[0])
		return nil
	}),
}

var adminImportCmd = &cobra.Command{
	Use:   "import [csv-path]",
	Short: "Replace the full event log from a CSV file",
	Long: `Replace the full event log with the rows of a CSV file. The payload
must match the event-log schema and normalize cleanly, or nothing is
written. The overwrite is rejected if the log changed since it was
loaded, unless --force is given.`,
	Args: cobra.ExactArgs(1),
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		if err := checkPassword(cmd, cfg); err != nil {
			return err
		}

		table, err := store.ReadCSVFile(args[0])
		if err != nil {
			return fmt.Errorf("read import payload: %w", err)
		}

		snap := l.Snapshot(cmd.Context())
		if snap.Err != nil {
			return fmt.Errorf("event store unavailable: %w", snap.Err)
		}
		expected := snap.Rows
		if force, _ := cmd.Flags().GetBool("force"); force {
			expected = -1
		}

		if err := l.AdminOverwrite(cmd.Context(), table, expected); err != nil {
			return err
		}
		fmt.Printf("✅ Event log replaced with %d rows (verified)\n", len(table.Rows))
		return nil
	}),
}

var adminLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the raw event log, newest first",
	Run: withLedger(func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error {
		if err := checkPassword(cmd, cfg); err != nil {
			return err
		}

		snap := l.Snapshot(cmd.Context())
		if snap.Err != nil {
			fmt.Println("⚠️  Event store unreachable, showing empty data")
		}
		if len(snap.Anomalies) > 0 {
			fmt.Printf("⚠️  %d malformed rows skipped\n", len(snap.Anomalies))
		}

		fmt.Printf("%-5s %-16s %-8s %-10s %s\n", "ROW", "WORKER", "SCHEME", "ACTION", "TIME")
		fmt.Println(strings.Repeat("-", 62))
		for i := len(snap.Events) - 1; i >= 0; i-- {
			e := snap.Events[i]
			fmt.Printf("%-5d %-16s %-8d %-10s %s\n",
				e.Order, e.Worker, int(e.Scheme), e.Action, e.At.Format("2006-01-02 15:04:05"))
		}
		return nil
	}),
}

func init() {
	adminCmd.PersistentFlags().StringP("password", "p", "", "Admin password")
	adminImportCmd.Flags().Bool("force", false, "Skip the row-count precondition")

	adminCmd.AddCommand(adminExportCmd)
	adminCmd.AddCommand(adminImportCmd)
	adminCmd.AddCommand(adminLogCmd)
}
