package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/punchbook/punchbook/internal/config"
	"github.com/punchbook/punchbook/internal/ledger"
	"github.com/punchbook/punchbook/internal/logging"
	"github.com/punchbook/punchbook/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "punchbook",
	Short: "A punch-clock and wage ledger for small crews",
	Long: `punchbook records clock-in/break/clock-out events against budget-capped
project schemes and rebuilds sessions, wages and daily summaries from the
event log on every read.`,
}

// withLedger loads the config, builds the logger and store, and hands a
// ready ledger to the command body. Errors are printed, never panicked:
// a broken store still leaves the CLI responsive.
func withLedger(fn func(cmd *cobra.Command, args []string, l *ledger.Ledger, cfg *config.Config) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		log, err := logging.New(cfg.Log)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer log.Sync()

		st, err := store.Open(cfg.Store)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer st.Close()

		if err := fn(cmd, args, ledger.New(st, cfg, log), cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// SetVersion sets the build information shown by the version command.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("punchbook %s (commit %s, built %s)\n", version, commit, date)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default ~/.punchbook/config.yaml)")

	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(budgetCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(versionCmd)
}
