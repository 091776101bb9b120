package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/workbasehq/workbase/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the date-based automation batch once",
	Long: `Evaluates every active automation with a date_reached trigger against its
collection's records and prints a summary of the outcome counters. Automations
that already ran successfully for a record today are counted as skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := bootstrap()
		if err != nil {
			return err
		}
		defer engine.Close()
		defer logger.Sync() // best effort

		report, err := engine.Runner.RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOTAL\tEXECUTED\tSKIPPED\tFAILED")
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", report.Total, report.Executed, report.Skipped, report.Failed)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
