package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeTarget string

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Column statistics for a table or query",
	Long: `Run DuckDB's SUMMARIZE over a table or a query: min, max, approx_unique,
avg, std, quartiles, count and null percentage for every column. Metric
columns are VARCHAR, so cast them in a query for numeric statistics.

Examples:
  schoolprofile summarize --table school_data
  schoolprofile summarize --table "SELECT TRY_CAST(ccrpi_score AS DOUBLE) AS ccrpi FROM school_data WHERE grade_cluster = 'High'"`,
	Run: func(cmd *cobra.Command, args []string) {
		if summarizeTarget == "" {
			HandleError(fmt.Errorf("table or query is required"), "Missing parameter")
		}
		withService(func(svc Service) {
			rows, err := svc.ExecuteQuery(fmt.Sprintf("SUMMARIZE %s", summarizeTarget))
			if err != nil {
				HandleError(err, "Failed to execute summarize query")
			}
			printJSON(rows)
		})
	},
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeTarget, "table", "t", "", "Table name or query to summarize (required)")
	_ = summarizeCmd.MarkFlagRequired("table")
	rootCmd.AddCommand(summarizeCmd)
}
