package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queryString string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the school data tables (DuckDB SQL)",
	Long: `Execute a DuckDB SQL query against the loaded tables. The school data
file is loaded as school_data (all columns VARCHAR, empty cells NULL) and the
advisory messages as school_messages.

Examples:
  schoolprofile query --sql "SELECT DISTINCT grade_cluster FROM school_data"
  schoolprofile query --sql "SELECT school, year, ccrpi_score FROM school_data WHERE schoolname = 'Atlanta'"
  schoolprofile query --sql "SHOW TABLES"`,
	Run: func(cmd *cobra.Command, args []string) {
		if queryString == "" {
			HandleError(fmt.Errorf("query is required"), "Missing query parameter")
		}
		withService(func(svc Service) {
			rows, err := svc.ExecuteQuery(queryString)
			if err != nil {
				HandleError(err, "Failed to execute query")
			}
			printJSON(rows)
		})
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryString, "sql", "q", "", "SQL query to execute (required)")
	_ = queryCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(queryCmd)
}
