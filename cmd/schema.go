package cmd

import (
	"github.com/spf13/cobra"
)

// SchemaOutput represents the schema information for a table
type SchemaOutput struct {
	TableName   string       `json:"table_name"`
	ColumnCount int          `json:"column_count"`
	Columns     []ColumnInfo `json:"columns"`
}

var schemaTables = []string{"school_data", "school_messages", "ai_summary_cache"}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Describe the DuckDB tables",
	Long: `Describe the tables of the local DuckDB database: the loaded school data
and messages, and the cache of AI overviews.

Example:
  schoolprofile schema`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withService(func(svc Service) {
			schemas := make([]SchemaOutput, 0, len(schemaTables))
			for _, table := range schemaTables {
				cols, err := svc.TableSchema(table)
				if err != nil {
					// Skip tables that don't exist
					continue
				}
				schemas = append(schemas, SchemaOutput{TableName: table, ColumnCount: len(cols), Columns: cols})
			}
			printJSON(schemas)
		})
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
