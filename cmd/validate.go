package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the school data file for malformed rows",
	Long: `Check every row of the school data file against the row schema (required
identity columns, year format, numeric metric cells, known beat-the-odds
status) and check that no school name or short name matches more than one
row for a grade level and year.

Exits with status 1 when any problem is found.

Examples:
  schoolprofile validate
  schoolprofile validate --json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withService(func(svc Service) {
			issues, err := svc.Validate()
			if err != nil {
				HandleError(err, "Failed to validate data")
			}

			if validateJSON {
				printJSON(issues)
			} else {
				printIssues(issues)
			}
			if len(issues) > 0 {
				os.Exit(1)
			}
		})
	},
}

func printIssues(issues []ValidationIssue) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if len(issues) == 0 {
		fmt.Println(green("✓"), "school data is valid")
		return
	}
	for _, issue := range issues {
		where := fmt.Sprintf("row %d", issue.Row)
		if issue.School != "" {
			where += fmt.Sprintf(" (%s %s)", issue.School, issue.Year)
		}
		fmt.Printf("%s %s %s: %s\n", red("✗"), dim(where), issue.Field, issue.Message)
	}
	fmt.Printf("\n%s\n", red(fmt.Sprintf("%d problem(s) found", len(issues))))
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print problems as JSON")
	rootCmd.AddCommand(validateCmd)
}
