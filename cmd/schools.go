package cmd

import (
	"github.com/spf13/cobra"
)

var (
	gradeLevel string
	schoolsCmd = &cobra.Command{
		Use:   "schools [prefix]",
		Short: "List schools for a grade level",
		Long: `List the schools offered by the school filter for a grade level: every
school reporting in the latest year, without the district and state rows.
An optional prefix narrows the list (case-insensitive).

Examples:
  schoolprofile schools --level Elementary
  schoolprofile schools --level High "Grady"`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			withService(func(svc Service) {
				schools, err := svc.Schools(gradeLevel, prefix)
				if err != nil {
					HandleError(err, "Failed to list schools")
				}
				printJSON(schools)
			})
		},
	}
)

func init() {
	schoolsCmd.Flags().StringVarP(&gradeLevel, "level", "l", "Elementary", "Grade level (see 'levels')")
	rootCmd.AddCommand(schoolsCmd)
}
