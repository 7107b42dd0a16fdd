package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	overviewSchool  string
	overviewCompare string
	overviewYears   []string

	overviewCmd = &cobra.Command{
		Use:   "overview",
		Short: "Write an AI overview paragraph for a school profile",
		Long: `Build a school profile and ask Claude for a short plain-language overview
of it. Overviews are cached in DuckDB per selection.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  schoolprofile overview -l Elementary -s "Hope-Hill Elementary School"`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			years, err := parseYears(overviewYears)
			if err != nil {
				HandleError(err, "Invalid year")
			}
			withService(func(svc Service) {
				p, err := svc.Profile(ProfileRequest{
					GradeLevel: gradeLevel,
					School:     overviewSchool,
					Compare:    overviewCompare,
					Years:      years,
				})
				if err != nil {
					HandleError(err, "Failed to build profile")
				}

				ov, err := InitOverviewer(svc, currentConfig())
				if err != nil {
					HandleError(err, "Failed to initialize AI overview")
				}
				text, err := ov.Overview(context.Background(), p)
				if err != nil {
					HandleError(err, "Failed to generate overview")
				}
				fmt.Println(text)
			})
		},
	}
)

func init() {
	overviewCmd.Flags().StringVarP(&gradeLevel, "level", "l", "Elementary", "Grade level (see 'levels')")
	overviewCmd.Flags().StringVarP(&overviewSchool, "school", "s", "", "School name (required)")
	overviewCmd.Flags().StringVar(&overviewCompare, "compare", "", "Optional comparison school")
	overviewCmd.Flags().StringArrayVarP(&overviewYears, "year", "y", nil, "Year for a chart family, family=year (repeatable)")
	_ = overviewCmd.MarkFlagRequired("school")
	rootCmd.AddCommand(overviewCmd)
}
