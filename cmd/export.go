package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	exportSchool  string
	exportCompare string
	exportYears   []string
	exportOutput  string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export a school profile to an Excel workbook",
		Long: `Build a school profile and write it to an .xlsx workbook: one sheet per
chart with its values, a narratives sheet, and a summary sheet with the
selection and advisories.

Examples:
  schoolprofile export -l Elementary -s "Hope-Hill Elementary School" -o hope-hill.xlsx
  schoolprofile export -l High -s "Grady High School" --compare "Carver High School" -o grady.xlsx`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			years, err := parseYears(exportYears)
			if err != nil {
				HandleError(err, "Invalid year")
			}
			withService(func(svc Service) {
				p, err := svc.Profile(ProfileRequest{
					GradeLevel: gradeLevel,
					School:     exportSchool,
					Compare:    exportCompare,
					Years:      years,
				})
				if err != nil {
					HandleError(err, "Failed to build profile")
				}
				if err := ExportXLSX(p, exportOutput); err != nil {
					HandleError(err, "Failed to export profile")
				}
				fmt.Printf("Wrote %s\n", exportOutput)
			})
		},
	}
)

func init() {
	exportCmd.Flags().StringVarP(&gradeLevel, "level", "l", "Elementary", "Grade level (see 'levels')")
	exportCmd.Flags().StringVarP(&exportSchool, "school", "s", "", "School name (required)")
	exportCmd.Flags().StringVar(&exportCompare, "compare", "", "Optional comparison school")
	exportCmd.Flags().StringArrayVarP(&exportYears, "year", "y", nil, "Year for a chart family, family=year (repeatable)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "profile.xlsx", "Output workbook path")
	_ = exportCmd.MarkFlagRequired("school")
	rootCmd.AddCommand(exportCmd)
}
