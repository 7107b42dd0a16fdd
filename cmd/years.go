package cmd

import (
	"github.com/spf13/cobra"
)

var (
	yearsMetric string
	yearsCmd    = &cobra.Command{
		Use:   "years",
		Short: "List the years with data for a metric",
		Long: `List the years that have data for a metric at a grade level, ascending,
with the three-year average last. These are the choices a year selector offers.

Examples:
  schoolprofile years --level Elementary --metric ccrpi_score
  schoolprofile years --level High --metric grad_rate`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			metric := parseMetric(yearsMetric)
			withService(func(svc Service) {
				years, err := svc.Years(gradeLevel, metric)
				if err != nil {
					HandleError(err, "Failed to list years")
				}
				printJSON(years)
			})
		},
	}
)

func init() {
	yearsCmd.Flags().StringVarP(&gradeLevel, "level", "l", "Elementary", "Grade level (see 'levels')")
	yearsCmd.Flags().StringVarP(&yearsMetric, "metric", "m", "ccrpi_score", "Metric column (e.g. ela, math, attend)")
	rootCmd.AddCommand(yearsCmd)
}
