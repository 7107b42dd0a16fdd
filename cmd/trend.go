package cmd

import (
	"github.com/spf13/cobra"
)

var (
	trendMetric  string
	trendSchool  string
	trendCompare string

	trendCmd = &cobra.Command{
		Use:   "trend",
		Short: "Show a metric over time for a school",
		Long: `Show a metric over every year with data. A school that was renamed or
merged gets one line per name it has reported under. District and state lines
are added for every metric except enrollment.

Examples:
  schoolprofile trend --level Elementary --school "Hope-Hill Elementary School" --metric ela
  schoolprofile trend -l High -s "Grady High School" -m enrollment --compare "Carver High School"`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			metric := parseMetric(trendMetric)
			withService(func(svc Service) {
				series, err := svc.Trend(gradeLevel, metric, trendSchool, trendCompare)
				if err != nil {
					HandleError(err, "Failed to build trend")
				}
				printJSON(series)
			})
		},
	}
)

func init() {
	trendCmd.Flags().StringVarP(&gradeLevel, "level", "l", "Elementary", "Grade level (see 'levels')")
	trendCmd.Flags().StringVarP(&trendSchool, "school", "s", "", "School name (required)")
	trendCmd.Flags().StringVar(&trendCompare, "compare", "", "Optional comparison school")
	trendCmd.Flags().StringVarP(&trendMetric, "metric", "m", "ela", "Metric column")
	_ = trendCmd.MarkFlagRequired("school")
	rootCmd.AddCommand(trendCmd)
}
