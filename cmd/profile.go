package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	profileSchool  string
	profileCompare string
	profileYears   []string
	profileFormat  string
	profileWidth   int

	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Build the profile for a school",
		Long: `Build the full profile for a school: every chart matrix with its colours
and number format, the descriptive text for each chart, advisories, and the
years each year selector offers.

Each chart family defaults to its latest year; override with --year family=year.
Families: ccrpi, miles, sgp, bto, att, grad, climate. Use 3YearAvg for the
three-year average.

Examples:
  schoolprofile profile --level Elementary --school "Hope-Hill Elementary School"
  schoolprofile profile -l High -s "Grady High School" --compare "Carver High School"
  schoolprofile profile -l Middle -s "Inman Middle School" --year ccrpi=3YearAvg --format yaml
  schoolprofile profile -l Middle -s "Inman Middle School" --format text`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			years, err := parseYears(profileYears)
			if err != nil {
				HandleError(err, "Invalid year")
			}
			req := ProfileRequest{
				GradeLevel: gradeLevel,
				School:     profileSchool,
				Compare:    profileCompare,
				Years:      years,
			}

			withService(func(svc Service) {
				p, err := svc.Profile(req)
				if err != nil {
					HandleError(err, "Failed to build profile")
				}

				switch profileFormat {
				case "json":
					printJSON(p)
				case "yaml":
					out, err := yaml.Marshal(p)
					if err != nil {
						HandleError(err, "Failed to encode YAML")
					}
					fmt.Print(string(out))
				case "text":
					out, err := RenderProfile(p, profileWidth)
					if err != nil {
						HandleError(err, "Failed to render profile")
					}
					fmt.Println(out)
				default:
					HandleError(fmt.Errorf("unknown format %q", profileFormat), "Invalid format")
				}
			})
		},
	}
)

func init() {
	profileCmd.Flags().StringVarP(&gradeLevel, "level", "l", "Elementary", "Grade level (see 'levels')")
	profileCmd.Flags().StringVarP(&profileSchool, "school", "s", "", "School name as listed by 'schools' (required)")
	profileCmd.Flags().StringVar(&profileCompare, "compare", "", "Optional comparison school")
	profileCmd.Flags().StringArrayVarP(&profileYears, "year", "y", nil, "Year for a chart family, family=year (repeatable)")
	profileCmd.Flags().StringVarP(&profileFormat, "format", "f", "json", "Output format: json, yaml or text")
	profileCmd.Flags().IntVarP(&profileWidth, "width", "w", 100, "Width for text output")
	_ = profileCmd.MarkFlagRequired("school")
	rootCmd.AddCommand(profileCmd)
}
