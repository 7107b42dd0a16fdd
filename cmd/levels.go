package cmd

import (
	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the grade levels in the school data file",
	Long: `List the grade clusters (e.g. Elementary, Middle, High) present in the
school data file. Every other command takes one of these as --level.

Example:
  schoolprofile levels`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withService(func(svc Service) {
			printJSON(svc.GradeLevels())
		})
	},
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}
