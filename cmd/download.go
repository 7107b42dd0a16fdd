package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	downloadForce bool

	downloadCmd = &cobra.Command{
		Use:   "download",
		Short: "Download the school data and messages files",
		Long: `Download "school data.csv" and "school messages.csv" into the data
directory. Files that already exist are kept unless --force is given.
The source is the data_base_url setting.

Examples:
  schoolprofile download
  schoolprofile download --force -d ./data`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := currentConfig()
			if err := DownloadData(cfg, downloadForce); err != nil {
				HandleError(err, "Failed to download data")
			}
			fmt.Printf("Data files are in %s\n", cfg.DataDir)
		},
	}
)

func init() {
	downloadCmd.Flags().BoolVar(&downloadForce, "force", false, "Re-download files that already exist")
	rootCmd.AddCommand(downloadCmd)
}
