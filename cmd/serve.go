package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the HTTP web server with HTMX interface.

The web server shows the same profiles as the TUI in the browser, serves the
profile matrices as JSON under /api, and exposes Prometheus metrics at /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run the server on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func runServe() {
	cfg := currentConfig()
	svc, cleanup, err := InitService(cfg)
	if err != nil {
		HandleError(err, "Failed to initialize data")
	}
	defer cleanup()

	fmt.Printf("Starting School Profile web server...\n")
	fmt.Printf("Data directory: %s\n", cfg.DataDir)
	fmt.Printf("Port: %d\n\n", cfg.Port)

	if err := StartServer(svc, cfg); err != nil {
		log.Fatalf("Server failed: %v\n", err)
	}
}
