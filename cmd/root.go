package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the merged configuration (flags > env > config file > defaults).
type Config struct {
	DataDir      string `mapstructure:"data_dir"`
	Port         int    `mapstructure:"port"`
	LogLevel     string `mapstructure:"log_level"`
	DistrictName string `mapstructure:"district_name"`
	StateName    string `mapstructure:"state_name"`
	Model        string `mapstructure:"model"`
	DataBaseURL  string `mapstructure:"data_base_url"`
}

const defaultDataBaseURL = "https://raw.githubusercontent.com/johnkeltz/aps-school-profiles/master/resources"

var (
	cfgFile string
	config  Config
	rootCmd = &cobra.Command{
		Use:   "schoolprofile",
		Short: "School Profile - Compare a school to its district and state",
		Long: `School Profile turns the APS school data file into school profiles:
bar charts against district and state averages, trends over time, and
the descriptive text that goes with each chart.

When run without commands, it launches an interactive TUI.
Use subcommands for CLI mode with JSON output.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
		Run: func(cmd *cobra.Command, args []string) {
			LaunchTUI(config)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", "tmpdata/", "Directory containing CSV data files")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default <data-dir>/schoolprofile.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level for <data-dir>/err.log (debug, info, warn, error)")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadConfig reads the optional config file and environment, then
// snapshots everything into config.
func loadConfig() error {
	viper.SetDefault("port", 3000)
	viper.SetDefault("district_name", "Atlanta")
	viper.SetDefault("state_name", "Georgia")
	viper.SetDefault("model", "claude-haiku-4-5")
	viper.SetDefault("data_base_url", defaultDataBaseURL)

	viper.SetEnvPrefix("SCHOOLPROFILE")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("schoolprofile")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(viper.GetString("data_dir"))
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)
	config = cfg
	return nil
}

func currentConfig() Config {
	return config
}

// RootCommand exposes the command tree for tool generation.
func RootCommand() *cobra.Command {
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
