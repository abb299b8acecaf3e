package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkgops/pkgops/internal/config"
	"github.com/pkgops/pkgops/internal/log"
	"github.com/pkgops/pkgops/internal/paths"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "pkgops",
	Short:   "Coordinator for long-running package management operations",
	Long:    `pkgops queues, runs, and observes long-running package management operations: one global FIFO queue, a per-operation log buffer, and a broadcast event stream.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/pkgops/config.yaml)")
	rootCmd.PersistentFlags().Bool("log", false,
		"write a diagnostic log file")

	// Bind flags to viper
	_ = viper.BindPFlag("log.enabled", rootCmd.PersistentFlags().Lookup("log"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("operations.max_auto_retries", defaults.Operations.MaxAutoRetries)
	viper.SetDefault("operations.event_buffer", defaults.Operations.EventBuffer)
	viper.SetDefault("icons.ttl", defaults.Icons.TTL)
	viper.SetDefault("icons.disabled", defaults.Icons.Disabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .pkgops/config.yaml (current directory)
		// 2. ~/.config/pkgops/config.yaml (user config)
		if _, err := os.Stat(".pkgops/config.yaml"); err == nil {
			viper.SetConfigFile(".pkgops/config.yaml")
		} else {
			if dir := paths.ConfigDir(); dir != "" {
				viper.AddConfigPath(dir)
			}
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, run with defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			cobra.CheckErr(err)
		}
	}

	_ = viper.Unmarshal(&cfg)

	initLog()
}

func initLog() {
	if !cfg.Log.Enabled || cfg.Log.Path == "" {
		return
	}
	if _, err := log.Init(cfg.Log.Path); err != nil {
		// Logging is best effort; the process still works without it.
		return
	}
	log.SetEnabled(true)
	log.SetMinLevel(logLevel(cfg.Log.Level))
}

func logLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// reloadConfig re-reads the config file and re-applies settings that are
// safe to change at runtime (currently just the log level).
func reloadConfig() {
	if err := viper.ReadInConfig(); err != nil {
		return
	}
	_ = viper.Unmarshal(&cfg)
	log.SetMinLevel(logLevel(cfg.Log.Level))
	log.Info(log.CatConfig, "config reloaded", "level", cfg.Log.Level)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
