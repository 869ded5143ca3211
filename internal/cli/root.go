// Package cli is the backoffice command line: the HTTP server plus a few
// maintenance commands over the same services.
package cli

import (
	"fmt"
	"os"
	"strings"

	intconfig "backoffice/internal/config"
	"backoffice/internal/utils"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.1.0-dev"
	Commit  = "unknown"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Academic back office service",
	Long: `Backend of the academic back office: course-version management,
student surveys and financial reports.

Configuration comes from an optional YAML file (--config) overlaid with
environment variables such as APP_ADDR, DB_DSN and JWT_SECRET.`,
	Version:       Version + " (" + Commit + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to YAML configuration file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// loadEnv reads configuration and applies the logging overrides.
func loadEnv() (intconfig.Env, error) {
	env, err := intconfig.Load(cfgFile)
	if err != nil {
		return env, fmt.Errorf("failed to load config: %w", err)
	}
	if strings.TrimSpace(logLevel) != "" {
		env.LogLevel = logLevel
	}
	if strings.TrimSpace(logFormat) != "" {
		env.LogFormat = logFormat
	}
	utils.InitLogger(env.LogLevel, env.LogFormat)
	return env, nil
}
