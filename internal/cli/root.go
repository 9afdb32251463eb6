// internal/cli/root.go
package golmbench

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "golmbench",
	Short: "golmbench — benchmark local LLM inference servers from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		for _, name := range []string{"debug", "synthetic", "strict", "plain"} {
			if !cmd.Flags().Changed(name) {
				val := viper.GetBool(name)
				_ = cmd.Flags().Set(name, strconv.FormatBool(val))
			}
		}
		if !cmd.Flags().Changed("logFile") {
			_ = cmd.Flags().Set("logFile", viper.GetString("logFile"))
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ApplyDefaults()
		appconfig.ApplyParameterTemplates(&cfg)
		cfg.ConfigPath = cfgFile
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("synthetic", false, "fabricate benchmark results instead of calling a host")
	rootCmd.PersistentFlags().Bool("strict", false, "treat unreachable hosts and missing token counts as errors")
	rootCmd.PersistentFlags().Bool("plain", false, "disable the live progress view")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("synthetic", rootCmd.PersistentFlags().Lookup("synthetic"))
	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	_ = viper.BindPFlag("plain", rootCmd.PersistentFlags().Lookup("plain"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file and checks it against the schema.
// A missing file at the default path is fine; the defaults cover it.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) && cfgFile == appconfig.DefaultConfigPath {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(viper.ConfigFileUsed())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := appconfig.ValidateBytes(data); err != nil {
		return fmt.Errorf("invalid config %s: %w", viper.ConfigFileUsed(), err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SyntheticEnabled returns true if synthetic result mode is enabled.
func SyntheticEnabled() bool { return viper.GetBool("synthetic") }

// StrictEnabled returns true if strict mode is enabled.
func StrictEnabled() bool { return viper.GetBool("strict") }

// PlainEnabled returns true if the live progress view is disabled.
func PlainEnabled() bool { return viper.GetBool("plain") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
