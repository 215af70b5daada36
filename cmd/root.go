/*
Copyright 2025 NAME HERE EMAIL ADDRESS
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metraction/ncconf/internal/logging"
	"github.com/metraction/ncconf/internal/utils"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultCfgFile = "./.ncconf.yaml"

// command line arguments of root command
type RootArgsType = struct {
	CfgFile     string
	LogType     string
	LogLevel    string
	PhpFallback bool
	Glob        bool
}

var EnvOrDefault = utils.EnvOrDefaultFunc("NCCONF", ".env") // return function that return envvar <PREFIX>_name or given default value
var RootArgs = RootArgsType{}
var settings = model.DefaultSettings()
var logger *zerolog.Logger

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ncconf",
	Short: "Nextcloud config.php reader",
	Long:  `Read database and cache connection settings from a Nextcloud config.php`,

	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(cmd); err != nil {
			return err
		}
		logger = logging.NewLogger(settings.LogLevel, settings.LogType)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	logger = logging.NewLogger("info", "console")

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg(rootCmd.Name())
		os.Exit(1)
	}
}

// read settings file (optional) with env substitution, then env and flags on top, and validate
func initConfig(cmd *cobra.Command) error {

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NCCONF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	defaults := model.DefaultSettings()
	v.SetDefault("check.timeout", defaults.Check.Timeout)
	v.SetDefault("check.retries", defaults.Check.Retries)
	v.SetDefault("check.retry-sleep", defaults.Check.RetrySleep)

	for _, name := range []string{"loglevel", "logtype", "php-fallback", "glob"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	for _, name := range []string{"timeout", "retries", "retry-sleep"} {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag("check."+name, flag); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfgFilePath := RootArgs.CfgFile
	if cfgFilePath == "" && utils.FileExists(defaultCfgFile) {
		cfgFilePath = defaultCfgFile
	}
	if cfgFilePath != "" {
		if err := readConfig(v, cfgFilePath); err != nil {
			return err
		}
	}

	result := model.Settings{}
	if err := v.Unmarshal(&result); err != nil {
		return fmt.Errorf("unable to decode settings: %w", err)
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	settings = result
	return nil
}

// Open config file for ENV variables substitution
func readConfig(v *viper.Viper, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("settings file: %w", err)
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("settings file: %w", err)
	}
	if err := v.ReadConfig(strings.NewReader(os.ExpandEnv(string(content)))); err != nil {
		return fmt.Errorf("settings file %s: %w", path, err)
	}
	return nil
}

func init() {
	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&RootArgs.CfgFile, "config", EnvOrDefault("config", ""), "settings file (default is ./.ncconf.yaml)")
	rootCmd.PersistentFlags().StringVar(&RootArgs.LogType, "logtype", EnvOrDefault("logtype", "console"), "Log output format [console,json]")
	rootCmd.PersistentFlags().StringVar(&RootArgs.LogLevel, "loglevel", EnvOrDefault("loglevel", "info"), "Loglevel [debug,info,warn,error]")
	rootCmd.PersistentFlags().BoolVar(&RootArgs.PhpFallback, "php-fallback", utils.ToBool(EnvOrDefault("php-fallback", "")), "Run php when config.php cannot be evaluated statically")
	rootCmd.PersistentFlags().BoolVar(&RootArgs.Glob, "glob", utils.ToBool(EnvOrDefault("glob", "")), "Merge *.config.php files next to config.php")
}
