package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/metraction/ncconf/pkg/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// command line arguments of command
type ParseArgsType = struct {
	Format string // output format
}

var ParseArgs = ParseArgsType{}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&ParseArgs.Format, "format", EnvOrDefault("format", "yaml"), "Output format [yaml,json]")
}

var parseCmd = &cobra.Command{
	Use:   "parse <config.php>",
	Short: "Print the extracted connection config",
	Long:  `Print database, cache and url settings extracted from config.php`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ExecuteParse(cmd.Context(), args[0], ParseArgs.Format, settings, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	},
}

// execute command
func ExecuteParse(ctx context.Context, path, format string, settings model.Settings, out, stderr io.Writer, logger *zerolog.Logger) error {

	config, err := LoadConfig(ctx, path, settings, stderr, logger)
	if err != nil {
		return err
	}
	return WriteConfig(out, config, format)
}

func WriteConfig(out io.Writer, config model.Config, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(config)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(config)
	}
	return fmt.Errorf("unknown output format %q", format)
}
