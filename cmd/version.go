/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/metraction/ncconf/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "ncconf version",
	Long:  `Display ncconf version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ncconf version %s (%s, %s)\n", version.Version, version.BuildTimestamp, version.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
