package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/metraction/ncconf/pkg/dsn"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// command line arguments of command
type UriArgsType = struct {
	ShowPassword bool
	DriverDsn    bool // go-sql-driver form for mysql
}

var UriArgs = UriArgsType{}

func init() {
	rootCmd.AddCommand(uriCmd)

	uriCmd.Flags().BoolVar(&UriArgs.ShowPassword, "show-password", false, "Print passwords instead of ***")
	uriCmd.Flags().BoolVar(&UriArgs.DriverDsn, "driver-dsn", false, "Print mysql as go-sql-driver dsn, user:pass@tcp(host:port)/db")
}

var uriCmd = &cobra.Command{
	Use:   "uri <config.php>",
	Short: "Print database and cache connection uris",
	Long:  `Print database and cache connection uris, passwords are masked unless --show-password is given`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ExecuteURI(cmd.Context(), args[0], UriArgs, settings, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	},
}

// execute command
func ExecuteURI(ctx context.Context, path string, args UriArgsType, settings model.Settings, out, stderr io.Writer, logger *zerolog.Logger) error {

	config, err := LoadConfig(ctx, path, settings, stderr, logger)
	if err != nil {
		return err
	}
	mask := lo.Ternary(args.ShowPassword, func(uri string) string { return uri }, dsn.Mask)

	dbURI := dsn.DatabaseURI(config.Database)
	fmt.Fprintf(out, "%-9s %s\n", "database", mask(dbURI))
	if args.DriverDsn && config.Database.Kind == model.DbKindMysql {
		fmt.Fprintf(out, "%-9s %s\n", "dsn", maskDriverDsn(dsn.MySQLDSN(config.Database, ""), config.Database, args.ShowPassword))
	}
	fmt.Fprintf(out, "%-9s %s\n", "endpoint", dsn.Endpoint(dbURI, "localhost"))

	if config.Cache != nil {
		cacheURI := dsn.CacheURI(*config.Cache)
		fmt.Fprintf(out, "%-9s %s\n", "cache", mask(cacheURI))
		for _, node := range config.Cache.Nodes() {
			fmt.Fprintf(out, "%-9s %s\n", "node", nodeAddr(node))
		}
	}
	if config.OverwriteURL != nil {
		fmt.Fprintf(out, "%-9s %s\n", "url", *config.OverwriteURL)
	}
	return nil
}

// the driver dsn carries the password verbatim, it is rendered again without it
func maskDriverDsn(driverDsn string, db model.DatabaseConfig, show bool) string {
	if show || db.Password == nil {
		return driverDsn
	}
	db.Password = lo.ToPtr("***")
	return dsn.MySQLDSN(db, "")
}

func nodeAddr(node model.Endpoint) string {
	if node.Host.IsSocket() {
		return node.Host.String()
	}
	if node.Port == nil {
		return node.Host.Address
	}
	return fmt.Sprintf("%s:%d", lo.Ternary(node.Host.IsIPv6(), "["+node.Host.Address+"]", node.Host.Address), *node.Port)
}
