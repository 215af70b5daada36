/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/metraction/ncconf/internal/integrations"
	"github.com/metraction/ncconf/internal/integrations/cache"
	"github.com/metraction/ncconf/internal/integrations/database"
	"github.com/metraction/ncconf/internal/utils"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// command line arguments of command
type CheckArgsType = struct {
	Timeout    time.Duration
	Retries    int
	RetrySleep time.Duration
}

var CheckArgs = CheckArgsType{}

// define command line arguments
func init() {
	rootCmd.AddCommand(checkCmd)

	defaults := model.DefaultSettings().Check
	checkCmd.Flags().DurationVar(&CheckArgs.Timeout, "timeout", utils.DurationOr(EnvOrDefault("check_timeout", ""), defaults.Timeout), "Timeout of each connect attempt")
	checkCmd.Flags().IntVar(&CheckArgs.Retries, "retries", utils.ToNumOr(EnvOrDefault("check_retries", ""), defaults.Retries), "Connect attempts")
	checkCmd.Flags().DurationVar(&CheckArgs.RetrySleep, "retry-sleep", utils.DurationOr(EnvOrDefault("check_retry_sleep", ""), defaults.RetrySleep), "Wait between connect attempts")
}

var checkCmd = &cobra.Command{
	Use:   "check <config.php>",
	Short: "Connect to database and cache",
	Long:  `Connect to the database and cache configured in config.php and report their state`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ExecuteCheck(cmd.Context(), args[0], settings, cmd.ErrOrStderr(), logger)
	},
}

// execute command
func ExecuteCheck(ctx context.Context, path string, settings model.Settings, stderr io.Writer, logger *zerolog.Logger) error {

	logger.Info().Str("config", path).Msg("-----< Config Check >-----")

	config, err := LoadConfig(ctx, path, settings, stderr, logger)
	if err != nil {
		return err
	}

	if config.Database.Kind == model.DbKindSqlite && !utils.FileExists(config.Database.SqlitePath()) {
		logger.Error().
			Str("path", config.Database.SqlitePath()).
			Bool("datadirectory", utils.DirExists(config.Database.DataDirectory)).
			Msg("sqlite database not found")
		return fmt.Errorf("sqlite database not found: %s", config.Database.SqlitePath())
	}

	db, err := database.NewDatabase(config.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	services := []integrations.ServiceInterface{timeoutService{db, settings.Check.Timeout}}

	var kvc *cache.Cache
	if config.Cache != nil {
		if kvc, err = cache.NewCache(*config.Cache, logger); err != nil {
			return err
		}
		defer kvc.Close()
		services = append(services, timeoutService{kvc, settings.Check.Timeout})
	} else {
		logger.Warn().Msg("no redis cache configured")
	}

	elapsed := utils.ElapsedFunc()
	if err := integrations.TryConnectServices(ctx, settings.Check.Retries, settings.Check.RetrySleep, services, logger); err != nil {
		return err
	}

	errs := []error{}
	installed, err := db.Installed(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	logger.Info().
		Str("endpoint", db.Endpoint).
		Str("version", db.Version(ctx)).
		Bool("installed", installed).
		Msg("database")

	if kvc != nil {
		used, peak, system := kvc.UsedMemory(ctx)
		writeErr := kvc.CheckWrite(ctx)
		if writeErr != nil {
			errs = append(errs, writeErr)
		}
		logger.Info().
			Str("endpoint", kvc.Endpoint).
			Str("version", kvc.Version(ctx)).
			Str("mem_used", used).
			Str("mem_peak", peak).
			Str("mem_system", system).
			Bool("writable", writeErr == nil).
			Msg("cache")
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info().Str("elapsed", utils.HumanDeltaMilisec(elapsed())).Msg("Success")
	return nil
}

// limit each connect attempt of a service
type timeoutService struct {
	integrations.ServiceInterface
	timeout time.Duration
}

func (rx timeoutService) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, rx.timeout)
	defer cancel()
	return rx.ServiceInterface.Connect(ctx)
}
