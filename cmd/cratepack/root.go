package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/config"
	"github.com/piwi3910/CratePack/internal/logging"
	"github.com/piwi3910/CratePack/internal/model"
	"github.com/piwi3910/CratePack/internal/project"
)

// recentProjectLimit is how many saved projects the app config remembers.
const recentProjectLimit = 10

// app carries what every command needs once the root pre-run has loaded it.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	defaults  model.Settings
	inventory model.Inventory
	appConfig model.AppConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		logLevel  string
		logFormat string
		dataDir   string
	)

	root := &cobra.Command{
		Use:   "cratepack",
		Short: "3D load planner for pallets, crates and containers",
		Long: `CratePack packs boxes into bins with guillotine or maximal-space
placement, searches box orderings with a genetic optimizer and exports
the resulting load plans as CSV, Excel, PDF or DXF.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Logging.Format = logFormat
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			return a.init(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for inventory, templates and preferences (default ~/.cratepack)")

	root.AddCommand(
		newPackCmd(a),
		newOptimizeCmd(a),
		newCompareCmd(a),
		newGenerateCmd(a),
		newServeCmd(a),
		newTemplateCmd(a),
		newProfileCmd(a),
		newDataCmd(a),
	)
	return root
}

func (a *app) init(cfg *config.Config) error {
	logger, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		return err
	}
	defaults, err := cfg.Settings()
	if err != nil {
		return err
	}
	inv, err := project.LoadInventory(project.InventoryPath(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	appCfg, err := project.LoadAppConfig(project.ConfigPath(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.defaults = defaults
	a.inventory = inv
	a.appConfig = appCfg
	return nil
}

// rememberProject records path in the recent project list.
func (a *app) rememberProject(path string) {
	a.appConfig.AddRecentProject(path, recentProjectLimit)
	if err := project.SaveAppConfig(project.ConfigPath(a.cfg.DataDir), a.appConfig); err != nil {
		a.logger.Warn("could not update recent projects", zap.Error(err))
	}
}
