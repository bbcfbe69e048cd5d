/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/alumnet/apiserver/config"
	"github.com/alumnet/apiserver/internal/db"
	"github.com/alumnet/apiserver/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateDownSteps int

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadForMigrate()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()
		return db.MigrateUp(cmd.Context(), cfg.Database, logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (all of them unless --steps is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadForMigrate()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()
		return db.MigrateDown(cmd.Context(), cfg.Database, migrateDownSteps, logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 0, "number of migrations to roll back (0 = all)")
}

func loadForMigrate() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
