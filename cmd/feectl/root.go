package main

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/bootstrap"
	"collegefee_backend/internals/configs"
	database "collegefee_backend/internals/databases"
)

// env is what every subcommand needs; it is built lazily so `token` works without a database.
type env struct {
	cfg configs.AppConfig
	log *zap.Logger
	db  *gorm.DB
}

func (e *env) open() error {
	if e.db != nil {
		return nil
	}
	db, err := database.ConnectDB(e.cfg.DB, e.log)
	if err != nil {
		return err
	}
	e.db = db
	return nil
}

func (e *env) services() (*bootstrap.Services, error) {
	if err := e.open(); err != nil {
		return nil, err
	}
	return bootstrap.Build(e.cfg, e.db, e.log)
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = e.log.Sync()
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "feectl",
		Short:         "College fee service operations",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configs.LoadEnv()
			e.cfg = configs.Load()
			e.log = configs.NewLogger(e.cfg.LogLevel, e.cfg.Env).Named("feectl")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}
	root.AddCommand(
		newMigrateCmd(e),
		newBulkAssignCmd(e),
		newSweepCmd(e),
		newScheduleCmd(e),
		newSeedCmd(e),
		newTokenCmd(e),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
