package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScheduleCmd(e *env) *cobra.Command {
	var spec string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the sweep on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if spec == "" {
				spec = e.cfg.SweepCron
			}
			svc, err := e.services()
			if err != nil {
				return err
			}
			log := e.log.Named("schedule")

			c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
			if _, err := c.AddFunc(spec, func() {
				if _, err := svc.Reconciler.Sweep(context.Background()); err != nil {
					log.Error("sweep failed", zap.Error(err))
				}
			}); err != nil {
				return err
			}
			c.Start()
			log.Info("scheduler started", zap.String("cron", spec))

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			<-c.Stop().Done()
			log.Info("scheduler stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "cron spec (defaults to SWEEP_CRON)")
	return cmd
}
