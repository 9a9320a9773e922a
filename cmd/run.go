package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/keroloshany47/retail-etl/pipeline"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Runs every stage in order, stopping at the first failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := initializeConfigAndLogger("driver")
			if err != nil {
				return err
			}

			d, err := pipeline.NewDriver(os.Stdout, log)
			if err != nil {
				return err
			}
			return d.Run(cmd.Context())
		},
	}
}

func newScheduleCmd() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Runs the full pipeline on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger("scheduler")
			if err != nil {
				return err
			}
			if spec == "" {
				spec = cfg.Schedule.Cron
			}

			s := &pipeline.Scheduler{
				Spec: spec,
				Job: func(ctx context.Context) error {
					d, err := pipeline.NewDriver(os.Stdout, log)
					if err != nil {
						return err
					}
					return d.Run(ctx)
				},
				Logger: log,
			}
			if err := s.Start(cmd.Context()); err != nil {
				log.Error(fmt.Sprintf("Error running scheduler: %v", err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "cron spec overriding schedule.cron")
	return cmd
}
