package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"farmpulse/internal/api/client"
)

func NewSchedulerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scheduler",
		Short:   "Scheduler control commands",
		Aliases: []string{"sched"},
	}

	cmd.AddCommand(newSchedulerStatusCommand())
	cmd.AddCommand(newSchedulerStartCommand())
	cmd.AddCommand(newSchedulerStopCommand())
	cmd.AddCommand(newSchedulerRunCommand())

	return cmd
}

func newSchedulerStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scheduler status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			status, err := c.SchedulerStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %v", err)
			}

			fmt.Printf("Running:      %t\n", status.Running)
			fmt.Printf("Active tasks: %d\n", status.ActiveTasks)
			return nil
		},
	}
}

func newSchedulerStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			status, err := c.StartScheduler()
			if err != nil {
				return fmt.Errorf("failed to start scheduler: %v", err)
			}

			fmt.Printf("Scheduler running: %t\n", status.Running)
			return nil
		},
	}
}

func newSchedulerStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the scheduler loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			status, err := c.StopScheduler()
			if err != nil {
				return fmt.Errorf("failed to stop scheduler: %v", err)
			}

			fmt.Printf("Scheduler running: %t\n", status.Running)
			return nil
		},
	}
}

func newSchedulerRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run [schedule_id]",
		Short: "Execute a schedule immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid schedule id: %v", err)
			}

			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			res, err := c.RunSchedule(uint(id))
			if err != nil {
				return fmt.Errorf("failed to run schedule: %v", err)
			}

			fmt.Printf("Success: %t\n", res.Success)
			fmt.Printf("Message: %s\n", res.Message)
			fmt.Printf("Took:    %dms\n", res.ExecutionTimeMs)
			return nil
		},
	}
}
