package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"farmpulse/internal/cli/commands"
)

var rootCmd = &cobra.Command{
	Use:   "farmpulse",
	Short: "FarmPulse CLI - recurring report scheduler operations",
	Long: `FarmPulse CLI operates the recurring report scheduler of a running
farmpulse daemon: inspect schedules, execution history and delivery
statistics, and trigger or control the scheduler.`,
}

func init() {
	rootCmd.AddCommand(commands.NewSchedulerCommand())
	rootCmd.AddCommand(commands.NewScheduleCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
