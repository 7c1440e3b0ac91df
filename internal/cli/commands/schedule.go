package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"farmpulse/internal/api/client"
)

func NewScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule",
		Short:   "Report schedule inspection commands",
		Aliases: []string{"schedules", "s"},
	}

	cmd.AddCommand(newScheduleListCommand())
	cmd.AddCommand(newScheduleHistoryCommand())
	cmd.AddCommand(newScheduleAnalyticsCommand())

	return cmd
}

func newScheduleListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List report schedules",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			scheds, err := c.ListSchedules()
			if err != nil {
				return fmt.Errorf("failed to list schedules: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tFARM\tTYPE\tFREQUENCY\tACTIVE\tNEXT RUN\tRECIPIENTS")
			for _, s := range scheds {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%t\t%s\t%s\n",
					s.ID,
					s.Name,
					s.FarmID,
					s.ReportType,
					s.Frequency,
					s.IsActive,
					s.NextRun.Format(time.RFC3339),
					strings.Join(s.Recipients, ","),
				)
			}
			return w.Flush()
		},
	}
}

func newScheduleHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [schedule_id]",
		Short: "Show execution history for a schedule",
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

			entries, err := c.ScheduleHistory(uint(id), limit)
			if err != nil {
				return fmt.Errorf("failed to get history: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTATUS\tSENT AT\tRECIPIENTS\tSIZE\tERROR")
			for _, e := range entries {
				sentAt := ""
				if e.SentAt != nil {
					sentAt = e.SentAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					e.RunID,
					e.Status,
					sentAt,
					e.RecipientCount,
					e.FileSizeBytes,
					e.ErrorMessage,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	return cmd
}

func newScheduleAnalyticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "analytics [schedule_id]",
		Short:   "Show rolling delivery statistics for a schedule",
		Aliases: []string{"stats"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid schedule id: %v", err)
			}

			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			snap, err := c.ScheduleAnalytics(uint(id))
			if err != nil {
				return fmt.Errorf("failed to get analytics: %v", err)
			}

			fmt.Printf("Total generated:      %d\n", snap.TotalGenerated)
			fmt.Printf("Total sent:           %d\n", snap.TotalSent)
			fmt.Printf("Total failed:         %d\n", snap.TotalFailed)
			fmt.Printf("Success rate:         %.1f%%\n", snap.SuccessRatePercent)
			fmt.Printf("Avg generation time:  %.0fms\n", snap.AverageGenerationTimeMs)
			fmt.Printf("Avg file size:        %.0f bytes\n", snap.AverageFileSizeBytes)
			if snap.LastGeneratedAt != nil {
				fmt.Printf("Last generated:       %s\n", snap.LastGeneratedAt.Format(time.RFC3339))
			}
			if snap.LastFailedAt != nil {
				fmt.Printf("Last failed:          %s\n", snap.LastFailedAt.Format(time.RFC3339))
				fmt.Printf("Last failure reason:  %s\n", snap.LastFailureReason)
			}
			return nil
		},
	}
}
