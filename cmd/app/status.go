package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/local/batchprint/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show a batch's status from the Redis mirror",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageError(fmt.Errorf("status takes exactly one job id, got %d", len(args)))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Status.RedisURL == "" {
			return usageError(errors.New("REDIS_URL is not set"))
		}
		ctx := cmd.Context()
		rs, err := store.NewRedisStatus(ctx, cfg.Status.RedisURL, cfg.Status.TTL)
		if err != nil {
			return err
		}
		defer rs.Close()

		jobID := args[0]
		job, found, err := rs.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		first, hasItems, err := rs.GetItem(ctx, jobID, 0)
		if err != nil {
			return err
		}
		if !found && !hasItems {
			return fmt.Errorf("job %s not found", jobID)
		}

		out := cmd.OutOrStdout()
		total := job.Total
		if found {
			fmt.Fprintf(out, "job %s: %s (%d succeeded, %d failed, %d skipped)\n",
				jobID, job.State, job.Succeeded, job.Failed, job.Skipped)
		} else {
			total = first.Total
			fmt.Fprintf(out, "job %s: running\n", jobID)
		}

		for i := 0; i < total; i++ {
			it, ok, err := rs.GetItem(ctx, jobID, i)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "[%d/%d] pending\n", i+1, total)
				continue
			}
			line := fmt.Sprintf("[%d/%d] %s: %s", i+1, total, filepath.Base(it.File), it.State)
			switch {
			case it.Message != "":
				line += " - " + it.Message
			case it.Destination != "":
				line += " -> " + it.Destination
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
