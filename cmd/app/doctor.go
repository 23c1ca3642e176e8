package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/local/batchprint/internal/converter"
	"github.com/local/batchprint/internal/report"
	"github.com/local/batchprint/internal/spooler"
	"github.com/local/batchprint/internal/statuscheck"
	"github.com/local/batchprint/internal/storage"
	"github.com/local/batchprint/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the external programs and services batchprint uses",
	Long: `Doctor checks LibreOffice, the CUPS client tools, and, when configured,
the Redis status mirror and an S3 export bucket. It exits non-zero when
office documents could not be converted.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().String("s3", "", "also check this s3://bucket/prefix")
	doctorCmd.Flags().Bool("json", false, "output the summary as JSON")

	rootCmd.AddCommand(doctorCmd)
}

// failedPinger reports a Redis connection that could not be set up
type failedPinger struct{ err error }

func (f failedPinger) Ping(context.Context) error { return f.err }

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := statuscheck.Options{
		Office: converter.NewLibreOffice(converter.Options{Binary: cfg.Converter.Binary}),
		Spooler: spooler.New(spooler.Config{
			LPBinary:     cfg.Spooler.LPBinary,
			LPStatBinary: cfg.Spooler.LPStatBinary,
			Timeout:      cfg.Spooler.Timeout,
		}),
	}

	if cfg.Status.RedisURL != "" {
		rs, err := store.NewRedisStatus(ctx, cfg.Status.RedisURL, cfg.Status.TTL)
		if err != nil {
			opts.Redis = failedPinger{err: err}
		} else {
			defer rs.Close()
			opts.Redis = rs
		}
	}

	if raw, _ := cmd.Flags().GetString("s3"); raw != "" {
		loc, err := storage.ParseS3URL(raw)
		if err != nil {
			return usageError(err)
		}
		client, err := storage.NewS3Client(ctx, storageConfig(), loc.Bucket)
		if err != nil {
			return err
		}
		opts.Bucket = client
	}

	sum := statuscheck.New(opts).Summary(ctx)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return err
		}
	} else if err := report.RenderStatus(cmd.OutOrStdout(), sum); err != nil {
		return err
	}

	if !sum.Ready() {
		return &exitError{code: 1, err: errors.New("required dependencies are missing")}
	}
	return nil
}
