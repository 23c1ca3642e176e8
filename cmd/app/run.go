package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/batchprint/internal/batch"
	"github.com/local/batchprint/internal/converter"
	"github.com/local/batchprint/internal/filetype"
	"github.com/local/batchprint/internal/intake"
	"github.com/local/batchprint/internal/metrics"
	"github.com/local/batchprint/internal/pdfops"
	"github.com/local/batchprint/internal/report"
	"github.com/local/batchprint/internal/settings"
	"github.com/local/batchprint/internal/sink"
	"github.com/local/batchprint/internal/spooler"
	"github.com/local/batchprint/internal/storage"
	"github.com/local/batchprint/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run [files or directories...]",
	Short: "Process a batch of files",
	Long: `Run normalizes every file to PDF, keeps the pages selected with --pages,
and sends the result to exactly one destination: --printer, --output-dir or
--s3. Without a destination the remembered printer, then the system default
printer, is used. Directories contribute their supported files in name order.`,
	RunE: runBatch,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("printer", "", "CUPS printer name")
	f.String("output-dir", "", "export PDFs into this directory")
	f.String("s3", "", "export PDFs to s3://bucket/prefix")
	f.Bool("duplex", false, "print on both sides (long edge)")
	f.Bool("color", true, "print in color; --color=false prints grayscale")
	f.String("pages", "", `pages to keep, e.g. "1-3,5" (1-based, empty keeps all)`)
	f.Bool("auto-rotate", true, "rotate landscape images to portrait")
	f.Bool("auto-scale", true, "scale images to fit the page")
	f.String("manifest", "", "YAML job manifest; flags override its values")
	f.Bool("json", false, "print the report as JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	opts, files, err := jobOptions(cmd, args)
	if err != nil {
		return usageError(err)
	}
	list := intake.New()
	if err := collectFiles(cmd.ErrOrStderr(), list, files); err != nil {
		return usageError(err)
	}

	spool := spooler.New(spooler.Config{
		LPBinary:     cfg.Spooler.LPBinary,
		LPStatBinary: cfg.Spooler.LPStatBinary,
		Timeout:      cfg.Spooler.Timeout,
	})
	if _, err := opts.Destination(); errors.Is(err, batch.ErrNoDestination) {
		opts.Printer = defaultPrinter(ctx, spool)
	}

	job, err := batch.NewJob(list.Paths(), opts)
	if err != nil {
		return usageError(err)
	}

	dest, err := buildSink(ctx, spool, opts)
	if err != nil {
		return err
	}

	status := batch.Multi{batch.WriterPublisher{W: out}, batch.LogPublisher{}}
	redisStatus := openStatusStore(ctx)
	if redisStatus != nil {
		defer redisStatus.Close()
		status = append(status, batch.NewRedisPublisher(redisStatus))
	}

	orch := batch.New(batch.Dependencies{
		Converter: converter.NewLibreOffice(converter.Options{
			Binary:      cfg.Converter.Binary,
			Timeout:     cfg.Converter.Timeout,
			ProfileRoot: cfg.Paths.TempDir,
		}),
		PDF:            pdfops.New(),
		Sink:           dest,
		Status:         status,
		Detector:       filetype.New(),
		TempRoot:       cfg.Paths.TempDir,
		ConvertTimeout: cfg.Converter.Timeout,
	})

	rep, err := orch.Run(ctx, job)
	list.Clear()
	if err != nil {
		return err
	}

	if redisStatus != nil {
		saveJobStatus(ctx, redisStatus, rep)
	}
	if path := cfg.Metrics.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("failed to write metrics textfile")
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else if err := report.Render(out, rep); err != nil {
		return err
	}

	if rep.HasFailures() {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d file(s) failed", rep.Failed, len(rep.Items))}
	}
	return nil
}

// jobOptions merges defaults, the optional manifest and explicit flags, in
// that order. It returns the file arguments with the manifest's files first.
func jobOptions(cmd *cobra.Command, args []string) (batch.Options, []string, error) {
	opts := batch.DefaultOptions()
	var files []string

	if path, _ := cmd.Flags().GetString("manifest"); path != "" {
		m, err := batch.LoadManifest(path)
		if err != nil {
			return opts, nil, err
		}
		m.Apply(&opts)
		files = append(files, m.Files...)
	}
	files = append(files, args...)

	f := cmd.Flags()
	if f.Changed("printer") {
		opts.Printer, _ = f.GetString("printer")
	}
	if f.Changed("output-dir") {
		opts.OutputDir, _ = f.GetString("output-dir")
	}
	if f.Changed("s3") {
		opts.S3URL, _ = f.GetString("s3")
	}
	if f.Changed("pages") {
		opts.PageSpec, _ = f.GetString("pages")
	}
	if f.Changed("duplex") {
		opts.Duplex, _ = f.GetBool("duplex")
	}
	if f.Changed("color") {
		opts.Color, _ = f.GetBool("color")
	}
	if f.Changed("auto-rotate") {
		opts.AutoRotate, _ = f.GetBool("auto-rotate")
	}
	if f.Changed("auto-scale") {
		opts.AutoScale, _ = f.GetBool("auto-scale")
	}
	return opts, files, nil
}

// collectFiles expands directories into list and drops duplicates and
// unsupported files, reporting each rejection on w
func collectFiles(w io.Writer, list *intake.List, args []string) error {
	for _, arg := range args {
		if fi, err := os.Stat(arg); err == nil && fi.IsDir() {
			if _, err := list.AddDir(arg); err != nil {
				fmt.Fprintln(w, "warning:", err)
			}
			continue
		}
		if err := list.Add(arg); err != nil {
			fmt.Fprintln(w, "warning:", err)
		}
	}
	if list.Len() == 0 {
		return batch.ErrNoFiles
	}
	return nil
}

func defaultPrinter(ctx context.Context, spool *spooler.CUPS) string {
	printers, err := spool.Printers(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("no printers to fall back on")
		return ""
	}
	sysDefault, _ := spool.Default(ctx)
	return spooler.Preferred(printers, settings.Load(settingsPath()).LastPrinter, sysDefault)
}

func buildSink(ctx context.Context, spool *spooler.CUPS, opts batch.Options) (sink.Sink, error) {
	kind, err := opts.Destination()
	if err != nil {
		return nil, usageError(err)
	}
	switch kind {
	case batch.DestPrinter:
		if err := spool.Available(); err != nil {
			return nil, err
		}
		if err := settings.Save(settingsPath(), settings.Settings{LastPrinter: opts.Printer}); err != nil {
			log.Warn().Err(err).Msg("failed to remember printer")
		}
		return sink.NewPrinter(spool, opts.Printer, spooler.Options{Duplex: opts.Duplex, Color: opts.Color}), nil
	case batch.DestDirectory:
		return sink.NewDirectory(opts.OutputDir), nil
	case batch.DestS3:
		loc, err := storage.ParseS3URL(opts.S3URL)
		if err != nil {
			return nil, usageError(err)
		}
		client, err := storage.NewS3Client(ctx, storageConfig(), loc.Bucket)
		if err != nil {
			return nil, err
		}
		return sink.NewS3(client, loc), nil
	}
	return nil, fmt.Errorf("unknown destination %q", kind)
}

func storageConfig() storage.Config {
	return storage.Config{
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UsePathStyle:    cfg.Storage.UsePathStyle,
		Password:        cfg.Storage.Password,
	}
}

// openStatusStore connects to Redis when configured. The mirror is optional,
// so a failure only logs.
func openStatusStore(ctx context.Context) *store.RedisStatus {
	if cfg.Status.RedisURL == "" {
		return nil
	}
	rs, err := store.NewRedisStatus(ctx, cfg.Status.RedisURL, cfg.Status.TTL)
	if err != nil {
		log.Warn().Err(err).Msg("redis status mirror disabled")
		return nil
	}
	return rs
}

func saveJobStatus(ctx context.Context, rs *store.RedisStatus, rep *batch.Report) {
	state := "completed"
	if rep.HasFailures() {
		state = "completed_with_failures"
	}
	start, end := rep.Start, rep.End
	err := rs.SetJob(context.WithoutCancel(ctx), rep.JobID, store.JobStatus{
		State:     state,
		Succeeded: rep.Succeeded,
		Failed:    rep.Failed,
		Skipped:   rep.Skipped,
		Total:     len(rep.Items),
		Start:     &start,
		End:       &end,
	})
	if err != nil {
		log.Warn().Err(err).Str("job_id", rep.JobID).Msg("failed to store job summary")
	}
}
