package main

import (
    "context"
    "errors"
    "fmt"
    "os"
    "os/signal"
    "syscall"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"
    "github.com/spf13/cobra"

    cfgpkg "github.com/local/batchprint/internal/config"
    logpkg "github.com/local/batchprint/internal/logger"
    "github.com/local/batchprint/internal/metrics"
    "github.com/local/batchprint/internal/settings"
    "github.com/local/batchprint/internal/tempfiles"
)

// version is set at build time via ldflags.
var version = "dev"

var cfg cfgpkg.Config

var rootCmd = &cobra.Command{
    Use:   "batchprint",
    Short: "Print or export a batch of documents as PDF",
    Long: `batchprint turns PDFs, office documents and images into PDFs, keeps the
selected page range, and sends each result to a printer, a directory or an
S3 bucket. Files are processed one at a time and every file ends up
succeeded, failed or skipped.`,
    Version:       version,
    SilenceUsage:  true,
    SilenceErrors: true,
    PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
        level := cfg.Logging.Level
        if v, _ := cmd.Flags().GetBool("verbose"); v {
            level = "debug"
        }
        if err := logpkg.Init(logpkg.Options{
            Level:        level,
            Pretty:       cfg.Logging.Pretty,
            File:         cfg.Logging.File,
            MaxSizeMB:    cfg.Logging.MaxSizeMB,
            MaxBackups:   cfg.Logging.MaxBackups,
            MaxAgeDays:   cfg.Logging.MaxAgeDays,
            Compress:     cfg.Logging.Compress,
            SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
            AxiomAPIKey:  cfg.Axiom.APIKey,
            AxiomOrgID:   cfg.Axiom.OrgID,
            AxiomDataset: cfg.Axiom.Dataset,
            AxiomFlush:   cfg.Axiom.FlushInterval,
        }); err != nil {
            return err
        }
        metrics.Init()

        // Leftovers from crashed runs
        if n := tempfiles.SweepStale(cfg.Paths.TempDir, cfg.Paths.StaleAfter); n > 0 {
            log.Info().Int("removed", n).Str("dir", cfg.Paths.TempDir).Msg("removed stale temp dirs")
        }
        return nil
    },
}

func init() {
    rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
    rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
        return usageError(err)
    })
}

// exitError carries the process exit status out of a command
type exitError struct {
    code int
    err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: 2, err: err} }

func exitCode(err error) int {
    var ee *exitError
    if errors.As(err, &ee) {
        return ee.code
    }
    return 1
}

func settingsPath() string {
    if cfg.Paths.SettingsFile != "" {
        return cfg.Paths.SettingsFile
    }
    return settings.DefaultPath()
}

func main() {
    _ = godotenv.Load()
    cfg = cfgpkg.FromEnv()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    err := rootCmd.ExecuteContext(ctx)
    stop()
    logpkg.Close()

    if err != nil {
        fmt.Fprintln(os.Stderr, "batchprint:", err)
        os.Exit(exitCode(err))
    }
}
