package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/batchprint/internal/converter"
	"github.com/local/batchprint/internal/filetype"
	"github.com/local/batchprint/internal/imagerender"
	"github.com/local/batchprint/internal/normalizer"
	"github.com/local/batchprint/internal/tempfiles"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Render one page of a file as JPEG",
	Long: `Preview normalizes a file the same way run does and renders a single page
to JPEG, which shows how an office document or image will come out before it
is printed.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageError(fmt.Errorf("preview takes exactly one file, got %d", len(args)))
		}
		return nil
	},
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("page", 1, "page to render (1-based)")
	previewCmd.Flags().Int("dpi", 72, "render resolution")
	previewCmd.Flags().Bool("gray", false, "render in grayscale")
	previewCmd.Flags().Bool("auto-rotate", true, "rotate landscape images to portrait")
	previewCmd.Flags().Bool("auto-scale", true, "scale images to fit the page")
	previewCmd.Flags().StringP("output", "o", "", "output file (default <name>-p<page>.jpg)")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]
	kind := filetype.KindOf(path)
	if kind == filetype.KindUnsupported {
		return usageError(fmt.Errorf("unsupported file type: %s", path))
	}
	page, _ := cmd.Flags().GetInt("page")
	dpi, _ := cmd.Flags().GetInt("dpi")
	gray, _ := cmd.Flags().GetBool("gray")
	rotate, _ := cmd.Flags().GetBool("auto-rotate")
	scale, _ := cmd.Flags().GetBool("auto-scale")
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		base := strings.TrimSuffix(path, filepath.Ext(path))
		out = fmt.Sprintf("%s-p%d.jpg", base, page)
	}

	temps, err := tempfiles.NewTracker(cfg.Paths.TempDir, uuid.NewString())
	if err != nil {
		return err
	}
	defer func() {
		if err := temps.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to remove preview temp dir")
		}
	}()

	norm := normalizer.New(normalizer.Options{
		Converter: converter.NewLibreOffice(converter.Options{
			Binary:      cfg.Converter.Binary,
			Timeout:     cfg.Converter.Timeout,
			ProfileRoot: cfg.Paths.TempDir,
		}),
		Temps: temps,
		Image: imagerender.Options{AutoRotate: rotate, AutoScale: scale},
	})
	art, err := norm.Normalize(cmd.Context(), path, kind)
	if err != nil {
		return err
	}

	jpg, err := imagerender.RenderPreview(art.Path, page, dpi, gray)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, jpg, 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
