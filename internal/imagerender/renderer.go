package imagerender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Portrait A4 at 72 dpi, one pixel per point
const (
	PageWidth  = 595
	PageHeight = 842
)

// MaxPixels bounds the decoded size of an input image, about a 600 dpi A3 scan
const MaxPixels = 100_000_000

var (
	ErrImageDecode = errors.New("image decode failed")
	ErrPageRender  = errors.New("page render failed")
)

// Options controls how an image is laid onto the page
type Options struct {
	// AutoRotate turns landscape images a quarter turn counter-clockwise
	AutoRotate bool
	// AutoScale fits the image to the page and centers it; otherwise it is
	// placed unscaled at the top-left corner and clipped
	AutoScale bool
}

// DefaultOptions matches the form defaults: both switches on
func DefaultOptions() Options {
	return Options{AutoRotate: true, AutoScale: true}
}

// Compose lays img onto a white A4 canvas
func Compose(img image.Image, opts Options) *image.RGBA {
	page := image.NewRGBA(image.Rect(0, 0, PageWidth, PageHeight))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	src := img
	b := src.Bounds()
	// aspect(img) > aspect(page), compared without floats
	if opts.AutoRotate && b.Dx()*PageHeight > b.Dy()*PageWidth {
		src = rotateCCW(src)
		b = src.Bounds()
	}

	if !opts.AutoScale {
		draw.Draw(page, page.Bounds(), src, b.Min, draw.Over)
		return page
	}

	w, h := fitInto(b.Dx(), b.Dy(), PageWidth, PageHeight)
	x := (PageWidth - w) / 2
	y := (PageHeight - h) / 2
	draw.CatmullRom.Scale(page, image.Rect(x, y, x+w, y+h), src, b, draw.Over, nil)
	return page
}

// fitInto scales w×h uniformly to the largest size inside pw×ph
func fitInto(w, h, pw, ph int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w*ph <= h*pw {
		return max(w*ph/h, 1), ph
	}
	return pw, max(h*pw/w, 1)
}

// rotateCCW turns img a quarter turn counter-clockwise
func rotateCCW(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(y, w-1-x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// checkDimensions rejects empty images and ones above MaxPixels
func checkDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrImageDecode, w, h)
	}
	if int64(w)*int64(h) > MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageDecode, w, h, MaxPixels)
	}
	return nil
}

// Paginate decodes a PNG, JPEG or BMP image and returns a one-page PDF
func Paginate(ctx context.Context, r io.Reader, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	// Headers are checked before decoding so a forged size cannot make the
	// decoder allocate without bound
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	b := img.Bounds()
	log.Debug().
		Str("format", format).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Bool("auto_rotate", opts.AutoRotate).
		Bool("auto_scale", opts.AutoScale).
		Msg("decoded image")

	page := Compose(img, opts)

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, page); err != nil {
		return nil, fmt.Errorf("%w: encode page: %v", ErrPageRender, err)
	}

	// The canvas already has the page's proportions, so a full-page import
	// maps it one to one (the default import page is A4)
	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, []io.Reader{&pngBuf}, imp, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return out.Bytes(), nil
}

// PaginateFile renders the image at imgPath into a PDF at outPath
func PaginateFile(ctx context.Context, imgPath, outPath string, opts Options) error {
	f, err := os.Open(imgPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	defer f.Close()

	pdf, err := Paginate(ctx, f, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("%w: write %s: %v", ErrPageRender, outPath, err)
	}
	log.Debug().Str("input", imgPath).Str("output", outPath).Int("pdf_size", len(pdf)).Msg("image paginated")
	return nil
}
