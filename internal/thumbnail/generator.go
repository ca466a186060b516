package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/spec-kit/case-service/internal/config"
)

const (
	defaultWidth     = 200
	defaultMaxPixels = 40_000_000
	maxSourceBytes   = 20 << 20
	filePrefix     = "thumb_"
)

// Generator produces a thumbnail for a remote image and returns where it was written.
type Generator interface {
	Generate(ctx context.Context, sourceURL, fileName string) (string, error)
}

// ErrImageTooLarge is returned when the source header declares more pixels
// than the generator is allowed to decode.
var ErrImageTooLarge = errors.New("source image exceeds pixel budget")

// HTTPGenerator downloads the source over HTTP, scales it to a fixed width
// keeping the aspect ratio, and writes it under dir as thumb_<file name>.
type HTTPGenerator struct {
	client    *http.Client
	dir       string
	width     int
	maxPixels int
}

// NewHTTPGenerator builds a generator. A nil client falls back to http.DefaultClient.
func NewHTTPGenerator(cfg config.ThumbnailConfig, client *http.Client) *HTTPGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	width := cfg.Width
	if width <= 0 {
		width = defaultWidth
	}
	maxPixels := cfg.MaxPixels
	if maxPixels <= 0 {
		maxPixels = defaultMaxPixels
	}
	return &HTTPGenerator{client: client, dir: cfg.Dir, width: width, maxPixels: maxPixels}
}

// OutputPath returns the path a thumbnail for fileName is written to.
func (g *HTTPGenerator) OutputPath(fileName string) (string, error) {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}
	return filepath.ToSlash(filepath.Join(g.dir, filePrefix+base)), nil
}

func (g *HTTPGenerator) Generate(ctx context.Context, sourceURL, fileName string) (string, error) {
	outPath, err := g.OutputPath(fileName)
	if err != nil {
		return "", err
	}

	src, err := g.fetch(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", errors.New("source image has no pixels")
	}
	height := int(float64(g.width) * float64(bounds.Dy()) / float64(bounds.Dx()))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, g.width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail dir: %w", err)
	}
	if err := writeImage(outPath, dst); err != nil {
		return "", err
	}
	return outPath, nil
}

func (g *HTTPGenerator) fetch(ctx context.Context, sourceURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", sourceURL, resp.StatusCode)
	}

	return g.decode(sourceURL, io.LimitReader(resp.Body, maxSourceBytes))
}

// decode checks the declared dimensions before allocating the pixel buffer.
// The header bytes consumed by DecodeConfig are replayed for the full decode.
func (g *HTTPGenerator) decode(sourceURL string, body io.Reader) (image.Image, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(body, &header))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", sourceURL, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode %s: source image has no pixels", sourceURL)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(g.maxPixels) {
		return nil, fmt.Errorf("decode %s: %dx%d: %w", sourceURL, cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	img, _, err := image.Decode(io.MultiReader(&header, body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", sourceURL, err)
	}
	return img, nil
}

func writeImage(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}
