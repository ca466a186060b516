package thumbnail

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h 8-bit
// grayscale pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 0, 0, 0, 0)

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(chunk)-4))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func newImageServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/image.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("definitely not an image"))
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPGenerator_ResizesKeepingAspectRatio(t *testing.T) {
	dir := t.TempDir()
	srv := newImageServer(t, pngBytes(t, 400, 300))
	gen := NewHTTPGenerator(config.ThumbnailConfig{Dir: dir, Width: 200}, srv.Client())

	path, err := gen.Generate(context.Background(), srv.URL+"/image.png", "photo.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "thumb_photo.png")), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestHTTPGenerator_EncodesByExtension(t *testing.T) {
	dir := t.TempDir()
	srv := newImageServer(t, pngBytes(t, 50, 50))
	gen := NewHTTPGenerator(config.ThumbnailConfig{Dir: dir, Width: 20}, srv.Client())

	path, err := gen.Generate(context.Background(), srv.URL+"/image.png", "scan.jpg")
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestHTTPGenerator_StripsDirectoriesFromFileName(t *testing.T) {
	gen := NewHTTPGenerator(config.ThumbnailConfig{Dir: "public/thumbnails"}, nil)

	path, err := gen.OutputPath("../../etc/passwd.png")
	require.NoError(t, err)
	assert.Equal(t, "public/thumbnails/thumb_passwd.png", path)

	_, err = gen.OutputPath("")
	assert.Error(t, err)
}

func TestHTTPGenerator_Failures(t *testing.T) {
	dir := t.TempDir()
	srv := newImageServer(t, pngBytes(t, 10, 10))
	gen := NewHTTPGenerator(config.ThumbnailConfig{Dir: dir}, srv.Client())

	tests := []struct {
		name string
		url  string
	}{
		{"not found", srv.URL + "/missing.png"},
		{"not an image", srv.URL + "/garbage"},
		{"unreachable", "http://127.0.0.1:1/image.png"},
		{"malformed url", "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(context.Background(), tt.url, "x.png")
			assert.Error(t, err)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "thumb_x.png"))
	assert.True(t, os.IsNotExist(err), "failed generations leave no file behind")
}

func TestHTTPGenerator_HonoursContextDeadline(t *testing.T) {
	srv := newImageServer(t, nil)
	gen := NewHTTPGenerator(config.ThumbnailConfig{Dir: t.TempDir()}, srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := gen.Generate(ctx, srv.URL+"/slow.png", "slow.png")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPGenerator_RejectsOversizedDimensions(t *testing.T) {
	dir := t.TempDir()
	srv := newImageServer(t, pngHeader(40000, 40000))
	gen := NewHTTPGenerator(config.ThumbnailConfig{Dir: dir}, srv.Client())

	_, err := gen.Generate(context.Background(), srv.URL+"/image.png", "huge.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, statErr := os.Stat(filepath.Join(dir, "thumb_huge.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestHTTPGenerator_PixelBudgetFromConfig(t *testing.T) {
	srv := newImageServer(t, pngBytes(t, 400, 300))

	strict := NewHTTPGenerator(config.ThumbnailConfig{Dir: t.TempDir(), MaxPixels: 100_000}, srv.Client())
	_, err := strict.Generate(context.Background(), srv.URL+"/image.png", "photo.png")
	assert.ErrorIs(t, err, ErrImageTooLarge)

	roomy := NewHTTPGenerator(config.ThumbnailConfig{Dir: t.TempDir(), MaxPixels: 120_000}, srv.Client())
	path, err := roomy.Generate(context.Background(), srv.URL+"/image.png", "photo.png")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestBestEffort_OversizedImageYieldsNoThumbnail(t *testing.T) {
	srv := newImageServer(t, pngHeader(40000, 40000))
	be := NewBestEffort(NewHTTPGenerator(config.ThumbnailConfig{Dir: t.TempDir()}, srv.Client()), time.Second, zap.NewNop())

	assert.Nil(t, be.Generate(context.Background(), srv.URL+"/image.png", "huge.png"))
}
