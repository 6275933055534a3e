package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 0xFF})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, pngBytes(t, w, h), 0o644))
	return path
}

func TestDecode(t *testing.T) {
	img, err := Decode(bytes.NewReader(pngBytes(t, 40, 20)), 0)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, 40, img.Width())
	assert.Equal(t, 20, img.Height())
	assert.False(t, img.Scaled)
}

func TestDecodeDownscales(t *testing.T) {
	img, err := Decode(bytes.NewReader(pngBytes(t, 40, 200)), 100)
	require.NoError(t, err)
	assert.True(t, img.Scaled)
	assert.Equal(t, 20, img.Width())
	assert.Equal(t, 100, img.Height())
}

func TestDecodeRejectsNonImage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("just some text")), 0)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max  int
		wantW      int
		wantH      int
		wantScaled bool
	}{
		{100, 50, 0, 100, 50, false},
		{100, 50, 200, 100, 50, false},
		{400, 200, 100, 100, 50, true},
		{200, 400, 100, 50, 100, true},
		{1000, 1, 10, 10, 1, true},
	}
	for _, tt := range tests {
		w, h, scaled := fitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
		assert.Equal(t, tt.wantScaled, scaled)
	}
}

func TestLoaderFilesAndCache(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 8, 8)
	l := NewLoader(0)

	img, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, img.Locator)
	assert.True(t, l.Cached(path))

	uri := "file://" + filepath.ToSlash(path)
	img2, err := l.Load(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, 8, img2.Width())

	l.Retain(uri)
	assert.False(t, l.Cached(path))
	assert.True(t, l.Cached(uri))
}

func TestLoaderErrors(t *testing.T) {
	l := NewLoader(0)
	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Load(context.Background(), "ftp://example.com/a.png")
	assert.Error(t, err)
}

func TestLoaderHTTP(t *testing.T) {
	body := pngBytes(t, 16, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(0)
	img, err := l.Load(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, 16, img.Width())

	_, err = l.Load(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestLocators(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "b.png", 1, 1)
	writePNG(t, dir, "a.jpg", 1, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	got, err := Locators([]string{dir, "https://example.com/c.webp"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		"https://example.com/c.webp",
	}, got)

	_, err = Locators([]string{filepath.Join(dir, "nope")})
	assert.Error(t, err)
}
