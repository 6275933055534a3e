// Package image loads previewed images from locators.
package image

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"rent-preview/pkg/geometry"
)

// ErrNotImage is returned for content that is not a decodable image.
var ErrNotImage = errors.New("not an image")

// sniffLen is how much of a stream is inspected to identify its type.
const sniffLen = 262

// Image is a decoded previewed image.
type Image struct {
	Locator string      // where it was loaded from
	Image   image.Image // decoded pixels, possibly downscaled
	Format  string      // decoder name, e.g. "jpeg"
	MIME    string      // sniffed content type
	Scaled  bool        // downscaled to the loader's maximum dimension
}

// Width returns the image width in pixels.
func (i *Image) Width() int {
	if i.Image == nil {
		return 0
	}
	return i.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (i *Image) Height() int {
	if i.Image == nil {
		return 0
	}
	return i.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (i *Image) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(i.Width()),
		Height: float64(i.Height()),
	}
}

// Loader opens locators (file paths, file:// and http(s):// URIs) and keeps
// a small cache of decoded images.
type Loader struct {
	// MaxDimension caps the longer side of decoded images; 0 keeps them as is.
	MaxDimension int
	Client       *http.Client

	mu    sync.Mutex
	cache map[string]*Image
}

// NewLoader returns a loader that downscales images beyond maxDimension.
func NewLoader(maxDimension int) *Loader {
	return &Loader{
		MaxDimension: maxDimension,
		Client:       http.DefaultClient,
		cache:        make(map[string]*Image),
	}
}

// Load returns the decoded image for locator, from the cache when present.
func (l *Loader) Load(ctx context.Context, locator string) (*Image, error) {
	l.mu.Lock()
	img, ok := l.cache[locator]
	l.mu.Unlock()
	if ok {
		return img, nil
	}

	rc, err := l.open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err = Decode(rc, l.MaxDimension)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}
	img.Locator = locator

	l.mu.Lock()
	l.cache[locator] = img
	l.mu.Unlock()
	return img, nil
}

// Retain drops cached images whose locator is not in keep.
func (l *Loader) Retain(keep ...string) {
	want := make(map[string]bool, len(keep))
	for _, k := range keep {
		want[k] = true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.cache {
		if !want[k] {
			delete(l.cache, k)
		}
	}
}

// Cached reports whether locator is in the cache.
func (l *Loader) Cached(locator string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[locator]
	return ok
}

func (l *Loader) open(ctx context.Context, locator string) (io.ReadCloser, error) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path; a one-letter scheme is a Windows drive.
		return openFile(locator)
	}
	switch u.Scheme {
	case "file":
		return openFile(filepath.FromSlash(u.Path))
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch image: %s: %s", locator, resp.Status)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return file, nil
}

// Decode sniffs and decodes an image from r, downscaling it so its longer
// side is at most maxDimension when maxDimension is positive.
func Decode(r io.Reader, maxDimension int) (*Image, error) {
	br := bufio.NewReaderSize(r, 4096)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if !filetype.IsImage(head) {
		return nil, ErrNotImage
	}
	kind, _ := filetype.Match(head)

	img, format, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	out := &Image{Image: img, Format: format, MIME: kind.MIME.Value}
	if w, h, ok := fitWithin(img.Bounds().Dx(), img.Bounds().Dy(), maxDimension); ok {
		out.Image = transform.Resize(img, w, h, transform.Linear)
		out.Scaled = true
	}
	return out, nil
}

// fitWithin returns the size of a w×h image scaled so its longer side is
// max, and whether scaling is needed.
func fitWithin(w, h, max int) (int, int, bool) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h, false
	}
	if w >= h {
		return max, maxInt(1, h*max/w), true
	}
	return maxInt(1, w*max/h), max, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// Locators expands paths into image locators: directories contribute their
// supported image files in name order, URIs and files pass through.
func Locators(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		if strings.Contains(p, "://") {
			out = append(out, p)
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for _, e := range entries {
			if !e.IsDir() && IsSupportedFormat(e.Name()) {
				out = append(out, filepath.Join(p, e.Name()))
			}
		}
	}
	return out, nil
}
