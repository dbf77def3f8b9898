package thumbgrid

import (
	"container/list"
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageLoader decodes and manipulates the images shown by a Grid.
// Implementations must be safe for concurrent use; LoadImage is called from
// worker goroutines.
type ImageLoader interface {
	// LoadImage decodes the image file at path, returning the image and the
	// format name (for example "png").
	LoadImage(path string) (image.Image, string, error)
	// Highlight returns a brightened copy of img. The factor is
	// multiplicative, so 1.0 returns the image unchanged.
	Highlight(img image.Image, factor float64) image.Image
	// Rotate returns img rotated counter-clockwise by an angle in degrees.
	Rotate(img image.Image, ccwDegrees float64) image.Image
	// Reflect returns img mirrored left-right when horizontal is set, or
	// top-bottom otherwise.
	Reflect(img image.Image, horizontal bool) image.Image
}

// defaultLoader backs Options.Loader when the caller leaves it nil.
var defaultLoader ImageLoader = NewNativeLoader()

// NativeLoader decodes images with the standard image package. JPEG, PNG,
// GIF, BMP and TIFF decoders are registered by this package's imports.
type NativeLoader struct{}

// NewNativeLoader returns the stock loader used when Options.Loader is nil.
func NewNativeLoader() *NativeLoader { return &NativeLoader{} }

func (*NativeLoader) LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

func (*NativeLoader) Highlight(img image.Image, factor float64) image.Image {
	return imaging.AdjustBrightness(img, (factor-1)*100)
}

func (*NativeLoader) Rotate(img image.Image, ccwDegrees float64) image.Image {
	return imaging.Rotate(img, ccwDegrees, color.Transparent)
}

func (*NativeLoader) Reflect(img image.Image, horizontal bool) image.Image {
	if horizontal {
		return imaging.FlipH(img)
	}
	return imaging.FlipV(img)
}

// CachingLoader wraps another loader with a least-recently-used decode
// cache keyed by path. Failed decodes are not cached, so a file that
// appears later is picked up on the next load.
type CachingLoader struct {
	inner ImageLoader
	limit int

	mu      sync.Mutex
	order   *list.List // front is most recently used, values are paths
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	elem   *list.Element
	img    image.Image
	format string
}

// NewCachingLoader wraps inner with a cache holding up to limit decoded
// images. A non-positive limit leaves the cache unbounded.
func NewCachingLoader(inner ImageLoader, limit int) *CachingLoader {
	return &CachingLoader{
		inner:   inner,
		limit:   limit,
		order:   list.New(),
		entries: map[string]*cacheEntry{},
	}
}

func (c *CachingLoader) LoadImage(path string) (image.Image, string, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		c.order.MoveToFront(e.elem)
		img, format := e.img, e.format
		c.mu.Unlock()
		return img, format, nil
	}
	c.mu.Unlock()

	// Decode outside the lock. Two workers racing on the same path decode
	// twice and the second result is dropped below.
	img, format, err := c.inner.LoadImage(path)
	if err != nil {
		return nil, "", err
	}

	c.mu.Lock()
	if _, ok := c.entries[path]; !ok {
		e := &cacheEntry{img: img, format: format}
		e.elem = c.order.PushFront(path)
		c.entries[path] = e
		for c.limit > 0 && c.order.Len() > c.limit {
			oldest := c.order.Back()
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(string))
		}
	}
	c.mu.Unlock()
	return img, format, nil
}

// Forget drops the cached decode for path, if any.
func (c *CachingLoader) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok {
		c.order.Remove(e.elem)
		delete(c.entries, path)
	}
}

func (c *CachingLoader) Highlight(img image.Image, factor float64) image.Image {
	return c.inner.Highlight(img, factor)
}

func (c *CachingLoader) Rotate(img image.Image, ccwDegrees float64) image.Image {
	return c.inner.Rotate(img, ccwDegrees)
}

func (c *CachingLoader) Reflect(img image.Image, horizontal bool) image.Image {
	return c.inner.Reflect(img, horizontal)
}

// defaultMaxDimension bounds decoded images when MaxSizeLoader is built with
// zero limits. Anything larger wastes memory well past screen resolution.
const defaultMaxDimension = 4096

// MaxSizeLoader wraps another loader and downscales decoded images that
// exceed a maximum size, keeping aspect ratio. Placing it under a
// CachingLoader keeps the cache holding the downscaled images.
type MaxSizeLoader struct {
	inner ImageLoader
	maxW  int
	maxH  int
}

// NewMaxSizeLoader wraps inner so decoded images are at most maxWidth by
// maxHeight. Non-positive limits default to 4096.
func NewMaxSizeLoader(inner ImageLoader, maxWidth, maxHeight int) *MaxSizeLoader {
	if maxWidth <= 0 {
		maxWidth = defaultMaxDimension
	}
	if maxHeight <= 0 {
		maxHeight = defaultMaxDimension
	}
	return &MaxSizeLoader{inner: inner, maxW: maxWidth, maxH: maxHeight}
}

func (m *MaxSizeLoader) LoadImage(path string) (image.Image, string, error) {
	img, format, err := m.inner.LoadImage(path)
	if err != nil {
		return nil, "", err
	}
	if b := img.Bounds(); b.Dx() > m.maxW || b.Dy() > m.maxH {
		img = imaging.Fit(img, m.maxW, m.maxH, imaging.Lanczos)
	}
	return img, format, nil
}

func (m *MaxSizeLoader) Highlight(img image.Image, factor float64) image.Image {
	return m.inner.Highlight(img, factor)
}

func (m *MaxSizeLoader) Rotate(img image.Image, ccwDegrees float64) image.Image {
	return m.inner.Rotate(img, ccwDegrees)
}

func (m *MaxSizeLoader) Reflect(img image.Image, horizontal bool) image.Image {
	return m.inner.Reflect(img, horizontal)
}

// loadThumbImage decodes path through loader, substituting the broken-image
// placeholder when the decode fails. valid reports a real decode.
func loadThumbImage(loader ImageLoader, path string) (img image.Image, format string, valid bool) {
	img, format, err := loader.LoadImage(path)
	if err != nil || img == nil {
		return brokenImage(), "", false
	}
	return img, format, true
}

var (
	brokenOnce sync.Once
	brokenImg  image.Image
)

// brokenImage returns the shared placeholder shown for files that fail to
// decode: a grey page outline with a red cross.
func brokenImage() image.Image {
	brokenOnce.Do(func() {
		const size = 48
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		page := image.Rect(10, 4, 38, 44)
		pageFill := color.NRGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff}
		pageEdge := color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
		for y := page.Min.Y; y < page.Max.Y; y++ {
			for x := page.Min.X; x < page.Max.X; x++ {
				c := pageFill
				if x == page.Min.X || x == page.Max.X-1 || y == page.Min.Y || y == page.Max.Y-1 {
					c = pageEdge
				}
				img.SetNRGBA(x, y, c)
			}
		}
		cross := color.NRGBA{R: 0xcc, G: 0x22, B: 0x22, A: 0xff}
		for i := 0; i < 20; i++ {
			for w := 0; w < 2; w++ {
				img.SetNRGBA(14+i, 14+i+w, cross)
				img.SetNRGBA(14+i, 33-i+w, cross)
			}
		}
		brokenImg = img
	})
	return brokenImg
}
