package thumbgrid

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/image/draw"
)

// Thumb is a single item shown by a Grid. It tracks the source file, the
// decoded image and a cached copy scaled to the current thumbnail size.
//
// The decoded state is guarded by a mutex so worker goroutines can reload a
// Thumb while the UI goroutine paints it. The file metadata captured at
// creation time is deliberately never updated by Load; it records what was
// on disk when the Thumb entered the grid and is compared against a fresh
// stat to decide whether a forced reload is needed.
type Thumb struct {
	// TextColor overrides the caption colour for this item when non-nil.
	TextColor color.Color

	path  string
	mtime time.Time
	size  int64

	mu     sync.Mutex
	img    image.Image
	scaled image.Image
	format string
	width  int
	height int
	alpha  bool
	valid  bool
}

// NewThumb creates a Thumb for the image file at path. The file's current
// modification time and size are captured for later staleness checks; if the
// file cannot be stat'ed they stay zero and the first load will fail into
// the broken-image placeholder.
func NewThumb(path string) *Thumb {
	t := &Thumb{path: path}
	if info, err := os.Stat(path); err == nil {
		t.mtime = info.ModTime()
		t.size = info.Size()
	}
	return t
}

// NewThumbWithInfo creates a Thumb with caller-supplied file metadata,
// avoiding a stat call when the caller already walked the directory.
func NewThumbWithInfo(path string, mtime time.Time, size int64) *Thumb {
	return &Thumb{path: path, mtime: mtime, size: size}
}

// Path returns the file path the Thumb was created with.
func (t *Thumb) Path() string { return t.path }

// Name returns the base name of the file.
func (t *Thumb) Name() string { return filepath.Base(t.path) }

// ModTime returns the modification time captured when the Thumb was created.
func (t *Thumb) ModTime() time.Time { return t.mtime }

// FileSize returns the file size in bytes captured when the Thumb was
// created.
func (t *Thumb) FileSize() int64 { return t.size }

// Loaded reports whether an image (or the broken-image placeholder) has been
// decoded for this Thumb.
func (t *Thumb) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img != nil
}

// Valid reports whether the last load decoded a real image. A Thumb whose
// file is missing or undecodable holds the placeholder and is not valid.
func (t *Thumb) Valid() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.valid
}

// Format returns the decoded image format name, for example "png". It is
// empty until the Thumb loads successfully.
func (t *Thumb) Format() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.format
}

// ImageSize returns the dimensions of the decoded image, or (0, 0) before
// the first load.
func (t *Thumb) ImageSize() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// HasAlpha reports whether the decoded image carries transparency. The grid
// skips outlines and shadows for such images.
func (t *Thumb) HasAlpha() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alpha
}

// Load decodes the Thumb's file through loader. A Thumb that already holds a
// valid image is left alone unless force is set, and even then the decode is
// skipped when the file's modification time and size still match the values
// captured at creation. Safe to call from any goroutine.
func (t *Thumb) Load(force bool, loader ImageLoader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.valid {
		if !force {
			return
		}
		if info, err := os.Stat(t.path); err == nil &&
			info.ModTime().Equal(t.mtime) && info.Size() == t.size {
			return
		}
	}
	img, format, valid := loadThumbImage(loader, t.path)
	bounds := img.Bounds()
	t.img = img
	t.format = format
	t.width = bounds.Dx()
	t.height = bounds.Dy()
	t.alpha = hasAlpha(img)
	t.valid = valid
	t.scaled = nil
}

// Scaled returns the image scaled down or up to fit within width x height
// while keeping its aspect ratio. The result is cached until the next call
// asks for a different fit or the Thumb reloads. Invalid images are returned
// at their natural size. Returns nil before the first load.
func (t *Thumb) Scaled(width, height int) image.Image {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.img == nil {
		return nil
	}
	fw, fh := fitSize(t.width, t.height, width, height)
	if !t.valid || (fw == t.width && fh == t.height) {
		return t.img
	}
	if t.scaled != nil {
		if b := t.scaled.Bounds(); b.Dx() == fw && b.Dy() == fh {
			return t.scaled
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, fw, fh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), t.img, t.img.Bounds(), draw.Over, nil)
	t.scaled = dst
	return dst
}

// Highlighted returns the fitted image brightened by factor, for hover
// feedback. The highlighted copy is not cached.
func (t *Thumb) Highlighted(width, height int, factor float64, loader ImageLoader) image.Image {
	base := t.Scaled(width, height)
	if base == nil {
		return nil
	}
	return loader.Highlight(base, factor)
}

// Rotate rotates the decoded image counter-clockwise by the given angle in
// degrees. It does nothing before the first load.
func (t *Thumb) Rotate(ccwDegrees float64, loader ImageLoader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.img == nil {
		return
	}
	t.img = loader.Rotate(t.img, ccwDegrees)
	bounds := t.img.Bounds()
	t.width = bounds.Dx()
	t.height = bounds.Dy()
	t.scaled = nil
}

// Reflect mirrors the decoded image, horizontally when horizontal is set and
// vertically otherwise. It does nothing before the first load.
func (t *Thumb) Reflect(horizontal bool, loader ImageLoader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.img == nil {
		return
	}
	t.img = loader.Reflect(t.img, horizontal)
	t.scaled = nil
}

// fitSize scales (w, h) to fit within (maxW, maxH) preserving aspect ratio,
// never returning a dimension below one pixel.
func fitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := int(float64(w) * scale)
	fh := int(float64(h) * scale)
	return max(fw, 1), max(fh, 1)
}

// hasAlpha reports whether img has any non-opaque pixel, using the image's
// own Opaque method when it provides one.
func hasAlpha(img image.Image) bool {
	if op, ok := img.(interface{ Opaque() bool }); ok {
		return !op.Opaque()
	}
	return false
}
