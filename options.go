package thumbgrid

import (
	"image/color"
	"time"
)

// Options configures a Grid. Zero values fall back to sensible defaults
// where noted; start from DefaultOptions and override fields to taste.
type Options struct {
	// OutlineColorDeselected and OutlineColorSelected frame the thumbnail
	// image itself. Outlines are skipped for images with transparency. A nil
	// colour disables the outline for that state.
	OutlineColorDeselected color.Color
	OutlineColorSelected   color.Color

	// HighlightColorDeselected fills the cell under the pointer;
	// HighlightColorSelected fills selected cells, with
	// HighlightSelectedBorderColor as their border.
	HighlightColorDeselected     color.Color
	HighlightColorSelected       color.Color
	HighlightSelectedBorderColor color.Color

	// BackgroundColor paints the grid background; nil uses the theme's
	// input background. TextColor is the caption colour; nil uses the theme
	// foreground. A Thumb's own TextColor overrides both.
	BackgroundColor color.Color
	TextColor       color.Color

	// ShowHighlightedArea fills the hovered cell's highlight area. When off,
	// hovering only brightens the image by ImageHighlightFactor.
	ShowHighlightedArea bool

	// ImageHighlightFactor multiplies image brightness under the pointer.
	// 1.0 disables the effect; zero is treated as 1.0.
	ImageHighlightFactor float64

	// ShowImageShadow draws a drop shadow behind opaque thumbnails.
	ShowImageShadow bool

	// ShowFilenames derives the caption under each thumbnail. Nil disables
	// captions and reclaims their vertical space.
	ShowFilenames func(*Thumb) string

	// ShowTooltip enables hover tooltips after TooltipDelay, composed of
	// TooltipFields.
	ShowTooltip   bool
	TooltipDelay  time.Duration
	TooltipFields TooltipField

	// ThumbSpacing is the gap between cells in pixels, at least 4.
	ThumbSpacing int

	// ThumbWidth and ThumbHeight bound the thumbnail images. Both are kept
	// at 30 or more, preserving aspect ratio when one is raised.
	ThumbWidth  int
	ThumbHeight int

	// AllowDragging turns drags that start on a selected cell into a
	// drag-out reported through Grid.OnDragOut instead of a rubber-band
	// selection.
	AllowDragging bool

	// AcceptsFiles lets Grid.DropFiles insert dropped image files.
	AcceptsFiles bool

	// ZoomRate scales the thumbnail size per zoom step. 1.0 disables
	// zooming; zero is treated as 1.0.
	ZoomRate float64

	// SortLess orders the thumbnails whenever the set changes. Nil keeps
	// insertion order.
	SortLess func(a, b *Thumb) bool

	// SingleSelect restricts the selection to one item and disables the
	// rubber band and range gestures.
	SingleSelect bool

	// Loader decodes images. Nil uses the built-in NativeLoader; wrap it in
	// NewCachingLoader or NewMaxSizeLoader for decode caching or size caps.
	Loader ImageLoader

	// Parallelism is the number of decode workers, at least 1.
	Parallelism int
}

// FormatFileName is the default caption formatter. It shows the file's base
// name.
func FormatFileName(t *Thumb) string { return t.Name() }

// DefaultOptions returns the configuration a plain New-constructed Grid
// starts from.
func DefaultOptions() Options {
	return Options{
		OutlineColorDeselected:       color.NRGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
		OutlineColorSelected:         color.NRGBA{R: 0x99, G: 0xd1, B: 0xff, A: 0xff},
		HighlightColorDeselected:     color.NRGBA{R: 0xe5, G: 0xf3, B: 0xff, A: 0xff},
		HighlightColorSelected:       color.NRGBA{R: 0xcc, G: 0xe8, B: 0xff, A: 0xff},
		HighlightSelectedBorderColor: color.NRGBA{R: 0x99, G: 0xd1, B: 0xff, A: 0xff},
		ShowHighlightedArea:          true,
		ImageHighlightFactor:         1.01,
		ShowImageShadow:              true,
		ShowFilenames:                FormatFileName,
		ShowTooltip:                  true,
		TooltipDelay:                 time.Second,
		TooltipFields:                TooltipDefault,
		ThumbSpacing:                 10,
		ThumbWidth:                   96,
		ThumbHeight:                  80,
		ZoomRate:                     1.4,
		Parallelism:                  5,
	}
}

// normalized returns o with out-of-range values clamped and zero values
// replaced by their defaults.
func (o Options) normalized() Options {
	o.ThumbSpacing = max(o.ThumbSpacing, 4)
	o.ThumbWidth, o.ThumbHeight = clampThumbSize(o.ThumbWidth, o.ThumbHeight)
	o.Parallelism = max(o.Parallelism, 1)
	if o.ZoomRate <= 0 {
		o.ZoomRate = 1
	}
	if o.ImageHighlightFactor == 0 {
		o.ImageHighlightFactor = 1
	}
	if o.TooltipDelay < 0 {
		o.TooltipDelay = 0
	}
	if o.Loader == nil {
		o.Loader = defaultLoader
	}
	return o
}

// minThumbDimension is the smallest thumbnail edge; zooming and explicit
// sizing both clamp to it.
const minThumbDimension = 30

// clampThumbSize raises either thumbnail dimension to the minimum,
// rescaling the other to keep the aspect ratio.
func clampThumbSize(w, h int) (int, int) {
	w = max(w, 1)
	h = max(h, 1)
	if w < minThumbDimension {
		h = minThumbDimension * h / w
		w = minThumbDimension
	}
	if h < minThumbDimension {
		w = minThumbDimension * w / h
		h = minThumbDimension
	}
	return w, h
}
