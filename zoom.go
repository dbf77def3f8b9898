package thumbgrid

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// ZoomIn grows the thumbnail size by the configured zoom rate, keeping the
// cell within the viewport.
func (g *Grid) ZoomIn() { g.zoom(false) }

// ZoomOut shrinks the thumbnail size by the configured zoom rate.
func (g *Grid) ZoomOut() { g.zoom(true) }

func (g *Grid) zoom(out bool) {
	rate := g.opts.ZoomRate
	if rate == 1 {
		return
	}
	if out {
		rate = 1 / rate
	}
	clientW, clientH := g.clientSize()
	w := float64(g.opts.ThumbWidth)
	h := float64(g.opts.ThumbHeight)
	spacing := float64(g.opts.ThumbSpacing)
	aspect := h / w

	newW := w * rate
	newH := h * rate
	// Clamp to the viewport first and the minimum edge second, preserving
	// the aspect ratio through every adjustment.
	if newW+spacing > float64(clientW) && clientW > 0 {
		newW = float64(clientW) - spacing
		newH = newW * aspect
	}
	if newH+spacing > float64(clientH) && clientH > 0 {
		newH = float64(clientH) - spacing
		newW = newH / aspect
	}
	if newW < minThumbDimension {
		newW = minThumbDimension
		newH = newW * aspect
	}
	if newH < minThumbDimension {
		newH = minThumbDimension
		newW = newH / aspect
	}
	g.SetThumbSize(int(newW), int(newH))
}

// SetThumbSize changes the thumbnail bounds, clamped to the 30 pixel
// minimum with aspect preserved, and reflows the grid around the focused
// cell.
func (g *Grid) SetThumbSize(width, height int) {
	width, height = clampThumbSize(width, height)
	if width == g.opts.ThumbWidth && height == g.opts.ThumbHeight {
		return
	}
	g.opts.ThumbWidth = width
	g.opts.ThumbHeight = height
	g.reflow()
}

// zoomScrollOverlay sits above the scroll container and captures wheel
// events while the zoom modifier is held. Fyne only routes scrolls to
// visible widgets, so reporting visibility from the live modifier state
// toggles capture without any explicit event plumbing.
type zoomScrollOverlay struct {
	widget.BaseWidget

	onZoom func(steps int)
	acc    float32
}

var _ fyne.Scrollable = (*zoomScrollOverlay)(nil)

func newZoomScrollOverlay(onZoom func(steps int)) *zoomScrollOverlay {
	z := &zoomScrollOverlay{onZoom: onZoom}
	z.ExtendBaseWidget(z)
	return z
}

func zoomModifierHeld() bool {
	drv, ok := fyne.CurrentApp().Driver().(desktop.Driver)
	if !ok {
		return false
	}
	mods := drv.CurrentKeyModifiers()
	return mods&fyne.KeyModifierControl != 0 || mods&fyne.KeyModifierShortcutDefault != 0
}

func (z *zoomScrollOverlay) Visible() bool {
	return zoomModifierHeld()
}

// Scrolled accumulates wheel deltas so that one mouse notch or roughly a
// notch worth of trackpad travel maps to one zoom step.
func (z *zoomScrollOverlay) Scrolled(e *fyne.ScrollEvent) {
	if !zoomModifierHeld() {
		return
	}
	const notch = 40
	z.acc += e.Scrolled.DY
	steps := int(z.acc / notch)
	if steps == 0 {
		return
	}
	z.acc -= float32(steps) * notch
	if z.onZoom != nil {
		z.onZoom(steps)
	}
}

func (z *zoomScrollOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &zoomOverlayRenderer{}
}

type zoomOverlayRenderer struct{}

func (*zoomOverlayRenderer) Layout(fyne.Size)             {}
func (*zoomOverlayRenderer) MinSize() fyne.Size           { return fyne.Size{} }
func (*zoomOverlayRenderer) Refresh()                     {}
func (*zoomOverlayRenderer) Objects() []fyne.CanvasObject { return nil }
func (*zoomOverlayRenderer) Destroy()                     {}
