package thumbgrid

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// thumbCell renders one grid cell: hover and selection highlight, focus
// ring, drop shadow, the thumbnail image with its outline, and the caption.
// Cells are passive; they implement no input interfaces, so pointer events
// fall through to the body which resolves them in document space.
type thumbCell struct {
	widget.BaseWidget

	grid  *Grid
	index int
	thumb *Thumb

	highlight *canvas.Rectangle
	focusRing *canvas.Rectangle
	shadow    *canvas.Rectangle
	outline   *canvas.Rectangle
	image     *canvas.Image
	label     *canvas.Text
}

func newThumbCell(g *Grid) *thumbCell {
	c := &thumbCell{
		grid:      g,
		index:     -1,
		highlight: canvas.NewRectangle(color.Transparent),
		focusRing: canvas.NewRectangle(color.Transparent),
		shadow:    canvas.NewRectangle(color.NRGBA{A: 0x3c}),
		outline:   canvas.NewRectangle(color.Transparent),
		image:     canvas.NewImageFromImage(nil),
		label:     canvas.NewText("", color.Black),
	}
	c.highlight.CornerRadius = 2
	c.focusRing.CornerRadius = 2
	c.image.FillMode = canvas.ImageFillContain
	c.label.Alignment = fyne.TextAlignCenter
	c.ExtendBaseWidget(c)
	return c
}

// bind points the cell at an item and repaints it. Index -1 blanks the cell.
func (c *thumbCell) bind(index int, t *Thumb) {
	c.index = index
	c.thumb = t
	c.Refresh()
}

func (c *thumbCell) CreateRenderer() fyne.WidgetRenderer {
	return &thumbCellRenderer{cell: c}
}

type thumbCellRenderer struct {
	cell *thumbCell
}

func (r *thumbCellRenderer) Layout(fyne.Size) { r.update() }

func (r *thumbCellRenderer) MinSize() fyne.Size {
	m := r.cell.grid.metrics
	return fyne.NewSize(float32(m.advX), float32(m.cellH))
}

func (r *thumbCellRenderer) Refresh() {
	r.update()
	c := r.cell
	c.highlight.Refresh()
	c.focusRing.Refresh()
	c.shadow.Refresh()
	c.outline.Refresh()
	c.image.Refresh()
	c.label.Refresh()
}

func (r *thumbCellRenderer) Objects() []fyne.CanvasObject {
	c := r.cell
	return []fyne.CanvasObject{c.highlight, c.focusRing, c.shadow, c.outline, c.image, c.label}
}

func (r *thumbCellRenderer) Destroy() {}

// update derives every visual from the grid's state and geometry. All
// coordinates are local to the cell, whose size is advX by cellH.
func (r *thumbCellRenderer) update() {
	c := r.cell
	g := c.grid
	t := c.thumb
	if t == nil || c.index < 0 {
		c.highlight.Hide()
		c.focusRing.Hide()
		c.shadow.Hide()
		c.outline.Hide()
		c.image.Hide()
		c.label.Hide()
		return
	}

	m := g.metrics
	opts := &g.opts
	hovered := g.state.isHovered(c.index)
	selected := g.state.isSelected(c.index)
	focused := c.index == g.state.focused && g.canvasFocused

	contentX := m.extraPad / 2

	// Highlight area, inset a quarter of the spacing inside the cell.
	inset := m.spacing / 4
	hlRect := rectI{contentX + inset, inset, m.cellW - 2*inset, m.cellH - 2*inset}
	hlFill, hlStroke := highlightColors(opts, hovered, selected)
	if hlFill != nil || hlStroke != nil {
		c.highlight.FillColor = orTransparent(hlFill)
		c.highlight.StrokeColor = orTransparent(hlStroke)
		c.highlight.StrokeWidth = strokeWidth(hlStroke)
		moveResize(c.highlight, hlRect)
		c.highlight.Show()
	} else {
		c.highlight.Hide()
	}

	if focused {
		c.focusRing.FillColor = color.Transparent
		c.focusRing.StrokeColor = theme.Color(theme.ColorNameFocus)
		c.focusRing.StrokeWidth = 1
		moveResize(c.focusRing, hlRect)
		c.focusRing.Show()
	} else {
		c.focusRing.Hide()
	}

	// The image is fitted to the thumbnail box and centred in it.
	img := t.Scaled(m.thumbW, m.thumbH)
	if img != nil && hovered && opts.ImageHighlightFactor != 1 {
		img = t.Highlighted(m.thumbW, m.thumbH, opts.ImageHighlightFactor, opts.Loader)
	}
	var imgRect rectI
	if img != nil {
		b := img.Bounds()
		iw, ih := b.Dx(), b.Dy()
		if iw > m.thumbW || ih > m.thumbH {
			iw, ih = fitSize(iw, ih, m.thumbW, m.thumbH)
		}
		imgRect = rectI{
			contentX + m.spacing/2 + (m.thumbW-iw)/2,
			m.spacing/2 + (m.thumbH-ih)/2,
			iw,
			ih,
		}
		c.image.Image = img
		moveResize(c.image, imgRect)
		c.image.Show()
	} else {
		c.image.Image = nil
		c.image.Hide()
	}

	opaque := img != nil && !t.HasAlpha()

	if opaque && opts.ShowImageShadow {
		moveResize(c.shadow, rectI{imgRect.x + 3, imgRect.y + 3, imgRect.w, imgRect.h})
		c.shadow.Show()
	} else {
		c.shadow.Hide()
	}

	outlineColor := opts.OutlineColorDeselected
	if selected {
		outlineColor = opts.OutlineColorSelected
	}
	if opaque && outlineColor != nil {
		c.outline.FillColor = color.Transparent
		c.outline.StrokeColor = outlineColor
		c.outline.StrokeWidth = 1
		moveResize(c.outline, rectI{imgRect.x - 1, imgRect.y - 1, imgRect.w + 2, imgRect.h + 2})
		c.outline.Show()
	} else {
		c.outline.Hide()
	}

	if opts.ShowFilenames != nil {
		textSize := theme.TextSize()
		style := fyne.TextStyle{}
		text := truncateText(opts.ShowFilenames(t), float32(m.cellW-m.spacing), textSize, style)
		c.label.Text = text
		c.label.TextSize = textSize
		c.label.TextStyle = style
		c.label.Color = g.captionColor(t)
		textH := m.labelH - 4
		imgBottom := m.spacing/2 + m.thumbH
		if img != nil {
			imgBottom = imgRect.bottom()
		}
		labelY := min(m.cellH-textH-4, imgBottom+7)
		moveResize(c.label, rectI{contentX + m.spacing/2, labelY, m.thumbW, textH})
		c.label.Show()
	} else {
		c.label.Hide()
	}
}

// highlightColors picks the fill and stroke of the highlight area for a
// hover and selection state, following the option colours.
func highlightColors(opts *Options, hovered, selected bool) (fill, stroke color.Color) {
	switch {
	case hovered && opts.ShowHighlightedArea && selected:
		return opts.HighlightColorSelected, opts.HighlightSelectedBorderColor
	case hovered && opts.ShowHighlightedArea:
		return opts.HighlightColorDeselected, opts.HighlightColorDeselected
	case selected:
		return opts.HighlightColorSelected, nil
	default:
		return nil, nil
	}
}

func orTransparent(c color.Color) color.Color {
	if c == nil {
		return color.Transparent
	}
	return c
}

func strokeWidth(stroke color.Color) float32 {
	if stroke == nil {
		return 0
	}
	return 1
}

func moveResize(obj fyne.CanvasObject, r rectI) {
	obj.Move(fyne.NewPos(float32(r.x), float32(r.y)))
	obj.Resize(fyne.NewSize(float32(r.w), float32(r.h)))
}

// truncateText shortens s with a trailing ellipsis until it fits maxWidth,
// found by binary search over the rune count.
func truncateText(s string, maxWidth, textSize float32, style fyne.TextStyle) string {
	app := fyne.CurrentApp()
	if app == nil {
		return s
	}
	measure := func(str string) float32 {
		size, _ := app.Driver().RenderedTextSize(str, textSize, style, nil)
		return size.Width
	}
	if measure(s) <= maxWidth {
		return s
	}
	const ellipsis = "..."
	runes := []rune(s)
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if measure(string(runes[:mid])+ellipsis) <= maxWidth {
			low = mid
		} else {
			high = mid - 1
		}
	}
	if low == 0 {
		return ellipsis
	}
	return string(runes[:low]) + ellipsis
}
