package thumbgrid

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// gridBody is the scrolled document: one widget sized to the grid's virtual
// extent. It receives all pointer input in document coordinates and forwards
// it to the Grid, and its renderer keeps a small pool of cells bound to the
// rows currently scrolled into view.
type gridBody struct {
	widget.BaseWidget

	grid     *Grid
	renderer *gridBodyRenderer
}

var (
	_ desktop.Mouseable   = (*gridBody)(nil)
	_ desktop.Hoverable   = (*gridBody)(nil)
	_ fyne.Draggable      = (*gridBody)(nil)
	_ fyne.DoubleTappable = (*gridBody)(nil)
)

func newGridBody(g *Grid) *gridBody {
	b := &gridBody{grid: g}
	b.ExtendBaseWidget(b)
	return b
}

func (b *gridBody) CreateRenderer() fyne.WidgetRenderer {
	r := &gridBodyRenderer{
		body:    b,
		bg:      canvas.NewRectangle(b.grid.backgroundColor()),
		marquee: canvas.NewRectangle(color.Transparent),
	}
	r.marquee.CornerRadius = 2
	r.marquee.StrokeWidth = 2
	r.marquee.Hide()
	b.renderer = r
	return r
}

func (b *gridBody) MouseDown(e *desktop.MouseEvent) {
	b.grid.handleMouseDown(docPt(e.Position), e.Button, e.Modifier)
}

func (b *gridBody) MouseUp(e *desktop.MouseEvent) {
	b.grid.handleMouseUp(docPt(e.Position), e.Button, e.Modifier)
}

func (b *gridBody) MouseIn(e *desktop.MouseEvent) {
	b.grid.handleHover(docPt(e.Position))
}

func (b *gridBody) MouseMoved(e *desktop.MouseEvent) {
	b.grid.handleHover(docPt(e.Position))
}

func (b *gridBody) MouseOut() {
	b.grid.handleHoverExit()
}

func (b *gridBody) Dragged(e *fyne.DragEvent) {
	b.grid.handleDrag(e)
}

func (b *gridBody) DragEnd() {
	b.grid.handleDragEnd()
}

func (b *gridBody) DoubleTapped(*fyne.PointEvent) {
	b.grid.handleDoubleTap()
}

// refreshCells repaints the cells for the given indices if they are bound.
func (b *gridBody) refreshCells(indices []int) {
	if b.renderer == nil {
		return
	}
	b.renderer.refreshCells(indices)
}

// setMarquee shows or hides the rubber-band rectangle.
func (b *gridBody) setMarquee(r rectI, visible bool) {
	if b.renderer == nil {
		return
	}
	mq := b.renderer.marquee
	if !visible {
		mq.Hide()
		return
	}
	mq.StrokeColor = theme.Color(theme.ColorNamePrimary)
	fill := theme.Color(theme.ColorNameFocus)
	if nrgba, ok := fill.(color.NRGBA); ok {
		nrgba.A = 0x40
		mq.FillColor = nrgba
	} else {
		mq.FillColor = fill
	}
	moveResize(mq, r)
	mq.Show()
	mq.Refresh()
}

// rebind recomputes the visible index range and binds the cell pool to it.
func (b *gridBody) rebind() {
	if b.renderer == nil {
		return
	}
	b.renderer.rebind()
}

func docPt(p fyne.Position) ptI {
	return ptI{int(p.X), int(p.Y)}
}

type gridBodyRenderer struct {
	body    *gridBody
	bg      *canvas.Rectangle
	marquee *canvas.Rectangle

	cells []*thumbCell
	start int // first bound index
	bound int // number of bound cells
}

func (r *gridBodyRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.rebind()
}

func (r *gridBodyRenderer) MinSize() fyne.Size {
	m := r.body.grid.metrics
	return fyne.NewSize(float32(m.virtualW), float32(m.virtualH))
}

func (r *gridBodyRenderer) Refresh() {
	r.bg.FillColor = r.body.grid.backgroundColor()
	r.bg.Refresh()
	r.rebind()
}

func (r *gridBodyRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(r.cells)+2)
	objs = append(objs, r.bg)
	for _, c := range r.cells {
		objs = append(objs, c)
	}
	return append(objs, r.marquee)
}

func (r *gridBodyRenderer) Destroy() {}

// rebind binds pooled cells to every row intersecting the scroll viewport,
// plus one overscan row on each side, moving them to their cell rectangles.
func (r *gridBodyRenderer) rebind() {
	g := r.body.grid
	m := g.metrics
	count := len(g.thumbs)

	start, end := 0, 0
	if count > 0 {
		viewTop, viewH := g.viewportY()
		startRow := max(floorDiv(viewTop-m.originY, m.cellH)-1, 0)
		endRow := min(floorDiv(viewTop+viewH-m.originY, m.cellH)+1, m.rows-1)
		start = startRow * m.cols
		end = min((endRow+1)*m.cols, count)
		if start >= end {
			start, end = 0, 0
		}
	}

	need := end - start
	for len(r.cells) < need {
		r.cells = append(r.cells, newThumbCell(g))
	}
	r.start = start
	r.bound = need

	cellSize := fyne.NewSize(float32(m.advX), float32(m.cellH))
	for i, cell := range r.cells {
		if i >= need {
			if cell.index != -1 {
				cell.bind(-1, nil)
			}
			cell.Hide()
			continue
		}
		index := start + i
		rect := m.cellRect(index)
		cell.Move(fyne.NewPos(float32(rect.x), float32(rect.y)))
		cell.Resize(cellSize)
		cell.Show()
		cell.bind(index, g.thumbs[index])
	}
}

func (r *gridBodyRenderer) refreshCells(indices []int) {
	for _, index := range indices {
		if index >= r.start && index < r.start+r.bound {
			r.cells[index-r.start].Refresh()
		}
	}
}
