package thumbgrid

// ptI is an integer point in document space, the unscrolled coordinate
// system all grid geometry works in.
type ptI struct {
	x, y int
}

// rectI is an integer rectangle in document space.
type rectI struct {
	x, y, w, h int
}

func (r rectI) right() int  { return r.x + r.w }
func (r rectI) bottom() int { return r.y + r.h }

func (r rectI) empty() bool { return r.w <= 0 || r.h <= 0 }

// intersects reports whether the rectangles share any area. Touching edges
// do not count.
func (r rectI) intersects(o rectI) bool {
	return r.x < o.right() && r.right() > o.x && r.y < o.bottom() && r.bottom() > o.y
}

// union returns the smallest rectangle covering both r and o.
func (r rectI) union(o rectI) rectI {
	if r.empty() {
		return o
	}
	if o.empty() {
		return r
	}
	x := min(r.x, o.x)
	y := min(r.y, o.y)
	return rectI{x, y, max(r.right(), o.right()) - x, max(r.bottom(), o.bottom()) - y}
}

// rectBetween returns the rectangle spanned by two corner points in any
// orientation.
func rectBetween(a, b ptI) rectI {
	x := min(a.x, b.x)
	y := min(a.y, b.y)
	return rectI{x, y, max(a.x, b.x) - x, max(a.y, b.y) - y}
}

// floorDiv divides rounding towards negative infinity. Grid geometry relies
// on floored division so positions left of or above the first cell map to
// negative rows and columns instead of truncating to zero.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// gridMetrics is the precomputed geometry shared by painting, hit testing,
// scrolling and damage resolution. All values are document-space pixels.
type gridMetrics struct {
	cols, rows int

	// cellW and cellH are the full advance per column and row: thumbnail
	// size plus spacing, with the caption height folded into cellH.
	cellW, cellH int

	// extraPad is the leftover client width divided between the columns;
	// advX is cellW widened by half of it, the actual horizontal advance.
	extraPad int
	advX     int

	originX, originY int

	virtualW, virtualH int

	thumbW, thumbH int
	spacing        int
	labelH         int
}

// computeMetrics lays the grid out for a client width and item count. The
// column count is clamped to at least one and the row count to at least one
// so geometry stays usable for an empty grid.
func computeMetrics(clientW, count, thumbW, thumbH, spacing, labelH int) gridMetrics {
	cellW := thumbW + spacing
	cellH := thumbH + spacing
	cols := max(floorDiv(clientW-spacing, cellW), 1)
	rows := max((count+cols-1)/cols, 1)
	cellH += labelH

	// Distribute the unused width between the columns. The pool can go
	// negative when the client is narrower than a single cell; floored
	// division keeps the columns packed left in that case.
	extraPad := floorDiv(clientW-spacing-cols*cellW, cols+1)
	advX := cellW + floorDiv(extraPad, 2)

	minW := cellW + spacing
	minH := cellH + spacing
	return gridMetrics{
		cols:     cols,
		rows:     rows,
		cellW:    cellW,
		cellH:    cellH,
		extraPad: extraPad,
		advX:     advX,
		originX:  floorDiv(spacing+extraPad, 2),
		originY:  spacing / 2,
		virtualW: max(cols*cellW+spacing, minW),
		virtualH: max(rows*cellH+spacing, minH),
		thumbW:   thumbW,
		thumbH:   thumbH,
		spacing:  spacing,
		labelH:   labelH,
	}
}

// cellRect returns the full cell rectangle for an item index, including the
// per-column extra padding.
func (m gridMetrics) cellRect(index int) rectI {
	row := index / m.cols
	col := index % m.cols
	return rectI{m.originX + col*m.advX, m.originY + row*m.cellH, m.advX, m.cellH}
}

// rowTop returns the document y of a row, used for scroll targeting.
func (m gridMetrics) rowTop(row int) int { return row * m.cellH }
