package thumbgrid

// damage accumulates invalidated document-space rectangles between flushes.
// The grid adds a rectangle for every visual change driven by geometry (the
// rubber band, zoom, drops) and resolves them to cell indices in one pass.
type damage struct {
	rects []rectI
}

func (d *damage) add(r rectI) {
	if !r.empty() {
		d.rects = append(d.rects, r)
	}
}

func (d *damage) reset() {
	d.rects = d.rects[:0]
}

func (d *damage) pending() bool { return len(d.rects) > 0 }

// dirtyCells resolves damage rectangles to the indices of cells needing a
// repaint. A coarse row and column range is taken from the union of the
// rectangles, then each candidate cell is tested against the individual
// rectangles so disjoint damage does not repaint the cells between.
func dirtyCells(m gridMetrics, count int, rects []rectI) []int {
	if len(rects) == 0 || count == 0 {
		return nil
	}
	union := rects[0]
	for _, r := range rects[1:] {
		union = union.union(r)
	}

	startCol := max(floorDiv(union.x-m.originX, m.advX), 0)
	endCol := min(floorDiv(union.right()-m.originX, m.advX)+1, m.cols)
	startRow := max(floorDiv(union.y-m.originY, m.cellH), 0)
	endRow := min(floorDiv(union.bottom()-m.originY, m.cellH)+1, m.rows)
	if startCol >= endCol || startRow >= endRow {
		return nil
	}

	start := startRow*m.cols + startCol
	end := min(endRow*m.cols+endCol, count)

	var out []int
	for i := max(start, 0); i < end; i++ {
		cell := m.cellRect(i)
		for _, r := range rects {
			if cell.intersects(r) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
