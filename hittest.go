package thumbgrid

// HitFlag describes where a position landed relative to the nearest cell.
type HitFlag uint8

const (
	// HitNone means the position is inside the grid but not over a cell,
	// for example in the spacing between cells.
	HitNone HitFlag = 0

	// HitLeft through HitBelow mark positions outside the populated cell
	// area; they combine, so a point above and left of the first cell
	// carries HitLeft | HitAbove. The Index is clamped to the nearest cell.
	HitLeft  HitFlag = 1 << 0
	HitRight HitFlag = 1 << 1
	HitAbove HitFlag = 1 << 2
	HitBelow HitFlag = 1 << 3

	// HitCenter means the position is directly over an existing cell.
	HitCenter HitFlag = 1 << 4
)

// HitInfo is the result of mapping a position onto the grid.
type HitInfo struct {
	// Index is the item index for the tested position. When the position is
	// outside the populated area it is the clamped nearest index, which can
	// still exceed the item count on a partially filled last row.
	Index int
	// Col and Row are the clamped cell coordinates.
	Col, Row int
	// Flags describes where the position fell. HitCenter is set only when
	// the position is over an existing item.
	Flags HitFlag
}

// hitTestDoc maps a document-space position onto cell coordinates for a grid
// of count items. Directional flags record every clamp that was applied.
func hitTestDoc(m gridMetrics, count, x, y int) HitInfo {
	var flags HitFlag

	col := floorDiv(x-m.spacing-m.extraPad, m.advX)
	switch {
	case col < 0:
		col = 0
		flags |= HitLeft
	case col >= m.cols:
		col = m.cols - 1
		flags |= HitRight
	}

	row := floorDiv(y-m.spacing/2, m.cellH)
	switch {
	case row < 0:
		row = 0
		flags |= HitAbove
	case row >= m.rows:
		row = m.rows - 1
		flags |= HitBelow
	}

	// Inside the clamped cell, require the position to be over the cell
	// proper rather than the surrounding margin.
	if flags == HitNone {
		left := m.originX + col*m.advX
		top := m.originY + row*m.cellH
		if x < left || x > left+m.advX {
			flags |= HitLeft
		}
		if y < top || y > top+m.cellH {
			flags |= HitAbove
		}
	}

	index := row*m.cols + col
	if flags == HitNone && index < count {
		flags = HitCenter
	}
	return HitInfo{Index: index, Col: col, Row: row, Flags: flags}
}
