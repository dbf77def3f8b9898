package thumbgrid

import "testing"

func TestFloorDiv(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{7, 2, 3},
		{6, 3, 2},
		{0, 5, 0},
		{-1, 2, -1},
		{-4, 3, -2},
		{-6, 3, -2},
		{-66, 2, -33},
		{-23, 2, -12},
		{7, -2, -4},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestComputeMetricsReflow(t *testing.T) {
	m := computeMetrics(400, 7, 96, 80, 10, 0)

	if m.cols != 3 {
		t.Fatalf("cols = %d, want 3", m.cols)
	}
	if m.rows != 3 {
		t.Fatalf("rows = %d, want 3", m.rows)
	}
	if m.cellW != 106 || m.cellH != 90 {
		t.Errorf("cell = %dx%d, want 106x90", m.cellW, m.cellH)
	}
	if m.extraPad != 18 {
		t.Errorf("extraPad = %d, want 18", m.extraPad)
	}
	if m.advX != 115 {
		t.Errorf("advX = %d, want 115", m.advX)
	}
	if m.originX != 14 || m.originY != 5 {
		t.Errorf("origin = (%d, %d), want (14, 5)", m.originX, m.originY)
	}
	if m.virtualW != 328 || m.virtualH != 280 {
		t.Errorf("virtual = %dx%d, want 328x280", m.virtualW, m.virtualH)
	}
}

func TestComputeMetricsLabelHeight(t *testing.T) {
	m := computeMetrics(400, 7, 96, 80, 10, 18)
	if m.cellH != 108 {
		t.Errorf("cellH = %d, want 108", m.cellH)
	}
	if m.cellW != 106 {
		t.Errorf("cellW = %d, want 106", m.cellW)
	}
}

func TestComputeMetricsNarrowClient(t *testing.T) {
	// Narrower than a single cell: the column count clamps to one and the
	// leftover pool goes negative with floored division.
	m := computeMetrics(50, 3, 96, 80, 10, 0)
	if m.cols != 1 {
		t.Fatalf("cols = %d, want 1", m.cols)
	}
	if m.rows != 3 {
		t.Fatalf("rows = %d, want 3", m.rows)
	}
	if m.extraPad != -33 {
		t.Errorf("extraPad = %d, want -33", m.extraPad)
	}
	if m.advX != 89 {
		t.Errorf("advX = %d, want 89", m.advX)
	}
	if m.originX != -12 {
		t.Errorf("originX = %d, want -12", m.originX)
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := computeMetrics(400, 0, 96, 80, 10, 0)
	if m.rows != 1 || m.cols != 3 {
		t.Errorf("empty grid = %d cols x %d rows, want 3x1", m.cols, m.rows)
	}
	if m.virtualH != 100 {
		t.Errorf("virtualH = %d, want one row of %d", m.virtualH, 100)
	}
}

func TestCellRect(t *testing.T) {
	m := computeMetrics(400, 7, 96, 80, 10, 0)
	cases := []struct {
		index int
		want  rectI
	}{
		{0, rectI{14, 5, 115, 90}},
		{2, rectI{244, 5, 115, 90}},
		{3, rectI{14, 95, 115, 90}},
		{6, rectI{14, 185, 115, 90}},
	}
	for _, c := range cases {
		if got := m.cellRect(c.index); got != c.want {
			t.Errorf("cellRect(%d) = %+v, want %+v", c.index, got, c.want)
		}
	}
}

func TestRectIntersects(t *testing.T) {
	a := rectI{10, 10, 20, 20}
	if !a.intersects(rectI{25, 25, 20, 20}) {
		t.Error("overlapping rects should intersect")
	}
	if a.intersects(rectI{30, 10, 5, 5}) {
		t.Error("rects sharing only an edge should not intersect")
	}
	if a.intersects(rectI{100, 100, 5, 5}) {
		t.Error("distant rects should not intersect")
	}
}

func TestRectUnion(t *testing.T) {
	a := rectI{10, 10, 20, 20}
	b := rectI{40, 5, 10, 10}
	got := a.union(b)
	want := rectI{10, 5, 40, 25}
	if got != want {
		t.Fatalf("union = %+v, want %+v", got, want)
	}
	if u := (rectI{}).union(b); u != b {
		t.Errorf("union with empty = %+v, want %+v", u, b)
	}
}

func TestRectBetween(t *testing.T) {
	got := rectBetween(ptI{50, 60}, ptI{10, 20})
	want := rectI{10, 20, 40, 40}
	if got != want {
		t.Fatalf("rectBetween = %+v, want %+v", got, want)
	}
}
