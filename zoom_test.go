package thumbgrid

import "testing"

func TestZoomSteps(t *testing.T) {
	opts := plainOptions()
	opts.ZoomRate = 2
	g, _ := newTestGrid(t, opts, 400, 300)
	g.SetThumbs(makeThumbs(t, 7))

	g.ZoomIn()
	if o := g.Options(); o.ThumbWidth != 192 || o.ThumbHeight != 160 {
		t.Errorf("size = %dx%d after zoom in", o.ThumbWidth, o.ThumbHeight)
	}

	g.TypedRune('-')
	if o := g.Options(); o.ThumbWidth != 96 || o.ThumbHeight != 80 {
		t.Errorf("size = %dx%d after zoom out", o.ThumbWidth, o.ThumbHeight)
	}

	g.zoomSteps(1)
	if o := g.Options(); o.ThumbWidth != 192 {
		t.Errorf("width = %d after one wheel step", o.ThumbWidth)
	}
	g.zoomSteps(-1)
	if o := g.Options(); o.ThumbWidth != 96 {
		t.Errorf("width = %d after one wheel step back", o.ThumbWidth)
	}
}

func TestZoomClampsToViewport(t *testing.T) {
	opts := plainOptions()
	opts.ZoomRate = 2
	g, _ := newTestGrid(t, opts, 150, 150)
	g.SetThumbs(makeThumbs(t, 3))

	// Doubling 96x80 would overflow a 150 pixel client; the width clamps to
	// the client minus spacing and the height follows the aspect ratio.
	g.ZoomIn()
	if o := g.Options(); o.ThumbWidth != 140 || o.ThumbHeight != 116 {
		t.Errorf("size = %dx%d", o.ThumbWidth, o.ThumbHeight)
	}
}

func TestZoomOutStopsAtMinimum(t *testing.T) {
	opts := plainOptions()
	opts.ZoomRate = 2
	opts.ThumbWidth = 40
	opts.ThumbHeight = 30
	g, _ := newTestGrid(t, opts, 400, 300)
	g.SetThumbs(makeThumbs(t, 3))

	g.ZoomOut()
	if o := g.Options(); o.ThumbWidth != 40 || o.ThumbHeight != 30 {
		t.Errorf("size = %dx%d, zooming out at the minimum must hold", o.ThumbWidth, o.ThumbHeight)
	}
}

func TestZoomRateOneDisablesZoom(t *testing.T) {
	opts := plainOptions()
	opts.ZoomRate = 1
	g, _ := newTestGrid(t, opts, 400, 300)

	g.ZoomIn()
	g.ZoomOut()
	if o := g.Options(); o.ThumbWidth != 96 || o.ThumbHeight != 80 {
		t.Errorf("size = %dx%d", o.ThumbWidth, o.ThumbHeight)
	}
}

func TestSetThumbSize(t *testing.T) {
	g, _ := newTestGrid(t, plainOptions(), 400, 300)
	g.SetThumbs(makeThumbs(t, 7))

	g.SetThumbSize(200, 100)
	if o := g.Options(); o.ThumbWidth != 200 || o.ThumbHeight != 100 {
		t.Fatalf("size = %dx%d", o.ThumbWidth, o.ThumbHeight)
	}
	if m := g.Metrics(); m.Cols != 1 {
		t.Errorf("cols = %d for 200 wide thumbs in a 400 client", m.Cols)
	}

	// Tiny sizes clamp to the 30 pixel floor, aspect preserved.
	g.SetThumbSize(10, 10)
	if o := g.Options(); o.ThumbWidth != 30 || o.ThumbHeight != 30 {
		t.Errorf("size = %dx%d", o.ThumbWidth, o.ThumbHeight)
	}
}
