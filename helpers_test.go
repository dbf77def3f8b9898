package thumbgrid

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

// writePNG writes a solid-colour PNG fixture and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// plainOptions returns options with captions and tooltips off so geometry
// stays at the documented figures without a text driver in the mix.
func plainOptions() Options {
	opts := DefaultOptions()
	opts.ShowFilenames = nil
	opts.ShowTooltip = false
	return opts
}

// newTestGrid builds a grid with a fixed viewport and reroutes worker
// deliveries into the returned channel so tests control when they run.
func newTestGrid(t *testing.T, opts Options, width, height float32) (*Grid, chan func()) {
	t.Helper()
	test.NewApp()
	delivered := make(chan func(), 256)
	g := New(opts)
	g.deliver = func(f func()) { delivered <- f }
	g.scroll.Resize(fyne.NewSize(width, height))
	g.recompute(false)
	t.Cleanup(g.Shutdown)
	return g, delivered
}

// runDeliveries executes delivered closures until stop returns true.
func runDeliveries(t *testing.T, delivered chan func(), stop func() bool) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for !stop() {
		select {
		case f := <-delivered:
			f()
		case <-timeout:
			t.Fatal("timed out waiting for worker deliveries")
		}
	}
}

// cellCenterPt returns the document-space centre of the cell at index.
func cellCenterPt(g *Grid, index int) ptI {
	r := g.metrics.cellRect(index)
	return ptI{r.x + r.w/2, r.y + r.h/2}
}
