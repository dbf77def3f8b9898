package thumbgrid

import (
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"
)

// gateLoader blocks every decode until the gate is fed, letting tests hold a
// job in flight.
type gateLoader struct {
	ImageLoader
	gate chan struct{}
}

func (g *gateLoader) LoadImage(path string) (image.Image, string, error) {
	<-g.gate
	return g.ImageLoader.LoadImage(path)
}

func expectNoDeliveries(t *testing.T, delivered chan func()) {
	t.Helper()
	select {
	case <-delivered:
		t.Fatal("unexpected delivery")
	case <-time.After(100 * time.Millisecond):
	}
}

func makeThumbs(t *testing.T, n int) []*Thumb {
	t.Helper()
	dir := t.TempDir()
	thumbs := make([]*Thumb, n)
	for i := range thumbs {
		path := writePNG(t, dir, fmt.Sprintf("%d.png", i), 8, 8, color.White)
		thumbs[i] = NewThumb(path)
	}
	return thumbs
}

func TestLoadPoolRunsJobsInOrder(t *testing.T) {
	thumbs := makeThumbs(t, 5)

	delivered := make(chan func(), 64)
	var started, finished []*Thumb
	pool := newLoadPool(1, NewNativeLoader(),
		func(f func()) { delivered <- f },
		func(th *Thumb) { started = append(started, th) },
		func(th *Thumb) { finished = append(finished, th) })
	defer pool.stop()

	pool.submit(thumbs, false)
	runDeliveries(t, delivered, func() bool { return len(finished) == len(thumbs) })

	for i, th := range thumbs {
		if finished[i] != th {
			t.Fatalf("finish order: got %s at %d", finished[i].Name(), i)
		}
		if !th.Loaded() || !th.Valid() {
			t.Errorf("%s not loaded", th.Name())
		}
	}
	if len(started) != len(thumbs) {
		t.Errorf("started callbacks = %d, want %d", len(started), len(thumbs))
	}
}

func TestLoadPoolStopDropsQueue(t *testing.T) {
	thumbs := makeThumbs(t, 3)

	gate := make(chan struct{})
	delivered := make(chan func(), 64)
	var started, finished int
	pool := newLoadPool(1, &gateLoader{ImageLoader: NewNativeLoader(), gate: gate},
		func(f func()) { delivered <- f },
		func(*Thumb) { started++ },
		func(*Thumb) { finished++ })

	pool.submit(thumbs, false)
	runDeliveries(t, delivered, func() bool { return started == 1 })

	// The first job is blocked inside the loader. Stopping now drops the
	// other two from the queue; the running one still finishes.
	pool.stop()
	close(gate)
	runDeliveries(t, delivered, func() bool { return finished == 1 })
	expectNoDeliveries(t, delivered)

	pool.submit(thumbs, false)
	expectNoDeliveries(t, delivered)
	if started != 1 || finished != 1 {
		t.Errorf("started=%d finished=%d after stop", started, finished)
	}
}

func TestLoadPoolMinimumOneWorker(t *testing.T) {
	thumbs := makeThumbs(t, 1)

	delivered := make(chan func(), 8)
	finished := 0
	pool := newLoadPool(0, NewNativeLoader(),
		func(f func()) { delivered <- f },
		nil,
		func(*Thumb) { finished++ })
	defer pool.stop()

	pool.submit(thumbs, false)
	runDeliveries(t, delivered, func() bool { return finished == 1 })
}
