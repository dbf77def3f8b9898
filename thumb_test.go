package thumbgrid

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewThumbCapturesFileInfo(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 8, 8, color.White)

	th := NewThumb(path)
	if th.Path() != path {
		t.Errorf("Path = %q", th.Path())
	}
	if th.Name() != "a.png" {
		t.Errorf("Name = %q", th.Name())
	}
	if th.ModTime().IsZero() {
		t.Error("ModTime not captured")
	}
	if th.FileSize() <= 0 {
		t.Errorf("FileSize = %d", th.FileSize())
	}
	if th.Loaded() || th.Valid() {
		t.Error("fresh thumb should not be loaded")
	}
}

func TestNewThumbMissingFile(t *testing.T) {
	th := NewThumb(filepath.Join(t.TempDir(), "nope.png"))
	if !th.ModTime().IsZero() || th.FileSize() != 0 {
		t.Fatalf("missing file: mtime=%v size=%d, want zero values", th.ModTime(), th.FileSize())
	}
	if w, h := th.ImageSize(); w != 0 || h != 0 {
		t.Fatalf("image size before load = %dx%d", w, h)
	}
}

func TestThumbLoad(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 64, 32, color.White)

	th := NewThumb(path)
	th.Load(false, NewNativeLoader())
	if !th.Loaded() || !th.Valid() {
		t.Fatal("load failed")
	}
	if w, h := th.ImageSize(); w != 64 || h != 32 {
		t.Errorf("image size = %dx%d, want 64x32", w, h)
	}
	if th.Format() != "png" {
		t.Errorf("format = %q, want png", th.Format())
	}
	if th.HasAlpha() {
		t.Error("opaque image reported alpha")
	}
}

func TestThumbLoadMissingUsesPlaceholder(t *testing.T) {
	th := NewThumb(filepath.Join(t.TempDir(), "gone.png"))
	th.Load(false, NewNativeLoader())
	if !th.Loaded() {
		t.Fatal("placeholder not installed")
	}
	if th.Valid() {
		t.Fatal("missing file decoded as valid")
	}
	if w, h := th.ImageSize(); w != 48 || h != 48 {
		t.Errorf("placeholder size = %dx%d, want 48x48", w, h)
	}
	if th.Format() != "" {
		t.Errorf("placeholder format = %q, want empty", th.Format())
	}
}

func TestThumbLoadStaleness(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 16, 16, color.White)
	counting := &countingLoader{ImageLoader: NewNativeLoader()}

	th := NewThumb(path)
	th.Load(false, counting)
	if got := counting.loads.Load(); got != 1 {
		t.Fatalf("decodes = %d, want 1", got)
	}

	// Not forced: a valid thumb never reloads.
	th.Load(false, counting)
	if got := counting.loads.Load(); got != 1 {
		t.Fatalf("decodes after plain reload = %d, want 1", got)
	}

	// Forced but untouched on disk: the stat matches, so still no decode.
	th.Load(true, counting)
	if got := counting.loads.Load(); got != 1 {
		t.Fatalf("decodes after no-op force = %d, want 1", got)
	}

	// Touch the file and force again: now it decodes.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	th.Load(true, counting)
	if got := counting.loads.Load(); got != 2 {
		t.Fatalf("decodes after touch = %d, want 2", got)
	}
}

func TestThumbScaledCaches(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 200, 100, color.White)

	th := NewThumb(path)
	th.Load(false, NewNativeLoader())

	img := th.Scaled(96, 80)
	if img == nil {
		t.Fatal("Scaled returned nil after load")
	}
	b := img.Bounds()
	if b.Dx() != 96 || b.Dy() != 48 {
		t.Fatalf("fitted size = %dx%d, want 96x48", b.Dx(), b.Dy())
	}
	if again := th.Scaled(96, 80); again != img {
		t.Error("repeated fit was not served from the cache")
	}
	if smaller := th.Scaled(50, 50); smaller.Bounds().Dx() != 50 || smaller.Bounds().Dy() != 25 {
		t.Errorf("refit size = %v", smaller.Bounds())
	}
}

func TestThumbScaledExactFitSkipsScaling(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 96, 80, color.White)

	th := NewThumb(path)
	th.Load(false, NewNativeLoader())
	img := th.Scaled(96, 80)
	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 80 {
		t.Fatalf("exact fit rescaled to %v", b)
	}
}

func TestThumbScaledInvalidUnscaled(t *testing.T) {
	th := NewThumb(filepath.Join(t.TempDir(), "gone.png"))
	th.Load(false, NewNativeLoader())
	img := th.Scaled(96, 80)
	if img == nil {
		t.Fatal("placeholder lost")
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 48 {
		t.Fatalf("placeholder was scaled: %v", b)
	}
}

func TestThumbRotateAndReflect(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 60, 30, color.White)
	loader := NewNativeLoader()

	th := NewThumb(path)
	th.Load(false, loader)
	th.Rotate(90, loader)
	if w, h := th.ImageSize(); w != 30 || h != 60 {
		t.Fatalf("rotated size = %dx%d, want 30x60", w, h)
	}
	th.Reflect(true, loader)
	if w, h := th.ImageSize(); w != 30 || h != 60 {
		t.Fatalf("reflect changed size to %dx%d", w, h)
	}
}

func TestFitSize(t *testing.T) {
	cases := []struct {
		w, h, maxW, maxH, wantW, wantH int
	}{
		{200, 100, 96, 80, 96, 48},
		{100, 200, 96, 80, 40, 80},
		{10, 10, 96, 80, 80, 80},
		{1000, 1, 96, 80, 96, 1},
	}
	for _, c := range cases {
		gw, gh := fitSize(c.w, c.h, c.maxW, c.maxH)
		if gw != c.wantW || gh != c.wantH {
			t.Errorf("fitSize(%d,%d,%d,%d) = %dx%d, want %dx%d",
				c.w, c.h, c.maxW, c.maxH, gw, gh, c.wantW, c.wantH)
		}
	}
}
