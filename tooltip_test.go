package thumbgrid

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTooltipTextAllFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.png")
	if err := os.WriteFile(path, make([]byte, 1500), 0o644); err != nil {
		t.Fatal(err)
	}
	th := NewThumb(path)

	lines := strings.Split(th.TooltipText(TooltipAll), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "Name: report.png" {
		t.Errorf("name line = %q", lines[0])
	}
	if lines[1] != "Path: "+path {
		t.Errorf("path line = %q", lines[1])
	}
	if lines[2] != "Size: 1.5 kB" {
		t.Errorf("size line = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Modified: ") {
		t.Errorf("modified line = %q", lines[3])
	}
}

func TestTooltipTextLoadedImage(t *testing.T) {
	path := writePNG(t, t.TempDir(), "shot.png", 12, 34, color.White)
	th := NewThumb(path)
	th.Load(false, NewNativeLoader())

	lines := strings.Split(th.TooltipText(TooltipAll), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[4] != "Dimensions: 12 x 34" {
		t.Errorf("dimensions line = %q", lines[4])
	}
	if lines[5] != "Type: png" {
		t.Errorf("type line = %q", lines[5])
	}

	lines = strings.Split(th.TooltipText(TooltipDefault), "\n")
	if len(lines) != 2 || lines[0] != "Name: shot.png" || !strings.HasPrefix(lines[1], "Size: ") {
		t.Errorf("default lines = %q", lines)
	}
}

func TestTooltipTextMissingFile(t *testing.T) {
	th := NewThumb("/no/such/dir/gone.png")

	lines := strings.Split(th.TooltipText(TooltipAll), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[2] != "Size: 0 B" {
		t.Errorf("size line = %q", lines[2])
	}

	if got := th.TooltipText(TooltipNone); got != "" {
		t.Errorf("empty field set produced %q", got)
	}
}

func TestFormatFileName(t *testing.T) {
	th := NewThumb("/somewhere/else/picture.jpeg")
	if got := FormatFileName(th); got != "picture.jpeg" {
		t.Errorf("FormatFileName = %q", got)
	}
}
