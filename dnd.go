package thumbgrid

import (
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
)

// supportedExtensions are the file types DropFiles accepts.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
	".tif":  true,
}

// HasSupportedExtension reports whether path names an image type the grid
// accepts from file drops. The comparison is case-insensitive.
func HasSupportedExtension(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// DropFiles inserts thumbnails for the dropped paths at the drop position
// and selects them. pos is in viewport coordinates, as delivered by a
// window's drop callback after translating to the grid.
//
// The whole drop is rejected, returning false, when Options.AcceptsFiles is
// off, any path has an unsupported extension, or any path is already in the
// grid. Dropping directly onto a cell inserts before it; the directional
// flags of the drop position decide between inserting before, after, at the
// start or at the end otherwise.
func (g *Grid) DropFiles(pos fyne.Position, paths []string) bool {
	if !g.opts.AcceptsFiles || len(paths) == 0 {
		return false
	}
	thumbs := make([]*Thumb, 0, len(paths))
	for _, path := range paths {
		if !HasSupportedExtension(path) || g.HasThumb(path) {
			return false
		}
		thumbs = append(thumbs, NewThumb(path))
	}

	hit := g.HitTest(pos)
	switch {
	case hit.Flags&HitCenter != 0:
		g.InsertThumbs(hit.Index, thumbs, true)
	case hit.Flags&HitAbove != 0:
		g.InsertThumbs(0, thumbs, true)
	case hit.Flags&HitBelow != 0:
		g.AddThumbs(thumbs, true)
	case hit.Flags&HitLeft != 0:
		g.InsertThumbs(hit.Index, thumbs, true)
	case hit.Flags&HitRight != 0:
		g.InsertThumbs(hit.Index+1, thumbs, true)
	default:
		g.AddThumbs(thumbs, true)
	}

	if g.OnItemsDropped != nil {
		g.OnItemsDropped(thumbs)
	}
	return true
}
