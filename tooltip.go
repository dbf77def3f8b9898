package thumbgrid

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
)

// TooltipField selects the lines shown in a thumbnail's tooltip. Fields
// combine with the | operator.
type TooltipField uint8

const (
	TooltipFileName TooltipField = 1 << iota
	TooltipFilePath
	TooltipFileSize
	TooltipModified
	TooltipImageSize
	TooltipImageType

	TooltipNone TooltipField = 0
	TooltipAll              = TooltipFileName | TooltipFilePath | TooltipFileSize |
		TooltipModified | TooltipImageSize | TooltipImageType
	// TooltipDefault is what DefaultOptions shows: the file name and size.
	TooltipDefault = TooltipFileName | TooltipFileSize
)

// TooltipText renders the requested fields for this Thumb, one per line.
// Image fields appear only once the Thumb has loaded a real image, and the
// modification line is dropped for files that could not be stat'ed.
func (t *Thumb) TooltipText(fields TooltipField) string {
	var lines []string
	if fields&TooltipFileName != 0 {
		lines = append(lines, "Name: "+t.Name())
	}
	if fields&TooltipFilePath != 0 {
		lines = append(lines, "Path: "+t.Path())
	}
	if fields&TooltipFileSize != 0 {
		lines = append(lines, "Size: "+humanize.Bytes(uint64(t.FileSize())))
	}
	if fields&TooltipModified != 0 && !t.ModTime().IsZero() {
		lines = append(lines, "Modified: "+humanize.Time(t.ModTime()))
	}
	if t.Valid() {
		if fields&TooltipImageSize != 0 {
			w, h := t.ImageSize()
			lines = append(lines, fmt.Sprintf("Dimensions: %d x %d", w, h))
		}
		if fields&TooltipImageType != 0 {
			lines = append(lines, "Type: "+t.Format())
		}
	}
	return strings.Join(lines, "\n")
}

// scheduleTooltip arms the dwell timer for the hovered cell. Moving between
// cells restarts the dwell; moving within one leaves a shown tooltip alone.
func (g *Grid) scheduleTooltip(index int) {
	if !g.opts.ShowTooltip || g.opts.TooltipFields == TooltipNone {
		return
	}
	if g.tipIndex == index {
		return
	}
	g.hideTooltip()
	g.tipIndex = index
	g.tipTimer = time.AfterFunc(g.opts.TooltipDelay, func() {
		g.deliver(func() { g.showTooltip(index) })
	})
}

func (g *Grid) showTooltip(index int) {
	if g.tipIndex != index || !g.state.isHovered(index) {
		return
	}
	if index < 0 || index >= len(g.thumbs) {
		return
	}
	text := g.thumbs[index].TooltipText(g.opts.TooltipFields)
	if text == "" {
		return
	}
	cnv := fyne.CurrentApp().Driver().CanvasForObject(g)
	if cnv == nil {
		return
	}
	label := widget.NewLabel(text)
	g.tipPopup = widget.NewPopUp(label, cnv)
	base := fyne.CurrentApp().Driver().AbsolutePositionForObject(g.scroll)
	pos := base.Add(fyne.NewPos(float32(g.lastPointerView.x), float32(g.lastPointerView.y)+16))
	g.tipPopup.ShowAtPosition(pos)
}

// hideTooltip cancels a pending dwell and dismisses a shown tooltip.
func (g *Grid) hideTooltip() {
	if g.tipTimer != nil {
		g.tipTimer.Stop()
		g.tipTimer = nil
	}
	if g.tipPopup != nil {
		g.tipPopup.Hide()
		g.tipPopup = nil
	}
	g.tipIndex = -1
}
