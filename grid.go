package thumbgrid

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// dragClickGuard swallows the click that some platforms deliver right after
// a rubber-band drag ends.
const dragClickGuard = 200 * time.Millisecond

// Grid is a scrollable thumbnail grid. Thumbnails reflow over the available
// width, load asynchronously on a worker pool, and support hover
// highlighting, tooltips, single and multi selection with mouse and
// keyboard, rubber-band selection, zooming and file drops.
//
// Callback fields must be assigned before the grid is shown and are invoked
// on the UI goroutine.
type Grid struct {
	widget.BaseWidget

	// OnSelectionChanged fires whenever the selected set changes, with the
	// selected thumbs in grid order.
	OnSelectionChanged func(selected []*Thumb)
	// OnItemActivated fires when a cell is double-clicked or Return is
	// pressed on the focused cell.
	OnItemActivated func(*Thumb)
	// OnHoverChanged fires when the pointer moves onto or off a cell.
	OnHoverChanged func(hovered []*Thumb)
	// OnContextMenu fires on a right click over the grid background. The
	// position is in viewport coordinates, ready for a pop-up.
	OnContextMenu func(pos fyne.Position)
	// OnItemContextMenu fires on a right click over a cell, with the
	// current selection.
	OnItemContextMenu func(pos fyne.Position, selected []*Thumb)
	// OnItemsDropped fires after DropFiles inserts new thumbs.
	OnItemsDropped func([]*Thumb)
	// OnItemsRemoved fires after a drag-out removes thumbs from the grid.
	OnItemsRemoved func([]*Thumb)
	// OnDragOut fires when a drag starts on the current selection and
	// Options.AllowDragging is set. Returning true means the receiver took
	// the items, and the grid removes them.
	OnDragOut func(dragged []*Thumb) bool
	// OnLoadStarted and OnLoadFinished bracket each thumbnail decode.
	OnLoadStarted  func(*Thumb)
	OnLoadFinished func(*Thumb)

	opts    Options
	thumbs  []*Thumb
	state   selectionState
	metrics gridMetrics
	damage  damage

	scroll      *container.Scroll
	body        *gridBody
	zoomOverlay *zoomScrollOverlay

	pool *loadPool
	// deliver marshals worker results onto the UI goroutine; tests replace
	// it to run synchronously.
	deliver func(func())

	canvasFocused bool

	lastPointerView ptI
	pointerInside   bool

	marqueeActive  bool
	marqueeMoved   bool
	marqueeStart   ptI
	marqueeCur     ptI
	lastMarqueeSel []int
	marqueeEnded   time.Time

	dragOutActive bool

	autoScrollDir  int
	autoScrollStop chan struct{}

	tipTimer *time.Timer
	tipPopup *widget.PopUp
	tipIndex int
}

var _ fyne.Focusable = (*Grid)(nil)

// New creates an empty Grid with the given options. Invalid option values
// are clamped as documented on Options.
func New(opts Options) *Grid {
	g := &Grid{
		deliver:  fyne.Do,
		state:    newSelectionState(),
		tipIndex: -1,
	}
	g.body = newGridBody(g)
	g.scroll = container.NewScroll(g.body)
	g.scroll.Direction = container.ScrollVerticalOnly
	g.scroll.OnScrolled = func(fyne.Position) { g.onScrolled() }
	g.zoomOverlay = newZoomScrollOverlay(g.zoomSteps)
	g.ExtendBaseWidget(g)
	g.opts = opts.normalized()
	g.recompute(false)
	return g
}

func (g *Grid) CreateRenderer() fyne.WidgetRenderer {
	return &gridRenderer{
		grid:  g,
		stack: container.NewStack(g.scroll, g.zoomOverlay),
	}
}

// Options returns a copy of the current configuration.
func (g *Grid) Options() Options { return g.opts }

// SetOptions replaces the configuration. The layout reflows around the
// focused cell, the selection collapses if single selection was turned on,
// the thumbs re-sort if an order is configured, and every thumb not yet
// loaded is queued again; changing the loader forces a full reload.
func (g *Grid) SetOptions(opts Options) {
	old := g.opts
	g.opts = opts.normalized()
	g.hideTooltip()
	g.reflow()
	if g.opts.SingleSelect && len(g.state.selected) > 1 {
		keep := g.state.focused
		if keep == -1 || !g.state.isSelected(keep) {
			keep = g.state.sortedSelection()[0]
		}
		g.applySelect(setOf([]int{keep}), true)
	}
	g.sortThumbs()
	g.startLoad(g.thumbs, old.Loader != g.opts.Loader)
}

// Count returns the number of thumbnails.
func (g *Grid) Count() int { return len(g.thumbs) }

// Thumbs returns the thumbnails in grid order.
func (g *Grid) Thumbs() []*Thumb {
	return append([]*Thumb(nil), g.thumbs...)
}

// ThumbAt returns the thumbnail at index. It panics when index is out of
// range, mirroring slice indexing.
func (g *Grid) ThumbAt(index int) *Thumb {
	g.mustIndex(index)
	return g.thumbs[index]
}

func (g *Grid) mustIndex(index int) {
	if index < 0 || index >= len(g.thumbs) {
		panic(fmt.Sprintf("thumbgrid: index %d out of range with %d thumbnails", index, len(g.thumbs)))
	}
}

// ThumbByPath finds the thumbnail for a file path, comparing cleaned paths.
func (g *Grid) ThumbByPath(path string) (*Thumb, bool) {
	path = filepath.Clean(path)
	for _, t := range g.thumbs {
		if filepath.Clean(t.path) == path {
			return t, true
		}
	}
	return nil, false
}

// HasThumb reports whether a thumbnail for the file path is present.
func (g *Grid) HasThumb(path string) bool {
	_, ok := g.ThumbByPath(path)
	return ok
}

// IndexOf returns the index of t, or -1 when t is not in the grid. Identity
// is pointer identity, so two Thumbs for the same path are distinct items.
func (g *Grid) IndexOf(t *Thumb) int {
	for i, x := range g.thumbs {
		if x == t {
			return i
		}
	}
	return -1
}

// SetThumbs replaces the contents of the grid, clearing the selection and
// scrolling back to the top.
func (g *Grid) SetThumbs(thumbs []*Thumb) {
	g.hideTooltip()
	g.cancelMarquee()
	g.thumbs = append([]*Thumb(nil), thumbs...)
	g.state.reset()
	g.sortThumbs()
	if g.scroll.Offset.Y != 0 || g.scroll.Offset.X != 0 {
		g.scroll.ScrollToOffset(fyne.NewPos(0, 0))
	}
	g.startLoad(g.thumbs, false)
}

// AddThumbs appends thumbnails. With selectNew set the selection is
// replaced by the new items and the view scrolls to the last of them.
func (g *Grid) AddThumbs(thumbs []*Thumb, selectNew bool) {
	g.InsertThumbs(len(g.thumbs), thumbs, selectNew)
}

// InsertThumbs inserts thumbnails at index, clamped into range. Existing
// selection indices are not shifted; pass selectNew to replace the
// selection with the inserted items.
func (g *Grid) InsertThumbs(index int, thumbs []*Thumb, selectNew bool) {
	if len(thumbs) == 0 {
		return
	}
	index = min(max(index, 0), len(g.thumbs))
	g.thumbs = slices.Insert(g.thumbs, index, thumbs...)
	if selectNew {
		g.state.selected = rangeSet(index, index+len(thumbs)-1)
		g.state.anchor = -1
	}
	g.sortThumbs()
	g.startLoad(thumbs, false)
	if selectNew {
		g.fireSelectionChanged()
		if sel := g.state.sortedSelection(); len(sel) > 0 {
			g.ScrollToThumb(sel[len(sel)-1])
		}
	}
}

// RemoveThumbs removes the given thumbnails and clears the selection and
// focus. It panics if any of them is not in the grid, and removes nothing
// in that case.
func (g *Grid) RemoveThumbs(thumbs []*Thumb) {
	for _, t := range thumbs {
		if g.IndexOf(t) == -1 {
			panic(fmt.Sprintf("thumbgrid: %s is not in the grid", t.Path()))
		}
	}
	if len(thumbs) == 0 {
		return
	}
	g.removeQuiet(thumbs)
	g.state.reset()
	g.reflow()
}

// removeQuiet drops the thumbs from the item list without touching
// selection state or geometry.
func (g *Grid) removeQuiet(thumbs []*Thumb) {
	drop := make(map[*Thumb]struct{}, len(thumbs))
	for _, t := range thumbs {
		drop[t] = struct{}{}
	}
	kept := make([]*Thumb, 0, max(len(g.thumbs)-len(drop), 0))
	for _, t := range g.thumbs {
		if _, ok := drop[t]; !ok {
			kept = append(kept, t)
		}
	}
	g.thumbs = kept
	g.hideTooltip()
	g.cancelMarquee()
}

// SetThumb replaces the thumbnail at index and loads the replacement. It
// panics when index is out of range.
func (g *Grid) SetThumb(index int, t *Thumb) {
	g.mustIndex(index)
	g.thumbs[index] = t
	g.startLoad([]*Thumb{t}, false)
}

// RefreshThumbs repaints the cells at the given indices. With reload set
// the files are re-decoded instead, skipping thumbs whose size and
// modification time still match the values captured when they were created.
func (g *Grid) RefreshThumbs(indices []int, reload bool) {
	valid := g.validIndices(indices)
	if !reload {
		g.markDirty(valid...)
		return
	}
	ts := make([]*Thumb, 0, len(valid))
	for _, i := range valid {
		ts = append(ts, g.thumbs[i])
	}
	if len(ts) > 0 {
		g.startLoad(ts, true)
	}
}

// Selection returns the selected indices in ascending order.
func (g *Grid) Selection() []int { return g.state.sortedSelection() }

// SelectedThumbs returns the selected thumbnails in grid order.
func (g *Grid) SelectedThumbs() []*Thumb {
	sel := g.state.sortedSelection()
	out := make([]*Thumb, 0, len(sel))
	for _, i := range sel {
		if i < len(g.thumbs) {
			out = append(out, g.thumbs[i])
		}
	}
	return out
}

// IsSelected reports whether the cell at index is selected.
func (g *Grid) IsSelected(index int) bool { return g.state.isSelected(index) }

// Select replaces the selection with the given indices; out-of-range
// indices are ignored. Select with no arguments clears the selection.
func (g *Grid) Select(indices ...int) {
	g.state.anchor = -1
	g.applySelect(setOf(indices), true)
}

// Toggle flips the given indices in or out of the selection.
func (g *Grid) Toggle(indices ...int) {
	g.state.anchor = -1
	g.applySelect(toggled(g.state.selected, setOf(g.validIndices(indices))), true)
}

// SelectThumbs replaces the selection with the given thumbnails without
// firing OnSelectionChanged, for callers that are about to update dependent
// state themselves.
func (g *Grid) SelectThumbs(thumbs []*Thumb) {
	var indices []int
	for _, t := range thumbs {
		if i := g.IndexOf(t); i != -1 {
			indices = append(indices, i)
		}
	}
	g.state.anchor = -1
	g.applySelect(setOf(indices), false)
}

// SelectAll selects every thumbnail.
func (g *Grid) SelectAll() {
	indices := make([]int, len(g.thumbs))
	for i := range indices {
		indices[i] = i
	}
	g.Select(indices...)
}

// applySelect is the single path every selection change funnels through.
// Out-of-range indices are dropped, an unchanged selection is a no-op, and
// only the cells whose state flipped are repainted.
func (g *Grid) applySelect(next map[int]struct{}, inform bool) {
	for i := range next {
		if i < 0 || i >= len(g.thumbs) {
			delete(next, i)
		}
	}
	dirty, changed := g.state.apply(next, g.opts.SingleSelect)
	if !changed {
		return
	}
	g.markDirty(dirty...)
	if inform {
		g.fireSelectionChanged()
	}
}

func (g *Grid) fireSelectionChanged() {
	if !g.marqueeActive {
		g.ScrollToThumb(g.state.focused)
	}
	if g.OnSelectionChanged != nil {
		g.OnSelectionChanged(g.SelectedThumbs())
	}
}

// FocusedIndex returns the index of the focused cell, or -1.
func (g *Grid) FocusedIndex() int { return g.state.focused }

// SetFocusedIndex moves the keyboard focus to index; out-of-range values
// clear it. The selection is not changed.
func (g *Grid) SetFocusedIndex(index int) {
	if index < 0 || index >= len(g.thumbs) {
		index = -1
	}
	if index == g.state.focused {
		return
	}
	prev := g.state.focused
	g.state.focused = index
	g.state.anchor = -1
	g.markDirty(prev, index)
}

// Hovered returns the hovered indices in ascending order. Outside of
// SetHovered calls it holds at most the cell under the pointer.
func (g *Grid) Hovered() []int { return sortedIndices(g.state.hovered) }

// SetHovered replaces the hovered set, repainting the difference. The next
// pointer movement takes over again.
func (g *Grid) SetHovered(indices ...int) {
	dirty, changed := g.state.setHovered(setOf(g.validIndices(indices)))
	if !changed {
		return
	}
	g.markDirty(dirty...)
}

func (g *Grid) fireHoverChanged() {
	if g.OnHoverChanged == nil {
		return
	}
	idx := sortedIndices(g.state.hovered)
	ts := make([]*Thumb, 0, len(idx))
	for _, i := range idx {
		if i < len(g.thumbs) {
			ts = append(ts, g.thumbs[i])
		}
	}
	g.OnHoverChanged(ts)
}

func (g *Grid) fireItemActivated() {
	if g.OnItemActivated == nil {
		return
	}
	if f := g.state.focused; f >= 0 && f < len(g.thumbs) {
		g.OnItemActivated(g.thumbs[f])
	}
}

// ScrollToThumb scrolls the minimum distance that brings the cell at index
// fully into view. Out-of-range indices are ignored.
func (g *Grid) ScrollToThumb(index int) {
	if index < 0 || index >= len(g.thumbs) {
		return
	}
	m := g.metrics
	top := m.rowTop(index / m.cols)
	bottom := top + m.cellH
	viewTop, viewH := g.viewportY()
	if viewH <= 0 {
		return
	}
	var target int
	switch {
	case top < viewTop:
		target = top
	case bottom > viewTop+viewH:
		target = bottom - viewH
	default:
		return
	}
	g.scroll.ScrollToOffset(fyne.NewPos(g.scroll.Offset.X, float32(target)))
	g.onScrolled()
}

// Metrics describes the current grid layout.
type Metrics struct {
	Cols, Rows                  int
	CellWidth, CellHeight       int
	VirtualWidth, VirtualHeight int
}

// Metrics returns the current layout figures, chiefly for tests and hosts
// sizing surrounding chrome.
func (g *Grid) Metrics() Metrics {
	m := g.metrics
	return Metrics{
		Cols: m.cols, Rows: m.rows,
		CellWidth: m.advX, CellHeight: m.cellH,
		VirtualWidth: m.virtualW, VirtualHeight: m.virtualH,
	}
}

// HitTest maps a viewport position, as delivered by events on the grid, to
// cell geometry.
func (g *Grid) HitTest(pos fyne.Position) HitInfo {
	doc := g.viewToDoc(ptI{int(pos.X), int(pos.Y)})
	return hitTestDoc(g.metrics, len(g.thumbs), doc.x, doc.y)
}

// Shutdown stops the decode workers and releases timers. Call it when the
// grid is removed for good while the application keeps running.
func (g *Grid) Shutdown() {
	if g.pool != nil {
		g.pool.stop()
		g.pool = nil
	}
	g.hideTooltip()
	g.stopAutoScroll()
}

// startLoad replaces the worker pool and queues thumbs on the new one.
// Notifications from the old pool still in flight find g.pool changed and
// drop themselves, so a stale decode can never repaint or fire callbacks.
func (g *Grid) startLoad(thumbs []*Thumb, force bool) {
	if g.pool != nil {
		g.pool.stop()
	}
	var pool *loadPool
	pool = newLoadPool(g.opts.Parallelism, g.opts.Loader, g.deliver,
		func(t *Thumb) {
			if g.pool != pool {
				return
			}
			if g.OnLoadStarted != nil {
				g.OnLoadStarted(t)
			}
		},
		func(t *Thumb) {
			if g.pool != pool {
				return
			}
			if i := g.IndexOf(t); i != -1 {
				g.markDirty(i)
			}
			if g.OnLoadFinished != nil {
				g.OnLoadFinished(t)
			}
		},
	)
	g.pool = pool
	pool.submit(thumbs, force)
	g.recompute(true)
}

// sortThumbs applies Options.SortLess with a stable sort and remaps the
// selection, focus and hover state through the resulting permutation.
func (g *Grid) sortThumbs() {
	less := g.opts.SortLess
	if less == nil || len(g.thumbs) < 2 {
		return
	}
	order := make([]int, len(g.thumbs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(g.thumbs[order[i]], g.thumbs[order[j]])
	})
	perm := make([]int, len(order))
	sorted := make([]*Thumb, len(order))
	for newIdx, oldIdx := range order {
		perm[oldIdx] = newIdx
		sorted[newIdx] = g.thumbs[oldIdx]
	}
	g.thumbs = sorted
	g.markDirty(g.state.remap(perm)...)
}

// recompute rebuilds the layout metrics for the current viewport width.
// With check set it recomputes once more if the first pass changed the
// viewport, as when a scrollbar appears.
func (g *Grid) recompute(check bool) {
	labelH := 0
	if g.opts.ShowFilenames != nil {
		labelH = g.labelHeight()
	}
	w, _ := g.clientSize()
	g.metrics = computeMetrics(w, len(g.thumbs), g.opts.ThumbWidth, g.opts.ThumbHeight, g.opts.ThumbSpacing, labelH)
	g.body.Refresh()
	g.scroll.Refresh()
	if check {
		if nw, _ := g.clientSize(); nw != w {
			g.recompute(false)
		}
	}
}

// reflow recomputes the layout and keeps the focused cell in view, as after
// a resize or zoom.
func (g *Grid) reflow() {
	g.recompute(true)
	g.ScrollToThumb(g.state.focused)
}

func (g *Grid) labelHeight() int {
	app := fyne.CurrentApp()
	if app == nil {
		return 18
	}
	size, _ := app.Driver().RenderedTextSize("ATLWI", theme.TextSize(), fyne.TextStyle{}, nil)
	return int(math.Ceil(float64(size.Height))) + 4
}

func (g *Grid) viewportY() (top, height int) {
	return int(g.scroll.Offset.Y), int(g.scroll.Size().Height)
}

func (g *Grid) clientSize() (w, h int) {
	size := g.scroll.Size()
	return int(size.Width), int(size.Height)
}

func (g *Grid) viewToDoc(p ptI) ptI {
	off := g.scroll.Offset
	return ptI{p.x + int(off.X), p.y + int(off.Y)}
}

func (g *Grid) docToView(p ptI) ptI {
	off := g.scroll.Offset
	return ptI{p.x - int(off.X), p.y - int(off.Y)}
}

func (g *Grid) validIndices(indices []int) []int {
	var out []int
	for _, i := range indices {
		if i >= 0 && i < len(g.thumbs) {
			out = append(out, i)
		}
	}
	return out
}

// markDirty repaints the cells at the given indices; invalid indices are
// skipped.
func (g *Grid) markDirty(indices ...int) {
	var valid []int
	for _, i := range indices {
		if i >= 0 && i < len(g.thumbs) {
			valid = append(valid, i)
		}
	}
	if len(valid) > 0 {
		g.body.refreshCells(valid)
	}
}

// flushDamage resolves the accumulated damage rectangles to cells and
// repaints them.
func (g *Grid) flushDamage() {
	if !g.damage.pending() {
		return
	}
	g.markDirty(dirtyCells(g.metrics, len(g.thumbs), g.damage.rects)...)
	g.damage.reset()
}

func (g *Grid) backgroundColor() color.Color {
	if g.opts.BackgroundColor != nil {
		return g.opts.BackgroundColor
	}
	return theme.Color(theme.ColorNameInputBackground)
}

func (g *Grid) captionColor(t *Thumb) color.Color {
	if t.TextColor != nil {
		return t.TextColor
	}
	if g.opts.TextColor != nil {
		return g.opts.TextColor
	}
	return theme.Color(theme.ColorNameForeground)
}

// onScrolled runs after every scroll offset change: rebind the visible
// cells, drop the tooltip, and re-derive the hover from the pointer's
// viewport position against the newly shifted document.
func (g *Grid) onScrolled() {
	g.hideTooltip()
	g.body.rebind()
	if g.pointerInside && !g.marqueeActive {
		g.handleHover(g.viewToDoc(g.lastPointerView))
	}
}

func (g *Grid) handleMouseDown(p ptI, button desktop.MouseButton, mods fyne.KeyModifier) {
	g.hideTooltip()
	g.lastPointerView = g.docToView(p)
	if button != desktop.MouseButtonPrimary && button != desktop.MouseButtonSecondary {
		return
	}
	defer g.focusSelf()

	hit := hitTestDoc(g.metrics, len(g.thumbs), p.x, p.y)
	prevFocus := g.state.focused
	focus := -1
	if hit.Flags == HitCenter {
		focus = hit.Index
	}
	g.state.focused = focus

	ctrl := mods&(fyne.KeyModifierControl|fyne.KeyModifierShortcutDefault) != 0
	shift := mods&fyne.KeyModifierShift != 0
	switch {
	case ctrl:
		if focus != -1 {
			if g.opts.SingleSelect {
				if g.state.isSelected(focus) {
					g.Select()
				} else {
					g.Select(focus)
				}
			} else {
				g.Toggle(focus)
			}
		}
	case shift && !g.opts.SingleSelect:
		if focus != -1 {
			g.state.anchor = -1
			g.applySelect(rangeSet(min(focus, prevFocus), max(focus, prevFocus)), true)
		}
		// Focus stays put so the range keeps extending from the same end.
		g.state.focused = prevFocus
	default:
		switch {
		case focus == -1:
			g.Select()
		case !g.state.isSelected(focus):
			g.Select(focus)
		default:
			// Pressing a selected cell must not collapse the selection yet;
			// the press may grow into a drag of the whole selection. The
			// collapse happens on mouse up, which also takes the focus.
			g.state.focused = prevFocus
		}
	}
	if g.state.focused != prevFocus {
		g.markDirty(prevFocus, g.state.focused)
	}
}

func (g *Grid) handleMouseUp(p ptI, button desktop.MouseButton, mods fyne.KeyModifier) {
	if g.dragOutActive {
		return
	}
	if g.marqueeActive {
		moved := g.marqueeMoved
		g.finishMarquee()
		if moved {
			return
		}
	} else if time.Since(g.marqueeEnded) < dragClickGuard {
		return
	}

	hit := hitTestDoc(g.metrics, len(g.thumbs), p.x, p.y)
	ctrl := mods&(fyne.KeyModifierControl|fyne.KeyModifierShortcutDefault) != 0
	shift := mods&fyne.KeyModifierShift != 0
	switch {
	case button == desktop.MouseButtonPrimary && !ctrl && !shift:
		if hit.Flags == HitCenter {
			prev := g.state.focused
			g.state.focused = hit.Index
			g.Select(hit.Index)
			if prev != hit.Index {
				g.markDirty(prev, hit.Index)
			}
		}
	case button == desktop.MouseButtonSecondary:
		view := g.docToView(p)
		pos := fyne.NewPos(float32(view.x), float32(view.y))
		if hit.Flags == HitCenter {
			if g.OnItemContextMenu != nil {
				g.OnItemContextMenu(pos, g.SelectedThumbs())
			}
		} else if g.OnContextMenu != nil {
			g.OnContextMenu(pos)
		}
	}
}

func (g *Grid) handleDoubleTap() {
	g.fireItemActivated()
}

// handleHover derives the hovered cell from a document position and keeps
// the tooltip dwell in step. Hover is frozen while a drag is in progress;
// the rubber band owns the repaints then.
func (g *Grid) handleHover(p ptI) {
	g.pointerInside = true
	g.lastPointerView = g.docToView(p)
	if g.marqueeActive || g.dragOutActive {
		return
	}
	hit := hitTestDoc(g.metrics, len(g.thumbs), p.x, p.y)
	hover := -1
	if hit.Flags == HitCenter {
		hover = hit.Index
	}
	if hover == -1 {
		g.hideTooltip()
	} else if !g.state.isHovered(hover) {
		g.scheduleTooltip(hover)
	}
	next := map[int]struct{}{}
	if hover != -1 {
		next[hover] = struct{}{}
	}
	dirty, changed := g.state.setHovered(next)
	if !changed {
		return
	}
	g.markDirty(dirty...)
	g.fireHoverChanged()
}

func (g *Grid) handleHoverExit() {
	g.pointerInside = false
	g.hideTooltip()
	dirty, changed := g.state.setHovered(map[int]struct{}{})
	if !changed {
		return
	}
	g.markDirty(dirty...)
	g.fireHoverChanged()
}

func (g *Grid) handleDrag(e *fyne.DragEvent) {
	if g.dragOutActive {
		return
	}
	p := docPt(e.Position)
	g.lastPointerView = g.docToView(p)
	if !g.marqueeActive && g.opts.AllowDragging && len(g.state.selected) > 0 {
		g.beginDragOut()
		return
	}
	if g.opts.SingleSelect {
		return
	}
	if !g.marqueeActive {
		start := e.Position.Subtract(e.Dragged)
		g.marqueeActive = true
		g.marqueeMoved = false
		g.marqueeStart = ptI{int(start.X), int(start.Y)}
		g.marqueeCur = g.marqueeStart
		g.lastMarqueeSel = nil
		g.hideTooltip()
	}
	if p != g.marqueeStart {
		g.marqueeMoved = true
	}
	g.updateMarquee(p)
}

func (g *Grid) handleDragEnd() {
	if g.dragOutActive {
		g.dragOutActive = false
		return
	}
	g.finishMarquee()
}

// updateMarquee moves the live corner of the rubber band, re-derives the
// banded selection and repaints exactly the cells the old and new band
// rectangles touch.
func (g *Grid) updateMarquee(p ptI) {
	old := rectBetween(g.marqueeStart, g.marqueeCur)
	g.marqueeCur = p
	band := rectBetween(g.marqueeStart, g.marqueeCur)

	sel := g.marqueeSelection(band)
	if !sameSelection(sel, g.lastMarqueeSel) {
		g.lastMarqueeSel = sel
		g.Select(sel...)
	}

	g.damage.add(old)
	g.damage.add(band)
	g.flushDamage()
	g.body.setMarquee(band, true)
	g.updateAutoScroll()
}

// marqueeSelection lists the indices inside a band rectangle by hit testing
// its two corners and walking the spanned rows and columns.
func (g *Grid) marqueeSelection(band rectI) []int {
	m := g.metrics
	n := len(g.thumbs)
	first := hitTestDoc(m, n, band.x, band.y)
	last := hitTestDoc(m, n, band.right(), band.bottom())

	startCol, endCol := first.Col, last.Col
	if first.Flags&HitRight != 0 {
		startCol++
	}
	if last.Flags&HitLeft != 0 {
		endCol--
	}
	startRow, endRow := first.Row, last.Row
	if first.Flags&HitBelow != 0 {
		startRow++
	}
	if last.Flags&HitAbove != 0 {
		endRow--
	}

	var sel []int
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			if index := row*m.cols + col; index < n {
				sel = append(sel, index)
			}
		}
	}
	return sel
}

func sameSelection(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (g *Grid) finishMarquee() {
	if !g.marqueeActive {
		return
	}
	g.cancelMarquee()
	g.marqueeEnded = time.Now()
}

// cancelMarquee tears the rubber band down without arming the click guard,
// as when focus moves away mid drag.
func (g *Grid) cancelMarquee() {
	if !g.marqueeActive {
		return
	}
	g.marqueeActive = false
	g.damage.add(rectBetween(g.marqueeStart, g.marqueeCur))
	g.flushDamage()
	g.body.setMarquee(rectI{}, false)
	g.stopAutoScroll()
	g.lastMarqueeSel = nil
}

// updateAutoScroll starts, retargets or stops the edge autoscroller from
// the pointer's viewport position during a rubber-band drag.
func (g *Grid) updateAutoScroll() {
	if !g.marqueeActive {
		g.stopAutoScroll()
		return
	}
	const edge = 16
	_, viewH := g.viewportY()
	dir := 0
	if viewH > 0 {
		if g.lastPointerView.y < edge {
			dir = -1
		} else if g.lastPointerView.y > viewH-edge {
			dir = 1
		}
	}
	if dir == g.autoScrollDir {
		return
	}
	g.stopAutoScroll()
	if dir == 0 {
		return
	}
	g.autoScrollDir = dir
	stop := make(chan struct{})
	g.autoScrollStop = stop
	ticker := time.NewTicker(30 * time.Millisecond)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				g.deliver(func() { g.autoScrollStep(dir) })
			}
		}
	}()
}

func (g *Grid) stopAutoScroll() {
	if g.autoScrollStop != nil {
		close(g.autoScrollStop)
		g.autoScrollStop = nil
	}
	g.autoScrollDir = 0
}

// autoScrollStep scrolls one notch and drags the band's live corner along,
// since the pointer itself is parked at the viewport edge.
func (g *Grid) autoScrollStep(dir int) {
	if !g.marqueeActive {
		return
	}
	step := max(g.metrics.cellH/9, 4)
	off := g.scroll.Offset
	maxOff := max(float32(g.metrics.virtualH)-g.scroll.Size().Height, 0)
	y := min(max(off.Y+float32(dir*step), 0), maxOff)
	if y == off.Y {
		return
	}
	g.scroll.ScrollToOffset(fyne.NewPos(off.X, y))
	g.onScrolled()
	g.updateMarquee(g.viewToDoc(g.lastPointerView))
}

// beginDragOut hands the selection to the OnDragOut hook. All further drag
// events are swallowed until the drag ends; when the hook reports the items
// were taken, they are removed from the grid.
func (g *Grid) beginDragOut() {
	g.dragOutActive = true
	if g.OnDragOut == nil {
		return
	}
	thumbs := g.SelectedThumbs()
	if len(thumbs) == 0 || !g.OnDragOut(thumbs) {
		return
	}
	g.state.focused = -1
	g.Select()
	g.removeQuiet(thumbs)
	g.state.hovered = map[int]struct{}{}
	g.state.anchor = -1
	g.startLoad(g.thumbs, false)
	if g.OnItemsRemoved != nil {
		g.OnItemsRemoved(thumbs)
	}
}

func (g *Grid) focusSelf() {
	if cnv := fyne.CurrentApp().Driver().CanvasForObject(g); cnv != nil {
		cnv.Focus(g)
	}
}

// FocusGained implements fyne.Focusable; the focus ring only shows while
// the grid itself holds the canvas focus.
func (g *Grid) FocusGained() {
	g.canvasFocused = true
	g.markDirty(g.state.focused)
}

func (g *Grid) FocusLost() {
	g.canvasFocused = false
	g.cancelMarquee()
	g.markDirty(g.state.focused)
}

func (g *Grid) TypedRune(r rune) {
	switch r {
	case '+':
		g.ZoomIn()
	case '-':
		g.ZoomOut()
	}
}

func (g *Grid) TypedKey(ev *fyne.KeyEvent) {
	g.handleKey(ev.Name, currentModifiers())
}

func currentModifiers() fyne.KeyModifier {
	if drv, ok := fyne.CurrentApp().Driver().(desktop.Driver); ok {
		return drv.CurrentKeyModifiers()
	}
	return 0
}

// handleKey implements the keyboard model: arrows move the focus with
// horizontal wrap, page keys jump by visible rows (four times that with
// Shift), Home and End go to the corners, Return activates, Space toggles,
// Ctrl+A selects all. Shift extends a range from a sticky anchor; Ctrl
// moves the focus without touching the selection.
func (g *Grid) handleKey(name fyne.KeyName, mods fyne.KeyModifier) {
	ctrl := mods&(fyne.KeyModifierControl|fyne.KeyModifierShortcutDefault) != 0
	shift := mods&fyne.KeyModifierShift != 0

	if name == fyne.KeyA && ctrl {
		if !g.opts.SingleSelect {
			g.SelectAll()
		}
		return
	}

	focused := g.state.focused
	if focused == -1 {
		return
	}
	m := g.metrics
	row, col := focused/m.cols, focused%m.cols
	_, viewH := g.viewportY()
	pageRows := max(viewH/m.cellH, 1)

	switch name {
	case fyne.KeyReturn, fyne.KeyEnter:
		g.fireItemActivated()
		return
	case fyne.KeySpace:
		g.Toggle(focused)
		return
	case fyne.KeyUp:
		row = max(row-1, 0)
	case fyne.KeyDown:
		row = min(row+1, m.rows-1)
	case fyne.KeyLeft:
		col--
		if col < 0 {
			if row > 0 {
				col, row = m.cols-1, row-1
			} else {
				col = 0
			}
		}
	case fyne.KeyRight:
		col++
		if col >= m.cols {
			if row < m.rows-1 {
				col, row = 0, row+1
			} else {
				col = m.cols - 1
			}
		}
	case fyne.KeyPageUp:
		d := pageRows
		if shift {
			d *= 4
		}
		row = max(row-d, 0)
	case fyne.KeyPageDown:
		d := pageRows
		if shift {
			d *= 4
		}
		row = min(row+d, m.rows-1)
	case fyne.KeyHome:
		row, col = 0, 0
	case fyne.KeyEnd:
		row, col = m.rows-1, m.cols-1
	default:
		return
	}

	g.cancelMarquee()
	newIdx := min(row*m.cols+col, len(g.thumbs)-1)
	if newIdx < 0 || newIdx == focused {
		return
	}
	switch {
	case shift && !g.opts.SingleSelect:
		if g.state.anchor == -1 {
			g.state.anchor = focused
		}
		g.state.focused = newIdx
		lo := min(newIdx, g.state.anchor)
		hi := max(newIdx, g.state.anchor)
		g.applySelect(rangeSet(lo, hi), true)
		g.markDirty(focused, newIdx)
	case ctrl:
		g.SetFocusedIndex(newIdx)
	default:
		g.state.focused = newIdx
		g.Select(newIdx)
		g.markDirty(focused, newIdx)
	}
	g.ScrollToThumb(newIdx)
}

func (g *Grid) zoomSteps(steps int) {
	n := steps
	if n < 0 {
		n = -n
	}
	for i := 0; i < n; i++ {
		g.zoom(steps < 0)
	}
}

// gridRenderer stacks the scroll container and the zoom capture overlay,
// and defers reflow after resizes. Mutating scroll content during the
// driver's layout pass is unsafe, so the reflow is coalesced onto a short
// timer and delivered back to the UI goroutine.
type gridRenderer struct {
	grid        *Grid
	stack       *fyne.Container
	lastSize    fyne.Size
	resizeTimer *time.Timer
}

func (r *gridRenderer) Layout(size fyne.Size) {
	r.stack.Resize(size)
	if size == r.lastSize {
		return
	}
	r.lastSize = size
	if r.resizeTimer != nil {
		r.resizeTimer.Stop()
	}
	r.resizeTimer = time.AfterFunc(40*time.Millisecond, func() {
		r.grid.deliver(r.grid.reflow)
	})
}

func (r *gridRenderer) MinSize() fyne.Size {
	m := r.grid.metrics
	return fyne.NewSize(float32(m.cellW+m.spacing), float32(m.cellH+m.spacing))
}

func (r *gridRenderer) Refresh() {
	r.stack.Refresh()
}

func (r *gridRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.stack}
}

func (r *gridRenderer) Destroy() {
	if r.resizeTimer != nil {
		r.resizeTimer.Stop()
	}
	r.grid.Shutdown()
}
