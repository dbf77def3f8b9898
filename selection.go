package thumbgrid

import "sort"

// selectionState holds the index-based interaction state: the selected set,
// the focused cell, the hovered set and the anchor of an in-progress
// shift-extended keyboard range. It is pure bookkeeping; the Grid owns event
// delivery and repainting and feeds the returned dirty indices to both.
type selectionState struct {
	selected map[int]struct{}
	hovered  map[int]struct{}
	focused  int
	anchor   int
}

func newSelectionState() selectionState {
	return selectionState{
		selected: map[int]struct{}{},
		hovered:  map[int]struct{}{},
		focused:  -1,
		anchor:   -1,
	}
}

// reset clears every piece of state, as after the grid contents are
// replaced.
func (s *selectionState) reset() {
	s.selected = map[int]struct{}{}
	s.hovered = map[int]struct{}{}
	s.focused = -1
	s.anchor = -1
}

func (s *selectionState) isSelected(index int) bool {
	_, ok := s.selected[index]
	return ok
}

func (s *selectionState) isHovered(index int) bool {
	_, ok := s.hovered[index]
	return ok
}

// apply replaces the selected set. It reports the indices whose cells need a
// repaint and whether anything changed at all; an unchanged selection is a
// complete no-op. With singleSelect set, a multi-item selection collapses to
// the focused cell, but only after the no-op check so toggling the same
// set twice still produces no event.
func (s *selectionState) apply(next map[int]struct{}, singleSelect bool) (dirty []int, changed bool) {
	if setsEqual(s.selected, next) {
		return nil, false
	}
	if singleSelect && len(next) > 1 {
		next = map[int]struct{}{}
		if s.focused != -1 {
			next[s.focused] = struct{}{}
		}
	}
	dirty = symmetricDiff(s.selected, next)
	s.selected = next
	return dirty, true
}

// setHovered replaces the hovered set, returning the repaint delta.
func (s *selectionState) setHovered(next map[int]struct{}) (dirty []int, changed bool) {
	if setsEqual(s.hovered, next) {
		return nil, false
	}
	dirty = symmetricDiff(s.hovered, next)
	s.hovered = next
	return dirty, true
}

// remap rewrites every stored index through perm, where perm[old] is the new
// index of the item previously at old. It returns the indices whose cells
// changed appearance on either side of the move.
func (s *selectionState) remap(perm []int) []int {
	changes := map[int]struct{}{}
	move := func(old int) int {
		if old < 0 || old >= len(perm) {
			return old
		}
		nw := perm[old]
		if nw != old {
			changes[old] = struct{}{}
			changes[nw] = struct{}{}
		}
		return nw
	}

	s.focused = move(s.focused)
	s.anchor = move(s.anchor)
	s.selected = remapSet(s.selected, move)
	s.hovered = remapSet(s.hovered, move)

	return sortedIndices(changes)
}

// sortedSelection returns the selected indices in ascending order.
func (s *selectionState) sortedSelection() []int {
	return sortedIndices(s.selected)
}

func remapSet(set map[int]struct{}, move func(int) int) map[int]struct{} {
	out := make(map[int]struct{}, len(set))
	for i := range set {
		out[move(i)] = struct{}{}
	}
	return out
}

func setsEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// symmetricDiff returns the indices in exactly one of the two sets, sorted.
func symmetricDiff(a, b map[int]struct{}) []int {
	diff := map[int]struct{}{}
	for k := range a {
		if _, ok := b[k]; !ok {
			diff[k] = struct{}{}
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			diff[k] = struct{}{}
		}
	}
	return sortedIndices(diff)
}

func sortedIndices(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func setOf(indices []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	return set
}

// rangeSet returns the set of indices from lo to hi inclusive, skipping
// negatives so an unset focus anchor extends from the start of the grid.
func rangeSet(lo, hi int) map[int]struct{} {
	set := map[int]struct{}{}
	for i := max(lo, 0); i <= hi; i++ {
		set[i] = struct{}{}
	}
	return set
}

// toggled returns current with the given indices flipped in or out.
func toggled(current map[int]struct{}, indices map[int]struct{}) map[int]struct{} {
	next := make(map[int]struct{}, len(current)+len(indices))
	for i := range current {
		next[i] = struct{}{}
	}
	for i := range indices {
		if _, ok := next[i]; ok {
			delete(next, i)
		} else {
			next[i] = struct{}{}
		}
	}
	return next
}
