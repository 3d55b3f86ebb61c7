package interaction

import (
	"corehost/pkg/layout"
)

// scrollbarThickness mirrors pkg/layout/scroll.go's unexported constant of
// the same value; pkg/render keeps its own copy for the same reason (no
// shared internal package exists yet for a single constant three packages
// would otherwise need to import just for this).
const scrollbarThickness = 24.0

// pageFraction is spec.md §4.8's "pages by 0.85 × block main-axis size".
const pageFraction = 0.85

// wheelStep is spec.md §4.8's "step ≈ 50 device pixels" for wheel scroll.
const wheelStep = 50.0

// EventKind discriminates the four pointer-event kinds spec.md §4.8 names.
type EventKind uint8

const (
	Move EventKind = iota
	ButtonDown
	ButtonUp
	WheelScroll
)

// activeDrag is the captured state of an in-progress scrollbar handle drag:
// spec.md's "pane captures all subsequent mouse events until button-up,
// regardless of cursor position", addressed by the dragged pane's ViewRef
// rather than a pointer (see interaction.go's package doc comment).
type activeDrag struct {
	pane        layout.ViewRef
	axis        Axis
	startPos    float64
	startScroll float64
}

// Controller tracks scrollbar hover/drag state across a sequence of pointer
// events against one layout.Tree. Construct a fresh Controller after each
// completed layout pass — spec.md §5 says "hit-testing observes the View
// tree as of the last completed layout", and a Controller's hover/drag
// state is scoped to exactly one such tree.
type Controller struct {
	tree *layout.Tree

	hoverPane layout.ViewRef
	hoverAxis Axis

	drag *activeDrag
}

// NewController builds a Controller over tree. Pass the same *layout.Tree
// instance that a concurrent render.PaintTree call is painting, so hit
// results and visible pixels agree (spec.md §4 invariant 7).
func NewController(tree *layout.Tree) *Controller {
	return &Controller{tree: tree}
}

// HoveredPane and HoveredAxis report the scrollbar (if any) the most recent
// Move event landed on, for cursor feedback; HoveredPane is the zero
// ViewRef when no bar is hovered.
func (c *Controller) HoveredPane() layout.ViewRef { return c.hoverPane }
func (c *Controller) HoveredAxis() Axis           { return c.hoverAxis }

// Dragging reports whether a scrollbar handle drag is currently captured.
func (c *Controller) Dragging() bool { return c.drag != nil }

// paneHit is what findPaneAt reports for the scrollable pane (if any) whose
// bar is under a point.
type paneHit struct {
	pane     layout.ViewRef
	axis     Axis
	onHandle bool
}

// findPaneAt walks the tree looking for a ScrollPane whose bar strip
// contains (x, y), descending into children after checking v itself so a
// nested scrollable pane's bar — painted on top, per render.paintView's
// post-children paintScrollbars call — wins over an ancestor's.
func (c *Controller) findPaneAt(x, y float64) (paneHit, bool) {
	var found paneHit
	ok := false
	var walk func(v layout.ViewRef, px, py float64)
	walk = func(v layout.ViewRef, px, py float64) {
		box := c.tree.View(v)
		if box.Scroll != nil {
			if hit, matched := hitScrollbar(box, px, py); matched {
				hit.pane = v
				found, ok = hit, true
			}
		}

		childOriginX := box.Border.Left + box.Padding.Left
		childOriginY := box.Border.Top + box.Padding.Top
		if box.Scroll != nil {
			childOriginX -= box.Scroll.ScrollX
			childOriginY -= box.Scroll.ScrollY
		}
		for ch := c.tree.FirstChild(v); !ch.IsZero(); ch = c.tree.NextSibling(ch) {
			cv := c.tree.View(ch)
			walk(ch, px-childOriginX-cv.X, py-childOriginY-cv.Y)
		}
	}
	root := c.tree.Root()
	if root.IsZero() {
		return paneHit{}, false
	}
	x0, y0 := AbsolutePosition(c.tree, root)
	walk(root, x-x0, y-y0)
	return found, ok
}

// hitScrollbar reports whether (px, py) — expressed relative to pane's own
// border-box origin — lands on its vertical or horizontal bar strip, and if
// so whether it lands on the handle specifically, per
// original_source/radiant/scroller.c's scrollpane_target.
func hitScrollbar(pane *layout.View, px, py float64) (paneHit, bool) {
	sp := pane.Scroll
	cx := pane.Border.Left + pane.Padding.Left
	cy := pane.Border.Top + pane.Padding.Top

	if sp.HasVertical {
		trackX := cx + sp.ViewportWidth - scrollbarThickness
		if px >= trackX && px <= trackX+scrollbarThickness &&
			py >= cy && py <= cy+sp.VerticalBarLength() {
			handleTop := cy + sp.VerticalHandlePosition()
			onHandle := py >= handleTop && py <= handleTop+sp.VerticalHandleLength()
			return paneHit{axis: AxisVertical, onHandle: onHandle}, true
		}
	}
	if sp.HasHorizontal {
		trackY := cy + sp.ViewportHeight - scrollbarThickness
		if py >= trackY && py <= trackY+scrollbarThickness &&
			px >= cx && px <= cx+sp.HorizontalBarLength() {
			handleLeft := cx + sp.HorizontalHandlePosition()
			onHandle := px >= handleLeft && px <= handleLeft+sp.HorizontalHandleLength()
			return paneHit{axis: AxisHorizontal, onHandle: onHandle}, true
		}
	}
	return paneHit{}, false
}

// MouseMove handles a pointer move: while a drag is captured, it updates
// the dragged pane's scroll position per spec.md's
// "new_scroll = drag_start_scroll + axis_delta × max_scroll / (bar_length
// − handle_length)", clamped to [0, max_scroll]. Otherwise it updates the
// hovered-bar state (Idle → Hovered-H/Hovered-V) and reports whether a
// repaint is needed.
func (c *Controller) MouseMove(x, y float64) bool {
	if c.drag != nil {
		box := c.tree.View(c.drag.pane)
		sp := box.Scroll
		var barLen, handleLen, maxScroll, pos float64
		if c.drag.axis == AxisVertical {
			barLen, handleLen, maxScroll, pos = sp.VerticalBarLength(), sp.VerticalHandleLength(), sp.MaxScrollY(), y
		} else {
			barLen, handleLen, maxScroll, pos = sp.HorizontalBarLength(), sp.HorizontalHandleLength(), sp.MaxScrollX(), x
		}
		newScroll := c.drag.startScroll
		if track := barLen - handleLen; track > 0 {
			newScroll = c.drag.startScroll + (pos-c.drag.startPos)*maxScroll/track
		}
		newScroll = clamp(newScroll, 0, maxScroll)
		if c.drag.axis == AxisVertical {
			sp.ScrollY = newScroll
		} else {
			sp.ScrollX = newScroll
		}
		return true
	}

	hit, found := c.findPaneAt(x, y)
	prevPane, prevAxis := c.hoverPane, c.hoverAxis
	if found {
		c.hoverPane, c.hoverAxis = hit.pane, hit.axis
	} else {
		c.hoverPane, c.hoverAxis = layout.ViewRef{}, 0
	}
	return c.hoverPane != prevPane || c.hoverAxis != prevAxis
}

// MouseDown handles a button-down event: over a handle it starts a drag,
// capturing the current axis position and scroll value; over the bar but
// outside the handle it pages by pageFraction × the pane's own block
// main-axis size toward the click, one step per press.
func (c *Controller) MouseDown(x, y float64) bool {
	hit, found := c.findPaneAt(x, y)
	if !found {
		return false
	}
	box := c.tree.View(hit.pane)
	sp := box.Scroll

	if hit.onHandle {
		pos := y
		startScroll := sp.ScrollY
		if hit.axis == AxisHorizontal {
			pos, startScroll = x, sp.ScrollX
		}
		c.drag = &activeDrag{pane: hit.pane, axis: hit.axis, startPos: pos, startScroll: startScroll}
		return false
	}

	px, py := AbsolutePosition(c.tree, hit.pane)
	cx := px + box.Border.Left + box.Padding.Left
	cy := py + box.Border.Top + box.Padding.Top

	if hit.axis == AxisVertical {
		handleTop := cy + sp.VerticalHandlePosition()
		page := sp.ViewportHeight * pageFraction
		if y < handleTop {
			sp.ScrollY = clamp(sp.ScrollY-page, 0, sp.MaxScrollY())
		} else {
			sp.ScrollY = clamp(sp.ScrollY+page, 0, sp.MaxScrollY())
		}
	} else {
		handleLeft := cx + sp.HorizontalHandlePosition()
		page := sp.ViewportWidth * pageFraction
		if x < handleLeft {
			sp.ScrollX = clamp(sp.ScrollX-page, 0, sp.MaxScrollX())
		} else {
			sp.ScrollX = clamp(sp.ScrollX+page, 0, sp.MaxScrollX())
		}
	}
	return true
}

// MouseUp ends a captured drag, per scrollpane_mouse_up clearing the
// Dragging state back to Idle/Hovered.
func (c *Controller) MouseUp() {
	c.drag = nil
}

// Wheel applies a wheel-scroll event to the nearest scrollable ancestor of
// whatever View is under (x, y) — not necessarily a bar hit, since wheel
// scroll works anywhere over a scrollable pane's content, per spec.md's
// "wheel scroll adds (dx × step, dy × step) ... clamped".
func (c *Controller) Wheel(x, y, dx, dy float64) bool {
	target, ok := HitTest(c.tree, x, y)
	if !ok {
		return false
	}
	pane, ok := c.nearestScrollable(target)
	if !ok {
		return false
	}
	sp := c.tree.View(pane).Scroll
	sp.ScrollX = clamp(sp.ScrollX+dx*wheelStep, 0, sp.MaxScrollX())
	sp.ScrollY = clamp(sp.ScrollY+dy*wheelStep, 0, sp.MaxScrollY())
	return true
}

func (c *Controller) nearestScrollable(v layout.ViewRef) (layout.ViewRef, bool) {
	for !v.IsZero() {
		if c.tree.View(v).Scroll != nil {
			return v, true
		}
		v = c.tree.Parent(v)
	}
	return layout.ViewRef{}, false
}
