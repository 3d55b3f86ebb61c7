// Package interaction turns mouse events against a laid-out layout.Tree into
// hit-test results and scrollbar state transitions, grounded on
// original_source/radiant/scroller.c's scrollpane_target/mouse_down/
// mouse_up/drag functions for the scrollbar half, and on this repo's
// existing index-handle convention (dom.Ref, layout.ViewRef) for why a
// ScrollPane is addressed by its owning View's ViewRef rather than a Go
// pointer: Tree.alloc grows its views slice with append, which may move the
// backing array, so a *layout.View captured across a layout pass is unsafe
// to hold onto — a ViewRef stays valid because Tree.View always re-indexes
// the current slice. That is exactly the "weak pane-id handle, independent
// of tree mutation" spec.md's interaction overlay calls for.
package interaction

import (
	"corehost/pkg/layout"
)

// Axis names which scrollbar (and which ScrollPane field) an interaction
// applies to.
type Axis uint8

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HitTest performs the depth-first pre-order walk spec.md §4.8 describes: a
// View is hit if (x, y), in the same device-pixel space as the root View's
// border box, lies within its border box; the deepest matching descendant
// wins, and among siblings that both match, the later (document-order)
// sibling wins — matching paint order, since render.PaintTree paints
// earlier siblings first and later siblings (and their descendants) land on
// top.
func HitTest(t *layout.Tree, x, y float64) (layout.ViewRef, bool) {
	root := t.Root()
	if root.IsZero() {
		return layout.ViewRef{}, false
	}
	return hitTestView(t, root, x, y)
}

// hitTestView matches v against (x, y), where x/y are expressed relative to
// v's own border-box origin (the same space v.X/v.Y place v's children in,
// once adjusted by v's content-box offset and scroll — see block.go's
// cv.X = m.Left convention and render.paintView's matching child offset).
func hitTestView(t *layout.Tree, v layout.ViewRef, x, y float64) (layout.ViewRef, bool) {
	box := t.View(v)
	w := box.Border.Horizontal() + box.Padding.Horizontal() + box.Width
	h := box.Border.Vertical() + box.Padding.Vertical() + box.Height
	if x < 0 || y < 0 || x > w || y > h {
		return layout.ViewRef{}, false
	}

	childOriginX := box.Border.Left + box.Padding.Left
	childOriginY := box.Border.Top + box.Padding.Top
	if box.Scroll != nil {
		childOriginX -= box.Scroll.ScrollX
		childOriginY -= box.Scroll.ScrollY
	}

	best := v
	for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
		cv := t.View(c)
		localX := x - childOriginX - cv.X
		localY := y - childOriginY - cv.Y
		if hit, ok := hitTestView(t, c, localX, localY); ok {
			best = hit // later sibling overwrites: document-order, topmost wins
		}
	}
	return best, true
}

// AbsolutePosition walks v's ancestor chain to compute its border-box
// origin in root-relative device pixels — the inverse of the per-child
// offset accumulation hitTestView and render.paintView both perform while
// descending.
func AbsolutePosition(t *layout.Tree, v layout.ViewRef) (x, y float64) {
	for !v.IsZero() {
		box := t.View(v)
		x += box.X
		y += box.Y
		parent := t.Parent(v)
		if !parent.IsZero() {
			pbox := t.View(parent)
			x += pbox.Border.Left + pbox.Padding.Left
			y += pbox.Border.Top + pbox.Padding.Top
			if pbox.Scroll != nil {
				x -= pbox.Scroll.ScrollX
				y -= pbox.Scroll.ScrollY
			}
		}
		v = parent
	}
	return x, y
}

// CharacterOffset resolves the rune index within a TextRun view's Text
// under a content-relative x position, walking glyph advances with the
// same FontMetrics a layout pass uses to place them, per spec.md §4.8's
// "TextRun hit-testing iterates characters using the same glyph-advance
// routine as layout".
func CharacterOffset(fonts layout.FontMetrics, view *layout.View, localX float64) int {
	if fonts == nil || view.Text == "" {
		return 0
	}
	family, bold, italic := fontStyleOf(view)
	pen := 0.0
	i := 0
	for _, r := range view.Text {
		adv := fonts.Advance(string(r), view.FontSize, family, bold, italic)
		if localX < pen+adv/2 {
			return i
		}
		pen += adv
		i++
	}
	return i
}

func fontStyleOf(view *layout.View) (family string, bold, italic bool) {
	family = "sans-serif"
	if view.Style == nil {
		return family, false, false
	}
	if v, ok := view.Style.Get("font-family"); ok && v != "" {
		family = v
	}
	if v, ok := view.Style.Get("font-weight"); ok && (v == "bold" || v == "700" || v == "800" || v == "900") {
		bold = true
	}
	if v, ok := view.Style.Get("font-style"); ok && v == "italic" {
		italic = true
	}
	return family, bold, italic
}

// Cursor reads the CSS `cursor` value in effect for a hit View, defaulting
// to "default" when unstyled, so a host can update the pointer glyph after
// a move event without hand-rolling its own style lookup.
func Cursor(t *layout.Tree, v layout.ViewRef) string {
	if v.IsZero() {
		return "default"
	}
	box := t.View(v)
	if box.Style == nil {
		return "default"
	}
	if c, ok := box.Style.Get("cursor"); ok && c != "" {
		return c
	}
	return "default"
}

// NavigationURL reports the href of the anchor element a hit View
// originates from. It walks the *DOM* ancestor chain, not the View tree's:
// layoutMixedContent flattens inline wrapper elements like <a> out of the
// View tree entirely (their text becomes a TextRun reparented directly onto
// the block that established the inline formatting context — see
// inline.go's doc comment), so a hit TextRun's own View.Node is the
// original DOM text node, and only the DOM still has the anchor as its
// parent.
func NavigationURL(t *layout.Tree, v layout.ViewRef) (string, bool) {
	doc := t.Doc()
	if doc == nil || v.IsZero() {
		return "", false
	}
	node := t.View(v).Node
	for !node.IsZero() {
		if doc.IsElement(node) && doc.TagNameString(node) == "a" {
			if href, ok := doc.GetAttr(node, "href"); ok {
				return href, true
			}
		}
		node = doc.Parent(node)
	}
	return "", false
}
