// Package layout turns a dom.Document plus its resolved styles into a View
// tree of positioned, sized boxes: block and inline formatting contexts,
// flex containers, replaced elements, list markers, and scroll panes.
//
// The View tree mirrors the DOM's own arena-of-slice-with-index-handles
// design (see pkg/dom/arena.go) rather than a pointer tree, per this
// repo's "Document owns all nodes, nodes reference each other by index"
// convention: a Tree is its own small arena of View values addressed by
// ViewRef, with parent/first-child/next-sibling links exactly like
// dom.Document's node linkage.
package layout

import (
	"corehost/pkg/cssstyle"
	"corehost/pkg/dom"
)

// Kind discriminates the View variants spec.md §3.5 names: TextRun,
// InlineBox, BlockBox, ListBox, ListItemBox, ImageBox. ScrollPane is not a
// View variant — it's a record attached to a BlockBox (see scroll.go).
type Kind uint8

const (
	KindBlockBox Kind = iota
	KindInlineBox
	KindTextRun
	KindImageBox
	KindListBox
	KindListItemBox
)

// ViewRef addresses a View within a Tree's arena. The zero ViewRef (index
// 0 is never issued to callers; Tree.root starts at a real index) means
// "no view" when returned from a lookup.
type ViewRef struct {
	index int32
	valid bool
}

// IsZero reports whether r addresses no View.
func (r ViewRef) IsZero() bool { return !r.valid }

// BoxEdge is a four-sided box-model measurement (margin, border, or
// padding), in device pixels.
type BoxEdge struct {
	Top, Right, Bottom, Left float64
}

// Vertical and Horizontal return the total of the two edges on an axis:
// Top+Bottom and Left+Right respectively.
func (e BoxEdge) Vertical() float64   { return e.Top + e.Bottom }
func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }

// View is one node of the laid-out visual tree. Not every field applies to
// every Kind; see the per-Kind comments.
type View struct {
	Kind  Kind
	Node  dom.Ref // the originating DOM element or text node; zero for anonymous boxes (e.g. synthesized line boxes)
	Style *cssstyle.ComputedStyle

	parent, firstCh, lastCh, nextSib, prevSib ViewRef

	// Geometry, relative to the parent box's content-box origin, per
	// spec.md §3.5. Width/Height are content-box dimensions.
	X, Y          float64
	Width, Height float64
	Margin        BoxEdge
	Border        BoxEdge
	Padding       BoxEdge

	// BlockBox/flex-container fields.
	Display       cssstyle.Display
	Position      cssstyle.Position
	TextAlign     cssstyle.TextAlign
	WhiteSpace    cssstyle.WhiteSpace
	LineHeight    float64
	FontSize      float64
	FlexDirection cssstyle.FlexDirection
	Scroll        *ScrollPane

	// TextRun fields: Text is the already whitespace-collapsed run this
	// View paints; StartIndex/Length locate it within the owning dom.Text
	// node's data for hit-testing (spec.md §4.8's "start index, byte
	// length").
	Text       string
	StartIndex int
	Length     int
	Ascender   float64
	Descender  float64

	// ImageBox fields.
	ImageURL                             string
	IntrinsicWidth, IntrinsicHeight       float64

	// ListItemBox fields.
	MarkerText string
	ItemIndex  int
}

// Tree is the arena owning every View produced for one layout pass.
type Tree struct {
	doc   *dom.Document
	views []View
	root  ViewRef
}

func newTree(doc *dom.Document) *Tree {
	// index 0 is reserved so the zero ViewRef (valid=false) never
	// accidentally aliases a real view.
	return &Tree{doc: doc, views: make([]View, 1)}
}

func (t *Tree) alloc(kind Kind) ViewRef {
	t.views = append(t.views, View{Kind: kind})
	return ViewRef{index: int32(len(t.views) - 1), valid: true}
}

// View dereferences a ViewRef. Calling with a zero ViewRef is a caller bug;
// Tree never hands out the zero ref from a successful allocation.
func (t *Tree) View(r ViewRef) *View { return &t.views[r.index] }

// Root returns the Tree's top-level View (typically the <html> BlockBox),
// or a zero ViewRef if construction produced nothing (e.g. a fully
// `display: none` document).
func (t *Tree) Root() ViewRef { return t.root }

// Doc returns the dom.Document this Tree was built from, so callers that
// walk the View tree (hit-testing, in particular) can resolve a View's
// originating element back to its tag/attributes (e.g. an anchor's href).
func (t *Tree) Doc() *dom.Document { return t.doc }

func (t *Tree) appendChild(parent, child ViewRef) {
	p := t.View(parent)
	c := t.View(child)
	c.parent = parent
	if p.lastCh.IsZero() {
		p.firstCh = child
		p.lastCh = child
		return
	}
	prevLast := p.lastCh
	t.View(prevLast).nextSib = child
	c.prevSib = prevLast
	p.lastCh = child
}

// Parent, FirstChild, NextSibling mirror dom.Document's accessors for
// callers (paint-order walkers, hit-testing) that want the same
// pre-order-walk idiom over both trees.
func (t *Tree) Parent(r ViewRef) ViewRef      { return t.View(r).parent }
func (t *Tree) FirstChild(r ViewRef) ViewRef  { return t.View(r).firstCh }
func (t *Tree) LastChild(r ViewRef) ViewRef   { return t.View(r).lastCh }
func (t *Tree) NextSibling(r ViewRef) ViewRef { return t.View(r).nextSib }
func (t *Tree) PrevSibling(r ViewRef) ViewRef { return t.View(r).prevSib }

// detachAllChildren clears r's child list without discarding the already-
// allocated child Views (callers that flatten a subtree, like the inline
// line-builder, reuse or replace them after reading this snapshot).
func (t *Tree) detachAllChildren(r ViewRef) []ViewRef {
	children := t.Children(r)
	v := t.View(r)
	v.firstCh = ViewRef{}
	v.lastCh = ViewRef{}
	for _, c := range children {
		cv := t.View(c)
		cv.parent = ViewRef{}
		cv.nextSib = ViewRef{}
		cv.prevSib = ViewRef{}
	}
	return children
}

// Children returns r's children in document order.
func (t *Tree) Children(r ViewRef) []ViewRef {
	var out []ViewRef
	for c := t.FirstChild(r); !c.IsZero(); c = t.NextSibling(c) {
		out = append(out, c)
	}
	return out
}
