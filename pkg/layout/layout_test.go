package layout

import (
	"math"
	"testing"

	"corehost/pkg/cssstyle"
	"corehost/pkg/dom"
)

type fakeFonts struct{}

// Advance approximates monospace-ish advance at 0.6em per character, just
// precise enough to exercise line-breaking and width math deterministically
// without depending on pkg/fontcache.
func (fakeFonts) Advance(text string, fontSize float64, family string, bold, italic bool) float64 {
	return float64(len([]rune(text))) * fontSize * 0.6
}

func (fakeFonts) Metrics(fontSize float64, family string) (ascender, descender float64) {
	return fontSize * 0.8, fontSize * 0.2
}

func newTestDoc() *dom.Document {
	return dom.NewDocument()
}

func TestBlockMarginCollapsing(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	body := doc.CreateElement("body")
	doc.AppendChild(html, body)

	p1 := doc.CreateElement("p")
	doc.AppendChild(body, p1)
	doc.AppendChild(p1, doc.CreateText("one"))
	p2 := doc.CreateElement("p")
	doc.AppendChild(body, p2)
	doc.AppendChild(p2, doc.CreateText("two"))

	sheet := cssstyle.ParseStylesheet(`p { margin-top: 20px; margin-bottom: 10px; }`)
	e := &Engine{Fonts: fakeFonts{}}
	tree := e.Build(doc, []*cssstyle.Stylesheet{sheet}, Viewport{Width: 400, Height: 600})

	bodyView := findByTag(tree, doc, "body")
	var p1v, p2v *View
	i := 0
	for c := tree.FirstChild(bodyView); !c.IsZero(); c = tree.NextSibling(c) {
		if i == 0 {
			p1v = tree.View(c)
		} else {
			p2v = tree.View(c)
		}
		i++
	}
	if p1v == nil || p2v == nil {
		t.Fatalf("expected two paragraph boxes under body")
	}
	if p1v.Y != 20 {
		t.Fatalf("first paragraph's top margin should not collapse against body, got Y=%v", p1v.Y)
	}
	// Between p1 and p2: margin-bottom 10, margin-top 20 -> collapsed to max(10,20)=20.
	wantGap := p1v.Y + p1v.Height + 20
	if math.Abs(p2v.Y-wantGap) > 0.001 {
		t.Fatalf("collapsed margin wrong: p2.Y=%v want %v", p2v.Y, wantGap)
	}
}

func findByTag(tree *Tree, doc *dom.Document, tag string) ViewRef {
	var found ViewRef
	var walk func(v ViewRef)
	walk = func(v ViewRef) {
		if !found.IsZero() {
			return
		}
		view := tree.View(v)
		if view.Node.Kind() == dom.KindElement && doc.TagNameString(view.Node) == tag {
			found = v
			return
		}
		for c := tree.FirstChild(v); !c.IsZero(); c = tree.NextSibling(c) {
			walk(c)
		}
	}
	walk(tree.Root())
	return found
}

func TestInlineLineWrapping(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	body := doc.CreateElement("body")
	doc.AppendChild(html, body)
	p := doc.CreateElement("p")
	doc.AppendChild(body, p)
	doc.AppendChild(p, doc.CreateText("aa bb cc dd ee"))

	e := &Engine{Fonts: fakeFonts{}}
	// Each word is 2 chars + following space for all but the last; at
	// fontSize 16 advance-per-char is 16*0.6=9.6, so "aa " ~ 2*9.6=19.2
	// (trailing space trimmed from width measurement). A narrow viewport
	// forces wrapping across multiple lines.
	tree := e.Build(doc, nil, Viewport{Width: 50, Height: 600})

	pView := findByTag(tree, doc, "p")
	var ys []float64
	for c := tree.FirstChild(pView); !c.IsZero(); c = tree.NextSibling(c) {
		cv := tree.View(c)
		found := false
		for _, y := range ys {
			if y == cv.Y {
				found = true
			}
		}
		if !found {
			ys = append(ys, cv.Y)
		}
	}
	if len(ys) < 2 {
		t.Fatalf("expected text to wrap onto multiple lines in a 50px viewport, got %d distinct lines", len(ys))
	}
}

func TestListMarkerDecimalAndRoman(t *testing.T) {
	if got := markerText(cssstyle.ListStyleDecimal, 1); got != "1." {
		t.Fatalf("decimal marker = %q, want '1.'", got)
	}
	if got := markerText(cssstyle.ListStyleLowerRoman, 4); got != "iv." {
		t.Fatalf("roman marker for 4 = %q, want 'iv.'", got)
	}
	if got := markerText(cssstyle.ListStyleUpperRoman, 1994); got != "MCMXCIV." {
		t.Fatalf("roman marker for 1994 = %q, want 'MCMXCIV.'", got)
	}
	if got := markerText(cssstyle.ListStyleLowerAlpha, 1); got != "a." {
		t.Fatalf("alpha marker for 1 = %q, want 'a.'", got)
	}
	if got := markerText(cssstyle.ListStyleLowerAlpha, 27); got != "invalid" {
		t.Fatalf("alpha marker for 27 = %q, want 'invalid'", got)
	}
	if got := markerText(cssstyle.ListStyleUpperRoman, 4000); got != "invalid" {
		t.Fatalf("roman marker for 4000 = %q, want 'invalid'", got)
	}
}

func TestOrderedListItemIndexing(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	ol := doc.CreateElement("ol")
	doc.SetAttr(ol, "start", "3")
	doc.AppendChild(html, ol)
	for i := 0; i < 2; i++ {
		li := doc.CreateElement("li")
		doc.AppendChild(ol, li)
		doc.AppendChild(li, doc.CreateText("item"))
	}

	e := &Engine{Fonts: fakeFonts{}}
	tree := e.Build(doc, nil, Viewport{Width: 400, Height: 600})
	olView := findByTag(tree, doc, "ol")

	first := tree.View(tree.FirstChild(olView))
	second := tree.View(tree.NextSibling(tree.FirstChild(olView)))
	if first.ItemIndex != 3 || first.MarkerText != "3." {
		t.Fatalf("first li should start at 3, got index=%d marker=%q", first.ItemIndex, first.MarkerText)
	}
	if second.ItemIndex != 4 {
		t.Fatalf("second li should be 4, got %d", second.ItemIndex)
	}
}

func TestFlexWrapsOntoTwoLines(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	container := doc.CreateElement("div")
	doc.AppendChild(html, container)
	doc.SetAttr(container, "style", "display: flex; flex-wrap: wrap; width: 500px; height: 300px;")
	for i := 0; i < 3; i++ {
		child := doc.CreateElement("div")
		doc.SetAttr(child, "style", "flex-basis: 200px; height: 50px;")
		doc.AppendChild(container, child)
	}

	e := &Engine{Fonts: fakeFonts{}}
	tree := e.Build(doc, nil, Viewport{Width: 500, Height: 300})
	containerView := findByTag(tree, doc, "div") // the flex container itself is the first div found

	children := tree.Children(containerView)
	if len(children) != 3 {
		t.Fatalf("expected 3 flex items, got %d", len(children))
	}
	v0, v1, v2 := tree.View(children[0]), tree.View(children[1]), tree.View(children[2])
	if v0.Y != v1.Y {
		t.Fatalf("items 0 and 1 should share the first flex line, got y0=%v y1=%v", v0.Y, v1.Y)
	}
	if v2.Y == v0.Y {
		t.Fatalf("item 2 should wrap onto a second flex line, got same Y as item 0: %v", v2.Y)
	}
	if v2.Y <= v0.Y {
		t.Fatalf("second flex line should be positioned below the first, got y0=%v y2=%v", v0.Y, v2.Y)
	}
}

func TestFlexAlignContentCentersWrappedLines(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	container := doc.CreateElement("div")
	doc.AppendChild(html, container)
	doc.SetAttr(container, "style", "display: flex; flex-wrap: wrap; align-content: center; width: 500px; height: 300px;")
	for i := 0; i < 3; i++ {
		child := doc.CreateElement("div")
		doc.SetAttr(child, "style", "flex-basis: 200px; height: 50px;")
		doc.AppendChild(container, child)
	}

	e := &Engine{Fonts: fakeFonts{}}
	tree := e.Build(doc, nil, Viewport{Width: 500, Height: 300})
	containerView := findByTag(tree, doc, "div")

	children := tree.Children(containerView)
	v0, v2 := tree.View(children[0]), tree.View(children[2])
	// Two 50px lines inside a 300px-tall container leave 200px free; center
	// packing should start the first line 100px down rather than at 0.
	if v0.Y != 100 {
		t.Fatalf("first line should be centered 100px down, got y0=%v", v0.Y)
	}
	if v2.Y != 150 {
		t.Fatalf("second line should follow immediately after the first, got y2=%v", v2.Y)
	}
}

type fakeSizer struct{ w, h float64 }

func (s fakeSizer) IntrinsicSize(url string) (float64, float64, bool) {
	return s.w, s.h, true
}

func TestAbsoluteImageUsesIntrinsicSizeForRightOffset(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	img := doc.CreateElement("img")
	doc.SetAttr(img, "src", "logo.png")
	doc.SetAttr(img, "style", "position: absolute; right: 10px; top: 0;")
	doc.AppendChild(html, img)

	e := &Engine{Fonts: fakeFonts{}, Images: fakeSizer{w: 40, h: 20}}
	tree := e.Build(doc, nil, Viewport{Width: 500, Height: 300})
	imgView := findByTag(tree, doc, "img")
	v := tree.View(imgView)

	if v.Width != 40 || v.Height != 20 {
		t.Fatalf("expected the image's intrinsic 40x20 size, got %vx%v", v.Width, v.Height)
	}
	// right: 10px against a 500px viewport and a 40px-wide image should
	// place its left edge at 500-10-40=450, not at some width computed
	// before the intrinsic size was known.
	if v.X != 450 {
		t.Fatalf("expected X=450 from the image's real intrinsic width, got %v", v.X)
	}
}

func TestScrollPaneDragMatchesWorkedScenario(t *testing.T) {
	pane := &ScrollPane{
		ContentWidth: 200, ContentHeight: 600,
		ViewportWidth: 200, ViewportHeight: 200,
		HasVertical: true,
	}
	if got := pane.VerticalHandleLength(); got != 66 {
		t.Fatalf("handle length = %v, want 66", got)
	}
	if got := pane.VerticalBarLength(); got != 172 {
		t.Fatalf("bar length = %v, want 172", got)
	}

	// v_scroll starts at 0, so the handle's top edge starts at 0 too;
	// dragging the pointer down by 80px (y=40 -> y=120) moves the handle's
	// top edge by the same 80px, per spec.md's worked scrollbar scenario.
	pane.SetScrollYFromHandlePosition(0 + 80)

	if math.Abs(pane.ScrollY-302) > 1.0 {
		t.Fatalf("v_scroll after drag = %v, want ~302", pane.ScrollY)
	}
}

func TestScrollPaneNotAttachedWhenContentFits(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	div := doc.CreateElement("div")
	doc.SetAttr(div, "style", "overflow-y: auto; height: 600px;")
	doc.AppendChild(html, div)
	p := doc.CreateElement("p")
	doc.AppendChild(div, p)
	doc.AppendChild(p, doc.CreateText("short"))

	e := &Engine{Fonts: fakeFonts{}}
	tree := e.Build(doc, nil, Viewport{Width: 400, Height: 600})
	divView := tree.View(findByTag(tree, doc, "div"))
	if divView.Scroll != nil {
		t.Fatalf("expected no ScrollPane when content fits within the box")
	}
}

func TestAbsolutePositioningAgainstPositionedAncestor(t *testing.T) {
	doc := newTestDoc()
	html := doc.CreateElement("html")
	doc.SetRoot(html)
	container := doc.CreateElement("div")
	doc.SetAttr(container, "style", "position: absolute; width: 300px; height: 200px; left: 10px; top: 10px;")
	doc.AppendChild(html, container)
	inner := doc.CreateElement("div")
	doc.SetAttr(inner, "style", "position: absolute; width: 50px; height: 50px; right: 0px; bottom: 0px;")
	doc.AppendChild(container, inner)

	e := &Engine{Fonts: fakeFonts{}}
	tree := e.Build(doc, nil, Viewport{Width: 800, Height: 600})

	containerView := findByTag(tree, doc, "div")
	var innerView *View
	for c := tree.FirstChild(containerView); !c.IsZero(); c = tree.NextSibling(c) {
		innerView = tree.View(c)
	}
	cv := tree.View(containerView)
	if innerView == nil {
		t.Fatalf("expected the inner absolutely positioned box to be found")
	}
	wantX := cv.X + cv.Width - innerView.Width
	wantY := cv.Y + cv.Height - innerView.Height
	if math.Abs(innerView.X-wantX) > 0.001 || math.Abs(innerView.Y-wantY) > 0.001 {
		t.Fatalf("inner box position = (%v,%v), want (%v,%v)", innerView.X, innerView.Y, wantX, wantY)
	}
}
