package interaction

import (
	"math"
	"strings"
	"testing"

	"corehost/pkg/cssstyle"
	"corehost/pkg/dom"
	"corehost/pkg/htmltree"
	"corehost/pkg/layout"
	"corehost/pkg/logsink"
)

type fakeFonts struct{}

func (fakeFonts) Advance(text string, fontSize float64, family string, bold, italic bool) float64 {
	n := 0
	for range text {
		n++
	}
	return float64(n) * fontSize * 0.6
}

func (fakeFonts) Metrics(fontSize float64, family string) (float64, float64) {
	return fontSize * 0.8, fontSize * 0.2
}

func buildTree(t *testing.T, html, css string) *layout.Tree {
	t.Helper()
	doc := htmltree.Run(html, logsink.Nop)
	var sheets []*cssstyle.Stylesheet
	if css != "" {
		sheets = []*cssstyle.Stylesheet{cssstyle.ParseStylesheet(css)}
	}
	eng := &layout.Engine{Fonts: fakeFonts{}}
	return eng.Build(doc, sheets, layout.Viewport{Width: 400, Height: 1000, PixelRatio: 1})
}

func findViewForNode(tr *layout.Tree, node dom.Ref) (layout.ViewRef, bool) {
	var walk func(v layout.ViewRef) (layout.ViewRef, bool)
	walk = func(v layout.ViewRef) (layout.ViewRef, bool) {
		if tr.View(v).Node == node {
			return v, true
		}
		for c := tr.FirstChild(v); !c.IsZero(); c = tr.NextSibling(c) {
			if hit, ok := walk(c); ok {
				return hit, true
			}
		}
		return layout.ViewRef{}, false
	}
	return walk(tr.Root())
}

func buildScrollPane(t *testing.T) (*layout.Tree, layout.ViewRef) {
	t.Helper()
	var rows strings.Builder
	for i := 0; i < 6; i++ {
		rows.WriteString(`<div style="height:100px;"></div>`)
	}
	html := `<div id="pane" style="height:200px;overflow-y:auto;">` + rows.String() + `</div>`
	tr := buildTree(t, html, "")

	doc := tr.Doc()
	id, ok := doc.ElementByID("pane")
	if !ok {
		t.Fatal("expected #pane element")
	}
	pane, ok := findViewForNode(tr, id)
	if !ok {
		t.Fatal("expected a View for #pane")
	}
	sp := tr.View(pane).Scroll
	if sp == nil {
		t.Fatal("expected #pane to have a ScrollPane attached")
	}
	if sp.ContentHeight != 600 || sp.ViewportHeight != 200 {
		t.Fatalf("content=%v viewport=%v, want 600/200", sp.ContentHeight, sp.ViewportHeight)
	}
	return tr, pane
}

func TestHitTestPicksDeepestDescendant(t *testing.T) {
	tr := buildTree(t, `<div id="outer" style="width:200px;height:200px;"><div id="inner" style="width:50px;height:50px;"></div></div>`, "")
	doc := tr.Doc()

	outerID, _ := doc.ElementByID("outer")
	innerID, _ := doc.ElementByID("inner")
	outerView, _ := findViewForNode(tr, outerID)
	innerView, _ := findViewForNode(tr, innerID)

	hit, ok := HitTest(tr, 10, 10)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit != innerView {
		t.Fatalf("got %+v, want the inner div's view", hit)
	}

	hit, ok = HitTest(tr, 150, 150)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit != outerView {
		t.Fatalf("expected the outer div outside the inner box, got %+v", hit)
	}
}

func TestHitTestMissesOutsideRoot(t *testing.T) {
	tr := buildTree(t, `<div style="width:50px;height:50px;"></div>`, "")
	if _, ok := HitTest(tr, 9999, 9999); ok {
		t.Fatal("expected no hit far outside the document")
	}
}

func TestScrollbarDragMovesScrollProportionally(t *testing.T) {
	tr, pane := buildScrollPane(t)
	sp := tr.View(pane).Scroll

	if got := sp.VerticalHandleLength(); got != 66 {
		t.Fatalf("handle length = %v, want 66", got)
	}
	if got := sp.VerticalBarLength(); got != 172 {
		t.Fatalf("bar length = %v, want 172", got)
	}

	px, py := AbsolutePosition(tr, pane)
	box := tr.View(pane)
	cx := px + box.Border.Left + box.Padding.Left
	cy := py + box.Border.Top + box.Padding.Top

	handleTop := cy + sp.VerticalHandlePosition()
	handleCenterX := cx + box.Width - scrollbarThickness/2
	handleCenterY := handleTop + sp.VerticalHandleLength()/2

	c := NewController(tr)
	c.MouseDown(handleCenterX, handleCenterY)
	if !c.Dragging() {
		t.Fatal("expected MouseDown on the handle to start a drag")
	}

	c.MouseMove(handleCenterX, handleCenterY+80)

	track := sp.VerticalBarLength() - sp.VerticalHandleLength()
	wantScroll := (80 * sp.MaxScrollY()) / track
	if math.Abs(sp.ScrollY-wantScroll) > 0.5 {
		t.Fatalf("ScrollY = %v, want ~%v", sp.ScrollY, wantScroll)
	}

	c.MouseUp()
	if c.Dragging() {
		t.Fatal("expected MouseUp to clear the drag")
	}
}

func TestScrollbarClickOnTrackPages(t *testing.T) {
	tr, pane := buildScrollPane(t)
	sp := tr.View(pane).Scroll

	px, py := AbsolutePosition(tr, pane)
	box := tr.View(pane)
	cx := px + box.Border.Left + box.Padding.Left
	cy := py + box.Border.Top + box.Padding.Top

	// Click at the very bottom of the track, well below the handle (which
	// starts at ScrollY=0, i.e. the track's top) to trigger a page-down.
	clickX := cx + box.Width - scrollbarThickness/2
	clickY := cy + sp.VerticalBarLength() - 1

	c := NewController(tr)
	repaint := c.MouseDown(clickX, clickY)
	if !repaint {
		t.Fatal("expected a page click to request a repaint")
	}
	if c.Dragging() {
		t.Fatal("a click outside the handle must not start a drag")
	}
	wantPage := sp.ViewportHeight * pageFraction
	if math.Abs(sp.ScrollY-wantPage) > 0.5 {
		t.Fatalf("ScrollY after page-down = %v, want ~%v", sp.ScrollY, wantPage)
	}
}

func TestWheelScrollsNearestScrollableAncestor(t *testing.T) {
	tr, pane := buildScrollPane(t)
	sp := tr.View(pane).Scroll

	px, py := AbsolutePosition(tr, pane)
	box := tr.View(pane)
	// a point over the pane's content, not its scrollbar
	x := px + box.Border.Left + box.Padding.Left + 5
	y := py + box.Border.Top + box.Padding.Top + 5

	c := NewController(tr)
	if !c.Wheel(x, y, 0, 2) {
		t.Fatal("expected the wheel event to hit the scrollable pane")
	}
	want := 2 * wheelStep
	if math.Abs(sp.ScrollY-want) > 0.01 {
		t.Fatalf("ScrollY after wheel = %v, want %v", sp.ScrollY, want)
	}
}

func TestHoverTracksScrollbarAxis(t *testing.T) {
	tr, pane := buildScrollPane(t)
	box := tr.View(pane)
	sp := box.Scroll

	px, py := AbsolutePosition(tr, pane)
	cx := px + box.Border.Left + box.Padding.Left
	cy := py + box.Border.Top + box.Padding.Top

	c := NewController(tr)
	c.MouseMove(cx+box.Width-scrollbarThickness/2, cy+sp.VerticalHandlePosition()+5)
	if c.HoveredPane() != pane || c.HoveredAxis() != AxisVertical {
		t.Fatalf("expected hover over the vertical bar, got pane=%v axis=%v", c.HoveredPane(), c.HoveredAxis())
	}

	c.MouseMove(cx+5, cy+5)
	if !c.HoveredPane().IsZero() {
		t.Fatal("expected hover to clear once off the bar")
	}
}

func TestCursorReadsCSSCursorProperty(t *testing.T) {
	tr := buildTree(t, `<div id="btn" style="cursor:pointer;width:40px;height:20px;"></div>`, "")
	doc := tr.Doc()
	id, _ := doc.ElementByID("btn")
	v, _ := findViewForNode(tr, id)

	if got := Cursor(tr, v); got != "pointer" {
		t.Fatalf("Cursor = %q, want pointer", got)
	}
	if got := Cursor(tr, layout.ViewRef{}); got != "default" {
		t.Fatalf("Cursor(zero) = %q, want default", got)
	}
}

func TestNavigationURLFindsEnclosingAnchor(t *testing.T) {
	tr := buildTree(t, `<a href="https://example.com/page">click me</a>`, "")
	root := tr.Root()

	// the TextRun under the anchor is the View HitTest will usually return;
	// NavigationURL must walk up to the anchor to find the href.
	var textRun layout.ViewRef
	var find func(v layout.ViewRef)
	find = func(v layout.ViewRef) {
		if tr.View(v).Kind == layout.KindTextRun {
			textRun = v
			return
		}
		for c := tr.FirstChild(v); !c.IsZero(); c = tr.NextSibling(c) {
			find(c)
		}
	}
	find(root)
	if textRun.IsZero() {
		t.Fatal("expected a TextRun under the anchor")
	}

	url, ok := NavigationURL(tr, textRun)
	if !ok || url != "https://example.com/page" {
		t.Fatalf("NavigationURL = %q, %v", url, ok)
	}
}

func TestCharacterOffsetWalksGlyphAdvances(t *testing.T) {
	tr := buildTree(t, `<p id="p" style="font-size:10px;">abcdef</p>`, "")
	doc := tr.Doc()
	id, _ := doc.ElementByID("p")
	pv, _ := findViewForNode(tr, id)

	var textRun *layout.View
	for c := tr.FirstChild(pv); !c.IsZero(); c = tr.NextSibling(c) {
		if tr.View(c).Kind == layout.KindTextRun {
			textRun = tr.View(c)
		}
	}
	if textRun == nil {
		t.Fatal("expected a TextRun child")
	}

	// each glyph advances fontSize*0.6 = 6px under fakeFonts; offset 13 is
	// within the 3rd glyph's span (pen 12..18) but before its midpoint
	// (15), so it resolves to index 2.
	off := CharacterOffset(fakeFonts{}, textRun, 13)
	if off != 2 {
		t.Fatalf("CharacterOffset = %d, want 2", off)
	}
}
