package render

import (
	"image"
	"testing"

	"corehost/pkg/cssstyle"
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

type recordingPainter struct {
	fillRects []Rect
	fillColor []cssstyle.RGBA
	glyphs    []rune
	blits     int
	pictures  int
}

func (p *recordingPainter) FillRect(r Rect, color cssstyle.RGBA) {
	p.fillRects = append(p.fillRects, r)
	p.fillColor = append(p.fillColor, color)
}
func (p *recordingPainter) BlitImage(r Rect, img image.Image)  { p.blits++ }
func (p *recordingPainter) DrawPicture(r Rect, pic image.Image) { p.pictures++ }
func (p *recordingPainter) DrawGlyph(x, y float64, ch rune, fontSize float64, family string, bold, italic bool, color cssstyle.RGBA) {
	p.glyphs = append(p.glyphs, ch)
}

func buildTree(t *testing.T, html, css string) *layout.Tree {
	t.Helper()
	doc := htmltree.Run(html, logsink.Nop)
	sheets := []*cssstyle.Stylesheet{cssstyle.ParseStylesheet(css)}
	eng := &layout.Engine{Fonts: fakeFonts{}}
	return eng.Build(doc, sheets, layout.Viewport{Width: 300, Height: 300, PixelRatio: 1})
}

func TestPaintTreeFillsBackgroundColor(t *testing.T) {
	tree := buildTree(t, `<div id="box">hi</div>`, `#box { background-color: #ff0000; width: 100px; height: 40px; }`)

	p := &recordingPainter{}
	PaintTree(tree, tree.Root(), p, fakeFonts{}, nil)

	found := false
	for i, r := range p.fillRects {
		if r.Width == 100 && r.Height == 40 && p.fillColor[i].R == 0xff {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a 100x40 red fill rect, got %+v / %+v", p.fillRects, p.fillColor)
	}
}

func TestPaintTreeDrawsGlyphsForText(t *testing.T) {
	tree := buildTree(t, `<p>hi</p>`, ``)

	p := &recordingPainter{}
	PaintTree(tree, tree.Root(), p, fakeFonts{}, nil)

	if len(p.glyphs) != 2 || p.glyphs[0] != 'h' || p.glyphs[1] != 'i' {
		t.Fatalf("expected glyphs [h i], got %q", p.glyphs)
	}
}

func TestBackgroundImageURLParsing(t *testing.T) {
	cases := map[string]string{
		`url(foo.png)`:   "foo.png",
		`url("foo.png")`: "foo.png",
		`url('foo.png')`: "foo.png",
	}
	for decl, want := range cases {
		got := trimFunc(trimFunc(decl, "url(", ")"), `"`, `"`)
		got = trimFunc(got, "'", "'")
		if got != want {
			t.Errorf("trimFunc(%q) = %q, want %q", decl, got, want)
		}
	}
}
