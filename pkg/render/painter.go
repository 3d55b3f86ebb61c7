// Package render walks a laid-out layout.Tree in paint order and issues
// drawing commands against an abstract Painter, following
// iansmith-louis14/pkg/render/render.go's box-tree paint walk but reduced
// to this module's simpler stacking model: since pkg/cssstyle carries no
// z-index or position:fixed (only static/absolute), paint order is plain
// document order — the CSS 2.1 Appendix E special cases the teacher's
// paintStackingContext handles collapse to a single pre-order walk.
package render

import (
	"image"

	"corehost/pkg/cssstyle"
	"corehost/pkg/layout"
)

// Rect is an axis-aligned destination rectangle in device pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Painter is the host-supplied drawing surface. Implementations might
// rasterize to an *image.RGBA, stream SVG, or record commands for a test
// assertion; PaintTree never assumes a concrete backend.
type Painter interface {
	// FillRect paints a solid-color rectangle: box backgrounds, borders
	// (one call per side), and scrollbar track/handle chrome.
	FillRect(r Rect, color cssstyle.RGBA)
	// BlitImage composites img, scaled to r, for an ImageBox's content.
	BlitImage(r Rect, img image.Image)
	// DrawGlyph paints a single glyph with its baseline at (x, y).
	DrawGlyph(x, y float64, ch rune, fontSize float64, family string, bold, italic bool, color cssstyle.RGBA)
	// DrawPicture paints an already-composed bitmap that doesn't decompose
	// into the primitives above — this module uses it for a box's
	// background-image.
	DrawPicture(r Rect, pic image.Image)
}

// ImageSource resolves an ImageBox's URL to its decoded bitmap; pkg/imagecache
// implements it (its Load method already returns exactly this shape, so any
// *imagecache.Cache satisfies ImageSource without adapter code).
type ImageSource interface {
	Load(url string) (image.Image, error)
}

// PaintTree paints every view in t reachable from root, in document order,
// using fonts for glyph placement (the per-glyph advance, since a TextRun
// View only stores its own total width) and images to resolve ImageBox and
// background-image bitmaps. A view with an attached ScrollPane shifts its
// children by the pane's ScrollX/ScrollY; the children are not clipped to
// the pane.
func PaintTree(t *layout.Tree, root layout.ViewRef, p Painter, fonts layout.FontMetrics, images ImageSource) {
	paintView(t, root, p, fonts, images, 0, 0)
}

func paintView(t *layout.Tree, v layout.ViewRef, p Painter, fonts layout.FontMetrics, images ImageSource, offsetX, offsetY float64) {
	box := t.View(v)
	x := box.X + offsetX
	y := box.Y + offsetY

	paintBackgroundAndBorder(box, p, images, x, y)

	switch box.Kind {
	case layout.KindImageBox:
		paintImage(box, p, images, x, y)
	case layout.KindTextRun:
		paintText(box, p, fonts, x, y)
	case layout.KindListItemBox:
		paintMarker(box, p, fonts, x, y)
	}

	childOffsetX, childOffsetY := contentOrigin(box, x, y)
	if box.Scroll != nil {
		childOffsetX -= box.Scroll.ScrollX
		childOffsetY -= box.Scroll.ScrollY
	}
	for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
		paintView(t, c, p, fonts, images, childOffsetX, childOffsetY)
	}

	if box.Scroll != nil {
		paintScrollbars(box, p, x, y)
	}
}

func contentOrigin(box *layout.View, x, y float64) (float64, float64) {
	return x + box.Border.Left + box.Padding.Left, y + box.Border.Top + box.Padding.Top
}

func borderBoxSize(box *layout.View) (float64, float64) {
	w := box.Border.Horizontal() + box.Padding.Horizontal() + box.Width
	h := box.Border.Vertical() + box.Padding.Vertical() + box.Height
	return w, h
}

// paintBackgroundAndBorder fills the border-box background, paints a
// declared background-image as a picture (distinct from BlitImage's
// content-box image scaling, matching the teacher's drawBackgroundImage
// being a separate pass from drawImage), and strokes each border side as
// its own rectangle, per CSS 2.1 §8.5 (mitering at corners is not modeled —
// this module's border rendering is flat per side, matching the scope the
// teacher's own Phase-2 border drawing started from before its later
// mitred-trapezoid refinement).
func paintBackgroundAndBorder(box *layout.View, p Painter, images ImageSource, x, y float64) {
	if box.Style == nil {
		return
	}
	w, h := borderBoxSize(box)
	if bg, ok := box.Style.Get("background-color"); ok {
		if color, ok := cssstyle.ParseColor(bg); ok && color.A > 0 {
			p.FillRect(Rect{x, y, w, h}, color)
		}
	}
	if bgURL, ok := backgroundImageURL(box.Style); ok && images != nil {
		if pic, err := images.Load(bgURL); err == nil {
			p.DrawPicture(Rect{x, y, w, h}, pic)
		}
	}

	border := box.Border
	borderColor, hasBorderColor := cssstyle.RGBA{A: 255}, false
	if c, ok := box.Style.Get("border-color"); ok {
		if parsed, ok := cssstyle.ParseColor(c); ok {
			borderColor, hasBorderColor = parsed, true
		}
	}
	if !hasBorderColor {
		return
	}
	if border.Top > 0 {
		p.FillRect(Rect{x, y, w, border.Top}, borderColor)
	}
	if border.Bottom > 0 {
		p.FillRect(Rect{x, y + h - border.Bottom, w, border.Bottom}, borderColor)
	}
	if border.Left > 0 {
		p.FillRect(Rect{x, y, border.Left, h}, borderColor)
	}
	if border.Right > 0 {
		p.FillRect(Rect{x + w - border.Right, y, border.Right, h}, borderColor)
	}
}

func paintImage(box *layout.View, p Painter, images ImageSource, x, y float64) {
	if images == nil || box.ImageURL == "" {
		return
	}
	img, err := images.Load(box.ImageURL)
	if err != nil {
		return
	}
	cx, cy := contentOrigin(box, x, y)
	p.BlitImage(Rect{cx, cy, box.Width, box.Height}, img)
}

func paintText(box *layout.View, p Painter, fonts layout.FontMetrics, x, y float64) {
	if fonts == nil || box.Text == "" {
		return
	}
	family, bold, italic := "sans-serif", false, false
	color := cssstyle.RGBA{A: 255}
	if box.Style != nil {
		if v, ok := box.Style.Get("font-family"); ok && v != "" {
			family = v
		}
		if v, ok := box.Style.Get("font-weight"); ok && (v == "bold" || v == "700" || v == "800" || v == "900") {
			bold = true
		}
		if v, ok := box.Style.Get("font-style"); ok && v == "italic" {
			italic = true
		}
		if v, ok := box.Style.Get("color"); ok {
			if parsed, ok := cssstyle.ParseColor(v); ok {
				color = parsed
			}
		}
	}
	baselineY := y + box.Ascender
	pen := x
	for _, r := range box.Text {
		p.DrawGlyph(pen, baselineY, r, box.FontSize, family, bold, italic, color)
		pen += fonts.Advance(string(r), box.FontSize, family, bold, italic)
	}
}

func paintMarker(box *layout.View, p Painter, fonts layout.FontMetrics, x, y float64) {
	if box.MarkerText == "" || fonts == nil {
		return
	}
	family := "sans-serif"
	color := cssstyle.RGBA{A: 255}
	if box.Style != nil {
		if v, ok := box.Style.Get("color"); ok {
			if parsed, ok := cssstyle.ParseColor(v); ok {
				color = parsed
			}
		}
	}
	ascender, _ := fonts.Metrics(box.FontSize, family)
	baselineY := y + ascender
	pen := x
	for _, r := range box.MarkerText {
		p.DrawGlyph(pen, baselineY, r, box.FontSize, family, false, false, color)
		pen += fonts.Advance(string(r), box.FontSize, family, false, false)
	}
}

// paintScrollbars draws a pane's vertical and horizontal scrollbar tracks
// and handles (whichever the pane has) at its own box's content-edge, per spec.md §4.6.4's thickness/inset constants.
func paintScrollbars(box *layout.View, p Painter, x, y float64) {
	sp := box.Scroll
	cx, cy := contentOrigin(box, x, y)
	track := cssstyle.RGBA{R: 230, G: 230, B: 230, A: 255}
	handle := cssstyle.RGBA{R: 150, G: 150, B: 150, A: 255}

	if sp.HasVertical {
		trackX := cx + sp.ViewportWidth - scrollbarThickness
		p.FillRect(Rect{trackX, cy, scrollbarThickness, sp.VerticalBarLength()}, track)
		p.FillRect(Rect{trackX + 2, cy + sp.VerticalHandlePosition(), scrollbarThickness - 4, sp.VerticalHandleLength()}, handle)
	}
	if sp.HasHorizontal {
		trackY := cy + sp.ViewportHeight - scrollbarThickness
		p.FillRect(Rect{cx, trackY, sp.HorizontalBarLength(), scrollbarThickness}, track)
		p.FillRect(Rect{cx + sp.HorizontalHandlePosition(), trackY + 2, sp.HorizontalHandleLength(), scrollbarThickness - 4}, handle)
	}
}

const scrollbarThickness = 24.0

// backgroundImageURL extracts a bare `url(...)` target from a
// `background-image` declaration, stripping optional quotes.
func backgroundImageURL(cs *cssstyle.ComputedStyle) (string, bool) {
	raw, ok := cs.Get("background-image")
	if !ok {
		return "", false
	}
	raw = trimFunc(raw, "url(", ")")
	raw = trimFunc(raw, `"`, `"`)
	raw = trimFunc(raw, "'", "'")
	if raw == "" {
		return "", false
	}
	return raw, true
}

func trimFunc(s, prefix, suffix string) string {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix && len(s) >= len(prefix)+len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[len(prefix) : len(s)-len(suffix)]
	}
	return s
}
