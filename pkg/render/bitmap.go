package render

import (
	"image"
	"image/color"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	xdraw "golang.org/x/image/draw"

	"corehost/pkg/cssstyle"
	"corehost/pkg/fontcache"
)

// BitmapPainter implements Painter by drawing directly onto an *image.RGBA,
// grounded on iansmith-louis14/pkg/render/render.go's Renderer (which wraps
// fogleman/gg) but built on this module's own font/image stack instead:
// pkg/fontcache already standardises on golang/freetype's truetype.Font and
// golang.org/x/image/font.Face for glyph metrics, and a Painter should draw
// with the exact faces layout measured against rather than a second font
// loader. Scaling uses golang.org/x/image/draw, the same module's image
// package pkg/imagecache decodes into.
type BitmapPainter struct {
	Dst   *image.RGBA
	Fonts *fontcache.Cache
}

// NewBitmapPainter allocates a white width×height canvas.
func NewBitmapPainter(width, height int, fonts *fontcache.Cache) *BitmapPainter {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(img, img.Bounds(), image.White, image.Point{}, xdraw.Src)
	return &BitmapPainter{Dst: img, Fonts: fonts}
}

func toNRGBA(c cssstyle.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FillRect satisfies Painter.
func (p *BitmapPainter) FillRect(r Rect, c cssstyle.RGBA) {
	rect := image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height)).Intersect(p.Dst.Bounds())
	if rect.Empty() {
		return
	}
	xdraw.Draw(p.Dst, rect, &image.Uniform{C: toNRGBA(c)}, image.Point{}, xdraw.Over)
}

// BlitImage satisfies Painter, scaling img to r with a CatmullRom resampler.
func (p *BitmapPainter) BlitImage(r Rect, img image.Image) {
	dstRect := image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
	if dstRect.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(p.Dst, dstRect, img, img.Bounds(), xdraw.Over, nil)
}

// DrawPicture satisfies Painter; this module has no separate composited-
// picture representation beyond a decoded bitmap, so it blits like an image.
func (p *BitmapPainter) DrawPicture(r Rect, pic image.Image) {
	p.BlitImage(r, pic)
}

// DrawGlyph satisfies Painter, rendering a single rune with its baseline at
// (x, y) using the exact font.Face pkg/fontcache measured the TextRun with.
func (p *BitmapPainter) DrawGlyph(x, y float64, ch rune, fontSize float64, family string, bold, italic bool, c cssstyle.RGBA) {
	if p.Fonts == nil {
		return
	}
	face, ok := p.Fonts.Face(family, bold, italic, fontSize)
	if !ok {
		return
	}
	d := &xfont.Drawer{
		Dst:  p.Dst,
		Src:  &image.Uniform{C: toNRGBA(c)},
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(int(x)), Y: fixed.I(int(y))},
	}
	d.DrawString(string(ch))
}
