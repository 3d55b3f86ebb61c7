package layout

import (
	"corehost/pkg/cssstyle"
	"corehost/pkg/dom"
)

// Viewport is the top-level containing block layout resolves against,
// per spec.md §6.2's `--width`/`--height`/`--pixel-ratio` host flags.
type Viewport struct {
	Width, Height float64
	PixelRatio    float64
}

// ImageSizer resolves an `img`/`iframe` src to its intrinsic pixel
// dimensions; pkg/imagecache implements it. Accepting an interface (rather
// than importing pkg/imagecache) keeps construction pass unit tests free of
// any image-decoding dependency.
type ImageSizer interface {
	IntrinsicSize(url string) (w, h float64, ok bool)
}

// Engine owns the per-pass dependencies (font metrics, image sizing) layout
// needs but does not itself implement, following this repo's "layout
// depends on interfaces, not concrete cache packages" convention.
type Engine struct {
	Fonts  FontMetrics
	Images ImageSizer
}

// Build runs the full two-pass layout algorithm spec.md §4.6 describes:
// View construction from doc against the given stylesheets, then box
// layout (block/inline/flex/absolute/list/scroll) against viewport. It
// returns the resulting Tree; Tree.Root() is zero if doc has no root or
// the root is `display: none`.
func (e *Engine) Build(doc *dom.Document, sheets []*cssstyle.Stylesheet, viewport Viewport) *Tree {
	sizer := func(url string) (float64, float64, bool) {
		if e.Images == nil {
			return 0, 0, false
		}
		return e.Images.IntrinsicSize(url)
	}
	t := construct(doc, sheets, sizer)
	if t.Root().IsZero() {
		return t
	}

	root := t.Root()
	rv := t.View(root)
	rv.Width = viewport.Width
	rv.Height = viewport.Height

	e.layoutBox(t, root)

	var absolutes []ViewRef
	collectAbsolutes(t, root, &absolutes)
	for _, a := range absolutes {
		layoutAbsolute(t, a, viewport.Width, viewport.Height)
		e.layoutBox(t, a)
	}

	return t
}

func collectAbsolutes(t *Tree, v ViewRef, out *[]ViewRef) {
	for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
		if t.View(c).Position == cssstyle.PositionAbsolute {
			*out = append(*out, c)
		}
		collectAbsolutes(t, c, out)
	}
}

// layoutBox dispatches v to the formatting context its display value and
// children select: flex container, a block with only block-level children,
// or a block/inline-block whose children need an inline formatting
// context, per spec.md §4.6's per-box dispatch.
func (e *Engine) layoutBox(t *Tree, v ViewRef) {
	box := t.View(v)

	switch box.Kind {
	case KindImageBox:
		layoutImage(box)
		return
	case KindTextRun:
		return // sized by the inline formatting context that placed it
	}

	if box.Display == cssstyle.DisplayFlex {
		resolveHeight(box, parentContentHeight(t, v), func() float64 { return 0 })
		h := layoutFlexContainer(t, e, v, box.Width, box.Height, !hasExplicitHeight(box))
		if !hasExplicitHeight(box) {
			box.Height = h
		}
		attachScrollIfNeeded(t, v, box)
		return
	}

	if hasOnlyInlineContent(t, v) {
		h := layoutMixedContent(t, e.Fonts, v, box.Width)
		box = t.View(v) // layoutMixedContent allocates Views, which can move the views slice
		if !hasExplicitHeight(box) {
			box.Height = h
		} else {
			resolveHeightFromStyle(box)
		}
		e.applyListMarkerOffset(t, v, box)
		attachScrollIfNeeded(t, v, box)
		return
	}

	layoutBlockChildren(t, e, v)
	box = t.View(v)
	if hasExplicitHeight(box) {
		resolveHeightFromStyle(box)
	}
	e.applyListMarkerOffset(t, v, box)
	attachScrollIfNeeded(t, v, box)
}

// applyListMarkerOffset reserves space for a list item's marker glyph by
// shifting its already-laid-out children right, once per box regardless of
// which formatting context produced them.
func (e *Engine) applyListMarkerOffset(t *Tree, v ViewRef, box *View) {
	if box.Kind != KindListItemBox {
		return
	}
	markerWidth := 0.0
	if box.MarkerText != "" && e.Fonts != nil {
		markerWidth = e.Fonts.Advance(box.MarkerText, box.FontSize, "sans-serif", false, false)
	}
	offsetListItemContent(t, v, markerWidth)
}

func layoutImage(box *View) {
	box.Width = box.IntrinsicWidth
	box.Height = box.IntrinsicHeight
	if raw, ok := box.Style.Get("width"); ok {
		if l := cssstyle.ParseLength(raw, box.FontSize, 0); !l.Auto {
			box.Width = l.Px
		}
	}
	if raw, ok := box.Style.Get("height"); ok {
		if l := cssstyle.ParseLength(raw, box.FontSize, 0); !l.Auto {
			box.Height = l.Px
		}
	}
}

func hasExplicitHeight(box *View) bool {
	if box.Style == nil {
		return false
	}
	raw, ok := box.Style.Get("height")
	if !ok {
		return false
	}
	return !cssstyle.ParseLength(raw, box.FontSize, 0).Auto
}

func resolveHeightFromStyle(box *View) {
	raw, _ := box.Style.Get("height")
	if l := cssstyle.ParseLength(raw, box.FontSize, 0); !l.Auto {
		box.Height = l.Px
	}
}

func parentContentHeight(t *Tree, v ViewRef) float64 {
	p := t.Parent(v)
	if p.IsZero() {
		return 0
	}
	return t.View(p).Height
}

// hasOnlyInlineContent reports whether v's children are exclusively
// inline-level (TextRun/InlineBox/ImageBox with inline display), meaning v
// establishes an inline formatting context rather than a block one.
func hasOnlyInlineContent(t *Tree, v ViewRef) bool {
	any := false
	for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
		cv := t.View(c)
		if cv.Position == cssstyle.PositionAbsolute {
			continue
		}
		any = true
		switch cv.Kind {
		case KindTextRun:
		case KindInlineBox:
		case KindImageBox:
		default:
			return false
		}
	}
	return any
}

// offsetListItemContent shifts a just-laid-out list item's children right
// by markerWidth plus a fixed gap, reserving space for the marker glyph
// painted at the item's own left edge, per spec.md §4.6.5.
func offsetListItemContent(t *Tree, item ViewRef, markerWidth float64) {
	const markerGap = 8.0
	shift := markerWidth + markerGap
	for c := t.FirstChild(item); !c.IsZero(); c = t.NextSibling(c) {
		t.View(c).X += shift
	}
}

// attachScrollIfNeeded measures the farthest extent of v's children
// (their own box plus position, independent of clipping) and attaches a
// ScrollPane to box if that extent exceeds box's own content-box size and
// its overflow computed value calls for one.
func attachScrollIfNeeded(t *Tree, v ViewRef, box *View) {
	contentW, contentH := 0.0, 0.0
	for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
		cv := t.View(c)
		right := cv.X + cv.Border.Left + cv.Padding.Left + cv.Width + cv.Padding.Right + cv.Border.Right + cv.Margin.Right
		bottom := cv.Y + cv.Border.Top + cv.Padding.Top + cv.Height + cv.Padding.Bottom + cv.Border.Bottom + cv.Margin.Bottom
		if right > contentW {
			contentW = right
		}
		if bottom > contentH {
			contentH = bottom
		}
	}
	attachScrollPane(box, contentW, contentH)
}
