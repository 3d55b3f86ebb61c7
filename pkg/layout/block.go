package layout

import "corehost/pkg/cssstyle"

// edges resolves the margin/border/padding BoxEdge for v against its
// containing block's width (percentages on margin/padding resolve against
// the containing block's width even for top/bottom, per CSS 2.1 §10.4/8.4).
func edges(v *View, containingWidth float64) (margin, border, padding BoxEdge) {
	cs := v.Style
	if cs == nil {
		return
	}
	fs := v.FontSize
	side := func(prop string) float64 {
		raw, _ := cs.Get(prop)
		l := cssstyle.ParseLength(raw, fs, containingWidth)
		if l.Auto {
			return 0
		}
		return l.Px
	}
	margin = BoxEdge{side("margin-top"), side("margin-right"), side("margin-bottom"), side("margin-left")}
	border = BoxEdge{side("border-top-width"), side("border-right-width"), side("border-bottom-width"), side("border-left-width")}
	padding = BoxEdge{side("padding-top"), side("padding-right"), side("padding-bottom"), side("padding-left")}
	return
}

// layoutBlockChildren lays out t's children of a block formatting context
// box (v) top to bottom, implementing CSS 2.1 §8.3's adjoining-margin
// collapsing between a block's successive in-flow block-level children.
// A first child's top margin and a last child's bottom margin do not
// collapse with v's own margins: the first child sits below its full top
// margin inside v, and the last child's bottom margin is added to v's auto
// height.
func layoutBlockChildren(t *Tree, e *Engine, v ViewRef) {
	box := t.View(v)
	contentWidth := box.Width

	y := 0.0
	prevMarginBottom := 0.0
	havePrev := false

	for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
		cv := t.View(c)
		if cv.Position == cssstyle.PositionAbsolute {
			continue // positioned out of flow; handled by layoutAbsolute after the normal flow pass
		}
		if cv.Kind == KindInlineBox || cv.Kind == KindTextRun {
			// Inline-level children of a block that also has block-level
			// children are skipped and get no line box: layoutMixedContent
			// only runs for blocks whose children are all inline-level.
			continue
		}

		m, b, p := edges(cv, contentWidth)
		cv.Margin, cv.Border, cv.Padding = m, b, p

		resolveWidth(cv, contentWidth)

		e.layoutBox(t, c)
		cv = t.View(c) // layoutBox may allocate Views, which can move the views slice

		collapsed := m.Top
		if havePrev {
			collapsed = collapseMargins(prevMarginBottom, m.Top)
		}
		cv.X = m.Left
		cv.Y = y + collapsed
		y = cv.Y + b.Top + p.Top + cv.Height + p.Bottom + b.Bottom

		prevMarginBottom = m.Bottom
		havePrev = true
	}

	box = t.View(v)
	if box.Height == 0 {
		finalY := y
		if havePrev {
			finalY += prevMarginBottom
		}
		box.Height = finalY
	}
}

// collapseMargins implements CSS 2.1 §8.3.1: two adjoining positive margins
// collapse to their maximum; a positive and a negative margin collapse to
// their sum; two negative margins collapse to their minimum (most negative).
func collapseMargins(a, b float64) float64 {
	switch {
	case a >= 0 && b >= 0:
		return max(a, b)
	case a < 0 && b < 0:
		return min(a, b)
	default:
		return a + b
	}
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// resolveWidth sets cv.Width from its computed `width` against the
// containing block's content width, applying the CSS 2.1 §10.3.3 "auto
// width fills the containing block minus margins/border/padding" rule for
// block-level boxes.
func resolveWidth(cv *View, containingWidth float64) {
	raw, ok := cv.Style.Get("width")
	if ok {
		if l := cssstyle.ParseLength(raw, cv.FontSize, containingWidth); !l.Auto {
			cv.Width = l.Px
			return
		}
	}
	cv.Width = containingWidth - cv.Margin.Horizontal() - cv.Border.Horizontal() - cv.Padding.Horizontal()
	if cv.Width < 0 {
		cv.Width = 0
	}
}

// resolveHeight sets cv.Height from an explicit `height`, leaving the
// content-driven value (already assigned by the child layout pass) intact
// when `height` is auto, per CSS 2.1 §10.6.3.
func resolveHeight(cv *View, containingHeight float64, auto func() float64) {
	raw, ok := cv.Style.Get("height")
	if ok {
		if l := cssstyle.ParseLength(raw, cv.FontSize, containingHeight); !l.Auto {
			cv.Height = l.Px
			return
		}
	}
	cv.Height = auto()
}
