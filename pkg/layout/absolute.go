package layout

import "corehost/pkg/cssstyle"

// positionOffset is the normalized top/right/bottom/left used values CSS
// 2.1 §10.3.7/§10.6.4's absolute positioning algorithm reads.
type positionOffset struct {
	Top, Right, Bottom, Left           float64
	HasTop, HasRight, HasBottom, HasLeft bool
}

func offsetOf(v *View, containingWidth, containingHeight float64) positionOffset {
	var o positionOffset
	get := func(prop string, containing float64) (float64, bool) {
		raw, ok := v.Style.Get(prop)
		if !ok {
			return 0, false
		}
		l := cssstyle.ParseLength(raw, v.FontSize, containing)
		if l.Auto {
			return 0, false
		}
		return l.Px, true
	}
	o.Top, o.HasTop = get("top", containingHeight)
	o.Bottom, o.HasBottom = get("bottom", containingHeight)
	o.Left, o.HasLeft = get("left", containingWidth)
	o.Right, o.HasRight = get("right", containingWidth)
	return o
}

// nearestPositionedAncestor walks v's ancestor chain for the nearest box
// with `position: absolute` (this repo's Component F scope collapses
// `relative`/`fixed`/`sticky` to static, so `absolute` is the only kind of
// box that establishes a containing block for descendants other than the
// viewport).
func nearestPositionedAncestor(t *Tree, v ViewRef) (ViewRef, bool) {
	for p := t.Parent(v); !p.IsZero(); p = t.Parent(p) {
		if t.View(p).Position == cssstyle.PositionAbsolute {
			return p, true
		}
	}
	return ViewRef{}, false
}

// layoutAbsolute positions v (a `position: absolute` box) against its
// containing block's padding edge, or the viewport if no positioned
// ancestor exists, implementing CSS 2.1 §10.3.7 (horizontal) and §10.6.4
// (vertical), including the auto-margin centering case when both offsets
// and both margins on an axis are set.
func layoutAbsolute(t *Tree, v ViewRef, viewportWidth, viewportHeight float64) {
	box := t.View(v)

	var cbX, cbY, cbWidth, cbHeight float64
	if parent, ok := nearestPositionedAncestor(t, v); ok {
		cv := t.View(parent)
		cbX = cv.X + cv.Border.Left
		cbY = cv.Y + cv.Border.Top
		cbWidth = cv.Width + cv.Padding.Left + cv.Padding.Right
		cbHeight = cv.Height + cv.Padding.Top + cv.Padding.Bottom
	} else {
		cbWidth, cbHeight = viewportWidth, viewportHeight
	}

	m, b, p := edges(box, cbWidth)
	box.Border, box.Padding = b, p
	if box.Kind == KindImageBox {
		// A replaced element's auto size comes from its intrinsic
		// dimensions, not the containing block's width like a generic
		// auto-width block — resolve it now so the offset math below
		// (which reads box.Width/Height) uses the real size instead of
		// whatever e.layoutBox's later layoutImage call would correct it to.
		layoutImage(box)
	} else {
		resolveWidth(box, cbWidth)
		resolveHeight(box, cbHeight, func() float64 { return box.Height })
	}

	offset := offsetOf(box, cbWidth, cbHeight)

	marginLeftAuto := isAutoMargin(box, "margin-left", cbWidth)
	marginRightAuto := isAutoMargin(box, "margin-right", cbWidth)
	marginTopAuto := isAutoMargin(box, "margin-top", cbWidth)
	marginBottomAuto := isAutoMargin(box, "margin-bottom", cbWidth)

	switch {
	case offset.HasLeft && offset.HasRight && marginLeftAuto && marginRightAuto:
		used := b.Left + p.Left + box.Width + p.Right + b.Right
		available := cbWidth - offset.Left - offset.Right - used
		if available < 0 {
			available = 0
		}
		m.Left, m.Right = available/2, available/2
		box.X = cbX + offset.Left + m.Left
	case offset.HasLeft:
		box.X = cbX + offset.Left + m.Left
	case offset.HasRight:
		box.X = cbX + cbWidth - offset.Right - m.Right - box.Width - p.Left - p.Right - b.Left - b.Right
	default:
		box.X = cbX + m.Left
	}

	switch {
	case offset.HasTop && offset.HasBottom && marginTopAuto && marginBottomAuto:
		used := b.Top + p.Top + box.Height + p.Bottom + b.Bottom
		available := cbHeight - offset.Top - offset.Bottom - used
		if available < 0 {
			available = 0
		}
		m.Top, m.Bottom = available/2, available/2
		box.Y = cbY + offset.Top + m.Top
	case offset.HasTop:
		box.Y = cbY + offset.Top + m.Top
	case offset.HasBottom:
		box.Y = cbY + cbHeight - offset.Bottom - m.Bottom - box.Height - p.Top - p.Bottom - b.Top - b.Bottom
	default:
		box.Y = cbY + m.Top
	}

	box.Margin = m
}

func isAutoMargin(v *View, prop string, containingWidth float64) bool {
	raw, ok := v.Style.Get(prop)
	if !ok {
		return false
	}
	return cssstyle.ParseLength(raw, v.FontSize, containingWidth).Auto
}
