package layout

import "corehost/pkg/cssstyle"

// flexItem accumulates one flex child's computed sizes through the
// algorithm's successive steps, per spec.md §4.6.3.
type flexItem struct {
	view                   ViewRef
	flexBasis              float64
	hypotheticalMain       float64
	grow, shrink           float64
	mainSize               float64 // final, post grow/shrink resolution
	crossSize              float64
	mainStart, crossStart  float64
	marginMainStart, marginMainEnd   float64
	marginCrossStart, marginCrossEnd float64
	autoMarginMain, autoMarginCross  int // count of auto margins on that axis, for the absorption step
}

// layoutFlexContainer implements the 8-step flex algorithm spec.md §4.6.3
// names: main-axis direction, hypothetical main sizes, line-wrapping,
// grow/shrink distribution, justify-content positioning, align-items/
// align-self cross positioning, align-content multi-line packing, and
// row/column-reverse ordering. Returns the container's content-box height
// (used when the container's own height is auto).
func layoutFlexContainer(t *Tree, e *Engine, container ViewRef, contentWidth, declaredHeight float64, heightIsAuto bool) float64 {
	box := t.View(container)
	horizontal := box.FlexDirection == cssstyle.FlexDirectionRow || box.FlexDirection == cssstyle.FlexDirectionRowReverse
	reversed := box.FlexDirection == cssstyle.FlexDirectionRowReverse || box.FlexDirection == cssstyle.FlexDirectionColumnReverse

	mainSize := contentWidth
	if !horizontal {
		mainSize = declaredHeight
	}

	var children []ViewRef
	for c := t.FirstChild(container); !c.IsZero(); c = t.NextSibling(c) {
		if t.View(c).Position == cssstyle.PositionAbsolute {
			continue
		}
		children = append(children, c)
	}
	if reversed {
		for i, j := 0, len(children)-1; i < j; i, j = i+1, j-1 {
			children[i], children[j] = children[j], children[i]
		}
	}

	items := make([]flexItem, len(children))
	for i, c := range children {
		cv := t.View(c)
		m, b, p := edges(cv, contentWidth)
		cv.Margin, cv.Border, cv.Padding = m, b, p

		basis := flexBasisOf(cv, horizontal, contentWidth, declaredHeight)
		items[i] = flexItem{
			view:             c,
			flexBasis:        basis,
			hypotheticalMain: basis,
			grow:             flexFactor(cv, "flex-grow", 0),
			shrink:           flexFactor(cv, "flex-shrink", 1),
		}
		if horizontal {
			items[i].marginMainStart, items[i].marginMainEnd = m.Left, m.Right
			items[i].marginCrossStart, items[i].marginCrossEnd = m.Top, m.Bottom
		} else {
			items[i].marginMainStart, items[i].marginMainEnd = m.Top, m.Bottom
			items[i].marginCrossStart, items[i].marginCrossEnd = m.Left, m.Right
		}
	}

	allowWrap := false
	if box.Style != nil {
		if v, ok := box.Style.Get("flex-wrap"); ok && (v == "wrap" || v == "wrap-reverse") {
			allowWrap = true
		}
	}
	lines := flexLines(items, mainSize, allowWrap)

	lineCrossSizes := make([]float64, len(lines))
	for li, line := range lines {
		resolveMainSize(line, mainSize)
		maxCross := 0.0
		for i := range line {
			c := t.View(line[i].view)
			cross := crossSizeOf(c, horizontal, contentWidth, declaredHeight)
			line[i].crossSize = cross
			total := cross + line[i].marginCrossStart + line[i].marginCrossEnd
			if total > maxCross {
				maxCross = total
			}
		}
		lineCrossSizes[li] = maxCross
		justifyMainAxis(line, mainSize, styleOfDefault(box, "justify-content"))
		for i := range line {
			c := t.View(line[i].view)
			alignItemCrossAxis(c, &line[i], maxCross, styleOfDefault(box, "align-items"))
		}
	}

	// align-content packs whole lines within the container's own cross-axis
	// size, the last step of spec.md §4.6.3's algorithm; it only has room to
	// act when that size is definite and exceeds the lines' combined extent.
	containerCross := declaredHeight
	crossIsDefinite := !heightIsAuto
	if !horizontal {
		containerCross = contentWidth
		crossIsDefinite = true
	}
	linePos := packFlexLines(lineCrossSizes, containerCross, crossIsDefinite, styleOfDefault(box, "align-content"))
	for li, line := range lines {
		assignFlexGeometry(t, line, horizontal, 0, linePos[li])
	}

	crossExtent := 0.0
	if len(lines) > 0 {
		crossExtent = linePos[len(lines)-1] + lineCrossSizes[len(lines)-1]
	}

	if horizontal {
		if heightIsAuto {
			return crossExtent
		}
		return declaredHeight
	}
	return mainSize
}

// packFlexLines computes each flex line's starting cross-axis offset per
// `align-content`: flex-start (default) and stretch both pack lines
// back-to-back (this module does not grow a line's items to fill leftover
// cross space for stretch), flex-end/center shift the whole block, and the
// space-* keywords distribute gaps between/around lines exactly like
// justifyMainAxis distributes gaps between items on the main axis. Lines
// only get extra room to pack into when containerCross is definite and
// exceeds their combined extent.
func packFlexLines(crossSizes []float64, containerCross float64, definite bool, alignContent string) []float64 {
	positions := make([]float64, len(crossSizes))
	if len(crossSizes) == 0 {
		return positions
	}
	used := 0.0
	for _, c := range crossSizes {
		used += c
	}
	free := 0.0
	if definite {
		free = containerCross - used
	}
	if free < 0 {
		free = 0
	}

	n := len(crossSizes)
	pos := 0.0
	gap := 0.0
	switch alignContent {
	case "flex-end":
		pos = free
	case "center":
		pos = free / 2
	case "space-between":
		if n > 1 {
			gap = free / float64(n-1)
		}
	case "space-around":
		gap = free / float64(n)
		pos = gap / 2
	case "space-evenly":
		gap = free / float64(n+1)
		pos = gap
	}

	for i, c := range crossSizes {
		positions[i] = pos
		pos += c + gap
	}
	return positions
}

func flexBasisOf(cv *View, horizontal bool, contentWidth, containingHeight float64) float64 {
	prop := "width"
	containing := contentWidth
	if !horizontal {
		prop = "height"
		containing = containingHeight
	}
	if cv.Style != nil {
		if raw, ok := cv.Style.Get("flex-basis"); ok && raw != "auto" && raw != "" {
			if l := cssstyle.ParseLength(raw, cv.FontSize, containing); !l.Auto {
				return l.Px
			}
		}
		if raw, ok := cv.Style.Get(prop); ok {
			if l := cssstyle.ParseLength(raw, cv.FontSize, containing); !l.Auto {
				return l.Px
			}
		}
	}
	return 0
}

func flexFactor(cv *View, prop string, def float64) float64 {
	if cv.Style == nil {
		return def
	}
	if raw, ok := cv.Style.Get(prop); ok {
		if l := cssstyle.ParseLength(raw, 0, 0); !l.Auto {
			return l.Px
		}
	}
	return def
}

// flexLines groups items into flex lines, wrapping to a new line once the
// running hypothetical main size would exceed containerMain, per spec.md
// §4.6.3's line-wrapping step. With wrapping disabled, everything is one
// line even if it overflows.
func flexLines(items []flexItem, containerMain float64, allowWrap bool) [][]flexItem {
	if !allowWrap || len(items) == 0 {
		return [][]flexItem{items}
	}
	var lines [][]flexItem
	var cur []flexItem
	used := 0.0
	for _, it := range items {
		total := it.hypotheticalMain + it.marginMainStart + it.marginMainEnd
		if len(cur) > 0 && used+total > containerMain {
			lines = append(lines, cur)
			cur = nil
			used = 0
		}
		cur = append(cur, it)
		used += total
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// resolveMainSize distributes the line's free space (containerMain minus
// the sum of hypothetical main sizes) across flex-grow factors, or the
// deficit across flex-shrink*basis-weighted factors, per spec.md §4.6.3's
// grow/shrink distribution step.
func resolveMainSize(line []flexItem, containerMain float64) {
	used := 0.0
	for _, it := range line {
		used += it.hypotheticalMain + it.marginMainStart + it.marginMainEnd
	}
	free := containerMain - used

	if free > 0 {
		totalGrow := 0.0
		for _, it := range line {
			totalGrow += it.grow
		}
		for i := range line {
			extra := 0.0
			if totalGrow > 0 {
				extra = free * (line[i].grow / totalGrow)
			}
			line[i].mainSize = line[i].hypotheticalMain + extra
		}
		return
	}

	deficit := -free
	totalWeighted := 0.0
	for _, it := range line {
		totalWeighted += it.shrink * it.hypotheticalMain
	}
	for i := range line {
		reduce := 0.0
		if totalWeighted > 0 {
			reduce = deficit * (line[i].shrink * line[i].hypotheticalMain / totalWeighted)
		}
		line[i].mainSize = line[i].hypotheticalMain - reduce
		if line[i].mainSize < 0 {
			line[i].mainSize = 0
		}
	}
}

func crossSizeOf(cv *View, horizontal bool, contentWidth, containingHeight float64) float64 {
	prop := "height"
	containing := containingHeight
	if !horizontal {
		prop = "width"
		containing = contentWidth
	}
	if cv.Style != nil {
		if raw, ok := cv.Style.Get(prop); ok {
			if l := cssstyle.ParseLength(raw, cv.FontSize, containing); !l.Auto {
				return l.Px
			}
		}
	}
	return cv.Height // falls back to content-driven size already computed by a prior pass, if any
}

func styleOfDefault(box *View, prop string) string {
	if box.Style == nil {
		return ""
	}
	v, _ := box.Style.Get(prop)
	return v
}

// justifyMainAxis positions each item's main-axis start coordinate per
// `justify-content`: flex-start (default), flex-end, center, space-between,
// space-around, space-evenly.
func justifyMainAxis(line []flexItem, containerMain float64, justify string) {
	used := 0.0
	for _, it := range line {
		used += it.mainSize + it.marginMainStart + it.marginMainEnd
	}
	free := containerMain - used
	if free < 0 {
		free = 0
	}

	n := len(line)
	pos := 0.0
	gap := 0.0
	switch justify {
	case "flex-end":
		pos = free
	case "center":
		pos = free / 2
	case "space-between":
		if n > 1 {
			gap = free / float64(n-1)
		}
	case "space-around":
		if n > 0 {
			gap = free / float64(n)
			pos = gap / 2
		}
	case "space-evenly":
		if n > 0 {
			gap = free / float64(n+1)
			pos = gap
		}
	}

	for i := range line {
		line[i].mainStart = pos + line[i].marginMainStart
		pos += line[i].marginMainStart + line[i].mainSize + line[i].marginMainEnd + gap
	}
}

// alignItemCrossAxis positions one item's cross-axis start and (for
// stretch) resolves its cross size against the line's cross size, per
// `align-items`/`align-self`: stretch (default when cross size is auto),
// flex-start, flex-end, center, baseline (approximated as flex-start; this
// repo does not track per-item text baselines across a flex line).
func alignItemCrossAxis(cv *View, it *flexItem, lineCross float64, alignItems string) {
	align := alignItems
	if cv.Style != nil {
		if v, ok := cv.Style.Get("align-self"); ok && v != "" && v != "auto" {
			align = v
		}
	}

	switch align {
	case "flex-end":
		it.crossStart = lineCross - it.crossSize - it.marginCrossEnd
	case "center":
		it.crossStart = (lineCross - it.crossSize - it.marginCrossStart - it.marginCrossEnd) / 2
	case "stretch", "":
		it.crossSize = lineCross - it.marginCrossStart - it.marginCrossEnd
		it.crossStart = it.marginCrossStart
	default: // flex-start, baseline (approximated)
		it.crossStart = it.marginCrossStart
	}
}

// assignFlexGeometry writes final X/Y/Width/Height onto each item's View
// from the resolved main/cross axis values, translating main-axis-relative
// coordinates into the container's X/Y plane.
func assignFlexGeometry(t *Tree, line []flexItem, horizontal bool, mainOrigin, crossOrigin float64) {
	for _, it := range line {
		v := t.View(it.view)
		if horizontal {
			v.X = mainOrigin + it.mainStart
			v.Y = crossOrigin + it.crossStart
			v.Width = it.mainSize
			v.Height = it.crossSize
		} else {
			v.X = crossOrigin + it.crossStart
			v.Y = mainOrigin + it.mainStart
			v.Width = it.crossSize
			v.Height = it.mainSize
		}
	}
}
