package layout

import (
	"strings"

	"corehost/pkg/cssstyle"
	"corehost/pkg/dom"
)

// FontMetrics is the glyph-measurement dependency the inline line-builder
// needs; pkg/fontcache implements it. Accepting an interface here (rather
// than importing pkg/fontcache directly) keeps layout's tests free of any
// font-file dependency, following this repo's "accept interfaces, return
// structs" convention.
type FontMetrics interface {
	// Advance returns the total horizontal advance, in device pixels, of
	// rendering text at the given font size/family/weight/style.
	Advance(text string, fontSize float64, family string, bold, italic bool) float64
	// Metrics returns the font's ascender/descender at fontSize, used for
	// line-box height and baseline alignment.
	Metrics(fontSize float64, family string) (ascender, descender float64)
}

// lineItem is one piece of content placed on a line. Text items carry
// their own substring/style/metrics rather than a ViewRef, since one
// source TextRun can split across many line items; layoutMixedContent
// materializes a fresh TextRun View per placed text item. Non-text items
// reference an already-allocated atomic View (an image or an inline-block)
// that gets reparented, not recreated.
type lineItem struct {
	isText bool

	// text-item fields.
	text       string
	startOff   int // byte offset within the source TextRun's Text
	node       dom.Ref
	style      *cssstyle.ComputedStyle
	fontSize   float64
	whiteSpace cssstyle.WhiteSpace

	// shared measurement fields.
	width               float64
	ascender, descender float64

	atomicView      ViewRef // valid when !isText && !forceBreakAfter
	forceBreakAfter bool    // true for a <br>
}

// layoutMixedContent lays out v's inline-level descendants (TextRuns,
// inline boxes, <br>, images) as one or more line boxes inside the content
// width given by containingWidth, per spec.md §4.6.2: a pen-position
// line-builder that breaks at ASCII whitespace (never U+00A0), respects
// forced breaks before <br>, and distributes leftover width per
// `text-align` once a line's content is known. It replaces v's child list
// with the flattened, positioned line fragments (nested inline wrapper
// boxes like <em>/<strong>/<a> are not preserved as separate painted boxes
// in this simplified model; their text still renders with their style).
// Returns the total height consumed.
func layoutMixedContent(t *Tree, fm FontMetrics, parent ViewRef, containingWidth float64) float64 {
	items := collectLineItems(t, fm, parent)
	if len(items) == 0 {
		t.detachAllChildren(parent)
		return 0
	}

	lines := breakIntoLines(items, containingWidth)
	t.detachAllChildren(parent)

	box := t.View(parent)
	y := 0.0
	for _, line := range lines {
		lineHeight, ascender := lineMetrics(line)
		placeLine(t, parent, line, containingWidth, box.TextAlign, y, ascender)
		y += lineHeight
	}
	return y
}

// collectLineItems flattens a block's inline-level descendants into a flat
// sequence of line items, splitting each TextRun at ASCII-whitespace break
// opportunities (spec.md §4.6.2: "break opportunities occur at space
// characters, never at U+00A0").
func collectLineItems(t *Tree, fm FontMetrics, parent ViewRef) []lineItem {
	var items []lineItem
	var walk func(v ViewRef)
	walk = func(v ViewRef) {
		view := t.View(v)
		switch view.Kind {
		case KindTextRun:
			items = append(items, splitTextRun(view, fm)...)
		case KindImageBox:
			layoutImage(view)
			items = append(items, lineItem{atomicView: v, width: view.Width, ascender: view.Height})
		case KindInlineBox:
			if view.Node.Kind() == dom.KindElement && t.doc.TagNameString(view.Node) == "br" {
				items = append(items, lineItem{forceBreakAfter: true})
				return
			}
			for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
				walk(c)
			}
		default:
			// an inline-block measured as one atomic item, using whatever
			// size its own (separately resolved) box layout already gave it.
			items = append(items, lineItem{atomicView: v, width: view.Width, ascender: view.Height})
		}
	}
	for c := t.FirstChild(parent); !c.IsZero(); c = t.NextSibling(c) {
		walk(c)
	}
	return items
}

func splitTextRun(view *View, fm FontMetrics) []lineItem {
	family, bold, italic := fontPropsOf(view.Style)
	ascender, descender := fm.Metrics(view.FontSize, family)
	base := lineItem{
		isText: true, node: view.Node, style: view.Style,
		fontSize: view.FontSize, whiteSpace: view.WhiteSpace,
		ascender: ascender, descender: descender,
	}

	var out []lineItem
	text := view.Text
	if view.WhiteSpace == cssstyle.WhiteSpacePre || view.WhiteSpace == cssstyle.WhiteSpaceNowrap {
		item := base
		item.text, item.startOff = text, 0
		item.width = fm.Advance(text, view.FontSize, family, bold, italic)
		out = append(out, item)
		return out
	}

	start := 0
	for start < len(text) {
		spaceIdx := strings.IndexByte(text[start:], ' ')
		var word string
		wordStart := start
		if spaceIdx < 0 {
			word = text[start:]
			start = len(text)
		} else {
			word = text[start : start+spaceIdx+1]
			start += spaceIdx + 1
		}
		if word == "" {
			continue
		}
		item := base
		item.text, item.startOff = word, wordStart
		item.width = fm.Advance(strings.TrimRight(word, " "), view.FontSize, family, bold, italic)
		out = append(out, item)
	}
	return out
}

func fontPropsOf(cs *cssstyle.ComputedStyle) (family string, bold, italic bool) {
	if cs == nil {
		return "sans-serif", false, false
	}
	family = "sans-serif"
	if v, ok := cs.Get("font-family"); ok && v != "" {
		family = v
	}
	if v, ok := cs.Get("font-weight"); ok && (v == "bold" || v == "700" || v == "800" || v == "900") {
		bold = true
	}
	if v, ok := cs.Get("font-style"); ok && v == "italic" {
		italic = true
	}
	return
}

// breakIntoLines greedily packs items onto lines no wider than maxWidth,
// breaking before the first item that would overflow (CSS 2.1's "line
// breaking" model) and always starting a new line after a forced break
// item.
func breakIntoLines(items []lineItem, maxWidth float64) [][]lineItem {
	var lines [][]lineItem
	var cur []lineItem
	curWidth := 0.0
	for _, it := range items {
		if it.forceBreakAfter {
			lines = append(lines, cur)
			cur = nil
			curWidth = 0
			continue
		}
		if len(cur) > 0 && curWidth+it.width > maxWidth {
			lines = append(lines, cur)
			cur = nil
			curWidth = 0
		}
		cur = append(cur, it)
		curWidth += it.width
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func lineMetrics(line []lineItem) (height, ascender float64) {
	maxAsc, maxDesc := 0.0, 0.0
	for _, it := range line {
		if it.ascender > maxAsc {
			maxAsc = it.ascender
		}
		if it.descender > maxDesc {
			maxDesc = it.descender
		}
	}
	return maxAsc + maxDesc, maxAsc
}

// placeLine materializes line's items as children of parent with final
// X/Y geometry, distributing leftover width per `text-align` (left/right/
// center/justify — justify spreads extra space across inter-item gaps,
// matching spec.md §4.6.2). Text items get a freshly allocated TextRun
// View each; atomic items (images, inline-blocks) are reparented from
// wherever construction originally placed them.
func placeLine(t *Tree, parent ViewRef, line []lineItem, containingWidth float64, align cssstyle.TextAlign, y, ascender float64) {
	used := 0.0
	for _, it := range line {
		used += it.width
	}
	leftover := containingWidth - used
	if leftover < 0 {
		leftover = 0
	}

	startX := 0.0
	extraPerGap := 0.0
	switch align {
	case cssstyle.TextAlignRight:
		startX = leftover
	case cssstyle.TextAlignCenter:
		startX = leftover / 2
	case cssstyle.TextAlignJustify:
		if len(line) > 1 {
			extraPerGap = leftover / float64(len(line)-1)
		}
	}

	x := startX
	for _, it := range line {
		var v *View
		if it.isText {
			ref := t.alloc(KindTextRun)
			v = t.View(ref)
			v.Node = it.node
			v.Style = it.style
			v.FontSize = it.fontSize
			v.WhiteSpace = it.whiteSpace
			v.Text = it.text
			v.StartIndex = it.startOff
			v.Length = len(it.text)
			v.Width = it.width
			v.Height = it.ascender + it.descender
			t.appendChild(parent, ref)
		} else {
			v = t.View(it.atomicView)
			t.appendChild(parent, it.atomicView)
		}
		v.X = x
		v.Y = y + (ascender - it.ascender)
		x += it.width + extraPerGap
	}
}
